// cloneforest: reconstruction of clonal lineage trees for immune repertoires.
// Copyright (c) 2026 imec vzw.

// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version, and Additional Terms
// (see below).

// This program is distributed in the hope that it will be useful, but
// WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the GNU
// Affero General Public License for more details.

// You should have received a copy of the GNU Affero General Public
// License and Additional Terms along with this program. If not, see
// <https://github.com/exascience/cloneforest/blob/master/LICENSE.txt>.

package clones

import (
	"bytes"
	"compress/gzip"
	"strings"
	"sync"
	"testing"

	"github.com/exascience/pargo/parallel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/exascience/cloneforest/utils"
)

func shm(genePos int32, from, to byte) SHM {
	return SHM{GenePos: genePos, ReadPos: genePos, GeneNucl: from, ReadNucl: to}
}

func TestSHMSetOperations(t *testing.T) {
	a := []SHM{shm(10, 'A', 'G'), shm(22, 'C', 'T'), shm(40, 'G', 'A')}
	b := []SHM{shm(10, 'A', 'G'), shm(22, 'C', 'A'), shm(50, 'T', 'C')}

	assert.Equal(t, 1, NumSharedSHMs(a, b))
	assert.Equal(t, []SHM{shm(10, 'A', 'G')}, SharedSHMs(a, b))
	assert.Equal(t, []SHM{shm(22, 'C', 'T'), shm(40, 'G', 'A')}, PrivateSHMs(a, b))
	assert.Equal(t, []SHM{shm(22, 'C', 'A'), shm(50, 'T', 'C')}, PrivateSHMs(b, a))
	assert.Empty(t, PrivateSHMs(a, a))
	assert.Equal(t, 0, NumSharedSHMs(nil, a))
}

func TestSameAsIgnoresReadPosition(t *testing.T) {
	s1 := SHM{GenePos: 10, ReadPos: 10, GeneNucl: 'A', ReadNucl: 'G'}
	s2 := SHM{GenePos: 10, ReadPos: 13, GeneNucl: 'A', ReadNucl: 'G'}
	assert.True(t, s1.SameAs(s2))
	assert.Equal(t, 1, NumSharedSHMs([]SHM{s1}, []SHM{s2}))
}

func TestSortSHMs(t *testing.T) {
	shms := []SHM{shm(40, 'G', 'A'), shm(10, 'A', 'T'), shm(10, 'A', 'G')}
	SortSHMs(shms)
	assert.Equal(t, []SHM{shm(10, 'A', 'G'), shm(10, 'A', 'T'), shm(40, 'G', 'A')}, shms)
}

func TestPrivateSHMsIdenticallyPositioned(t *testing.T) {
	assert.True(t, PrivateSHMsIdenticallyPositioned(
		[]SHM{shm(10, 'A', 'G')},
		[]SHM{shm(10, 'A', 'T')}))
	assert.True(t, PrivateSHMsIdenticallyPositioned(
		[]SHM{shm(5, 'C', 'T'), shm(10, 'A', 'G'), shm(300, 'G', 'C')},
		[]SHM{shm(5, 'C', 'T'), shm(10, 'A', 'T'), shm(300, 'G', 'A')}))
	assert.False(t, PrivateSHMsIdenticallyPositioned(
		[]SHM{shm(10, 'A', 'G')},
		[]SHM{shm(11, 'A', 'T')}))
	assert.False(t, PrivateSHMsIdenticallyPositioned(
		[]SHM{shm(10, 'A', 'G'), shm(12, 'C', 'T')},
		[]SHM{shm(10, 'A', 'T')}))
	assert.True(t, PrivateSHMsIdenticallyPositioned(nil, nil))
}

const cloneLine = "read_1\tACGTACGTACGTACGTACGT\tIGH\tIGHV3-23*01\tIGHJ4*02\t-\t2-5\t8-14\t3:3:A>G,1:1:C>T\t-\t1\t1\t0\n"

func TestCloneFileRoundTrip(t *testing.T) {
	set, err := ParseClones(strings.NewReader(ClonesHeader + cloneLine))
	require.NoError(t, err)
	require.Len(t, set, 1)

	clone := set.Clone(0)
	assert.Equal(t, "read_1", clone.Name)
	assert.Equal(t, HeavyChain, clone.Chain)
	assert.Equal(t, utils.Intern("IGHV3-23*01"), clone.VGene)
	assert.Equal(t, "IGHJ4*02", clone.JGeneName())
	assert.True(t, clone.RegionIsEmpty(CDR1))
	assert.Equal(t, Range{2, 5}, clone.CDR2)
	assert.Equal(t, "ACGTAC", clone.CDR3Seq())
	assert.Equal(t, []SHM{{GenePos: 1, ReadPos: 1, GeneNucl: 'C', ReadNucl: 'T'}, {GenePos: 3, ReadPos: 3, GeneNucl: 'A', ReadNucl: 'G'}}, clone.VSHMs)
	assert.Empty(t, clone.JSHMs)
	assert.True(t, clone.Productive)
	assert.True(t, clone.InFrame)
	assert.False(t, clone.HasStopCodon)

	var out bytes.Buffer
	require.NoError(t, WriteClones(&out, set))
	assert.Equal(t, ClonesHeader+"read_1\tACGTACGTACGTACGTACGT\tIGH\tIGHV3-23*01\tIGHJ4*02\t-\t2-5\t8-14\t1:1:C>T,3:3:A>G\t-\t1\t1\t0\n", out.String())
}

func TestParseGzippedClones(t *testing.T) {
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	_, err := w.Write([]byte(ClonesHeader + cloneLine))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	set, err := ParseClones(&buf)
	require.NoError(t, err)
	require.Len(t, set, 1)
	assert.Equal(t, "read_1", set[0].Name)
}

func TestParseClonesErrors(t *testing.T) {
	_, err := ParseClones(strings.NewReader("read_1\tACGT\n"))
	assert.Error(t, err, "missing header")

	for _, line := range []string{
		"read_1\tACGT\tIGH\n",
		"read_1\tACGT\tIGX\tV\tJ\t-\t-\t0-4\t-\t-\t1\t1\t0\n",
		"read_1\tACGT\tIGH\tV\tJ\t-\t-\t0-4\t3:3:AG\t-\t1\t1\t0\n",
		"read_1\tACGT\tIGH\tV\tJ\t-\t-\t0-4\t-\t-\t1\t1\t0\textra\n",
		"read_1\tACGT\tIGH\tV\tJ\t-\t-\t0-4\t-\t-\t1\t2\t0\n",
	} {
		_, err := ParseClones(strings.NewReader(ClonesHeader + line))
		assert.Error(t, err, line)
	}
}

func TestArenaStripesAreDisjoint(t *testing.T) {
	const workers, perWorker = 8, 500
	base := make(Set, 100)
	for i := range base {
		base[i] = &Clone{Name: "real"}
	}
	var mutex sync.Mutex
	seen := make(map[int]bool)
	parallel.Range(0, workers, workers, func(low, high int) {
		for w := low; w < high; w++ {
			arena := NewArena(base, w, 1000)
			indices := make([]int, 0, perWorker)
			for k := 0; k < perWorker; k++ {
				index := arena.AddFake(&Clone{})
				assert.True(t, arena.IsFake(index))
				assert.True(t, arena.Clone(index).Fake)
				indices = append(indices, index)
			}
			mutex.Lock()
			for _, index := range indices {
				seen[index] = true
			}
			mutex.Unlock()
		}
	})
	assert.Len(t, seen, workers*perWorker)
	for index := range seen {
		assert.GreaterOrEqual(t, index, len(base))
	}
}

func TestArenaOverridesAndExhaustion(t *testing.T) {
	base := Set{{Name: "a"}, {Name: "b"}}
	arena := NewArena(base, 1, 2)
	assert.Equal(t, 1, arena.Worker())

	arena.Override(1, &Clone{Name: "b2"})
	assert.Equal(t, "a", arena.Clone(0).Name)
	assert.Equal(t, "b2", arena.Clone(1).Name)
	assert.Equal(t, "b", base.Clone(1).Name)

	first := arena.AddFake(&Clone{})
	assert.Equal(t, FakeStripeStart(2, 1, 2), first)
	arena.AddFake(&Clone{})
	assert.Equal(t, []int{4, 5}, arena.Fakes())
	assert.Equal(t, "fake_4", arena.Clone(4).Name)
	assert.Panics(t, func() { arena.AddFake(&Clone{}) })
	assert.Panics(t, func() { arena.Clone(6) })
	assert.Panics(t, func() { arena.Override(4, &Clone{}) })
}

func TestCommonAncestor(t *testing.T) {
	clone1 := &Clone{
		Read:  "AAAAGAAAAT",
		CDR3:  Range{0, 4},
		VSHMs: []SHM{{GenePos: 2, ReadPos: 2, GeneNucl: 'C', ReadNucl: 'A'}, {GenePos: 4, ReadPos: 4, GeneNucl: 'A', ReadNucl: 'G'}},
		JSHMs: []SHM{{GenePos: 1, ReadPos: 9, GeneNucl: 'C', ReadNucl: 'T'}},
	}
	clone2 := &Clone{
		Read:  "AACAAAAAAT",
		CDR3:  Range{0, 4},
		VSHMs: []SHM{{GenePos: 4, ReadPos: 4, GeneNucl: 'A', ReadNucl: 'G'}, {GenePos: 7, ReadPos: 7, GeneNucl: 'A', ReadNucl: 'C'}},
	}
	ancestor := CommonAncestor(clone1, clone2)
	assert.True(t, ancestor.Fake)
	assert.Equal(t, []SHM{{GenePos: 4, ReadPos: 4, GeneNucl: 'A', ReadNucl: 'G'}}, ancestor.VSHMs)
	assert.Empty(t, ancestor.JSHMs)
	assert.Equal(t, "AACAGAAAAC", ancestor.Read)
	assert.Equal(t, clone1.CDR3, ancestor.CDR3)
}
