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
	"sort"

	"github.com/bits-and-blooms/bitset"
)

func shmLess(a, b SHM) bool {
	if a.GenePos != b.GenePos {
		return a.GenePos < b.GenePos
	}
	if a.GeneNucl != b.GeneNucl {
		return a.GeneNucl < b.GeneNucl
	}
	return a.ReadNucl < b.ReadNucl
}

// SortSHMs sorts a catalogue of SHMs by gene position. All set
// operations below expect sorted catalogues.
func SortSHMs(shms []SHM) {
	sort.SliceStable(shms, func(i, j int) bool {
		return shmLess(shms[i], shms[j])
	})
}

// walkSHMs performs a merge walk over two sorted catalogues and calls
// f for every SHM of shms1, telling whether it also occurs in shms2.
func walkSHMs(shms1, shms2 []SHM, f func(shm SHM, shared bool)) {
	j := 0
	for _, shm := range shms1 {
		for j < len(shms2) && shmLess(shms2[j], shm) {
			j++
		}
		if j < len(shms2) && shms2[j].SameAs(shm) {
			f(shm, true)
			j++
		} else {
			f(shm, false)
		}
	}
}

// NumSharedSHMs returns the number of SHMs that occur in both
// catalogues.
func NumSharedSHMs(shms1, shms2 []SHM) (n int) {
	walkSHMs(shms1, shms2, func(_ SHM, shared bool) {
		if shared {
			n++
		}
	})
	return n
}

// SharedSHMs returns the SHMs of shms1 that also occur in shms2.
func SharedSHMs(shms1, shms2 []SHM) (result []SHM) {
	walkSHMs(shms1, shms2, func(shm SHM, shared bool) {
		if shared {
			result = append(result, shm)
		}
	})
	return result
}

// PrivateSHMs returns the SHMs of shms1 that do not occur in shms2.
func PrivateSHMs(shms1, shms2 []SHM) (result []SHM) {
	walkSHMs(shms1, shms2, func(shm SHM, shared bool) {
		if !shared {
			result = append(result, shm)
		}
	})
	return result
}

func positionSet(shms []SHM, size uint) *bitset.BitSet {
	set := bitset.New(size)
	for _, shm := range shms {
		set.Set(uint(shm.GenePos))
	}
	return set
}

func maxGenePos(shms []SHM) (max int32) {
	max = -1
	for _, shm := range shms {
		if shm.GenePos > max {
			max = shm.GenePos
		}
	}
	return max
}

// PrivateSHMsIdenticallyPositioned compares the gene positions of the
// SHMs private to each of the two catalogues. It returns true when
// both private sets mutate exactly the same positions, regardless of
// the bases they mutate to. This is the signature of independent
// mutations at the same sites on two lineages.
func PrivateSHMsIdenticallyPositioned(shms1, shms2 []SHM) bool {
	private1 := PrivateSHMs(shms1, shms2)
	private2 := PrivateSHMs(shms2, shms1)
	size := maxGenePos(private1)
	if m := maxGenePos(private2); m > size {
		size = m
	}
	if size < 0 {
		return true
	}
	return positionSet(private1, uint(size)+1).Equal(positionSet(private2, uint(size)+1))
}
