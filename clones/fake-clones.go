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
	"fmt"
	"log"
)

// DefaultStripeWidth is the default number of fake clone indices
// reserved for each worker.
const DefaultStripeWidth = 1 << 20

// FakeStripeStart returns the first fake clone index of the given
// worker. Stripes are laid out directly after the real clones, so
// that every worker allocates from a range that is disjoint from the
// real clones and from all other workers.
func FakeStripeStart(numReal, worker, width int) int {
	return numReal + worker*width
}

/*
An Arena is the private view of one worker on the clones of a run.

It overlays the shared, read-only Set with re-annotated copies of
real clones and with the fake clones the worker synthesizes. Fake
clones get indices from the worker's own stripe, so no
synchronization between workers is needed to keep indices globally
unique. An Arena must only be used by a single goroutine.
*/
type Arena struct {
	base      Set
	worker    int
	first     int
	width     int
	fakes     []*Clone
	overrides map[int]*Clone
}

// NewArena creates the arena of the given worker.
func NewArena(base Set, worker, width int) *Arena {
	if width <= 0 {
		width = DefaultStripeWidth
	}
	return &Arena{
		base:      base,
		worker:    worker,
		first:     FakeStripeStart(len(base), worker, width),
		width:     width,
		overrides: make(map[int]*Clone),
	}
}

// Worker returns the worker index of the arena.
func (arena *Arena) Worker() int {
	return arena.worker
}

// Clone returns the clone with the given index: a re-annotated copy
// if there is one, the real clone, or a fake clone of this arena.
func (arena *Arena) Clone(index int) *Clone {
	if index < len(arena.base) {
		if clone, ok := arena.overrides[index]; ok {
			return clone
		}
		return arena.base[index]
	}
	if offset := index - arena.first; offset >= 0 && offset < len(arena.fakes) {
		return arena.fakes[offset]
	}
	log.Panicf("clone index %v is neither a real clone nor a fake clone of worker %v", index, arena.worker)
	return nil
}

// Override replaces the clone with the given index by a re-annotated
// copy, only within this arena.
func (arena *Arena) Override(index int, clone *Clone) {
	if index < 0 || index >= len(arena.base) {
		log.Panicf("cannot override clone %v: not a real clone", index)
	}
	arena.overrides[index] = clone
}

// AddFake adds a synthesized clone and returns its index.
func (arena *Arena) AddFake(clone *Clone) int {
	if len(arena.fakes) >= arena.width {
		log.Panicf("worker %v exhausted its stripe of %v fake clone indices", arena.worker, arena.width)
	}
	index := arena.first + len(arena.fakes)
	clone.Fake = true
	if clone.Name == "" {
		clone.Name = fmt.Sprintf("fake_%d", index)
	}
	arena.fakes = append(arena.fakes, clone)
	return index
}

// IsFake is true if the index denotes a fake clone of this arena.
func (arena *Arena) IsFake(index int) bool {
	offset := index - arena.first
	return offset >= 0 && offset < len(arena.fakes)
}

// NumFakes returns the number of fake clones added so far.
func (arena *Arena) NumFakes() int {
	return len(arena.fakes)
}

// Fakes returns the indices of all fake clones of this arena.
func (arena *Arena) Fakes() []int {
	result := make([]int, len(arena.fakes))
	for i := range result {
		result[i] = arena.first + i
	}
	return result
}

// revert undoes the given SHMs in the read, restoring the germline
// nucleotides at their read positions.
func revert(read []byte, shms []SHM) {
	for _, shm := range shms {
		if pos := int(shm.ReadPos); pos >= 0 && pos < len(read) && read[pos] == shm.ReadNucl {
			read[pos] = shm.GeneNucl
		}
	}
}

/*
CommonAncestor synthesizes the most recent common ancestor of two
clones that share part of their mutations. The ancestor carries
exactly the SHMs that both clones share. Its read is the read of
clone1 with the SHMs private to clone1 reverted to germline; gene
calls, CDR ranges and flags are taken from clone1 as well.

The result is not yet part of any arena, see Arena.AddFake.
*/
func CommonAncestor(clone1, clone2 *Clone) *Clone {
	read := []byte(clone1.Read)
	revert(read, PrivateSHMs(clone1.VSHMs, clone2.VSHMs))
	revert(read, PrivateSHMs(clone1.JSHMs, clone2.JSHMs))
	return &Clone{
		Read:         string(read),
		Chain:        clone1.Chain,
		VGene:        clone1.VGene,
		JGene:        clone1.JGene,
		CDR1:         clone1.CDR1,
		CDR2:         clone1.CDR2,
		CDR3:         clone1.CDR3,
		VSHMs:        SharedSHMs(clone1.VSHMs, clone2.VSHMs),
		JSHMs:        SharedSHMs(clone1.JSHMs, clone2.JSHMs),
		Productive:   clone1.Productive,
		InFrame:      clone1.InFrame,
		HasStopCodon: clone1.HasStopCodon,
		Fake:         true,
	}
}
