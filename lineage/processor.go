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

package lineage

import (
	"log"
	"sort"
	"sync/atomic"

	"github.com/exascience/pargo/parallel"

	"github.com/exascience/cloneforest/clones"
	"github.com/exascience/cloneforest/decompose"
	"github.com/exascience/cloneforest/trees"
)

// A Result is the outcome of processing all components of a run.
type Result struct {
	Trees  *trees.Storage
	Arenas []*clones.Arena
	Stats  *CDR3Stats

	Components  int
	Vertices    int
	Reannotated int
	Fakes       int
}

// A Processor reconstructs the lineage trees of a set of connected
// components with a fixed number of workers.
type Processor struct {
	set        clones.Set
	components []decompose.Component
	config     Config
}

// NewProcessor creates a processor. The clone set and the components
// must not be modified while the processor runs.
func NewProcessor(set clones.Set, components []decompose.Component, config Config) *Processor {
	return &Processor{set: set, components: components, config: config}
}

type worker struct {
	arena   *clones.Arena
	storage *trees.Storage
	stats   *CDR3Stats
	report  ComponentReport
}

// schedule returns the component indices with the largest components
// first, so that large components do not end up last on one worker.
func (p *Processor) schedule() []int {
	order := make([]int, len(p.components))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return len(p.components[order[i]].Members) > len(p.components[order[j]].Members)
	})
	return order
}

/*
Process runs the reconstruction. Each worker owns an arena for
reannotated and fake clones and a storage for its trees, and pulls
components from a shared counter until none are left. After all
workers are done, their storages are merged and sorted by tree index,
so that the result does not depend on the scheduling.

Contract violations in any worker panic, and the panic is propagated
to the caller of Process.
*/
func (p *Processor) Process() *Result {
	threads := p.config.Threads
	if threads < 1 {
		threads = 1
	}
	order := p.schedule()
	workers := make([]worker, threads)
	var next int64

	parallel.Range(0, threads, threads, func(low, high int) {
		for w := low; w < high; w++ {
			wk := &workers[w]
			wk.arena = clones.NewArena(p.set, w, p.config.StripeWidth)
			wk.storage = trees.NewStorage()
			wk.stats = NewCDR3Stats()
			for {
				i := int(atomic.AddInt64(&next, 1) - 1)
				if i >= len(order) {
					break
				}
				tree, report := reconstruct(p.components[order[i]], wk.arena, &p.config, wk.stats)
				wk.report.Vertices += report.Vertices
				wk.report.Reannotated += report.Reannotated
				wk.report.Fakes += report.Fakes
				for _, t := range trees.Split(tree) {
					wk.storage.Add(t)
				}
			}
		}
	})

	result := &Result{Stats: NewCDR3Stats(), Components: len(p.components)}
	storages := make([]*trees.Storage, threads)
	for w := range workers {
		wk := &workers[w]
		storages[w] = wk.storage
		result.Arenas = append(result.Arenas, wk.arena)
		result.Stats.Merge(wk.stats)
		result.Vertices += wk.report.Vertices
		result.Reannotated += wk.report.Reannotated
		result.Fakes += wk.report.Fakes
	}
	result.Trees = trees.MergeStorages(storages)
	log.Printf("Reconstructed %v trees for %v components with %v workers (%v fake clones, %v reannotated clones).",
		result.Trees.Len(), result.Components, threads, result.Fakes, result.Reannotated)
	return result
}
