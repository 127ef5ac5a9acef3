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

package trees

import (
	"sort"

	psort "github.com/exascience/pargo/sort"
)

// A Storage accumulates finalized trees. Each worker owns one.
type Storage struct {
	trees []*Tree
}

// NewStorage creates an empty storage.
func NewStorage() *Storage {
	return new(Storage)
}

// Add appends a tree.
func (storage *Storage) Add(tree *Tree) {
	storage.trees = append(storage.trees, tree)
}

// Trees returns the stored trees.
func (storage *Storage) Trees() []*Tree {
	return storage.trees
}

// Len returns the number of stored trees.
func (storage *Storage) Len() int {
	return len(storage.trees)
}

// NumVertices returns the total number of vertices over all trees.
func (storage *Storage) NumVertices() (n int) {
	for _, tree := range storage.trees {
		n += tree.NumVertices()
	}
	return n
}

type treeSorter []*Tree

func (s treeSorter) SequentialSort(i, j int) {
	trees := s[i:j]
	sort.SliceStable(trees, func(i, j int) bool {
		return trees[i].index.Less(trees[j].index)
	})
}

func (s treeSorter) NewTemp() psort.StableSorter {
	return make(treeSorter, len(s))
}

func (s treeSorter) Len() int {
	return len(s)
}

func (s treeSorter) Less(i, j int) bool {
	return s[i].index.Less(s[j].index)
}

func (s treeSorter) Assign(p psort.StableSorter) func(i, j, len int) {
	dst, src := s, p.(treeSorter)
	return func(i, j, len int) {
		for k := 0; k < len; k++ {
			dst[i+k] = src[j+k]
		}
	}
}

// MergeStorages concatenates the given storages and orders the result
// by tree index, so that it does not depend on which worker built
// which tree.
func MergeStorages(storages []*Storage) *Storage {
	n := 0
	for _, storage := range storages {
		n += storage.Len()
	}
	result := &Storage{trees: make([]*Tree, 0, n)}
	for _, storage := range storages {
		result.trees = append(result.trees, storage.trees...)
	}
	psort.StableSort(treeSorter(result.trees))
	return result
}
