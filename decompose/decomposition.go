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

// Package decompose partitions a clone set into gene-consistent
// classes, and classes into connected components of similar CDR3s.
// Components are the units of parallel lineage reconstruction.
package decompose

import (
	"fmt"
	"sort"

	"github.com/bits-and-blooms/bitset"

	"github.com/exascience/cloneforest/clones"
	"github.com/exascience/cloneforest/utils"
)

// Criterion selects the gene calls clones of one class must share.
type Criterion uint8

const (
	// ByV groups clones on the base name of their V gene.
	ByV Criterion = iota

	// ByVJ groups clones on the base names of their V and J genes.
	ByVJ
)

func (criterion Criterion) String() string {
	if criterion == ByVJ {
		return "vj"
	}
	return "v"
}

// ParseCriterion parses "v" or "vj".
func ParseCriterion(s string) (Criterion, error) {
	switch s {
	case "v", "V":
		return ByV, nil
	case "vj", "VJ":
		return ByVJ, nil
	default:
		return ByV, fmt.Errorf("unknown decomposition criterion %v, expected v or vj", s)
	}
}

// A Class is a group of clones with consistent gene calls. Members
// are clone indices in ascending order.
type Class struct {
	ID      int
	Key     string
	Members []int
}

func classKey(clone *clones.Clone, criterion Criterion) string {
	key := utils.GeneBaseName(clone.VGeneName())
	if criterion == ByVJ {
		key += "|" + utils.GeneBaseName(clone.JGeneName())
	}
	return key
}

// DecomposeClones groups the clones of a set by the given criterion.
// Classes are ordered by key and numbered from 0.
func DecomposeClones(set clones.Set, criterion Criterion) []Class {
	groups := make(map[string][]int)
	for i, clone := range set {
		key := classKey(clone, criterion)
		groups[key] = append(groups[key], i)
	}
	keys := make([]string, 0, len(groups))
	for key := range groups {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	classes := make([]Class, len(keys))
	for id, key := range keys {
		classes[id] = Class{ID: id, Key: key, Members: groups[key]}
	}
	return classes
}

// CheckPartition verifies that every clone index below numClones is
// member of exactly one class.
func CheckPartition(classes []Class, numClones int) error {
	seen := bitset.New(uint(numClones))
	for _, class := range classes {
		for _, member := range class.Members {
			if member < 0 || member >= numClones {
				return fmt.Errorf("class %v refers to clone %v, but there are only %v clones", class.ID, member, numClones)
			}
			if seen.Test(uint(member)) {
				return fmt.Errorf("clone %v is member of more than one class", member)
			}
			seen.Set(uint(member))
		}
	}
	if count := seen.Count(); count != uint(numClones) {
		return fmt.Errorf("%v of %v clones are not member of any class", uint(numClones)-count, numClones)
	}
	return nil
}
