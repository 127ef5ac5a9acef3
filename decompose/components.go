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

package decompose

import (
	"sort"

	"github.com/exascience/pargo/parallel"

	"github.com/exascience/cloneforest/clones"
)

// A Component is a set of clones of one class that are connected in
// the CDR3 similarity graph. Members are clone indices in ascending
// order.
type Component struct {
	Class, ID int
	Members   []int
}

// A SimilarityGraph partitions distinct CDR3 sequences into the
// connected components of the graph that links sequences within tau
// mismatches of each other. Each component lists indices into cdr3s.
type SimilarityGraph interface {
	Components(cdr3s []string, tau int) [][]int
}

/*
BuildComponents splits a class into connected components.

Members are grouped on their CDR3 sequence and the similarity graph is
queried once over the distinct sequences. Members without a CDR3 are
not part of any component. Components are ordered by their smallest
member and numbered from 0.
*/
func BuildComponents(class Class, set clones.Set, graph SimilarityGraph, tau int) []Component {
	var cdr3s []string
	byCDR3 := make(map[string][]int)
	for _, member := range class.Members {
		cdr3 := set[member].CDR3Seq()
		if cdr3 == "" {
			continue
		}
		if _, ok := byCDR3[cdr3]; !ok {
			cdr3s = append(cdr3s, cdr3)
		}
		byCDR3[cdr3] = append(byCDR3[cdr3], member)
	}
	if len(cdr3s) == 0 {
		return nil
	}
	var components []Component
	for _, group := range graph.Components(cdr3s, tau) {
		var members []int
		for _, i := range group {
			members = append(members, byCDR3[cdr3s[i]]...)
		}
		sort.Ints(members)
		components = append(components, Component{Class: class.ID, Members: members})
	}
	sort.Slice(components, func(i, j int) bool {
		return components[i].Members[0] < components[j].Members[0]
	})
	for id := range components {
		components[id].ID = id
	}
	return components
}

// MismatchesFunc returns the CDR3 similarity threshold for a chain
// type.
type MismatchesFunc func(chain clones.ChainType) int

// BuildAllComponents splits all classes into connected components in
// parallel. The threshold of a class is determined by the chain type
// of its first member. Components are ordered by class.
func BuildAllComponents(classes []Class, set clones.Set, graph SimilarityGraph, mismatches MismatchesFunc) []Component {
	perClass := make([][]Component, len(classes))
	parallel.Range(0, len(classes), 0, func(low, high int) {
		for i := low; i < high; i++ {
			class := classes[i]
			if len(class.Members) == 0 {
				continue
			}
			tau := mismatches(set[class.Members[0]].Chain)
			perClass[i] = BuildComponents(class, set, graph, tau)
		}
	})
	var result []Component
	for _, components := range perClass {
		result = append(result, components...)
	}
	return result
}
