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

package branching

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// checkBranching verifies that every vertex has at most one parent
// and that following parents always terminates.
func checkBranching(t *testing.T, edges []WeightedEdge) {
	t.Helper()
	parent := make(map[int]int)
	for _, edge := range edges {
		_, ok := parent[edge.Dst]
		require.False(t, ok, "vertex %v has two incoming edges", edge.Dst)
		parent[edge.Dst] = edge.Src
	}
	for v := range parent {
		steps := 0
		for u, ok := v, true; ok; u, ok = parent[u] {
			steps++
			require.LessOrEqual(t, steps, len(parent)+1, "cycle through vertex %v", v)
		}
	}
}

func TestSolveEmpty(t *testing.T) {
	assert.Empty(t, Solve(nil, Options{}))
	assert.Empty(t, Solve([]WeightedEdge{{Src: 1, Dst: 1, Weight: 3}}, Options{AttemptToSpan: true}))
}

func TestSolveMinimizeSpanningCycle(t *testing.T) {
	input := []WeightedEdge{
		{Src: 1, Dst: 2, Weight: 5},
		{Src: 2, Dst: 3, Weight: 1},
		{Src: 3, Dst: 2, Weight: 1},
		{Src: 1, Dst: 3, Weight: 4},
	}
	result := Solve(input, Options{Objective: Minimize, AttemptToSpan: true})
	checkBranching(t, result)
	assert.Equal(t, []WeightedEdge{
		{Src: 1, Dst: 3, Weight: 4},
		{Src: 3, Dst: 2, Weight: 1},
	}, result)
}

func TestSolveMaximizeSkipsNegativeEdges(t *testing.T) {
	input := []WeightedEdge{
		{Src: 1, Dst: 2, Weight: -3},
		{Src: 2, Dst: 3, Weight: 4},
		{Src: 3, Dst: 1, Weight: 2},
		{Src: 1, Dst: 3, Weight: 5},
	}
	result := Solve(input, Options{Objective: Maximize})
	checkBranching(t, result)
	assert.Equal(t, []WeightedEdge{
		{Src: 2, Dst: 3, Weight: 4},
		{Src: 3, Dst: 1, Weight: 2},
	}, result)
	assert.Equal(t, 6.0, TotalWeight(result))
}

func TestSolveMinimizeWithoutSpanIsEmpty(t *testing.T) {
	input := []WeightedEdge{
		{Src: 1, Dst: 2, Weight: 1},
		{Src: 2, Dst: 3, Weight: 2},
	}
	assert.Empty(t, Solve(input, Options{Objective: Minimize}))
}

func TestSolveParallelEdges(t *testing.T) {
	input := []WeightedEdge{
		{Src: 1, Dst: 2, Weight: 7},
		{Src: 1, Dst: 2, Weight: 3},
		{Src: 2, Dst: 3, Weight: 2},
	}
	result := Solve(input, Options{Objective: Minimize, AttemptToSpan: true})
	assert.Equal(t, []WeightedEdge{
		{Src: 1, Dst: 2, Weight: 3},
		{Src: 2, Dst: 3, Weight: 2},
	}, result)
}

func TestSolveDeterministicTies(t *testing.T) {
	input := []WeightedEdge{
		{Src: 3, Dst: 4, Weight: 1},
		{Src: 1, Dst: 4, Weight: 1},
		{Src: 2, Dst: 4, Weight: 1},
	}
	first := Solve(input, Options{Objective: Minimize, AttemptToSpan: true})
	require.Len(t, first, 1)
	assert.Equal(t, 1, first[0].Src)
	for i := 0; i < 10; i++ {
		rand.Shuffle(len(input), func(i, j int) { input[i], input[j] = input[j], input[i] })
		assert.Equal(t, first, Solve(input, Options{Objective: Minimize, AttemptToSpan: true}))
	}
}

// bruteForce enumerates every assignment of at most one incoming edge
// per vertex and returns the best edge count and weight.
func bruteForce(vertices []int, edges []WeightedEdge, options Options) (bestCount int, bestWeight float64) {
	incoming := make(map[int][]WeightedEdge)
	for _, edge := range edges {
		incoming[edge.Dst] = append(incoming[edge.Dst], edge)
	}
	choice := make([]int, len(vertices))
	found := false
	better := func(count int, weight float64) bool {
		if !found {
			return true
		}
		if options.AttemptToSpan && count != bestCount {
			return count > bestCount
		}
		if options.Objective == Minimize {
			return weight < bestWeight
		}
		return weight > bestWeight
	}
	var enumerate func(i int)
	enumerate = func(i int) {
		if i == len(vertices) {
			parent := make(map[int]int)
			count, weight := 0, 0.0
			for k, v := range vertices {
				if c := choice[k]; c > 0 {
					edge := incoming[v][c-1]
					parent[v] = edge.Src
					count++
					weight += edge.Weight
				}
			}
			for v := range parent {
				steps := 0
				for u, ok := v, true; ok; u, ok = parent[u] {
					if steps++; steps > len(parent)+1 {
						return
					}
				}
			}
			if better(count, weight) {
				found, bestCount, bestWeight = true, count, weight
			}
			return
		}
		for c := 0; c <= len(incoming[vertices[i]]); c++ {
			choice[i] = c
			enumerate(i + 1)
		}
	}
	enumerate(0)
	return bestCount, bestWeight
}

func TestSolveAgainstBruteForce(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	allOptions := []Options{
		{Objective: Maximize},
		{Objective: Maximize, AttemptToSpan: true},
		{Objective: Minimize},
		{Objective: Minimize, AttemptToSpan: true},
	}
	for round := 0; round < 150; round++ {
		n := 2 + rng.Intn(4)
		var edges []WeightedEdge
		for src := 1; src <= n; src++ {
			for dst := 1; dst <= n; dst++ {
				if src != dst && rng.Intn(3) > 0 {
					edges = append(edges, WeightedEdge{Src: src, Dst: dst, Weight: float64(rng.Intn(16) - 5)})
				}
			}
		}
		if len(edges) == 0 {
			continue
		}
		seen := make(map[int]bool)
		var vertices []int
		for _, edge := range edges {
			for _, v := range []int{edge.Src, edge.Dst} {
				if !seen[v] {
					seen[v] = true
					vertices = append(vertices, v)
				}
			}
		}
		for _, options := range allOptions {
			result := Solve(edges, options)
			checkBranching(t, result)
			count, weight := bruteForce(vertices, edges, options)
			if options.AttemptToSpan {
				assert.Equal(t, count, len(result), "round %v options %+v", round, options)
			}
			assert.Equal(t, weight, TotalWeight(result), "round %v options %+v", round, options)
		}
	}
}
