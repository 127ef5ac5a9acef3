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
	"github.com/exascience/cloneforest/clones"
	"github.com/exascience/cloneforest/decompose"
	"github.com/exascience/cloneforest/trees"
)

// ComponentReport summarizes the reconstruction of one component.
type ComponentReport struct {
	Vertices    int
	Reannotated int
	Fakes       int
}

/*
ReconstructComponent computes the lineage forest of a connected
component. Clones are resolved through the arena of the calling
worker, which also receives reannotated clones and synthesized
ancestors.

The resulting tree carries the class and component of the component
and subtree index 0; see trees.Split for splitting it into rooted
trees. A component without clones with a CDR3 yields an empty tree.
*/
func ReconstructComponent(component decompose.Component, arena *clones.Arena, config *Config) *trees.Tree {
	tree, _ := reconstruct(component, arena, config, nil)
	return tree
}

func reconstruct(component decompose.Component, arena *clones.Arena, config *Config, stats *CDR3Stats) (*trees.Tree, ComponentReport) {
	var report ComponentReport
	tree := trees.NewTree(arena)
	tree.SetTreeIndices(component.Class, component.ID, 0)

	members := FilterEmptyCDR3(arena, component.Members)
	if len(members) == 0 {
		return tree, report
	}
	report.Vertices = len(members)
	report.Reannotated = HomogenizeGenes(arena, members, config.reannotator())

	g := BuildGraph(arena, members)
	if stats != nil {
		stats.AddGraph(g)
	}
	for _, v := range g.Vertices() {
		tree.AddVertex(v)
	}

	branchingEdges := g.Branching(config.EdgeWeight)
	switch config.Strategy {
	case StrategyEdmonds:
		for _, edge := range branchingEdges {
			tree.AddEdge(edge)
		}
	default:
		parents, alternatives := Refine(g, branchingEdges, config.EdgeCoef, config.EdgeLengthThreshold)
		for _, edge := range parents {
			tree.AddEdge(edge)
		}
		for _, edge := range alternatives {
			tree.AddAlternative(edge)
		}
	}

	if config.ReconstructAncestors {
		report.Fakes = reconstructAncestors(tree, g, arena, config)
	}
	return tree, report
}
