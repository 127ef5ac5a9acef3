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
	"github.com/exascience/cloneforest/utils"
)

// A Reannotator recomputes the annotation of a clone against the given
// V and J genes, typically by realigning its read. It returns a new
// clone and leaves the given one untouched.
type Reannotator interface {
	Reannotate(clone *clones.Clone, vGene, jGene utils.Symbol) *clones.Clone
}

// GeneReassigner is the default Reannotator. It only replaces the gene
// calls and keeps the SHMs and regions as annotated.
type GeneReassigner struct{}

// Reannotate implements Reannotator.
func (GeneReassigner) Reannotate(clone *clones.Clone, vGene, jGene utils.Symbol) *clones.Clone {
	c := clone.Copy()
	c.VGene = vGene
	c.JGene = jGene
	return c
}

// modeGene returns the most frequent gene call, with ties resolved in
// favor of the lexicographically smallest name. Missing calls are not
// counted.
func modeGene(genes []utils.Symbol) utils.Symbol {
	var counts utils.SymbolCounts
	for _, gene := range genes {
		if gene != nil {
			counts.Add(gene)
		}
	}
	return counts.Mode()
}

/*
HomogenizeGenes makes the gene calls of the given clones consistent:
every clone that is not assigned to the most frequent V gene and the
most frequent J gene of the group is reannotated against them. The
reannotated copies are stored in the arena; real clones remain
unchanged. HomogenizeGenes returns the number of reannotated clones.
*/
func HomogenizeGenes(arena *clones.Arena, members []int, reannotator Reannotator) (reannotated int) {
	vGenes := make([]utils.Symbol, len(members))
	jGenes := make([]utils.Symbol, len(members))
	for i, member := range members {
		clone := arena.Clone(member)
		vGenes[i] = clone.VGene
		jGenes[i] = clone.JGene
	}
	vMode, jMode := modeGene(vGenes), modeGene(jGenes)
	for i, member := range members {
		v, j := vMode, jMode
		if v == nil {
			v = vGenes[i]
		}
		if j == nil {
			j = jGenes[i]
		}
		if v == vGenes[i] && j == jGenes[i] {
			continue
		}
		arena.Override(member, reannotator.Reannotate(arena.Clone(member), v, j))
		reannotated++
	}
	return reannotated
}
