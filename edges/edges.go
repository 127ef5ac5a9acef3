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

// Package edges classifies the evolutionary relation between two
// annotated clones.
package edges

import (
	"log"

	"github.com/exascience/cloneforest/clones"
)

// Kind tags the variant of an evolutionary edge.
type Kind uint8

const (
	// NoEdge marks an ordered pair of clones that cannot be related in
	// this direction: the destination lacks mutations the source has,
	// while carrying none of its own.
	NoEdge Kind = iota

	// Directed edges lead from a clone to a descendant whose SHMs are
	// a strict superset of its own.
	Directed

	// Intersected edges relate two clones of which neither SHM set
	// contains the other. Such clones can only be related through an
	// unobserved common ancestor.
	Intersected

	// Undirected edges relate clones with identical SHM sets. Their
	// direction cannot be resolved.
	Undirected
)

func (kind Kind) String() string {
	switch kind {
	case Directed:
		return "directed"
	case Intersected:
		return "intersected"
	case Undirected:
		return "undirected"
	default:
		return "none"
	}
}

// NoEdgeLength is the length given to NoEdge entries, so that graph
// algorithms can treat them like any other (very long) edge.
const NoEdgeLength = 400

/*
An Edge is a candidate parent relation Src -> Dst between two clones.

Length is the number of mutation events the edge implies and is used
as its cost. AddedShms counts SHMs gained along a directed edge, or
the private SHMs of both sides for an intersected edge. SharedShms
counts SHMs common to both sides, SharedVShms only those in the V
segment.
*/
type Edge struct {
	Src, Dst      int
	Kind          Kind
	Length        int
	AddedShms     int
	SharedShms    int
	SharedVShms   int
	CDR3Distance  int
	DoubleMutated bool
}

// IsDirected is true for Directed edges.
func (edge Edge) IsDirected() bool { return edge.Kind == Directed }

// IsUndirected is true for Undirected edges.
func (edge Edge) IsUndirected() bool { return edge.Kind == Undirected }

// IsIntersected is true for Intersected edges, double mutated or not.
func (edge Edge) IsIntersected() bool { return edge.Kind == Intersected }

// IsEdge is false for NoEdge entries.
func (edge Edge) IsEdge() bool { return edge.Kind != NoEdge }

// TypeString returns the edge type as used in exported tree files.
func (edge Edge) TypeString() string {
	if edge.Kind == Intersected && edge.DoubleMutated {
		return "double_mutated"
	}
	return edge.Kind.String()
}

// CDR3Distance returns the number of mismatching positions of two CDR3
// sequences, counting every position by which the longer one
// exceeds the shorter one as a mismatch.
func CDR3Distance(cdr1, cdr2 string) int {
	n, d := len(cdr1), 0
	if len(cdr2) < n {
		n = len(cdr2)
		d = len(cdr1) - n
	} else {
		d = len(cdr2) - n
	}
	for i := 0; i < n; i++ {
		if cdr1[i] != cdr2[i] {
			d++
		}
	}
	return d
}

func checkCDR3(index int, clone *clones.Clone) {
	if clone.RegionIsEmpty(clones.CDR3) {
		log.Panicf("cannot construct an evolutionary edge for clone %v (%v): CDR3 is empty", index, clone.Name)
	}
}

// NewDirected constructs the directed edge src -> dst. The destination
// must carry more SHMs than the source.
func NewDirected(srcIndex, dstIndex int, src, dst *clones.Clone) Edge {
	checkCDR3(srcIndex, src)
	checkCDR3(dstIndex, dst)
	if dst.NumSHMs() <= src.NumSHMs() {
		log.Panicf("# SHMs in destination clone %v (%v) does not exceed # SHMs in source clone %v (%v)",
			dstIndex, dst.NumSHMs(), srcIndex, src.NumSHMs())
	}
	edge := Edge{
		Src:          srcIndex,
		Dst:          dstIndex,
		Kind:         Directed,
		AddedShms:    dst.NumSHMs() - src.NumSHMs(),
		SharedShms:   src.NumSHMs(),
		SharedVShms:  len(src.VSHMs),
		CDR3Distance: CDR3Distance(src.CDR3Seq(), dst.CDR3Seq()),
	}
	edge.Length = edge.AddedShms + edge.CDR3Distance
	return edge
}

/*
Classify determines the edge between the clones src and dst, with
indices srcIndex and dstIndex.

Both clones must have a non-empty CDR3; callers filter out clones
without one. Classify is a pure function of its arguments.
*/
func Classify(srcIndex, dstIndex int, src, dst *clones.Clone) Edge {
	checkCDR3(srcIndex, src)
	checkCDR3(dstIndex, dst)

	sharedV := clones.NumSharedSHMs(src.VSHMs, dst.VSHMs)
	sharedJ := clones.NumSharedSHMs(src.JSHMs, dst.JSHMs)
	srcInDst := sharedV == len(src.VSHMs) && sharedJ == len(src.JSHMs)
	dstInSrc := sharedV == len(dst.VSHMs) && sharedJ == len(dst.JSHMs)

	switch {
	case srcInDst && dstInSrc:
		cdr3Distance := CDR3Distance(src.CDR3Seq(), dst.CDR3Seq())
		return Edge{
			Src:          srcIndex,
			Dst:          dstIndex,
			Kind:         Undirected,
			Length:       cdr3Distance,
			SharedShms:   sharedV + sharedJ,
			SharedVShms:  sharedV,
			CDR3Distance: cdr3Distance,
		}
	case srcInDst:
		return NewDirected(srcIndex, dstIndex, src, dst)
	case !dstInSrc:
		cdr3Distance := CDR3Distance(src.CDR3Seq(), dst.CDR3Seq())
		shared := sharedV + sharedJ
		private := src.NumSHMs() - shared + dst.NumSHMs() - shared
		doubleMutated := clones.PrivateSHMsIdenticallyPositioned(src.VSHMs, dst.VSHMs) &&
			clones.PrivateSHMsIdenticallyPositioned(src.JSHMs, dst.JSHMs)
		return Edge{
			Src:           srcIndex,
			Dst:           dstIndex,
			Kind:          Intersected,
			Length:        cdr3Distance + private,
			AddedShms:     private,
			SharedShms:    shared,
			SharedVShms:   sharedV,
			CDR3Distance:  cdr3Distance,
			DoubleMutated: doubleMutated,
		}
	default:
		return Edge{
			Src:    srcIndex,
			Dst:    dstIndex,
			Kind:   NoEdge,
			Length: NoEdgeLength,
		}
	}
}
