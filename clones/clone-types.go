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

	"github.com/exascience/cloneforest/utils"
)

// ChainType identifies the immune receptor chain a clone belongs to.
type ChainType uint8

// Supported chain types.
const (
	UnknownChain ChainType = iota
	HeavyChain
	KappaChain
	LambdaChain
	AlphaChain
	BetaChain
	GammaChain
	DeltaChain
)

var chainNames = [...]string{"?", "IGH", "IGK", "IGL", "TRA", "TRB", "TRG", "TRD"}

func (c ChainType) String() string {
	if int(c) < len(chainNames) {
		return chainNames[c]
	}
	return chainNames[UnknownChain]
}

// ParseChainType returns the chain type for its locus name, for
// example IGH or TRB.
func ParseChainType(s string) (ChainType, error) {
	for i, name := range chainNames {
		if name == s {
			return ChainType(i), nil
		}
	}
	return UnknownChain, fmt.Errorf("unknown chain type %v", s)
}

// A Range is a half-open interval [Start, End) of read positions.
type Range struct {
	Start, End int32
}

// Empty is true if the range does not contain any positions.
func (r Range) Empty() bool {
	return r.End <= r.Start
}

// Len returns the number of positions in the range.
func (r Range) Len() int {
	if r.Empty() {
		return 0
	}
	return int(r.End - r.Start)
}

// Region is a structural region of a receptor sequence.
type Region uint8

// Structural regions with an annotated range.
const (
	CDR1 Region = iota
	CDR2
	CDR3
)

func (r Region) String() string {
	switch r {
	case CDR1:
		return "CDR1"
	case CDR2:
		return "CDR2"
	case CDR3:
		return "CDR3"
	default:
		return "?"
	}
}

// An SHM is a somatic hypermutation: a point difference between the
// read and its germline gene.
type SHM struct {
	GenePos, ReadPos   int32
	GeneNucl, ReadNucl byte
}

// SameAs compares two SHMs on gene position and bases. Read
// positions are not compared, because indels elsewhere in a read
// shift them without changing the mutation.
func (shm SHM) SameAs(other SHM) bool {
	return shm.GenePos == other.GenePos && shm.GeneNucl == other.GeneNucl && shm.ReadNucl == other.ReadNucl
}

func (shm SHM) String() string {
	return fmt.Sprintf("%d:%c>%c", shm.GenePos, shm.GeneNucl, shm.ReadNucl)
}

// A Clone is an annotated read: a sequence with V/J gene calls, CDR
// ranges and the SHMs of its V and J segments. Clones are identified
// by their index in a Set or an Arena.
//
// Real clones are not modified once annotated. Fake clones are
// inferred ancestors synthesized during lineage reconstruction.
type Clone struct {
	Name  string
	Read  string
	Chain ChainType

	VGene, JGene utils.Symbol

	CDR1, CDR2, CDR3 Range

	// VSHMs and JSHMs are sorted by gene position, see SortSHMs.
	VSHMs, JSHMs []SHM

	Productive   bool
	InFrame      bool
	HasStopCodon bool
	Fake         bool
}

// RegionRange returns the annotated range of a structural region.
func (clone *Clone) RegionRange(region Region) Range {
	switch region {
	case CDR1:
		return clone.CDR1
	case CDR2:
		return clone.CDR2
	default:
		return clone.CDR3
	}
}

// RegionIsEmpty is true if the clone has no (valid) annotation for the
// given region.
func (clone *Clone) RegionIsEmpty(region Region) bool {
	r := clone.RegionRange(region)
	return r.Empty() || int(r.End) > len(clone.Read)
}

// CDR3Seq returns the CDR3 nucleotides, or the empty string when the
// CDR3 region is empty.
func (clone *Clone) CDR3Seq() string {
	if clone.RegionIsEmpty(CDR3) {
		return ""
	}
	return clone.Read[clone.CDR3.Start:clone.CDR3.End]
}

// NumSHMs returns the total number of V and J SHMs.
func (clone *Clone) NumSHMs() int {
	return len(clone.VSHMs) + len(clone.JSHMs)
}

// VGeneName returns the V gene call, or the empty string.
func (clone *Clone) VGeneName() string {
	return utils.SymbolString(clone.VGene)
}

// JGeneName returns the J gene call, or the empty string.
func (clone *Clone) JGeneName() string {
	return utils.SymbolString(clone.JGene)
}

// Copy returns a shallow copy of the clone with its own SHM slices.
func (clone *Clone) Copy() *Clone {
	c := *clone
	c.VSHMs = append([]SHM(nil), clone.VSHMs...)
	c.JSHMs = append([]SHM(nil), clone.JSHMs...)
	return &c
}

// A Source gives access to clones by index. Lineage trees refer to
// their vertices through a Source.
type Source interface {
	Clone(index int) *Clone
}

// A Set is the read-only collection of real clones of a run. The
// index of a clone in the Set is its identifier.
type Set []*Clone

// Clone returns the clone with the given index.
func (set Set) Clone(index int) *Clone {
	return set[index]
}

// Len returns the number of clones in the set.
func (set Set) Len() int {
	return len(set)
}
