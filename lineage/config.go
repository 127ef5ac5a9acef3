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

// Package lineage reconstructs clonal lineage trees for the connected
// components of a clone set, in parallel.
package lineage

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/exascience/cloneforest/clones"
	"github.com/exascience/cloneforest/edges"
)

// Strategy selects how the tree of a connected component is computed.
type Strategy uint8

const (
	// StrategyHomoplasy refines the optimum branching with near-optimal
	// alternative parents and removes transitive edges.
	StrategyHomoplasy Strategy = iota

	// StrategyEdmonds uses the optimum branching as is.
	StrategyEdmonds
)

func (strategy Strategy) String() string {
	if strategy == StrategyEdmonds {
		return "edmonds"
	}
	return "homoplasy"
}

// ParseStrategy parses "homoplasy" or "edmonds".
func ParseStrategy(s string) (Strategy, error) {
	switch s {
	case "homoplasy":
		return StrategyHomoplasy, nil
	case "edmonds":
		return StrategyEdmonds, nil
	default:
		return StrategyHomoplasy, fmt.Errorf("unknown strategy %v, expected homoplasy or edmonds", s)
	}
}

// Default algorithm parameters.
const (
	DefaultEdgeCoef             = 2.0
	DefaultEdgeLengthThreshold  = 100
	DefaultMinIntersectedVShms  = 3
	DefaultIntersectedEdgeCoeff = 0.5
	DefaultMismatches           = 2
)

/*
EdgeWeightFunc scores a candidate edge between two clones, for
example with a statistical mutation model. Higher scores are better.

When no EdgeWeightFunc is configured, branchings minimize the
structural edge length instead.
*/
type EdgeWeightFunc func(edge edges.Edge, src, dst *clones.Clone) float64

// Config holds the parameters of a reconstruction run.
type Config struct {
	Strategy Strategy

	// Threads is the number of workers.
	Threads int

	// StripeWidth is the number of fake clone indices reserved per
	// worker.
	StripeWidth int

	// Mismatches is the CDR3 similarity threshold per chain type, with
	// DefaultMismatches for chain types not in the map.
	Mismatches        map[clones.ChainType]int
	DefaultMismatches int

	// Homoplasy refinement: alternative parents are kept when their
	// length is below EdgeCoef times the best length, which defaults
	// to EdgeLengthThreshold when there is no best length.
	EdgeCoef            float64
	EdgeLengthThreshold int

	// Ancestor reconstruction joins two roots under a fake common
	// ancestor when they share at least MinIntersectedVShms V SHMs, and
	// at least IntersectedEdgeCoeff times as many SHMs as they do not
	// share.
	ReconstructAncestors bool
	MinIntersectedVShms  int
	IntersectedEdgeCoeff float64

	EdgeWeight  EdgeWeightFunc
	Reannotator Reannotator
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Strategy:    StrategyHomoplasy,
		Threads:     runtime.GOMAXPROCS(0),
		StripeWidth: clones.DefaultStripeWidth,
		Mismatches: map[clones.ChainType]int{
			clones.HeavyChain:  3,
			clones.KappaChain:  2,
			clones.LambdaChain: 2,
		},
		DefaultMismatches:    DefaultMismatches,
		EdgeCoef:             DefaultEdgeCoef,
		EdgeLengthThreshold:  DefaultEdgeLengthThreshold,
		ReconstructAncestors: true,
		MinIntersectedVShms:  DefaultMinIntersectedVShms,
		IntersectedEdgeCoeff: DefaultIntersectedEdgeCoeff,
	}
}

// MismatchesFor returns the CDR3 similarity threshold for a chain type.
func (config *Config) MismatchesFor(chain clones.ChainType) int {
	if tau, ok := config.Mismatches[chain]; ok {
		return tau
	}
	return config.DefaultMismatches
}

func (config *Config) reannotator() Reannotator {
	if config.Reannotator == nil {
		return GeneReassigner{}
	}
	return config.Reannotator
}

// Validate checks the configuration for parameters out of range.
func (config *Config) Validate() error {
	var errs []error
	if config.Threads < 1 {
		errs = append(errs, fmt.Errorf("number of threads must be positive, got %v", config.Threads))
	}
	if config.StripeWidth < 1 {
		errs = append(errs, fmt.Errorf("stripe width must be positive, got %v", config.StripeWidth))
	}
	if config.DefaultMismatches < 0 {
		errs = append(errs, fmt.Errorf("number of mismatches must not be negative, got %v", config.DefaultMismatches))
	}
	for chain, tau := range config.Mismatches {
		if tau < 0 {
			errs = append(errs, fmt.Errorf("number of mismatches for %v must not be negative, got %v", chain, tau))
		}
	}
	if config.EdgeCoef <= 0 {
		errs = append(errs, fmt.Errorf("edge coefficient must be positive, got %v", config.EdgeCoef))
	}
	if config.EdgeLengthThreshold <= 0 {
		errs = append(errs, fmt.Errorf("edge length threshold must be positive, got %v", config.EdgeLengthThreshold))
	}
	if config.MinIntersectedVShms < 0 {
		errs = append(errs, fmt.Errorf("minimum number of intersected V SHMs must not be negative, got %v", config.MinIntersectedVShms))
	}
	if config.IntersectedEdgeCoeff < 0 {
		errs = append(errs, fmt.Errorf("intersected edge coefficient must not be negative, got %v", config.IntersectedEdgeCoeff))
	}
	return errors.Join(errs...)
}
