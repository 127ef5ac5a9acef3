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


package cmd

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/exascience/cloneforest/clones"
	"github.com/exascience/cloneforest/lineage"
)

// fileConfig is the YAML layout of a configuration file. Absent
// entries keep their default values.
type fileConfig struct {
	Strategy             *string        `yaml:"strategy"`
	Threads              *int           `yaml:"num_threads"`
	StripeWidth          *int           `yaml:"stripe_width"`
	Mismatches           map[string]int `yaml:"num_mismatches"`
	DefaultMismatches    *int           `yaml:"default_num_mismatches"`
	EdgeCoef             *float64       `yaml:"edge_coef"`
	EdgeLengthThreshold  *int           `yaml:"edge_length_threshold"`
	ReconstructAncestors *bool          `yaml:"reconstruct_ancestors"`
	MinIntersectedVShms  *int           `yaml:"min_num_intersected_v_shms"`
	IntersectedEdgeCoeff *float64       `yaml:"intersected_edge_coeff"`
}

func (fc *fileConfig) apply(config *lineage.Config) error {
	if fc.Strategy != nil {
		strategy, err := lineage.ParseStrategy(*fc.Strategy)
		if err != nil {
			return err
		}
		config.Strategy = strategy
	}
	if fc.Threads != nil {
		config.Threads = *fc.Threads
	}
	if fc.StripeWidth != nil {
		config.StripeWidth = *fc.StripeWidth
	}
	for name, tau := range fc.Mismatches {
		chain, err := clones.ParseChainType(name)
		if err != nil {
			return fmt.Errorf("num_mismatches: %w", err)
		}
		config.Mismatches[chain] = tau
	}
	if fc.DefaultMismatches != nil {
		config.DefaultMismatches = *fc.DefaultMismatches
	}
	if fc.EdgeCoef != nil {
		config.EdgeCoef = *fc.EdgeCoef
	}
	if fc.EdgeLengthThreshold != nil {
		config.EdgeLengthThreshold = *fc.EdgeLengthThreshold
	}
	if fc.ReconstructAncestors != nil {
		config.ReconstructAncestors = *fc.ReconstructAncestors
	}
	if fc.MinIntersectedVShms != nil {
		config.MinIntersectedVShms = *fc.MinIntersectedVShms
	}
	if fc.IntersectedEdgeCoeff != nil {
		config.IntersectedEdgeCoeff = *fc.IntersectedEdgeCoeff
	}
	return nil
}

// readConfig overlays the YAML configuration in reader on config.
// Unknown keys are errors.
func readConfig(reader io.Reader, config *lineage.Config) error {
	var fc fileConfig
	decoder := yaml.NewDecoder(reader)
	decoder.KnownFields(true)
	if err := decoder.Decode(&fc); err != nil && err != io.EOF {
		return err
	}
	return fc.apply(config)
}

func readConfigFile(filename string, config *lineage.Config) (err error) {
	file, err := os.Open(filename)
	if err != nil {
		return err
	}
	defer func() {
		if nerr := file.Close(); err == nil {
			err = nerr
		}
	}()
	if err = readConfig(file, config); err != nil {
		err = fmt.Errorf("%v: %w", filename, err)
	}
	return err
}
