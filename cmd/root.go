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


// Package cmd implements the cloneforest command line.
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/exascience/cloneforest/utils"
)

// NewRootCmd creates the cloneforest command with all its
// subcommands.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   utils.ProgramName,
		Short: "Clonal lineage tree reconstruction for immune repertoires",
		Long: `cloneforest reconstructs clonal lineage trees from annotated antibody
and T-cell receptor clones, using the somatic hypermutations of every
clone relative to its germline V and J genes.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.AddCommand(newReconstructCmd(), newDecomposeCmd(), newVersionCmd())
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print program information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprint(cmd.OutOrStdout(), ProgramMessage)
			return err
		},
	}
}
