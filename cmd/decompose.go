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
	"errors"
	"io"
	"log"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/exascience/cloneforest/clones"
	"github.com/exascience/cloneforest/decompose"
)

// DecomposeHelp is the help string for the decompose command.
const DecomposeHelp = "\ndecompose parameters:\n" +
	"cloneforest decompose --clones clones-file --output decomposition-file\n" +
	"[--criterion [v | vj]]\n" +
	"[--log-path path]\n"

type decomposeOptions struct {
	clonesFile, output, criterion, logPath string
}

func newDecomposeCmd() *cobra.Command {
	var opts decomposeOptions
	cmd := &cobra.Command{
		Use:   "decompose",
		Short: "Write the decomposition of annotated clones into gene classes",
		Long: `Decompose groups annotated clones by their V gene, or by their V and J
genes, and writes the class number of every clone in the format
accepted by reconstruct --decomposition.
` + DecomposeHelp,
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			if opts.logPath != "" {
				setLogOutput(opts.logPath)
			}
			return decomposeClones(&opts)
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&opts.clonesFile, "clones", "", "annotated clone file, optionally gzip-compressed")
	flags.StringVar(&opts.output, "output", "", "decomposition file to write")
	flags.StringVar(&opts.criterion, "criterion", decompose.ByV.String(), "decomposition criterion (v or vj)")
	flags.StringVar(&opts.logPath, "log-path", "", "directory for the log file")
	return cmd
}

func decomposeClones(opts *decomposeOptions) error {
	sanityChecksFailed := false
	if !checkExist("--clones", opts.clonesFile) {
		sanityChecksFailed = true
	}
	if opts.output == "" {
		log.Println("Error: Missing filename for command line parameter --output.")
		sanityChecksFailed = true
	} else if !checkCreateDir("--output", filepath.Dir(opts.output)) {
		sanityChecksFailed = true
	}
	criterion, err := decompose.ParseCriterion(opts.criterion)
	if err != nil {
		log.Println("Error:", err)
		sanityChecksFailed = true
	}
	if sanityChecksFailed {
		return errors.New("sanity checks failed" + DecomposeHelp)
	}

	set, err := clones.ParseClonesFile(opts.clonesFile)
	if err != nil {
		return err
	}
	classes := decompose.DecomposeClones(set, criterion)
	log.Printf("Decomposed %v clones into %v classes by %v.", len(set), len(classes), criterion)
	return writeOutputFile(opts.output, func(w io.Writer) error {
		return decompose.WriteDecomposition(w, classes, len(set))
	})
}
