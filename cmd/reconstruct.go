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
	"bytes"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"github.com/exascience/cloneforest/clones"
	"github.com/exascience/cloneforest/decompose"
	"github.com/exascience/cloneforest/lineage"
	"github.com/exascience/cloneforest/trees"
)

// ReconstructHelp is the help string for the reconstruct command.
const ReconstructHelp = "\nreconstruct parameters:\n" +
	"cloneforest reconstruct --clones clones-file --output output-dir\n" +
	"[--config yaml-file]\n" +
	"[--decomposition decomposition-file]\n" +
	"[--criterion [v | vj]]\n" +
	"[--strategy [homoplasy | edmonds]]\n" +
	"[--no-ancestors]\n" +
	"[--dot]\n" +
	"[--nr-of-threads nr]\n" +
	"[--timed]\n" +
	"[--log-path path]\n"

// Output directories and files, relative to the output directory.
const (
	TreesDir               = "clonal_trees"
	VerticesDir            = "clonal_tree_vertices"
	DotDir                 = "clonal_tree_dot"
	CDR3DistancesFile      = "cdr3_distances.txt"
	CDR3PercentagesFile    = "cdr3_distance_percentages.txt"
	CDR3DistanceLengthFile = "cdr3_distance_lengths.txt"
)

type reconstructOptions struct {
	clonesFile, output, configFile string
	decompositionFile, criterion   string
	strategy, logPath              string
	threads                        int
	noAncestors, dot, timed        bool
}

func newReconstructCmd() *cobra.Command {
	var opts reconstructOptions
	cmd := &cobra.Command{
		Use:   "reconstruct",
		Short: "Reconstruct clonal lineage trees from annotated clones",
		Long: `Reconstruct partitions the annotated clones into classes, splits each
class into groups of clones with similar CDR3 sequences, and computes a
forest of clonal lineage trees for every group.
` + ReconstructHelp,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if opts.logPath != "" {
				setLogOutput(opts.logPath)
			}
			config, err := opts.config(cmd.Flags())
			if err != nil {
				return err
			}
			return reconstruct(cmd.OutOrStdout(), &opts, config)
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&opts.clonesFile, "clones", "", "annotated clone file, optionally gzip-compressed")
	flags.StringVar(&opts.output, "output", "", "output directory")
	flags.StringVar(&opts.configFile, "config", "", "YAML configuration file")
	flags.StringVar(&opts.decompositionFile, "decomposition", "", "precomputed decomposition file, one class number per clone")
	flags.StringVar(&opts.criterion, "criterion", decompose.ByV.String(), "decomposition criterion when no decomposition file is given (v or vj)")
	flags.StringVar(&opts.strategy, "strategy", lineage.StrategyHomoplasy.String(), "tree strategy (homoplasy or edmonds)")
	flags.BoolVar(&opts.noAncestors, "no-ancestors", false, "do not reconstruct fake common ancestors")
	flags.BoolVar(&opts.dot, "dot", false, "also export trees as dot graphs")
	flags.IntVar(&opts.threads, "nr-of-threads", 0, "number of worker threads (default: all available)")
	flags.BoolVar(&opts.timed, "timed", false, "log elapsed time per phase")
	flags.StringVar(&opts.logPath, "log-path", "", "directory for the log file")
	return cmd
}

// config combines the defaults, the configuration file and the
// command line. Only flags set on the command line override the file.
func (opts *reconstructOptions) config(flags *pflag.FlagSet) (lineage.Config, error) {
	config := lineage.DefaultConfig()
	if opts.configFile != "" {
		if !checkExist("--config", opts.configFile) {
			return config, errors.New("sanity checks failed")
		}
		if err := readConfigFile(opts.configFile, &config); err != nil {
			return config, err
		}
	}
	if flags.Changed("strategy") {
		strategy, err := lineage.ParseStrategy(opts.strategy)
		if err != nil {
			return config, err
		}
		config.Strategy = strategy
	}
	if flags.Changed("nr-of-threads") {
		config.Threads = opts.threads
	}
	if flags.Changed("no-ancestors") {
		config.ReconstructAncestors = !opts.noAncestors
	}
	return config, config.Validate()
}

func (opts *reconstructOptions) commandString(config *lineage.Config) string {
	var command bytes.Buffer
	fmt.Fprint(&command, os.Args[0], " reconstruct --clones ", opts.clonesFile, " --output ", opts.output)
	if opts.configFile != "" {
		fmt.Fprint(&command, " --config ", opts.configFile)
	}
	if opts.decompositionFile != "" {
		fmt.Fprint(&command, " --decomposition ", opts.decompositionFile)
	} else {
		fmt.Fprint(&command, " --criterion ", opts.criterion)
	}
	fmt.Fprint(&command, " --strategy ", config.Strategy)
	if !config.ReconstructAncestors {
		fmt.Fprint(&command, " --no-ancestors")
	}
	if opts.dot {
		fmt.Fprint(&command, " --dot")
	}
	fmt.Fprint(&command, " --nr-of-threads ", config.Threads)
	if opts.timed {
		fmt.Fprint(&command, " --timed")
	}
	if opts.logPath != "" {
		fmt.Fprint(&command, " --log-path ", opts.logPath)
	}
	return command.String()
}

func reconstruct(out io.Writer, opts *reconstructOptions, config lineage.Config) error {
	sanityChecksFailed := false
	if !checkExist("--clones", opts.clonesFile) {
		sanityChecksFailed = true
	}
	if opts.decompositionFile != "" && !checkExist("--decomposition", opts.decompositionFile) {
		sanityChecksFailed = true
	}
	if !checkCreateDir("--output", opts.output) {
		sanityChecksFailed = true
	}
	criterion, err := decompose.ParseCriterion(opts.criterion)
	if err != nil {
		log.Println("Error:", err)
		sanityChecksFailed = true
	}
	if sanityChecksFailed {
		return errors.New("sanity checks failed" + ReconstructHelp)
	}

	runID := uuid.New()
	log.Println("Run", runID)
	log.Println("Executing command:\n", opts.commandString(&config))

	var set clones.Set
	if err := timedRun(opts.timed, "Reading clones.", func() (err error) {
		set, err = clones.ParseClonesFile(opts.clonesFile)
		return err
	}); err != nil {
		return err
	}
	log.Printf("Read %v clones from %v.", len(set), opts.clonesFile)

	var classes []decompose.Class
	if err := timedRun(opts.timed, "Decomposing clones.", func() (err error) {
		if opts.decompositionFile != "" {
			classes, err = decompose.ReadDecompositionFile(opts.decompositionFile, len(set))
		} else {
			classes = decompose.DecomposeClones(set, criterion)
		}
		if err == nil {
			err = decompose.CheckPartition(classes, len(set))
		}
		return err
	}); err != nil {
		return err
	}

	var components []decompose.Component
	_ = timedRun(opts.timed, "Building connected components.", func() error {
		components = decompose.BuildAllComponents(classes, set, decompose.HammingGraph{}, config.MismatchesFor)
		return nil
	})
	log.Printf("Found %v classes with %v connected components.", len(classes), len(components))

	var result *lineage.Result
	_ = timedRun(opts.timed, "Reconstructing lineage trees.", func() error {
		result = lineage.NewProcessor(set, components, config).Process()
		return nil
	})

	if err := timedRun(opts.timed, "Exporting lineage trees.", func() error {
		return exportResult(opts.output, result, opts.dot, config.Threads)
	}); err != nil {
		return err
	}

	return writeSummary(out, &runSummary{
		runID:   runID,
		clones:  len(set),
		classes: len(classes),
		result:  result,
	})
}

// exportResult writes one edge list and one vertex file per tree
// concurrently, followed by the CDR3 distance statistics.
func exportResult(output string, result *lineage.Result, dot bool, threads int) error {
	treeDir := filepath.Join(output, TreesDir)
	vertexDir := filepath.Join(output, VerticesDir)
	dotDir := ""
	dirs := []string{treeDir, vertexDir}
	if dot {
		dotDir = filepath.Join(output, DotDir)
		dirs = append(dirs, dotDir)
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return err
		}
	}

	var g errgroup.Group
	g.SetLimit(threads)
	for _, tree := range result.Trees.Trees() {
		tree := tree
		g.Go(func() error {
			return trees.WriteTreeFiles(tree, treeDir, vertexDir, dotDir)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	stats := result.Stats
	for _, file := range []struct {
		name  string
		write func(io.Writer) error
	}{
		{CDR3DistancesFile, stats.WriteDistances},
		{CDR3PercentagesFile, stats.WritePercentages},
		{CDR3DistanceLengthFile, stats.WriteDistanceLengths},
	} {
		if err := writeOutputFile(filepath.Join(output, file.name), file.write); err != nil {
			return err
		}
	}
	return nil
}
