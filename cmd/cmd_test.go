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
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/exascience/cloneforest/clones"
	"github.com/exascience/cloneforest/lineage"
	"github.com/exascience/cloneforest/utils"
)

const prefix = "AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"

func testClone(name, vGene string, vSHMs ...clones.SHM) *clones.Clone {
	const cdr3 = "GCGAGAGA"
	return &clones.Clone{
		Name:       name,
		Read:       prefix + cdr3,
		Chain:      clones.HeavyChain,
		VGene:      utils.Intern(vGene),
		JGene:      utils.Intern("IGHJ4*02"),
		CDR3:       clones.Range{Start: int32(len(prefix)), End: int32(len(prefix) + len(cdr3))},
		VSHMs:      vSHMs,
		Productive: true,
		InFrame:    true,
	}
}

func shm(pos int32, from, to byte) clones.SHM {
	return clones.SHM{GenePos: pos, ReadPos: pos, GeneNucl: from, ReadNucl: to}
}

func writeTestClones(t *testing.T, dir string) string {
	filename := filepath.Join(dir, "clones.tsv")
	require.NoError(t, clones.WriteClonesFile(filename, []*clones.Clone{
		testClone("r", "IGHV1-2*01"),
		testClone("b", "IGHV1-2*01", shm(10, 'A', 'G')),
		testClone("c", "IGHV1-2*01", shm(10, 'A', 'G'), shm(20, 'C', 'T')),
		testClone("d", "IGHV1-2*01", shm(20, 'C', 'T')),
		testClone("e", "IGHV3-23*01", shm(5, 'G', 'A')),
	}))
	return filename
}

func TestReadConfig(t *testing.T) {
	config := lineage.DefaultConfig()
	require.NoError(t, readConfig(strings.NewReader(`
strategy: edmonds
num_threads: 3
num_mismatches:
  IGH: 4
edge_coef: 1.5
reconstruct_ancestors: false
`), &config))
	assert.Equal(t, lineage.StrategyEdmonds, config.Strategy)
	assert.Equal(t, 3, config.Threads)
	assert.Equal(t, 4, config.MismatchesFor(clones.HeavyChain))
	assert.Equal(t, 2, config.MismatchesFor(clones.KappaChain))
	assert.Equal(t, 1.5, config.EdgeCoef)
	assert.False(t, config.ReconstructAncestors)
	assert.Equal(t, lineage.DefaultEdgeLengthThreshold, config.EdgeLengthThreshold)

	config = lineage.DefaultConfig()
	require.NoError(t, readConfig(strings.NewReader(""), &config))
	assert.Equal(t, lineage.DefaultConfig().Strategy, config.Strategy)

	assert.Error(t, readConfig(strings.NewReader("edge_coeff: 2\n"), &config), "unknown key")
	assert.Error(t, readConfig(strings.NewReader("strategy: greedy\n"), &config))
	assert.Error(t, readConfig(strings.NewReader("num_mismatches:\n  XYZ: 1\n"), &config))
}

func TestFlagsOverrideConfigFile(t *testing.T) {
	dir := t.TempDir()
	configFile := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(configFile, []byte("strategy: edmonds\nnum_threads: 7\n"), 0o644))

	opts := reconstructOptions{configFile: configFile}
	flags := pflag.NewFlagSet("reconstruct", pflag.ContinueOnError)
	flags.StringVar(&opts.strategy, "strategy", "homoplasy", "")
	flags.IntVar(&opts.threads, "nr-of-threads", 0, "")
	flags.BoolVar(&opts.noAncestors, "no-ancestors", false, "")
	require.NoError(t, flags.Parse([]string{"--nr-of-threads", "3", "--no-ancestors"}))

	config, err := opts.config(flags)
	require.NoError(t, err)
	assert.Equal(t, lineage.StrategyEdmonds, config.Strategy)
	assert.Equal(t, 3, config.Threads)
	assert.False(t, config.ReconstructAncestors)

	require.NoError(t, flags.Parse([]string{"--nr-of-threads", "0"}))
	_, err = opts.config(flags)
	assert.Error(t, err)
}

func TestReconstructCommand(t *testing.T) {
	dir := t.TempDir()
	clonesFile := writeTestClones(t, dir)
	output := filepath.Join(dir, "out")

	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"reconstruct", "--clones", clonesFile, "--output", output, "--nr-of-threads", "2", "--dot"})
	require.NoError(t, root.Execute())

	for _, name := range []string{
		filepath.Join(TreesDir, "clonal_tree_0-0-0.tree"),
		filepath.Join(TreesDir, "clonal_tree_1-0-0.tree"),
		filepath.Join(VerticesDir, "clonal_tree_0-0-0.fa"),
		filepath.Join(DotDir, "clonal_tree_1-0-0.dot"),
		CDR3DistancesFile,
		CDR3PercentagesFile,
		CDR3DistanceLengthFile,
	} {
		assert.FileExists(t, filepath.Join(output, name))
	}

	edgeList, err := os.ReadFile(filepath.Join(output, TreesDir, "clonal_tree_0-0-0.tree"))
	require.NoError(t, err)
	assert.Len(t, strings.Split(strings.TrimSpace(string(edgeList)), "\n"), 4, "header and three edges")

	summary := out.String()
	assert.Contains(t, summary, "tree vertices")
	assert.Contains(t, summary, "related CDR3 pairs")
}

func TestReconstructSanityChecks(t *testing.T) {
	dir := t.TempDir()
	root := NewRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetArgs([]string{"reconstruct", "--clones", filepath.Join(dir, "missing.tsv"), "--output", dir})
	assert.Error(t, root.Execute())

	root = NewRootCmd()
	root.SetArgs([]string{"reconstruct", "--clones", writeTestClones(t, dir), "--output", dir, "--criterion", "j"})
	assert.Error(t, root.Execute())
}

func TestDecomposeCommand(t *testing.T) {
	dir := t.TempDir()
	output := filepath.Join(dir, "decomposition.txt")
	root := NewRootCmd()
	root.SetArgs([]string{"decompose", "--clones", writeTestClones(t, dir), "--output", output})
	require.NoError(t, root.Execute())

	content, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Equal(t, "0\n0\n0\n0\n1\n", string(content))
}

func TestVersionCommand(t *testing.T) {
	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"version"})
	require.NoError(t, root.Execute())
	assert.Contains(t, out.String(), utils.ProgramVersion)
}
