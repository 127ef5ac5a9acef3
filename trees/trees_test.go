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

package trees

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/exascience/cloneforest/clones"
	"github.com/exascience/cloneforest/edges"
	"github.com/exascience/cloneforest/fasta"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSet(n int) clones.Set {
	set := make(clones.Set, n)
	for i := range set {
		set[i] = &clones.Clone{
			Name: fmt.Sprintf("c%d", i),
			Read: "ACGTACGT",
			CDR3: clones.Range{Start: 2, End: 6},
		}
	}
	return set
}

func directed(src, dst, length int) edges.Edge {
	return edges.Edge{Src: src, Dst: dst, Kind: edges.Directed, Length: length, AddedShms: length}
}

// testForest has roots 0, 5 and 7:
//
//	0 -> 1 -> 2, 0 -> 3 -> 4, 5 -> 6, 7
func testForest() *Tree {
	tree := NewTree(testSet(8))
	tree.SetTreeIndices(3, 4, 0)
	tree.AddEdge(directed(0, 1, 1))
	tree.AddEdge(directed(1, 2, 2))
	tree.AddEdge(directed(0, 3, 1))
	tree.AddEdge(edges.Edge{Src: 3, Dst: 4, Kind: edges.Undirected})
	tree.AddEdge(directed(5, 6, 3))
	tree.AddVertex(7)
	return tree
}

func TestTreeQueries(t *testing.T) {
	tree := testForest()
	assert.Equal(t, []int{0, 5, 7}, tree.Roots())
	assert.Equal(t, 3, tree.RootCount())
	assert.Equal(t, 8, tree.NumVertices())
	assert.Equal(t, 5, tree.NumEdges())
	assert.True(t, tree.IsRoot(0))
	assert.False(t, tree.IsRoot(1))
	assert.False(t, tree.IsRoot(42))
	assert.True(t, tree.IsLeaf(2))
	assert.True(t, tree.IsLeaf(7))
	assert.False(t, tree.IsLeaf(0))
	assert.Len(t, tree.OutgoingEdges(0), 2)
	assert.Equal(t, 2, tree.Depth(2))
	assert.Equal(t, 0, tree.Depth(5))
	edge, ok := tree.ParentEdge(4)
	require.True(t, ok)
	assert.Equal(t, 3, edge.Src)
	_, ok = tree.ParentEdge(0)
	assert.False(t, ok)
}

func TestAddEdgeViolations(t *testing.T) {
	tree := testForest()
	assert.Panics(t, func() { tree.AddEdge(directed(5, 2, 1)) })
	assert.Panics(t, func() { tree.AddEdge(directed(6, 6, 1)) })
	assert.Panics(t, func() { tree.AddEdge(directed(2, 0, 1)) })
	assert.Panics(t, func() { tree.AddAlternative(directed(0, 42, 1)) })
}

func TestSplitRoundTrip(t *testing.T) {
	tree := testForest()
	tree.AddAlternative(directed(5, 2, 4))
	split := Split(tree)
	require.Len(t, split, tree.RootCount())

	var union []edges.Edge
	vertices := 0
	for i, subtree := range split {
		assert.Equal(t, 1, subtree.RootCount())
		assert.Equal(t, Index{Class: 3, Component: 4, Subtree: i}, subtree.Index())
		union = append(union, subtree.Edges()...)
		vertices += subtree.NumVertices()
	}
	assert.ElementsMatch(t, tree.Edges(), union)
	assert.Equal(t, tree.NumVertices(), vertices)

	assert.Equal(t, []int{0}, split[0].Roots())
	assert.Equal(t, []int{0, 1, 2, 3, 4}, split[0].Vertices())
	assert.Len(t, split[0].Alternatives(2), 1)
	assert.Equal(t, []int{7}, split[2].Vertices())
}

func TestSplitSingleRoot(t *testing.T) {
	tree := NewTree(testSet(3))
	tree.AddEdge(directed(0, 1, 1))
	tree.AddEdge(directed(0, 2, 1))
	split := Split(tree)
	require.Len(t, split, 1)
	assert.Same(t, tree, split[0])
}

func TestSplitRejectsIntersectedEdges(t *testing.T) {
	tree := testForest()
	tree.AddEdge(edges.Edge{Src: 7, Dst: 5, Kind: edges.Intersected})
	assert.Panics(t, func() { Split(tree) })
}

func TestMergeStorages(t *testing.T) {
	set := testSet(1)
	newTree := func(class, component, subtree int) *Tree {
		tree := NewTree(set)
		tree.AddVertex(0)
		tree.SetTreeIndices(class, component, subtree)
		return tree
	}
	s1, s2 := NewStorage(), NewStorage()
	s1.Add(newTree(1, 0, 1))
	s1.Add(newTree(0, 2, 0))
	s2.Add(newTree(1, 0, 0))
	s2.Add(newTree(0, 1, 0))
	merged := MergeStorages([]*Storage{s1, s2})
	require.Equal(t, 4, merged.Len())
	var indices []string
	for _, tree := range merged.Trees() {
		indices = append(indices, tree.Index().String())
	}
	assert.Equal(t, []string{"0-1-0", "0-2-0", "1-0-0", "1-0-1"}, indices)
	assert.Equal(t, 4, merged.NumVertices())
}

func TestWriteEdgeList(t *testing.T) {
	tree := testForest()
	var buf bytes.Buffer
	require.NoError(t, WriteEdgeList(&buf, tree))
	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	require.Len(t, lines, 6)
	assert.Equal(t, strings.TrimSuffix(EdgeListHeader, "\n"), lines[0])
	assert.Equal(t, "0\t1\tc0\tc1\t0\t1\tdirected\t1\t0\t0\t1", lines[1])
	assert.Equal(t, "3\t4\tc3\tc4\t1\t2\tundirected\t0\t0\t0\t0", lines[4])
}

func TestWriteVerticesAndDot(t *testing.T) {
	tree := testForest()
	var buf bytes.Buffer
	require.NoError(t, WriteVertices(&buf, tree))
	records, err := fasta.ParseFasta(&buf, false)
	require.NoError(t, err)
	require.Len(t, records, 8)
	assert.Equal(t, "c0", records[0].Name)
	assert.Equal(t, "ACGTACGT", string(records[0].Seq))

	buf.Reset()
	tree.AddAlternative(directed(5, 2, 4))
	require.NoError(t, WriteDot(&buf, tree))
	dot := buf.String()
	assert.True(t, strings.HasPrefix(dot, "digraph \"clonal_tree_3-4-0\" {\n"))
	assert.Contains(t, dot, "  1 -> 2 [label=\"2\"];\n")
	assert.Contains(t, dot, "  5 -> 2 [label=\"4\", style=dashed];\n")
}

func TestWriteTreeFiles(t *testing.T) {
	dir := t.TempDir()
	tree := testForest()
	require.NoError(t, WriteTreeFiles(tree, dir, dir, dir))
	for _, name := range []string{FileName(tree.Index()), VerticesFileName(tree.Index()), DotFileName(tree.Index())} {
		_, err := os.Stat(filepath.Join(dir, name))
		assert.NoError(t, err, name)
	}
	assert.Error(t, WriteTreeFiles(tree, filepath.Join(dir, "missing"), dir, ""))
}
