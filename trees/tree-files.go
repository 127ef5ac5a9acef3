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
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/exascience/cloneforest/fasta"
)

// EdgeListHeader is the header line of exported edge lists.
const EdgeListHeader = "Src_id\tDst_id\tSrc_clone\tDst_clone\tSrc_depth\tDst_depth\tEdge_type\tNum_added_shms\tNum_shared_shms\tCDR3_dist\tEdge_len\n"

// FileName returns the base name of the exported edge list of a tree.
func FileName(index Index) string {
	return "clonal_tree_" + index.String() + ".tree"
}

// VerticesFileName returns the base name of the exported vertex
// sequences of a tree.
func VerticesFileName(index Index) string {
	return "clonal_tree_" + index.String() + ".fa"
}

// DotFileName returns the base name of the exported dot graph of a
// tree.
func DotFileName(index Index) string {
	return "clonal_tree_" + index.String() + ".dot"
}

// WriteEdgeList writes the edges of a tree as a tab-separated table,
// sorted by source and destination.
func WriteEdgeList(writer io.Writer, tree *Tree) error {
	output := bufio.NewWriter(writer)
	_, _ = output.WriteString(EdgeListHeader)
	for _, edge := range tree.Edges() {
		_, _ = fmt.Fprintf(output, "%d\t%d\t%s\t%s\t%d\t%d\t%s\t%d\t%d\t%d\t%d\n",
			edge.Src, edge.Dst,
			tree.Clone(edge.Src).Name, tree.Clone(edge.Dst).Name,
			tree.Depth(edge.Src), tree.Depth(edge.Dst),
			edge.TypeString(), edge.AddedShms, edge.SharedShms, edge.CDR3Distance, edge.Length)
	}
	return output.Flush()
}

// WriteVertices writes the read of every vertex of a tree in FASTA
// format, in ascending vertex order.
func WriteVertices(writer io.Writer, tree *Tree) error {
	output := bufio.NewWriter(writer)
	for _, v := range tree.Vertices() {
		clone := tree.Clone(v)
		description := fmt.Sprintf("index=%d depth=%d fake=%v", v, tree.Depth(v), clone.Fake)
		if err := fasta.WriteRecord(output, clone.Name, description, []byte(clone.Read)); err != nil {
			return err
		}
	}
	return output.Flush()
}

// WriteDot writes a tree as a Graphviz digraph. Fake clones are drawn
// as boxes, alternative parent edges as dashed arrows.
func WriteDot(writer io.Writer, tree *Tree) error {
	output := bufio.NewWriter(writer)
	_, _ = fmt.Fprintf(output, "digraph \"clonal_tree_%v\" {\n", tree.Index())
	for _, v := range tree.Vertices() {
		clone := tree.Clone(v)
		shape := "ellipse"
		if clone.Fake {
			shape = "box"
		}
		_, _ = fmt.Fprintf(output, "  %d [label=%q, shape=%s];\n", v, clone.Name, shape)
	}
	for _, edge := range tree.Edges() {
		_, _ = fmt.Fprintf(output, "  %d -> %d [label=\"%d\"];\n", edge.Src, edge.Dst, edge.Length)
	}
	for _, v := range tree.Vertices() {
		for _, edge := range tree.Alternatives(v) {
			_, _ = fmt.Fprintf(output, "  %d -> %d [label=\"%d\", style=dashed];\n", edge.Src, edge.Dst, edge.Length)
		}
	}
	_, _ = output.WriteString("}\n")
	return output.Flush()
}

func writeFile(filename string, tree *Tree, write func(io.Writer, *Tree) error) (err error) {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() {
		if nerr := file.Close(); err == nil {
			err = nerr
		}
	}()
	return write(file, tree)
}

// WriteTreeFiles exports the edge list of a tree to treeDir and its
// vertex sequences to vertexDir. If dotDir is not empty, a dot graph
// is exported there as well.
func WriteTreeFiles(tree *Tree, treeDir, vertexDir, dotDir string) error {
	index := tree.Index()
	if err := writeFile(filepath.Join(treeDir, FileName(index)), tree, WriteEdgeList); err != nil {
		return fmt.Errorf("exporting tree %v: %w", index, err)
	}
	if err := writeFile(filepath.Join(vertexDir, VerticesFileName(index)), tree, WriteVertices); err != nil {
		return fmt.Errorf("exporting vertices of tree %v: %w", index, err)
	}
	if dotDir != "" {
		if err := writeFile(filepath.Join(dotDir, DotFileName(index)), tree, WriteDot); err != nil {
			return fmt.Errorf("exporting dot graph of tree %v: %w", index, err)
		}
	}
	return nil
}
