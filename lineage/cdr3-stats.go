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

package lineage

import (
	"bufio"
	"fmt"
	"io"
	"sort"

	"github.com/exascience/cloneforest/edges"
)

type distanceLength struct{ distance, length int }

/*
CDR3Stats counts the CDR3 distances of related clone pairs: pairs with
CDR3s of equal length that are joined by a directed edge in either
direction or by an undirected edge. Distances are counted as is, as a
percentage of the CDR3 length, and per CDR3 length.
*/
type CDR3Stats struct {
	Distances       map[int]int
	Percentages     map[int]int
	DistanceLengths map[distanceLength]int
}

// NewCDR3Stats creates empty statistics.
func NewCDR3Stats() *CDR3Stats {
	return &CDR3Stats{
		Distances:       make(map[int]int),
		Percentages:     make(map[int]int),
		DistanceLengths: make(map[distanceLength]int),
	}
}

// AddGraph counts the related pairs of a component graph.
func (stats *CDR3Stats) AddGraph(g *Graph) {
	vertices := g.Vertices()
	for i, v1 := range vertices {
		c1 := g.Source().Clone(v1)
		for _, v2 := range vertices[i+1:] {
			c2 := g.Source().Clone(v2)
			if c1.CDR3.Len() != c2.CDR3.Len() {
				continue
			}
			forward, backward := g.Edge(v1, v2), g.Edge(v2, v1)
			if forward.Kind != edges.Directed && backward.Kind != edges.Directed && forward.Kind != edges.Undirected {
				continue
			}
			length := c1.CDR3.Len()
			distance := edges.CDR3Distance(c1.CDR3Seq(), c2.CDR3Seq())
			stats.Distances[distance]++
			stats.Percentages[distance*100/length]++
			stats.DistanceLengths[distanceLength{distance, length}]++
		}
	}
}

// Merge adds the counts of other.
func (stats *CDR3Stats) Merge(other *CDR3Stats) {
	for k, n := range other.Distances {
		stats.Distances[k] += n
	}
	for k, n := range other.Percentages {
		stats.Percentages[k] += n
	}
	for k, n := range other.DistanceLengths {
		stats.DistanceLengths[k] += n
	}
}

// NumPairs returns the number of counted pairs.
func (stats *CDR3Stats) NumPairs() (n int) {
	for _, count := range stats.Distances {
		n += count
	}
	return n
}

func writeHistogram(writer io.Writer, histogram map[int]int) error {
	keys := make([]int, 0, len(histogram))
	for k := range histogram {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	output := bufio.NewWriter(writer)
	for _, k := range keys {
		_, _ = fmt.Fprintf(output, "%d\t%d\n", k, histogram[k])
	}
	return output.Flush()
}

// WriteDistances writes the distance histogram as tab-separated
// distance and count lines.
func (stats *CDR3Stats) WriteDistances(writer io.Writer) error {
	return writeHistogram(writer, stats.Distances)
}

// WritePercentages writes the histogram of distances relative to the
// CDR3 length, in percent.
func (stats *CDR3Stats) WritePercentages(writer io.Writer) error {
	return writeHistogram(writer, stats.Percentages)
}

// WriteDistanceLengths writes tab-separated distance, CDR3 length and
// count lines.
func (stats *CDR3Stats) WriteDistanceLengths(writer io.Writer) error {
	keys := make([]distanceLength, 0, len(stats.DistanceLengths))
	for k := range stats.DistanceLengths {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].distance != keys[j].distance {
			return keys[i].distance < keys[j].distance
		}
		return keys[i].length < keys[j].length
	})
	output := bufio.NewWriter(writer)
	for _, k := range keys {
		_, _ = fmt.Fprintf(output, "%d\t%d\t%d\n", k.distance, k.length, stats.DistanceLengths[k])
	}
	return output.Flush()
}
