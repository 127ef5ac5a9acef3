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
	"fmt"
	"io"
	"strconv"

	"github.com/google/uuid"
	"github.com/olekukonko/tablewriter"

	"github.com/exascience/cloneforest/lineage"
)

type runSummary struct {
	runID   uuid.UUID
	clones  int
	classes int
	result  *lineage.Result
}

func writeSummary(out io.Writer, summary *runSummary) error {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetHeader([]string{"Run", summary.runID.String()})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetColumnAlignment([]int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_RIGHT})
	result := summary.result
	for _, row := range []struct {
		name  string
		value int
	}{
		{"clones", summary.clones},
		{"classes", summary.classes},
		{"components", result.Components},
		{"trees", result.Trees.Len()},
		{"tree vertices", result.Trees.NumVertices()},
		{"fake clones", result.Fakes},
		{"reannotated clones", result.Reannotated},
		{"related CDR3 pairs", result.Stats.NumPairs()},
	} {
		table.Append([]string{row.name, strconv.Itoa(row.value)})
	}
	table.Render()
	_, err := fmt.Fprint(out, buf.String())
	return err
}
