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

package fasta

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFasta(t *testing.T) {
	input := ">seq1 first read\nACGT\nacgr\n\n>seq2\nTTTT\n"
	records, err := ParseFasta(strings.NewReader(input), true)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "seq1", records[0].Name)
	assert.Equal(t, "ACGTACGN", string(records[0].Seq))
	assert.Equal(t, "seq2", records[1].Name)
	assert.Equal(t, "TTTT", string(records[1].Seq))
}

func TestParseFastaMissingHeader(t *testing.T) {
	_, err := ParseFasta(strings.NewReader("ACGT\n"), false)
	assert.Error(t, err)
}

func TestWriteFastaWrapsLines(t *testing.T) {
	seq := []byte(strings.Repeat("A", LineWidth+5))
	var buf bytes.Buffer
	require.NoError(t, WriteFasta(&buf, []Record{{Name: "long", Seq: seq}}))
	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, ">long", lines[0])
	assert.Len(t, lines[1], LineWidth)
	assert.Len(t, lines[2], 5)

	records, err := ParseFasta(&buf, false)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, seq, records[0].Seq)
}
