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

// Package fasta reads and writes FASTA records, used for exporting the
// sequences of lineage tree vertices.
package fasta

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
)

// LineWidth is the number of bases per sequence line written by
// WriteFasta.
const LineWidth = 60

// A Record is a named sequence.
type Record struct {
	Name string
	Seq  []byte
}

func nameFromHeader(b []byte) string {
	i := 1
	for ; i < len(b); i++ {
		if c := b[i]; c >= '!' && c <= '~' {
			break
		}
	}
	j := i + 1
	for ; j < len(b); j++ {
		if c := b[j]; c < '!' || c > '~' {
			break
		}
	}
	if i >= len(b) {
		return ""
	}
	return string(b[i:j])
}

var iupacUpperTable = map[byte]byte{
	'A': 'A', 'a': 'A',
	'C': 'C', 'c': 'C',
	'G': 'G', 'g': 'G',
	'T': 'T', 't': 'T',
	'N': 'N', 'n': 'N',
	'R': 'N', 'r': 'N',
	'Y': 'N', 'y': 'N',
	'M': 'N', 'm': 'N',
	'K': 'N', 'k': 'N',
	'W': 'N', 'w': 'N',
	'S': 'N', 's': 'N',
	'B': 'N', 'b': 'N',
	'D': 'N', 'd': 'N',
	'H': 'N', 'h': 'N',
	'V': 'N', 'v': 'N',
}

// ToUpperAndN normalizes ambiguity codes to N and converts all other
// bases to upper case.
func ToUpperAndN(base byte) byte {
	if n, ok := iupacUpperTable[base]; ok {
		return n
	}
	return base
}

// ParseFasta sequentially parses FASTA records. The record name is the
// first word of the header line. If normalize is true, bases are
// converted with ToUpperAndN.
func ParseFasta(reader io.Reader, normalize bool) (records []Record, err error) {
	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	var current *Record
	for line := 1; scanner.Scan(); line++ {
		b := bytes.TrimRight(scanner.Bytes(), "\r")
		if len(b) == 0 {
			continue
		}
		if b[0] == '>' {
			records = append(records, Record{Name: nameFromHeader(b)})
			current = &records[len(records)-1]
			continue
		}
		if current == nil {
			return nil, fmt.Errorf("invalid fasta input, line %v: missing first header", line)
		}
		start := len(current.Seq)
		current.Seq = append(current.Seq, b...)
		if normalize {
			seq := current.Seq[start:]
			for i, c := range seq {
				seq[i] = ToUpperAndN(c)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

// WriteRecord writes a single record, with an optional description
// after the name on the header line.
func WriteRecord(writer *bufio.Writer, name, description string, seq []byte) (err error) {
	if err = writer.WriteByte('>'); err != nil {
		return err
	}
	if _, err = writer.WriteString(name); err != nil {
		return err
	}
	if description != "" {
		if err = writer.WriteByte(' '); err != nil {
			return err
		}
		if _, err = writer.WriteString(description); err != nil {
			return err
		}
	}
	if err = writer.WriteByte('\n'); err != nil {
		return err
	}
	for len(seq) > 0 {
		n := LineWidth
		if n > len(seq) {
			n = len(seq)
		}
		if _, err = writer.Write(seq[:n]); err != nil {
			return err
		}
		if err = writer.WriteByte('\n'); err != nil {
			return err
		}
		seq = seq[n:]
	}
	return nil
}

// WriteFasta writes the given records.
func WriteFasta(writer io.Writer, records []Record) error {
	output := bufio.NewWriter(writer)
	for _, record := range records {
		if err := WriteRecord(output, record.Name, "", record.Seq); err != nil {
			return err
		}
	}
	return output.Flush()
}
