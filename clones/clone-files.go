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

package clones

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/exascience/pargo/pipeline"

	"github.com/exascience/cloneforest/utils"
)

// ClonesHeader is the header line that every annotated clone file
// starts with. The columns that follow are NAME, READ, CHAIN, V_GENE,
// J_GENE, CDR1, CDR2, CDR3, V_SHMS, J_SHMS, PRODUCTIVE, IN_FRAME and
// HAS_STOP_CODON, separated by tabs. Ranges are written as start-end,
// SHMs as comma-separated genePos:readPos:G>R entries, and empty
// fields as a dash.
const ClonesHeader = "# cloneforest clones format version 1.0\n"

// ParseClones reads an annotated clone file, parsing lines in
// parallel while preserving their order. Gzip-compressed input is
// decompressed on the fly.
func ParseClones(reader io.Reader) (set Set, err error) {
	input, err := utils.HandleGzip(bufio.NewReader(reader))
	if err != nil {
		return nil, err
	}
	header, err := input.ReadString('\n')
	if err != nil && err != io.EOF {
		return nil, err
	}
	if header != ClonesHeader {
		return nil, fmt.Errorf("invalid header %q in annotated clone file", header)
	}
	var p pipeline.Pipeline
	p.Source(pipeline.NewScanner(input))
	p.Add(pipeline.LimitedPar(0, pipeline.Receive(func(_ int, data interface{}) interface{} {
		strs := data.([]string)
		clones := make([]*Clone, 0, len(strs))
		var sc StringScanner
		for _, str := range strs {
			if len(str) == 0 || str[0] == '#' {
				continue
			}
			sc.Reset(str)
			clone := sc.ParseClone()
			if err := sc.Err(); err != nil {
				p.SetErr(fmt.Errorf("%v, while parsing annotated clone %v", err, str))
				return clones
			}
			clones = append(clones, clone)
		}
		return clones
	})))
	p.Add(pipeline.Ord(pipeline.Receive(func(_ int, data interface{}) interface{} {
		set = append(set, data.([]*Clone)...)
		return data
	})))
	p.Run()
	if err = p.Err(); err != nil {
		return nil, err
	}
	return set, nil
}

// ParseClonesFile reads an annotated clone file.
func ParseClonesFile(filename string) (set Set, err error) {
	pathname, err := filepath.Abs(filename)
	if err != nil {
		return nil, err
	}
	in, err := os.Open(pathname)
	if err != nil {
		return nil, err
	}
	defer func() {
		if nerr := in.Close(); nerr != nil {
			if err == nil {
				set = nil
				err = nerr
			}
		}
	}()
	return ParseClones(in)
}

// WriteClones writes clones in the annotated clone file format.
func WriteClones(writer io.Writer, clones []*Clone) error {
	if _, err := io.WriteString(writer, ClonesHeader); err != nil {
		return err
	}
	var buf []byte
	for _, clone := range clones {
		buf = AppendClone(buf[:0], clone)
		if _, err := writer.Write(buf); err != nil {
			return err
		}
	}
	return nil
}

// WriteClonesFile stores clones in an annotated clone file.
func WriteClonesFile(filename string, clones []*Clone) (err error) {
	pathname, err := filepath.Abs(filename)
	if err != nil {
		return err
	}
	output, err := os.Create(pathname)
	if err != nil {
		return err
	}
	defer func() {
		if nerr := output.Close(); nerr != nil {
			if err == nil {
				err = nerr
			}
		}
	}()
	out := bufio.NewWriter(output)
	if err = WriteClones(out, clones); err != nil {
		return err
	}
	return out.Flush()
}
