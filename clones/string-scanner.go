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
	"fmt"
	"strconv"
	"strings"

	"github.com/exascience/cloneforest/utils"
)

/*
A StringScanner is used to parse lines of annotated clone files.
*/
type StringScanner struct {
	index int
	data  string
	err   error
}

/*
Err returns the error that occurred during scanning/parsing.
*/
func (sc *StringScanner) Err() error {
	return sc.err
}

/*
Reset resets the scanner, and initializes it with the given string.
*/
func (sc *StringScanner) Reset(s string) {
	sc.index = 0
	sc.data = s
	sc.err = nil
}

/*
Len returns the number of ASCII characters that still need to be
scanned/parsed. Returns 0 if Err() would return a non-nil value.
*/
func (sc *StringScanner) Len() int {
	if sc.err != nil {
		return 0
	}
	return len(sc.data) - sc.index
}

func (sc *StringScanner) readUntil(c byte) (s string, found bool) {
	if sc.err != nil {
		return "", false
	}
	start := sc.index
	for end := sc.index; end < len(sc.data); end++ {
		if sc.data[end] == c {
			sc.index = end + 1
			return sc.data[start:end], true
		}
	}
	sc.index = len(sc.data)
	return sc.data[start:], false
}

func (sc *StringScanner) setErr(format string, v ...interface{}) {
	if sc.err == nil {
		sc.err = fmt.Errorf(format, v...)
	}
}

func (sc *StringScanner) field(name string, last bool) string {
	s, found := sc.readUntil('\t')
	if found == last {
		if last {
			sc.setErr("too many fields after %v", name)
		} else {
			sc.setErr("missing fields after %v", name)
		}
	}
	return s
}

func (sc *StringScanner) parseInt32(s string) int32 {
	if sc.err != nil {
		return 0
	}
	value, err := strconv.ParseInt(s, 10, 32)
	if err != nil {
		sc.err = err
		return 0
	}
	if value < 0 {
		sc.setErr("negative position %v", value)
	}
	return int32(value)
}

func (sc *StringScanner) parseFlag(s string) bool {
	switch s {
	case "0":
		return false
	case "1":
		return true
	}
	sc.setErr("invalid flag %q", s)
	return false
}

func (sc *StringScanner) parseRange(s string) (r Range) {
	if s == "-" || s == "" {
		return
	}
	i := strings.IndexByte(s, '-')
	if i < 0 {
		sc.setErr("invalid range %q", s)
		return
	}
	r.Start = sc.parseInt32(s[:i])
	r.End = sc.parseInt32(s[i+1:])
	return
}

// parseSHM parses the gene position, read position and bases of an
// SHM in the form 10:12:A>G.
func (sc *StringScanner) parseSHM(s string) (shm SHM) {
	fields := strings.Split(s, ":")
	if len(fields) != 3 || len(fields[2]) != 3 || fields[2][1] != '>' {
		sc.setErr("invalid SHM %q", s)
		return
	}
	shm.GenePos = sc.parseInt32(fields[0])
	shm.ReadPos = sc.parseInt32(fields[1])
	shm.GeneNucl = fields[2][0]
	shm.ReadNucl = fields[2][2]
	return
}

func (sc *StringScanner) parseSHMs(s string) (shms []SHM) {
	if s == "-" || s == "" {
		return nil
	}
	for _, str := range strings.Split(s, ",") {
		shms = append(shms, sc.parseSHM(str))
	}
	SortSHMs(shms)
	return shms
}

/*
ParseClone parses one line of an annotated clone file.
*/
func (sc *StringScanner) ParseClone() *Clone {
	clone := new(Clone)
	clone.Name = sc.field("start of line", false)
	clone.Read = sc.field("NAME", false)
	chain := sc.field("READ", false)
	if sc.err == nil {
		clone.Chain, sc.err = ParseChainType(chain)
	}
	clone.VGene = utils.Intern(sc.field("CHAIN", false))
	clone.JGene = utils.Intern(sc.field("V_GENE", false))
	clone.CDR1 = sc.parseRange(sc.field("J_GENE", false))
	clone.CDR2 = sc.parseRange(sc.field("CDR1", false))
	clone.CDR3 = sc.parseRange(sc.field("CDR2", false))
	clone.VSHMs = sc.parseSHMs(sc.field("CDR3", false))
	clone.JSHMs = sc.parseSHMs(sc.field("V_SHMS", false))
	clone.Productive = sc.parseFlag(sc.field("J_SHMS", false))
	clone.InFrame = sc.parseFlag(sc.field("PRODUCTIVE", false))
	clone.HasStopCodon = sc.parseFlag(sc.field("IN_FRAME", true))
	return clone
}

func appendRange(buf []byte, r Range) []byte {
	if r.Empty() {
		return append(buf, '-')
	}
	buf = strconv.AppendInt(buf, int64(r.Start), 10)
	buf = append(buf, '-')
	return strconv.AppendInt(buf, int64(r.End), 10)
}

func appendSHMs(buf []byte, shms []SHM) []byte {
	if len(shms) == 0 {
		return append(buf, '-')
	}
	for i, shm := range shms {
		if i > 0 {
			buf = append(buf, ',')
		}
		buf = strconv.AppendInt(buf, int64(shm.GenePos), 10)
		buf = append(buf, ':')
		buf = strconv.AppendInt(buf, int64(shm.ReadPos), 10)
		buf = append(buf, ':', shm.GeneNucl, '>', shm.ReadNucl)
	}
	return buf
}

func appendFlag(buf []byte, flag bool) []byte {
	if flag {
		return append(buf, '1')
	}
	return append(buf, '0')
}

/*
AppendClone formats a clone as one line of an annotated clone file,
including the terminating newline, and appends it to buf.
*/
func AppendClone(buf []byte, clone *Clone) []byte {
	buf = append(buf, clone.Name...)
	buf = append(buf, '\t')
	buf = append(buf, clone.Read...)
	buf = append(buf, '\t')
	buf = append(buf, clone.Chain.String()...)
	buf = append(buf, '\t')
	buf = append(buf, clone.VGeneName()...)
	buf = append(buf, '\t')
	buf = append(buf, clone.JGeneName()...)
	buf = append(buf, '\t')
	buf = appendRange(buf, clone.CDR1)
	buf = append(buf, '\t')
	buf = appendRange(buf, clone.CDR2)
	buf = append(buf, '\t')
	buf = appendRange(buf, clone.CDR3)
	buf = append(buf, '\t')
	buf = appendSHMs(buf, clone.VSHMs)
	buf = append(buf, '\t')
	buf = appendSHMs(buf, clone.JSHMs)
	buf = append(buf, '\t')
	buf = appendFlag(buf, clone.Productive)
	buf = append(buf, '\t')
	buf = appendFlag(buf, clone.InFrame)
	buf = append(buf, '\t')
	buf = appendFlag(buf, clone.HasStopCodon)
	return append(buf, '\n')
}
