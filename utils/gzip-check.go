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


package utils

import (
	"bufio"
	"compress/gzip"
	"io"
)

const (
	gzipID1 = 0x1f
	gzipID2 = 0x8b
)

// IsGzip checks if the given reader produces a gzip stream by looking
// at the first two bytes, without consuming them.
func IsGzip(buf *bufio.Reader) (bool, error) {
	magic, err := buf.Peek(2)
	if err == io.EOF || err == bufio.ErrBufferFull {
		return false, nil
	} else if err != nil {
		return false, err
	}
	return magic[0] == gzipID1 && magic[1] == gzipID2, nil
}

// HandleGzip returns a buffered reader for the decompressed contents
// of buf if it holds a gzip stream, or buf itself otherwise.
func HandleGzip(buf *bufio.Reader) (*bufio.Reader, error) {
	if ok, err := IsGzip(buf); err != nil {
		return nil, err
	} else if !ok {
		return buf, nil
	}
	r, err := gzip.NewReader(buf)
	if err != nil {
		return nil, err
	}
	return bufio.NewReader(r), nil
}
