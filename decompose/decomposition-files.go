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

package decompose

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/exascience/cloneforest/utils"
)

/*
ReadDecomposition reads a precomputed decomposition: line i holds the
class of clone i as a non-negative integer. Empty lines and lines
starting with '#' are skipped.

Classes are ordered by their number in the file and renumbered from
0. Their keys are the numbers as written in the file.
*/
func ReadDecomposition(reader io.Reader, numClones int) ([]Class, error) {
	scanner := bufio.NewScanner(reader)
	groups := make(map[int][]int)
	clone := 0
	for line := 1; scanner.Scan(); line++ {
		text := strings.TrimSpace(scanner.Text())
		if text == "" || text[0] == '#' {
			continue
		}
		id, err := strconv.Atoi(text)
		if err != nil || id < 0 {
			return nil, fmt.Errorf("invalid class number %q in line %v of decomposition", text, line)
		}
		if clone >= numClones {
			return nil, fmt.Errorf("decomposition lists more than %v clones", numClones)
		}
		groups[id] = append(groups[id], clone)
		clone++
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if clone != numClones {
		return nil, fmt.Errorf("decomposition lists %v clones, expected %v", clone, numClones)
	}
	ids := make([]int, 0, len(groups))
	for id := range groups {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	classes := make([]Class, len(ids))
	for i, id := range ids {
		classes[i] = Class{ID: i, Key: strconv.Itoa(id), Members: groups[id]}
	}
	return classes, nil
}

// ReadDecompositionFile reads a decomposition file, see
// ReadDecomposition. The file may be gzip-compressed.
func ReadDecompositionFile(filename string, numClones int) (classes []Class, err error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer func() {
		if nerr := file.Close(); err == nil {
			err = nerr
		}
	}()
	input, err := utils.HandleGzip(bufio.NewReader(file))
	if err == nil {
		classes, err = ReadDecomposition(input, numClones)
	}
	if err != nil {
		err = fmt.Errorf("%v: %w", filename, err)
	}
	return classes, err
}

// WriteDecomposition writes the class number of every clone, one per
// line, in the format read by ReadDecomposition.
func WriteDecomposition(writer io.Writer, classes []Class, numClones int) error {
	ids := make([]int, numClones)
	for _, class := range classes {
		for _, member := range class.Members {
			ids[member] = class.ID
		}
	}
	output := bufio.NewWriter(writer)
	for _, id := range ids {
		_, _ = output.WriteString(strconv.Itoa(id))
		_ = output.WriteByte('\n')
	}
	return output.Flush()
}
