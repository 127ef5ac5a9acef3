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

// SymbolCount is an entry in SymbolCounts.
type SymbolCount struct {
	Key   Symbol
	Count int
}

// SymbolCounts counts occurrences of symbols. It is an association
// list, which is more efficient than a native map for the handful of
// distinct gene calls seen within one group of clones.
type SymbolCounts []SymbolCount

// Get returns the count of the given symbol, or 0 if it was never
// added.
func (m SymbolCounts) Get(key Symbol) int {
	for _, entry := range m {
		if entry.Key == key {
			return entry.Count
		}
	}
	return 0
}

// Add increments the count of the given symbol and returns the new
// count.
func (m *SymbolCounts) Add(key Symbol) int {
	for index := range *m {
		if (*m)[index].Key == key {
			(*m)[index].Count++
			return (*m)[index].Count
		}
	}
	*m = append(*m, SymbolCount{key, 1})
	return 1
}

// Mode returns the symbol with the highest count. Ties are resolved
// in favor of the lexicographically smallest symbol. Mode returns nil
// for empty counts.
func (m SymbolCounts) Mode() (mode Symbol) {
	best := 0
	for _, entry := range m {
		if entry.Count > best || (entry.Count == best && *entry.Key < *mode) {
			mode, best = entry.Key, entry.Count
		}
	}
	return mode
}
