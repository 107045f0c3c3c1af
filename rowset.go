// Copyright (c) 2025 Kevin Tenolli
// SPDX-License-Identifier: MIT

package staf

import (
	"strconv"
	"strings"

	"github.com/kvtenolli/staf/internal/bitset"
)

// RowSet is a growable set of non-negative row ids, backed by the
// word-sliced bit-vector in internal/bitset. It is the concrete type
// behind TrieNode.rows and the reachable-rows accumulator used by
// pattern extraction: membership, union and sorted enumeration are
// all the operations that traversal needs, and a bit-vector gives all
// three without ever materializing a sorted slice until one is
// actually requested.
type RowSet struct {
	bits bitset.BitSet
}

// Add inserts row into the set.
func (s *RowSet) Add(row int32) {
	s.bits.Set(uint(row))
}

// Remove deletes row from the set, if present.
func (s *RowSet) Remove(row int32) {
	s.bits.Clear(uint(row))
}

// Has reports whether row is a member of the set.
func (s RowSet) Has(row int32) bool {
	return s.bits.Test(uint(row))
}

// Len returns the number of rows in the set.
func (s RowSet) Len() int {
	return s.bits.Count()
}

// Clone returns an independent copy of the set.
func (s RowSet) Clone() RowSet {
	return RowSet{bits: s.bits.Clone()}
}

// UnionWith merges other's rows into s, in place.
func (s *RowSet) UnionWith(other RowSet) {
	s.bits.InPlaceUnion(other.bits)
}

// Sorted returns the set's rows in ascending order. The bit-vector
// already stores rows in ascending bit-index order, so this is a
// plain drain of the All iterator, not a sort.
func (s RowSet) Sorted() []int32 {
	out := make([]int32, 0, s.Len())
	for row := range s.bits.All() {
		out = append(out, int32(row))
	}
	return out
}

// Key returns a canonical string for s, suitable as a map key that
// identifies the row set independent of insertion order — used to
// group trie nodes into the same shared-pattern bucket, and, after
// sorting keys by their decoded row tuples, to fix a deterministic
// emission order for the suffix block.
func (s RowSet) Key() string {
	rows := s.Sorted()
	var b strings.Builder
	for i, r := range rows {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatInt(int64(r), 10))
	}
	return b.String()
}
