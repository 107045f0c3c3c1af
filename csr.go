// Copyright (c) 2025 Kevin Tenolli
// SPDX-License-Identifier: MIT

package staf

import (
	"fmt"
	"slices"
	"strings"
)

// BinaryCSR is the two-level compressed output of a compression run.
//
// The primary level (RowPtr/ColIndices/Data) holds, for every row, the
// columns that remained unique to it after suffix extraction. The
// suffix level (SuffixRowPtr/SuffixCols/SuffixData) holds one entry
// per distinct shared suffix pattern discovered across the forest; the
// mapping level (MapSuffixPtr/MapRowIdx) records which original rows
// reference each suffix entry, using the same row-ptr/indices shape as
// the primary level so both can be walked with identical code.
//
// All fields are read-only after construction by BuildCSR.
type BinaryCSR struct {
	RowPtr     []int32
	ColIndices []int32
	Data       []float32

	SuffixRowPtr []int32
	SuffixCols   []int32
	SuffixData   []float32

	MapSuffixPtr []int32
	MapRowIdx    []int32
}

// sharedAgg accumulates the columns contributed by every trie to one
// shared-suffix group, keyed by its row tuple.
type sharedAgg struct {
	rows []int32
	cols []int32
}

// BuildCSR merges the unique and shared patterns extracted from every
// trie in the forest into a single BinaryCSR for a matrix of nRows
// rows. Unique patterns for the same row coming from different tries
// are concatenated; shared patterns for the same row tuple coming from
// different tries are concatenated under one suffix entry. Suffix
// entries are emitted in ascending order of their row tuple so the
// output is deterministic regardless of goroutine scheduling during
// construction.
func (f *SuffixForest) BuildCSR(nRows int) (csr *BinaryCSR, err error) {
	defer recoverInternal(&err)

	if nRows <= 0 {
		return nil, invalidInputf("n_rows must be positive, got %d", nRows)
	}

	combinedUnique := make(map[int32][]int32)
	combinedShared := make(map[string]*sharedAgg)

	for _, trie := range f.tries {
		for row, entry := range trie.GetUniquePatterns() {
			combinedUnique[row] = append(combinedUnique[row], entry.cols...)
		}
		for key, entry := range trie.GetSharedPatterns() {
			agg, ok := combinedShared[key]
			if !ok {
				agg = &sharedAgg{rows: entry.rows}
				combinedShared[key] = agg
			}
			agg.cols = append(agg.cols, entry.cols...)
		}
	}

	rowPtr := make([]int32, nRows+1)
	var colIndices []int32
	for r := 0; r < nRows; r++ {
		cols := combinedUnique[int32(r)]
		colIndices = append(colIndices, cols...)
		n := rowPtr[r] + int32(len(cols))
		if n < rowPtr[r] {
			return nil, capacityExceededf("primary row_ptr overflow at row %d", r)
		}
		rowPtr[r+1] = n
	}
	data := make([]float32, len(colIndices))
	for i := range data {
		data[i] = 1
	}

	entries := make([]*sharedAgg, 0, len(combinedShared))
	for _, e := range combinedShared {
		assertInvariant(len(e.rows) >= 2, "shared pattern group has fewer than 2 rows: %v", e.rows)
		entries = append(entries, e)
	}
	slices.SortFunc(entries, func(a, b *sharedAgg) int {
		return slices.Compare(a.rows, b.rows)
	})

	suffixRowPtr := make([]int32, len(entries)+1)
	mapSuffixPtr := make([]int32, len(entries)+1)
	var suffixCols, mapRowIdx []int32
	for i, e := range entries {
		suffixCols = append(suffixCols, e.cols...)
		n := suffixRowPtr[i] + int32(len(e.cols))
		if n < suffixRowPtr[i] {
			return nil, capacityExceededf("suffix row_ptr overflow at entry %d", i)
		}
		suffixRowPtr[i+1] = n

		mapRowIdx = append(mapRowIdx, e.rows...)
		m := mapSuffixPtr[i] + int32(len(e.rows))
		if m < mapSuffixPtr[i] {
			return nil, capacityExceededf("map_suffix_ptr overflow at entry %d", i)
		}
		mapSuffixPtr[i+1] = m
	}
	suffixData := make([]float32, len(suffixCols))
	for i := range suffixData {
		suffixData[i] = 1
	}

	return &BinaryCSR{
		RowPtr:       rowPtr,
		ColIndices:   colIndices,
		Data:         data,
		SuffixRowPtr: suffixRowPtr,
		SuffixCols:   suffixCols,
		SuffixData:   suffixData,
		MapSuffixPtr: mapSuffixPtr,
		MapRowIdx:    mapRowIdx,
	}, nil
}

// Dense reconstructs the original binary matrix from c, for nRows rows
// and nCols columns. It is a correctness aid for tests and demos, not
// part of the compression path: a row's non-zero columns are its
// primary residual columns plus, for every suffix entry that lists the
// row in MapRowIdx, that suffix entry's columns.
func (c *BinaryCSR) Dense(nRows, nCols int) [][]float32 {
	out := make([][]float32, nRows)
	for r := range out {
		out[r] = make([]float32, nCols)
	}

	for r := 0; r < nRows && r+1 < len(c.RowPtr); r++ {
		for _, col := range c.ColIndices[c.RowPtr[r]:c.RowPtr[r+1]] {
			out[r][col] = 1
		}
	}

	for s := 0; s < len(c.SuffixRowPtr)-1; s++ {
		cols := c.SuffixCols[c.SuffixRowPtr[s]:c.SuffixRowPtr[s+1]]
		rows := c.MapRowIdx[c.MapSuffixPtr[s]:c.MapSuffixPtr[s+1]]
		for _, r := range rows {
			for _, col := range cols {
				out[r][col] = 1
			}
		}
	}
	return out
}

// String renders a short human-readable summary of c's shape, useful
// for a demo binding to log without dumping full arrays.
func (c *BinaryCSR) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "primary: %d rows, %d nnz\n", len(c.RowPtr)-1, len(c.ColIndices))
	fmt.Fprintf(&b, "suffix: %d patterns, %d nnz, %d row references",
		len(c.SuffixRowPtr)-1, len(c.SuffixCols), len(c.MapRowIdx))
	return b.String()
}
