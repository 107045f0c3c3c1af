// Copyright (c) 2025 Kevin Tenolli
// SPDX-License-Identifier: MIT

package staf

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/require"
)

// randomDense builds an nRows x nCols binary matrix where each cell is
// set with probability density, using a seeded generator so a failure
// is reproducible.
func randomDense(rng *rand.Rand, nRows, nCols int, density float64) [][]float32 {
	dense := make([][]float32, nRows)
	for r := range dense {
		dense[r] = make([]float32, nCols)
		for c := range dense[r] {
			if rng.Float64() < density {
				dense[r][c] = 1
			}
		}
	}
	return dense
}

// TestPropertyDenseRoundTrip checks that, for a variety of random
// binary matrices, compressing and then reconstructing reproduces the
// original matrix exactly — the one property a lossless structural
// compressor cannot ever trade away.
func TestPropertyDenseRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))

	cases := []struct {
		nRows, nCols int
		density      float64
		lambda       int
		maxTries     int
	}{
		{5, 5, 0.3, 1, 1},
		{8, 6, 0.5, 2, 1},
		{12, 10, 0.2, 1, 3},
		{20, 15, 0.7, 4, 2},
		{6, 20, 0.1, 1, 1},
	}

	for _, c := range cases {
		dense := randomDense(rng, c.nRows, c.nCols, c.density)
		colPtr, rowInd, nCols := FromDenseRows(dense)

		csr, err := Compress(colPtr, rowInd, nil, c.nRows, nCols, c.lambda, c.maxTries)
		require.NoError(t, err)

		got := csr.Dense(c.nRows, nCols)
		require.Equal(t, dense, got)
	}
}

// TestPropertyEveryRowAccountedForExactlyOnceInPrimary checks that the
// primary CSR's row_ptr always has exactly nRows+1 entries and is
// non-decreasing, regardless of how many tries the forest used.
func TestPropertyEveryRowAccountedForExactlyOnceInPrimary(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	dense := randomDense(rng, 15, 12, 0.35)
	colPtr, rowInd, nCols := FromDenseRows(dense)

	csr, err := Compress(colPtr, rowInd, nil, 15, nCols, 2, 3)
	require.NoError(t, err)

	require.Len(t, csr.RowPtr, 16)
	for r := 0; r < 15; r++ {
		require.LessOrEqual(t, csr.RowPtr[r], csr.RowPtr[r+1])
	}
}

// TestPropertySuffixGroupsAreDisjointColumnsPerRow checks that, for a
// given row referenced by a suffix group, the columns contributed by
// that group never reappear in the row's own primary residual — the
// structural invariant that makes the two-level merge in
// BinaryCSR.Dense correct instead of coincidentally correct.
func TestPropertySuffixGroupsAreDisjointColumnsPerRow(t *testing.T) {
	rng := rand.New(rand.NewPCG(42, 99))
	dense := randomDense(rng, 10, 8, 0.4)
	colPtr, rowInd, nCols := FromDenseRows(dense)

	csr, err := Compress(colPtr, rowInd, nil, 10, nCols, 1, 2)
	require.NoError(t, err)

	for r := 0; r < 10; r++ {
		seen := make(map[int32]bool)
		for _, c := range csr.ColIndices[csr.RowPtr[r]:csr.RowPtr[r+1]] {
			require.False(t, seen[c], "row %d has duplicate primary column %d", r, c)
			seen[c] = true
		}
		for s := 0; s < len(csr.SuffixRowPtr)-1; s++ {
			rows := csr.MapRowIdx[csr.MapSuffixPtr[s]:csr.MapSuffixPtr[s+1]]
			referenced := false
			for _, rr := range rows {
				if rr == int32(r) {
					referenced = true
					break
				}
			}
			if !referenced {
				continue
			}
			for _, c := range csr.SuffixCols[csr.SuffixRowPtr[s]:csr.SuffixRowPtr[s+1]] {
				require.False(t, seen[c], "row %d has column %d in both primary and a suffix group", r, c)
				seen[c] = true
			}
		}
	}
}
