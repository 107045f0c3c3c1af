// Copyright (c) 2025 Kevin Tenolli
// SPDX-License-Identifier: MIT

package staf

// Compress runs the full pipeline over a structural matrix given in
// CSC form: validate, stream columns into a forest of at most
// maxTries suffix tries (scoring trial insertions with lambda), and
// merge the forest's extracted patterns into a BinaryCSR.
//
// values is accepted for interface symmetry with a typical sparse CSC
// constructor; its entries are never read, but a non-nil values must
// have the same length as rowInd. Pass nil when the caller has no
// values to carry.
func Compress(colPtr, rowInd []int32, values []float32, nRows, nCols, lambda, maxTries int) (csr *BinaryCSR, err error) {
	defer recoverInternal(&err)

	if err := validateCSC(colPtr, rowInd, values, nRows, nCols); err != nil {
		return nil, err
	}

	forest, err := NewSuffixForest(maxTries, lambda)
	if err != nil {
		return nil, err
	}
	if err := forest.CreateForest(colPtr, rowInd, nCols); err != nil {
		return nil, err
	}
	return forest.BuildCSR(nRows)
}
