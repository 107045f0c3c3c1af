// Copyright (c) 2025 Kevin Tenolli
// SPDX-License-Identifier: MIT

// Package staf implements the discovery engine of a sparsity-pattern
// compression preprocessor for sparse matrix computations.
//
// Given a binary (structural) sparse matrix in column-compressed
// (CSC) form, staf streams columns right to left into a forest of
// suffix tries, discovering groups of rows that share a common
// trailing run of non-zero columns. Each column is tentatively
// inserted into every trie in the forest, scored, and committed to
// whichever trie scores lowest; every other trie rolls back its
// tentative insertion. Once the forest is built, each trie is walked
// post-order to split its rows into unique per-row residual patterns
// and shared suffix patterns, and the results across all tries are
// merged into a two-level CSR: a primary matrix of per-row residuals
// plus a side table of shared suffix rows and the mapping of which
// original rows reference each one.
//
// staf treats the input matrix as purely structural: values are
// accepted for interface symmetry and ignored. There is no online or
// incremental update path once a forest is finalized, and the
// trial/commit scoring is greedy, not globally optimal.
package staf
