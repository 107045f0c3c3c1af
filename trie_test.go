// Copyright (c) 2025 Kevin Tenolli
// SPDX-License-Identifier: MIT

package staf

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func insertAndCommit(t *testing.T, trie *SuffixTrie, col int32, rows []int32, lambda int) int {
	t.Helper()
	score := trie.FalseInsert(col, rows, lambda)
	trie.TrueInsert()
	return score
}

func TestSuffixTrieEmpty(t *testing.T) {
	trie := newSuffixTrie()
	require.True(t, trie.IsEmpty())
	require.Empty(t, trie.GetSharedPatterns())
	require.Empty(t, trie.GetUniquePatterns())
}

func TestSuffixTrieIdenticalRows(t *testing.T) {
	// rows 0,1,2 all set at columns 5 and 3: one nested shared group.
	trie := newSuffixTrie()
	insertAndCommit(t, trie, 5, []int32{0, 1, 2}, 1)
	insertAndCommit(t, trie, 3, []int32{0, 1, 2}, 1)

	require.False(t, trie.IsEmpty())

	shared := trie.GetSharedPatterns()
	require.Len(t, shared, 1)
	entry, ok := shared["0,1,2"]
	require.True(t, ok)
	require.Equal(t, []int32{0, 1, 2}, entry.rows)
	require.Equal(t, []int32{3, 5}, entry.cols)

	require.Empty(t, trie.GetUniquePatterns())
}

func TestSuffixTrieDisjointRows(t *testing.T) {
	// row 0 only at column 5, row 1 only at column 3: no sharing at all.
	trie := newSuffixTrie()
	insertAndCommit(t, trie, 5, []int32{0}, 1)
	insertAndCommit(t, trie, 3, []int32{1}, 1)

	require.Empty(t, trie.GetSharedPatterns())

	unique := trie.GetUniquePatterns()
	require.Len(t, unique, 2)
	require.Equal(t, []int32{5}, unique[0].cols)
	require.Equal(t, []int32{3}, unique[1].cols)
}

func TestSuffixTriePartialOverlap(t *testing.T) {
	// rows 0,1,2 share column 5; rows 0,1 also share column 3; row 2
	// alone continues at column 2.
	trie := newSuffixTrie()
	insertAndCommit(t, trie, 5, []int32{0, 1, 2}, 1)
	insertAndCommit(t, trie, 3, []int32{0, 1}, 1)
	insertAndCommit(t, trie, 2, []int32{2}, 1)

	shared := trie.GetSharedPatterns()
	require.Len(t, shared, 2)

	all, ok := shared["0,1,2"]
	require.True(t, ok)
	require.Equal(t, []int32{5}, all.cols)

	pair, ok := shared["0,1"]
	require.True(t, ok)
	require.Equal(t, []int32{3}, pair.cols)

	unique := trie.GetUniquePatterns()
	require.Len(t, unique, 1)
	require.Equal(t, []int32{2}, unique[2].cols)
}

func TestSuffixTrieSingleRow(t *testing.T) {
	trie := newSuffixTrie()
	insertAndCommit(t, trie, 4, []int32{7}, 1)
	insertAndCommit(t, trie, 1, []int32{7}, 1)

	require.Empty(t, trie.GetSharedPatterns())

	unique := trie.GetUniquePatterns()
	require.Len(t, unique, 1)
	require.Equal(t, []int32{1, 4}, unique[7].cols)
}

func TestSuffixTrieRollbackLeavesCommittedUntouched(t *testing.T) {
	trie := newSuffixTrie()
	insertAndCommit(t, trie, 5, []int32{0, 1}, 1)

	score := trie.FalseInsert(3, []int32{0, 1}, 1)
	require.Greater(t, score, 0)
	trie.DeleteFalseNodes()

	// the tentative col-3 insertion must have vanished entirely.
	shared := trie.GetSharedPatterns()
	require.Len(t, shared, 1)
	entry := shared["0,1"]
	require.Equal(t, []int32{5}, entry.cols)
}

func TestSuffixTrieFalseInsertScoresNewNodes(t *testing.T) {
	trie := newSuffixTrie()
	insertAndCommit(t, trie, 5, []int32{0, 1}, 1)
	insertAndCommit(t, trie, 3, []int32{1}, 1)

	// row 0 reusing the already-committed col-3 node needs no new node.
	score := trie.FalseInsert(3, []int32{0}, 5)
	require.Equal(t, 1, score)

	// a brand-new column for row 0 needs exactly one new node.
	trie.DeleteFalseNodes()
	score = trie.FalseInsert(2, []int32{0}, 5)
	require.Equal(t, 5+1, score)
	trie.DeleteFalseNodes()
}

func TestSuffixTrieRollbackRestoresReusedNode(t *testing.T) {
	trie := newSuffixTrie()
	insertAndCommit(t, trie, 5, []int32{0, 1}, 1)
	insertAndCommit(t, trie, 3, []int32{1}, 1)

	// trial-insert row 0 into the already-committed col-3 node, then roll back.
	trie.FalseInsert(3, []int32{0}, 5)
	trie.DeleteFalseNodes()

	// row 0 must still only be reachable through the shared col-5 node,
	// never through col-3 — the rolled-back trial must leave no trace.
	shared := trie.GetSharedPatterns()
	require.Len(t, shared, 1)
	entry, ok := shared["0,1"]
	require.True(t, ok)
	require.Equal(t, []int32{5}, entry.cols)

	unique := trie.GetUniquePatterns()
	require.Len(t, unique, 1)
	require.Equal(t, []int32{3}, unique[1].cols)
}
