// Copyright (c) 2025 Kevin Tenolli
// SPDX-License-Identifier: MIT

package staf

import (
	"github.com/kvtenolli/staf/internal/sparse"
)

// columnSentinel marks the root of a trie, which represents no column.
const columnSentinel int32 = -1

// TrieNode is the atomic cell of the discovery structure: a single
// column on a root-to-leaf path, together with the set of rows that
// currently terminate their known suffix at this node.
//
// children is a popcount-compressed sparse array keyed by column
// index, generalized from a fixed 256-way fan-out to the arbitrary
// (and possibly large) column index space a sparse matrix can have.
// Children are keyed by column index, so a node can never hold two
// children for the same column.
type TrieNode struct {
	index     int32
	parent    *TrieNode
	children  sparse.Array[*TrieNode]
	rows      RowSet
	tentative bool
}

// newTrieNode constructs a node for the given column index (use
// columnSentinel for a root) with the given parent (nil for a root)
// and tentative flag.
func newTrieNode(index int32, parent *TrieNode, tentative bool) *TrieNode {
	return &TrieNode{
		index:     index,
		parent:    parent,
		tentative: tentative,
	}
}

// newRoot constructs an empty, committed root node.
func newRoot() *TrieNode {
	return newTrieNode(columnSentinel, nil, false)
}

// findOrCreateChild returns the existing child at idx if present;
// otherwise it creates one with the given tentative flag, links it as
// n's child, and returns it along with created=true. An existing
// child's tentative flag is never flipped by this call — tentativeness
// can only be cleared by an explicit commit.
func (n *TrieNode) findOrCreateChild(idx int32, tentative bool) (child *TrieNode, created bool) {
	if existing, ok := n.children.Get(uint(idx)); ok {
		return existing, false
	}
	child = newTrieNode(idx, n, tentative)
	n.children.InsertAt(uint(idx), child)
	return child, true
}

// childAt returns the child at idx, if any.
func (n *TrieNode) childAt(idx int32) (*TrieNode, bool) {
	return n.children.Get(uint(idx))
}

// childNodes returns n's direct children in ascending column-index
// order. Deep descendants are reached by recursing on each returned
// child, not by this call.
func (n *TrieNode) childNodes() []*TrieNode {
	out := make([]*TrieNode, 0, n.children.Len())
	for idx := range n.children.All() {
		out = append(out, n.children.MustGet(idx))
	}
	return out
}

// removeTentativeChildren drops every direct child whose tentative
// flag is true. Deep descendants of a dropped child go with it, since
// they are owned (via children) only by that child.
func (n *TrieNode) removeTentativeChildren() {
	var doomed []int32
	for idx := range n.children.All() {
		if n.children.MustGet(idx).tentative {
			doomed = append(doomed, int32(idx))
		}
	}
	for _, idx := range doomed {
		n.children.DeleteAt(uint(idx))
	}
}

// addRow adds row to n's row set.
func (n *TrieNode) addRow(row int32) {
	n.rows.Add(row)
}

// removeRow deletes row from n's row set, if present.
func (n *TrieNode) removeRow(row int32) {
	n.rows.Remove(row)
}

// hasRow reports whether row terminates its current known suffix at n.
func (n *TrieNode) hasRow(row int32) bool {
	return n.rows.Has(row)
}

// commit clears n's tentative flag. Idempotent.
func (n *TrieNode) commit() {
	n.tentative = false
}

// isShared reports whether n is a branching point for suffix
// extraction: a node with at least two children, at least two rows,
// or at least one of each. This predicate alone decides when pattern
// extraction starts a new shared group.
func (n *TrieNode) isShared() bool {
	children := n.children.Len()
	rows := n.rows.Len()
	return children >= 2 || rows >= 2 || (children >= 1 && rows >= 1)
}

// isEmpty reports whether n has no children and no rows.
func (n *TrieNode) isEmpty() bool {
	return n.children.Len() == 0 && n.rows.Len() == 0
}

// isLeaf reports whether n has no children.
func (n *TrieNode) isLeaf() bool {
	return n.children.Len() == 0
}
