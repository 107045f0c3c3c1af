// Copyright (c) 2025 Kevin Tenolli
// SPDX-License-Identifier: MIT

package staf

import (
	"fmt"
	"strings"
	"sync"
)

// SuffixForest owns an ordered, capacity-bounded collection of suffix
// tries and orchestrates their column-wise construction.
type SuffixForest struct {
	tries    []*SuffixTrie
	maxTries int
	lambda   int
}

// NewSuffixForest constructs an empty forest capped at maxTries tries,
// scoring trial insertions with the given lambda.
func NewSuffixForest(maxTries, lambda int) (*SuffixForest, error) {
	if maxTries < 1 {
		return nil, invalidInputf("nr_tries must be >= 1, got %d", maxTries)
	}
	if lambda < 1 {
		return nil, invalidInputf("score_lambda must be >= 1, got %d", lambda)
	}
	return &SuffixForest{maxTries: maxTries, lambda: lambda}, nil
}

// Size returns the number of tries currently in the forest.
func (f *SuffixForest) Size() int {
	return len(f.tries)
}

// Trie returns the trie at index i, or nil if out of range.
func (f *SuffixForest) Trie(i int) *SuffixTrie {
	if i < 0 || i >= len(f.tries) {
		return nil
	}
	return f.tries[i]
}

// CreateForest streams the CSC matrix described by colPtr/rowInd
// column-by-column in reverse column order, growing the forest lazily
// and running the per-column trial/commit/rollback protocol. Callers
// are expected to have already validated colPtr and rowInd (Compress
// does this before calling CreateForest); CreateForest only re-checks
// the shape it needs to safely slice rowInd, and that lambda is small
// enough for no trial score to overflow.
func (f *SuffixForest) CreateForest(colPtr, rowInd []int32, nCols int) error {
	if len(colPtr) != nCols+1 {
		return invalidInputf("col_ptr length %d, want n_cols+1=%d", len(colPtr), nCols+1)
	}
	// a trial score is at most len(rowInd)*lambda + len(rowInd).
	if n := len(rowInd); n > 0 && f.lambda > (int(^uint(0)>>1)-n)/n {
		return capacityExceededf("score_lambda %d overflows trial scores over %d non-zeros", f.lambda, n)
	}

	for col := nCols - 1; col >= 0; col-- {
		start, end := colPtr[col], colPtr[col+1]
		if start < 0 || end < start || int(end) > len(rowInd) {
			return invalidInputf("col_ptr slice [%d:%d] out of range for row_ind of length %d", start, end, len(rowInd))
		}
		rows := rowInd[start:end]

		f.growIfNeeded()

		best := f.trialAll(int32(col), rows)
		f.commitOne(best)
	}
	return nil
}

// growIfNeeded appends a new empty trie if the forest has room and
// either holds no tries yet or its last trie has already started
// absorbing rows — never holding two empty tries at once.
func (f *SuffixForest) growIfNeeded() {
	if len(f.tries) >= f.maxTries {
		return
	}
	if len(f.tries) == 0 || !f.tries[len(f.tries)-1].IsEmpty() {
		f.tries = append(f.tries, newSuffixTrie())
	}
}

// trialAll runs FalseInsert for col/rows against every trie in
// parallel — each trie's state is independent, so the only shared
// memory is one result slot per goroutine — and returns the index of
// the lowest-scoring trie, ties broken by lowest index.
func (f *SuffixForest) trialAll(col int32, rows []int32) int {
	scores := make([]int, len(f.tries))

	var wg sync.WaitGroup
	for i, trie := range f.tries {
		wg.Add(1)
		go func(i int, trie *SuffixTrie) {
			defer wg.Done()
			scores[i] = trie.FalseInsert(col, rows, f.lambda)
		}(i, trie)
	}
	wg.Wait()

	best := 0
	for i := 1; i < len(scores); i++ {
		if scores[i] < scores[best] {
			best = i
		}
	}
	return best
}

// commitOne commits the winning trie and rolls back every other trie,
// again fanning out one goroutine per trie since each only touches its
// own state.
func (f *SuffixForest) commitOne(winner int) {
	var wg sync.WaitGroup
	for i, trie := range f.tries {
		wg.Add(1)
		go func(i int, trie *SuffixTrie) {
			defer wg.Done()
			if i == winner {
				trie.TrueInsert()
			} else {
				trie.DeleteFalseNodes()
			}
		}(i, trie)
	}
	wg.Wait()
}

// String renders every trie in the forest as a labeled box-drawing
// tree, useful for a demo binding's debug output or for inspecting a
// failing test by eye.
func (f *SuffixForest) String() string {
	var b strings.Builder
	for i, trie := range f.tries {
		fmt.Fprintf(&b, "trie %d:\n%s", i, trie.String())
	}
	return b.String()
}
