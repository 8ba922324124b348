// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package monomer

import (
	"fmt"

	"github.com/grailbio/base/errors"
)

// MaxSeedLen is the longest pattern a SeedMatcher accepts.  The automaton
// state is one 64-bit word.
const MaxSeedLen = 64

// SeedMatcher finds exact occurrences of a short pattern using the bit-parallel
// shift-and automaton.  Bit i of the state is set iff the last i+1 bytes of
// the text read so far equal pattern[:i+1].
//
// A SeedMatcher is immutable once built and may be shared across goroutines.
type SeedMatcher struct {
	masks  [256]uint64
	accept uint64
	n      int
}

// NewSeedMatcher builds a matcher for pattern.  len(pattern) must be in [1,
// MaxSeedLen].
func NewSeedMatcher(pattern []byte) (*SeedMatcher, error) {
	if len(pattern) == 0 || len(pattern) > MaxSeedLen {
		return nil, errors.E(errors.Invalid,
			fmt.Sprintf("seed pattern length must be in [1, %d], but was %d", MaxSeedLen, len(pattern)))
	}
	m := &SeedMatcher{n: len(pattern), accept: 1 << uint(len(pattern)-1)}
	for i, b := range pattern {
		m.masks[b] |= 1 << uint(i)
	}
	return m, nil
}

// Len returns the pattern length.
func (m *SeedMatcher) Len() int { return m.n }

// Find returns an iterator over the start offsets of every occurrence of the
// pattern in text, in ascending order.  Occurrences may overlap.  The
// iterator reads text lazily; text must not be modified while it is in use.
func (m *SeedMatcher) Find(text []byte) *Matches {
	return &Matches{m: m, text: text, off: -1}
}

// FindAll returns the start offsets of every occurrence of the pattern in
// text, in ascending order.
func (m *SeedMatcher) FindAll(text []byte) []int {
	var offs []int
	for it := m.Find(text); it.Scan(); {
		offs = append(offs, it.Offset())
	}
	return offs
}

// Matches iterates over occurrences of a pattern. Typical use:
//
//   for it := m.Find(text); it.Scan(); {
//     off := it.Offset()
//     ...
//   }
type Matches struct {
	m     *SeedMatcher
	text  []byte
	pos   int    // next text byte to consume
	state uint64 // shift-and state after consuming text[:pos]
	off   int    // start offset of the current match, or -1
}

// Scan advances to the next occurrence. It returns false once the text is
// exhausted.
func (it *Matches) Scan() bool {
	m := it.m
	for it.pos < len(it.text) {
		it.state = ((it.state << 1) | 1) & m.masks[it.text[it.pos]]
		it.pos++
		if it.state&m.accept != 0 {
			it.off = it.pos - m.n
			return true
		}
	}
	it.off = -1
	return false
}

// Offset returns the start offset of the occurrence found by the last
// successful call to Scan.
//
// REQUIRES: the last Scan call returned true.
func (it *Matches) Offset() int { return it.off }

// Reset rewinds the iterator to the beginning of the text.
func (it *Matches) Reset() {
	it.pos, it.state, it.off = 0, 0, -1
}
