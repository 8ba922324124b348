// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package orf

import (
	"fmt"

	"github.com/grailbio/base/errors"
)

// Codons lists codon hits in a circular sequence by reading frame.  Frame f
// holds positions p with p%CodonLen == f, in ascending order.  A codon that
// straddles the origin is listed at the position of its first base.
type Codons struct {
	// CodonLen is the codon length, which is also the number of frames.
	CodonLen int
	Starts   [][]int
	Stops    [][]int
}

type codonKind uint8

const (
	noCodon codonKind = iota
	stopCodon
	startCodon
)

// acNode is one state of the codon automaton.
type acNode struct {
	next [256]int32 // 0 => absent; the root is state 0
	fail int32
	kind codonKind
}

// codonMatcher is an Aho-Corasick automaton over a set of start and stop
// codons of one common length.  It is immutable once built.
type codonMatcher struct {
	nodes    []acNode
	codonLen int
}

func validateCodons(name string, codons []string, k int) error {
	if len(codons) == 0 {
		return errors.E(errors.Invalid, fmt.Sprintf("no %s codons given", name))
	}
	for _, c := range codons {
		if len(c) != k {
			return errors.E(errors.Invalid,
				fmt.Sprintf("%s codon %q has length %d, want %d", name, c, len(c), k))
		}
	}
	return nil
}

// newCodonMatcher builds the automaton.  A string listed as both a start and
// a stop codon is treated as a start codon.
func newCodonMatcher(starts, stops []string) (*codonMatcher, error) {
	if len(starts) == 0 {
		return nil, errors.E(errors.Invalid, "no start codons given")
	}
	k := len(starts[0])
	if k == 0 {
		return nil, errors.E(errors.Invalid, "empty start codon")
	}
	if err := validateCodons("start", starts, k); err != nil {
		return nil, err
	}
	if err := validateCodons("stop", stops, k); err != nil {
		return nil, err
	}
	m := &codonMatcher{nodes: make([]acNode, 1), codonLen: k}
	m.add(stops, stopCodon)
	m.add(starts, startCodon)
	m.link()
	return m, nil
}

func (m *codonMatcher) add(codons []string, kind codonKind) {
	for _, c := range codons {
		cur := int32(0)
		for i := 0; i < len(c); i++ {
			b := c[i]
			if m.nodes[cur].next[b] == 0 {
				m.nodes = append(m.nodes, acNode{})
				m.nodes[cur].next[b] = int32(len(m.nodes) - 1)
			}
			cur = m.nodes[cur].next[b]
		}
		if kind > m.nodes[cur].kind {
			m.nodes[cur].kind = kind
		}
	}
}

// link sets failure links breadth-first.  All codons have the same length,
// so only leaves carry a kind and outputs never need to be merged along
// failure links.
func (m *codonMatcher) link() {
	queue := make([]int32, 0, len(m.nodes))
	for c := 0; c < 256; c++ {
		if child := m.nodes[0].next[c]; child != 0 {
			queue = append(queue, child)
		}
	}
	for len(queue) > 0 {
		r := queue[0]
		queue = queue[1:]
		for c := 0; c < 256; c++ {
			s := m.nodes[r].next[c]
			if s == 0 {
				continue
			}
			queue = append(queue, s)
			f := m.nodes[r].fail
			for f > 0 && m.nodes[f].next[c] == 0 {
				f = m.nodes[f].fail
			}
			if t := m.nodes[f].next[c]; t != 0 {
				f = t
			}
			m.nodes[s].fail = f
		}
	}
}

// scan reports every codon hit in circular seq.
func (m *codonMatcher) scan(seq []byte) *Codons {
	k := m.codonLen
	c := &Codons{
		CodonLen: k,
		Starts:   make([][]int, k),
		Stops:    make([][]int, k),
	}
	n := len(seq)
	if n == 0 {
		return c
	}
	// Read seq followed by its first k-1 bases, cycling when seq is shorter
	// than a codon.
	state := int32(0)
	for i := 0; i < n+k-1; i++ {
		b := seq[i%n]
		for state > 0 && m.nodes[state].next[b] == 0 {
			state = m.nodes[state].fail
		}
		state = m.nodes[state].next[b]
		kind := m.nodes[state].kind
		if kind == noCodon {
			continue
		}
		p := i - k + 1
		switch kind {
		case startCodon:
			c.Starts[p%k] = append(c.Starts[p%k], p)
		case stopCodon:
			c.Stops[p%k] = append(c.Stops[p%k], p)
		}
	}
	return c
}

// ScanCodons finds every start and stop codon in the circular sequence seq.
// All codons must share one length.  A codon present in both sets counts as
// a start codon only.
func ScanCodons(seq []byte, starts, stops []string) (*Codons, error) {
	m, err := newCodonMatcher(starts, stops)
	if err != nil {
		return nil, err
	}
	return m.scan(seq), nil
}
