// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package orf

import (
	"fmt"

	"github.com/biogo/store/llrb"
	"github.com/grailbio/base/errors"
)

// Opts lists the codons a Finder looks for.  All codons must have length
// three.
type Opts struct {
	StartCodons []string
	StopCodons  []string
}

// DefaultOpts uses the standard genetic code.
var DefaultOpts = Opts{
	StartCodons: []string{"ATG"},
	StopCodons:  []string{"TAA", "TAG", "TGA"},
}

// Finder enumerates ORFs in circular sequences.  It is immutable and may be
// shared across goroutines.
type Finder struct {
	matcher *codonMatcher
}

// NewFinder validates opts and builds a Finder.
func NewFinder(opts Opts) (*Finder, error) {
	for _, c := range append(append([]string{}, opts.StartCodons...), opts.StopCodons...) {
		if len(c) != 3 {
			return nil, errors.E(errors.Invalid, fmt.Sprintf("codon %q is not three bases long", c))
		}
	}
	m, err := newCodonMatcher(opts.StartCodons, opts.StopCodons)
	if err != nil {
		return nil, err
	}
	return &Finder{matcher: m}, nil
}

// position is a stop codon position stored in an llrb.Tree.
type position int

// Compare implements llrb.Comparable.
func (p position) Compare(c llrb.Comparable) int { return int(p) - int(c.(position)) }

// stopIndex answers ordered queries over the stop codons of one frame.
type stopIndex struct {
	tree llrb.Tree
}

func newStopIndex(stops []int) *stopIndex {
	idx := &stopIndex{}
	for _, p := range stops {
		idx.tree.Insert(position(p))
	}
	return idx
}

// ceil returns the smallest stop >= pos.
func (idx *stopIndex) ceil(pos int) (int, bool) {
	c := idx.tree.Ceil(position(pos))
	if c == nil {
		return 0, false
	}
	return int(c.(position)), true
}

// min returns the smallest stop.
func (idx *stopIndex) min() (int, bool) {
	c := idx.tree.Min()
	if c == nil {
		return 0, false
	}
	return int(c.(position)), true
}

// Find returns one Orf per start codon in the circular sequence seq, ordered
// by frame and then by start position.
func (f *Finder) Find(seq []byte) []Orf {
	n := len(seq)
	if n == 0 {
		return nil
	}
	codons := f.matcher.scan(seq)
	var stops [3]*stopIndex
	for frame := range stops {
		stops[frame] = newStopIndex(codons.Stops[frame])
	}
	var orfs []Orf
	for frame, starts := range codons.Starts {
		for _, s := range starts {
			if n%3 == 0 {
				orfs = append(orfs, findInFrame(stops[frame], s, n))
			} else {
				orfs = append(orfs, findShifting(&stops, frame, s, n))
			}
		}
	}
	return orfs
}

// findInFrame handles a sequence whose length is a multiple of three.  The
// frame survives the origin, so the nearest stop downstream in the same
// frame, wrapping at most once, terminates the ORF.
func findInFrame(stops *stopIndex, s, n int) Orf {
	stop, ok := stops.ceil(s)
	if !ok {
		if stop, ok = stops.min(); !ok {
			return Orf{Start: s, Stop: NoStop, Length: n}
		}
	}
	length := stop - s + 3
	if stop < s {
		length += n
	}
	return Orf{Start: s, Stop: stop, Length: length}
}

// findShifting handles a sequence whose length is not a multiple of three.
// Each pass over the origin moves the frame by n%3, so after the rest of
// the start frame the search visits the other two frames in turn and then
// the start frame again, each from the origin.
func findShifting(stops *[3]*stopIndex, frame, s, n int) Orf {
	if stop, ok := stops[frame].ceil(s); ok {
		return Orf{Start: s, Stop: stop, Length: stop - s + 3}
	}
	shift := 2
	if n%3 == 2 {
		shift = 1
	}
	length := n - s
	for wraps := 1; wraps <= 3; wraps++ {
		frame = (frame + shift) % 3
		if stop, ok := stops[frame].min(); ok {
			return Orf{Start: s, Stop: stop, Wraps: wraps, Length: length + stop + 3}
		}
		if wraps < 3 {
			length += n
		}
	}
	return Orf{Start: s, Stop: NoStop, Wraps: 3, Length: length + s}
}

// FindOrfs is a convenience wrapper that builds a Finder for the given codons
// and runs it on seq.
func FindOrfs(seq []byte, starts, stops []string) ([]Orf, error) {
	f, err := NewFinder(Opts{StartCodons: starts, StopCodons: stops})
	if err != nil {
		return nil, err
	}
	return f.Find(seq), nil
}
