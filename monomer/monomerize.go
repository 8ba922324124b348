// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package monomer

import (
	"fmt"
	"math"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/log"
	"github.com/grailbio/circkit/biosimd"
	"github.com/grailbio/circkit/util"
)

// MaxMonomerSeedLen is the largest Opts.SeedLen accepted by New.
const MaxMonomerSeedLen = MaxSeedLen - 1

// Opts configures a Monomerizer.
type Opts struct {
	// SeedLen is the length of the sequence suffix used as an exact-match
	// anchor when looking for the start of the next tandem copy. It must be in
	// [1, MaxMonomerSeedLen].
	SeedLen int
	// OverlapDist is the maximum number of mismatches allowed between the
	// overlapping head and tail of a candidate copy. Conflicts with
	// OverlapMinIdentity. If neither is set, the overlap must match exactly.
	OverlapDist *int
	// OverlapMinIdentity is the minimum fraction, in [0, 1], of matching bases
	// within the overlap. An overlap of length L tolerates
	// L-floor(L*OverlapMinIdentity) mismatches. Conflicts with OverlapDist.
	OverlapMinIdentity *float64
}

// DefaultOpts is the default Monomerizer configuration: a 10-base seed and
// exact overlaps.
var DefaultOpts = Opts{
	SeedLen: 10,
}

// Monomerizer locates the end of the first tandem copy in a sequence that may
// consist of several approximate copies of a circular monomer.
//
// A Monomerizer is read-only after New returns, so one instance can serve
// many goroutines.
type Monomerizer struct {
	seedLen     int
	maxDist     int
	identity    float64
	useIdentity bool
}

// New validates opts and creates a Monomerizer.  It fails with an
// errors.Invalid error when both OverlapDist and OverlapMinIdentity are set,
// when SeedLen is outside [1, MaxMonomerSeedLen], or when either threshold is
// out of range.
func New(opts Opts) (*Monomerizer, error) {
	if opts.OverlapDist != nil && opts.OverlapMinIdentity != nil {
		return nil, errors.E(errors.Invalid,
			"both overlap_dist and overlap_min_identity are set; they are mutually exclusive since they may produce conflicting filtering results")
	}
	if opts.SeedLen < 1 || opts.SeedLen > MaxMonomerSeedLen {
		return nil, errors.E(errors.Invalid,
			fmt.Sprintf("seed length must be at least 1 and at most %d but was set to %d", MaxMonomerSeedLen, opts.SeedLen))
	}
	m := &Monomerizer{seedLen: opts.SeedLen}
	if opts.OverlapDist != nil {
		if *opts.OverlapDist < 0 {
			return nil, errors.E(errors.Invalid,
				fmt.Sprintf("overlap_dist must not be negative but was set to %d", *opts.OverlapDist))
		}
		m.maxDist = *opts.OverlapDist
	}
	if opts.OverlapMinIdentity != nil {
		p := *opts.OverlapMinIdentity
		if !(p >= 0 && p <= 1) {
			return nil, errors.E(errors.Invalid,
				fmt.Sprintf("overlap_min_identity must be between 0.0 and 1.0 but was set to %v", p))
		}
		m.identity, m.useIdentity = p, true
	}
	return m, nil
}

// SeedLen returns the configured seed length.
func (m *Monomerizer) SeedLen() int { return m.seedLen }

// allowedMismatches returns the mismatch budget for an overlap of n bases.
func (m *Monomerizer) allowedMismatches(n int) int {
	if m.useIdentity {
		return n - int(math.Floor(float64(n)*m.identity))
	}
	return m.maxDist
}

// FirstMonomerEnd returns the end (exclusive) of the first tandem copy in seq.
//
// The last SeedLen bases of seq serve as the seed. Each exact occurrence of the
// seed earlier in seq, taken left to right, proposes an overlap: the prefix
// ending with that occurrence should match the suffix of the same length.  The
// first proposal whose Hamming distance is within budget wins, and the copy
// ends where that suffix begins.  The second result is false if seq is not
// longer than the seed or no proposal qualifies.
func (m *Monomerizer) FirstMonomerEnd(seq []byte) (int, bool) {
	n, k := len(seq), m.seedLen
	if n <= k {
		log.Error.Printf("monomerize: sequence of length %d is not longer than seed length %d", n, k)
		return 0, false
	}
	matcher, err := NewSeedMatcher(seq[n-k:])
	if err != nil {
		log.Panicf("monomerize: %v", err)
	}
	for it := matcher.Find(seq[:n-k]); it.Scan(); {
		overlap := it.Offset() + k
		successor := seq[:overlap]
		starter := seq[n-overlap:]
		maxDist := m.allowedMismatches(overlap)
		if util.HammingAtMost(starter, successor, maxDist) {
			if log.At(log.Debug) {
				log.Debug.Printf("monomerize: seed at %d, overlap %d within %d mismatches, boundary %d",
					it.Offset(), overlap, maxDist, n-overlap)
			}
			return n - overlap, true
		}
	}
	return 0, false
}

// LastMonomerEnd repeatedly applies FirstMonomerEnd to the shrinking prefix
// until it stops finding a boundary, so that a trimer or longer multimer is
// reduced to a single copy instead of to its first multi-copy prefix.
func (m *Monomerizer) LastMonomerEnd(seq []byte) (int, bool) {
	end, ok := m.FirstMonomerEnd(seq)
	if !ok {
		return 0, false
	}
	// Each round strictly shrinks end, so this terminates within len(seq)
	// rounds.
	for end > m.seedLen {
		next, found := m.FirstMonomerEnd(seq[:end])
		if !found {
			break
		}
		end = next
	}
	return end, true
}

// LastMonomerEndSensitive is LastMonomerEnd followed by a second search on the
// reverse complement of the resulting monomer. The reverse pass uses the other
// end of the monomer as its seed, so it catches overlaps whose forward seed
// carried a mismatch. It costs about twice as much as LastMonomerEnd.
func (m *Monomerizer) LastMonomerEndSensitive(seq []byte) (int, bool) {
	end, ok := m.LastMonomerEnd(seq)
	monomerLen := len(seq)
	if ok {
		monomerLen = end
	}
	if monomerLen <= m.seedLen {
		return end, ok
	}
	rc := biosimd.ReverseComp(seq[:monomerLen])
	rcEnd, found := m.FirstMonomerEnd(rc)
	if !found {
		return end, ok
	}
	// The reverse pass trims monomerLen-rcEnd bases of overlap; drop the same
	// number from the end of the forward monomer.
	return rcEnd, true
}

// Monomerize returns the first tandem copy of seq, or seq itself if no copy
// boundary is found. The result aliases seq.
func (m *Monomerizer) Monomerize(seq []byte) []byte {
	if end, ok := m.LastMonomerEnd(seq); ok {
		return seq[:end]
	}
	return seq
}

// MonomerizeSensitive is Monomerize using LastMonomerEndSensitive.
func (m *Monomerizer) MonomerizeSensitive(seq []byte) []byte {
	if end, ok := m.LastMonomerEndSensitive(seq); ok {
		return seq[:end]
	}
	return seq
}
