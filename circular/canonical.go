// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package circular

import (
	"bytes"

	"github.com/grailbio/circkit/biosimd"
)

// MinimalRotationOf returns the lexicographically smallest rotation of seq as
// a new slice.
//
// REQUIRES: len(seq) > 0.
func MinimalRotationOf(seq []byte) []byte {
	return RotateLeft(seq, MinimalRotation(seq))
}

// Canonicalize returns a form of seq that is invariant to rotation and to
// strand: every rotation of seq and of its reverse complement canonicalizes to
// the same bytes.  The result is the smaller of the minimal rotation of seq
// and the minimal rotation of its reverse complement.  The result has the
// same length as seq, and Canonicalize(Canonicalize(s)) == Canonicalize(s).
//
// Reverse complementation is IUPAC-aware and switches to the RNA alphabet for
// sequences that contain U but no T; see biosimd.ReverseComp8Inplace.
//
// REQUIRES: len(seq) > 0.
func Canonicalize(seq []byte) []byte {
	r1 := MinimalRotationOf(seq)
	rc := biosimd.ReverseComp(r1)
	// The reverse complement of a minimal rotation is generally not minimal
	// itself, so rotate again.
	r2 := RotateLeft(rc, MinimalRotation(rc))
	if bytes.Compare(r2, r1) < 0 {
		return r2
	}
	return r1
}
