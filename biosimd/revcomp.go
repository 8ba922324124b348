// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package biosimd

import (
	"github.com/grailbio/base/simd"
)

// iupacPairs lists complementary IUPAC codes two at a time. S, W and N are
// self-complementary and are left out; every byte not mentioned here maps to
// itself, so the DNA complement is an involution over all 256 byte values.
const iupacPairs = "ATCGRYKMBVDH"

var (
	dnaComp8Table [256]byte
	rnaComp8Table [256]byte
)

func init() {
	for i := range dnaComp8Table {
		dnaComp8Table[i] = byte(i)
	}
	for i := 0; i < len(iupacPairs); i += 2 {
		x, y := iupacPairs[i], iupacPairs[i+1]
		dnaComp8Table[x], dnaComp8Table[y] = y, x
		dnaComp8Table[x|0x20], dnaComp8Table[y|0x20] = y|0x20, x|0x20
	}
	dnaComp8Table['U'], dnaComp8Table['u'] = 'A', 'a'

	rnaComp8Table = dnaComp8Table
	rnaComp8Table['A'], rnaComp8Table['a'] = 'U', 'u'
	rnaComp8Table['U'], rnaComp8Table['u'] = 'A', 'a'
}

// IsRNA reports whether ascii8[] looks like an RNA sequence, i.e. it contains
// at least one 'U'/'u' and no 'T'/'t'.
func IsRNA(ascii8 []byte) bool {
	sawU := false
	for _, b := range ascii8 {
		switch b {
		case 'T', 't':
			return false
		case 'U', 'u':
			sawU = true
		}
	}
	return sawU
}

func compTable(ascii8 []byte) *[256]byte {
	if IsRNA(ascii8) {
		return &rnaComp8Table
	}
	return &dnaComp8Table
}

// Complement returns the complement of a single base. When rna is true, 'A'
// pairs with 'U' instead of 'T'.
func Complement(b byte, rna bool) byte {
	if rna {
		return rnaComp8Table[b]
	}
	return dnaComp8Table[b]
}

// ReverseComp8Inplace reverse-complements ascii8[], assuming that it's using
// ASCII encoding.  IUPAC ambiguity codes are complemented (R<->Y, K<->M,
// B<->V, D<->H), case is preserved, and any other byte is left as is.  If the
// sequence is RNA (see IsRNA), 'A' becomes 'U'.
func ReverseComp8Inplace(ascii8 []byte) {
	table := compTable(ascii8)
	simd.Reverse8Inplace(ascii8)
	for i, b := range ascii8 {
		ascii8[i] = table[b]
	}
}

// ReverseComp8 writes the reverse-complement of src[] to dst[], with the same
// mapping as ReverseComp8Inplace.
//
// It panics if len(dst) != len(src).
func ReverseComp8(dst, src []byte) {
	if len(dst) != len(src) {
		panic("ReverseComp8 requires len(dst) == len(src).")
	}
	table := compTable(src)
	simd.Reverse8(dst, src)
	for i, b := range dst {
		dst[i] = table[b]
	}
}

// ReverseComp returns a newly allocated reverse-complement of ascii8[].
func ReverseComp(ascii8 []byte) []byte {
	dst := make([]byte, len(ascii8))
	ReverseComp8(dst, ascii8)
	return dst
}
