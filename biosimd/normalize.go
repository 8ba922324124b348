// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package biosimd

const iupacCodes = "ACGTNRYKMSWBDHV"

var (
	normalizeTable      [256]byte
	normalizeIUPACTable [256]byte
)

// skip marks bytes that Normalize drops entirely.
const skip = 0

func init() {
	for i := range normalizeTable {
		normalizeTable[i] = 'N'
		normalizeIUPACTable[i] = 'N'
	}
	for _, b := range []byte("ACGTN") {
		normalizeTable[b], normalizeTable[b|0x20] = b, b
	}
	for i := 0; i < len(iupacCodes); i++ {
		b := iupacCodes[i]
		normalizeIUPACTable[b], normalizeIUPACTable[b|0x20] = b, b
	}
	for _, b := range []byte{'U', 'u'} {
		normalizeTable[b] = 'T'
		normalizeIUPACTable[b] = 'T'
	}
	for _, b := range []byte{' ', '\t', '\r', '\n', '\v', '\f'} {
		normalizeTable[b] = skip
		normalizeIUPACTable[b] = skip
	}
}

// Normalize returns a cleaned copy of a raw sequence: whitespace is removed,
// letters are capitalized, U becomes T, and any byte outside ACGTN becomes N.
// If iupac is set, the IUPAC ambiguity codes RYKMSWBDHV are kept as well.
func Normalize(ascii8 []byte, iupac bool) []byte {
	table := &normalizeTable
	if iupac {
		table = &normalizeIUPACTable
	}
	out := make([]byte, 0, len(ascii8))
	for _, b := range ascii8 {
		if c := table[b]; c != skip {
			out = append(out, c)
		}
	}
	return out
}
