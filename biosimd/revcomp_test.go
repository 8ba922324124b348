// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package biosimd_test

import (
	"bytes"
	"math/rand"
	"testing"

	"github.com/grailbio/base/simd"
	"github.com/grailbio/circkit/biosimd"
	"github.com/grailbio/testutil/expect"
)

func complementSlow(b byte, rna bool) byte {
	switch b {
	case 'A':
		if rna {
			return 'U'
		}
		return 'T'
	case 'a':
		if rna {
			return 'u'
		}
		return 't'
	case 'T', 'U':
		return 'A'
	case 't', 'u':
		return 'a'
	case 'C':
		return 'G'
	case 'c':
		return 'g'
	case 'G':
		return 'C'
	case 'g':
		return 'c'
	case 'R':
		return 'Y'
	case 'Y':
		return 'R'
	case 'K':
		return 'M'
	case 'M':
		return 'K'
	case 'B':
		return 'V'
	case 'V':
		return 'B'
	case 'D':
		return 'H'
	case 'H':
		return 'D'
	}
	return b
}

func reverseComp8Slow(ascii8 []byte) {
	rna := false
	hasT := false
	for _, b := range ascii8 {
		switch b {
		case 'U', 'u':
			rna = true
		case 'T', 't':
			hasT = true
		}
	}
	rna = rna && !hasT
	for i, j := 0, len(ascii8)-1; i < j; i, j = i+1, j-1 {
		ascii8[i], ascii8[j] = ascii8[j], ascii8[i]
	}
	for i := range ascii8 {
		ascii8[i] = complementSlow(ascii8[i], rna)
	}
}

var revComp8RandTable = [...]byte{
	'A', 'C', 'G', 'T', 'N', 'a', 'c', 'g', 't', 'n', 'R', 'Y', 'S', 'W', '-', 0}

func TestReverseComp8(t *testing.T) {
	maxSize := 500
	nIter := 200
	rng := rand.New(rand.NewSource(1))
	main1Arr := simd.MakeUnsafe(maxSize)
	main2Arr := simd.MakeUnsafe(maxSize)
	main3Arr := simd.MakeUnsafe(maxSize)
	for iter := 0; iter < nIter; iter++ {
		sliceStart := rng.Intn(maxSize)
		sliceEnd := sliceStart + rng.Intn(maxSize-sliceStart)
		main1Slice := main1Arr[sliceStart:sliceEnd]
		main2Slice := main2Arr[sliceStart:sliceEnd]
		main3Slice := main3Arr[sliceStart:sliceEnd]
		for ii := range main1Slice {
			main1Slice[ii] = revComp8RandTable[rng.Intn(len(revComp8RandTable))]
		}
		copy(main2Slice, main1Slice)
		sentinel := byte(rng.Intn(256))
		main2Arr[sliceEnd] = sentinel
		main3Arr[sliceEnd] = sentinel
		biosimd.ReverseComp8(main3Slice, main1Slice)
		biosimd.ReverseComp8Inplace(main2Slice)
		reverseComp8Slow(main1Slice)
		if !bytes.Equal(main1Slice, main2Slice) {
			t.Fatal("Mismatched ReverseComp8Inplace result.")
		}
		if !bytes.Equal(main1Slice, main3Slice) {
			t.Fatal("Mismatched ReverseComp8 result.")
		}
		if main2Arr[sliceEnd] != sentinel {
			t.Fatal("ReverseComp8Inplace clobbered an extra byte.")
		}
		if main3Arr[sliceEnd] != sentinel {
			t.Fatal("ReverseComp8 clobbered an extra byte.")
		}
	}
}

func TestReverseCompInvolution(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	for iter := 0; iter < 100; iter++ {
		seq := make([]byte, rng.Intn(200))
		for i := range seq {
			seq[i] = byte(rng.Intn(256))
			if seq[i] == 'U' || seq[i] == 'u' {
				seq[i] = 'N'
			}
		}
		expect.EQ(t, biosimd.ReverseComp(biosimd.ReverseComp(seq)), seq)
	}
}

func TestReverseCompRNA(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"ACGT", "ACGT"},
		{"AUU", "AAU"},
		{"acgu", "acgu"},
		{"GAUUACA", "UGUAAUC"},
		{"AAAAAAA", "TTTTTTT"},
		{"AtcgU", "AcgaT"},
		{"RYKMSWBDHVN", "NBDHVWSKMRY"},
	}
	for _, test := range tests {
		expect.EQ(t, string(biosimd.ReverseComp([]byte(test.in))), test.want, "in=%s", test.in)
	}
	expect.True(t, biosimd.IsRNA([]byte("AUGC")))
	expect.False(t, biosimd.IsRNA([]byte("ATGC")))
	expect.False(t, biosimd.IsRNA([]byte("AUGT")))
	expect.EQ(t, biosimd.Complement('A', true), byte('U'))
	expect.EQ(t, biosimd.Complement('A', false), byte('T'))
}

func TestReverseComp8Panics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("ReverseComp8 accepted mismatched lengths")
		}
	}()
	biosimd.ReverseComp8(make([]byte, 3), make([]byte, 4))
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in    string
		iupac bool
		want  string
	}{
		{"acgt", false, "ACGT"},
		{"ACGU", false, "ACGT"},
		{"AC GT\r\n", false, "ACGT"},
		{"ACRYT", false, "ACNNT"},
		{"ACRYT", true, "ACRYT"},
		{"ac-x*", true, "ACNNN"},
		{"", false, ""},
	}
	for _, test := range tests {
		expect.EQ(t, string(biosimd.Normalize([]byte(test.in), test.iupac)), test.want, "in=%q", test.in)
	}
}
