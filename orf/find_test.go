// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package orf_test

import (
	"bytes"
	"math/rand"
	"testing"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/circkit/orf"
	"github.com/grailbio/testutil/expect"
	"github.com/stretchr/testify/assert"
)

func findDefault(t *testing.T, seq string) []orf.Orf {
	f, err := orf.NewFinder(orf.DefaultOpts)
	assert.NoError(t, err)
	return f.Find([]byte(seq))
}

func TestFind(t *testing.T) {
	tests := []struct {
		name string
		seq  string
		want []orf.Orf
	}{
		{"wrap once, length%3=0", "GCATAAGCAATG", []orf.Orf{{Start: 9, Stop: 3, Wraps: 0, Length: 9}}},
		{"wrap once, length%3=1", "GCATAAGATG", []orf.Orf{{Start: 7, Stop: 3, Wraps: 1, Length: 9}}},
		{"wrap once, length%3=2", "GCATAAGCATG", []orf.Orf{{Start: 8, Stop: 3, Wraps: 1, Length: 9}}},
		{"wrap twice, length%3=1", "ATGAAAAAAAAAA", []orf.Orf{{Start: 0, Stop: 1, Wraps: 2, Length: 30}}},
		{"wrap twice, length%3=2", "AATGCATAAAA", []orf.Orf{{Start: 1, Stop: 6, Wraps: 2, Length: 30}}},
		{"nested starts", "ATGATGTAG", []orf.Orf{
			{Start: 0, Stop: 6, Length: 9},
			{Start: 3, Stop: 6, Length: 6},
		}},
		{"stop across origin", "ATGCATG", []orf.Orf{
			{Start: 0, Stop: 5, Wraps: 1, Length: 15},
			{Start: 4, Stop: 5, Wraps: 2, Length: 18},
		}},
		{"unterminated in frame", "ATGAAATTT", []orf.Orf{{Start: 0, Stop: orf.NoStop, Length: 9}}},
		{"unterminated after three wraps", "CCCATGCC", []orf.Orf{{Start: 3, Stop: orf.NoStop, Wraps: 3, Length: 24}}},
		{"no start", "CCCCCC", nil},
	}
	for _, test := range tests {
		expect.EQ(t, findDefault(t, test.seq), test.want, test.name)
	}
	expect.EQ(t, len(findDefault(t, "")), 0)
}

func TestFindWrapsThreeTimes(t *testing.T) {
	// The only stop in reach sits in the start frame, three passes around.
	seq := "GGTCGGAGAATTGGGTCAGTTTCGGGCTTAAAAACTCTGACTTGTCATGCTCGTGGCGTCCCTACCG"
	orfs := findDefault(t, seq)
	assert.Len(t, orfs, 1)
	o := orfs[0]
	expect.EQ(t, o.Start, 46)
	expect.EQ(t, o.Stop, 28)
	expect.EQ(t, o.Wraps, 3)
	expect.True(t, o.Terminated())
	expect.EQ(t, string(o.Sequence([]byte(seq), true)),
		"ATGCTCGTGGCGTCCCTACCGGGTCGGAGAATTGGGTCAGTTTCGGGCTTAAAAACTCTGACTTGTCATGCTCGTGGCGTCCCTACCG"+
			"GGTCGGAGAATTGGGTCAGTTTCGGGCTTAAAAACTCTGACTTGTCATGCTCGTGGCGTCCCTACCGGGTCGGAGAATTGGGTCAGTTTCGGGCTTAA")
}

func TestFindProperties(t *testing.T) {
	rng := rand.New(rand.NewSource(0))
	f, err := orf.NewFinder(orf.DefaultOpts)
	assert.NoError(t, err)
	for iter := 0; iter < 500; iter++ {
		seq := randSeq(rng, 3+rng.Intn(298))
		orfs := f.Find(seq)
		for _, o := range orfs {
			expect.EQ(t, o.Length%3, 0, "seq=%s orf=%v", seq, o)
			expect.True(t, o.Start != o.Stop, "seq=%s orf=%v", seq, o)
			expect.True(t, o.Wraps >= 0 && o.Wraps <= 3, "seq=%s orf=%v", seq, o)
			if len(seq)%3 == 0 {
				expect.EQ(t, o.Wraps, 0, "seq=%s orf=%v", seq, o)
			}
			s := o.Sequence(seq, true)
			expect.EQ(t, string(s[:3]), "ATG", "seq=%s orf=%v", seq, o)
			if !o.Terminated() {
				continue
			}
			// The ORF reads in frame up to its stop codon and no earlier.
			stop := string(s[len(s)-3:])
			expect.True(t, contains(stopCodons, stop), "seq=%s orf=%v", seq, o)
			for i := 0; i+3 < len(s); i += 3 {
				expect.False(t, contains(stopCodons, string(s[i:i+3])), "seq=%s orf=%v codon %d", seq, o, i)
			}
		}
	}
}

// TestFindMatchesLinearScan compares ORFs that do not cross the origin with
// a plain linear search.
func TestFindMatchesLinearScan(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	f, err := orf.NewFinder(orf.DefaultOpts)
	assert.NoError(t, err)
	for iter := 0; iter < 300; iter++ {
		seq := randSeq(rng, 3+rng.Intn(200))
		got := map[int]orf.Orf{}
		for _, o := range f.Find(seq) {
			got[o.Start] = o
		}
		for s := 0; s+3 <= len(seq); s++ {
			if !bytes.Equal(seq[s:s+3], []byte("ATG")) {
				continue
			}
			for p := s + 3; p+3 <= len(seq); p += 3 {
				if contains(stopCodons, string(seq[p:p+3])) {
					o, ok := got[s]
					expect.True(t, ok, "seq=%s start=%d", seq, s)
					expect.EQ(t, o.Stop, p, "seq=%s start=%d", seq, s)
					expect.EQ(t, o.Length, p-s+3, "seq=%s start=%d", seq, s)
					expect.EQ(t, o.Wraps, 0, "seq=%s start=%d", seq, s)
					break
				}
			}
		}
	}
}

func TestFindOrfs(t *testing.T) {
	orfs, err := orf.FindOrfs([]byte("GTGCCCTAA"), []string{"GTG"}, []string{"TAA"})
	assert.NoError(t, err)
	expect.EQ(t, orfs, []orf.Orf{{Start: 0, Stop: 6, Length: 9}})

	_, err = orf.FindOrfs([]byte("ATG"), []string{"ATGA"}, stopCodons)
	expect.True(t, errors.Is(errors.Invalid, err), "err=%v", err)
	_, err = orf.NewFinder(orf.Opts{StartCodons: startCodons})
	expect.True(t, errors.Is(errors.Invalid, err), "err=%v", err)
}

func TestSequence(t *testing.T) {
	seq := []byte("AATGA")
	o := orf.Orf{Start: 1, Stop: 2, Wraps: 1, Length: 9}
	expect.EQ(t, string(o.Sequence(seq, true)), "ATGAAATGA")
	expect.EQ(t, string(o.Sequence(seq, false)), "ATGAAA")

	open := orf.Orf{Start: 3, Stop: orf.NoStop, Wraps: 3, Length: 24}
	expect.False(t, open.Terminated())
	expect.EQ(t, string(open.Sequence([]byte("CCCATGCC"), false)), "ATGCCCCCATGCCCCCATGCCCCC")
	expect.EQ(t, open.String(), "{start:3 stop:none wraps:3 length:24}")
}
