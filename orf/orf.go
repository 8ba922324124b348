// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package orf

import "fmt"

// NoStop is the Orf.Stop value of an unterminated ORF.
const NoStop = -1

// Orf is an open reading frame in a circular sequence.
type Orf struct {
	// Start is the position of the first base of the start codon.
	Start int
	// Stop is the position of the first base of the terminating stop codon,
	// or NoStop.
	Stop int
	// Wraps is the number of times the reading frame shifted while the ORF
	// crossed the origin.  It is always 0 when the sequence length is a
	// multiple of three.
	Wraps int
	// Length is the ORF length in bases, including the start and stop codons.
	// It may exceed the sequence length.
	Length int
}

// Terminated reports whether the ORF ends at a stop codon.
func (o Orf) Terminated() bool { return o.Stop != NoStop }

// Sequence returns the bases of the ORF in the circular sequence seq, which
// must be the sequence the ORF was found in.  The stop codon is omitted
// unless includeStop is set.  An unterminated ORF is returned whole.
func (o Orf) Sequence(seq []byte, includeStop bool) []byte {
	n := o.Length
	if o.Terminated() && !includeStop {
		n -= 3
	}
	out := make([]byte, n)
	if len(seq) == 0 {
		return out[:0]
	}
	pos := o.Start % len(seq)
	for i := 0; i < n; {
		c := copy(out[i:], seq[pos:])
		i += c
		pos = 0
	}
	return out
}

func (o Orf) String() string {
	stop := "none"
	if o.Terminated() {
		stop = fmt.Sprint(o.Stop)
	}
	return fmt.Sprintf("{start:%d stop:%s wraps:%d length:%d}", o.Start, stop, o.Wraps, o.Length)
}
