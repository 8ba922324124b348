// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package orf finds open reading frames in circular sequences.
//
// A circular sequence has no first base, so an ORF may run past the origin
// and continue from the beginning of the sequence. When the sequence length
// is not a multiple of three, every pass over the origin also moves the
// reading frame, and an ORF may traverse the sequence up to three times
// before it meets a stop codon or returns to its own frame.
//
// ScanCodons indexes codon hits by frame, Finder turns them into one Orf
// per start codon, and Longest keeps the longest Orf ending at each stop.
package orf
