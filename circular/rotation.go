// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package circular

import "math"

// MinimalRotation returns the index i such that seq[i:]+seq[:i] is the
// lexicographically smallest rotation of seq.  Among equal rotations the
// leftmost start found by the scan is reported, e.g. "AAA" -> 0,
// "banana" -> 5, "TAA" -> 1.
//
// The scan is the Lyndon-factorization variant of Booth's algorithm: it runs in
// O(n) time and O(1) extra space.
//
// REQUIRES: len(seq) > 0.
func MinimalRotation(seq []byte) int {
	n := len(seq)
	if n == 0 {
		panic("MinimalRotation: empty sequence")
	}
	var (
		i   int // start of the current Lyndon factor
		ans int
	)
	for i < n {
		ans = i
		// Compare against seq+seq without materializing it.
		j, k := i+1, i
		for j < 2*n && seq[k%n] <= seq[j%n] {
			if seq[k%n] < seq[j%n] {
				k = i
			} else {
				k++
			}
			j++
		}
		// Skip whole copies of the Lyndon word seq[i:i+(j-k)].
		for i <= k {
			i += j - k
		}
	}
	return ans
}

// RotateLeft returns a new slice holding seq[i:]+seq[:i]. i is reduced modulo
// len(seq).
func RotateLeft(seq []byte, i int) []byte {
	n := len(seq)
	out := make([]byte, n)
	if n == 0 {
		return out
	}
	i %= n
	if i < 0 {
		i += n
	}
	copy(out, seq[i:])
	copy(out[n-i:], seq[:i])
	return out
}

// RotationIndex converts a signed rotation amount into the start index of the
// rotated sequence. Positive k rotates right (the last k bases move to the
// front), negative k rotates left. Magnitudes larger than n wrap around.
//
// REQUIRES: n > 0.
func RotationIndex(n, k int) int {
	if k >= 0 {
		return (n - k%n) % n
	}
	return (-k) % n
}

// Rotate returns seq rotated right by k bases (left if k is negative).
func Rotate(seq []byte, k int) []byte {
	if len(seq) == 0 {
		return []byte{}
	}
	return RotateLeft(seq, RotationIndex(len(seq), k))
}

// RotatePercent rotates seq right by floor(len(seq)*fraction) bases.
// fraction is a decimal, e.g. 0.25 for a quarter of the sequence.
func RotatePercent(seq []byte, fraction float64) []byte {
	return Rotate(seq, int(math.Floor(float64(len(seq))*fraction)))
}
