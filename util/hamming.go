package util

import (
	"fmt"
)

// Hamming returns the number of positions at which s1 and s2 differ. s1 and
// s2 must have equal length.
func Hamming(s1, s2 []byte) (distance int) {
	if len(s1) != len(s2) {
		panic(fmt.Sprintf("s1 and s2 must have equal length: %d, %d", len(s1), len(s2)))
	}
	s2 = s2[:len(s1)]
	for i, b := range s1 {
		if b != s2[i] {
			distance++
		}
	}
	return distance
}

// HammingAtMost reports whether s1 and s2 differ in at most max positions.
// It stops scanning as soon as the budget is exceeded. s1 and s2 must have
// equal length.
func HammingAtMost(s1, s2 []byte, max int) bool {
	if len(s1) != len(s2) {
		panic(fmt.Sprintf("s1 and s2 must have equal length: %d, %d", len(s1), len(s2)))
	}
	if max < 0 {
		return false
	}
	s2 = s2[:len(s1)]
	for i, b := range s1 {
		if b != s2[i] {
			if max == 0 {
				return false
			}
			max--
		}
	}
	return true
}
