// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package orf

import "sort"

// Longest keeps, for each stop codon, the longest ORF that ends there.
// Unterminated ORFs form one group of their own.  Among equally long ORFs the
// one earlier in orfs wins.  The result is ordered by decreasing length, and
// orfs is not modified.
func Longest(orfs []Orf) []Orf {
	sorted := make([]Orf, len(orfs))
	copy(sorted, orfs)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Length > sorted[j].Length })
	seen := make(map[int]bool, len(sorted))
	out := sorted[:0]
	for _, o := range sorted {
		if seen[o.Stop] {
			continue
		}
		seen[o.Stop] = true
		out = append(out, o)
	}
	return out
}
