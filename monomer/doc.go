// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package monomer detects and trims tandem copies in sequences that may hold
// several approximate copies of one circular molecule, as commonly produced
// by assemblers for plasmids and viroids.
//
// The approach is seed-and-extend: the last bases of the sequence are searched
// for exactly (SeedMatcher), and each hit is verified by comparing the
// implied overlap with a Hamming distance budget.
//
// Example:
//
//   d := 1
//   m, err := monomer.New(monomer.Opts{SeedLen: 10, OverlapDist: &d})
//   ...
//   mono := m.Monomerize(seq)
package monomer
