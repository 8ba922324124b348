// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package biosimd provides byte-array operations on ASCII nucleotide
// sequences: IUPAC-aware reverse complementation (which switches to the RNA
// alphabet when a sequence carries U instead of T) and normalization of raw
// FASTA/FASTQ sequence bytes.
//
// Reversal is delegated to base/simd; see base/simd/doc.go for more comments
// on the overall design.
package biosimd
