// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package pipeline holds the record plumbing shared by the circkit
// subcommands: opening (possibly compressed) FASTA or FASTQ input,
// writing FASTA output, transforming records in parallel while preserving
// input order, side tables, and sequence hashing for deduplication.
//
// Paths go through github.com/grailbio/base/file, so both local paths and
// s3:// URLs work.  The empty path and "-" denote stdin or stdout.
package pipeline
