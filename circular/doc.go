// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package circular provides operations on sequences whose ends are
// contiguous, such as plasmids and viroid genomes: rotation, the
// lexicographically minimal rotation, and a rotation- and strand-invariant
// canonical form suitable for deduplication.
package circular
