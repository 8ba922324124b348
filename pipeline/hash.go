// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package pipeline

import (
	"encoding/binary"
	"fmt"
	"sync"

	"blainsmith.com/go/seahash"
	"github.com/dgryski/go-farm"
	"github.com/grailbio/base/errors"
	"github.com/minio/highwayhash"
)

// HashKey is a sequence fingerprint.  64-bit hashes fill the first eight
// bytes.
type HashKey = [highwayhash.Size]uint8

// Hasher fingerprints a sequence.
type Hasher func(seq []byte) HashKey

// HashNames lists the names accepted by NewHasher.  The first is the
// default.
var HashNames = []string{"farm", "seahash", "highway"}

const farmSeed = 0x636972636b6974

var highwaySeed = HashKey{}

// NewHasher returns the hasher with the given name.  An empty name selects
// farmhash.
func NewHasher(name string) (Hasher, error) {
	switch name {
	case "", "farm":
		return func(seq []byte) HashKey {
			return key64(farm.Hash64WithSeed(seq, farmSeed))
		}, nil
	case "seahash":
		return func(seq []byte) HashKey {
			return key64(seahash.Sum64(seq))
		}, nil
	case "highway":
		return func(seq []byte) HashKey {
			return highwayhash.Sum(seq, highwaySeed[:])
		}, nil
	}
	return nil, errors.E(errors.Invalid,
		fmt.Sprintf("unknown hash function %q; choose one of %v", name, HashNames))
}

func key64(h uint64) (k HashKey) {
	binary.LittleEndian.PutUint64(k[:], h)
	return
}

// Deduper remembers the first ID seen for each fingerprint.  It is safe
// for concurrent use, but "first" is only meaningful when Add is called in
// input order.
type Deduper struct {
	hash Hasher
	mu   sync.Mutex
	seen map[HashKey]string
}

// NewDeduper creates an empty Deduper.
func NewDeduper(hash Hasher) *Deduper {
	return &Deduper{hash: hash, seen: map[HashKey]string{}}
}

// Add records seq under id.  If an equal fingerprint was added before, Add
// returns the earlier ID and false.
func (d *Deduper) Add(id string, seq []byte) (string, bool) {
	k := d.hash(seq)
	d.mu.Lock()
	defer d.mu.Unlock()
	if first, ok := d.seen[k]; ok {
		return first, false
	}
	d.seen[k] = id
	return id, true
}

// Len returns the number of distinct fingerprints.
func (d *Deduper) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.seen)
}
