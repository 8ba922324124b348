// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package pipeline

import (
	"runtime"
	"sync"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/syncqueue"
	"github.com/grailbio/base/traverse"
	"github.com/grailbio/circkit/encoding/fasta"
)

// Opts controls the parallelism of Run.
type Opts struct {
	// Parallelism is the number of worker goroutines.  Values < 1 mean 1.
	Parallelism int
	// BatchSize is the number of records handed to a worker at once.
	// Values < 1 mean 1.
	BatchSize int
}

// DefaultOpts uses one worker per CPU.
var DefaultOpts = Opts{
	Parallelism: runtime.NumCPU(),
	BatchSize:   64,
}

// Source yields records in input order.  *Reader implements Source.
type Source interface {
	Scan(rec *fasta.Record) bool
	Err() error
}

// Item is the unit of work in Run.
type Item struct {
	// Index is the 0-based position of Record in the input.
	Index int
	// Record is the input record.  Work may modify it in place.
	Record fasta.Record
	// Out collects records produced by work, for emit to write.
	Out []fasta.Record
	// Aux carries per-item data from work to emit.
	Aux interface{}
}

type batch struct {
	idx   int
	items []*Item
}

// Run reads every record from src, calls work on each from a pool of
// goroutines, and calls emit on each item in input order from a single
// goroutine.  After the first error, work and emit are no longer called for
// later items, and Run returns that error.
func Run(src Source, opts Opts, work func(*Item) error, emit func(*Item) error) error {
	if opts.Parallelism < 1 {
		opts.Parallelism = 1
	}
	if opts.BatchSize < 1 {
		opts.BatchSize = 1
	}
	var (
		e       errors.Once
		batchCh = make(chan batch, opts.Parallelism)
		oq      = syncqueue.NewOrderedQueue(2 * opts.Parallelism)
		nRec    int
		nBatch  int
	)

	// The reader thread
	go func() {
		defer close(batchCh)
		for e.Err() == nil {
			b := batch{idx: nBatch}
			for len(b.items) < opts.BatchSize {
				it := &Item{Index: nRec}
				if !src.Scan(&it.Record) {
					break
				}
				b.items = append(b.items, it)
				nRec++
			}
			if len(b.items) == 0 {
				break
			}
			batchCh <- b
			nBatch++
		}
		e.Set(src.Err())
	}()

	// The emit thread
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			val, ok, err := oq.Next()
			if err != nil {
				e.Set(err)
				break
			}
			if !ok {
				break
			}
			// Keep draining after an error so that workers blocked in
			// Insert can finish.
			for _, it := range val.([]*Item) {
				if e.Err() != nil {
					break
				}
				e.Set(emit(it))
			}
		}
	}()

	e.Set(traverse.Each(opts.Parallelism, func(_ int) error {
		for b := range batchCh {
			for _, it := range b.items {
				if e.Err() != nil {
					break
				}
				if err := work(it); err != nil {
					e.Set(errors.E(err, it.Record.Name))
				}
			}
			if err := oq.Insert(b.idx, b.items); err != nil {
				return err
			}
		}
		return nil
	}))
	if err := oq.Close(nil); err != nil {
		e.Set(err)
	}
	wg.Wait()
	log.Debug.Printf("pipeline: processed %d records in %d batches", nRec, nBatch)
	return e.Err()
}
