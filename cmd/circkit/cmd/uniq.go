// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package cmd

import (
	"context"
	"fmt"

	"github.com/grailbio/base/log"
	"github.com/grailbio/circkit/biosimd"
	"github.com/grailbio/circkit/circular"
	"github.com/grailbio/circkit/pipeline"
	"v.io/x/lib/cmdline"
)

type uniqOpts struct {
	// canonicalize writes the canonical form of each kept record.
	canonicalize bool
	// table, if set, receives one (id, duplicate_id) row per dropped
	// record.
	table    string
	hash     string
	pipeline pipeline.Opts
}

func newCmdUniq() *cmdline.Command {
	cmd := &cmdline.Command{
		Name:  "uniq",
		Short: "Drop records that hold the same circular molecule as an earlier record",
		Long: `
Two records are duplicates when their canonical forms are equal, that is, when
one is a rotation of the other or of its reverse complement.  The first record
of each group is kept.`,
		ArgsName: "[input]",
		ArgsLong: inputHelp,
	}
	iof := addIOFlags(cmd)
	opts := uniqOpts{}
	cmd.Flags.BoolVar(&opts.canonicalize, "canonicalize", false, "Write the canonical form of each kept record")
	cmd.Flags.StringVar(&opts.table, "table", "", `Write a table of duplicates to this path, one row per
dropped record.  Tab separated if the path ends in .tsv, comma separated
otherwise.`)
	cmd.Flags.StringVar(&opts.hash, "hash", pipeline.HashNames[0],
		fmt.Sprintf("Hash function used to fingerprint canonical sequences, one of %v", pipeline.HashNames))
	cmd.Runner = newRunner(cmd.Name, func(ctx context.Context, in string) error {
		opts.pipeline = iof.pipelineOpts()
		return uniq(ctx, opts, in, iof.out())
	})
	return cmd
}

func uniq(ctx context.Context, opts uniqOpts, in string, out output) (err error) {
	hash, err := pipeline.NewHasher(opts.hash)
	if err != nil {
		return err
	}
	var table *pipeline.TableWriter
	if opts.table != "" {
		if table, err = pipeline.CreateTable(ctx, opts.table, "id", "duplicate_id"); err != nil {
			return err
		}
		defer func() {
			if e := table.Close(ctx); e != nil && err == nil {
				err = e
			}
		}()
	}
	dedup := pipeline.NewDeduper(hash)
	var dups int
	work := func(it *pipeline.Item) error {
		seq := biosimd.Normalize(it.Record.Seq, false)
		if len(seq) > 0 {
			seq = circular.Canonicalize(seq)
		}
		it.Aux = seq
		return nil
	}
	emit := func(it *pipeline.Item) error {
		canon := it.Aux.([]byte)
		id := it.Record.ID()
		first, ok := dedup.Add(id, canon)
		if !ok {
			dups++
			if table != nil {
				table.String(first)
				table.String(id)
				table.EndRow()
			}
			return nil
		}
		rec := it.Record
		if opts.canonicalize {
			rec.Seq = canon
		}
		it.Out = append(it.Out, rec)
		return nil
	}
	if err = transform(ctx, "uniq", in, out, opts.pipeline, work, emit); err != nil {
		return err
	}
	log.Printf("uniq: %d distinct sequences, %d duplicates", dedup.Len(), dups)
	return nil
}
