// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package cmd

import (
	"context"
	"fmt"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/log"
	"github.com/grailbio/circkit/biosimd"
	"github.com/grailbio/circkit/encoding/fasta"
	"github.com/grailbio/circkit/monomer"
	"github.com/grailbio/circkit/pipeline"
	"v.io/x/lib/cmdline"
)

type monomerizeOpts struct {
	monomer monomer.Opts
	// sensitive enables the reverse-complement second pass.
	sensitive bool
	// minOverlap is the minimum number of bases trimmed for a record to
	// count as monomerized.
	minOverlap int
	// minOverlapFraction is minOverlap relative to the input length.
	minOverlapFraction float64
	// keepAll writes records that fail to monomerize unchanged instead of
	// dropping them.
	keepAll bool
	// normalize cleans up the output sequence with biosimd.Normalize.
	normalize bool
	pipeline  pipeline.Opts
}

func newCmdMonomerize() *cmdline.Command {
	cmd := &cmdline.Command{
		Name:  "monomerize",
		Short: "Trim tandem copies of circular or multimeric sequences to one monomer",
		Long: `
monomerize looks for the end of the sequence earlier in the same sequence, and
trims everything after the first copy when the overlap matches within the
allowed mismatches.  Records with no overlap are dropped unless --keep-all is
set.`,
		ArgsName: "[input]",
		ArgsLong: inputHelp,
	}
	iof := addIOFlags(cmd)
	sensitive := cmd.Flags.Bool("sensitive", false, `Search again from the other end of the monomer on the reverse
complement.  This catches mutations in the seed, at about twice the cost.`)
	seedLen := cmd.Flags.Int("seed-length", monomer.DefaultOpts.SeedLen,
		fmt.Sprintf("Length of the sequence suffix searched for, in [1, %d]", monomer.MaxMonomerSeedLen))
	maxMismatch := cmd.Flags.Int("max-mismatch", 0, "Maximum mismatches allowed in the overlap.  Conflicts with --min-identity")
	minIdentity := cmd.Flags.Float64("min-identity", 1, "Minimum identity of the overlap, in [0, 1].  Conflicts with --max-mismatch")
	minOverlap := cmd.Flags.Int("min-overlap", 0, "Minimum overlap length, in bases, required to trim a record")
	minOverlapPercent := cmd.Flags.Float64("min-overlap-percent", 0,
		"Minimum overlap length relative to the record length, as a fraction, e.g. 0.1")
	keepAll := cmd.Flags.Bool("keep-all", false, "Write records that do not pass the overlap filters unchanged instead of dropping them")
	normalize := cmd.Flags.Bool("normalize", false, "Capitalize the output and replace non-ACGT bases with N")
	cmd.Runner = newRunner(cmd.Name, func(ctx context.Context, in string) error {
		set := setFlags(&cmd.Flags)
		opts := monomerizeOpts{
			monomer:            monomer.Opts{SeedLen: *seedLen},
			sensitive:          *sensitive,
			minOverlap:         *minOverlap,
			minOverlapFraction: *minOverlapPercent,
			keepAll:            *keepAll,
			normalize:          *normalize,
			pipeline:           iof.pipelineOpts(),
		}
		if set["max-mismatch"] {
			opts.monomer.OverlapDist = maxMismatch
		}
		if set["min-identity"] {
			opts.monomer.OverlapMinIdentity = minIdentity
		}
		return monomerize(ctx, opts, in, iof.out())
	})
	return cmd
}

func monomerize(ctx context.Context, opts monomerizeOpts, in string, out output) error {
	if opts.monomer.OverlapDist != nil && opts.monomer.OverlapMinIdentity != nil {
		return errors.E(errors.Invalid, "--max-mismatch and --min-identity are mutually exclusive")
	}
	m, err := monomer.New(opts.monomer)
	if err != nil {
		return err
	}
	var trimmed, kept int
	work := func(it *pipeline.Item) error {
		seq := it.Record.Seq
		var mono []byte
		if opts.sensitive {
			mono = m.MonomerizeSensitive(seq)
		} else {
			mono = m.Monomerize(seq)
		}
		overlap := len(seq) - len(mono)
		switch {
		case overlap > 0 && overlap >= opts.minOverlap &&
			float64(overlap) >= opts.minOverlapFraction*float64(len(seq)):
			it.Aux = true
		case opts.keepAll:
			mono = seq
		default:
			if log.At(log.Debug) {
				log.Debug.Printf("monomerize: %s: dropped, overlap %d", it.Record.ID(), overlap)
			}
			return nil
		}
		if opts.normalize {
			mono = biosimd.Normalize(mono, false)
		}
		it.Out = append(it.Out, fasta.Record{Name: it.Record.Name, Seq: mono})
		return nil
	}
	emit := func(it *pipeline.Item) error {
		if it.Aux != nil {
			trimmed++
		} else if len(it.Out) > 0 {
			kept++
		}
		return nil
	}
	if err := transform(ctx, "monomerize", in, out, opts.pipeline, work, emit); err != nil {
		return err
	}
	log.Printf("monomerize: trimmed %d records, kept %d unchanged", trimmed, kept)
	return nil
}
