// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package cmd

import (
	"context"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/circkit/circular"
	"github.com/grailbio/circkit/encoding/fasta"
	"github.com/grailbio/circkit/pipeline"
	"v.io/x/lib/cmdline"
)

type rotateOpts struct {
	// Exactly one of bases and fraction is set.
	bases    *int
	fraction *float64
	pipeline pipeline.Opts
}

func newCmdRotate() *cmdline.Command {
	cmd := &cmdline.Command{
		Name:     "rotate",
		Short:    "Rotate circular sequences to the left or right",
		ArgsName: "[input]",
		ArgsLong: inputHelp,
	}
	iof := addIOFlags(cmd)
	bases := cmd.Flags.Int("bases", 0, `Number of bases to rotate by.  Positive values rotate right, so
the last bases move to the front; negative values rotate left.  Amounts larger
than the sequence wrap around.  Conflicts with --percent.`)
	percent := cmd.Flags.Float64("percent", 0, `Rotate right by this fraction of each sequence, e.g. 0.5 for
half.  The number of bases is rounded down.  Conflicts with --bases.`)
	cmd.Runner = newRunner(cmd.Name, func(ctx context.Context, in string) error {
		set := setFlags(&cmd.Flags)
		opts := rotateOpts{pipeline: iof.pipelineOpts()}
		if set["bases"] {
			opts.bases = bases
		}
		if set["percent"] {
			opts.fraction = percent
		}
		return rotate(ctx, opts, in, iof.out())
	})
	return cmd
}

func rotate(ctx context.Context, opts rotateOpts, in string, out output) error {
	switch {
	case opts.bases != nil && opts.fraction != nil:
		return errors.E(errors.Invalid, "--bases and --percent are mutually exclusive")
	case opts.bases == nil && opts.fraction == nil:
		return errors.E(errors.Invalid, "one of --bases or --percent is required")
	case opts.bases != nil && *opts.bases == 0, opts.fraction != nil && *opts.fraction == 0:
		return errors.E(errors.Invalid, "rotation by 0 is not allowed")
	}
	return transform(ctx, "rotate", in, out, opts.pipeline, func(it *pipeline.Item) error {
		var seq []byte
		if opts.bases != nil {
			seq = circular.Rotate(it.Record.Seq, *opts.bases)
		} else {
			seq = circular.RotatePercent(it.Record.Seq, *opts.fraction)
		}
		it.Out = append(it.Out, fasta.Record{Name: it.Record.Name, Seq: seq})
		return nil
	}, nil)
}
