// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package cmd

import (
	"context"

	"github.com/grailbio/circkit/biosimd"
	"github.com/grailbio/circkit/circular"
	"github.com/grailbio/circkit/encoding/fasta"
	"github.com/grailbio/circkit/pipeline"
	"v.io/x/lib/cmdline"
)

func newCmdCanonicalize(name string) *cmdline.Command {
	cmd := &cmdline.Command{
		Name:  name,
		Short: "Rewrite circular sequences in canonical form",
		Long: `
The canonical form of a circular sequence is the lexicographically smallest
rotation of either strand.  Two records hold the same circular molecule iff
their canonical forms are equal.`,
		ArgsName: "[input]",
		ArgsLong: inputHelp,
	}
	if name != "canonicalize" {
		cmd.Short = "Shorthand for canonicalize"
	}
	iof := addIOFlags(cmd)
	iupac := cmd.Flags.Bool("iupac", false, "Keep IUPAC ambiguity codes instead of replacing them with N")
	cmd.Runner = newRunner(cmd.Name, func(ctx context.Context, in string) error {
		return canonicalize(ctx, *iupac, iof.pipelineOpts(), in, iof.out())
	})
	return cmd
}

func canonicalize(ctx context.Context, iupac bool, opts pipeline.Opts, in string, out output) error {
	return transform(ctx, "canonicalize", in, out, opts, func(it *pipeline.Item) error {
		seq := biosimd.Normalize(it.Record.Seq, iupac)
		if len(seq) > 0 {
			seq = circular.Canonicalize(seq)
		}
		it.Out = append(it.Out, fasta.Record{Name: it.Record.Name, Seq: seq})
		return nil
	}, nil)
}
