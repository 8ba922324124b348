// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package cmd

import (
	"context"

	"github.com/grailbio/base/log"
	"github.com/grailbio/circkit/encoding/fasta"
	"github.com/grailbio/circkit/pipeline"
	"v.io/x/lib/cmdline"
)

func newCmdCat() *cmdline.Command {
	cmd := &cmdline.Command{
		Name: "cat",
		Short: `Concatenate each sequence to itself, for tools that do not
support circular sequences`,
		ArgsName: "[input]",
		ArgsLong: inputHelp,
	}
	iof := addIOFlags(cmd)
	cmd.Runner = newRunner(cmd.Name, func(ctx context.Context, in string) error {
		return concatenate(ctx, iof.pipelineOpts(), in, iof.out())
	})
	return cmd
}

func newCmdDecat() *cmdline.Command {
	cmd := &cmdline.Command{
		Name:     "decat",
		Short:    "Keep the first half of each sequence; the reverse of cat",
		ArgsName: "[input]",
		ArgsLong: inputHelp,
	}
	iof := addIOFlags(cmd)
	cmd.Runner = newRunner(cmd.Name, func(ctx context.Context, in string) error {
		return deconcatenate(ctx, iof.pipelineOpts(), in, iof.out())
	})
	return cmd
}

func concatenate(ctx context.Context, opts pipeline.Opts, in string, out output) error {
	return transform(ctx, "cat", in, out, opts, func(it *pipeline.Item) error {
		seq := it.Record.Seq
		it.Out = append(it.Out, fasta.Record{
			Name: it.Record.Name,
			Seq:  append(seq[:len(seq):len(seq)], seq...),
		})
		return nil
	}, nil)
}

func deconcatenate(ctx context.Context, opts pipeline.Opts, in string, out output) error {
	return transform(ctx, "decat", in, out, opts, func(it *pipeline.Item) error {
		seq := it.Record.Seq
		if len(seq)%2 != 0 {
			log.Error.Printf("decat: %s: sequence length %d is odd; was it concatenated to itself?",
				it.Record.ID(), len(seq))
		}
		it.Out = append(it.Out, fasta.Record{Name: it.Record.Name, Seq: seq[:len(seq)/2]})
		return nil
	}, nil)
}
