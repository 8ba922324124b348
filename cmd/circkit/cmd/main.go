// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package cmd

import (
	"context"
	"flag"
	"fmt"

	"github.com/grailbio/base/cmdutil"
	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/circkit/pipeline"
	"v.io/x/lib/cmdline"
)

const inputHelp = `Input FASTA or FASTQ file.  Gzip, zstd, snappy and bzip2
compression is detected from the content.  Reads stdin if omitted or "-".`

// ioFlags are the flags shared by every subcommand.
type ioFlags struct {
	output    *string
	index     *bool
	threads   *int
	batchSize *int
}

func addIOFlags(cmd *cmdline.Command) ioFlags {
	return ioFlags{
		output: cmd.Flags.String("o", "", `Output FASTA file.  A .gz, .bgz, .zst or .sz suffix selects
gzip, block gzip, zstd or snappy compression.  Writes stdout if empty or "-".`),
		index: cmd.Flags.Bool("index", false, `Also write a samtools faidx index, {output}.fai, and for .bgz
output a {output}.gzi block index.  The output must be a plain or .bgz file.`),
		threads:   cmd.Flags.Int("threads", pipeline.DefaultOpts.Parallelism, "Number of worker threads"),
		batchSize: cmd.Flags.Int("batch-size", pipeline.DefaultOpts.BatchSize, "Number of records handed to a worker at once"),
	}
}

func (f ioFlags) pipelineOpts() pipeline.Opts {
	return pipeline.Opts{Parallelism: *f.threads, BatchSize: *f.batchSize}
}

func (f ioFlags) outputOpts() pipeline.OutputOpts {
	return pipeline.OutputOpts{Index: *f.index}
}

// output is where and how a subcommand writes its records.
type output struct {
	path string
	opts pipeline.OutputOpts
}

func (f ioFlags) out() output {
	return output{path: *f.output, opts: f.outputOpts()}
}

// setFlags returns the names of the flags given on the command line.
func setFlags(fs *flag.FlagSet) map[string]bool {
	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	return set
}

// inputArg returns the input path from argv.  No argument means stdin.
func inputArg(name string, argv []string) (string, error) {
	switch len(argv) {
	case 0:
		return "", nil
	case 1:
		return argv[0], nil
	}
	return "", errors.E(errors.Invalid, fmt.Sprintf("%s takes at most one input path, but got %v", name, argv))
}

// newRunner wraps fn as a cmdline runner taking an optional input path.
func newRunner(name string, fn func(ctx context.Context, in string) error) cmdline.Runner {
	return cmdutil.RunnerFunc(func(env *cmdline.Env, argv []string) error {
		in, err := inputArg(name, argv)
		if err != nil {
			return err
		}
		return fn(vcontext.Background(), in)
	})
}

// transform streams the records of in through work and writes every
// Item.Out record to out, in input order.  If emit is non-nil, it is
// called on each item, in order, before the item's output is written.
func transform(ctx context.Context, name, in string, out output, opts pipeline.Opts,
	work func(*pipeline.Item) error, emit func(*pipeline.Item) error) (err error) {
	r, err := pipeline.OpenInput(ctx, in)
	if err != nil {
		return err
	}
	w, err := pipeline.CreateOutput(ctx, out.path, out.opts)
	if err != nil {
		r.Close(ctx) // nolint: errcheck
		return err
	}
	e := errors.Once{}
	e.Set(pipeline.Run(r, opts, work, func(it *pipeline.Item) error {
		if emit != nil {
			if err := emit(it); err != nil {
				return err
			}
		}
		for i := range it.Out {
			if err := w.Write(&it.Out[i]); err != nil {
				return errors.E(err, "write", out.path)
			}
		}
		return nil
	}))
	e.Set(w.Close(ctx))
	e.Set(r.Close(ctx))
	if err = e.Err(); err == nil {
		log.Printf("%s: read %d records, wrote %d", name, r.N(), w.N())
	}
	return err
}

// Run is the entry point of the circkit binary.
func Run() {
	cmdline.HideGlobalFlagsExcept()
	cmdline.Main(newRoot())
}

func newRoot() *cmdline.Command {
	return &cmdline.Command{
		Name:     "circkit",
		Short:    "Tools for circular DNA and RNA sequences",
		LookPath: false,
		Children: []*cmdline.Command{
			newCmdMonomerize(),
			newCmdCanonicalize("canonicalize"),
			newCmdCanonicalize("canon"),
			newCmdUniq(),
			newCmdRotate(),
			newCmdCat(),
			newCmdDecat(),
			newCmdOrfs(),
		},
	}
}
