// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/circkit/biosimd"
	"github.com/grailbio/circkit/encoding/fasta"
	"github.com/grailbio/circkit/orf"
	"github.com/grailbio/circkit/pipeline"
	"v.io/x/lib/cmdline"
)

// Strand selects which strands orfs searches.
type Strand int

const (
	// Both searches the record and its reverse complement.
	Both Strand = iota
	// Forward searches the record as given.
	Forward
	// Reverse searches the reverse complement only.
	Reverse
)

func parseStrand(s string) (Strand, error) {
	switch strings.ToLower(s) {
	case "both":
		return Both, nil
	case "forward":
		return Forward, nil
	case "reverse":
		return Reverse, nil
	}
	return Both, errors.E(errors.Invalid, fmt.Sprintf("unknown strand %q; expected forward, reverse or both", s))
}

type orfsOpts struct {
	codons orf.Opts
	strand Strand
	// minLength is the minimum ORF length in bases, excluding the stop
	// codon.
	minLength          int
	minWraps, maxWraps int
	// minRatio is the minimum ORF length relative to the sequence length.
	minRatio       float64
	includeStop    bool
	noStopRequired bool
	table          string
	pipeline       pipeline.Opts
}

// keep reports whether o passes the filters for a sequence of length n.
func (opts *orfsOpts) keep(o orf.Orf, n int) bool {
	return o.Length-3 >= opts.minLength &&
		(opts.noStopRequired || o.Terminated()) &&
		opts.minWraps <= o.Wraps && o.Wraps <= opts.maxWraps &&
		float64(o.Length)/float64(n) >= opts.minRatio
}

func newCmdOrfs() *cmdline.Command {
	cmd := &cmdline.Command{
		Name:  "orfs",
		Short: "Find open reading frames in circular sequences",
		Long: `
orfs writes the longest ORF ending at each stop codon.  ORFs may cross the
origin of the circular sequence, shifting frame each time when the length is
not a multiple of three.  Each output record is named "{header} ORF{start}",
with " RC" appended for ORFs on the reverse strand.`,
		ArgsName: "[input]",
		ArgsLong: inputHelp,
	}
	iof := addIOFlags(cmd)
	opts := orfsOpts{}
	cmd.Flags.IntVar(&opts.minLength, "min-length", 0, "Minimum ORF length in bases, excluding the stop codon")
	starts := cmd.Flags.String("start-codons", strings.Join(orf.DefaultOpts.StartCodons, ","), "Comma-separated start codons")
	stops := cmd.Flags.String("stop-codons", strings.Join(orf.DefaultOpts.StopCodons, ","), "Comma-separated stop codons")
	cmd.Flags.BoolVar(&opts.includeStop, "include-stop", false, "Include the stop codon in the output sequences and lengths")
	cmd.Flags.IntVar(&opts.minWraps, "min-wraps", 0, "Minimum number of times an ORF crosses the origin")
	cmd.Flags.IntVar(&opts.maxWraps, "max-wraps", 3, "Maximum number of times an ORF crosses the origin")
	cmd.Flags.Float64Var(&opts.minRatio, "min-ratio", 0, "Minimum ORF length relative to the sequence length")
	strand := cmd.Flags.String("strand", "both", "Strands to search: forward, reverse or both")
	cmd.Flags.BoolVar(&opts.noStopRequired, "no-stop-required", false, "Also report ORFs that never reach a stop codon")
	cmd.Flags.StringVar(&opts.table, "table", "", `Write a table of ORF coordinates to this path.  Tab separated
if the path ends in .tsv, comma separated otherwise.`)
	cmd.Runner = newRunner(cmd.Name, func(ctx context.Context, in string) error {
		var err error
		if opts.strand, err = parseStrand(*strand); err != nil {
			return err
		}
		opts.codons = orf.Opts{
			StartCodons: strings.Split(*starts, ","),
			StopCodons:  strings.Split(*stops, ","),
		}
		opts.pipeline = iof.pipelineOpts()
		return findOrfs(ctx, opts, in, iof.out())
	})
	return cmd
}

// strandOrfs are the ORFs found on one strand of a record.
type strandOrfs struct {
	seq     []byte
	orfs    []orf.Orf
	reverse bool
}

func findOrfs(ctx context.Context, opts orfsOpts, in string, out output) (err error) {
	finder, err := orf.NewFinder(opts.codons)
	if err != nil {
		return err
	}
	var table *pipeline.TableWriter
	if opts.table != "" {
		table, err = pipeline.CreateTable(ctx, opts.table,
			"orf_id", "seq_id", "start", "stop", "wraps", "length", "ratio")
		if err != nil {
			return err
		}
		defer func() {
			if e := table.Close(ctx); e != nil && err == nil {
				err = e
			}
		}()
	}
	search := func(seq []byte, reverse bool) strandOrfs {
		var kept []orf.Orf
		for _, o := range finder.Find(seq) {
			if opts.keep(o, len(seq)) {
				kept = append(kept, o)
			}
		}
		return strandOrfs{seq: seq, orfs: orf.Longest(kept), reverse: reverse}
	}
	work := func(it *pipeline.Item) error {
		seq := biosimd.Normalize(it.Record.Seq, false)
		if len(seq) == 0 {
			return nil
		}
		var found []strandOrfs
		if opts.strand != Reverse {
			found = append(found, search(seq, false))
		}
		if opts.strand != Forward {
			found = append(found, search(biosimd.ReverseComp(seq), true))
		}
		for _, s := range found {
			for _, o := range s.orfs {
				it.Out = append(it.Out, fasta.Record{
					Name: orfName(it.Record.Name, o, s.reverse),
					Seq:  o.Sequence(s.seq, opts.includeStop),
				})
			}
		}
		it.Aux = found
		return nil
	}
	var emit func(*pipeline.Item) error
	if table != nil {
		emit = func(it *pipeline.Item) error {
			found, _ := it.Aux.([]strandOrfs)
			for _, s := range found {
				n := len(s.seq)
				for _, o := range s.orfs {
					start, stop := o.Start, o.Stop
					if s.reverse {
						start = n - 1 - start
						if o.Terminated() {
							stop = n - 1 - stop
						}
					}
					length := o.Length
					if !opts.includeStop {
						length -= 3
					}
					table.String(orfName(it.Record.Name, o, s.reverse))
					table.String(it.Record.Name)
					table.Int(start)
					if o.Terminated() {
						table.Int(stop)
					} else {
						table.String("")
					}
					table.Int(o.Wraps)
					table.Int(length)
					table.Float(float64(o.Length) / float64(n))
					table.EndRow()
				}
			}
			return nil
		}
	}
	return transform(ctx, "orfs", in, out, opts.pipeline, work, emit)
}

func orfName(header string, o orf.Orf, reverse bool) string {
	name := fmt.Sprintf("%s ORF%d", header, o.Start)
	if reverse {
		name += " RC"
	}
	return name
}
