// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package pipeline

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/golang/snappy"
	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/circkit/encoding/bgzf"
	"github.com/grailbio/circkit/encoding/fasta"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// OutputCompression picks the output compression from the path suffix.
func OutputCompression(path string) Compression {
	switch {
	case strings.HasSuffix(path, ".gz"):
		return Gzip
	case strings.HasSuffix(path, ".bgz"):
		return Bgzf
	case strings.HasSuffix(path, ".zst"):
		return Zstd
	case strings.HasSuffix(path, ".sz"):
		return Snappy
	}
	return None
}

// OutputOpts configures CreateOutput.
type OutputOpts struct {
	// Index writes a samtools-compatible index next to the output on
	// Close: path.fai, plus path.gzi for block-gzipped output.  Only plain
	// and .bgz outputs can be indexed.
	Index bool
}

// Writer writes FASTA records to a possibly compressed file.
type Writer struct {
	name string
	out  file.File // nil for stdout
	zw   io.WriteCloser
	bw   *bgzf.Writer
	fa   *fasta.Writer
	n    int
	// index is set if Close writes index files.
	index bool
}

// CreateOutput creates path for FASTA output.  Suffixes .gz, .bgz, .zst
// and .sz select gzip, block gzip, zstd and snappy compression.  An empty
// path or "-" writes to stdout, uncompressed.
func CreateOutput(ctx context.Context, path string, opts OutputOpts) (*Writer, error) {
	if path == "" || path == "-" {
		if opts.Index {
			return nil, errors.E(errors.Invalid, "cannot index output written to stdout")
		}
		return NewWriter("(stdout)", os.Stdout, None)
	}
	c := OutputCompression(path)
	if opts.Index && c != None && c != Bgzf {
		return nil, errors.E(errors.Invalid,
			fmt.Sprintf("%s: only plain or .bgz output can be indexed", path))
	}
	out, err := file.Create(ctx, path)
	if err != nil {
		return nil, errors.E(err, "create", path)
	}
	w, err := NewWriter(path, out.Writer(ctx), c)
	if err != nil {
		out.Close(ctx) // nolint: errcheck
		return nil, err
	}
	w.out = out
	if opts.Index {
		w.index = true
		w.fa.TrackIndex()
	}
	return w, nil
}

// NewWriter writes FASTA records to dst with the given compression.  Other
// is treated as None.
func NewWriter(name string, dst io.Writer, c Compression) (*Writer, error) {
	w := &Writer{name: name}
	switch c {
	case Gzip:
		w.zw = gzip.NewWriter(dst)
	case Bgzf:
		bw, err := bgzf.NewWriter(dst, gzip.DefaultCompression)
		if err != nil {
			return nil, errors.E(err, "bgzf", name)
		}
		w.zw, w.bw = bw, bw
	case Zstd:
		enc, err := zstd.NewWriter(dst)
		if err != nil {
			return nil, errors.E(err, "zstd", name)
		}
		w.zw = enc
	case Snappy:
		w.zw = snappy.NewBufferedWriter(dst)
	}
	if w.zw != nil {
		dst = w.zw
	}
	w.fa = fasta.NewWriter(dst)
	return w, nil
}

// Write writes one record.
func (w *Writer) Write(rec *fasta.Record) error {
	w.n++
	return w.fa.Write(rec)
}

// N returns the number of records written so far.
func (w *Writer) N() int { return w.n }

// Close flushes buffered data, closes the compressor and the file, and
// writes the index files if requested.
func (w *Writer) Close(ctx context.Context) error {
	e := errors.Once{}
	e.Set(w.fa.Flush())
	if w.zw != nil {
		e.Set(w.zw.Close())
	}
	if w.out != nil {
		e.Set(w.out.Close(ctx))
	}
	if e.Err() == nil && w.index {
		e.Set(writeIndexFile(ctx, w.name+".fai", func(out io.Writer) error {
			return fasta.WriteIndex(out, w.fa.Index())
		}))
		if w.bw != nil {
			e.Set(writeIndexFile(ctx, w.name+".gzi", func(out io.Writer) error {
				return bgzf.WriteGZI(out, w.bw.Blocks())
			}))
		}
	}
	if err := e.Err(); err != nil {
		return errors.E(err, "close", w.name)
	}
	return nil
}

func writeIndexFile(ctx context.Context, path string, write func(io.Writer) error) (err error) {
	out, err := file.Create(ctx, path)
	if err != nil {
		return errors.E(err, "create", path)
	}
	defer file.CloseAndReport(ctx, out, &err)
	return write(out.Writer(ctx))
}
