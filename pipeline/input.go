// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package pipeline

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/golang/snappy"
	"github.com/grailbio/base/compress"
	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/circkit/encoding/fasta"
	"github.com/grailbio/circkit/encoding/fastq"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// Format is a sequence file format.
type Format int

const (
	// FASTA is the default format, also used for empty input.
	FASTA Format = iota
	// FASTQ input is accepted; quality strings are dropped.
	FASTQ
)

func (f Format) String() string {
	if f == FASTQ {
		return "FASTQ"
	}
	return "FASTA"
}

// Compression is a stream compression format recognized by OpenInput.
type Compression int

const (
	// None means the input is read as is.
	None Compression = iota
	// Gzip is detected by its two magic bytes; multistream files such as
	// bgzf are read to the end.
	Gzip
	// Zstd is detected by the zstd frame magic.
	Zstd
	// Snappy is the snappy framing format.
	Snappy
	// Bgzf is block gzip, written for .bgz outputs.  On input it is
	// detected as Gzip.
	Bgzf
	// Other is any format github.com/grailbio/base/compress recognizes by
	// its magic bytes, such as bzip2.
	Other
)

var (
	gzipMagic   = []byte{0x1f, 0x8b}
	zstdMagic   = []byte{0x28, 0xb5, 0x2f, 0xfd}
	snappyMagic = []byte("\xff\x06\x00\x00sNaPpY")
)

const inputBufSize = 1 << 20

// sniffCompression identifies the compression of the stream behind r from
// its leading bytes.
func sniffCompression(r *bufio.Reader) Compression {
	head, _ := r.Peek(len(snappyMagic))
	switch {
	case bytes.HasPrefix(head, gzipMagic):
		return Gzip
	case bytes.HasPrefix(head, zstdMagic):
		return Zstd
	case bytes.HasPrefix(head, snappyMagic):
		return Snappy
	}
	return None
}

// Reader yields FASTA records from a FASTA or FASTQ source.  FASTQ reads
// are converted to records named after their ID line.
type Reader struct {
	name        string
	format      Format
	compression Compression
	in          file.File // nil for stdin
	closers     []io.Closer
	fa          *fasta.Scanner
	fq          *fastq.Scanner
	read        fastq.Read
	n           int
}

// OpenInput opens path for reading records.  Compression is detected from
// the content, not the file name.  An empty path or "-" reads stdin, which
// must not be a terminal.
func OpenInput(ctx context.Context, path string) (*Reader, error) {
	r := &Reader{name: path}
	var raw io.Reader
	if path == "" || path == "-" {
		if StdinIsTerminal() {
			return nil, errors.E(errors.Invalid,
				"no input file given and stdin is a terminal; pass a path or pipe data in")
		}
		r.name = "(stdin)"
		raw = os.Stdin
	} else {
		in, err := file.Open(ctx, path)
		if err != nil {
			return nil, errors.E(err, "open", path)
		}
		r.in = in
		raw = in.Reader(ctx)
	}
	if err := r.init(raw); err != nil {
		r.Close(ctx) // nolint: errcheck
		return nil, err
	}
	return r, nil
}

// NewReader reads records from an already opened stream.
func NewReader(name string, raw io.Reader) (*Reader, error) {
	r := &Reader{name: name}
	if err := r.init(raw); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Reader) init(raw io.Reader) error {
	br := bufio.NewReaderSize(raw, inputBufSize)
	var data io.Reader = br
	r.compression = sniffCompression(br)
	switch r.compression {
	case Gzip:
		gz, err := gzip.NewReader(br)
		if err != nil {
			return errors.E(err, "gzip", r.name)
		}
		r.closers = append(r.closers, gz)
		data = gz
	case Zstd:
		dec, err := zstd.NewReader(br)
		if err != nil {
			return errors.E(err, "zstd", r.name)
		}
		rc := dec.IOReadCloser()
		r.closers = append(r.closers, rc)
		data = rc
	case Snappy:
		data = snappy.NewReader(br)
	default:
		u, ok := compress.NewReader(br)
		if ok {
			r.compression = Other
			r.closers = append(r.closers, u)
		}
		data = u
	}
	tr := bufio.NewReaderSize(data, inputBufSize)
	format, err := sniffFormat(tr)
	if err != nil {
		return errors.E(err, r.name)
	}
	r.format = format
	if format == FASTQ {
		r.fq = fastq.NewScanner(tr, fastq.ID|fastq.Seq)
	} else {
		r.fa = fasta.NewScanner(tr)
	}
	return nil
}

// sniffFormat looks at the first non-blank byte of the decompressed input.
func sniffFormat(r *bufio.Reader) (Format, error) {
	for n := 1; ; n++ {
		head, err := r.Peek(n)
		if len(head) < n {
			if err == io.EOF {
				return FASTA, nil
			}
			return FASTA, err
		}
		switch c := head[n-1]; c {
		case ' ', '\t', '\r', '\n':
			continue
		case '>':
			return FASTA, nil
		case '@':
			return FASTQ, nil
		default:
			return FASTA, errors.E(errors.Invalid,
				fmt.Sprintf("unrecognized sequence format: input starts with %q; expected FASTA or FASTQ", c))
		}
	}
}

// Format returns the detected input format.
func (r *Reader) Format() Format { return r.format }

// Compression returns the detected input compression.
func (r *Reader) Compression() Compression { return r.compression }

// N returns the number of records read so far.
func (r *Reader) N() int { return r.n }

// Scan reads the next record into rec.  It returns false at the end of
// input or on error; check Err afterwards.
func (r *Reader) Scan(rec *fasta.Record) bool {
	if r.fa != nil {
		if !r.fa.Scan(rec) {
			return false
		}
	} else {
		if !r.fq.Scan(&r.read) {
			return false
		}
		rec.Name = r.read.Name()
		rec.Seq = append(rec.Seq[:0], r.read.Seq...)
	}
	r.n++
	return true
}

// Err returns the error that stopped Scan, if any.
func (r *Reader) Err() error {
	var err error
	if r.fa != nil {
		err = r.fa.Err()
	} else if r.fq != nil {
		err = r.fq.Err()
	}
	if err != nil {
		return errors.E(err, fmt.Sprintf("%s: record %d", r.name, r.n+1))
	}
	return nil
}

// Close releases the decompressors and the underlying file.
func (r *Reader) Close(ctx context.Context) error {
	e := errors.Once{}
	for i := len(r.closers) - 1; i >= 0; i-- {
		e.Set(r.closers[i].Close())
	}
	r.closers = nil
	if r.in != nil {
		e.Set(r.in.Close(ctx))
		r.in = nil
	}
	return e.Err()
}
