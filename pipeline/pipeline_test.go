// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package pipeline_test

import (
	"bytes"
	"context"
	"fmt"
	"io/ioutil"
	"path/filepath"
	"strings"
	"testing"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/circkit/encoding/fasta"
	"github.com/grailbio/circkit/pipeline"
	"github.com/grailbio/testutil"
	"github.com/grailbio/testutil/assert"
	"github.com/grailbio/testutil/expect"
)

var testRecords = []fasta.Record{
	{Name: "seq1 first", Seq: []byte("ACGTACGT")},
	{Name: "seq2", Seq: []byte("GGGG")},
	{Name: "seq3\tthird", Seq: []byte("TTAACC")},
}

func readAll(t *testing.T, r *pipeline.Reader) []fasta.Record {
	var recs []fasta.Record
	for {
		var rec fasta.Record
		if !r.Scan(&rec) {
			break
		}
		recs = append(recs, rec)
	}
	assert.NoError(t, r.Err())
	return recs
}

func writeAll(t *testing.T, ctx context.Context, path string, recs []fasta.Record) {
	w, err := pipeline.CreateOutput(ctx, path, pipeline.OutputOpts{})
	assert.NoError(t, err)
	for i := range recs {
		assert.NoError(t, w.Write(&recs[i]))
	}
	expect.EQ(t, w.N(), len(recs))
	assert.NoError(t, w.Close(ctx))
}

func TestRoundTripCompression(t *testing.T) {
	ctx := context.Background()
	dir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()
	tests := []struct {
		name string
		want pipeline.Compression
	}{
		{"plain.fa", pipeline.None},
		{"x.fa.gz", pipeline.Gzip},
		{"x.fa.zst", pipeline.Zstd},
		{"x.fa.sz", pipeline.Snappy},
		// Block gzip is read as gzip.
		{"x.fa.bgz", pipeline.Gzip},
	}
	for _, test := range tests {
		path := filepath.Join(dir, test.name)
		writeAll(t, ctx, path, testRecords)
		r, err := pipeline.OpenInput(ctx, path)
		assert.NoError(t, err)
		expect.EQ(t, r.Compression(), test.want, test.name)
		expect.EQ(t, r.Format(), pipeline.FASTA)
		expect.EQ(t, readAll(t, r), testRecords, test.name)
		assert.NoError(t, r.Close(ctx))
	}
}

func TestCompressionSniffedFromContent(t *testing.T) {
	ctx := context.Background()
	dir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()
	// Write gzip data, then read it under a name without a suffix.
	gz := filepath.Join(dir, "x.gz")
	writeAll(t, ctx, gz, testRecords)
	data, err := ioutil.ReadFile(gz)
	assert.NoError(t, err)
	r, err := pipeline.NewReader("noext", bytes.NewReader(data))
	assert.NoError(t, err)
	expect.EQ(t, r.Compression(), pipeline.Gzip)
	expect.EQ(t, readAll(t, r), testRecords)
}

func TestFASTQInput(t *testing.T) {
	in := "@read1 extra\nACGT\n+\nIIII\n@read2\nGGCC\n+read2\nIIII\n"
	r, err := pipeline.NewReader("fq", strings.NewReader(in))
	assert.NoError(t, err)
	expect.EQ(t, r.Format(), pipeline.FASTQ)
	expect.EQ(t, readAll(t, r), []fasta.Record{
		{Name: "read1 extra", Seq: []byte("ACGT")},
		{Name: "read2", Seq: []byte("GGCC")},
	})
}

func TestFormatSniffing(t *testing.T) {
	r, err := pipeline.NewReader("empty", strings.NewReader(""))
	assert.NoError(t, err)
	expect.EQ(t, r.Format(), pipeline.FASTA)
	expect.EQ(t, len(readAll(t, r)), 0)

	r, err = pipeline.NewReader("blank", strings.NewReader("\n\n>a\nAC\n"))
	assert.NoError(t, err)
	expect.EQ(t, r.Format(), pipeline.FASTA)
	expect.EQ(t, readAll(t, r), []fasta.Record{{Name: "a", Seq: []byte("AC")}})

	_, err = pipeline.NewReader("bad", strings.NewReader("ACGT\n"))
	expect.True(t, errors.Is(errors.Invalid, err))
	assert.Regexp(t, err, "unrecognized sequence format")
}

func TestReaderErrorNamesRecord(t *testing.T) {
	in := "@a\nAC\n+\nII\n@b\nAC\n+\nII\n@c\nAC\n"
	r, err := pipeline.NewReader("broken.fq", strings.NewReader(in))
	assert.NoError(t, err)
	var rec fasta.Record
	for r.Scan(&rec) {
	}
	assert.Regexp(t, r.Err(), "broken.fq: record 3")
}

type sliceSource struct {
	recs []fasta.Record
	i    int
	err  error
}

func (s *sliceSource) Scan(rec *fasta.Record) bool {
	if s.i >= len(s.recs) {
		return false
	}
	*rec = s.recs[s.i]
	s.i++
	return true
}

func (s *sliceSource) Err() error { return s.err }

func makeRecords(n int) []fasta.Record {
	recs := make([]fasta.Record, n)
	for i := range recs {
		recs[i] = fasta.Record{Name: fmt.Sprintf("r%d", i), Seq: bytes.Repeat([]byte("A"), 1+i%17)}
	}
	return recs
}

func TestRunPreservesOrder(t *testing.T) {
	for _, opts := range []pipeline.Opts{
		{Parallelism: 1, BatchSize: 1},
		{Parallelism: 4, BatchSize: 3},
		{Parallelism: 8, BatchSize: 64},
		{},
	} {
		recs := makeRecords(1000)
		var got []string
		err := pipeline.Run(&sliceSource{recs: recs}, opts,
			func(it *pipeline.Item) error {
				it.Aux = len(it.Record.Seq)
				it.Out = append(it.Out, fasta.Record{Name: it.Record.Name + "/out", Seq: it.Record.Seq})
				return nil
			},
			func(it *pipeline.Item) error {
				expect.EQ(t, it.Aux.(int), 1+it.Index%17)
				for _, o := range it.Out {
					got = append(got, o.Name)
				}
				return nil
			})
		assert.NoError(t, err)
		assert.EQ(t, len(got), len(recs), "opts=%+v", opts)
		for i, name := range got {
			expect.EQ(t, name, fmt.Sprintf("r%d/out", i))
		}
	}
}

func TestRunStopsOnError(t *testing.T) {
	recs := makeRecords(500)
	var emitted int
	err := pipeline.Run(&sliceSource{recs: recs}, pipeline.Opts{Parallelism: 4, BatchSize: 8},
		func(it *pipeline.Item) error {
			if it.Index == 100 {
				return errors.E(errors.Invalid, "bad record")
			}
			return nil
		},
		func(it *pipeline.Item) error {
			emitted++
			return nil
		})
	assert.Regexp(t, err, "bad record")
	expect.True(t, emitted <= 100)

	err = pipeline.Run(&sliceSource{recs: recs}, pipeline.Opts{Parallelism: 2, BatchSize: 5},
		func(it *pipeline.Item) error { return nil },
		func(it *pipeline.Item) error {
			if it.Index == 7 {
				return errors.New("disk full")
			}
			return nil
		})
	assert.Regexp(t, err, "disk full")

	err = pipeline.Run(&sliceSource{recs: recs, err: errors.New("truncated input")}, pipeline.DefaultOpts,
		func(it *pipeline.Item) error { return nil },
		func(it *pipeline.Item) error { return nil })
	assert.Regexp(t, err, "truncated input")
}

func TestTable(t *testing.T) {
	ctx := context.Background()
	dir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()
	for _, test := range []struct {
		name, want string
	}{
		{"t.tsv", "id\tn\tratio\na b\t3\t0.5\n"},
		{"t.csv", "id,n,ratio\na b,3,0.5\n"},
		{"t.txt", "id,n,ratio\na b,3,0.5\n"},
	} {
		path := filepath.Join(dir, test.name)
		tw, err := pipeline.CreateTable(ctx, path, "id", "n", "ratio")
		assert.NoError(t, err)
		tw.String("a b")
		tw.Int(3)
		tw.Float(0.5)
		tw.EndRow()
		assert.NoError(t, tw.Close(ctx))
		data, err := ioutil.ReadFile(path)
		assert.NoError(t, err)
		expect.EQ(t, string(data), test.want, test.name)
	}
}

func TestHasher(t *testing.T) {
	for _, name := range pipeline.HashNames {
		h, err := pipeline.NewHasher(name)
		assert.NoError(t, err)
		expect.EQ(t, h([]byte("ACGT")), h([]byte("ACGT")), name)
		expect.True(t, h([]byte("ACGT")) != h([]byte("ACGA")), name)
	}
	_, err := pipeline.NewHasher("md5")
	expect.True(t, errors.Is(errors.Invalid, err))
}

func TestDeduper(t *testing.T) {
	h, err := pipeline.NewHasher("")
	assert.NoError(t, err)
	d := pipeline.NewDeduper(h)
	id, ok := d.Add("a", []byte("ACGT"))
	expect.True(t, ok)
	expect.EQ(t, id, "a")
	id, ok = d.Add("b", []byte("ACGT"))
	expect.False(t, ok)
	expect.EQ(t, id, "a")
	_, ok = d.Add("c", []byte("AAAA"))
	expect.True(t, ok)
	expect.EQ(t, d.Len(), 2)
}

func TestIndexedOutput(t *testing.T) {
	ctx := context.Background()
	dir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()
	for _, name := range []string{"x.fa", "x.fa.bgz"} {
		path := filepath.Join(dir, name)
		w, err := pipeline.CreateOutput(ctx, path, pipeline.OutputOpts{Index: true})
		assert.NoError(t, err)
		for i := range testRecords {
			assert.NoError(t, w.Write(&testRecords[i]))
		}
		assert.NoError(t, w.Close(ctx))
		fai, err := ioutil.ReadFile(path + ".fai")
		assert.NoError(t, err)
		expect.EQ(t, string(fai), "seq1\t8\t12\t8\t9\nseq2\t4\t27\t4\t5\nseq3\t6\t44\t6\t7\n", name)
		_, err = ioutil.ReadFile(path + ".gzi")
		expect.EQ(t, err == nil, strings.HasSuffix(name, ".bgz"), name)

		r, err := pipeline.OpenInput(ctx, path)
		assert.NoError(t, err)
		expect.EQ(t, readAll(t, r), testRecords, name)
		assert.NoError(t, r.Close(ctx))
	}
	for _, path := range []string{filepath.Join(dir, "x.fa.gz"), filepath.Join(dir, "x.fa.zst"), "-"} {
		_, err := pipeline.CreateOutput(ctx, path, pipeline.OutputOpts{Index: true})
		expect.True(t, errors.Is(errors.Invalid, err), path)
	}
}
