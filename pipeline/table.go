// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package pipeline

import (
	"context"
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/tsv"
)

// TableWriter writes a delimited table.  Paths ending in .tsv get tabs;
// everything else gets RFC 4180 CSV.
//
// Typical use:
//
//   t, err := pipeline.CreateTable(ctx, path, "id", "length")
//   t.String(id)
//   t.Int(n)
//   t.EndRow()
//   ...
//   err = t.Close(ctx)
type TableWriter struct {
	path string
	out  file.File
	tw   *tsv.Writer
	cw   *csv.Writer
	row  []string
	err  errors.Once
}

// CreateTable creates path and writes the header row.
func CreateTable(ctx context.Context, path string, header ...string) (*TableWriter, error) {
	out, err := file.Create(ctx, path)
	if err != nil {
		return nil, errors.E(err, "create", path)
	}
	t := newTableWriter(path, out.Writer(ctx), strings.HasSuffix(path, ".tsv"))
	t.out = out
	for _, h := range header {
		t.String(h)
	}
	t.EndRow()
	return t, nil
}

func newTableWriter(name string, w io.Writer, tabs bool) *TableWriter {
	t := &TableWriter{path: name}
	if tabs {
		t.tw = tsv.NewWriter(w)
	} else {
		t.cw = csv.NewWriter(w)
	}
	return t
}

// String appends a string field to the current row.
func (t *TableWriter) String(s string) {
	if t.tw != nil {
		t.tw.WriteString(s)
		return
	}
	t.row = append(t.row, s)
}

// Int appends an integer field to the current row.
func (t *TableWriter) Int(v int) {
	if t.tw != nil {
		t.tw.WriteInt64(int64(v))
		return
	}
	t.row = append(t.row, strconv.Itoa(v))
}

// Float appends a float field, in the shortest form that round-trips.
func (t *TableWriter) Float(v float64) {
	t.String(strconv.FormatFloat(v, 'f', -1, 64))
}

// EndRow terminates the current row.
func (t *TableWriter) EndRow() {
	if t.tw != nil {
		t.err.Set(t.tw.EndLine())
		return
	}
	t.err.Set(t.cw.Write(t.row))
	t.row = t.row[:0]
}

// Close flushes the table and closes the file.
func (t *TableWriter) Close(ctx context.Context) error {
	if t.tw != nil {
		t.err.Set(t.tw.Flush())
	} else {
		t.cw.Flush()
		t.err.Set(t.cw.Error())
	}
	if t.out != nil {
		t.err.Set(t.out.Close(ctx))
	}
	if err := t.err.Err(); err != nil {
		return errors.E(err, "table", t.path)
	}
	return nil
}
