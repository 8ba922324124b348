package fasta

import (
	"bufio"
	"bytes"
	"io"

	"github.com/grailbio/base/tsv"
	"github.com/pkg/errors"
)

// IndexEntry is one line of a FASTA index (*.fai), as defined by
// "samtools faidx" (http://www.htslib.org/doc/faidx.html).
type IndexEntry struct {
	// Name is the record ID.
	Name string
	// Length is the number of bases.
	Length int
	// Offset is the byte offset of the first base.
	Offset int64
	// LineBases is the number of bases per line, and LineWidth the number
	// of bytes per line including the terminator.  Both are 0 for an
	// empty sequence.
	LineBases, LineWidth int
}

// WriteIndex writes entries in .fai format.
func WriteIndex(out io.Writer, entries []IndexEntry) error {
	w := tsv.NewWriter(out)
	for _, e := range entries {
		w.WriteString(e.Name)
		w.WriteInt64(int64(e.Length))
		w.WriteInt64(e.Offset)
		w.WriteInt64(int64(e.LineBases))
		w.WriteInt64(int64(e.LineWidth))
		if err := w.EndLine(); err != nil {
			return errors.Wrap(err, "couldn't write FASTA index")
		}
	}
	return errors.Wrap(w.Flush(), "couldn't write FASTA index")
}

// GenerateIndex generates an index (*.fai) from FASTA.  Every line of a
// sequence except the last must have the same length.
func GenerateIndex(out io.Writer, in io.Reader) error {
	entries, err := indexEntries(in)
	if err != nil {
		return err
	}
	return WriteIndex(out, entries)
}

func indexEntries(in io.Reader) ([]IndexEntry, error) {
	var (
		entries []IndexEntry
		cur     *IndexEntry
		r       = bufio.NewReaderSize(in, readerBufSize)
		off     int64
		// shortLine is set after a sequence line shorter than LineBases,
		// which must be the last of its record.
		shortLine bool
	)
	for lineno := 1; ; lineno++ {
		full, err := r.ReadBytes('\n')
		if err != nil && err != io.EOF {
			return nil, errors.Wrap(err, "couldn't read FASTA data")
		}
		if len(full) == 0 {
			break
		}
		off += int64(len(full))
		line := bytes.TrimRight(full, "\r\n")
		switch {
		case len(line) > 0 && line[0] == '>':
			rec := Record{Name: string(line[1:])}
			entries = append(entries, IndexEntry{Name: rec.ID(), Offset: off})
			cur = &entries[len(entries)-1]
			shortLine = false
		case len(line) == 0:
		case cur == nil:
			return nil, errors.Errorf("malformed FASTA file: line %d: expected '>', found %q", lineno, truncate(line))
		case cur.LineWidth == 0:
			cur.LineBases, cur.LineWidth = len(line), len(full)
			cur.Length = len(line)
			shortLine = len(line) < cur.LineBases
		default:
			if shortLine || len(line) > cur.LineBases {
				return nil, errors.Errorf("malformed FASTA file: line %d: record %s has uneven line lengths", lineno, cur.Name)
			}
			shortLine = len(line) < cur.LineBases
			cur.Length += len(line)
		}
		if err == io.EOF {
			break
		}
	}
	return entries, nil
}
