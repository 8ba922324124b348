// Package fasta reads and writes FASTA files as a stream of records.
// FASTA files consist of a number of named sequences that may be
// interrupted by newlines.  For example:
//
// >chr7 circular
// ACGTAC
// GAGGAC
// GCG
// >chr8
// ACGT
//
// The record name is the text after '>'.  Record.ID returns its first
// space-delimited word, so '>plasmid1 A viral sequence' has ID 'plasmid1'.
package fasta

import (
	"bufio"
	"bytes"
	"io"

	"github.com/pkg/errors"
)

const readerBufSize = 1 << 20

// Record is one named sequence.
type Record struct {
	// Name is the header line without the leading '>'.
	Name string
	// Seq is the sequence with line breaks removed.
	Seq []byte
}

// ID returns the first word of the record name.
func (r *Record) ID() string {
	if i := indexSpace(r.Name); i >= 0 {
		return r.Name[:i]
	}
	return r.Name
}

func indexSpace(s string) int {
	for i := 0; i < len(s); i++ {
		if s[i] == ' ' || s[i] == '\t' {
			return i
		}
	}
	return -1
}

// Scanner reads FASTA records one at a time.  Lines may be arbitrarily
// long, and both LF and CRLF line endings are accepted.  Blank lines are
// ignored.  Scanners are not threadsafe.
type Scanner struct {
	r      *bufio.Reader
	line   []byte // pending header line read ahead of the current record
	err    error
	lineno int
}

// NewScanner creates a Scanner that reads FASTA data from r.
func NewScanner(r io.Reader) *Scanner {
	return &Scanner{r: bufio.NewReaderSize(r, readerBufSize)}
}

// readLine returns the next line without its terminator.  The result is
// valid until the next call.
func (s *Scanner) readLine() ([]byte, error) {
	line, err := s.r.ReadSlice('\n')
	if err == bufio.ErrBufferFull {
		long := append([]byte{}, line...)
		for err == bufio.ErrBufferFull {
			line, err = s.r.ReadSlice('\n')
			long = append(long, line...)
		}
		line = long
	}
	if err == io.EOF && len(line) > 0 {
		err = nil
	}
	if err != nil {
		return nil, err
	}
	s.lineno++
	line = bytes.TrimSuffix(line, []byte{'\n'})
	line = bytes.TrimSuffix(line, []byte{'\r'})
	return line, nil
}

// Scan reads the next record into rec, reusing rec.Seq's storage.  Scan
// returns false at the end of the input or on error.  Once Scan returns
// false, it never returns true again; callers should then check Err.
func (s *Scanner) Scan(rec *Record) bool {
	if s.err != nil {
		return false
	}
	header := s.line
	s.line = nil
	for header == nil {
		line, err := s.readLine()
		if err != nil {
			s.setErr(err)
			return false
		}
		if len(line) == 0 {
			continue
		}
		if line[0] != '>' {
			s.err = errors.Errorf("malformed FASTA file: line %d: expected '>', found %q", s.lineno, truncate(line))
			return false
		}
		header = append([]byte{}, line...)
	}
	rec.Name = string(header[1:])
	rec.Seq = rec.Seq[:0]
	for {
		line, err := s.readLine()
		if err != nil {
			s.setErr(err)
			// At EOF the record is complete.
			return s.err == io.EOF
		}
		if len(line) == 0 {
			continue
		}
		if line[0] == '>' {
			s.line = append([]byte{}, line...)
			return true
		}
		rec.Seq = append(rec.Seq, line...)
	}
}

func (s *Scanner) setErr(err error) {
	if err == io.EOF {
		s.err = io.EOF
		return
	}
	s.err = errors.Wrap(err, "couldn't read FASTA data")
}

func truncate(line []byte) []byte {
	if len(line) > 32 {
		return line[:32]
	}
	return line
}

// Err returns the error that stopped scanning, or nil at a clean end of
// input.
func (s *Scanner) Err() error {
	if s.err == io.EOF {
		return nil
	}
	return s.err
}

// Writer writes FASTA records with each sequence on a single line.
type Writer struct {
	w     *bufio.Writer
	err   error
	off   int64
	index *[]IndexEntry
}

// NewWriter creates a Writer that writes to w.  Callers must call Flush
// once done.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: bufio.NewWriterSize(w, readerBufSize)}
}

// Write writes one record.  Errors are sticky.
func (w *Writer) Write(rec *Record) error {
	if w.err != nil {
		return w.err
	}
	w.w.WriteByte('>')
	w.w.WriteString(rec.Name)
	w.w.WriteByte('\n')
	w.off += int64(len(rec.Name)) + 2
	if w.index != nil {
		e := IndexEntry{Name: rec.ID(), Length: len(rec.Seq), Offset: w.off}
		if len(rec.Seq) > 0 {
			e.LineBases, e.LineWidth = len(rec.Seq), len(rec.Seq)+1
		}
		*w.index = append(*w.index, e)
	}
	w.w.Write(rec.Seq)
	w.off += int64(len(rec.Seq)) + 1
	if err := w.w.WriteByte('\n'); err != nil {
		w.err = errors.Wrap(err, "couldn't write FASTA data")
	}
	return w.err
}

// TrackIndex makes the Writer record an IndexEntry for every record
// written from now on.
func (w *Writer) TrackIndex() {
	if w.index == nil {
		w.index = new([]IndexEntry)
	}
}

// Index returns the entries recorded since TrackIndex.
func (w *Writer) Index() []IndexEntry {
	if w.index == nil {
		return nil
	}
	return *w.index
}

// Flush writes any buffered data to the underlying writer.
func (w *Writer) Flush() error {
	if w.err != nil {
		return w.err
	}
	if err := w.w.Flush(); err != nil {
		w.err = errors.Wrap(err, "couldn't write FASTA data")
	}
	return w.err
}
