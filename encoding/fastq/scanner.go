// Package fastq reads FASTQ files.  circkit accepts FASTQ input wherever it
// accepts FASTA; the quality string is read but not used.
package fastq

import (
	"bufio"
	"bytes"
	"errors"
	"io"
)

var (
	// ErrShort is returned when a truncated FASTQ file is encountered.
	ErrShort = errors.New("short FASTQ file")
	// ErrInvalid is returned when an invalid FASTQ file is encountered.
	ErrInvalid = errors.New("invalid FASTQ file")
)

const readerBufSize = 1 << 20

// A Read is a FASTQ read, comprising an ID, sequence, line 3
// ("unknown"), and a quality string.  ID includes the leading '@'.
type Read struct {
	ID, Seq, Unk, Qual string
}

// Name returns the ID line without the leading '@'.
func (r *Read) Name() string {
	if len(r.ID) > 0 && r.ID[0] == '@' {
		return r.ID[1:]
	}
	return r.ID
}

var errEOF = errors.New("eof")

// Scanner provides a convenient interface for reading FASTQ read
// data. The Scan method returns the next read, returning a boolean
// indicating whether the read succeeded. Scanners are not
// threadsafe.
//
// Scanner requires ID lines to begin with "@" and line 3 to begin with
// "+", but does not check that seq and qual have equal lengths.  Lines may
// be arbitrarily long; assembled contigs often exceed bufio.Scanner's
// token limit.
type Scanner struct {
	b      *bufio.Reader
	line   []byte // current line; valid until the next call to next
	long   []byte // backing store for lines longer than the reader buffer
	err    error
	fields Field
}

// Field enumerates FASTQ fields. It is used to specify fields to read in
// NewScanner.
type Field uint

const (
	// ID causes the Read.ID field to be filled
	ID Field = 1 << iota
	// Seq causes the Read.Seq field to be filled
	Seq
	// Unk causes the Read.Unk field to be filled
	Unk
	// Qual causes the Read.Qual field to be filled
	Qual
	// All equals ID|Seq|Unk|Qual.
	All = ID | Seq | Unk | Qual
)

// NewScanner constructs a new Scanner that reads raw FASTQ data from the
// provided reader. Fields is a bitset of the fields to read. A typical value
// would be All or ID|Seq.
func NewScanner(r io.Reader, fields Field) *Scanner {
	return &Scanner{b: bufio.NewReaderSize(r, readerBufSize), fields: fields}
}

// next reads one line into f.line.  atEOF is the error to record when the
// input ends cleanly before the line.
func (f *Scanner) next(atEOF error) bool {
	line, err := f.b.ReadSlice('\n')
	if err == bufio.ErrBufferFull {
		f.long = append(f.long[:0], line...)
		for err == bufio.ErrBufferFull {
			line, err = f.b.ReadSlice('\n')
			f.long = append(f.long, line...)
		}
		line = f.long
	}
	if err == io.EOF && len(line) > 0 {
		err = nil
	}
	if err != nil {
		if err == io.EOF {
			err = atEOF
		}
		f.err = err
		return false
	}
	line = bytes.TrimSuffix(line, []byte{'\n'})
	f.line = bytes.TrimSuffix(line, []byte{'\r'})
	return true
}

// Scan the next read into the provided read. Scan returns a boolean
// indicating whether the scan succeeded. Once Scan returns false, it
// never returns true again. Upon completion, the user should check
// the Err method to determine whether scanning stopped because of an
// error or because the end of the stream was reached.
func (f *Scanner) Scan(read *Read) bool {
	if f.err != nil {
		return false
	}
	if !f.next(errEOF) {
		return false
	}
	if len(f.line) == 0 || f.line[0] != '@' {
		f.err = ErrInvalid
		return false
	}
	if f.fields&ID != 0 {
		read.ID = string(f.line)
	}
	if !f.next(ErrShort) {
		return false
	}
	if f.fields&Seq != 0 {
		read.Seq = string(f.line)
	}
	if !f.next(ErrShort) {
		return false
	}
	if len(f.line) == 0 || f.line[0] != '+' {
		f.err = ErrInvalid
		return false
	}
	if f.fields&Unk != 0 {
		read.Unk = string(f.line)
	}
	if !f.next(ErrShort) {
		return false
	}
	if f.fields&Qual != 0 {
		read.Qual = string(f.line)
	}
	return true
}

// Err returns the scanning error, if any.
func (f *Scanner) Err() error {
	if f.err == errEOF {
		return nil
	}
	return f.err
}
