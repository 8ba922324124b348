// Package bgzf includes a Writer for the .bgzf (block gzipped) file
// format.  A .bgzf file consists of one or more complete gzip blocks
// concatenated together.  Each of the gzip blocks must represent at
// most 64KB of uncompressed data, and the compressed size of the
// block must be at most 64KB.  A valid .bgzf file ends with the 28
// byte .bgzf terminator; the terminator is a valid gzip block
// containing an empty payload.
//
// Since every block is a complete gzip member, ordinary gzip readers
// decode a .bgzf file as a whole.  Tools such as "samtools faidx" use
// the block structure for random access into block-gzipped FASTA,
// given the .gzi index that WriteGZI produces.
//
// For more information about the .bgzf file format, see the SAM/BAM
// spec here: https://samtools.github.io/hts-specs/SAMv1.pdf
//
// Example:
//   var buf bytes.Buffer
//   w, err := bgzf.NewWriter(&buf, gzip.DefaultCompression)
//   n, err := w.Write([]byte(">chr1\nACGT\n"))
//   err = w.Close()
package bgzf

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/grailbio/base/log"
	"github.com/klauspost/compress/gzip"
)

const (
	// DefaultUncompressedBlockSize is the default bgzf
	// uncompressedBlockSize chosen by both sambamba and biogo.  See
	// the SAM/BAM specification for details.
	DefaultUncompressedBlockSize = 0x0ff00

	// compressedBlockSize is the maximum size of the compressed data
	// for a Bgzf block.  See the SAM/BAM specification for details.
	compressedBlockSize = 0x10000

	// extraOffset is the offset of the Extra field in the gzip header.
	extraOffset = 12
)

var (
	// bgzfExtra goes into the gzip's Extra subfield, with subfield
	// ids: 66, 67, and length 2.  The last two bytes are BSIZE.
	bgzfExtra       = [...]byte{66, 67, 2, 0, 0, 0}
	bgzfExtraPrefix = bgzfExtra[:4]

	// terminator is the Bgzf EOF terminator.  It belongs at the end
	// of a valid Bgzf file.  See the SAM/BAM spec.
	terminator = []byte{
		0x1f, 0x8b, 0x08, 0x04, 0x00, 0x00, 0x00, 0x00, 0x00, 0xff, 0x06, 0x00, 0x42, 0x43,
		0x02, 0x00, 0x1b, 0x00, 0x03, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	}
)

// BlockOffset locates the start of a block: Compressed is its position
// in the .bgzf file, Uncompressed the position of its first payload byte.
type BlockOffset struct {
	Compressed, Uncompressed uint64
}

// Writer compresses data into .bgzf format.  The .bgzf format adds an
// Extra header field to each of the gzip headers; the Extra field
// contains the size of the compressed block in bytes - 1.
type Writer struct {
	level      int
	blockSize  int
	w          io.Writer
	gz         *gzip.Writer
	original   bytes.Buffer
	compressed bytes.Buffer
	coffset    uint64 // starting file position of the current gzip block
	uoffset    uint64 // uncompressed position of the current gzip block
	blocks     []BlockOffset
}

// NewWriter returns a new .bgzf writer with the given gzip compression
// level.
func NewWriter(w io.Writer, level int) (*Writer, error) {
	return NewWriterSize(w, level, DefaultUncompressedBlockSize)
}

// NewWriterSize is NewWriter with a custom uncompressed block size, which
// must be in (0, DefaultUncompressedBlockSize].
func NewWriterSize(w io.Writer, level, blockSize int) (*Writer, error) {
	if blockSize <= 0 || blockSize > DefaultUncompressedBlockSize {
		return nil, fmt.Errorf("bgzf block size %d is out of range (0, %d]", blockSize, DefaultUncompressedBlockSize)
	}
	gz, err := gzip.NewWriterLevel(&bytes.Buffer{}, level)
	if err != nil {
		return nil, err
	}
	return &Writer{level: level, blockSize: blockSize, w: w, gz: gz}, nil
}

// Write appends buf to the .bgzf payload.
func (w *Writer) Write(buf []byte) (int, error) {
	for i := 0; i < len(buf); {
		end := len(buf)
		if limit := i + w.blockSize - w.original.Len(); limit < end {
			end = limit
		}
		n, _ := w.original.Write(buf[i:end])
		i += n
		if err := w.flushBlocks(false); err != nil {
			return i, err
		}
	}
	return len(buf), nil
}

// Close compresses the buffered data and appends the .bgzf terminator.
func (w *Writer) Close() error {
	if err := w.flushBlocks(true); err != nil {
		return err
	}
	_, err := w.w.Write(terminator)
	return err
}

// flushBlocks compresses complete blocks from w.original, and the partial
// last block too if all is set.
func (w *Writer) flushBlocks(all bool) error {
	for w.original.Len() >= w.blockSize || (all && w.original.Len() > 0) {
		w.compressed.Reset()
		w.gz.Reset(&w.compressed)
		w.gz.Header.Extra = append(w.gz.Header.Extra[:0], bgzfExtra[:]...)
		w.gz.Header.OS = 0xff // Unknown OS value
		payload := w.original.Next(w.blockSize)
		if _, err := w.gz.Write(payload); err != nil {
			return err
		}
		if err := w.gz.Close(); err != nil {
			return err
		}

		// Replace bgzf BSIZE header with compressed length - 1.
		b := w.compressed.Bytes()
		bsize := len(b) - 1
		if bsize >= compressedBlockSize {
			return fmt.Errorf("bgzf compressed block is too big: %d > %d", bsize, compressedBlockSize)
		}
		if len(b) < extraOffset+len(bgzfExtra) || !bytes.Equal(b[extraOffset:extraOffset+len(bgzfExtraPrefix)], bgzfExtraPrefix) {
			log.Panicf("bgzf: gzip header lacks the bgzf extra field")
		}
		b[extraOffset+4] = byte(bsize)
		b[extraOffset+5] = byte(bsize >> 8)

		w.blocks = append(w.blocks, BlockOffset{w.coffset, w.uoffset})
		if _, err := w.w.Write(b); err != nil {
			return err
		}
		w.coffset += uint64(len(b))
		w.uoffset += uint64(len(payload))
	}
	return nil
}

// VOffset returns the virtual-offset of the next byte to be written.
func (w *Writer) VOffset() uint64 {
	return w.coffset<<16 | uint64(w.original.Len())
}

// Blocks returns the offsets of the blocks written so far.
func (w *Writer) Blocks() []BlockOffset { return w.blocks }

// WriteGZI writes a .gzi index of blocks in the format of "bgzip -i": a
// little-endian uint64 count, then one (compressed, uncompressed) pair for
// every block except the first.
func WriteGZI(out io.Writer, blocks []BlockOffset) error {
	if len(blocks) > 0 && blocks[0] == (BlockOffset{}) {
		blocks = blocks[1:]
	}
	buf := make([]byte, 8+16*len(blocks))
	binary.LittleEndian.PutUint64(buf, uint64(len(blocks)))
	for i, b := range blocks {
		binary.LittleEndian.PutUint64(buf[8+16*i:], b.Compressed)
		binary.LittleEndian.PutUint64(buf[16+16*i:], b.Uncompressed)
	}
	_, err := out.Write(buf)
	return err
}
