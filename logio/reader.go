// Package logio provides an encoding-aware, bidirectional line reader over
// a seekable byte source, the building block the entry parser and merge
// iterator use to walk log files forward and backward.
package logio

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/DonRumata710/quellog/catalog"
	"golang.org/x/text/transform"
)

// ErrOpen is returned when a source cannot be opened or is not seekable.
var ErrOpen = errors.New("cannot open log source")

// ErrEncoding names the condition of a byte sequence that decodes to no
// characters under the chosen encoding. No Reader method returns it: the
// forward reader yields such a line's raw bytes as the line instead.
var ErrEncoding = errors.New("cannot decode source under chosen encoding")

// Source is the minimal capability a LineReader needs: random-access reads
// plus a known size, satisfied by *os.File and by in-memory byte buffers
// alike so archive members can be addressed uniformly with plain files.
type Source interface {
	io.ReaderAt
	Size() int64
}

// Reader is the encoding-aware bidirectional line reader: it walks a log
// source forward and backward, yielding logical lines with comment blocks
// stripped out.
type Reader struct {
	src      Source
	encoding Encoding
	comments []catalog.Comment

	fileStart int64 // first byte after any BOM
	pos       int64 // current forward-read cursor, measured in the same axis as the source

	fwd    *bufio.Reader
	fwdPos int64 // byte offset the bufio.Reader's next read will resume from (pre-buffer)
}

// Open constructs a Reader over src, auto-detecting the encoding from a
// BOM when declaredEncoding is empty.
func Open(src Source, declaredEncoding string, comments []catalog.Comment) (*Reader, error) {
	head := make([]byte, 4)
	n, err := src.ReadAt(head, 0)
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("%w: %v", ErrOpen, err)
	}
	head = head[:n]

	var enc Encoding
	var skip int
	if declaredEncoding != "" {
		enc = ParseEncodingName(declaredEncoding)
	} else {
		enc, skip = detectBOM(head)
	}

	r := &Reader{
		src:       src,
		encoding:  enc,
		comments:  comments,
		fileStart: int64(skip),
	}
	r.resetForward(int64(skip))
	return r, nil
}

func (r *Reader) resetForward(pos int64) {
	r.pos = pos
	r.fwdPos = pos
	r.fwd = bufio.NewReaderSize(io.NewSectionReader(r.src, pos, r.src.Size()-pos), 64*1024)
}

// Close releases the underlying source, if it supports closing. Sources
// backed by in-memory buffers (archive members) have nothing to release.
func (r *Reader) Close() error {
	if c, ok := r.src.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// Position returns the current forward-read byte offset.
func (r *Reader) Position() int64 { return r.pos }

// Seek repositions the reader's forward cursor to an absolute byte offset.
func (r *Reader) Seek(offset int64) {
	r.resetForward(offset)
}

// GotoEnd repositions the forward cursor at the end of the source, the
// starting point for a reverse iteration.
func (r *Reader) GotoEnd() {
	r.resetForward(r.src.Size())
}

// NextLine returns the next non-comment logical line, or ("", false) at
// end of stream. Empty lines are skipped silently.
func (r *Reader) NextLine() (string, bool) {
	var activeComment *catalog.Comment

	for {
		line, ok := r.readRawForwardLine()
		if !ok {
			return "", false
		}
		if line == "" {
			continue
		}

		if activeComment != nil {
			if activeComment.Finish != "" && hasSuffixStr(line, activeComment.Finish) {
				activeComment = nil
			}
			continue
		}

		if c := matchCommentStart(line, r.comments); c != nil {
			if c.Finish != "" && !hasSuffixStr(line, c.Finish) {
				activeComment = c
			}
			continue
		}

		return line, true
	}
}

// readRawForwardLine reads one \n- or \r\n-terminated line from the
// forward cursor, decoding per the reader's encoding, and advances pos.
func (r *Reader) readRawForwardLine() (string, bool) {
	unit := r.encoding.unitSize()
	if unit == 1 {
		raw, err := r.fwd.ReadBytes('\n')
		if len(raw) == 0 && err != nil {
			return "", false
		}
		r.pos += int64(len(raw))
		raw = trimNewline(raw)
		return string(raw), true
	}

	// Multi-byte code units: '\n' is a whole unit (e.g. [0x0A, 0x00] for
	// UTF-16LE), not a single matching byte, so delimit unit-by-unit the
	// same way readRawBackwardLine walks backward.
	nl := lineUnit(r.encoding, '\n')
	cr := lineUnit(r.encoding, '\r')

	var raw []byte
	buf := make([]byte, unit)
	for {
		n, err := io.ReadFull(r.fwd, buf)
		if n > 0 {
			raw = append(raw, buf[:n]...)
		}
		if n == unit && bytes.Equal(buf, nl) {
			break
		}
		if err != nil {
			break
		}
	}
	if len(raw) == 0 {
		return "", false
	}
	r.pos += int64(len(raw))
	raw = bytes.TrimSuffix(raw, nl)
	raw = bytes.TrimSuffix(raw, cr)

	if r.encoding == UTF32LE || r.encoding == UTF32BE {
		return decodeUnits(r.encoding, raw), true
	}

	dec := forwardDecoder(r.encoding)
	decoded, _, decErr := transform.Bytes(dec, raw)
	if decErr != nil || (len(decoded) == 0 && len(raw) > 0) {
		return string(raw), true // best-effort: surface raw bytes rather than dropping the line
	}
	return string(decoded), true
}

// lineUnit returns the raw code-unit bytes representing ASCII character b
// under e, honoring the encoding's byte order.
func lineUnit(e Encoding, b byte) []byte {
	size := e.unitSize()
	u := make([]byte, size)
	if e == UTF16BE || e == UTF32BE {
		u[size-1] = b
	} else {
		u[0] = b
	}
	return u
}

func trimNewline(b []byte) []byte {
	b = bytes.TrimSuffix(b, []byte("\n"))
	b = bytes.TrimSuffix(b, []byte("\r"))
	return b
}

// PrevLine walks backward one code unit at a time from the current
// position, returning the logical line lying strictly above it. Returns
// ("", false) at the start of the stream, never an error for that case.
func (r *Reader) PrevLine() (string, bool, error) {
	unit := r.encoding.unitSize()

	var activeComment *catalog.Comment
	for {
		line, ok := r.readRawBackwardLine(unit)
		if !ok {
			return "", false, nil
		}
		if line == "" {
			continue
		}

		if activeComment != nil {
			if hasPrefixStr(line, activeComment.Start) {
				activeComment = nil
			}
			continue
		}

		if c := matchCommentEndOrStart(line, r.comments); c != nil {
			if c.Finish != "" && hasSuffixStr(line, c.Finish) {
				if !hasPrefixStr(line, c.Start) {
					activeComment = c
				}
				continue
			}
			if hasPrefixStr(line, c.Start) {
				continue
			}
		}

		return line, true, nil
	}
}

// readRawBackwardLine accumulates decoded characters walking backward one
// code unit at a time until a line separator is found, leaving the forward
// cursor positioned on the separator just before the returned line (or at
// the start of the data when the line is the first one).
func (r *Reader) readRawBackwardLine(unitSize int) (string, bool) {
	var line []byte
	cursor := r.pos

	for cursor != r.fileStart {
		prev := cursor - int64(unitSize)
		if prev < r.fileStart {
			return "", false
		}

		buf := make([]byte, unitSize)
		if _, err := r.src.ReadAt(buf, prev); err != nil {
			return "", false
		}
		cursor = prev

		decoded := decodeUnit(r.encoding, buf)
		if decoded == "\n" || decoded == "\r" {
			if len(line) > 0 {
				break
			}
			continue
		}
		line = append([]byte(decoded), line...)
	}

	r.pos = cursor
	r.resetForward(cursor)
	if len(line) == 0 {
		if cursor == r.fileStart {
			return "", false
		}
		return "", true
	}
	return string(line), true
}

func matchCommentStart(line string, comments []catalog.Comment) *catalog.Comment {
	for i := range comments {
		if hasPrefixStr(line, comments[i].Start) {
			return &comments[i]
		}
	}
	return nil
}

func matchCommentEndOrStart(line string, comments []catalog.Comment) *catalog.Comment {
	for i := range comments {
		c := &comments[i]
		if c.Finish != "" && hasSuffixStr(line, c.Finish) {
			return c
		}
		if hasPrefixStr(line, c.Start) {
			return c
		}
	}
	return nil
}

func hasPrefixStr(s, prefix string) bool {
	return len(s) >= len(prefix) && s[:len(prefix)] == prefix
}

func hasSuffixStr(s, suffix string) bool {
	return len(s) >= len(suffix) && s[len(s)-len(suffix):] == suffix
}
