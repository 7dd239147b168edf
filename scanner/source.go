// Package scanner walks plain directories and archive members, matches
// each candidate file against the format catalog, probes its start/end
// time, and groups the result into a flat per-module file list ready for
// logstore.Build.
package scanner

import (
	"bytes"
	"io"
	"os"

	"github.com/DonRumata710/quellog/logio"
)

// memSource adapts an in-memory byte slice (an archive member, typically)
// to logio.Source so the line reader can address it exactly like a file.
type memSource struct {
	data []byte
}

func newMemSource(data []byte) *memSource { return &memSource{data: data} }

func (m *memSource) Size() int64 { return int64(len(m.data)) }

func (m *memSource) ReadAt(p []byte, off int64) (int, error) {
	if off >= int64(len(m.data)) {
		return 0, io.EOF
	}
	n := copy(p, m.data[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

// readAllCompact fully drains r into memory; used for archive members,
// which are expected to be individual log files, not the whole archive.
func readAllCompact(r io.Reader) ([]byte, error) {
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func newMemReader(data []byte) io.Reader { return bytes.NewReader(data) }

// fileSource adapts an *os.File to logio.Source, caching its size.
type fileSource struct {
	f    *os.File
	size int64
}

func (s *fileSource) Size() int64 { return s.size }

func (s *fileSource) ReadAt(p []byte, off int64) (int, error) { return s.f.ReadAt(p, off) }

func (s *fileSource) Close() error { return s.f.Close() }

// openFileSource opens path for random-access reads. If suffix names a
// compression format, the file is fully decompressed into memory first,
// since a compressed stream cannot be read backward in place.
func openFileSource(path, suffix string) (logio.Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	if suffix == "" {
		info, err := f.Stat()
		if err != nil {
			f.Close()
			return nil, err
		}
		return &fileSource{f: f, size: info.Size()}, nil
	}
	defer f.Close()

	dr, err := decompress(f, suffix)
	if err != nil {
		return nil, err
	}
	defer dr.Close()

	data, err := readAllCompact(dr)
	if err != nil {
		return nil, err
	}
	return newMemSource(data), nil
}
