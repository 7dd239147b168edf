// Package logstore holds the time-indexed per-module file index and the
// narrowed Session view over it.
package logstore

import (
	"time"

	"github.com/DonRumata710/quellog/catalog"
	"github.com/DonRumata710/quellog/logio"
)

// Opener is the capability to produce a fresh LineReader for a piece of log
// metadata; a closure rather than a bare path so archive members are
// addressed uniformly with plain files.
type Opener func() (*logio.Reader, error)

// Metadata describes one log file (or archive member) admitted into the
// index. A zero-value Metadata (Format == nil) is the sentinel entry
// marking the exclusive upper bound of a module's coverage.
type Metadata struct {
	Format   *catalog.Format
	Filename string
	Open     Opener
}

// IsSentinel reports whether m is the exclusive-upper-bound placeholder.
func (m Metadata) IsSentinel() bool { return m.Format == nil && m.Open == nil }

// FileEntry is one admitted file, as produced by the scanner and consumed
// by Build.
type FileEntry struct {
	Module   string
	Metadata Metadata
	Start    time.Time
	End      time.Time
}

// sentinelGap is the fixed offset past a file's end time at which its
// sentinel entry is placed, marking the exclusive upper bound of a module's coverage.
const sentinelGap = time.Millisecond
