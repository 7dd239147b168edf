package merge

import (
	"time"

	"github.com/DonRumata710/quellog/catalog"
	"github.com/DonRumata710/quellog/logentry"
	"github.com/DonRumata710/quellog/logio"
	"github.com/DonRumata710/quellog/logstore"
)

// heapItem is one module's current position: an open reader sitting just
// past (forward) or just before (reverse) its most recently produced entry,
// plus that entry itself for heap ordering.
type heapItem struct {
	module    string
	metaStart time.Time // the index key of the file the reader is open on
	reader    *logio.Reader
	format    *catalog.Format

	pending     string // forward only: a starter line already read, held for the next fetch
	havePending bool

	entry    logentry.LogEntry
	entryPos int64 // reader.Position() at the start of entry, cached for snapshot/resume
}

func (it *heapItem) close() {
	if it.reader != nil {
		it.reader.Close()
	}
}

// takeLine returns the next raw line in the iteration direction, consuming
// a pending read-ahead line first if one is queued.
func (it *heapItem) takeLine(forward bool) (string, bool) {
	if forward {
		if it.havePending {
			it.havePending = false
			line := it.pending
			it.pending = ""
			return line, true
		}
		return it.reader.NextLine()
	}
	line, ok, err := it.reader.PrevLine()
	if err != nil {
		return "", false
	}
	return line, ok
}

func openItemAt(idx *logstore.Index, module string, forward bool, meta logstore.Metadata, metaStart time.Time) (*heapItem, error) {
	r, err := meta.Open()
	if err != nil {
		return nil, err
	}
	if !forward {
		r.GotoEnd()
	}
	return &heapItem{module: module, metaStart: metaStart, reader: r, format: meta.Format}, nil
}

// switchToNextFile closes the exhausted reader and opens the module's next
// file forward; reports false when there is nothing left to read.
func (it *heapItem) switchToNextFile(idx *logstore.Index) bool {
	meta, start, ok := idx.FindNext(it.module, it.metaStart)
	if !ok {
		return false
	}
	it.close()
	r, err := meta.Open()
	if err != nil {
		return false
	}
	it.reader = r
	it.format = meta.Format
	it.metaStart = start
	return true
}

// switchToPrevFile closes the exhausted reader and opens the module's
// previous file, positioned at its end, for reverse iteration.
func (it *heapItem) switchToPrevFile(idx *logstore.Index) bool {
	meta, start, ok := idx.FindPrev(it.module, it.metaStart)
	if !ok {
		return false
	}
	it.close()
	r, err := meta.Open()
	if err != nil {
		return false
	}
	r.GotoEnd()
	it.reader = r
	it.format = meta.Format
	it.metaStart = start
	return true
}

// ItemCache snapshots enough of a heapItem to reopen it later at the same
// logical position.
type ItemCache struct {
	Module    string
	MetaStart time.Time
	Pos       int64
}

// Cache is a resumable snapshot of an Iterator's merge heap.
type Cache struct {
	Time  time.Time
	Items []ItemCache
}

func (it *heapItem) snapshot() ItemCache {
	return ItemCache{Module: it.module, MetaStart: it.metaStart, Pos: it.entryPos}
}

func reopenFromCache(idx *logstore.Index, forward bool, c ItemCache) (*heapItem, error) {
	meta, start, ok := idx.Find(c.Module, c.MetaStart)
	if !ok {
		meta, start, ok = idx.FindNext(c.Module, c.MetaStart)
		if !ok {
			return nil, errNoFileAtCache
		}
	}
	r, err := meta.Open()
	if err != nil {
		return nil, err
	}
	r.Seek(c.Pos)
	return &heapItem{module: c.Module, metaStart: start, reader: r, format: meta.Format}, nil
}
