// Package merge implements the k-way time-ordered merge of every module's
// log files within a session into one entry stream, forward or reverse.
package merge

import (
	"context"
	"errors"
	"time"

	"github.com/DonRumata710/quellog/catalog"
	"github.com/DonRumata710/quellog/logentry"
	"github.com/DonRumata710/quellog/logstore"
)

// ErrCancelled is returned by NextCtx, and by anything built on it (such as
// ingest.WriteAll's bulk drain), when the caller's context is done before
// the iterator finishes delivering entries.
var ErrCancelled = errors.New("iteration cancelled")

var errNoFileAtCache = errors.New("no file covers cached position")

// Iterator merges every module covered by a Session into one time-ordered
// entry stream. A single Iterator is not safe for concurrent use.
type Iterator struct {
	idx       *logstore.Index
	forward   bool
	startTime time.Time
	endTime   time.Time // exclusive
	heap      *itemHeap
}

// Open builds a forward iterator over session starting at session.Range().
func Open(session *logstore.Session) (*Iterator, error) {
	lo, hi := session.Range()
	return open(session, true, lo, hi)
}

// OpenReverse builds a reverse iterator over session, yielding entries from
// the end of its range backward.
func OpenReverse(session *logstore.Session) (*Iterator, error) {
	lo, hi := session.Range()
	return open(session, false, lo, hi)
}

func open(session *logstore.Session, forward bool, start, end time.Time) (*Iterator, error) {
	end = end.Add(time.Millisecond) // exclusive upper bound, matching the sentinel convention
	it := &Iterator{
		idx:       session.Index(),
		forward:   forward,
		startTime: start,
		endTime:   end,
		heap:      &itemHeap{forward: forward},
	}

	for _, module := range session.Modules() {
		var meta logstore.Metadata
		var metaStart time.Time
		var ok bool
		if forward {
			meta, metaStart, ok = it.idx.Find(module, start)
		} else {
			meta, metaStart, ok = it.idx.FindLastAtOrBefore(module, end)
		}
		if !ok {
			continue
		}
		item, err := openItemAt(it.idx, module, forward, meta, metaStart)
		if err != nil {
			continue
		}
		if entry, ok := it.seekWithinBounds(item); ok {
			item.entry = entry
			it.heap.pushItem(item)
		} else {
			item.close()
		}
	}

	return it, nil
}

// Reopen resumes an iterator from a previously captured Cache.
func Reopen(session *logstore.Session, forward bool, cache Cache, start, end time.Time) (*Iterator, error) {
	end = end.Add(time.Millisecond)
	idx := session.Index()

	it := &Iterator{idx: idx, forward: forward, startTime: start, endTime: end, heap: &itemHeap{forward: forward}}

	seen := make(map[string]bool, len(cache.Items))
	for _, ic := range cache.Items {
		seen[ic.Module] = true
		item, err := reopenFromCache(idx, forward, ic)
		if err != nil {
			continue
		}
		entry, ok := it.fetchNext(item)
		if !ok {
			item.close()
			continue
		}
		item.entry = entry
		it.heap.pushItem(item)
	}

	for _, module := range session.Modules() {
		if seen[module] {
			continue
		}
		anchor := cache.Time
		useLast := !forward
		if anchor.IsZero() {
			anchor = start
			if !forward {
				anchor = end
			}
		}
		var meta logstore.Metadata
		var metaStart time.Time
		var ok bool
		if useLast {
			meta, metaStart, ok = idx.FindLastAtOrBefore(module, anchor)
		} else {
			meta, metaStart, ok = idx.Find(module, anchor)
		}
		if !ok {
			continue
		}
		item, err := openItemAt(idx, module, forward, meta, metaStart)
		if err != nil {
			continue
		}
		if entry, ok := it.seekWithinBounds(item); ok {
			item.entry = entry
			it.heap.pushItem(item)
		} else {
			item.close()
		}
	}

	if !forward {
		it.endTime = cache.Time
	}

	return it, nil
}

// seekWithinBounds fetches entries from item until one falls in
// [startTime, endTime) or the module runs out of files.
func (it *Iterator) seekWithinBounds(item *heapItem) (logentry.LogEntry, bool) {
	for {
		entry, ok := it.fetchNext(item)
		if !ok {
			return logentry.LogEntry{}, false
		}
		if !entry.Time.Before(it.startTime) && entry.Time.Before(it.endTime) {
			return entry, true
		}
	}
}

// fetchNext pulls the next entry from item in the iterator's direction,
// transparently advancing across file boundaries within the module.
func (it *Iterator) fetchNext(item *heapItem) (logentry.LogEntry, bool) {
	if it.forward {
		return it.fetchForward(item)
	}
	return it.fetchReverse(item)
}

func (it *Iterator) fetchForward(item *heapItem) (logentry.LogEntry, bool) {
	raw, ok := item.takeLine(true)
	for !ok {
		if !item.switchToNextFile(it.idx) {
			return logentry.LogEntry{}, false
		}
		raw, ok = item.takeLine(true)
	}

	var fields map[string]logentry.Value
	var entryTime time.Time
	for {
		parts, err := logentry.SplitLine(raw, item.format)
		if err == nil && logentry.IsEntryStarter(parts, item.format) {
			if f, t, terr := logentry.Coerce(parts, item.format); terr == nil {
				fields, entryTime = f, t
				break
			}
		}
		raw, ok = item.takeLine(true)
		for !ok {
			if !item.switchToNextFile(it.idx) {
				return logentry.LogEntry{}, false
			}
			raw, ok = item.takeLine(true)
		}
	}

	item.entryPos = item.reader.Position()
	entry := logentry.LogEntry{Module: item.module, Time: entryTime, RawLine: raw, Fields: fields}
	it.recordEnums(item.format, fields)

	var cont []string
	for {
		next, ok := item.takeLine(true)
		if !ok {
			break
		}
		parts, err := logentry.SplitLine(next, item.format)
		if err == nil && logentry.IsEntryStarter(parts, item.format) {
			item.pending = next
			item.havePending = true
			break
		}
		cont = append(cont, next)
	}
	entry.Continuation = logentry.NormalizeContinuation(cont)
	return entry, true
}

func (it *Iterator) fetchReverse(item *heapItem) (logentry.LogEntry, bool) {
	var cont []string
	for {
		raw, ok := item.takeLine(false)
		for !ok {
			if !item.switchToPrevFile(it.idx) {
				return logentry.LogEntry{}, false
			}
			raw, ok = item.takeLine(false)
		}

		parts, err := logentry.SplitLine(raw, item.format)
		if err == nil && logentry.IsEntryStarter(parts, item.format) {
			fields, t, terr := logentry.Coerce(parts, item.format)
			if terr == nil {
				for i, j := 0, len(cont)-1; i < j; i, j = i+1, j-1 {
					cont[i], cont[j] = cont[j], cont[i]
				}
				item.entryPos = item.reader.Position()
				it.recordEnums(item.format, fields)
				return logentry.LogEntry{
					Module:       item.module,
					Time:         t,
					RawLine:      raw,
					Fields:       fields,
					Continuation: logentry.NormalizeContinuation(cont),
				}, true
			}
		}
		cont = append(cont, raw)
	}
}

func (it *Iterator) recordEnums(f *catalog.Format, fields map[string]logentry.Value) {
	for _, field := range f.Fields {
		if !field.IsEnum {
			continue
		}
		if v, ok := fields[field.Name]; ok {
			it.idx.AddEnumValue(field.Name, v)
		}
	}
}

// HasNext reports whether at least one module has a pending entry.
func (it *Iterator) HasNext() bool { return it.heap.Len() > 0 }

// CurrentTime returns the time of the entry Next would currently return
// (forward), or the iterator's current exclusive upper bound (reverse).
func (it *Iterator) CurrentTime() time.Time {
	if it.forward {
		if it.HasNext() {
			return it.heap.peek().entry.Time
		}
		return time.Time{}
	}
	return it.endTime
}

// IsValueAhead reports whether the iterator still has entries to deliver
// at or before (forward) / after (reverse) t.
func (it *Iterator) IsValueAhead(t time.Time) bool {
	if it.forward {
		return it.HasNext() && !it.heap.peek().entry.Time.After(t)
	}
	return it.endTime.After(t)
}

// Next pops the earliest (forward) or latest (reverse) pending entry and
// refills that module's slot from its reader.
func (it *Iterator) Next() (logentry.LogEntry, bool) {
	entry, ok, _ := it.next()
	return entry, ok
}

// NextCtx behaves like Next but first checks ctx, returning ErrCancelled
// instead of popping the heap if ctx is already done. Callers that drain an
// iterator in a loop (ingest.WriteAll, enum-value listing) use this so a
// cancelled request stops before its next heap pop rather than running to
// completion regardless.
func (it *Iterator) NextCtx(ctx context.Context) (logentry.LogEntry, bool, error) {
	select {
	case <-ctx.Done():
		return logentry.LogEntry{}, false, ErrCancelled
	default:
	}
	return it.next()
}

func (it *Iterator) next() (logentry.LogEntry, bool, error) {
	if !it.HasNext() {
		return logentry.LogEntry{}, false, nil
	}

	top := it.heap.popItem()
	result := top.entry

	if next, ok := it.seekWithinBounds(top); ok {
		top.entry = next
		it.heap.pushItem(top)
	} else {
		top.close()
	}

	if !it.forward {
		it.endTime = result.Time
	}

	return result, true, nil
}

// Snapshot captures the iterator's current position for later resumption
// via Reopen.
func (it *Iterator) Snapshot() Cache {
	var c Cache
	for _, item := range it.heap.items {
		c.Items = append(c.Items, item.snapshot())
	}
	if it.HasNext() {
		c.Time = it.heap.peek().entry.Time
	}
	return c
}

// Close releases every open reader still held by the iterator.
func (it *Iterator) Close() {
	for _, item := range it.heap.items {
		item.close()
	}
}
