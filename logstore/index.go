package logstore

import (
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/DonRumata710/quellog/catalog"
	"github.com/DonRumata710/quellog/logentry"
)

// indexEntry is one (start_time, Metadata) pair within a module's sorted
// file list.
type indexEntry struct {
	start time.Time
	meta  Metadata
}

// moduleFiles is a module's ascending-by-start-time file list, terminated
// by a sentinel entry at end_time+1ms marking the module's exclusive upper bound.
type moduleFiles struct {
	entries []indexEntry
}

// upperBound returns the index of the first entry whose start is > t.
func (m *moduleFiles) upperBound(t time.Time) int {
	return sort.Search(len(m.entries), func(i int) bool {
		return m.entries[i].start.After(t)
	})
}

// Index is the per-module time-indexed file index built from a scan.
type Index struct {
	mu sync.RWMutex

	modules map[string]*moduleFiles

	minTime time.Time
	maxTime time.Time

	formatsInUse map[*catalog.Format]bool
	enumValues   map[string]map[string]logentry.Value

	catalogFormats []*catalog.Format
}

// Build groups a flat scan result into a per-module Index. Two files with
// the same (module, start_time) conflict; the later one in files is
// dropped and logged.
func Build(files []FileEntry, formats []*catalog.Format) (*Index, error) {
	idx := &Index{
		modules:        make(map[string]*moduleFiles),
		formatsInUse:   make(map[*catalog.Format]bool),
		enumValues:     make(map[string]map[string]logentry.Value),
		catalogFormats: formats,
	}

	byModule := make(map[string][]FileEntry)
	for _, f := range files {
		byModule[f.Module] = append(byModule[f.Module], f)
	}

	var globalMin, globalMax time.Time
	first := true

	for module, entries := range byModule {
		sort.SliceStable(entries, func(i, j int) bool { return entries[i].Start.Before(entries[j].Start) })

		mf := &moduleFiles{}
		var moduleEnd time.Time
		for _, fe := range entries {
			if len(mf.entries) > 0 && mf.entries[len(mf.entries)-1].start.Equal(fe.Start) {
				log.Printf("[WARN] Dropping duplicate file for module %s at start time %v: %s",
					module, fe.Start, fe.Metadata.Filename)
				continue
			}
			mf.entries = append(mf.entries, indexEntry{start: fe.Start, meta: fe.Metadata})
			idx.formatsInUse[fe.Metadata.Format] = true

			if fe.End.After(moduleEnd) {
				moduleEnd = fe.End
			}
			if first || fe.Start.Before(globalMin) {
				globalMin = fe.Start
			}
			if first || fe.End.After(globalMax) {
				globalMax = fe.End
			}
			first = false
		}

		if len(mf.entries) == 0 {
			continue
		}

		// Sentinel: exclusive upper bound, one millisecond past the
		// module's latest observed end time.
		mf.entries = append(mf.entries, indexEntry{
			start: moduleEnd.Add(sentinelGap),
			meta:  Metadata{},
		})

		idx.modules[module] = mf
	}

	if len(idx.modules) == 0 {
		return nil, fmt.Errorf("no files admitted into the index")
	}

	idx.minTime = globalMin
	idx.maxTime = globalMax
	return idx, nil
}

// Modules returns the set of module names present in the index.
func (idx *Index) Modules() []string {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	out := make([]string, 0, len(idx.modules))
	for m := range idx.modules {
		out = append(out, m)
	}
	sort.Strings(out)
	return out
}

// MinTime and MaxTime return the overall time range covered by the index.
func (idx *Index) MinTime() time.Time {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.minTime
}

func (idx *Index) MaxTime() time.Time {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.maxTime
}

// FormatsInUse returns the formats actually exercised by at least one
// admitted file.
func (idx *Index) FormatsInUse() []*catalog.Format {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	out := make([]*catalog.Format, 0, len(idx.formatsInUse))
	for f := range idx.formatsInUse {
		out = append(out, f)
	}
	return out
}

// Find returns the file whose [start, end] covers t, or — if none — the
// nearest later file in the module. ok is false if the module
// is unknown or has no file at or after t.
func (idx *Index) Find(module string, t time.Time) (Metadata, time.Time, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	mf, exists := idx.modules[module]
	if !exists {
		return Metadata{}, time.Time{}, false
	}

	i := mf.upperBound(t)
	if i == 0 {
		if len(mf.entries) == 0 {
			return Metadata{}, time.Time{}, false
		}
		return mf.entries[0].meta, mf.entries[0].start, !mf.entries[0].meta.IsSentinel()
	}

	entry := mf.entries[i-1]
	if entry.meta.IsSentinel() {
		// t is at/after the sentinel: no covering or later file.
		return Metadata{}, time.Time{}, false
	}
	return entry.meta, entry.start, true
}

// FindLastAtOrBefore returns the last non-sentinel file in module whose
// start is <= t, the reverse-direction counterpart to Find. ok is false
// if the module is unknown or has no file at or before t.
func (idx *Index) FindLastAtOrBefore(module string, t time.Time) (Metadata, time.Time, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	mf, exists := idx.modules[module]
	if !exists {
		return Metadata{}, time.Time{}, false
	}

	i := mf.upperBound(t)
	if i == 0 {
		return Metadata{}, time.Time{}, false
	}

	entry := mf.entries[i-1]
	if entry.meta.IsSentinel() {
		// t reaches past the module's own data: fall back to its last real file.
		if i-1 == 0 {
			return Metadata{}, time.Time{}, false
		}
		entry = mf.entries[i-2]
	}
	return entry.meta, entry.start, true
}

// FindNext returns the file immediately after the one starting at
// fileStart within module.
func (idx *Index) FindNext(module string, fileStart time.Time) (Metadata, time.Time, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	mf, exists := idx.modules[module]
	if !exists {
		return Metadata{}, time.Time{}, false
	}

	i := mf.upperBound(fileStart)
	if i >= len(mf.entries) {
		return Metadata{}, time.Time{}, false
	}
	entry := mf.entries[i]
	if entry.meta.IsSentinel() {
		return Metadata{}, time.Time{}, false
	}
	return entry.meta, entry.start, true
}

// FindPrev returns the file immediately before the one starting at
// fileStart within module.
func (idx *Index) FindPrev(module string, fileStart time.Time) (Metadata, time.Time, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	mf, exists := idx.modules[module]
	if !exists {
		return Metadata{}, time.Time{}, false
	}

	for i, e := range mf.entries {
		if e.start.Equal(fileStart) {
			if i == 0 {
				return Metadata{}, time.Time{}, false
			}
			prev := mf.entries[i-1]
			return prev.meta, prev.start, !prev.meta.IsSentinel()
		}
	}
	return Metadata{}, time.Time{}, false
}

// AddEnumValue records an observed value for an enum field. Safe for
// concurrent use; enum accumulators grow during iteration.
func (idx *Index) AddEnumValue(field string, v logentry.Value) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	set, ok := idx.enumValues[field]
	if !ok {
		set = make(map[string]logentry.Value)
		idx.enumValues[field] = set
	}
	set[v.String()] = v
}

// EnumValues returns the accumulated distinct observed values for field.
func (idx *Index) EnumValues(field string) []logentry.Value {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	set := idx.enumValues[field]
	out := make([]logentry.Value, 0, len(set))
	for _, v := range set {
		out = append(out, v)
	}
	return out
}
