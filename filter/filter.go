// Package filter narrows a merged entry stream by module and field
// criteria, transparently forwarding the underlying iterator's cursor
// operations so a filtered stream stays resumable.
package filter

import (
	"context"
	"regexp"
	"time"

	"github.com/DonRumata710/quellog/logentry"
	"github.com/DonRumata710/quellog/merge"
)

// FieldCriterion restricts one field to either a fixed value set or a
// regex; at most one of Values/Regex should be set.
type FieldCriterion struct {
	Values []string
	Regex  *regexp.Regexp
	Deny   bool // true: exclude matches instead of requiring them
}

// LogFilter is the predicate applied to every merged entry: a module
// allow/deny set plus per-field criteria. An entry must pass every
// configured criterion to be delivered.
type LogFilter struct {
	AllowModules map[string]bool // nil/empty: allow every module
	DenyModules  map[string]bool

	Fields map[string][]FieldCriterion
}

// Matches reports whether entry passes every configured criterion.
func (f *LogFilter) Matches(entry logentry.LogEntry) bool {
	if len(f.DenyModules) > 0 && f.DenyModules[entry.Module] {
		return false
	}
	if len(f.AllowModules) > 0 && !f.AllowModules[entry.Module] {
		return false
	}

	for field, criteria := range f.Fields {
		value, present := entry.Fields[field]
		for _, c := range criteria {
			matched := c.matches(value, present)
			if c.Deny {
				if matched {
					return false
				}
				continue
			}
			if !matched {
				return false
			}
		}
	}
	return true
}

func (c FieldCriterion) matches(v logentry.Value, present bool) bool {
	if !present {
		return false
	}
	if c.Regex != nil {
		return c.Regex.MatchString(v.String())
	}
	if len(c.Values) > 0 {
		for _, want := range c.Values {
			if v.String() == want {
				return true
			}
		}
		return false
	}
	return true
}

// Iterator wraps a merge.Iterator, skipping entries that fail a LogFilter
// and otherwise forwarding every cursor operation unchanged.
type Iterator struct {
	inner  *merge.Iterator
	filter *LogFilter
}

// Wrap returns a filtered view over inner.
func Wrap(inner *merge.Iterator, f *LogFilter) *Iterator {
	return &Iterator{inner: inner, filter: f}
}

// Next returns the next entry passing the filter, or false at end of
// stream.
func (it *Iterator) Next() (logentry.LogEntry, bool) {
	for {
		entry, ok := it.inner.Next()
		if !ok {
			return logentry.LogEntry{}, false
		}
		if it.filter == nil || it.filter.Matches(entry) {
			return entry, true
		}
	}
}

// NextCtx behaves like Next but checks ctx before every underlying heap
// pop, returning merge.ErrCancelled as soon as ctx is done rather than
// finishing the filter scan regardless.
func (it *Iterator) NextCtx(ctx context.Context) (logentry.LogEntry, bool, error) {
	for {
		entry, ok, err := it.inner.NextCtx(ctx)
		if err != nil || !ok {
			return logentry.LogEntry{}, false, err
		}
		if it.filter == nil || it.filter.Matches(entry) {
			return entry, true, nil
		}
	}
}

func (it *Iterator) HasNext() bool { return it.inner.HasNext() }

func (it *Iterator) CurrentTime() time.Time { return it.inner.CurrentTime() }

func (it *Iterator) IsValueAhead(t time.Time) bool { return it.inner.IsValueAhead(t) }

func (it *Iterator) Snapshot() merge.Cache { return it.inner.Snapshot() }

func (it *Iterator) Close() { it.inner.Close() }
