package logstore

import (
	"time"

	"github.com/DonRumata710/quellog/logentry"
)

// Session is a narrowed view over an Index: a chosen set of modules plus a
// time range, the unit of work a merge iterator is opened against.
type Session struct {
	idx     *Index
	modules []string
	lo, hi  time.Time
}

// NewSession builds the full-coverage view over idx: every module, the
// index's entire observed time range.
func NewSession(idx *Index) *Session {
	return &Session{idx: idx, modules: idx.Modules(), lo: idx.MinTime(), hi: idx.MaxTime()}
}

// Narrow returns a new Session restricted to a subset of modules and/or a
// tighter time range. An empty modules slice keeps the current selection;
// a zero lo or hi leaves that bound unchanged.
func (s *Session) Narrow(modules []string, lo, hi time.Time) *Session {
	next := &Session{idx: s.idx, modules: s.modules, lo: s.lo, hi: s.hi}
	if len(modules) > 0 {
		next.modules = modules
	}
	if !lo.IsZero() {
		next.lo = lo
	}
	if !hi.IsZero() {
		next.hi = hi
	}
	return next
}

// Modules returns the modules this session covers.
func (s *Session) Modules() []string { return s.modules }

// Range returns the session's [lo, hi] time bounds.
func (s *Session) Range() (time.Time, time.Time) { return s.lo, s.hi }

// Index returns the underlying Index the session narrows.
func (s *Session) Index() *Index { return s.idx }

// EnumValues returns the distinct observed values for field, accumulated
// from entries actually read so far, across every module in the index
// regardless of the session's current narrowing.
func (s *Session) EnumValues(field string) []logentry.Value {
	return s.idx.EnumValues(field)
}
