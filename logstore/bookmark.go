package logstore

import (
	"encoding/json"
	"sync"
	"time"
)

// Bookmark marks one point of interest in a module's stream: a time plus a
// free-text note, set while scrubbing through a session.
type Bookmark struct {
	Module string    `json:"module"`
	Time   time.Time `json:"time"`
	Note   string    `json:"note"`
}

// BookmarkSet is a small persisted list of Bookmarks, independent of any
// particular Index or Session so it survives across re-ingestion of the
// same sources.
type BookmarkSet struct {
	mu    sync.RWMutex
	marks []Bookmark
}

// NewBookmarkSet returns an empty set.
func NewBookmarkSet() *BookmarkSet { return &BookmarkSet{} }

// Add appends a bookmark.
func (b *BookmarkSet) Add(mark Bookmark) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.marks = append(b.marks, mark)
}

// Remove drops every bookmark exactly matching module and time, reporting
// how many were removed.
func (b *BookmarkSet) Remove(module string, t time.Time) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	kept := b.marks[:0]
	removed := 0
	for _, m := range b.marks {
		if m.Module == module && m.Time.Equal(t) {
			removed++
			continue
		}
		kept = append(kept, m)
	}
	b.marks = kept
	return removed
}

// List returns every bookmark, ordered by time.
func (b *BookmarkSet) List() []Bookmark {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]Bookmark, len(b.marks))
	copy(out, b.marks)
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j].Time.Before(out[j-1].Time); j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}

// MarshalJSON round-trips the bookmark list directly, without exposing the
// mutex.
func (b *BookmarkSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.List())
}

// UnmarshalJSON replaces the set's contents with the decoded list.
func (b *BookmarkSet) UnmarshalJSON(data []byte) error {
	var marks []Bookmark
	if err := json.Unmarshal(data, &marks); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.marks = marks
	return nil
}
