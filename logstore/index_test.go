package logstore

import (
	"testing"
	"time"

	"github.com/DonRumata710/quellog/catalog"
	"github.com/DonRumata710/quellog/logentry"
)

func t0(seconds int) time.Time {
	return time.Date(2024, 1, 1, 0, 0, seconds, 0, time.UTC)
}

func fileMeta(name string) Metadata {
	return Metadata{Format: &catalog.Format{Name: name}, Filename: name}
}

func TestBuildGroupsByModuleAndPlacesSentinel(t *testing.T) {
	files := []FileEntry{
		{Module: "a", Metadata: fileMeta("a1.log"), Start: t0(0), End: t0(10)},
		{Module: "a", Metadata: fileMeta("a2.log"), Start: t0(10), End: t0(20)},
		{Module: "b", Metadata: fileMeta("b1.log"), Start: t0(5), End: t0(15)},
	}

	idx, err := Build(files, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if got := idx.Modules(); len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("Modules() = %v, want [a b]", got)
	}
	if !idx.MinTime().Equal(t0(0)) {
		t.Errorf("MinTime() = %v, want %v", idx.MinTime(), t0(0))
	}
	if !idx.MaxTime().Equal(t0(20)) {
		t.Errorf("MaxTime() = %v, want %v", idx.MaxTime(), t0(20))
	}

	// The sentinel for module a sits sentinelGap past its latest end (t0(20)).
	meta, start, ok := idx.FindNext("a", t0(10))
	if ok {
		t.Errorf("FindNext past the last real file should hit the sentinel, got %v at %v", meta, start)
	}
}

func TestBuildDropsDuplicateStartTimes(t *testing.T) {
	files := []FileEntry{
		{Module: "a", Metadata: fileMeta("first.log"), Start: t0(0), End: t0(10)},
		{Module: "a", Metadata: fileMeta("second.log"), Start: t0(0), End: t0(10)},
	}

	idx, err := Build(files, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	meta, _, ok := idx.Find("a", t0(0))
	if !ok {
		t.Fatalf("expected a file at t0")
	}
	if meta.Filename != "first.log" {
		t.Errorf("Filename = %q, want %q (later duplicate should be dropped)", meta.Filename, "first.log")
	}
}

func TestBuildRejectsEmptyFileList(t *testing.T) {
	if _, err := Build(nil, nil); err == nil {
		t.Fatalf("expected error building an index from no files")
	}
}

func TestFindReturnsCoveringOrNextFile(t *testing.T) {
	files := []FileEntry{
		{Module: "a", Metadata: fileMeta("a1.log"), Start: t0(0), End: t0(10)},
		{Module: "a", Metadata: fileMeta("a2.log"), Start: t0(20), End: t0(30)},
	}
	idx, err := Build(files, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	// Inside a1's [start, end]: covering file.
	meta, _, ok := idx.Find("a", t0(5))
	if !ok || meta.Filename != "a1.log" {
		t.Errorf("Find(t0(5)) = (%v, %v), want a1.log/true", meta, ok)
	}

	// Between a1 and a2: nearest later file is a2.
	meta, _, ok = idx.Find("a", t0(15))
	if !ok || meta.Filename != "a2.log" {
		t.Errorf("Find(t0(15)) = (%v, %v), want a2.log/true", meta, ok)
	}

	// After the sentinel: nothing left.
	_, _, ok = idx.Find("a", t0(1000))
	if ok {
		t.Errorf("Find() past every file's end should fail")
	}

	// Unknown module.
	_, _, ok = idx.Find("nonexistent", t0(0))
	if ok {
		t.Errorf("Find() on unknown module should fail")
	}
}

func TestFindNextAndFindPrev(t *testing.T) {
	files := []FileEntry{
		{Module: "a", Metadata: fileMeta("a1.log"), Start: t0(0), End: t0(10)},
		{Module: "a", Metadata: fileMeta("a2.log"), Start: t0(10), End: t0(20)},
		{Module: "a", Metadata: fileMeta("a3.log"), Start: t0(20), End: t0(30)},
	}
	idx, err := Build(files, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	meta, _, ok := idx.FindNext("a", t0(0))
	if !ok || meta.Filename != "a2.log" {
		t.Errorf("FindNext(t0(0)) = (%v, %v), want a2.log/true", meta, ok)
	}

	meta, _, ok = idx.FindPrev("a", t0(20))
	if !ok || meta.Filename != "a2.log" {
		t.Errorf("FindPrev(t0(20)) = (%v, %v), want a2.log/true", meta, ok)
	}

	_, _, ok = idx.FindPrev("a", t0(0))
	if ok {
		t.Errorf("FindPrev() on the first file should fail")
	}

	_, _, ok = idx.FindNext("a", t0(20))
	if ok {
		t.Errorf("FindNext() on the last real file should hit the sentinel and fail")
	}
}

func TestFindLastAtOrBeforeFallsBackPastSentinel(t *testing.T) {
	files := []FileEntry{
		{Module: "a", Metadata: fileMeta("a1.log"), Start: t0(0), End: t0(10)},
		{Module: "a", Metadata: fileMeta("a2.log"), Start: t0(20), End: t0(30)},
	}
	idx, err := Build(files, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	// Well past every file and its sentinel: still resolves to the last real file.
	meta, _, ok := idx.FindLastAtOrBefore("a", t0(1000))
	if !ok || meta.Filename != "a2.log" {
		t.Errorf("FindLastAtOrBefore(t0(1000)) = (%v, %v), want a2.log/true", meta, ok)
	}

	// Between a1 and a2: last file at or before t0(15) is a1.
	meta, _, ok = idx.FindLastAtOrBefore("a", t0(15))
	if !ok || meta.Filename != "a1.log" {
		t.Errorf("FindLastAtOrBefore(t0(15)) = (%v, %v), want a1.log/true", meta, ok)
	}

	// Before the first file starts: nothing to return.
	_, _, ok = idx.FindLastAtOrBefore("a", t0(0).Add(-time.Second))
	if ok {
		t.Errorf("FindLastAtOrBefore() before the first file should fail")
	}

	_, _, ok = idx.FindLastAtOrBefore("nonexistent", t0(0))
	if ok {
		t.Errorf("FindLastAtOrBefore() on unknown module should fail")
	}
}

func TestEnumValuesAccumulateDistinctObservations(t *testing.T) {
	files := []FileEntry{{Module: "a", Metadata: fileMeta("a1.log"), Start: t0(0), End: t0(10)}}
	idx, err := Build(files, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	idx.AddEnumValue("level", logentry.String("INFO"))
	idx.AddEnumValue("level", logentry.String("WARN"))
	idx.AddEnumValue("level", logentry.String("INFO"))

	got := idx.EnumValues("level")
	if len(got) != 2 {
		t.Fatalf("EnumValues(level) = %v, want 2 distinct values", got)
	}

	if len(idx.EnumValues("unseen")) != 0 {
		t.Errorf("EnumValues(unseen) should be empty before anything is recorded")
	}
}
