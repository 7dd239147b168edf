package filter

import (
	"context"
	"errors"
	"io"
	"regexp"
	"testing"
	"time"

	"github.com/DonRumata710/quellog/catalog"
	"github.com/DonRumata710/quellog/logentry"
	"github.com/DonRumata710/quellog/logio"
	"github.com/DonRumata710/quellog/logstore"
	"github.com/DonRumata710/quellog/merge"
)

// memSource is an in-memory logio.Source used so this test needs no real files.
type memSource struct{ data []byte }

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

func (m *memSource) Size() int64 { return int64(len(m.data)) }

func buildSingleModuleSession(t *testing.T) *logstore.Session {
	t.Helper()
	f := &catalog.Format{
		Name:           "test",
		Shape:          catalog.ShapeSeparator,
		Separator:      "|",
		TimeFieldIndex: 0,
		TimeMask:       "%Y-%m-%d %H:%M:%S",
		Fields: []catalog.Field{
			{Name: "time", Type: catalog.FieldDateTime},
			{Name: "level", Type: catalog.FieldString},
			{Name: "message", Type: catalog.FieldString},
		},
	}
	content := "2024-01-01 00:00:01|INFO|hello\n2024-01-01 00:00:02|INFO|world\n"
	open := func() (*logio.Reader, error) {
		return logio.Open(&memSource{data: []byte(content)}, "", f.Comments)
	}
	start := time.Date(2024, 1, 1, 0, 0, 1, 0, time.UTC)
	end := time.Date(2024, 1, 1, 0, 0, 2, 0, time.UTC)
	files := []logstore.FileEntry{
		{Module: "a", Metadata: logstore.Metadata{Format: f, Filename: "a.log", Open: open}, Start: start, End: end},
	}
	idx, err := logstore.Build(files, []*catalog.Format{f})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return logstore.NewSession(idx)
}

func entry(module, level string) logentry.LogEntry {
	return logentry.LogEntry{
		Module: module,
		Fields: map[string]logentry.Value{"level": logentry.String(level)},
	}
}

func TestLogFilterAllowModules(t *testing.T) {
	f := &LogFilter{AllowModules: map[string]bool{"a": true}}
	if !f.Matches(entry("a", "INFO")) {
		t.Errorf("expected module a to be allowed")
	}
	if f.Matches(entry("b", "INFO")) {
		t.Errorf("expected module b to be rejected, not in allow list")
	}
}

func TestLogFilterDenyModules(t *testing.T) {
	f := &LogFilter{DenyModules: map[string]bool{"a": true}}
	if f.Matches(entry("a", "INFO")) {
		t.Errorf("expected module a to be denied")
	}
	if !f.Matches(entry("b", "INFO")) {
		t.Errorf("expected module b to pass, not denied")
	}
}

func TestLogFilterFieldValues(t *testing.T) {
	f := &LogFilter{Fields: map[string][]FieldCriterion{
		"level": {{Values: []string{"WARN", "ERROR"}}},
	}}
	if !f.Matches(entry("a", "WARN")) {
		t.Errorf("expected WARN to match")
	}
	if f.Matches(entry("a", "INFO")) {
		t.Errorf("expected INFO to be rejected")
	}
}

func TestLogFilterFieldRegex(t *testing.T) {
	f := &LogFilter{Fields: map[string][]FieldCriterion{
		"level": {{Regex: regexp.MustCompile("^W")}},
	}}
	if !f.Matches(entry("a", "WARN")) {
		t.Errorf("expected WARN to match ^W")
	}
	if f.Matches(entry("a", "INFO")) {
		t.Errorf("expected INFO to not match ^W")
	}
}

func TestLogFilterDenyCriterion(t *testing.T) {
	f := &LogFilter{Fields: map[string][]FieldCriterion{
		"level": {{Values: []string{"DEBUG"}, Deny: true}},
	}}
	if f.Matches(entry("a", "DEBUG")) {
		t.Errorf("expected DEBUG to be excluded by deny criterion")
	}
	if !f.Matches(entry("a", "INFO")) {
		t.Errorf("expected INFO to pass, deny criterion only excludes DEBUG")
	}
}

func TestLogFilterFieldAbsentFails(t *testing.T) {
	f := &LogFilter{Fields: map[string][]FieldCriterion{
		"missing-field": {{Values: []string{"x"}}},
	}}
	if f.Matches(entry("a", "INFO")) {
		t.Errorf("expected entry lacking the filtered field to be rejected")
	}
}

func TestIteratorNextCtxStopsOnCancelledContext(t *testing.T) {
	session := buildSingleModuleSession(t)

	inner, err := merge.Open(session)
	if err != nil {
		t.Fatalf("merge.Open: %v", err)
	}
	defer inner.Close()

	it := Wrap(inner, &LogFilter{AllowModules: map[string]bool{"a": true}})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, ok, err := it.NextCtx(ctx)
	if ok {
		t.Errorf("NextCtx() on a cancelled context should not deliver an entry")
	}
	if !errors.Is(err, merge.ErrCancelled) {
		t.Errorf("NextCtx() error = %v, want %v", err, merge.ErrCancelled)
	}
}

func TestIteratorNextCtxDeliversThroughFilter(t *testing.T) {
	session := buildSingleModuleSession(t)

	inner, err := merge.Open(session)
	if err != nil {
		t.Fatalf("merge.Open: %v", err)
	}
	defer inner.Close()

	it := Wrap(inner, &LogFilter{AllowModules: map[string]bool{"a": true}})

	e, ok, err := it.NextCtx(context.Background())
	if err != nil || !ok {
		t.Fatalf("NextCtx() = (_, %v, %v), want a delivered entry", ok, err)
	}
	if e.Module != "a" {
		t.Errorf("entry module = %q, want %q", e.Module, "a")
	}
}
