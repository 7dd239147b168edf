package scanner

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/DonRumata710/quellog/catalog"
)

func simpleFormat() *catalog.Format {
	return &catalog.Format{
		Name:           "plain",
		Extension:      "log",
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
}

func TestScanAdmitsMatchingFilesAsModules(t *testing.T) {
	dir := t.TempDir()
	content := "2024-01-01 00:00:01|INFO|hello\n"
	if err := os.WriteFile(filepath.Join(dir, "alpha.log"), []byte(content), 0o644); err != nil {
		t.Fatalf("writing alpha.log: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "ignored.txt"), []byte("not a log"), 0o644); err != nil {
		t.Fatalf("writing ignored.txt: %v", err)
	}

	entries, err := Scan([]string{dir}, []*catalog.Format{simpleFormat()})
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("len(entries) = %d, want 1 (ignored.txt should not match)", len(entries))
	}
	if entries[0].Module != "alpha" {
		t.Errorf("Module = %q, want %q", entries[0].Module, "alpha")
	}
}

func TestScanDisambiguatesSameStemInDifferentDirs(t *testing.T) {
	root := t.TempDir()
	dirA := filepath.Join(root, "svcA")
	dirB := filepath.Join(root, "svcB")
	if err := os.MkdirAll(dirA, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.MkdirAll(dirB, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	contentA := "2024-01-01 00:00:01|INFO|from a\n"
	contentB := "2024-01-01 00:00:02|INFO|from b\n"
	if err := os.WriteFile(filepath.Join(dirA, "worker.log"), []byte(contentA), 0o644); err != nil {
		t.Fatalf("writing: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dirB, "worker.log"), []byte(contentB), 0o644); err != nil {
		t.Fatalf("writing: %v", err)
	}

	entries, err := Scan([]string{root}, []*catalog.Format{simpleFormat()})
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("len(entries) = %d, want 2", len(entries))
	}
	if entries[0].Module == entries[1].Module {
		t.Errorf("expected distinct module names for same-stem files in different directories, got %q twice", entries[0].Module)
	}
}

func TestScanSkipsUnreadablePath(t *testing.T) {
	entries, err := Scan([]string{filepath.Join(t.TempDir(), "does-not-exist")}, []*catalog.Format{simpleFormat()})
	if err != nil {
		t.Fatalf("Scan should not fail outright on an unreadable path, got error: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("entries = %v, want none", entries)
	}
}
