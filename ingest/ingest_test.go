package ingest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/DonRumata710/quellog/merge"
)

const testFormatJSON = `{
	"extension": "log",
	"separator": "|",
	"timeFieldIndex": 0,
	"timeMask": "%Y-%m-%d %H:%M:%S",
	"fields": [
		{"name": "time", "type": "datetime"},
		{"name": "level", "type": "string"},
		{"name": "message", "type": "string"}
	]
}`

func writeTestFiles(t *testing.T) (catalogDir, logDir string) {
	t.Helper()
	catalogDir = t.TempDir()
	logDir = t.TempDir()

	if err := os.WriteFile(filepath.Join(catalogDir, "plain.json"), []byte(testFormatJSON), 0o644); err != nil {
		t.Fatalf("writing format: %v", err)
	}

	alpha := "2024-01-01 00:00:01|INFO|hello\n2024-01-01 00:00:02|INFO|world\n"
	beta := "2024-01-01 00:00:00|WARN|start\n2024-01-01 00:00:03|WARN|end\n"
	if err := os.WriteFile(filepath.Join(logDir, "alpha.log"), []byte(alpha), 0o644); err != nil {
		t.Fatalf("writing alpha.log: %v", err)
	}
	if err := os.WriteFile(filepath.Join(logDir, "beta.log"), []byte(beta), 0o644); err != nil {
		t.Fatalf("writing beta.log: %v", err)
	}

	return catalogDir, logDir
}

func TestOpenBuildsSessionAcrossModules(t *testing.T) {
	catalogDir, logDir := writeTestFiles(t)

	session, err := Open([]string{logDir}, Options{CatalogDir: catalogDir, NoBuiltin: true})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	modules := session.Modules()
	if len(modules) != 2 {
		t.Fatalf("Modules() = %v, want 2 modules (alpha, beta)", modules)
	}

	it, err := merge.Open(session)
	if err != nil {
		t.Fatalf("merge.Open: %v", err)
	}
	defer it.Close()

	count := 0
	for {
		if _, ok := it.Next(); !ok {
			break
		}
		count++
	}
	if count != 4 {
		t.Errorf("merged entry count = %d, want 4", count)
	}
}

func TestOpenFailsWithNoFormatsAvailable(t *testing.T) {
	_, logDir := writeTestFiles(t)
	if _, err := Open([]string{logDir}, Options{NoBuiltin: true}); err == nil {
		t.Fatalf("expected Open to fail when no catalog directory is given and the builtin catalog is skipped")
	}
}
