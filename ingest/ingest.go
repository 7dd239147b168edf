// Package ingest is the façade over catalog discovery, directory/archive
// scanning, and index construction: the one entry point callers need to go
// from a set of paths to an openable Session.
package ingest

import (
	"errors"
	"fmt"

	"github.com/DonRumata710/quellog/catalog"
	"github.com/DonRumata710/quellog/logstore"
	"github.com/DonRumata710/quellog/scanner"
)

// ErrIngestion wraps any failure encountered assembling a session.
var ErrIngestion = errors.New("ingestion failed")

// Options controls catalog loading for an ingestion call.
type Options struct {
	CatalogDir string // extra directory of format JSON documents; optional
	NoBuiltin  bool   // skip the embedded builtin catalog
}

// loadFormats assembles the format catalog: an optional user-supplied
// directory plus the embedded builtin set, user formats first so one that
// collides by name with a builtin is tried first during matching.
func loadFormats(opts Options) ([]*catalog.Format, error) {
	var formats []*catalog.Format

	if opts.CatalogDir != "" {
		userFormats, err := catalog.LoadDir(opts.CatalogDir)
		if err != nil {
			return nil, fmt.Errorf("%w: loading catalog directory %s: %v", ErrIngestion, opts.CatalogDir, err)
		}
		formats = append(formats, userFormats...)
	}

	if !opts.NoBuiltin {
		builtin, err := catalog.LoadBuiltin()
		if err != nil {
			return nil, fmt.Errorf("%w: loading builtin catalog: %v", ErrIngestion, err)
		}
		formats = append(formats, builtin...)
	}

	if len(formats) == 0 {
		return nil, fmt.Errorf("%w: no formats available", ErrIngestion)
	}
	return formats, nil
}

// Open scans paths (files, directories, and archives) and returns the full
// Session covering everything admitted into the resulting index.
func Open(paths []string, opts Options) (*logstore.Session, error) {
	formats, err := loadFormats(opts)
	if err != nil {
		return nil, err
	}

	entries, err := scanner.Scan(paths, formats)
	if err != nil {
		return nil, fmt.Errorf("%w: scanning: %v", ErrIngestion, err)
	}

	idx, err := logstore.Build(entries, formats)
	if err != nil {
		return nil, fmt.Errorf("%w: building index: %v", ErrIngestion, err)
	}

	return logstore.NewSession(idx), nil
}
