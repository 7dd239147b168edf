package catalog

import (
	"embed"
	"fmt"
	"io/fs"
	"log"
	"strings"
)

//go:embed builtin/*.json
var builtinFS embed.FS

// LoadBuiltin returns the formats shipped with the module, used when the
// caller does not supply an explicit catalog directory.
func LoadBuiltin() ([]*Format, error) {
	entries, err := fs.ReadDir(builtinFS, "builtin")
	if err != nil {
		return nil, fmt.Errorf("reading builtin catalog: %w", err)
	}

	var formats []*Format
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		name := strings.TrimSuffix(entry.Name(), ".json")
		data, err := builtinFS.ReadFile("builtin/" + entry.Name())
		if err != nil {
			log.Printf("[WARN] Cannot read builtin format %s: %v", entry.Name(), err)
			continue
		}
		format, err := ParseFormat(name, data)
		if err != nil {
			log.Printf("[WARN] Rejecting builtin format %s: %v", entry.Name(), err)
			continue
		}
		formats = append(formats, format)
	}
	return formats, nil
}
