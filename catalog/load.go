package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// ErrMissingRequiredKey is returned (and logged, not fatal) when a format
// document is missing a key required to build a Format.
var ErrMissingRequiredKey = errors.New("format document missing required key")

// jsonComment mirrors the on-disk {start, finish?} comment pair.
type jsonComment struct {
	Start  string `json:"start"`
	Finish string `json:"finish,omitempty"`
}

// jsonField mirrors one entry of the on-disk "fields" array.
type jsonField struct {
	Name     string   `json:"name"`
	Regex    string   `json:"regex"`
	Type     string   `json:"type"`
	Optional bool     `json:"optional,omitempty"`
	Enum     bool     `json:"enum,omitempty"`
	Values   []string `json:"values,omitempty"`
}

// jsonFormat mirrors one <name>.json document under a catalog directory.
type jsonFormat struct {
	Modules              []string      `json:"modules,omitempty"`
	LogFileRegex         string        `json:"logFileRegex,omitempty"`
	Extension            string        `json:"extension"`
	Encoding             string        `json:"encoding,omitempty"`
	Comments             []jsonComment `json:"comments,omitempty"`
	Separator            string        `json:"separator,omitempty"`
	LineRegex            string        `json:"lineRegex,omitempty"`
	LineFormat           string        `json:"lineFormat,omitempty"`
	TimeFieldIndex       int           `json:"timeFieldIndex"`
	TimeMask             string        `json:"timeMask"`
	TimeFractionalDigits int           `json:"timeFractionalDigits,omitempty"`
	Fields               []jsonField   `json:"fields"`
}

// LoadDir reads every <name>.json file in dir and returns the formats that
// loaded successfully. A document that fails validation is logged as a
// warning and skipped; it does not abort the load of the other files.
func LoadDir(dir string) ([]*Format, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading catalog directory %s: %w", dir, err)
	}

	var formats []*Format
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(strings.ToLower(entry.Name()), ".json") {
			continue
		}

		name := strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name()))
		path := filepath.Join(dir, entry.Name())

		data, err := os.ReadFile(path)
		if err != nil {
			log.Printf("[WARN] Cannot read format file %s: %v", path, err)
			continue
		}

		format, err := ParseFormat(name, data)
		if err != nil {
			log.Printf("[WARN] Rejecting format %s: %v", path, err)
			continue
		}

		formats = append(formats, format)
	}

	return formats, nil
}

// ParseFormat decodes a single format document and validates required keys.
func ParseFormat(name string, data []byte) (*Format, error) {
	var jf jsonFormat
	if err := json.Unmarshal(data, &jf); err != nil {
		return nil, fmt.Errorf("parsing format %s: %w", name, err)
	}

	if jf.Extension == "" {
		return nil, fmt.Errorf("%w: extension", ErrMissingRequiredKey)
	}
	if jf.TimeMask == "" {
		return nil, fmt.Errorf("%w: timeMask", ErrMissingRequiredKey)
	}
	if len(jf.Fields) == 0 {
		return nil, fmt.Errorf("%w: fields", ErrMissingRequiredKey)
	}

	shapesSet := 0
	if jf.Separator != "" {
		shapesSet++
	}
	if jf.LineRegex != "" {
		shapesSet++
	}
	if jf.LineFormat == "json" {
		shapesSet++
	}
	if shapesSet != 1 {
		return nil, fmt.Errorf("%w: exactly one of separator, lineRegex, lineFormat=json", ErrMissingRequiredKey)
	}

	f := &Format{
		Name:                 name,
		Extension:            strings.ToLower(strings.TrimPrefix(jf.Extension, ".")),
		Encoding:             strings.ToLower(jf.Encoding),
		TimeFieldIndex:       jf.TimeFieldIndex,
		TimeMask:             jf.TimeMask,
		TimeFractionalDigits: jf.TimeFractionalDigits,
	}

	if len(jf.Modules) > 0 {
		f.Modules = make(map[string]bool, len(jf.Modules))
		for _, m := range jf.Modules {
			f.Modules[m] = true
		}
	}

	if jf.LogFileRegex != "" {
		re, err := regexp.Compile(jf.LogFileRegex)
		if err != nil {
			return nil, fmt.Errorf("compiling logFileRegex for %s: %w", name, err)
		}
		f.FilenameRegex = re
	}

	for _, c := range jf.Comments {
		f.Comments = append(f.Comments, Comment{Start: c.Start, Finish: c.Finish})
	}

	switch {
	case jf.Separator != "":
		f.Shape = ShapeSeparator
		f.Separator = jf.Separator
	case jf.LineRegex != "":
		f.Shape = ShapeRegex
		re, err := regexp.Compile(jf.LineRegex)
		if err != nil {
			return nil, fmt.Errorf("compiling lineRegex for %s: %w", name, err)
		}
		f.LineRegex = re
	case jf.LineFormat == "json":
		f.Shape = ShapeJSON
	}

	for _, jfield := range jf.Fields {
		if jfield.Name == "" {
			return nil, fmt.Errorf("%w: field.name", ErrMissingRequiredKey)
		}
		field := Field{
			Name:     jfield.Name,
			Type:     FieldType(jfield.Type),
			Optional: jfield.Optional,
			IsEnum:   jfield.Enum,
		}
		if jfield.Regex != "" {
			re, err := regexp.Compile(jfield.Regex)
			if err != nil {
				return nil, fmt.Errorf("compiling regex for field %s in %s: %w", jfield.Name, name, err)
			}
			field.Regex = re
		}
		if len(jfield.Values) > 0 {
			field.Values = make(map[string]bool, len(jfield.Values))
			for _, v := range jfield.Values {
				field.Values[v] = true
			}
		}
		f.Fields = append(f.Fields, field)
	}

	return f, nil
}

// Save writes a format back to disk in the catalog JSON shape, the
// round-trip counterpart of ParseFormat used by anyone maintaining format
// definitions by hand.
func Save(dir string, f *Format) error {
	jf := jsonFormat{
		Extension:            f.Extension,
		Encoding:             f.Encoding,
		TimeFieldIndex:       f.TimeFieldIndex,
		TimeMask:             f.TimeMask,
		TimeFractionalDigits: f.TimeFractionalDigits,
	}
	for m := range f.Modules {
		jf.Modules = append(jf.Modules, m)
	}
	if f.FilenameRegex != nil {
		jf.LogFileRegex = f.FilenameRegex.String()
	}
	for _, c := range f.Comments {
		jf.Comments = append(jf.Comments, jsonComment{Start: c.Start, Finish: c.Finish})
	}
	switch f.Shape {
	case ShapeSeparator:
		jf.Separator = f.Separator
	case ShapeRegex:
		jf.LineRegex = f.LineRegex.String()
	case ShapeJSON:
		jf.LineFormat = "json"
	}
	for _, field := range f.Fields {
		jfield := jsonField{
			Name:     field.Name,
			Type:     string(field.Type),
			Optional: field.Optional,
			Enum:     field.IsEnum,
		}
		if field.Regex != nil {
			jfield.Regex = field.Regex.String()
		}
		for v := range field.Values {
			jfield.Values = append(jfield.Values, v)
		}
		jf.Fields = append(jf.Fields, jfield)
	}

	data, err := json.MarshalIndent(jf, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling format %s: %w", f.Name, err)
	}

	path := filepath.Join(dir, f.Name+".json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing format %s to %s: %w", f.Name, path, err)
	}
	return nil
}
