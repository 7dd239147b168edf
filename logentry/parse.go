package logentry

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/DonRumata710/quellog/catalog"
)

// ErrLineShape is returned when a line does not match its format's declared
// shape. This is a recoverable condition: the caller
// treats it as a continuation line, not a fatal error.
var ErrLineShape = errors.New("line does not match format shape")

// ErrTimeParse is returned when a time field is present but its value
// cannot be parsed against the format's time mask.
var ErrTimeParse = errors.New("unable to parse time field")

// SplitLine extracts the raw field strings from a line per the format's
// declared shape. It never interprets or types the values — that is
// Coerce's job.
func SplitLine(line string, f *catalog.Format) ([]string, error) {
	switch f.Shape {
	case catalog.ShapeSeparator:
		parts := strings.Split(line, f.Separator)
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts, nil

	case catalog.ShapeRegex:
		match := f.LineRegex.FindStringSubmatch(line)
		if match == nil {
			return nil, ErrLineShape
		}
		names := f.LineRegex.SubexpNames()
		parts := make([]string, len(f.Fields))
		for i, field := range f.Fields {
			value := ""
			// Prefer the named capture group matching the field name.
			found := false
			for gi, gname := range names {
				if gname == field.Name && gi < len(match) {
					value = match[gi]
					found = true
					break
				}
			}
			if !found && i+1 < len(match) {
				value = match[i+1]
			}
			parts[i] = strings.TrimSpace(value)
		}
		return parts, nil

	case catalog.ShapeJSON:
		var doc map[string]any
		if err := json.Unmarshal([]byte(line), &doc); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrLineShape, err)
		}
		parts := make([]string, len(f.Fields))
		for i, field := range f.Fields {
			parts[i] = jsonPath(doc, field.Name)
		}
		return parts, nil

	default:
		return nil, ErrLineShape
	}
}

// jsonPath walks a dotted path into a decoded JSON document and renders the
// leaf as a string: unquoted for string leaves, compactly reserialized
// otherwise.
func jsonPath(doc map[string]any, path string) string {
	var cur any = doc
	for _, segment := range strings.Split(path, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return ""
		}
		cur, ok = m[segment]
		if !ok {
			return ""
		}
	}
	switch v := cur.(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return ""
		}
		return string(b)
	}
}

// IsEntryStarter reports whether parts (already split per the format's
// shape) satisfies every declared field's regex at its position, treating
// an empty part as satisfying an optional field.
func IsEntryStarter(parts []string, f *catalog.Format) bool {
	for i, field := range f.Fields {
		if i >= len(parts) {
			return field.Optional
		}
		part := parts[i]
		if field.Regex != nil {
			if field.Regex.MatchString(part) {
				continue
			}
			if field.Optional && part == "" {
				continue
			}
			return false
		}
		if part == "" && !field.Optional {
			return false
		}
	}
	return true
}

// Coerce types the split field strings per the format's field declarations,
// producing the entry's field map and parsed time. Fields of an unsupported
// declared type are logged and omitted.
func Coerce(parts []string, f *catalog.Format) (map[string]Value, time.Time, error) {
	fields := make(map[string]Value, len(f.Fields))
	var entryTime time.Time
	var timeErr error

	for i, field := range f.Fields {
		if i >= len(parts) {
			continue
		}
		raw := parts[i]
		if raw == "" && field.Optional {
			continue
		}

		switch field.Type {
		case catalog.FieldBool:
			fields[field.Name] = Bool(catalog.TruthyLiterals[strings.ToLower(raw)])
		case catalog.FieldInt:
			n, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				continue
			}
			fields[field.Name] = Int(n)
		case catalog.FieldUint:
			n, err := strconv.ParseUint(raw, 10, 64)
			if err != nil {
				continue
			}
			fields[field.Name] = Uint(n)
		case catalog.FieldDouble:
			n, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				continue
			}
			fields[field.Name] = Double(n)
		case catalog.FieldString:
			fields[field.Name] = String(raw)
		case catalog.FieldDateTime:
			t, err := ParseTime(raw, f)
			if err != nil {
				if i == f.TimeFieldIndex {
					timeErr = err
				}
				continue
			}
			fields[field.Name] = Time(t)
			if i == f.TimeFieldIndex {
				entryTime = t
			}
		default:
			// Unsupported declared type: log-and-skip.
			log.Printf("[WARN] Skipping field %s: unsupported type %q", field.Name, field.Type)
			continue
		}
	}

	if timeErr != nil {
		return fields, time.Time{}, fmt.Errorf("%w: %v", ErrTimeParse, timeErr)
	}
	return fields, entryTime, nil
}

// ParseTime parses a time field value using the format's time_mask and, if
// time_fractional_digits > 0, a fixed-width fractional suffix appended as
// nanoseconds.
func ParseTime(raw string, f *catalog.Format) (time.Time, error) {
	base := raw
	var fracDigits string
	if f.TimeFractionalDigits > 0 {
		if dot := strings.IndexByte(raw, '.'); dot != -1 {
			base = raw[:dot]
			rest := raw[dot+1:]
			// The fractional segment may be followed by trailing text (e.g.
			// a timezone token); keep only the leading digit run.
			end := 0
			for end < len(rest) && rest[end] >= '0' && rest[end] <= '9' {
				end++
			}
			fracDigits = rest[:end]
			base += rest[end:]
		}
	}

	layout := goLayout(f.TimeMask)
	t, err := time.Parse(layout, base)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", ErrTimeParse, err)
	}

	if fracDigits == "" {
		return t, nil
	}

	// Interpret left-to-right as a fixed-width decimal.
	for len(fracDigits) < 9 {
		fracDigits += "0"
	}
	fracDigits = fracDigits[:9]
	nanos, err := strconv.ParseInt(fracDigits, 10, 64)
	if err != nil {
		return t, nil
	}
	return t.Add(time.Duration(nanos) * time.Nanosecond), nil
}

// NormalizeContinuation strips the common leading whitespace shared by every
// line in lines, preserving relative indentation, and joins them with "\n".
func NormalizeContinuation(lines []string) string {
	if len(lines) == 0 {
		return ""
	}

	minSpaces := -1
	for _, line := range lines {
		spaces := 0
		for spaces < len(line) && (line[spaces] == ' ' || line[spaces] == '\t') {
			spaces++
		}
		if spaces == len(line) {
			continue // blank line doesn't constrain the common prefix
		}
		if minSpaces == -1 || spaces < minSpaces {
			minSpaces = spaces
		}
	}
	if minSpaces <= 0 {
		return strings.Join(lines, "\n")
	}

	trimmed := make([]string, len(lines))
	for i, line := range lines {
		if len(line) >= minSpaces {
			trimmed[i] = line[minSpaces:]
		} else {
			trimmed[i] = strings.TrimLeft(line, " \t")
		}
	}
	return strings.Join(trimmed, "\n")
}
