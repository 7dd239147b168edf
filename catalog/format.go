// Package catalog holds declarative format descriptions — line shapes,
// typed fields, comment markers, and filename-matching rules — loaded from
// a directory of JSON documents, one per format.
package catalog

import (
	"regexp"
)

// FieldType is the declared type of a format field.
type FieldType string

const (
	FieldBool     FieldType = "bool"
	FieldInt      FieldType = "int"
	FieldUint     FieldType = "uint"
	FieldDouble   FieldType = "double"
	FieldString   FieldType = "string"
	FieldDateTime FieldType = "datetime"
)

// Comment describes a comment block: it starts with a line beginning with
// Start and, if Finish is non-empty, continues until a line ending with
// Finish; otherwise the comment is confined to a single line.
type Comment struct {
	Start  string
	Finish string // empty means single-line comment
}

// LineShapeKind tags which of the three mutually exclusive line shapes a
// format uses.
type LineShapeKind int

const (
	ShapeSeparator LineShapeKind = iota
	ShapeRegex
	ShapeJSON
)

// Field describes one ordered field of a format's line shape.
type Field struct {
	Name     string
	Regex    *regexp.Regexp
	Type     FieldType
	Optional bool
	IsEnum   bool
	Values   map[string]bool // declared enum values, kept for catalog round-trips; parsing does not check field values against it
}

// Format is a single catalog entry: everything needed to recognize and
// parse one family of log lines.
type Format struct {
	Name string

	Modules        map[string]bool // empty means "any module"
	FilenameRegex  *regexp.Regexp  // may be nil; may carry a "module" named group

	Extension string
	Encoding  string // "", "utf-8", "utf-16le", "utf-16be", "utf-32le", "utf-32be"

	Comments []Comment

	Shape     LineShapeKind
	Separator string
	LineRegex *regexp.Regexp

	TimeFieldIndex       int
	TimeMask             string
	TimeFractionalDigits int

	Fields []Field
}

// FieldIndex returns the position of name within Fields, or -1.
func (f *Format) FieldIndex(name string) int {
	for i, field := range f.Fields {
		if field.Name == name {
			return i
		}
	}
	return -1
}

// TruthyLiterals is the case-insensitive set of strings that coerce to a
// bool field's true value.
var TruthyLiterals = map[string]bool{
	"true": true, "t": true, "1": true, "yes": true, "y": true, "on": true, "enabled": true,
}
