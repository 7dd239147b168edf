// Package logentry defines the typed log entry produced by the parser and
// the field value representation shared across the ingestion pipeline.
package logentry

import (
	"fmt"
	"time"
)

// Kind identifies the dynamic type carried by a Value.
type Kind int

const (
	KindString Kind = iota
	KindBool
	KindInt
	KindUint
	KindDouble
	KindDateTime
)

// Value is a typed field value extracted from a log line: a small closed
// set of concrete kinds rather than an open interface{}, so enum
// accumulation and equality checks stay cheap and comparable.
type Value struct {
	Kind   Kind
	Str    string
	Bool   bool
	Int    int64
	Uint   uint64
	Double float64
	Time   time.Time
}

func String(s string) Value  { return Value{Kind: KindString, Str: s} }
func Bool(b bool) Value      { return Value{Kind: KindBool, Bool: b} }
func Int(i int64) Value      { return Value{Kind: KindInt, Int: i} }
func Uint(u uint64) Value    { return Value{Kind: KindUint, Uint: u} }
func Double(f float64) Value { return Value{Kind: KindDouble, Double: f} }
func Time(t time.Time) Value { return Value{Kind: KindDateTime, Time: t} }

// String renders the value for display and for enum-set comparison keys.
func (v Value) String() string {
	switch v.Kind {
	case KindString:
		return v.Str
	case KindBool:
		return fmt.Sprintf("%t", v.Bool)
	case KindInt:
		return fmt.Sprintf("%d", v.Int)
	case KindUint:
		return fmt.Sprintf("%d", v.Uint)
	case KindDouble:
		return fmt.Sprintf("%g", v.Double)
	case KindDateTime:
		return v.Time.Format(time.RFC3339Nano)
	default:
		return ""
	}
}

// Equal reports whether two values represent the same observed field value:
// same Kind and same String() rendering, not Go equality, since two Values
// parsed from different lines may differ in Kind-irrelevant zero fields.
// Enum accumulators key values by String() alone.
func (v Value) Equal(other Value) bool {
	if v.Kind != other.Kind {
		return false
	}
	return v.String() == other.String()
}

// LogEntry is a single parsed, time-ordered record from a log source.
type LogEntry struct {
	Module       string
	Time         time.Time
	RawLine      string
	Fields       map[string]Value
	Continuation string
}
