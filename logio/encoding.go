package logio

import (
	"bytes"
	"strings"

	"golang.org/x/text/encoding/unicode"
)

// Encoding identifies one of the text encodings recognized by BOM or
// declared explicitly on a format.
type Encoding int

const (
	UTF8 Encoding = iota
	UTF16LE
	UTF16BE
	UTF32LE
	UTF32BE
)

// unitSize returns the code-unit width in bytes used when walking the
// stream backward one unit at a time.
func (e Encoding) unitSize() int {
	switch e {
	case UTF16LE, UTF16BE:
		return 2
	case UTF32LE, UTF32BE:
		return 4
	default:
		return 1
	}
}

// ParseEncodingName maps a format's declared encoding string to an
// Encoding, defaulting to UTF8 for an empty or unrecognized name.
func ParseEncodingName(name string) Encoding {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "utf-16le", "utf16le":
		return UTF16LE
	case "utf-16be", "utf16be":
		return UTF16BE
	case "utf-32le", "utf32le":
		return UTF32LE
	case "utf-32be", "utf32be":
		return UTF32BE
	default:
		return UTF8
	}
}

// detectBOM inspects the first bytes of a stream and returns the encoding
// they imply plus the number of BOM bytes to skip. If no recognized BOM is
// present, it returns (UTF8, 0).
func detectBOM(head []byte) (Encoding, int) {
	switch {
	case bytes.HasPrefix(head, []byte{0xFF, 0xFE, 0x00, 0x00}):
		return UTF32LE, 4
	case bytes.HasPrefix(head, []byte{0x00, 0x00, 0xFE, 0xFF}):
		return UTF32BE, 4
	case bytes.HasPrefix(head, []byte{0xEF, 0xBB, 0xBF}):
		return UTF8, 3
	case bytes.HasPrefix(head, []byte{0xFF, 0xFE}):
		return UTF16LE, 2
	case bytes.HasPrefix(head, []byte{0xFE, 0xFF}):
		return UTF16BE, 2
	default:
		return UTF8, 0
	}
}

// decodeUnit decodes exactly one code unit's worth of raw bytes (as sized
// by Encoding.unitSize) into the string it represents. For UTF-8 it may
// decode fewer bytes than the unit width implies since UTF-8 is a variable
// width encoding walked one byte at a time from the tail; prevLine handles
// assembling multi-byte runes by accumulating raw bytes until they decode
// cleanly.
func decodeUnit(e Encoding, raw []byte) string {
	switch e {
	case UTF16LE, UTF16BE:
		if len(raw) < 2 {
			return ""
		}
		var u uint16
		if e == UTF16LE {
			u = uint16(raw[0]) | uint16(raw[1])<<8
		} else {
			u = uint16(raw[1]) | uint16(raw[0])<<8
		}
		return string(rune(u))
	case UTF32LE, UTF32BE:
		if len(raw) < 4 {
			return ""
		}
		var u uint32
		if e == UTF32LE {
			u = uint32(raw[0]) | uint32(raw[1])<<8 | uint32(raw[2])<<16 | uint32(raw[3])<<24
		} else {
			u = uint32(raw[3]) | uint32(raw[2])<<8 | uint32(raw[1])<<16 | uint32(raw[0])<<24
		}
		return string(rune(u))
	default:
		return string(raw)
	}
}

// decodeUnits decodes raw as a sequence of fixed-width code units, used for
// UTF-32 forward reads where x/text has no streaming transformer to lean on.
func decodeUnits(e Encoding, raw []byte) string {
	size := e.unitSize()
	var b strings.Builder
	for i := 0; i+size <= len(raw); i += size {
		b.WriteString(decodeUnit(e, raw[i:i+size]))
	}
	return b.String()
}

// forwardDecoder returns a transform.Transformer-backed decoder for
// streaming forward reads of a UTF-16 encoding, used so multi-byte
// sequences split across buffered chunk boundaries decode correctly. UTF-8
// needs no transformation (raw bytes are already valid UTF-8); UTF-32 is
// decoded unit-by-unit in reader.go since x/text has no UTF-32 transformer.
func forwardDecoder(e Encoding) *unicode.Decoder {
	switch e {
	case UTF16BE:
		return unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM).NewDecoder()
	default:
		return unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewDecoder()
	}
}
