package logio

import "testing"

func TestDetectBOM(t *testing.T) {
	cases := []struct {
		name     string
		head     []byte
		wantEnc  Encoding
		wantSkip int
	}{
		{"none", []byte("plain text"), UTF8, 0},
		{"utf8", []byte{0xEF, 0xBB, 0xBF, 'x'}, UTF8, 3},
		{"utf16le", []byte{0xFF, 0xFE, 'x', 0}, UTF16LE, 2},
		{"utf16be", []byte{0xFE, 0xFF, 0, 'x'}, UTF16BE, 2},
		{"utf32le", []byte{0xFF, 0xFE, 0x00, 0x00}, UTF32LE, 4},
		{"utf32be", []byte{0x00, 0x00, 0xFE, 0xFF}, UTF32BE, 4},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			enc, skip := detectBOM(c.head)
			if enc != c.wantEnc || skip != c.wantSkip {
				t.Errorf("detectBOM(%v) = (%v, %d), want (%v, %d)", c.head, enc, skip, c.wantEnc, c.wantSkip)
			}
		})
	}
}

func TestParseEncodingName(t *testing.T) {
	cases := map[string]Encoding{
		"":          UTF8,
		"utf-16le":  UTF16LE,
		"UTF16LE":   UTF16LE,
		"utf-16be":  UTF16BE,
		"utf-32le":  UTF32LE,
		"utf-32be":  UTF32BE,
		"bogus":     UTF8,
	}
	for name, want := range cases {
		if got := ParseEncodingName(name); got != want {
			t.Errorf("ParseEncodingName(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestUnitSize(t *testing.T) {
	cases := map[Encoding]int{
		UTF8: 1, UTF16LE: 2, UTF16BE: 2, UTF32LE: 4, UTF32BE: 4,
	}
	for enc, want := range cases {
		if got := enc.unitSize(); got != want {
			t.Errorf("unitSize(%v) = %d, want %d", enc, got, want)
		}
	}
}
