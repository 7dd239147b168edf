package cmd

import (
	"testing"
	"time"
)

func TestParseDateTimesEmptyYieldsZeroValues(t *testing.T) {
	begin, end, err := parseDateTimes("", "")
	if err != nil {
		t.Fatalf("parseDateTimes: %v", err)
	}
	if !begin.IsZero() || !end.IsZero() {
		t.Errorf("parseDateTimes(\"\", \"\") = (%v, %v), want both zero", begin, end)
	}
}

func TestParseDateTimesParsesBothBounds(t *testing.T) {
	begin, end, err := parseDateTimes("2024-01-02 03:04:05", "2024-01-03 00:00:00")
	if err != nil {
		t.Fatalf("parseDateTimes: %v", err)
	}
	want := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	if !begin.Equal(want) {
		t.Errorf("begin = %v, want %v", begin, want)
	}
	if end.IsZero() {
		t.Errorf("end should not be zero")
	}
}

func TestParseDateTimesRejectsMalformedInput(t *testing.T) {
	if _, _, err := parseDateTimes("not-a-date", ""); err == nil {
		t.Fatalf("expected error for malformed --begin value")
	}
}
