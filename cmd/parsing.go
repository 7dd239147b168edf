package cmd

import (
	"fmt"
	"time"
)

// dateTimeFormat is the expected format for --begin and --end.
const dateTimeFormat = "2006-01-02 15:04:05"

// parseDateTimes parses the begin and end datetime strings, returning zero
// time.Time values for empty strings.
func parseDateTimes(beginStr, endStr string) (time.Time, time.Time, error) {
	var begin, end time.Time

	if beginStr != "" {
		parsed, err := time.Parse(dateTimeFormat, beginStr)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid --begin datetime %q, expected %q: %w", beginStr, dateTimeFormat, err)
		}
		begin = parsed
	}

	if endStr != "" {
		parsed, err := time.Parse(dateTimeFormat, endStr)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid --end datetime %q, expected %q: %w", endStr, dateTimeFormat, err)
		}
		end = parsed
	}

	return begin, end, nil
}
