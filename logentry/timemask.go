package logentry

import "strings"

// goLayout translates a strftime-style time_mask into a Go reference-time
// layout string. Only the directives the catalog format is expected to use
// are supported; an unrecognized directive passes through literally.
func goLayout(mask string) string {
	var b strings.Builder
	for i := 0; i < len(mask); i++ {
		c := mask[i]
		if c != '%' || i+1 >= len(mask) {
			b.WriteByte(c)
			continue
		}
		i++
		switch mask[i] {
		case 'Y':
			b.WriteString("2006")
		case 'y':
			b.WriteString("06")
		case 'm':
			b.WriteString("01")
		case 'd':
			b.WriteString("02")
		case 'e':
			b.WriteString("_2")
		case 'H':
			b.WriteString("15")
		case 'I':
			b.WriteString("03")
		case 'M':
			b.WriteString("04")
		case 'S':
			b.WriteString("05")
		case 'p':
			b.WriteString("PM")
		case 'Z':
			b.WriteString("MST")
		case 'z':
			b.WriteString("-0700")
		case 'b', 'h':
			b.WriteString("Jan")
		case 'B':
			b.WriteString("January")
		case 'a':
			b.WriteString("Mon")
		case 'A':
			b.WriteString("Monday")
		case 'T':
			b.WriteString("15:04:05")
		case 'F':
			b.WriteString("2006-01-02")
		case '%':
			b.WriteByte('%')
		default:
			b.WriteByte('%')
			b.WriteByte(mask[i])
		}
	}
	return b.String()
}
