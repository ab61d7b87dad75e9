package compiler

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// sizeUnits are the accepted byte-count suffixes, binary multiples.
var sizeUnits = map[string]uint64{
	"b":  1,
	"kb": 1 << 10,
	"mb": 1 << 20,
	"gb": 1 << 30,
	"tb": 1 << 40,
}

// parseSizeValue parses "100", "100kb", "2GB" into bytes. Bare integers are
// bytes; suffixes are case-insensitive.
func parseSizeValue(s string) (uint64, error) {
	t := strings.ToLower(strings.TrimSpace(s))

	digitEnd := len(t)
	for i, r := range t {
		if r < '0' || r > '9' {
			digitEnd = i
			break
		}
	}
	if digitEnd == 0 {
		return 0, fmt.Errorf("%q is not a size (expected digits with an optional b/kb/mb/gb/tb suffix)", s)
	}

	n, err := strconv.ParseUint(t[:digitEnd], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%q is not a size: %w", s, err)
	}

	unit := t[digitEnd:]
	if unit == "" {
		return n, nil
	}
	mult, ok := sizeUnits[unit]
	if !ok {
		return 0, fmt.Errorf("unknown size unit %q (expected b, kb, mb, gb, or tb)", unit)
	}
	return n * mult, nil
}

var durationUnits = map[string]time.Duration{
	"s": time.Second, "sec": time.Second, "secs": time.Second,
	"second": time.Second, "seconds": time.Second,
	"m": time.Minute, "min": time.Minute, "mins": time.Minute,
	"minute": time.Minute, "minutes": time.Minute,
	"h": time.Hour, "hr": time.Hour, "hrs": time.Hour,
	"hour": time.Hour, "hours": time.Hour,
	"d": 24 * time.Hour, "day": 24 * time.Hour, "days": 24 * time.Hour,
	"w": 7 * 24 * time.Hour, "week": 7 * 24 * time.Hour, "weeks": 7 * 24 * time.Hour,
}

// timeFormatsHint is appended to temporal value errors.
const timeFormatsHint = "supported forms: -7d, 3hours, 2.weeks, 2024-12-31, 2024-12-31T23:59:59, RFC 3339"

// parseTimeValue parses a temporal literal relative to now. Relative forms
// ("-7d", "3hours", "30.minutes") offset now, with a leading '-' meaning
// before now. Absolute forms are a date (local midnight), a local datetime,
// or RFC 3339.
func parseTimeValue(s string, now time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)

	input, past := s, false
	if rest, ok := strings.CutPrefix(s, "-"); ok {
		input, past = rest, true
	}

	d, relErr := parseRelativeDuration(input)
	if relErr == nil {
		if past {
			return now.Add(-d), nil
		}
		return now.Add(d), nil
	}
	// A value that starts like a relative time ("3hrx", "7.fortnights")
	// keeps the relative error instead of a confusing date-format one.
	if looksRelative(input) {
		return time.Time{}, relErr
	}

	return parseAbsoluteTime(s)
}

func parseRelativeDuration(input string) (time.Duration, error) {
	// Dotted form: "30.minutes".
	if num, unit, ok := strings.Cut(input, "."); ok {
		n, err := strconv.ParseInt(num, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%q is not a number", num)
		}
		return scaleDuration(n, unit)
	}

	digitEnd := -1
	for i, r := range input {
		if r < '0' || r > '9' {
			digitEnd = i
			break
		}
	}
	if digitEnd == -1 {
		return 0, errors.New("missing time unit")
	}
	if digitEnd == 0 {
		return 0, errors.New("missing number")
	}

	unit := input[digitEnd:]
	if strings.HasPrefix(unit, "-") {
		// "2024-12-31" is a date, not a relative time.
		return 0, errors.New("not a relative time")
	}

	n, err := strconv.ParseInt(input[:digitEnd], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%q is not a number", input[:digitEnd])
	}
	return scaleDuration(n, unit)
}

func scaleDuration(n int64, unit string) (time.Duration, error) {
	d, ok := durationUnits[strings.ToLower(unit)]
	if !ok {
		return 0, fmt.Errorf("unknown time unit %q", unit)
	}
	return time.Duration(n) * d, nil
}

// looksRelative reports whether the value starts with digits followed by a
// letter or dot, meaning it was meant as a relative time.
func looksRelative(input string) bool {
	for i, r := range input {
		if r >= '0' && r <= '9' {
			continue
		}
		if i == 0 {
			return false
		}
		return r == '.' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
	}
	return false
}

func parseAbsoluteTime(s string) (time.Time, error) {
	if t, err := time.ParseInLocation("2006-01-02", s, time.Local); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.In(time.Local), nil
	}
	if t, err := time.ParseInLocation("2006-01-02T15:04:05", s, time.Local); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("%q is not a date or time (%s)", s, timeFormatsHint)
}

// parseSetItems splits a set literal into its items. Brackets are optional
// ("[rs, js]" and "rs,js" both work), items may be single- or double-quoted
// to protect commas, and a trailing comma is tolerated. Quoted items decode
// the same escapes as query strings.
func parseSetItems(text string) ([]string, error) {
	inner := strings.TrimSpace(text)
	if strings.HasPrefix(inner, "[") && strings.HasSuffix(inner, "]") {
		inner = inner[1 : len(inner)-1]
	}

	var items []string
	i := 0
	for i < len(inner) {
		for i < len(inner) && isSetSpace(inner[i]) {
			i++
		}
		if i >= len(inner) {
			break
		}
		if inner[i] == ',' {
			i++
			continue
		}

		if q := inner[i]; q == '"' || q == '\'' {
			item, next, err := scanQuotedItem(inner, i)
			if err != nil {
				return nil, err
			}
			items = append(items, item)
			i = next
			for i < len(inner) && inner[i] != ',' {
				if !isSetSpace(inner[i]) {
					return nil, fmt.Errorf("unexpected %q after quoted set item", inner[i])
				}
				i++
			}
			if i < len(inner) {
				i++
			}
			continue
		}

		start := i
		for i < len(inner) && inner[i] != ',' {
			i++
		}
		if item := strings.TrimSpace(inner[start:i]); item != "" {
			items = append(items, item)
		}
		if i < len(inner) {
			i++
		}
	}

	return items, nil
}

func isSetSpace(b byte) bool {
	return b == ' ' || b == '\t'
}

func scanQuotedItem(s string, start int) (string, int, error) {
	quote := s[start]
	var sb strings.Builder

	i := start + 1
	for i < len(s) {
		c := s[i]
		if c == '\\' {
			if i+1 >= len(s) {
				return "", 0, errors.New("unterminated escape in set item")
			}
			switch esc := s[i+1]; esc {
			case 'n':
				sb.WriteByte('\n')
			case 't':
				sb.WriteByte('\t')
			case '\\', '"', '\'':
				sb.WriteByte(esc)
			default:
				return "", 0, fmt.Errorf("invalid escape sequence '\\%c' in set item", esc)
			}
			i += 2
			continue
		}
		if c == quote {
			return sb.String(), i + 1, nil
		}
		sb.WriteByte(c)
		i++
	}
	return "", 0, errors.New("unterminated quoted set item")
}
