// Package dateutils recognises the date headers that anchor the enrollment
// records and resolves their month names and years.
//
// Three header shapes are understood, each optionally preceded by the
// "Dep." (deposition) prefix found in the source:
//
//	"5. Mai 1700"  day, month, year
//	"5. Mai"       day and month, year inherited from the YearContext
//	"Mai 1700"     month and year, day elided
package dateutils

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// HeaderKind distinguishes the header shapes.
type HeaderKind int

const (
	// DayMonth is "day. month" with an optional year.
	DayMonth HeaderKind = iota + 1
	// MonthYear is "month year" without a day.
	MonthYear
)

func (k HeaderKind) String() string {
	switch k {
	case DayMonth:
		return "day-month"
	case MonthYear:
		return "month-year"
	default:
		return "unknown"
	}
}

var (
	// Tried first: strictly more specific than monthYearPattern.
	dayMonthPattern  = regexp.MustCompile(`^(?:Dep\.\s*)?(\d{1,2})\.\s*([\p{L}\p{M}]+)\.?(?:\s*(\d{4}))?$`)
	monthYearPattern = regexp.MustCompile(`^(?:Dep\.\s*)?([\p{L}\p{M}]+)\.?\s*(\d{4})$`)
)

// Header is a recognised date-header line. Day and MonthName keep the raw
// tokens as they appear in the source; Year is 0 when elided.
type Header struct {
	Kind      HeaderKind
	Day       string
	MonthName string
	Year      int
	Line      string
}

// ParseHeader reports whether line (surrounding whitespace ignored) is a
// date header. Recognition is purely syntactic: the month token is not
// checked against the lexicon, see Header.Month.
func ParseHeader(line string) (Header, bool) {
	line = strings.TrimSpace(line)
	if line == "" {
		return Header{}, false
	}

	if m := dayMonthPattern.FindStringSubmatch(line); m != nil {
		h := Header{Kind: DayMonth, Day: m[1], MonthName: m[2], Line: line}
		if m[3] != "" {
			h.Year, _ = strconv.Atoi(m[3])
		}
		return h, true
	}

	if m := monthYearPattern.FindStringSubmatch(line); m != nil {
		year, _ := strconv.Atoi(m[2])
		return Header{Kind: MonthYear, MonthName: m[1], Year: year, Line: line}, true
	}

	return Header{}, false
}

// HasYear reports whether the header states its own year.
func (h Header) HasYear() bool {
	return h.Year != 0
}

// Month resolves the header's month token through the lexicon.
func (h Header) Month() (time.Month, bool) {
	return MonthNumber(h.MonthName)
}

// Format renders the header with the given resolved year, e.g. "5. Mai 1700"
// or "Mai 1700". Tokens are kept verbatim.
func (h Header) Format(year int) string {
	if h.Kind == MonthYear {
		return fmt.Sprintf("%s %d", h.MonthName, year)
	}
	return fmt.Sprintf("%s. %s %d", h.Day, h.MonthName, year)
}

// MonthKey returns the YYYY-MM key of a calendar month.
func MonthKey(year int, month time.Month) string {
	return fmt.Sprintf("%d-%02d", year, int(month))
}
