// Package monthsplit redistributes a year file into one stream per calendar
// month, keyed YYYY-MM, using the date headers as record boundaries.
package monthsplit

import (
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"fjacquet/tering/internal/dateutils"
	"fjacquet/tering/internal/fileutils"
	"fjacquet/tering/internal/logging"
)

// UnknownMonth is the file stem of the bucket for lines preceding the first
// header of a file.
const UnknownMonth = "unknown_month"

// Diagnostic is a header line that did not act as a month boundary.
type Diagnostic struct {
	LineNumber int
	Text       string
}

// Partition is the result of splitting one year file.
//
// Months holds, per YYYY-MM key, the records routed to that month in
// document order; a record is its header line followed by its body lines.
// Unknown holds the non-blank lines seen before the first month opened.
// Unresolved lists header-shaped lines whose month token is not in the
// lexicon (kept as body text), CrossYear the headers dated outside the file
// year (dropped).
type Partition struct {
	Year       int
	Months     map[string][][]string
	Unknown    []string
	Unresolved []Diagnostic
	CrossYear  []Diagnostic
}

// MonthKeys returns the month keys in calendar order.
func (p *Partition) MonthKeys() []string {
	keys := make([]string, 0, len(p.Months))
	for k := range p.Months {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// RecordCount is the number of records over all months.
func (p *Partition) RecordCount() int {
	n := 0
	for _, records := range p.Months {
		n += len(records)
	}
	return n
}

// Render serialises a month: each record's lines joined by "\n" and
// followed by a blank-line separator.
func (p *Partition) Render(key string) string {
	var b strings.Builder
	for _, record := range p.Months[key] {
		b.WriteString(strings.Join(record, "\n"))
		b.WriteString("\n\n")
	}
	return b.String()
}

// RenderUnknown serialises the unknown-month bucket, "" when it is empty.
func (p *Partition) RenderUnknown() string {
	if len(p.Unknown) == 0 {
		return ""
	}
	return strings.Join(p.Unknown, "\n") + "\n\n"
}

// Partitioner splits year files by month.
type Partitioner struct {
	logger logging.Logger
}

// New creates a Partitioner. A nil logger discards diagnostics.
func New(logger logging.Logger) *Partitioner {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Partitioner{logger: logger}
}

// Partition splits text, asserted to cover year, into month records.
//
// A header whose month resolves and whose year (stated, or the file year
// when elided) equals year opens a new record in that month. A header dated
// in another year is dropped and leaves the open month unchanged, so the
// lines following it stay where they were going. A header whose month does
// not resolve is ordinary text. Blank lines are never kept; surrounding
// whitespace is trimmed.
func (p *Partitioner) Partition(text string, year int) *Partition {
	part := &Partition{Year: year, Months: make(map[string][][]string)}
	ctx := dateutils.NewYearContext(year)
	// index of the open record within Months[ctx.Month()]
	open := -1

	for i, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}

		if h, ok := dateutils.ParseHeader(line); ok {
			month, known := h.Month()
			headerYear, _ := ctx.Peek(h)
			switch {
			case !known:
				part.Unresolved = append(part.Unresolved, Diagnostic{LineNumber: i + 1, Text: line})
				p.logger.Warn("Unrecognised month name, header kept as text",
					logging.F(logging.FieldLineNumber, i+1),
					logging.F(logging.FieldHeader, line))
			case headerYear != year:
				part.CrossYear = append(part.CrossYear, Diagnostic{LineNumber: i + 1, Text: line})
				p.logger.Warn("Header outside file year dropped",
					logging.F(logging.FieldLineNumber, i+1),
					logging.F(logging.FieldHeader, line),
					logging.F(logging.FieldYear, year))
				continue
			default:
				key := dateutils.MonthKey(year, month)
				ctx.SetMonth(key)
				ctx.SetHeader(line)
				part.Months[key] = append(part.Months[key], []string{line})
				open = len(part.Months[key]) - 1
				continue
			}
		}

		key := ctx.Month()
		if key == "" {
			part.Unknown = append(part.Unknown, line)
			continue
		}
		part.Months[key][open] = append(part.Months[key][open], line)
	}

	return part
}

// PartitionFile partitions a year file named "<year>.txt" and writes
// <outDir>/<year>/<year>-<MM>.txt per month, plus unknown_month.txt when
// lines preceded the first header. It returns the partition and the written
// paths.
func (p *Partitioner) PartitionFile(path, outDir string) (*Partition, []string, error) {
	year, err := dateutils.YearFromFilename(path)
	if err != nil {
		return nil, nil, err
	}
	text, err := fileutils.ReadText(path)
	if err != nil {
		return nil, nil, err
	}

	part := p.Partition(text, year)
	written, err := p.Write(part, outDir)
	if err != nil {
		return part, written, err
	}

	p.logger.Info("Partitioned year file",
		logging.F(logging.FieldFile, path),
		logging.F(logging.FieldYear, year),
		logging.F(logging.FieldCount, len(part.Months)),
		logging.F("records", part.RecordCount()),
		logging.F("unknown_lines", len(part.Unknown)),
		logging.F("cross_year", len(part.CrossYear)))
	return part, written, nil
}

// Write stores a partition under <outDir>/<year>/.
func (p *Partitioner) Write(part *Partition, outDir string) ([]string, error) {
	dir := filepath.Join(outDir, strconv.Itoa(part.Year))
	if err := fileutils.EnsureDirectoryExists(dir); err != nil {
		return nil, err
	}

	var written []string
	for _, key := range part.MonthKeys() {
		path := filepath.Join(dir, key+".txt")
		if err := fileutils.WriteTextAtomic(path, part.Render(key)); err != nil {
			return written, err
		}
		written = append(written, path)
	}
	if unknown := part.RenderUnknown(); unknown != "" {
		path := filepath.Join(dir, UnknownMonth+".txt")
		if err := fileutils.WriteTextAtomic(path, unknown); err != nil {
			return written, err
		}
		written = append(written, path)
	}
	return written, nil
}
