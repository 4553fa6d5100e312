// Package numbering recovers the running record numbers of the corpus and
// marks each record start with an explicit marker.
//
// Only the next expected number is ever searched for, at the start of a
// line and followed by ". " and an uppercase letter, so numerals inside
// record bodies (ages, years) are never taken for record starts.
package numbering

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"fjacquet/tering/internal/fileutils"
	"fjacquet/tering/internal/logging"
	"fjacquet/tering/internal/models"
)

const (
	// DefaultCeiling is the highest record number of the album.
	DefaultCeiling = 1705
	// DefaultMarker is inserted before every located record number.
	DefaultMarker = "[NR]"
)

// Result holds the outcome of a scan. Every number in 1..Ceiling is either
// in Hits or in Missing.
type Result struct {
	Ceiling int
	Hits    []models.Hit
	Missing []int
}

// Report renders the missing numbers, one per line.
func (r Result) Report() string {
	lines := make([]string, len(r.Missing))
	for i, n := range r.Missing {
		lines[i] = strconv.Itoa(n)
	}
	return strings.Join(lines, "\n")
}

// Numberer scans text for the record-number sequence.
type Numberer struct {
	ceiling int
	marker  string
	logger  logging.Logger
}

// New creates a Numberer. Non-positive ceiling and empty marker fall back
// to the defaults; a nil logger discards diagnostics.
func New(ceiling int, marker string, logger logging.Logger) *Numberer {
	if ceiling < 1 {
		ceiling = DefaultCeiling
	}
	if marker == "" {
		marker = DefaultMarker
	}
	if logger == nil {
		logger = logging.Nop()
	}
	return &Numberer{ceiling: ceiling, marker: marker, logger: logger}
}

// Marker returns the marker inserted by Mark.
func (n *Numberer) Marker() string { return n.marker }

// Scan looks for 1, 2, ... Ceiling in order. A hit moves the scan position
// just past the hit; a miss is recorded and the position stays, so the
// following number is searched from the same place.
func (n *Numberer) Scan(text string) Result {
	res := Result{Ceiling: n.ceiling}
	pos := 0
	for expected := 1; expected <= n.ceiling; expected++ {
		at := findRecordStart(text, pos, expected)
		if at < 0 {
			res.Missing = append(res.Missing, expected)
			continue
		}
		res.Hits = append(res.Hits, models.Hit{Number: expected, Position: at})
		pos = at + 1
	}
	return res
}

// findRecordStart returns the offset of the first line at or after from
// that starts with "<number>. " and an uppercase letter, or -1.
func findRecordStart(text string, from, number int) int {
	prefix := strconv.Itoa(number) + ". "
	if from == 0 && startsRecord(text, prefix) {
		return 0
	}
	needle := "\n" + prefix
	for from < len(text) {
		i := strings.Index(text[from:], needle)
		if i < 0 {
			return -1
		}
		lineStart := from + i + 1
		if startsRecord(text[lineStart:], prefix) {
			return lineStart
		}
		from = lineStart
	}
	return -1
}

func startsRecord(s, prefix string) bool {
	if !strings.HasPrefix(s, prefix) {
		return false
	}
	r, size := utf8.DecodeRuneInString(s[len(prefix):])
	return size > 0 && unicode.IsUpper(r)
}

// Mark inserts marker at every hit position. Positions refer to text as
// scanned; hits must be in ascending position order, as Scan returns them.
func Mark(text string, hits []models.Hit, marker string) string {
	var b strings.Builder
	b.Grow(len(text) + len(hits)*len(marker))
	last := 0
	for _, h := range hits {
		b.WriteString(text[last:h.Position])
		b.WriteString(marker)
		last = h.Position
	}
	b.WriteString(text[last:])
	return b.String()
}

// Number scans text and returns the marked text along with the scan result.
func (n *Numberer) Number(text string) (string, Result) {
	res := n.Scan(text)
	return Mark(text, res.Hits, n.marker), res
}

// Outputs names the side files written by NumberFile.
type Outputs struct {
	Marked string
	Report string
}

// OutputsFor derives the side-file names of input: "<input>_marked.txt" and
// "<input>_report.txt".
func OutputsFor(input string) Outputs {
	return Outputs{
		Marked: input + "_marked.txt",
		Report: input + "_report.txt",
	}
}

// NumberFile numbers the corpus at path and writes the marked corpus and
// the missing-number report next to it.
func (n *Numberer) NumberFile(path string) (Result, Outputs, error) {
	text, err := fileutils.ReadText(path)
	if err != nil {
		return Result{}, Outputs{}, err
	}

	marked, res := n.Number(text)
	out := OutputsFor(path)
	if err := fileutils.WriteTextAtomic(out.Marked, marked); err != nil {
		return res, out, err
	}
	if err := fileutils.WriteTextAtomic(out.Report, res.Report()); err != nil {
		return res, out, err
	}

	n.logger.Info("Numbered corpus",
		logging.F(logging.FieldFile, path),
		logging.F(logging.FieldCount, len(res.Hits)),
		logging.F(logging.FieldMissing, len(res.Missing)))
	if len(res.Missing) > 0 {
		n.logger.Warn("Record numbers not found",
			logging.F(logging.FieldFile, filepath.Base(path)),
			logging.F(logging.FieldMissing, fmt.Sprint(firstN(res.Missing, 20))))
	}
	return res, out, nil
}

func firstN(xs []int, n int) []int {
	if len(xs) > n {
		return xs[:n]
	}
	return xs
}
