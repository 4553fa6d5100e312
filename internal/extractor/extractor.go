// Package extractor turns a marker-annotated month file into one file per
// enrollment record, each carrying the date header in effect where its
// marker appeared.
package extractor

import (
	"fmt"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"fjacquet/tering/internal/dateutils"
	"fjacquet/tering/internal/fileutils"
	"fjacquet/tering/internal/logging"
	"fjacquet/tering/internal/models"

	"github.com/gocarina/gocsv"
)

const (
	// HeaderLabel prefixes the date line of every record file.
	HeaderLabel = "Immatrikuleerimise kuupäev: "
	// NoHeaderSuffix marks record files written without a date header.
	NoHeaderSuffix = "_NOHEADER"
	// ManifestFile is written per year directory by WriteManifests.
	ManifestFile = "manifest.csv"
	// UnknownNumber replaces the record number when the marker carries none.
	UnknownNumber = "unknown"
)

// Extractor splits month files into records.
type Extractor struct {
	marker       string
	markerNumber *regexp.Regexp
	logger       logging.Logger
}

// New creates an Extractor recognising records by marker ("[NR]" when
// empty). A nil logger discards diagnostics.
func New(marker string, logger logging.Logger) *Extractor {
	if marker == "" {
		marker = "[NR]"
	}
	if logger == nil {
		logger = logging.Nop()
	}
	return &Extractor{
		marker:       marker,
		markerNumber: regexp.MustCompile(`^` + regexp.QuoteMeta(marker) + `(\d+)`),
		logger:       logger,
	}
}

// Extract returns the records of a month file of the given year.
//
// A date header line, one whose month name resolves, becomes the current
// header and neither opens nor closes a record. Header recognition takes
// precedence over the marker. A marker line closes the open record and
// opens the next one, tagged with the digits following the marker and the
// current header; the marker line is the record's first line. Other lines
// join the open record, and are dropped before the first marker. Headers
// without a year take the most recent year stated in the file, else year.
func (e *Extractor) Extract(text string, year int) []models.Record {
	ctx := dateutils.NewYearContext(year)
	var records []models.Record
	var current *models.Record

	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}

		if h, ok := dateutils.ParseHeader(line); ok {
			if _, known := h.Month(); known {
				y, _ := ctx.Resolve(h)
				ctx.SetHeader(h.Format(y))
				continue
			}
		}

		if strings.HasPrefix(line, e.marker) {
			if current != nil {
				records = append(records, *current)
			}
			current = &models.Record{Number: e.recordNumber(line), Lines: []string{line}}
			if header := ctx.Header(); header != "" {
				current.Header = &header
			}
			continue
		}

		if current != nil {
			current.Lines = append(current.Lines, line)
		}
	}
	if current != nil {
		records = append(records, *current)
	}
	return records
}

func (e *Extractor) recordNumber(line string) string {
	if m := e.markerNumber.FindStringSubmatch(line); m != nil {
		return m[1]
	}
	return UnknownNumber
}

// FileName is the output name of a record: NR<number>_<year>_<month>.txt,
// with NoHeaderSuffix before the extension for header-less records.
func FileName(r models.Record, year int, month string) string {
	name := fmt.Sprintf("NR%s_%d_%s", r.Number, year, month)
	if !r.HasHeader() {
		name += NoHeaderSuffix
	}
	return name + ".txt"
}

// Render is the on-disk form of a record.
func Render(r models.Record) string {
	return HeaderLabel + r.HeaderText() + "\n\n" + r.Body()
}

// ExtractFile extracts the records of a "<year>-<MM>.txt" month file and
// writes them to <outRoot>/<year>/. Records sharing a file name within the
// month get a "_2", "_3", ... suffix instead of overwriting each other.
func (e *Extractor) ExtractFile(path, outRoot string) ([]models.ManifestRow, error) {
	year, month, err := dateutils.YearMonthFromFilename(path)
	if err != nil {
		return nil, err
	}
	text, err := fileutils.ReadText(path)
	if err != nil {
		return nil, err
	}

	dir := filepath.Join(outRoot, strconv.Itoa(year))
	if err := fileutils.EnsureDirectoryExists(dir); err != nil {
		return nil, err
	}

	records := e.Extract(text, year)
	rows := make([]models.ManifestRow, 0, len(records))
	seen := make(map[string]int)
	for _, r := range records {
		name := FileName(r, year, month)
		seen[name]++
		if n := seen[name]; n > 1 {
			name = strings.TrimSuffix(name, ".txt") + "_" + strconv.Itoa(n) + ".txt"
			e.logger.Warn("Duplicate record number in month",
				logging.F(logging.FieldFile, path),
				logging.F(logging.FieldRecordNumber, r.Number))
		}

		out := filepath.Join(dir, name)
		if err := fileutils.WriteTextAtomic(out, Render(r)); err != nil {
			return rows, err
		}
		if !r.HasHeader() {
			e.logger.Warn("Record without date header, flagged for review",
				logging.F(logging.FieldFile, path),
				logging.F(logging.FieldRecordNumber, r.Number))
		}
		rows = append(rows, models.ManifestRow{
			Number:      r.Number,
			Year:        year,
			Month:       month,
			Header:      r.HeaderText(),
			File:        name,
			NeedsReview: !r.HasHeader(),
		})
	}

	e.logger.Info("Extracted records",
		logging.F(logging.FieldFile, path),
		logging.F(logging.FieldYear, year),
		logging.F(logging.FieldMonth, month),
		logging.F(logging.FieldCount, len(rows)))
	return rows, nil
}

// WriteManifests writes one manifest.csv per year under outRoot, rows
// ordered by month then extraction order, and returns the written paths.
func WriteManifests(rows []models.ManifestRow, outRoot string) ([]string, error) {
	byYear := make(map[int][]models.ManifestRow)
	for _, r := range rows {
		byYear[r.Year] = append(byYear[r.Year], r)
	}
	years := make([]int, 0, len(byYear))
	for y := range byYear {
		years = append(years, y)
	}
	sort.Ints(years)

	var paths []string
	for _, y := range years {
		yearRows := byYear[y]
		sort.SliceStable(yearRows, func(i, j int) bool { return yearRows[i].Month < yearRows[j].Month })

		data, err := gocsv.MarshalBytes(&yearRows)
		if err != nil {
			return paths, fmt.Errorf("failed to marshal manifest for %d: %w", y, err)
		}
		path := filepath.Join(outRoot, strconv.Itoa(y), ManifestFile)
		if err := fileutils.WriteFileAtomic(path, data); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// ReadManifest loads a manifest written by WriteManifests.
func ReadManifest(path string) ([]models.ManifestRow, error) {
	data, err := fileutils.ReadText(path)
	if err != nil {
		return nil, err
	}
	var rows []models.ManifestRow
	if err := gocsv.UnmarshalString(data, &rows); err != nil {
		return nil, fmt.Errorf("failed to parse manifest %s: %w", path, err)
	}
	return rows, nil
}
