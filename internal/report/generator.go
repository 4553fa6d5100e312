// Package report summarises structured records per region group.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"fjacquet/tering/internal/fileutils"
	"fjacquet/tering/internal/logging"
	"fjacquet/tering/internal/models"

	"github.com/gocarina/gocsv"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// ReportGenerator computes and renders the per-region statistics.
type ReportGenerator struct {
	logger logging.Logger
}

// NewReportGenerator creates a new instance of ReportGenerator.
func NewReportGenerator(logger logging.Logger) *ReportGenerator {
	if logger == nil {
		logger = logging.Nop()
	}
	return &ReportGenerator{logger: logger.WithField("component", "ReportGenerator")}
}

// LoadRecords reads structured records from path: either one JSON file
// holding an array of records, or a directory searched recursively for
// per-record .json files. Files marked _INVALID are ignored.
func (g *ReportGenerator) LoadRecords(path string) ([]models.StructuredRecord, error) {
	if !fileutils.DirectoryExists(path) {
		data, err := os.ReadFile(path) // #nosec G304 -- user-provided input
		if err != nil {
			return nil, fmt.Errorf("failed to read records: %w", err)
		}
		var records []models.StructuredRecord
		if err := json.Unmarshal(data, &records); err != nil {
			return nil, fmt.Errorf("failed to decode records %s: %w", path, err)
		}
		return records, nil
	}

	files, err := fileutils.ListFiles(path, true, ".json")
	if err != nil {
		return nil, err
	}
	records := make([]models.StructuredRecord, 0, len(files))
	for _, file := range files {
		if strings.HasSuffix(fileutils.Stem(file), "_INVALID") {
			continue
		}
		data, err := os.ReadFile(file) // #nosec G304 -- listed under the input directory
		if err != nil {
			return nil, fmt.Errorf("failed to read record: %w", err)
		}
		var rec models.StructuredRecord
		if err := json.Unmarshal(data, &rec); err != nil {
			g.logger.WithError(err).Warn("Skipping undecodable record", logging.F(logging.FieldFile, file))
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

// RegionStats counts, per region group, the students who sent
// gratulations and the gratulations they sent, with each group's share of
// all gratulations. Records without a group or without gratulations are
// left out. Rows are ordered by gratulations, largest first.
func (g *ReportGenerator) RegionStats(records []models.StructuredRecord) []models.RegionStats {
	byGroup := make(map[string]*models.RegionStats)
	total := 0
	for _, rec := range records {
		group := rec.Person.Origin.RegionGroup
		n := len(rec.AcademiaGustavianaActivity.Gratulations)
		if group == "" || n == 0 {
			continue
		}
		row, ok := byGroup[group]
		if !ok {
			row = &models.RegionStats{RegionGroup: group}
			byGroup[group] = row
		}
		row.Students++
		row.Gratulations += n
		total += n
	}

	rows := make([]models.RegionStats, 0, len(byGroup))
	for _, row := range byGroup {
		share := decimal.Zero
		if total > 0 {
			share = decimal.NewFromInt(int64(row.Gratulations)).Mul(hundred).Div(decimal.NewFromInt(int64(total)))
		}
		row.SharePercent = share.StringFixed(2)
		rows = append(rows, *row)
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Gratulations != rows[j].Gratulations {
			return rows[i].Gratulations > rows[j].Gratulations
		}
		return rows[i].RegionGroup < rows[j].RegionGroup
	})

	g.logger.Debug("Computed region statistics",
		logging.F(logging.FieldCount, len(rows)),
		logging.F("gratulations", total))
	return rows
}

// GenerateReport renders rows in the specified format (csv or json).
func (g *ReportGenerator) GenerateReport(rows []models.RegionStats, format string) ([]byte, error) {
	switch format {
	case "csv":
		return g.generateCSVReport(rows)
	case "json":
		return g.generateJSONReport(rows)
	default:
		return nil, fmt.Errorf("unsupported report format: %s", format)
	}
}

func (g *ReportGenerator) generateCSVReport(rows []models.RegionStats) ([]byte, error) {
	out, err := gocsv.MarshalBytes(rows)
	if err != nil {
		g.logger.WithError(err).Error("Failed to marshal CSV report")
		return nil, fmt.Errorf("failed to marshal CSV report: %w", err)
	}
	return out, nil
}

func (g *ReportGenerator) generateJSONReport(rows []models.RegionStats) ([]byte, error) {
	out, err := json.MarshalIndent(rows, "", "  ")
	if err != nil {
		g.logger.WithError(err).Error("Failed to marshal JSON report")
		return nil, fmt.Errorf("failed to marshal JSON report: %w", err)
	}
	return out, nil
}
