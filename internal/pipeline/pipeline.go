// Package pipeline runs the segmentation stages over directory trees:
// hyphenation repair, month partitioning of year files and record
// extraction from month files. Each file is processed independently on the
// batch runner.
package pipeline

import (
	"context"
	"path/filepath"
	"regexp"
	"strings"

	"fjacquet/tering/internal/batch"
	"fjacquet/tering/internal/dateutils"
	"fjacquet/tering/internal/extractor"
	"fjacquet/tering/internal/fileutils"
	"fjacquet/tering/internal/logging"
	"fjacquet/tering/internal/models"
	"fjacquet/tering/internal/monthsplit"
	"fjacquet/tering/internal/textutils"
)

var (
	yearFileName  = regexp.MustCompile(`^\d{4}\.txt$`)
	monthFileName = regexp.MustCompile(`^\d{4}-\d{2}\.txt$`)
)

// Pipeline wires the stages to a batch runner.
type Pipeline struct {
	partitioner *monthsplit.Partitioner
	extractor   *extractor.Extractor
	runner      *batch.Runner
	logger      logging.Logger
}

// New creates a Pipeline.
func New(partitioner *monthsplit.Partitioner, ex *extractor.Extractor, runner *batch.Runner, logger logging.Logger) *Pipeline {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Pipeline{partitioner: partitioner, extractor: ex, runner: runner, logger: logger}
}

// Clean applies the text repairs every stage expects: Unicode composition,
// then line-wrap hyphenation merging.
func Clean(text string) string {
	return textutils.MergeHyphenations(textutils.NormalizeUnicode(text))
}

// NormalizeFile repairs the text of src and writes it to dst (in place when
// equal). It returns the number of hyphenations merged.
func NormalizeFile(src, dst string) (int, error) {
	text, err := fileutils.ReadText(src)
	if err != nil {
		return 0, err
	}
	composed := textutils.NormalizeUnicode(text)
	merged := textutils.CountHyphenations(composed)
	cleaned := textutils.MergeHyphenations(composed)
	if src == dst && cleaned == text {
		return 0, nil
	}
	return merged, fileutils.WriteTextAtomic(dst, cleaned)
}

// NormalizeTree repairs every .txt file under root. With outRoot empty the
// files are rewritten in place; otherwise the tree is mirrored under
// outRoot.
func (p *Pipeline) NormalizeTree(ctx context.Context, root, outRoot string) ([]batch.Result[int], error) {
	files, err := fileutils.ListTextFiles(root, true)
	if err != nil {
		return nil, err
	}
	results := batch.Run(ctx, p.runner, files, func(_ context.Context, path string) (int, error) {
		dst := path
		if outRoot != "" {
			rel, err := filepath.Rel(root, path)
			if err != nil {
				return 0, err
			}
			dst = filepath.Join(outRoot, rel)
		}
		n, err := NormalizeFile(path, dst)
		if err == nil && n > 0 {
			p.logger.Debug("Hyphenations merged",
				logging.F(logging.FieldFile, path),
				logging.F(logging.FieldCount, n))
		}
		return n, err
	})
	return results, nil
}

// PartitionYearFile cleans and partitions one "<year>.txt" file into
// outDir/<year>/.
func (p *Pipeline) PartitionYearFile(path, outDir string) (*monthsplit.Partition, error) {
	year, err := dateutils.YearFromFilename(path)
	if err != nil {
		return nil, err
	}
	text, err := fileutils.ReadText(path)
	if err != nil {
		return nil, err
	}
	part := p.partitioner.Partition(Clean(text), year)
	if _, err := p.partitioner.Write(part, outDir); err != nil {
		return part, err
	}
	return part, nil
}

// PartitionTree partitions the year files directly under rawDir. Files not
// named "<year>.txt" are skipped with a warning.
func (p *Pipeline) PartitionTree(ctx context.Context, rawDir, outDir string) ([]batch.Result[*monthsplit.Partition], error) {
	files, err := fileutils.ListTextFiles(rawDir, false)
	if err != nil {
		return nil, err
	}
	files = p.filter(files, yearFileName, "Skipping file without year name")

	return batch.Run(ctx, p.runner, files, func(_ context.Context, path string) (*monthsplit.Partition, error) {
		return p.PartitionYearFile(path, outDir)
	}), nil
}

// ExtractTree extracts records from every "<year>-<MM>.txt" file below
// monthDir into recordsDir and writes the per-year manifests. Other files,
// unknown_month.txt included, are skipped.
func (p *Pipeline) ExtractTree(ctx context.Context, monthDir, recordsDir string) ([]batch.Result[[]models.ManifestRow], []string, error) {
	files, err := fileutils.ListTextFiles(monthDir, true)
	if err != nil {
		return nil, nil, err
	}
	files = p.filter(files, monthFileName, "Skipping file without year-month name")

	results := batch.Run(ctx, p.runner, files, func(_ context.Context, path string) ([]models.ManifestRow, error) {
		return p.extractor.ExtractFile(path, recordsDir)
	})

	var rows []models.ManifestRow
	for _, res := range results {
		rows = append(rows, res.Value...)
	}
	manifests, err := extractor.WriteManifests(rows, recordsDir)
	return results, manifests, err
}

func (p *Pipeline) filter(files []string, name *regexp.Regexp, msg string) []string {
	kept := files[:0:0]
	for _, f := range files {
		if name.MatchString(filepath.Base(f)) {
			kept = append(kept, f)
			continue
		}
		if !strings.HasPrefix(filepath.Base(f), monthsplit.UnknownMonth) {
			p.logger.Warn(msg, logging.F(logging.FieldFile, f))
		}
	}
	return kept
}
