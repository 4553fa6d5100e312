package pipeline

import (
	"context"
	"time"

	"fjacquet/tering/internal/batch"
	"fjacquet/tering/internal/logging"
)

// Dirs locates the trees a full run reads and writes.
type Dirs struct {
	Raw     string
	Months  string
	Records string
}

// Summary counts what a full run produced.
type Summary struct {
	RunID     string
	YearFiles int
	Months    int
	Unknown   int
	CrossYear int
	Records   int
	NoHeader  int
	Manifests []string
	Failures  []batch.Result[any]
	Duration  time.Duration
}

// OK reports whether every file was processed.
func (s Summary) OK() bool { return len(s.Failures) == 0 }

// Run partitions the year files of dirs.Raw by month, hyphenation repaired
// in memory, then extracts the records of every month file. A failing file
// is recorded in the summary and does not stop the run; the returned error
// is reserved for directory-level failures.
func (p *Pipeline) Run(ctx context.Context, dirs Dirs) (Summary, error) {
	start := time.Now()
	sum := Summary{RunID: p.runner.RunID()}
	log := p.runner.Logger()

	log.Info("Partitioning year files",
		logging.F(logging.FieldStage, "partition"),
		logging.F(logging.FieldDirectory, dirs.Raw),
		logging.F(logging.FieldWorkers, p.runner.Workers()))
	parts, err := p.PartitionTree(ctx, dirs.Raw, dirs.Months)
	if err != nil {
		return sum, err
	}
	for _, res := range parts {
		if res.Err != nil {
			sum.Failures = append(sum.Failures, batch.Result[any]{Path: res.Path, Err: res.Err})
			continue
		}
		sum.YearFiles++
		sum.Months += len(res.Value.Months)
		sum.Unknown += len(res.Value.Unknown)
		sum.CrossYear += len(res.Value.CrossYear)
	}

	log.Info("Extracting records",
		logging.F(logging.FieldStage, "extract"),
		logging.F(logging.FieldDirectory, dirs.Months))
	extracted, manifests, err := p.ExtractTree(ctx, dirs.Months, dirs.Records)
	sum.Manifests = manifests
	if err != nil {
		return sum, err
	}
	for _, res := range extracted {
		if res.Err != nil {
			sum.Failures = append(sum.Failures, batch.Result[any]{Path: res.Path, Err: res.Err})
			continue
		}
		sum.Records += len(res.Value)
		for _, row := range res.Value {
			if row.NeedsReview {
				sum.NoHeader++
			}
		}
	}

	sum.Duration = time.Since(start)
	log.Info("Run finished",
		logging.F("year_files", sum.YearFiles),
		logging.F("months", sum.Months),
		logging.F("records", sum.Records),
		logging.F("no_header", sum.NoHeader),
		logging.F("failures", len(sum.Failures)),
		logging.F(logging.FieldDuration, sum.Duration.Milliseconds()))
	return sum, nil
}
