// Package structurer turns extracted record files into structured JSON
// with a generative model.
package structurer

import (
	"context"
	"fmt"
	"path/filepath"

	"fjacquet/tering/internal/aiclient"
	"fjacquet/tering/internal/batch"
	"fjacquet/tering/internal/fileutils"
	"fjacquet/tering/internal/logging"

	"github.com/google/generative-ai-go/genai"
)

// InvalidSuffix marks output that failed validation.
const InvalidSuffix = "_INVALID"

// Outcome describes what happened to one record file.
type Outcome struct {
	Output  string
	Valid   bool
	Skipped bool
}

// Structurer sends record files to the model and stores its JSON answers.
type Structurer struct {
	gen       aiclient.Generator
	resources *Resources
	policy    aiclient.Policy
	logger    logging.Logger
}

// New creates a Structurer.
func New(gen aiclient.Generator, resources *Resources, policy aiclient.Policy, logger logging.Logger) *Structurer {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Structurer{gen: gen, resources: resources, policy: policy, logger: logger}
}

// OutputPath is where the JSON for input is written, next to the input.
func OutputPath(input string, valid bool) string {
	name := fileutils.Stem(input)
	if !valid {
		name += InvalidSuffix
	}
	return filepath.Join(filepath.Dir(input), name+".json")
}

// existingOutput returns the output already present for input, if any.
func existingOutput(input string) (string, bool) {
	for _, valid := range []bool{true, false} {
		if p := OutputPath(input, valid); fileutils.FileExists(p) {
			return p, true
		}
	}
	return "", false
}

// StructureFile converts one record file. Files that already have output
// are skipped. Model output that is not valid is still written, under the
// _INVALID name, so it can be reviewed.
func (s *Structurer) StructureFile(ctx context.Context, path string) (Outcome, error) {
	if out, ok := existingOutput(path); ok {
		s.logger.Debug("Output exists, skipping",
			logging.F(logging.FieldFile, path),
			logging.F(logging.FieldOutputFile, out))
		return Outcome{Output: out, Skipped: true}, nil
	}

	record, err := fileutils.ReadText(path)
	if err != nil {
		return Outcome{}, err
	}
	prompt := s.resources.Prompt(record)

	text, err := aiclient.Do(ctx, s.policy, s.logger.WithField(logging.FieldFile, path),
		func(ctx context.Context) (string, error) {
			return s.gen.Generate(ctx, nil, genai.Text(prompt))
		})
	if err != nil {
		return Outcome{}, fmt.Errorf("structuring %s: %w", path, err)
	}

	output := aiclient.StripFences(text)
	valid := true
	if err := s.resources.Check(output); err != nil {
		valid = false
		s.logger.WithError(err).Warn("Model output failed validation",
			logging.F(logging.FieldFile, path))
	}

	out := OutputPath(path, valid)
	if err := fileutils.WriteTextAtomic(out, output); err != nil {
		return Outcome{}, err
	}
	s.logger.Info("JSON saved",
		logging.F(logging.FieldFile, path),
		logging.F(logging.FieldOutputFile, out))
	return Outcome{Output: out, Valid: valid}, nil
}

// StructureTree converts every record file below root.
func (s *Structurer) StructureTree(ctx context.Context, root string, runner *batch.Runner) ([]batch.Result[Outcome], error) {
	paths, err := fileutils.ListTextFiles(root, true)
	if err != nil {
		return nil, err
	}
	s.logger.Info("Structuring records",
		logging.F(logging.FieldDirectory, root),
		logging.F(logging.FieldCount, len(paths)))
	return batch.Run(ctx, runner, paths, s.StructureFile), nil
}
