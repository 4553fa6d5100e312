// Package ocr transcribes scanned register pages into plain text with a
// multimodal generative model, guided by example page/transcript pairs.
package ocr

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"fjacquet/tering/internal/aiclient"
	"fjacquet/tering/internal/batch"
	"fjacquet/tering/internal/fileutils"
	"fjacquet/tering/internal/logging"

	"github.com/google/generative-ai-go/genai"
	"gopkg.in/yaml.v3"
)

// ImageExtensions are the page formats accepted as input.
var ImageExtensions = []string{".jpg", ".jpeg", ".png"}

const instructions = `Follow these rules exactly to transcribe the text:
1. Role: you are a precise transcriber. Your only task is to transcribe the text on the given image.
2. Accuracy: copy the text character by character. Keep all original text, abbreviations and doubtful or apparently wrong passages unchanged.
3. Do not correct presumed typos. Do not modernise the language. Do not add comments or explanations, and never include text from the example pages in the transcription.`

// Example is one page image with its reference transcript.
type Example struct {
	Image string `yaml:"image"`
	Text  string `yaml:"text"`
}

// LoadExamples reads a YAML list of examples. Relative paths are resolved
// against the directory of the list file.
func LoadExamples(path string) ([]Example, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- user-provided example list
	if err != nil {
		return nil, fmt.Errorf("failed to read OCR examples: %w", err)
	}
	var examples []Example
	if err := yaml.Unmarshal(data, &examples); err != nil {
		return nil, fmt.Errorf("failed to parse OCR examples %s: %w", path, err)
	}
	base := filepath.Dir(path)
	for i := range examples {
		if !filepath.IsAbs(examples[i].Image) {
			examples[i].Image = filepath.Join(base, examples[i].Image)
		}
		if !filepath.IsAbs(examples[i].Text) {
			examples[i].Text = filepath.Join(base, examples[i].Text)
		}
	}
	return examples, nil
}

// imagePart loads path as a model image part.
func imagePart(path string) (genai.Part, error) {
	format := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	switch format {
	case "jpg", "jpeg":
		format = "jpeg"
	case "png":
	default:
		return nil, fmt.Errorf("unsupported image format %q: %s", format, path)
	}
	data, err := os.ReadFile(path) // #nosec G304 -- user-provided image
	if err != nil {
		return nil, fmt.Errorf("failed to read image %s: %w", path, err)
	}
	return genai.ImageData(format, data), nil
}

// Transcriber turns page images into text.
type Transcriber struct {
	gen     aiclient.Generator
	history []*genai.Content
	policy  aiclient.Policy
	logger  logging.Logger
}

// New builds the few-shot conversation from examples. An example whose
// files cannot be read is skipped with a warning.
func New(gen aiclient.Generator, examples []Example, policy aiclient.Policy, logger logging.Logger) *Transcriber {
	if logger == nil {
		logger = logging.Nop()
	}
	t := &Transcriber{gen: gen, policy: policy, logger: logger}

	for _, ex := range examples {
		img, err := imagePart(ex.Image)
		if err != nil {
			logger.WithError(err).Warn("Skipping OCR example", logging.F(logging.FieldFile, ex.Image))
			continue
		}
		text, err := fileutils.ReadText(ex.Text)
		if err != nil {
			logger.WithError(err).Warn("Skipping OCR example", logging.F(logging.FieldFile, ex.Text))
			continue
		}
		user := &genai.Content{Role: "user", Parts: []genai.Part{img}}
		if len(t.history) == 0 {
			user.Parts = []genai.Part{genai.Text(instructions), img}
		}
		t.history = append(t.history, user, &genai.Content{Role: "model", Parts: []genai.Part{genai.Text(text)}})
	}
	// concurrent transcriptions append their page to this history
	t.history = slices.Clip(t.history)
	return t
}

// Examples is the number of usable example pairs.
func (t *Transcriber) Examples() int { return len(t.history) / 2 }

// Transcribe returns the text of one page. Empty answers are retried; a
// blocked prompt is not.
func (t *Transcriber) Transcribe(ctx context.Context, imagePath string) (string, error) {
	img, err := imagePart(imagePath)
	if err != nil {
		return "", err
	}
	parts := []genai.Part{img}
	if len(t.history) == 0 {
		parts = []genai.Part{genai.Text(instructions), img}
	}

	return aiclient.Do(ctx, t.policy, t.logger.WithField(logging.FieldFile, imagePath),
		func(ctx context.Context) (string, error) {
			text, err := t.gen.Generate(ctx, t.history, parts...)
			if err != nil {
				return "", err
			}
			text = aiclient.StripFences(text)
			if text == "" {
				return "", aiclient.ErrEmptyResponse
			}
			return text, nil
		})
}

// TranscribeFile writes the text of imagePath to outDir/<stem>.txt and
// returns the written path.
func (t *Transcriber) TranscribeFile(ctx context.Context, imagePath, outDir string) (string, error) {
	text, err := t.Transcribe(ctx, imagePath)
	if err != nil {
		return "", fmt.Errorf("transcribing %s: %w", imagePath, err)
	}
	out := filepath.Join(outDir, fileutils.Stem(imagePath)+".txt")
	if err := fileutils.WriteTextAtomic(out, text); err != nil {
		return "", err
	}
	t.logger.Info("Transcript saved",
		logging.F(logging.FieldFile, imagePath),
		logging.F(logging.FieldOutputFile, out))
	return out, nil
}

// TranscribeDir transcribes every page image directly in inDir. It returns
// the per-image results and the images that finally failed.
func (t *Transcriber) TranscribeDir(ctx context.Context, inDir, outDir string, runner *batch.Runner) ([]batch.Result[string], []string, error) {
	images, err := fileutils.ListFiles(inDir, false, ImageExtensions...)
	if err != nil {
		return nil, nil, err
	}
	if err := fileutils.EnsureDirectoryExists(outDir); err != nil {
		return nil, nil, err
	}
	t.logger.Info("Transcribing pages",
		logging.F(logging.FieldDirectory, inDir),
		logging.F(logging.FieldCount, len(images)),
		logging.F("examples", t.Examples()))

	results := batch.Run(ctx, runner, images, func(ctx context.Context, path string) (string, error) {
		return t.TranscribeFile(ctx, path, outDir)
	})

	var failed []string
	for _, r := range batch.Failed(results) {
		failed = append(failed, r.Path)
	}
	return results, failed, nil
}
