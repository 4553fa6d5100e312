package structurer

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"fjacquet/tering/internal/aiclient"
	"fjacquet/tering/internal/batch"
	"fjacquet/tering/internal/logging"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testSchema = `{
  "type": "object",
  "required": ["person"],
  "properties": {
    "person": {
      "type": "object",
      "properties": {"family_name": {"type": ["string", "null"]}}
    }
  }
}`

var fastPolicy = aiclient.Policy{Attempts: 2, InitialDelay: time.Millisecond, MaxDelay: time.Millisecond, Timeout: time.Second}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func loadTestResources(t *testing.T) *Resources {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "glossary.txt"), "Dep. = deposuit\n")
	writeFile(t, filepath.Join(dir, "schema.json"), testSchema)
	writeFile(t, filepath.Join(dir, "examples.json"), `[{"person": {"family_name": null}}]`)

	res, err := LoadResources(
		filepath.Join(dir, "glossary.txt"),
		filepath.Join(dir, "schema.json"),
		filepath.Join(dir, "examples.json"))
	require.NoError(t, err)
	return res
}

func TestLoadResources(t *testing.T) {
	res := loadTestResources(t)
	assert.Equal(t, "Dep. = deposuit", res.Glossary)
	assert.True(t, res.Validates())
	assert.Contains(t, res.Examples, "family_name")

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "glossary.txt"), "x")
	writeFile(t, filepath.Join(dir, "schema.json"), "{not json")
	_, err := LoadResources(filepath.Join(dir, "glossary.txt"), filepath.Join(dir, "schema.json"), "")
	assert.Error(t, err)

	_, err = LoadResources(filepath.Join(dir, "missing.txt"), filepath.Join(dir, "schema.json"), "")
	assert.Error(t, err)
}

func TestPrompt(t *testing.T) {
	res := loadTestResources(t)
	prompt := res.Prompt("Immatrikuleerimise kuupäev: 20. April 1632\n\n[NR]1. Petrus Andreae\n")

	assert.Contains(t, prompt, "Dep. = deposuit")
	assert.Contains(t, prompt, `"required": [`)
	assert.Contains(t, prompt, "[NR]1. Petrus Andreae\n```")
	assert.Less(t, strings.Index(prompt, "Abbreviations"), strings.Index(prompt, "Record to convert"))
}

func TestCheck(t *testing.T) {
	res := loadTestResources(t)
	tests := []struct {
		name    string
		output  string
		wantErr bool
	}{
		{"valid", `{"person": {"family_name": null}}`, false},
		{"not json", `{"person": `, true},
		{"schema violation", `{"other": 1}`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := res.Check(tt.output)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestOutputPath(t *testing.T) {
	assert.Equal(t, filepath.Join("r", "NR1_1632_04.json"), OutputPath(filepath.Join("r", "NR1_1632_04.txt"), true))
	assert.Equal(t, filepath.Join("r", "NR1_1632_04_INVALID.json"), OutputPath(filepath.Join("r", "NR1_1632_04.txt"), false))
}

func TestStructureFile(t *testing.T) {
	tests := []struct {
		name      string
		response  string
		wantValid bool
		wantFile  string
		wantBody  string
	}{
		{
			name:      "fenced valid output",
			response:  "```json\n{\"person\": {\"family_name\": \"Brenner\"}}\n```",
			wantValid: true,
			wantFile:  "NR1_1632_04.json",
			wantBody:  `{"person": {"family_name": "Brenner"}}`,
		},
		{
			name:      "invalid output kept for review",
			response:  "Sorry, I cannot do that",
			wantValid: false,
			wantFile:  "NR1_1632_04_INVALID.json",
			wantBody:  "Sorry, I cannot do that",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			input := filepath.Join(dir, "NR1_1632_04.txt")
			writeFile(t, input, "Immatrikuleerimise kuupäev: 20. April 1632\n\n[NR]1. Petrus Brenner")

			gen := &aiclient.MockGenerator{}
			gen.On("Generate", mock.Anything, mock.Anything, mock.Anything).Return(tt.response, nil)
			logger := logging.NewMockLogger()

			s := New(gen, loadTestResources(t), fastPolicy, logger)
			out, err := s.StructureFile(context.Background(), input)
			require.NoError(t, err)

			assert.Equal(t, tt.wantValid, out.Valid)
			assert.Equal(t, filepath.Join(dir, tt.wantFile), out.Output)
			data, err := os.ReadFile(out.Output)
			require.NoError(t, err)
			assert.Equal(t, tt.wantBody, string(data))
			assert.Equal(t, !tt.wantValid, logger.HasEntry("WARN", "Model output failed validation"))
		})
	}
}

func TestStructureFile_SkipsExistingOutput(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "NR2_1632_04.txt")
	writeFile(t, input, "record")
	writeFile(t, filepath.Join(dir, "NR2_1632_04_INVALID.json"), "old")

	gen := &aiclient.MockGenerator{}
	s := New(gen, loadTestResources(t), fastPolicy, nil)

	out, err := s.StructureFile(context.Background(), input)
	require.NoError(t, err)
	assert.True(t, out.Skipped)
	gen.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything, mock.Anything)
}

func TestStructureFile_ModelFailure(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "NR3_1632_04.txt")
	writeFile(t, input, "record")

	gen := &aiclient.MockGenerator{}
	gen.On("Generate", mock.Anything, mock.Anything, mock.Anything).Return("", errors.New("quota exceeded"))
	s := New(gen, loadTestResources(t), fastPolicy, nil)

	_, err := s.StructureFile(context.Background(), input)
	require.Error(t, err)
	gen.AssertNumberOfCalls(t, "Generate", 2)
	assert.NoFileExists(t, OutputPath(input, true))
	assert.NoFileExists(t, OutputPath(input, false))
}

func TestStructureTree(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "1632", "NR1_1632_04.txt"), "one")
	writeFile(t, filepath.Join(root, "1632", "NR2_1632_04.txt"), "two")
	writeFile(t, filepath.Join(root, "1632", "manifest.csv"), "number")

	gen := &aiclient.MockGenerator{}
	gen.On("Generate", mock.Anything, mock.Anything, mock.Anything).Return(`{"person": {}}`, nil)
	s := New(gen, loadTestResources(t), fastPolicy, nil)

	results, err := s.StructureTree(context.Background(), root, batch.NewRunner(2, nil))
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Empty(t, batch.Failed(results))
	assert.FileExists(t, filepath.Join(root, "1632", "NR1_1632_04.json"))
	assert.FileExists(t, filepath.Join(root, "1632", "NR2_1632_04.json"))
}
