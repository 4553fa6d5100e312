package structurer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"fjacquet/tering/internal/fileutils"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const instructions = `You convert historical matriculation records into structured JSON.

Task: convert the record below into JSON following the format description
and the examples.

Input format:
Records always begin with the line "Immatrikuleerimise kuupäev: ...".
The record number follows as "[NR]...".
The rest describes the person, their studies, their activity at Academia
Gustaviana and their later career. The text uses many abbreviations; their
meanings are listed below. Expect exceptions and irregular structure.

Names:
Sometimes only a first name and a patronymic are given, not a family name.
"Petrus Andreae" means "Peter, son of Andreas". In that case set
"family_name" to null.`

// Resources are the fixed parts of every structuring prompt.
type Resources struct {
	Glossary string
	Schema   string
	Examples string

	validator *jsonschema.Schema
}

// LoadResources reads the abbreviation glossary, the JSON format
// description and the optional few-shot examples. The format description
// must be valid JSON; when it compiles as a JSON Schema, model output is
// validated against it as well.
func LoadResources(glossaryFile, schemaFile, examplesFile string) (*Resources, error) {
	glossary, err := fileutils.ReadText(glossaryFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read glossary: %w", err)
	}

	raw, err := fileutils.ReadText(schemaFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read format description: %w", err)
	}
	var pretty bytes.Buffer
	if err := json.Indent(&pretty, []byte(raw), "", "  "); err != nil {
		return nil, fmt.Errorf("format description %s is not valid JSON: %w", schemaFile, err)
	}

	res := &Resources{Glossary: strings.TrimSpace(glossary), Schema: pretty.String()}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", strings.NewReader(raw)); err == nil {
		if schema, err := compiler.Compile("schema.json"); err == nil {
			res.validator = schema
		}
	}

	if examplesFile != "" {
		examples, err := fileutils.ReadText(examplesFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read examples: %w", err)
		}
		res.Examples = strings.TrimSpace(examples)
	}
	return res, nil
}

// Validates reports whether output is checked against a compiled schema.
func (r *Resources) Validates() bool { return r.validator != nil }

// Prompt assembles the full prompt for one record.
func (r *Resources) Prompt(record string) string {
	var b strings.Builder
	b.WriteString(instructions)
	b.WriteString("\n\nAbbreviations:\n\n")
	b.WriteString(r.Glossary)
	b.WriteString("\n\nJSON format description:\n\n```json\n")
	b.WriteString(r.Schema)
	b.WriteString("\n```\n")
	if r.Examples != "" {
		b.WriteString("\nExamples:\n\n")
		b.WriteString(r.Examples)
		b.WriteString("\n")
	}
	b.WriteString("\nRecord to convert:\n\n```\n")
	b.WriteString(strings.TrimSpace(record))
	b.WriteString("\n```\n\nOutput (JSON only):\n")
	return b.String()
}

// Check returns nil when output is well-formed JSON and, if a schema is
// loaded, conforms to it.
func (r *Resources) Check(output string) error {
	var doc any
	if err := json.Unmarshal([]byte(output), &doc); err != nil {
		return fmt.Errorf("output is not valid JSON: %w", err)
	}
	if r.validator == nil {
		return nil
	}
	if err := r.validator.Validate(doc); err != nil {
		return fmt.Errorf("output does not match schema: %w", err)
	}
	return nil
}
