// Package structure implements the structure command
package structure

import (
	"fjacquet/tering/cmd/common"
	"fjacquet/tering/cmd/root"
	"fjacquet/tering/internal/fileutils"
	"fjacquet/tering/internal/logging"

	"github.com/spf13/cobra"
)

// Cmd represents the structure command
var Cmd = &cobra.Command{
	Use:   "structure",
	Short: "Convert record files to structured JSON with Gemini",
	Long: `Send every record file to a Gemini model together with the
abbreviation glossary, the JSON format description and the few-shot
examples, and write the answer next to the record as <name>.json, or
<name>_INVALID.json when it is not valid. Records that already have
output are skipped.

Requires GEMINI_API_KEY, ai.glossary_file and ai.schema_file.

Example:
  tering structure -i processed_records/1691/`,
	RunE: structureFunc,
}

func structureFunc(cmd *cobra.Command, args []string) error {
	app := root.GetContainer()
	logger := app.GetLogger()
	input := common.InputOr(root.SharedFlags.Input, app.GetConfig().Paths.RecordsDir)

	s, err := app.NewStructurer(cmd.Context())
	if err != nil {
		return err
	}

	if fileutils.FileExists(input) {
		out, err := s.StructureFile(cmd.Context(), input)
		if err != nil {
			return err
		}
		logger.Info("Record structured",
			logging.F(logging.FieldOutputFile, out.Output),
			logging.F("valid", out.Valid),
			logging.F("skipped", out.Skipped))
		return nil
	}

	if err := common.RequireDir(input, "input directory"); err != nil {
		return err
	}
	results, err := s.StructureTree(cmd.Context(), input, app.GetRunner())
	if err != nil {
		return err
	}
	invalid, skipped := 0, 0
	for _, out := range results {
		switch {
		case out.Err != nil:
		case out.Value.Skipped:
			skipped++
		case !out.Value.Valid:
			invalid++
		}
	}
	logger.Info("Structuring summary",
		logging.F("invalid", invalid),
		logging.F("skipped", skipped))
	return common.ReportFailures(logger, "structure", results)
}
