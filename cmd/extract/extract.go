// Package extract implements the extract command
package extract

import (
	"fjacquet/tering/cmd/common"
	"fjacquet/tering/cmd/root"
	"fjacquet/tering/internal/extractor"
	"fjacquet/tering/internal/fileutils"
	"fjacquet/tering/internal/logging"

	"github.com/spf13/cobra"
)

// Cmd represents the extract command
var Cmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract one file per record from month files",
	Long: `Cut "<year>-<MM>.txt" month files at the record markers and write each
record to <output>/<year>/NR<n>_<year>_<MM>.txt, headed by the date header
it falls under. Records without a header are flagged _NOHEADER. A
manifest.csv is written per year.

Example:
  tering extract -i output/ -o processed_records/`,
	RunE: extractFunc,
}

func extractFunc(cmd *cobra.Command, args []string) error {
	app := root.GetContainer()
	cfg := app.GetConfig()
	logger := app.GetLogger()
	input := common.InputOr(root.SharedFlags.Input, cfg.Paths.MonthDir)
	output := common.InputOr(root.SharedFlags.Output, cfg.Paths.RecordsDir)

	if fileutils.FileExists(input) {
		rows, err := app.GetExtractor().ExtractFile(input, output)
		if err != nil {
			return err
		}
		manifests, err := extractor.WriteManifests(rows, output)
		if err != nil {
			return err
		}
		logger.Info("Records extracted",
			logging.F(logging.FieldFile, input),
			logging.F(logging.FieldCount, len(rows)),
			logging.F("manifests", len(manifests)))
		return nil
	}

	if err := common.RequireDir(input, "input directory"); err != nil {
		return err
	}
	results, manifests, err := app.GetPipeline().ExtractTree(cmd.Context(), input, output)
	if err != nil {
		return err
	}
	logger.Info("Manifests written", logging.F(logging.FieldCount, len(manifests)))
	return common.ReportFailures(logger, "extract", results)
}
