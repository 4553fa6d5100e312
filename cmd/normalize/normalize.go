// Package normalize implements the normalize command
package normalize

import (
	"fjacquet/tering/cmd/common"
	"fjacquet/tering/cmd/root"
	"fjacquet/tering/internal/fileutils"
	"fjacquet/tering/internal/logging"
	"fjacquet/tering/internal/pipeline"

	"github.com/spf13/cobra"
)

// Cmd represents the normalize command
var Cmd = &cobra.Command{
	Use:   "normalize",
	Short: "Repair line-wrap hyphenation and Unicode composition",
	Long: `Merge words split across lines ("Jo-\nhannes" becomes "Johannes") and
compose Unicode characters in a text file or in every .txt file of a
directory tree. Files are rewritten in place unless --output is given.

Example:
  tering normalize -i input/
  tering normalize -i input/1691.txt -o clean/1691.txt`,
	RunE: normalizeFunc,
}

func normalizeFunc(cmd *cobra.Command, args []string) error {
	app := root.GetContainer()
	logger := app.GetLogger()
	input := common.InputOr(root.SharedFlags.Input, app.GetConfig().Paths.RawDir)
	output := root.SharedFlags.Output

	if fileutils.FileExists(input) {
		dst := common.InputOr(output, input)
		n, err := pipeline.NormalizeFile(input, dst)
		if err != nil {
			return err
		}
		logger.Info("File normalized",
			logging.F(logging.FieldFile, input),
			logging.F(logging.FieldOutputFile, dst),
			logging.F(logging.FieldCount, n))
		return nil
	}

	if err := common.RequireDir(input, "input directory"); err != nil {
		return err
	}
	results, err := app.GetPipeline().NormalizeTree(cmd.Context(), input, output)
	if err != nil {
		return err
	}
	return common.ReportFailures(logger, "normalize", results)
}
