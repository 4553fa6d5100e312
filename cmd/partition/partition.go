// Package partition implements the partition command
package partition

import (
	"fjacquet/tering/cmd/common"
	"fjacquet/tering/cmd/root"
	"fjacquet/tering/internal/fileutils"
	"fjacquet/tering/internal/logging"

	"github.com/spf13/cobra"
)

// Cmd represents the partition command
var Cmd = &cobra.Command{
	Use:   "partition",
	Short: "Partition year files by month",
	Long: `Route every date header of a "<year>.txt" file, with the lines that
follow it, into <output>/<year>/<year>-<MM>.txt. Lines before the first
header go to unknown_month.txt; headers naming another year are dropped
and reported. The input is a year file or a directory of year files.

Example:
  tering partition -i input/ -o output/`,
	RunE: partitionFunc,
}

func partitionFunc(cmd *cobra.Command, args []string) error {
	app := root.GetContainer()
	cfg := app.GetConfig()
	logger := app.GetLogger()
	input := common.InputOr(root.SharedFlags.Input, cfg.Paths.RawDir)
	output := common.InputOr(root.SharedFlags.Output, cfg.Paths.MonthDir)

	if fileutils.FileExists(input) {
		part, err := app.GetPipeline().PartitionYearFile(input, output)
		if err != nil {
			return err
		}
		logger.Info("Year partitioned",
			logging.F(logging.FieldFile, input),
			logging.F(logging.FieldYear, part.Year),
			logging.F("months", len(part.Months)),
			logging.F("cross_year", len(part.CrossYear)))
		return nil
	}

	if err := common.RequireDir(input, "input directory"); err != nil {
		return err
	}
	results, err := app.GetPipeline().PartitionTree(cmd.Context(), input, output)
	if err != nil {
		return err
	}
	return common.ReportFailures(logger, "partition", results)
}
