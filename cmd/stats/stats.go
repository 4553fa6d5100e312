// Package stats implements the stats command
package stats

import (
	"fjacquet/tering/cmd/common"
	"fjacquet/tering/cmd/root"
	"fjacquet/tering/internal/fileutils"
	"fjacquet/tering/internal/logging"

	"github.com/spf13/cobra"
)

var format string

// Cmd represents the stats command
var Cmd = &cobra.Command{
	Use:   "stats",
	Short: "Count gratulations per region group",
	Long: `Sum, per person.origin.region_group, the students who sent
gratulations and the number of gratulations, with each group's share of
the total. The input is a JSON array of records or a directory of record
files. The table goes to --output, or to standard output.

Example:
  tering stats -i processed_records/ -o region_stats.csv`,
	RunE: statsFunc,
}

func init() {
	Cmd.Flags().StringVar(&format, "format", "csv", "Output format (csv or json)")
}

func statsFunc(cmd *cobra.Command, args []string) error {
	app := root.GetContainer()
	input := common.InputOr(root.SharedFlags.Input, app.GetConfig().Paths.RecordsDir)

	gen := app.GetReportGenerator()
	records, err := gen.LoadRecords(input)
	if err != nil {
		return err
	}
	rows := gen.RegionStats(records)
	data, err := gen.GenerateReport(rows, format)
	if err != nil {
		return err
	}

	if root.SharedFlags.Output == "" {
		_, err = cmd.OutOrStdout().Write(data)
		return err
	}
	if err := fileutils.WriteFileAtomic(root.SharedFlags.Output, data); err != nil {
		return err
	}
	app.GetLogger().Info("Statistics written",
		logging.F(logging.FieldOutputFile, root.SharedFlags.Output),
		logging.F(logging.FieldCount, len(rows)))
	return nil
}
