// Package run implements the run command
package run

import (
	"fmt"
	"time"

	"fjacquet/tering/cmd/common"
	"fjacquet/tering/cmd/root"
	"fjacquet/tering/internal/logging"
	"fjacquet/tering/internal/pipeline"

	"github.com/spf13/cobra"
)

var (
	monthDir   string
	recordsDir string
)

// Cmd represents the run command
var Cmd = &cobra.Command{
	Use:   "run",
	Short: "Partition and extract a whole register in one go",
	Long: `Run the segmentation over a directory of "<year>.txt" files: repair
hyphenation in memory, partition by month, then extract every record with
its manifest. The raw input is not modified. A failing file is reported
and does not stop the others.

Example:
  tering run -i input/ --months output/ --records processed_records/ -w 8`,
	RunE: runFunc,
}

func init() {
	Cmd.Flags().StringVar(&monthDir, "months", "", "Directory of month files (default from config)")
	Cmd.Flags().StringVar(&recordsDir, "records", "", "Directory of record files (default from config)")
}

func runFunc(cmd *cobra.Command, args []string) error {
	app := root.GetContainer()
	cfg := app.GetConfig()
	dirs := pipeline.Dirs{
		Raw:     common.InputOr(root.SharedFlags.Input, cfg.Paths.RawDir),
		Months:  common.InputOr(monthDir, cfg.Paths.MonthDir),
		Records: common.InputOr(recordsDir, common.InputOr(root.SharedFlags.Output, cfg.Paths.RecordsDir)),
	}
	if err := common.RequireDir(dirs.Raw, "input directory"); err != nil {
		return err
	}

	sum, err := app.GetPipeline().Run(cmd.Context(), dirs)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Run %s finished in %s\n", sum.RunID, sum.Duration.Round(time.Millisecond))
	fmt.Fprintf(out, "  year files:        %d\n", sum.YearFiles)
	fmt.Fprintf(out, "  month files:       %d\n", sum.Months)
	fmt.Fprintf(out, "  unplaced lines:    %d\n", sum.Unknown)
	fmt.Fprintf(out, "  cross-year drops:  %d\n", sum.CrossYear)
	fmt.Fprintf(out, "  records:           %d\n", sum.Records)
	fmt.Fprintf(out, "  without header:    %d\n", sum.NoHeader)
	fmt.Fprintf(out, "  manifests:         %d\n", len(sum.Manifests))
	fmt.Fprintf(out, "  failures:          %d\n", len(sum.Failures))

	if !sum.OK() {
		for _, f := range sum.Failures {
			app.GetLogger().WithError(f.Err).Error("Failed", logging.F(logging.FieldFile, f.Path))
		}
		return fmt.Errorf("%d files failed", len(sum.Failures))
	}
	return nil
}
