// Package number implements the number command
package number

import (
	"fjacquet/tering/cmd/common"
	"fjacquet/tering/cmd/root"
	"fjacquet/tering/internal/logging"
	"fjacquet/tering/internal/numbering"

	"github.com/spf13/cobra"
)

var ceiling int

// Cmd represents the number command
var Cmd = &cobra.Command{
	Use:   "number",
	Short: "Mark record numbers and report missing ones",
	Long: `Search the text for record numbers 1, 2, 3, ... in order, each at the
start of a line and followed by a capitalised word, and insert the record
marker before every number found. Writes <input>_marked.txt and
<input>_report.txt, the latter listing the numbers not found.

Example:
  tering number -i tering.txt --ceiling 1705`,
	RunE: numberFunc,
}

func init() {
	Cmd.Flags().IntVar(&ceiling, "ceiling", 0, "Highest record number expected (default from config)")
}

func numberFunc(cmd *cobra.Command, args []string) error {
	app := root.GetContainer()
	input := root.SharedFlags.Input
	if err := common.RequireFile(input, "input file"); err != nil {
		return err
	}

	n := app.GetNumberer()
	if cmd.Flags().Changed("ceiling") {
		cfg := app.GetConfig()
		n = numbering.New(ceiling, cfg.Numbering.Marker, app.GetLogger())
	}

	res, out, err := n.NumberFile(input)
	if err != nil {
		return err
	}
	app.GetLogger().Info("Numbering finished",
		logging.F(logging.FieldFile, input),
		logging.F(logging.FieldOutputFile, out.Marked),
		logging.F(logging.FieldCount, len(res.Hits)),
		logging.F(logging.FieldMissing, len(res.Missing)))
	return nil
}
