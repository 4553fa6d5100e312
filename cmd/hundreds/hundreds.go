// Package hundreds implements the hundreds command
package hundreds

import (
	"fmt"

	"fjacquet/tering/cmd/common"
	"fjacquet/tering/cmd/root"
	"fjacquet/tering/internal/fileutils"
	"fjacquet/tering/internal/logging"

	"github.com/spf13/cobra"
)

var prefix string

// Cmd represents the hundreds command
var Cmd = &cobra.Command{
	Use:   "hundreds",
	Short: "Cut a numbered text into blocks of one hundred records",
	Long: `Cut a marked text into blocks starting at records 1, 101, 201, ...
written as <prefix>_<start>_<end>.txt.

Example:
  tering hundreds -i tering.txt_marked.txt -o blocks/ --prefix tering`,
	RunE: hundredsFunc,
}

func init() {
	Cmd.Flags().StringVar(&prefix, "prefix", "tering", "File name prefix of the blocks")
}

func hundredsFunc(cmd *cobra.Command, args []string) error {
	app := root.GetContainer()
	input := root.SharedFlags.Input
	if err := common.RequireFile(input, "input file"); err != nil {
		return err
	}
	output := common.InputOr(root.SharedFlags.Output, ".")

	text, err := fileutils.ReadText(input)
	if err != nil {
		return err
	}
	n := app.GetNumberer()
	blocks := n.SplitByHundreds(text)
	if len(blocks) == 0 {
		return fmt.Errorf("record 1 not found in %s", input)
	}
	paths, err := n.WriteBlocks(blocks, output, prefix)
	if err != nil {
		return err
	}
	app.GetLogger().Info("Blocks written",
		logging.F(logging.FieldDirectory, output),
		logging.F(logging.FieldCount, len(paths)))
	return nil
}
