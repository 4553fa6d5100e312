// Package split implements the split command
package split

import (
	"fjacquet/tering/cmd/common"
	"fjacquet/tering/cmd/root"
	"fjacquet/tering/internal/logging"

	"github.com/spf13/cobra"
)

// Cmd represents the split command
var Cmd = &cobra.Command{
	Use:   "split",
	Short: "Split a year's text into dated entries",
	Long: `Split the text of one year into entries delimited by date headers
("20. April 1632") and numbered lines. Every entry is written as
chunk_NNN.txt, prefixed with its resolved date.

Example:
  tering split -i input/1632.txt -o chunks/`,
	RunE: splitFunc,
}

func splitFunc(cmd *cobra.Command, args []string) error {
	app := root.GetContainer()
	input := root.SharedFlags.Input
	if err := common.RequireFile(input, "input file"); err != nil {
		return err
	}
	output := common.InputOr(root.SharedFlags.Output, app.GetConfig().Paths.ChunksDir)

	s := app.GetSplitter()
	chunks, err := s.SplitFile(input)
	if err != nil {
		return err
	}
	paths, err := s.WriteChunks(chunks, output)
	if err != nil {
		return err
	}
	app.GetLogger().Info("Entries written",
		logging.F(logging.FieldFile, input),
		logging.F(logging.FieldDirectory, output),
		logging.F(logging.FieldCount, len(paths)))
	return nil
}
