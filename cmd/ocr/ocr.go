// Package ocr implements the ocr command
package ocr

import (
	"fmt"

	"fjacquet/tering/cmd/common"
	"fjacquet/tering/cmd/root"
	"fjacquet/tering/internal/logging"

	"github.com/spf13/cobra"
)

// Cmd represents the ocr command
var Cmd = &cobra.Command{
	Use:   "ocr",
	Short: "Transcribe page images with Gemini",
	Long: `Transcribe every .jpg, .jpeg and .png page in the input directory to
<output>/<name>.txt with a Gemini vision model. Example pages listed in
ai.ocr_examples_file guide the transcription. Pages that still fail after
the configured retries are listed at the end.

Requires GEMINI_API_KEY.

Example:
  tering ocr -i scans/ -o input/`,
	RunE: ocrFunc,
}

func ocrFunc(cmd *cobra.Command, args []string) error {
	app := root.GetContainer()
	logger := app.GetLogger()
	input := root.SharedFlags.Input
	if err := common.RequireDir(input, "input directory"); err != nil {
		return err
	}
	output := common.InputOr(root.SharedFlags.Output, input)

	transcriber, err := app.NewTranscriber(cmd.Context())
	if err != nil {
		return err
	}
	results, failed, err := transcriber.TranscribeDir(cmd.Context(), input, output, app.GetRunner())
	if err != nil {
		return err
	}

	logger.Info("Transcription finished",
		logging.F(logging.FieldCount, len(results)),
		logging.F("failed", len(failed)))
	if len(failed) > 0 {
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "Failed pages:")
		for _, path := range failed {
			fmt.Fprintf(out, "  %s\n", path)
		}
		return fmt.Errorf("%d of %d pages failed", len(failed), len(results))
	}
	return nil
}
