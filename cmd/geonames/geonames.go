// Package geonames implements the geonames command
package geonames

import (
	"fmt"

	"fjacquet/tering/cmd/common"
	"fjacquet/tering/cmd/root"
	"fjacquet/tering/internal/logging"

	"github.com/spf13/cobra"
)

var (
	apply    bool
	maxFiles int
	username string
)

// Cmd represents the geonames command
var Cmd = &cobra.Command{
	Use:   "geonames",
	Short: "Attach GeoNames identifiers to record origins",
	Long: `Look up person.origin.standardized_region of every structured record
on GeoNames, translating historical names through the region mapping
first, and store the match as person.origin.geonames_id. Records that
already have an identifier are skipped. Nothing is written without
--apply. Answers are cached in geonames.cache_file between runs.

Requires GEONAMES_USERNAME (or --username).

Example:
  tering geonames -i processed_records/ --apply`,
	RunE: geonamesFunc,
}

func init() {
	Cmd.Flags().BoolVar(&apply, "apply", false, "Write the changes (default only reports them)")
	Cmd.Flags().IntVar(&maxFiles, "max-files", 0, "Process at most this many files")
	Cmd.Flags().StringVar(&username, "username", "", "GeoNames user name")
}

func geonamesFunc(cmd *cobra.Command, args []string) error {
	app := root.GetContainer()
	cfg := app.GetConfig()
	logger := app.GetLogger()
	input := common.InputOr(root.SharedFlags.Input, cfg.Paths.RecordsDir)
	if err := common.RequireDir(input, "input directory"); err != nil {
		return err
	}
	if username != "" {
		cfg.Geonames.Username = username
	}

	updater, cache, err := app.NewGeonamesUpdater()
	if err != nil {
		return err
	}
	counts, runErr := updater.UpdateTree(cmd.Context(), input, apply, maxFiles)

	if cache.Dirty() {
		if err := cache.Save(cfg.Geonames.CacheFile); err != nil {
			logger.WithError(err).Error("Failed to save GeoNames cache")
		} else {
			logger.Info("GeoNames cache saved",
				logging.F(logging.FieldFile, cfg.Geonames.CacheFile),
				logging.F(logging.FieldCount, cache.Len()))
		}
	}
	if runErr != nil {
		return runErr
	}

	out := cmd.OutOrStdout()
	if !apply {
		fmt.Fprintln(out, "Dry run: no file was changed (use --apply to write)")
	}
	fmt.Fprintf(out, "Updated:   %d\n", counts.Updated)
	fmt.Fprintf(out, "Skipped:   %d\n", counts.Skipped)
	fmt.Fprintf(out, "Not found: %d\n", counts.NotFound)
	fmt.Fprintf(out, "Errors:    %d\n", counts.Errors)
	fmt.Fprintf(out, "Total:     %d\n", counts.Files)
	return nil
}
