// Package common contains shared functionality for command handlers
package common

import (
	"fmt"

	"fjacquet/tering/internal/batch"
	"fjacquet/tering/internal/fileutils"
	"fjacquet/tering/internal/logging"
)

// InputOr returns flag when set, fallback otherwise.
func InputOr(flag, fallback string) string {
	if flag != "" {
		return flag
	}
	return fallback
}

// RequireFile checks that path names an existing regular file.
func RequireFile(path, what string) error {
	if path == "" {
		return fmt.Errorf("%s must be specified with --input", what)
	}
	if !fileutils.FileExists(path) {
		return fmt.Errorf("%s not found: %s", what, path)
	}
	return nil
}

// RequireDir checks that path names an existing directory.
func RequireDir(path, what string) error {
	if path == "" {
		return fmt.Errorf("%s must be specified", what)
	}
	if !fileutils.DirectoryExists(path) {
		return fmt.Errorf("%s not found: %s", what, path)
	}
	return nil
}

// ReportFailures logs every failed file of a batch and returns an error
// naming how many failed, nil when all succeeded.
func ReportFailures[T any](log logging.Logger, op string, results []batch.Result[T]) error {
	failed := batch.Failed(results)
	for _, r := range failed {
		log.WithError(r.Err).Error("Failed", logging.F(logging.FieldOperation, op), logging.F(logging.FieldFile, r.Path))
	}
	log.Info("Batch finished",
		logging.F(logging.FieldOperation, op),
		logging.F(logging.FieldCount, len(results)),
		logging.F("failed", len(failed)))
	if len(failed) > 0 {
		return fmt.Errorf("%s: %d of %d files failed", op, len(failed), len(results))
	}
	return nil
}
