package common_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"fjacquet/tering/cmd/common"
	"fjacquet/tering/internal/batch"
	"fjacquet/tering/internal/logging"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInputOr(t *testing.T) {
	assert.Equal(t, "a", common.InputOr("a", "b"))
	assert.Equal(t, "b", common.InputOr("", "b"))
}

func TestRequireFileAndDir(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "1691.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o600))

	assert.NoError(t, common.RequireFile(file, "input file"))
	assert.Error(t, common.RequireFile("", "input file"))
	assert.Error(t, common.RequireFile(dir, "input file"))
	assert.Error(t, common.RequireFile(filepath.Join(dir, "none.txt"), "input file"))

	assert.NoError(t, common.RequireDir(dir, "input directory"))
	assert.Error(t, common.RequireDir(file, "input directory"))
	assert.Error(t, common.RequireDir("", "input directory"))
}

func TestReportFailures(t *testing.T) {
	logger := logging.NewMockLogger()
	ok := []batch.Result[int]{{Path: "a"}, {Path: "b"}}
	assert.NoError(t, common.ReportFailures(logger, "normalize", ok))
	assert.True(t, logger.HasEntry("INFO", "Batch finished"))

	logger.Clear()
	mixed := []batch.Result[int]{{Path: "a"}, {Path: "b", Err: errors.New("boom")}}
	err := common.ReportFailures(logger, "normalize", mixed)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 2")
	assert.Len(t, logger.GetEntriesByLevel("ERROR"), 1)
}
