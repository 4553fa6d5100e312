package monthsplit

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"fjacquet/tering/internal/logging"
	"fjacquet/tering/internal/parsererror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPartition_MonthRouting(t *testing.T) {
	part := New(nil).Partition("3. Jan 1691\nfoo\n14. Feb 1691\nbar", 1691)

	assert.Equal(t, []string{"1691-01", "1691-02"}, part.MonthKeys())
	assert.Equal(t, "3. Jan 1691\nfoo\n\n", part.Render("1691-01"))
	assert.Equal(t, "14. Feb 1691\nbar\n\n", part.Render("1691-02"))
	assert.Empty(t, part.Unknown)
}

func TestPartition_CrossYearGuard(t *testing.T) {
	logger := logging.NewMockLogger()
	part := New(logger).Partition("3. Jan 1691\nfoo\n10. Mai 1702\nbar", 1691)

	assert.Equal(t, []string{"1691-01"}, part.MonthKeys())
	assert.Equal(t, [][]string{{"3. Jan 1691", "foo", "bar"}}, part.Months["1691-01"])
	require.Len(t, part.CrossYear, 1)
	assert.Equal(t, Diagnostic{LineNumber: 3, Text: "10. Mai 1702"}, part.CrossYear[0])
	assert.True(t, logger.HasEntry("WARN", "Header outside file year dropped"))
}

func TestPartition_CrossYearBeforeFirstHeader(t *testing.T) {
	part := New(nil).Partition("10. Mai 1702\nstray\n3. Jan\nfoo", 1691)

	assert.Equal(t, []string{"1691-01"}, part.MonthKeys())
	assert.Equal(t, []string{"stray"}, part.Unknown)
	assert.Equal(t, "3. Jan\nfoo\n\n", part.Render("1691-01"))
}

func TestPartition_YearlessHeadersUseFileYear(t *testing.T) {
	part := New(nil).Partition("5. Mai\nA\nJuni 1691\nB\n7. Juli\nC", 1691)
	assert.Equal(t, []string{"1691-05", "1691-06", "1691-07"}, part.MonthKeys())
}

func TestPartition_UnresolvedMonthIsBodyText(t *testing.T) {
	part := New(nil).Partition("3. Jan 1691\n12. Petrus\nfoo", 1691)

	assert.Equal(t, [][]string{{"3. Jan 1691", "12. Petrus", "foo"}}, part.Months["1691-01"])
	require.Len(t, part.Unresolved, 1)
	assert.Equal(t, "12. Petrus", part.Unresolved[0].Text)
}

func TestPartition_LinesBeforeFirstHeaderGoToUnknown(t *testing.T) {
	part := New(nil).Partition("Album Academicum\n\n1691\n3. Jan\nfoo", 1691)

	// "1691" alone is neither a day-month nor a month-year header
	assert.Equal(t, []string{"Album Academicum", "1691"}, part.Unknown)
	assert.Equal(t, "Album Academicum\n1691\n\n", part.RenderUnknown())
	assert.Equal(t, []string{"1691-01"}, part.MonthKeys())
}

func TestPartition_RepeatedMonthAppendsRecords(t *testing.T) {
	text := "3. Jan\nA\n4. Jan\nB\n1. Feb\nC\nJan 1691\nD"
	part := New(nil).Partition(text, 1691)

	assert.Equal(t, "3. Jan\nA\n\n4. Jan\nB\n\nJan 1691\nD\n\n", part.Render("1691-01"))
	assert.Equal(t, 4, part.RecordCount())
}

func TestPartition_DepositionPrefixAndBlankLines(t *testing.T) {
	part := New(nil).Partition("  Dep. 2. März 1691  \n\n\n   body  \n", 1691)
	assert.Equal(t, [][]string{{"Dep. 2. März 1691", "body"}}, part.Months["1691-03"])
}

func TestPartition_RoundTrip(t *testing.T) {
	text := `preamble
3. Jan 1691
1. Petrus Olai
Holmensis

10. Mai 1702
2. Johannes Erici
14. Feb
3. Ericus
Gothus`
	part := New(nil).Partition(text, 1691)

	var got []string
	for _, key := range part.MonthKeys() {
		for _, line := range strings.Split(part.Render(key), "\n") {
			if line != "" {
				got = append(got, line)
			}
		}
	}

	var want []string
	for _, line := range strings.Split(text, "\n") {
		if line != "" && line != "preamble" && line != "10. Mai 1702" {
			want = append(want, line)
		}
	}
	sort.Strings(got)
	sort.Strings(want)
	assert.Equal(t, want, got)
}

func TestPartitionFile(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "1691.txt")
	require.NoError(t, os.WriteFile(input, []byte("intro\n3. Jan 1691\nfoo\n14. Feb 1691\nbar\n"), 0600))
	out := filepath.Join(dir, "output")

	part, written, err := New(nil).PartitionFile(input, out)
	require.NoError(t, err)
	assert.Equal(t, 1691, part.Year)
	assert.Equal(t, []string{
		filepath.Join(out, "1691", "1691-01.txt"),
		filepath.Join(out, "1691", "1691-02.txt"),
		filepath.Join(out, "1691", "unknown_month.txt"),
	}, written)

	data, err := os.ReadFile(written[1])
	require.NoError(t, err)
	assert.Equal(t, "14. Feb 1691\nbar\n\n", string(data))

	data, err = os.ReadFile(written[2])
	require.NoError(t, err)
	assert.Equal(t, "intro\n\n", string(data))
}

func TestPartitionFile_NoUnknownFileWhenEmpty(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "1700.txt")
	require.NoError(t, os.WriteFile(input, []byte("5. Mai\nA\n"), 0600))

	_, written, err := New(nil).PartitionFile(input, dir)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "1700", "1700-05.txt")}, written)
	assert.NoFileExists(t, filepath.Join(dir, "1700", "unknown_month.txt"))
}

func TestPartitionFile_BadName(t *testing.T) {
	input := filepath.Join(t.TempDir(), "album.txt")
	require.NoError(t, os.WriteFile(input, []byte("5. Mai 1700\n"), 0600))

	_, _, err := New(nil).PartitionFile(input, t.TempDir())
	var fe *parsererror.FilenameError
	assert.ErrorAs(t, err, &fe)
}
