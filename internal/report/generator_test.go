package report

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"fjacquet/tering/internal/logging"
	"fjacquet/tering/internal/models"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func record(group string, gratulations int) models.StructuredRecord {
	var r models.StructuredRecord
	r.Person.Origin.RegionGroup = group
	for i := 0; i < gratulations; i++ {
		r.AcademiaGustavianaActivity.Gratulations = append(r.AcademiaGustavianaActivity.Gratulations, map[string]any{"n": i})
	}
	return r
}

func TestRegionStats(t *testing.T) {
	generator := NewReportGenerator(logging.NewMockLogger())
	rows := generator.RegionStats([]models.StructuredRecord{
		record("Sweden", 2),
		record("Livonia", 1),
		record("Sweden", 3),
		record("Finland", 1),
		record("", 5),
		record("Germany", 0),
	})

	want := []models.RegionStats{
		{RegionGroup: "Sweden", Students: 2, Gratulations: 5, SharePercent: "71.43"},
		{RegionGroup: "Finland", Students: 1, Gratulations: 1, SharePercent: "14.29"},
		{RegionGroup: "Livonia", Students: 1, Gratulations: 1, SharePercent: "14.29"},
	}
	if diff := cmp.Diff(want, rows); diff != "" {
		t.Errorf("RegionStats mismatch (-want +got):\n%s", diff)
	}
}

func TestRegionStats_Empty(t *testing.T) {
	rows := NewReportGenerator(nil).RegionStats(nil)
	assert.Empty(t, rows)
}

func TestReportGenerator_GenerateReport(t *testing.T) {
	generator := NewReportGenerator(nil)
	rows := []models.RegionStats{{RegionGroup: "Sweden", Students: 2, Gratulations: 5, SharePercent: "100.00"}}

	csvBytes, err := generator.GenerateReport(rows, "csv")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(csvBytes)), "\n")
	assert.Equal(t, []string{"region_group,students,gratulations,share_percent", "Sweden,2,5,100.00"}, lines)

	jsonBytes, err := generator.GenerateReport(rows, "json")
	require.NoError(t, err)
	var decoded []models.RegionStats
	require.NoError(t, json.Unmarshal(jsonBytes, &decoded))
	assert.Equal(t, rows, decoded)

	_, err = generator.GenerateReport(rows, "xml")
	assert.Error(t, err)
}

func TestLoadRecords(t *testing.T) {
	generator := NewReportGenerator(logging.NewMockLogger())
	one := `{"person": {"origin": {"region_group": "Sweden"}}, "academia_gustaviana_activity": {"gratulations": [{}, {}]}}`

	t.Run("array file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "students.json")
		require.NoError(t, os.WriteFile(path, []byte("["+one+","+one+"]"), 0o600))
		records, err := generator.LoadRecords(path)
		require.NoError(t, err)
		assert.Len(t, records, 2)
		assert.Len(t, records[0].AcademiaGustavianaActivity.Gratulations, 2)
	})

	t.Run("directory", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.MkdirAll(filepath.Join(dir, "1632"), 0o750))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "1632", "NR1_1632_04.json"), []byte(one), 0o600))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "1632", "NR2_1632_04_INVALID.json"), []byte("oops"), 0o600))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "1632", "NR3_1632_04.json"), []byte("[1, 2]"), 0o600))

		records, err := generator.LoadRecords(dir)
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, "Sweden", records[0].Person.Origin.RegionGroup)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := generator.LoadRecords(filepath.Join(t.TempDir(), "none.json"))
		assert.Error(t, err)
	})
}
