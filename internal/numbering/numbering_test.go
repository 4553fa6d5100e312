package numbering

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"fjacquet/tering/internal/logging"
	"fjacquet/tering/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func hitNumbers(hits []models.Hit) []int {
	var out []int
	for _, h := range hits {
		out = append(out, h.Number)
	}
	return out
}

func TestScan(t *testing.T) {
	tests := []struct {
		name        string
		text        string
		ceiling     int
		wantHits    []int
		wantMissing []int
	}{
		{
			name:     "consecutive numbers",
			text:     "1. Petrus\n2. Johannes\n3. Ericus",
			ceiling:  3,
			wantHits: []int{1, 2, 3},
		},
		{
			name:        "gap is reported and scanning continues",
			text:        "1. Petrus\n2. Johannes\n4. Nicolaus",
			ceiling:     5,
			wantHits:    []int{1, 2, 4},
			wantMissing: []int{3, 5},
		},
		{
			name:        "numerals inside the body are ignored",
			text:        "1. Petrus, natus 2. Maii\naged 3. years\n2. Johannes",
			ceiling:     3,
			wantHits:    []int{1, 2},
			wantMissing: []int{3},
		},
		{
			name:        "lowercase continuation is not a record",
			text:        "1. Petrus\n2. stud. theol.\n2. Johannes",
			ceiling:     2,
			wantHits:    []int{1, 2},
			wantMissing: nil,
		},
		{
			name:        "number must follow the previous hit",
			text:        "2. Johannes\n1. Petrus",
			ceiling:     2,
			wantHits:    []int{1},
			wantMissing: []int{2},
		},
		{
			name:     "accented uppercase initial",
			text:     "1. Älander\n2. Öhrn",
			ceiling:  2,
			wantHits: []int{1, 2},
		},
		{
			name:        "no space after the dot",
			text:        "1.Petrus",
			ceiling:     1,
			wantMissing: []int{1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := New(tt.ceiling, "", nil).Scan(tt.text)
			assert.Equal(t, tt.wantHits, hitNumbers(res.Hits))
			assert.Equal(t, tt.wantMissing, res.Missing)
			assert.Equal(t, tt.ceiling, len(res.Hits)+len(res.Missing))
		})
	}
}

func TestScan_CoverageOverCeiling(t *testing.T) {
	var b strings.Builder
	for i := 1; i <= 50; i++ {
		if i%7 == 0 {
			continue
		}
		fmt.Fprintf(&b, "%d. Studiosus %d\nnatus anno 16%02d\n", i, i, i)
	}

	res := New(60, "", nil).Scan(b.String())
	assert.Len(t, res.Hits, 43)
	assert.Equal(t, 60, len(res.Hits)+len(res.Missing))
	assert.Contains(t, res.Missing, 7)
	assert.Contains(t, res.Missing, 51)
}

func TestScan_PositionsAreLineStarts(t *testing.T) {
	text := "Album\n1. Petrus\n2. Johannes"
	res := New(2, "", nil).Scan(text)

	require.Len(t, res.Hits, 2)
	assert.Equal(t, models.Hit{Number: 1, Position: 6}, res.Hits[0])
	assert.Equal(t, models.Hit{Number: 2, Position: 16}, res.Hits[1])
}

func TestNumber_InsertsMarkers(t *testing.T) {
	text := "Album\n1. Petrus\nnatus 1620\n2. Johannes\n"
	marked, res := New(3, "[NR]", nil).Number(text)

	assert.Equal(t, "Album\n[NR]1. Petrus\nnatus 1620\n[NR]2. Johannes\n", marked)
	assert.Equal(t, []int{3}, res.Missing)
	assert.Equal(t, "3", res.Report())
}

func TestMark_NoHits(t *testing.T) {
	assert.Equal(t, "text", Mark("text", nil, "[NR]"))
}

func TestNew_Defaults(t *testing.T) {
	n := New(0, "", nil)
	assert.Equal(t, DefaultMarker, n.Marker())
	assert.Equal(t, DefaultCeiling, n.ceiling)
}

func TestNumberFile(t *testing.T) {
	input := filepath.Join(t.TempDir(), "tering.txt")
	require.NoError(t, os.WriteFile(input, []byte("1. Petrus\n3. Ericus\n"), 0600))
	logger := logging.NewMockLogger()

	res, out, err := New(4, "[NR]", logger).NumberFile(input)
	require.NoError(t, err)
	assert.Equal(t, []int{2, 4}, res.Missing)
	assert.Equal(t, input+"_marked.txt", out.Marked)
	assert.Equal(t, input+"_report.txt", out.Report)

	marked, err := os.ReadFile(out.Marked)
	require.NoError(t, err)
	assert.Equal(t, "[NR]1. Petrus\n[NR]3. Ericus\n", string(marked))

	report, err := os.ReadFile(out.Report)
	require.NoError(t, err)
	assert.Equal(t, "2\n4", string(report))
	assert.True(t, logger.HasEntry("WARN", "Record numbers not found"))
}

func TestNumberFile_MissingInput(t *testing.T) {
	_, _, err := New(1, "", nil).NumberFile(filepath.Join(t.TempDir(), "absent.txt"))
	assert.Error(t, err)
}

func corpus(upTo int, skip ...int) string {
	skipped := make(map[int]bool)
	for _, s := range skip {
		skipped[s] = true
	}
	var b strings.Builder
	b.WriteString("Album Academicum\n")
	for i := 1; i <= upTo; i++ {
		if !skipped[i] {
			fmt.Fprintf(&b, "%d. Studiosus\n", i)
		}
	}
	return b.String()
}

func TestSplitByHundreds(t *testing.T) {
	blocks := New(0, "", nil).SplitByHundreds(corpus(250))

	require.Len(t, blocks, 3)
	assert.Equal(t, []int{1, 101, 201}, []int{blocks[0].Start, blocks[1].Start, blocks[2].Start})
	assert.Equal(t, []int{100, 200, 300}, []int{blocks[0].End, blocks[1].End, blocks[2].End})
	assert.True(t, strings.HasPrefix(blocks[0].Content, "1. Studiosus\n2. Studiosus\n"))
	assert.True(t, strings.HasSuffix(blocks[0].Content, "100. Studiosus\n"))
	assert.True(t, strings.HasPrefix(blocks[1].Content, "101. Studiosus\n"))
	assert.True(t, strings.HasSuffix(blocks[2].Content, "250. Studiosus\n"))
	assert.Equal(t, "album_1_100.txt", blocks[0].Name("album"))
}

func TestSplitByHundreds_MissingStartExtendsBlock(t *testing.T) {
	blocks := New(0, "", nil).SplitByHundreds(corpus(250, 101))

	require.Len(t, blocks, 2)
	assert.Equal(t, 1, blocks[0].Start)
	assert.Equal(t, 200, blocks[0].End)
	assert.Equal(t, 201, blocks[1].Start)
}

func TestSplitByHundreds_MarkedCorpus(t *testing.T) {
	n := New(150, "[NR]", nil)
	marked, _ := n.Number(corpus(150))

	blocks := n.SplitByHundreds(marked)
	require.Len(t, blocks, 2)
	assert.True(t, strings.HasPrefix(blocks[1].Content, "[NR]101. Studiosus"))
}

func TestSplitByHundreds_NoFirstRecord(t *testing.T) {
	assert.Empty(t, New(0, "", nil).SplitByHundreds("no numbers here"))
}

func TestWriteBlocks(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "chunks")
	n := New(0, "", nil)
	paths, err := n.WriteBlocks(n.SplitByHundreds(corpus(120)), dir, "album_academicum")
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "album_academicum_1_100.txt"),
		filepath.Join(dir, "album_academicum_101_200.txt"),
	}, paths)
}
