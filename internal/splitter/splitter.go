// Package splitter segments one year's worth of running text into dated
// entries. Date header lines ("20. April 1632", "21. April") delimit
// sections; within a section a blank line followed by a numbered line
// ("12. Petrus ...") starts a new entry.
package splitter

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"fjacquet/tering/internal/dateutils"
	"fjacquet/tering/internal/fileutils"
	"fjacquet/tering/internal/logging"
	"fjacquet/tering/internal/models"
	"fjacquet/tering/internal/parsererror"
)

var (
	yearLinePattern = regexp.MustCompile(`(?m)^[ \t]*(\d{4})[ \t\r]*$`)
	dateLinePattern = regexp.MustCompile(`(?m)^[ \t]*(\d{1,2}\.[ \t]+([\p{L}\p{M}]+)(?:[ \t]+(\d{4}))?)[ \t\r]*$`)
	entryStart      = regexp.MustCompile(`^[ \t]*\d+\.(?:\s|$)`)
)

// Splitter turns year-scoped text into dated chunks.
type Splitter struct {
	logger logging.Logger
}

// New creates a Splitter. A nil logger discards diagnostics.
func New(logger logging.Logger) *Splitter {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Splitter{logger: logger}
}

// Split segments text into chunks in document order.
//
// Section headers are "day. month" lines with an optional year. Unlike
// dateutils.ParseHeader, used when partitioning months and extracting
// records, the splitter does not accept the "Dep." prefix, a dot after the
// month word, or month-year headers: such lines stay in the entry text.
//
// The first line consisting only of a four-digit year seeds the year
// context. Each date header's year is its own if stated, otherwise the most
// recently resolved one; a year-less header with nothing to inherit from is
// an UnanchoredInputError. Text without any date header yields no chunks
// and no error.
func (s *Splitter) Split(text string) ([]models.Chunk, error) {
	ctx := dateutils.NewYearContext(0)
	if m := yearLinePattern.FindStringSubmatch(text); m != nil {
		seed, _ := strconv.Atoi(m[1])
		ctx = dateutils.NewYearContext(seed)
	}

	headers := dateLinePattern.FindAllStringSubmatchIndex(text, -1)
	if len(headers) == 0 {
		s.logger.Debug("No date header found")
		return nil, nil
	}

	var chunks []models.Chunk
	for i, loc := range headers {
		headerText := strings.Join(strings.Fields(text[loc[2]:loc[3]]), " ")
		h, ok := dateutils.ParseHeader(headerText)
		if !ok {
			// cannot happen: dateLinePattern is narrower than ParseHeader
			continue
		}

		year, ok := ctx.Resolve(h)
		if !ok {
			return nil, &parsererror.UnanchoredInputError{
				Header: headerText,
				Msg:    "date header without year and no preceding year line",
			}
		}
		date := headerText
		if !h.HasYear() {
			date = fmt.Sprintf("%s %d", headerText, year)
		}
		ctx.SetHeader(date)

		sectionEnd := len(text)
		if i+1 < len(headers) {
			sectionEnd = headers[i+1][0]
		}
		entries := splitEntries(text[loc[1]:sectionEnd])
		for _, entry := range entries {
			chunks = append(chunks, models.Chunk{Date: date, Content: entry})
		}
		s.logger.Debug("Section split",
			logging.F(logging.FieldHeader, date),
			logging.F(logging.FieldCount, len(entries)))
	}

	return chunks, nil
}

// splitEntries cuts a section into numbered entries. An entry starts at a
// line beginning with "digits." that follows a blank line; entries are
// trimmed and empty ones dropped.
func splitEntries(section string) []string {
	lines := strings.Split(section, "\n")

	var entries []string
	var current []string
	prevBlank := false
	flush := func() {
		entry := strings.TrimSpace(strings.Join(current, "\n"))
		if entry != "" {
			entries = append(entries, entry)
		}
		current = current[:0]
	}

	for _, line := range lines {
		blank := strings.TrimSpace(line) == ""
		if !blank && prevBlank && entryStart.MatchString(line) {
			flush()
		}
		current = append(current, line)
		prevBlank = blank
	}
	flush()

	return entries
}

// SplitFile reads path and splits its content. Unanchored errors carry the
// file path.
func (s *Splitter) SplitFile(path string) ([]models.Chunk, error) {
	text, err := fileutils.ReadText(path)
	if err != nil {
		return nil, err
	}
	chunks, err := s.Split(text)
	if err != nil {
		var ue *parsererror.UnanchoredInputError
		if errors.As(err, &ue) {
			ue.FilePath = path
		}
		return nil, err
	}
	if len(chunks) == 0 {
		s.logger.Warn("No date header found, file is unsegmentable",
			logging.F(logging.FieldFile, path))
	}
	return chunks, nil
}

// WriteChunks writes one file per chunk into dir as chunk_001.txt,
// chunk_002.txt, ... and returns the written paths.
func (s *Splitter) WriteChunks(chunks []models.Chunk, dir string) ([]string, error) {
	if err := fileutils.EnsureDirectoryExists(dir); err != nil {
		return nil, err
	}

	paths := make([]string, 0, len(chunks))
	for i, chunk := range chunks {
		path := filepath.Join(dir, fmt.Sprintf("chunk_%03d.txt", i+1))
		if err := fileutils.WriteTextAtomic(path, chunk.String()); err != nil {
			return paths, err
		}
		s.logger.Debug("Saved chunk",
			logging.F(logging.FieldOutputFile, path),
			logging.F(logging.FieldHeader, chunk.Date))
		paths = append(paths, path)
	}
	return paths, nil
}
