// Package models provides the data structures shared by the segmentation
// stages and the collaborators that consume their output.
package models

import (
	"fmt"
	"strings"
)

// Chunk is one dated entry produced by the date-anchored splitter.
type Chunk struct {
	Date    string `json:"date"`
	Content string `json:"content"`
}

// String renders the chunk in its on-disk form.
func (c Chunk) String() string {
	return fmt.Sprintf("Date: %s\n\n%s", c.Date, c.Content)
}

// Record is one marker-delimited enrollment entry. Number keeps the marker's
// digits verbatim (leading zeros included); Header is nil when no date header
// preceded the record in its file, which flags it for manual review. Lines
// holds the non-blank lines, marker line first.
type Record struct {
	Number string   `json:"number"`
	Header *string  `json:"header"`
	Lines  []string `json:"lines"`
}

// HasHeader reports whether a date header was in effect for the record.
func (r Record) HasHeader() bool {
	return r.Header != nil
}

// HeaderText returns the header or "" for header-less records.
func (r Record) HeaderText() string {
	if r.Header == nil {
		return ""
	}
	return *r.Header
}

// Body joins the record lines, each terminated by a newline.
func (r Record) Body() string {
	var b strings.Builder
	for _, line := range r.Lines {
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return b.String()
}

// Hit is a located record-number marker: Number found at byte Position
// (the start of its line) in the scanned text.
type Hit struct {
	Number   int
	Position int
}

// ManifestRow describes one record file written by the extractor.
type ManifestRow struct {
	Number      string `csv:"number"`
	Year        int    `csv:"year"`
	Month       string `csv:"month"`
	Header      string `csv:"header"`
	File        string `csv:"file"`
	NeedsReview bool   `csv:"needs_review"`
}
