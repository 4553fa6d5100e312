package dateutils

import (
	"regexp"
	"strconv"
	"time"

	"fjacquet/tering/internal/fileutils"
	"fjacquet/tering/internal/parsererror"
)

var (
	yearStemPattern      = regexp.MustCompile(`^(\d{4})$`)
	yearMonthStemPattern = regexp.MustCompile(`^(\d{4})-(\d{2})$`)
)

// YearFromFilename extracts the asserted year of a year file ("1691.txt").
func YearFromFilename(path string) (int, error) {
	m := yearStemPattern.FindStringSubmatch(fileutils.Stem(path))
	if m == nil {
		return 0, &parsererror.FilenameError{FilePath: path, Expected: "year"}
	}
	year, _ := strconv.Atoi(m[1])
	return year, nil
}

// YearMonthFromFilename extracts year and month of a month file
// ("1691-02.txt"). The month part is returned verbatim ("02") because it
// is reused in output names.
func YearMonthFromFilename(path string) (int, string, error) {
	m := yearMonthStemPattern.FindStringSubmatch(fileutils.Stem(path))
	if m == nil {
		return 0, "", &parsererror.FilenameError{FilePath: path, Expected: "year-month"}
	}
	month, _ := strconv.Atoi(m[2])
	if month < int(time.January) || month > int(time.December) {
		return 0, "", &parsererror.FilenameError{FilePath: path, Expected: "year-month"}
	}
	year, _ := strconv.Atoi(m[1])
	return year, m[2], nil
}
