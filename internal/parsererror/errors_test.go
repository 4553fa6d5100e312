package parsererror

import (
	"errors"
	"fmt"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUnanchoredInputError(t *testing.T) {
	tests := []struct {
		name     string
		err      *UnanchoredInputError
		expected string
	}{
		{
			name:     "with header",
			err:      &UnanchoredInputError{FilePath: "1632.txt", Header: "21. April", Msg: "date header without year"},
			expected: `unanchored input in 1632.txt: date header without year (header "21. April")`,
		},
		{
			name:     "without file path",
			err:      &UnanchoredInputError{Msg: "no year line"},
			expected: "unanchored input in <text>: no year line",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestIsUnanchored(t *testing.T) {
	err := fmt.Errorf("segment 1632.txt: %w", &UnanchoredInputError{Msg: "x"})
	assert.True(t, IsUnanchored(err))
	assert.False(t, IsUnanchored(errors.New("other")))
	assert.False(t, IsUnanchored(nil))

	var target *UnanchoredInputError
	assert.True(t, errors.As(err, &target))
}

func TestFilenameError(t *testing.T) {
	err := &FilenameError{FilePath: "notes.txt", Expected: "year"}
	assert.Equal(t, "cannot derive year from file name 'notes.txt'", err.Error())
}

func TestFileError_Unwrap(t *testing.T) {
	err := &FileError{Op: "read", Path: "output/1691.txt", Err: fs.ErrNotExist}
	assert.Equal(t, "read output/1691.txt: file does not exist", err.Error())
	assert.True(t, errors.Is(err, fs.ErrNotExist))
}
