package table

import (
	"errors"
	"fmt"
)

// Loader errors
var (
	ErrUndecodable = errors.New("input is neither a spreadsheet nor delimited text")
	ErrNoSheets    = errors.New("workbook has no sheets")
	ErrEmptyInput  = errors.New("input is empty")
)

// NewDecodeError wraps a loader failure with the source name
func NewDecodeError(source string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrUndecodable, source, err)
}

// IsDecodeError reports whether err is a structural loader error
func IsDecodeError(err error) bool {
	return errors.Is(err, ErrUndecodable) ||
		errors.Is(err, ErrNoSheets) ||
		errors.Is(err, ErrEmptyInput)
}
