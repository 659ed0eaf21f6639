package mines

import "errors"

var (
	ErrInvalidParams = errors.New("invalid game params")
	ErrTooManyMines  = errors.New("mine count exceeds board capacity")
	ErrOutOfBounds   = errors.New("cell is out of bounds")
)

type AssertionError struct {
	message string
}

// [AssertionError] implements [error]
func (e AssertionError) Error() string {
	return e.message
}
