package metastore

import (
	"errors"
	"fmt"
)

// ErrNoHeading means the item page never rendered its primary heading,
// which is the only hard failure of field extraction.
var ErrNoHeading = errors.New("item page has no primary heading")

// StageError attaches the scrape stage and URL to an underlying error.
type StageError struct {
	Stage string
	URL   string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("[%s] %s: %v", e.Stage, e.URL, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}
