package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrRateLimited is returned by network collaborators when the upstream quota is exhausted.
	ErrRateLimited = errors.New("upstream rate limit reached")
	// ErrInvalidArticle marks an article the annotator judged off-topic.
	ErrInvalidArticle = errors.New("article rejected by annotator")
)

// SourceReadError means a partial collection could not be used as a whole.
type SourceReadError struct {
	Path    string
	Missing []string
	Err     error
}

func (e *SourceReadError) Error() string {
	if len(e.Missing) > 0 {
		return fmt.Sprintf("source %s: missing columns [%s]", e.Path, strings.Join(e.Missing, ", "))
	}
	return fmt.Sprintf("source %s: %v", e.Path, e.Err)
}

func (e *SourceReadError) Unwrap() error { return e.Err }

// FieldParseError reports a field value that was replaced by its default.
type FieldParseError struct {
	Field string
	Value string
	Err   error
}

func (e *FieldParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("field %s: cannot parse %q: %v", e.Field, e.Value, e.Err)
	}
	return fmt.Sprintf("field %s: cannot parse %q", e.Field, e.Value)
}

func (e *FieldParseError) Unwrap() error { return e.Err }

// WriteError is fatal for a canonical build.
type WriteError struct {
	Target string
	Err    error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write %s: %v", e.Target, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }
