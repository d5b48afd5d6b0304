package errors

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalid  = errors.New("invalid")
	ErrNotFound = errors.New("not found")

	ErrMalformedFrontmatter = errors.New("malformed frontmatter")
	ErrMalformedBody        = errors.New("malformed body")
)

type FieldError struct {
	Field   string
	Message string
}

func (e FieldError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

type ValidationError struct {
	Items []FieldError
}

func (e ValidationError) Error() string {
	if len(e.Items) == 0 {
		return "validation failed"
	}

	var b strings.Builder
	b.WriteString("validation failed:\n")
	for _, item := range e.Items {
		b.WriteString(" - ")
		b.WriteString(item.Error())
		b.WriteString("\n")
	}
	return b.String()
}

func (e *ValidationError) Add(field, msg string) {
	e.Items = append(e.Items, FieldError{
		Field:   field,
		Message: msg,
	})
}

func (e ValidationError) Is(target error) bool {
	return target == ErrInvalid
}

func (e ValidationError) HasAny() bool {
	return len(e.Items) > 0
}

// DocumentError scopes a failure to one content document. Kind is one of the
// Err* sentinels so callers can branch with errors.Is.
type DocumentError struct {
	Path string
	Kind error
	Err  error
}

func (e *DocumentError) Error() string {
	switch {
	case e.Err == nil:
		return fmt.Sprintf("%s: %v", e.Path, e.Kind)
	case errors.Is(e.Err, e.Kind):
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("%s: %v: %v", e.Path, e.Kind, e.Err)
}

// Reason is Error without the document path. Not-found reasons drop the
// cause too, since filesystem errors carry the path themselves.
func (e *DocumentError) Reason() string {
	switch {
	case e.Err == nil || errors.Is(e.Kind, ErrNotFound):
		return e.Kind.Error()
	case errors.Is(e.Err, e.Kind):
		return e.Err.Error()
	}
	return fmt.Sprintf("%v: %v", e.Kind, e.Err)
}

func (e *DocumentError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func Document(path string, kind, err error) error {
	return &DocumentError{Path: path, Kind: kind, Err: err}
}
