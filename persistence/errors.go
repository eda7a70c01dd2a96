package persistence

import (
	"errors"
	"fmt"
	"strings"

	"github.com/conduit-lang/extmodel/internal/jsonv"
	"github.com/conduit-lang/extmodel/model"
)

// Failure codes attached to a ParseError.
// S001-S099: document structure
// S100-S199: adapter construction
const (
	CodeMissingKey          = "S001"
	CodeInvalidShape        = "S002"
	CodeMissingKind         = "S003"
	CodeUnknownKind         = "S004"
	CodeUnresolvedReference = "S005"
	CodeMalformedIdentifier = "S006"
	CodeInvalidConstruction = "S100"
	CodeUnknown             = "S099"
)

var (
	// ErrMissingKey is returned when a mandatory key is absent.
	ErrMissingKey = jsonv.ErrMissingKey

	// ErrInvalidShape is returned when a value has the wrong JSON type or
	// an unexpected value.
	ErrInvalidShape = jsonv.ErrInvalidShape

	// ErrMissingKind is returned when a polymorphic entity has no
	// discriminator.
	ErrMissingKind = errors.New("Invalid json. Property kind wasn't specified")

	// ErrUnknownKind is returned for a discriminator outside the closed
	// vocabulary of its family.
	ErrUnknownKind = errors.New("unknown kind")

	// ErrUnresolvedReference is returned when a reference points to nothing
	// registered in the document.
	ErrUnresolvedReference = errors.New("unresolved reference")

	// ErrMalformedIdentifier is returned for NAMESPACE:NAME identifiers that
	// do not parse.
	ErrMalformedIdentifier = model.ErrMalformedIdentifier

	// ErrInvalidConstruction is returned when adapters are wired incorrectly.
	ErrInvalidConstruction = errors.New("invalid adapter construction")
)

// ParseError locates a failure inside a document.
type ParseError struct {
	Code string
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %v", e.Code, e.Err)
	}
	return fmt.Sprintf("%s at %s: %v", e.Code, e.Path, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// at prefixes the path of err with segment, creating the ParseError on
// first use.
func at(segment string, err error) error {
	if err == nil {
		return nil
	}
	var pe *ParseError
	if errors.As(err, &pe) {
		pe.Path = joinPath(segment, pe.Path)
		return err
	}
	return &ParseError{Code: codeFor(err), Path: segment, Err: err}
}

// located makes sure err is a ParseError, at the document root when it
// carries no path yet.
func located(err error) error {
	var pe *ParseError
	if errors.As(err, &pe) {
		return err
	}
	return &ParseError{Code: codeFor(err), Err: err}
}

func atIndex(key string, i int, err error) error {
	return at(fmt.Sprintf("%s[%d]", key, i), err)
}

func joinPath(head, tail string) string {
	switch {
	case tail == "":
		return head
	case strings.HasPrefix(tail, "["):
		return head + tail
	default:
		return head + "." + tail
	}
}

func codeFor(err error) string {
	switch {
	case errors.Is(err, ErrMissingKind):
		return CodeMissingKind
	case errors.Is(err, ErrUnknownKind):
		return CodeUnknownKind
	case errors.Is(err, ErrUnresolvedReference):
		return CodeUnresolvedReference
	case errors.Is(err, ErrMalformedIdentifier):
		return CodeMalformedIdentifier
	case errors.Is(err, ErrMissingKey):
		return CodeMissingKey
	case errors.Is(err, ErrInvalidShape):
		return CodeInvalidShape
	case errors.Is(err, ErrInvalidConstruction):
		return CodeInvalidConstruction
	default:
		return CodeUnknown
	}
}

// ExtensionModelSerializationError reports that a whole extension could not
// be written or read.
type ExtensionModelSerializationError struct {
	Extension string
	Op        string
	Err       error
}

func (e *ExtensionModelSerializationError) Error() string {
	if e.Extension == "" {
		return fmt.Sprintf("failed to %s extension model: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("failed to %s extension model '%s': %v", e.Op, e.Extension, e.Err)
}

func (e *ExtensionModelSerializationError) Unwrap() error {
	return e.Err
}
