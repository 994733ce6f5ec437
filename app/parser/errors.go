package parser

import (
	"errors"
	"fmt"
)

type ErrorKind int

const (
	// NoFeedRoot means the document element is not one of the supported
	// feed roots (or is an rss root with an unsupported version).
	NoFeedRoot ErrorKind = iota + 1
	// UnknownMimeType means a content type attribute could not be mapped.
	UnknownMimeType
	// MissingContent means a required value (e.g. the text of an Atom id) was absent.
	MissingContent
	// InvalidDateTime means a timestamp could not be parsed where one was required.
	InvalidDateTime
)

func (k ErrorKind) String() string {
	switch k {
	case NoFeedRoot:
		return "no_feed_root"
	case UnknownMimeType:
		return "unknown_mime_type"
	case MissingContent:
		return "missing_content"
	case InvalidDateTime:
		return "invalid_datetime"
	default:
		return "unknown"
	}
}

// Sentinels for errors.Is matching against a *ParseError of the same kind.
var (
	ErrNoFeedRoot      = errors.New("no feed root element found")
	ErrUnknownMimeType = errors.New("unknown mime type")
	ErrMissingContent  = errors.New("missing content")
	ErrInvalidDateTime = errors.New("invalid date/time")
)

var kindSentinels = map[ErrorKind]error{
	NoFeedRoot:      ErrNoFeedRoot,
	UnknownMimeType: ErrUnknownMimeType,
	MissingContent:  ErrMissingContent,
	InvalidDateTime: ErrInvalidDateTime,
}

// XMLError wraps a fault of the underlying XML stream: malformed markup,
// unsupported encodings or truncated input.
type XMLError struct {
	Err error
}

func (e *XMLError) Error() string {
	return fmt.Sprintf("xml reader: %v", e.Err)
}

func (e *XMLError) Unwrap() error {
	return e.Err
}

// ParseError is a semantic mapping failure on an otherwise readable document.
type ParseError struct {
	Kind     ErrorKind
	Field    string // MissingContent, InvalidDateTime
	MimeType string // UnknownMimeType
	Err      error  // underlying cause, InvalidDateTime
}

func (e *ParseError) Error() string {
	switch e.Kind {
	case NoFeedRoot:
		return ErrNoFeedRoot.Error()
	case UnknownMimeType:
		return fmt.Sprintf("%s: %q", ErrUnknownMimeType, e.MimeType)
	case MissingContent:
		return fmt.Sprintf("%s: %s", ErrMissingContent, e.Field)
	case InvalidDateTime:
		return fmt.Sprintf("%s in %s: %v", ErrInvalidDateTime, e.Field, e.Err)
	default:
		return "parse error"
	}
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

func (e *ParseError) Is(target error) bool {
	return kindSentinels[e.Kind] == target
}

func errNoFeedRoot() error {
	return &ParseError{Kind: NoFeedRoot}
}

func errMissingContent(field string) error {
	return &ParseError{Kind: MissingContent, Field: field}
}

func errUnknownMimeType(mimeType string) error {
	return &ParseError{Kind: UnknownMimeType, MimeType: mimeType}
}

func errInvalidDateTime(field string, cause error) error {
	return &ParseError{Kind: InvalidDateTime, Field: field, Err: cause}
}

// wrapXML converts a failure surfaced by the element source into an
// *XMLError unless it already is a parse error.
func wrapXML(err error) error {
	if err == nil {
		return nil
	}
	var perr *ParseError
	if errors.As(err, &perr) {
		return err
	}
	var xerr *XMLError
	if errors.As(err, &xerr) {
		return err
	}
	return &XMLError{Err: err}
}
