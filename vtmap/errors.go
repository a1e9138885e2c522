package vtmap

import (
	"github.com/jamesrr39/goutil/errorsx"
)

type ErrorKind string

const (
	ErrorKindUnknown      ErrorKind = "UnknownError"
	ErrorKindParse        ErrorKind = "ParseError"
	ErrorKindRegistration ErrorKind = "RegistrationError"
	ErrorKindRender       ErrorKind = "RenderError"
	ErrorKindEncoding     ErrorKind = "EncodingError"
)

// ParseError is returned for malformed style documents and malformed tile payloads
type ParseError struct{ Err error }

func (e *ParseError) Error() string { return e.Err.Error() }
func (e *ParseError) Unwrap() error { return e.Err }

// RegistrationError is returned when fonts or datasource plugins could not be registered
type RegistrationError struct{ Err error }

func (e *RegistrationError) Error() string { return e.Err.Error() }
func (e *RegistrationError) Unwrap() error { return e.Err }

// RenderError is returned for failures while computing the extent, decoding layers or painting
type RenderError struct{ Err error }

func (e *RenderError) Error() string { return e.Err.Error() }
func (e *RenderError) Unwrap() error { return e.Err }

// EncodingError is returned when an image could not be exported
type EncodingError struct{ Err error }

func (e *EncodingError) Error() string { return e.Err.Error() }
func (e *EncodingError) Unwrap() error { return e.Err }

func NewParseError(err error) errorsx.Error {
	if err == nil || KindOf(err) == ErrorKindParse {
		return errorsx.Wrap(err)
	}
	return errorsx.Wrap(&ParseError{err})
}

func NewRegistrationError(err error) errorsx.Error {
	if err == nil || KindOf(err) == ErrorKindRegistration {
		return errorsx.Wrap(err)
	}
	return errorsx.Wrap(&RegistrationError{err})
}

// NewRenderError classifies err as a render failure, unless it already carries a kind.
func NewRenderError(err error) errorsx.Error {
	if err == nil || KindOf(err) != ErrorKindUnknown {
		return errorsx.Wrap(err)
	}
	return errorsx.Wrap(&RenderError{err})
}

func NewEncodingError(err error) errorsx.Error {
	if err == nil || KindOf(err) == ErrorKindEncoding {
		return errorsx.Wrap(err)
	}
	return errorsx.Wrap(&EncodingError{err})
}

// KindOf reports which kind of error err is, looking through errorsx wrapping
func KindOf(err error) ErrorKind {
	switch errorsx.Cause(err).(type) {
	case *ParseError:
		return ErrorKindParse
	case *RegistrationError:
		return ErrorKindRegistration
	case *RenderError:
		return ErrorKindRender
	case *EncodingError:
		return ErrorKindEncoding
	default:
		return ErrorKindUnknown
	}
}
