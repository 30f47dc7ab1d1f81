package cmsconfig

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownVariant is matched by errors for unrecognized site item or field types.
	ErrUnknownVariant = errors.New("unknown variant")
	// ErrMissingRequiredField is matched by errors for absent or mis-shaped required keys.
	ErrMissingRequiredField = errors.New("missing required field")
	// ErrInvalidValueShape is matched by errors for values of the wrong primitive kind.
	ErrInvalidValueShape = errors.New("invalid value shape")
	// ErrInvalidPage is returned when a list page number is below 1.
	ErrInvalidPage = errors.New("page must be a positive integer")
)

// ErrorKind classifies a ConfigError.
type ErrorKind int

const (
	UnknownVariant ErrorKind = iota + 1
	MissingRequiredField
	InvalidValueShape
)

func (k ErrorKind) String() string {
	switch k {
	case UnknownVariant:
		return "UnknownVariant"
	case MissingRequiredField:
		return "MissingRequiredField"
	case InvalidValueShape:
		return "InvalidValueShape"
	default:
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
}

// ConfigError describes the first violation found while parsing. Path locates
// the offending node, e.g. "records.user.list.fields[1].name".
type ConfigError struct {
	Kind    ErrorKind
	Path    string
	Message string
}

func (e *ConfigError) Error() string {
	if e.Path == "" {
		return e.Message
	}
	return e.Path + ": " + e.Message
}

// Unwrap exposes the sentinel matching Kind so callers can use errors.Is.
func (e *ConfigError) Unwrap() error {
	switch e.Kind {
	case UnknownVariant:
		return ErrUnknownVariant
	case MissingRequiredField:
		return ErrMissingRequiredField
	case InvalidValueShape:
		return ErrInvalidValueShape
	default:
		return nil
	}
}

func unknownVariant(p path, format string, args ...any) error {
	return &ConfigError{Kind: UnknownVariant, Path: string(p), Message: fmt.Sprintf(format, args...)}
}

func missingField(p path, format string, args ...any) error {
	return &ConfigError{Kind: MissingRequiredField, Path: string(p), Message: fmt.Sprintf(format, args...)}
}

func invalidShape(p path, format string, args ...any) error {
	return &ConfigError{Kind: InvalidValueShape, Path: string(p), Message: fmt.Sprintf(format, args...)}
}
