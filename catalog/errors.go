package catalog

import (
	"context"
	"errors"

	errorslib "github.com/goliatone/go-errors"
)

// ErrorKind defines catalog error kinds.
type ErrorKind string

const (
	KindConfig     ErrorKind = "config"
	KindValidation ErrorKind = "validation"
	KindNotFound   ErrorKind = "not_found"
	KindTimeout    ErrorKind = "timeout"
	KindCanceled   ErrorKind = "canceled"
	KindInternal   ErrorKind = "internal"
)

// CatalogError wraps errors with a kind.
type CatalogError struct {
	Kind ErrorKind
	Msg  string
	Err  error
}

func (e *CatalogError) Error() string {
	if e.Err == nil {
		return e.Msg
	}
	return e.Msg + ": " + e.Err.Error()
}

func (e *CatalogError) Unwrap() error {
	return e.Err
}

// NewError creates a new catalog error.
func NewError(kind ErrorKind, msg string, err error) *CatalogError {
	return &CatalogError{Kind: kind, Msg: msg, Err: err}
}

// ConfigError reports an invalid layout configuration.
func ConfigError(msg string) *CatalogError {
	return NewError(KindConfig, msg, nil)
}

// IsConfigError reports whether err was raised by layout validation.
func IsConfigError(err error) bool {
	return KindFromError(err) == KindConfig
}

// AsGoError maps an error into a go-errors error.
func AsGoError(err error) *errorslib.Error {
	if err == nil {
		return nil
	}

	var ge *errorslib.Error
	if errors.As(err, &ge) {
		return ge
	}

	kind := KindFromError(err)
	msg := err.Error()

	var catalogErr *CatalogError
	if errors.As(err, &catalogErr) && catalogErr.Msg != "" {
		msg = catalogErr.Msg
	}

	switch kind {
	case KindConfig:
		return errorslib.New(msg, errorslib.CategoryValidation).WithTextCode("config")
	case KindValidation:
		return errorslib.New(msg, errorslib.CategoryValidation).WithTextCode("validation")
	case KindNotFound:
		return errorslib.New(msg, errorslib.CategoryNotFound).WithTextCode("not_found")
	case KindTimeout:
		return errorslib.New(msg, errorslib.CategoryOperation).WithTextCode("timeout")
	case KindCanceled:
		return errorslib.New(msg, errorslib.CategoryOperation).WithTextCode("canceled")
	default:
		return errorslib.New(msg, errorslib.CategoryInternal).WithTextCode("internal")
	}
}

// KindFromError maps an error to its catalog error kind.
func KindFromError(err error) ErrorKind {
	if err == nil {
		return ""
	}

	var catalogErr *CatalogError
	if errors.As(err, &catalogErr) {
		return catalogErr.Kind
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	if errors.Is(err, context.Canceled) {
		return KindCanceled
	}

	var ge *errorslib.Error
	if errors.As(err, &ge) {
		switch ge.TextCode {
		case "config":
			return KindConfig
		case "validation":
			return KindValidation
		case "not_found":
			return KindNotFound
		case "timeout":
			return KindTimeout
		case "canceled":
			return KindCanceled
		}
	}

	return KindInternal
}
