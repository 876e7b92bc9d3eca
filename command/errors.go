package command

import (
	"errors"
	"net/http"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-signin/core"
)

var (
	ErrCommandAlreadyExecuted = errors.New("command: command already executed")
	ErrNoResult               = errors.New("command: handler completed without storing a result")
)

func commandDependencyError(message string) error {
	return goerrors.New(message, goerrors.CategoryInternal).
		WithCode(http.StatusInternalServerError).
		WithTextCode(core.ErrorCodeUnknown).
		WithMetadata(map[string]any{
			core.MetadataSubError:  string(core.SubErrorUnexpectedException),
			core.MetadataRetryable: false,
		})
}

func commandValidationError(field string, message string) error {
	return goerrors.NewValidation("command: validation failed", goerrors.FieldError{
		Field:   field,
		Message: message,
	}).
		WithCode(http.StatusBadRequest).
		WithTextCode(core.ErrorCodeInvalidParameter).
		WithSeverity(goerrors.SeverityError)
}
