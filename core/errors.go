package core

import (
	"net/http"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

const (
	ErrorCodeIO                    = "io_error"
	ErrorCodeFederatedSignInFailed = "federated_sign_in_failed"
	ErrorCodeProviderNotRegistered = "provider_not_registered"
	ErrorCodeInvalidParameter      = "invalid_parameter"
	ErrorCodeUnknown               = "unknown_error"
)

const (
	MetadataSubError  = "sub_error"
	MetadataProvider  = "provider"
	MetadataRetryable = "retryable"
)

type SubErrorCode string

const (
	SubErrorConnectionTimeout             SubErrorCode = "ce_connection_timeout"
	SubErrorNetworkTemporarilyUnavailable SubErrorCode = "ce_network_temporarily_unavailable"
	SubErrorNoNetwork                     SubErrorCode = "ce_no_network"
	SubErrorUnexpectedException           SubErrorCode = "ce_unexpected_exception"

	SubErrorUnsupportedCredentialType SubErrorCode = "unsupported_credential_type"
	SubErrorUnexpectedCredentialType  SubErrorCode = "unexpected_credential_type"
	SubErrorSignInFailed              SubErrorCode = "sign_in_failed"
)

func (c SubErrorCode) String() string {
	return string(c)
}

// Retryable reports whether the caller may retry a failure carrying this code.
func (c SubErrorCode) Retryable() bool {
	switch c {
	case SubErrorConnectionTimeout, SubErrorNetworkTemporarilyUnavailable, SubErrorNoNetwork:
		return true
	default:
		return false
	}
}

func knownErrorCode(code string) bool {
	switch strings.TrimSpace(code) {
	case ErrorCodeIO, ErrorCodeFederatedSignInFailed, ErrorCodeProviderNotRegistered,
		ErrorCodeInvalidParameter, ErrorCodeUnknown:
		return true
	default:
		return false
	}
}

func newClientError(
	cause error,
	category goerrors.Category,
	status int,
	code string,
	sub SubErrorCode,
	message string,
	metadata map[string]any,
) *goerrors.Error {
	var err *goerrors.Error
	if cause == nil {
		err = goerrors.New(message, category)
	} else {
		err = goerrors.Wrap(cause, category, message)
	}
	fields := copyAnyMap(metadata)
	if sub != "" {
		fields[MetadataSubError] = string(sub)
	}
	fields[MetadataRetryable] = sub.Retryable()
	return err.
		WithCode(status).
		WithTextCode(code).
		WithMetadata(fields)
}

// NewIOError wraps a raw transport failure with the given sub-error code.
func NewIOError(sub SubErrorCode, cause error) *goerrors.Error {
	message := "An IO error occurred in the network layer"
	if cause != nil {
		message += ": " + cause.Error()
	}
	status := http.StatusServiceUnavailable
	switch sub {
	case SubErrorConnectionTimeout:
		status = http.StatusGatewayTimeout
	case SubErrorUnexpectedException:
		status = http.StatusBadGateway
	}
	return newClientError(cause, goerrors.CategoryExternal, status, ErrorCodeIO, sub, message, nil)
}

// NewFederatedSignInError builds a provider-scoped sign-in failure.
func NewFederatedSignInError(provider ProviderName, sub SubErrorCode, message string, cause error) *goerrors.Error {
	message = strings.TrimSpace(message)
	if message == "" && cause != nil {
		message = cause.Error()
	}
	if message == "" {
		message = "federated sign-in failed"
	}
	return newClientError(cause, goerrors.CategoryAuth, http.StatusUnauthorized,
		ErrorCodeFederatedSignInFailed, sub, message,
		map[string]any{MetadataProvider: string(provider)})
}

// NewProviderNotRegisteredError is a configuration defect and never retryable.
func NewProviderNotRegisteredError(provider ProviderName) *goerrors.Error {
	return newClientError(nil, goerrors.CategoryNotFound, http.StatusInternalServerError,
		ErrorCodeProviderNotRegistered, "",
		"core: no federated sign-in provider registered for "+quoteName(provider),
		map[string]any{MetadataProvider: string(provider)})
}

func NewInvalidParameterError(cause error) *goerrors.Error {
	message := "core: invalid parameter"
	if cause != nil {
		message = cause.Error()
	}
	return newClientError(cause, goerrors.CategoryBadInput, http.StatusBadRequest,
		ErrorCodeInvalidParameter, "", message, nil)
}

func newUnexpectedError(cause error) *goerrors.Error {
	message := "An unexpected error occurred"
	if cause != nil {
		message += ": " + cause.Error()
	}
	return newClientError(cause, goerrors.CategoryInternal, http.StatusInternalServerError,
		ErrorCodeUnknown, SubErrorUnexpectedException, message, nil)
}

// SubErrorOf returns the sub-error code carried by a client error.
func SubErrorOf(err error) (SubErrorCode, bool) {
	if err == nil {
		return "", false
	}
	var rich *goerrors.Error
	if !goerrors.As(err, &rich) || rich == nil {
		return "", false
	}
	raw, ok := rich.Metadata[MetadataSubError].(string)
	if !ok || raw == "" {
		return "", false
	}
	return SubErrorCode(raw), true
}

// HasSubError is an exact comparison; non client errors never match.
func HasSubError(err error, code SubErrorCode) bool {
	sub, ok := SubErrorOf(err)
	return ok && sub == code
}

func IsRetryable(err error) bool {
	sub, ok := SubErrorOf(err)
	return ok && sub.Retryable()
}

// ErrorCodeOf returns the text code of a client error.
func ErrorCodeOf(err error) string {
	var rich *goerrors.Error
	if err == nil || !goerrors.As(err, &rich) || rich == nil {
		return ""
	}
	return rich.TextCode
}

// EnsureClassified returns err unchanged when it already is a client error and
// otherwise runs it through the default classifier. Failures the classifier
// cannot attribute to the network become the generic unexpected member.
func EnsureClassified(err error) *goerrors.Error {
	if err == nil {
		return newUnexpectedError(nil)
	}
	var rich *goerrors.Error
	if goerrors.As(err, &rich) && rich != nil && knownErrorCode(rich.TextCode) {
		return rich
	}
	if sub := DefaultClassifier().SubError(err); sub != SubErrorUnexpectedException {
		return NewIOError(sub, err)
	}
	return newUnexpectedError(err)
}

func quoteName(provider ProviderName) string {
	return "\"" + string(provider) + "\""
}

func copyAnyMap(in map[string]any) map[string]any {
	if len(in) == 0 {
		return map[string]any{}
	}
	out := make(map[string]any, len(in))
	for key, value := range in {
		out[key] = value
	}
	return out
}
