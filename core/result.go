package core

import (
	"fmt"

	goerrors "github.com/goliatone/go-errors"
)

type ResultKind string

const (
	ResultKindSuccess   ResultKind = "success"
	ResultKindError     ResultKind = "error"
	ResultKindChallenge ResultKind = "challenge"
)

// Result is the terminal outcome of one command. The set of implementations
// is closed: SuccessResult, ErrorResult and ChallengeResult.
type Result interface {
	Kind() ResultKind
	CorrelationID() string
	Summary() string
	isResult()
}

type SuccessResult struct {
	Correlation string
	Payload     any
}

func (SuccessResult) Kind() ResultKind { return ResultKindSuccess }

func (r SuccessResult) CorrelationID() string { return r.Correlation }

func (r SuccessResult) Summary() string {
	if r.Payload == nil {
		return "success"
	}
	if s, ok := r.Payload.(fmt.Stringer); ok {
		return "success: " + s.String()
	}
	return fmt.Sprintf("success: %T", r.Payload)
}

func (SuccessResult) isResult() {}

type ErrorResult struct {
	Correlation string
	Err         *goerrors.Error
}

func (ErrorResult) Kind() ResultKind { return ResultKindError }

func (r ErrorResult) CorrelationID() string { return r.Correlation }

func (r ErrorResult) Summary() string {
	if r.Err == nil {
		return "error"
	}
	sub, _ := SubErrorOf(r.Err)
	return fmt.Sprintf("error: code=%s sub_error=%s message=%s", r.Err.TextCode, sub, r.Err.Message)
}

func (r ErrorResult) Error() string {
	if r.Err == nil {
		return "core: error result without error"
	}
	return r.Err.Error()
}

func (ErrorResult) isResult() {}

// ChallengeResult carries the continuation data for a flow that needs
// another round trip (redirect, OTP, password).
type ChallengeResult struct {
	Correlation       string
	ChallengeType     string
	ContinuationToken string
	Channel           string
	TargetLabel       string
}

func (ChallengeResult) Kind() ResultKind { return ResultKindChallenge }

func (r ChallengeResult) CorrelationID() string { return r.Correlation }

func (r ChallengeResult) Summary() string {
	return fmt.Sprintf("challenge: type=%s channel=%s", r.ChallengeType, r.Channel)
}

func (ChallengeResult) isResult() {}

func Success(correlationID string, payload any) Result {
	return SuccessResult{Correlation: correlationID, Payload: payload}
}

// Failure classifies err if it is not already a client error.
func Failure(correlationID string, err error) Result {
	return ErrorResult{Correlation: correlationID, Err: EnsureClassified(err)}
}

func AsFederatedCredential(result Result) (FederatedCredential, bool) {
	success, ok := result.(SuccessResult)
	if !ok {
		return FederatedCredential{}, false
	}
	credential, ok := success.Payload.(FederatedCredential)
	return credential, ok
}

// ResultError returns the error carried by an ErrorResult, or nil.
func ResultError(result Result) error {
	failure, ok := result.(ErrorResult)
	if !ok || failure.Err == nil {
		return nil
	}
	return failure.Err
}
