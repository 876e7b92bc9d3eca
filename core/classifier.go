package core

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"io"
	"net"
	"os"
	"syscall"

	goerrors "github.com/goliatone/go-errors"
)

// ErrNoNetworkCapability is reported by platform probes when no network
// interface is usable.
var ErrNoNetworkCapability = errors.New("core: no network capability")

// ClassificationRule maps a raw failure to a sub-error code. Rules are
// evaluated in order and the first match wins.
type ClassificationRule struct {
	Name    string
	SubCode SubErrorCode
	Match   func(err error) bool
}

type Classifier struct {
	rules []ClassificationRule
}

// NewClassifier builds a classifier with the default rule order: timeouts,
// then disconnect/handshake/refused, then DNS/no-route. Extra rules are
// evaluated after the defaults and before the catch-all.
func NewClassifier(extra ...ClassificationRule) *Classifier {
	rules := []ClassificationRule{
		{Name: "timeout", SubCode: SubErrorConnectionTimeout, Match: isTimeout},
		{Name: "unavailable", SubCode: SubErrorNetworkTemporarilyUnavailable, Match: isTemporarilyUnavailable},
		{Name: "no_network", SubCode: SubErrorNoNetwork, Match: isNoNetwork},
	}
	for _, rule := range extra {
		if rule.Match == nil || rule.SubCode == "" {
			continue
		}
		rules = append(rules, rule)
	}
	return &Classifier{rules: rules}
}

var defaultClassifier = NewClassifier()

func DefaultClassifier() *Classifier {
	return defaultClassifier
}

// SubError returns the taxonomy member for a raw failure. A client error that
// already carries a sub-error code keeps it.
func (c *Classifier) SubError(err error) SubErrorCode {
	if err == nil {
		return SubErrorUnexpectedException
	}
	if sub, ok := SubErrorOf(err); ok {
		return sub
	}
	rules := defaultClassifier.rules
	if c != nil && len(c.rules) > 0 {
		rules = c.rules
	}
	for _, rule := range rules {
		if rule.Match(err) {
			return rule.SubCode
		}
	}
	return SubErrorUnexpectedException
}

// Classify wraps a raw transport failure into an io_error client error
// carrying the original cause. Already classified errors are returned as is.
func (c *Classifier) Classify(err error) *goerrors.Error {
	var rich *goerrors.Error
	if err != nil && goerrors.As(err, &rich) && rich != nil && knownErrorCode(rich.TextCode) {
		if _, ok := SubErrorOf(rich); ok {
			return rich
		}
	}
	return NewIOError(c.SubError(err), err)
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}
	if errors.Is(err, syscall.ETIMEDOUT) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func isTemporarilyUnavailable(err error) bool {
	if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
		return true
	}
	if errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ECONNABORTED) || errors.Is(err, syscall.EPIPE) {
		return true
	}
	var recordErr tls.RecordHeaderError
	if errors.As(err, &recordErr) {
		return true
	}
	var alertErr tls.AlertError
	if errors.As(err, &alertErr) {
		return true
	}
	var verifyErr *tls.CertificateVerificationError
	if errors.As(err, &verifyErr) {
		return true
	}
	var unknownAuthority x509.UnknownAuthorityError
	if errors.As(err, &unknownAuthority) {
		return true
	}
	var hostnameErr x509.HostnameError
	return errors.As(err, &hostnameErr)
}

func isNoNetwork(err error) bool {
	if errors.Is(err, ErrNoNetworkCapability) {
		return true
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}
	return errors.Is(err, syscall.EHOSTUNREACH) || errors.Is(err, syscall.ENETUNREACH) ||
		errors.Is(err, syscall.ENETDOWN)
}
