// Package security provides refresh-token credential issuers used by the
// navigation interceptor to rotate bound credential headers.
package security
