// Package navigation keeps the refresh-token credential header of a browser
// hosted SSO session bound to the latest server issued nonce.
package navigation
