// Package google implements the Google-backed federated sign-in provider on top
// of a platform credential backend.
package google
