// Package providers resolves federated sign-in providers by name from an
// explicit constructor table.
package providers
