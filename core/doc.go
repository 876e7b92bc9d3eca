// Package core contains the sign-in domain contracts (results, federated
// credentials, providers, controllers), the transport error taxonomy, nonce
// generation and the shared runtime wiring. Provider, transport and navigation
// adapters depend on this package; core must not depend on them.
package core
