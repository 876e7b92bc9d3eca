package command

import (
	"strings"

	"github.com/goliatone/go-signin/core"
)

const (
	TypeSignInStart      = "signin.command.sign_in_start"
	TypeFederatedSignIn  = "signin.command.federated_sign_in"
	TypeFederatedSignOut = "signin.command.federated_sign_out"
)

type SignInStartMessage struct {
	Parameters core.SignInStartParameters
}

func (SignInStartMessage) Type() string { return TypeSignInStart }

func (m SignInStartMessage) Validate() error {
	if strings.TrimSpace(m.Parameters.Username) == "" {
		return commandValidationError("username", "username is required")
	}
	return nil
}

type FederatedSignInMessage struct {
	Parameters core.SignInParameters
}

func (FederatedSignInMessage) Type() string { return TypeFederatedSignIn }

func (m FederatedSignInMessage) Validate() error {
	return validateProvider(m.Parameters.ProviderName)
}

type FederatedSignOutMessage struct {
	Parameters core.SignInParameters
}

func (FederatedSignOutMessage) Type() string { return TypeFederatedSignOut }

func (m FederatedSignOutMessage) Validate() error {
	return validateProvider(m.Parameters.ProviderName)
}

func validateProvider(name core.ProviderName) error {
	if strings.TrimSpace(string(name)) == "" {
		return commandValidationError("provider_name", "provider name is required")
	}
	if _, err := core.ParseProviderName(string(name)); err != nil {
		return commandValidationError("provider_name", err.Error())
	}
	return nil
}
