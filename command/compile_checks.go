package command

import (
	gocmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-signin/core"
)

var (
	_ gocmd.Commander[SignInStartMessage]      = (*SignInStartCommand)(nil)
	_ gocmd.Commander[FederatedSignInMessage]  = (*FederatedSignInCommand)(nil)
	_ gocmd.Commander[FederatedSignOutMessage] = (*FederatedSignOutCommand)(nil)

	_ FlowController = (*core.Controller)(nil)
)
