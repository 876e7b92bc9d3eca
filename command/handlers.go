package command

import (
	"context"

	gocmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-signin/core"
)

// FlowController is the controller surface the handlers delegate to.
type FlowController interface {
	SignInStart(ctx context.Context, params core.SignInStartParameters) core.Result
	FederatedSignIn(ctx context.Context, params core.SignInParameters) core.Result
	FederatedSignOut(ctx context.Context, params core.SignInParameters) core.Result
}

type SignInStartCommand struct {
	controller FlowController
}

func NewSignInStartCommand(controller FlowController) *SignInStartCommand {
	return &SignInStartCommand{controller: controller}
}

func (c *SignInStartCommand) Execute(ctx context.Context, msg SignInStartMessage) error {
	if c == nil || c.controller == nil {
		return commandDependencyError("command: sign-in start controller is required")
	}
	return storeResult(ctx, c.controller.SignInStart(ctx, msg.Parameters))
}

type FederatedSignInCommand struct {
	controller FlowController
}

func NewFederatedSignInCommand(controller FlowController) *FederatedSignInCommand {
	return &FederatedSignInCommand{controller: controller}
}

func (c *FederatedSignInCommand) Execute(ctx context.Context, msg FederatedSignInMessage) error {
	if c == nil || c.controller == nil {
		return commandDependencyError("command: federated sign-in controller is required")
	}
	return storeResult(ctx, c.controller.FederatedSignIn(ctx, msg.Parameters))
}

type FederatedSignOutCommand struct {
	controller FlowController
}

func NewFederatedSignOutCommand(controller FlowController) *FederatedSignOutCommand {
	return &FederatedSignOutCommand{controller: controller}
}

func (c *FederatedSignOutCommand) Execute(ctx context.Context, msg FederatedSignOutMessage) error {
	if c == nil || c.controller == nil {
		return commandDependencyError("command: federated sign-out controller is required")
	}
	return storeResult(ctx, c.controller.FederatedSignOut(ctx, msg.Parameters))
}

// storeResult hands the result to the collector on ctx and returns the error an
// ErrorResult carries, so plain go-command callers still see failures.
func storeResult(ctx context.Context, result core.Result) error {
	if collector := gocmd.ResultFromContext[core.Result](ctx); collector != nil {
		collector.Store(result)
	}
	return core.ResultError(result)
}
