// Package gocommand exposes the sign-in commands on the go-command message
// bus so hosts that already route work through it can dispatch sign-in
// messages like any other command.
package gocommand

import (
	"context"
	"fmt"
	"strings"

	gocmd "github.com/goliatone/go-command"
	commanddispatcher "github.com/goliatone/go-command/dispatcher"
	"github.com/goliatone/go-command/runner"
	signincommand "github.com/goliatone/go-signin/command"
	"github.com/goliatone/go-signin/core"
)

// ValidateMessageContract enforces Type() plus optional Validate() contract.
func ValidateMessageContract(msg any) error {
	if err := gocmd.ValidateMessage(msg); err != nil {
		return err
	}
	m, ok := msg.(gocmd.Message)
	if !ok {
		return fmt.Errorf("gocommand: message must implement Type() string")
	}
	if strings.TrimSpace(m.Type()) == "" {
		return fmt.Errorf("gocommand: message type is required")
	}
	return nil
}

// Bus holds the subscriptions of the sign-in handlers on the process-wide
// go-command dispatcher.
type Bus struct {
	subscriptions []commanddispatcher.Subscription
}

// Subscribe registers handlers for sign-in start, federated sign-in and
// federated sign-out against controller.
func Subscribe(controller signincommand.FlowController, runnerOpts ...runner.Option) (*Bus, error) {
	if controller == nil {
		return nil, fmt.Errorf("gocommand: controller is required")
	}
	bus := &Bus{}
	bus.subscriptions = append(bus.subscriptions,
		commanddispatcher.SubscribeCommand[signincommand.SignInStartMessage](signincommand.NewSignInStartCommand(controller), runnerOpts...),
		commanddispatcher.SubscribeCommand[signincommand.FederatedSignInMessage](signincommand.NewFederatedSignInCommand(controller), runnerOpts...),
		commanddispatcher.SubscribeCommand[signincommand.FederatedSignOutMessage](signincommand.NewFederatedSignOutCommand(controller), runnerOpts...),
	)
	return bus, nil
}

func (b *Bus) Close() {
	if b == nil {
		return
	}
	for _, subscription := range b.subscriptions {
		if subscription != nil {
			subscription.Unsubscribe()
		}
	}
	b.subscriptions = nil
}

// Dispatch validates msg, sends it through the bus and returns the result
// the handler stored. Results carry the correlation id found on ctx.
func Dispatch[T gocmd.Message](ctx context.Context, msg T) (core.Result, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	correlationID := core.CorrelationIDFromContext(ctx)
	if err := ValidateMessageContract(msg); err != nil {
		return core.Failure(correlationID, err), err
	}
	collector := gocmd.NewResult[core.Result]()
	err := commanddispatcher.Dispatch(gocmd.ContextWithResult(ctx, collector), msg)
	if result, ok := collector.Load(); ok && result != nil {
		return result, err
	}
	if err == nil {
		err = signincommand.ErrNoResult
	}
	return core.Failure(correlationID, err), err
}
