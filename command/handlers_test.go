package command

import (
	"context"
	"testing"

	gocmd "github.com/goliatone/go-command"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-signin/core"
)

func TestFederatedSignInCommand_ExecuteDelegatesAndStoresResult(t *testing.T) {
	controller := &stubController{}
	cmd := NewFederatedSignInCommand(controller)
	collector := gocmd.NewResult[core.Result]()
	ctx := gocmd.ContextWithResult(context.Background(), collector)

	err := cmd.Execute(ctx, FederatedSignInMessage{Parameters: core.SignInParameters{ProviderName: core.ProviderGoogle}})
	if err != nil {
		t.Fatalf("execute federated sign-in: %v", err)
	}
	result, ok := collector.Load()
	if !ok {
		t.Fatalf("expected result to be stored")
	}
	credential, ok := core.AsFederatedCredential(result)
	if !ok || credential.Token() != "abc123" {
		t.Fatalf("unexpected result: %#v", result)
	}
}

func TestFederatedSignOutCommand_ReturnsCarriedError(t *testing.T) {
	failure := core.NewIOError(core.SubErrorNoNetwork, nil)
	controller := &stubController{
		signOutFn: func(ctx context.Context, _ core.SignInParameters) core.Result {
			return core.Failure("corr", failure)
		},
	}
	cmd := NewFederatedSignOutCommand(controller)
	err := cmd.Execute(context.Background(), FederatedSignOutMessage{Parameters: core.SignInParameters{ProviderName: core.ProviderGoogle}})
	if err != failure {
		t.Fatalf("expected classified error to be returned, got %v", err)
	}
}

func TestSignInStartCommand_NilControllerReturnsRichError(t *testing.T) {
	var cmd *SignInStartCommand
	err := cmd.Execute(context.Background(), SignInStartMessage{})
	var rich *goerrors.Error
	if !goerrors.As(err, &rich) {
		t.Fatalf("expected go-errors envelope, got %T", err)
	}
	if rich.Category != goerrors.CategoryInternal {
		t.Fatalf("expected internal category, got %q", rich.Category)
	}
	if !core.HasSubError(err, core.SubErrorUnexpectedException) {
		t.Fatalf("expected unexpected exception sub error")
	}
}

func TestMessages_ValidateReturnsRichError(t *testing.T) {
	cases := []struct {
		name string
		msg  interface{ Validate() error }
	}{
		{name: "sign in start", msg: SignInStartMessage{}},
		{name: "sign in", msg: FederatedSignInMessage{}},
		{name: "sign out", msg: FederatedSignOutMessage{Parameters: core.SignInParameters{ProviderName: "myspace"}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.msg.Validate()
			var rich *goerrors.Error
			if !goerrors.As(err, &rich) {
				t.Fatalf("expected go-errors envelope, got %T", err)
			}
			if rich.TextCode != core.ErrorCodeInvalidParameter {
				t.Fatalf("expected %q text code, got %q", core.ErrorCodeInvalidParameter, rich.TextCode)
			}
		})
	}
}
