package signin

import (
	"context"
	"fmt"

	"github.com/goliatone/go-signin/command"
	"github.com/goliatone/go-signin/core"
	"github.com/goliatone/go-signin/navigation"
	"github.com/goliatone/go-signin/providers"
	"github.com/goliatone/go-signin/providers/google"
)

type Commands struct {
	SignInStart      *command.SignInStartCommand
	FederatedSignIn  *command.FederatedSignInCommand
	FederatedSignOut *command.FederatedSignOutCommand
}

type Option func(*clientOptions)

type clientOptions struct {
	core          []core.Option
	googleBackend google.CredentialBackend
	native        core.NativeAuthClient
	constructors  map[core.ProviderName]providers.Constructor
}

func WithRuntimeOptions(opts ...core.Option) Option {
	return func(options *clientOptions) {
		options.core = append(options.core, opts...)
	}
}

func WithGoogleBackend(backend google.CredentialBackend) Option {
	return func(options *clientOptions) {
		options.googleBackend = backend
	}
}

func WithNativeAuthClient(client core.NativeAuthClient) Option {
	return func(options *clientOptions) {
		options.native = client
	}
}

// WithProviderConstructor replaces the built-in constructor for name.
func WithProviderConstructor(name core.ProviderName, constructor providers.Constructor) Option {
	return func(options *clientOptions) {
		if options.constructors == nil {
			options.constructors = map[core.ProviderName]providers.Constructor{}
		}
		options.constructors[name] = constructor
	}
}

// Client is the application entry point for sign-in flows.
type Client struct {
	runtime    *core.Runtime
	factory    *providers.Factory
	controller *core.Controller
	dispatcher *command.Dispatcher
	commands   Commands
}

func New(cfg Config, opts ...Option) (*Client, error) {
	options := clientOptions{}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(&options)
	}

	rt, err := core.NewRuntime(cfg, options.core...)
	if err != nil {
		return nil, err
	}
	resolved := rt.Config()

	constructors := providers.Builtin(resolved, providers.BuiltinDependencies{
		GoogleBackend: options.googleBackend,
		Nonces:        rt.Nonces(),
		Telemetry:     rt.Telemetry(),
		Classifier:    rt.Classifier(),
	})
	for name, constructor := range options.constructors {
		constructors[name] = constructor
	}
	factory, err := providers.NewFactory(constructors, resolved.EnabledProviders()...)
	if err != nil {
		return nil, err
	}

	controller := core.NewController(options.native, factory, rt.Telemetry())
	client := &Client{
		runtime:    rt,
		factory:    factory,
		controller: controller,
		dispatcher: command.NewDispatcher(rt.Telemetry(), resolved.Dispatcher.MaxConcurrent),
		commands: Commands{
			SignInStart:      command.NewSignInStartCommand(controller),
			FederatedSignIn:  command.NewFederatedSignInCommand(controller),
			FederatedSignOut: command.NewFederatedSignOutCommand(controller),
		},
	}
	rt.Logger().Info("signin client ready", "providers", factory.Names())
	return client, nil
}

func (c *Client) Runtime() *core.Runtime {
	if c == nil {
		return nil
	}
	return c.runtime
}

func (c *Client) Commands() Commands {
	if c == nil {
		return Commands{}
	}
	return c.commands
}

// SignIn suspends until the federated sign-in completes or ctx is done. A done
// ctx only abandons the wait; the attempt still runs to completion.
func (c *Client) SignIn(ctx context.Context, params SignInParameters) (Result, error) {
	if err := c.ready(); err != nil {
		return nil, err
	}
	return c.dispatcher.Execute(ctx, c.signInCommand(params))
}

// SignInSync blocks the calling goroutine until the result is ready. Never
// call it from the goroutine that drives navigation events.
func (c *Client) SignInSync(params SignInParameters) (Result, error) {
	if err := c.ready(); err != nil {
		return nil, err
	}
	return c.dispatcher.ExecuteBlocking(c.signInCommand(params)), nil
}

// SignInAsync returns immediately and delivers the result to one of the
// callbacks on a worker goroutine. It returns the correlation id.
func (c *Client) SignInAsync(params SignInParameters, onSuccess func(Result), onFailure func(ErrorResult)) (string, error) {
	if err := c.ready(); err != nil {
		return "", err
	}
	cmd := c.signInCommand(params)
	c.dispatcher.ExecuteWithCallback(cmd, onSuccess, onFailure)
	return cmd.CorrelationID(), nil
}

func (c *Client) SignOut(ctx context.Context, params SignInParameters) (Result, error) {
	if err := c.ready(); err != nil {
		return nil, err
	}
	cmd := command.New(command.FederatedSignOutMessage{Parameters: params}, c.commands.FederatedSignOut)
	return c.dispatcher.Execute(ctx, cmd)
}

func (c *Client) SignInStart(ctx context.Context, params SignInStartParameters) (Result, error) {
	if err := c.ready(); err != nil {
		return nil, err
	}
	cmd := command.New(command.SignInStartMessage{Parameters: params}, c.commands.SignInStart)
	return c.dispatcher.Execute(ctx, cmd)
}

// NewInterceptor returns a navigation interceptor that rotates the refresh
// token credential header through issuer.
func (c *Client) NewInterceptor(issuer RefreshTokenCredentialIssuer, opts ...navigation.Option) *navigation.Interceptor {
	if c == nil {
		return navigation.New(issuer, opts...)
	}
	return navigation.FromRuntime(c.runtime, issuer, opts...)
}

func (c *Client) signInCommand(params SignInParameters) *command.Command {
	return command.New(command.FederatedSignInMessage{Parameters: params}, c.commands.FederatedSignIn)
}

func (c *Client) ready() error {
	if c == nil || c.dispatcher == nil || c.controller == nil {
		return fmt.Errorf("signin: client is not initialized")
	}
	return nil
}
