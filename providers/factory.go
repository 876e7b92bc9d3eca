package providers

import (
	"fmt"
	"sort"

	"github.com/goliatone/go-signin/core"
)

// Constructor builds a provider for one request.
type Constructor func(params core.SignInParameters) (core.FederatedSignInProvider, error)

// Factory maps every enumerated provider name to exactly one constructor. The
// table is fixed at construction and never mutated, so lookups need no lock.
type Factory struct {
	constructors map[core.ProviderName]Constructor
	enabled      map[core.ProviderName]struct{}
}

// NewFactory fails when an enumerated or enabled provider has no constructor.
// An empty enabled list enables every enumerated provider.
func NewFactory(constructors map[core.ProviderName]Constructor, enabled ...core.ProviderName) (*Factory, error) {
	table := make(map[core.ProviderName]Constructor, len(constructors))
	for name, constructor := range constructors {
		parsed, err := core.ParseProviderName(string(name))
		if err != nil {
			return nil, core.NewInvalidParameterError(err)
		}
		if constructor == nil {
			return nil, core.NewProviderNotRegisteredError(parsed)
		}
		table[parsed] = constructor
	}
	for _, name := range core.ProviderNames() {
		if _, ok := table[name]; !ok {
			return nil, core.NewProviderNotRegisteredError(name)
		}
	}

	if len(enabled) == 0 {
		enabled = core.ProviderNames()
	}
	enabledSet := make(map[core.ProviderName]struct{}, len(enabled))
	for _, name := range enabled {
		if _, ok := table[name]; !ok {
			return nil, core.NewProviderNotRegisteredError(name)
		}
		enabledSet[name] = struct{}{}
	}
	return &Factory{constructors: table, enabled: enabledSet}, nil
}

// Provider returns a new provider instance on every call.
func (f *Factory) Provider(params core.SignInParameters) (core.FederatedSignInProvider, error) {
	if f == nil {
		return nil, core.NewProviderNotRegisteredError(params.ProviderName)
	}
	name, err := core.ParseProviderName(string(params.ProviderName))
	if err != nil {
		return nil, core.NewInvalidParameterError(err)
	}
	constructor, ok := f.constructors[name]
	if !ok {
		return nil, core.NewProviderNotRegisteredError(name)
	}
	if _, ok := f.enabled[name]; !ok {
		return nil, core.NewInvalidParameterError(fmt.Errorf("providers: provider %q is disabled", name))
	}
	provider, err := constructor(params)
	if err != nil {
		return nil, core.EnsureClassified(err)
	}
	if provider == nil {
		return nil, core.NewProviderNotRegisteredError(name)
	}
	return provider, nil
}

func (f *Factory) Names() []core.ProviderName {
	if f == nil {
		return nil
	}
	names := make([]core.ProviderName, 0, len(f.enabled))
	for name := range f.enabled {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}

var _ core.ProviderResolver = (*Factory)(nil)
