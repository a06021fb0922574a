package dataloader

import "context"

// Registry is a bundle of independently-keyed loaders stashed on a
// context.Context for the lifetime of one request — the motivating scenario
// from the package doc: a GraphQL (or similar) resolver tree that wants a
// fresh, per-request *Loader for each relation it resolves, reachable from
// whatever context each resolver already receives.
type Registry struct {
	loaders map[string]interface{}
}

// NewRegistry constructs an empty Registry.
func NewRegistry() *Registry {
	return &Registry{loaders: make(map[string]interface{})}
}

// Register stashes loader under name. It panics if name is already
// registered, since that is always a wiring mistake made once at request
// setup time, not a runtime condition a caller needs to recover from.
func (r *Registry) Register(name string, loader interface{}) *Registry {
	if _, exists := r.loaders[name]; exists {
		panic("dataloader: loader " + name + " already registered")
	}
	r.loaders[name] = loader
	return r
}

type registryCtxKey struct{}

// NewContext returns a context carrying r, retrievable with FromContext.
func NewContext(ctx context.Context, r *Registry) context.Context {
	return context.WithValue(ctx, registryCtxKey{}, r)
}

// FromContext returns the Registry stashed on ctx by NewContext, if any.
func FromContext(ctx context.Context) (*Registry, bool) {
	r, ok := ctx.Value(registryCtxKey{}).(*Registry)
	return r, ok
}

// LoaderFromContext fetches the *Loader[K, V] registered under name on the
// Registry carried by ctx. It returns false if ctx carries no Registry, no
// loader is registered under name, or the registered value is not a
// *Loader[K, V] with these exact type parameters.
func LoaderFromContext[K comparable, V any](ctx context.Context, name string) (*Loader[K, V], bool) {
	r, ok := FromContext(ctx)
	if !ok {
		return nil, false
	}
	v, ok := r.loaders[name]
	if !ok {
		return nil, false
	}
	l, ok := v.(*Loader[K, V])
	return l, ok
}
