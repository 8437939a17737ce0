package storage

// Scoped is a decorator prepending a fixed prefix to every key, letting
// several independent logical stores share one backend. Nesting scopes
// composes: Scoped(Scoped(s, "a."), "b.") behaves like Scoped(s, "a.b.").
type Scoped struct {
	decorated Storage
	prefix    string
}

// NewScoped wraps decorated under the given key prefix.
func NewScoped(decorated Storage, prefix string) *Scoped {
	return &Scoped{decorated: decorated, prefix: prefix}
}

func (s *Scoped) Get(key string) (any, error) {
	return s.decorated.Get(s.prefix + key)
}

func (s *Scoped) Set(key string, value any) error {
	return s.decorated.Set(s.prefix+key, value)
}

func (s *Scoped) Has(key string) (bool, error) {
	return s.decorated.Has(s.prefix + key)
}

// All lists this scope by default (nil selector). Everything is the escape
// hatch exposing the whole underlying store. A string prefix narrows within
// the scope; a pattern passes through unscoped since patterns match whole key
// shapes, not prefixes. Returned keys keep the scope prefix.
func (s *Scoped) All(sel Selector) (map[string]any, error) {
	switch sel := sel.(type) {
	case nil:
		return s.decorated.All(Prefix(s.prefix))
	case everything:
		return s.decorated.All(Everything)
	case prefixSelector:
		return s.decorated.All(Prefix(s.prefix + string(sel)))
	default:
		return s.decorated.All(sel)
	}
}

var _ Storage = (*Scoped)(nil)
