// Package storage provides a flat string-keyed store contract together with a
// set of composable decorators (caching, key scoping, value transformation)
// and two leaf implementations (in-memory and bbolt-backed). Decorators wrap
// any Storage, so chains like Scoped(Caching(Transforming(Bolt))) are built by
// plain constructor injection.
package storage

import (
	"fmt"
	"regexp"

	"github.com/rotisserie/eris"
)

// ErrNotFound is returned by Get when no value is stored under the key.
var ErrNotFound = eris.New("storage: key not found")

// Storage is the contract every store and decorator satisfies. Set must make
// a subsequent Get/Has on the same key observe the new value synchronously
// within the process.
type Storage interface {
	// Get returns the value stored under key, or ErrNotFound.
	Get(key string) (any, error)
	// Set stores value under key.
	Set(key string, value any) error
	// Has reports whether a value is stored under key.
	Has(key string) (bool, error)
	// All returns the stored entries matched by the selector. A nil selector
	// applies the store's default behaviour (leaf stores return everything,
	// a scoped store lists its own scope). Returned keys keep whatever prefix
	// the underlying store uses unless a decorator strips it.
	All(sel Selector) (map[string]any, error)
}

// Selector narrows an All enumeration. The nil Selector means "default".
type Selector interface {
	matches(key string) bool
}

type everything struct{}

func (everything) matches(string) bool { return true }

// Everything is the explicit no-filter selector. Passing it through a scoped
// store exposes the whole underlying store, not just the scope.
var Everything Selector = everything{}

type prefixSelector string

func (p prefixSelector) matches(key string) bool {
	return len(key) >= len(p) && key[:len(p)] == string(p)
}

// Prefix selects keys starting with the given string.
func Prefix(prefix string) Selector { return prefixSelector(prefix) }

type patternSelector struct {
	re *regexp.Regexp
}

func (p patternSelector) matches(key string) bool {
	loc := p.re.FindStringIndex(key)
	return loc != nil && loc[0] == 0 && loc[1] == len(key)
}

// Pattern selects keys fully matched by the given expression.
func Pattern(re *regexp.Regexp) Selector { return patternSelector{re: re} }

// selectorMatches applies the leaf-store default: nil and Everything accept
// every key.
func selectorMatches(sel Selector, key string) bool {
	if sel == nil {
		return true
	}
	return sel.matches(key)
}

// DecodeError reports a stored value that a transformer could not decode.
// Callers treat it as "record absent" rather than failing; see Transforming.
type DecodeError struct {
	Key string
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("storage: cannot decode value under %q: %v", e.Key, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }
