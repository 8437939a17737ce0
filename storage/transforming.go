package storage

import (
	"strconv"

	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
)

// Transformer turns rich values into wire values and back. Supports is
// consulted with the raw stored value on the read path and with the value
// being written on the write path, so it must recognize both shapes.
type Transformer interface {
	Supports(key string, value any) bool
	Encode(value any) (any, error)
	Decode(value any) (any, error)
}

// Transforming is a decorator applying the first matching transformer to
// values crossing it. Values no transformer claims pass through untouched.
type Transforming struct {
	decorated    Storage
	transformers []Transformer
	log          zerolog.Logger
}

// NewTransforming wraps decorated with an ordered, non-empty transformer list.
func NewTransforming(decorated Storage, transformers []Transformer, log zerolog.Logger) (*Transforming, error) {
	if len(transformers) == 0 {
		return nil, eris.New("storage: transformer list cannot be empty")
	}
	return &Transforming{
		decorated:    decorated,
		transformers: transformers,
		log:          log.With().Str("component", "storage.transforming").Logger(),
	}, nil
}

// Get decodes the stored value with the first matching transformer. A decode
// failure comes back as *DecodeError so callers can degrade to "absent".
func (t *Transforming) Get(key string) (any, error) {
	value, err := t.decorated.Get(key)
	if err != nil {
		return nil, err
	}
	for _, tr := range t.transformers {
		if tr.Supports(key, value) {
			decoded, err := tr.Decode(value)
			if err != nil {
				return nil, &DecodeError{Key: key, Err: err}
			}
			return decoded, nil
		}
	}
	return value, nil
}

func (t *Transforming) Set(key string, value any) error {
	for _, tr := range t.transformers {
		if tr.Supports(key, value) {
			encoded, err := tr.Encode(value)
			if err != nil {
				return eris.Wrapf(err, "storage: cannot encode value under %q", key)
			}
			return t.decorated.Set(key, encoded)
		}
	}
	return t.decorated.Set(key, value)
}

func (t *Transforming) Has(key string) (bool, error) {
	return t.decorated.Has(key)
}

// All decodes every matched entry of the batch. Entries that fail to decode
// are logged and omitted; a single corrupted legacy value must not take down
// an enumeration.
func (t *Transforming) All(sel Selector) (map[string]any, error) {
	all, err := t.decorated.All(sel)
	if err != nil {
		return nil, err
	}
	for key, value := range all {
		for _, tr := range t.transformers {
			if !tr.Supports(key, value) {
				continue
			}
			decoded, err := tr.Decode(value)
			if err != nil {
				t.log.Warn().Err(err).Str("key", key).Msg("dropping undecodable entry")
				delete(all, key)
				break
			}
			all[key] = decoded
			break
		}
	}
	return all, nil
}

var _ Storage = (*Transforming)(nil)

// IntTransformer encodes integers as decimal strings for keys matched by a
// suffix, e.g. the persisted score/time limits.
type IntTransformer struct {
	// KeySuffixes claims keys ending with any of these.
	KeySuffixes []string
}

func (t IntTransformer) Supports(key string, value any) bool {
	matched := false
	for _, suffix := range t.KeySuffixes {
		if len(key) >= len(suffix) && key[len(key)-len(suffix):] == suffix {
			matched = true
			break
		}
	}
	if !matched {
		return false
	}
	switch value.(type) {
	case int, string:
		return true
	default:
		return false
	}
}

func (t IntTransformer) Encode(value any) (any, error) {
	n, ok := value.(int)
	if !ok {
		return nil, eris.Errorf("storage: IntTransformer cannot encode %T", value)
	}
	return strconv.Itoa(n), nil
}

func (t IntTransformer) Decode(value any) (any, error) {
	s, ok := value.(string)
	if !ok {
		// Already decoded, e.g. read back through a cache.
		if n, isInt := value.(int); isInt {
			return n, nil
		}
		return nil, eris.Errorf("storage: IntTransformer cannot decode %T", value)
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil, eris.Wrapf(err, "storage: %q is not an integer", s)
	}
	return n, nil
}

var _ Transformer = IntTransformer{}
