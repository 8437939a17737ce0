package storage

import (
	"github.com/rotisserie/eris"
	bolt "go.etcd.io/bbolt"
)

var boltBucket = []byte("kv")

// Bolt is the persistent leaf store, a single flat bucket in a bbolt file.
// Values crossing it are wire values: strings (or raw bytes), produced by a
// Transforming decorator sitting in front of it.
type Bolt struct {
	db *bolt.DB
}

// OpenBolt opens (creating if needed) the store file at path.
func OpenBolt(path string) (*Bolt, error) {
	db, err := bolt.Open(path, 0o600, nil)
	if err != nil {
		return nil, eris.Wrapf(err, "storage: cannot open store at %s", path)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(boltBucket)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, eris.Wrap(err, "storage: cannot initialize store bucket")
	}
	return &Bolt{db: db}, nil
}

// Close releases the underlying store file.
func (b *Bolt) Close() error {
	return eris.Wrap(b.db.Close(), "storage: close")
}

func (b *Bolt) Get(key string) (any, error) {
	var value string
	found := false
	err := b.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket(boltBucket).Get([]byte(key))
		if raw != nil {
			value = string(raw)
			found = true
		}
		return nil
	})
	if err != nil {
		return nil, eris.Wrapf(err, "storage: get %q", key)
	}
	if !found {
		return nil, ErrNotFound
	}
	return value, nil
}

func (b *Bolt) Set(key string, value any) error {
	raw, err := wireBytes(key, value)
	if err != nil {
		return err
	}
	err = b.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(boltBucket).Put([]byte(key), raw)
	})
	return eris.Wrapf(err, "storage: set %q", key)
}

func (b *Bolt) Has(key string) (bool, error) {
	found := false
	err := b.db.View(func(tx *bolt.Tx) error {
		found = tx.Bucket(boltBucket).Get([]byte(key)) != nil
		return nil
	})
	if err != nil {
		return false, eris.Wrapf(err, "storage: has %q", key)
	}
	return found, nil
}

func (b *Bolt) All(sel Selector) (map[string]any, error) {
	all := make(map[string]any)
	err := b.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(boltBucket).Cursor()
		if prefix, ok := sel.(prefixSelector); ok {
			// Prefix scans seek instead of walking the whole bucket.
			p := []byte(prefix)
			for k, v := c.Seek(p); k != nil && hasPrefix(k, p); k, v = c.Next() {
				all[string(k)] = string(v)
			}
			return nil
		}
		for k, v := c.First(); k != nil; k, v = c.Next() {
			if selectorMatches(sel, string(k)) {
				all[string(k)] = string(v)
			}
		}
		return nil
	})
	if err != nil {
		return nil, eris.Wrap(err, "storage: enumerate")
	}
	return all, nil
}

func hasPrefix(key, prefix []byte) bool {
	if len(key) < len(prefix) {
		return false
	}
	for i := range prefix {
		if key[i] != prefix[i] {
			return false
		}
	}
	return true
}

// wireBytes accepts the value shapes the persistent layer stores: encoded
// strings and raw bytes. Anything richer must be encoded by a Transforming
// decorator before it reaches this store.
func wireBytes(key string, value any) ([]byte, error) {
	switch v := value.(type) {
	case string:
		return []byte(v), nil
	case []byte:
		return v, nil
	default:
		return nil, eris.Errorf("storage: cannot persist %T under %q, wrap the store with a transformer", value, key)
	}
}

var _ Storage = (*Bolt)(nil)
