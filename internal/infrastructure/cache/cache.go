// Package cache provides per-analyzer result caching with at-most-one
// in-flight computation per key. Analyzers consult the cache with the
// normalized sentence digest as key; concurrent requests for the same
// key share a single computation.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// ComputeFunc produces the value for a key on a cache miss. The returned
// value must be JSON-serializable.
type ComputeFunc func(ctx context.Context) (interface{}, error)

// Cache is the contract analyzers depend on. GetOrCompute returns the
// cached value for key, or invokes compute and stores its result. For a
// fixed key, concurrent calls invoke compute at most once; the other
// callers receive the same result. A compute error is returned to every
// waiting caller and nothing is stored.
type Cache interface {
	GetOrCompute(ctx context.Context, key string, dest interface{}, compute ComputeFunc) (hit bool, err error)
	Delete(ctx context.Context, keys ...string) error
	Close() error
}

// Serializer converts cached values to and from bytes.
type Serializer interface {
	Marshal(v interface{}) ([]byte, error)
	Unmarshal(data []byte, v interface{}) error
}

type jsonSerializer struct{}

func (s *jsonSerializer) Marshal(v interface{}) ([]byte, error) {
	return json.Marshal(v)
}

func (s *jsonSerializer) Unmarshal(data []byte, v interface{}) error {
	return json.Unmarshal(data, v)
}

// Key builds the cache key for an analyzer and a normalized sentence.
// The sentence text is digested so keys stay bounded regardless of input
// size, and identical sentences across submissions share entries.
func Key(analyzer, normalized string) string {
	sum := sha256.Sum256([]byte(normalized))
	return analyzer + ":" + hex.EncodeToString(sum[:])
}
