// Package ids generates opaque identifiers for board records.
package ids

import (
	"fmt"
	"math/rand/v2"
	"sync"

	"github.com/google/uuid"
)

// Length is the size of identifiers produced by Random.
const Length = 9

const alphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// Strategy names accepted by New.
const (
	StrategyRandom = "random"
	StrategyUUID   = "uuid"
)

// Generator produces identifiers. Implementations make no uniqueness promise unless
// wrapped in Unique.
type Generator interface {
	NewID() string
}

// GeneratorFunc adapts a function to Generator.
type GeneratorFunc func() string

// NewID implements Generator.
func (f GeneratorFunc) NewID() string { return f() }

// Random produces short lowercase base36 identifiers from a non-cryptographic source.
type Random struct{}

// NewID implements Generator.
func (Random) NewID() string {
	b := make([]byte, Length)
	for i := range b {
		b[i] = alphabet[rand.IntN(len(alphabet))]
	}
	return string(b)
}

// UUID produces random 128-bit identifiers.
type UUID struct{}

// NewID implements Generator.
func (UUID) NewID() string {
	return uuid.NewString()
}

// New returns the generator for a strategy name. An empty name selects random.
func New(strategy string) (Generator, error) {
	switch strategy {
	case "", StrategyRandom:
		return Random{}, nil
	case StrategyUUID:
		return UUID{}, nil
	default:
		return nil, fmt.Errorf("unknown id strategy %q", strategy)
	}
}

// Unique wraps a Generator and never hands out the same identifier twice.
type Unique struct {
	gen  Generator
	mu   sync.Mutex
	used map[string]struct{}
}

// NewUnique creates a Unique over gen.
func NewUnique(gen Generator) *Unique {
	if gen == nil {
		gen = Random{}
	}
	return &Unique{gen: gen, used: make(map[string]struct{})}
}

// Reserve marks identifiers as taken, typically the ids of records already held.
func (u *Unique) Reserve(ids ...string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	for _, id := range ids {
		u.used[id] = struct{}{}
	}
}

// NewID implements Generator, retrying until the wrapped generator yields an unused id.
func (u *Unique) NewID() string {
	u.mu.Lock()
	defer u.mu.Unlock()
	for {
		id := u.gen.NewID()
		if _, taken := u.used[id]; !taken {
			u.used[id] = struct{}{}
			return id
		}
	}
}
