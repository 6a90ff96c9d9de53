package shortlink

import (
	"fmt"
	"math"
	"sync"

	"github.com/jaevor/go-nanoid"
)

const base62Alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

const (
	// DefaultCodeLength is the starting code length.
	DefaultCodeLength = 6
	// MaxCodeLength bounds keyspace growth.
	MaxCodeLength = 16
)

// CodeGenerator produces short codes. Implementations must be safe for
// concurrent use; uniqueness is enforced by the store, not the generator.
type CodeGenerator interface {
	Generate() string
	Length() int
	Grow() error
}

// Base62Generator generates crypto-random base62 codes of an adjustable
// length. Length only ever grows, one character at a time.
type Base62Generator struct {
	mu      sync.RWMutex
	length  int
	newCode func() string
}

// NewBase62Generator creates a generator producing codes of the given
// length. Non-positive lengths fall back to DefaultCodeLength.
func NewBase62Generator(length int) (*Base62Generator, error) {
	if length <= 0 {
		length = DefaultCodeLength
	}

	g := &Base62Generator{}
	if err := g.setLength(length); err != nil {
		return nil, err
	}

	return g, nil
}

func (g *Base62Generator) setLength(length int) error {
	newCode, err := nanoid.CustomASCII(base62Alphabet, length)
	if err != nil {
		return fmt.Errorf("build code generator: %w", err)
	}

	g.length = length
	g.newCode = newCode

	return nil
}

// Generate returns a new random code at the current length.
func (g *Base62Generator) Generate() string {
	g.mu.RLock()
	defer g.mu.RUnlock()

	return g.newCode()
}

// Length returns the current code length.
func (g *Base62Generator) Length() int {
	g.mu.RLock()
	defer g.mu.RUnlock()

	return g.length
}

// Grow increases the code length by one character, up to MaxCodeLength.
func (g *Base62Generator) Grow() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.length >= MaxCodeLength {
		return fmt.Errorf("%w: length %d at maximum", ErrKeyspaceExhausted, g.length)
	}

	return g.setLength(g.length + 1)
}

// Capacity returns the size of the keyspace at the current length.
func (g *Base62Generator) Capacity() float64 {
	return math.Pow(float64(len(base62Alphabet)), float64(g.Length()))
}

// Compile-time check.
var _ CodeGenerator = (*Base62Generator)(nil)
