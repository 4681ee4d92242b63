// Package code generates human-readable document codes.
// Pattern: PREFIX-YYYYMMDD-XXXXXX (e.g., IC-20260829-4F7KQZ).
// The random suffix keeps collisions within reasonable bounds without a
// database round trip; uniqueness is additionally enforced by the store.
package code

import (
	"crypto/rand"
	"fmt"
	"time"
)

// alphabet excludes ambiguous characters (0/O, 1/I/L).
const alphabet = "23456789ABCDEFGHJKMNPQRSTUVWXYZ"

// Config holds code generation configuration.
type Config struct {
	// Prefix added to all codes (e.g., "IC" for inventory checks)
	Prefix string

	// SuffixLen is the random suffix length (default 6)
	SuffixLen int
}

// DefaultConfig returns sensible defaults.
func DefaultConfig(prefix string) Config {
	return Config{
		Prefix:    prefix,
		SuffixLen: 6,
	}
}

// Generator produces document codes.
type Generator struct {
	cfg Config
}

// New creates a generator with the given configuration.
func New(cfg Config) *Generator {
	if cfg.SuffixLen <= 0 {
		cfg.SuffixLen = 6
	}
	return &Generator{cfg: cfg}
}

// Next returns a new code for the given moment.
func (g *Generator) Next(now time.Time) (string, error) {
	buf := make([]byte, g.cfg.SuffixLen)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random suffix: %w", err)
	}
	for i, b := range buf {
		buf[i] = alphabet[int(b)%len(alphabet)]
	}
	return fmt.Sprintf("%s-%s-%s", g.cfg.Prefix, now.UTC().Format("20060102"), buf), nil
}
