package service

import (
	"fmt"
	"math/rand/v2"
	"time"
)

const referenceAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// ReferenceGenerator produces booking references of the form
// "T" + the last six digits of the epoch millisecond clock + three random
// uppercase alphanumerics, e.g. "T482913K7Q". References are not
// guaranteed unique; the tickets table enforces that and callers retry on
// collision.
type ReferenceGenerator struct {
	Now  func() time.Time
	IntN func(n int) int
}

// NewReferenceGenerator returns a generator backed by the wall clock and
// math/rand/v2.
func NewReferenceGenerator() *ReferenceGenerator {
	return &ReferenceGenerator{Now: time.Now, IntN: rand.IntN}
}

// Next returns a new reference.
func (g *ReferenceGenerator) Next() string {
	ms := g.Now().UnixMilli() % 1_000_000
	var suffix [3]byte
	for i := range suffix {
		suffix[i] = referenceAlphabet[g.IntN(len(referenceAlphabet))]
	}
	return fmt.Sprintf("T%06d%s", ms, suffix[:])
}
