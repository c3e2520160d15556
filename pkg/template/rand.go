package template

import (
	mathrand "math/rand/v2"

	"github.com/google/uuid"
)

// rngIntN returns a random int in [0, n) using the provided RNG if non-nil,
// otherwise falls back to the global math/rand/v2 source.
func rngIntN(rng *mathrand.Rand, n int) int {
	if n <= 0 {
		return 0
	}
	if rng != nil {
		return rng.IntN(n)
	}
	return mathrand.IntN(n)
}

// rngFloat64 returns a random float64 in [0, 1).
func rngFloat64(rng *mathrand.Rand) float64 {
	if rng != nil {
		return rng.Float64()
	}
	return mathrand.Float64()
}

// rngPick returns a random element of items.
func rngPick(rng *mathrand.Rand, items []string) string {
	return items[rngIntN(rng, len(items))]
}

// rngUUID generates a UUID v4 string. With a seeded RNG the output is
// deterministic; otherwise crypto/rand is used.
func rngUUID(rng *mathrand.Rand) string {
	if rng == nil {
		return uuid.NewString()
	}
	var b uuid.UUID
	for i := range b {
		b[i] = byte(rng.IntN(256))
	}
	b[6] = (b[6] & 0x0f) | 0x40
	b[8] = (b[8] & 0x3f) | 0x80
	return b.String()
}

func ctxRNG(ctx *Context) *mathrand.Rand {
	if ctx == nil {
		return nil
	}
	return ctx.Rand
}
