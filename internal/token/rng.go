package token

import (
	cryptoRand "crypto/rand"
	"encoding/binary"
	"math/rand/v2"
	"sync"
)

// RandomSource yields floats in [0, 1). OrderIDs draws from it.
type RandomSource interface {
	Float64() float64
}

// DefaultRNG reads from crypto/rand so order ids are not guessable.
func DefaultRNG() RandomSource { return systemSource{} }

// NewSeededRNG returns a repeatable source for tests and local demos.
func NewSeededRNG(seed uint64) RandomSource {
	return &lockedSource{r: rand.New(rand.NewPCG(seed, 0))}
}

type systemSource struct{}

// Float64 keeps the top 53 bits of a random word, the width of a float64
// mantissa. If the system reader fails, the runtime generator stands in.
func (systemSource) Float64() float64 {
	var word [8]byte
	if _, err := cryptoRand.Read(word[:]); err != nil {
		return rand.Float64()
	}
	return float64(binary.BigEndian.Uint64(word[:])>>11) / (1 << 53)
}

// lockedSource serialises access; *rand.Rand is not safe for concurrent use
// and one OrderIDs may serve many requests.
type lockedSource struct {
	mu sync.Mutex
	r  *rand.Rand
}

func (s *lockedSource) Float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.r.Float64()
}
