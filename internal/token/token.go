// Package token issues the identifiers a checkout needs: monotonic session
// tokens that invalidate stale timers, session ids and order ids.
package token

import (
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"
)

// OrderIDLimit bounds the numeric part of an order id: ORD-0 .. ORD-99999.
const OrderIDLimit = 100000

// Sequence hands out strictly increasing tokens. The zero value is ready
// to use and never returns 0, so 0 can mean "no session".
type Sequence struct {
	n atomic.Uint64
}

func (s *Sequence) Next() uint64 { return s.n.Add(1) }

// NewSessionID returns a random session id.
func NewSessionID() string { return uuid.NewString() }

// OrderIDs generates customer facing order ids of the form ORD-<0..99999>.
type OrderIDs struct {
	rng RandomSource
}

// NewOrderIDs uses rng, or the crypto source when rng is nil.
func NewOrderIDs(rng RandomSource) *OrderIDs {
	if rng == nil {
		rng = DefaultRNG()
	}
	return &OrderIDs{rng: rng}
}

func (g *OrderIDs) Next() string {
	n := int(g.rng.Float64() * OrderIDLimit)
	if n >= OrderIDLimit {
		n = OrderIDLimit - 1
	}
	return fmt.Sprintf("ORD-%d", n)
}
