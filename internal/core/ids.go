package core

import (
	"fmt"
	"sync/atomic"
	"time"
)

// ID prefixes, matching the record formats already in the store.
const (
	PrefixPurchase = "P"
	PrefixSale     = "S"
	PrefixInvoice  = "INV"
	PrefixJob      = "JOB"
)

// IDGenerator mints unique, time-ordered record identifiers. The id
// combines a UTC second timestamp with a monotonic counter, so ids
// generated within the same second never collide.
type IDGenerator struct {
	counter atomic.Uint64
	now     func() time.Time
}

// NewIDGenerator returns a generator using the real clock.
func NewIDGenerator() *IDGenerator {
	return &IDGenerator{now: time.Now}
}

// Next returns the next id for the given prefix, e.g.
// "P-20260831T093012-0007". The counter never wraps, so the suffix
// simply grows past four digits under heavy traffic.
func (g *IDGenerator) Next(prefix string) string {
	n := g.counter.Add(1)
	ts := g.now().UTC().Format("20060102T150405")
	return fmt.Sprintf("%s-%s-%04d", prefix, ts, n)
}
