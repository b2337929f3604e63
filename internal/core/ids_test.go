package core

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIDGeneratorFormat(t *testing.T) {
	fixed := time.Date(2026, 8, 31, 9, 30, 12, 0, time.UTC)
	g := &IDGenerator{now: func() time.Time { return fixed }}

	id := g.Next(PrefixPurchase)
	assert.Equal(t, "P-20260831T093012-0001", id)
}

func TestIDGeneratorUniqueWithinSameSecond(t *testing.T) {
	fixed := time.Date(2026, 8, 31, 9, 30, 12, 0, time.UTC)
	g := &IDGenerator{now: func() time.Time { return fixed }}

	// Well past four digits of counter, where a wrapping suffix would
	// start repeating.
	seen := make(map[string]bool)
	for i := 0; i < 10050; i++ {
		id := g.Next(PrefixSale)
		assert.False(t, seen[id], "duplicate id %s after %d calls", id, i+1)
		seen[id] = true
	}
}

func TestIDGeneratorConcurrent(t *testing.T) {
	g := NewIDGenerator()
	var mu sync.Mutex
	seen := make(map[string]bool)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				id := g.Next(PrefixJob)
				mu.Lock()
				assert.False(t, seen[id])
				seen[id] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	for id := range seen {
		assert.True(t, strings.HasPrefix(id, "JOB-"))
	}
}
