// Package memory contains an in-memory publisher implementation for tests.
package memory

import (
	"context"
	"sync"

	"github.com/bipwatch/crawler/internal/bip"
)

// Publisher stores published payloads for inspection.
type Publisher struct {
	mu       sync.RWMutex
	payloads []bip.Payload
	err      error
}

// New returns a memory Publisher.
func New() *Publisher {
	return &Publisher{}
}

// Fail makes subsequent Publish calls return err.
func (p *Publisher) Fail(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.err = err
}

// Publish records the payload.
func (p *Publisher) Publish(_ context.Context, payload bip.Payload) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.payloads = append(p.payloads, payload)
	return nil
}

// Payloads returns the recorded publishes.
func (p *Publisher) Payloads() []bip.Payload {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]bip.Payload, len(p.payloads))
	copy(out, p.payloads)
	return out
}
