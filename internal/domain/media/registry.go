package media

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"eventadmin/internal/metrics"
)

// Registry holds the live upload batches of the HTTP surface. Batches that
// sit idle longer than ttl are dropped by Sweep.
type Registry struct {
	host Host
	ttl  time.Duration
	log  logrus.FieldLogger

	mu      sync.RWMutex
	batches map[string]*Batch
}

func NewRegistry(host Host, ttl time.Duration, log logrus.FieldLogger) *Registry {
	return &Registry{
		host:    host,
		ttl:     ttl,
		log:     log,
		batches: make(map[string]*Batch),
	}
}

func (r *Registry) Open(mode Mode) (*Batch, error) {
	policy, err := PolicyFor(mode)
	if err != nil {
		return nil, err
	}
	b := NewBatch(policy, r.host, r.log)

	r.mu.Lock()
	r.batches[b.ID()] = b
	n := len(r.batches)
	r.mu.Unlock()

	metrics.SetLiveBatches(n)
	return b, nil
}

func (r *Registry) Get(id string) (*Batch, error) {
	r.mu.RLock()
	b, ok := r.batches[id]
	r.mu.RUnlock()
	if !ok {
		return nil, ErrBatchNotFound
	}
	return b, nil
}

// Discard forgets a batch. It reports whether the batch existed.
func (r *Registry) Discard(id string) bool {
	r.mu.Lock()
	_, ok := r.batches[id]
	delete(r.batches, id)
	n := len(r.batches)
	r.mu.Unlock()

	metrics.SetLiveBatches(n)
	return ok
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.batches)
}

// Sweep removes batches idle since before now-ttl and returns how many went.
func (r *Registry) Sweep(now time.Time) int {
	cutoff := now.Add(-r.ttl)

	r.mu.Lock()
	removed := 0
	for id, b := range r.batches {
		if b.idleSince().Before(cutoff) {
			delete(r.batches, id)
			removed++
		}
	}
	n := len(r.batches)
	r.mu.Unlock()

	metrics.SetLiveBatches(n)
	return removed
}

// Start runs Sweep every interval until ctx is done.
func (r *Registry) Start(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			startTime := time.Now()
			if removed := r.Sweep(now); removed > 0 {
				r.log.WithFields(logrus.Fields{
					"removed":  removed,
					"duration": time.Since(startTime),
				}).Info("expired upload batches swept")
			}
		}
	}
}
