package repository

import (
	"context"
	"sync"
)

type bucket struct {
	hits        int
	windowStart int64
	lastHit     int64
}

// MemoryRepository is an in-process Repository for tests and single-node
// development without Postgres. It implements the exact semantics of the
// Postgres upsert under one mutex.
type MemoryRepository struct {
	mu      sync.Mutex
	buckets map[[2]string]*bucket
}

// NewMemoryRepository returns an empty in-memory rate-limit repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{buckets: make(map[[2]string]*bucket)}
}

// Upsert records a hit and returns whether the request is limited.
func (r *MemoryRepository) Upsert(_ context.Context, clientAddr, endpoint string, now, windowSeconds int64, maxRequests int) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := [2]string{clientAddr, endpoint}
	b, ok := r.buckets[key]
	if !ok {
		r.buckets[key] = &bucket{hits: 1, windowStart: now, lastHit: now}
		return false, nil
	}
	if b.windowStart+windowSeconds <= now {
		b.hits = 1
		b.windowStart = now
		b.lastHit = now
		return false, nil
	}
	if b.hits >= maxRequests {
		b.lastHit = now
		return true, nil
	}
	b.hits++
	b.lastHit = now
	return false, nil
}

// DeleteExpired removes buckets whose last hit is strictly before cutoff.
func (r *MemoryRepository) DeleteExpired(_ context.Context, cutoff int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var removed int64
	for key, b := range r.buckets {
		if b.lastHit < cutoff {
			delete(r.buckets, key)
			removed++
		}
	}
	return removed, nil
}

// Hits returns the current hit count for a pair; zero if absent. Test helper.
func (r *MemoryRepository) Hits(clientAddr, endpoint string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if b, ok := r.buckets[[2]string{clientAddr, endpoint}]; ok {
		return b.hits
	}
	return 0
}
