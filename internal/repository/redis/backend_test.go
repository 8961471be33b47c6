package redis

import (
	"context"
	"errors"
	"sync"
	"time"
)

// fakeBackend is an in-memory Backend with a controllable clock so window
// expiry can be simulated without sleeping.
type fakeBackend struct {
	mu       sync.Mutex
	values   map[string][]byte
	counters map[string]int64
	expiry   map[string]time.Time
	now      time.Time
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		values:   make(map[string][]byte),
		counters: make(map[string]int64),
		expiry:   make(map[string]time.Time),
		now:      time.Unix(1000, 0),
	}
}

func (b *fakeBackend) advance(d time.Duration) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.now = b.now.Add(d)
}

func (b *fakeBackend) expireLocked(key string) {
	if deadline, ok := b.expiry[key]; ok && !b.now.Before(deadline) {
		delete(b.values, key)
		delete(b.counters, key)
		delete(b.expiry, key)
	}
}

func (b *fakeBackend) Ping(ctx context.Context) error { return nil }

func (b *fakeBackend) Get(ctx context.Context, key string) ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.expireLocked(key)
	v, ok := b.values[key]
	if !ok {
		return nil, ErrNil
	}
	return v, nil
}

func (b *fakeBackend) SetEx(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.values[key] = value
	b.expiry[key] = b.now.Add(ttl)
	return nil
}

func (b *fakeBackend) Incr(ctx context.Context, key string) (int64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.expireLocked(key)
	b.counters[key]++
	return b.counters[key], nil
}

func (b *fakeBackend) Expire(ctx context.Context, key string, ttl time.Duration) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.expiry[key] = b.now.Add(ttl)
	return nil
}

func (b *fakeBackend) Del(ctx context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.values, key)
	delete(b.counters, key)
	delete(b.expiry, key)
	return nil
}

var errBackendDown = errors.New("connection refused")

// downBackend fails every call, simulating an unreachable Redis.
type downBackend struct{}

func (downBackend) Ping(ctx context.Context) error { return errBackendDown }

func (downBackend) Get(ctx context.Context, key string) ([]byte, error) {
	return nil, errBackendDown
}

func (downBackend) SetEx(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return errBackendDown
}

func (downBackend) Incr(ctx context.Context, key string) (int64, error) {
	return 0, errBackendDown
}

func (downBackend) Expire(ctx context.Context, key string, ttl time.Duration) error {
	return errBackendDown
}

func (downBackend) Del(ctx context.Context, key string) error { return errBackendDown }
