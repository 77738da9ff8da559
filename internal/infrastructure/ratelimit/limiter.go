package ratelimit

import (
	"context"
	"sync"
	"time"
)

const sweepInterval = 5 * time.Minute

// Limiter cuenta peticiones por clave en ventanas fijas.
type Limiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) Decision
	Close() error
}

// Decision resultado de Allow.
type Decision struct {
	Allowed   bool
	Count     int
	WindowEnd time.Time
}

// Remaining peticiones que quedan en la ventana actual.
func (d Decision) Remaining(limit int) int {
	if r := limit - d.Count; r > 0 {
		return r
	}
	return 0
}

type memoryLimiter struct {
	mu      sync.Mutex
	entries map[string]window
	now     func() time.Time
	stopCh  chan struct{}
	once    sync.Once
}

type window struct {
	count int
	end   time.Time
}

// NewMemory crea un limiter en proceso. Las ventanas vencidas se barren periódicamente.
func NewMemory() Limiter {
	l := newMemory(time.Now)
	go l.sweepLoop()
	return l
}

func newMemory(now func() time.Time) *memoryLimiter {
	return &memoryLimiter{
		entries: make(map[string]window),
		now:     now,
		stopCh:  make(chan struct{}),
	}
}

func (l *memoryLimiter) Allow(_ context.Context, key string, limit int, win time.Duration) Decision {
	if limit <= 0 {
		return Decision{Allowed: true}
	}
	if win <= 0 {
		win = time.Minute
	}
	now := l.now()
	l.mu.Lock()
	defer l.mu.Unlock()

	state, ok := l.entries[key]
	if !ok || now.After(state.end) {
		state = window{count: 1, end: now.Add(win)}
		l.entries[key] = state
		return Decision{Allowed: true, Count: state.count, WindowEnd: state.end}
	}
	if state.count >= limit {
		return Decision{Allowed: false, Count: state.count, WindowEnd: state.end}
	}
	state.count++
	l.entries[key] = state
	return Decision{Allowed: true, Count: state.count, WindowEnd: state.end}
}

func (l *memoryLimiter) sweepLoop() {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			l.cleanup(l.now())
		case <-l.stopCh:
			return
		}
	}
}

func (l *memoryLimiter) cleanup(now time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for key, state := range l.entries {
		if now.After(state.end) {
			delete(l.entries, key)
		}
	}
}

func (l *memoryLimiter) Close() error {
	l.once.Do(func() { close(l.stopCh) })
	return nil
}
