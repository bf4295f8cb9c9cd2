// services/rate_limiter.go
package services

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// retentionHorizon is how long an idle key survives before the sweeper
// drops it to bound memory.
const retentionHorizon = time.Hour

// attemptWindow holds the recorded attempt timestamps for one
// (user, action) key. Its mutex makes the prune-check-record sequence a
// single atomic unit for that key.
type attemptWindow struct {
	mu       sync.Mutex
	attempts []time.Time
}

// RateLimiter enforces sliding-window caps per (user, action). Distinct keys
// proceed in parallel; calls on the same key serialize so two racing
// requests can never both slip past the cap on a stale count. Lifecycle is
// explicit: construct in main, StartSweeper once, Stop on shutdown.
type RateLimiter struct {
	mu      sync.Mutex
	windows map[string]*attemptWindow
	sched   gocron.Scheduler
}

func NewRateLimiter() *RateLimiter {
	return &RateLimiter{windows: make(map[string]*attemptWindow)}
}

// CheckAndRecord prunes attempts older than the window for the key, fails
// with ErrRateLimited if the remaining count has reached maxAttempts, and
// otherwise records the current attempt.
func (rl *RateLimiter) CheckAndRecord(userID, action string, maxAttempts int, window time.Duration) error {
	w := rl.window(userID + ":" + action)

	w.mu.Lock()
	defer w.mu.Unlock()

	now := time.Now()
	cutoff := now.Add(-window)
	kept := w.attempts[:0]
	for _, t := range w.attempts {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	w.attempts = kept

	if len(w.attempts) >= maxAttempts {
		return fmt.Errorf("%w: %s", ErrRateLimited, action)
	}
	w.attempts = append(w.attempts, now)
	return nil
}

func (rl *RateLimiter) window(key string) *attemptWindow {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	w, ok := rl.windows[key]
	if !ok {
		w = &attemptWindow{}
		rl.windows[key] = w
	}
	return w
}

// StartSweeper schedules a periodic sweep that drops keys with no attempt
// inside the retention horizon.
func (rl *RateLimiter) StartSweeper() {
	sched, err := gocron.NewScheduler()
	if err != nil {
		log.Printf("[Limiter] Failed to create sweep scheduler: %v", err)
		return
	}
	rl.sched = sched
	sched.Start()

	_, _ = sched.NewJob(
		gocron.DurationJob(10*time.Minute),
		gocron.NewTask(func() {
			removed := rl.Sweep(time.Now().Add(-retentionHorizon))
			if removed > 0 {
				log.Printf("[Limiter] Swept %d idle rate-limit keys", removed)
			}
		}),
	)
}

// Sweep removes every key whose newest attempt is older than cutoff and
// returns how many keys were dropped.
func (rl *RateLimiter) Sweep(cutoff time.Time) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	removed := 0
	for key, w := range rl.windows {
		w.mu.Lock()
		idle := len(w.attempts) == 0 || !w.attempts[len(w.attempts)-1].After(cutoff)
		w.mu.Unlock()
		if idle {
			delete(rl.windows, key)
			removed++
		}
	}
	return removed
}

// Stop shuts the sweep scheduler down.
func (rl *RateLimiter) Stop() {
	if rl.sched != nil {
		if err := rl.sched.Shutdown(); err != nil {
			log.Printf("[Limiter] Sweep scheduler shutdown: %v", err)
		}
	}
}
