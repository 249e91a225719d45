package cache

import (
	"context"
	"time"
)

// Cleaner is satisfied by caches that can drop their expired entries.
type Cleaner interface {
	CleanExpired() int
}

// Janitor periodically sweeps a set of caches until its context is done.
type Janitor struct {
	caches []Cleaner
}

func NewJanitor(caches ...Cleaner) *Janitor {
	return &Janitor{caches: caches}
}

// Run blocks, sweeping every interval, and returns when ctx is cancelled.
func (j *Janitor) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			for _, c := range j.caches {
				c.CleanExpired()
			}
		case <-ctx.Done():
			return
		}
	}
}
