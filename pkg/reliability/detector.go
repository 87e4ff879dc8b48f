// Copyright (c) 2024 SIROS Foundation
// SPDX-License-Identifier: BSD-2-Clause

package reliability

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"
)

// DuplicateDetector remembers interchange keys for a time window. It is
// safe for concurrent use.
type DuplicateDetector struct {
	mu     sync.Mutex
	seen   map[string]time.Time
	window time.Duration
}

// NewDuplicateDetector creates a detector. A zero window never expires
// entries.
func NewDuplicateDetector(window time.Duration) *DuplicateDetector {
	return &DuplicateDetector{
		seen:   make(map[string]time.Time),
		window: window,
	}
}

// Window returns the detection window.
func (d *DuplicateDetector) Window() time.Duration {
	return d.window
}

// Key derives the detection key for an interchange.
func Key(sender, recipient, controlRef string) string {
	h := sha256.New()
	for _, part := range []string{sender, recipient, controlRef} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// ContentHash hashes a raw payload, for callers that deduplicate on
// content rather than on the interchange header.
func ContentHash(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

// Check reports whether key was seen within the window before now. A key
// that is new or expired is recorded with time now and reported as not
// a duplicate.
func (d *DuplicateDetector) Check(key string, now time.Time) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if first, ok := d.seen[key]; ok && !d.expired(first, now) {
		return true
	}
	d.seen[key] = now
	return false
}

// Forget removes key, so the next Check treats it as new. Used when
// processing of a recorded interchange fails.
func (d *DuplicateDetector) Forget(key string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	delete(d.seen, key)
}

// Prune drops expired entries and returns how many were removed.
func (d *DuplicateDetector) Prune(now time.Time) int {
	d.mu.Lock()
	defer d.mu.Unlock()

	removed := 0
	for key, first := range d.seen {
		if d.expired(first, now) {
			delete(d.seen, key)
			removed++
		}
	}
	return removed
}

// Len returns the number of remembered keys.
func (d *DuplicateDetector) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()

	return len(d.seen)
}

// Run calls Prune every interval until ctx is done.
func (d *DuplicateDetector) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			d.Prune(now)
		}
	}
}

func (d *DuplicateDetector) expired(first, now time.Time) bool {
	return d.window > 0 && now.Sub(first) >= d.window
}
