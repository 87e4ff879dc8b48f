package reliability

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestNewDuplicateDetector(t *testing.T) {
	d := NewDuplicateDetector(24 * time.Hour)
	if d == nil {
		t.Fatal("expected non-nil detector")
	}
	if d.seen == nil {
		t.Error("expected seen map to be initialized")
	}
	if d.Window() != 24*time.Hour {
		t.Errorf("expected window 24h, got %v", d.Window())
	}
	if d.Len() != 0 {
		t.Errorf("expected empty detector, got %d entries", d.Len())
	}
}

func TestKey(t *testing.T) {
	a := Key("SENDER", "RECEIVER", "REF123")
	if a != Key("SENDER", "RECEIVER", "REF123") {
		t.Error("expected key to be deterministic")
	}
	if len(a) != 64 {
		t.Errorf("expected 64 hex characters, got %d", len(a))
	}
	if a == Key("SENDER", "RECEIVER", "REF124") {
		t.Error("expected different control references to differ")
	}
	if Key("AB", "C", "D") == Key("A", "BC", "D") {
		t.Error("expected field boundaries to be part of the key")
	}
}

func TestContentHash(t *testing.T) {
	h := ContentHash([]byte("BGM+220+1+9'"))
	if h != ContentHash([]byte("BGM+220+1+9'")) {
		t.Error("expected hash to be deterministic")
	}
	if h == ContentHash([]byte("BGM+220+2+9'")) {
		t.Error("expected different content to hash differently")
	}
}

func TestDuplicateDetector_Check(t *testing.T) {
	d := NewDuplicateDetector(time.Hour)
	start := time.Date(2024, 1, 19, 12, 0, 0, 0, time.UTC)
	key := Key("S", "R", "C")

	if d.Check(key, start) {
		t.Error("first delivery must not be a duplicate")
	}
	if !d.Check(key, start.Add(30*time.Minute)) {
		t.Error("redelivery inside the window must be a duplicate")
	}
	if d.Check(key, start.Add(time.Hour)) {
		t.Error("redelivery after the window must not be a duplicate")
	}
	if !d.Check(key, start.Add(90*time.Minute)) {
		t.Error("expired key must be re-recorded")
	}
}

func TestDuplicateDetector_ZeroWindow(t *testing.T) {
	d := NewDuplicateDetector(0)
	start := time.Now()
	key := Key("S", "R", "C")

	d.Check(key, start)
	if !d.Check(key, start.Add(24*365*time.Hour)) {
		t.Error("zero window must never expire entries")
	}
	if removed := d.Prune(start.Add(24 * 365 * time.Hour)); removed != 0 {
		t.Errorf("expected nothing pruned, got %d", removed)
	}
}

func TestDuplicateDetector_Forget(t *testing.T) {
	d := NewDuplicateDetector(time.Hour)
	now := time.Now()

	d.Check("k", now)
	d.Forget("k")
	if d.Check("k", now) {
		t.Error("forgotten key must not be a duplicate")
	}
}

func TestDuplicateDetector_Prune(t *testing.T) {
	d := NewDuplicateDetector(time.Hour)
	start := time.Now()

	d.Check("old", start)
	d.Check("new", start.Add(50*time.Minute))

	if removed := d.Prune(start.Add(70 * time.Minute)); removed != 1 {
		t.Errorf("expected 1 entry pruned, got %d", removed)
	}
	if d.Len() != 1 {
		t.Errorf("expected 1 entry left, got %d", d.Len())
	}
}

func TestDuplicateDetector_Concurrent(t *testing.T) {
	d := NewDuplicateDetector(time.Hour)
	now := time.Now()

	var (
		wg         sync.WaitGroup
		mu         sync.Mutex
		duplicates int
	)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if d.Check("same", now) {
				mu.Lock()
				duplicates++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if duplicates != 49 {
		t.Errorf("expected exactly one first delivery, got %d duplicates", duplicates)
	}
}

func TestDuplicateDetector_Run(t *testing.T) {
	d := NewDuplicateDetector(time.Millisecond)
	d.Check("k", time.Now().Add(-time.Hour))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		d.Run(ctx, 5*time.Millisecond)
		close(done)
	}()

	deadline := time.After(2 * time.Second)
	for d.Len() != 0 {
		select {
		case <-deadline:
			t.Fatal("expected Run to prune expired entries")
		case <-time.After(5 * time.Millisecond):
		}
	}

	cancel()
	<-done
}
