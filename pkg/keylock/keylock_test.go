package keylock

import (
	"sync"
	"testing"
)

func TestKeyLock_SerializesSameKey(t *testing.T) {
	l := New()

	const goroutines = 50
	counter := 0

	var wg sync.WaitGroup
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func() {
			defer wg.Done()
			unlock := l.Lock("user:1")
			defer unlock()
			counter++
		}()
	}
	wg.Wait()

	if counter != goroutines {
		t.Errorf("expected counter=%d, got %d", goroutines, counter)
	}
}

func TestKeyLock_IndependentKeys(t *testing.T) {
	l := New()

	unlockA := l.Lock("shift:1")

	done := make(chan struct{})
	go func() {
		unlockB := l.Lock("shift:2")
		unlockB()
		close(done)
	}()

	// shift:2 must not block behind shift:1
	<-done
	unlockA()
}

func TestKeyLock_EntryRemovedAfterUnlock(t *testing.T) {
	l := New()

	unlock := l.Lock("user:7")
	unlock()

	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.locks) != 0 {
		t.Errorf("expected empty lock map, got %d entries", len(l.locks))
	}
}

func TestKeyLock_Reacquire(t *testing.T) {
	l := New()

	unlock := l.Lock("user:1")
	unlock()

	// must be acquirable again immediately
	unlock = l.Lock("user:1")
	unlock()
}
