package application

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSubjectLocksSerializesSameKey(t *testing.T) {
	locks := NewSubjectLocks()

	const workers = 8
	var inside int
	var maxInside int
	var mu sync.Mutex

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			locks.Lock("t1/p1")
			defer locks.Unlock("t1/p1")

			mu.Lock()
			inside++
			if inside > maxInside {
				maxInside = inside
			}
			mu.Unlock()

			mu.Lock()
			inside--
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, maxInside, "at most one holder per key at a time")
}

func TestSubjectLocksIndependentKeys(t *testing.T) {
	locks := NewSubjectLocks()

	locks.Lock("t1/p1")
	done := make(chan struct{})
	go func() {
		locks.Lock("t1/p2")
		locks.Unlock("t1/p2")
		close(done)
	}()
	<-done // a different key must not block
	locks.Unlock("t1/p1")
}

func TestSubjectLocksEntriesReleased(t *testing.T) {
	locks := NewSubjectLocks()

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			locks.Lock("key")
			locks.Unlock("key")
		}()
	}
	wg.Wait()

	locks.mu.Lock()
	defer locks.mu.Unlock()
	assert.Empty(t, locks.entries, "released keys must not linger in the map")
}
