package application

import "sync"

// SubjectLocks serializes recomputes per analysis subject so that two
// concurrent requests for the same subject cannot both miss the cache and
// both pay for an analyzer call. Entries are reference-counted and removed
// when the last holder releases, so the map does not grow with the number of
// subjects ever seen.
type SubjectLocks struct {
	mu      sync.Mutex
	entries map[string]*lockEntry
}

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

func NewSubjectLocks() *SubjectLocks {
	return &SubjectLocks{entries: make(map[string]*lockEntry)}
}

// Lock blocks until the per-subject lock for key is held.
func (l *SubjectLocks) Lock(key string) {
	l.mu.Lock()
	e, ok := l.entries[key]
	if !ok {
		e = &lockEntry{}
		l.entries[key] = e
	}
	e.refs++
	l.mu.Unlock()

	e.mu.Lock()
}

// Unlock releases the per-subject lock for key.
func (l *SubjectLocks) Unlock(key string) {
	l.mu.Lock()
	e, ok := l.entries[key]
	if ok {
		e.refs--
		if e.refs == 0 {
			delete(l.entries, key)
		}
	}
	l.mu.Unlock()

	if ok {
		e.mu.Unlock()
	}
}
