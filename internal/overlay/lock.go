package overlay

import "sync"

// Per-path locks serialize concurrent edits to the same overlay file without
// blocking edits to unrelated items. Entries are reference-counted and
// removed once the last holder releases, so the table does not grow with the
// library.
var (
	locksMu sync.Mutex
	locks   = make(map[string]*pathLock)
)

type pathLock struct {
	mu   sync.Mutex
	refs int
}

// lockPath acquires the lock for one overlay path and returns the release
// function. The caller must invoke it on every exit path.
func lockPath(path string) func() {
	locksMu.Lock()
	l, ok := locks[path]
	if !ok {
		l = &pathLock{}
		locks[path] = l
	}
	l.refs++
	locksMu.Unlock()

	l.mu.Lock()

	return func() {
		l.mu.Unlock()

		locksMu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(locks, path)
		}
		locksMu.Unlock()
	}
}
