package session

import "sync"

type refLock struct {
	mu   sync.Mutex
	refs int
}

// Locker hands out one mutex per session id. Entries are dropped once no
// goroutine holds or waits on them.
type Locker struct {
	mu    sync.Mutex
	locks map[string]*refLock
}

func NewLocker() *Locker {
	return &Locker{locks: make(map[string]*refLock)}
}

// Lock blocks until the caller owns sessionID and returns the release func.
func (l *Locker) Lock(sessionID string) func() {
	l.mu.Lock()
	rl, ok := l.locks[sessionID]
	if !ok {
		rl = &refLock{}
		l.locks[sessionID] = rl
	}
	rl.refs++
	l.mu.Unlock()

	rl.mu.Lock()
	return func() {
		rl.mu.Unlock()
		l.mu.Lock()
		rl.refs--
		if rl.refs == 0 {
			delete(l.locks, sessionID)
		}
		l.mu.Unlock()
	}
}

// Held reports how many session ids currently have a lock entry.
func (l *Locker) Held() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
