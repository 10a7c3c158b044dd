package main

import "sync"

// sessionLocks serializes the load, scan and store of one session within
// this process. Replicas sharing Redis still rely on clients sending one
// frame per session at a time.
type sessionLocks struct {
	mu    sync.Mutex
	locks map[string]*sessionLock
}

type sessionLock struct {
	sync.Mutex
	waiters int
}

// lock blocks until the session is free and returns the unlock function.
// Entries are dropped once nobody holds or waits for them.
func (l *sessionLocks) lock(sessionId string) func() {
	l.mu.Lock()
	if l.locks == nil {
		l.locks = make(map[string]*sessionLock)
	}
	entry, ok := l.locks[sessionId]
	if !ok {
		entry = &sessionLock{}
		l.locks[sessionId] = entry
	}
	entry.waiters++
	l.mu.Unlock()

	entry.Lock()
	return func() {
		entry.Unlock()
		l.mu.Lock()
		entry.waiters--
		if entry.waiters == 0 {
			delete(l.locks, sessionId)
		}
		l.mu.Unlock()
	}
}

func (l *sessionLocks) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
