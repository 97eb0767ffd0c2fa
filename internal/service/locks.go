package service

import "sync"

// emailLocks serializes mutations per email key. Two concurrent
// verifications for the same email must not both read attempts==2 and
// both win; requests for different emails proceed in parallel.
type emailLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newEmailLocks() *emailLocks {
	return &emailLocks{locks: make(map[string]*sync.Mutex)}
}

// lock acquires the mutex for the email and returns its unlock func.
func (l *emailLocks) lock(email string) func() {
	l.mu.Lock()
	m, ok := l.locks[email]
	if !ok {
		m = &sync.Mutex{}
		l.locks[email] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}
