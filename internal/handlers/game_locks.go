package handlers

import "sync"

// gameLocks serializes read-validate-write cycles per game inside this process.
// Entries are dropped once nobody holds or waits for them.
type gameLocks struct {
	mu    sync.Mutex
	games map[string]*gameLock
}

type gameLock struct {
	mu   sync.Mutex
	refs int
}

// lock blocks until the caller owns gameID and returns the matching unlock.
func (l *gameLocks) lock(gameID string) func() {
	l.mu.Lock()
	if l.games == nil {
		l.games = map[string]*gameLock{}
	}
	gl := l.games[gameID]
	if gl == nil {
		gl = &gameLock{}
		l.games[gameID] = gl
	}
	gl.refs++
	l.mu.Unlock()

	gl.mu.Lock()
	return func() {
		gl.mu.Unlock()
		l.mu.Lock()
		gl.refs--
		if gl.refs == 0 {
			delete(l.games, gameID)
		}
		l.mu.Unlock()
	}
}

func (l *gameLocks) held() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.games)
}
