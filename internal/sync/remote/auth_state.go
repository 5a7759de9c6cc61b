package remote

import (
	"sync"
	"time"
)

// authState holds the current session and fans changes out to listeners.
type authState struct {
	mu        sync.RWMutex
	session   *Session
	listeners map[int]func(AuthEvent)
	nextID    int
}

func (a *authState) current() *Session {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.session == nil {
		return nil
	}
	s := *a.session
	return &s
}

func (a *authState) token() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.session == nil {
		return ""
	}
	return a.session.Token
}

// set replaces the session and notifies listeners when the signed-in user
// changes. Listeners run on the caller's goroutine, outside the lock.
func (a *authState) set(s *Session) {
	a.mu.Lock()
	prev := a.session
	if s != nil {
		cp := *s
		s = &cp
	}
	a.session = s
	changed := (prev == nil) != (s == nil) || (prev != nil && s != nil && prev.UserID != s.UserID)
	listeners := make([]func(AuthEvent), 0, len(a.listeners))
	for _, fn := range a.listeners {
		listeners = append(listeners, fn)
	}
	a.mu.Unlock()

	if !changed {
		return
	}
	evt := AuthEvent{Kind: SignedOut}
	if s != nil {
		cp := *s
		evt = AuthEvent{Kind: SignedIn, Session: &cp}
	}
	for _, fn := range listeners {
		fn(evt)
	}
}

// expireIfStale drops a session whose token is past its expiry.
func (a *authState) expireIfStale(now time.Time) {
	a.mu.RLock()
	stale := a.session != nil && !a.session.ExpiresAt.IsZero() && now.After(a.session.ExpiresAt)
	a.mu.RUnlock()
	if stale {
		a.set(nil)
	}
}

func (a *authState) subscribe(fn func(AuthEvent)) func() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.listeners == nil {
		a.listeners = make(map[int]func(AuthEvent))
	}
	id := a.nextID
	a.nextID++
	a.listeners[id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			a.mu.Lock()
			delete(a.listeners, id)
			a.mu.Unlock()
		})
	}
}
