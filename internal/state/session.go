package state

import (
	"context"
	"errors"
	"fmt"

	"github.com/muttaqilab/studio/internal/auth"
	"github.com/muttaqilab/studio/internal/content"
)

// Phase is where a console session stands in the sign-in flow.
type Phase int

const (
	Anonymous Phase = iota
	Authenticating
	Authenticated
)

func (p Phase) String() string {
	switch p {
	case Authenticating:
		return "authenticating"
	case Authenticated:
		return "authenticated"
	default:
		return "anonymous"
	}
}

type session struct {
	phase   Phase
	user    *content.User
	waiters []chan struct{}
}

func (s *Store) sessionLocked(sid string) *session {
	ss, ok := s.sessions[sid]
	if !ok {
		ss = &session{}
		s.sessions[sid] = ss
	}
	return ss
}

func (ss *session) wake() {
	for _, w := range ss.waiters {
		close(w)
	}
	ss.waiters = nil
}

// applyAuth is the only place a session becomes authenticated.
func (s *Store) applyAuth(ev auth.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ss := s.sessionLocked(ev.Session)
	if ev.User != nil {
		u := *ev.User
		ss.phase = Authenticated
		ss.user = &u
	} else {
		ss.phase = Anonymous
		ss.user = nil
	}
	ss.wake()
}

// Auth returns the derived auth state of a console session.
func (s *Store) Auth(sid string) content.AuthState {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ss, ok := s.sessions[sid]
	if !ok || ss.phase != Authenticated || ss.user == nil {
		return content.AuthState{}
	}
	u := *ss.user
	return content.AuthState{IsAuthenticated: true, User: &u}
}

func (s *Store) Phase(sid string) Phase {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if ss, ok := s.sessions[sid]; ok {
		return ss.phase
	}
	return Anonymous
}

// Login forwards the credentials to the provider. On acceptance it returns
// only after the provider's own notification has been applied, so the
// session is authenticated when Login returns nil. A rejected attempt
// leaves an already authenticated session as it was.
func (s *Store) Login(ctx context.Context, sid, email, password string) error {
	s.mu.Lock()
	if s.auth == nil || s.authDown {
		s.mu.Unlock()
		return ErrAuthUnconfigured
	}
	wait := make(chan struct{})
	ss := s.sessionLocked(sid)
	if ss.phase != Authenticated {
		ss.phase = Authenticating
	}
	ss.waiters = append(ss.waiters, wait)
	s.mu.Unlock()

	if err := s.auth.SignIn(ctx, sid, email, password); err != nil {
		s.revert(sid, wait)
		s.log.Info("login rejected", "error", err)
		if errors.Is(err, auth.ErrUnconfigured) {
			return ErrAuthUnconfigured
		}
		return fmt.Errorf("%w: %w", ErrAccessDenied, err)
	}

	select {
	case <-wait:
		return nil
	case <-ctx.Done():
		s.revert(sid, wait)
		return ctx.Err()
	case <-s.done:
		return ErrClosed
	}
}

// revert drops wait and returns a still-authenticating session to anonymous.
func (s *Store) revert(sid string, wait chan struct{}) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ss, ok := s.sessions[sid]
	if !ok {
		return
	}
	for i, w := range ss.waiters {
		if w == wait {
			ss.waiters = append(ss.waiters[:i], ss.waiters[i+1:]...)
			break
		}
	}
	if ss.phase == Authenticating {
		ss.phase = Anonymous
	}
}

// Logout forwards to the provider and waits for its notification; the
// session is not changed locally.
func (s *Store) Logout(ctx context.Context, sid string) error {
	s.mu.Lock()
	if s.auth == nil || s.authDown {
		s.mu.Unlock()
		return ErrAuthUnconfigured
	}
	wait := make(chan struct{})
	ss := s.sessionLocked(sid)
	ss.waiters = append(ss.waiters, wait)
	s.mu.Unlock()

	if err := s.auth.SignOut(ctx, sid); err != nil {
		s.revert(sid, wait)
		return fmt.Errorf("sign out: %w", err)
	}

	select {
	case <-wait:
		return nil
	case <-ctx.Done():
		s.revert(sid, wait)
		return ctx.Err()
	case <-s.done:
		return ErrClosed
	}
}

// EndSession forgets a console session.
func (s *Store) EndSession(sid string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ss, ok := s.sessions[sid]; ok {
		ss.wake()
		delete(s.sessions, sid)
	}
}
