// Package auth signs console users in and out and reports every change of
// a console session's signed-in user as an Event.
package auth

import (
	"context"
	"errors"

	"github.com/muttaqilab/studio/internal/content"
	"github.com/muttaqilab/studio/internal/feed"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnconfigured       = errors.New("auth provider not configured")
)

// Event is the authoritative notification that a session's user changed.
// A nil User means the session is signed out.
type Event struct {
	Session string
	User    *content.User
}

// Provider is an identity service. SignIn and SignOut only report whether
// the request was accepted; the resulting state change arrives on Watch.
type Provider interface {
	SignIn(ctx context.Context, session, email, password string) error
	SignOut(ctx context.Context, session string) error
	Watch(ctx context.Context) (*feed.Feed[Event], error)
}
