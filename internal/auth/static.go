package auth

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/muttaqilab/studio/internal/content"
	"github.com/muttaqilab/studio/internal/feed"
)

// Static is a single admin account taken from configuration. The password
// is kept only as a bcrypt hash.
type Static struct {
	email string
	hash  []byte
	hub   *Hub
}

func NewStatic(email, passwordHash string) *Static {
	return &Static{
		email: strings.TrimSpace(email),
		hash:  []byte(passwordHash),
		hub:   NewHub(),
	}
}

func (s *Static) SignIn(_ context.Context, session, email, password string) error {
	if !strings.EqualFold(strings.TrimSpace(email), s.email) {
		return ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(s.hash, []byte(password)); err != nil {
		return ErrInvalidCredentials
	}

	s.hub.Publish(Event{Session: session, User: &content.User{
		UID:   uuid.NewSHA1(uuid.NameSpaceURL, []byte("mailto:"+strings.ToLower(s.email))).String(),
		Email: s.email,
	}})
	return nil
}

func (s *Static) SignOut(_ context.Context, session string) error {
	s.hub.Publish(Event{Session: session})
	return nil
}

func (s *Static) Watch(ctx context.Context) (*feed.Feed[Event], error) {
	return s.hub.Watch(ctx), nil
}
