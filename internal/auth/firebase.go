package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	firebase "firebase.google.com/go/v4"
	fbauth "firebase.google.com/go/v4/auth"
	"google.golang.org/api/googleapi"
	identitytoolkit "google.golang.org/api/identitytoolkit/v3"
	"google.golang.org/api/option"

	"github.com/muttaqilab/studio/config"
	"github.com/muttaqilab/studio/internal/content"
	"github.com/muttaqilab/studio/internal/feed"
)

// InitializeFirebase initializes the Firebase Admin SDK app. Without a
// credentials file the SDK falls back to application default credentials.
func InitializeFirebase(ctx context.Context, cfg *config.FirebaseConfig) (*firebase.App, error) {
	if cfg.ProjectID == "" && cfg.CredentialsPath == "" {
		return nil, fmt.Errorf("FIREBASE_PROJECT_ID or FIREBASE_CREDENTIALS_PATH is required")
	}

	var opts []option.ClientOption
	if cfg.CredentialsPath != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsPath))
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{
		ProjectID:     cfg.ProjectID,
		StorageBucket: cfg.StorageBucket,
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Firebase app: %w", err)
	}
	return app, nil
}

// TokenVerifier checks ID tokens. *auth.Client from the Admin SDK
// satisfies it.
type TokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*fbauth.Token, error)
}

// Firebase signs users in with email and password through Identity
// Toolkit, the same endpoint the web SDK uses.
type Firebase struct {
	APIKey string
	// Endpoint overrides the Identity Toolkit base path when set.
	Endpoint string
	Timeout  time.Duration
	Verifier TokenVerifier

	hub *Hub
}

// NewFirebase creates the provider. verifier may be nil, in which case the
// account id returned by sign-in is trusted as is.
func NewFirebase(apiKey string, verifier TokenVerifier) *Firebase {
	return &Firebase{
		APIKey:   apiKey,
		Timeout:  15 * time.Second,
		Verifier: verifier,
		hub:      NewHub(),
	}
}

// Identity Toolkit reports rejected credentials with these codes. Some
// messages carry a detail after the code, as in "CODE : detail".
var rejected = map[string]bool{
	"EMAIL_NOT_FOUND":             true,
	"INVALID_PASSWORD":            true,
	"INVALID_LOGIN_CREDENTIALS":   true,
	"INVALID_EMAIL":               true,
	"USER_DISABLED":               true,
	"MISSING_PASSWORD":            true,
	"TOO_MANY_ATTEMPTS_TRY_LATER": true,
}

func rejectedCode(err error) bool {
	var apiErr *googleapi.Error
	if !errors.As(err, &apiErr) {
		return false
	}
	code, _, _ := strings.Cut(apiErr.Message, " ")
	return rejected[code]
}

func (f *Firebase) service(ctx context.Context) (*identitytoolkit.Service, error) {
	opts := []option.ClientOption{option.WithAPIKey(f.APIKey)}
	if f.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(f.Endpoint))
	}
	return identitytoolkit.NewService(ctx, opts...)
}

func (f *Firebase) SignIn(ctx context.Context, session, email, password string) error {
	if f.APIKey == "" {
		return ErrUnconfigured
	}

	if f.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.Timeout)
		defer cancel()
	}

	svc, err := f.service(ctx)
	if err != nil {
		return fmt.Errorf("identity toolkit client: %w", err)
	}

	out, err := svc.Relyingparty.VerifyPassword(&identitytoolkit.IdentitytoolkitRelyingpartyVerifyPasswordRequest{
		Email:             email,
		Password:          password,
		ReturnSecureToken: true,
	}).Context(ctx).Do()
	if err != nil {
		if rejectedCode(err) {
			return ErrInvalidCredentials
		}
		return fmt.Errorf("identity toolkit sign-in: %w", err)
	}

	user := &content.User{UID: out.LocalId, Email: out.Email}
	if f.Verifier != nil {
		tok, err := f.Verifier.VerifyIDToken(ctx, out.IdToken)
		if err != nil {
			return errors.Join(ErrInvalidCredentials, err)
		}
		user.UID = tok.UID
		if e, ok := tok.Claims["email"].(string); ok {
			user.Email = e
		}
	}

	f.hub.Publish(Event{Session: session, User: user})
	return nil
}

// SignOut drops the session locally; Identity Toolkit keeps no server-side
// session for password sign-in.
func (f *Firebase) SignOut(_ context.Context, session string) error {
	f.hub.Publish(Event{Session: session})
	return nil
}

func (f *Firebase) Watch(ctx context.Context) (*feed.Feed[Event], error) {
	return f.hub.Watch(ctx), nil
}
