package web

import (
	"errors"
	"strings"

	"github.com/muttaqilab/studio/internal/content"
	"github.com/muttaqilab/studio/internal/state"
	"github.com/muttaqilab/studio/internal/store"
)

// Notice is a message shown once at the top of a page.
type Notice struct {
	Kind string // "error" or "info"
	Text string
}

const (
	degradedTitle = "Protocol Fail: Config Missing"
	degradedText  = "Laboratory database is offline. Add your Firebase keys to your environment variables (FIREBASE_API_KEY, etc.) to initialize the system."
)

// Notices addressed by code, so redirects can carry them in the query.
var notices = map[string]Notice{
	"brief-config":  {"error", "MuttaqiLab: Protocol Error. The laboratory configuration is incomplete."},
	"review-config": {"error", "Submission failed. Cloud configuration missing."},
	"review-sent":   {"info", "Verdict initializing. Awaiting laboratory approval."},
	"denied":        {"error", "Portal Denied. Check credentials."},
	"auth-config":   {"error", "Portal offline. No identity provider is configured."},
	"store-offline": {"error", "Laboratory database is offline. Changes cannot be synced."},
	"write-failed":  {"error", "Transmission failed. The laboratory rejected the change."},
	"missing":       {"error", "Record not found. It may already have been purged."},
	"invalid":       {"error", "Manifest incomplete. Check the required fields."},
	"synced":        {"info", "Changes transmitted."},
}

func noticeFor(code string) *Notice {
	if n, ok := notices[code]; ok {
		return &n
	}
	return nil
}

// invalidNotice names the fields that failed validation.
func invalidNotice(err error) *Notice {
	n := notices["invalid"]
	var ve *content.ValidationError
	if errors.As(err, &ve) && len(ve.Fields) > 0 {
		n.Text += " (" + strings.Join(ve.Fields, ", ") + ")"
	}
	return &n
}

// writeNoticeCode classifies a console mutation error.
func writeNoticeCode(err error) string {
	switch {
	case err == nil:
		return "synced"
	case errors.Is(err, state.ErrStoreUnconfigured):
		return "store-offline"
	case errors.Is(err, content.ErrInvalid):
		return "invalid"
	case errors.Is(err, store.ErrNotFound):
		return "missing"
	default:
		return "write-failed"
	}
}
