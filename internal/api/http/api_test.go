package http

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/muttaqilab/studio/internal/content"
	"github.com/muttaqilab/studio/internal/state"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeMirror struct {
	mu      sync.Mutex
	view    state.View
	changed chan struct{}
}

func newFakeMirror(v state.View) *fakeMirror {
	return &fakeMirror{view: v, changed: make(chan struct{})}
}

func (m *fakeMirror) View() state.View {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.view
}

func (m *fakeMirror) Status() state.Status {
	return state.Status{RemoteConfigured: true, Synced: map[string]bool{"projects": true}}
}

func (m *fakeMirror) Changed() <-chan struct{} {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.changed
}

func (m *fakeMirror) set(v state.View) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.view = v
	close(m.changed)
	m.changed = make(chan struct{})
}

func sampleView() state.View {
	return state.View{
		Version: 3,
		Projects: []content.Project{
			{ID: "p1", Title: "One", IsFeatured: true},
			{ID: "p2", Title: "Two"},
		},
		Briefs: []content.Brief{{ID: "b1", ClientName: "secret"}},
		Reviews: []content.Review{
			{ID: "r1", ClientName: "Approved", Status: content.ReviewApproved, Rating: 5},
			{ID: "r2", ClientName: "Pending", Status: content.ReviewPending, Rating: 3},
		},
		Socials: content.SocialLinks{Email: "hi@studio.test"},
	}
}

func TestGetContent(t *testing.T) {
	r := gin.New()
	NewContentHandler(newFakeMirror(sampleView())).RegisterRoutes(r.Group("/api/v1"))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/content", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var got struct {
		Version  uint64 `json:"version"`
		Projects []struct {
			ID    string `json:"id"`
			Title string `json:"title"`
		} `json:"projects"`
		Featured []string `json:"featured"`
		Reviews  []struct {
			ID string `json:"id"`
		} `json:"reviews"`
		Socials content.SocialLinks `json:"socials"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))

	assert.Equal(t, uint64(3), got.Version)
	require.Len(t, got.Projects, 2)
	assert.Equal(t, "p1", got.Projects[0].ID)
	assert.Equal(t, []string{"p1"}, got.Featured)
	require.Len(t, got.Reviews, 1, "only approved reviews")
	assert.Equal(t, "r1", got.Reviews[0].ID)
	assert.Equal(t, "hi@studio.test", got.Socials.Email)
	assert.NotContains(t, w.Body.String(), "secret", "briefs stay private")
}

func TestStream(t *testing.T) {
	mirror := newFakeMirror(sampleView())
	r := gin.New()
	NewContentHandler(mirror).RegisterRoutes(r.Group("/api/v1"))

	srv := httptest.NewServer(r)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api/v1/stream", nil)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)
	nextData := func() string {
		for {
			line, err := reader.ReadString('\n')
			require.NoError(t, err)
			if strings.HasPrefix(line, "data: ") {
				return strings.TrimPrefix(strings.TrimSpace(line), "data: ")
			}
		}
	}

	first := nextData()
	assert.Contains(t, first, `"version":3`)

	v := sampleView()
	v.Version = 4
	mirror.set(v)

	second := nextData()
	assert.Contains(t, second, `"version":4`)
}

func TestHealth(t *testing.T) {
	cases := []struct {
		name       string
		ping       Pinger
		wantStatus string
		wantStore  string
	}{
		{"unconfigured", nil, "degraded", "unconfigured"},
		{"up", func(context.Context) error { return nil }, "healthy", "up"},
		{"down", func(context.Context) error { return errors.New("refused") }, "degraded", "down"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := gin.New()
			NewHealthHandler("studio", "1.2.3", "redis", tc.ping, true).RegisterRoutes(r)

			for _, path := range []string{"/health", "/healthz"} {
				w := httptest.NewRecorder()
				r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
				require.Equal(t, http.StatusOK, w.Code)

				var got HealthResponse
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
				assert.Equal(t, tc.wantStatus, got.Status)
				assert.Equal(t, tc.wantStore, got.StoreUp)
				assert.Equal(t, "redis", got.Store)
				assert.Equal(t, "1.2.3", got.Version)
			}
		})
	}
}
