package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/muttaqilab/studio/internal/content"
	"github.com/muttaqilab/studio/internal/state"
)

// Mirror is the read side of the state store used by the public API.
type Mirror interface {
	View() state.View
	Status() state.Status
	Changed() <-chan struct{}
}

// projectDTO carries the id that the stored record omits.
type projectDTO struct {
	ID string `json:"id"`
	content.Project
}

type reviewDTO struct {
	ID string `json:"id"`
	content.Review
}

type statusDTO struct {
	RemoteConfigured bool            `json:"remoteConfigured"`
	RemoteDown       bool            `json:"remoteDown"`
	Synced           map[string]bool `json:"synced"`
	RemoteEmpty      map[string]bool `json:"remoteEmpty"`
}

// ContentResponse is the public snapshot. Briefs and pending reviews are
// never exposed here.
type ContentResponse struct {
	Version  uint64              `json:"version"`
	Projects []projectDTO        `json:"projects"`
	Featured []string            `json:"featured"`
	Reviews  []reviewDTO         `json:"reviews"`
	Socials  content.SocialLinks `json:"socials"`
	Status   statusDTO           `json:"status"`
}

func buildContent(m Mirror) ContentResponse {
	v := m.View()
	st := m.Status()

	resp := ContentResponse{
		Version:  v.Version,
		Projects: make([]projectDTO, 0, len(v.Projects)),
		Featured: []string{},
		Reviews:  []reviewDTO{},
		Socials:  v.Socials,
		Status: statusDTO{
			RemoteConfigured: st.RemoteConfigured,
			RemoteDown:       st.RemoteDown,
			Synced:           st.Synced,
			RemoteEmpty:      st.RemoteEmpty,
		},
	}
	for _, p := range v.Projects {
		resp.Projects = append(resp.Projects, projectDTO{ID: p.ID, Project: p})
	}
	for _, p := range content.Featured(v.Projects) {
		resp.Featured = append(resp.Featured, p.ID)
	}
	for _, r := range content.Approved(v.Reviews) {
		resp.Reviews = append(resp.Reviews, reviewDTO{ID: r.ID, Review: r})
	}
	return resp
}

type ContentHandler struct {
	mirror Mirror
}

func NewContentHandler(m Mirror) *ContentHandler {
	return &ContentHandler{mirror: m}
}

func (h *ContentHandler) GetContent(c *gin.Context) {
	c.JSON(http.StatusOK, buildContent(h.mirror))
}

func (h *ContentHandler) RegisterRoutes(r gin.IRouter) {
	r.GET("/content", h.GetContent)
	r.GET("/stream", h.Stream)
}
