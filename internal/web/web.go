// Package web renders the public site and the admin console.
package web

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/muttaqilab/studio/config"
	"github.com/muttaqilab/studio/internal/content"
	"github.com/muttaqilab/studio/internal/intel"
	"github.com/muttaqilab/studio/internal/state"
)

type Deps struct {
	State       *state.Store
	Intel       *intel.Runner
	Diagnostics []config.Diagnostic
	Logger      *slog.Logger
	// SecureCookies marks the session cookie Secure; set behind TLS.
	SecureCookies bool
	// MaxUpload caps an uploaded project image, in bytes.
	MaxUpload int64
}

type Handler struct {
	state  *state.Store
	intel  *intel.Runner
	diag   []config.Diagnostic
	log    *slog.Logger
	secure bool
	maxImg int64
}

func New(dep Deps) *Handler {
	if dep.Logger == nil {
		dep.Logger = slog.Default()
	}
	if dep.MaxUpload == 0 {
		dep.MaxUpload = 4 << 20
	}
	return &Handler{
		state:  dep.State,
		intel:  dep.Intel,
		diag:   dep.Diagnostics,
		log:    dep.Logger.With("component", "web"),
		secure: dep.SecureCookies,
		maxImg: dep.MaxUpload,
	}
}

// Register installs the page renderer and every site and console route.
// Unknown paths redirect home.
func (h *Handler) Register(r *gin.Engine) error {
	p, err := loadPages()
	if err != nil {
		return err
	}
	r.HTMLRender = p

	site := r.Group("/", h.Session())
	site.GET("/", h.Home)
	site.GET("/projects", h.Archive)
	site.GET("/project/:id", h.ProjectDetail)
	site.GET("/brief", h.BriefForm)
	site.POST("/brief", h.SubmitBrief)
	site.GET("/brief/received", h.BriefReceived)
	site.GET("/reviews", h.ReviewsPage)
	site.POST("/reviews", h.SubmitReview)
	site.GET("/about", h.About)
	site.GET("/work-with-me", h.Process)
	site.GET("/contact", h.Contact)
	site.GET("/login", h.LoginForm)
	site.POST("/login", h.Login)
	site.POST("/logout", h.Logout)

	console := site.Group("/admin", RequireConsole(h.state.Auth))
	console.GET("", h.Console)
	console.GET("/projects/new", h.NewProject)
	console.GET("/projects/:id/edit", h.EditProject)
	console.POST("/projects", h.SaveProject)
	console.POST("/projects/:id", h.SaveProject)
	console.POST("/projects/:id/delete", h.DeleteProject)
	console.POST("/briefs/:id/status", h.SetBriefStatus)
	console.POST("/briefs/:id/delete", h.DeleteBrief)
	console.GET("/briefs/:id/scan", h.Scan)
	console.POST("/briefs/:id/scan/close", h.CloseScan)
	console.POST("/reviews/:id/toggle", h.ToggleReview)
	console.POST("/reviews/:id/delete", h.DeleteReview)
	console.POST("/settings/socials", h.SaveSocials)

	r.NoRoute(func(c *gin.Context) {
		c.Redirect(http.StatusFound, "/")
	})
	return nil
}

// page is the data every template receives.
type page struct {
	Title         string
	Path          string
	Brand         string
	Tagline       string
	Degraded      bool
	DegradedTitle string
	DegradedText  string
	Notice        *Notice
	Socials       content.SocialLinks
	Auth          content.AuthState
	Data          any
}

func (h *Handler) page(c *gin.Context, title string, data any) page {
	site := h.state.Site()
	p := page{
		Title:         fmt.Sprintf("%s | %s", title, titleSuffix),
		Path:          c.Request.URL.Path,
		Brand:         site.Brand,
		Tagline:       site.Tagline,
		Degraded:      h.state.Status().Degraded(),
		DegradedTitle: degradedTitle,
		DegradedText:  degradedText,
		Notice:        noticeFor(c.Query("notice")),
		Socials:       h.state.Socials(),
		Auth:          h.state.Auth(SessionID(c)),
		Data:          data,
	}
	return p
}

func (h *Handler) render(c *gin.Context, status int, name, title string, data any) {
	c.HTML(status, name, h.page(c, title, data))
}

func (h *Handler) renderNotice(c *gin.Context, status int, name, title string, data any, n *Notice) {
	p := h.page(c, title, data)
	p.Notice = n
	c.HTML(status, name, p)
}
