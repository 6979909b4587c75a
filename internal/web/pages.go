package web

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/muttaqilab/studio/internal/content"
	"github.com/muttaqilab/studio/internal/state"
)

type homeData struct {
	Featured []content.Project
}

func (h *Handler) Home(c *gin.Context) {
	h.render(c, http.StatusOK, "home", "Home", homeData{
		Featured: content.Featured(h.state.Projects()),
	})
}

type archiveData struct {
	Categories []string
	Category   string
	Search     string
	Projects   []content.Project
}

func (h *Handler) Archive(c *gin.Context) {
	projects := h.state.Projects()
	category := c.DefaultQuery("category", content.AllCategories)
	search := strings.TrimSpace(c.Query("q"))

	h.render(c, http.StatusOK, "projects", "Archive", archiveData{
		Categories: content.ArchiveCategories(projects),
		Category:   category,
		Search:     search,
		Projects:   content.FilterArchive(projects, category, search),
	})
}

func (h *Handler) ProjectDetail(c *gin.Context) {
	p, ok := content.FindProject(h.state.Projects(), c.Param("id"))
	if !ok {
		c.Redirect(http.StatusFound, "/")
		return
	}
	h.render(c, http.StatusOK, "project", p.Title, p)
}

type briefForm struct {
	ClientName   string   `form:"clientName"`
	CompanyName  string   `form:"companyName"`
	Email        string   `form:"email"`
	ProjectGoals string   `form:"projectGoals"`
	Deliverables []string `form:"deliverables"`
	Budget       string   `form:"budget"`
	Timeline     string   `form:"timeline"`
}

type briefData struct {
	Form         briefForm
	Deliverables []string
	Budgets      []string
	Timelines    []string
}

func newBriefData(f briefForm) briefData {
	return briefData{
		Form:         f,
		Deliverables: content.Deliverables,
		Budgets:      content.BudgetTiers,
		Timelines:    content.Timelines,
	}
}

func (h *Handler) BriefForm(c *gin.Context) {
	h.render(c, http.StatusOK, "brief", "Start Project", newBriefData(briefForm{
		Budget:   content.DefaultBudget,
		Timeline: content.DefaultTimeline,
	}))
}

func (h *Handler) SubmitBrief(c *gin.Context) {
	var f briefForm
	if err := c.ShouldBind(&f); err != nil {
		h.renderNotice(c, http.StatusBadRequest, "brief", "Start Project", newBriefData(f), invalidNotice(err))
		return
	}

	b := content.NewBrief(f.ClientName, f.CompanyName, f.Email, f.ProjectGoals)
	b.Deliverables = append(b.Deliverables, f.Deliverables...)
	if f.Budget != "" {
		b.Budget = f.Budget
	}
	if f.Timeline != "" {
		b.Timeline = f.Timeline
	}

	_, err := h.state.SubmitBrief(c.Request.Context(), b)
	switch {
	case err == nil:
		c.Redirect(http.StatusSeeOther, "/brief/received")
	case errors.Is(err, content.ErrInvalid):
		h.renderNotice(c, http.StatusUnprocessableEntity, "brief", "Start Project", newBriefData(f), invalidNotice(err))
	case errors.Is(err, state.ErrStoreUnconfigured):
		h.renderNotice(c, http.StatusServiceUnavailable, "brief", "Start Project", newBriefData(f), noticeFor("brief-config"))
	default:
		h.renderNotice(c, http.StatusBadGateway, "brief", "Start Project", newBriefData(f), noticeFor("write-failed"))
	}
}

func (h *Handler) BriefReceived(c *gin.Context) {
	h.render(c, http.StatusOK, "brief_received", "Start Project", nil)
}

type reviewForm struct {
	ClientName string `form:"clientName"`
	Content    string `form:"content"`
	Rating     int    `form:"rating"`
}

type reviewsData struct {
	Reviews []content.Review
	Form    reviewForm
	Ratings []int
}

func (h *Handler) reviewsData(f reviewForm) reviewsData {
	return reviewsData{
		Reviews: content.Approved(h.state.Reviews()),
		Form:    f,
		Ratings: []int{1, 2, 3, 4, 5},
	}
}

func (h *Handler) ReviewsPage(c *gin.Context) {
	h.render(c, http.StatusOK, "reviews", "Verdicts", h.reviewsData(reviewForm{Rating: 5}))
}

func (h *Handler) SubmitReview(c *gin.Context) {
	var f reviewForm
	if err := c.ShouldBind(&f); err != nil {
		h.renderNotice(c, http.StatusBadRequest, "reviews", "Verdicts", h.reviewsData(f), invalidNotice(err))
		return
	}

	_, err := h.state.SubmitReview(c.Request.Context(), content.Review{
		ClientName: strings.TrimSpace(f.ClientName),
		Content:    strings.TrimSpace(f.Content),
		Rating:     f.Rating,
	})
	switch {
	case err == nil:
		c.Redirect(http.StatusSeeOther, "/reviews?notice=review-sent")
	case errors.Is(err, content.ErrInvalid):
		h.renderNotice(c, http.StatusUnprocessableEntity, "reviews", "Verdicts", h.reviewsData(f), invalidNotice(err))
	case errors.Is(err, state.ErrStoreUnconfigured):
		h.renderNotice(c, http.StatusServiceUnavailable, "reviews", "Verdicts", h.reviewsData(f), noticeFor("review-config"))
	default:
		h.renderNotice(c, http.StatusBadGateway, "reviews", "Verdicts", h.reviewsData(f), noticeFor("write-failed"))
	}
}

func (h *Handler) About(c *gin.Context) {
	h.render(c, http.StatusOK, "about", "About Vision", h.state.Site())
}

func (h *Handler) Process(c *gin.Context) {
	h.render(c, http.StatusOK, "process", "Process", h.state.Site())
}

func (h *Handler) Contact(c *gin.Context) {
	h.render(c, http.StatusOK, "contact", "Contact", h.state.Socials().Channels())
}

type loginData struct {
	Email     string
	Available bool
}

func (h *Handler) LoginForm(c *gin.Context) {
	if h.state.Auth(SessionID(c)).IsAuthenticated {
		c.Redirect(http.StatusFound, "/admin")
		return
	}
	h.render(c, http.StatusOK, "login", "Authorize Portal", loginData{Available: h.state.Status().AuthConfigured})
}

func (h *Handler) Login(c *gin.Context) {
	email := strings.TrimSpace(c.PostForm("email"))
	password := c.PostForm("password")
	data := loginData{Email: email, Available: h.state.Status().AuthConfigured}

	// Sign in under a new id; the pre-login cookie never becomes a
	// console session.
	sid := uuid.NewString()
	err := h.state.Login(c.Request.Context(), sid, email, password)
	if err != nil {
		h.state.EndSession(sid)
	}
	switch {
	case err == nil:
		h.rotateSession(c, sid)
		c.Redirect(http.StatusSeeOther, "/admin")
	case errors.Is(err, state.ErrAuthUnconfigured):
		h.renderNotice(c, http.StatusServiceUnavailable, "login", "Authorize Portal", data, noticeFor("auth-config"))
	default:
		h.renderNotice(c, http.StatusUnauthorized, "login", "Authorize Portal", data, noticeFor("denied"))
	}
}

// rotateSession moves the browser onto sid and retires its previous
// session, including any scan it had open.
func (h *Handler) rotateSession(c *gin.Context, sid string) {
	old := SessionID(c)
	h.intel.Close(old)
	if h.state.Auth(old).IsAuthenticated {
		if err := h.state.Logout(c.Request.Context(), old); err != nil {
			h.log.Warn("retire session failed", "error", err)
		}
	}
	h.state.EndSession(old)

	h.setSessionCookie(c, sid)
	c.Set(CtxSession, sid)
}

func (h *Handler) Logout(c *gin.Context) {
	sid := SessionID(c)
	h.intel.Close(sid)
	if err := h.state.Logout(c.Request.Context(), sid); err != nil && !errors.Is(err, state.ErrAuthUnconfigured) {
		h.log.Warn("logout failed", "error", err)
	}
	h.state.EndSession(sid)
	c.Redirect(http.StatusSeeOther, "/")
}
