package web

import (
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/muttaqilab/studio/config"
	"github.com/muttaqilab/studio/internal/content"
	"github.com/muttaqilab/studio/internal/intel"
	"github.com/muttaqilab/studio/internal/state"
	"github.com/muttaqilab/studio/internal/store"
)

var consoleTabs = []string{"projects", "briefs", "reviews", "settings"}

type consoleData struct {
	Tab           string
	Tabs          []string
	User          *content.User
	Status        state.Status
	Projects      []content.Project
	Briefs        []content.Brief
	Reviews       []content.Review
	Socials       content.SocialLinks
	BriefStatuses []string
	Diagnostics   []config.Diagnostic
}

func (h *Handler) Console(c *gin.Context) {
	tab := c.DefaultQuery("tab", consoleTabs[0])
	if !slices.Contains(consoleTabs, tab) {
		tab = consoleTabs[0]
	}

	v := h.state.View()
	user, _ := c.Get(CtxUser)
	u, _ := user.(*content.User)

	h.render(c, http.StatusOK, "console", "Console", consoleData{
		Tab:           tab,
		Tabs:          consoleTabs,
		User:          u,
		Status:        h.state.Status(),
		Projects:      v.Projects,
		Briefs:        v.Briefs,
		Reviews:       v.Reviews,
		Socials:       v.Socials,
		BriefStatuses: content.BriefStatuses,
		Diagnostics:   h.diag,
	})
}

// done redirects back to a console tab with a notice for err.
func (h *Handler) done(c *gin.Context, tab string, err error) {
	if err != nil {
		h.log.Warn("console action failed", "path", c.Request.URL.Path, "error", err)
	}
	q := url.Values{"tab": {tab}, "notice": {writeNoticeCode(err)}}
	c.Redirect(http.StatusSeeOther, "/admin?"+q.Encode())
}

type projectForm struct {
	Title       string `form:"title"`
	Category    string `form:"category"`
	Description string `form:"description"`
	Images      string `form:"images"`
	IsFeatured  bool   `form:"isFeatured"`
}

type editorData struct {
	Project    content.Project
	Categories []string
}

func (h *Handler) NewProject(c *gin.Context) {
	h.render(c, http.StatusOK, "editor", "Console", editorData{
		Project:    content.Project{Category: content.DefaultCategory},
		Categories: content.Categories,
	})
}

func (h *Handler) EditProject(c *gin.Context) {
	p, ok := content.FindProject(h.state.Projects(), c.Param("id"))
	if !ok {
		h.done(c, "projects", fmt.Errorf("edit project: %w", store.ErrNotFound))
		return
	}
	h.render(c, http.StatusOK, "editor", "Console", editorData{Project: p, Categories: content.Categories})
}

// SaveProject handles both the new and the edit form. An uploaded image
// replaces the image list with a single data URL.
func (h *Handler) SaveProject(c *gin.Context) {
	var f projectForm
	if err := c.ShouldBind(&f); err != nil {
		h.done(c, "projects", fmt.Errorf("%w: %v", content.ErrInvalid, err))
		return
	}

	p := content.Project{
		ID:          c.Param("id"),
		Title:       strings.TrimSpace(f.Title),
		Category:    f.Category,
		Description: strings.TrimSpace(f.Description),
		Images:      splitLines(f.Images),
		IsFeatured:  f.IsFeatured,
	}

	img, err := h.uploadedImage(c)
	if err != nil {
		h.done(c, "projects", err)
		return
	}
	if img != "" {
		p.Images = []string{img}
	}

	_, err = h.state.SaveProject(c.Request.Context(), p)
	h.done(c, "projects", err)
}

func (h *Handler) uploadedImage(c *gin.Context) (string, error) {
	fh, err := c.FormFile("image")
	if err != nil {
		// no file part
		return "", nil
	}
	if fh.Size > h.maxImg {
		return "", fmt.Errorf("%w: image larger than %d bytes", content.ErrInvalid, h.maxImg)
	}

	f, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer f.Close()

	raw, err := io.ReadAll(io.LimitReader(f, h.maxImg+1))
	if err != nil {
		return "", err
	}
	if int64(len(raw)) > h.maxImg {
		return "", fmt.Errorf("%w: image larger than %d bytes", content.ErrInvalid, h.maxImg)
	}

	mime := http.DetectContentType(raw)
	if !strings.HasPrefix(mime, "image/") {
		return "", fmt.Errorf("%w: not an image (%s)", content.ErrInvalid, mime)
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(raw), nil
}

func splitLines(s string) []string {
	out := []string{}
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}

func (h *Handler) DeleteProject(c *gin.Context) {
	h.done(c, "projects", h.state.DeleteProject(c.Request.Context(), c.Param("id")))
}

func (h *Handler) SetBriefStatus(c *gin.Context) {
	h.done(c, "briefs", h.state.SetBriefStatus(c.Request.Context(), c.Param("id"), c.PostForm("status")))
}

func (h *Handler) DeleteBrief(c *gin.Context) {
	id := c.Param("id")
	err := h.state.DeleteBrief(c.Request.Context(), id)
	if err == nil {
		if cur, ok := h.intel.Current(SessionID(c)); ok && cur.BriefID == id {
			h.intel.Close(SessionID(c))
		}
	}
	h.done(c, "briefs", err)
}

func (h *Handler) ToggleReview(c *gin.Context) {
	h.done(c, "reviews", h.state.ToggleReview(c.Request.Context(), c.Param("id")))
}

func (h *Handler) DeleteReview(c *gin.Context) {
	h.done(c, "reviews", h.state.DeleteReview(c.Request.Context(), c.Param("id")))
}

type socialsForm struct {
	Instagram string `form:"instagram"`
	Facebook  string `form:"facebook"`
	WhatsApp  string `form:"whatsapp"`
	Twitter   string `form:"twitter"`
	Pinterest string `form:"pinterest"`
	Behance   string `form:"behance"`
	LinkedIn  string `form:"linkedin"`
	Email     string `form:"email"`
}

func (h *Handler) SaveSocials(c *gin.Context) {
	var f socialsForm
	if err := c.ShouldBind(&f); err != nil {
		h.done(c, "settings", fmt.Errorf("%w: %v", content.ErrInvalid, err))
		return
	}
	links := content.SocialLinks{
		Instagram: strings.TrimSpace(f.Instagram),
		Facebook:  strings.TrimSpace(f.Facebook),
		WhatsApp:  strings.TrimSpace(f.WhatsApp),
		Twitter:   strings.TrimSpace(f.Twitter),
		Pinterest: strings.TrimSpace(f.Pinterest),
		Behance:   strings.TrimSpace(f.Behance),
		LinkedIn:  strings.TrimSpace(f.LinkedIn),
		Email:     strings.TrimSpace(f.Email),
	}
	h.done(c, "settings", h.state.SaveSocials(c.Request.Context(), links))
}

type scanData struct {
	Brief content.Brief
	Scan  intel.Scan
	Steps []string
}

// Scan opens the intelligence terminal for a brief. Reloading the page
// while a scan runs shows its progress without restarting it.
func (h *Handler) Scan(c *gin.Context) {
	b, ok := content.FindBrief(h.state.Briefs(), c.Param("id"))
	if !ok {
		h.done(c, "briefs", fmt.Errorf("scan: %w", store.ErrNotFound))
		return
	}

	scan := h.intel.Open(SessionID(c), b)
	h.render(c, http.StatusOK, "scan", "Console", scanData{Brief: b, Scan: scan, Steps: intel.Steps})
}

func (h *Handler) CloseScan(c *gin.Context) {
	h.intel.Close(SessionID(c))
	c.Redirect(http.StatusSeeOther, "/admin?tab=briefs")
}
