package handlers

import (
	"context"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/pocketbase/pocketbase/core"
	"golang.org/x/sync/errgroup"
)

// partialsFile holds the shared sub-templates (pagination, empty states,
// charts) every page may call.
const partialsFile = "partials.html"

// Crumb is one linktree entry.
type Crumb struct {
	Name string
	URL  string
}

// Member is the signed-in forum user as the layout sees it.
type Member struct {
	ID    string
	Name  string
	Email string
}

// Page is the view model every template receives. Data carries the
// action-specific payload.
type Page struct {
	SiteTitle string
	Title     string
	Area      string
	Action    string
	Linktree  []Crumb
	Member    *Member
	Notice    string
	Error     string
	RequestID string
	Data      any
}

var areaNames = map[string]string{
	"stats":        "Statistics",
	"servers":      "Servers",
	"achievements": "Achievements",
	"teams":        "Teams",
	"tournaments":  "Tournaments",
	"identity":     "Link Identity",
}

func (h *Handlers) page(re *core.RequestEvent, area, action, title string, data any) *Page {
	p := &Page{
		SiteTitle: h.cfg.Site.Title,
		Title:     title,
		Area:      area,
		Action:    action,
		Linktree:  []Crumb{{Name: h.cfg.Site.Title, URL: "/"}},
		Data:      data,
	}
	if name, ok := areaNames[area]; ok {
		p.Linktree = append(p.Linktree, Crumb{Name: name, URL: "/" + area})
	}
	if id, ok := re.Get("requestId").(string); ok {
		p.RequestID = id
	}
	if re.Auth != nil && re.Auth.Collection().Name == usersCollection {
		p.Member = &Member{
			ID:    re.Auth.Id,
			Name:  memberName(re.Auth),
			Email: re.Auth.Email(),
		}
	}
	return p
}

// Crumb appends a linktree entry.
func (p *Page) Crumb(name, url string) *Page {
	p.Linktree = append(p.Linktree, Crumb{Name: name, URL: url})
	return p
}

func memberName(r *core.Record) string {
	if name := r.GetString("name"); name != "" {
		return name
	}
	return r.Email()
}

func (h *Handlers) render(re *core.RequestEvent, p *Page, tmpl string) error {
	return h.renderStatus(re, http.StatusOK, p, tmpl)
}

func (h *Handlers) renderStatus(re *core.RequestEvent, status int, p *Page, tmpl string) error {
	html, err := h.renderer.Page(p, tmpl, partialsFile)
	if err != nil {
		h.logger.Error("Failed to render template", "template", tmpl, "path", re.Request.URL.Path, "error", err)
		return re.InternalServerError("Failed to render template", err)
	}
	return re.HTML(status, html)
}

// renderFragment renders a template without the layout, for polling
// requests that swap part of a page.
func (h *Handlers) renderFragment(re *core.RequestEvent, p *Page, tmpl string) error {
	html, err := h.renderer.Render(p, tmpl, partialsFile)
	if err != nil {
		h.logger.Error("Failed to render fragment", "template", tmpl, "error", err)
		return re.InternalServerError("Failed to render template", err)
	}
	return re.HTML(http.StatusOK, html)
}

func (h *Handlers) errorPage(re *core.RequestEvent, status int, title, message string) error {
	p := h.page(re, "", "", title, nil)
	p.Error = message
	return h.renderStatus(re, status, p, "error.html")
}

func (h *Handlers) notFound(re *core.RequestEvent, what string) error {
	return h.errorPage(re, http.StatusNotFound, what+" not found",
		"The requested "+strings.ToLower(what)+" could not be found.")
}

// warn logs a failed API call; the page still renders with what it has.
func (h *Handlers) warn(re *core.RequestEvent, msg string, err error, args ...any) {
	args = append(args, "path", re.Request.URL.Path, "error", err)
	h.logger.Warn(msg, args...)
}

// fetches maps a name to one API call that stores its own result.
type fetches map[string]func(ctx context.Context) error

// fetchAll runs the calls concurrently. A failing call never cancels the
// others; failures are logged and returned by name.
func (h *Handlers) fetchAll(re *core.RequestEvent, calls fetches) map[string]error {
	ctx := re.Request.Context()
	failed := make(map[string]error)
	var mu sync.Mutex

	var g errgroup.Group
	for name, call := range calls {
		g.Go(func() error {
			if err := call(ctx); err != nil {
				mu.Lock()
				failed[name] = err
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	for name, err := range failed {
		h.warn(re, "Stats API call failed", err, "call", name)
	}
	return failed
}

func queryString(re *core.RequestEvent, key string) string {
	return strings.TrimSpace(re.Request.URL.Query().Get(key))
}

// queryInt parses a non-negative integer parameter, def when absent or bad.
func queryInt(re *core.RequestEvent, key string, def int) int {
	v, err := strconv.Atoi(queryString(re, key))
	if err != nil || v < 0 {
		return def
	}
	return v
}

// oneOf returns v when it is one of allowed, def otherwise.
func oneOf(v string, allowed []string, def string) string {
	if slices.Contains(allowed, v) {
		return v
	}
	return def
}

func urlEscape(s string) string {
	return url.QueryEscape(s)
}

// isFragmentRequest reports whether the page is being polled for a partial
// update rather than loaded in full.
func isFragmentRequest(re *core.RequestEvent) bool {
	return re.Request.Header.Get("HX-Request") == "true" || queryString(re, "fragment") == "1"
}
