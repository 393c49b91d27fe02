package handlers

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pocketbase/pocketbase/core"
)

const (
	authCookie      = "mohaa_auth"
	usersCollection = "users"
	requestIDHeader = "X-Request-Id"
)

// requestID tags every response with an id so log lines can be matched to
// a request.
func requestID(re *core.RequestEvent) error {
	id := re.Request.Header.Get(requestIDHeader)
	if id == "" {
		id = uuid.NewString()
	}
	re.Response.Header().Set(requestIDHeader, id)
	re.Set("requestId", id)
	return re.Next()
}

// loadSessionAuth fills re.Auth from the session cookie when the request
// did not carry an Authorization header.
func (h *Handlers) loadSessionAuth(re *core.RequestEvent) error {
	if re.Auth != nil {
		return re.Next()
	}
	cookie, err := re.Request.Cookie(authCookie)
	if err != nil || cookie.Value == "" {
		return re.Next()
	}
	record, err := re.App.FindAuthRecordByToken(cookie.Value, core.TokenTypeAuth)
	if err == nil {
		re.Auth = record
	}
	return re.Next()
}

type loginData struct {
	Email    string
	Redirect string
}

func (h *Handlers) loginPage(re *core.RequestEvent) error {
	data := loginData{Redirect: safeRedirect(re.Request.URL.Query().Get("redirect"))}
	page := h.page(re, "login", "", "Sign in", data)
	return h.render(re, page, "login.html")
}

func (h *Handlers) loginPost(re *core.RequestEvent) error {
	email := strings.TrimSpace(re.Request.FormValue("email"))
	password := re.Request.FormValue("password")
	redirect := safeRedirect(re.Request.FormValue("redirect"))

	record, err := re.App.FindAuthRecordByEmail(usersCollection, email)
	if err != nil || !record.ValidatePassword(password) {
		page := h.page(re, "login", "", "Sign in", loginData{Email: email, Redirect: redirect})
		page.Error = "Invalid email or password."
		return h.renderStatus(re, http.StatusUnauthorized, page, "login.html")
	}

	token, err := record.NewAuthToken()
	if err != nil {
		return re.InternalServerError("Failed to create session", err)
	}

	http.SetCookie(re.Response, &http.Cookie{
		Name:     authCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   re.Request.TLS != nil,
		Expires:  time.Now().Add(record.Collection().AuthToken.DurationTime()),
	})
	return re.Redirect(http.StatusSeeOther, redirect)
}

func (h *Handlers) logout(re *core.RequestEvent) error {
	http.SetCookie(re.Response, &http.Cookie{
		Name:     authCookie,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
	return re.Redirect(http.StatusSeeOther, "/stats")
}

// requireMember redirects guests to the login page and reports whether the
// caller may continue.
func (h *Handlers) requireMember(re *core.RequestEvent) (*core.Record, error) {
	if re.Auth != nil && re.Auth.Collection().Name == usersCollection {
		return re.Auth, nil
	}
	target := "/login?redirect=" + urlEscape(re.Request.URL.RequestURI())
	return nil, re.Redirect(http.StatusFound, target)
}

// safeRedirect keeps post-login redirects on this site. Browsers treat a
// backslash like a slash, so "/\host" is as external as "//host"; escaped
// forms are checked again after decoding.
func safeRedirect(target string) string {
	const home = "/stats"
	if target == "" || target[0] != '/' || strings.HasPrefix(target, "//") ||
		strings.ContainsAny(target, "\\\r\n\t") {
		return home
	}
	u, err := url.Parse(target)
	if err != nil || u.Scheme != "" || u.Host != "" || u.Opaque != "" {
		return home
	}
	if p := u.Path; strings.HasPrefix(p, "//") || strings.Contains(p, "\\") {
		return home
	}
	return target
}
