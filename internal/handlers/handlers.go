// Package handlers serves the portal's pages. Every area is a Dispatcher
// that routes on the sa query parameter, calls the stats API and renders a
// Page view model through the shared layout.
package handlers

import (
	"io/fs"
	"log/slog"
	"net/http"

	"mohaa-portal/internal/analysis"
	"mohaa-portal/internal/config"
	"mohaa-portal/internal/query"
	"mohaa-portal/internal/render"
	"mohaa-portal/internal/statsapi"

	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/tools/router"
)

// Deps are the services the handlers read from.
type Deps struct {
	Config    *config.Config
	API       *statsapi.Client
	Pool      *query.ServerPool
	Renderer  *render.Renderer
	StaticFS  fs.FS
	CacheName string
	Logger    *slog.Logger
}

// Handlers holds the page handlers for every area.
type Handlers struct {
	app       core.App
	cfg       *config.Config
	api       *statsapi.Client
	pool      *query.ServerPool
	renderer  *render.Renderer
	static    fs.FS
	cacheName string
	predictor *analysis.Predictor
	logger    *slog.Logger
}

// New creates the handlers. A nil logger falls back to the app logger.
func New(app core.App, deps Deps) *Handlers {
	logger := deps.Logger
	if logger == nil {
		logger = app.Logger()
	}
	return &Handlers{
		app:       app,
		cfg:       deps.Config,
		api:       deps.API,
		pool:      deps.Pool,
		renderer:  deps.Renderer,
		static:    deps.StaticFS,
		cacheName: deps.CacheName,
		predictor: analysis.NewPredictor(),
		logger:    logger.With("component", "HANDLERS"),
	}
}

// Register binds the routes when the app starts serving.
func Register(app core.App, deps Deps) *Handlers {
	h := New(app, deps)

	app.OnServe().BindFunc(func(e *core.ServeEvent) error {
		h.Bind(e.Router)
		return e.Next()
	})

	return h
}

// Bind registers every route on r.
func (h *Handlers) Bind(r *router.Router[*core.RequestEvent]) {
	r.BindFunc(requestID)
	r.BindFunc(h.loadSessionAuth)

	r.GET("/{$}", func(re *core.RequestEvent) error {
		return re.Redirect(http.StatusFound, "/stats")
	})

	stats := h.statsArea()
	servers := h.serversArea()
	achievements := h.achievementsArea()
	teams := h.teamsArea()
	tournaments := h.tournamentsArea()
	identity := h.identityArea()

	r.GET("/stats", h.siteEnabled(stats.Serve))
	r.GET("/servers", h.siteEnabled(servers.Serve))
	r.GET("/achievements", h.siteEnabled(achievements.Serve))
	r.GET("/teams", h.siteEnabled(teams.Serve))
	r.POST("/teams", h.siteEnabled(h.teamsPost))
	r.GET("/tournaments", h.siteEnabled(tournaments.Serve))
	r.GET("/identity", h.siteEnabled(identity.Serve))
	r.POST("/identity", h.siteEnabled(h.identityPost))
	r.POST("/identity/verify", h.identityVerify)

	r.GET("/login", h.loginPage)
	r.POST("/login", h.loginPost)
	r.POST("/logout", h.logout)

	r.GET("/mohaaapi", h.apiProxy)
	r.GET("/health", h.health)

	if h.static != nil {
		r.GET("/static/{path...}", apis.Static(h.static, false))
	}
}

// siteEnabled short-circuits every page with the disabled notice when the
// portal is switched off in config.
func (h *Handlers) siteEnabled(next func(*core.RequestEvent) error) func(*core.RequestEvent) error {
	return func(re *core.RequestEvent) error {
		if !h.cfg.Site.Enabled {
			return h.errorPage(re, http.StatusServiceUnavailable, "Statistics disabled",
				"The statistics system is currently disabled.")
		}
		return next(re)
	}
}

func (h *Handlers) perPage() int {
	if h.cfg.Site.PerPage > 0 {
		return h.cfg.Site.PerPage
	}
	return 25
}
