package app

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"mohaa-portal/assets"
	"mohaa-portal/internal/cache"
	"mohaa-portal/internal/config"
	"mohaa-portal/internal/handlers"
	"mohaa-portal/internal/jobs"
	"mohaa-portal/internal/query"
	"mohaa-portal/internal/render"
	"mohaa-portal/internal/statsapi"

	"github.com/natefinch/atomic"
	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"github.com/pocketbase/pocketbase/plugins/migratecmd"
)

const pidFile = "mohaa-portal.pid"

// App wraps PocketBase with application-specific components and methods
type App struct {
	*pocketbase.PocketBase // Embed PocketBase - all its methods are available

	// Custom application components
	Config       *config.Config
	Cache        cache.Cache
	API          *statsapi.Client
	Pool         *query.ServerPool
	Renderer     *render.Renderer
	Handlers     *handlers.Handlers
	themeWatcher *render.ThemeWatcher

	// Version information (injected at build time via ldflags)
	Version string
	Commit  string
	Date    string
}

// New creates and initializes the portal application
func New() (*App, error) {
	return NewWithVersion("dev", "unknown", "unknown")
}

// NewWithVersion creates a new app with version information
func NewWithVersion(version, commit, date string) (*App, error) {
	app := &App{
		PocketBase: pocketbase.New(),
		Version:    version,
		Commit:     commit,
		Date:       date,
	}

	if err := app.setupServices(); err != nil {
		return nil, fmt.Errorf("failed to setup services: %w", err)
	}

	// Setup default plugins (typically adds more cli commands)
	app.setupPlugins()

	return app, nil
}

// Setup configuration, logger, cache, API client, query pool and renderer.
func (app *App) setupServices() error {
	cfgVal := app.Store().GetOrSet("config", func() any {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		return cfg
	})
	if err, ok := cfgVal.(error); ok {
		return fmt.Errorf("failed to load config: %w", err)
	}
	app.Config = cfgVal.(*config.Config)

	if err := app.setupLogger(); err != nil {
		return fmt.Errorf("failed to setup logger: %w", err)
	}

	store, err := cache.New(app.Config.Cache)
	if err != nil {
		return fmt.Errorf("failed to create cache: %w", err)
	}
	app.Cache = store

	api := app.Config.API
	app.API = statsapi.New(api.BaseURL,
		statsapi.WithToken(api.ServerToken),
		statsapi.WithTimeout(api.Timeout()),
		statsapi.WithCache(store, api.CacheTTL(), api.LiveCacheTTL()),
		statsapi.WithLogger(app.Logger()),
	)

	app.Pool = query.NewServerPool(app.Logger())
	for _, sc := range app.Config.EnabledServers() {
		app.Pool.AddServer(sc.Address, sc.Name)
	}

	templates, err := assets.GetWebAssets().Sub("templates")
	if err != nil {
		return fmt.Errorf("failed to load templates: %w", err)
	}
	app.Renderer = render.New(templates, app.Config.Site.ThemeDir, app.Logger().With("component", "RENDER"))

	app.OnTerminate().BindFunc(func(e *core.TerminateEvent) error {
		if app.Cache != nil {
			if err := app.Cache.Close(); err != nil {
				app.Logger().Warn("Failed to close cache", "component", "APP", "error", err)
			}
		}
		return e.Next()
	})

	return nil
}

// setupPlugins configures PocketBase plugins and the extra commands
func (app *App) setupPlugins() {
	// Auto-migrate database
	migratecmd.MustRegister(app.PocketBase, app.RootCmd, migratecmd.Config{
		Automigrate: true,
	})

	app.RootCmd.AddCommand(app.versionCommand(), app.initConfigCommand(), app.cacheCommand())
}

// Bootstrap registers the lifecycle hooks, routes and jobs
func (app *App) Bootstrap() error {
	staticFS, err := assets.GetWebAssets().Sub("static")
	if err != nil {
		return fmt.Errorf("failed to load static assets: %w", err)
	}

	app.OnServe().BindFunc(func(e *core.ServeEvent) error {
		// PID file for service managers
		pid := strings.NewReader(strconv.Itoa(os.Getpid()))
		if err := atomic.WriteFile(pidFile, pid); err != nil {
			app.Logger().Warn("Failed to write PID file", "component", "APP", "error", err)
		}
		return app.onServe(e)
	})

	app.Handlers = handlers.Register(app, handlers.Deps{
		Config:    app.Config,
		API:       app.API,
		Pool:      app.Pool,
		Renderer:  app.Renderer,
		StaticFS:  staticFS,
		CacheName: cache.Name(app.Cache),
		Logger:    app.Logger(),
	})

	BindRecordMiddlewares(app)

	app.OnTerminate().BindFunc(func(e *core.TerminateEvent) error {
		os.Remove(pidFile)
		return app.onTerminate(e)
	})

	return nil
}

// onServe is called when the server starts
func (app *App) onServe(e *core.ServeEvent) error {
	logger := app.Logger().With("component", "APP")
	logger.Info("Starting mohaa-portal", "version", app.Version, "api", app.Config.API.BaseURL)

	if err := app.Config.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if err := app.Config.EnsureServersInDatabase(app.PocketBase); err != nil {
		return fmt.Errorf("failed to ensure servers in database: %w", err)
	}

	if dir := app.Config.Site.ThemeDir; dir != "" {
		w, err := render.NewThemeWatcher(app.Renderer, dir)
		if err != nil {
			logger.Warn("Theme reload disabled", "dir", dir, "error", err)
		} else {
			app.themeWatcher = w
			w.Start()
		}
	}

	jobs.RegisterServerStatusPoll(app.PocketBase, app.Pool, app.Logger().With("component", "POLL_JOB"))
	jobs.RegisterPruneOldData(app.PocketBase, app.Logger().With("component", "PRUNE_JOB"))
	jobs.RegisterCacheWarmer(app.PocketBase, app.API, app.Config.API.CacheTTL(), app.Logger().With("component", "WARM_JOB"))

	return e.Next()
}

// onTerminate is called when the application shuts down
func (app *App) onTerminate(e *core.TerminateEvent) error {
	if app.themeWatcher != nil {
		app.themeWatcher.Stop()
	}
	return e.Next()
}
