// Package app wires ccev's components together for the CLI commands and
// the server.
package app

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"nathanbeddoewebdev/ccev/internal/cache"
	"nathanbeddoewebdev/ccev/internal/clearers"
	"nathanbeddoewebdev/ccev/internal/config"
	"nathanbeddoewebdev/ccev/internal/custom"
	"nathanbeddoewebdev/ccev/internal/domain"
	"nathanbeddoewebdev/ccev/internal/history"
	"nathanbeddoewebdev/ccev/internal/hooks"
	"nathanbeddoewebdev/ccev/internal/objectcache"
	"nathanbeddoewebdev/ccev/internal/options"
	"nathanbeddoewebdev/ccev/internal/plugins"
	"nathanbeddoewebdev/ccev/internal/registry"
	"nathanbeddoewebdev/ccev/internal/results"
	"nathanbeddoewebdev/ccev/internal/runner"
	"nathanbeddoewebdev/ccev/internal/services/auth"
	"nathanbeddoewebdev/ccev/internal/services/clearing"
	"nathanbeddoewebdev/ccev/internal/sitedb"
	"nathanbeddoewebdev/ccev/internal/trigger"
	"nathanbeddoewebdev/ccev/internal/wpcli"

	"github.com/sirupsen/logrus"
)

// Options tune Open. Zero values use the defaults.
type Options struct {
	Log  logrus.FieldLogger
	Auth auth.Store

	// Offline skips connecting to the site database, Redis and WP-CLI.
	// Listing commands use it so they work without a reachable site.
	Offline bool
}

// App holds the wired components. Close it when done.
type App struct {
	ConfigPath string
	Config     *config.Live
	Auth       auth.Store
	Hooks      *hooks.Hooks
	Registry   *registry.Registry
	Service    *clearing.Service
	History    *history.SQLiteRepository
	Deps       clearers.Deps
	Log        logrus.FieldLogger

	options *options.SQLiteRepository
}

// Open loads the configuration, opens the local store and connects to the
// configured backends. Backends that cannot be reached are logged and left
// out; their actions then report skipped.
func Open(ctx context.Context, opts Options) (*App, error) {
	log := opts.Log
	if log == nil {
		log = logrus.StandardLogger()
	}
	store := opts.Auth
	if store == nil {
		store = auth.DefaultStore()
	}

	path, err := config.Path()
	if err != nil {
		return nil, err
	}
	cfg, err := config.LoadFrom(path)
	if err != nil {
		return nil, err
	}
	live := config.NewLive(cfg)

	a := &App{ConfigPath: path, Config: live, Auth: store, Log: log}

	a.options, err = options.Open()
	if err != nil {
		return nil, err
	}
	a.History, err = history.Open()
	if err != nil {
		a.Close()
		return nil, err
	}

	a.Deps = clearers.Deps{
		HTTP:  &http.Client{Timeout: clearers.DefaultHTTPTimeout},
		Auth:  store,
		Zones: cache.NewDefault().Sub("cloudflare"),
		Log:   log,
	}
	if !opts.Offline {
		a.connect(ctx, cfg)
	}

	a.Hooks = hooks.New()
	a.Hooks.AddShowSkippedFilter(func(bool) bool { return live.Load().ShowSkipped })
	if cfg.ActionsFile != "" {
		file, err := custom.Load(cfg.ActionsFile)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.Hooks.AddActionFilter(custom.NewFilter(file, live.Load, a.Deps.HTTP, log).Apply)
	}

	var detector plugins.Detector = plugins.Static(nil)
	switch {
	case a.Deps.SiteDB != nil:
		detector = plugins.DBDetector{DB: a.Deps.SiteDB}
	case a.Deps.WP != nil:
		detector = plugins.Cached{
			Detector: plugins.CLIDetector{WP: a.Deps.WP},
			Cache:    cache.NewDefault().Sub("plugins"),
			Key:      cfg.WPPath,
		}
	}
	a.Registry = registry.New(detector, live, a.Hooks, log)

	resultStore := results.NewOptionStore(a.options)
	a.Service = clearing.NewService(clearing.Options{
		Registry:   a.Registry,
		Runner:     runner.New(resultStore, clearers.LiveResolver(a.Deps, live), log),
		Store:      resultStore,
		Hooks:      a.Hooks,
		History:    a.History,
		Notices:    a.options,
		Log:        log,
		SiteURL:    cfg.SiteURL,
		LogResults: cfg.LogResults,
		Location:   cfg.Location(),
	})
	return a, nil
}

func (a *App) connect(ctx context.Context, cfg *config.Config) {
	if db, err := sitedb.Open(ctx, cfg); err == nil {
		a.Deps.SiteDB = db
	} else if !errors.Is(err, domain.ErrNotConfigured) {
		a.Log.WithError(err).Warn("site database unavailable")
	}

	if cfg.RedisURL != "" {
		rdb, err := objectcache.Connect(ctx, cfg.RedisURL)
		if err != nil {
			a.Log.WithError(err).Warn("redis unavailable")
		} else {
			a.Deps.Redis = rdb
		}
	}

	if strings.TrimSpace(cfg.WPPath) != "" {
		a.Deps.WP = wpcli.CLI{Binary: cfg.WPCLIBinary(), Path: cfg.WPPath, URL: cfg.SiteURL}
	}
}

// Signer returns the trigger token signer, creating the secret on first
// use.
func (a *App) Signer() (*trigger.Signer, error) {
	return trigger.FromStore(a.Auth)
}

// Close releases every connection. It is safe to call on a partly opened
// App.
func (a *App) Close() error {
	var errs []error
	if err := a.Deps.Close(); err != nil {
		errs = append(errs, err)
	}
	if a.History != nil {
		if err := a.History.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if a.options != nil {
		if err := a.options.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
