package serve

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"nathanbeddoewebdev/ccev/cmd/commands/cmdutil"
	"nathanbeddoewebdev/ccev/internal/app"
	"nathanbeddoewebdev/ccev/internal/config"
	"nathanbeddoewebdev/ccev/internal/httpapi"
	"nathanbeddoewebdev/ccev/internal/schedule"
	"nathanbeddoewebdev/ccev/internal/services/auth"
	"nathanbeddoewebdev/ccev/internal/watch"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

// NewCommand returns the "serve" command.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve trigger links and the HTTP API",
		Long: `Run the HTTP server for trigger links and the JSON API, the scheduled
clear when a schedule is configured, and a watcher that applies config
changes without a restart.

Routes:
  GET  /?clear-cache-now=1&_token=...   run a full pass, then redirect
  GET  /healthz
  GET  /api/actions
  GET  /api/results
  GET  /api/notice
  POST /api/clear
  POST /api/actions/run-deferred
  POST /api/actions/{key}/run[?scope=any]

API requests need 'Authorization: Bearer <token>' from 'ccev token issue'.`,
		Args:         cobra.NoArgs,
		RunE:         runServe,
		SilenceUsage: true,
	}

	cmd.Flags().String("addr", "", "Listen address (default: listen-addr setting)")

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	log, err := cmdutil.Logger(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.Open(ctx, app.Options{Log: log, Auth: auth.DefaultStore()})
	if err != nil {
		return err
	}
	defer a.Close()

	signer, err := a.Signer()
	if err != nil {
		return err
	}

	addr, _ := cmd.Flags().GetString("addr")
	if strings.TrimSpace(addr) == "" {
		addr = a.Config.Load().Listen()
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	return Serve(ctx, a, signer, ln, log)
}

// Serve runs the HTTP server on ln, the scheduler and the config watcher
// until ctx is done or one of them fails.
func Serve(ctx context.Context, a *app.App, verifier httpapi.Verifier, ln net.Listener, log *logrus.Logger) error {
	cfg := a.Config.Load()

	var sch *schedule.Scheduler
	if cfg.Schedule != "" {
		var err error
		sch, err = schedule.New(cfg.Schedule, a.Service, log)
		if err != nil {
			ln.Close()
			return err
		}
	}
	if err := os.MkdirAll(filepath.Dir(a.ConfigPath), 0o700); err != nil {
		ln.Close()
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	handler := httpapi.NewHandler(a.Service, verifier, log)
	srv := &http.Server{
		Handler:           httpapi.NewRouter(handler),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.WithField("addr", ln.Addr().String()).Info("http server started")
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if sch != nil {
		g.Go(func() error { return sch.Run(ctx) })
	}

	w := watch.NewConfig(a.ConfigPath, a.Config, log, reloadHook(a, log, cfg))
	g.Go(func() error { return w.Run(ctx) })

	err := g.Wait()
	log.Info("server stopped")
	return err
}

// reloadHook applies the settings that take effect without a restart and
// warns about the ones that do not.
func reloadHook(a *app.App, log *logrus.Logger, started *config.Config) func(*config.Config) {
	return func(next *config.Config) {
		a.Service.SetLogResults(next.LogResults)
		if lvl, err := logrus.ParseLevel(next.LogLevel); err == nil && next.LogLevel != "" {
			log.SetLevel(lvl)
		}
		if next.Schedule != started.Schedule {
			log.Warn("schedule changed; restart 'ccev serve' to apply it")
		}
		if next.Timezone != started.Timezone {
			log.Warn("timezone changed; restart 'ccev serve' to apply it")
		}
		if next.DBDSN != started.DBDSN || next.RedisURL != started.RedisURL || next.WPPath != started.WPPath {
			log.Warn("connection settings changed; restart 'ccev serve' to apply them")
		}
	}
}
