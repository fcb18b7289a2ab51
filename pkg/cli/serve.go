package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"syscall"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/yazz0dev/ksb-sw-community-sub002/pkg/cli/config"
	httpctrl "github.com/yazz0dev/ksb-sw-community-sub002/pkg/controller/http"
	"github.com/yazz0dev/ksb-sw-community-sub002/pkg/service/worker"
	"github.com/yazz0dev/ksb-sw-community-sub002/pkg/usecase"
	"github.com/yazz0dev/ksb-sw-community-sub002/pkg/utils/logging"
)

func cmdServe() *cli.Command {
	var addr string
	var baseURL string
	var configPath string
	var allowedOrigins []string
	var replayInterval time.Duration
	var repoCfg config.Repository
	var authCfg config.Auth
	var pushCfg config.Push
	var draftCfg config.Draft
	var sentryCfg config.Sentry

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "HTTP server address",
			Value:       ":8080",
			Sources:     cli.EnvVars("COMMUNITY_ADDR"),
			Destination: &addr,
		},
		&cli.StringFlag{
			Name:        "base-url",
			Usage:       "Frontend URL used for links in push messages (e.g., https://your-domain.com)",
			Sources:     cli.EnvVars("COMMUNITY_BASE_URL"),
			Destination: &baseURL,
		},
		&cli.StringFlag{
			Name:        "config",
			Aliases:     []string{"c"},
			Usage:       "Path to the TOML application config",
			Sources:     cli.EnvVars("COMMUNITY_CONFIG"),
			Destination: &configPath,
		},
		&cli.StringSliceFlag{
			Name:        "ws-allowed-origin",
			Usage:       "Origin allowed to open WebSocket connections. Same-origin only when unset",
			Sources:     cli.EnvVars("COMMUNITY_WS_ALLOWED_ORIGINS"),
			Destination: &allowedOrigins,
		},
		&cli.DurationFlag{
			Name:        "replay-interval",
			Usage:       "Interval for retrying pending offline actions while online. 0 disables",
			Value:       time.Minute,
			Sources:     cli.EnvVars("COMMUNITY_REPLAY_INTERVAL"),
			Destination: &replayInterval,
		},
	}

	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, authCfg.Flags()...)
	flags = append(flags, pushCfg.Flags()...)
	flags = append(flags, draftCfg.Flags()...)
	flags = append(flags, sentryCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start HTTP server",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			flush, err := sentryCfg.Configure()
			if err != nil {
				return err
			}
			defer flush()

			ucOpts := []usecase.Option{
				usecase.WithBaseURL(baseURL),
			}

			if configPath != "" {
				appCfg, err := config.LoadAppConfiguration(configPath)
				if err != nil {
					return goerr.Wrap(err, "failed to load application config")
				}
				opts, err := appCfg.UseCaseOptions()
				if err != nil {
					return goerr.Wrap(err, "failed to apply application config")
				}
				ucOpts = append(ucOpts, opts...)
				logging.Default().Info("Application config loaded", "path", configPath)
			}

			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer func() {
				if err := repo.Close(); err != nil {
					logging.Default().Error("failed to close repository", "error", err.Error())
				}
			}()

			authUC, err := authCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to configure authentication")
			}

			pushSender, err := pushCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to configure push")
			}

			drafts, err := draftCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to configure draft store")
			}

			ucOpts = append(ucOpts,
				usecase.WithAuth(authUC),
				usecase.WithPush(pushSender),
				usecase.WithDraftStore(drafts),
			)
			uc := usecase.New(repo, ucOpts...)
			defer func() {
				if err := uc.Close(); err != nil {
					logging.Default().Error("failed to close use cases", "error", err.Error())
				}
			}()

			if replayInterval > 0 {
				replayWorker := worker.NewQueueReplayWorker(uc.Sync.ReplayQueue, func() bool {
					return uc.Network().IsOnline() && uc.Queue().Len() > 0
				}, replayInterval)
				replayWorker.Start(ctx)
				defer replayWorker.Stop()
			}

			var hubOpts []httpctrl.HubOption
			if len(allowedOrigins) > 0 {
				hubOpts = append(hubOpts, httpctrl.WithCheckOrigin(func(r *http.Request) bool {
					return slices.Contains(allowedOrigins, r.Header.Get("Origin"))
				}))
			}
			hub := httpctrl.NewHub(uc, hubOpts...)
			defer hub.Close()

			server := &http.Server{
				Addr:              addr,
				Handler:           httpctrl.New(uc, httpctrl.WithAuth(authUC), httpctrl.WithHub(hub)),
				ReadHeaderTimeout: 30 * time.Second,
			}

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

			errCh := make(chan error, 1)
			go func() {
				logging.Default().Info("Starting HTTP server", "addr", addr, "no_auth", authUC.IsNoAuthn())
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					errCh <- goerr.Wrap(err, "failed to start server")
				}
			}()

			select {
			case err := <-errCh:
				return err
			case sig := <-sigCh:
				logging.Default().Info("Received shutdown signal", "signal", sig)

				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()

				if err := server.Shutdown(shutdownCtx); err != nil {
					return goerr.Wrap(err, "failed to shutdown server gracefully")
				}

				if pending := uc.Queue().Len(); pending > 0 {
					logging.Default().Warn("Offline actions dropped at shutdown", "pending", pending)
				}
				logging.Default().Info("Server shutdown completed")
				return nil
			}
		},
	}
}
