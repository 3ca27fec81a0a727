package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/runclub/paceline/pkg/cli/config"
	httpctrl "github.com/runclub/paceline/pkg/controller/http"
	"github.com/runclub/paceline/pkg/service/peloton"
	"github.com/runclub/paceline/pkg/service/worker"
	"github.com/runclub/paceline/pkg/usecase"
	"github.com/runclub/paceline/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdServe() *cli.Command {
	var addr string
	var baseURL string
	var adminToken string
	var repoCfg config.Repository
	var slackCfg config.Slack
	var stravaCfg config.Strava
	var pelotonCfg config.Peloton
	var postingCfg config.Posting

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "HTTP server address",
			Value:       ":8080",
			Sources:     cli.EnvVars("PACELINE_ADDR"),
			Destination: &addr,
		},
		&cli.StringFlag{
			Name:        "base-url",
			Usage:       "Public base URL of this service (e.g., https://your-domain.com)",
			Sources:     cli.EnvVars("PACELINE_BASE_URL", "PUBLIC_BASE_URL"),
			Destination: &baseURL,
		},
		&cli.StringFlag{
			Name:        "admin-token",
			Usage:       "Bearer token for admin endpoints (empty leaves them open)",
			Sources:     cli.EnvVars("PACELINE_ADMIN_TOKEN", "ADMIN_TOKEN"),
			Destination: &adminToken,
		},
	}

	// Add shared config flags
	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, slackCfg.Flags()...)
	flags = append(flags, stravaCfg.Flags()...)
	flags = append(flags, pelotonCfg.Flags()...)
	flags = append(flags, postingCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start HTTP server",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer func() {
				if err := repo.Close(); err != nil {
					logging.Default().Error("failed to close repository", "error", err.Error())
				}
			}()

			slackGateway, err := slackCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to configure slack client")
			}

			stravaClient, err := stravaCfg.Configure(baseURL)
			if err != nil {
				return goerr.Wrap(err, "failed to configure strava client")
			}

			if err := pelotonCfg.Validate(); err != nil {
				return goerr.Wrap(err, "invalid peloton configuration")
			}

			posting, err := postingCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to configure posting")
			}

			uc := usecase.New(repo,
				usecase.WithStravaClient(stravaClient),
				usecase.WithPelotonClient(peloton.New()),
				usecase.WithSlackGateway(slackGateway),
				usecase.WithPostingConfig(posting),
				usecase.WithBaseURL(baseURL),
			)

			var poller *worker.PelotonPoller
			if pelotonCfg.Enabled() {
				poller = worker.NewPelotonPoller(uc, pelotonCfg.PollInterval(), pelotonCfg.WorkoutLimit())
				if err := poller.Start(ctx); err != nil {
					return goerr.Wrap(err, "failed to start peloton poller")
				}
			} else {
				logging.Default().Info("Peloton poller disabled")
			}

			httpHandler := httpctrl.New(uc,
				httpctrl.WithVerifyToken(stravaCfg.VerifyToken()),
				httpctrl.WithAdminToken(adminToken),
			)
			server := &http.Server{
				Addr:              addr,
				Handler:           httpHandler,
				ReadHeaderTimeout: 30 * time.Second,
			}

			// Setup signal handling for graceful shutdown
			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

			errCh := make(chan error, 1)
			go func() {
				logging.Default().Info("Starting HTTP server", "addr", addr, "base_url", baseURL)
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					errCh <- goerr.Wrap(err, "failed to start server")
				}
			}()

			select {
			case err := <-errCh:
				if poller != nil {
					poller.Stop()
				}
				return err
			case sig := <-sigCh:
				logging.Default().Info("Received shutdown signal", "signal", sig)

				if poller != nil {
					poller.Stop()
				}

				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()

				if err := server.Shutdown(shutdownCtx); err != nil {
					return goerr.Wrap(err, "failed to shutdown server gracefully")
				}

				logging.Default().Info("Server shutdown completed")
				return nil
			}
		},
	}
}
