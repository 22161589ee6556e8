package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/manaswini1869/cf-ai-supportbot-manaswini-spring-2026/pkg/supportbot"
	"github.com/manaswini1869/cf-ai-supportbot-manaswini-spring-2026/pkg/supportbot/logging"
)

func newServeCmd(o *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Run the support bot HTTP API.

Routes:
  GET  /                          health check
  POST /api/chat                  {sessionId, message} -> {reply, meta: {modelId}}
  GET  /api/sessions/{id}/history stored turns
  DELETE /api/sessions/{id}/history
  POST /api/sessions/{id}/clear   reset a session
  GET  /metrics                   prometheus metrics

Examples:
  supportbot serve
  supportbot serve --addr :9000 --provider openai --model gpt-4o-mini
  SUPPORTBOT_STORE_DRIVER=redis SUPPORTBOT_STORE_DSN=redis://localhost:6379/0 supportbot serve`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), o)
		},
	}

	f := cmd.Flags()
	bindFlag(o.v, f, "server.addr", "addr", "Listen address (default :8787)")
	bindFlag(o.v, f, "llm.provider", "provider", "Generation provider: workersai, openai, anthropic, static")
	bindFlag(o.v, f, "llm.model", "model", "Model id sent to the provider")

	return cmd
}

func runServe(ctx context.Context, o *options) error {
	cfg, err := o.load()
	if err != nil {
		return err
	}

	log, syncLog, err := logging.New(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		return err
	}
	defer func() { _ = syncLog() }()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := supportbot.NewApp(ctx, cfg, log)
	if err != nil {
		return err
	}
	server := app.Build()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("Support bot listening",
			"addr", server.Addr,
			"provider", cfg.LLM.Provider,
			"model", cfg.LLM.Model,
			"store", cfg.Store.Driver)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	var result *multierror.Error
	if err := g.Wait(); err != nil {
		result = multierror.Append(result, err)
	}
	if err := app.Close(); err != nil {
		result = multierror.Append(result, err)
	}
	if err := result.ErrorOrNil(); err != nil {
		return err
	}
	log.Info("Stopped")
	return nil
}
