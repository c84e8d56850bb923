package main

import (
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"pairSwap/internal/api"
	"pairSwap/internal/config"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the pool over HTTP",
		Long: `Serve the pool over HTTP.

Requests are not authenticated: the caller named in a request body is trusted
as is, so any client that reaches the listener can act for any account. The
server binds to loopback by default; only widen --listen behind a proxy that
authenticates callers.`,
		RunE: runServe,
	}
	cmd.Flags().String("listen", config.DefaultListen, "HTTP listen address (unauthenticated, loopback by default)")
	cmd.Flags().Bool("faucet", false, "expose POST /fund for crediting custody balances")
	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signalContext()
	defer stop()

	a, err := loadApp(ctx, cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	if a.cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	srv := api.NewServer(a.engine, a.ledger, api.Options{
		Faucet:  a.cfg.Faucet,
		Journal: a.cfg.Journal,
	}, a.logger.Named("api"))

	a.logger.Info("serve start",
		zap.String("listen", a.cfg.Listen),
		zap.String("pool", a.engine.Pool().Hex()),
		zap.String("store", a.cfg.Store),
		zap.Bool("faucet", a.cfg.Faucet),
	)
	return srv.Serve(ctx, a.cfg.Listen)
}
