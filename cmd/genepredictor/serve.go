package main

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/ersonp/genepredictor/internal/infrastructure/httpserver"
)

func newServeCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the prediction HTTP server",
		Long: "Loads the model once and serves POST /predict. If the model fails to load " +
			"the server still starts and answers 503 ModelUnavailable.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides server.listen_addr)")

	return cmd
}

func runServe(cmd *cobra.Command, addr string) error {
	return withDeps(cmd, func(deps *Deps) error {
		ctx := cmd.Context()

		serverCfg := deps.Config.Server
		if addr != "" {
			serverCfg.ListenAddr = addr
		}

		if zerolog.GlobalLevel() > zerolog.DebugLevel {
			gin.SetMode(gin.ReleaseMode)
		}

		if _, err := deps.Model.Load(ctx); err != nil {
			deps.Logger.Error().Err(err).Str("model_id", deps.Config.Model.ID).
				Msg("model failed to load; predictions will return ModelUnavailable")
		}

		return httpserver.New(serverCfg, deps.PredictHandler, deps.Logger).Run(ctx)
	})
}
