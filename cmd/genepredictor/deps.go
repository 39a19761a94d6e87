package main

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/ersonp/genepredictor/internal/application/handlers"
	"github.com/ersonp/genepredictor/internal/domain/entities"
	"github.com/ersonp/genepredictor/internal/domain/services"
	"github.com/ersonp/genepredictor/internal/infrastructure/config"
	"github.com/ersonp/genepredictor/internal/infrastructure/logging"
	"github.com/ersonp/genepredictor/internal/infrastructure/model"
)

// Deps holds high-level dependencies for commands.
type Deps struct {
	Config         *config.Config
	Logger         zerolog.Logger
	Model          *model.SharedModel
	PredictHandler *handlers.PredictHandler
}

// logOutput is where command logs go; stdout is reserved for results.
var logOutput io.Writer = os.Stderr

// withDeps loads config and builds dependencies, then calls the provided function.
func withDeps(cmd *cobra.Command, fn func(*Deps) error) error {
	cfg, err := config.Load(globalConfig)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger, err := logging.Setup(cfg.Log, logOutput)
	if err != nil {
		return fmt.Errorf("setting up logging: %w", err)
	}
	cmd.SetContext(logger.WithContext(cmd.Context()))

	defaults, err := entities.ParseStrategies(cfg.Inference.Strategies)
	if err != nil {
		return fmt.Errorf("parsing default strategies: %w", err)
	}

	shared := model.NewSharedModel(model.NewLoader(cfg.Model), cfg.Model.ID)
	validator := services.NewSequenceValidator(cfg.Validation.MinLength, cfg.Validation.MaxLength)
	predictionService := services.NewPredictionService(validator, shared, shared, cfg.Inference.Timeout)

	return fn(&Deps{
		Config:         cfg,
		Logger:         logger,
		Model:          shared,
		PredictHandler: handlers.NewPredictHandler(predictionService, defaults),
	})
}
