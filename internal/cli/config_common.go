package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/vvka-141/dwhetl/internal/config"
	"github.com/vvka-141/dwhetl/internal/db"
	"github.com/vvka-141/dwhetl/internal/etl"
	"github.com/vvka-141/dwhetl/internal/logging"
	"github.com/vvka-141/dwhetl/internal/services"
	"github.com/vvka-141/dwhetl/internal/ui"
	"github.com/vvka-141/dwhetl/pkg/dwh"
)

// loadConfig loads .env, the YAML file at path and DWH_* overrides, then
// validates the sections purpose needs. A missing file is not an error on its
// own: DWH_* variables may supply everything.
func loadConfig(path string, purpose config.Purpose) (*config.Config, error) {
	_ = godotenv.Load()

	fileMissing := false
	cfg, err := config.Load(path)
	if err != nil {
		if !errors.Is(err, config.ErrConfigNotFound) {
			return nil, fmt.Errorf("failed to load %s: %w", path, err)
		}
		fileMissing = true
		cfg = config.New()
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(purpose); err != nil {
		if fileMissing {
			return nil, fmt.Errorf("%s not found and DWH_* variables do not complete the configuration:\n%w\n\nTip: pass --config <path> or set the missing DWH_* variables in .env", path, err)
		}
		return nil, fmt.Errorf("configuration in %s is incomplete:\n%w", path, err)
	}
	return cfg, nil
}

// commandContext returns a context cancelled on SIGINT/SIGTERM and, when
// timeout is positive, after timeout.
func commandContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	var (
		ctx    context.Context
		cancel context.CancelFunc
	)
	if timeout > 0 {
		ctx, cancel = context.WithTimeout(context.Background(), timeout)
	} else {
		ctx, cancel = context.WithCancel(context.Background())
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		select {
		case <-sigChan:
			fmt.Fprintln(os.Stderr, "\n[INTERRUPT] Received interrupt signal, cancelling...")
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigChan)
	}()

	return ctx, cancel
}

func newApprover(force, verbose bool) dwh.Approver {
	if force {
		return ui.NewForcedApprover(verbose)
	}
	return ui.NewInteractiveApprover(verbose)
}

// pipelineSources maps the S3 and IAM sections onto COPY sources.
func pipelineSources(cfg *config.Config) etl.Sources {
	return etl.Sources{
		LogData:     cfg.S3.LogData,
		LogJSONPath: cfg.S3.LogJSONPath,
		SongData:    cfg.S3.SongData,
		Region:      cfg.S3.Region,
		IAMRoleARN:  cfg.IAMRole.ARN,
	}
}

// newPipelineService wires the pipeline with all dependencies injected.
func newPipelineService(cfg *config.Config, approver dwh.Approver, verbose bool) *services.PipelineService {
	logger := logging.NewConsoleLogger(verbose)
	connector := db.NewStandardConnector(cfg.ConnectionConfig(), logger)
	sessions := services.NewSessionManager(connector, logger)
	preflight := newS3Preflight(cfg, logger)
	return services.NewPipelineService(sessions, preflight, approver, logger)
}
