package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jihwankim/regnet-utils/pkg/chain"
	"github.com/jihwankim/regnet-utils/pkg/compose"
	"github.com/jihwankim/regnet-utils/pkg/config"
	"github.com/jihwankim/regnet-utils/pkg/docker"
	"github.com/jihwankim/regnet-utils/pkg/lifecycle"
	"github.com/jihwankim/regnet-utils/pkg/netcheck"
	"github.com/jihwankim/regnet-utils/pkg/readiness"
	"github.com/jihwankim/regnet-utils/pkg/reporting"
	"github.com/jihwankim/regnet-utils/pkg/runner"
)

// loadConfig loads the configuration from file, auto-generating if needed
func loadConfig() (*config.Config, error) {
	// Determine config file path
	configPath := cfgFile
	if configPath == "" {
		configPath = "regnet.yaml"
	}

	// Check if config exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		// Auto-generate default config
		fmt.Printf("Config file not found, creating default configuration at: %s\n", configPath)

		cfg := config.DefaultConfig()
		if err := cfg.Save(configPath); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}

		return cfg, nil
	}

	// Load existing configuration
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config from %s: %w", configPath, err)
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// harness bundles the wired components every subcommand needs
type harness struct {
	cfg     *config.Config
	logger  *reporting.Logger
	compose *compose.Compose
	chain   *chain.Client
	manager *lifecycle.Manager
	docker  *docker.Client
}

// newHarness resolves configuration once and wires every component
func newHarness() (*harness, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	// Flag override for the orchestration descriptor
	if composeFile != "" {
		cfg.Compose.File = composeFile
	}

	logLevel := reporting.LogLevel(cfg.Framework.LogLevel)
	if verbose {
		logLevel = reporting.LogLevelDebug
	}

	logger := reporting.NewLogger(reporting.LoggerConfig{
		Level:  logLevel,
		Format: reporting.LogFormat(cfg.Framework.LogFormat),
		Output: os.Stderr,
	})

	run := runner.New(logger)
	comp := compose.New(run, cfg.Compose.Command, cfg.Compose.File, cfg.Compose.Project)
	logger.Debug("orchestration descriptor resolved", "file", comp.File(), "project", comp.Project())

	dockerClient, err := docker.New()
	if err != nil {
		return nil, err
	}

	ports, err := netcheck.New()
	if err != nil {
		return nil, err
	}

	poller := &readiness.Poller{
		Source:      dockerClient.ProjectLogs(comp.Project(), "all"),
		MaxAttempts: cfg.Readiness.MaxAttempts,
		Interval:    cfg.Readiness.Interval,
		Logger:      logger.WithField("component", "readiness"),
	}

	chainClient := chain.New(comp, cfg.Services.Node, cfg.Chain, logger)

	rpcGate := func(ctx context.Context) error {
		return chain.WaitRPCReady(ctx, cfg.Chain.RPCHost, cfg.Chain.RPCUser, cfg.Chain.RPCPass,
			cfg.Readiness.MaxAttempts, cfg.Readiness.Interval, logger)
	}

	manager := lifecycle.New(cfg, comp, ports, poller, dockerClient, chainClient, rpcGate, logger)

	return &harness{
		cfg:     cfg,
		logger:  logger,
		compose: comp,
		chain:   chainClient,
		manager: manager,
		docker:  dockerClient,
	}, nil
}

// close releases the harness's connections
func (h *harness) close() {
	h.docker.Close()
}

// runWithDiagnostics executes fn; on failure it dumps the core node's recent
// logs to stderr before handing the error back for the non-zero exit.
// Masking failures would corrupt downstream test results, so every error is
// surfaced with context.
func (h *harness) runWithDiagnostics(ctx context.Context, fn func(context.Context) error) error {
	err := fn(ctx)
	if err == nil {
		return nil
	}

	h.logger.Error("fatal", "error", err)
	source := h.docker.ProjectLogs(h.compose.Project(), "100")
	reporting.DumpServiceLogs(ctx, os.Stderr, source, h.cfg.Services.Node)

	return err
}
