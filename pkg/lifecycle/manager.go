// Package lifecycle sequences the start and stop of the regtest environment.
// Start is a strict pipeline: every step completes or fails fatally before
// the next begins, and that total ordering is the correctness mechanism — no
// step runs concurrently with another. A failed start may leave partial state
// behind; the next start's clean-slate step removes it.
package lifecycle

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jihwankim/regnet-utils/pkg/config"
	"github.com/jihwankim/regnet-utils/pkg/netcheck"
	"github.com/jihwankim/regnet-utils/pkg/readiness"
	"github.com/jihwankim/regnet-utils/pkg/reporting"
)

// Orchestrator brings the service stack up and down
type Orchestrator interface {
	Up(ctx context.Context) error
	Down(ctx context.Context) error
	Services(ctx context.Context) ([]string, error)
}

// Sweeper removes leftover containers a plain teardown no longer tracks
type Sweeper interface {
	RemoveProjectContainers(ctx context.Context, project string) error
}

// Chain bootstraps the funding wallet and the initial chain
type Chain interface {
	EnsureWallet(ctx context.Context) error
	Mine(ctx context.Context, n int) (int64, error)
}

// RPCGate blocks until the node's RPC endpoint answers a status query
type RPCGate func(ctx context.Context) error

// Manager owns the environment lifecycle
type Manager struct {
	cfg     *config.Config
	orch    Orchestrator
	ports   netcheck.Checker
	poller  *readiness.Poller
	sweeper Sweeper
	chain   Chain
	rpcGate RPCGate
	logger  *reporting.Logger
}

// New creates a lifecycle Manager
func New(cfg *config.Config, orch Orchestrator, ports netcheck.Checker, poller *readiness.Poller, sweeper Sweeper, chain Chain, rpcGate RPCGate, logger *reporting.Logger) *Manager {
	return &Manager{
		cfg:     cfg,
		orch:    orch,
		ports:   ports,
		poller:  poller,
		sweeper: sweeper,
		chain:   chain,
		rpcGate: rpcGate,
		logger:  logger,
	}
}

// Start brings the environment from nothing to a usable chain
func (m *Manager) Start(ctx context.Context) error {
	// Clean slate, even after a previous run that crashed mid-way
	m.logger.Info("tearing down any previous run")
	if err := m.Stop(ctx); err != nil {
		return fmt.Errorf("pre-start teardown: %w", err)
	}

	m.logger.Info("preparing data directories", "root", m.cfg.Services.DataDir)
	if err := m.prepareDataDirs(); err != nil {
		return err
	}

	m.logger.Info("checking reserved ports", "ports", m.cfg.Services.ReservedPorts)
	for _, port := range m.cfg.Services.ReservedPorts {
		bound, err := m.ports.IsBound(port)
		if err != nil {
			return fmt.Errorf("port check: %w", err)
		}
		if bound {
			return fmt.Errorf("port %d is already bound; refusing to attach to a stale or foreign service", port)
		}
	}

	if err := m.validateServiceSet(ctx); err != nil {
		return err
	}

	m.logger.Info("bringing services up")
	if err := m.orch.Up(ctx); err != nil {
		return err
	}

	m.logger.Info("waiting for node to bind", "service", m.cfg.Services.Node)
	if err := m.poller.WaitReady(ctx, m.cfg.Services.Node, m.cfg.Readiness.NodeMarker); err != nil {
		return err
	}

	m.logger.Info("waiting for node RPC")
	if err := m.rpcGate(ctx); err != nil {
		return err
	}

	m.logger.Info("bootstrapping mining wallet")
	if err := m.chain.EnsureWallet(ctx); err != nil {
		return err
	}

	// A fresh regtest chain needs a minimum height before coinbase outputs
	// mature and become spendable
	m.logger.Info("mining initial blocks", "count", m.cfg.Chain.InitialBlocks)
	if _, err := m.chain.Mine(ctx, m.cfg.Chain.InitialBlocks); err != nil {
		return err
	}

	m.logger.Info("waiting for indexer", "service", m.cfg.Services.Indexer)
	if err := m.poller.WaitReady(ctx, m.cfg.Services.Indexer, m.cfg.Readiness.IndexerMarker); err != nil {
		return err
	}

	m.logger.Info("environment ready")
	return nil
}

// Stop tears down all services and deletes their state. Idempotent: the
// absence of a running stack is not an error.
func (m *Manager) Stop(ctx context.Context) error {
	if err := m.orch.Down(ctx); err != nil {
		return err
	}

	// Sweep containers left behind by interrupted runs that compose down
	// no longer tracks
	if err := m.sweeper.RemoveProjectContainers(ctx, m.cfg.Compose.Project); err != nil {
		return fmt.Errorf("orphan sweep: %w", err)
	}

	if err := os.RemoveAll(m.cfg.Services.DataDir); err != nil {
		return fmt.Errorf("failed to delete data directories: %w", err)
	}

	return nil
}

// prepareDataDirs recreates an empty data directory per service and probes
// that the node's directory is actually writable
func (m *Manager) prepareDataDirs() error {
	for _, service := range m.cfg.ServiceNames() {
		dir := filepath.Join(m.cfg.Services.DataDir, service)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create data directory %s: %w", dir, err)
		}
	}

	probe := filepath.Join(m.cfg.Services.DataDir, m.cfg.Services.Node, ".write-probe")
	if err := os.WriteFile(probe, []byte("probe"), 0644); err != nil {
		return fmt.Errorf("data directory is not writable: %w", err)
	}
	if err := os.Remove(probe); err != nil {
		return fmt.Errorf("data directory probe cleanup failed: %w", err)
	}

	return nil
}

// validateServiceSet checks that every configured service is defined in the
// orchestration descriptor
func (m *Manager) validateServiceSet(ctx context.Context) error {
	defined, err := m.orch.Services(ctx)
	if err != nil {
		return err
	}

	definedSet := make(map[string]bool, len(defined))
	for _, name := range defined {
		definedSet[name] = true
	}

	for _, name := range m.cfg.ServiceNames() {
		if !definedSet[name] {
			return fmt.Errorf("service %s is not defined in the orchestration descriptor", name)
		}
	}

	return nil
}
