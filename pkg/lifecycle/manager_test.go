package lifecycle

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jihwankim/regnet-utils/pkg/config"
	"github.com/jihwankim/regnet-utils/pkg/readiness"
	"github.com/jihwankim/regnet-utils/pkg/reporting"
)

// fakes share one event slice so tests can assert cross-component ordering

type fakeOrch struct {
	events   *[]string
	services []string
	upErr    error
}

func (f *fakeOrch) Up(ctx context.Context) error {
	*f.events = append(*f.events, "up")
	return f.upErr
}

func (f *fakeOrch) Down(ctx context.Context) error {
	*f.events = append(*f.events, "down")
	return nil
}

func (f *fakeOrch) Services(ctx context.Context) ([]string, error) {
	*f.events = append(*f.events, "services")
	return f.services, nil
}

type fakeSweeper struct {
	events *[]string
}

func (f *fakeSweeper) RemoveProjectContainers(ctx context.Context, project string) error {
	*f.events = append(*f.events, "sweep")
	return nil
}

type fakeChain struct {
	events *[]string
	mined  []int
}

func (f *fakeChain) EnsureWallet(ctx context.Context) error {
	*f.events = append(*f.events, "wallet")
	return nil
}

func (f *fakeChain) Mine(ctx context.Context, n int) (int64, error) {
	*f.events = append(*f.events, "mine")
	f.mined = append(f.mined, n)
	return int64(n), nil
}

type fakeChecker struct {
	bound map[uint32]bool
}

func (f *fakeChecker) IsBound(port uint32) (bool, error) {
	return f.bound[port], nil
}

// fakeLogs reports every service ready unless its name is in notReady
type fakeLogs struct {
	events   *[]string
	markers  map[string]string
	notReady map[string]bool
}

func (f *fakeLogs) ServiceLogs(ctx context.Context, service string) (string, error) {
	*f.events = append(*f.events, "logs:"+service)
	if f.notReady[service] {
		return "still starting", nil
	}
	return f.markers[service], nil
}

type fixture struct {
	events  []string
	cfg     *config.Config
	orch    *fakeOrch
	chain   *fakeChain
	logs    *fakeLogs
	checker *fakeChecker
	rpcErr  error
	rpcHit  bool
}

func newFixture(t *testing.T) *fixture {
	cfg := config.DefaultConfig()
	cfg.Services.DataDir = filepath.Join(t.TempDir(), "regnet-data")
	cfg.Readiness.MaxAttempts = 2
	cfg.Readiness.Interval = time.Millisecond

	f := &fixture{cfg: cfg}
	f.orch = &fakeOrch{events: &f.events, services: cfg.ServiceNames()}
	f.chain = &fakeChain{events: &f.events}
	f.checker = &fakeChecker{bound: map[uint32]bool{}}
	f.logs = &fakeLogs{
		events: &f.events,
		markers: map[string]string{
			cfg.Services.Node:    "Bound to 0.0.0.0:18444",
			cfg.Services.Indexer: "finished full compaction",
		},
		notReady: map[string]bool{},
	}
	return f
}

func (f *fixture) manager() *Manager {
	logger := reporting.NewLogger(reporting.LoggerConfig{
		Level:  reporting.LogLevelError,
		Format: reporting.LogFormatJSON,
		Output: io.Discard,
	})

	poller := &readiness.Poller{
		Source:      f.logs,
		MaxAttempts: f.cfg.Readiness.MaxAttempts,
		Interval:    f.cfg.Readiness.Interval,
		Logger:      logger,
	}

	rpcGate := func(ctx context.Context) error {
		f.rpcHit = true
		f.events = append(f.events, "rpc")
		return f.rpcErr
	}

	return New(f.cfg, f.orch, f.checker, poller, &fakeSweeper{events: &f.events}, f.chain, rpcGate, logger)
}

func TestStartSequence(t *testing.T) {
	f := newFixture(t)
	m := f.manager()

	err := m.Start(context.Background())

	require.NoError(t, err)
	// clean slate, descriptor validation, bring-up, node marker, RPC gate,
	// wallet bootstrap, initial blocks, indexer marker
	assert.Equal(t, []string{
		"down", "sweep",
		"services",
		"up",
		"logs:" + f.cfg.Services.Node,
		"rpc",
		"wallet",
		"mine",
		"logs:" + f.cfg.Services.Indexer,
	}, f.events)
	assert.Equal(t, []int{103}, f.chain.mined)
}

func TestStartCreatesDataDirectories(t *testing.T) {
	f := newFixture(t)
	m := f.manager()

	require.NoError(t, m.Start(context.Background()))

	for _, service := range f.cfg.ServiceNames() {
		dir := filepath.Join(f.cfg.Services.DataDir, service)
		info, err := os.Stat(dir)
		require.NoError(t, err, "data directory for %s", service)
		assert.True(t, info.IsDir())

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		assert.Empty(t, entries, "directory for %s starts empty", service)
	}
}

func TestStartRejectsBoundPort(t *testing.T) {
	f := newFixture(t)
	f.checker.bound[18443] = true
	m := f.manager()

	err := m.Start(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "18443")
	assert.NotContains(t, f.events, "up", "no service is brought up on a port conflict")
}

func TestStartRejectsUnknownService(t *testing.T) {
	f := newFixture(t)
	f.orch.services = []string{f.cfg.Services.Node, f.cfg.Services.Indexer}
	m := f.manager()

	err := m.Start(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "not defined in the orchestration descriptor")
	assert.NotContains(t, f.events, "up")
}

func TestStartReadinessTimeoutAborts(t *testing.T) {
	f := newFixture(t)
	f.logs.notReady[f.cfg.Services.Node] = true
	m := f.manager()

	err := m.Start(context.Background())

	require.Error(t, err)
	assert.False(t, f.rpcHit, "RPC gate never reached")
	assert.NotContains(t, f.events, "wallet", "wallet bootstrap never reached")
}

func TestStartRPCGateFailureAborts(t *testing.T) {
	f := newFixture(t)
	f.rpcErr = errors.New("connection refused")
	m := f.manager()

	err := m.Start(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
	assert.True(t, f.rpcHit, "RPC gate was consulted")
	assert.NotContains(t, f.events, "wallet", "wallet bootstrap never reached")
	assert.NotContains(t, f.events, "mine")
}

func TestStartIndexerTimeoutIsFatal(t *testing.T) {
	f := newFixture(t)
	f.logs.notReady[f.cfg.Services.Indexer] = true
	m := f.manager()

	err := m.Start(context.Background())

	require.Error(t, err)
	// Everything up to the indexer wait already ran
	assert.Contains(t, f.events, "mine")
}

func TestStartUpFailureIsFatal(t *testing.T) {
	f := newFixture(t)
	f.orch.upErr = errors.New("compose up: daemon unreachable")
	m := f.manager()

	err := m.Start(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "daemon unreachable")
}

func TestStopIsIdempotent(t *testing.T) {
	f := newFixture(t)
	m := f.manager()

	// Nothing was ever started
	require.NoError(t, m.Stop(context.Background()))
	require.NoError(t, m.Stop(context.Background()))

	_, err := os.Stat(f.cfg.Services.DataDir)
	assert.True(t, os.IsNotExist(err), "no data directories remain")
}

func TestStopRemovesDataDirectories(t *testing.T) {
	f := newFixture(t)
	m := f.manager()

	require.NoError(t, m.Start(context.Background()))
	require.NoError(t, m.Stop(context.Background()))

	_, err := os.Stat(f.cfg.Services.DataDir)
	assert.True(t, os.IsNotExist(err))
}
