package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the regtest harness configuration
type Config struct {
	Framework FrameworkConfig `yaml:"framework"`
	Compose   ComposeConfig   `yaml:"compose"`
	Services  ServicesConfig  `yaml:"services"`
	Chain     ChainConfig     `yaml:"chain"`
	Readiness ReadinessConfig `yaml:"readiness"`
}

// FrameworkConfig contains general framework settings
type FrameworkConfig struct {
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
}

// ComposeConfig contains docker compose invocation settings
type ComposeConfig struct {
	// Command is the orchestration command prefix, e.g. ["docker", "compose"]
	Command []string `yaml:"command"`
	File    string   `yaml:"file"`
	Project string   `yaml:"project"`
}

// ServicesConfig names the containers the environment comprises and the
// local filesystem state they own
type ServicesConfig struct {
	Node    string   `yaml:"node"`
	Indexer string   `yaml:"indexer"`
	Peers   []string `yaml:"peers"`

	// DataDir is the root under which every service gets its own
	// state directory, wiped between runs
	DataDir string `yaml:"data_dir"`

	// ReservedPorts must be free before services are brought up
	ReservedPorts []uint32 `yaml:"reserved_ports"`
}

// ChainConfig contains node RPC settings and chain bootstrap parameters
type ChainConfig struct {
	Wallet        string `yaml:"wallet"`
	InitialBlocks int    `yaml:"initial_blocks"`
	RPCHost       string `yaml:"rpc_host"`
	RPCUser       string `yaml:"rpc_user"`
	RPCPass       string `yaml:"rpc_pass"`
}

// ReadinessConfig contains log-marker polling settings
type ReadinessConfig struct {
	// NodeMarker is the log line fragment the core node emits once its
	// listeners are bound
	NodeMarker string `yaml:"node_marker"`

	// IndexerMarker is the log line fragment the indexer emits after its
	// initial compaction pass
	IndexerMarker string `yaml:"indexer_marker"`

	MaxAttempts int           `yaml:"max_attempts"`
	Interval    time.Duration `yaml:"interval"`
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	return &Config{
		Framework: FrameworkConfig{
			LogLevel:  "info",
			LogFormat: "text",
		},
		Compose: ComposeConfig{
			Command: []string{"docker", "compose"},
			File:    "docker-compose.yml",
			Project: "regnet",
		},
		Services: ServicesConfig{
			Node:          "bitcoind",
			Indexer:       "electrs",
			Peers:         []string{"bitcoind-peer"},
			DataDir:       "./regnet-data",
			ReservedPorts: []uint32{18443, 18444, 50001},
		},
		Chain: ChainConfig{
			Wallet:        "miner",
			InitialBlocks: 103,
			RPCHost:       "127.0.0.1:18443",
			RPCUser:       "regnet",
			RPCPass:       "regnet",
		},
		Readiness: ReadinessConfig{
			NodeMarker:    "Bound to",
			IndexerMarker: "finished full compaction",
			MaxAttempts:   60,
			Interval:      time.Second,
		},
	}
}

// ServiceNames returns every service in the set, node first
func (c *Config) ServiceNames() []string {
	names := []string{c.Services.Node, c.Services.Indexer}
	return append(names, c.Services.Peers...)
}

// Load loads configuration from a YAML file
func Load(path string) (*Config, error) {
	// Start with defaults
	cfg := DefaultConfig()

	// If no path provided, look for regnet.yaml in current directory
	if path == "" {
		path = "regnet.yaml"
	}

	// Check if file exists
	if _, err := os.Stat(path); os.IsNotExist(err) {
		// Return default config if file doesn't exist
		return cfg, nil
	}

	// Read file
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Expand environment variables in the YAML content
	expandedData := []byte(os.ExpandEnv(string(data)))

	// Parse YAML
	if err := yaml.Unmarshal(expandedData, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// Save writes configuration to a YAML file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if len(c.Compose.Command) == 0 {
		return fmt.Errorf("compose.command is required")
	}

	if c.Compose.File == "" {
		return fmt.Errorf("compose.file is required")
	}

	if c.Services.Node == "" {
		return fmt.Errorf("services.node is required")
	}

	if c.Services.Indexer == "" {
		return fmt.Errorf("services.indexer is required")
	}

	if c.Services.DataDir == "" {
		return fmt.Errorf("services.data_dir is required")
	}

	if c.Chain.Wallet == "" {
		return fmt.Errorf("chain.wallet is required")
	}

	if c.Chain.InitialBlocks < 1 {
		return fmt.Errorf("chain.initial_blocks must be at least 1")
	}

	if c.Readiness.MaxAttempts < 1 {
		return fmt.Errorf("readiness.max_attempts must be at least 1")
	}

	if c.Readiness.NodeMarker == "" || c.Readiness.IndexerMarker == "" {
		return fmt.Errorf("readiness markers are required")
	}

	return nil
}
