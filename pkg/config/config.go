package config

import (
	"fmt"
	"slices"
	"time"

	"github.com/goran-ethernal/RWAListener/internal/common"
	"github.com/goran-ethernal/RWAListener/internal/logger"
	"github.com/goran-ethernal/RWAListener/pkg/concordium"
)

// Config represents the complete configuration of the events listener.
type Config struct {
	// Listener contains the chain following configuration
	Listener ListenerConfig `yaml:"listener" json:"listener" toml:"listener"`

	// DB contains the configuration of the database holding the projection
	DB DatabaseConfig `yaml:"db" json:"db" toml:"db"`

	// Maintenance contains optional database maintenance settings
	Maintenance *MaintenanceConfig `yaml:"maintenance,omitempty" json:"maintenance,omitempty" toml:"maintenance,omitempty"`

	// Processors binds deployed contract modules to event processors
	Processors []ProcessorConfig `yaml:"processors" json:"processors" toml:"processors"`

	// Logging contains logging configuration
	Logging *LoggingConfig `yaml:"logging,omitempty" json:"logging,omitempty" toml:"logging,omitempty"`

	// Metrics contains Prometheus metrics configuration
	Metrics *MetricsConfig `yaml:"metrics,omitempty" json:"metrics,omitempty" toml:"metrics,omitempty"`

	// API contains the read-side HTTP API configuration
	API *APIConfig `yaml:"api,omitempty" json:"api,omitempty" toml:"api,omitempty"`

	// Notifier contains the optional Kafka block notification configuration
	Notifier *NotifierConfig `yaml:"notifier,omitempty" json:"notifier,omitempty" toml:"notifier,omitempty"`
}

// ListenerConfig represents the configuration of the chain follower.
type ListenerConfig struct {
	// NodeURL is the JSON-RPC endpoint of the Concordium node
	NodeURL string `yaml:"node_url" json:"node_url" toml:"node_url"`

	// RequestTimeout bounds a single node request
	RequestTimeout common.Duration `yaml:"request_timeout" json:"request_timeout" toml:"request_timeout"`

	// PollInterval is how long to wait before asking again for a block that is not finalized yet
	PollInterval common.Duration `yaml:"poll_interval" json:"poll_interval" toml:"poll_interval"`

	// StartBlockHeight is the height to start from on first run.
	// When not set the current last finalized block is used.
	StartBlockHeight *uint64 `yaml:"start_block_height,omitempty" json:"start_block_height,omitempty" toml:"start_block_height,omitempty"` //nolint:lll

	// RateLimit limits the number of node requests per duration
	RateLimit *RateLimitConfig `yaml:"rate_limit,omitempty" json:"rate_limit,omitempty" toml:"rate_limit,omitempty"`

	// Retry contains node request retry configuration with exponential backoff
	Retry *RetryConfig `yaml:"retry,omitempty" json:"retry,omitempty" toml:"retry,omitempty"`

	// BlockRetry controls how often a block is re-applied after a transient database error
	BlockRetry *RetryConfig `yaml:"block_retry,omitempty" json:"block_retry,omitempty" toml:"block_retry,omitempty"`

	// RegistryCacheSize is the number of contract lookups kept in memory
	RegistryCacheSize int `yaml:"registry_cache_size" json:"registry_cache_size" toml:"registry_cache_size"`
}

// ApplyDefaults sets default values for optional listener configuration fields.
func (l *ListenerConfig) ApplyDefaults() {
	if l.RequestTimeout.Duration == 0 {
		l.RequestTimeout = common.NewDuration(30 * time.Second) //nolint:mnd
	}
	if l.PollInterval.Duration == 0 {
		l.PollInterval = common.NewDuration(2 * time.Second) //nolint:mnd
	}
	if l.RegistryCacheSize == 0 {
		l.RegistryCacheSize = 1024
	}

	if l.Retry == nil {
		l.Retry = &RetryConfig{}
	}
	l.Retry.ApplyDefaults()

	if l.BlockRetry == nil {
		l.BlockRetry = &RetryConfig{MaxAttempts: 10} //nolint:mnd
	}
	l.BlockRetry.ApplyDefaults()

	if l.RateLimit != nil {
		l.RateLimit.ApplyDefaults()
	}
}

// RateLimitConfig expresses a request budget as requests per duration.
type RateLimitConfig struct {
	// Requests is the number of requests allowed per period
	Requests int `yaml:"requests" json:"requests" toml:"requests"`

	// Per is the period the request budget refers to
	Per common.Duration `yaml:"per" json:"per" toml:"per"`
}

// ApplyDefaults sets default values for the rate limit.
func (r *RateLimitConfig) ApplyDefaults() {
	if r.Per.Duration == 0 {
		r.Per = common.NewDuration(time.Second)
	}
}

// Validate checks if the rate limit is usable.
func (r *RateLimitConfig) Validate() error {
	if r.Requests <= 0 {
		return fmt.Errorf("requests must be greater than zero")
	}
	if r.Per.Duration <= 0 {
		return fmt.Errorf("per must be a positive duration")
	}
	return nil
}

// RetryConfig represents retry configuration with exponential backoff.
type RetryConfig struct {
	// MaxAttempts is the maximum number of attempts (including initial request)
	MaxAttempts int `yaml:"max_attempts" json:"max_attempts" toml:"max_attempts"`

	// InitialBackoff is the initial backoff duration before first retry
	InitialBackoff common.Duration `yaml:"initial_backoff" json:"initial_backoff" toml:"initial_backoff"`

	// MaxBackoff is the maximum backoff duration
	MaxBackoff common.Duration `yaml:"max_backoff" json:"max_backoff" toml:"max_backoff"`

	// BackoffMultiplier is the multiplier for exponential backoff
	BackoffMultiplier float64 `yaml:"backoff_multiplier" json:"backoff_multiplier" toml:"backoff_multiplier"`
}

// ApplyDefaults sets default values for retry configuration.
func (r *RetryConfig) ApplyDefaults() {
	if r.MaxAttempts == 0 {
		r.MaxAttempts = 5
	}
	if r.InitialBackoff.Duration == 0 {
		r.InitialBackoff = common.NewDuration(1 * time.Second)
	}
	if r.MaxBackoff.Duration == 0 {
		r.MaxBackoff = common.NewDuration(30 * time.Second) //nolint:mnd
	}
	if r.BackoffMultiplier == 0 {
		r.BackoffMultiplier = 2.0
	}
}

// DatabaseConfig represents database configuration.
type DatabaseConfig struct {
	// Path is the file path to the SQLite database
	Path string `yaml:"path" json:"path" toml:"path"`

	// JournalMode sets the SQLite journal mode (e.g., "WAL", "DELETE")
	JournalMode string `yaml:"journal_mode" json:"journal_mode" toml:"journal_mode"`

	// Synchronous sets the synchronization level ("FULL", "NORMAL", "OFF")
	Synchronous string `yaml:"synchronous" json:"synchronous" toml:"synchronous"`

	// BusyTimeout is the time in milliseconds to wait when the database is locked
	BusyTimeout int `yaml:"busy_timeout" json:"busy_timeout" toml:"busy_timeout"`

	// CacheSize is the size of the page cache (negative = KB, positive = pages)
	CacheSize int `yaml:"cache_size" json:"cache_size" toml:"cache_size"`

	// MaxOpenConnections is the maximum number of open database connections
	MaxOpenConnections int `yaml:"max_open_connections" json:"max_open_connections" toml:"max_open_connections"`

	// MaxIdleConnections is the maximum number of idle connections in the pool
	MaxIdleConnections int `yaml:"max_idle_connections" json:"max_idle_connections" toml:"max_idle_connections"`

	// EnableForeignKeys enables foreign key constraint enforcement
	EnableForeignKeys bool `yaml:"enable_foreign_keys" json:"enable_foreign_keys" toml:"enable_foreign_keys"`
}

// ApplyDefaults sets default values for optional database configuration fields.
func (d *DatabaseConfig) ApplyDefaults() {
	if d.JournalMode == "" {
		d.JournalMode = "WAL"
	}
	if d.Synchronous == "" {
		d.Synchronous = "NORMAL"
	}
	if d.BusyTimeout == 0 {
		d.BusyTimeout = 5000
	}
	if d.CacheSize == 0 {
		d.CacheSize = 10000
	}
	if d.MaxOpenConnections == 0 {
		d.MaxOpenConnections = 25
	}
	if d.MaxIdleConnections == 0 {
		d.MaxIdleConnections = 5
	}
}

// Validate checks if the database configuration is valid.
func (d *DatabaseConfig) Validate() error {
	if d.Path == "" {
		return fmt.Errorf("db.path is required")
	}

	if d.JournalMode != "" &&
		!slices.Contains([]string{"WAL", "DELETE", "TRUNCATE", "PERSIST", "MEMORY"}, d.JournalMode) {
		return fmt.Errorf("db.journal_mode must be one of: WAL, DELETE, TRUNCATE, PERSIST, MEMORY")
	}

	if d.Synchronous != "" && !slices.Contains([]string{"FULL", "NORMAL", "OFF"}, d.Synchronous) {
		return fmt.Errorf("db.synchronous must be one of: FULL, NORMAL, OFF")
	}

	return nil
}

// MaintenanceConfig configures database maintenance behavior.
type MaintenanceConfig struct {
	// Enabled controls whether background maintenance runs
	Enabled bool `yaml:"enabled" json:"enabled" toml:"enabled"`

	// CheckInterval is how often to run maintenance (e.g., "30m", "1h")
	CheckInterval common.Duration `yaml:"check_interval" json:"check_interval" toml:"check_interval"`

	// VacuumOnStartup runs maintenance immediately on startup
	VacuumOnStartup bool `yaml:"vacuum_on_startup" json:"vacuum_on_startup" toml:"vacuum_on_startup"`

	// WALCheckpointMode controls the WAL checkpoint aggressiveness
	// Options: PASSIVE, FULL, RESTART, TRUNCATE
	WALCheckpointMode string `yaml:"wal_checkpoint_mode" json:"wal_checkpoint_mode" toml:"wal_checkpoint_mode"`
}

// ApplyDefaults sets default values for optional maintenance configuration fields.
func (m *MaintenanceConfig) ApplyDefaults() {
	if m.CheckInterval.Duration == 0 {
		m.CheckInterval = common.NewDuration(30 * time.Minute) //nolint:mnd
	}
	if m.WALCheckpointMode == "" {
		m.WALCheckpointMode = "TRUNCATE"
	}
}

// Validate checks if the maintenance configuration is valid.
func (m *MaintenanceConfig) Validate() error {
	if m.WALCheckpointMode != "" {
		validModes := []string{"PASSIVE", "FULL", "RESTART", "TRUNCATE"}
		if !slices.Contains(validModes, m.WALCheckpointMode) {
			return fmt.Errorf("maintenance.wal_checkpoint_mode: must be one of: PASSIVE, FULL, RESTART, TRUNCATE")
		}
	}

	return nil
}

// ProcessorConfig binds one deployed contract module to a processor implementation.
type ProcessorConfig struct {
	// Type is the registered processor type (see the list command)
	Type string `yaml:"type" json:"type" toml:"type"`

	// Name is a unique, human readable name for this binding
	Name string `yaml:"name" json:"name" toml:"name"`

	// ModuleRef is the hex encoded reference of the deployed module
	ModuleRef string `yaml:"module_ref" json:"module_ref" toml:"module_ref"`

	// ContractName is the contract name inside the module, without the init_ prefix
	ContractName string `yaml:"contract_name" json:"contract_name" toml:"contract_name"`
}

// LoggingConfig configures logging behavior with per-component log levels.
type LoggingConfig struct {
	// DefaultLevel is the default log level for all components
	// Options: "debug", "info", "warn", "error"
	DefaultLevel string `yaml:"default_level" json:"default_level" toml:"default_level"`

	// Development enables development mode (stack traces, console encoder)
	Development bool `yaml:"development" json:"development" toml:"development"`

	// ComponentLevels sets log levels for specific components
	// Available components:
	//   - listener: Block processing loop
	//   - fetcher: Finalized block fetching
	//   - rpc: Node requests
	//   - registry: Tracked contract registry
	//   - checkpoint: Checkpoint store
	//   - processor: Contract event processors
	//   - maintenance: Database maintenance
	//   - api: Read-side HTTP API
	//   - metrics: Metrics server
	//   - notifier: Block notifications
	ComponentLevels map[string]string `yaml:"component_levels,omitempty" json:"component_levels,omitempty" toml:"component_levels,omitempty"` //nolint:lll
}

// ApplyDefaults sets default values for optional logging configuration fields.
func (l *LoggingConfig) ApplyDefaults() {
	if l.DefaultLevel == "" {
		l.DefaultLevel = "info"
	}
	if l.ComponentLevels == nil {
		l.ComponentLevels = make(map[string]string)
	}
}

// Validate checks if the logging configuration is valid.
func (l *LoggingConfig) Validate() error {
	if l.DefaultLevel != "" {
		if _, valid := logger.ValidLogLevels[common.ToLowerWithTrim(l.DefaultLevel)]; !valid {
			return fmt.Errorf("logging.default_level: must be one of: debug, info, warn, error")
		}
	}

	for component, level := range l.ComponentLevels {
		if _, validComponent := common.AllComponents[common.ToLowerWithTrim(component)]; !validComponent {
			return fmt.Errorf("logging.component_levels: unknown component '%s'", component)
		}

		if _, valid := logger.ValidLogLevels[common.ToLowerWithTrim(level)]; !valid {
			return fmt.Errorf("logging.component_levels[%s]: must be one of: debug, info, warn, error", component)
		}
	}

	return nil
}

// GetComponentLevel returns the log level for a specific component.
// Falls back to DefaultLevel if no component-specific level is set.
func (l *LoggingConfig) GetComponentLevel(component string) string {
	if level, ok := l.ComponentLevels[component]; ok {
		return common.ToLowerWithTrim(level)
	}
	return common.ToLowerWithTrim(l.DefaultLevel)
}

// GetDefaultLevel returns the default log level.
func (l *LoggingConfig) GetDefaultLevel() string {
	return common.ToLowerWithTrim(l.DefaultLevel)
}

// IsDevelopment returns whether development mode is enabled.
func (l *LoggingConfig) IsDevelopment() bool {
	return l.Development
}

// MetricsConfig configures Prometheus metrics exposition.
type MetricsConfig struct {
	// Enabled controls whether metrics collection and HTTP endpoint are active
	Enabled bool `yaml:"enabled" json:"enabled" toml:"enabled"`

	// ListenAddress is the address to bind the metrics HTTP server to
	ListenAddress string `yaml:"listen_address" json:"listen_address" toml:"listen_address"`

	// Path is the HTTP path where metrics are exposed
	Path string `yaml:"path" json:"path" toml:"path"`
}

// ApplyDefaults sets default values for optional metrics configuration fields.
func (m *MetricsConfig) ApplyDefaults() {
	if m.ListenAddress == "" {
		m.ListenAddress = ":9090"
	}
	if m.Path == "" {
		m.Path = "/metrics"
	}
}

// Validate checks if the metrics configuration is valid.
func (m *MetricsConfig) Validate() error {
	if m.Enabled {
		if m.ListenAddress == "" {
			return fmt.Errorf("listen_address is required when metrics are enabled")
		}
		if m.Path == "" {
			return fmt.Errorf("path is required when metrics are enabled")
		}
		if m.Path[0] != '/' {
			return fmt.Errorf("path must start with '/'")
		}
	}
	return nil
}

// APIConfig configures the read-side HTTP API.
type APIConfig struct {
	// Enabled controls whether the API server is started
	Enabled bool `yaml:"enabled" json:"enabled" toml:"enabled"`

	// ListenAddress is the address to bind the API server to
	ListenAddress string `yaml:"listen_address" json:"listen_address" toml:"listen_address"`

	ReadTimeout  common.Duration `yaml:"read_timeout" json:"read_timeout" toml:"read_timeout"`
	WriteTimeout common.Duration `yaml:"write_timeout" json:"write_timeout" toml:"write_timeout"`
	IdleTimeout  common.Duration `yaml:"idle_timeout" json:"idle_timeout" toml:"idle_timeout"`

	// CORS contains cross origin settings
	CORS CORSConfig `yaml:"cors" json:"cors" toml:"cors"`
}

// CORSConfig configures cross origin requests to the API.
type CORSConfig struct {
	Enabled        bool     `yaml:"enabled" json:"enabled" toml:"enabled"`
	AllowedOrigins []string `yaml:"allowed_origins" json:"allowed_origins" toml:"allowed_origins"`
}

// ApplyDefaults sets default values for optional API configuration fields.
func (a *APIConfig) ApplyDefaults() {
	if a.ListenAddress == "" {
		a.ListenAddress = ":8080"
	}
	if a.ReadTimeout.Duration == 0 {
		a.ReadTimeout = common.NewDuration(15 * time.Second) //nolint:mnd
	}
	if a.WriteTimeout.Duration == 0 {
		a.WriteTimeout = common.NewDuration(15 * time.Second) //nolint:mnd
	}
	if a.IdleTimeout.Duration == 0 {
		a.IdleTimeout = common.NewDuration(60 * time.Second) //nolint:mnd
	}
	if a.CORS.Enabled && len(a.CORS.AllowedOrigins) == 0 {
		a.CORS.AllowedOrigins = []string{"*"}
	}
}

// Validate checks if the API configuration is valid.
func (a *APIConfig) Validate() error {
	if a.Enabled && a.ListenAddress == "" {
		return fmt.Errorf("listen_address is required when the API is enabled")
	}
	return nil
}

// NotifierConfig configures block notifications published to Kafka after each commit.
type NotifierConfig struct {
	// Enabled controls whether notifications are published
	Enabled bool `yaml:"enabled" json:"enabled" toml:"enabled"`

	// Brokers is the list of Kafka bootstrap brokers
	Brokers []string `yaml:"brokers" json:"brokers" toml:"brokers"`

	// Topic is the topic block notifications are written to
	Topic string `yaml:"topic" json:"topic" toml:"topic"`

	// ClientID identifies the listener to the brokers
	ClientID string `yaml:"client_id" json:"client_id" toml:"client_id"`
}

// ApplyDefaults sets default values for optional notifier configuration fields.
func (n *NotifierConfig) ApplyDefaults() {
	if n.Topic == "" {
		n.Topic = "rwa.blocks"
	}
	if n.ClientID == "" {
		n.ClientID = "rwa-listener"
	}
}

// Validate checks if the notifier configuration is valid.
func (n *NotifierConfig) Validate() error {
	if n.Enabled && len(n.Brokers) == 0 {
		return fmt.Errorf("at least one broker is required when the notifier is enabled")
	}
	return nil
}

// ApplyDefaults sets default values for optional configuration fields.
func (c *Config) ApplyDefaults() {
	c.Listener.ApplyDefaults()
	c.DB.ApplyDefaults()

	if c.Maintenance != nil {
		c.Maintenance.ApplyDefaults()
	}

	if c.Logging != nil {
		c.Logging.ApplyDefaults()
	}

	if c.Metrics != nil {
		c.Metrics.ApplyDefaults()
	}

	if c.API != nil {
		c.API.ApplyDefaults()
	}

	if c.Notifier != nil {
		c.Notifier.ApplyDefaults()
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Listener.NodeURL == "" {
		return fmt.Errorf("listener.node_url is required")
	}

	if c.Listener.RateLimit != nil {
		if err := c.Listener.RateLimit.Validate(); err != nil {
			return fmt.Errorf("listener.rate_limit: %w", err)
		}
	}

	if err := c.DB.Validate(); err != nil {
		return err
	}

	if c.Maintenance != nil {
		if err := c.Maintenance.Validate(); err != nil {
			return err
		}
	}

	if c.Logging != nil {
		if err := c.Logging.Validate(); err != nil {
			return err
		}
	}

	if c.Metrics != nil {
		if err := c.Metrics.Validate(); err != nil {
			return fmt.Errorf("metrics: %w", err)
		}
	}

	if c.API != nil {
		if err := c.API.Validate(); err != nil {
			return fmt.Errorf("api: %w", err)
		}
	}

	if c.Notifier != nil {
		if err := c.Notifier.Validate(); err != nil {
			return fmt.Errorf("notifier: %w", err)
		}
	}

	if len(c.Processors) == 0 {
		return fmt.Errorf("at least one processor must be configured")
	}

	names := make(map[string]bool)
	modules := make(map[string]bool)
	for i, p := range c.Processors {
		if p.Name == "" {
			return fmt.Errorf("processor[%d]: name is required", i)
		}
		if names[p.Name] {
			return fmt.Errorf("processor[%d]: duplicate processor name '%s'", i, p.Name)
		}
		names[p.Name] = true

		if p.Type == "" {
			return fmt.Errorf("processor[%d] (%s): type is required", i, p.Name)
		}
		if p.ContractName == "" {
			return fmt.Errorf("processor[%d] (%s): contract_name is required", i, p.Name)
		}

		ref, err := concordium.ParseHash(p.ModuleRef)
		if err != nil {
			return fmt.Errorf("processor[%d] (%s): invalid module_ref: %w", i, p.Name, err)
		}
		if modules[ref.String()] {
			return fmt.Errorf("processor[%d] (%s): module_ref %s is bound twice", i, p.Name, ref)
		}
		modules[ref.String()] = true
	}

	return nil
}
