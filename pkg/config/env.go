package config

import (
	"fmt"

	"github.com/goran-ethernal/RWAListener/internal/common"
)

// Environment variables that override values read from the configuration file.
const (
	EnvNodeURL     = "LISTENER_NODE_URL"
	EnvDBPath      = "LISTENER_DB_PATH"
	EnvStartHeight = "LISTENER_START_HEIGHT"
	EnvLogLevel    = "LISTENER_LOG_LEVEL"
)

// LookupFunc has the signature of os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// ApplyEnvOverrides replaces configuration values with the ones set in the environment.
func (c *Config) ApplyEnvOverrides(lookup LookupFunc) error {
	if v, ok := lookup(EnvNodeURL); ok && v != "" {
		c.Listener.NodeURL = v
	}

	if v, ok := lookup(EnvDBPath); ok && v != "" {
		c.DB.Path = v
	}

	if v, ok := lookup(EnvStartHeight); ok && v != "" {
		height, err := common.ParseUint64orHex(&v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvStartHeight, err)
		}
		c.Listener.StartBlockHeight = &height
	}

	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		if c.Logging == nil {
			c.Logging = &LoggingConfig{}
		}
		c.Logging.DefaultLevel = v
	}

	return nil
}
