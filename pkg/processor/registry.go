package processor

import (
	"database/sql"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/goran-ethernal/RWAListener/internal/logger"
	"github.com/goran-ethernal/RWAListener/pkg/config"
)

// Factory creates a processor instance. The factory applies the processor's
// migrations to db and may keep db for read queries.
type Factory func(cfg config.ProcessorConfig, db *sql.DB, log *logger.Logger) (Processor, error)

var (
	registry = make(map[string]Factory)
	mu       sync.RWMutex
)

// Register registers a processor factory with the given type name.
// This is typically called in init() functions of processor packages.
// The type name is case-insensitive and will be stored in lowercase.
func Register(processorType string, factory Factory) {
	mu.Lock()
	defer mu.Unlock()
	name := strings.ToLower(processorType)
	if _, exists := registry[name]; exists {
		logger.GetDefaultLogger().Infof("processor with name %s already in processor registry. "+
			"It will be overwritten.", name)
	}

	registry[name] = factory
}

// GetFactory returns the factory for the given processor type.
// Returns nil if the type is not registered.
func GetFactory(processorType string) Factory {
	mu.RLock()
	defer mu.RUnlock()
	return registry[strings.ToLower(processorType)]
}

// ListRegistered returns the sorted list of all registered processor types.
func ListRegistered() []string {
	mu.RLock()
	defer mu.RUnlock()

	types := make([]string, 0, len(registry))
	for t := range registry {
		types = append(types, t)
	}
	slices.Sort(types)
	return types
}

// Create creates a new processor instance using the registered factory.
func Create(cfg config.ProcessorConfig, db *sql.DB, log *logger.Logger) (Processor, error) {
	factory := GetFactory(cfg.Type)
	if factory == nil {
		return nil, fmt.Errorf("unknown processor type: %s (registered types: %v)", cfg.Type, ListRegistered())
	}

	return factory(cfg, db, log)
}
