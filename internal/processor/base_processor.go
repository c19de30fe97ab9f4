package processor

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/goran-ethernal/RWAListener/internal/logger"
	"github.com/goran-ethernal/RWAListener/pkg/concordium"
	"github.com/goran-ethernal/RWAListener/pkg/config"
)

// BaseProcessor provides the configuration accessors, the projection queries and
// the state helpers shared by all event processors.
// Embed it in a processor struct and implement InitProjections().
type BaseProcessor struct {
	log       *logger.Logger
	cfg       config.ProcessorConfig
	moduleRef concordium.ModuleRef

	// DB is used for read queries only; writes go through the block transaction.
	DB *sql.DB
}

// NewBaseProcessor validates the module reference of cfg and returns the base.
func NewBaseProcessor(db *sql.DB, log *logger.Logger, cfg config.ProcessorConfig) (*BaseProcessor, error) {
	ref, err := concordium.ParseHash(cfg.ModuleRef)
	if err != nil {
		return nil, fmt.Errorf("processor %s: invalid module_ref: %w", cfg.Name, err)
	}

	return &BaseProcessor{
		DB:        db,
		log:       log,
		cfg:       cfg,
		moduleRef: ref,
	}, nil
}

// Name returns the configured name of the processor instance.
func (b *BaseProcessor) Name() string {
	return b.cfg.Name
}

// Type returns the type identifier of the processor.
func (b *BaseProcessor) Type() string {
	return strings.ToLower(b.cfg.Type)
}

// ContractName returns the contract name the processor is bound to.
func (b *BaseProcessor) ContractName() string {
	return b.cfg.ContractName
}

// ModuleRef returns the module the processor is bound to.
func (b *BaseProcessor) ModuleRef() concordium.ModuleRef {
	return b.moduleRef
}

// Log returns the processor's logger.
func (b *BaseProcessor) Log() *logger.Logger {
	return b.log
}
