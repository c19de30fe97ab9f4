package processor

import (
	"database/sql"
	"fmt"

	"github.com/goran-ethernal/RWAListener/internal/logger"
	"github.com/goran-ethernal/RWAListener/pkg/concordium"
	"github.com/goran-ethernal/RWAListener/pkg/config"
)

// DispatchTable maps module references to processors. It is built once at
// startup and never changes afterwards.
type DispatchTable struct {
	byModule map[concordium.ModuleRef]Processor
	byName   map[string]Processor
	ordered  []Processor
}

// NewDispatchTable builds a table from processor instances.
// Two processors bound to the same module or sharing a name are rejected.
func NewDispatchTable(processors ...Processor) (*DispatchTable, error) {
	t := &DispatchTable{
		byModule: make(map[concordium.ModuleRef]Processor, len(processors)),
		byName:   make(map[string]Processor, len(processors)),
		ordered:  make([]Processor, 0, len(processors)),
	}

	for _, p := range processors {
		if existing, ok := t.byModule[p.ModuleRef()]; ok {
			return nil, fmt.Errorf("module %s bound to both %s and %s", p.ModuleRef(), existing.Name(), p.Name())
		}
		if _, ok := t.byName[p.Name()]; ok {
			return nil, fmt.Errorf("duplicate processor name %s", p.Name())
		}

		t.byModule[p.ModuleRef()] = p
		t.byName[p.Name()] = p
		t.ordered = append(t.ordered, p)
	}

	return t, nil
}

// BuildDispatchTable creates every configured processor through the factory registry.
func BuildDispatchTable(cfgs []config.ProcessorConfig, db *sql.DB, log *logger.Logger) (*DispatchTable, error) {
	processors := make([]Processor, 0, len(cfgs))
	for _, cfg := range cfgs {
		p, err := Create(cfg, db, log.WithComponent(cfg.Name))
		if err != nil {
			return nil, fmt.Errorf("failed to create processor %s: %w", cfg.Name, err)
		}

		log.Infow("processor created",
			"name", p.Name(),
			"type", p.Type(),
			"contract", p.ContractName(),
			"module_ref", p.ModuleRef().String(),
		)
		processors = append(processors, p)
	}

	return NewDispatchTable(processors...)
}

// Lookup returns the processor bound to the module, if any.
func (t *DispatchTable) Lookup(ref concordium.ModuleRef) (Processor, bool) {
	p, ok := t.byModule[ref]
	return p, ok
}

// GetByName returns the processor with the given name or nil.
func (t *DispatchTable) GetByName(name string) Processor {
	return t.byName[name]
}

// ListAll returns the processors in configuration order.
func (t *DispatchTable) ListAll() []Processor {
	return t.ordered
}
