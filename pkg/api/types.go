package api

import (
	"time"

	"github.com/goran-ethernal/RWAListener/pkg/listener"
)

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    int    `json:"code"`
}

// HealthResponse represents a health check response.
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	// LastBlock is the height of the checkpoint, absent before the first block
	LastBlock *uint64 `json:"last_block,omitempty"`
}

// StatusResponse describes the progress of the listener.
type StatusResponse struct {
	Checkpoint       *listener.Checkpoint `json:"checkpoint"`
	TrackedContracts int                  `json:"tracked_contracts"`
	Processors       []ProcessorInfo      `json:"processors"`
}

// ProcessorInfo describes a configured processor.
type ProcessorInfo struct {
	Name         string   `json:"name"`
	Type         string   `json:"type"`
	ContractName string   `json:"contract_name"`
	ModuleRef    string   `json:"module_ref"`
	Projections  []string `json:"projections"`
}

// ContractInfo is a tracked contract together with the projections it can be queried for.
type ContractInfo struct {
	*listener.TrackedContract
	Projections []string `json:"projections"`
	Endpoints   []string `json:"endpoints"`
}
