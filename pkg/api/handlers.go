package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/goran-ethernal/RWAListener/internal/logger"
	"github.com/goran-ethernal/RWAListener/pkg/concordium"
	"github.com/goran-ethernal/RWAListener/pkg/listener"
	"github.com/goran-ethernal/RWAListener/pkg/processor"
)

// ProcessorRegistry defines the interface for accessing configured processors.
type ProcessorRegistry interface {
	GetByName(name string) processor.Processor
	ListAll() []processor.Processor
}

// ContractRegistry defines the read access to tracked contracts.
type ContractRegistry interface {
	Get(ctx context.Context, contract concordium.ContractAddress) (*listener.TrackedContract, error)
	List(ctx context.Context) ([]*listener.TrackedContract, error)
	Count(ctx context.Context) (int, error)
}

// CheckpointReader defines the read access to the checkpoint.
type CheckpointReader interface {
	Load(ctx context.Context) (*listener.Checkpoint, error)
}

// Handler handles HTTP requests for the API.
type Handler struct {
	processors  ProcessorRegistry
	contracts   ContractRegistry
	checkpoints CheckpointReader
	log         *logger.Logger
}

// NewHandler creates a new API handler.
func NewHandler(processors ProcessorRegistry, contracts ContractRegistry, checkpoints CheckpointReader,
	log *logger.Logger) *Handler {
	return &Handler{
		processors:  processors,
		contracts:   contracts,
		checkpoints: checkpoints,
		log:         log,
	}
}

// Health returns the health status of the API.
// @Summary Health check
// @Description Check that the API is up and report the last processed block
// @Tags Health
// @Produce json
// @Success 200 {object} HealthResponse "API health status"
// @Failure 503 {object} ErrorResponse "Database unavailable"
// @Router /health [get]
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	cp, err := h.checkpoints.Load(r.Context())
	if err != nil {
		h.log.Errorf("Failed to load checkpoint: %v", err)
		respondError(w, http.StatusServiceUnavailable, "database unavailable")
		return
	}

	response := HealthResponse{
		Status:    "ok",
		Timestamp: time.Now(),
	}
	if cp != nil {
		response.LastBlock = &cp.BlockHeight
	}

	respondJSON(w, http.StatusOK, response)
}

// Status returns the checkpoint, the number of tracked contracts and the configured processors.
// @Summary Listener status
// @Description Report how far the listener got and what it tracks
// @Tags Status
// @Produce json
// @Success 200 {object} StatusResponse "Listener status"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /status [get]
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	cp, err := h.checkpoints.Load(r.Context())
	if err != nil {
		h.log.Errorf("Failed to load checkpoint: %v", err)
		respondError(w, http.StatusInternalServerError, "failed to load checkpoint")
		return
	}

	count, err := h.contracts.Count(r.Context())
	if err != nil {
		h.log.Errorf("Failed to count tracked contracts: %v", err)
		respondError(w, http.StatusInternalServerError, "failed to count tracked contracts")
		return
	}

	respondJSON(w, http.StatusOK, StatusResponse{
		Checkpoint:       cp,
		TrackedContracts: count,
		Processors:       h.processorInfos(),
	})
}

// ListProcessors returns the configured processors.
// @Summary List processors
// @Description Get the configured processors with the projections they expose
// @Tags Processors
// @Produce json
// @Success 200 {array} ProcessorInfo "List of processors"
// @Router /processors [get]
func (h *Handler) ListProcessors(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.processorInfos())
}

// ListContracts returns one page of tracked contracts.
// @Summary List tracked contracts
// @Description Get the contract instances created from modules bound to a processor
// @Tags Contracts
// @Produce json
// @Param page query int false "Zero based page number" default(0)
// @Success 200 {object} processor.Page "Page of tracked contracts"
// @Failure 400 {object} ErrorResponse "Invalid parameters"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /contracts [get]
func (h *Handler) ListContracts(w http.ResponseWriter, r *http.Request) {
	q, err := parseQuery(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("invalid query parameters: %v", err))
		return
	}

	contracts, err := h.contracts.List(r.Context())
	if err != nil {
		h.log.Errorf("Failed to list tracked contracts: %v", err)
		respondError(w, http.StatusInternalServerError, "failed to list tracked contracts")
		return
	}

	from := min(q.Offset(), len(contracts))
	to := min(from+q.Limit(), len(contracts))

	respondJSON(w, http.StatusOK, processor.Page{
		Data:      contracts[from:to],
		Page:      q.Page,
		PageCount: processor.PageCount(len(contracts), q.Limit()),
	})
}

// GetContract returns a tracked contract with its projections.
// @Summary Get a tracked contract
// @Description Get a tracked contract and the projections it can be queried for
// @Tags Contracts
// @Produce json
// @Param index path integer true "Contract index"
// @Param subindex path integer true "Contract subindex"
// @Success 200 {object} ContractInfo "Tracked contract"
// @Failure 400 {object} ErrorResponse "Invalid parameters"
// @Failure 404 {object} ErrorResponse "Contract not tracked"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /contracts/{index}/{subindex} [get]
func (h *Handler) GetContract(w http.ResponseWriter, r *http.Request) {
	contract, p, ok := h.resolveContract(w, r)
	if !ok {
		return
	}

	info := ContractInfo{TrackedContract: contract}
	if queryable, ok := p.(processor.Queryable); ok {
		info.Projections = queryable.Projections()
		for _, name := range info.Projections {
			info.Endpoints = append(info.Endpoints, fmt.Sprintf("/api/v1/contracts/%d/%d/%s",
				contract.Contract.Index, contract.Contract.Subindex, name))
		}
	}

	respondJSON(w, http.StatusOK, info)
}

// QueryProjection returns one page of a projection of a tracked contract.
// @Summary Query a projection
// @Description Get one page of the rows a contract has in a projection, optionally filtered by holder and token
// @Tags Contracts
// @Produce json
// @Param index path integer true "Contract index"
// @Param subindex path integer true "Contract subindex"
// @Param projection path string true "Projection name"
// @Param page query int false "Zero based page number" default(0)
// @Param holder query string false "Account or <index,subindex> contract address"
// @Param token_id query string false "Hex encoded token id"
// @Success 200 {object} processor.Page "Page of projection rows"
// @Failure 400 {object} ErrorResponse "Invalid parameters"
// @Failure 404 {object} ErrorResponse "Contract not tracked or unknown projection"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /contracts/{index}/{subindex}/{projection} [get]
func (h *Handler) QueryProjection(w http.ResponseWriter, r *http.Request) {
	contract, p, ok := h.resolveContract(w, r)
	if !ok {
		return
	}

	queryable, ok := p.(processor.Queryable)
	if !ok {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("processor '%s' does not support querying", p.Name()))
		return
	}

	q, err := parseQuery(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("invalid query parameters: %v", err))
		return
	}

	page, err := queryable.QueryProjection(r.Context(), contract.Contract, r.PathValue("projection"), q)
	switch {
	case errors.Is(err, processor.ErrUnknownProjection):
		respondError(w, http.StatusNotFound, err.Error())
		return
	case errors.Is(err, processor.ErrInvalidQuery):
		respondError(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		h.log.Errorf("Failed to query projection: %v", err)
		respondError(w, http.StatusInternalServerError, "failed to query projection")
		return
	}

	respondJSON(w, http.StatusOK, page)
}

// resolveContract looks up the contract named by the path and its processor.
// It writes the error response itself and reports false on failure.
func (h *Handler) resolveContract(w http.ResponseWriter, r *http.Request) (
	*listener.TrackedContract, processor.Processor, bool) {
	address, err := parseContractPath(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return nil, nil, false
	}

	contract, err := h.contracts.Get(r.Context(), address)
	if err != nil {
		h.log.Errorf("Failed to get tracked contract: %v", err)
		respondError(w, http.StatusInternalServerError, "failed to get tracked contract")
		return nil, nil, false
	}
	if contract == nil {
		respondError(w, http.StatusNotFound, fmt.Sprintf("contract %s is not tracked", address))
		return nil, nil, false
	}

	p := h.processors.GetByName(contract.Processor)
	if p == nil {
		respondError(w, http.StatusNotFound, fmt.Sprintf("processor '%s' is not configured", contract.Processor))
		return nil, nil, false
	}

	return contract, p, true
}

func (h *Handler) processorInfos() []ProcessorInfo {
	processors := h.processors.ListAll()

	infos := make([]ProcessorInfo, 0, len(processors))
	for _, p := range processors {
		info := ProcessorInfo{
			Name:         p.Name(),
			Type:         p.Type(),
			ContractName: p.ContractName(),
			ModuleRef:    p.ModuleRef().String(),
		}
		if queryable, ok := p.(processor.Queryable); ok {
			info.Projections = queryable.Projections()
		}
		infos = append(infos, info)
	}
	return infos
}

func parseContractPath(r *http.Request) (concordium.ContractAddress, error) {
	index, err := strconv.ParseUint(r.PathValue("index"), 10, 64)
	if err != nil {
		return concordium.ContractAddress{}, fmt.Errorf("invalid contract index")
	}
	subindex, err := strconv.ParseUint(r.PathValue("subindex"), 10, 64)
	if err != nil {
		return concordium.ContractAddress{}, fmt.Errorf("invalid contract subindex")
	}
	return concordium.ContractAddress{Index: index, Subindex: subindex}, nil
}

// parseQuery parses HTTP query parameters into a processor.Query.
func parseQuery(r *http.Request) (processor.Query, error) {
	q := processor.Query{PageSize: processor.DefaultPageSize}

	if pageStr := r.URL.Query().Get("page"); pageStr != "" {
		page, err := strconv.Atoi(pageStr)
		if err != nil || page < 0 {
			return q, fmt.Errorf("invalid page: must be non-negative")
		}
		q.Page = page
	}

	q.Holder = r.URL.Query().Get("holder")
	q.TokenID = r.URL.Query().Get("token_id")

	return q, nil
}

// respondJSON sends a JSON response.
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")

	// Encode first so an encoding failure can still change the status
	encoded, err := json.Marshal(data)
	if err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(status)

	// headers are sent, nothing left to report to
	_, _ = w.Write(encoded)
}

// respondError sends an error response.
func respondError(w http.ResponseWriter, status int, message string) {
	response := ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
		Code:    status,
	}
	respondJSON(w, status, response)
}
