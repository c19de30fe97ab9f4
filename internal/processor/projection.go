package processor

import (
	"context"
	"fmt"
	"reflect"
	"slices"
	"strings"

	"github.com/goran-ethernal/RWAListener/pkg/concordium"
	"github.com/goran-ethernal/RWAListener/pkg/processor"
	"github.com/russross/meddler"
)

// Projection describes a queryable table of a processor.
type Projection struct {
	Name    string       // Projection name used in the API path (e.g., "holders")
	Table   string       // Database table name (e.g., "cis2_token_holders")
	RowType reflect.Type // Struct type the rows are scanned into

	// HolderColumns are matched against the holder filter
	HolderColumns []string
	// TokenColumn is matched against the token_id filter
	TokenColumn string
	// OrderBy defaults to the primary key
	OrderBy string
}

// ProjectionProvider defines the interface for processors to describe their projections.
type ProjectionProvider interface {
	InitProjections() map[string]*Projection
}

// ProjectionNames returns the sorted names of the provider's projections.
func (b *BaseProcessor) ProjectionNames(provider ProjectionProvider) []string {
	projections := provider.InitProjections()
	names := make([]string, 0, len(projections))
	for name := range projections {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func (b *BaseProcessor) getProjection(provider ProjectionProvider, name string) (*Projection, error) {
	projections := provider.InitProjections()
	p, ok := projections[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %s (valid projections: %s)",
			processor.ErrUnknownProjection, name, strings.Join(b.ProjectionNames(provider), ", "))
	}
	return p, nil
}

// QueryProjection returns one page of the rows a contract has in the named projection.
func (b *BaseProcessor) QueryProjection(
	ctx context.Context,
	provider ProjectionProvider,
	contract concordium.ContractAddress,
	name string,
	q processor.Query,
) (*processor.Page, error) {
	meta, err := b.getProjection(provider, name)
	if err != nil {
		return nil, err
	}

	//nolint:gosec // Table name comes from trusted metadata, not user input
	query := "SELECT * FROM " + meta.Table + " WHERE contract = ?"
	args := []interface{}{contract.String()}

	if q.Holder != "" && len(meta.HolderColumns) > 0 {
		holder, err := concordium.ParseAddress(q.Holder)
		if err != nil {
			return nil, fmt.Errorf("%w: holder: %w", processor.ErrInvalidQuery, err)
		}

		holderConditions := make([]string, len(meta.HolderColumns))
		for i, col := range meta.HolderColumns {
			holderConditions[i] = col + " = ?"
			args = append(args, holder.String())
		}
		query += " AND (" + strings.Join(holderConditions, " OR ") + ")"
	}

	if q.TokenID != "" && meta.TokenColumn != "" {
		tokenID, err := concordium.ParseTokenID(q.TokenID)
		if err != nil {
			return nil, fmt.Errorf("%w: token_id: %w", processor.ErrInvalidQuery, err)
		}
		query += " AND " + meta.TokenColumn + " = ?"
		args = append(args, tokenID.String())
	}

	countQuery := strings.Replace(query, "SELECT *", "SELECT COUNT(*)", 1)
	var total int
	if err := b.DB.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to get total count: %w", err)
	}

	orderBy := meta.OrderBy
	if orderBy == "" {
		orderBy = "id"
	}
	query += fmt.Sprintf(" ORDER BY %s LIMIT ? OFFSET ?", orderBy)
	args = append(args, q.Limit(), q.Offset())

	rows, err := b.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", meta.Name, err)
	}
	defer rows.Close()

	sliceType := reflect.SliceOf(reflect.PointerTo(meta.RowType))
	slicePtr := reflect.New(sliceType)
	slicePtr.Elem().Set(reflect.MakeSlice(sliceType, 0, q.Limit()))

	if err := meddler.ScanAll(rows, slicePtr.Interface()); err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", meta.Name, err)
	}

	return &processor.Page{
		Data:      slicePtr.Elem().Interface(),
		Page:      q.Page,
		PageCount: processor.PageCount(total, q.Limit()),
	}, nil
}
