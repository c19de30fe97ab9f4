package processor_test

import (
	"database/sql"
	"testing"

	"github.com/goran-ethernal/RWAListener/internal/logger"
	"github.com/goran-ethernal/RWAListener/pkg/config"
	"github.com/goran-ethernal/RWAListener/pkg/processor"
	"github.com/goran-ethernal/RWAListener/pkg/processor/mocks"
	"github.com/stretchr/testify/require"
)

func TestRegistry(t *testing.T) {
	// modifies the global registry: no t.Parallel()

	var created []string
	processor.Register("Test-Registry", func(cfg config.ProcessorConfig, _ *sql.DB, _ *logger.Logger) (processor.Processor, error) {
		created = append(created, cfg.Name)
		p := mocks.NewProcessor(t)
		p.On("Name").Return(cfg.Name).Maybe()
		return p, nil
	})

	require.NotNil(t, processor.GetFactory("test-registry"))
	require.NotNil(t, processor.GetFactory("TEST-REGISTRY"))
	require.Nil(t, processor.GetFactory("does-not-exist"))
	require.Contains(t, processor.ListRegistered(), "test-registry")

	p, err := processor.Create(config.ProcessorConfig{Type: "test-registry", Name: "first"}, nil, logger.NewNopLogger())
	require.NoError(t, err)
	require.Equal(t, "first", p.Name())
	require.Equal(t, []string{"first"}, created)

	_, err = processor.Create(config.ProcessorConfig{Type: "unknown"}, nil, logger.NewNopLogger())
	require.ErrorContains(t, err, "unknown processor type")
}

func TestPaging(t *testing.T) {
	tests := []struct {
		total, size, want int
	}{
		{total: 0, size: 20, want: 0},
		{total: 1, size: 20, want: 1},
		{total: 20, size: 20, want: 1},
		{total: 21, size: 20, want: 2},
		{total: 5, size: 0, want: 0},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, processor.PageCount(tt.total, tt.size), "total=%d size=%d", tt.total, tt.size)
	}

	q := processor.Query{Page: 2}
	require.Equal(t, processor.DefaultPageSize, q.Limit())
	require.Equal(t, 40, q.Offset())
}
