package api

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goran-ethernal/RWAListener/internal/common"
	"github.com/goran-ethernal/RWAListener/internal/logger"
	"github.com/goran-ethernal/RWAListener/pkg/config"
	"github.com/stretchr/testify/require"
)

func testAPIConfig(address string) *config.APIConfig {
	return &config.APIConfig{
		Enabled:       true,
		ListenAddress: address,
		ReadTimeout:   common.Duration{Duration: 5 * time.Second},
		WriteTimeout:  common.Duration{Duration: 10 * time.Second},
		IdleTimeout:   common.Duration{Duration: 60 * time.Second},
	}
}

func TestNewServer(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		address      string
		readTimeout  time.Duration
		writeTimeout time.Duration
		idleTimeout  time.Duration
	}{
		{
			name:         "default timeouts",
			address:      "localhost:8080",
			readTimeout:  15 * time.Second,
			writeTimeout: 15 * time.Second,
			idleTimeout:  60 * time.Second,
		},
		{
			name:         "custom timeouts",
			address:      "127.0.0.1:9090",
			readTimeout:  1 * time.Second,
			writeTimeout: 2 * time.Second,
			idleTimeout:  30 * time.Second,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := testAPIConfig(tt.address)
			cfg.ReadTimeout = common.NewDuration(tt.readTimeout)
			cfg.WriteTimeout = common.NewDuration(tt.writeTimeout)
			cfg.IdleTimeout = common.NewDuration(tt.idleTimeout)

			server := NewServer(cfg, nil, nil, nil, logger.NewNopLogger())

			require.NotNil(t, server.handler)
			require.NotNil(t, server.server.Handler)
			require.Equal(t, tt.address, server.server.Addr)
			require.Equal(t, tt.readTimeout, server.server.ReadTimeout)
			require.Equal(t, tt.writeTimeout, server.server.WriteTimeout)
			require.Equal(t, tt.idleTimeout, server.server.IdleTimeout)
		})
	}
}

func TestServer_Start_Disabled(t *testing.T) {
	t.Parallel()

	cfg := testAPIConfig(":8080")
	cfg.Enabled = false

	server := NewServer(cfg, nil, nil, nil, logger.NewNopLogger())

	done := make(chan error, 1)
	go func() {
		done <- server.Start(t.Context())
	}()

	// Start returns right away without waiting for the context
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Start() did not return when server is disabled")
	}
}

func TestServer_Start_GracefulShutdown(t *testing.T) {
	t.Parallel()

	server := NewServer(testAPIConfig("localhost:0"), nil, nil, nil, logger.NewNopLogger())

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- server.Start(ctx)
	}()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(shutdownCtxTimeout + 5*time.Second):
		t.Fatal("Server did not shutdown gracefully within timeout")
	}
}

func TestServer_Start_AddressInUse(t *testing.T) {
	t.Parallel()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	server := NewServer(testAPIConfig(ln.Addr().String()), nil, nil, nil, logger.NewNopLogger())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err = server.Start(ctx)
	require.Error(t, err)
	require.Contains(t, err.Error(), "API server error")
}

func TestServer_CORS(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		cors           config.CORSConfig
		expectedOrigin string
	}{
		{
			name:           "enabled for the origin",
			cors:           config.CORSConfig{Enabled: true, AllowedOrigins: []string{"http://localhost:3000"}},
			expectedOrigin: "http://localhost:3000",
		},
		{
			name:           "enabled for another origin",
			cors:           config.CORSConfig{Enabled: true, AllowedOrigins: []string{"https://example.com"}},
			expectedOrigin: "",
		},
		{
			name:           "disabled",
			cors:           config.CORSConfig{Enabled: false, AllowedOrigins: []string{"*"}},
			expectedOrigin: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := testAPIConfig(":8080")
			cfg.CORS = tt.cors

			handler := NewServer(cfg, nil, nil, nil, logger.NewNopLogger()).Routes()

			req := httptest.NewRequest(http.MethodOptions, "/api/v1/contracts", nil)
			req.Header.Set("Origin", "http://localhost:3000")
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			require.Equal(t, tt.expectedOrigin, w.Header().Get("Access-Control-Allow-Origin"))
		})
	}
}

func TestServer_SwaggerDoc(t *testing.T) {
	t.Parallel()

	handler := NewServer(testAPIConfig(":8080"), nil, nil, nil, logger.NewNopLogger()).Routes()

	req := httptest.NewRequest(http.MethodGet, "/swagger/doc.json", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "RWA Listener API")
	require.Contains(t, w.Body.String(), "/contracts/{index}/{subindex}/{projection}")
}
