package rpc

import (
	"errors"
	"net/http"

	"github.com/ethereum/go-ethereum/rpc"
	"github.com/goran-ethernal/RWAListener/internal/retry"
)

// retryableError classifies node errors. HTTP status codes are checked first,
// JSON-RPC errors returned by the node are final, anything else is classified
// by the generic transient error rules.
func retryableError(err error) bool {
	if err == nil {
		return false
	}

	var httpErr rpc.HTTPError
	if errors.As(err, &httpErr) {
		return isRetryableStatus(httpErr.StatusCode)
	}

	var rpcErr rpc.Error
	if errors.As(err, &rpcErr) {
		return false
	}

	return retry.IsTransient(err)
}

func isRetryableStatus(code int) bool {
	switch code {
	case http.StatusTooManyRequests,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}

// errorType is the metrics label of a failed request.
func errorType(err error) string {
	var httpErr rpc.HTTPError
	if errors.As(err, &httpErr) {
		if httpErr.StatusCode == http.StatusTooManyRequests {
			return "rate_limited"
		}
		return "http"
	}

	var rpcErr rpc.Error
	if errors.As(err, &rpcErr) {
		return "rpc"
	}

	if retry.IsTransient(err) {
		return "network"
	}
	return "other"
}
