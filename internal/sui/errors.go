package sui

import (
	"context"
	"errors"
	"net"
	"strings"

	"github.com/ethereum/go-ethereum/rpc"
)

// ErrNoMetadata is returned when the node has no metadata for a coin type.
var ErrNoMetadata = errors.New("coin metadata not found")

// Error classes reported by ClassifyError.
const (
	ErrClassTimeout     = "rpc_timeout"
	ErrClassUnavailable = "rpc_unavailable"
	ErrClassRateLimited = "rpc_rate_limited"
	ErrClassRPC         = "rpc_error"
)

// ClassifyError buckets a transport or node error into a short class for logs and telemetry.
func ClassifyError(err error) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrClassTimeout
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return ErrClassTimeout
	}
	if IsRateLimited(err) {
		return ErrClassRateLimited
	}
	s := strings.ToLower(err.Error())
	switch {
	case strings.Contains(s, "context deadline exceeded"), strings.Contains(s, "i/o timeout"):
		return ErrClassTimeout
	case strings.Contains(s, "connection reset"), strings.Contains(s, "broken pipe"),
		strings.Contains(s, "connection refused"), strings.Contains(s, "eof"):
		return ErrClassUnavailable
	}
	var he rpc.HTTPError
	if errors.As(err, &he) && he.StatusCode >= 500 {
		return ErrClassUnavailable
	}
	return ErrClassRPC
}

// IsRateLimited reports whether the node throttled the request.
func IsRateLimited(err error) bool {
	if err == nil {
		return false
	}
	var he rpc.HTTPError
	if errors.As(err, &he) && he.StatusCode == 429 {
		return true
	}
	var re rpc.Error
	if errors.As(err, &re) && re.ErrorCode() == -32005 {
		return true
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "too many requests") || strings.Contains(s, "rate limit") || strings.Contains(s, "-32005")
}
