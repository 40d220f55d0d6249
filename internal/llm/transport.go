package llm

import (
	"net/http"
	"time"

	"github.com/martoast/gemini-plays-pokemon/internal/logger"
)

// DebugTransport wraps an HTTP transport and logs every model API round
// trip. Installed on the backend client when debug mode is on.
type DebugTransport struct {
	base http.RoundTripper
}

// NewDebugTransport creates a debug transport over http.DefaultTransport.
func NewDebugTransport() *DebugTransport {
	return &DebugTransport{base: http.DefaultTransport}
}

// RoundTrip implements http.RoundTripper.
func (t *DebugTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := t.base.RoundTrip(req)
	elapsed := time.Since(start)

	if err != nil {
		logger.Debug("Model API call failed",
			"method", req.Method,
			"url", req.URL.String(),
			"elapsed", elapsed,
			"error", err)
		return resp, err
	}

	logger.Debug("Model API call",
		"method", req.Method,
		"url", req.URL.String(),
		"status", resp.StatusCode,
		"elapsed", elapsed)
	return resp, err
}
