package mcpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Tool call outcomes recorded in metrics
const (
	outcomeOK        = "ok"
	outcomeToolError = "tool_error"
	outcomeError     = "error"
)

// Metrics holds the Prometheus collectors for tool calls.
type Metrics struct {
	registry *prometheus.Registry

	toolCallsTotal      *prometheus.CounterVec
	toolDurationSeconds *prometheus.HistogramVec
}

// NewMetrics creates metrics on a private registry.
func NewMetrics() (*Metrics, error) {
	// Create custom registry (don't pollute default)
	m := &Metrics{registry: prometheus.NewRegistry()}

	m.toolCallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "prowlerhub_tool_calls_total",
			Help: "Total number of MCP tool calls",
		},
		[]string{"tool", "outcome"},
	)

	m.toolDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "prowlerhub_tool_duration_seconds",
			Help:    "MCP tool call duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5},
		},
		[]string{"tool"},
	)

	for _, c := range []prometheus.Collector{m.toolCallsTotal, m.toolDurationSeconds} {
		if err := m.registry.Register(c); err != nil {
			return nil, err
		}
	}

	return m, nil
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// instrument wraps a tool handler with call counting and timing.
func (m *Metrics) instrument(name string, next toolHandler) toolHandler {
	return func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		start := time.Now()
		result, err := next(ctx, req)

		outcome := outcomeOK
		switch {
		case err != nil:
			outcome = outcomeError
		case result != nil && result.IsError:
			outcome = outcomeToolError
		}

		m.toolCallsTotal.WithLabelValues(name, outcome).Inc()
		m.toolDurationSeconds.WithLabelValues(name).Observe(time.Since(start).Seconds())
		return result, err
	}
}
