package middleware

import (
	"net/http"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/labstack/echo/v4"
)

// Metrics keeps request counters for one server instance.
type Metrics struct {
	start        time.Time
	total        atomic.Int64
	active       atomic.Int64
	errors       atomic.Int64
	latencyMs    atomic.Int64
	maxLatencyMs atomic.Int64

	mu        sync.Mutex
	endpoints map[string]*endpointStats
	statuses  map[int]int64
}

type endpointStats struct {
	count     int64
	latencyMs int64
}

type EndpointSnapshot struct {
	Route        string  `json:"route"`
	Count        int64   `json:"count"`
	AvgLatencyMs float64 `json:"avg_latency_ms"`
}

type MetricsSnapshot struct {
	TotalRequests  int64              `json:"total_requests"`
	ActiveRequests int64              `json:"active_requests"`
	TotalErrors    int64              `json:"total_errors"`
	ErrorRatePct   float64            `json:"error_rate_pct"`
	AvgLatencyMs   float64            `json:"avg_latency_ms"`
	MaxLatencyMs   int64              `json:"max_latency_ms"`
	UptimeSeconds  float64            `json:"uptime_seconds"`
	Endpoints      []EndpointSnapshot `json:"endpoints"`
	StatusCodes    map[int]int64      `json:"status_codes"`
}

func NewMetrics() *Metrics {
	return &Metrics{
		start:     time.Now(),
		endpoints: make(map[string]*endpointStats),
		statuses:  make(map[int]int64),
	}
}

// Middleware counts every request by route template and final status.
func (m *Metrics) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			m.active.Add(1)
			start := time.Now()

			err := next(c)
			if err != nil {
				// commit the response so the status below is the one sent
				c.Error(err)
			}

			elapsed := time.Since(start).Milliseconds()
			m.active.Add(-1)
			m.total.Add(1)
			m.latencyMs.Add(elapsed)
			for {
				current := m.maxLatencyMs.Load()
				if elapsed <= current || m.maxLatencyMs.CompareAndSwap(current, elapsed) {
					break
				}
			}

			status := c.Response().Status
			if status >= http.StatusBadRequest {
				m.errors.Add(1)
			}

			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			route = c.Request().Method + " " + route

			m.mu.Lock()
			stats, ok := m.endpoints[route]
			if !ok {
				stats = &endpointStats{}
				m.endpoints[route] = stats
			}
			stats.count++
			stats.latencyMs += elapsed
			m.statuses[status]++
			m.mu.Unlock()

			return err
		}
	}
}

func (m *Metrics) Snapshot() MetricsSnapshot {
	total := m.total.Load()
	errs := m.errors.Load()

	snap := MetricsSnapshot{
		TotalRequests:  total,
		ActiveRequests: m.active.Load(),
		TotalErrors:    errs,
		MaxLatencyMs:   m.maxLatencyMs.Load(),
		UptimeSeconds:  time.Since(m.start).Seconds(),
		StatusCodes:    make(map[int]int64),
	}
	if total > 0 {
		snap.AvgLatencyMs = float64(m.latencyMs.Load()) / float64(total)
		snap.ErrorRatePct = float64(errs) / float64(total) * 100
	}

	m.mu.Lock()
	for route, s := range m.endpoints {
		snap.Endpoints = append(snap.Endpoints, EndpointSnapshot{
			Route:        route,
			Count:        s.count,
			AvgLatencyMs: float64(s.latencyMs) / float64(s.count),
		})
	}
	for code, n := range m.statuses {
		snap.StatusCodes[code] = n
	}
	m.mu.Unlock()

	sort.Slice(snap.Endpoints, func(i, j int) bool { return snap.Endpoints[i].Route < snap.Endpoints[j].Route })
	return snap
}

func (m *Metrics) Handler(c echo.Context) error {
	return c.JSON(http.StatusOK, m.Snapshot())
}
