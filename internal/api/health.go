package api

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/MJE43/pf-verify-go/internal/buildinfo"
	"github.com/MJE43/pf-verify-go/internal/engine"
	"github.com/MJE43/pf-verify-go/internal/games"
)

// HealthStatus represents the overall health status
type HealthStatus string

const (
	HealthStatusHealthy   HealthStatus = "healthy"
	HealthStatusDegraded  HealthStatus = "degraded"
	HealthStatusUnhealthy HealthStatus = "unhealthy"
)

// HealthCheckResponse represents a comprehensive health check response
type HealthCheckResponse struct {
	Status        HealthStatus           `json:"status"`
	Timestamp     string                 `json:"timestamp"`
	EngineVersion string                 `json:"engine_version"`
	GitCommit     string                 `json:"git_commit,omitempty"`
	BuildTime     string                 `json:"build_time,omitempty"`
	Uptime        string                 `json:"uptime"`
	Checks        map[string]HealthCheck `json:"checks"`
	System        SystemInfo             `json:"system"`
	RequestID     string                 `json:"request_id,omitempty"`
}

// HealthCheck represents an individual health check
type HealthCheck struct {
	Status      HealthStatus `json:"status"`
	Message     string       `json:"message,omitempty"`
	LastChecked string       `json:"last_checked"`
}

// SystemInfo contains system information
type SystemInfo struct {
	GoVersion     string `json:"go_version"`
	NumGoroutines int    `json:"num_goroutines"`
	NumCPU        int    `json:"num_cpu"`
	GOMAXPROCS    int    `json:"gomaxprocs"`
	MemoryAlloc   uint64 `json:"memory_alloc_bytes"`
	GCCycles      uint32 `json:"gc_cycles"`
}

// Known answer for the engine self-test: SHA-256("server").
const selfTestCommitment = "b3eacd33433b31b5252351032c9b3e7a2e7aa7738d5decdf0dd6c62680853c06"

func (s *Server) uptime() time.Duration {
	return s.clock.Since(s.startTime)
}

func (s *Server) timestamp() string {
	return s.clock.Now().UTC().Format(time.RFC3339)
}

// handleHealthCheck provides comprehensive health check endpoint
func (s *Server) handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	checks := map[string]HealthCheck{
		"games":   s.checkGamesHealth(),
		"engine":  s.checkEngineHealth(),
		"scanner": s.checkScannerHealth(),
	}

	overall := HealthStatusHealthy
	for _, c := range checks {
		switch {
		case c.Status == HealthStatusUnhealthy:
			overall = HealthStatusUnhealthy
		case c.Status == HealthStatusDegraded && overall == HealthStatusHealthy:
			overall = HealthStatusDegraded
		}
	}

	info := buildinfo.Get()
	response := HealthCheckResponse{
		Status:        overall,
		Timestamp:     s.timestamp(),
		EngineVersion: info.Version,
		GitCommit:     info.GitCommit,
		BuildTime:     info.BuildTime,
		Uptime:        s.uptime().String(),
		Checks:        checks,
		System:        getSystemInfo(),
		RequestID:     middleware.GetReqID(r.Context()),
	}

	status := http.StatusOK
	if overall == HealthStatusUnhealthy {
		status = http.StatusServiceUnavailable
	}
	s.writeJSON(w, status, response)
}

// handleReadiness provides readiness probe endpoint
func (s *Server) handleReadiness(w http.ResponseWriter, r *http.Request) {
	ready := len(games.ListGames()) > 0 && s.scanner != nil
	message := "Ready"
	status := http.StatusOK
	if !ready {
		message = "Not ready"
		status = http.StatusServiceUnavailable
	}

	s.writeJSON(w, status, map[string]any{
		"ready":          ready,
		"message":        message,
		"timestamp":      s.timestamp(),
		"engine_version": buildinfo.Version,
		"request_id":     middleware.GetReqID(r.Context()),
	})
}

// handleLiveness provides liveness probe endpoint
func (s *Server) handleLiveness(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"alive":          true,
		"timestamp":      s.timestamp(),
		"engine_version": buildinfo.Version,
		"uptime":         s.uptime().String(),
		"request_id":     middleware.GetReqID(r.Context()),
	})
}

// checkGamesHealth checks if games are properly loaded
func (s *Server) checkGamesHealth() HealthCheck {
	n := len(games.ListGames())
	check := HealthCheck{
		Status:      HealthStatusHealthy,
		Message:     fmt.Sprintf("%d games available", n),
		LastChecked: s.timestamp(),
	}
	if n == 0 {
		check.Status = HealthStatusUnhealthy
		check.Message = "No games available"
	}
	return check
}

// checkEngineHealth recomputes a known commitment.
func (s *Server) checkEngineHealth() HealthCheck {
	check := HealthCheck{
		Status:      HealthStatusHealthy,
		Message:     "Known-answer test passed",
		LastChecked: s.timestamp(),
	}
	if got := engine.CommitmentHash("server"); got != selfTestCommitment {
		check.Status = HealthStatusUnhealthy
		check.Message = "Known-answer test failed"
	}
	return check
}

// checkScannerHealth checks scanner functionality
func (s *Server) checkScannerHealth() HealthCheck {
	check := HealthCheck{
		Status:      HealthStatusHealthy,
		Message:     fmt.Sprintf("Scanner healthy (max range %d)", s.scanner.MaxRange()),
		LastChecked: s.timestamp(),
	}
	return check
}

// getSystemInfo collects system information
func getSystemInfo() SystemInfo {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	return SystemInfo{
		GoVersion:     runtime.Version(),
		NumGoroutines: runtime.NumGoroutine(),
		NumCPU:        runtime.NumCPU(),
		GOMAXPROCS:    runtime.GOMAXPROCS(0),
		MemoryAlloc:   m.Alloc,
		GCCycles:      m.NumGC,
	}
}
