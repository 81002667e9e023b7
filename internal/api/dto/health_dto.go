package dto

// HealthResponse is the detailed /api/health report.
type HealthResponse struct {
	Status       string            `json:"status"`
	Timestamp    string            `json:"timestamp"`
	Application  ApplicationHealth `json:"application"`
	Database     DependencyHealth  `json:"database"`
	Cache        DependencyHealth  `json:"cache"`
	System       SystemHealth      `json:"system"`
	Requests     RequestStats      `json:"requests"`
	ResponseTime string            `json:"response_time"`
}

// ApplicationHealth identifies the running build.
type ApplicationHealth struct {
	Name          string  `json:"name"`
	Version       string  `json:"version"`
	Environment   string  `json:"environment"`
	UptimeSeconds float64 `json:"uptime_seconds"`
}

// DependencyHealth is the probe result for one backing service.
type DependencyHealth struct {
	Status  string `json:"status"`
	Backend string `json:"backend,omitempty"`
	Error   string `json:"error,omitempty"`
}

// SystemHealth describes the host process.
type SystemHealth struct {
	OS         string  `json:"os"`
	Arch       string  `json:"arch"`
	GoVersion  string  `json:"go_version"`
	Hostname   string  `json:"hostname"`
	CPUCount   int     `json:"cpu_count"`
	Goroutines int     `json:"goroutines"`
	HeapMiB    float64 `json:"heap_mib"`
}

// RequestStats summarizes request counters since start.
type RequestStats struct {
	Total                 int64            `json:"total"`
	Errors                int64            `json:"errors"`
	AverageResponseTimeMs float64          `json:"average_response_time_ms"`
	ByRoute               map[string]int64 `json:"by_route"`
}
