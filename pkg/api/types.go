package api

import "github.com/dd0wney/topoforge/pkg/compile"

// ErrorResponse is the standard error envelope
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// CompileResponse carries everything one compilation produced: the
// structured result plus the rendered text documents.
type CompileResponse struct {
	RunID   string                    `json:"runId"`
	Devices []DeviceResponse          `json:"devices"`
	Reports map[string]string         `json:"reports"`
	Report  string                    `json:"addressReport"`
	Blocks  []compile.BlockAssignment `json:"blocks"`
	Summary []compile.VLANSummary     `json:"vlanSummary"`
}

// DeviceResponse is one device's rendered configuration
type DeviceResponse struct {
	Name     string   `json:"name"`
	Role     string   `json:"role"`
	Commands []string `json:"commands"`
}

// HealthResponse reports service liveness
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Uptime  string `json:"uptime"`
}
