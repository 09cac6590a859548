// Package api implements the HTTP REST API and Prometheus metrics endpoint.
package api

// Response is the standard JSON response envelope.
type Response struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// StatusResponse holds daemon status information.
type StatusResponse struct {
	Uptime         string `json:"uptime"`
	ConfigFile     string `json:"config_file"`
	ConfigLoaded   bool   `json:"config_loaded"`
	LoadedAt       string `json:"loaded_at,omitempty"`
	Generation     uint64 `json:"generation"`
	Nodes          int    `json:"nodes"`
	Pools          int    `json:"pools"`
	VirtualServers int    `json:"virtual_servers"`
	Rules          int    `json:"rules"`
	SSLProfiles    int    `json:"ssl_profiles"`
	Monitors       int    `json:"monitors"`
}

// ReloadResponse reports the outcome of a configuration reload.
type ReloadResponse struct {
	Generation uint64 `json:"generation"`
	LoadedAt   string `json:"loaded_at"`
}
