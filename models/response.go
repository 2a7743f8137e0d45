package models

// ScrapeResponse is the response for POST /api/scrape.
type ScrapeResponse struct {
	// Per-site failures are reported in SiteErrors; the request as a
	// whole still succeeds.
	Success bool `json:"success"`

	Keyword string `json:"keyword"`

	// CountAll is the number of items after filtering.
	CountAll int `json:"count_all"`

	SiteErrors map[string]string `json:"site_errors"`
	Items      []RawItem         `json:"items"`
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
}

// AlertResponse is the response for POST /api/subscribe.
type AlertResponse struct {
	Success bool  `json:"success"`
	Alert   Alert `json:"alert"`
}

// AlertsResponse is the response for GET /api/alerts.
type AlertsResponse struct {
	Success bool    `json:"success"`
	Alerts  []Alert `json:"alerts"`
}

// DeleteAlertResponse is the response for POST /api/alerts/delete.
type DeleteAlertResponse struct {
	Success bool `json:"success"`
	Deleted int  `json:"deleted"`
}

// HealthResponse is the response for GET /api/health.
type HealthResponse struct {
	Status         string   `json:"status"` // "healthy" or "degraded"
	Uptime         string   `json:"uptime"`
	Version        string   `json:"version"`
	Sites          []string `json:"sites"`
	ActiveSessions int      `json:"active_sessions"`
}
