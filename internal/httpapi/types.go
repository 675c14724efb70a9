// Package httpapi exposes the portfolio as a REST API: raw CRUD for the
// editor views, pre-formatted table endpoints, and the category,
// distribution, and performance chart endpoints for the dashboard.
package httpapi

// StatusResponse acknowledges a mutation with no body to return.
type StatusResponse struct {
	Status string `json:"status"`
}

var statusOK = StatusResponse{Status: "ok"}
