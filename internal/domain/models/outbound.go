package models

// OutboundMessageRequest represents requests to push a message manually via
// the HTTP API (also used by the scheduler for the nightly rekap).
type OutboundMessageRequest struct {
	To      string `json:"to" binding:"required"`
	Message string `json:"message" binding:"required"`
}
