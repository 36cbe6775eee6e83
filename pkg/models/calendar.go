package models

// CalendarEvent is the wire shape exchanged with the agenda webhooks.
// Start and End are RFC3339 strings carrying the fixed -03:00 offset the
// remote automation expects.
type CalendarEvent struct {
	ID          string `json:"id,omitempty"`
	Summary     string `json:"summary"`
	Description string `json:"description,omitempty"`
	Start       string `json:"start"`
	End         string `json:"end"`
	Email       string `json:"email,omitempty"`
}
