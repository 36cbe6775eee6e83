package web

// SaveWebhookRequest creates or updates one webhook endpoint configuration
// row.
type SaveWebhookRequest struct {
	Name        string `json:"name"        validate:"required"`
	URL         string `json:"url"         validate:"required,url"`
	Description string `json:"description"`
	Identifier  string `json:"identifier"  validate:"required"`
}

// UpdateWebhookRequest patches an existing endpoint. The identifier comes
// from the path.
type UpdateWebhookRequest struct {
	Name        string `json:"name"`
	URL         string `json:"url"         validate:"omitempty,url"`
	Description string `json:"description"`
}

// CreateInstanceRequest starts a pairing attempt.
type CreateInstanceRequest struct {
	InstanceName string `json:"instanceName" validate:"required"`
}

// CalendarEventRequest carries the agenda form fields. Date is YYYY-MM-DD,
// StartTime and EndTime are HH:MM.
type CalendarEventRequest struct {
	ID          string `json:"id"`
	Summary     string `json:"summary"     validate:"required"`
	Description string `json:"description"`
	Date        string `json:"date"        validate:"required"`
	StartTime   string `json:"start_time"  validate:"required"`
	EndTime     string `json:"end_time"    validate:"required"`
	Email       string `json:"email"       validate:"omitempty,email"`
}
