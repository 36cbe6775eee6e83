// Package web provides the HTTP handlers for webhook configuration,
// instance pairing and calendar endpoints.
package web

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"

	"github.com/alecripto2008/petshopdash-skool-63-sub000/pkg/calendar"
	"github.com/alecripto2008/petshopdash-skool-63-sub000/pkg/events"
	"github.com/alecripto2008/petshopdash-skool-63-sub000/pkg/eventbus"
	"github.com/alecripto2008/petshopdash-skool-63-sub000/pkg/evolution"
	"github.com/alecripto2008/petshopdash-skool-63-sub000/pkg/models"
	"github.com/alecripto2008/petshopdash-skool-63-sub000/pkg/persistence"
	"github.com/alecripto2008/petshopdash-skool-63-sub000/pkg/registry"
)

type APIHandlers struct {
	webhookRepo persistence.WebhookRepository
	registry    *registry.Registry
	flow        *evolution.ProvisioningFlow
	calendar    *calendar.Gateway
	eventBus    eventbus.EventBus
	validator   *validator.Validate
}

func NewAPIHandlers(
	webhookRepo persistence.WebhookRepository,
	reg *registry.Registry,
	flow *evolution.ProvisioningFlow,
	calendarGateway *calendar.Gateway,
	eventBus eventbus.EventBus,
	validate *validator.Validate,
) *APIHandlers {
	return &APIHandlers{
		webhookRepo: webhookRepo,
		registry:    reg,
		flow:        flow,
		calendar:    calendarGateway,
		eventBus:    eventBus,
		validator:   validate,
	}
}

// Webhook configuration endpoints

func (h *APIHandlers) GetWebhooks(c fiber.Ctx) error {
	endpoints, err := h.webhookRepo.All(c.Context())
	if err != nil {
		return internalError(c, err)
	}

	return c.JSON(fiber.Map{"webhooks": endpoints})
}

func (h *APIHandlers) SaveWebhook(c fiber.Ctx) error {
	var req SaveWebhookRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	endpoint := &models.WebhookEndpoint{
		Name:        req.Name,
		URL:         req.URL,
		Description: req.Description,
		Identifier:  req.Identifier,
	}

	if err := h.webhookRepo.Save(c.Context(), endpoint); err != nil {
		return handleDispatchError(c, err)
	}

	h.registry.Invalidate()
	h.publishConfigChanged(c, endpoint.Identifier, endpoint.URL, false)

	return c.Status(fiber.StatusCreated).JSON(endpoint)
}

func (h *APIHandlers) UpdateWebhook(c fiber.Ctx) error {
	identifier := c.Params("identifier")
	if identifier == "" {
		return badRequest(c, "Webhook identifier is required")
	}

	var req UpdateWebhookRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	endpoint, err := h.webhookRepo.GetByIdentifier(c.Context(), identifier)
	if err != nil {
		return handleDispatchError(c, err)
	}

	if req.Name != "" {
		endpoint.Name = req.Name
	}

	if req.URL != "" {
		endpoint.URL = req.URL
	}

	if req.Description != "" {
		endpoint.Description = req.Description
	}

	if err := h.webhookRepo.Save(c.Context(), endpoint); err != nil {
		return handleDispatchError(c, err)
	}

	h.registry.Invalidate()
	h.publishConfigChanged(c, endpoint.Identifier, endpoint.URL, false)

	return c.JSON(endpoint)
}

func (h *APIHandlers) DeleteWebhook(c fiber.Ctx) error {
	identifier := c.Params("identifier")
	if identifier == "" {
		return badRequest(c, "Webhook identifier is required")
	}

	if err := h.webhookRepo.Delete(c.Context(), identifier); err != nil {
		return handleDispatchError(c, err)
	}

	h.registry.Invalidate()
	h.publishConfigChanged(c, identifier, "", true)

	return c.SendStatus(fiber.StatusNoContent)
}

// ImportWebhooks bulk-loads endpoint rows. The document is validated
// against a JSON schema before anything is written, so a malformed import
// never applies partially.
func (h *APIHandlers) ImportWebhooks(c fiber.Ctx) error {
	var document map[string]any
	if err := json.Unmarshal(c.Body(), &document); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := validateImportDocument(document); err != nil {
		return badRequest(c, err.Error())
	}

	var payload struct {
		Webhooks []SaveWebhookRequest `json:"webhooks"`
	}

	if err := json.Unmarshal(c.Body(), &payload); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	imported := make([]*models.WebhookEndpoint, 0, len(payload.Webhooks))

	for _, row := range payload.Webhooks {
		endpoint := &models.WebhookEndpoint{
			Name:        row.Name,
			URL:         row.URL,
			Description: row.Description,
			Identifier:  row.Identifier,
		}

		if err := h.webhookRepo.Save(c.Context(), endpoint); err != nil {
			return handleDispatchError(c, err)
		}

		imported = append(imported, endpoint)
	}

	h.registry.Invalidate()

	for _, endpoint := range imported {
		h.publishConfigChanged(c, endpoint.Identifier, endpoint.URL, false)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"imported": len(imported)})
}

// Instance pairing endpoints

func (h *APIHandlers) CreateInstance(c fiber.Ctx) error {
	var req CreateInstanceRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	artifact, err := h.flow.CreateInstance(c.Context(), req.InstanceName)
	if err != nil {
		return handleDispatchError(c, err)
	}

	return sendQR(c, artifact)
}

func (h *APIHandlers) GetInstanceState(c fiber.Ctx) error {
	return c.JSON(h.flow.State())
}

func (h *APIHandlers) RetryInstance(c fiber.Ctx) error {
	artifact, err := h.flow.TryAgain(c.Context())
	if err != nil {
		return handleDispatchError(c, err)
	}

	return sendQR(c, artifact)
}

func (h *APIHandlers) ResetInstance(c fiber.Ctx) error {
	h.flow.Reset()

	return c.JSON(h.flow.State())
}

func (h *APIHandlers) RefreshInstanceQR(c fiber.Ctx) error {
	var req CreateInstanceRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	artifact, err := h.flow.RefreshQR(c.Context(), req.InstanceName)
	if err != nil {
		return handleDispatchError(c, err)
	}

	return sendQR(c, artifact)
}

func sendQR(c fiber.Ctx, artifact *evolution.QRArtifact) error {
	mimeType := artifact.MimeType
	if mimeType == "" {
		mimeType = "image/png"
	}

	c.Set(fiber.HeaderContentType, mimeType)

	return c.Send(artifact.Image)
}

// Calendar endpoints

func (h *APIHandlers) GetCalendarEvents(c fiber.Ctx) error {
	var date *time.Time

	if dateStr := c.Query("date"); dateStr != "" {
		parsed, err := time.Parse("2006-01-02", dateStr)
		if err != nil {
			return badRequest(c, "Invalid date, expected YYYY-MM-DD")
		}

		date = &parsed
	}

	eventList, err := h.calendar.FetchEvents(c.Context(), date)
	if err != nil {
		return handleDispatchError(c, err)
	}

	return c.JSON(fiber.Map{"events": eventList})
}

func (h *APIHandlers) CreateCalendarEvent(c fiber.Ctx) error {
	input, err := h.parseEventRequest(c, "")
	if err != nil {
		return badRequest(c, err.Error())
	}

	if err := h.calendar.CreateEvent(c.Context(), *input); err != nil {
		return handleDispatchError(c, err)
	}

	return c.SendStatus(fiber.StatusCreated)
}

func (h *APIHandlers) UpdateCalendarEvent(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Event ID is required")
	}

	input, err := h.parseEventRequest(c, id)
	if err != nil {
		return badRequest(c, err.Error())
	}

	if err := h.calendar.EditEvent(c.Context(), *input); err != nil {
		return handleDispatchError(c, err)
	}

	return c.SendStatus(fiber.StatusOK)
}

func (h *APIHandlers) DeleteCalendarEvent(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Event ID is required")
	}

	if err := h.calendar.DeleteEvent(c.Context(), id); err != nil {
		return handleDispatchError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *APIHandlers) parseEventRequest(c fiber.Ctx, id string) (*calendar.EventInput, error) {
	var req CalendarEventRequest
	if err := c.Bind().JSON(&req); err != nil {
		return nil, errors.New("invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return nil, err
	}

	if id != "" {
		req.ID = id
	}

	return &calendar.EventInput{
		ID:          req.ID,
		Summary:     req.Summary,
		Description: req.Description,
		Date:        req.Date,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		Email:       req.Email,
	}, nil
}

// HealthCheck reports the storage backend health.
func (h *APIHandlers) HealthCheck(c fiber.Ctx) error {
	if _, err := h.webhookRepo.All(c.Context()); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"status": "unhealthy",
			"error":  err.Error(),
		})
	}

	return c.JSON(fiber.Map{"status": "healthy"})
}

func (h *APIHandlers) publishConfigChanged(c fiber.Ctx, identifier, url string, deleted bool) {
	if h.eventBus == nil {
		return
	}

	event := events.WebhookConfigChanged{
		BaseEvent: events.BaseEvent{
			ID:        h.eventBus.GenerateID(),
			Type:      events.WebhookConfigChangedEvent,
			Timestamp: time.Now().UTC(),
		},
		Identifier: identifier,
		URL:        url,
		Deleted:    deleted,
	}

	// Config change notifications are best-effort; the mutation has already
	// been applied.
	_ = h.eventBus.Publish(c.Context(), identifier, event)
}
