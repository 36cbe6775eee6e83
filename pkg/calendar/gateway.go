// Package calendar exposes the agenda webhooks as a typed gateway:
// fetch, create, edit and delete of calendar events.
package calendar

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/alecripto2008/petshopdash-skool-63-sub000/pkg/events"
	"github.com/alecripto2008/petshopdash-skool-63-sub000/pkg/eventbus"
	"github.com/alecripto2008/petshopdash-skool-63-sub000/pkg/models"
	"github.com/alecripto2008/petshopdash-skool-63-sub000/pkg/registry"
	"github.com/alecripto2008/petshopdash-skool-63-sub000/pkg/webhook"
)

var (
	ErrSummaryRequired = errors.New("event summary is required")
	ErrEventIDRequired = errors.New("event id is required")
	ErrInvalidDate     = errors.New("invalid event date")
	ErrInvalidTime     = errors.New("invalid event time")
)

// The remote automation expects timestamps in America/Sao_Paulo's fixed
// offset regardless of where the gateway runs.
var agendaZone = time.FixedZone("-03:00", -3*60*60)

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"
)

// EventInput carries the form fields for creating or editing an event.
// Date is YYYY-MM-DD; StartTime and EndTime are HH:MM.
type EventInput struct {
	ID          string
	Summary     string
	Description string
	Date        string
	StartTime   string
	EndTime     string
	Email       string
}

// Gateway issues agenda webhook calls. Every operation invalidates the
// registry cache first so mutations always see freshly configured URLs;
// reads do the same defensively.
type Gateway struct {
	logger   *slog.Logger
	client   *webhook.Client
	registry *registry.Registry
	eventBus eventbus.EventBus
}

// NewGateway creates a calendar gateway. The event bus may be nil.
func NewGateway(logger *slog.Logger, client *webhook.Client, reg *registry.Registry, eventBus eventbus.EventBus) *Gateway {
	return &Gateway{
		logger:   logger.With("module", "calendar_gateway"),
		client:   client,
		registry: reg,
		eventBus: eventBus,
	}
}

// FetchEvents loads events, optionally bounded to one day. With a date the
// call is a GET with start-of-day and end-of-day query bounds; without one
// it is a POST with an empty body.
func (g *Gateway) FetchEvents(ctx context.Context, date *time.Time) ([]models.CalendarEvent, error) {
	g.registry.Invalidate()

	var eventList []models.CalendarEvent

	if date != nil {
		dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, agendaZone)
		dayEnd := time.Date(date.Year(), date.Month(), date.Day(), 23, 59, 59, 0, agendaZone)

		query := url.Values{}
		query.Set("start", dayStart.Format(time.RFC3339))
		query.Set("end", dayEnd.Format(time.RFC3339))

		err := g.client.GetJSON(ctx, models.WebhookFetchAgenda, query, &eventList)
		if err != nil {
			return nil, err
		}

		return eventList, nil
	}

	err := g.client.PostJSON(ctx, models.WebhookFetchAgenda, struct{}{}, &eventList)
	if err != nil {
		return nil, err
	}

	return eventList, nil
}

// CreateEvent assembles the event payload from form fields and posts it to
// the create webhook.
func (g *Gateway) CreateEvent(ctx context.Context, input EventInput) error {
	event, err := g.buildEvent(input)
	if err != nil {
		return err
	}

	g.registry.Invalidate()

	err = g.client.PostJSON(ctx, models.WebhookCreateEvent, event, nil)
	if err != nil {
		return err
	}

	g.publish(events.CalendarEventCreated{
		BaseEvent: g.baseEvent(events.CalendarEventCreatedEvent),
		Summary:   event.Summary,
		Start:     event.Start,
		End:       event.End,
	}, event.Summary)

	return nil
}

// EditEvent posts the updated event to the edit webhook.
func (g *Gateway) EditEvent(ctx context.Context, input EventInput) error {
	if input.ID == "" {
		return ErrEventIDRequired
	}

	event, err := g.buildEvent(input)
	if err != nil {
		return err
	}

	g.registry.Invalidate()

	err = g.client.PostJSON(ctx, models.WebhookUpdateEvent, event, nil)
	if err != nil {
		return err
	}

	g.publish(events.CalendarEventUpdated{
		BaseEvent: g.baseEvent(events.CalendarEventUpdatedEvent),
		EventID:   event.ID,
		Summary:   event.Summary,
	}, event.ID)

	return nil
}

// DeleteEvent posts the event id to the delete webhook.
func (g *Gateway) DeleteEvent(ctx context.Context, eventID string) error {
	if eventID == "" {
		return ErrEventIDRequired
	}

	g.registry.Invalidate()

	payload := struct {
		ID string `json:"id"`
	}{ID: eventID}

	err := g.client.PostJSON(ctx, models.WebhookDeleteEvent, payload, nil)
	if err != nil {
		return err
	}

	g.publish(events.CalendarEventDeleted{
		BaseEvent: g.baseEvent(events.CalendarEventDeletedEvent),
		EventID:   eventID,
	}, eventID)

	return nil
}

func (g *Gateway) buildEvent(input EventInput) (*models.CalendarEvent, error) {
	if input.Summary == "" {
		return nil, ErrSummaryRequired
	}

	start, err := combineDateTime(input.Date, input.StartTime)
	if err != nil {
		return nil, err
	}

	end, err := combineDateTime(input.Date, input.EndTime)
	if err != nil {
		return nil, err
	}

	return &models.CalendarEvent{
		ID:          input.ID,
		Summary:     input.Summary,
		Description: input.Description,
		Start:       start,
		End:         end,
		Email:       input.Email,
	}, nil
}

// combineDateTime joins a YYYY-MM-DD date and HH:MM time into an RFC3339
// timestamp carrying the fixed -03:00 offset.
func combineDateTime(date, clock string) (string, error) {
	day, err := time.Parse(dateLayout, date)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidDate, date)
	}

	hm, err := time.Parse(timeLayout, clock)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidTime, clock)
	}

	combined := time.Date(day.Year(), day.Month(), day.Day(), hm.Hour(), hm.Minute(), 0, 0, agendaZone)

	return combined.Format(time.RFC3339), nil
}

func (g *Gateway) baseEvent(eventType events.EventType) events.BaseEvent {
	id := ""
	if g.eventBus != nil {
		id = g.eventBus.GenerateID()
	}

	return events.BaseEvent{
		ID:        id,
		Type:      eventType,
		Timestamp: time.Now().UTC(),
	}
}

func (g *Gateway) publish(event eventbus.Event, key string) {
	if g.eventBus == nil {
		return
	}

	err := g.eventBus.Publish(context.Background(), key, event)
	if err != nil {
		g.logger.Warn("Failed to publish event", "type", event.GetType(), "error", err)
	}
}
