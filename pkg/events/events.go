// Package events defines the lifecycle notifications published by the
// gateway.
package events

import "time"

type EventType string

const Topic = "petshopdash.events"

const EventMetadataKey = "key"
const EventTypeMetadataKey = "event_type"

const (
	// Instance pairing lifecycle events.
	InstanceCreatedEvent       EventType = "instance.created"
	InstanceConnectedEvent     EventType = "instance.connected"
	InstancePairingFailedEvent EventType = "instance.pairing_failed"
	InstanceQRRefreshedEvent   EventType = "instance.qr_refreshed"

	// Configuration events.
	WebhookConfigChangedEvent EventType = "webhook.config.changed"

	// Calendar events.
	CalendarEventCreatedEvent EventType = "calendar.event.created"
	CalendarEventUpdatedEvent EventType = "calendar.event.updated"
	CalendarEventDeletedEvent EventType = "calendar.event.deleted"
)

type BaseEvent struct {
	ID        string         `json:"id"`
	Type      EventType      `json:"type"`
	Timestamp time.Time      `json:"timestamp"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

type InstanceCreated struct {
	BaseEvent

	InstanceName string `json:"instance_name"`
}

func (e InstanceCreated) GetType() EventType {
	return InstanceCreatedEvent
}

type InstanceConnected struct {
	BaseEvent

	InstanceName string `json:"instance_name"`
}

func (e InstanceConnected) GetType() EventType {
	return InstanceConnectedEvent
}

type InstancePairingFailed struct {
	BaseEvent

	InstanceName string `json:"instance_name"`
	Attempts     int    `json:"attempts"`
}

func (e InstancePairingFailed) GetType() EventType {
	return InstancePairingFailedEvent
}

type InstanceQRRefreshed struct {
	BaseEvent

	InstanceName string `json:"instance_name"`
}

func (e InstanceQRRefreshed) GetType() EventType {
	return InstanceQRRefreshedEvent
}

type WebhookConfigChanged struct {
	BaseEvent

	Identifier string `json:"identifier"`
	URL        string `json:"url,omitempty"`
	Deleted    bool   `json:"deleted,omitempty"`
}

func (e WebhookConfigChanged) GetType() EventType {
	return WebhookConfigChangedEvent
}

type CalendarEventCreated struct {
	BaseEvent

	Summary string `json:"summary"`
	Start   string `json:"start"`
	End     string `json:"end"`
}

func (e CalendarEventCreated) GetType() EventType {
	return CalendarEventCreatedEvent
}

type CalendarEventUpdated struct {
	BaseEvent

	EventID string `json:"event_id"`
	Summary string `json:"summary"`
}

func (e CalendarEventUpdated) GetType() EventType {
	return CalendarEventUpdatedEvent
}

type CalendarEventDeleted struct {
	BaseEvent

	EventID string `json:"event_id"`
}

func (e CalendarEventDeleted) GetType() EventType {
	return CalendarEventDeletedEvent
}
