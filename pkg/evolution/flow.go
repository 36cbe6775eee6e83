package evolution

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/alecripto2008/petshopdash-skool-63-sub000/pkg/events"
	"github.com/alecripto2008/petshopdash-skool-63-sub000/pkg/eventbus"
	"github.com/alecripto2008/petshopdash-skool-63-sub000/pkg/models"
	"github.com/alecripto2008/petshopdash-skool-63-sub000/pkg/webhook"
)

var (
	ErrInstanceNameRequired = errors.New("instance name is required")
	ErrNoPreviousAttempt    = errors.New("no previous pairing attempt to retry")
)

// QRArtifact is the pairing QR code returned by the create and refresh
// webhooks. A new artifact supersedes the previous one wholesale.
type QRArtifact struct {
	InstanceName string
	Image        []byte
	MimeType     string
	FetchedAt    time.Time
}

// FlowState is a snapshot of the provisioning flow for the UI.
type FlowState struct {
	InstanceName string                  `json:"instance_name,omitempty"`
	Status       models.ConnectionStatus `json:"status"`
	RetryCount   int                     `json:"retry_count"`
	MaxRetries   int                     `json:"max_retries"`
	QRFetchedAt  *time.Time              `json:"qr_fetched_at,omitempty"`
	LastError    string                  `json:"last_error,omitempty"`
}

// ProvisioningFlow orchestrates the full pairing lifecycle: instance
// creation, QR display, status observation and terminal-state control.
//
// Creation failures reset to not_started; only retry exhaustion during
// polling yields failed. The two terminal situations carry different
// user-facing messaging and are kept distinct.
type ProvisioningFlow struct {
	logger   *slog.Logger
	client   *webhook.Client
	eventBus eventbus.EventBus
	poller   *StatusPoller

	mu           sync.Mutex
	instanceName string
	status       models.ConnectionStatus
	retryCount   int
	maxRetries   int
	qr           *QRArtifact
	lastError    string
}

// NewProvisioningFlow creates a flow with its own status poller. The event
// bus may be nil; lifecycle events are then skipped.
func NewProvisioningFlow(logger *slog.Logger, client *webhook.Client, eventBus eventbus.EventBus, pollerConfig PollerConfig) *ProvisioningFlow {
	flow := &ProvisioningFlow{
		logger:   logger.With("module", "provisioning_flow"),
		client:   client,
		eventBus: eventBus,
		status:   models.ConnectionNotStarted,
	}

	flow.poller = NewStatusPoller(logger, client, pollerConfig, flow)
	flow.maxRetries = flow.poller.maxRetries

	return flow
}

// CreateInstance creates the external instance, stores the returned QR
// artifact and starts status polling. On any failure the flow returns to
// not_started with the previous QR discarded.
func (f *ProvisioningFlow) CreateInstance(ctx context.Context, instanceName string) (*QRArtifact, error) {
	trimmed := strings.TrimSpace(instanceName)
	if trimmed == "" {
		return nil, ErrInstanceNameRequired
	}

	f.poller.Stop()

	f.mu.Lock()
	f.instanceName = trimmed
	f.status = models.ConnectionNotStarted
	f.retryCount = 0
	f.qr = nil
	f.lastError = ""
	f.mu.Unlock()

	// The response body is the QR image itself, not JSON.
	image, mimeType, err := f.client.PostBinary(ctx, models.WebhookCreateInstance, statusRequest{InstanceName: trimmed})
	if err != nil {
		f.recordError(err)
		f.logger.Warn("Failed to create instance", "instance", trimmed, "error", err)

		return nil, err
	}

	artifact := &QRArtifact{
		InstanceName: trimmed,
		Image:        image,
		MimeType:     mimeType,
		FetchedAt:    time.Now().UTC(),
	}

	f.mu.Lock()
	f.qr = artifact
	f.status = models.ConnectionWaiting
	f.mu.Unlock()

	err = f.poller.Start(trimmed)
	if err != nil {
		f.recordError(err)

		return nil, err
	}

	f.publish(events.InstanceCreated{
		BaseEvent:    f.baseEvent(events.InstanceCreatedEvent),
		InstanceName: trimmed,
	})

	return artifact, nil
}

// TryAgain repeats CreateInstance with the stored instance name. Used from
// the terminal failed state.
func (f *ProvisioningFlow) TryAgain(ctx context.Context) (*QRArtifact, error) {
	f.mu.Lock()
	instanceName := f.instanceName
	f.mu.Unlock()

	if instanceName == "" {
		return nil, ErrNoPreviousAttempt
	}

	return f.CreateInstance(ctx, instanceName)
}

// Reset discards the QR artifact and status and stops polling, returning
// the user to the name-entry state without a new creation attempt.
func (f *ProvisioningFlow) Reset() {
	f.poller.Stop()

	f.mu.Lock()
	f.status = models.ConnectionNotStarted
	f.retryCount = 0
	f.qr = nil
	f.lastError = ""
	f.mu.Unlock()
}

// RefreshQR fetches a fresh QR artifact for the instance without touching
// polling state or the retry count.
func (f *ProvisioningFlow) RefreshQR(ctx context.Context, instanceName string) (*QRArtifact, error) {
	trimmed := strings.TrimSpace(instanceName)
	if trimmed == "" {
		return nil, ErrInstanceNameRequired
	}

	image, mimeType, err := f.client.PostBinary(ctx, models.WebhookUpdateQR, statusRequest{InstanceName: trimmed})
	if err != nil {
		f.logger.Warn("Failed to refresh QR code", "instance", trimmed, "error", err)

		return nil, err
	}

	artifact := &QRArtifact{
		InstanceName: trimmed,
		Image:        image,
		MimeType:     mimeType,
		FetchedAt:    time.Now().UTC(),
	}

	f.mu.Lock()
	f.qr = artifact
	f.mu.Unlock()

	f.publish(events.InstanceQRRefreshed{
		BaseEvent:    f.baseEvent(events.InstanceQRRefreshedEvent),
		InstanceName: trimmed,
	})

	return artifact, nil
}

// State returns a snapshot for the UI.
func (f *ProvisioningFlow) State() FlowState {
	f.mu.Lock()
	defer f.mu.Unlock()

	state := FlowState{
		InstanceName: f.instanceName,
		Status:       f.status,
		RetryCount:   f.retryCount,
		MaxRetries:   f.maxRetries,
		LastError:    f.lastError,
	}

	if f.qr != nil {
		fetchedAt := f.qr.FetchedAt
		state.QRFetchedAt = &fetchedAt
	}

	return state
}

// QR returns the current artifact, or nil when none is held.
func (f *ProvisioningFlow) QR() *QRArtifact {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.qr
}

// Close stops the poller. Must be called when the owning context is torn
// down so no timer keeps firing network calls for an abandoned session.
func (f *ProvisioningFlow) Close() {
	f.poller.Stop()
}

// OnStatus implements StatusObserver.
func (f *ProvisioningFlow) OnStatus(attempt models.ConnectionAttempt) {
	f.mu.Lock()
	f.status = attempt.Status
	f.retryCount = attempt.RetryCount
	instanceName := f.instanceName
	f.mu.Unlock()

	if attempt.Status == models.ConnectionConnected {
		f.publish(events.InstanceConnected{
			BaseEvent:    f.baseEvent(events.InstanceConnectedEvent),
			InstanceName: instanceName,
		})
	}
}

// OnError implements StatusObserver. Transient check failures are surfaced
// to the UI but change no state.
func (f *ProvisioningFlow) OnError(err error) {
	f.recordError(err)
}

// OnRetryNeeded implements StatusObserver.
func (f *ProvisioningFlow) OnRetryNeeded(attempt models.ConnectionAttempt) {
	f.mu.Lock()
	f.status = models.ConnectionFailed
	f.retryCount = 0
	f.lastError = "pairing failed after " + strconv.Itoa(attempt.MaxRetries) + " attempts"
	instanceName := f.instanceName
	f.mu.Unlock()

	f.publish(events.InstancePairingFailed{
		BaseEvent:    f.baseEvent(events.InstancePairingFailedEvent),
		InstanceName: instanceName,
		Attempts:     attempt.MaxRetries,
	})
}

func (f *ProvisioningFlow) recordError(err error) {
	f.mu.Lock()
	f.lastError = err.Error()
	f.mu.Unlock()
}

func (f *ProvisioningFlow) baseEvent(eventType events.EventType) events.BaseEvent {
	id := ""
	if f.eventBus != nil {
		id = f.eventBus.GenerateID()
	}

	return events.BaseEvent{
		ID:        id,
		Type:      eventType,
		Timestamp: time.Now().UTC(),
	}
}

func (f *ProvisioningFlow) publish(event eventbus.Event) {
	if f.eventBus == nil {
		return
	}

	f.mu.Lock()
	key := f.instanceName
	f.mu.Unlock()

	err := f.eventBus.Publish(context.Background(), key, event)
	if err != nil {
		f.logger.Warn("Failed to publish event", "type", event.GetType(), "error", err)
	}
}
