// Package evolution implements the Evolution instance pairing lifecycle:
// instance creation, QR artifact handling and status polling.
package evolution

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/alecripto2008/petshopdash-skool-63-sub000/pkg/models"
	"github.com/alecripto2008/petshopdash-skool-63-sub000/pkg/webhook"
)

// DefaultPollInterval is the fixed period between status checks.
const DefaultPollInterval = 10 * time.Second

// Sentinel values the status webhook reports in its "respond" field. Any
// other value is treated as not yet informative.
const (
	respondPositive = "positivo"
	respondNegative = "negativo"
)

type statusRequest struct {
	InstanceName string `json:"instanceName"`
}

type statusResponse struct {
	Respond string `json:"respond"`
}

// StatusObserver receives poller notifications.
type StatusObserver interface {
	// OnStatus is called on every state or retry-count change.
	OnStatus(attempt models.ConnectionAttempt)

	// OnError is called for configuration, transport and parse failures.
	// None of these change state or consume the retry budget.
	OnError(err error)

	// OnRetryNeeded is called exactly once when the retry budget is
	// exhausted and the attempt transitions to failed.
	OnRetryNeeded(attempt models.ConnectionAttempt)
}

// PollerConfig tunes the status poller. Zero values select the defaults.
type PollerConfig struct {
	Interval   time.Duration
	MaxRetries int
}

// StatusPoller repeatedly checks whether a pairing attempt has been
// confirmed by the remote automation.
//
// Ticks are scheduled on a fixed period; a tick is skipped while the
// previous check is still in flight. Stopping cancels future ticks only —
// an in-flight response is recognized as stale via a generation counter and
// discarded without mutating state or firing callbacks.
type StatusPoller struct {
	logger   *slog.Logger
	client   *webhook.Client
	observer StatusObserver

	interval   time.Duration
	maxRetries int

	mu         sync.Mutex
	cron       *cron.Cron
	generation uint64
	attempt    models.ConnectionAttempt
}

// NewStatusPoller creates a poller. The observer must not be nil.
func NewStatusPoller(logger *slog.Logger, client *webhook.Client, config PollerConfig, observer StatusObserver) *StatusPoller {
	if config.Interval <= 0 {
		config.Interval = DefaultPollInterval
	}

	if config.MaxRetries <= 0 {
		config.MaxRetries = models.DefaultMaxRetries
	}

	return &StatusPoller{
		logger:     logger.With("module", "status_poller"),
		client:     client,
		observer:   observer,
		interval:   config.Interval,
		maxRetries: config.MaxRetries,
		attempt:    models.ConnectionAttempt{Status: models.ConnectionNotStarted, MaxRetries: config.MaxRetries},
	}
}

// Start begins polling for the given instance. Any running schedule is
// stopped first; the retry count starts at zero.
func (p *StatusPoller) Start(instanceName string) error {
	p.mu.Lock()

	p.stopLocked()

	p.attempt = models.ConnectionAttempt{
		InstanceName: strings.TrimSpace(instanceName),
		Status:       models.ConnectionWaiting,
		MaxRetries:   p.maxRetries,
	}

	generation := p.generation

	scheduler := cron.New(cron.WithChain(
		cron.SkipIfStillRunning(cron.DiscardLogger),
		cron.Recover(cron.DefaultLogger),
	))

	_, err := scheduler.AddFunc(fmt.Sprintf("@every %s", p.interval), func() {
		p.check(generation)
	})
	if err != nil {
		p.mu.Unlock()

		return fmt.Errorf("failed to schedule status checks: %w", err)
	}

	p.cron = scheduler
	attempt := p.attempt

	p.mu.Unlock()

	scheduler.Start()
	p.logger.Info("Started status polling", "instance", attempt.InstanceName, "interval", p.interval)
	p.observer.OnStatus(attempt)

	return nil
}

// Stop cancels future ticks. Idempotent and safe to call when already
// stopped.
func (p *StatusPoller) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.stopLocked()
}

// stopLocked halts the schedule and advances the generation so any
// in-flight check becomes stale. Callers must hold p.mu.
func (p *StatusPoller) stopLocked() {
	if p.cron != nil {
		p.cron.Stop()
		p.cron = nil
	}

	p.generation++
}

// Attempt returns a snapshot of the current attempt state.
func (p *StatusPoller) Attempt() models.ConnectionAttempt {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.attempt
}

// check performs one status round-trip. All outcomes are applied through
// the generation guard: a check that outlives its polling session is a
// no-op.
func (p *StatusPoller) check(generation uint64) {
	p.mu.Lock()

	if generation != p.generation {
		p.mu.Unlock()

		return
	}

	instanceName := p.attempt.InstanceName

	p.mu.Unlock()

	var response statusResponse

	err := p.client.PostJSON(context.Background(), models.WebhookConfirmStatus, statusRequest{InstanceName: instanceName}, &response)
	if err != nil {
		// Configuration, transport and parse failures are transient here:
		// no state change, no retry-count change, next tick retries.
		p.notifyError(generation, err)

		return
	}

	switch response.Respond {
	case respondPositive:
		p.confirm(generation)
	case respondNegative:
		p.reject(generation)
	default:
		// Not yet informative.
	}
}

func (p *StatusPoller) confirm(generation uint64) {
	p.mu.Lock()

	if generation != p.generation {
		p.mu.Unlock()

		return
	}

	p.stopLocked()

	p.attempt.Status = models.ConnectionConnected
	p.attempt.RetryCount = 0
	attempt := p.attempt

	p.mu.Unlock()

	p.logger.Info("Instance pairing confirmed", "instance", attempt.InstanceName)
	p.observer.OnStatus(attempt)
}

func (p *StatusPoller) reject(generation uint64) {
	p.mu.Lock()

	if generation != p.generation {
		p.mu.Unlock()

		return
	}

	p.attempt.RetryCount++

	if p.attempt.RetryCount < p.attempt.MaxRetries {
		attempt := p.attempt

		p.mu.Unlock()

		p.logger.Info("Instance pairing still pending",
			"instance", attempt.InstanceName,
			"attempt", attempt.RetryCount,
			"max_retries", attempt.MaxRetries,
		)
		p.observer.OnStatus(attempt)

		return
	}

	p.stopLocked()

	p.attempt.Status = models.ConnectionFailed
	p.attempt.RetryCount = 0
	attempt := p.attempt

	p.mu.Unlock()

	p.logger.Warn("Instance pairing failed, retry budget exhausted",
		"instance", attempt.InstanceName,
		"max_retries", attempt.MaxRetries,
	)
	p.observer.OnRetryNeeded(attempt)
}

func (p *StatusPoller) notifyError(generation uint64, err error) {
	p.mu.Lock()

	if generation != p.generation {
		p.mu.Unlock()

		return
	}

	p.mu.Unlock()

	p.logger.Warn("Status check failed", "error", err)
	p.observer.OnError(err)
}
