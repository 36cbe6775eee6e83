// Package webhook dispatches HTTP calls to the URLs resolved by the
// registry, with a typed error taxonomy shared by every caller.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/alecripto2008/petshopdash-skool-63-sub000/pkg/otelhelper"
	"github.com/alecripto2008/petshopdash-skool-63-sub000/pkg/registry"
)

// DefaultTimeout bounds every outbound webhook call. The upstream automation
// responds in seconds when healthy; a hung request must not suspend a flow
// indefinitely.
const DefaultTimeout = 30 * time.Second

// Client performs webhook calls against registry-resolved URLs.
type Client struct {
	logger     *slog.Logger
	registry   *registry.Registry
	httpClient *http.Client
	tracer     trace.Tracer
}

// NewClient creates a webhook dispatch client. A non-positive timeout falls
// back to DefaultTimeout.
func NewClient(logger *slog.Logger, reg *registry.Registry, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &Client{
		logger:     logger.With("module", "webhook_client"),
		registry:   reg,
		httpClient: &http.Client{Timeout: timeout},
		tracer:     otel.Tracer("webhook-client"),
	}
}

// Resolve returns the URL for an identifier, or a ConfigurationError when
// none is configured. No request is ever issued against an empty URL.
func (c *Client) Resolve(ctx context.Context, identifier string) (string, error) {
	target := c.registry.Resolve(ctx, identifier)
	if target == "" {
		return "", &ConfigurationError{Identifier: identifier}
	}

	return target, nil
}

// PostJSON posts the payload as JSON and decodes a JSON response into out.
// Pass a nil out to discard the response body.
func (c *Client) PostJSON(ctx context.Context, identifier string, payload any, out any) error {
	body, _, err := c.do(ctx, http.MethodPost, identifier, nil, payload)
	if err != nil {
		return err
	}

	if out == nil {
		return nil
	}

	err = json.Unmarshal(body, out)
	if err != nil {
		return &ParseError{Err: err}
	}

	return nil
}

// GetJSON issues a GET with query parameters and decodes a JSON response
// into out.
func (c *Client) GetJSON(ctx context.Context, identifier string, query url.Values, out any) error {
	body, _, err := c.do(ctx, http.MethodGet, identifier, query, nil)
	if err != nil {
		return err
	}

	if out == nil {
		return nil
	}

	err = json.Unmarshal(body, out)
	if err != nil {
		return &ParseError{Err: err}
	}

	return nil
}

// PostBinary posts the payload as JSON and returns the raw response body
// with its content type. Used by the QR endpoints, whose response body is
// the image itself.
func (c *Client) PostBinary(ctx context.Context, identifier string, payload any) ([]byte, string, error) {
	return c.do(ctx, http.MethodPost, identifier, nil, payload)
}

func (c *Client) do(ctx context.Context, method, identifier string, query url.Values, payload any) ([]byte, string, error) {
	target, err := c.Resolve(ctx, identifier)
	if err != nil {
		return nil, "", err
	}

	ctx, span := otelhelper.StartSpan(ctx, c.tracer, "webhook.dispatch",
		attribute.String(otelhelper.WebhookIdentifierKey, identifier),
		attribute.String(otelhelper.WebhookURLKey, target),
	)
	defer span.End()

	if len(query) > 0 {
		target = target + "?" + query.Encode()
	}

	var reqBody io.Reader

	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, "", fmt.Errorf("failed to encode webhook payload: %w", err)
		}

		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reqBody)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create request: %w", err)
	}

	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		transportErr := &TransportError{Err: err}
		otelhelper.SetError(span, transportErr)

		return nil, "", transportErr
	}

	defer func() {
		if err := resp.Body.Close(); err != nil {
			c.logger.DebugContext(ctx, "Failed to close response body", "error", err)
		}
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		transportErr := &TransportError{Err: fmt.Errorf("failed to read response: %w", err)}
		otelhelper.SetError(span, transportErr)

		return nil, "", transportErr
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		transportErr := &TransportError{StatusCode: resp.StatusCode}
		otelhelper.SetError(span, transportErr)

		return nil, "", transportErr
	}

	return respBody, resp.Header.Get("Content-Type"), nil
}
