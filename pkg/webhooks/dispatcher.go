package webhooks

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/pkgindex/pkgindex/pkg/observability"
)

// DefaultTimeout is the hard bound on one delivery attempt
const DefaultTimeout = 1500 * time.Millisecond

// Failure markers recorded as last_response when no HTTP status was received
const (
	ResponseTimeout          = "timeout"
	ResponseConnectionFailed = "connection failed"
)

// Dispatcher performs webhook deliveries: one bounded-timeout POST per call,
// outcome durably recorded on the endpoint, no retry, no classification.
type Dispatcher struct {
	client  *http.Client
	store   EndpointStore
	logger  *observability.Logger
	metrics *observability.Metrics
	now     func() time.Time
}

// DispatcherOption configures a Dispatcher
type DispatcherOption func(*Dispatcher)

// WithTimeout overrides the delivery timeout. Production wiring keeps the
// default; tests use shorter bounds.
func WithTimeout(timeout time.Duration) DispatcherOption {
	return func(d *Dispatcher) {
		d.client.Timeout = timeout
	}
}

// WithClock overrides the attempt-time source for tests
func WithClock(now func() time.Time) DispatcherOption {
	return func(d *Dispatcher) {
		d.now = now
	}
}

// NewDispatcher creates a dispatcher recording outcomes in the given store.
// metrics may be nil.
func NewDispatcher(store EndpointStore, logger *observability.Logger, metrics *observability.Metrics, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		client: &http.Client{
			Timeout: DefaultTimeout,
		},
		store:   store,
		logger:  logger,
		metrics: metrics,
		now:     time.Now,
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

// Deliver sends one payload to the endpoint and records the outcome exactly
// once, whatever it was: last_sent_at is the attempt time in UTC and
// last_response the HTTP status code or a failure marker. Delivery failures
// are captured as endpoint state, never returned; the only error a caller can
// see is a failure to persist that state. Distinguishing success from failure
// afterward is the caller's job, by inspecting the endpoint record.
func (d *Dispatcher) Deliver(ctx context.Context, endpoint *Endpoint, payload *Payload) error {
	response, outcome := d.attempt(ctx, endpoint, payload)

	sentAt := d.now().UTC()

	if d.metrics != nil {
		d.metrics.WebhookDeliveriesTotal.WithLabelValues(outcome).Inc()
	}
	d.logger.WithFields(map[string]interface{}{
		"webhook_id": endpoint.ID,
		"url":        endpoint.URL,
		"response":   response,
	}).Info("webhook delivery attempted")

	// The record must land even when the caller's context died with the
	// attempt; the outcome of a timed-out delivery is still an outcome.
	recordCtx := context.WithoutCancel(ctx)
	if err := d.store.RecordDelivery(recordCtx, endpoint.ID, sentAt, response); err != nil {
		return err
	}

	endpoint.LastSentAt = &sentAt
	endpoint.LastResponse = &response
	return nil
}

// attempt runs the POST and maps its result to the recorded response string
// and a metrics outcome label
func (d *Dispatcher) attempt(ctx context.Context, endpoint *Endpoint, payload *Payload) (response, outcome string) {
	body, err := json.Marshal(payload)
	if err != nil {
		// Payloads are plain data structs; this does not happen in practice
		// but it is still a failed attempt if it does.
		return ResponseConnectionFailed, "connection_failed"
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.URL, bytes.NewReader(body))
	if err != nil {
		return ResponseConnectionFailed, "connection_failed"
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept-Encoding", "application/json")

	start := time.Now()
	resp, err := d.client.Do(req)
	if d.metrics != nil {
		d.metrics.WebhookDeliveryDuration.Observe(time.Since(start).Seconds())
	}
	if err != nil {
		var urlErr *url.Error
		if errors.Is(err, context.DeadlineExceeded) ||
			(errors.As(err, &urlErr) && urlErr.Timeout()) {
			return ResponseTimeout, "timeout"
		}
		return ResponseConnectionFailed, "connection_failed"
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return strconv.Itoa(resp.StatusCode), "ok"
	}
	return strconv.Itoa(resp.StatusCode), "http_error"
}
