// Package dispatch implements the decision engine of the bridge: it turns
// one bus message plus one HTTP response into a delivery outcome. The
// engine never talks to the bus itself; settling the message according to
// the outcome is the caller's job.
package dispatch

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/illmade-knight/go-amqp2http/pkg/mapping"
)

// DispatcherConfig holds configuration for a Dispatcher.
type DispatcherConfig struct {
	// BackpressureDelay is slept before requeueing when the endpoint
	// signals overload (408, 425, 429, 503 or 504). The sleep blocks only
	// the goroutine handling that one message.
	BackpressureDelay time.Duration

	// HTTPTimeout bounds each outbound request. The engine has no other
	// timeout of its own.
	HTTPTimeout time.Duration
}

func (c DispatcherConfig) applyDefaults() DispatcherConfig {
	if c.BackpressureDelay <= 0 {
		c.BackpressureDelay = 30 * time.Second
	}
	if c.HTTPTimeout <= 0 {
		c.HTTPTimeout = 30 * time.Second
	}
	return c
}

// Dispatcher forwards messages as HTTP POST requests and classifies the
// responses. It is safe for concurrent use; the shared http.Client pools
// connections but each request carries only its own headers and body.
type Dispatcher struct {
	client *http.Client
	delay  time.Duration
	logger zerolog.Logger
}

// NewDispatcher creates a Dispatcher.
func NewDispatcher(cfg DispatcherConfig, logger zerolog.Logger) *Dispatcher {
	cfg = cfg.applyDefaults()
	return &Dispatcher{
		client: &http.Client{Timeout: cfg.HTTPTimeout},
		delay:  cfg.BackpressureDelay,
		logger: logger.With().Str("component", "Dispatcher").Logger(),
	}
}

// Dispatch POSTs the message payload to the endpoint and classifies the
// response status into an Outcome. A transport failure (no response at
// all) is returned as an error; the caller should treat it as a requeue.
func (d *Dispatcher) Dispatch(ctx context.Context, endpoint mapping.EventEndpoint, msg *Message) (Outcome, error) {
	req, err := d.buildRequest(ctx, endpoint, msg)
	if err != nil {
		return Outcome{}, fmt.Errorf("building request for %s: %w", endpoint.URL, err)
	}

	d.logger.Debug().
		Str("url", endpoint.URL).
		Str("routing_key", endpoint.RoutingKey).
		Str("msg_id", msg.ID).
		Bool("redelivered", msg.Redelivered).
		Int("body_bytes", len(msg.Payload)).
		Msg("amqp-to-http request")

	resp, err := d.client.Do(req)
	if err != nil {
		observeTransportError(endpoint)
		return Outcome{}, fmt.Errorf("posting to %s: %w", endpoint.URL, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	// Drain the body so the connection can be reused; keep a bounded
	// prefix for debug logging.
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	_, _ = io.Copy(io.Discard, resp.Body)

	d.logger.Debug().
		Int("status_code", resp.StatusCode).
		Bytes("content", body).
		Msg("amqp-to-http response")

	outcome := d.classify(ctx, resp.StatusCode)
	observeOutcome(endpoint, resp.StatusCode, outcome)
	return outcome, nil
}

// buildRequest assembles the POST request. Candidate headers whose value is
// unset are omitted entirely; receivers must not assume their presence.
func (d *Dispatcher) buildRequest(ctx context.Context, endpoint mapping.EventEndpoint, msg *Message) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.URL, bytes.NewReader(msg.Payload))
	if err != nil {
		return nil, err
	}

	setIfPresent := func(name, value string) {
		if value != "" {
			req.Header.Set(name, value)
		}
	}
	setIfPresent("Content-Type", msg.ContentType)
	setIfPresent("Content-Encoding", msg.ContentEncoding)
	setIfPresent("X-Correlation-ID", msg.CorrelationID)
	setIfPresent("X-Message-ID", msg.ID)
	req.Header.Set("X-Routing-Key", endpoint.RoutingKey)

	for key, value := range msg.Headers {
		req.Header.Set("X-AMQP-HEADER-"+key, fmt.Sprint(value))
	}

	return req, nil
}

// classify evaluates the status rule table. The rules are ordered and the
// first match wins: the backpressure set and 451 overlap with the general
// 4xx/5xx ranges and must be intercepted before them.
func (d *Dispatcher) classify(ctx context.Context, status int) Outcome {
	switch {
	case status >= 200 && status < 300:
		d.logger.Debug().Msg("Integration successfully processed message")
		return acked()

	case status == http.StatusRequestTimeout,
		status == http.StatusTooEarly,
		status == http.StatusTooManyRequests,
		status == http.StatusServiceUnavailable,
		status == http.StatusGatewayTimeout:
		d.logger.Info().Int("status_code", status).Msg("Integration requested us to slow down")
		d.sleep(ctx)
		return requeued("Was going too fast")

	case status == http.StatusUnavailableForLegalReasons:
		d.logger.Info().Msg("Integration requested us to reject the message")
		return rejected("We legally cannot process this")

	case status >= 400 && status < 500:
		d.logger.Info().Int("status_code", status).Msg("Integration could not handle the request")
		return requeued("We send a bad request")

	case status == http.StatusNotImplemented:
		d.logger.Info().Msg("Integration notified us that the endpoint is not implemented")
		return requeued("Not implemented")

	case status >= 500:
		d.logger.Info().Int("status_code", status).Msg("Integration could not handle the request")
		return requeued("The server done goofed")

	default:
		// 1xx and unhandled 3xx; a 3xx here is probably a misconfiguration.
		d.logger.Info().Int("status_code", status).Msg("Integration sent an unknown status-code")
		return requeued(fmt.Sprintf("Unexpected status-code: %d", status))
	}
}

// sleep waits for the backpressure delay or until the context is cancelled,
// whichever comes first.
func (d *Dispatcher) sleep(ctx context.Context) {
	timer := time.NewTimer(d.delay)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
	}
}
