package energiapro

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

const (
	authEndpoint = "authenticate.php"
	dataEndpoint = "index.php"
)

// transport performs authenticated form-encoded POST requests against the
// API and classifies failures. Retryable failures (429, 5xx, connection
// errors) are retried with exponential backoff up to a bounded attempt
// count; everything else surfaces immediately.
type transport struct {
	baseURL    string
	httpClient HTTPDoer
	maxRetries int
	log        *zap.Logger

	// newBackOff is swapped in tests to avoid real waits.
	newBackOff func() backoff.BackOff
}

func newTransport(opts ClientOptions) *transport {
	return &transport{
		baseURL:    opts.BaseURL,
		httpClient: opts.HTTPClient,
		maxRetries: opts.MaxRetries,
		log:        opts.Logger,
		newBackOff: func() backoff.BackOff {
			bo := backoff.NewExponentialBackOff()
			bo.InitialInterval = defaultInitialBackoff
			bo.MaxElapsedTime = 0
			return bo
		},
	}
}

// postForm sends one logical request, retrying retryable failures. A
// non-empty token is attached as a bearer Authorization header. The
// returned payload is the parsed JSON body of a 2xx response; callers still
// have to inspect it for the application-level error envelope.
func (t *transport) postForm(ctx context.Context, endpoint string, form url.Values, token string) (json.RawMessage, error) {
	bo := t.newBackOff()

	var lastErr error
	for attempt := 0; attempt <= t.maxRetries; attempt++ {
		if attempt > 0 {
			wait := bo.NextBackOff()
			if hint := retryHint(lastErr); hint > 0 {
				wait = hint
			}
			t.log.Debug("retrying request",
				zap.String("endpoint", endpoint),
				zap.Int("attempt", attempt),
				zap.Duration("wait", wait))
			if err := sleepCtx(ctx, wait); err != nil {
				return nil, err
			}
		}

		payload, err := t.attempt(ctx, endpoint, form, token)
		if err == nil {
			return payload, nil
		}
		if !isRetryable(err) {
			return nil, err
		}
		lastErr = err
	}

	return nil, finalizeRetryError(lastErr)
}

// retryableError marks a failure worth another attempt. The hint carries a
// server-provided Retry-After delay, when present.
type retryableError struct {
	kind   TransportKind
	status int
	hint   time.Duration
	err    error
}

func (e *retryableError) Error() string {
	if e.err != nil {
		return e.err.Error()
	}
	return fmt.Sprintf("status %d", e.status)
}

func (e *retryableError) Unwrap() error { return e.err }

func isRetryable(err error) bool {
	_, ok := err.(*retryableError)
	return ok
}

func retryHint(err error) time.Duration {
	if re, ok := err.(*retryableError); ok {
		return re.hint
	}
	return 0
}

// finalizeRetryError converts the last retryable failure into the fatal
// TransportError surfaced after retries are exhausted.
func finalizeRetryError(err error) error {
	re, ok := err.(*retryableError)
	if !ok {
		return err
	}
	return &TransportError{Kind: re.kind, StatusCode: re.status, Err: re.err}
}

// attempt performs a single HTTP exchange and classifies the outcome.
func (t *transport) attempt(ctx context.Context, endpoint string, form url.Values, token string) (json.RawMessage, error) {
	body := strings.NewReader(form.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.baseURL+"/"+endpoint, body)
	if err != nil {
		return nil, &TransportError{Kind: TransportNetworkFailure, Err: err}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := t.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &retryableError{kind: TransportNetworkFailure, err: err}
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &retryableError{kind: TransportNetworkFailure, err: err}
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, ErrTokenRejected
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, &retryableError{
			kind:   TransportRateLimited,
			status: resp.StatusCode,
			hint:   parseRetryAfter(resp.Header.Get("Retry-After")),
		}
	case resp.StatusCode >= 500:
		return nil, &retryableError{kind: TransportServerFailure, status: resp.StatusCode}
	case resp.StatusCode >= 400:
		return nil, &TransportError{Kind: TransportClientFailure, StatusCode: resp.StatusCode}
	}

	payload = stripUTF8BOM(payload)
	if !json.Valid(payload) {
		return nil, &TransportError{Kind: TransportMalformedResponse, StatusCode: resp.StatusCode}
	}
	return json.RawMessage(payload), nil
}

func parseRetryAfter(value string) time.Duration {
	seconds, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || seconds < 0 {
		return 0
	}
	return time.Duration(seconds) * time.Second
}

// stripUTF8BOM removes any leading UTF-8 byte order marks. The upstream API
// is known to prefix payloads with one or more of them.
func stripUTF8BOM(payload []byte) []byte {
	bom := []byte{0xEF, 0xBB, 0xBF}
	for bytes.HasPrefix(payload, bom) {
		payload = payload[len(bom):]
	}
	return payload
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// apiErrorFromPayload extracts the application-level error envelope from a
// payload, if present. errorCode "0" means success.
func apiErrorFromPayload(payload json.RawMessage) *APIError {
	var envelope struct {
		Error     string `json:"error"`
		ErrorCode any    `json:"errorCode"`
	}
	if err := json.Unmarshal(payload, &envelope); err != nil {
		return nil // not an object; arrays and scalars are data payloads
	}

	var code string
	switch v := envelope.ErrorCode.(type) {
	case string:
		code = v
	case float64:
		code = strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return nil
	}

	if code == "0" {
		return nil
	}

	message := envelope.Error
	if message == "" {
		message = "Not allowed."
	}
	return &APIError{Code: code, Message: message}
}
