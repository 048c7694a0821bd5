// Package energiapro is a client SDK for the EnergiaPro utility-metering
// API. It owns the token lifecycle, performs authenticated requests with
// retry and backoff, and exposes typed fetchers for installations and
// measurements.
package energiapro

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"strings"

	"go.uber.org/zap"
)

// Client is an authenticated EnergiaPro API client. It is safe for
// concurrent use: independent fetches share the cached token under a
// single-refresh gate.
type Client struct {
	opts      ClientOptions
	tokens    *TokenManager
	transport *transport
	log       *zap.Logger

	// Installations exposes installation-related operations.
	Installations *InstallationsResource
	// Measurements exposes measurement-related operations.
	Measurements *MeasurementsResource
}

// New creates a client with default options.
func New(username, secretKey string) (*Client, error) {
	return NewWithOptions(username, secretKey, DefaultOptions())
}

// NewWithOptions creates a client with custom options.
func NewWithOptions(username, secretKey string, opts ClientOptions) (*Client, error) {
	if strings.TrimSpace(username) == "" {
		return nil, invalidArgument("username cannot be empty")
	}
	if strings.TrimSpace(secretKey) == "" {
		return nil, invalidArgument("secret_key cannot be empty")
	}

	opts = opts.withDefaults()
	if opts.BaseURL == "" {
		return nil, invalidArgument("base_url cannot be empty")
	}

	tr := newTransport(opts)
	client := &Client{
		opts:      opts,
		tokens:    newTokenManager(username, secretKey, tr, opts.Logger),
		transport: tr,
		log:       opts.Logger,
	}
	client.Installations = &InstallationsResource{client: client}
	client.Measurements = &MeasurementsResource{client: client}
	return client, nil
}

// authenticatedPost sends one form-encoded request to the data endpoint
// with a valid token attached. When the API rejects the token, either via
// HTTP status or via a token-class error envelope, the cached token is
// dropped and the request retried once with a fresh one.
func (c *Client) authenticatedPost(ctx context.Context, form url.Values) (json.RawMessage, error) {
	refreshed := false
	for {
		token, err := c.tokens.Obtain(ctx)
		if err != nil {
			return nil, err
		}

		payload, err := c.transport.postForm(ctx, dataEndpoint, form, token)
		if err != nil {
			if errors.Is(err, ErrTokenRejected) && !refreshed {
				c.log.Debug("token rejected, refreshing once")
				c.tokens.Invalidate()
				refreshed = true
				continue
			}
			return nil, err
		}

		if apiErr := apiErrorFromPayload(payload); apiErr != nil {
			if apiErr.IsTokenError() && !refreshed {
				c.log.Debug("token-class api error, refreshing once", zap.String("code", apiErr.Code))
				c.tokens.Invalidate()
				refreshed = true
				continue
			}
			return nil, apiErr
		}

		return payload, nil
	}
}

// decodeRows parses a data payload into raw rows. A bare JSON array is the
// common case; rows may also be delivered inside a paginated envelope.
func decodeRows(payload json.RawMessage) ([]map[string]any, string, error) {
	trimmed := strings.TrimSpace(string(payload))
	if strings.HasPrefix(trimmed, "[") {
		var rows []map[string]any
		if err := json.Unmarshal(payload, &rows); err != nil {
			return nil, "", &TransportError{Kind: TransportMalformedResponse, Err: err}
		}
		return rows, "", nil
	}

	var envelope struct {
		Data         []map[string]any `json:"data"`
		Continuation string           `json:"continuation"`
	}
	if err := json.Unmarshal(payload, &envelope); err != nil || envelope.Data == nil {
		return nil, "", &TransportError{Kind: TransportMalformedResponse, Err: err}
	}
	return envelope.Data, envelope.Continuation, nil
}

// isNoData reports whether err is the API saying the query matched nothing.
func isNoData(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.IsNoData()
}
