package energiapro

import (
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/nhedger/energiapro/pkg/models"
)

const (
	defaultBaseURL        = "https://web2.holdigaz.ch/espace-client-api/api"
	defaultTimeout        = 30 * time.Second
	defaultMaxWindowDays  = 31
	defaultMaxRetries     = 3
	defaultInitialBackoff = 500 * time.Millisecond
)

// HTTPDoer defines the http.Client interface subset used by the SDK.
type HTTPDoer interface {
	Do(*http.Request) (*http.Response, error)
}

// ClientOptions configures a Client. The zero value of any field falls back
// to its default.
type ClientOptions struct {
	// BaseURL is the API base URL. Trailing slashes are trimmed.
	BaseURL string

	// Timeout applies to the default HTTP client. Ignored when HTTPClient
	// is supplied.
	Timeout time.Duration

	// MaxWindowSpanDays bounds the width of a single measurements request.
	// Wider ranges are split into sequential windows.
	MaxWindowSpanDays int

	// MaxRetries bounds retry attempts for retryable transport failures
	// (rate limiting, 5xx, connection errors).
	MaxRetries int

	// RecordPolicy selects how malformed upstream rows are handled.
	RecordPolicy models.RecordPolicy

	// HTTPClient overrides the HTTP client, mainly for tests.
	HTTPClient HTTPDoer

	// Logger receives diagnostic output. Defaults to a no-op logger.
	Logger *zap.Logger
}

// DefaultOptions returns the options New uses.
func DefaultOptions() ClientOptions {
	return ClientOptions{
		BaseURL:           defaultBaseURL,
		Timeout:           defaultTimeout,
		MaxWindowSpanDays: defaultMaxWindowDays,
		MaxRetries:        defaultMaxRetries,
		RecordPolicy:      models.PolicySkipMalformed,
	}
}

func (o ClientOptions) withDefaults() ClientOptions {
	if o.BaseURL == "" {
		o.BaseURL = defaultBaseURL
	}
	o.BaseURL = strings.TrimRight(strings.TrimSpace(o.BaseURL), "/")
	if o.Timeout <= 0 {
		o.Timeout = defaultTimeout
	}
	if o.MaxWindowSpanDays <= 0 {
		o.MaxWindowSpanDays = defaultMaxWindowDays
	}
	if o.MaxRetries <= 0 {
		o.MaxRetries = defaultMaxRetries
	}
	if o.HTTPClient == nil {
		o.HTTPClient = &http.Client{Timeout: o.Timeout}
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	return o
}
