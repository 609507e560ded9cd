// Package estimator turns a meal photo or description into a nutrition
// estimate by asking a generative model.
//
// A reply that names no food is not an error at this layer: it comes back as
// an Outcome of KindNotFood so callers can tell it apart from a failed call.
package estimator

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/saadjs/daykcal/internal/logging"
	"github.com/saadjs/daykcal/internal/model"
)

const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"

	DefaultTimeout = 30 * time.Second
)

type Estimator interface {
	Name() string
	EstimateFromImage(ctx context.Context, image []byte, mimeType string) (Outcome, error)
	EstimateFromText(ctx context.Context, description string) (Outcome, error)
}

type Kind string

const (
	KindFood    Kind = "food"
	KindNotFood Kind = "not_food"
)

// Outcome is the tagged result of a successful call. Estimate is only
// meaningful when Kind is KindFood.
type Outcome struct {
	Kind     Kind
	Estimate model.NutritionEstimate
}

func (o Outcome) IsFood() bool {
	return o.Kind == KindFood
}

type Reason string

const (
	ReasonTransport Reason = "transport"
	ReasonStatus    Reason = "status"
	ReasonMalformed Reason = "malformed"
	ReasonNotFood   Reason = "not_food"
)

var (
	ErrNotFood       = errors.New("input does not look like food")
	ErrMissingAPIKey = errors.New("api key not set")
	ErrEmptyInput    = errors.New("nothing to estimate")
)

// EstimationError is returned for every failed estimate. Nothing is retried.
type EstimationError struct {
	Provider string
	Reason   Reason
	Err      error
}

func (e *EstimationError) Error() string {
	return fmt.Sprintf("estimate via %s (%s): %v", e.Provider, e.Reason, e.Err)
}

func (e *EstimationError) Unwrap() error {
	return e.Err
}

// NotFood builds the error callers surface for a KindNotFood outcome.
func NotFood(provider string) *EstimationError {
	return &EstimationError{Provider: provider, Reason: ReasonNotFood, Err: ErrNotFood}
}

type Options struct {
	APIKey     string
	BaseURL    string
	Model      string
	HTTPClient *http.Client
	Logger     logging.Logger
}

func (o Options) client() *http.Client {
	if o.HTTPClient != nil {
		return o.HTTPClient
	}
	return &http.Client{Timeout: DefaultTimeout}
}

// New returns the client for the named provider.
func New(provider string, opts Options) (Estimator, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, fmt.Errorf("%s: %w", provider, ErrMissingAPIKey)
	}
	switch strings.ToLower(strings.TrimSpace(provider)) {
	case "", ProviderGemini:
		return NewGemini(opts), nil
	case ProviderOpenAI:
		return NewOpenAI(opts), nil
	default:
		return nil, fmt.Errorf("unknown estimator provider %q (expected gemini or openai)", provider)
	}
}

func checkImage(provider string, image []byte, mimeType string) error {
	if len(image) == 0 {
		return &EstimationError{Provider: provider, Reason: ReasonMalformed, Err: ErrEmptyInput}
	}
	if !strings.HasPrefix(mimeType, "image/") {
		return &EstimationError{Provider: provider, Reason: ReasonMalformed, Err: fmt.Errorf("unsupported mime type %q", mimeType)}
	}
	return nil
}

func checkText(provider, description string) error {
	if strings.TrimSpace(description) == "" {
		return &EstimationError{Provider: provider, Reason: ReasonMalformed, Err: ErrEmptyInput}
	}
	return nil
}

// DetectMIME maps a file extension to the image type sent upstream.
func DetectMIME(path string) string {
	lower := strings.ToLower(path)
	switch {
	case strings.HasSuffix(lower, ".png"):
		return "image/png"
	case strings.HasSuffix(lower, ".webp"):
		return "image/webp"
	case strings.HasSuffix(lower, ".heic"):
		return "image/heic"
	default:
		return "image/jpeg"
	}
}
