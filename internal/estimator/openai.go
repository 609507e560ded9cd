package estimator

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/saadjs/daykcal/internal/logging"
)

const (
	OpenAIBaseURL      = "https://api.openai.com"
	DefaultOpenAIModel = "gpt-4o-mini"
)

type OpenAI struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
	log     logging.Logger
}

func NewOpenAI(opts Options) *OpenAI {
	o := &OpenAI{
		apiKey:  opts.APIKey,
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		model:   opts.Model,
		client:  opts.client(),
		log:     logging.Component(opts.Logger, "estimator"),
	}
	if o.baseURL == "" {
		o.baseURL = OpenAIBaseURL
	}
	if o.model == "" {
		o.model = DefaultOpenAIModel
	}
	return o
}

func (o *OpenAI) Name() string { return ProviderOpenAI }

// Content is either a plain string or a list of typed parts.
type openAIMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type openAIPart struct {
	Type     string          `json:"type"`
	Text     string          `json:"text,omitempty"`
	ImageURL *openAIImageURL `json:"image_url,omitempty"`
}

type openAIImageURL struct {
	URL string `json:"url"`
}

type openAIRequest struct {
	Model          string          `json:"model"`
	Messages       []openAIMessage `json:"messages"`
	Temperature    float64         `json:"temperature"`
	ResponseFormat map[string]any  `json:"response_format"`
}

func (o *OpenAI) EstimateFromImage(ctx context.Context, image []byte, mimeType string) (Outcome, error) {
	if err := checkImage(ProviderOpenAI, image, mimeType); err != nil {
		return Outcome{}, err
	}
	dataURL := "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(image)
	return o.complete(ctx, []openAIPart{
		{Type: "text", Text: imageInstruction},
		{Type: "image_url", ImageURL: &openAIImageURL{URL: dataURL}},
	})
}

func (o *OpenAI) EstimateFromText(ctx context.Context, description string) (Outcome, error) {
	if err := checkText(ProviderOpenAI, description); err != nil {
		return Outcome{}, err
	}
	return o.complete(ctx, textInstruction(description))
}

func (o *OpenAI) complete(ctx context.Context, userContent any) (Outcome, error) {
	body := openAIRequest{
		Model: o.model,
		Messages: []openAIMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userContent},
		},
		ResponseFormat: map[string]any{"type": "json_object"},
	}
	headers := map[string]string{"Authorization": "Bearer " + o.apiKey}
	raw, err := postJSON(ctx, o.client, o.log, ProviderOpenAI, o.baseURL+"/v1/chat/completions", headers, body)
	if err != nil {
		return Outcome{}, err
	}

	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(raw, &result); err != nil {
		return Outcome{}, &EstimationError{Provider: ProviderOpenAI, Reason: ReasonMalformed, Err: fmt.Errorf("decode response: %w", err)}
	}
	if len(result.Choices) == 0 {
		return Outcome{}, &EstimationError{Provider: ProviderOpenAI, Reason: ReasonMalformed, Err: errors.New("no choices in response")}
	}
	return decodeOutcome(ProviderOpenAI, result.Choices[0].Message.Content)
}
