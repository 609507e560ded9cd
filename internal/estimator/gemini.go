package estimator

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/saadjs/daykcal/internal/logging"
)

const (
	GeminiBaseURL      = "https://generativelanguage.googleapis.com"
	DefaultGeminiModel = "gemini-2.0-flash"
)

type Gemini struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
	log     logging.Logger
}

func NewGemini(opts Options) *Gemini {
	g := &Gemini{
		apiKey:  opts.APIKey,
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		model:   opts.Model,
		client:  opts.client(),
		log:     logging.Component(opts.Logger, "estimator"),
	}
	if g.baseURL == "" {
		g.baseURL = GeminiBaseURL
	}
	if g.model == "" {
		g.model = DefaultGeminiModel
	}
	return g
}

func (g *Gemini) Name() string { return ProviderGemini }

type geminiInlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type geminiPart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *geminiInlineData `json:"inline_data,omitempty"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	SystemInstruction geminiContent   `json:"system_instruction"`
	Contents          []geminiContent `json:"contents"`
	GenerationConfig  struct {
		Temperature      float64 `json:"temperature"`
		ResponseMimeType string  `json:"responseMimeType"`
	} `json:"generationConfig"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

func (g *Gemini) EstimateFromImage(ctx context.Context, image []byte, mimeType string) (Outcome, error) {
	if err := checkImage(ProviderGemini, image, mimeType); err != nil {
		return Outcome{}, err
	}
	return g.generate(ctx, []geminiPart{
		{Text: imageInstruction},
		{InlineData: &geminiInlineData{MimeType: mimeType, Data: base64.StdEncoding.EncodeToString(image)}},
	})
}

func (g *Gemini) EstimateFromText(ctx context.Context, description string) (Outcome, error) {
	if err := checkText(ProviderGemini, description); err != nil {
		return Outcome{}, err
	}
	return g.generate(ctx, []geminiPart{{Text: textInstruction(description)}})
}

func (g *Gemini) generate(ctx context.Context, parts []geminiPart) (Outcome, error) {
	var body geminiRequest
	body.SystemInstruction = geminiContent{Parts: []geminiPart{{Text: systemPrompt}}}
	body.Contents = []geminiContent{{Parts: parts}}
	body.GenerationConfig.ResponseMimeType = "application/json"

	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", g.baseURL, url.PathEscape(g.model), url.QueryEscape(g.apiKey))
	raw, err := postJSON(ctx, g.client, g.log, ProviderGemini, endpoint, nil, body)
	if err != nil {
		return Outcome{}, err
	}

	var resp geminiResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return Outcome{}, &EstimationError{Provider: ProviderGemini, Reason: ReasonMalformed, Err: fmt.Errorf("decode response: %w", err)}
	}
	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return Outcome{}, &EstimationError{Provider: ProviderGemini, Reason: ReasonMalformed, Err: errors.New("no candidates in response")}
	}
	var text strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		text.WriteString(p.Text)
	}
	return decodeOutcome(ProviderGemini, text.String())
}
