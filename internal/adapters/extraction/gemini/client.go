package gemini

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"surgical-records/internal/platform/httpclient"

	"github.com/samber/lo"
	"golang.org/x/time/rate"
)

var (
	ErrNotConfigured     = errors.New("gemini client not configured")
	ErrEmptyResponse     = errors.New("gemini returned no content")
	ErrMalformedResponse = errors.New("gemini returned malformed json")
	ErrUpstream          = errors.New("gemini upstream error")
)

const (
	DefaultBaseURL = "https://generativelanguage.googleapis.com"
	DefaultModel   = "gemini-2.5-flash"
)

// Config del cliente Gemini.
type Config struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration

	// Llamadas por minuto permitidas (ráfaga de 1). 0 = sin límite.
	RatePerMinute int

	// Reintentos ante 429/5xx.
	Retries int
}

type Client struct {
	http    *httpclient.Client
	apiKey  string
	model   string
	limiter *rate.Limiter
}

func NewClient(cfg Config) (*Client, error) {
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = DefaultModel
	}

	hc, err := httpclient.NewWithBaseURL(baseURL, cfg.Timeout)
	if err != nil {
		return nil, err
	}
	hc.WithRetries(cfg.Retries, 500*time.Millisecond)

	limiter := rate.NewLimiter(rate.Inf, 1)
	if cfg.RatePerMinute > 0 {
		limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.RatePerMinute)), 1)
	}

	return &Client{
		http:    hc,
		apiKey:  strings.TrimSpace(cfg.APIKey),
		model:   model,
		limiter: limiter,
	}, nil
}

func (c *Client) IsConfigured() bool {
	return c != nil && c.apiKey != ""
}

type inlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inline_data,omitempty"`
}

type content struct {
	Parts []part `json:"parts"`
}

type generationConfig struct {
	ResponseMimeType string  `json:"responseMimeType"`
	Temperature      float64 `json:"temperature"`
}

type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type textPart struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []textPart `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// generate manda prompt + bytes inline y devuelve el texto del primer candidato.
func (c *Client) generate(ctx context.Context, prompt string, data []byte, mediaType string) (string, error) {
	if !c.IsConfigured() {
		return "", ErrNotConfigured
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limiter: %w", err)
	}

	req := generateRequest{
		Contents: []content{{
			Parts: []part{
				{Text: prompt},
				{InlineData: &inlineData{
					MimeType: mediaType,
					Data:     base64.StdEncoding.EncodeToString(data),
				}},
			},
		}},
		GenerationConfig: generationConfig{
			ResponseMimeType: "application/json",
			Temperature:      0.1,
		},
	}

	path := "/v1beta/models/" + url.PathEscape(c.model) + ":generateContent"
	headers := map[string]string{"x-goog-api-key": c.apiKey}

	var out generateResponse
	if err := c.http.DoJSON(ctx, http.MethodPost, path, headers, req, &out); err != nil {
		return "", fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	if len(out.Candidates) == 0 {
		return "", ErrEmptyResponse
	}
	texts := lo.Map(out.Candidates[0].Content.Parts, func(p textPart, _ int) string {
		return p.Text
	})
	text := strings.TrimSpace(strings.Join(texts, ""))
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

// stripFences quita ```json ... ``` si el modelo lo agregó igual.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	} else {
		s = strings.TrimPrefix(s, "json")
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
