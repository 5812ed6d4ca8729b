// Package gemini implements domain.Generator on top of the Google Gen AI SDK.
package gemini

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/genai"

	"github.com/fairyhunter13/ai-career-advisor/internal/adapter/observability"
	"github.com/fairyhunter13/ai-career-advisor/internal/config"
	"github.com/fairyhunter13/ai-career-advisor/internal/domain"
	obsctx "github.com/fairyhunter13/ai-career-advisor/internal/observability"
)

const (
	provider = "gemini"

	defaultTimeout = 90 * time.Second
)

// Client implements domain.Generator. The underlying SDK client is built on
// first use so a process without a key can still start and serve the form.
type Client struct {
	apiKey  string
	model   string
	baseURL string
	hc      *http.Client

	mu sync.Mutex
	gc *genai.Client
}

// New constructs a Gemini client from configuration. It never fails; a
// missing key is reported by Generate.
func New(cfg config.Config) *Client {
	return &Client{
		apiKey:  strings.TrimSpace(cfg.GeminiAPIKey),
		model:   cfg.GeminiModel,
		baseURL: cfg.GeminiBaseURL,
		hc: &http.Client{
			Timeout:   requestTimeout(cfg),
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

// requestTimeout bounds one upstream call so it ends before the HTTP server
// gives up writing the response that waits on it.
func requestTimeout(cfg config.Config) time.Duration {
	if cfg.HTTPWriteTimeout > 0 && cfg.HTTPWriteTimeout < defaultTimeout {
		return cfg.HTTPWriteTimeout
	}
	return defaultTimeout
}

// Ready reports whether a credential was supplied.
func (c *Client) Ready() bool { return c.apiKey != "" }

func (c *Client) sdk(ctx domain.Context) (*genai.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gc != nil {
		return c.gc, nil
	}
	cc := &genai.ClientConfig{
		APIKey:     c.apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: c.hc,
	}
	if c.baseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: c.baseURL}
	}
	gc, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, err
	}
	c.gc = gc
	return gc, nil
}

// Generate performs exactly one generateContent call constrained to JSON
// output and returns the concatenated text of the first candidate.
func (c *Client) Generate(ctx domain.Context, req domain.GenerateRequest) (string, error) {
	lg := obsctx.LoggerFromContext(ctx)
	if c.apiKey == "" {
		lg.Error("Gemini API key missing", slog.String("provider", provider))
		return "", fmt.Errorf("op=gemini.Generate: %w: GEMINI_API_KEY not set", domain.ErrMissingCredential)
	}
	model := req.Model
	if model == "" {
		model = c.model
	}

	ctx, span := otel.Tracer("gemini").Start(ctx, "gemini.GenerateContent",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("ai.provider", provider),
			attribute.String("ai.model", model),
		))
	defer span.End()

	gc, err := c.sdk(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "client init failed")
		return "", fmt.Errorf("op=gemini.Generate: %w: %w", domain.ErrUpstream, err)
	}

	gcfg := &genai.GenerateContentConfig{ResponseMIMEType: "application/json"}
	if req.SystemInstruction != "" {
		gcfg.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: req.SystemInstruction}}}
	}
	if req.Schema != nil {
		gcfg.ResponseSchema = toSchema(req.Schema)
	}

	start := time.Now()
	resp, err := gc.Models.GenerateContent(ctx, model, genai.Text(req.Prompt), gcfg)
	observability.ObserveAIRequest(provider, model, time.Since(start))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "generate content failed")
		return "", fmt.Errorf("op=gemini.Generate: %w: %w", domain.ErrUpstream, err)
	}
	if resp == nil {
		return "", nil
	}

	if u := resp.UsageMetadata; u != nil {
		observability.RecordAITokenUsage(provider, model, int(u.PromptTokenCount), int(u.CandidatesTokenCount))
		span.SetAttributes(
			attribute.Int("ai.tokens.prompt", int(u.PromptTokenCount)),
			attribute.Int("ai.tokens.completion", int(u.CandidatesTokenCount)),
		)
	}

	text := resp.Text()
	if strings.TrimSpace(text) == "" && resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
		lg.Warn("prompt blocked by provider",
			slog.String("provider", provider),
			slog.String("block_reason", string(resp.PromptFeedback.BlockReason)))
	}
	lg.Debug("gemini response received",
		slog.String("model", model),
		slog.Int("length", len(text)),
		slog.Duration("duration", time.Since(start)))
	return text, nil
}

func toSchema(s *domain.ResponseSchema) *genai.Schema {
	if s == nil {
		return nil
	}
	out := &genai.Schema{
		Type:             toType(s.Type),
		Description:      s.Description,
		Required:         s.Required,
		PropertyOrdering: s.Order,
		Items:            toSchema(s.Items),
	}
	if len(s.Properties) > 0 {
		out.Properties = make(map[string]*genai.Schema, len(s.Properties))
		for name, p := range s.Properties {
			out.Properties[name] = toSchema(p)
		}
	}
	return out
}

func toType(t domain.SchemaType) genai.Type {
	switch t {
	case domain.SchemaObject:
		return genai.TypeObject
	case domain.SchemaArray:
		return genai.TypeArray
	default:
		return genai.TypeString
	}
}
