package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/zurielhealth/clinicalcanvas/backend/internal/domain/entities"
	"github.com/zurielhealth/clinicalcanvas/backend/internal/domain/providers"
	"github.com/zurielhealth/clinicalcanvas/backend/pkg/config"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const defaultBaseURL = "https://api.openai.com/v1"

// Answer confidence is a fixed constant per call kind, not derived from
// model output.
const (
	answerConfidence  = 0.75
	summaryConfidence = 0.85
)

// Client is the hosted OpenAI backend for clinical question answering.
type Client struct {
	apiKey       string
	model        string
	organization string
	baseURL      string
	httpClient   *http.Client
	limiter      *tokenBucket
}

var _ providers.LLMProvider = (*Client)(nil)

// NewClient creates a new OpenAI client. timeoutSeconds bounds each
// generation call; availability probes use a shorter fixed timeout.
func NewClient(cfg *config.OpenAIConfig, timeoutSeconds int) (*Client, error) {
	if cfg == nil || cfg.APIKey == "" {
		return nil, errors.New("openai api key is required")
	}

	model := cfg.Model
	if model == "" {
		model = "gpt-4"
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	if timeoutSeconds <= 0 {
		timeoutSeconds = 60
	}

	limiter := newTokenBucket(cfg.RateLimitRPM, cfg.RateLimitBurst)

	return &Client{
		apiKey:       cfg.APIKey,
		model:        model,
		organization: cfg.Organization,
		baseURL:      baseURL,
		httpClient: &http.Client{
			Timeout: time.Duration(timeoutSeconds) * time.Second,
		},
		limiter: limiter,
	}, nil
}

// Name identifies this backend
func (c *Client) Name() string {
	return "openai"
}

// IsAvailable probes the API with a one-word request
func (c *Client) IsAvailable(ctx context.Context) bool {
	probeCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	input := []message{{Role: "user", Content: "Hello"}}
	_, err := c.generate(probeCtx, input, 0, 5)
	return err == nil
}

// AnswerClinicalQuestion generates an answer conditioned on the patient's
// clinical context and retrieved document chunks.
func (c *Client) AnswerClinicalQuestion(ctx context.Context, question string, pc *entities.PatientContext, chunks []string) (*providers.LLMAnswer, error) {
	contextParts := buildClinicalContext(pc, chunks)
	taskPrompt := fmt.Sprintf("%s\n\nQuestion: %s", clinicalQAPrompt, question)

	input := []message{
		{Role: "system", Content: systemClinicalPrompt},
		{Role: "user", Content: buildUserPrompt(taskPrompt, contextParts)},
	}

	text, err := c.generate(ctx, input, 0.2, 600)
	if err != nil {
		return nil, err
	}

	return &providers.LLMAnswer{
		Text:       text,
		Provider:   c.Name(),
		Model:      c.model,
		Confidence: answerConfidence,
	}, nil
}

// GenerateSummary produces a clinical summary from the assembled context
func (c *Client) GenerateSummary(ctx context.Context, pc *entities.PatientContext) (*providers.LLMAnswer, error) {
	contextParts := buildClinicalContext(pc, nil)

	input := []message{
		{Role: "system", Content: systemClinicalPrompt},
		{Role: "user", Content: buildUserPrompt(patientSummaryPrompt, contextParts)},
	}

	text, err := c.generate(ctx, input, 0.2, 800)
	if err != nil {
		return nil, err
	}

	return &providers.LLMAnswer{
		Text:       text,
		Provider:   c.Name(),
		Model:      c.model,
		Confidence: summaryConfidence,
	}, nil
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type responseOutput struct {
	Content []responseContent `json:"content"`
}

type responseEnvelope struct {
	Output []responseOutput `json:"output"`
}

// generate performs one Responses API call and extracts the output text.
func (c *Client) generate(ctx context.Context, input []message, temperature float64, maxTokens int) (string, error) {
	if c.limiter != nil {
		waitStart := time.Now()
		if err := c.limiter.Wait(ctx); err != nil {
			recordOpenAIMetric(ctx, c.model, 0, 0, err)
			return "", err
		}
		recordOpenAIRateLimitWait(ctx, c.model, time.Since(waitStart))
	}

	payload := map[string]interface{}{
		"model":             c.model,
		"input":             input,
		"temperature":       temperature,
		"max_output_tokens": maxTokens,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/responses", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	if c.organization != "" {
		req.Header.Set("OpenAI-Organization", c.organization)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		recordOpenAIMetric(ctx, c.model, 0, time.Since(start), err)
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		statusErr := fmt.Errorf("openai request failed with status %d", resp.StatusCode)
		recordOpenAIMetric(ctx, c.model, resp.StatusCode, time.Since(start), statusErr)
		return "", statusErr
	}

	var envelope responseEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		recordOpenAIMetric(ctx, c.model, resp.StatusCode, time.Since(start), err)
		return "", err
	}

	var text string
	for _, out := range envelope.Output {
		for _, content := range out.Content {
			if content.Type == "output_text" && content.Text != "" {
				text = content.Text
				break
			}
		}
		if text != "" {
			break
		}
	}

	if text == "" {
		missingErr := errors.New("openai response missing output text")
		recordOpenAIMetric(ctx, c.model, resp.StatusCode, time.Since(start), missingErr)
		return "", missingErr
	}

	recordOpenAIMetric(ctx, c.model, resp.StatusCode, time.Since(start), nil)
	return stripMarkdownFences(text), nil
}

// stripMarkdownFences removes a wrapping code fence when the model
// insists on one.
func stripMarkdownFences(text string) string {
	cleaned := text
	if strings.HasPrefix(cleaned, "```json") {
		cleaned = strings.TrimPrefix(cleaned, "```json")
		cleaned = strings.TrimSuffix(cleaned, "```")
	} else if strings.HasPrefix(cleaned, "```") {
		cleaned = strings.TrimPrefix(cleaned, "```")
		cleaned = strings.TrimSuffix(cleaned, "```")
	}
	return strings.TrimSpace(cleaned)
}

func newTokenBucket(rpm int, burst int) *tokenBucket {
	if rpm == 0 {
		rpm = 60
	}
	if rpm < 0 {
		return nil
	}
	if burst <= 0 {
		burst = 5
	}
	return newTokenBucketWithRate(rpm, burst)
}

type tokenBucket struct {
	tokens chan struct{}
}

func newTokenBucketWithRate(rpm int, burst int) *tokenBucket {
	bucket := &tokenBucket{
		tokens: make(chan struct{}, burst),
	}

	for i := 0; i < burst; i++ {
		bucket.tokens <- struct{}{}
	}

	interval := time.Minute / time.Duration(rpm)
	if interval <= 0 {
		interval = time.Millisecond
	}

	ticker := time.NewTicker(interval)
	go func() {
		for range ticker.C {
			select {
			case bucket.tokens <- struct{}{}:
			default:
			}
		}
	}()

	return bucket
}

func (b *tokenBucket) Wait(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-b.tokens:
		return nil
	}
}

type openAIMetrics struct {
	requestCount    metric.Int64Counter
	requestDuration metric.Float64Histogram
	requestErrors   metric.Int64Counter
	rateLimitWait   metric.Float64Histogram
}

var openaiMetricsInit = false
var openaiMetrics openAIMetrics

func ensureOpenAIMetrics() {
	if openaiMetricsInit {
		return
	}
	meter := otel.Meter("github.com/zurielhealth/clinicalcanvas/backend/openai")

	requestCount, err := meter.Int64Counter(
		"ai.openai.request.count",
		metric.WithDescription("Number of OpenAI requests"),
	)
	if err != nil {
		return
	}
	requestDuration, err := meter.Float64Histogram(
		"ai.openai.request.duration",
		metric.WithDescription("OpenAI request duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return
	}
	requestErrors, err := meter.Int64Counter(
		"ai.openai.request.errors",
		metric.WithDescription("Number of OpenAI request errors"),
	)
	if err != nil {
		return
	}
	rateLimitWait, err := meter.Float64Histogram(
		"ai.openai.rate_limit.wait",
		metric.WithDescription("Time spent waiting for OpenAI rate limiter in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return
	}

	openaiMetrics = openAIMetrics{
		requestCount:    requestCount,
		requestDuration: requestDuration,
		requestErrors:   requestErrors,
		rateLimitWait:   rateLimitWait,
	}
	openaiMetricsInit = true
}

func recordOpenAIMetric(ctx context.Context, model string, statusCode int, duration time.Duration, err error) {
	ensureOpenAIMetrics()
	if !openaiMetricsInit {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String("ai.provider", "openai"),
		attribute.String("ai.model", model),
	}
	if statusCode > 0 {
		attrs = append(attrs, attribute.Int("http.status_code", statusCode))
	}

	openaiMetrics.requestCount.Add(ctx, 1, metric.WithAttributes(attrs...))
	openaiMetrics.requestDuration.Record(ctx, float64(duration.Milliseconds()), metric.WithAttributes(attrs...))
	if err != nil {
		openaiMetrics.requestErrors.Add(ctx, 1, metric.WithAttributes(attrs...))
	}
}

func recordOpenAIRateLimitWait(ctx context.Context, model string, wait time.Duration) {
	ensureOpenAIMetrics()
	if !openaiMetricsInit {
		return
	}
	attrs := []attribute.KeyValue{
		attribute.String("ai.provider", "openai"),
		attribute.String("ai.model", model),
	}
	openaiMetrics.rateLimitWait.Record(ctx, float64(wait.Milliseconds()), metric.WithAttributes(attrs...))
}
