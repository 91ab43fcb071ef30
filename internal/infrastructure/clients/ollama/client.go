// Package ollama talks to a local Ollama instance over its REST API. It is
// the self-hosted fallback backend when no OpenAI key is configured.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/zurielhealth/clinicalcanvas/backend/internal/domain/entities"
	"github.com/zurielhealth/clinicalcanvas/backend/internal/domain/providers"
	"github.com/zurielhealth/clinicalcanvas/backend/pkg/config"
)

const (
	defaultBaseURL = "http://localhost:11434"
	defaultModel   = "llama3:8b"

	availabilityTimeout = 5 * time.Second

	answerConfidence  = 0.7
	summaryConfidence = 0.75
)

const clinicalInstruction = `You are a clinical AI assistant. Answer the following question based on the provided patient information and clinical context.

Provide a clear, accurate, and helpful response. If you're uncertain about something, mention it. Include relevant clinical reasoning.`

const summaryInstruction = `You are a clinical AI assistant. Create a concise clinical summary of the patient described in the provided context. Cover the primary conditions, significant findings and clinical priorities for ongoing care.`

type Client struct {
	baseURL    string
	model      string
	httpClient *http.Client
}

var _ providers.LLMProvider = (*Client)(nil)

// NewClient creates an Ollama client. timeoutSeconds bounds generation
// calls; availability checks always use a short fixed timeout.
func NewClient(cfg *config.OllamaConfig, timeoutSeconds int) *Client {
	baseURL := defaultBaseURL
	model := defaultModel
	if cfg != nil {
		if cfg.BaseURL != "" {
			baseURL = cfg.BaseURL
		}
		if cfg.Model != "" {
			model = cfg.Model
		}
	}

	if timeoutSeconds <= 0 {
		timeoutSeconds = 60
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		httpClient: &http.Client{
			Timeout: time.Duration(timeoutSeconds) * time.Second,
		},
	}
}

// Name identifies this backend
func (c *Client) Name() string {
	return "ollama"
}

// IsAvailable checks whether the Ollama server answers its tags endpoint.
func (c *Client) IsAvailable(ctx context.Context) bool {
	probeCtx, cancel := context.WithTimeout(ctx, availabilityTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(probeCtx, http.MethodGet, c.baseURL+"/api/tags", nil)
	if err != nil {
		return false
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	return resp.StatusCode == http.StatusOK
}

// AnswerClinicalQuestion generates an answer conditioned on the patient's
// clinical context and retrieved document chunks.
func (c *Client) AnswerClinicalQuestion(ctx context.Context, question string, pc *entities.PatientContext, chunks []string) (*providers.LLMAnswer, error) {
	prompt := buildPrompt(clinicalInstruction, question, buildContext(pc, chunks))

	text, err := c.generate(ctx, prompt, 0.3, 300)
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
	prompt := buildPrompt(summaryInstruction, "", buildContext(pc, nil))

	text, err := c.generate(ctx, prompt, 0.3, 500)
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

type generateRequest struct {
	Model   string          `json:"model"`
	Prompt  string          `json:"prompt"`
	Stream  bool            `json:"stream"`
	Options generateOptions `json:"options"`
}

type generateOptions struct {
	Temperature float64 `json:"temperature"`
	NumPredict  int     `json:"num_predict"`
}

type generateResponse struct {
	Response string `json:"response"`
}

func (c *Client) generate(ctx context.Context, prompt string, temperature float64, maxTokens int) (string, error) {
	body, err := json.Marshal(generateRequest{
		Model:  c.model,
		Prompt: prompt,
		Stream: false,
		Options: generateOptions{
			Temperature: temperature,
			NumPredict:  maxTokens,
		},
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("ollama returned status %d", resp.StatusCode)
	}

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}

	text := strings.TrimSpace(out.Response)
	if text == "" {
		return "", fmt.Errorf("ollama response was empty")
	}
	return text, nil
}

// buildContext renders the patient context into prompt sections. Ollama
// gets the full loaded context; the assembler caps how much it loads.
func buildContext(pc *entities.PatientContext, chunks []string) []string {
	if pc == nil {
		return nil
	}

	parts := []string{
		fmt.Sprintf("Patient: %s, %d years old, %s", pc.Patient.Name, pc.Patient.Age, pc.Patient.Gender),
	}

	if pc.Summary != nil && pc.Summary.Text != "" {
		parts = append(parts, "Clinical Summary: "+pc.Summary.Text)
	}

	if len(pc.Labs) > 0 {
		var sb strings.Builder
		sb.WriteString("Laboratory Results:\n")
		for _, lab := range pc.Labs {
			reference := "N/A"
			if lab.ReferenceRange != nil && *lab.ReferenceRange != "" {
				reference = *lab.ReferenceRange
			}
			sb.WriteString(fmt.Sprintf("- %s: %s %s (Normal: %s)\n", lab.Name, lab.Value, lab.Unit, reference))
		}
		parts = append(parts, sb.String())
	}

	if len(pc.Vitals) > 0 {
		var sb strings.Builder
		sb.WriteString("Vital Signs:\n")
		for _, vital := range pc.Vitals {
			sb.WriteString(fmt.Sprintf("- %s: %s %s\n", vital.Name, vital.Value, vital.Unit))
		}
		parts = append(parts, sb.String())
	}

	parts = append(parts, chunks...)

	return parts
}

func buildPrompt(instruction, question string, contextParts []string) string {
	var sb strings.Builder
	if len(contextParts) > 0 {
		sb.WriteString("Context:\n")
		sb.WriteString(strings.Join(contextParts, "\n\n"))
		sb.WriteString("\n\n")
	}
	sb.WriteString(instruction)
	if question != "" {
		sb.WriteString("\n\nQuestion: ")
		sb.WriteString(question)
	}
	sb.WriteString("\n\nAnswer based on the provided context:")
	return sb.String()
}
