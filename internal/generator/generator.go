// Package generator turns an interview transcript into a scored assessment
// by calling a hosted structured-generation model.
//
// The model-specific part is the Client interface: Gemini and any
// OpenAI-compatible chat completions endpoint are supported. Everything that
// does not depend on the provider (prompt, schema, validation) lives in
// FeedbackGenerator.
package generator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/sakif/interview-coach/internal/config"
	"github.com/sakif/interview-coach/internal/model"
)

var (
	// ErrEmptyTranscript is returned before any model call when there is
	// nothing to assess.
	ErrEmptyTranscript = errors.New("generator: transcript is empty")
	// ErrInvalidOutput wraps model output that does not satisfy the schema.
	ErrInvalidOutput = errors.New("generator: invalid model output")
	// ErrNoAPIKey is returned by every call of a client built without a key.
	ErrNoAPIKey = errors.New("generator: no API key configured")
)

// Client performs one structured-generation call and returns the raw JSON
// document the model produced.
type Client interface {
	GenerateJSON(ctx context.Context, req Request) ([]byte, error)
}

// Request is a single provider-independent generation call.
type Request struct {
	System string
	Prompt string
	// SchemaName identifies the schema to providers that require a name.
	SchemaName string
	Schema     *Schema
}

// Assessment is the validated result of a feedback generation.
// CategoryScores always holds model.Categories in canonical order.
type Assessment struct {
	TotalScore          int
	CategoryScores      []model.CategoryScore
	Strengths           []string
	AreasForImprovement []string
	FinalAssessment     string
}

// FeedbackGenerator builds the feedback prompt, calls the model and
// validates the answer. It never retries.
type FeedbackGenerator struct {
	client Client
}

func NewFeedbackGenerator(client Client) *FeedbackGenerator {
	return &FeedbackGenerator{client: client}
}

// Generate assesses the transcript.
func (g *FeedbackGenerator) Generate(ctx context.Context, transcript []model.TranscriptTurn) (*Assessment, error) {
	formatted := FormatTranscript(transcript)
	if strings.TrimSpace(formatted) == "" {
		return nil, ErrEmptyTranscript
	}

	raw, err := g.client.GenerateJSON(ctx, Request{
		System:     SystemInstruction,
		Prompt:     BuildPrompt(formatted),
		SchemaName: "feedback",
		Schema:     FeedbackSchema(),
	})
	if err != nil {
		return nil, err
	}
	return ParseAssessment(raw)
}

// NewClient returns the Client for the configured provider. A nil
// httpClient gets one with cfg.Timeout. Without an API key the client is
// still returned so the server can start, but every call fails with
// ErrNoAPIKey.
func NewClient(ctx context.Context, cfg config.GeneratorConfig, httpClient *http.Client) (Client, error) {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	switch cfg.Provider {
	case config.ProviderGemini, config.ProviderOpenAI:
	default:
		return nil, fmt.Errorf("generator: unknown provider %q", cfg.Provider)
	}
	if cfg.APIKey == "" {
		return unconfiguredClient{}, nil
	}
	if cfg.Provider == config.ProviderOpenAI {
		return NewOpenAIClient(cfg.APIKey, cfg.Model, cfg.BaseURL, httpClient), nil
	}
	return NewGeminiClient(ctx, cfg.APIKey, cfg.Model, cfg.BaseURL, httpClient)
}

type unconfiguredClient struct{}

func (unconfiguredClient) GenerateJSON(context.Context, Request) ([]byte, error) {
	return nil, ErrNoAPIKey
}

// ParseAssessment decodes and validates a model answer.
//
// Categories are matched by name (case and surrounding whitespace ignored)
// and reordered canonically; unknown categories are dropped and a missing
// one is an error. Scores are clamped to [model.MinScore, model.MaxScore].
func ParseAssessment(raw []byte) (*Assessment, error) {
	var out struct {
		TotalScore     *float64 `json:"totalScore"`
		CategoryScores []struct {
			Name    string  `json:"name"`
			Score   float64 `json:"score"`
			Comment string  `json:"comment"`
		} `json:"categoryScores"`
		Strengths           []string `json:"strengths"`
		AreasForImprovement []string `json:"areasForImprovement"`
		FinalAssessment     string   `json:"finalAssessment"`
	}
	if err := json.Unmarshal(cleanJSON(raw), &out); err != nil {
		return nil, fmt.Errorf("%w: decoding: %v", ErrInvalidOutput, err)
	}
	if out.TotalScore == nil {
		return nil, fmt.Errorf("%w: missing totalScore", ErrInvalidOutput)
	}

	byName := make(map[string]model.CategoryScore, len(out.CategoryScores))
	for _, cs := range out.CategoryScores {
		key := strings.ToLower(strings.TrimSpace(cs.Name))
		if _, dup := byName[key]; dup {
			continue
		}
		byName[key] = model.CategoryScore{Score: clampScore(cs.Score), Comment: strings.TrimSpace(cs.Comment)}
	}

	scores := make([]model.CategoryScore, 0, len(model.Categories))
	for _, name := range model.Categories {
		cs, ok := byName[strings.ToLower(name)]
		if !ok {
			return nil, fmt.Errorf("%w: missing category %q", ErrInvalidOutput, name)
		}
		cs.Name = name
		scores = append(scores, cs)
	}

	return &Assessment{
		TotalScore:          clampScore(*out.TotalScore),
		CategoryScores:      scores,
		Strengths:           nonEmpty(out.Strengths),
		AreasForImprovement: nonEmpty(out.AreasForImprovement),
		FinalAssessment:     strings.TrimSpace(out.FinalAssessment),
	}, nil
}

func clampScore(v float64) int {
	switch {
	case v < model.MinScore:
		return model.MinScore
	case v > model.MaxScore:
		return model.MaxScore
	}
	return int(v + 0.5)
}

// nonEmpty drops blank entries and never returns nil.
func nonEmpty(items []string) []string {
	out := make([]string, 0, len(items))
	for _, s := range items {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// cleanJSON strips a markdown code fence some models wrap JSON in.
func cleanJSON(raw []byte) []byte {
	s := strings.TrimSpace(string(raw))
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return []byte(strings.TrimSpace(s))
}
