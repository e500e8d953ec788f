package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"strings"
	"time"

	"github.com/cdandre/dealmemo-api/internal/config"
	"github.com/cdandre/dealmemo-api/internal/domain"
	"github.com/cdandre/dealmemo-api/internal/generation"
	"google.golang.org/genai"
)

// Generator implements the generation.SectionGenerator interface using
// Google's Gemini API to write deal memo sections.
type Generator struct {
	// logger is used for structured logging
	logger *slog.Logger

	// config contains LLM-specific configuration
	config config.LLMConfig

	// client is the Gemini API client for making requests
	client *genai.Client

	// model is the name of the Gemini model to use
	model string
}

// Ensure Generator implements the SectionGenerator interface
var _ generation.SectionGenerator = (*Generator)(nil)

// NewGenerator creates a new Gemini-backed section generator.
//
// Parameters:
//   - ctx: Context for the operation, which can be used for cancellation
//   - logger: A structured logger for operation logging
//   - cfg: LLM configuration containing API key, model name, and retry settings
//
// Returns:
//   - A properly initialized Generator or an error if initialization fails
func NewGenerator(ctx context.Context, logger *slog.Logger, cfg config.LLMConfig) (*Generator, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("%w: gemini API key cannot be empty", generation.ErrInvalidConfig)
	}

	if cfg.ModelName == "" {
		return nil, fmt.Errorf("%w: model name cannot be empty", generation.ErrInvalidConfig)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create Gemini client: %v",
			generation.ErrInvalidConfig, err)
	}

	return &Generator{
		logger: logger.With(slog.String("component", "gemini_generator")),
		config: cfg,
		client: client,
		model:  cfg.ModelName,
	}, nil
}

// GenerateSection produces the prose for one memo section of the given type.
//
// Parameters:
//   - ctx: Context for the operation, which can be used for cancellation
//   - deal: The deal the memo is being written about
//   - sectionType: Which of the fixed memo sections to generate
//
// Returns:
//   - The generated section text
//   - An error if the generation fails for any reason
func (g *Generator) GenerateSection(
	ctx context.Context,
	deal *domain.Deal,
	sectionType domain.SectionType,
) (string, error) {
	prompt, err := buildPrompt(deal, sectionType)
	if err != nil {
		return "", err
	}

	text, err := g.callWithRetry(ctx, prompt, sectionType)
	if err != nil {
		return "", err
	}

	return text, nil
}

// callWithRetry makes a call to the Gemini API with exponential backoff retry
// logic. Transient errors are retried up to config.MaxRetries times; permanent
// errors (safety blocks, malformed responses) are returned immediately.
func (g *Generator) callWithRetry(
	ctx context.Context,
	prompt string,
	sectionType domain.SectionType,
) (string, error) {
	maxRetries := g.config.MaxRetries
	baseDelaySeconds := g.config.RetryDelaySeconds
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	if maxRetries < 0 {
		g.logger.WarnContext(ctx, "Invalid max retries value, using default", "max_retries", 3)
		maxRetries = 3
	}

	if baseDelaySeconds < 1 {
		g.logger.WarnContext(ctx, "Invalid retry delay value, using default", "base_delay_seconds", 2)
		baseDelaySeconds = 2
	}

	for attempt := 0; ; attempt++ {
		attemptNum := attempt + 1
		g.logger.InfoContext(ctx, "Making Gemini API call",
			"section_type", string(sectionType),
			"attempt", attemptNum,
			"max_attempts", maxRetries+1)

		text, transient, err := g.callOnce(ctx, prompt)
		if err == nil {
			g.logger.InfoContext(ctx, "Gemini API call successful",
				"section_type", string(sectionType),
				"attempt", attemptNum,
				"text_length", len(text))
			return text, nil
		}

		g.logger.ErrorContext(ctx, "Gemini API call failed",
			"section_type", string(sectionType),
			"attempt", attemptNum,
			"error", err)

		if !transient {
			g.logger.WarnContext(ctx, "Permanent error occurred, not retrying",
				"error_type", err)
			return "", err
		}

		if attempt >= maxRetries {
			g.logger.WarnContext(ctx, "Maximum retry attempts reached",
				"max_retries", maxRetries)
			return "", fmt.Errorf("%w: exceeded maximum retry attempts (%d)",
				generation.ErrTransientFailure, maxRetries)
		}

		// delay = baseDelay * (2^attempt) * (0.5 + rand(0, 0.5))
		backoffSeconds := float64(baseDelaySeconds) * math.Pow(2, float64(attempt))
		jitterFactor := 0.5 + rng.Float64()*0.5
		delay := time.Duration(backoffSeconds * jitterFactor * float64(time.Second))

		g.logger.InfoContext(ctx, "Retrying after delay",
			"attempt", attemptNum,
			"delay", delay.String())

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			g.logger.WarnContext(ctx, "API call cancelled during retry delay",
				"attempt", attemptNum,
				"ctx_err", ctx.Err())
			return "", fmt.Errorf("%w: %v", generation.ErrTransientFailure, ctx.Err())
		}
	}
}

// callOnce performs a single API call and classifies the outcome. The bool
// result reports whether a failure is worth retrying.
func (g *Generator) callOnce(ctx context.Context, prompt string) (string, bool, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
	if err != nil {
		// API-level failures are assumed transient; the retry ceiling bounds
		// how long a truly broken call can spin.
		return "", true, fmt.Errorf("%w: %v", generation.ErrTransientFailure, err)
	}

	if resp == nil || len(resp.Candidates) == 0 {
		return "", false, fmt.Errorf("%w: no content generated", generation.ErrInvalidResponse)
	}

	candidate := resp.Candidates[0]
	if candidate.FinishReason == genai.FinishReasonSafety {
		return "", false, fmt.Errorf("%w: finish reason safety", generation.ErrContentBlocked)
	}

	if candidate.Content == nil {
		return "", false, fmt.Errorf("%w: empty content in response", generation.ErrInvalidResponse)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", false, fmt.Errorf("%w: empty text in response", generation.ErrInvalidResponse)
	}

	return text, false, nil
}
