package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/lumenlearn/mastery-api/internal/config"
	"github.com/lumenlearn/mastery-api/internal/domain"
	"github.com/lumenlearn/mastery-api/internal/generation"
)

// GeminiGenerator implements the generation.ContentGenerator interface using
// Google's Gemini API.
type GeminiGenerator struct {
	logger  *slog.Logger
	config  config.LLMConfig
	client  *genai.Client
	model   string
	prompts *promptSet
}

// Verify interface compliance at compile time.
var _ generation.ContentGenerator = (*GeminiGenerator)(nil)

// NewGeminiGenerator creates a new GeminiGenerator with the provided
// dependencies. Returns an error if the configuration is incomplete or the
// client cannot be created.
func NewGeminiGenerator(
	ctx context.Context,
	logger *slog.Logger,
	cfg config.LLMConfig,
) (*GeminiGenerator, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("%w: gemini API key cannot be empty", generation.ErrInvalidConfig)
	}
	if cfg.ModelName == "" {
		return nil, fmt.Errorf("%w: model name cannot be empty", generation.ErrInvalidConfig)
	}

	prompts, err := newPromptSet()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", generation.ErrInvalidConfig, err)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create Gemini client: %v",
			generation.ErrInvalidConfig, err)
	}

	return &GeminiGenerator{
		logger:  logger.With(slog.String("component", "gemini_generator")),
		config:  cfg,
		client:  client,
		model:   cfg.ModelName,
		prompts: prompts,
	}, nil
}

// GenerateDiagnostic implements generation.ContentGenerator.
func (g *GeminiGenerator) GenerateDiagnostic(
	ctx context.Context,
	courseText string,
) ([]domain.QuizQuestion, error) {
	if strings.TrimSpace(courseText) == "" {
		return nil, fmt.Errorf("%w: course text", generation.ErrEmptyInput)
	}

	prompt, err := render(g.prompts.diagnostic, struct{ CourseText string }{courseText})
	if err != nil {
		return nil, err
	}

	var resp quizResponse
	if err := g.generateJSON(ctx, prompt, &resp); err != nil {
		return nil, err
	}

	return resp.toDomain()
}

// GenerateRemediation implements generation.ContentGenerator.
func (g *GeminiGenerator) GenerateRemediation(
	ctx context.Context,
	courseText string,
	weakConcepts []string,
	tier domain.Difficulty,
) (*domain.RemediationPack, error) {
	if strings.TrimSpace(courseText) == "" {
		return nil, fmt.Errorf("%w: course text", generation.ErrEmptyInput)
	}
	if len(weakConcepts) == 0 {
		return nil, fmt.Errorf("%w: weak concepts", generation.ErrEmptyInput)
	}

	prompt, err := render(g.prompts.remediation, struct {
		CourseText string
		Concepts   string
		Tier       domain.Difficulty
	}{courseText, joinConcepts(weakConcepts), tier})
	if err != nil {
		return nil, err
	}

	var resp remediationResponse
	if err := g.generateJSON(ctx, prompt, &resp); err != nil {
		return nil, err
	}

	return resp.toDomain()
}

// GenerateValidationQuiz implements generation.ContentGenerator.
func (g *GeminiGenerator) GenerateValidationQuiz(
	ctx context.Context,
	courseText string,
	concepts []string,
	tier domain.Difficulty,
) ([]domain.QuizQuestion, error) {
	if strings.TrimSpace(courseText) == "" {
		return nil, fmt.Errorf("%w: course text", generation.ErrEmptyInput)
	}
	if len(concepts) == 0 {
		return nil, fmt.Errorf("%w: concepts", generation.ErrEmptyInput)
	}

	prompt, err := render(g.prompts.validation, struct {
		CourseText string
		Concepts   string
		Tier       domain.Difficulty
	}{courseText, joinConcepts(concepts), tier})
	if err != nil {
		return nil, err
	}

	var resp quizResponse
	if err := g.generateJSON(ctx, prompt, &resp); err != nil {
		return nil, err
	}

	return resp.toDomain()
}

// GeneratePracticeExercise implements generation.ContentGenerator.
func (g *GeminiGenerator) GeneratePracticeExercise(
	ctx context.Context,
	courseText string,
	difficulty domain.Difficulty,
) (*domain.PracticeExercise, error) {
	if strings.TrimSpace(courseText) == "" {
		return nil, fmt.Errorf("%w: course text", generation.ErrEmptyInput)
	}
	if !difficulty.IsValid() {
		return nil, fmt.Errorf("%w: unknown difficulty %q", generation.ErrInvalidConfig, difficulty)
	}

	prompt, err := render(g.prompts.practice, struct {
		CourseText string
		Difficulty domain.Difficulty
	}{courseText, difficulty})
	if err != nil {
		return nil, err
	}

	var resp exerciseResponse
	if err := g.generateJSON(ctx, prompt, &resp); err != nil {
		return nil, err
	}

	return resp.toDomain()
}

// EvaluateFreeResponse implements generation.ContentGenerator.
func (g *GeminiGenerator) EvaluateFreeResponse(
	ctx context.Context,
	instruction, studentAnswer, courseText string,
) (*domain.Evaluation, error) {
	if strings.TrimSpace(instruction) == "" || strings.TrimSpace(studentAnswer) == "" {
		return nil, fmt.Errorf("%w: instruction and answer", generation.ErrEmptyInput)
	}

	prompt, err := render(g.prompts.evaluation, struct {
		Instruction   string
		StudentAnswer string
		CourseText    string
	}{instruction, studentAnswer, courseText})
	if err != nil {
		return nil, err
	}

	var resp evaluationResponse
	if err := g.generateJSON(ctx, prompt, &resp); err != nil {
		return nil, err
	}

	return resp.toDomain()
}

// generateJSON calls the Gemini API with retry and parses the JSON reply
// into out.
//
// Transient API errors are retried up to config.MaxRetries times with
// exponential backoff and jitter. Permanent errors (safety blocks, malformed
// responses) are returned immediately without retrying.
func (g *GeminiGenerator) generateJSON(ctx context.Context, prompt string, out any) error {
	maxRetries := g.config.MaxRetries
	if maxRetries < 0 {
		g.logger.WarnContext(ctx, "invalid max retries value, using default", "max_retries", 3)
		maxRetries = 3
	}

	baseDelaySeconds := g.config.RetryDelaySeconds
	if baseDelaySeconds < 1 {
		g.logger.WarnContext(ctx, "invalid retry delay value, using default", "base_delay_seconds", 2)
		baseDelaySeconds = 2
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	for attempt := 0; attempt <= maxRetries; attempt++ {
		g.logger.DebugContext(ctx, "making Gemini API call",
			"attempt", attempt+1,
			"max_attempts", maxRetries+1)

		text, err := g.callOnce(ctx, prompt)
		if err == nil {
			if parseErr := json.Unmarshal([]byte(stripCodeFence(text)), out); parseErr != nil {
				return fmt.Errorf("%w: failed to parse JSON response: %v",
					generation.ErrInvalidResponse, parseErr)
			}
			return nil
		}

		// Permanent errors are not retried.
		if errors.Is(err, generation.ErrContentBlocked) ||
			errors.Is(err, generation.ErrInvalidResponse) {
			g.logger.WarnContext(ctx, "permanent generation error, not retrying", "error", err)
			return err
		}

		if attempt >= maxRetries {
			g.logger.WarnContext(ctx, "maximum retry attempts reached", "max_retries", maxRetries)
			return fmt.Errorf("%w: exceeded maximum retry attempts (%d): %v",
				generation.ErrTransientFailure, maxRetries, err)
		}

		// Exponential backoff with jitter:
		// delay = baseDelay * 2^attempt * (0.5 + rand(0, 0.5))
		backoffSeconds := float64(baseDelaySeconds) * math.Pow(2, float64(attempt))
		delay := time.Duration(backoffSeconds * (0.5 + rng.Float64()*0.5) * float64(time.Second))

		g.logger.InfoContext(ctx, "retrying Gemini call after delay",
			"attempt", attempt+1,
			"delay", delay.String(),
			"error", err)

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return fmt.Errorf("%w: cancelled during retry delay: %v",
				generation.ErrTransientFailure, ctx.Err())
		}
	}

	return generation.ErrGenerationFailed
}

// callOnce makes a single Gemini API call and returns the raw response text.
func (g *GeminiGenerator) callOnce(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", generation.ErrTransientFailure, err)
	}

	if resp == nil || len(resp.Candidates) == 0 {
		return "", fmt.Errorf("%w: no content generated", generation.ErrInvalidResponse)
	}

	candidate := resp.Candidates[0]
	if candidate.FinishReason == genai.FinishReasonSafety {
		return "", fmt.Errorf("%w: finish reason safety", generation.ErrContentBlocked)
	}
	if candidate.Content == nil {
		return "", fmt.Errorf("%w: empty content in response", generation.ErrInvalidResponse)
	}

	var text string
	for _, part := range candidate.Content.Parts {
		if part != nil {
			text += part.Text
		}
	}

	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%w: empty text in response", generation.ErrInvalidResponse)
	}

	return text, nil
}

// stripCodeFence removes a markdown code fence the model sometimes wraps
// around its JSON output.
func stripCodeFence(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}

	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return strings.TrimSpace(text)
}
