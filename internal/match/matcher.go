package match

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"resume-screener/internal/logger"
	"resume-screener/internal/resume"
)

// matchPrompt is the recruiter prompt sent to the model. The resume is
// embedded as the JSON document produced by resume.AsDocument and the
// required skills as a JSON array.
const matchPrompt = `You are an expert technical recruiter. Compare the following resume with the job description.
Respond in JSON with the following fields: score (0-10 float) and reasoning (2-3 bullet summary).
Resume JSON:
%s
Job Description:
%s
Job Title: %s
Required Skills: %s`

const defaultReasoning = "No reasoning provided."

// Generator produces a model completion for a prompt. *llm.Client
// satisfies it; tests substitute canned responses.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Result is a single resume-to-job score. ModelUsed is empty when the
// deterministic heuristic produced the result.
type Result struct {
	Score     float64 `json:"score"`
	Reasoning string  `json:"reasoning"`
	ModelUsed string  `json:"model_used,omitempty"`
}

// Matcher scores resumes against jobs. Whether the model path is
// available is decided once at construction: with a generator the
// matcher tries the model first and falls back to the heuristic on any
// failure, without one it goes straight to the heuristic.
type Matcher struct {
	generator Generator
	model     string
	useLLM    bool
	cache     *scoreCache
}

// NewMatcher builds a matcher. Pass a nil generator to force the
// heuristic path. Model responses are cached for cacheTTL per
// resume/job pair.
func NewMatcher(generator Generator, model string, cacheTTL time.Duration) *Matcher {
	useLLM := generator != nil
	if useLLM {
		logger.Info().Str("model", model).Msg("matcher using LLM scoring with heuristic fallback")
	} else {
		logger.Info().Msg("no LLM configured, matcher using heuristic scoring")
	}
	return &Matcher{
		generator: generator,
		model:     model,
		useLLM:    useLLM,
		cache:     newScoreCache(cacheTTL),
	}
}

// Score rates how well a parsed resume fits a job on a 0-10 scale. The
// model path is tried first when configured; any failure there falls
// back to the heuristic so Score always returns a usable result.
func (m *Matcher) Score(ctx context.Context, parsed *resume.ParsedResume, job JobProfile) Result {
	if m.useLLM {
		result, err := m.scoreWithModel(ctx, parsed, job)
		if err == nil {
			logger.Debug().
				Str("model", result.ModelUsed).
				Float64("score", result.Score).
				Msg("LLM scored resume")
			return result
		}
		logger.Warn().Err(err).Msg("LLM scoring failed, falling back to heuristic")
	}
	score, reasoning := Heuristic(parsed, job)
	return Result{Score: score, Reasoning: reasoning}
}

// CleanExpiredScores evicts stale cache entries. Intended to be called
// periodically from a background worker.
func (m *Matcher) CleanExpiredScores() {
	m.cache.CleanExpired()
}

func (m *Matcher) scoreWithModel(ctx context.Context, parsed *resume.ParsedResume, job JobProfile) (Result, error) {
	prompt, err := buildPrompt(parsed, job)
	if err != nil {
		return Result{}, err
	}

	if cached, ok := m.cache.Get(prompt); ok {
		return cached, nil
	}

	response, err := m.generator.Generate(ctx, prompt)
	if err != nil {
		return Result{}, err
	}

	fields := parseModelResponse(response)
	score, err := coerceScore(fields["score"])
	if err != nil {
		return Result{}, err
	}

	result := Result{
		Score:     clampScore(score),
		Reasoning: reasoningText(fields["reasoning"]),
		ModelUsed: m.model,
	}
	m.cache.Set(prompt, result)
	return result, nil
}

func buildPrompt(parsed *resume.ParsedResume, job JobProfile) (string, error) {
	resumeJSON, err := json.Marshal(parsed.AsDocument())
	if err != nil {
		return "", fmt.Errorf("failed to serialize resume: %w", err)
	}
	skillsJSON, err := json.Marshal(job.RequiredSkills)
	if err != nil {
		return "", fmt.Errorf("failed to serialize required skills: %w", err)
	}
	return fmt.Sprintf(matchPrompt, resumeJSON, job.Description, job.Title, skillsJSON), nil
}

// parseModelResponse decodes the model output leniently: a strict
// decode first, then the first balanced {...} region for responses
// wrapped in markdown or prose. Total failure yields an empty map so
// the caller sees score 0 rather than an error.
func parseModelResponse(text string) map[string]any {
	if text == "" {
		return map[string]any{}
	}

	var fields map[string]any
	if err := json.Unmarshal([]byte(text), &fields); err == nil {
		return fields
	}

	if region := extractJSON(text); region != "" {
		if err := json.Unmarshal([]byte(region), &fields); err == nil {
			return fields
		}
	}

	logger.Warn().Str("response", text).Msg("could not parse model response as JSON")
	return map[string]any{}
}

// extractJSON finds the first balanced JSON object in text. Handles
// responses where the model adds markdown fences or extra prose.
func extractJSON(text string) string {
	start := -1
	end := -1
	braceCount := 0

	for i, char := range text {
		if char == '{' {
			if start == -1 {
				start = i
			}
			braceCount++
		} else if char == '}' {
			braceCount--
			if braceCount == 0 && start != -1 {
				end = i + 1
				break
			}
		}
	}

	if start != -1 && end != -1 {
		return text[start:end]
	}

	return ""
}

// coerceScore accepts the numeric and stringified-numeric shapes
// models actually produce. A missing score counts as 0; a present but
// unusable one is an error so the caller can fall back.
func coerceScore(value any) (float64, error) {
	switch v := value.(type) {
	case nil:
		return 0, nil
	case float64:
		return v, nil
	case string:
		score, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, fmt.Errorf("model returned non-numeric score %q", v)
		}
		return score, nil
	default:
		return 0, fmt.Errorf("model returned score of unexpected type %T", value)
	}
}

func clampScore(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > 10 {
		return 10
	}
	return score
}

// reasoningText flattens the reasoning field: bullet lists are joined
// with newlines, blank or missing values get a stock message.
func reasoningText(value any) string {
	if list, ok := value.([]any); ok {
		lines := []string{}
		for _, item := range list {
			line := strings.TrimSpace(fmt.Sprint(item))
			if line != "" {
				lines = append(lines, line)
			}
		}
		return strings.Join(lines, "\n")
	}
	if text, ok := value.(string); ok && text != "" {
		return text
	}
	return defaultReasoning
}
