package match

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubGenerator struct {
	response string
	err      error
	calls    int
	prompts  []string
}

func (s *stubGenerator) Generate(_ context.Context, prompt string) (string, error) {
	s.calls++
	s.prompts = append(s.prompts, prompt)
	if s.err != nil {
		return "", s.err
	}
	return s.response, nil
}

func TestMatcherUsesModelScore(t *testing.T) {
	stub := &stubGenerator{response: `{"score": 8.5, "reasoning": ["Strong skill overlap", "Experience exceeds requirement"]}`}
	matcher := NewMatcher(stub, "gpt-4o-mini", time.Minute)

	result := matcher.Score(context.Background(), sampleParsed(), sampleJob())

	assert.Equal(t, 8.5, result.Score)
	assert.Equal(t, "Strong skill overlap\nExperience exceeds requirement", result.Reasoning)
	assert.Equal(t, "gpt-4o-mini", result.ModelUsed)
	assert.Equal(t, 1, stub.calls)
}

func TestMatcherParsesWrappedResponse(t *testing.T) {
	stub := &stubGenerator{response: "Here is my assessment:\n```json\n{\"score\": 7.2, \"reasoning\": \"Solid backend profile\"}\n```"}
	matcher := NewMatcher(stub, "llama3", time.Minute)

	result := matcher.Score(context.Background(), sampleParsed(), sampleJob())

	assert.Equal(t, 7.2, result.Score)
	assert.Equal(t, "Solid backend profile", result.Reasoning)
	assert.Equal(t, "llama3", result.ModelUsed)
}

func TestMatcherGarbageResponseScoresZero(t *testing.T) {
	stub := &stubGenerator{response: "I cannot rate this candidate."}
	matcher := NewMatcher(stub, "gpt-4o-mini", time.Minute)

	result := matcher.Score(context.Background(), sampleParsed(), sampleJob())

	// A response arrived, so the model path stands even with nothing usable in it.
	assert.Equal(t, 0.0, result.Score)
	assert.Equal(t, defaultReasoning, result.Reasoning)
	assert.Equal(t, "gpt-4o-mini", result.ModelUsed)
}

func TestMatcherTransportErrorFallsBackToHeuristic(t *testing.T) {
	stub := &stubGenerator{err: errors.New("connection refused")}
	matcher := NewMatcher(stub, "gpt-4o-mini", time.Minute)

	parsed := sampleParsed()
	job := sampleJob()
	result := matcher.Score(context.Background(), parsed, job)

	wantScore, wantReasoning := Heuristic(parsed, job)
	assert.Equal(t, wantScore, result.Score)
	assert.Equal(t, wantReasoning, result.Reasoning)
	assert.Empty(t, result.ModelUsed)
}

func TestMatcherNonNumericScoreFallsBackToHeuristic(t *testing.T) {
	stub := &stubGenerator{response: `{"score": "excellent", "reasoning": "Great fit"}`}
	matcher := NewMatcher(stub, "gpt-4o-mini", time.Minute)

	parsed := sampleParsed()
	job := sampleJob()
	result := matcher.Score(context.Background(), parsed, job)

	wantScore, _ := Heuristic(parsed, job)
	assert.Equal(t, wantScore, result.Score)
	assert.Empty(t, result.ModelUsed)
}

func TestMatcherCoercesStringScore(t *testing.T) {
	stub := &stubGenerator{response: `{"score": "6.5", "reasoning": "Decent"}`}
	matcher := NewMatcher(stub, "gpt-4o-mini", time.Minute)

	result := matcher.Score(context.Background(), sampleParsed(), sampleJob())

	assert.Equal(t, 6.5, result.Score)
	assert.Equal(t, "gpt-4o-mini", result.ModelUsed)
}

func TestMatcherClampsModelScore(t *testing.T) {
	stub := &stubGenerator{response: `{"score": 42, "reasoning": "Overenthusiastic"}`}
	matcher := NewMatcher(stub, "gpt-4o-mini", time.Minute)
	result := matcher.Score(context.Background(), sampleParsed(), sampleJob())
	assert.Equal(t, 10.0, result.Score)

	stub = &stubGenerator{response: `{"score": -3, "reasoning": "Confused"}`}
	matcher = NewMatcher(stub, "gpt-4o-mini", time.Minute)
	result = matcher.Score(context.Background(), sampleParsed(), sampleJob())
	assert.Equal(t, 0.0, result.Score)
}

func TestMatcherNilGeneratorUsesHeuristic(t *testing.T) {
	matcher := NewMatcher(nil, "", time.Minute)

	parsed := sampleParsed()
	job := sampleJob()
	result := matcher.Score(context.Background(), parsed, job)

	wantScore, wantReasoning := Heuristic(parsed, job)
	assert.Equal(t, wantScore, result.Score)
	assert.Equal(t, wantReasoning, result.Reasoning)
	assert.Empty(t, result.ModelUsed)
}

func TestMatcherCachesModelResults(t *testing.T) {
	stub := &stubGenerator{response: `{"score": 9.1, "reasoning": "Cached"}`}
	matcher := NewMatcher(stub, "gpt-4o-mini", time.Minute)

	first := matcher.Score(context.Background(), sampleParsed(), sampleJob())
	second := matcher.Score(context.Background(), sampleParsed(), sampleJob())

	assert.Equal(t, first, second)
	assert.Equal(t, 1, stub.calls)

	other := sampleJob()
	other.Title = "Staff Engineer"
	matcher.Score(context.Background(), sampleParsed(), other)
	assert.Equal(t, 2, stub.calls)
}

func TestMatcherCacheExpires(t *testing.T) {
	stub := &stubGenerator{response: `{"score": 5, "reasoning": "Short lived"}`}
	matcher := NewMatcher(stub, "gpt-4o-mini", time.Nanosecond)

	matcher.Score(context.Background(), sampleParsed(), sampleJob())
	time.Sleep(5 * time.Millisecond)
	matcher.Score(context.Background(), sampleParsed(), sampleJob())

	assert.Equal(t, 2, stub.calls)
}

func TestMatcherPromptContents(t *testing.T) {
	stub := &stubGenerator{response: `{"score": 5}`}
	matcher := NewMatcher(stub, "gpt-4o-mini", time.Minute)

	matcher.Score(context.Background(), sampleParsed(), sampleJob())

	require.Len(t, stub.prompts, 1)
	prompt := stub.prompts[0]
	assert.Contains(t, prompt, "expert technical recruiter")
	assert.Contains(t, prompt, `"candidate_name":"Jane Doe"`)
	assert.Contains(t, prompt, "Job Title: Backend Engineer")
	assert.Contains(t, prompt, "4 years of experience")
	assert.Contains(t, prompt, `["Python","FastAPI","Docker"]`)
}

func TestParseModelResponse(t *testing.T) {
	cases := []struct {
		name string
		text string
		want map[string]any
	}{
		{"strict", `{"score": 5}`, map[string]any{"score": 5.0}},
		{"fenced", "```json\n{\"score\": 5}\n```", map[string]any{"score": 5.0}},
		{"prose around", `Sure! {"score": 5} Hope that helps.`, map[string]any{"score": 5.0}},
		{"nested braces", `{"score": 5, "extra": {"depth": 1}}`, map[string]any{"score": 5.0, "extra": map[string]any{"depth": 1.0}}},
		{"empty", "", map[string]any{}},
		{"unbalanced", `{"score": 5`, map[string]any{}},
		{"no json at all", "plain refusal", map[string]any{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, parseModelResponse(tc.text))
		})
	}
}

func TestExtractJSON(t *testing.T) {
	assert.Equal(t, `{"a": 1}`, extractJSON(`text before {"a": 1} text after`))
	assert.Equal(t, `{"a": {"b": 2}}`, extractJSON(`{"a": {"b": 2}} trailing {"c": 3}`))
	assert.Equal(t, "", extractJSON("no braces here"))
	assert.Equal(t, "", extractJSON("{never closed"))
}

func TestReasoningText(t *testing.T) {
	assert.Equal(t, "a\nb", reasoningText([]any{"a", " b "}))
	assert.Equal(t, "x", reasoningText([]any{"", "x", "  "}))
	assert.Equal(t, "plain", reasoningText("plain"))
	assert.Equal(t, defaultReasoning, reasoningText(nil))
	assert.Equal(t, defaultReasoning, reasoningText(""))
	assert.Equal(t, defaultReasoning, reasoningText(42.0))
}
