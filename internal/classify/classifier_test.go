package classify

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubProvider struct {
	reply  string
	err    error
	prompt string
}

func (p *stubProvider) Complete(_ context.Context, prompt string, _ CompletionOptions) (string, error) {
	p.prompt = prompt
	return p.reply, p.err
}

func (p *stubProvider) Name() string { return "stub" }

func TestClassifyDisabledWithoutProvider(t *testing.T) {
	classifier := NewClassifier(nil, zap.NewNop())

	suggestion := classifier.Classify(context.Background(), "cannot log in")

	assert.Nil(t, suggestion.Category)
	assert.Nil(t, suggestion.Priority)
	assert.False(t, classifier.Enabled())
}

func TestClassifyParsesBareJSON(t *testing.T) {
	provider := &stubProvider{reply: `{"category": "technical", "priority": "high"}`}
	classifier := NewClassifier(provider, zap.NewNop())

	suggestion := classifier.Classify(context.Background(), "app crash on login")

	require.NotNil(t, suggestion.Category)
	require.NotNil(t, suggestion.Priority)
	assert.Equal(t, "technical", *suggestion.Category)
	assert.Equal(t, "high", *suggestion.Priority)
}

func TestClassifyStripsFencedOutput(t *testing.T) {
	provider := &stubProvider{reply: "```json\n{\"category\":\"technical\",\"priority\":\"high\"}\n```"}
	classifier := NewClassifier(provider, zap.NewNop())

	suggestion := classifier.Classify(context.Background(), "crash")

	require.NotNil(t, suggestion.Category)
	require.NotNil(t, suggestion.Priority)
	assert.Equal(t, "technical", *suggestion.Category)
	assert.Equal(t, "high", *suggestion.Priority)
}

func TestClassifyToleratesSurroundingProse(t *testing.T) {
	provider := &stubProvider{reply: `Sure, here is the classification: {"category": "billing", "priority": "low"} Hope that helps!`}
	classifier := NewClassifier(provider, zap.NewNop())

	suggestion := classifier.Classify(context.Background(), "double charge on invoice")

	require.NotNil(t, suggestion.Category)
	require.NotNil(t, suggestion.Priority)
	assert.Equal(t, "billing", *suggestion.Category)
	assert.Equal(t, "low", *suggestion.Priority)
}

func TestClassifyInvalidPriorityKeepsValidCategory(t *testing.T) {
	provider := &stubProvider{reply: `{"category": "billing", "priority": "urgent"}`}
	classifier := NewClassifier(provider, zap.NewNop())

	suggestion := classifier.Classify(context.Background(), "refund request")

	require.NotNil(t, suggestion.Category)
	assert.Equal(t, "billing", *suggestion.Category)
	assert.Nil(t, suggestion.Priority)
}

func TestClassifyLowercasesValues(t *testing.T) {
	provider := &stubProvider{reply: `{"category": "Technical", "priority": "CRITICAL"}`}
	classifier := NewClassifier(provider, zap.NewNop())

	suggestion := classifier.Classify(context.Background(), "production outage")

	require.NotNil(t, suggestion.Category)
	require.NotNil(t, suggestion.Priority)
	assert.Equal(t, "technical", *suggestion.Category)
	assert.Equal(t, "critical", *suggestion.Priority)
}

func TestClassifyProviderErrorDegrades(t *testing.T) {
	provider := &stubProvider{err: errors.New("connection reset")}
	classifier := NewClassifier(provider, zap.NewNop())

	suggestion := classifier.Classify(context.Background(), "anything")

	assert.Nil(t, suggestion.Category)
	assert.Nil(t, suggestion.Priority)
}

func TestClassifyMalformedReplyDegrades(t *testing.T) {
	provider := &stubProvider{reply: "I could not decide on a classification."}
	classifier := NewClassifier(provider, zap.NewNop())

	suggestion := classifier.Classify(context.Background(), "anything")

	assert.Nil(t, suggestion.Category)
	assert.Nil(t, suggestion.Priority)
}

func TestClassifyPromptEmbedsDescriptionAndVocabularies(t *testing.T) {
	provider := &stubProvider{reply: `{"category": "general", "priority": "low"}`}
	classifier := NewClassifier(provider, zap.NewNop())

	classifier.Classify(context.Background(), "printer on fire")

	assert.Contains(t, provider.prompt, "printer on fire")
	for _, word := range []string{"billing", "technical", "account", "general", "low", "medium", "high", "critical"} {
		assert.Contains(t, provider.prompt, word)
	}
}

func TestExtractJSON(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"bare object", `{"a":1}`, `{"a":1}`},
		{"fenced", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"fenced no tag", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"leading prose", `the answer: {"a":1}`, `{"a":1}`},
		{"trailing prose", `{"a":1} done`, `{"a":1}`},
		{"whitespace", "  {\"a\":1}\n", `{"a":1}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := extractJSON(tc.in)
			assert.Equal(t, tc.want, strings.TrimSpace(got))
		})
	}
}
