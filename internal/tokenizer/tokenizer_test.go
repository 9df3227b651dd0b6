package tokenizer

import (
	"strings"
	"testing"
)

type testCounter struct{}

func (testCounter) Name() string { return "stub" }

func (testCounter) CountString(input string) (int, error) { return len(strings.Fields(input)), nil }

func TestCountTextUsesCounter(t *testing.T) {
	tokens, err := CountText(testCounter{}, "/tmp/a\n\t/tmp/a/b\n")
	if err != nil {
		t.Fatalf("CountText error: %v", err)
	}
	if tokens != 2 {
		t.Fatalf("expected 2 tokens, got %d", tokens)
	}
}

func TestCountTextRejectsNilCounter(t *testing.T) {
	if _, err := CountText(nil, "text"); err == nil {
		t.Fatalf("expected error for nil counter")
	}
}

func TestNewCounterRejectsUnsupportedModel(t *testing.T) {
	if _, _, err := NewCounter(Config{Model: "claude-3"}); err == nil {
		t.Fatalf("expected error for non-OpenAI model")
	}
}

func TestIsOpenAIModel(t *testing.T) {
	testCases := []struct {
		model    string
		expected bool
	}{
		{model: "gpt-4o", expected: true},
		{model: "text-embedding-3-small", expected: true},
		{model: "llama-3", expected: false},
		{model: "", expected: false},
	}
	for _, testCase := range testCases {
		if actual := isOpenAIModel(testCase.model); actual != testCase.expected {
			t.Fatalf("isOpenAIModel(%q) = %t, expected %t", testCase.model, actual, testCase.expected)
		}
	}
}

func TestNewCounterDefault(t *testing.T) {
	counter, model, err := NewCounter(Config{})
	if err != nil {
		t.Skipf("tokenizer encoding unavailable: %v", err)
	}
	if model != DefaultModel && model != defaultEncodingName {
		t.Fatalf("unexpected resolved model %q", model)
	}
	tokens, err := counter.CountString("hello world")
	if err != nil {
		t.Fatalf("CountString error: %v", err)
	}
	if tokens <= 0 {
		t.Fatalf("expected positive token count, got %d", tokens)
	}
}
