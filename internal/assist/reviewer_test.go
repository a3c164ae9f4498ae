package assist

import (
	"testing"

	"adboard/pkg/config"
)

func testConfig(key string) *config.Config {
	return &config.Config{OpenAIAPIKey: key, OpenAIModel: "gpt-4o-mini"}
}

func TestParseSuggestionPlainJSON(t *testing.T) {
	s, err := parseSuggestion(`{"approve": true, "confidence": 85, "reason": "looks fine"}`)
	if err != nil {
		t.Fatalf("parseSuggestion: %v", err)
	}
	if !s.Approve || s.Confidence != 85 || s.Reason != "looks fine" {
		t.Errorf("suggestion = %+v", s)
	}
}

func TestParseSuggestionWrappedInProse(t *testing.T) {
	content := "Here is my assessment:\n```json\n{\"approve\": false, \"confidence\": 60, \"reason\": \"price implausible\"}\n```"
	s, err := parseSuggestion(content)
	if err != nil {
		t.Fatalf("parseSuggestion: %v", err)
	}
	if s.Approve || s.Reason != "price implausible" {
		t.Errorf("suggestion = %+v", s)
	}
}

func TestParseSuggestionClampsConfidence(t *testing.T) {
	s, err := parseSuggestion(`{"approve": true, "confidence": 140}`)
	if err != nil {
		t.Fatal(err)
	}
	if s.Confidence != 100 {
		t.Errorf("confidence = %d, want clamped to 100", s.Confidence)
	}
}

func TestParseSuggestionRejectsGarbage(t *testing.T) {
	if _, err := parseSuggestion("I cannot help with that."); err == nil {
		t.Error("expected error for a response without JSON")
	}
}

func TestNewReviewerDisabledWithoutKey(t *testing.T) {
	// reviewer construction reads only the config; no network involved
	if r := NewReviewer(testConfig(""), nil); r != nil {
		t.Error("reviewer must be nil when no API key is configured")
	}
	if r := NewReviewer(testConfig("sk-test"), nil); r == nil {
		t.Error("reviewer must be enabled when a key is configured")
	}
}
