package llm

import (
	"strings"
	"testing"

	"github.com/sitzungslab/minutes/api"
)

func TestFormatTranscript(t *testing.T) {
	lines := []api.TranscriptLine{
		{Speaker: "Müller", Text: "Ich eröffne die Sitzung."},
		{Speaker: "Schmidt", Text: "Zur Tagesordnung habe ich eine Anmerkung."},
	}
	got := FormatTranscript(lines)
	want := "Müller: Ich eröffne die Sitzung.\nSchmidt: Zur Tagesordnung habe ich eine Anmerkung."
	if got != want {
		t.Errorf("FormatTranscript:\ngot:  %q\nwant: %q", got, want)
	}
}

func TestFormatTranscript_Empty(t *testing.T) {
	if got := FormatTranscript(nil); got != "" {
		t.Errorf("expected empty string, got %q", got)
	}
}

func TestSummaryPrompt_ContainsTitleAndTranscript(t *testing.T) {
	got := SummaryPrompt("TOP 3: Haushalt 2026", "Müller: Der Haushalt ist ausgeglichen.")
	if !strings.Contains(got, "TOP: TOP 3: Haushalt 2026") {
		t.Errorf("prompt missing title: %q", got)
	}
	if !strings.Contains(got, "Müller: Der Haushalt ist ausgeglichen.") {
		t.Errorf("prompt missing transcript: %q", got)
	}
}

func TestSummaryMessages_DefaultSystemPrompt(t *testing.T) {
	msgs := SummaryMessages("", "TOP 1", "text")
	if len(msgs) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(msgs))
	}
	if msgs[0].Role != "system" || msgs[0].Content != DefaultSystemPrompt {
		t.Errorf("expected default system prompt, got role=%q", msgs[0].Role)
	}
	if msgs[1].Role != "user" {
		t.Errorf("expected user message, got %q", msgs[1].Role)
	}
}

func TestSummaryMessages_CustomSystemPrompt(t *testing.T) {
	msgs := SummaryMessages("Fasse knapp zusammen.", "TOP 1", "text")
	if msgs[0].Content != "Fasse knapp zusammen." {
		t.Errorf("custom system prompt not used: %q", msgs[0].Content)
	}
}

func TestConfigApplyDefaults(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()
	if cfg.Provider != "ollama" {
		t.Errorf("expected ollama, got %q", cfg.Provider)
	}
	if cfg.Model != DefaultModel {
		t.Errorf("expected %q, got %q", DefaultModel, cfg.Model)
	}
	if cfg.Temperature != DefaultTemperature {
		t.Errorf("expected %v, got %v", DefaultTemperature, cfg.Temperature)
	}
	if cfg.MaxTokens != DefaultMaxTokens {
		t.Errorf("expected %d, got %d", DefaultMaxTokens, cfg.MaxTokens)
	}
}

func TestConfigValidate(t *testing.T) {
	cfg := Config{Provider: "ollama", Temperature: 3.5}
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for out-of-range temperature")
	}
}
