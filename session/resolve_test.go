package session

import (
	"testing"

	"github.com/sitzungslab/minutes/api"
)

func TestResolveSpeakers(t *testing.T) {
	lines := []api.TranscriptLine{
		{Speaker: "SPEAKER_00", Text: "Ich eröffne die Sitzung."},
		{Speaker: "SPEAKER_01", Text: "Danke."},
	}
	names := map[string]string{"SPEAKER_00": "Müller"}

	resolved := ResolveSpeakers(lines, names)

	if resolved[0].Speaker != "Müller" {
		t.Errorf("expected Müller, got %s", resolved[0].Speaker)
	}
	if resolved[1].Speaker != "SPEAKER_01" {
		t.Errorf("unmapped speaker must pass through, got %s", resolved[1].Speaker)
	}
	// Input is untouched.
	if lines[0].Speaker != "SPEAKER_00" {
		t.Errorf("input was mutated: %s", lines[0].Speaker)
	}
}

func TestResolveSpeakers_TrimsAndIgnoresBlank(t *testing.T) {
	lines := []api.TranscriptLine{
		{Speaker: "SPEAKER_00", Text: "a"},
		{Speaker: "SPEAKER_01", Text: "b"},
	}
	names := map[string]string{
		"SPEAKER_00": "  Frau Schmidt  ",
		"SPEAKER_01": "   ",
	}

	resolved := ResolveSpeakers(lines, names)

	if resolved[0].Speaker != "Frau Schmidt" {
		t.Errorf("expected trimmed name, got %q", resolved[0].Speaker)
	}
	if resolved[1].Speaker != "SPEAKER_01" {
		t.Errorf("blank mapping must fall back to raw label, got %q", resolved[1].Speaker)
	}
}

func TestResolveSpeakers_Empty(t *testing.T) {
	if got := ResolveSpeakers(nil, nil); len(got) != 0 {
		t.Errorf("expected empty result, got %v", got)
	}
}
