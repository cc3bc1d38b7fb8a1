package extract

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/sitzungslab/minutes/llm"
)

func TestParseTOPs_Numbered(t *testing.T) {
	response := `1. Begrüßung und Feststellung der Beschlussfähigkeit
2. Genehmigung der Niederschrift
2.1. Öffentlicher Teil
2.2. Nichtöffentlicher Teil
3. Haushaltssatzung 2026`

	got := ParseTOPs(response)
	want := []string{
		"Begrüßung und Feststellung der Beschlussfähigkeit",
		"Genehmigung der Niederschrift",
		"Öffentlicher Teil",
		"Nichtöffentlicher Teil",
		"Haushaltssatzung 2026",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ParseTOPs:\ngot:  %v\nwant: %v", got, want)
	}
}

func TestParseTOPs_MixedNumberingStyles(t *testing.T) {
	response := `I. Eröffnung
1) Haushalt
a) Anfragen`

	got := ParseTOPs(response)
	want := []string{"Eröffnung", "Haushalt", "Anfragen"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ParseTOPs:\ngot:  %v\nwant: %v", got, want)
	}
}

func TestParseTOPs_DropsBulletsAndMetadata(t *testing.T) {
	response := `1. Haushaltssatzung 2026
● Beschlussvorlage: 2026/014
- Unterpunkt ohne eigene Nummer
Drucksache 12/345
2. Verschiedenes`

	got := ParseTOPs(response)
	want := []string{"Haushaltssatzung 2026", "Verschiedenes"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ParseTOPs:\ngot:  %v\nwant: %v", got, want)
	}
}

func TestParseTOPs_UnnumberedTitles(t *testing.T) {
	response := `Begrüßung durch die Vorsitzende
Genehmigung der Tagesordnung`

	got := ParseTOPs(response)
	if len(got) != 2 {
		t.Errorf("expected unnumbered titles to be kept, got %v", got)
	}
}

func TestParseTOPs_Empty(t *testing.T) {
	if got := ParseTOPs("  \n \n"); len(got) != 0 {
		t.Errorf("expected no TOPs, got %v", got)
	}
}

type fakeChat struct {
	response string
	err      error
	lastReq  llm.ChatRequest
}

func (f *fakeChat) Name() string                         { return "fake" }
func (f *fakeChat) IsAvailable(ctx context.Context) bool { return true }
func (f *fakeChat) Chat(ctx context.Context, req llm.ChatRequest) (*llm.ChatResponse, error) {
	f.lastReq = req
	if f.err != nil {
		return nil, f.err
	}
	return &llm.ChatResponse{Content: f.response}, nil
}

func TestTOPsFromText(t *testing.T) {
	chat := &fakeChat{response: "1. Begrüßung\n2. Haushalt 2026"}
	e := New(chat, nil)

	tops, err := e.TOPsFromText(context.Background(), "Einladung zur Sitzung ...", Options{})
	if err != nil {
		t.Fatalf("TOPsFromText: %v", err)
	}
	if len(tops) != 2 || tops[1] != "Haushalt 2026" {
		t.Errorf("unexpected tops: %v", tops)
	}

	if chat.lastReq.Temperature != extractionTemperature {
		t.Errorf("expected temperature %v, got %v", extractionTemperature, chat.lastReq.Temperature)
	}
	if chat.lastReq.MaxTokens != extractionMaxTokens {
		t.Errorf("expected max tokens %d, got %d", extractionMaxTokens, chat.lastReq.MaxTokens)
	}
	if chat.lastReq.Messages[0].Content != DefaultSystemPrompt {
		t.Error("expected default system prompt")
	}
}

func TestTOPsFromText_CustomOptions(t *testing.T) {
	chat := &fakeChat{response: "1. Begrüßung"}
	e := New(chat, nil)

	_, err := e.TOPsFromText(context.Background(), "text", Options{
		Model:        "llama3.1:70b",
		SystemPrompt: "Extrahiere die TOPs.",
	})
	if err != nil {
		t.Fatalf("TOPsFromText: %v", err)
	}
	if chat.lastReq.Model != "llama3.1:70b" {
		t.Errorf("model override not applied: %q", chat.lastReq.Model)
	}
	if chat.lastReq.Messages[0].Content != "Extrahiere die TOPs." {
		t.Errorf("system prompt override not applied")
	}
}

func TestTOPsFromText_ChatError(t *testing.T) {
	chat := &fakeChat{err: errors.New("model not loaded")}
	e := New(chat, nil)

	if _, err := e.TOPsFromText(context.Background(), "text", Options{}); err == nil {
		t.Fatal("expected error")
	}
}

func TestTextFromPDF_Missing(t *testing.T) {
	if _, err := TextFromPDF("/nonexistent/einladung.pdf"); err == nil {
		t.Error("expected error for missing file")
	}
}
