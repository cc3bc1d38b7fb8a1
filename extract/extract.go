package extract

import (
	"context"
	"fmt"

	"github.com/sitzungslab/minutes/llm"
	"github.com/sitzungslab/minutes/logger"
)

// DefaultSystemPrompt instructs the model to list every agenda item
// from a German committee meeting invitation, nothing else.
const DefaultSystemPrompt = `Du bist ein Experte für deutsche Kommunalverwaltung und analysierst Einladungen zu Ausschusssitzungen.

Deine Aufgabe ist es, alle Tagesordnungspunkte (TOPs) aus dem Dokument zu extrahieren.

REGELN:
- Extrahiere ALLE TOPs aus öffentlichen und nichtöffentlichen Teilen
- Behalte die ursprüngliche Nummerierung bei (1., 2., 2.1., 2.2., etc.)
- Gib NUR den TOP-Titel zurück, ohne Zusatzinfos wie:
  - "Beschlussvorlage: XXX"
  - "Antrag: XXX"
  - "Drucksache: XXX"
- Entferne Unterpunkte mit Aufzählungszeichen (●, •, -) - diese sind keine eigenständigen TOPs
- Jeder TOP kommt auf eine eigene Zeile

FORMAT DER AUSGABE:
1. [Erster TOP-Titel]
2. [Zweiter TOP-Titel]
2.1. [Unter-TOP falls vorhanden]
...

Gib NUR die nummerierte Liste zurück, keine Erklärungen oder Einleitungen.`

// Extraction tuning. Very low temperature keeps the list parseable;
// agenda lists can be long, so the token cap is higher than for
// summaries.
const (
	extractionTemperature = 0.1
	extractionMaxTokens   = 2048
)

// Options override the model and prompt for one extraction.
type Options struct {
	Model        string
	SystemPrompt string
}

// Extractor turns invitation PDFs into agenda item titles.
type Extractor struct {
	chat llm.Provider
	log  *logger.Logger
}

// New creates an Extractor on top of a chat backend.
func New(chat llm.Provider, log *logger.Logger) *Extractor {
	if log == nil {
		log = logger.GetGlobalLogger()
	}
	return &Extractor{
		chat: chat,
		log:  log.WithComponent("extract"),
	}
}

// TOPsFromPDF extracts agenda item titles from a PDF file.
func (e *Extractor) TOPsFromPDF(ctx context.Context, pdfPath string, opts Options) ([]string, error) {
	text, err := TextFromPDF(pdfPath)
	if err != nil {
		return nil, fmt.Errorf("PDF-Text konnte nicht extrahiert werden: %w", err)
	}
	e.log.Debug("PDF text extracted", logger.Fields("chars", len(text)))
	return e.TOPsFromText(ctx, text, opts)
}

// TOPsFromText extracts agenda item titles from already extracted text.
func (e *Extractor) TOPsFromText(ctx context.Context, text string, opts Options) ([]string, error) {
	systemPrompt := opts.SystemPrompt
	if systemPrompt == "" {
		systemPrompt = DefaultSystemPrompt
	}

	userPrompt := fmt.Sprintf(`Extrahiere alle Tagesordnungspunkte aus diesem Einladungsdokument:

%s

TOPs:`, text)

	resp, err := e.chat.Chat(ctx, llm.ChatRequest{
		Model: opts.Model,
		Messages: []llm.Message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		Temperature: extractionTemperature,
		MaxTokens:   extractionMaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("TOP-Extraktion fehlgeschlagen: %w", err)
	}

	tops := ParseTOPs(resp.Content)
	e.log.Info("Agenda items extracted", logger.Fields("count", len(tops)))
	return tops, nil
}
