package llm

import (
	"fmt"
	"strings"

	"github.com/sitzungslab/minutes/api"
)

// DefaultSystemPrompt instructs the model to write in the register of
// an official German municipal meeting record (Niederschrift).
const DefaultSystemPrompt = `Du bist ein Experte für die Erstellung von Sitzungsprotokollen für deutsche Kommunalverwaltungen.

Deine Aufgabe ist es, aus einem Transkript eines Tagesordnungspunktes (TOP) eine Zusammenfassung im Stil einer offiziellen Niederschrift zu erstellen.

STIL:
- Formale Verwaltungssprache, dritte Person
- Beispiel: "Die Vorsitzende erläuterte den Sachverhalt.", "Herr Müller wies auf die Kostenfrage hin."
- Paraphrasieren statt wörtlich zitieren

INHALT:
- Wesentliche Diskussionspunkte und Argumente
- Getroffene Beschlüsse mit Abstimmungsergebnis (z.B. "einstimmig beschlossen", "mit 5:2 Stimmen angenommen")
- Wichtige Positionen der Teilnehmer
- Vereinbarte Maßnahmen oder nächste Schritte

IGNORIEREN:
- Verfahrensdetails (Mikrofon, Redezeit, Begrüßungen)
- Füllwörter, Versprecher, triviale Zwischenbemerkungen
- Technische Störungen

FORMAT:
- Kurze TOPs (< 10 Äußerungen): 1-2 Absätze
- Mittlere TOPs (10-50 Äußerungen): 2-3 Absätze
- Lange TOPs (> 50 Äußerungen): 3-5 Absätze
- Chronologischer Ablauf
- Direkt mit Inhalt beginnen, keine Einleitung
`

// FormatTranscript renders transcript lines as "Speaker: text", one
// line per utterance, the shape the prompts expect.
func FormatTranscript(lines []api.TranscriptLine) string {
	var b strings.Builder
	for i, line := range lines {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line.Speaker)
		b.WriteString(": ")
		b.WriteString(line.Text)
	}
	return b.String()
}

// SummaryPrompt builds the user message for summarizing one agenda item.
func SummaryPrompt(topTitle, transcript string) string {
	return fmt.Sprintf(`Erstelle eine Zusammenfassung für folgenden Tagesordnungspunkt:

TOP: %s

Transkript:
%s

Zusammenfassung:`, topTitle, transcript)
}

// SummaryMessages assembles the full conversation for one agenda item.
// Empty model options fall back to the defaults above.
func SummaryMessages(systemPrompt, topTitle, transcript string) []Message {
	if systemPrompt == "" {
		systemPrompt = DefaultSystemPrompt
	}
	return []Message{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: SummaryPrompt(topTitle, transcript)},
	}
}
