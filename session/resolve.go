package session

import (
	"strings"

	"github.com/sitzungslab/minutes/api"
)

// ResolveSpeakers returns a new line sequence with each speaker label
// replaced by its trimmed display name, when one is mapped and non-blank.
// Unmapped labels pass through unchanged. The input is not mutated: the
// stored transcript must keep raw labels so later name edits still apply.
func ResolveSpeakers(lines []api.TranscriptLine, names map[string]string) []api.TranscriptLine {
	out := make([]api.TranscriptLine, len(lines))
	for i, line := range lines {
		out[i] = line
		if display, ok := names[line.Speaker]; ok {
			if trimmed := strings.TrimSpace(display); trimmed != "" {
				out[i].Speaker = trimmed
			}
		}
	}
	return out
}
