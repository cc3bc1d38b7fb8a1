package transcription

import (
	"strings"

	"github.com/sitzungslab/minutes/api"
	"github.com/sitzungslab/minutes/diarization"
)

// UnknownSpeaker labels segments no diarization turn overlaps.
const UnknownSpeaker = "UNKNOWN"

// AssignSpeakers labels each segment with the speaker whose diarization
// turn overlaps it the most. Segments without any overlap keep their
// existing label, or UnknownSpeaker if they have none.
func AssignSpeakers(segments []Segment, turns []diarization.Turn) []Segment {
	out := make([]Segment, len(segments))
	for i, seg := range segments {
		out[i] = seg
		best := 0.0
		for _, turn := range turns {
			overlap := min(seg.End, turn.End) - max(seg.Start, turn.Start)
			if overlap > best {
				best = overlap
				out[i].Speaker = turn.Speaker
			}
		}
		if out[i].Speaker == "" {
			out[i].Speaker = UnknownSpeaker
		}
	}
	return out
}

// MergeLines converts speaker-labeled segments into transcript lines,
// merging consecutive segments of the same speaker into one line.
// Timestamps are kept for audio sync; merging extends the end time.
// Segments with blank text are dropped.
func MergeLines(segments []Segment) []api.TranscriptLine {
	lines := make([]api.TranscriptLine, 0, len(segments))
	for _, seg := range segments {
		text := strings.TrimSpace(seg.Text)
		if text == "" {
			continue
		}
		speaker := seg.Speaker
		if speaker == "" {
			speaker = UnknownSpeaker
		}
		if n := len(lines); n > 0 && lines[n-1].Speaker == speaker {
			lines[n-1].Text += " " + text
			lines[n-1].End = seg.End
			continue
		}
		lines = append(lines, api.TranscriptLine{
			Speaker: speaker,
			Text:    text,
			Start:   seg.Start,
			End:     seg.End,
		})
	}
	return lines
}
