package transcription

import (
	"bufio"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/sitzungslab/minutes/api"
)

var transcriptLinePattern = regexp.MustCompile(`^\[([^\]]+)\]:\s*(.+)$`)

// ParseTranscriptFile reads a pre-generated transcript in the
// "[SPEAKER_XX]: text" format, one utterance per line. Any bracketed
// label is accepted, including UNKNOWN for undiarized segments. Lines
// that do not match the pattern are skipped. Parsed lines carry no
// timestamps.
func ParseTranscriptFile(path string) ([]api.TranscriptLine, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open transcript file: %w", err)
	}
	defer f.Close()

	var lines []api.TranscriptLine
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		m := transcriptLinePattern.FindStringSubmatch(strings.TrimSpace(scanner.Text()))
		if m == nil {
			continue
		}
		speaker := strings.TrimSpace(m[1])
		text := strings.TrimSpace(m[2])
		if speaker == "" || text == "" {
			continue
		}
		lines = append(lines, api.TranscriptLine{
			Speaker: speaker,
			Text:    text,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read transcript file: %w", err)
	}
	return lines, nil
}
