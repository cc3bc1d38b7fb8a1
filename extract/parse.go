package extract

import (
	"regexp"
	"strings"
)

// Matches the numbering prefixes models produce: "1.", "1.1.", "IV.",
// "3)", "a)".
var numberingPattern = regexp.MustCompile(`^\s*(?:(?:\d+\.)+|[IVX]+\.|\d+\)|[a-z]\))\s*`)

// Metadata lines the extraction prompt tells the model to omit, kept
// as a second filter for when it does not listen.
var skipMarkers = []string{"beschlussvorlage", "antrag:", "drucksache", "seite"}

// ParseTOPs parses a model's numbered list into plain agenda item
// titles, numbering stripped. Bullet sub-points and metadata lines are
// dropped; unnumbered lines are kept when they look like titles.
func ParseTOPs(response string) []string {
	var tops []string
	for _, line := range strings.Split(strings.TrimSpace(response), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if loc := numberingPattern.FindStringIndex(line); loc != nil && loc[1] > 0 {
			if title := strings.TrimSpace(line[loc[1]:]); title != "" {
				tops = append(tops, title)
			}
			continue
		}

		if strings.HasPrefix(line, "●") || strings.HasPrefix(line, "•") ||
			strings.HasPrefix(line, "-") || strings.HasPrefix(line, "*") ||
			strings.HasPrefix(line, "–") {
			continue
		}
		if len(line) <= 5 {
			continue
		}
		lower := strings.ToLower(line)
		skip := false
		for _, marker := range skipMarkers {
			if strings.Contains(lower, marker) {
				skip = true
				break
			}
		}
		if !skip {
			tops = append(tops, line)
		}
	}
	return tops
}
