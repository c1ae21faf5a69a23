package parser

import (
	"regexp"
	"strings"
)

var (
	bulletRe       = regexp.MustCompile(`^[\x{2022}\x{25CF}\x{25AA}\x{2023}\x{00B7}*]\s*`)
	spaceRunRe     = regexp.MustCompile(`[ \t]+`)
	newlineRunRe   = regexp.MustCompile(`\n{3,}`)
	carriageReturn = strings.NewReplacer("\r\n", "\n", "\r", "\n", " ", " ")
)

// NormalizeText cleans extracted document text: line endings and
// non-breaking spaces are normalized, runs of spaces collapse, bullet
// glyphs become "- ", and runs of blank lines collapse to one.
func NormalizeText(text string) string {
	text = carriageReturn.Replace(text)

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		line = spaceRunRe.ReplaceAllString(line, " ")
		line = strings.TrimSpace(line)
		line = bulletRe.ReplaceAllString(line, "- ")
		lines[i] = line
	}
	text = strings.Join(lines, "\n")
	text = newlineRunRe.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}
