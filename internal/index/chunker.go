// Package index provides semantic retrieval over resume text: a
// sliding-window chunker, a Gemini embedding client, and an in-memory
// vector store searched by cosine similarity. Retrieval is best-effort
// everywhere: failures yield empty results so callers can fall back to
// non-semantic analysis.
package index

import "strings"

// Chunking defaults: windows overlap so sentence fragments at chunk
// edges still appear whole in a neighbor.
const (
	DefaultMaxChars = 600
	DefaultOverlap  = 120
)

// Chunk splits text into overlapping segments of at most maxChars
// characters. Non-positive arguments select the defaults; overlap is
// clamped below maxChars to guarantee forward progress.
func Chunk(text string, maxChars, overlap int) []string {
	if maxChars <= 0 {
		maxChars = DefaultMaxChars
	}
	if overlap < 0 || overlap >= maxChars {
		overlap = DefaultOverlap
		if overlap >= maxChars {
			overlap = maxChars / 5
		}
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	runes := []rune(text)
	if len(runes) <= maxChars {
		return []string{text}
	}

	var chunks []string
	step := maxChars - overlap
	for start := 0; start < len(runes); start += step {
		end := start + maxChars
		if end > len(runes) {
			end = len(runes)
		}
		chunk := strings.TrimSpace(string(runes[start:end]))
		if chunk != "" {
			chunks = append(chunks, chunk)
		}
		if end == len(runes) {
			break
		}
	}
	return chunks
}
