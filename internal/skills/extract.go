package skills

import (
	"strings"
	"unicode"
)

// isTokenRune reports whether r belongs inside a skill token. Keeping
// + # . / as word characters preserves "c++", "c#", "node.js" and
// "ci/cd" through tokenization.
func isTokenRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) ||
		r == '+' || r == '#' || r == '.' || r == '/'
}

// tokenize splits text into lowercase candidate tokens, skipping
// stopwords and single characters other than the known one-letter
// languages ("c", "r" survive via the vocabulary check in the caller).
func tokenize(text string) []string {
	var tokens []string
	var word strings.Builder
	flush := func() {
		w := word.String()
		word.Reset()
		w = strings.TrimRight(w, ".")
		if w != "" {
			tokens = append(tokens, w)
		}
	}
	for _, r := range strings.ToLower(text) {
		if isTokenRune(r) {
			word.WriteRune(r)
		} else {
			flush()
		}
	}
	flush()
	return tokens
}

// containsPhrase reports whether phrase occurs in textLower on word
// boundaries, so "java" does not fire inside "javascript".
func containsPhrase(textLower, phrase string) bool {
	start := 0
	for {
		idx := strings.Index(textLower[start:], phrase)
		if idx < 0 {
			return false
		}
		idx += start
		end := idx + len(phrase)

		beforeOK := idx == 0 || !isTokenRune(rune(textLower[idx-1]))
		afterOK := end == len(textLower) || !isTokenRune(rune(textLower[end]))
		if beforeOK && afterOK {
			return true
		}
		start = idx + 1
		if start >= len(textLower) {
			return false
		}
	}
}

// ExtractSkills extracts the normalized skill set from free text by
// matching against the vocabulary. Multi-word phrases are matched
// first, then single tokens, then alias variations. Empty or
// whitespace-only input yields an empty set; the function never fails.
func (a *Analyzer) ExtractSkills(text string) SkillSet {
	found := make(SkillSet)
	if strings.TrimSpace(text) == "" {
		return found
	}
	vocab := a.Vocabulary()
	textLower := strings.ToLower(text)

	for _, phrase := range vocab.MultiWord {
		if containsPhrase(textLower, phrase) {
			found.Add(phrase)
		}
	}

	for _, tok := range tokenize(text) {
		if vocab.IsStopword(tok) {
			continue
		}
		if vocab.Has(tok) {
			found.Add(tok)
		}
	}

	for canonical, variations := range vocab.Variations {
		if found.Contains(canonical) {
			continue
		}
		for _, variation := range variations {
			if containsPhrase(textLower, variation) {
				found.Add(canonical)
				break
			}
		}
	}

	return found
}
