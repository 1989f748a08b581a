package rules

import (
	"strings"

	"github.com/clipguard/clipguard/internal/normalize"
)

// KeywordMatcher fires when any keyword occurs as a substring.
// A matcher built from an empty list never fires.
type KeywordMatcher struct {
	aho *AhoMatcher
}

func NewKeywordMatcher(keywords []string) *KeywordMatcher {
	cleaned := CleanKeywords(keywords)
	if len(cleaned) == 0 {
		return &KeywordMatcher{}
	}
	aho, err := NewAhoMatcher(cleaned)
	if err != nil {
		return &KeywordMatcher{}
	}
	return &KeywordMatcher{aho: aho}
}

func (m *KeywordMatcher) Match(input string) (bool, string) {
	if m == nil || m.aho == nil {
		return false, ""
	}
	return m.aho.Match(input)
}

// CleanKeywords normalizes keywords the way candidate text is normalized
// and drops blanks and duplicates.
func CleanKeywords(keywords []string) []string {
	out := make([]string, 0, len(keywords))
	seen := make(map[string]struct{}, len(keywords))
	for _, k := range keywords {
		k = normalize.Text(strings.TrimSpace(k))
		if k == "" {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}

func lowerAll(values []string) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = strings.ToLower(v)
	}
	return out
}
