package rules

import (
	"errors"
	"strings"
)

// TokenChainMatcher fires when at least Min distinct tokens occur as substrings.
type TokenChainMatcher struct {
	Min    int
	tokens *AhoMatcher
}

func NewTokenChainMatcher(tokens []string, min int) (*TokenChainMatcher, error) {
	if min < 1 {
		return nil, errors.New("token chain minimum must be >= 1")
	}
	aho, err := NewAhoMatcher(lowerAll(tokens))
	if err != nil {
		return nil, err
	}
	return &TokenChainMatcher{Min: min, tokens: aho}, nil
}

func (m *TokenChainMatcher) Match(input string) (bool, string) {
	found := m.Tokens(input)
	if len(found) < m.Min {
		return false, ""
	}
	return true, snippet(strings.Join(found, "+"))
}

// Tokens lists the distinct chain tokens present in input.
func (m *TokenChainMatcher) Tokens(input string) []string {
	return m.tokens.MatchAll(input)
}
