package rules

import (
	"strings"

	"github.com/clipguard/clipguard/internal/normalize"
)

// Engine holds the fixed, ordered rule set. It keeps no per-call state; the user
// keyword list is passed in on every call because it can change between calls.
type Engine struct {
	Rules []Rule
}

func NewEngine(opts Options) (*Engine, error) {
	rules, err := Builtin(opts)
	if err != nil {
		return nil, err
	}
	return &Engine{Rules: rules}, nil
}

// Classify evaluates the rules in order and stops at the first one that fires.
func (e *Engine) Classify(c Candidate, userKeywords []string) Verdict {
	normalized, ok := prepare(c)
	if !ok {
		return Verdict{}
	}

	for _, rule := range e.chain(userKeywords) {
		matched, evidence := rule.Evaluate(normalized)
		if !matched {
			continue
		}
		return Verdict{
			Suspicious: true,
			RuleID:     rule.ID,
			Kind:       rule.Kind,
			Evidence:   evidence,
		}
	}
	return Verdict{}
}

// Evaluate runs every rule and reports all matches, for diagnostics.
func (e *Engine) Evaluate(c Candidate, userKeywords []string) Result {
	result := Result{}

	normalized, ok := prepare(c)
	if !ok {
		return result
	}

	for _, rule := range e.chain(userKeywords) {
		matched, evidence := rule.Evaluate(normalized)
		if !matched {
			continue
		}
		result.Matches = append(result.Matches, Match{
			RuleID:   rule.ID,
			Kind:     rule.Kind,
			Source:   rule.Source,
			Tags:     append([]string(nil), rule.Tags...),
			Evidence: evidence,
		})
	}

	return result
}

func (e *Engine) chain(userKeywords []string) []Rule {
	var rules []Rule
	if e != nil {
		rules = make([]Rule, 0, len(e.Rules)+1)
		rules = append(rules, e.Rules...)
	}
	return append(rules, UserKeywordRule(userKeywords))
}

func prepare(c Candidate) (string, bool) {
	text := strings.TrimSpace(c.Text)
	if text == "" {
		return "", false
	}
	return normalize.Text(text), true
}
