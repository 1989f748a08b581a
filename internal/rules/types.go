package rules

import "strings"

// Method names the clipboard API a candidate was captured from.
type Method string

const (
	MethodWrite     Method = "write"
	MethodWriteText Method = "writeText"
	MethodExecCopy  Method = "execCopy"
	MethodCopyEvent Method = "copyEvent"
	MethodSetData   Method = "setData"
	MethodUnknown   Method = "unknown"
)

func ParseMethod(raw string) Method {
	switch Method(strings.TrimSpace(raw)) {
	case MethodWrite:
		return MethodWrite
	case MethodWriteText:
		return MethodWriteText
	case MethodExecCopy:
		return MethodExecCopy
	case MethodCopyEvent:
		return MethodCopyEvent
	case MethodSetData:
		return MethodSetData
	default:
		return MethodUnknown
	}
}

// Candidate is one intercepted clipboard write. It is never persisted.
type Candidate struct {
	Method Method
	Text   string
}

type Kind string

type MatchType string

type Source string

const (
	KindRegex       Kind = "regex"
	KindTokenChain  Kind = "token_chain"
	KindKeywordList Kind = "keyword_list"
)

const (
	MatchRegex MatchType = "regex"
	MatchAho   MatchType = "aho"
)

const (
	SourceBuiltin Source = "builtin"
	SourceConfig  Source = "config"
	SourceUser    Source = "user"
)

type Rule struct {
	ID      string
	Kind    Kind
	Source  Source
	Tags    []string
	Matcher Matcher
}

// Evaluate reports whether the rule fires on already-normalized text.
func (r Rule) Evaluate(normalized string) (bool, string) {
	if r.Matcher == nil {
		return false, ""
	}
	return r.Matcher.Match(normalized)
}

type Match struct {
	RuleID   string
	Kind     Kind
	Source   Source
	Tags     []string
	Evidence string
}

type Result struct {
	Matches []Match
}

// Verdict is the classifier outcome for a single candidate.
type Verdict struct {
	Suspicious bool   `json:"suspicious"`
	RuleID     string `json:"matchedRule,omitempty"`
	Kind       Kind   `json:"kind,omitempty"`
	Evidence   string `json:"evidence,omitempty"`
}

// Matcher returns true if the input matches and an optional evidence snippet.
type Matcher interface {
	Match(input string) (bool, string)
}
