package rules

const (
	RuleMalicious        = "MALICIOUS_RE"
	RulePowerShellFlags  = "POWERSHELL_FLAGS_RE"
	RuleHTAAppData       = "HTA_APPDATA_RE"
	RuleURLThenCmd       = "URL_THEN_CMD_RE"
	RuleTokenChain       = "TOKEN_CHAIN"
	RuleHardcodedKeyword = "HARDCODED_KEYWORD"
	RuleUserKeyword      = "USER_KEYWORD"
)

const DefaultTokenChainMin = 2

// Signature patterns are matched against normalized (lowercased) text; (?i) keeps
// them correct when evaluated on raw input too.
const (
	maliciousPattern       = `(?i)\b(powershell|invoke-webrequest|start-process|mshta(\.exe)?|cmd(\.exe)?|wget|curl|bitsadmin|certutil|rundll32|iex|invoke-expression|downloadstring)\b`
	powerShellFlagsPattern = `(?i)-(?:noprofile|executionpolicy|encodedcommand|enc|command)\b`
	htaAppDataPattern      = `(?i)(%appdata%|\\appdata\\|\.hta)`
	urlThenCmdPattern      = `(?i)https?://\S+.*(?:;|&&|\||` + "`" + `|\$\(.*\)|start-process)\b`
)

// ChainTokens are individually ambiguous; only their co-occurrence is suspicious.
var ChainTokens = []string{
	"powershell", "invoke-webrequest", "start-process", "mshta", "cmd",
	"wget", "curl", "bitsadmin", "certutil", "rundll32", "iex", "invoke-expression",
}

// HardcodedKeywords is intentionally broad ("id", "#") and can be switched off.
var HardcodedKeywords = []string{
	"verification", "id", "#", "powershell", "mshta.exe",
	"-noprofile", "-executionpolicy", "-enc", "invoke-expression", "iex",
}

type Options struct {
	TokenChainMin     int
	HardcodedKeywords bool
	// Extra rules run after the signature regexes and before the token chain.
	Extra []Rule
}

func DefaultOptions() Options {
	return Options{TokenChainMin: DefaultTokenChainMin, HardcodedKeywords: true}
}

// Builtin returns the ordered rule set. The user keyword rule is not included;
// it is built per classification from the current keyword list.
func Builtin(opts Options) ([]Rule, error) {
	min := opts.TokenChainMin
	if min == 0 {
		min = DefaultTokenChainMin
	}
	chain, err := NewTokenChainMatcher(ChainTokens, min)
	if err != nil {
		return nil, err
	}

	rules := []Rule{
		signature(RuleMalicious, maliciousPattern, "executable"),
		signature(RulePowerShellFlags, powerShellFlagsPattern, "flag"),
		signature(RuleHTAAppData, htaAppDataPattern, "path"),
		signature(RuleURLThenCmd, urlThenCmdPattern, "chaining"),
	}
	rules = append(rules, opts.Extra...)
	rules = append(rules, Rule{
		ID:      RuleTokenChain,
		Kind:    KindTokenChain,
		Source:  SourceBuiltin,
		Tags:    []string{"chaining"},
		Matcher: chain,
	})
	if opts.HardcodedKeywords {
		rules = append(rules, Rule{
			ID:      RuleHardcodedKeyword,
			Kind:    KindKeywordList,
			Source:  SourceBuiltin,
			Tags:    []string{"keyword"},
			Matcher: NewKeywordMatcher(HardcodedKeywords),
		})
	}
	return rules, nil
}

func signature(id, pattern, tag string) Rule {
	return Rule{
		ID:      id,
		Kind:    KindRegex,
		Source:  SourceBuiltin,
		Tags:    []string{"signature", tag},
		Matcher: mustRegex(pattern),
	}
}

// UserKeywordRule wraps the caller's keyword list as the last rule in the chain.
func UserKeywordRule(keywords []string) Rule {
	return Rule{
		ID:      RuleUserKeyword,
		Kind:    KindKeywordList,
		Source:  SourceUser,
		Tags:    []string{"keyword"},
		Matcher: NewKeywordMatcher(keywords),
	}
}
