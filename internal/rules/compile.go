package rules

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/clipguard/clipguard/internal/config"
	"github.com/clipguard/clipguard/internal/normalize"
)

func BuildEngine(cfg *config.Config) (*Engine, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	extra := make([]Rule, 0, len(cfg.Detection.ExtraRules))
	for _, raw := range cfg.Detection.ExtraRules {
		compiled, err := compileRule(raw, cfg.BaseDir())
		if err != nil {
			return nil, fmt.Errorf("rule %s: %w", raw.ID, err)
		}
		extra = append(extra, compiled)
	}

	return NewEngine(Options{
		TokenChainMin:     cfg.Detection.TokenChainMin,
		HardcodedKeywords: cfg.HardcodedKeywordsEnabled(),
		Extra:             extra,
	})
}

func compileRule(raw config.Rule, baseDir string) (Rule, error) {
	var (
		matcher Matcher
		kind    Kind
		err     error
	)

	switch MatchType(raw.Match.Type) {
	case MatchRegex:
		if raw.Match.Pattern == "" {
			return Rule{}, fmt.Errorf("regex pattern is required")
		}
		kind = KindRegex
		matcher, err = NewRegexMatcher(raw.Match.Pattern)
	case MatchAho:
		if raw.Match.PatternsFile == "" {
			return Rule{}, fmt.Errorf("patternsFile is required")
		}
		patterns, readErr := readPatterns(resolvePath(baseDir, raw.Match.PatternsFile))
		if readErr != nil {
			return Rule{}, readErr
		}
		kind = KindKeywordList
		matcher, err = NewAhoMatcher(normalizePatterns(patterns))
	default:
		return Rule{}, fmt.Errorf("unknown match type %q", raw.Match.Type)
	}
	if err != nil {
		return Rule{}, err
	}

	return Rule{
		ID:      raw.ID,
		Kind:    kind,
		Source:  SourceConfig,
		Tags:    append([]string(nil), raw.Tags...),
		Matcher: matcher,
	}, nil
}

// Patterns are compared against normalized text, so they get the same treatment.
func normalizePatterns(patterns []string) []string {
	out := make([]string, 0, len(patterns))
	for _, p := range patterns {
		out = append(out, normalize.Text(p))
	}
	return out
}

func readPatterns(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = file.Close() }()

	var patterns []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		patterns = append(patterns, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return patterns, nil
}

func resolvePath(baseDir, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	if baseDir == "" {
		return path
	}
	return filepath.Join(baseDir, path)
}
