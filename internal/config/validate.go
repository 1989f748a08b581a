package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

type ValidationError struct {
	Problems []string
}

func (v *ValidationError) Add(format string, args ...any) {
	v.Problems = append(v.Problems, fmt.Sprintf(format, args...))
}

func (v *ValidationError) Error() string {
	return fmt.Sprintf("%d validation error(s)", len(v.Problems))
}

// reservedRuleIDs are the identifiers of built-in rules.
var reservedRuleIDs = map[string]struct{}{
	"MALICIOUS_RE":        {},
	"POWERSHELL_FLAGS_RE": {},
	"HTA_APPDATA_RE":      {},
	"URL_THEN_CMD_RE":     {},
	"TOKEN_CHAIN":         {},
	"HARDCODED_KEYWORD":   {},
	"USER_KEYWORD":        {},
}

func (c *Config) Validate() error {
	v := &ValidationError{}

	if c.ConfigVersion != 1 {
		v.Add("configVersion must be 1")
	}

	switch c.Store.Driver {
	case StoreMemory:
	case StoreFile, StoreSQLite:
		if c.Store.Path == "" {
			v.Add("store.path is required for driver %s", c.Store.Driver)
		} else if err := ensureWritable(c.resolvePath(c.Store.Path)); err != nil {
			v.Add("store.path invalid: %v", err)
		}
	default:
		v.Add("store.driver must be memory|file|sqlite")
	}

	if c.Detection.TokenChainMin < 1 {
		v.Add("detection.tokenChainMin must be >= 1")
	}

	ruleIDs := map[string]struct{}{}
	for i, rule := range c.Detection.ExtraRules {
		if rule.ID == "" {
			v.Add("detection.extraRules[%d].id is required", i)
		} else if _, reserved := reservedRuleIDs[rule.ID]; reserved {
			v.Add("detection.extraRules[%d].id %q is reserved", i, rule.ID)
		} else if _, exists := ruleIDs[rule.ID]; exists {
			v.Add("detection.extraRules[%d].id %q is duplicated", i, rule.ID)
		} else {
			ruleIDs[rule.ID] = struct{}{}
		}

		switch rule.Match.Type {
		case "aho":
			if rule.Match.PatternsFile == "" {
				v.Add("detection.extraRules[%d].match.patternsFile is required for aho", i)
			} else if err := requireFile(c.resolvePath(rule.Match.PatternsFile)); err != nil {
				v.Add("detection.extraRules[%d].match.patternsFile invalid: %v", i, err)
			}
		case "regex":
			if rule.Match.Pattern == "" {
				v.Add("detection.extraRules[%d].match.pattern is required for regex", i)
			} else if _, err := regexp.Compile(rule.Match.Pattern); err != nil {
				v.Add("detection.extraRules[%d].match.pattern invalid: %v", i, err)
			}
		case "":
			v.Add("detection.extraRules[%d].match.type is required", i)
		default:
			v.Add("detection.extraRules[%d].match.type must be aho|regex", i)
		}
	}

	switch c.Whitelist.Match {
	case MatchExact, MatchSubdomain, MatchRegistrable:
	default:
		v.Add("whitelist.match must be exact|subdomain|registrable")
	}
	for i, host := range c.Whitelist.Seed {
		if !strings.Contains(host, ".") {
			v.Add("whitelist.seed[%d] %q is not a hostname", i, host)
		}
	}

	if c.Alerts.PreviewMax < 1 {
		v.Add("alerts.previewMax must be > 0")
	}
	if c.Alerts.Throttle.Enabled {
		if c.Alerts.Throttle.RPS <= 0 {
			v.Add("alerts.throttle.rps must be > 0")
		}
		if c.Alerts.Throttle.Burst <= 0 {
			v.Add("alerts.throttle.burst must be > 0")
		}
	}

	if c.Telemetry.Endpoint != "" {
		if err := validateURL(c.Telemetry.Endpoint); err != nil {
			v.Add("telemetry.endpoint invalid: %v", err)
		}
	}
	if c.Telemetry.RawCandidates && c.Telemetry.Endpoint == "" && c.Logging.TelemetryLog == "" {
		v.Add("telemetry.rawCandidates needs telemetry.endpoint or logging.telemetryLog")
	}
	if c.Telemetry.Timeout < 0 {
		v.Add("telemetry.timeout must be >= 0")
	}

	if c.Reports.Dir != "" {
		if err := ensureDir(c.resolvePath(c.Reports.Dir)); err != nil {
			v.Add("reports.dir invalid: %v", err)
		}
	}

	if err := validateListen(c.Server.Listen); err != nil {
		v.Add("server.listen invalid: %v", err)
	}
	if c.Server.MaxBodyBytes <= 0 {
		v.Add("server.maxBodyBytes must be > 0")
	}

	if c.Metrics.Enabled {
		if err := validateListen(c.Metrics.Listen); err != nil {
			v.Add("metrics.listen invalid: %v", err)
		}
	}

	if c.Watch.MaxSize < 0 {
		v.Add("watch.maxSize must be >= 0")
	}

	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		v.Add("logging.level must be debug|info|warn|error")
	}
	switch c.Logging.Format {
	case "text", "json":
	default:
		v.Add("logging.format must be text|json")
	}

	if len(v.Problems) > 0 {
		sort.Strings(v.Problems)
		return v
	}
	return nil
}

func validateListen(addr string) error {
	if strings.TrimSpace(addr) == "" {
		return errors.New("address is required")
	}
	if _, err := net.ResolveTCPAddr("tcp", addr); err != nil {
		return err
	}
	return nil
}

func validateURL(raw string) error {
	parsed, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return errors.New("must include scheme and host")
	}
	return nil
}

func requireFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory", path)
	}
	return nil
}

func ensureDir(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", path)
	}
	return nil
}

func ensureWritable(path string) error {
	dir := filepath.Dir(path)
	if err := ensureDir(dir); err != nil {
		return err
	}

	file, err := os.CreateTemp(dir, "clipguard-validate-*")
	if err != nil {
		return err
	}
	name := file.Name()
	if err := file.Close(); err != nil {
		return err
	}
	return os.Remove(name)
}
