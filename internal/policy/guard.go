package policy

import (
	"strings"

	"github.com/clipguard/clipguard/internal/config"
	"github.com/clipguard/clipguard/internal/hostname"
	"github.com/clipguard/clipguard/internal/rules"
)

type Action string

const (
	ActionAllow    Action = "allow"
	ActionAlert    Action = "alert"
	ActionSuppress Action = "suppress"
)

type MatchMode string

const (
	MatchExact       MatchMode = config.MatchExact
	MatchSubdomain   MatchMode = config.MatchSubdomain
	MatchRegistrable MatchMode = config.MatchRegistrable
)

// IsWhitelisted is exact string membership.
func IsWhitelisted(host string, whitelist []string) bool {
	for _, entry := range whitelist {
		if entry == host {
			return true
		}
	}
	return false
}

// Guard decides whether a verdict reaches the alert and threat-log path.
type Guard struct {
	Mode MatchMode
}

func NewGuard(mode string) Guard {
	switch MatchMode(mode) {
	case MatchSubdomain:
		return Guard{Mode: MatchSubdomain}
	case MatchRegistrable:
		return Guard{Mode: MatchRegistrable}
	default:
		return Guard{Mode: MatchExact}
	}
}

func (g Guard) IsWhitelisted(host string, whitelist []string) bool {
	if IsWhitelisted(host, whitelist) {
		return true
	}

	switch g.Mode {
	case MatchSubdomain:
		for _, entry := range whitelist {
			if entry != "" && strings.HasSuffix(host, "."+entry) {
				return true
			}
		}
	case MatchRegistrable:
		if host == "" || host == hostname.Unknown {
			return false
		}
		site := hostname.Registrable(host)
		for _, entry := range whitelist {
			if entry != "" && hostname.Registrable(entry) == site {
				return true
			}
		}
	}
	return false
}

// Decide applies the whitelist to a verdict. Classification itself is never
// changed; only whether the verdict is dispatched.
func (g Guard) Decide(verdict rules.Verdict, host string, whitelist []string) Action {
	if !verdict.Suspicious {
		return ActionAllow
	}
	if g.IsWhitelisted(host, whitelist) {
		return ActionSuppress
	}
	return ActionAlert
}

// ForwardTelemetry reports whether a raw candidate goes to the telemetry path.
// The whitelist only applies there when gate is set explicitly.
func (g Guard) ForwardTelemetry(host string, whitelist []string, gate bool) bool {
	if !gate {
		return true
	}
	return !g.IsWhitelisted(host, whitelist)
}
