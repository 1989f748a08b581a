package hostname

import (
	"net/url"
	"strings"

	"golang.org/x/net/idna"
	"golang.org/x/net/publicsuffix"
)

const Unknown = "unknown"

// Resolve picks the host a clipboard event is attributed to. An origin carrying a
// scheme is parsed as a URL; otherwise the sender page URL is used. Parse failures
// fall back to the raw origin and finally to Unknown.
func Resolve(origin, senderURL string) string {
	if origin == "" {
		origin = senderURL
	}
	if origin == "" {
		return Unknown
	}

	if strings.Contains(origin, "://") {
		return hostOf(origin, origin)
	}
	if senderURL != "" {
		return hostOf(senderURL, origin)
	}
	return origin
}

func hostOf(raw, fallback string) string {
	parsed, err := url.Parse(raw)
	if err != nil {
		return fallback
	}
	host := Canonical(parsed.Hostname())
	if host == "" {
		return Unknown
	}
	return host
}

// Canonical lowercases a hostname, drops a trailing dot and converts IDNs to
// their ASCII form, matching what a browser reports as location.hostname.
func Canonical(host string) string {
	host = strings.TrimSuffix(strings.ToLower(strings.TrimSpace(host)), ".")
	if host == "" {
		return ""
	}
	if ascii, err := idna.Lookup.ToASCII(host); err == nil && ascii != "" {
		return ascii
	}
	return host
}

// Registrable returns the eTLD+1 of host, or host itself when it has none
// (IP literals, single-label names, bare public suffixes).
func Registrable(host string) string {
	host = Canonical(host)
	if value, err := publicsuffix.EffectiveTLDPlusOne(host); err == nil {
		return value
	}
	return host
}

// SenderURL is the best URL to record for an event: the page URL when known,
// otherwise the origin, otherwise Unknown.
func SenderURL(origin, senderURL string) string {
	switch {
	case senderURL != "":
		return senderURL
	case origin != "":
		return origin
	default:
		return Unknown
	}
}
