package normalize

import "strings"

// dashReplacer maps look-alike dashes used to obfuscate command-line flags.
var dashReplacer = strings.NewReplacer(
	"\u2011", "-",
	"\u2013", "-",
	"\u2014", "-",
)

type Options struct {
	UnifyDashes bool
	Lowercase   bool
	TrimSpace   bool
}

type Result struct {
	Raw        string
	Normalized string
}

// Default is the transform chain applied to every clipboard candidate.
var Default = Options{UnifyDashes: true, Lowercase: true}

func Apply(input string, opts Options) Result {
	res := Result{Raw: input, Normalized: input}

	if opts.TrimSpace {
		res.Normalized = strings.TrimSpace(res.Normalized)
	}
	if opts.UnifyDashes {
		res.Normalized = dashReplacer.Replace(res.Normalized)
	}
	if opts.Lowercase {
		res.Normalized = strings.ToLower(res.Normalized)
	}

	return res
}

// Text returns the canonical matching form of a captured payload.
func Text(input string) string {
	return Apply(input, Default).Normalized
}
