package policy

import "context"

// Settings is the user-tunable state read fresh for every classification.
type Settings struct {
	Whitelist      []string
	Keywords       []string
	OnScreenAlerts bool
}

// Provider supplies the current Settings. The store implements it.
type Provider interface {
	Settings(ctx context.Context) (Settings, error)
}

// Static is a Provider over a fixed Settings value.
type Static Settings

func (s Static) Settings(context.Context) (Settings, error) {
	return Settings(s), nil
}
