package model

import "strings"

// Account is one identity known to the identity-provider client.
// ID is the provider's subject claim; RefreshToken is the cached
// credential used for silent token acquisition.
type Account struct {
	ID           string
	Username     string
	Name         string
	RefreshToken string
}

// FirstName returns the leading word of the display name, for greeting copy.
func (a *Account) FirstName() string {
	if a == nil || strings.TrimSpace(a.Name) == "" {
		return "User"
	}
	return strings.Fields(a.Name)[0]
}

// BootstrapState is the one-shot latch guarding the per-session
// token-acquisition + backend-login sequence. It moves NotStarted →
// InProgress → Done and never backwards within one page lifetime; a
// completed interactive login resets it, which is the equivalent of
// the full page reload in the redirect flow.
type BootstrapState int

const (
	BootstrapNotStarted BootstrapState = iota
	BootstrapInProgress
	BootstrapDone
)

func (s BootstrapState) String() string {
	switch s {
	case BootstrapNotStarted:
		return "not_started"
	case BootstrapInProgress:
		return "in_progress"
	case BootstrapDone:
		return "done"
	default:
		return "unknown"
	}
}
