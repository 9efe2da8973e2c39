package campaign

import "errors"

var (
	// ErrGuestFactoryRequired is returned by Compile when Options.Guests
	// is nil; the isolation host/guest loader is an external
	// collaborator this package never constructs on its own.
	ErrGuestFactoryRequired = errors.New("campaign: guest factory required")

	// ErrInvalidTransition is returned when a state-machine method is
	// called from a state that does not permit it (e.g. Start on an
	// already-running campaign).
	ErrInvalidTransition = errors.New("campaign: invalid state transition")

	// ErrCampaignNotFound is returned by Manager lookups for an unknown
	// campaign id.
	ErrCampaignNotFound = errors.New("campaign: not found")
)
