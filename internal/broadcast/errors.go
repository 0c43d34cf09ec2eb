package broadcast

import "errors"

// Validation errors are surfaced to the operator immediately, before any
// state is written.
var (
	// ErrNoValidIDs is returned when manual id input contains no integer tokens.
	ErrNoValidIDs = errors.New("broadcast: no valid recipient ids in input")
	// ErrNoRecipients rejects a fan-out over an empty recipient list.
	ErrNoRecipients = errors.New("broadcast: recipient list is empty")
	// ErrEmptyBundle rejects finalizing or fanning out an empty bundle.
	ErrEmptyBundle = errors.New("broadcast: message bundle is empty")
	// ErrUnknownMode is a programming/config error: an unrecognized
	// recipient selection mode.
	ErrUnknownMode = errors.New("broadcast: unknown selection mode")
)
