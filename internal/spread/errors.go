package spread

import "errors"

var (
	// ErrValidation reports a request without a market id.
	ErrValidation = errors.New("market id is required")
	// ErrUnavailable reports that no spread could be derived for a market.
	ErrUnavailable = errors.New("spread unavailable")
	// ErrNoAlert reports a poll before any alert was set.
	ErrNoAlert = errors.New("no alert spread set")
)
