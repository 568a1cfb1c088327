package domain

import "errors"

var (
	// ErrPermissionDenied means the player's profile privacy settings
	// prevent reading their achievements. Terminal per call: no retry,
	// no blacklist effect.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrTemporarilyUnavailable covers bad statuses, network errors and
	// malformed payloads. The call may be retried.
	ErrTemporarilyUnavailable = errors.New("temporarily unavailable")

	// ErrNoSchema means the schema endpoint rejected the app id, commonly
	// because the game has no achievement schema.
	ErrNoSchema = errors.New("no achievement schema")

	// ErrGameUnavailable means achievement data for the game is
	// permanently unobtainable (blacklisted, or retries exhausted).
	ErrGameUnavailable = errors.New("game achievements unavailable")

	// ErrMissingCredentials means an api key or steam id required for the
	// call was not provided.
	ErrMissingCredentials = errors.New("missing credentials")
)
