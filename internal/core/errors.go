package core

import "errors"

// Error taxonomy for the transaction engine. Each class has a distinct
// recovery policy at the orchestrator boundary:
//
//   - ErrNotFound: referenced product/entity absent. Soft failure,
//     surfaced as a per-line note in composite replies, never fatal.
//   - ErrStore: the remote store rejected or could not serve a call
//     after bounded retries. Surfaced as a generic failure message.
//   - ErrMedia: audio transcription/synthesis failed. Surfaced as a
//     targeted message; ledger state is untouched.
//
// Classification and validation failures never reach callers as
// errors: classification degrades to general chat, validation is
// absorbed by the field normalizer's coercion defaults.
var (
	ErrNotFound = errors.New("not found")
	ErrStore    = errors.New("store unavailable")
	ErrMedia    = errors.New("media processing failed")
)
