package domain

import "errors"

// Client-visible failure modes. Components absorb infrastructure outages
// internally; only these conditions reach API callers.
var (
	// ErrNotFound signals an unknown session, artwork, or trajectory.
	ErrNotFound = errors.New("not found")

	// ErrRateLimited signals the caller exhausted its request window. No
	// state is mutated when it is returned.
	ErrRateLimited = errors.New("rate limit exceeded")

	// ErrSynthesisFailed signals the speech synthesizer could not produce
	// audio. The orchestrator recovers from it with a degraded text-only
	// response; it is fatal only for narration-only endpoints.
	ErrSynthesisFailed = errors.New("speech synthesis failed")

	// ErrUpstreamModel signals a transcription, classification, or
	// generation failure. The request yields no usable answer.
	ErrUpstreamModel = errors.New("upstream model failure")

	// ErrInvalidInput signals a malformed id or message, rejected before
	// any component runs.
	ErrInvalidInput = errors.New("invalid input")
)
