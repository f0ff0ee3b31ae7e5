// Package suggest implements the suggestion refresh coordinator: the logic
// that decides when a document's AI writing suggestions are refreshed as the
// user types, and how overlapping, stale, or failed refreshes reconcile with
// the latest content.
//
// Design:
//   - Content changes are debounced; only the last change in a burst counts.
//   - At most one AI request is ever in flight per document, so responses
//     apply in issue order by construction.
//   - Completed attempts arm a cooldown (longer after failures) that spaces
//     out requests independently of the debounce window.
//   - Refreshes suppressed by those gates are silent no-ops, never errors.
package suggest

import (
	"errors"
	"time"
)

// Suggestion is one piece of advice tied to document content. Matcher is a
// lowercase substring used to attach the advice to a rendered block; Advice is
// the text shown to the user.
type Suggestion struct {
	Matcher string `json:"matcher"`
	Advice  string `json:"advice"`
}

// RequestState is the coordinator's position in the refresh cycle.
// Only the coordinator mutates it.
type RequestState int

const (
	// StateIdle — nothing scheduled or running.
	StateIdle RequestState = iota
	// StateDebouncing — a content change armed the debounce timer.
	StateDebouncing
	// StateInFlight — a request was issued and has not resolved yet.
	StateInFlight
	// StateCoolingDown — a request succeeded; new attempts wait out the short cooldown.
	StateCoolingDown
	// StateCooldownAfterFailure — a request failed; new attempts wait out the long cooldown.
	StateCooldownAfterFailure
)

// String returns the lowercase wire name of the state.
func (s RequestState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateDebouncing:
		return "debouncing"
	case StateInFlight:
		return "in_flight"
	case StateCoolingDown:
		return "cooling_down"
	case StateCooldownAfterFailure:
		return "cooldown_after_failure"
	default:
		return "unknown"
	}
}

// Config holds the coordinator timings. Zero fields take defaults.
type Config struct {
	// DebounceDelay is the quiet period after the last content change
	// before a refresh is evaluated.
	DebounceDelay time.Duration
	// Cooldown spaces attempts after a successful request.
	Cooldown time.Duration
	// FailureCooldown spaces attempts after a failed request.
	// Always at least Cooldown.
	FailureCooldown time.Duration
}

// DefaultConfig returns the production timings.
func DefaultConfig() Config {
	return Config{
		DebounceDelay:   3 * time.Second,
		Cooldown:        5 * time.Second,
		FailureCooldown: 10 * time.Second,
	}
}

// withDefaults fills zero fields and keeps FailureCooldown >= Cooldown.
func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.DebounceDelay <= 0 {
		c.DebounceDelay = def.DebounceDelay
	}
	if c.Cooldown <= 0 {
		c.Cooldown = def.Cooldown
	}
	if c.FailureCooldown <= 0 {
		c.FailureCooldown = def.FailureCooldown
	}
	if c.FailureCooldown < c.Cooldown {
		c.FailureCooldown = c.Cooldown
	}
	return c
}

// ErrNotAvailable is returned by RefreshNow while a request is in flight or a
// cooldown is active. Callers surface it as "not available", never as a fault.
var ErrNotAvailable = errors.New("suggestion refresh not available right now")

// ErrClosed is returned by operations on a closed coordinator.
var ErrClosed = errors.New("suggestion coordinator closed")
