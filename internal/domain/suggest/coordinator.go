package suggest

import (
	"context"
	"log"
	"strconv"
	"sync"
)

// TopicSuggestionsUpdated is the event bus topic for suggestion-set
// replacements. Payload is an Update.
const TopicSuggestionsUpdated = "suggestions.updated"

// Update is published whenever a document's suggestion set is replaced
// (including replacement by the empty set).
type Update struct {
	DocumentID  string       `json:"documentId"`
	Suggestions []Suggestion `json:"suggestions"`
}

// Publisher is the event bus surface the coordinator needs.
type Publisher interface {
	Publish(topic string, payload any)
}

// AttemptRecorder receives one record per completed request attempt, for
// diagnostics only. Recording errors are ignored: the attempt log must never
// influence the refresh cycle.
type AttemptRecorder interface {
	Record(ctx context.Context, documentID, model, outcome, detail string) error
}

const (
	outcomeSuccess = "success"
	outcomeFailure = "failure"
)

// Coordinator owns the refresh cycle for a single document. All mutable state
// lives behind its mutex and is written only by coordinator code paths; the
// gating decisions themselves are made purely on RequestState and the cooldown
// gate, so no caller ever blocks on a slow request.
//
// The suggestion set it holds is ephemeral: replaced wholesale on every
// successful response, cleared by an empty response, never persisted.
type Coordinator struct {
	documentID string
	client     Client
	bus        Publisher       // may be nil
	recorder   AttemptRecorder // may be nil
	cfg        Config

	debounce *Scheduler
	gate     *CooldownGate

	mu            sync.Mutex
	state         RequestState
	content       string
	lastProcessed string
	model         string
	autoRefresh   bool
	suggestions   []Suggestion
	closed        bool
}

// NewCoordinator creates a coordinator with auto-refresh enabled and no
// diagnostics sinks.
func NewCoordinator(documentID string, client Client, cfg Config) *Coordinator {
	return NewCoordinatorWithDiagnostics(documentID, client, cfg, nil, nil)
}

// NewCoordinatorWithDiagnostics additionally wires the event bus and the
// attempt recorder. Either may be nil.
func NewCoordinatorWithDiagnostics(documentID string, client Client, cfg Config, bus Publisher, recorder AttemptRecorder) *Coordinator {
	cfg = cfg.withDefaults()
	c := &Coordinator{
		documentID:  documentID,
		client:      client,
		bus:         bus,
		recorder:    recorder,
		cfg:         cfg,
		debounce:    NewScheduler(cfg.DebounceDelay),
		autoRefresh: true,
	}
	c.gate = NewCooldownGate(c.onCooldownClear)
	return c
}

// Prime sets the initial content without arming the debounce timer. Used when
// a coordinator is attached to an already-loaded document: opening a document
// never triggers a refresh by itself, but a manual request can still run
// against the primed text.
func (c *Coordinator) Prime(content string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.content = content
}

// SetContent records the latest document text. With auto-refresh on, it arms
// (or re-arms) the debounce timer; a burst of edits produces exactly one
// evaluation, after the last edit.
func (c *Coordinator) SetContent(content string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.content = content
	if !c.autoRefresh {
		return
	}
	if c.state == StateIdle {
		c.state = StateDebouncing
	}
	c.debounce.Schedule(c.onDebounceFire)
}

// RefreshNow is the manual override: it skips the debounce timer but still
// honors the in-flight guard and the cooldown gate, returning ErrNotAvailable
// when either is active. An armed debounce timer is left untouched; its later
// fire no-ops on the unchanged-content check.
//
// The boolean reports whether a request was actually issued — false with a
// nil error means the content gave nothing to refresh.
func (c *Coordinator) RefreshNow() (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false, ErrClosed
	}
	if c.state == StateInFlight || c.gate.Active() {
		return false, ErrNotAvailable
	}
	return c.evaluateLocked(), nil
}

// SetAutoRefresh flips participation in the content-change → debounce path.
// Disabling also disarms a pending debounce fire; manual refresh stays
// available either way.
func (c *Coordinator) SetAutoRefresh(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.autoRefresh = enabled
	if !enabled {
		c.debounce.Cancel()
		if c.state == StateDebouncing {
			c.state = StateIdle
		}
	}
}

// SetModel records the model identifier passed through to the service on the
// next request. Opaque to the coordinator.
func (c *Coordinator) SetModel(model string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.model = model
}

// Model returns the current model identifier.
func (c *Coordinator) Model() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.model
}

// AutoRefresh reports whether automatic refresh is enabled.
func (c *Coordinator) AutoRefresh() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.autoRefresh
}

// State returns the current request state.
func (c *Coordinator) State() RequestState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Suggestions returns a copy of the current suggestion set.
func (c *Coordinator) Suggestions() []Suggestion {
	c.mu.Lock()
	defer c.mu.Unlock()
	return cloneSuggestions(c.suggestions)
}

// Close stops the timers. Any in-flight request still resolves but its result
// is discarded.
func (c *Coordinator) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.mu.Unlock()
	c.debounce.Stop()
	c.gate.Stop()
}

// onDebounceFire runs when the debounce timer elapses.
func (c *Coordinator) onDebounceFire() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || !c.autoRefresh {
		if c.state == StateDebouncing {
			c.state = StateIdle
		}
		return
	}
	c.evaluateLocked()
}

// onCooldownClear runs when the cooldown gate expires: the coordinator goes
// back to Idle, and content that changed while the gate (or a request) was
// active gets its one deferred evaluation.
func (c *Coordinator) onCooldownClear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	if c.state == StateCoolingDown || c.state == StateCooldownAfterFailure {
		c.state = StateIdle
	}
	if c.autoRefresh {
		c.evaluateLocked()
	}
}

// evaluateLocked is the single gate evaluation every trigger converges on
// (debounce fire, manual refresh, cooldown expiry). Caller holds c.mu.
// A request is issued only if the content is non-empty and differs from the
// last attempt, no request is in flight, and no cooldown is active; otherwise
// the trigger is swallowed silently.
func (c *Coordinator) evaluateLocked() bool {
	if c.state == StateInFlight {
		return false
	}
	if c.gate.Active() {
		return false
	}
	if !ShouldAttempt(c.content, c.lastProcessed) {
		if c.state == StateDebouncing {
			c.state = StateIdle
		}
		return false
	}

	// LastProcessedContent is the content at the time of the attempt,
	// successful or not: a failed request must not be re-issued for the
	// same text before the next change.
	c.lastProcessed = c.content
	c.state = StateInFlight
	req := Request{
		Model:    c.model,
		Content:  c.content,
		Previous: cloneSuggestions(c.suggestions),
	}
	go c.perform(req)
	return true
}

// perform runs one request attempt off the coordinator's lock and reconciles
// the outcome. Only one perform goroutine can exist at a time (in-flight
// guard), so outcomes always apply in issue order.
func (c *Coordinator) perform(req Request) {
	items, err := c.client.Suggest(context.Background(), req)

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}

	if err != nil {
		// Transport and validation failures are handled identically: keep
		// the current set, back off for the long cooldown, log and move on.
		c.state = StateCooldownAfterFailure
		c.gate.Arm(c.cfg.FailureCooldown, outcomeFailure)
		c.mu.Unlock()
		log.Printf("suggest: refresh failed for document %s: %v", c.documentID, err)
		c.record(req.Model, outcomeFailure, err.Error())
		return
	}

	c.suggestions = items
	c.state = StateCoolingDown
	c.gate.Arm(c.cfg.Cooldown, outcomeSuccess)
	update := Update{DocumentID: c.documentID, Suggestions: cloneSuggestions(items)}
	c.mu.Unlock()

	if c.bus != nil {
		c.bus.Publish(TopicSuggestionsUpdated, update)
	}
	c.record(req.Model, outcomeSuccess, strconv.Itoa(len(items))+" suggestions")
}

// record writes one attempt to the diagnostics log, best effort.
func (c *Coordinator) record(model, outcome, detail string) {
	if c.recorder == nil {
		return
	}
	_ = c.recorder.Record(context.Background(), c.documentID, model, outcome, detail)
}

func cloneSuggestions(in []Suggestion) []Suggestion {
	if len(in) == 0 {
		return nil
	}
	out := make([]Suggestion, len(in))
	copy(out, in)
	return out
}
