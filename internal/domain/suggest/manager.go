package suggest

import "sync"

// Manager owns one Coordinator per open document, created lazily and closed
// together on shutdown.
type Manager struct {
	client   Client
	cfg      Config
	bus      Publisher
	recorder AttemptRecorder

	mu           sync.Mutex
	coordinators map[string]*Coordinator
	closed       bool
}

// NewManager creates a Manager. bus and recorder may be nil.
func NewManager(client Client, cfg Config, bus Publisher, recorder AttemptRecorder) *Manager {
	return &Manager{
		client:       client,
		cfg:          cfg.withDefaults(),
		bus:          bus,
		recorder:     recorder,
		coordinators: make(map[string]*Coordinator),
	}
}

// Ensure returns the coordinator for documentID, creating and priming it with
// content on first use. For an existing coordinator content is ignored
// because the coordinator's own view of the text is newer.
func (m *Manager) Ensure(documentID, content string) *Coordinator {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.coordinators[documentID]; ok {
		return c
	}
	c := NewCoordinatorWithDiagnostics(documentID, m.client, m.cfg, m.bus, m.recorder)
	c.Prime(content)
	if !m.closed {
		m.coordinators[documentID] = c
	}
	return c
}

// Discard closes and forgets the coordinator for documentID, if any.
// Called when a document is deleted.
func (m *Manager) Discard(documentID string) {
	m.mu.Lock()
	c, ok := m.coordinators[documentID]
	delete(m.coordinators, documentID)
	m.mu.Unlock()
	if ok {
		c.Close()
	}
}

// Close closes every coordinator. The manager keeps working for reads but
// creates no new coordinators afterwards.
func (m *Manager) Close() {
	m.mu.Lock()
	m.closed = true
	all := make([]*Coordinator, 0, len(m.coordinators))
	for _, c := range m.coordinators {
		all = append(all, c)
	}
	m.coordinators = make(map[string]*Coordinator)
	m.mu.Unlock()

	for _, c := range all {
		c.Close()
	}
}
