package suggest

import (
	"errors"
	"testing"
)

func TestManager_EnsureReturnsSameCoordinator(t *testing.T) {
	m := NewManager(&suggestClientStub{}, testConfig(), nil, nil)
	defer m.Close()

	a := m.Ensure("doc-1", "hello")
	b := m.Ensure("doc-1", "ignored on second call")
	if a != b {
		t.Fatal("Ensure created a second coordinator for the same document")
	}
	if m.Ensure("doc-2", "") == a {
		t.Fatal("distinct documents share a coordinator")
	}
}

func TestManager_DiscardClosesCoordinator(t *testing.T) {
	m := NewManager(&suggestClientStub{}, testConfig(), nil, nil)
	defer m.Close()

	c := m.Ensure("doc-1", "hello")
	m.Discard("doc-1")

	if _, err := c.RefreshNow(); !errors.Is(err, ErrClosed) {
		t.Fatalf("discarded coordinator still usable: %v", err)
	}
	if m.Ensure("doc-1", "hello") == c {
		t.Fatal("Ensure returned the discarded coordinator")
	}
}

func TestManager_CloseClosesAll(t *testing.T) {
	m := NewManager(&suggestClientStub{}, testConfig(), nil, nil)
	a := m.Ensure("doc-1", "")
	b := m.Ensure("doc-2", "")
	m.Close()

	for _, c := range []*Coordinator{a, b} {
		if _, err := c.RefreshNow(); !errors.Is(err, ErrClosed) {
			t.Fatalf("coordinator survived manager Close: %v", err)
		}
	}
}
