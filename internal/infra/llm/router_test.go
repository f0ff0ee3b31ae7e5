package llm

import (
	"context"
	"testing"
)

type providerStub struct {
	id string
}

func (p *providerStub) ChatCompletion(_ context.Context, _ ChatRequest) (*ChatResponse, error) {
	return &ChatResponse{Content: p.id}, nil
}
func (p *providerStub) ModelInfo() ModelMeta               { return ModelMeta{ID: p.id} }
func (p *providerStub) HealthCheck(_ context.Context) error { return nil }

func TestRouter_Route_Default(t *testing.T) {
	r := NewRouter(map[string]LLMProvider{"ollama": &providerStub{id: "ollama"}}, "ollama")

	p, err := r.Route(context.Background())
	if err != nil {
		t.Fatalf("Route: %v", err)
	}
	if p.ModelInfo().ID != "ollama" {
		t.Errorf("wrong provider: %s", p.ModelInfo().ID)
	}
}

func TestRouter_Route_MissingDefault(t *testing.T) {
	r := NewRouter(nil, "ollama")
	if _, err := r.Route(context.Background()); err == nil {
		t.Fatal("expected error when default provider is missing")
	}
}

func TestRouter_RouteKey(t *testing.T) {
	r := NewRouter(map[string]LLMProvider{
		"ollama": &providerStub{id: "ollama"},
		"openai": &providerStub{id: "openai"},
	}, "ollama")

	p, err := r.RouteKey(context.Background(), "openai")
	if err != nil {
		t.Fatalf("RouteKey: %v", err)
	}
	if p.ModelInfo().ID != "openai" {
		t.Errorf("named provider not selected: %s", p.ModelInfo().ID)
	}

	// Unknown keys fall back to the default: model ids pass through to the
	// provider rather than selecting one.
	p, err = r.RouteKey(context.Background(), "mistral:7b")
	if err != nil {
		t.Fatalf("RouteKey fallback: %v", err)
	}
	if p.ModelInfo().ID != "ollama" {
		t.Errorf("fallback not applied: %s", p.ModelInfo().ID)
	}
}

func TestRouter_Register(t *testing.T) {
	r := NewRouter(nil, "stub")
	r.Register("stub", &providerStub{id: "stub"})

	p, err := r.Route(context.Background())
	if err != nil {
		t.Fatalf("Route after Register: %v", err)
	}
	if p.ModelInfo().ID != "stub" {
		t.Errorf("registered provider not returned: %s", p.ModelInfo().ID)
	}
}
