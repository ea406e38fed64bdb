package llm

import (
	"context"
	"errors"
	"testing"

	"autochat/internal/domain"
)

type namedProvider struct{ name string }

func (p *namedProvider) Name() string { return p.name }
func (p *namedProvider) Chat(_ context.Context, _ domain.ChatRequest) (*domain.ChatResponse, error) {
	return &domain.ChatResponse{}, nil
}

func TestRegistryRegisterAndGet(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(&namedProvider{name: "openai"}); err != nil {
		t.Fatal(err)
	}
	if err := r.Register(&namedProvider{name: "local"}); err != nil {
		t.Fatal(err)
	}

	p, err := r.Get("local")
	if err != nil {
		t.Fatal(err)
	}
	if p.Name() != "local" {
		t.Errorf("Name() = %q", p.Name())
	}
}

func TestRegistryDuplicate(t *testing.T) {
	r := NewRegistry()
	r.Register(&namedProvider{name: "openai"})
	if err := r.Register(&namedProvider{name: "openai"}); !errors.Is(err, domain.ErrDuplicate) {
		t.Errorf("error = %v", err)
	}
}

func TestRegistryDefault(t *testing.T) {
	r := NewRegistry()
	r.Register(&namedProvider{name: "first"})
	r.Register(&namedProvider{name: "second"})

	p, err := r.Get("")
	if err != nil {
		t.Fatal(err)
	}
	if p.Name() != "first" {
		t.Errorf("default = %q, want first registered", p.Name())
	}

	if err := r.SetDefault("second"); err != nil {
		t.Fatal(err)
	}
	p, _ = r.Get("")
	if p.Name() != "second" {
		t.Errorf("default = %q", p.Name())
	}

	if err := r.SetDefault("missing"); !errors.Is(err, domain.ErrProviderNotFound) {
		t.Errorf("error = %v", err)
	}
}

func TestRegistryGetMissing(t *testing.T) {
	r := NewRegistry()
	if _, err := r.Get("nope"); !errors.Is(err, domain.ErrProviderNotFound) {
		t.Errorf("error = %v", err)
	}
}
