package usecase

import (
	"log/slog"
	"sort"
	"sync"

	"autochat/internal/domain"
)

// Worker bundles a specialist agent with the metadata the orchestrator
// needs to expose it as a delegation tool.
type Worker struct {
	Name           string
	Description    string
	Agent          *Agent
	ContextFactory domain.ContextFactory
	Card           domain.AgentCard
}

// Registry holds all registered workers and provides lookup. It is
// populated once at startup and read-only afterwards.
type Registry struct {
	mu      sync.RWMutex
	workers map[string]*Worker
	logger  *slog.Logger
}

// NewRegistry creates an empty worker registry.
func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{
		workers: make(map[string]*Worker),
		logger:  logger,
	}
}

// Register adds a worker. Re-registering a name returns ErrDuplicate
// rather than silently replacing the first registration. Every worker
// must carry a context factory so delegation never has to guess how to
// build the worker's turn context.
func (r *Registry) Register(w *Worker) error {
	if w.Name == "" {
		return domain.NewDomainError("Registry.Register", domain.ErrInvalidInput, "empty worker name")
	}
	if w.ContextFactory == nil {
		return domain.NewDomainError("Registry.Register", domain.ErrNoContextFactory, w.Name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.workers[w.Name]; exists {
		return domain.NewDomainError("Registry.Register", domain.ErrDuplicate, w.Name)
	}
	r.workers[w.Name] = w
	r.logger.Info("worker registered", "worker", w.Name)
	return nil
}

// Get returns the worker for the given name, or ErrWorkerNotFound.
func (r *Registry) Get(name string) (*Worker, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	w, ok := r.workers[name]
	if !ok {
		return nil, domain.NewDomainError("Registry.Get", domain.ErrWorkerNotFound, name)
	}
	return w, nil
}

// List returns all registered worker names, sorted.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.workers))
	for name := range r.workers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// All returns every registered worker in name order.
func (r *Registry) All() []*Worker {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.workers))
	for name := range r.workers {
		names = append(names, name)
	}
	sort.Strings(names)

	workers := make([]*Worker, 0, len(names))
	for _, name := range names {
		workers = append(workers, r.workers[name])
	}
	return workers
}

// Cards returns the capability descriptor of every registered worker.
func (r *Registry) Cards() []domain.AgentCard {
	workers := r.All()
	cards := make([]domain.AgentCard, 0, len(workers))
	for _, w := range workers {
		cards = append(cards, w.Card)
	}
	return cards
}
