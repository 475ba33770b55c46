package genetic

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/cs2trade/tradeupbot/internal/domain"
)

// Engine names as they appear in configuration and results.
const (
	EngineStandard = "standard"
	EngineIsland   = "island"
)

// Runner is one fully assembled engine run.
type Runner interface {
	Name() string
	Run(ctx context.Context) (*Result, error)
}

// Options carries everything a factory needs to assemble a Runner for one
// optimization run.
type Options struct {
	Pool     []domain.ContractEntry
	Scorer   Scorer
	Reporter Reporter
	Params   Params
	Island   IslandParams
	// Workers sizes the standard engine's evaluation pool; <= 0 means CPU
	// count.
	Workers int
	Logger  *slog.Logger
}

// Factory builds a Runner from run options.
type Factory func(opts Options) (Runner, error)

// Registry maps engine names to factories so the run mode can pick an
// engine from configuration. Safe for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry returns an empty, ready-to-use Registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register adds a factory under the given name, replacing any previous one.
func (r *Registry) Register(name string, f Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = f
}

// Get retrieves a factory by name.
func (r *Registry) Get(name string) (Factory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	f, ok := r.factories[name]
	if !ok {
		return nil, fmt.Errorf("engine %q: not registered", name)
	}
	return f, nil
}

// List returns the registered engine names in sorted order.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// StandardFactory wires the generational engine with a parallel batch
// evaluator sized by Options.Workers.
func StandardFactory(opts Options) (Runner, error) {
	if opts.Scorer == nil {
		return nil, fmt.Errorf("engine %q: nil scorer", EngineStandard)
	}
	ev := NewParallelEvaluator(opts.Scorer, opts.Workers)
	return NewEngine(opts.Pool, ev, opts.Reporter, opts.Params, opts.Logger), nil
}

// IslandFactory wires the island engine with a serial evaluator; islands
// themselves are the parallel unit.
func IslandFactory(opts Options) (Runner, error) {
	if opts.Scorer == nil {
		return nil, fmt.Errorf("engine %q: nil scorer", EngineIsland)
	}
	ev := NewSerialEvaluator(opts.Scorer)
	return NewIslandEngine(opts.Pool, ev, opts.Reporter, opts.Params, opts.Island, opts.Logger), nil
}

// DefaultRegistry returns a registry with both built-in engines registered.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(EngineStandard, StandardFactory)
	r.Register(EngineIsland, IslandFactory)
	return r
}
