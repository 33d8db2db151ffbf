package engine

import (
	"context"

	"github.com/vk/gridbridge/internal/bridge"
	"github.com/vk/gridbridge/internal/compat"
	"github.com/vk/gridbridge/internal/ctxlog"
	"github.com/vk/gridbridge/internal/graph"
	"github.com/vk/gridbridge/internal/network"
	"github.com/vk/gridbridge/internal/plan"
	"github.com/vk/gridbridge/internal/revert"
	"github.com/vk/gridbridge/internal/typesys"
)

// Engine answers type-resolution queries over one graph.
type Engine struct {
	graph   *graph.Graph
	catalog *typesys.Catalog
	workers int
}

// Option customises an Engine.
type Option func(*Engine)

// WithWorkers bounds the number of goroutines Eligibility uses.
func WithWorkers(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.workers = n
		}
	}
}

// New returns an engine over g and cat.
func New(g *graph.Graph, cat *typesys.Catalog, opts ...Option) *Engine {
	e := &Engine{graph: g, catalog: cat, workers: 1}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) Graph() *graph.Graph       { return e.graph }
func (e *Engine) Catalog() *typesys.Catalog { return e.catalog }

// AnalyzeConnection classifies a candidate cable from an output to an input.
func (e *Engine) AnalyzeConnection(ctx context.Context, from, to graph.PortID, forceEventOnly bool) compat.Verdict {
	conn := compat.Connect(from, to)
	conn.ForceEventOnly = forceEventOnly
	return e.Analyze(ctx, conn)
}

// Analyze classifies a candidate connection.
func (e *Engine) Analyze(ctx context.Context, conn compat.Connection) compat.Verdict {
	v := compat.Analyze(e.graph, e.catalog, conn)
	logger := ctxlog.FromContext(ctx)
	if v.Kind == compat.NeedsSpecialization {
		logger.Debug("Connection needs specialization.", "from", e.graph.PortName(conn.From), "to", e.graph.PortName(conn.To), "port", e.graph.PortName(v.Port), "type", v.Type)
	} else {
		logger.Debug("Connection analyzed.", "from", e.graph.PortName(conn.From), "to", e.graph.PortName(conn.To), "verdict", v.Kind)
	}
	return v
}

// SolveBridging lists every way to make conn legal, best first.
func (e *Engine) SolveBridging(ctx context.Context, conn compat.Connection, dragToIsTo bool) []bridge.Solution {
	sols := bridge.Solve(e.graph, e.catalog, conn, dragToIsTo)
	ctxlog.FromContext(ctx).Debug("Bridging solved.", "from", e.graph.PortName(conn.From), "to", e.graph.PortName(conn.To), "solutions", len(sols))
	return sols
}

// IsRevertible reports whether port may return to its generic type.
func (e *Engine) IsRevertible(port graph.PortID) bool {
	return revert.IsRevertible(e.graph, port)
}

// CanRevertNondestructively reports whether reverting port breaks no cable
// other than replacing, which may be graph.NoCable.
func (e *Engine) CanRevertNondestructively(port graph.PortID, replacing graph.CableID) bool {
	return revert.CanRevertNondestructively(e.graph, e.catalog, port, replacing)
}

// SimulateRevert reports what reverting port would affect.
func (e *Engine) SimulateRevert(port graph.PortID, replacing graph.CableID) revert.Simulation {
	return revert.Simulate(e.graph, e.catalog, port, replacing)
}

// Network returns the ports sharing port's type resolution.
func (e *Engine) Network(port graph.PortID) []graph.PortID {
	return network.New(e.graph, e.catalog).Of(port)
}

// NetworkCompatibleTypes returns the types port's network could resolve to.
func (e *Engine) NetworkCompatibleTypes(port graph.PortID) ([]typesys.TypeID, typesys.CompatibilityKind) {
	return network.New(e.graph, e.catalog).CompatibleTypes(port)
}

// Plan describes what committing sol for conn would do.
func (e *Engine) Plan(ctx context.Context, conn compat.Connection, sol bridge.Solution) (*plan.Plan, error) {
	p, err := plan.Build(e.graph, e.catalog, conn, sol)
	if err != nil {
		return nil, err
	}
	ctxlog.FromContext(ctx).Debug("Commit planned.", "solution", sol.Describe(e.graph), "replacements", len(p.Replacements), "dropped_constants", len(p.DroppedConstants))
	return p, nil
}
