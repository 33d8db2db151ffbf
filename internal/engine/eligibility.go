package engine

import (
	"context"
	"fmt"

	"github.com/vk/gridbridge/internal/bridge"
	"github.com/vk/gridbridge/internal/compat"
	"github.com/vk/gridbridge/internal/ctxlog"
	"github.com/vk/gridbridge/internal/graph"
	"golang.org/x/sync/errgroup"
)

// Reach is how a candidate port can be reached from a drag source.
type Reach int

const (
	Impossible Reach = iota
	Direct
	Specialize
	Bridgeable
)

func (r Reach) String() string {
	switch r {
	case Impossible:
		return "impossible"
	case Direct:
		return "direct"
	case Specialize:
		return "specialize"
	case Bridgeable:
		return "bridgeable"
	default:
		return fmt.Sprintf("Reach(%d)", int(r))
	}
}

// Eligibility is the verdict for one candidate port.
type Eligibility struct {
	Port      graph.PortID
	Reach     Reach
	Solutions int
}

// Eligibility evaluates dragging a new cable from source onto each of the
// candidates, concurrently. Results follow the order of candidates.
// Candidates on the same side as source, or on source's node, are
// Impossible.
func (e *Engine) Eligibility(ctx context.Context, source graph.PortID, candidates []graph.PortID) ([]Eligibility, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Eligibility scan started.", "source", e.graph.PortName(source), "candidates", len(candidates), "workers", e.workers)

	out := make([]Eligibility, len(candidates))
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)

	sourceIsOutput := e.graph.Direction(source) == graph.Output
	for i, cand := range candidates {
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			conn := compat.Connect(cand, source)
			if sourceIsOutput {
				conn = compat.Connect(source, cand)
			}
			out[i] = e.eligibility(conn, cand, sourceIsOutput)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("eligibility scan from %s: %w", e.graph.PortName(source), err)
	}

	logger.Debug("Eligibility scan finished.", "source", e.graph.PortName(source))
	return out, nil
}

func (e *Engine) eligibility(conn compat.Connection, cand graph.PortID, dragToIsTo bool) Eligibility {
	res := Eligibility{Port: cand}
	if !conn.Valid(e.graph) {
		return res
	}
	switch v := compat.Analyze(e.graph, e.catalog, conn); v.Kind {
	case compat.Direct:
		res.Reach, res.Solutions = Direct, 1
	case compat.NeedsSpecialization:
		res.Reach, res.Solutions = Specialize, 1
	default:
		if n := len(bridge.Solve(e.graph, e.catalog, conn, dragToIsTo)); n > 0 {
			res.Reach, res.Solutions = Bridgeable, n
		}
	}
	return res
}

// Candidates returns every port on other nodes facing source's direction,
// in ascending order.
func (e *Engine) Candidates(source graph.PortID) []graph.PortID {
	sp, ok := e.graph.Port(source)
	if !ok {
		return nil
	}
	want := graph.Input
	if e.graph.Direction(source) == graph.Input {
		want = graph.Output
	}
	var out []graph.PortID
	for _, n := range e.graph.Nodes() {
		if n == sp.Node {
			continue
		}
		node, _ := e.graph.Node(n)
		for _, p := range node.Ports {
			if e.graph.Direction(p) == want {
				out = append(out, p)
			}
		}
	}
	return out
}
