package app

import (
	"context"
	"fmt"

	"github.com/vk/gridbridge/internal/bridge"
	"github.com/vk/gridbridge/internal/compat"
	"github.com/vk/gridbridge/internal/graph"
	"github.com/vk/gridbridge/internal/plan"
)

// Request names a candidate connection by `node.port` addresses.
type Request struct {
	From      string
	To        string
	EventOnly bool
	// Replacing is the name of the cable being re-dragged, if any.
	Replacing string
	// DragTo is set when the user dragged onto the To port.
	DragTo bool
}

func (a *App) connection(req Request) (compat.Connection, error) {
	from, err := a.comp.Port(req.From)
	if err != nil {
		return compat.Connection{}, err
	}
	to, err := a.comp.Port(req.To)
	if err != nil {
		return compat.Connection{}, err
	}
	conn := compat.Connect(from, to)
	conn.ForceEventOnly = req.EventOnly
	if conn.Replacing, err = a.cable(req.Replacing); err != nil {
		return compat.Connection{}, err
	}
	return conn, nil
}

func (a *App) cable(name string) (graph.CableID, error) {
	if name == "" {
		return graph.NoCable, nil
	}
	id, ok := a.comp.Cable(name)
	if !ok {
		return graph.NoCable, fmt.Errorf("cable %q: %w", name, graph.ErrUnknownCable)
	}
	return id, nil
}

func (a *App) portNames(ports []graph.PortID) []string {
	if len(ports) == 0 {
		return nil
	}
	out := make([]string, len(ports))
	for i, p := range ports {
		out[i] = a.comp.Graph.PortName(p)
	}
	return out
}

// Analyze classifies the connection described by req.
func (a *App) Analyze(ctx context.Context, req Request) (*VerdictReport, error) {
	conn, err := a.connection(req)
	if err != nil {
		return nil, err
	}
	v := a.engine.Analyze(a.Context(ctx), conn)
	rep := &VerdictReport{From: req.From, To: req.To, Verdict: v.Kind.String()}
	if v.Kind == compat.NeedsSpecialization {
		rep.Port = a.comp.Graph.PortName(v.Port)
		rep.Type = string(v.Type)
	}
	return rep, nil
}

// Bridge lists every solution for the connection described by req, each with
// the commit plan it implies.
func (a *App) Bridge(ctx context.Context, req Request) (*BridgeReport, error) {
	ctx = a.Context(ctx)
	conn, err := a.connection(req)
	if err != nil {
		return nil, err
	}
	v := a.engine.Analyze(ctx, conn)
	rep := &BridgeReport{From: req.From, To: req.To, Verdict: v.Kind.String(), Solutions: []SolutionReport{}}
	for _, sol := range a.engine.SolveBridging(ctx, conn, req.DragTo) {
		p, err := a.engine.Plan(ctx, conn, sol)
		if err != nil {
			return nil, fmt.Errorf("planning %q: %w", sol.Describe(a.comp.Graph), err)
		}
		rep.Solutions = append(rep.Solutions, a.solutionReport(sol, p))
	}
	return rep, nil
}

func (a *App) solutionReport(sol bridge.Solution, p *plan.Plan) SolutionReport {
	g := a.comp.Graph
	rep := SolutionReport{
		Kind:      sol.Kind.String(),
		Summary:   sol.Describe(g),
		Converter: string(sol.Converter),
	}
	for _, sp := range sol.Specializations {
		rep.Specializations = append(rep.Specializations, SpecializationReport{
			Port:      g.PortName(sp.Port),
			Type:      string(sp.Type),
			Unchanged: sp.NoChange,
		})
	}
	if !p.Changes() && len(p.DroppedConstants) == 0 {
		return rep
	}
	rep.Plan = &PlanReport{DroppedConstants: a.portNames(p.DroppedConstants)}
	for _, r := range p.Replacements {
		rep.Plan.Replacements = append(rep.Plan.Replacements, ReplacementReport{Node: r.Title, From: r.From.Name(), To: r.To.Name()})
	}
	for _, c := range p.RemovedCables {
		rep.Plan.RemovedCables = append(rep.Plan.RemovedCables, a.comp.CableName(c))
	}
	return rep
}

// Network describes the generic network of the port at addr.
func (a *App) Network(ctx context.Context, addr string) (*NetworkReport, error) {
	port, err := a.comp.Port(addr)
	if err != nil {
		return nil, err
	}
	types, kind := a.engine.NetworkCompatibleTypes(port)
	rep := &NetworkReport{
		Port:          addr,
		Members:       a.portNames(a.engine.Network(port)),
		Compatibility: kind.String(),
		Types:         make([]string, len(types)),
	}
	for i, t := range types {
		rep.Types[i] = string(t)
	}
	return rep, nil
}

// Revert describes reverting the port at addr to its generic type while the
// named cable, if any, is being replaced.
func (a *App) Revert(ctx context.Context, addr, replacing string) (*RevertReport, error) {
	port, err := a.comp.Port(addr)
	if err != nil {
		return nil, err
	}
	cable, err := a.cable(replacing)
	if err != nil {
		return nil, err
	}
	rep := &RevertReport{Port: addr, Revertible: a.engine.IsRevertible(port)}
	if !a.comp.Graph.IsSpecialized(port) {
		return rep, nil
	}
	sim := a.engine.SimulateRevert(port, cable)
	rep.Nondestructive = rep.Revertible && sim.Nondestructive(cable)
	rep.Ports = a.portNames(sim.Ports)
	rep.Blocked = a.portNames(sim.Blocked)
	for _, c := range sim.Invalid {
		rep.InvalidCables = append(rep.InvalidCables, a.comp.CableName(c))
	}
	return rep, nil
}

// Eligible reports how every port facing source can be reached by a cable
// dragged from it.
func (a *App) Eligible(ctx context.Context, source string) (*EligibilityReport, error) {
	port, err := a.comp.Port(source)
	if err != nil {
		return nil, err
	}
	res, err := a.engine.Eligibility(a.Context(ctx), port, a.engine.Candidates(port))
	if err != nil {
		return nil, err
	}
	rep := &EligibilityReport{Source: source, Candidates: make([]CandidateReport, len(res))}
	for i, r := range res {
		rep.Candidates[i] = CandidateReport{
			Port:      a.comp.Graph.PortName(r.Port),
			Reach:     r.Reach.String(),
			Solutions: r.Solutions,
		}
	}
	return rep, nil
}
