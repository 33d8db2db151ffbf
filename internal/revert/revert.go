// Package revert answers whether a specialized port may return to its
// original generic type, and whether doing so would break any cable other
// than the one being replaced.
//
// Reverting a port is never done port by port: every port in its network
// reverts with it, and a port on an attachment node drags its host port's
// network along. The simulation below never mutates the graph.
package revert

import (
	"slices"

	"github.com/vk/gridbridge/internal/graph"
	"github.com/vk/gridbridge/internal/network"
	"github.com/vk/gridbridge/internal/typesys"
)

// IsRevertible reports whether port is a specialization of a generic port
// class and, when its node is attached to a specialized host port, the host
// is revertible too.
func IsRevertible(g *graph.Graph, port graph.PortID) bool {
	return isRevertible(g, port, make(map[graph.PortID]struct{}))
}

func isRevertible(g *graph.Graph, port graph.PortID, seen map[graph.PortID]struct{}) bool {
	if _, cyclic := seen[port]; cyclic {
		return false
	}
	seen[port] = struct{}{}

	if !g.IsSpecialized(port) {
		return false
	}
	p, _ := g.Port(port)
	n, _ := g.Node(p.Node)
	if n.Host == graph.NoPort || !g.IsSpecialized(n.Host) {
		return true
	}
	return isRevertible(g, n.Host, seen)
}

// Simulation is the outcome of reverting a port in place.
type Simulation struct {
	// Ports holds every port that would revert, sorted.
	Ports []graph.PortID
	// Blocked holds specialized ports in Ports that cannot be reverted.
	Blocked []graph.PortID
	// Invalid holds the data cables that would join a reverted port to a
	// concrete port outside the set, sorted.
	Invalid []graph.CableID
}

// Simulate computes what reverting port would affect. The replacing cable
// does not propagate the revert, but it is still reported when it becomes
// invalid.
func Simulate(g *graph.Graph, cat *typesys.Catalog, port graph.PortID, replacing graph.CableID) Simulation {
	r := network.New(g, cat, network.Excluding(replacing))
	set := forcedSet(g, r, port)

	var sim Simulation
	for p := range set {
		sim.Ports = append(sim.Ports, p)
		if !g.IsSpecialized(p) {
			continue
		}
		if !IsRevertible(g, p) {
			sim.Blocked = append(sim.Blocked, p)
		}
		for _, c := range g.CablesOf(p) {
			if !g.CarriesData(c) {
				continue
			}
			other := g.OtherEnd(c, p)
			if _, in := set[other]; in {
				continue
			}
			if g.Type(other).IsConcrete() && !IsRevertible(g, other) && !slices.Contains(sim.Invalid, c) {
				sim.Invalid = append(sim.Invalid, c)
			}
		}
	}
	slices.Sort(sim.Ports)
	slices.Sort(sim.Blocked)
	slices.Sort(sim.Invalid)
	return sim
}

// Nondestructive reports whether the simulated revert is allowed and breaks
// at most the cable being replaced.
func (s Simulation) Nondestructive(replacing graph.CableID) bool {
	if len(s.Blocked) > 0 {
		return false
	}
	switch len(s.Invalid) {
	case 0:
		return true
	case 1:
		return replacing != graph.NoCable && s.Invalid[0] == replacing
	}
	return false
}

// CanRevertNondestructively reports whether port is revertible and reverting
// it would invalidate no cable, or only the replacing one.
func CanRevertNondestructively(g *graph.Graph, cat *typesys.Catalog, port graph.PortID, replacing graph.CableID) bool {
	if !IsRevertible(g, port) {
		return false
	}
	return Simulate(g, cat, port, replacing).Nondestructive(replacing)
}

// forcedSet closes port's network over attachment hosts: a member on a node
// attached to a specialized host port pulls in the host's network.
func forcedSet(g *graph.Graph, r *network.Resolver, port graph.PortID) map[graph.PortID]struct{} {
	set := make(map[graph.PortID]struct{})
	queue := []graph.PortID{port}
	for len(queue) > 0 {
		p := queue[0]
		queue = queue[1:]
		if _, done := set[p]; done {
			continue
		}
		for _, m := range r.Of(p) {
			if _, done := set[m]; done {
				continue
			}
			set[m] = struct{}{}
			mp, _ := g.Port(m)
			n, _ := g.Node(mp.Node)
			if n.Host != graph.NoPort && g.IsSpecialized(n.Host) {
				queue = append(queue, n.Host)
			}
		}
	}
	return set
}
