package manifest

import (
	"context"
	"fmt"
	"maps"
	"slices"

	"github.com/vk/gridbridge/internal/ctxlog"
	"github.com/vk/gridbridge/internal/fsutil"
	"github.com/vk/gridbridge/internal/graph"
	"github.com/vk/gridbridge/internal/portref"
	"github.com/vk/gridbridge/internal/typesys"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
)

// Composition is a graph loaded from graph files, with its named cables.
type Composition struct {
	Graph  *graph.Graph
	cables map[string]graph.CableID
	names  map[graph.CableID]string
}

// Cable returns a cable by its block name.
func (c *Composition) Cable(name string) (graph.CableID, bool) {
	id, ok := c.cables[name]
	return id, ok
}

// CableNames returns the sorted cable names.
func (c *Composition) CableNames() []string {
	return slices.Sorted(maps.Keys(c.cables))
}

// CableName returns the block name of a cable, or "#<id>" for cables the
// graph files did not declare.
func (c *Composition) CableName(id graph.CableID) string {
	if name, ok := c.names[id]; ok {
		return name
	}
	return fmt.Sprintf("#%d", id)
}

// Port resolves a `node.port` address.
func (c *Composition) Port(addr string) (graph.PortID, error) {
	return resolvePort(c.Graph, addr)
}

func resolvePort(g *graph.Graph, addr string) (graph.PortID, error) {
	a, err := portref.Parse(addr)
	if err != nil {
		return graph.NoPort, err
	}
	node, ok := g.NodeByTitle(a.Node)
	if !ok {
		return graph.NoPort, fmt.Errorf("port %s: %w", addr, graph.ErrUnknownNode)
	}
	port, ok := g.PortByName(node, a.PortName())
	if !ok {
		return graph.NoPort, fmt.Errorf("port %s: %w", addr, graph.ErrUnknownPort)
	}
	return port, nil
}

// LoadGraph reads the graph files at path, a file or a directory, against
// the node classes of mod. Nodes are created first, then attachments,
// constants and cables.
func (l *Loader) LoadGraph(ctx context.Context, mod *Module, path string) (*Composition, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Graph loading started.", "path", path)

	files, err := fsutil.ResolvePath(path, hclExt)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve graph path '%s': %w", path, err)
	}
	roots, err := l.parseFiles(ctx, files)
	if err != nil {
		return nil, err
	}

	var nodes []*nodeBlock
	var cables []*cableBlock
	for _, root := range roots {
		if len(root.Types) > 0 || len(root.Converters) > 0 || len(root.NodeClasses) > 0 {
			logger.Warn("Module blocks found in a graph file, ignoring them.")
		}
		nodes = append(nodes, root.Nodes...)
		cables = append(cables, root.Cables...)
	}

	comp := &Composition{
		Graph:  graph.New(),
		cables: make(map[string]graph.CableID),
		names:  make(map[graph.CableID]string),
	}
	g := comp.Graph
	for _, nb := range nodes {
		class, ok := mod.Class(nb.Class)
		if !ok {
			return nil, fmt.Errorf("node %q: %w %q", nb.Title, ErrUnknownClass, nb.Class)
		}
		if len(nb.Specialize) > 0 {
			bindings := make(map[string]typesys.TypeID, len(nb.Specialize))
			for v, id := range nb.Specialize {
				bindings[v] = typesys.TypeID(id)
			}
			if class, err = class.Specialize(bindings); err != nil {
				return nil, fmt.Errorf("node %q: %w", nb.Title, err)
			}
		}
		if _, err := g.AddNode(nb.Title, class); err != nil {
			return nil, err
		}
		logger.Debug("Added node.", "node", nb.Title, "class", class.Name())
	}

	for _, nb := range nodes {
		if nb.Host == nil {
			continue
		}
		host, err := resolvePort(g, *nb.Host)
		if err != nil {
			return nil, fmt.Errorf("node %q host: %w", nb.Title, err)
		}
		id, _ := g.NodeByTitle(nb.Title)
		if err := g.Attach(id, host); err != nil {
			return nil, err
		}
	}

	for _, nb := range nodes {
		if err := l.setConstants(ctx, mod, g, nb); err != nil {
			return nil, err
		}
	}

	for _, cb := range cables {
		if _, dup := comp.cables[cb.Name]; dup {
			return nil, fmt.Errorf("cable %q: %w", cb.Name, ErrDuplicateCable)
		}
		from, err := resolvePort(g, cb.From)
		if err != nil {
			return nil, fmt.Errorf("cable %q: %w", cb.Name, err)
		}
		to, err := resolvePort(g, cb.To)
		if err != nil {
			return nil, fmt.Errorf("cable %q: %w", cb.Name, err)
		}
		var opts []graph.CableOption
		if cb.EventOnly != nil && *cb.EventOnly {
			opts = append(opts, graph.EventOnly())
		}
		id, err := g.Connect(from, to, opts...)
		if err != nil {
			return nil, fmt.Errorf("cable %q: %w", cb.Name, err)
		}
		comp.cables[cb.Name] = id
		comp.names[id] = cb.Name
	}

	logger.Info("Graph loaded.", "nodes", len(nodes), "cables", len(cables))
	return comp, nil
}

// setConstants stores a node's constants, converting each to its port's
// value type when the port's type is concrete and has one.
func (l *Loader) setConstants(ctx context.Context, mod *Module, g *graph.Graph, nb *nodeBlock) error {
	if !isExprDefined(ctx, nb.Constants, "constants") {
		return nil
	}
	val, diags := nb.Constants.Value(nil)
	if diags.HasErrors() {
		return fmt.Errorf("node %q constants: %w", nb.Title, diags)
	}
	if !val.Type().IsObjectType() && !val.Type().IsMapType() {
		return fmt.Errorf("node %q: %w", nb.Title, ErrBadConstants)
	}

	id, _ := g.NodeByTitle(nb.Title)
	for name, v := range val.AsValueMap() {
		port, ok := g.PortByName(id, name)
		if !ok {
			return fmt.Errorf("node %q constant %q: %w", nb.Title, name, graph.ErrUnknownPort)
		}
		valueType := cty.NilType
		if t := g.Type(port); t.IsConcrete() {
			if vt, ok := mod.Catalog.ValueType(t.ID()); ok {
				valueType = vt
			}
		}
		if valueType != cty.NilType {
			converted, err := convert.Convert(v, valueType)
			if err != nil {
				return fmt.Errorf("node %q constant %q: %w", nb.Title, name, err)
			}
			v = converted
		}
		if err := g.SetConstant(port, v, valueType); err != nil {
			return err
		}
	}
	return nil
}
