package manifest

import (
	"context"
	"fmt"
	"maps"
	"slices"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/vk/gridbridge/internal/ctxlog"
	"github.com/vk/gridbridge/internal/fsutil"
	"github.com/vk/gridbridge/internal/graph"
	"github.com/vk/gridbridge/internal/typesys"
	"github.com/zclconf/go-cty/cty"
)

const hclExt = ".hcl"

// Module is everything loaded from the module manifests: the type registry
// and the generic node classes.
type Module struct {
	Registry *typesys.StaticRegistry
	Catalog  *typesys.Catalog
	classes  map[string]*graph.NodeClass
}

// Class returns a node class by name.
func (m *Module) Class(name string) (*graph.NodeClass, bool) {
	c, ok := m.classes[name]
	return c, ok
}

// ClassNames returns the sorted names of all node classes.
func (m *Module) ClassNames() []string {
	return slices.Sorted(maps.Keys(m.classes))
}

// Loader reads HCL manifests and graph files.
type Loader struct{}

// NewLoader creates a new HCL loader.
func NewLoader() *Loader {
	return &Loader{}
}

// parseFiles decodes every file into a fileRoot.
func (l *Loader) parseFiles(ctx context.Context, files []string) ([]*fileRoot, error) {
	logger := ctxlog.FromContext(ctx)
	parser := hclparse.NewParser()

	roots := make([]*fileRoot, 0, len(files))
	for _, file := range files {
		logger.Debug("Decoding HCL file.", "path", file)
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse HCL file %s: %w", file, diags)
		}
		var root fileRoot
		if diags := gohcl.DecodeBody(hclFile.Body, nil, &root); diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode HCL file %s: %w", file, diags)
		}
		roots = append(roots, &root)
	}
	return roots, nil
}

// LoadModules reads every manifest under paths. Paths that do not exist are
// skipped. Types are registered first, then converters, then node classes,
// so blocks may reference each other across files in any order.
func (l *Loader) LoadModules(ctx context.Context, paths ...string) (*Module, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Module discovery started.", "path_count", len(paths))

	files, err := fsutil.FindAll(hclExt, paths...)
	if err != nil {
		return nil, fmt.Errorf("error finding module manifests: %w", err)
	}
	logger.Debug("Discovered HCL files.", "count", len(files))

	roots, err := l.parseFiles(ctx, files)
	if err != nil {
		return nil, err
	}

	reg := typesys.NewStaticRegistry()
	mod := &Module{
		Registry: reg,
		Catalog:  typesys.NewCatalog(reg),
		classes:  make(map[string]*graph.NodeClass),
	}

	for _, root := range roots {
		if len(root.Nodes) > 0 || len(root.Cables) > 0 {
			logger.Warn("Graph blocks found in a module manifest, ignoring them.", "nodes", len(root.Nodes), "cables", len(root.Cables))
		}
		for _, tb := range root.Types {
			if err := l.registerType(ctx, reg, tb); err != nil {
				return nil, err
			}
		}
	}
	for _, root := range roots {
		for _, cb := range root.Converters {
			for _, id := range []string{cb.From, cb.To} {
				if !reg.HasType(typesys.TypeID(id)) {
					return nil, fmt.Errorf("converter %q: %w %q", cb.Name, ErrUnknownType, id)
				}
			}
			reg.AddConverter(typesys.ConverterID(cb.Name), typesys.TypeID(cb.From), typesys.TypeID(cb.To))
			logger.Debug("Discovered converter.", "converter", cb.Name, "from", cb.From, "to", cb.To)
		}
	}
	for _, root := range roots {
		for _, nb := range root.NodeClasses {
			class, err := l.translateNodeClass(ctx, reg, nb)
			if err != nil {
				return nil, err
			}
			if _, exists := mod.classes[class.Name()]; exists {
				return nil, fmt.Errorf("node class %q: %w", class.Name(), ErrDuplicateClass)
			}
			logger.Debug("Discovered node class.", "class", class.Name(), "ports", len(class.Ports()))
			mod.classes[class.Name()] = class
		}
	}

	logger.Info("Modules loaded.", "types", len(reg.AllConcreteTypes()), "classes", len(mod.classes))
	return mod, nil
}

func (l *Loader) registerType(ctx context.Context, reg *typesys.StaticRegistry, tb *typeBlock) error {
	logger := ctxlog.FromContext(ctx).With("type", tb.Name)
	id := typesys.TypeID(tb.Name)
	if typesys.IsListType(id) {
		return fmt.Errorf("type %q: list types are derived from their item type", tb.Name)
	}

	valueType, err := valueTypeExpr(ctx, tb.Value)
	if err != nil {
		return fmt.Errorf("in type %q: %w", tb.Name, err)
	}
	if reg.HasType(id) {
		logger.Warn("Duplicate type definition found, overwriting.")
	}

	var opts []typesys.TypeOption
	if tb.NodeSet != nil {
		opts = append(opts, typesys.WithNodeSet(*tb.NodeSet))
	}
	if valueType != cty.NilType {
		opts = append(opts, typesys.WithValueType(valueType))
	}
	reg.AddType(id, opts...)
	if tb.List == nil || *tb.List {
		reg.AddListType(id)
	}
	logger.Debug("Discovered type.", "list", tb.List == nil || *tb.List)
	return nil
}

func (l *Loader) translateNodeClass(ctx context.Context, reg *typesys.StaticRegistry, nb *nodeClassBlock) (*graph.NodeClass, error) {
	ctx = ctxlog.WithLogger(ctx, ctxlog.FromContext(ctx).With("class", nb.Name))

	ports := make([]graph.PortClass, 0, len(nb.Inputs)+len(nb.Outputs))
	add := func(pb *portBlock, dir graph.Direction) error {
		t, err := portTypeExpr(ctx, pb.Type)
		if err != nil {
			return fmt.Errorf("in node class %q, %s %q: %w", nb.Name, dir, pb.Name, err)
		}
		if err := checkKnown(reg, t); err != nil {
			return fmt.Errorf("in node class %q, %s %q: %w", nb.Name, dir, pb.Name, err)
		}
		ports = append(ports, graph.PortClass{Name: pb.Name, Direction: dir, Type: t})
		return nil
	}
	for _, in := range nb.Inputs {
		if err := add(in, graph.Input); err != nil {
			return nil, err
		}
	}
	for _, out := range nb.Outputs {
		if err := add(out, graph.Output); err != nil {
			return nil, err
		}
	}
	return graph.NewNodeClass(nb.Name, ports...)
}

// checkKnown fails when t names a type the registry does not know.
func checkKnown(reg *typesys.StaticRegistry, t typesys.Type) error {
	var ids []typesys.TypeID
	switch {
	case t.IsConcrete():
		ids = []typesys.TypeID{t.ID()}
	case t.IsGeneric():
		if t.Elements().IsEmpty() {
			return fmt.Errorf("generic %s has no compatible types", t.Variable())
		}
		ids = t.Elements().IDs
	}
	for _, id := range ids {
		if !reg.HasType(id) {
			return fmt.Errorf("%w %q", ErrUnknownType, id)
		}
	}
	return nil
}
