package manifest

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/gridbridge/internal/graph"
	"github.com/vk/gridbridge/internal/testutil"
	"github.com/vk/gridbridge/internal/typesys"
	"github.com/zclconf/go-cty/cty"
)

const typesHCL = `
type "Real" {
  value    = number
  node_set = "math"
}

type "Integer" {
  value    = number
  node_set = "math"
}

type "Text" {
  value = string
}

type "Point2D" {
  value = object({ x = number, "y" = number })
  list  = false
}

type "Boolean" {}
`

const classesHCL = `
converter "RealToText" {
  from = "Real"
  to   = "Text"
}

converter "ListFirst" {
  from = "List<Real>"
  to   = "Real"
}

node_class "math.add" {
  input "values" {
    type = list(generic(T, [Real, Integer]))
  }
  input "refresh" {}
  output "sum" {
    type = generic(T, [Real, Integer])
  }
}

node_class "print.text" {
  input "value" {
    type = Text
  }
  input "tick" {
    type = event
  }
}

node_class "list.drawer" {
  output "item" {
    type = generic(T)
  }
  output "any" {
    type = generic(U, any)
  }
  output "quoted" {
    type = "List<Real>"
  }
  output "lists" {
    type = generic(L, any_list)
  }
}
`

func loadModules(t *testing.T, files map[string]string) (*Module, error) {
	t.Helper()
	root := testutil.WriteFiles(t, files)
	return NewLoader().LoadModules(context.Background(), filepath.Join(root, "modules"), filepath.Join(root, "missing"))
}

func TestLoadModules(t *testing.T) {
	mod, err := loadModules(t, map[string]string{
		"modules/types.hcl":        typesHCL,
		"modules/nested/nodes.hcl": classesHCL,
	})
	require.NoError(t, err)

	cat := mod.Catalog
	assert.Equal(t, []typesys.TypeID{"Boolean", "Integer", "Point2D", "Real", "Text"}, cat.NonListTypes())
	assert.Equal(t, []typesys.TypeID{"List<Boolean>", "List<Integer>", "List<Real>", "List<Text>"}, cat.ListTypes())
	assert.Equal(t, []typesys.ConverterID{"RealToText"}, cat.TypeConverters("Real", "Text"))
	assert.Equal(t, []typesys.ConverterID{"ListFirst"}, cat.TypeConverters("List<Real>", "Real"))
	assert.Equal(t, "math", cat.NodeSetOf("Real"))

	vt, ok := cat.ValueType("Point2D")
	require.True(t, ok)
	assert.True(t, vt.Equals(cty.Object(map[string]cty.Type{"x": cty.Number, "y": cty.Number})))
	vt, ok = cat.ValueType("List<Real>")
	require.True(t, ok)
	assert.True(t, vt.Equals(cty.List(cty.Number)))
	_, ok = cat.ValueType("Boolean")
	assert.False(t, ok)

	assert.Equal(t, []string{"list.drawer", "math.add", "print.text"}, mod.ClassNames())

	add, ok := mod.Class("math.add")
	require.True(t, ok)
	ports := add.Ports()
	require.Len(t, ports, 3)
	assert.Equal(t, "values", ports[0].Name)
	assert.True(t, ports[0].Type.IsGeneric())
	assert.True(t, ports[0].Type.IsList())
	assert.Equal(t, typesys.NewElementSet("Integer", "Real"), ports[0].Type.Elements())
	assert.Equal(t, graph.Input, ports[1].Direction)
	assert.False(t, ports[1].Type.HasData())
	assert.Equal(t, graph.Output, ports[2].Direction)
	assert.Equal(t, "T", ports[2].Type.Variable())

	drawer, _ := mod.Class("list.drawer")
	item, _ := drawer.Port("item")
	assert.True(t, item.Type.Elements().Any)
	quoted, _ := drawer.Port("quoted")
	assert.Equal(t, typesys.Concrete("List<Real>"), quoted.Type)
	lists, _ := drawer.Port("lists")
	assert.True(t, lists.Type.IsList())
	assert.Equal(t, typesys.CompatAnyListType, lists.Type.Compatibility().Kind)

	text, _ := mod.Class("print.text")
	tick, _ := text.Port("tick")
	assert.False(t, tick.Type.HasData())
}

func classWithInput(typeExpr string) string {
	return fmt.Sprintf(`
node_class "x" {
  input "a" {
    type = %s
  }
}`, typeExpr)
}

const (
	badConverterHCL = `
converter "c" {
  from = "Real"
  to   = "Mystery"
}`
	duplicateClassHCL = `
node_class "x" {}
node_class "x" {}
`
	duplicatePortHCL = `
node_class "x" {
  input "a" {}
  output "a" {}
}`
)

func TestLoadModules_Errors(t *testing.T) {
	testCases := []struct {
		name    string
		hcl     string
		wantErr error
		errText string
	}{
		{name: "unknown port type", hcl: classWithInput("Mystery"), wantErr: ErrUnknownType},
		{name: "unknown generic candidate", hcl: classWithInput("generic(T, [Real, Mystery])"), wantErr: ErrUnknownType},
		{name: "unknown converter type", hcl: badConverterHCL, wantErr: ErrUnknownType},
		{name: "duplicate class", hcl: duplicateClassHCL, wantErr: ErrDuplicateClass},
		{name: "duplicate port", hcl: duplicatePortHCL, wantErr: graph.ErrDuplicatePort},
		{name: "nested list", hcl: classWithInput("list(list(Real))"), errText: "nested list types"},
		{name: "generic without variable", hcl: classWithInput("generic()"), errText: "one or two arguments"},
		{name: "unknown constructor", hcl: classWithInput("tuple(Real)"), errText: "unknown type constructor"},
		{name: "list of event", hcl: classWithInput("list(event)"), errText: "event"},
		{name: "bad value type", hcl: `type "Weird" { value = decimal }`, errText: "unknown primitive type"},
		{name: "list type declared directly", hcl: `type "List<Real>" {}`, errText: "derived from their item type"},
		{name: "syntax error", hcl: `node_class "x" {`, errText: "failed to parse"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := loadModules(t, map[string]string{
				"modules/types.hcl": `type "Real" { value = number }`,
				"modules/case.hcl":  tc.hcl,
			})
			require.Error(t, err)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
			}
			if tc.errText != "" {
				assert.Contains(t, err.Error(), tc.errText)
			}
		})
	}
}

const graphHCL = `
node "add" {
  class      = "math.add"
  specialize = { T = "Real" }
}

node "drawer" {
  class = "list.drawer"
  host  = "add.values"
}

node "out" {
  class     = "print.text"
  constants = { value = 2 }
}

cable "sum" {
  from = "add.sum"
  to   = "out.tick"
}

cable "quiet" {
  from       = "drawer.item"
  to         = "out.value"
  event_only = true
}
`

func TestLoadGraph(t *testing.T) {
	root := testutil.WriteFiles(t, map[string]string{
		"modules/types.hcl": typesHCL,
		"modules/nodes.hcl": classesHCL,
		"graph/main.hcl":    graphHCL,
	})
	l := NewLoader()
	mod, err := l.LoadModules(context.Background(), filepath.Join(root, "modules"))
	require.NoError(t, err)

	comp, err := l.LoadGraph(context.Background(), mod, filepath.Join(root, "graph"))
	require.NoError(t, err)
	g := comp.Graph

	addSum, err := comp.Port("add.sum")
	require.NoError(t, err)
	assert.Equal(t, typesys.Concrete("Real"), g.Type(addSum))
	assert.True(t, g.IsSpecialized(addSum))

	drawer, _ := g.NodeByTitle("drawer")
	n, _ := g.Node(drawer)
	hostPort, _ := comp.Port("add.values")
	assert.Equal(t, hostPort, n.Host)

	outValue, _ := comp.Port("out.value")
	p, _ := g.Port(outValue)
	assert.True(t, p.Constant.RawEquals(cty.StringVal("2")))

	assert.Equal(t, []string{"quiet", "sum"}, comp.CableNames())
	quiet, ok := comp.Cable("quiet")
	require.True(t, ok)
	c, _ := g.Cable(quiet)
	assert.True(t, c.AlwaysEventOnly)
	assert.False(t, g.CarriesData(quiet))
	for _, name := range comp.CableNames() {
		id, _ := comp.Cable(name)
		assert.Equal(t, name, comp.CableName(id))
	}
	assert.Equal(t, "#99", comp.CableName(graph.CableID(99)))

	_, err = comp.Port("nope.value")
	assert.ErrorIs(t, err, graph.ErrUnknownNode)
	_, err = comp.Port("out.nope")
	assert.ErrorIs(t, err, graph.ErrUnknownPort)
}

// node renders a node block with the given attribute lines.
func node(title string, attrs ...string) string {
	return fmt.Sprintf("node %q {\n  %s\n}\n", title, strings.Join(attrs, "\n  "))
}

func cable(name, from, to string) string {
	return fmt.Sprintf("cable %q {\n  from = %q\n  to   = %q\n}\n", name, from, to)
}

func TestLoadGraph_Errors(t *testing.T) {
	testCases := []struct {
		name    string
		hcl     string
		wantErr error
		errText string
	}{
		{name: "unknown class", hcl: node("a", `class = "nope"`), wantErr: ErrUnknownClass},
		{
			name:    "bad specialization",
			hcl:     node("a", `class = "math.add"`, `specialize = { T = "Text" }`),
			wantErr: graph.ErrIncompatibleType,
		},
		{
			name:    "unknown cable port",
			hcl:     node("a", `class = "math.add"`) + cable("c", "a.nope", "a.values"),
			wantErr: graph.ErrUnknownPort,
		},
		{
			name: "duplicate cable",
			hcl: node("a", `class = "math.add"`) + node("b", `class = "math.add"`) +
				cable("c", "a.sum", "b.values") + cable("c", "a.sum", "b.refresh"),
			wantErr: ErrDuplicateCable,
		},
		{
			name:    "constant of wrong shape",
			hcl:     node("a", `class = "print.text"`, `constants = { value = [1, 2] }`),
			errText: `constant "value"`,
		},
		{
			name:    "constants not an object",
			hcl:     node("a", `class = "print.text"`, `constants = "x"`),
			wantErr: ErrBadConstants,
		},
		{
			name:    "bad host",
			hcl:     node("a", `class = "print.text"`, `host = "a"`),
			errText: "host",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			root := testutil.WriteFiles(t, map[string]string{
				"modules/types.hcl": typesHCL,
				"modules/nodes.hcl": classesHCL,
				"graph.hcl":         tc.hcl,
			})
			l := NewLoader()
			mod, err := l.LoadModules(context.Background(), filepath.Join(root, "modules"))
			require.NoError(t, err)

			_, err = l.LoadGraph(context.Background(), mod, filepath.Join(root, "graph.hcl"))
			require.Error(t, err)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
			}
			if tc.errText != "" {
				assert.Contains(t, err.Error(), tc.errText)
			}
		})
	}
}
