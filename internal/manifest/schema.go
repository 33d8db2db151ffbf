package manifest

import "github.com/hashicorp/hcl/v2"

// fileRoot decodes every top-level block a manifest or graph file may hold.
type fileRoot struct {
	Types       []*typeBlock      `hcl:"type,block"`
	Converters  []*converterBlock `hcl:"converter,block"`
	NodeClasses []*nodeClassBlock `hcl:"node_class,block"`
	Nodes       []*nodeBlock      `hcl:"node,block"`
	Cables      []*cableBlock     `hcl:"cable,block"`
	Remain      hcl.Body          `hcl:",remain"`
}

type typeBlock struct {
	Name    string         `hcl:"name,label"`
	Value   hcl.Expression `hcl:"value,optional"`
	NodeSet *string        `hcl:"node_set,optional"`
	List    *bool          `hcl:"list,optional"`
}

type converterBlock struct {
	Name string `hcl:"name,label"`
	From string `hcl:"from"`
	To   string `hcl:"to"`
}

type nodeClassBlock struct {
	Name    string       `hcl:"name,label"`
	Inputs  []*portBlock `hcl:"input,block"`
	Outputs []*portBlock `hcl:"output,block"`
}

type portBlock struct {
	Name string         `hcl:"name,label"`
	Type hcl.Expression `hcl:"type,optional"`
}

type nodeBlock struct {
	Title      string            `hcl:"title,label"`
	Class      string            `hcl:"class"`
	Specialize map[string]string `hcl:"specialize,optional"`
	Host       *string           `hcl:"host,optional"`
	Constants  hcl.Expression    `hcl:"constants,optional"`
}

type cableBlock struct {
	Name      string `hcl:"name,label"`
	From      string `hcl:"from"`
	To        string `hcl:"to"`
	EventOnly *bool  `hcl:"event_only,optional"`
}
