package bridge

import (
	"fmt"
	"strings"

	"github.com/vk/gridbridge/internal/graph"
	"github.com/vk/gridbridge/internal/typesys"
)

// Kind classifies a Solution.
type Kind int

const (
	// Direct connects the ports as they are.
	Direct Kind = iota
	// SpecializeOnly changes port types and inserts nothing.
	SpecializeOnly
	// TypeConvert inserts a converter and changes no port type.
	TypeConvert
	// SpecializeAndConvert changes port types and inserts a converter.
	SpecializeAndConvert
)

func (k Kind) String() string {
	switch k {
	case Direct:
		return "direct"
	case SpecializeOnly:
		return "specialize"
	case TypeConvert:
		return "convert"
	case SpecializeAndConvert:
		return "specialize-and-convert"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Specialization resolves one endpoint (and with it, its network) to Type.
type Specialization struct {
	Port     graph.PortID
	Type     typesys.TypeID
	Variable string
	Element  typesys.TypeID
	// NoChange is set when the port already has Type.
	NoChange bool
}

// Solution is one way to make a connection legal.
type Solution struct {
	Kind            Kind
	Specializations []Specialization
	Converter       typesys.ConverterID
	// ConvertFrom and ConvertTo are the fixed types the converter joins.
	ConvertFrom typesys.TypeID
	ConvertTo   typesys.TypeID
}

// NoChange reports whether the solution specializes ports but leaves every
// one of them at its current type.
func (s Solution) NoChange() bool {
	if len(s.Specializations) == 0 {
		return false
	}
	for _, sp := range s.Specializations {
		if !sp.NoChange {
			return false
		}
	}
	return true
}

// SpecializationOf returns the specialization applied to port, if any.
func (s Solution) SpecializationOf(port graph.PortID) (Specialization, bool) {
	for _, sp := range s.Specializations {
		if sp.Port == port {
			return sp, true
		}
	}
	return Specialization{}, false
}

func (s Solution) key() string {
	var b strings.Builder
	b.WriteString(s.Kind.String())
	for _, sp := range s.Specializations {
		fmt.Fprintf(&b, "|%d=%s", sp.Port, sp.Type)
	}
	if s.Converter != "" {
		fmt.Fprintf(&b, "|%s:%s>%s", s.Converter, s.ConvertFrom, s.ConvertTo)
	}
	return b.String()
}

// Describe renders the solution with port names taken from g.
func (s Solution) Describe(g *graph.Graph) string {
	parts := []string{s.Kind.String()}
	for _, sp := range s.Specializations {
		p := fmt.Sprintf("%s=%s", g.PortName(sp.Port), sp.Type)
		if sp.NoChange {
			p += " (unchanged)"
		}
		parts = append(parts, p)
	}
	if s.Converter != "" {
		parts = append(parts, fmt.Sprintf("via %s (%s -> %s)", s.Converter, s.ConvertFrom, s.ConvertTo))
	}
	return strings.Join(parts, " ")
}
