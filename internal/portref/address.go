package portref

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Address names a port on a node.
type Address struct {
	Node string
	Port string
	// Index is the item index of a drawer port; -1 when absent.
	Index int
}

// segmentRegex matches a node title or a port name with an optional index.
var segmentRegex = regexp.MustCompile(`^([a-zA-Z0-9_-]+)(?:\[(\d+)\])?$`)

// isValidName rejects names that are legal for the regex but confusing in
// fixtures.
func isValidName(name string) bool {
	return name != "-" && name != "_"
}

// Parse reads a `node.port` address.
func Parse(raw string) (*Address, error) {
	if raw == "" {
		return nil, fmt.Errorf("port address cannot be empty")
	}
	node, port, found := strings.Cut(raw, ".")
	if !found {
		return nil, fmt.Errorf("port address %q must have the form node.port", raw)
	}
	if node == "" || port == "" {
		return nil, fmt.Errorf("port address %q contains an empty segment", raw)
	}

	nm := segmentRegex.FindStringSubmatch(node)
	if nm == nil || nm[2] != "" || !isValidName(nm[1]) {
		return nil, fmt.Errorf("invalid node title %q in %q", node, raw)
	}
	pm := segmentRegex.FindStringSubmatch(port)
	if pm == nil || !isValidName(pm[1]) {
		return nil, fmt.Errorf("invalid port name %q in %q", port, raw)
	}

	addr := &Address{Node: nm[1], Port: pm[1], Index: -1}
	if pm[2] != "" {
		index, err := strconv.Atoi(pm[2])
		if err != nil {
			return nil, fmt.Errorf("internal error parsing index: %w", err)
		}
		addr.Index = index
	}
	return addr, nil
}

// MustParse is Parse for literals known to be valid.
func MustParse(raw string) *Address {
	addr, err := Parse(raw)
	if err != nil {
		panic(err)
	}
	return addr
}

// PortName returns the port segment including any index, e.g. `item[2]`.
func (a *Address) PortName() string {
	if a.Index < 0 {
		return a.Port
	}
	return fmt.Sprintf("%s[%d]", a.Port, a.Index)
}

// String serializes the address into its canonical form.
func (a *Address) String() string {
	if a == nil {
		return ""
	}
	return a.Node + "." + a.PortName()
}

// Equal reports whether two addresses name the same port.
func (a *Address) Equal(other *Address) bool {
	if a == nil || other == nil {
		return a == other
	}
	return *a == *other
}
