package typesys

import "fmt"

// CompatibilityKind is the shape of a generic's candidate set.
type CompatibilityKind int

const (
	// CompatNone means nothing is compatible; used for malformed declarations.
	CompatNone CompatibilityKind = iota
	// CompatWhitelist lists the compatible ids explicitly.
	CompatWhitelist
	// CompatAnyType accepts every known non-list type.
	CompatAnyType
	// CompatAnyListType accepts every known list type.
	CompatAnyListType
)

func (k CompatibilityKind) String() string {
	switch k {
	case CompatNone:
		return "none"
	case CompatWhitelist:
		return "whitelist"
	case CompatAnyType:
		return "any"
	case CompatAnyListType:
		return "any_list"
	default:
		return fmt.Sprintf("CompatibilityKind(%d)", int(k))
	}
}

// Compatibility is the port-level description of what a generic may become.
type Compatibility struct {
	Kind  CompatibilityKind
	Types []TypeID
}

// AnyType accepts any known non-list type.
func AnyType() Compatibility {
	return Compatibility{Kind: CompatAnyType}
}

// AnyListType accepts any known list type.
func AnyListType() Compatibility {
	return Compatibility{Kind: CompatAnyListType}
}

// Whitelist accepts exactly the given ids.
func Whitelist(ids ...TypeID) Compatibility {
	return Compatibility{Kind: CompatWhitelist, Types: ids}
}
