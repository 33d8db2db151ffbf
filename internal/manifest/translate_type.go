// This file contains the logic for parsing HCL type expressions: port types
// such as `generic(T, [Real, Integer])` into typesys.Type, and value shapes
// such as `object({x = number})` into cty.Type.

package manifest

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/vk/gridbridge/internal/ctxlog"
	"github.com/vk/gridbridge/internal/typesys"
	"github.com/zclconf/go-cty/cty"
)

// portTypeExpr converts a port type expression. An absent expression is an
// event-only port.
func portTypeExpr(ctx context.Context, expr hcl.Expression) (typesys.Type, error) {
	logger := ctxlog.FromContext(ctx)

	if !isExprDefined(ctx, expr, "type") {
		logger.Debug("Port type is not defined, treating the port as event-only.")
		return typesys.NoData(), nil
	}

	if call, ok := expr.(*hclsyntax.FunctionCallExpr); ok {
		logger.Debug("Parsing port type as a function call.", "call", call.Name)
		switch call.Name {
		case "list":
			if len(call.Args) != 1 {
				return typesys.Type{}, fmt.Errorf("list() requires exactly one argument, got %d", len(call.Args))
			}
			inner, err := portTypeExpr(ctx, call.Args[0])
			if err != nil {
				return typesys.Type{}, err
			}
			if !inner.HasData() {
				return typesys.Type{}, fmt.Errorf("list() cannot wrap an event type")
			}
			if inner.IsList() {
				return typesys.Type{}, fmt.Errorf("nested list types are not supported: list(%s)", inner)
			}
			return inner.AsList(), nil
		case "generic":
			return genericExpr(call)
		default:
			return typesys.Type{}, fmt.Errorf("unknown type constructor function %q", call.Name)
		}
	}

	name, ok := nameOf(expr)
	if !ok {
		return typesys.Type{}, fmt.Errorf("unsupported expression for port type: %T", expr)
	}
	logger.Debug("Parsing port type as a type name.", "name", name)
	if name == "event" {
		return typesys.NoData(), nil
	}
	return typesys.Concrete(typesys.TypeID(name)), nil
}

// genericExpr parses generic(VAR), generic(VAR, any), generic(VAR, any_list)
// and generic(VAR, [A, B]).
func genericExpr(call *hclsyntax.FunctionCallExpr) (typesys.Type, error) {
	if len(call.Args) < 1 || len(call.Args) > 2 {
		return typesys.Type{}, fmt.Errorf("generic() requires one or two arguments, got %d", len(call.Args))
	}
	variable := hcl.ExprAsKeyword(call.Args[0])
	if variable == "" {
		return typesys.Type{}, fmt.Errorf("the first argument to generic() must be a type variable name")
	}
	if len(call.Args) == 1 {
		return typesys.Generic(variable, typesys.AnyType()), nil
	}
	switch hcl.ExprAsKeyword(call.Args[1]) {
	case "any":
		return typesys.Generic(variable, typesys.AnyType()), nil
	case "any_list":
		return typesys.Generic(variable, typesys.AnyListType()), nil
	}

	items, diags := hcl.ExprList(call.Args[1])
	if diags.HasErrors() {
		return typesys.Type{}, fmt.Errorf("the second argument to generic() must be `any`, `any_list` or a list of type names: %w", diags)
	}
	ids := make([]typesys.TypeID, 0, len(items))
	for _, item := range items {
		name, ok := nameOf(item)
		if !ok {
			return typesys.Type{}, fmt.Errorf("generic(%s): compatible types must be type names", variable)
		}
		ids = append(ids, typesys.TypeID(name))
	}
	if len(ids) == 0 {
		return typesys.Type{}, fmt.Errorf("generic(%s): compatible type list is empty", variable)
	}
	return typesys.Generic(variable, typesys.Whitelist(ids...)), nil
}

// valueTypeExpr converts an HCL value shape expression into its cty.Type.
// An absent expression yields cty.NilType.
func valueTypeExpr(ctx context.Context, expr hcl.Expression) (cty.Type, error) {
	if !isExprDefined(ctx, expr, "value") {
		return cty.NilType, nil
	}

	switch v := expr.(type) {
	case *hclsyntax.FunctionCallExpr:
		if v.Name == "object" {
			return objectTypeExpr(ctx, v)
		}
		if len(v.Args) != 1 {
			return cty.NilType, fmt.Errorf("type constructors (list, map, set) require exactly one argument, got %d", len(v.Args))
		}
		elem, err := valueTypeExpr(ctx, v.Args[0])
		if err != nil {
			return cty.NilType, err
		}
		switch v.Name {
		case "list":
			return cty.List(elem), nil
		case "map":
			return cty.Map(elem), nil
		case "set":
			return cty.Set(elem), nil
		default:
			return cty.NilType, fmt.Errorf("unknown type constructor function %q", v.Name)
		}

	case *hclsyntax.ScopeTraversalExpr:
		switch kw := hcl.ExprAsKeyword(v); kw {
		case "string":
			return cty.String, nil
		case "number":
			return cty.Number, nil
		case "bool":
			return cty.Bool, nil
		default:
			return cty.NilType, fmt.Errorf("unknown primitive type %q", kw)
		}

	default:
		return cty.NilType, fmt.Errorf("unsupported expression for value type: %T", v)
	}
}

func objectTypeExpr(ctx context.Context, call *hclsyntax.FunctionCallExpr) (cty.Type, error) {
	if len(call.Args) != 1 {
		return cty.NilType, fmt.Errorf("the object() type constructor requires exactly one argument, got %d", len(call.Args))
	}
	obj, ok := call.Args[0].(*hclsyntax.ObjectConsExpr)
	if !ok {
		return cty.NilType, fmt.Errorf("the argument to object() must be an object literal like { key = type, ... }, got %T", call.Args[0])
	}

	attrs := make(map[string]cty.Type, len(obj.Items))
	for _, item := range obj.Items {
		key, ok := nameOf(unwrapKey(item.KeyExpr))
		if !ok {
			return cty.NilType, fmt.Errorf("invalid key in object type definition: keys must be simple identifiers or quoted strings")
		}
		t, err := valueTypeExpr(ctx, item.ValueExpr)
		if err != nil {
			return cty.NilType, fmt.Errorf("in object attribute '%s': %w", key, err)
		}
		attrs[key] = t
	}
	return cty.Object(attrs), nil
}

func unwrapKey(expr hclsyntax.Expression) hcl.Expression {
	if k, ok := expr.(*hclsyntax.ObjectConsKeyExpr); ok {
		return k.Wrapped
	}
	return expr
}
