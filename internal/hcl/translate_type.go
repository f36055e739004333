// This file contains the logic for parsing HCL type expressions (e.g.,
// `string`, `list(number)`) into their corresponding cty.Type objects.

package hcl

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/mz/nerfnavgo/internal/ctxlog"
	"github.com/zclconf/go-cty/cty"
)

// typeExprToCtyType converts an HCL type expression into its cty.Type equivalent.
func typeExprToCtyType(ctx context.Context, expr hcl.Expression) (cty.Type, error) {
	logger := ctxlog.FromContext(ctx)

	if expr == nil {
		logger.Debug("Type expression is nil, defaulting to any.")
		return cty.DynamicPseudoType, nil
	}

	// A type switch over the concrete hclsyntax expression types is the only
	// way to tell a primitive keyword from a constructor call.
	switch v := expr.(type) {
	case *hclsyntax.FunctionCallExpr:
		if v.Name == "object" {
			return objectTypeFromCall(ctx, v)
		}

		if len(v.Args) != 1 {
			return cty.DynamicPseudoType, fmt.Errorf("type constructors (list, map, set) require exactly one argument, got %d", len(v.Args))
		}

		elementType, err := typeExprToCtyType(ctx, v.Args[0])
		if err != nil {
			return cty.DynamicPseudoType, err
		}
		if elementType == cty.DynamicPseudoType {
			return cty.DynamicPseudoType, fmt.Errorf("collection types cannot contain type 'any'")
		}

		switch v.Name {
		case "list":
			return cty.List(elementType), nil
		case "map":
			return cty.Map(elementType), nil
		case "set":
			return cty.Set(elementType), nil
		default:
			return cty.DynamicPseudoType, fmt.Errorf("unknown type constructor function %q", v.Name)
		}

	case *hclsyntax.ScopeTraversalExpr:
		if len(v.Traversal) != 1 {
			return cty.DynamicPseudoType, fmt.Errorf("invalid type keyword: traversal path is not a single identifier")
		}
		switch rootName := v.Traversal.RootName(); rootName {
		case "string":
			return cty.String, nil
		case "number":
			return cty.Number, nil
		case "bool":
			return cty.Bool, nil
		case "any":
			return cty.DynamicPseudoType, nil
		default:
			return cty.DynamicPseudoType, fmt.Errorf("unknown primitive type %q", rootName)
		}

	default:
		return cty.DynamicPseudoType, fmt.Errorf("unsupported expression for type definition: %T", v)
	}
}

// objectTypeFromCall parses an `object({ key = type, ... })` constructor.
func objectTypeFromCall(ctx context.Context, call *hclsyntax.FunctionCallExpr) (cty.Type, error) {
	if len(call.Args) != 1 {
		return cty.DynamicPseudoType, fmt.Errorf("the object() type constructor requires exactly one argument (the object definition), got %d", len(call.Args))
	}

	objExpr, ok := call.Args[0].(*hclsyntax.ObjectConsExpr)
	if !ok {
		return cty.DynamicPseudoType, fmt.Errorf("the argument to object() must be an object literal like { key = type, ... }, got %T", call.Args[0])
	}

	attrTypes := make(map[string]cty.Type)
	for _, item := range objExpr.Items {
		key := objectAttributeKey(item.KeyExpr)
		if key == "" {
			return cty.DynamicPseudoType, fmt.Errorf("invalid key in object type definition: keys must be simple identifiers or quoted strings")
		}

		valueType, err := typeExprToCtyType(ctx, item.ValueExpr)
		if err != nil {
			return cty.DynamicPseudoType, fmt.Errorf("in object attribute '%s': %w", key, err)
		}
		attrTypes[key] = valueType
	}
	return cty.Object(attrTypes), nil
}

// objectAttributeKey extracts a plain string key from an object constructor
// item, unwrapping the special ObjectConsKeyExpr wrapper HCL uses for keys.
func objectAttributeKey(expr hclsyntax.Expression) string {
	keyExpr, ok := expr.(*hclsyntax.ObjectConsKeyExpr)
	if !ok {
		return ""
	}
	switch kexpr := keyExpr.Wrapped.(type) {
	case *hclsyntax.ScopeTraversalExpr:
		if len(kexpr.Traversal) == 1 {
			return kexpr.Traversal.RootName()
		}
	case *hclsyntax.TemplateExpr:
		if len(kexpr.Parts) == 1 {
			if lit, isLit := kexpr.Parts[0].(*hclsyntax.LiteralValueExpr); isLit && lit.Val.Type().Equals(cty.String) {
				return lit.Val.AsString()
			}
		}
	}
	return ""
}
