package executor

import (
	"fmt"

	"github.com/zclconf/go-cty/cty"
)

// ctyValueToInterface converts a cty.Value to a Go interface{} for logging.
func ctyValueToInterface(val cty.Value) (any, error) {
	if !val.IsKnown() || val.IsNull() {
		return nil, nil
	}
	if val.Type().IsPrimitiveType() {
		switch val.Type() {
		case cty.String:
			return val.AsString(), nil
		case cty.Number:
			f, _ := val.AsBigFloat().Float64()
			return f, nil
		case cty.Bool:
			return val.True(), nil
		default:
			return nil, fmt.Errorf("unsupported primitive type: %s", val.Type().FriendlyName())
		}
	}
	if val.Type().IsObjectType() || val.Type().IsMapType() {
		out := make(map[string]any)
		for it := val.ElementIterator(); it.Next(); {
			k, v := it.Element()
			valInterface, err := ctyValueToInterface(v)
			if err != nil {
				return nil, err
			}
			out[k.AsString()] = valInterface
		}
		return out, nil
	}
	if val.Type().IsTupleType() || val.Type().IsListType() {
		var out []any
		for it := val.ElementIterator(); it.Next(); {
			_, v := it.Element()
			valInterface, err := ctyValueToInterface(v)
			if err != nil {
				return nil, err
			}
			out = append(out, valInterface)
		}
		return out, nil
	}
	return nil, fmt.Errorf("unsupported cty.Type for conversion: %s", val.Type().FriendlyName())
}

// formatValueForLogs converts a value to its loggable representation.
// For cty.Value, it's converted to a Go interface. Other types pass through.
func formatValueForLogs(v any) any {
	if ctyVal, ok := v.(cty.Value); ok {
		converted, err := ctyValueToInterface(ctyVal)
		if err != nil {
			return fmt.Sprintf("[unloggable cty.Value: %v]", err)
		}
		return converted
	}
	return v
}
