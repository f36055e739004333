package hcl

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/mz/nerfnavgo/internal/config"
	"github.com/mz/nerfnavgo/internal/ctxlog"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/gocty"
)

// DecodeBody iterates through the fields of a Go struct, finds the
// corresponding HCL arguments, and uses the recursive `decode` helper to
// populate them. Fields are matched to manifest inputs by their `nng` tag.
func (c *Converter) DecodeBody(
	ctx context.Context,
	inputStruct any,
	args map[string]hcl.Expression,
	defs map[string]*config.InputDefinition,
	evalCtx *hcl.EvalContext,
) error {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Starting HCL body decoding.")

	structVal := reflect.ValueOf(inputStruct)
	if structVal.Kind() != reflect.Ptr || structVal.IsNil() {
		return fmt.Errorf("inputStruct must be a non-nil pointer")
	}
	structVal = structVal.Elem()
	structType := structVal.Type()

	for i := 0; i < structType.NumField(); i++ {
		fieldDef := structType.Field(i)
		fieldVal := structVal.Field(i)

		if !fieldDef.IsExported() || !fieldVal.CanSet() {
			continue
		}

		tagName := fieldDef.Tag.Get("nng")
		tagName = strings.Split(tagName, ",")[0]
		if tagName == "" || tagName == "-" {
			continue
		}

		inputDef, ok := defs[tagName]
		if !ok {
			continue // No definition for this field, skip.
		}

		var valueToDecode cty.Value
		argExpr, provided := args[tagName]

		if provided {
			val, diags := argExpr.Value(evalCtx)
			if diags.HasErrors() {
				return diags
			}
			valueToDecode = val
		} else {
			if inputDef.Default != nil {
				valueToDecode = *inputDef.Default
			} else if inputDef.Optional {
				continue
			} else {
				return fmt.Errorf("missing required argument %q", tagName)
			}
		}

		if err := c.decode(ctx, valueToDecode, inputDef.Type, fieldVal.Addr().Interface()); err != nil {
			return fmt.Errorf("failed to decode argument '%s': %w", tagName, err)
		}
	}
	logger.Debug("Finished HCL body decoding successfully.")
	return nil
}

// decode is a recursive function that populates a Go value from a cty.Value,
// guided by a manifest-derived cty.Type.
func (c *Converter) decode(ctx context.Context, val cty.Value, manifestType cty.Type, goVal any) error {
	goPtr := reflect.ValueOf(goVal).Elem()
	goType := goPtr.Type()

	// A target field of type cty.Value receives the value untouched.
	if goType == reflect.TypeOf(cty.Value{}) {
		if val.IsKnown() {
			goPtr.Set(reflect.ValueOf(val))
		}
		return nil
	}

	if !val.IsKnown() || val.IsNull() {
		return nil // Nothing to decode.
	}

	switch goType.Kind() {
	case reflect.Struct:
		if !val.Type().IsObjectType() && val.Type() != cty.DynamicPseudoType {
			return fmt.Errorf("type mismatch: cannot decode cty value of type %s into Go struct %s", val.Type().FriendlyName(), goType.String())
		}
		if !manifestType.IsObjectType() && manifestType != cty.DynamicPseudoType {
			return fmt.Errorf("type mismatch: manifest expected an object for Go struct %s, but got %s", goType.String(), manifestType.FriendlyName())
		}

		isManifestObject := manifestType.IsObjectType()
		attrMap := val.AsValueMap()

		for i := 0; i < goType.NumField(); i++ {
			fieldDef := goType.Field(i)
			fieldVal := goPtr.Field(i)

			if !fieldDef.IsExported() || !fieldVal.CanSet() {
				continue
			}

			tagName := strings.Split(fieldDef.Tag.Get("cty"), ",")[0]
			if tagName == "" || tagName == "-" {
				continue
			}

			attrVal, ok := attrMap[tagName]
			if !ok {
				continue
			}

			var attrManifestType cty.Type
			if isManifestObject {
				attrManifestType = manifestType.AttributeTypes()[tagName]
			} else {
				attrManifestType = attrVal.Type()
			}

			if err := c.decode(ctx, attrVal, attrManifestType, fieldVal.Addr().Interface()); err != nil {
				return fmt.Errorf("in attribute '%s': %w", tagName, err)
			}
		}
		return nil

	case reflect.Interface: // This handles 'any'.
		nativeVal, err := ctyToNative(val)
		if err != nil {
			return err
		}
		if nativeVal != nil {
			goPtr.Set(reflect.ValueOf(nativeVal))
		}
		return nil

	case reflect.Map:
		return c.decodeMap(ctx, val, manifestType, goPtr)

	case reflect.Slice:
		return c.decodeSlice(ctx, val, manifestType, goPtr)

	default: // Base cases for primitives (string, int, bool, float64, etc.)
		convertedVal, err := convert.Convert(val, manifestType)
		if err != nil {
			return fmt.Errorf("cannot convert value of type %s to required manifest type %s: %w", val.Type().FriendlyName(), manifestType.FriendlyName(), err)
		}
		return gocty.FromCtyValue(convertedVal, goVal)
	}
}

// decodeSlice handles decoding of a cty list or tuple into a Go slice.
func (c *Converter) decodeSlice(ctx context.Context, val cty.Value, manifestType cty.Type, goPtr reflect.Value) error {
	goType := goPtr.Type()

	if !val.Type().IsListType() && !val.Type().IsTupleType() {
		return fmt.Errorf("type mismatch: cannot decode cty.%s into Go slice %s", val.Type().FriendlyName(), goType.String())
	}
	if (!manifestType.IsListType() && !manifestType.IsTupleType()) && manifestType != cty.DynamicPseudoType {
		return fmt.Errorf("type mismatch: manifest expected a list for Go slice %s, but got %s", goType.String(), manifestType.FriendlyName())
	}

	// Tuples (mixed literal lists) get normalized to a uniform list first.
	if val.Type().IsTupleType() {
		goElemType := goType.Elem()
		ctyElemType, err := gocty.ImpliedType(reflect.Zero(goElemType).Interface())
		if err != nil {
			return fmt.Errorf("cannot imply cty type for slice element %s: %w", goElemType.String(), err)
		}

		listVal, err := convert.Convert(val, cty.List(ctyElemType))
		if err != nil {
			return fmt.Errorf("cannot convert tuple to a uniform list for slice %s: %w", goType.String(), err)
		}
		val = listVal
	}

	newSlice := reflect.MakeSlice(goType, val.LengthInt(), val.LengthInt())
	var elemManifestType cty.Type
	if manifestType.IsListType() || manifestType.IsTupleType() {
		elemManifestType = manifestType.ElementType()
	} else {
		elemManifestType = val.Type().ElementType()
	}

	it := val.ElementIterator()
	for i := 0; it.Next(); i++ {
		_, elemVal := it.Element()
		if err := c.decode(ctx, elemVal, elemManifestType, newSlice.Index(i).Addr().Interface()); err != nil {
			return fmt.Errorf("in slice element %d: %w", i, err)
		}
	}
	goPtr.Set(newSlice)
	return nil
}

// decodeMap handles the recursive decoding of a cty.Value into a Go map.
// It contains a fast path for generic map[string]any and a deep-decode path
// for typed maps.
func (c *Converter) decodeMap(ctx context.Context, val cty.Value, manifestType cty.Type, goPtr reflect.Value) error {
	if goPtr.Type() == reflect.TypeOf((map[string]any)(nil)) {
		nativeVal, err := ctyToNative(val)
		if err != nil {
			return err
		}
		if nativeVal != nil {
			goPtr.Set(reflect.ValueOf(nativeVal))
		}
		return nil
	}

	newMap := reflect.MakeMap(goPtr.Type())
	it := val.ElementIterator()

	for it.Next() {
		key, elemVal := it.Element()
		keyStr := key.AsString()

		var elemManifestType cty.Type
		if manifestType.IsMapType() {
			elemManifestType = manifestType.ElementType()
		} else {
			// When the manifest is 'any' or an object, the element's own type
			// is the manifest for the recursive call. This prevents panics
			// when val is a cty.Object.
			elemManifestType = elemVal.Type()
		}

		newElemPtr := reflect.New(goPtr.Type().Elem())
		if err := c.decode(ctx, elemVal, elemManifestType, newElemPtr.Interface()); err != nil {
			return fmt.Errorf("failed to decode map element '%s': %w", keyStr, err)
		}
		newMap.SetMapIndex(reflect.ValueOf(keyStr), newElemPtr.Elem())
	}
	goPtr.Set(newMap)
	return nil
}
