package nerfconf

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/gocty"

	"github.com/mz/nerfnavgo/internal/config"
	"github.com/mz/nerfnavgo/internal/ctxlog"
)

// Resolve validates a record against a hyperparameter profile and returns the
// fully resolved configuration: unknown keys are errors, required keys must be
// present, optional keys are filled from profile defaults, and every value is
// converted to its declared type. The input record is not modified.
func Resolve(ctx context.Context, rec *Record, profile *config.ProfileDefinition) (*Record, error) {
	logger := ctxlog.FromContext(ctx).With("config", rec.Name, "profile", profile.Name)
	logger.Debug("Resolving configuration record against profile.")

	var errs []string
	out := New(rec.Name)

	for _, e := range rec.entries {
		param, ok := profile.Params[e.Key]
		if !ok {
			errs = append(errs, fmt.Sprintf("unknown key %q (not declared by profile %q)", e.Key, profile.Name))
			continue
		}
		converted, err := convert.Convert(e.Value, param.Type)
		if err != nil {
			errs = append(errs, fmt.Sprintf("key %q: cannot convert %s to %s: %v",
				e.Key, e.Value.Type().FriendlyName(), param.Type.FriendlyName(), err))
			continue
		}
		raw := ""
		if converted.RawEquals(e.Value) {
			raw = e.raw
		}
		out.setRaw(e.Key, converted, raw)
	}

	// Profile params live in a map; walk them in sorted order so the
	// resolved record (and the error list) renders the same on every run.
	names := make([]string, 0, len(profile.Params))
	for name := range profile.Params {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		param := profile.Params[name]
		if rec.Has(name) {
			continue
		}
		if param.Default != nil {
			out.Set(name, *param.Default)
			continue
		}
		if !param.Optional {
			errs = append(errs, fmt.Sprintf("missing required key %q", name))
		}
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("configuration %q does not satisfy profile %q:\n- %s",
			rec.Name, profile.Name, strings.Join(errs, "\n- "))
	}

	logger.Debug("Record resolved successfully.", "keys", out.Len())
	return out, nil
}

// DecodeRecord populates a Go struct from a resolved record using `nerf` field
// tags. Fields without a tag are ignored; tagged fields with no matching key
// are left at their zero value only if the profile marks the param optional.
func DecodeRecord(ctx context.Context, rec *Record, profile *config.ProfileDefinition, out any) error {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Decoding record into Go struct.", "config", rec.Name)

	structVal := reflect.ValueOf(out)
	if structVal.Kind() != reflect.Ptr || structVal.IsNil() {
		return fmt.Errorf("decode target must be a non-nil pointer")
	}
	structVal = structVal.Elem()
	structType := structVal.Type()

	for i := 0; i < structType.NumField(); i++ {
		field := structType.Field(i)
		fieldVal := structVal.Field(i)
		if !field.IsExported() || !fieldVal.CanSet() {
			continue
		}

		tagName := strings.Split(field.Tag.Get("nerf"), ",")[0]
		if tagName == "" || tagName == "-" {
			continue
		}

		val, present := rec.Get(tagName)
		if !present {
			param, declared := profile.Params[tagName]
			if declared && (param.Optional || param.Default != nil) {
				continue
			}
			return fmt.Errorf("record %q has no value for required key %q", rec.Name, tagName)
		}

		impliedType, err := gocty.ImpliedType(fieldVal.Interface())
		if err != nil {
			return fmt.Errorf("field %s: cannot imply cty type from %s: %w", field.Name, field.Type, err)
		}
		converted, err := convert.Convert(val, impliedType)
		if err != nil {
			return fmt.Errorf("key %q: cannot convert %s to %s: %w",
				tagName, val.Type().FriendlyName(), impliedType.FriendlyName(), err)
		}
		if err := gocty.FromCtyValue(converted, fieldVal.Addr().Interface()); err != nil {
			return fmt.Errorf("key %q: %w", tagName, err)
		}
	}

	logger.Debug("Record decoded successfully.")
	return nil
}

// ToValueMap converts a record into a map of cty string values, the shape
// runner outputs use when republishing a resolved configuration.
func (r *Record) ToValueMap() map[string]string {
	out := make(map[string]string, len(r.entries))
	for _, e := range r.entries {
		out[e.Key] = formatValue(e.Value, e.raw)
	}
	return out
}
