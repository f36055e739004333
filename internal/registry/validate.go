package registry

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/mz/nerfnavgo/internal/ctxlog"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"
)

// ValidateRegistry performs a strict parity check between declarations and Go
// code: runner manifests against handler input structs, and hyperparameter
// profiles against their registered mirror structs. It checks both the
// presence of fields and the compatibility of their types.
func (r *Registry) ValidateRegistry(ctx context.Context) error {
	var errs []string

	errs = append(errs, r.validateRunnerInputs(ctx)...)
	errs = append(errs, r.validateProfileStructs(ctx)...)

	if len(errs) > 0 {
		return fmt.Errorf("registry validation failed:\n- %s", strings.Join(errs, "\n- "))
	}
	return nil
}

func (r *Registry) validateRunnerInputs(ctx context.Context) []string {
	var errs []string
	logger := ctxlog.FromContext(ctx)

	for runnerType, def := range r.DefinitionRegistry {
		if def.Lifecycle == nil {
			continue
		}
		handler, ok := r.HandlerRegistry[def.Lifecycle.OnRun]
		if !ok {
			continue
		}

		inputType := handlerInputType(handler.NewInput)
		if inputType == nil {
			if len(def.Inputs) > 0 {
				errs = append(errs, fmt.Sprintf("runner '%s': manifest declares inputs, but Go handler has no input struct", runnerType))
			}
			continue
		}

		goInputs := taggedFields(inputType, "nng")

		for name := range goInputs {
			if _, ok := def.Inputs[name]; !ok {
				errs = append(errs, fmt.Sprintf("runner '%s': Go struct has field for input '%s' which is not declared in manifest", runnerType, name))
			}
		}
		for name := range def.Inputs {
			if _, ok := goInputs[name]; !ok {
				errs = append(errs, fmt.Sprintf("runner '%s': manifest declares input '%s' which is not found in Go struct", runnerType, name))
			}
		}

		for name, inputDef := range def.Inputs {
			goField, ok := goInputs[name]
			if !ok {
				continue // Already handled by presence check.
			}

			if inputDef.Type.Equals(cty.DynamicPseudoType) {
				logger.Warn("Manifest input uses 'type = any', which disables static type checking.", "runner", runnerType, "input", name)
				continue
			}

			if msg := checkFieldType(goField, inputDef.Type); msg != "" {
				errs = append(errs, fmt.Sprintf("runner '%s', input '%s': %s", runnerType, name, msg))
			}
		}
	}
	return errs
}

func (r *Registry) validateProfileStructs(ctx context.Context) []string {
	var errs []string
	logger := ctxlog.FromContext(ctx)

	for profileName, structType := range r.ProfileStructRegistry {
		def, ok := r.ProfileRegistry[profileName]
		if !ok {
			errs = append(errs, fmt.Sprintf("profile '%s': Go struct registered, but no profile with that name was loaded", profileName))
			continue
		}

		goParams := taggedFields(structType, "nerf")

		for name := range goParams {
			if _, ok := def.Params[name]; !ok {
				errs = append(errs, fmt.Sprintf("profile '%s': Go struct has field for param '%s' which is not declared in profile", profileName, name))
			}
		}
		for name := range def.Params {
			if _, ok := goParams[name]; !ok {
				errs = append(errs, fmt.Sprintf("profile '%s': declares param '%s' which is not found in Go struct %s", profileName, name, structType))
			}
		}

		for name, paramDef := range def.Params {
			goField, ok := goParams[name]
			if !ok {
				continue
			}
			if paramDef.Type.Equals(cty.DynamicPseudoType) {
				logger.Warn("Profile param uses 'type = any', which disables static type checking.", "profile", profileName, "param", name)
				continue
			}
			if msg := checkFieldType(goField, paramDef.Type); msg != "" {
				errs = append(errs, fmt.Sprintf("profile '%s', param '%s': %s", profileName, name, msg))
			}
		}
	}
	return errs
}

// handlerInputType resolves the concrete struct type behind a handler's
// NewInput constructor, or nil when the handler takes no input.
func handlerInputType(newInput func() any) reflect.Type {
	if newInput == nil {
		return nil
	}
	v := newInput()
	if v == nil {
		return nil
	}
	t := reflect.TypeOf(v)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil
	}
	return t
}

// taggedFields collects the exported fields of a struct type keyed by the
// given struct tag.
func taggedFields(structType reflect.Type, tagKey string) map[string]reflect.StructField {
	fields := make(map[string]reflect.StructField)
	for i := 0; i < structType.NumField(); i++ {
		field := structType.Field(i)
		if !field.IsExported() {
			continue
		}
		tagName := strings.Split(field.Tag.Get(tagKey), ",")[0]
		if tagName != "" && tagName != "-" {
			fields[tagName] = field
		}
	}
	return fields
}

// checkFieldType compares a declared cty type against the implied type of a
// Go struct field. Returns an empty string when they line up.
func checkFieldType(goField reflect.StructField, declaredType cty.Type) string {
	// cty.Value fields accept anything.
	if goField.Type == reflect.TypeOf(cty.Value{}) {
		return ""
	}

	goFieldType, err := gocty.ImpliedType(reflect.Zero(goField.Type).Interface())
	if err != nil {
		return fmt.Sprintf("could not imply cty type from Go field type %s: %v", goField.Type, err)
	}

	if !declaredType.Equals(goFieldType) {
		return fmt.Sprintf("type mismatch: declaration requires '%s' but Go struct field '%s' provides '%s'",
			declaredType.FriendlyName(), goField.Name, goFieldType.FriendlyName())
	}
	return ""
}
