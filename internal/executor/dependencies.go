package executor

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/mz/nerfnavgo/internal/ctxlog"
	"github.com/mz/nerfnavgo/internal/dag"
	"github.com/mz/nerfnavgo/internal/registry"
)

// buildDepsStruct populates the `deps` struct for a step handler by resolving
// the step's `uses` block to live resource instances.
func (e *Executor) buildDepsStruct(ctx context.Context, node *dag.Node, handler *registry.RegisteredRunner) (any, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Building dependency struct.", "step", node.ID)

	var depsStruct any
	if handler.NewDeps != nil {
		depsStruct = handler.NewDeps()
	}
	if depsStruct == nil {
		depsStruct = &struct{}{}
	}

	if node.StepConfig.Uses == nil {
		logger.Debug("Step has no 'uses' block, returning empty deps.", "step", node.ID)
		return depsStruct, nil
	}

	usesMap := node.StepConfig.Uses
	depsValue := reflect.ValueOf(depsStruct).Elem()
	depsType := depsValue.Type()

	for i := 0; i < depsValue.NumField(); i++ {
		field := depsType.Field(i)
		fieldLogger := logger.With("step", node.ID, "go_field", field.Name)

		tag := field.Tag.Get("nng")
		if tag == "" || tag == "-" {
			fieldLogger.Debug("Dependency field has no 'nng' tag, skipping.")
			continue
		}
		lookupKey := strings.Split(tag, ",")[0]

		resourceExpr, ok := usesMap[lookupKey]
		if !ok {
			fieldLogger.Debug("No matching entry in 'uses' block for key, skipping.", "key", lookupKey)
			continue
		}

		vars := resourceExpr.Variables()
		if len(vars) != 1 {
			return nil, fmt.Errorf("field '%s' in 'uses' must be a direct reference to one resource", lookupKey)
		}
		resourceID, err := traversalToResourceID(vars[0])
		if err != nil {
			return nil, err
		}
		fieldLogger.Debug("Resolved resource dependency.", "resource_id", resourceID)

		instance, found := e.resourceInstances.Load(resourceID)
		if !found {
			return nil, fmt.Errorf("step '%s' requires resource '%s', which has not been created", node.ID, resourceID)
		}

		instanceType := reflect.TypeOf(instance)
		fieldType := field.Type

		if fieldType.Kind() == reflect.Interface {
			if !instanceType.Implements(fieldType) {
				return nil, fmt.Errorf("type mismatch for '%s': resource of type %v does not implement required interface %v", lookupKey, instanceType, fieldType)
			}
		} else if !instanceType.AssignableTo(fieldType) {
			return nil, fmt.Errorf("type mismatch for '%s': resource of type %v is not assignable to field of type %v", lookupKey, instanceType, fieldType)
		}

		fieldLogger.Debug("Injecting resource dependency.")
		depsValue.Field(i).Set(reflect.ValueOf(instance))
	}

	logger.Debug("Successfully built dependency struct.", "step", node.ID)
	return depsStruct, nil
}

// traversalToResourceID converts an HCL traversal for a resource into its canonical string ID.
func traversalToResourceID(v hcl.Traversal) (string, error) {
	if len(v) < 3 {
		return "", fmt.Errorf("invalid resource traversal")
	}
	if v.RootName() != "resource" {
		return "", fmt.Errorf("expected a 'resource' traversal, got '%s'", v.RootName())
	}
	typeAttr, typeOk := v[1].(hcl.TraverseAttr)
	nameAttr, nameOk := v[2].(hcl.TraverseAttr)
	if !typeOk || !nameOk {
		return "", fmt.Errorf("invalid resource traversal")
	}
	return fmt.Sprintf("resource.%s.%s", typeAttr.Name, nameAttr.Name), nil
}
