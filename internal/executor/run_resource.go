package executor

import (
	"context"
	"fmt"
	"reflect"

	"github.com/mz/nerfnavgo/internal/ctxlog"
	"github.com/mz/nerfnavgo/internal/dag"
)

// runResourceNode handles the creation of a stateful resource.
func (e *Executor) runResourceNode(ctx context.Context, node *dag.Node) error {
	logger := ctxlog.FromContext(ctx).With("resource", node.ID)
	logger.Info("▶️ Creating resource")

	assetType := node.ResourceConfig.AssetType
	assetDef, ok := e.registry.AssetDefinitionRegistry[assetType]
	if !ok {
		return fmt.Errorf("unknown asset type '%s'", assetType)
	}
	if assetDef.Lifecycle == nil {
		return fmt.Errorf("asset type '%s' has no lifecycle block", assetType)
	}
	createHandlerName := assetDef.Lifecycle.Create
	destroyHandlerName := assetDef.Lifecycle.Destroy

	assetHandler, ok := e.registry.AssetHandlerRegistry[createHandlerName]
	if !ok || assetHandler.CreateFn == nil {
		return fmt.Errorf("create handler '%s' not registered", createHandlerName)
	}

	destroyHandler, ok := e.registry.AssetHandlerRegistry[destroyHandlerName]
	if !ok || destroyHandler.DestroyFn == nil {
		return fmt.Errorf("destroy handler '%s' not registered", destroyHandlerName)
	}

	logger.Debug("Decoding resource arguments.")
	inputStruct := assetHandler.NewInput()
	evalCtx := e.buildEvalContext(ctx, node)
	if inputStruct != nil {
		err := e.converter.DecodeBody(ctx, inputStruct, node.ResourceConfig.Arguments, assetDef.Inputs, evalCtx)
		if err != nil {
			return fmt.Errorf("failed to decode arguments for resource %s: %w", node.ID, err)
		}
	}

	logger.Debug("Calling resource create handler.", "handler", createHandlerName)
	handlerFunc := reflect.ValueOf(assetHandler.CreateFn)
	results := handlerFunc.Call([]reflect.Value{reflect.ValueOf(ctx), reflect.ValueOf(inputStruct)})
	resourceObj, errResult := results[0].Interface(), results[1].Interface()
	if errResult != nil {
		return errResult.(error)
	}

	node.Output = resourceObj
	e.resourceInstances.Store(node.ID, resourceObj)
	e.pushCleanup(node, func() {
		logger.Info("🔥 Destroying resource")
		reflect.ValueOf(destroyHandler.DestroyFn).Call([]reflect.Value{reflect.ValueOf(resourceObj)})
		e.resourceInstances.Delete(node.ID)
	})

	logger.Info("✅ Resource created")
	return nil
}
