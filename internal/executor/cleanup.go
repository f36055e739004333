package executor

import (
	"context"
	"reflect"

	"github.com/mz/nerfnavgo/internal/ctxlog"
	"github.com/mz/nerfnavgo/internal/dag"
)

// pushCleanup registers a resource destruction function on the LIFO cleanup
// stack. The node's destroyOnce guard keeps the stack and the efficient
// cleanup path from double-destroying.
func (e *Executor) pushCleanup(node *dag.Node, f func()) {
	e.cleanupMutex.Lock()
	defer e.cleanupMutex.Unlock()
	e.cleanupStack = append(e.cleanupStack, func() {
		node.Destroy(f)
	})
}

// executeCleanupStack destroys all remaining resources in reverse creation order.
func (e *Executor) executeCleanupStack(ctx context.Context) {
	logger := ctxlog.FromContext(ctx)
	e.cleanupMutex.Lock()
	defer e.cleanupMutex.Unlock()
	logger.Info("Executing cleanup stack...")
	for i := len(e.cleanupStack) - 1; i >= 0; i-- {
		e.cleanupStack[i]()
	}
	e.cleanupStack = nil
}

// destroyResource tears down a resource as soon as its last step dependent
// has finished, instead of waiting for the end-of-run cleanup stack.
func (e *Executor) destroyResource(ctx context.Context, node *dag.Node) {
	logger := ctxlog.FromContext(ctx)
	instance, found := e.resourceInstances.Load(node.ID)
	if !found {
		return
	}

	resourceLogger := logger.With("resource", node.ID)
	assetDef := e.registry.AssetDefinitionRegistry[node.ResourceConfig.AssetType]
	if assetDef == nil || assetDef.Lifecycle == nil {
		resourceLogger.Warn("Cannot destroy resource efficiently: asset definition or lifecycle not found.")
		return
	}

	destroyHandlerName := assetDef.Lifecycle.Destroy
	destroyHandler, ok := e.registry.AssetHandlerRegistry[destroyHandlerName]
	if !ok || destroyHandler.DestroyFn == nil {
		resourceLogger.Warn("Cannot destroy resource efficiently: destroy handler not found or is nil.", "handler", destroyHandlerName)
		return
	}

	node.Destroy(func() {
		resourceLogger.Info("🔥 Destroying resource")
		reflect.ValueOf(destroyHandler.DestroyFn).Call([]reflect.Value{reflect.ValueOf(instance)})
		e.resourceInstances.Delete(node.ID)
	})
}
