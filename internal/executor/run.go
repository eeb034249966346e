package executor

import (
	"context"
	"fmt"
	"reflect"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"

	"github.com/vk/pipelibgo/internal/conftree"
	"github.com/vk/pipelibgo/internal/ctxlog"
	"github.com/vk/pipelibgo/internal/handlers"
	"github.com/vk/pipelibgo/internal/hclcodec"
	"github.com/vk/pipelibgo/internal/runscope"
	"github.com/vk/pipelibgo/internal/stacktrace"
)

var moduleSchema = &hcl.BodySchema{
	Blocks: []hcl.BlockHeaderSchema{
		{Type: "step", LabelNames: []string{"runner", "name"}},
		{Type: "call", LabelNames: []string{"module"}},
	},
}

var stepSchema = &hcl.BodySchema{
	Blocks: []hcl.BlockHeaderSchema{{Type: "arguments"}},
}

var callSchema = &hcl.BodySchema{
	Blocks: []hcl.BlockHeaderSchema{{Type: "bindings"}},
}

// run parses the module source under its resource path (so diagnostics
// attribute to the module, not the host) and executes its blocks in source
// order inside one fresh scope.
func (e *Executor) run(ctx context.Context, source, path string, bindings map[string]any) error {
	file, diags := hclparse.NewParser().ParseHCL([]byte(source), path)
	if diags.HasErrors() {
		return diags
	}

	scope, err := runscope.New(nil, bindings)
	if err != nil {
		return err
	}
	e.refreshStateVariable(ctx, scope)

	content, diags := file.Body.Content(moduleSchema)
	if diags.HasErrors() {
		return diags
	}

	for _, block := range content.Blocks {
		if err := ctx.Err(); err != nil {
			return err
		}
		switch block.Type {
		case "step":
			if err := e.runStep(ctx, block, scope, path); err != nil {
				return err
			}
		case "call":
			if err := e.runCall(ctx, block, scope, path); err != nil {
				return err
			}
		}
		e.refreshStateVariable(ctx, scope)
	}
	return nil
}

// runStep dispatches one step block to its registered runner handler and
// folds the handler's output into pipeline state.
func (e *Executor) runStep(ctx context.Context, block *hcl.Block, scope *runscope.Scope, modulePath string) (err error) {
	runnerType := block.Labels[0]
	name := block.Labels[1]
	stepID := fmt.Sprintf("step.%s.%s", runnerType, name)
	logger := ctxlog.FromContext(ctx).With("step", stepID)
	logger.Info("▶️ Starting step")

	defer func() {
		if r := recover(); r != nil {
			// Captured inside the deferred call so the panicking frames
			// are still on the stack.
			err = e.failure(modulePath, fmt.Errorf("handler panicked: %v", r))
		}
	}()

	handler, ok := e.handlers.Lookup(runnerType)
	if !ok {
		return e.failure(modulePath, fmt.Errorf("unknown runner type '%s'", runnerType))
	}

	argsBody, diags := stepArgumentsBody(block)
	if diags.HasErrors() {
		return e.failure(modulePath, diags)
	}

	var input any
	if handler.NewInput != nil {
		input = handler.NewInput()
	}
	if input != nil {
		if err := hclcodec.DecodeArguments(ctx, input, argsBody, scope.EvalContext()); err != nil {
			return e.failure(modulePath, fmt.Errorf("failed to decode arguments for %s: %w", stepID, err))
		}
	}

	output, err := callHandler(ctx, handler, input)
	if err != nil {
		return e.failure(modulePath, err)
	}

	if output != nil {
		e.mergeStepOutput(runnerType, name, output)
	}

	logger.Info("✅ Finished step")
	return nil
}

// runCall resolves the target module and executes every match, each in its
// own fresh scope allocated by the nested Execute.
func (e *Executor) runCall(ctx context.Context, block *hcl.Block, scope *runscope.Scope, modulePath string) error {
	target := block.Labels[0]
	logger := ctxlog.FromContext(ctx).With("module", modulePath, "call", target)

	if e.resolver == nil {
		return e.failure(modulePath, fmt.Errorf("module calls unavailable: no resolver attached"))
	}

	callBindings, err := e.callBindings(block, scope)
	if err != nil {
		return e.failure(modulePath, err)
	}

	refs, err := e.resolver.Resolve(ctx, target)
	if err != nil {
		return e.failure(modulePath, err)
	}
	if len(refs) == 0 {
		return e.failure(modulePath, fmt.Errorf("module %q not found in any attached library", target))
	}

	logger.Debug("Resolved call targets.", "matches", len(refs))
	for _, ref := range refs {
		if err := e.Execute(ctx, ref.Source, ref.Path, callBindings); err != nil {
			return err
		}
	}
	return nil
}

// callBindings evaluates the call's bindings block in the calling module's
// scope and converts the result into native values for the callee.
func (e *Executor) callBindings(block *hcl.Block, scope *runscope.Scope) (map[string]any, error) {
	content, diags := block.Body.Content(callSchema)
	if diags.HasErrors() {
		return nil, diags
	}

	bindings := make(map[string]any)
	for _, inner := range content.Blocks {
		if inner.Type != "bindings" {
			continue
		}
		attrs, diags := inner.Body.JustAttributes()
		if diags.HasErrors() {
			return nil, diags
		}
		for name, attr := range attrs {
			val, diags := attr.Expr.Value(scope.EvalContext())
			if diags.HasErrors() {
				return nil, diags
			}
			native, err := conftree.FromCty(val)
			if err != nil {
				return nil, fmt.Errorf("binding %q: %w", name, err)
			}
			bindings[name] = native
		}
	}
	return bindings, nil
}

// mergeStepOutput folds a step's output into pipeline state under
// step.<runner>.<name>.output. The output is cloned first so state never
// shares structure with handler-held values, and merged with overlay
// precedence so re-running the same step instance replaces its fields.
func (e *Executor) mergeStepOutput(runnerType, name string, output map[string]any) {
	overlay := map[string]any{
		runnerType: map[string]any{
			name: map[string]any{
				"output": conftree.Clone(output),
			},
		},
	}
	e.state = conftree.Merge(e.state, overlay).(map[string]any)
}

// refreshStateVariable exposes a snapshot of accumulated step outputs to
// module expressions. The snapshot is cloned so expressions never alias
// live state.
func (e *Executor) refreshStateVariable(ctx context.Context, scope *runscope.Scope) {
	cv, err := conftree.ToCty(conftree.Clone(e.state))
	if err != nil {
		ctxlog.FromContext(ctx).Warn("Could not convert pipeline state for evaluation.", "error", err)
		cv = cty.EmptyObjectVal
	}
	scope.SetVariable(stateVariable, cv)
}

// failure wraps err with module attribution and the pruned stack span from
// the invocation boundary down to this point.
func (e *Executor) failure(modulePath string, err error) error {
	return &ModuleExecutionError{
		Path:   modulePath,
		Frames: e.pruner.Prune(stacktrace.Capture(1)),
		Err:    err,
	}
}

// stepArgumentsBody extracts the body of a step's arguments block, or nil
// when the step takes no arguments.
func stepArgumentsBody(block *hcl.Block) (hcl.Body, hcl.Diagnostics) {
	content, diags := block.Body.Content(stepSchema)
	if diags.HasErrors() {
		return nil, diags
	}
	for _, inner := range content.Blocks {
		if inner.Type == "arguments" {
			return inner.Body, nil
		}
	}
	return nil, nil
}

// callHandler invokes the runner function reflectively. Runner outputs are
// configuration mappings; anything else is a registration mistake.
func callHandler(ctx context.Context, handler *handlers.Handler, input any) (map[string]any, error) {
	fn := reflect.ValueOf(handler.Fn)
	callArgs := []reflect.Value{reflect.ValueOf(ctx)}

	if fn.Type().NumIn() > 1 {
		if input == nil {
			callArgs = append(callArgs, reflect.Zero(fn.Type().In(1)))
		} else {
			callArgs = append(callArgs, reflect.ValueOf(input))
		}
	}

	results := fn.Call(callArgs)
	outVal, errVal := results[0].Interface(), results[1].Interface()
	if errVal != nil {
		return nil, errVal.(error)
	}
	if outVal == nil {
		return nil, nil
	}
	out, ok := outVal.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("runner output must be a mapping, got %T", outVal)
	}
	return out, nil
}
