package runner

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"

	"github.com/abdul-hamid-achik/bspec/packages/core/spec"
)

// scope is one enclosing group on an example's path, carrying the group's
// hooks and its shared beforeAll resources.
type scope struct {
	node *spec.Node
	res  *groupResources
}

// groupResources memoizes a group's beforeAll initialization. The first
// example needing the resource runs it; concurrent siblings block on the
// same once-cell. An initialization failure is memoized and replayed to
// every waiter. Teardown runs at most once, and only after a successful
// initialization.
type groupResources struct {
	hooks spec.Hooks

	once        sync.Once
	initErr     error
	initialized bool
}

func (g *groupResources) ensure(ctx context.Context) error {
	g.once.Do(func() {
		for _, hook := range g.hooks.BeforeAll {
			if err, stack := callSafely(ctx, hook); err != nil {
				if stack != "" {
					g.initErr = fmt.Errorf("beforeAll panicked: %v", err)
				} else {
					g.initErr = fmt.Errorf("beforeAll: %w", err)
				}
				return
			}
		}
		g.initialized = true
	})
	return g.initErr
}

func (g *groupResources) teardown(ctx context.Context) []error {
	if !g.initialized {
		return nil
	}
	var errs []error
	for _, hook := range g.hooks.AfterAll {
		if err, stack := callSafely(ctx, hook); err != nil {
			if stack != "" {
				err = fmt.Errorf("panic: %v", err)
			}
			errs = append(errs, err)
		}
	}
	return errs
}

// evaluation records the outcome of one example as its hook chain runs.
// The first failure wins; later distinct failures are appended so they
// surface without hiding the original. The mutex matters because a timed
// out chain keeps running detached and may still record.
type evaluation struct {
	mu      sync.Mutex
	failure *spec.Failure
	pending bool
	reason  string
}

func (e *evaluation) record(err error, stack string) {
	if err == nil {
		return
	}
	if p, ok := spec.AsPending(err); ok {
		e.mu.Lock()
		defer e.mu.Unlock()
		e.pending = true
		e.reason = p.Reason
		return
	}

	f := failureFrom(err, stack)
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.failure == nil {
		e.failure = f
		return
	}
	// The same error propagating outward through around wrappers is not
	// a second failure.
	if f.Message != e.failure.Message {
		e.failure.Also = append(e.failure.Also, f.Message)
	}
}

func (e *evaluation) result(path spec.Path) spec.Result {
	e.mu.Lock()
	defer e.mu.Unlock()
	switch {
	case e.failure != nil:
		return spec.Result{Path: path, Status: spec.StatusFailed, Failure: e.failure}
	case e.pending:
		return spec.Result{Path: path, Status: spec.StatusPending, Reason: e.reason}
	default:
		return spec.Result{Path: path, Status: spec.StatusPassed}
	}
}

// evaluate runs the example's composed hook chain, raced against the
// configured timeout. On timeout the losing evaluation is detached: it
// keeps running in its goroutine but only writes into its own record.
func (r *Runner) evaluate(ctx context.Context, ex *spec.Node, scopes []*scope, path spec.Path) spec.Result {
	for _, sc := range scopes {
		if err := sc.res.ensure(ctx); err != nil {
			return spec.Result{
				Path:   path,
				Status: spec.StatusFailed,
				Failure: &spec.Failure{
					Kind:    spec.FailureReason,
					Message: fmt.Sprintf("shared setup for %q failed: %v", sc.node.Label, err),
				},
			}
		}
	}

	eval := &evaluation{}
	chain := composeChain(ex, scopes, eval)

	if r.config.Timeout <= 0 {
		if err, stack := callSafely(ctx, chain); err != nil {
			eval.record(err, stack)
		}
		return eval.result(path)
	}

	evalCtx, cancel := context.WithTimeout(ctx, r.config.Timeout)
	defer cancel()

	done := make(chan struct{}, 1)
	go func() {
		if err, stack := callSafely(evalCtx, chain); err != nil {
			eval.record(err, stack)
		}
		done <- struct{}{}
	}()

	select {
	case <-done:
		return eval.result(path)
	case <-evalCtx.Done():
		return spec.Result{
			Path:   path,
			Status: spec.StatusFailed,
			Failure: &spec.Failure{
				Kind:    spec.FailureTimeout,
				Message: fmt.Sprintf("exceeded timeout of %s", r.config.Timeout),
			},
		}
	}
}

// composeChain layers each scope's hooks around the example's action,
// outermost scope first. Within a scope the around wrappers enclose the
// beforeEach/afterEach pair, which encloses everything further in.
func composeChain(ex *spec.Node, scopes []*scope, eval *evaluation) spec.Action {
	chain := func(ctx context.Context) error {
		err, stack := callSafely(ctx, ex.Action)
		eval.record(err, stack)
		return err
	}
	for i := len(scopes) - 1; i >= 0; i-- {
		chain = layerScope(scopes[i].node.Hooks, chain, eval)
	}
	return chain
}

func layerScope(hooks spec.Hooks, inner spec.Action, eval *evaluation) spec.Action {
	chain := func(ctx context.Context) error {
		var setupErr error
		for _, hook := range hooks.BeforeEach {
			err, stack := callSafely(ctx, hook)
			if err != nil {
				setupErr = fmt.Errorf("beforeEach: %w", err)
				eval.record(setupErr, stack)
				break
			}
		}

		if setupErr == nil {
			_ = inner(ctx)
		}

		// afterEach always runs, in reverse order, even when the example
		// or an earlier hook failed. Its own faults are appended to the
		// recorded failure, never replacing it.
		for i := len(hooks.AfterEach) - 1; i >= 0; i-- {
			if err, stack := callSafely(ctx, hooks.AfterEach[i]); err != nil {
				eval.record(fmt.Errorf("afterEach: %w", err), stack)
			}
		}
		return setupErr
	}

	// First registered around ends up outermost. A wrapper may invoke its
	// continuation zero or multiple times; every invocation runs the full
	// inner chain and records into the same evaluation, so the example
	// still yields exactly one result.
	for i := len(hooks.Around) - 1; i >= 0; i-- {
		wrap := hooks.Around[i]
		next := chain
		chain = func(ctx context.Context) error {
			err, stack := callAround(ctx, wrap, next)
			eval.record(err, stack)
			return err
		}
	}
	return chain
}

// callSafely invokes the action, converting a panic into an error plus
// the captured stack.
func callSafely(ctx context.Context, action spec.Action) (err error, stack string) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("%v", rec)
			stack = string(debug.Stack())
		}
	}()
	return action(ctx), ""
}

func callAround(ctx context.Context, wrap spec.AroundFunc, next spec.Action) (err error, stack string) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("%v", rec)
			stack = string(debug.Stack())
		}
	}()
	return wrap(ctx, next), ""
}

func failureFrom(err error, stack string) *spec.Failure {
	if stack != "" {
		return &spec.Failure{Kind: spec.FailureFault, Message: err.Error(), Stack: stack}
	}
	if m, ok := spec.AsMismatch(err); ok {
		return &spec.Failure{
			Kind:     spec.FailureMismatch,
			Message:  m.Message,
			Expected: m.Expected,
			Actual:   m.Actual,
		}
	}
	return &spec.Failure{Kind: spec.FailureReason, Message: err.Error()}
}
