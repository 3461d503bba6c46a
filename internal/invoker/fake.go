package invoker

import (
	"context"
	"fmt"
	"time"
)

// FakeInvoker is an in-memory Invoker for tests that exercise
// scheduling and aggregation without shelling out to a real build
// tool. Adapted from the teacher's internal/docker.TestRunner: a
// deterministic fake with configurable delays and failure injection
// instead of a mock.Mock that asserts call expectations.
type FakeInvoker struct {
	Env Environment

	RunDelay   time.Duration
	ProbeErr   error
	ShutdownErr error

	// FailAfter, if non-zero, makes the (FailAfter+1)-th call to Run
	// fail, regardless of label. Used to reproduce "Injected build
	// failure after N warm-up invocations" scenarios.
	FailAfter int

	calls       int
	Invocations []Invocation

	shutdownCalled bool
}

func NewFakeInvoker() *FakeInvoker {
	return &FakeInvoker{Env: Environment{Version: "fake-1.0"}}
}

func (f *FakeInvoker) Probe(ctx context.Context) (Environment, error) {
	if f.ProbeErr != nil {
		return Environment{}, f.ProbeErr
	}
	return f.Env, nil
}

func (f *FakeInvoker) Run(ctx context.Context, inv Invocation) (Result, error) {
	f.calls++
	f.Invocations = append(f.Invocations, inv)

	if f.RunDelay > 0 {
		select {
		case <-time.After(f.RunDelay):
		case <-ctx.Done():
			return Result{Failed: true, Err: ctx.Err()}, ctx.Err()
		}
	}

	if f.FailAfter > 0 && f.calls == f.FailAfter+1 {
		err := fmt.Errorf("injected build failure for %q after %d invocations", inv.Label, f.FailAfter)
		return Result{Duration: f.RunDelay, Failed: true, Err: err}, err
	}

	return Result{Duration: f.RunDelay, PID: f.Env.PID}, nil
}

func (f *FakeInvoker) Shutdown(ctx context.Context) error {
	f.shutdownCalled = true
	return f.ShutdownErr
}

// ShutdownCalled reports whether Shutdown was invoked, for assertions
// that a ScenarioExecution released its invoker at the end.
func (f *FakeInvoker) ShutdownCalled() bool { return f.shutdownCalled }

// Calls reports how many times Run was invoked.
func (f *FakeInvoker) Calls() int { return f.calls }
