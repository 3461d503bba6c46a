// Package mutator implements the reversible source-file edit applied
// before each warm-up/measured invocation (spec §4.5). Acquisition is
// scoped: Acquire remembers the original bytes, and the caller's
// deferred Release restores them on every exit path — success, build
// failure, or external interruption (spec §5's cancellation rule).
//
// There is no teacher precedent for source-patching in the retrieval
// pack's server-daemon code; the read-validate-write-or-restore
// discipline here is grounded on the same defer/restore shape as the
// teacher's internal/nginx/reload.go (write a candidate config, and
// restore the previous one if it doesn't take).
package mutator

import (
	"fmt"
	"os"

	"github.com/glincker/buildbench/internal/scenario"
)

// Mutator owns one target file for the lifetime of a ScenarioExecution.
type Mutator struct {
	kind     scenario.MutatorKind
	path     string
	original []byte
}

// Acquire reads and remembers the original bytes of spec.TargetFile. A
// nil spec (no mutator configured) yields a nil Mutator and a no-op
// release function, so callers can always `defer release()`
// unconditionally.
func Acquire(spec *scenario.MutatorSpec) (*Mutator, func() error, error) {
	if spec == nil {
		return nil, func() error { return nil }, nil
	}

	original, err := os.ReadFile(spec.TargetFile)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to acquire mutator target %s: %w", spec.TargetFile, err)
	}

	m := &Mutator{kind: spec.Kind, path: spec.TargetFile, original: original}
	return m, m.Revert, nil
}

// Apply writes the edited variant of the target file for the given
// 1-based invocation index. Two distinct indices produce distinct file
// contents, except for an android-resource-value edit of a file with no
// <string> entry, which leaves the file unchanged.
func (m *Mutator) Apply(index int) error {
	if m == nil {
		return nil
	}
	edited, err := edit(m.kind, m.original, index)
	if err != nil {
		return fmt.Errorf("failed to apply mutator edit to %s: %w", m.path, err)
	}
	return os.WriteFile(m.path, edited, 0o644)
}

// Revert restores the exact original bytes. Safe to call multiple
// times and on a nil Mutator.
func (m *Mutator) Revert() error {
	if m == nil {
		return nil
	}
	if err := os.WriteFile(m.path, m.original, 0o644); err != nil {
		return fmt.Errorf("failed to revert mutator target %s: %w", m.path, err)
	}
	return nil
}

// Original returns the remembered original bytes, primarily for tests
// asserting the round-trip property.
func (m *Mutator) Original() []byte {
	if m == nil {
		return nil
	}
	return m.original
}
