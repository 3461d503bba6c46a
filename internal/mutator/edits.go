package mutator

import (
	"fmt"
	"regexp"

	"github.com/glincker/buildbench/internal/scenario"
)

// edit dispatches to the pure (originalBytes, invocationIndex) -> bytes
// function for kind (spec §9's design note: "represent edit as a
// function ... so idempotence and reversal are pure").
func edit(kind scenario.MutatorKind, original []byte, index int) ([]byte, error) {
	switch kind {
	case scenario.ABIJava:
		return editABIJava(original, index), nil
	case scenario.NonABIJava:
		return editNonABIJava(original, index), nil
	case scenario.AndroidResource:
		return editAndroidResource(original, index), nil
	case scenario.AndroidResourceValue:
		return editAndroidResourceValue(original, index), nil
	default:
		return nil, fmt.Errorf("unknown mutator kind %q", kind)
	}
}

var lastBrace = regexp.MustCompile(`\}\s*$`)

// editABIJava appends a public method with a signature unique to index,
// introducing a new ABI symbol. Inserted just before the class's final
// closing brace.
func editABIJava(original []byte, index int) []byte {
	method := []byte(fmt.Sprintf("\n    public void mutatorMethod%d() { }\n", index))
	return insertBeforeFinalBrace(original, method)
}

var methodOpenBrace = regexp.MustCompile(`\([^()]*\)\s*\{`)

// editNonABIJava appends a statement inside the first method body it
// finds, leaving the method's signature (and therefore the class's ABI)
// unchanged.
func editNonABIJava(original []byte, index int) []byte {
	stmt := fmt.Sprintf("\n        int mutatorVar%d = %d;", index, index)
	loc := methodOpenBrace.FindIndex(original)
	if loc == nil {
		// No method signature found; fall back to appending at EOF so
		// the edit is still applied and still unique per invocation.
		return append(append([]byte{}, original...), []byte(stmt)...)
	}
	insertAt := loc[1]
	out := make([]byte, 0, len(original)+len(stmt))
	out = append(out, original[:insertAt]...)
	out = append(out, []byte(stmt)...)
	out = append(out, original[insertAt:]...)
	return out
}

var closingResources = regexp.MustCompile(`</resources>`)

// editAndroidResource appends a new <string> entry with a name unique
// to index.
func editAndroidResource(original []byte, index int) []byte {
	entry := []byte(fmt.Sprintf("    <string name=\"mutator_string_%d\">mutator value %d</string>\n", index, index))
	loc := closingResources.FindIndex(original)
	if loc == nil {
		return append(append([]byte{}, original...), entry...)
	}
	out := make([]byte, 0, len(original)+len(entry))
	out = append(out, original[:loc[0]]...)
	out = append(out, entry...)
	out = append(out, original[loc[0]:]...)
	return out
}

var firstStringValue = regexp.MustCompile(`(<string name="[^"]+">)([^<]*)(</string>)`)

// editAndroidResourceValue rewrites the text of the first existing
// <string> entry's value, appending a suffix unique to index.
func editAndroidResourceValue(original []byte, index int) []byte {
	suffix := []byte(fmt.Sprintf(" mutator%d", index))
	loc := firstStringValue.FindSubmatchIndex(original)
	if loc == nil {
		return original
	}
	// loc holds [full0 full1 g1_0 g1_1 g2_0 g2_1 g3_0 g3_1]
	out := make([]byte, 0, len(original)+len(suffix))
	out = append(out, original[:loc[5]]...)
	out = append(out, suffix...)
	out = append(out, original[loc[5]:]...)
	return out
}

func insertBeforeFinalBrace(original []byte, insertion []byte) []byte {
	loc := lastBrace.FindIndex(original)
	if loc == nil {
		return append(append([]byte{}, original...), insertion...)
	}
	out := make([]byte, 0, len(original)+len(insertion))
	out = append(out, original[:loc[0]]...)
	out = append(out, insertion...)
	out = append(out, original[loc[0]:]...)
	return out
}
