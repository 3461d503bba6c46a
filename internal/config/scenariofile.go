// Package config loads the scenario file (a hierarchical YAML document,
// §4.1) and the CLI-level flag set (§6) that the orchestrator is driven
// by. Unknown scenario keys and unknown requested scenario names fail
// loudly with the exact messages spec.md requires.
package config

import (
	"fmt"
	"os"
	"sort"

	"github.com/glincker/buildbench/internal/scenario"
	"gopkg.in/yaml.v3"
)

var recognizedKeys = map[string]bool{
	"versions":                                true,
	"tasks":                                   true,
	"cleanup-tasks":                           true,
	"run-using":                               true,
	"system-properties":                       true,
	"gradle-args":                             true,
	"apply-abi-change-to":                     true,
	"apply-non-abi-change-to":                 true,
	"apply-android-resource-change-to":        true,
	"apply-android-resource-value-change-to":  true,
	"buck":                                    true,
	"maven":                                   true,
}

// Document is a parsed scenario file: an ordered set of named scenarios.
type Document struct {
	path      string
	scenarios map[string]*scenario.Scenario
	order     []string
}

// Names returns the scenario names in the deterministic fallback order:
// alphabetic (spec §4.2 — "else alphabetic").
func (d *Document) Names() []string {
	names := append([]string(nil), d.order...)
	sort.Strings(names)
	return names
}

// Get looks up a scenario by name.
func (d *Document) Get(name string) (*scenario.Scenario, bool) {
	s, ok := d.scenarios[name]
	return s, ok
}

// Resolve returns the scenarios named by requested, in the order given,
// or every scenario (alphabetic) when requested is empty. It returns the
// exact "Unknown scenario" message spec.md §4.1 specifies on a miss.
func (d *Document) Resolve(requested []string) ([]*scenario.Scenario, error) {
	if len(requested) == 0 {
		var all []*scenario.Scenario
		for _, name := range d.Names() {
			all = append(all, d.scenarios[name])
		}
		return all, nil
	}

	var out []*scenario.Scenario
	for _, name := range requested {
		s, ok := d.scenarios[name]
		if !ok {
			return nil, fmt.Errorf("Unknown scenario '%s' requested. Available scenarios are: %v", name, d.Names())
		}
		out = append(out, s)
	}
	return out, nil
}

// LoadScenarioFile reads and validates a scenario file from disk.
func LoadScenarioFile(path string) (*Document, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file %s: %w", path, err)
	}
	return ParseScenarioFile(path, raw)
}

// ParseScenarioFile validates and decodes scenario file contents already
// read into memory (split out for testability).
func ParseScenarioFile(path string, raw []byte) (*Document, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(raw, &root); err != nil {
		return nil, fmt.Errorf("failed to parse scenario file %s: %w", path, err)
	}
	if len(root.Content) == 0 {
		return &Document{path: path, scenarios: map[string]*scenario.Scenario{}}, nil
	}

	doc := root.Content[0]
	if doc.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("scenario file %s must be a mapping of scenario name to options", path)
	}

	d := &Document{path: path, scenarios: map[string]*scenario.Scenario{}}

	for i := 0; i < len(doc.Content); i += 2 {
		nameNode := doc.Content[i]
		valueNode := doc.Content[i+1]
		name := nameNode.Value

		s, err := decodeScenario(name, valueNode, path)
		if err != nil {
			return nil, err
		}
		d.scenarios[name] = s
		d.order = append(d.order, name)
	}

	return d, nil
}

func decodeScenario(name string, node *yaml.Node, path string) (*scenario.Scenario, error) {
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("scenario '%s' in %s must be a mapping", name, path)
	}

	for i := 0; i < len(node.Content); i += 2 {
		key := node.Content[i].Value
		if !recognizedKeys[key] {
			return nil, fmt.Errorf("Unrecognized key '%s.%s' defined in scenario file %s", name, key, path)
		}
	}

	var raw rawScenario
	if err := node.Decode(&raw); err != nil {
		return nil, fmt.Errorf("scenario '%s' in %s: %w", name, path, err)
	}

	versions, err := stringOrSlice(raw.Versions)
	if err != nil {
		return nil, fmt.Errorf("scenario '%s.versions' in %s: %w", name, path, err)
	}
	tasks, err := stringOrSlice(raw.Tasks)
	if err != nil {
		return nil, fmt.Errorf("scenario '%s.tasks' in %s: %w", name, path, err)
	}
	cleanupTasks, err := stringOrSlice(raw.CleanupTasks)
	if err != nil {
		return nil, fmt.Errorf("scenario '%s.cleanup-tasks' in %s: %w", name, path, err)
	}
	gradleArgs, err := stringOrSlice(raw.GradleArgs)
	if err != nil {
		return nil, fmt.Errorf("scenario '%s.gradle-args' in %s: %w", name, path, err)
	}

	s := &scenario.Scenario{
		Name:             name,
		BuildTool:        scenario.Gradle,
		Versions:         versions,
		Tasks:            tasks,
		CleanupTasks:     cleanupTasks,
		RunUsing:         scenario.RunUsing(raw.RunUsing),
		SystemProperties: raw.SystemProperties,
		GradleArgs:       gradleArgs,
	}

	if mutator, err := decodeMutator(&raw, name, path); err != nil {
		return nil, err
	} else {
		s.Mutator = mutator
	}

	if raw.Buck != nil {
		buckTargets, err := stringOrSlice(raw.Buck.Targets)
		if err != nil {
			return nil, fmt.Errorf("scenario '%s.buck.targets' in %s: %w", name, path, err)
		}
		s.Buck = &scenario.BuckSpec{Targets: buckTargets, Type: raw.Buck.Type}
		s.BuildTool = scenario.Buck
	}
	if raw.Maven != nil {
		mavenTargets, err := stringOrSlice(raw.Maven.Targets)
		if err != nil {
			return nil, fmt.Errorf("scenario '%s.maven.targets' in %s: %w", name, path, err)
		}
		s.Maven = &scenario.MavenSpec{Targets: mavenTargets}
		s.BuildTool = scenario.Maven
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}

	return s, nil
}

func decodeMutator(raw *rawScenario, name, path string) (*scenario.MutatorSpec, error) {
	type candidate struct {
		kind scenario.MutatorKind
		file string
	}
	var set []candidate
	if raw.ApplyABIChangeTo != "" {
		set = append(set, candidate{scenario.ABIJava, raw.ApplyABIChangeTo})
	}
	if raw.ApplyNonABIChangeTo != "" {
		set = append(set, candidate{scenario.NonABIJava, raw.ApplyNonABIChangeTo})
	}
	if raw.ApplyAndroidResourceChangeTo != "" {
		set = append(set, candidate{scenario.AndroidResource, raw.ApplyAndroidResourceChangeTo})
	}
	if raw.ApplyAndroidResourceValueChangeTo != "" {
		set = append(set, candidate{scenario.AndroidResourceValue, raw.ApplyAndroidResourceValueChangeTo})
	}

	if len(set) > 1 {
		return nil, fmt.Errorf("scenario '%s' in %s: at most one apply-*-change-to key may be set", name, path)
	}
	if len(set) == 0 {
		return nil, nil
	}
	return &scenario.MutatorSpec{Kind: set[0].kind, TargetFile: set[0].file}, nil
}

type rawScenario struct {
	Versions     yaml.Node         `yaml:"versions"`
	Tasks        yaml.Node         `yaml:"tasks"`
	CleanupTasks yaml.Node         `yaml:"cleanup-tasks"`
	RunUsing     string            `yaml:"run-using"`
	SystemProperties map[string]string `yaml:"system-properties"`
	GradleArgs   yaml.Node         `yaml:"gradle-args"`

	ApplyABIChangeTo                  string `yaml:"apply-abi-change-to"`
	ApplyNonABIChangeTo               string `yaml:"apply-non-abi-change-to"`
	ApplyAndroidResourceChangeTo       string `yaml:"apply-android-resource-change-to"`
	ApplyAndroidResourceValueChangeTo string `yaml:"apply-android-resource-value-change-to"`

	Buck  *rawBuck  `yaml:"buck"`
	Maven *rawMaven `yaml:"maven"`
}

type rawBuck struct {
	Targets yaml.Node `yaml:"targets"`
	Type    string    `yaml:"type"`
}

type rawMaven struct {
	Targets yaml.Node `yaml:"targets"`
}

// stringOrSlice decodes a YAML node that may be a bare scalar, a
// sequence of scalars, or absent (zero Kind) into a string slice.
func stringOrSlice(node yaml.Node) ([]string, error) {
	switch node.Kind {
	case 0:
		return nil, nil
	case yaml.ScalarNode:
		return []string{node.Value}, nil
	case yaml.SequenceNode:
		out := make([]string, 0, len(node.Content))
		for _, item := range node.Content {
			if item.Kind != yaml.ScalarNode {
				return nil, fmt.Errorf("expected a string list, found nested structure")
			}
			out = append(out, item.Value)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("expected a string or list of strings")
	}
}
