package profiler

import (
	"context"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"time"

	"github.com/glincker/buildbench/internal/invoker"
)

// ChromeTrace emits a chrome-trace.html viewable in Chrome's
// chrome://tracing, with or without a daemon behind the invocation
// (spec §4.6).
type ChromeTrace struct {
	start  time.Time
	events []traceEvent
}

type traceEvent struct {
	Name      string
	Phase     string
	Timestamp int64
}

func NewChromeTrace() *ChromeTrace { return &ChromeTrace{} }

func (c *ChromeTrace) Name() string { return "chrome-trace" }

// AdjustConfig is a no-op: Chrome Trace records wall-clock spans
// around Run itself, not via an injected agent.
func (c *ChromeTrace) AdjustConfig(cfg *invoker.GradleConfig) {}

func (c *ChromeTrace) BeforeMeasured(ctx context.Context, pid int) error {
	if c.start.IsZero() {
		c.start = time.Now()
	}
	c.events = append(c.events, traceEvent{Name: "measured", Phase: "B", Timestamp: time.Since(c.start).Microseconds()})
	return nil
}

func (c *ChromeTrace) AfterMeasured(ctx context.Context, pid int) error {
	c.events = append(c.events, traceEvent{Name: "measured", Phase: "E", Timestamp: time.Since(c.start).Microseconds()})
	return nil
}

var chromeTraceTemplate = template.Must(template.New("chrome-trace").Parse(`<!DOCTYPE html>
<html><head><title>buildbench trace</title></head>
<body><script>
const events = [
{{- range .}}
  {name: {{.Name | printf "%q"}}, ph: {{.Phase | printf "%q"}}, ts: {{.Timestamp}}},
{{- end}}
];
</script></body></html>
`))

func (c *ChromeTrace) Finalize(ctx context.Context, outputDir string) error {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("failed to create profiler output directory: %w", err)
	}

	f, err := os.Create(filepath.Join(outputDir, "chrome-trace.html"))
	if err != nil {
		return fmt.Errorf("failed to create chrome-trace.html: %w", err)
	}
	defer f.Close()

	return chromeTraceTemplate.Execute(f, c.events)
}
