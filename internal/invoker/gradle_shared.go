package invoker

import (
	"fmt"
	"io"
	"os"
	"regexp"
	"sort"
)

// GradleConfig is the shared configuration for both Gradle invoker
// variants.
type GradleConfig struct {
	ProjectDir       string
	Version          string // requested distribution, forwarded as --gradle-version
	GradleUserHome   string // isolated user home (spec §4.3)
	SystemProperties map[string]string
	GradleArgs       []string
	LogWriter        io.Writer
}

// gradleBinary is the wrapper script invoked in the project directory;
// both variants shell out to it so the project's pinned Gradle version
// is honored.
const gradleBinary = "./gradlew"

func (c *GradleConfig) buildArgs(tasks []string, noDaemon, dryRun bool) []string {
	args := append([]string{}, tasks...)

	if c.Version != "" {
		args = append(args, "--gradle-version", c.Version)
	}
	if noDaemon {
		args = append(args, "--no-daemon")
	}
	if dryRun {
		args = append(args, "-m")
	}

	// Deterministic ordering of -D flags for reproducible logs/tests.
	keys := make([]string, 0, len(c.SystemProperties))
	for k := range c.SystemProperties {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		args = append(args, fmt.Sprintf("-D%s=%s", k, c.SystemProperties[k]))
	}

	args = append(args, c.GradleArgs...)
	return args
}

// env builds the child process environment for a gradlew invocation. A
// non-nil Env on exec.Cmd replaces the process's entire environment
// rather than extending it, so the parent's os.Environ() must be
// forwarded explicitly or the child loses PATH/JAVA_HOME/HOME and
// gradlew never starts.
func (c *GradleConfig) env() []string {
	return append(os.Environ(), "GRADLE_USER_HOME="+c.GradleUserHome)
}

var gradleVersionBanner = regexp.MustCompile(`Gradle\s+(\d+(?:\.\d+){0,2})`)

// parseGradleVersion extracts the reported Gradle version from a probe
// invocation's captured output (spec §4.3: "parse the build-environment
// line to confirm daemon liveness and capture version").
func parseGradleVersion(output string) string {
	m := gradleVersionBanner.FindStringSubmatch(output)
	if m == nil {
		return ""
	}
	return m[1]
}

// isConnectionFailure reports whether output looks like a
// daemon-connection-level failure (spec §4.3: "the daemon MAY be
// discarded if the failure is a connection-level error, not a build
// error") rather than an ordinary build failure.
func isConnectionFailure(output string) bool {
	return regexp.MustCompile(`(?i)(could not connect to|timeout waiting to connect to|daemon disappeared)`).MatchString(output)
}
