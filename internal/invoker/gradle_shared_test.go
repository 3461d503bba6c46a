package invoker

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseGradleVersion(t *testing.T) {
	cases := map[string]string{
		"Gradle 8.5\n----------\n":                           "8.5",
		"Welcome to Gradle 7.6.1!\n":                          "7.6.1",
		"Build time:   2023-01-01\nRevision: abc\n":           "",
	}
	for output, want := range cases {
		assert.Equal(t, want, parseGradleVersion(output))
	}
}

func TestIsConnectionFailure(t *testing.T) {
	assert.True(t, isConnectionFailure("Could not connect to the Gradle daemon.\n"))
	assert.True(t, isConnectionFailure("Timeout waiting to connect to the Gradle daemon.\n"))
	assert.True(t, isConnectionFailure("The Gradle daemon disappeared unexpectedly.\n"))
	assert.False(t, isConnectionFailure("BUILD FAILED\n\n* What went wrong:\nTask failed.\n"))
}

func TestGradleConfig_BuildArgs(t *testing.T) {
	cfg := &GradleConfig{
		Version:          "8.5",
		SystemProperties: map[string]string{"b": "2", "a": "1"},
		GradleArgs:       []string{"--stacktrace"},
	}

	args := cfg.buildArgs([]string{"assemble"}, true, false)

	assert.Equal(t, []string{
		"assemble",
		"--gradle-version", "8.5",
		"--no-daemon",
		"-Da=1",
		"-Db=2",
		"--stacktrace",
	}, args)
}

func TestGradleConfig_BuildArgsDryRun(t *testing.T) {
	cfg := &GradleConfig{}
	args := cfg.buildArgs([]string{"assemble"}, false, true)
	assert.Equal(t, []string{"assemble", "-m"}, args)
}

func TestGradleConfig_Env(t *testing.T) {
	t.Setenv("PATH", "/usr/bin:/bin")
	cfg := &GradleConfig{GradleUserHome: "/tmp/gradle-home"}

	env := cfg.env()
	assert.Contains(t, env, "GRADLE_USER_HOME=/tmp/gradle-home")
	assert.Contains(t, env, "PATH=/usr/bin:/bin")
	assert.Equal(t, len(os.Environ())+1, len(env))
}
