package invoker

import (
	"context"
	"fmt"
	"strings"

	gopsprocess "github.com/shirou/gopsutil/v4/process"
)

// findDaemonPID locates the Gradle daemon JVM backing the given isolated
// user home. The tool-api client process that submits an invocation
// exits as soon as the daemon replies, so the profiler control plane
// (spec §4.6, JFR especially) needs the long-lived daemon's own PID, not
// the short-lived client's.
//
// This is the in-Go analogue of the teacher's own /proc-scraping in
// internal/metrics/history.go's getCPUUsageLinux: there the teacher
// shells out to read system load; here gopsutil/v4 (already a teacher
// dependency) walks the process table to find one JVM whose command
// line references our isolated GRADLE_USER_HOME.
func findDaemonPID(ctx context.Context, userHome string) (int, error) {
	procs, err := gopsprocess.ProcessesWithContext(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list processes: %w", err)
	}

	for _, p := range procs {
		cmdline, err := p.CmdlineWithContext(ctx)
		if err != nil {
			continue // process exited mid-scan, or inaccessible; skip it
		}
		if !strings.Contains(cmdline, "GradleDaemon") && !strings.Contains(cmdline, "gradle") {
			continue
		}
		if strings.Contains(cmdline, userHome) {
			return int(p.Pid), nil
		}
	}

	return 0, fmt.Errorf("no Gradle daemon found for user home %s", userHome)
}
