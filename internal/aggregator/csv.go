package aggregator

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"
)

// WriteCSV renders the table per spec §4.7/§6: header row
// `build,<col1>,<col2>,…`, then `tasks`, `initial clean build` (if any
// column ran one), `warm-up build 1..W`, `build 1..I`, then `mean`,
// `median`, `stddev`. Written even when some executions failed
// outright; their unfilled cells stay blank.
func (t *Table) WriteCSV(w io.Writer) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	header := make([]string, 0, len(t.Columns)+1)
	header = append(header, "build")
	for _, c := range t.Columns {
		header = append(header, c.Label)
	}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}

	hasInitial := t.anyHasInitial()
	warmups := t.maxWarmups()
	measured := t.maxMeasured()

	writeRow := func(label string, cell func(c *Column) string) error {
		row := make([]string, 0, len(t.Columns)+1)
		row = append(row, label)
		for _, c := range t.Columns {
			row = append(row, cell(c))
		}
		return writer.Write(row)
	}

	if err := writeRow("tasks", func(c *Column) string {
		return strings.Join(c.Tasks, " ")
	}); err != nil {
		return err
	}

	if hasInitial {
		if err := writeRow("initial clean build", func(c *Column) string {
			return formatDuration(c.Initial)
		}); err != nil {
			return err
		}
	}

	for i := 1; i <= warmups; i++ {
		idx := i
		if err := writeRow(fmt.Sprintf("warm-up build %d", i), func(c *Column) string {
			if idx > len(c.Warmups) {
				return ""
			}
			return formatDuration(c.Warmups[idx-1])
		}); err != nil {
			return err
		}
	}

	for i := 1; i <= measured; i++ {
		idx := i
		if err := writeRow(fmt.Sprintf("build %d", i), func(c *Column) string {
			if idx > len(c.Measured) {
				return ""
			}
			return formatDuration(c.Measured[idx-1])
		}); err != nil {
			return err
		}
	}

	if err := writeRow("mean", func(c *Column) string {
		return formatStat(c.computeStats().Mean)
	}); err != nil {
		return err
	}
	if err := writeRow("median", func(c *Column) string {
		return formatStat(c.computeStats().Median)
	}); err != nil {
		return err
	}
	if err := writeRow("stddev", func(c *Column) string {
		return formatStat(c.computeStats().StdDev)
	}); err != nil {
		return err
	}

	writer.Flush()
	return writer.Error()
}

func formatDuration(d *time.Duration) string {
	if d == nil {
		return ""
	}
	return strconv.FormatFloat(d.Seconds(), 'f', 3, 64)
}

func formatStat(v float64) string {
	if math.IsNaN(v) {
		return "NaN"
	}
	return strconv.FormatFloat(v, 'f', 3, 64)
}
