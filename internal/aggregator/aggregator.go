// Package aggregator implements the Results Aggregator (spec §4.7): a
// row-per-iteration, column-per-ScenarioExecution table with mean,
// median, and stddev summary rows, written out as CSV.
package aggregator

import (
	"math"
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"
)

// Column is one ScenarioExecution's recorded timings, built up as the
// Orchestrator drives its schedule. A nil *time.Duration entry means
// the invocation either never ran (the execution stopped early) or
// failed (spec §4.7: "empty cells for failed invocations"). Rows beyond
// this column's own schedule width have no entry at all and are written
// blank.
type Column struct {
	Label      string
	Tasks      []string // empty for buck/maven (spec §6)
	HasInitial bool
	Initial    *time.Duration
	Warmups    []*time.Duration
	Measured   []*time.Duration
}

// NewColumn prepares a Column with Warmups/Measured pre-sized to w/i so
// callers can set entries by index as invocations complete.
func NewColumn(label string, tasks []string, hasInitial bool, w, i int) *Column {
	return &Column{
		Label:      label,
		Tasks:      tasks,
		HasInitial: hasInitial,
		Warmups:    make([]*time.Duration, w),
		Measured:   make([]*time.Duration, i),
	}
}

// RecordWarmup sets the duration for the 1-based warm-up index n, or
// leaves it nil (empty cell) when d is nil, e.g. on invocation failure.
func (c *Column) RecordWarmup(n int, d *time.Duration) {
	if n >= 1 && n <= len(c.Warmups) {
		c.Warmups[n-1] = d
	}
}

// RecordMeasured sets the duration for the 1-based measured index n.
func (c *Column) RecordMeasured(n int, d *time.Duration) {
	if n >= 1 && n <= len(c.Measured) {
		c.Measured[n-1] = d
	}
}

// Stats is the mean/median/stddev triple computed over non-empty
// measured cells only (spec §4.7). All-empty columns yield NaN for
// all three (asserted literally by the test suite).
type Stats struct {
	Mean   float64
	Median float64
	StdDev float64
}

func (c *Column) computeStats() Stats {
	values := make([]float64, 0, len(c.Measured))
	for _, d := range c.Measured {
		if d != nil {
			values = append(values, d.Seconds())
		}
	}
	if len(values) == 0 {
		return Stats{Mean: math.NaN(), Median: math.NaN(), StdDev: math.NaN()}
	}

	sorted := append([]float64{}, values...)
	sort.Float64s(sorted)

	mean := stat.Mean(values, nil)
	median := stat.Quantile(0.5, stat.Empirical, sorted, nil)

	var stddev float64
	if len(values) > 1 {
		stddev = stat.StdDev(values, nil)
	}
	return Stats{Mean: mean, Median: median, StdDev: stddev}
}

// Table accumulates Columns in emission order and renders the final
// CSV (spec §4.7): fixed row labels sized to the widest schedule among
// its columns, shorter columns leaving their unreached rows blank.
type Table struct {
	Columns []*Column
}

func NewTable() *Table { return &Table{} }

func (t *Table) AddColumn(c *Column) { t.Columns = append(t.Columns, c) }

func (t *Table) maxWarmups() int {
	max := 0
	for _, c := range t.Columns {
		if len(c.Warmups) > max {
			max = len(c.Warmups)
		}
	}
	return max
}

func (t *Table) maxMeasured() int {
	max := 0
	for _, c := range t.Columns {
		if len(c.Measured) > max {
			max = len(c.Measured)
		}
	}
	return max
}

func (t *Table) anyHasInitial() bool {
	for _, c := range t.Columns {
		if c.HasInitial {
			return true
		}
	}
	return false
}
