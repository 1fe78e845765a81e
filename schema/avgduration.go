package schema

import (
	"math"
	"time"
)

// AgeAverage accumulates durations and exposes their mean in days.
// DaySum is kept as float64 days because population-wide sums overflow
// time.Duration long before they overflow a float64.
type AgeAverage struct {
	DaySum  float64 `json:"-"`        // accumulated days across samples
	Count   int     `json:"count"`    // number of samples
	AvgDays float64 `json:"avg_days"` // mean age in days, one decimal
}

// Update folds one duration into the accumulator. Recalculation is
// deferred so hot replay loops pay for the division once at the end.
func (a *AgeAverage) Update(d time.Duration) {
	a.DaySum += d.Seconds() / 86400
	a.Count++
}

// Combine folds another accumulator into this one.
func (a *AgeAverage) Combine(other *AgeAverage) {
	a.DaySum += other.DaySum
	a.Count += other.Count
}

// Recalc refreshes AvgDays, rounded to one decimal place. Zero samples
// yield a zero average rather than NaN.
func (a *AgeAverage) Recalc() {
	if a.Count == 0 {
		a.AvgDays = 0
		return
	}
	a.AvgDays = math.Round(a.DaySum/float64(a.Count)*10) / 10
}

// AgeGrid is a two-level map of row label to column label to accumulated
// average age. Rows are priorities plus Overall, columns are status
// groups plus Overall.
type AgeGrid map[string]map[string]*AgeAverage

// NewAgeGrid builds a grid with fresh accumulators in every cell.
func NewAgeGrid(rows, cols []string) AgeGrid {
	grid := make(AgeGrid, len(rows))
	for _, r := range rows {
		cells := make(map[string]*AgeAverage, len(cols))
		for _, c := range cols {
			cells[c] = &AgeAverage{}
		}
		grid[r] = cells
	}
	return grid
}

// Record folds a duration into a cell if both the row and the column
// exist. Unknown labels are dropped so raw statuses outside the taxonomy
// never grow the grid.
func (g AgeGrid) Record(row, col string, d time.Duration) {
	cells, ok := g[row]
	if !ok {
		return
	}
	avg, ok := cells[col]
	if !ok {
		return
	}
	avg.Update(d)
}

// Recalc refreshes every cell's average.
func (g AgeGrid) Recalc() {
	for _, cells := range g {
		for _, avg := range cells {
			avg.Recalc()
		}
	}
}
