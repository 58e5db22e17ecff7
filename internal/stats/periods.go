// Package stats computes aggregate contributor-activity reports from resolved
// backup records, bucketed by year, quarter, and month.
package stats

import (
	"fmt"
	"time"
)

// Timeframe is a bucketing granularity for period keys.
type Timeframe string

const (
	TimeframeYear    Timeframe = "year"
	TimeframeQuarter Timeframe = "quarter"
	TimeframeMonth   Timeframe = "month"
)

// Timeframes lists all granularities a report covers, in display order.
var Timeframes = []Timeframe{TimeframeYear, TimeframeQuarter, TimeframeMonth}

// PeriodKey returns the bucket key for t at the given granularity, e.g.
// "2021", "2021-Q3", "2021-07".
func PeriodKey(t time.Time, tf Timeframe) string {
	t = t.UTC()
	switch tf {
	case TimeframeYear:
		return fmt.Sprintf("%d", t.Year())
	case TimeframeQuarter:
		quarter := (int(t.Month())-1)/3 + 1
		return fmt.Sprintf("%d-Q%d", t.Year(), quarter)
	case TimeframeMonth:
		return fmt.Sprintf("%d-%02d", t.Year(), t.Month())
	default:
		return ""
	}
}
