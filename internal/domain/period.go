package domain

import (
	"fmt"
	"time"
)

// Period identifies one evaluation window. Volumes, leg qualification
// and rank awards are all scoped to a period.
type Period string

func PeriodOf(t time.Time) Period {
	year, week := t.ISOWeek()
	return Period(fmt.Sprintf("%d-W%02d", year, week))
}

func CurrentPeriod() Period {
	return PeriodOf(time.Now())
}
