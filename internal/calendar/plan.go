package calendar

import (
	"fmt"

	"github.com/username/calendar-pager/pkg/dateutil"
)

// LayoutPlan holds the grid counts derived from a month.
type LayoutPlan struct {
	LeadingDays   int
	NumberOfDays  int
	NumberOfWeeks int
	TrailingDays  int
}

// NewLayoutPlan derives the plan for month. Leading days are the days of
// the previous month completing the first week, trailing days complete the
// last one.
func NewLayoutPlan(month dateutil.Month) LayoutPlan {
	first, next := month.DateRange()

	leading := first.Weekday().Index()
	days, err := first.DaysUntil(next)
	if err != nil {
		// Both dates share the month's location.
		panic(err)
	}
	trailing := 7 - next.AddDays(-1).Weekday().Index() - 1

	return LayoutPlan{
		LeadingDays:   leading,
		NumberOfDays:  days,
		NumberOfWeeks: (leading + days + 7 - 1) / 7,
		TrailingDays:  trailing,
	}
}

// Cells returns the number of grid cells the plan covers.
func (p LayoutPlan) Cells() int {
	return p.LeadingDays + p.NumberOfDays + p.TrailingDays
}

func (p LayoutPlan) String() string {
	return fmt.Sprintf("leading=%d days=%d weeks=%d trailing=%d",
		p.LeadingDays, p.NumberOfDays, p.NumberOfWeeks, p.TrailingDays)
}

// PlanCache memoises layout plans by month identity.
type PlanCache struct {
	plans map[dateutil.MonthKey]LayoutPlan
}

// NewPlanCache creates an empty cache.
func NewPlanCache() *PlanCache {
	return &PlanCache{plans: make(map[dateutil.MonthKey]LayoutPlan)}
}

// Get returns the plan for month, computing it on first use.
func (c *PlanCache) Get(month dateutil.Month) LayoutPlan {
	key := month.Key()
	if plan, ok := c.plans[key]; ok {
		return plan
	}
	plan := NewLayoutPlan(month)
	c.plans[key] = plan
	return plan
}

// Len returns the number of cached plans.
func (c *PlanCache) Len() int {
	return len(c.plans)
}
