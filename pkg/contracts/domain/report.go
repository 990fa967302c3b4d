package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// DOWSummaryRow is one weekday bucket of the day-of-week distribution.
// Rows are always emitted in Monday..Sunday order, zero-filled.
type DOWSummaryRow struct {
	Day            string  `json:"day"`
	Sales          int     `json:"sales"`
	Percent        float64 `json:"percent"`
	RunningPercent float64 `json:"running_percent"`
}

// WeekdayTrendRow is one calendar month of the weekday/weekend sales trend.
type WeekdayTrendRow struct {
	Month      string  `json:"month"` // YYYY-MM
	Weekday    int     `json:"weekday_sales"`
	Weekend    int     `json:"weekend_sales"`
	Total      int     `json:"total_sales"`
	WeekdayPct float64 `json:"weekday_percent"`
	WeekendPct float64 `json:"weekend_percent"`
}

// PlanPricingRow is one group of the plan pricing aggregation. Group is the
// value of the grouping column (Hub, Community Name, or Plan Name).
type PlanPricingRow struct {
	Group         string          `json:"group"`
	SoldHomes     int             `json:"sold_homes"`
	AvgBasePrice  decimal.Decimal `json:"avg_base_price"`
	AvgListPrice  decimal.Decimal `json:"avg_list_price"`
	AvgNetRevenue decimal.Decimal `json:"avg_net_revenue"`
	AvgSqft       decimal.Decimal `json:"avg_sqft"`
}

// PaceCategory classifies a community's sales pace against the pace needed
// to clear its unsold inventory by the target date.
type PaceCategory string

const (
	PaceMargin PaceCategory = "Margin"
	PaceTarget PaceCategory = "Target"
	PacePace   PaceCategory = "Pace"
	PaceBehind PaceCategory = "Behind"
)

// PaceMarginRow is one community of the pace-vs-margin report.
type PaceMarginRow struct {
	Community  string       `json:"community"`
	Unsold     int          `json:"unsold"`
	Pace3Wk    float64      `json:"pace_3wk"`
	NeededPace float64      `json:"needed_pace"`
	Delta      float64      `json:"delta"`
	Category   PaceCategory `json:"category"`
}

// InventorySnapshotRow is one group of an unsold-inventory snapshot.
type InventorySnapshotRow struct {
	Group  string  `json:"group"`
	Unsold int     `json:"unsold"`
	AvgAge float64 `json:"avg_age_days"`
	Week   string  `json:"week"`
}

// RatePoint is one observation of the 30-year fixed mortgage rate series.
type RatePoint struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}
