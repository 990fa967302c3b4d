package dataprocessing

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mtorres1190/MATT-Report/internal/table"
	"github.com/mtorres1190/MATT-Report/pkg/contracts/domain"
)

// Filter narrows an enriched table the way the report pages do. Zero
// values mean "no restriction".
type Filter struct {
	Divisions     []string  // DIV_CODE_DESC membership
	SaleDateFrom  time.Time // inclusive
	SaleDateTo    time.Time // inclusive
	Investor      string    // "Investor" or "Retail"
	RealtorDirect string    // "Realtor" or "Direct"
}

// Apply returns a new table holding only the rows that pass the filter.
// Rows with a null SALE_DATE never pass a date-bounded filter.
func (f Filter) Apply(t *table.Table) (*table.Table, error) {
	out, err := table.New(t.Columns())
	if err != nil {
		return nil, err
	}

	divisions := make(map[string]struct{}, len(f.Divisions))
	for _, d := range f.Divisions {
		divisions[d] = struct{}{}
	}
	dateBounded := !f.SaleDateFrom.IsZero() || !f.SaleDateTo.IsZero()

	for i := 0; i < t.NumRows(); i++ {
		if len(divisions) > 0 {
			if _, ok := divisions[t.Get(i, domain.ColDivision)]; !ok {
				continue
			}
		}
		if dateBounded {
			d, ok := parseDate(t.Get(i, domain.ColSaleDate))
			if !ok {
				continue
			}
			if !f.SaleDateFrom.IsZero() && d.Before(f.SaleDateFrom) {
				continue
			}
			if !f.SaleDateTo.IsZero() && d.After(f.SaleDateTo) {
				continue
			}
		}
		if f.Investor != "" && t.Get(i, domain.ColInvestorSale) != f.Investor {
			continue
		}
		if f.RealtorDirect != "" && t.Get(i, domain.ColRealtorDirect) != f.RealtorDirect {
			continue
		}
		if err := out.AppendRow(t.Row(i)); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// weekdayOrder fixes the bucket order of the DOW distribution.
var weekdayOrder = []string{
	"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday",
}

// DOWSummary computes the day-of-week sales distribution: count, share of
// total, and running share, in Monday..Sunday order. Rows with a null
// DOW_Sale are excluded.
func DOWSummary(t *table.Table) []domain.DOWSummaryRow {
	counts := make(map[string]int, 7)
	total := 0
	for i := 0; i < t.NumRows(); i++ {
		day := t.Get(i, domain.ColDOWSale)
		if day == "" {
			continue
		}
		counts[day]++
		total++
	}

	rows := make([]domain.DOWSummaryRow, 0, 7)
	running := 0.0
	for _, day := range weekdayOrder {
		pct := 0.0
		if total > 0 {
			pct = 100 * float64(counts[day]) / float64(total)
		}
		running += pct
		rows = append(rows, domain.DOWSummaryRow{
			Day:            day,
			Sales:          counts[day],
			Percent:        pct,
			RunningPercent: running,
		})
	}
	return rows
}

// WeekdayTrend computes the monthly weekday/weekend sales split. Months
// are YYYY-MM keys in ascending order; rows with a null SALE_DATE are
// excluded. Percentages are rounded to whole points as the page displays.
func WeekdayTrend(t *table.Table) []domain.WeekdayTrendRow {
	type counts struct{ weekday, weekend int }
	byMonth := make(map[string]*counts)
	for i := 0; i < t.NumRows(); i++ {
		d, ok := parseDate(t.Get(i, domain.ColSaleDate))
		if !ok {
			continue
		}
		month := d.Format("2006-01")
		c := byMonth[month]
		if c == nil {
			c = &counts{}
			byMonth[month] = c
		}
		if t.Get(i, domain.ColWeekdayGroup) == domain.GroupWeekend {
			c.weekend++
		} else {
			c.weekday++
		}
	}

	months := make([]string, 0, len(byMonth))
	for m := range byMonth {
		months = append(months, m)
	}
	sort.Strings(months)

	rows := make([]domain.WeekdayTrendRow, 0, len(months))
	for _, m := range months {
		c := byMonth[m]
		total := c.weekday + c.weekend
		row := domain.WeekdayTrendRow{
			Month:   m,
			Weekday: c.weekday,
			Weekend: c.weekend,
			Total:   total,
		}
		if total > 0 {
			row.WeekdayPct = roundPct(100 * float64(c.weekday) / float64(total))
			row.WeekendPct = roundPct(100 * float64(c.weekend) / float64(total))
		}
		rows = append(rows, row)
	}
	return rows
}

func roundPct(v float64) float64 {
	return float64(int(v + 0.5))
}

// ColumnError reports an aggregation asked for a grouping or data column
// the enriched table does not carry. This is a defect in the request or
// the uploaded extract, not in the service.
type ColumnError struct {
	Detail string
}

func (e *ColumnError) Error() string { return e.Detail }

// pricingColumns are the currency columns cleaned before aggregation.
var pricingColumns = []string{
	domain.ColBasePrice,
	domain.ColHomesitePremium,
	domain.ColPriceReduction,
	domain.ColOptionRevenue,
	domain.ColNetSalesPrice,
}

// PlanPricing aggregates sold-home pricing for the sale-date window,
// grouped by groupColumn (Hub, Community Name, or Plan Name). Currency
// cells are cleaned of $ and thousands separators, with parenthesized
// values negative. List price is the sum of base price, homesite premium,
// price reductions/incentives, and option revenue. Averages skip null
// cells, matching the dataframe the original report was built on. Results
// sort by average square footage ascending.
func PlanPricing(t *table.Table, from, to time.Time, groupColumn string) ([]domain.PlanPricingRow, error) {
	if !t.HasColumn(groupColumn) {
		return nil, &ColumnError{Detail: fmt.Sprintf("unknown grouping column %q", groupColumn)}
	}
	required := append([]string{domain.ColSaleDate, domain.ColTotalSqft}, pricingColumns...)
	if missing := t.MissingColumns(required); len(missing) > 0 {
		return nil, &ColumnError{Detail: fmt.Sprintf("pricing columns missing: %s", strings.Join(missing, ", "))}
	}

	type agg struct {
		sold                       int
		base, list, net, sqft      decimal.Decimal
		nBase, nList, nNet, nSqft  int
	}
	groups := make(map[string]*agg)

	for i := 0; i < t.NumRows(); i++ {
		d, ok := parseDate(t.Get(i, domain.ColSaleDate))
		if !ok || d.Before(from) || d.After(to) {
			continue
		}
		key := t.Get(i, groupColumn)
		g := groups[key]
		if g == nil {
			g = &agg{}
			groups[key] = g
		}
		g.sold++

		base, hasBase := parseMoney(t.Get(i, domain.ColBasePrice))
		if hasBase {
			g.base = g.base.Add(base)
			g.nBase++
		}
		if net, ok := parseMoney(t.Get(i, domain.ColNetSalesPrice)); ok {
			g.net = g.net.Add(net)
			g.nNet++
		}
		if sqft, ok := parseMoney(t.Get(i, domain.ColTotalSqft)); ok {
			g.sqft = g.sqft.Add(sqft)
			g.nSqft++
		}

		// List price treats null components as zero.
		list := decimal.Zero
		for _, col := range []string{
			domain.ColBasePrice,
			domain.ColHomesitePremium,
			domain.ColPriceReduction,
			domain.ColOptionRevenue,
		} {
			if v, ok := parseMoney(t.Get(i, col)); ok {
				list = list.Add(v)
			}
		}
		g.list = g.list.Add(list)
		g.nList++
	}

	rows := make([]domain.PlanPricingRow, 0, len(groups))
	for key, g := range groups {
		rows = append(rows, domain.PlanPricingRow{
			Group:         key,
			SoldHomes:     g.sold,
			AvgBasePrice:  avgDecimal(g.base, g.nBase),
			AvgListPrice:  avgDecimal(g.list, g.nList),
			AvgNetRevenue: avgDecimal(g.net, g.nNet),
			AvgSqft:       avgDecimal(g.sqft, g.nSqft),
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].AvgSqft.Equal(rows[j].AvgSqft) {
			return rows[i].AvgSqft.LessThan(rows[j].AvgSqft)
		}
		return rows[i].Group < rows[j].Group
	})
	return rows, nil
}

func avgDecimal(sum decimal.Decimal, n int) decimal.Decimal {
	if n == 0 {
		return decimal.Zero
	}
	return sum.DivRound(decimal.NewFromInt(int64(n)), 2)
}

// parseMoney cleans a currency cell: $ and thousands separators stripped,
// parenthesized accounting negatives honored. ok is false for null or
// unparseable cells.
func parseMoney(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, false
	}
	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = s[1 : len(s)-1]
	}
	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	if negative {
		d = d.Neg()
	}
	return d, true
}

// SnapshotUnsoldInventory counts homes not yet sold at the snapshot date
// whose estimated close-of-escrow falls inside the window, grouped by
// groupColumn, with the average age in days from snapshot to COE. label
// tags the snapshot (e.g. a week name) in every row.
func SnapshotUnsoldInventory(t *table.Table, groupColumn string, snapshot, coeStart, coeEnd time.Time, label string) ([]domain.InventorySnapshotRow, error) {
	if !t.HasColumn(groupColumn) {
		return nil, &ColumnError{Detail: fmt.Sprintf("unknown grouping column %q", groupColumn)}
	}
	if missing := t.MissingColumns([]string{domain.ColSaleDate, domain.ColEstCOEDate}); len(missing) > 0 {
		return nil, &ColumnError{Detail: fmt.Sprintf("snapshot columns missing: %s", strings.Join(missing, ", "))}
	}

	type agg struct {
		count   int
		ageDays float64
	}
	groups := make(map[string]*agg)

	for i := 0; i < t.NumRows(); i++ {
		coe, ok := parseDate(t.Get(i, domain.ColEstCOEDate))
		if !ok || coe.Before(coeStart) || coe.After(coeEnd) {
			continue
		}
		// Unsold at snapshot: no sale date, or sold after the snapshot.
		if sold, ok := parseDate(t.Get(i, domain.ColSaleDate)); ok && !sold.After(snapshot) {
			continue
		}
		key := t.Get(i, groupColumn)
		g := groups[key]
		if g == nil {
			g = &agg{}
			groups[key] = g
		}
		g.count++
		g.ageDays += coe.Sub(snapshot).Hours() / 24
	}

	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	rows := make([]domain.InventorySnapshotRow, 0, len(keys))
	for _, k := range keys {
		g := groups[k]
		rows = append(rows, domain.InventorySnapshotRow{
			Group:  k,
			Unsold: g.count,
			AvgAge: g.ageDays / float64(g.count),
			Week:   label,
		})
	}
	return rows, nil
}

// PaceVsMargin compares each community's trailing 3-week sales pace with
// the pace needed to clear its unsold inventory by the target date. Unsold
// homes are HS_TYPE "S" with a COE inside the window; pace counts backlog
// and closed sales over the trailing 21 days. The returned slope is the
// homes-per-week rate implied by one home and the remaining weeks.
func PaceVsMargin(t *table.Table, today, target, coeStart, coeEnd time.Time) ([]domain.PaceMarginRow, float64, error) {
	required := []string{
		domain.ColSaleDate,
		domain.ColEstCOEDate,
		domain.ColHSType,
		domain.ColCommunityName,
	}
	if missing := t.MissingColumns(required); len(missing) > 0 {
		return nil, 0, &ColumnError{Detail: fmt.Sprintf("pace columns missing: %s", strings.Join(missing, ", "))}
	}

	unsold := make(map[string]int)
	sold3wk := make(map[string]int)
	threeWeeksAgo := today.AddDate(0, 0, -21)

	for i := 0; i < t.NumRows(); i++ {
		status := t.Get(i, domain.ColHSType)
		community := t.Get(i, domain.ColCommunityName)

		if status == domain.StatusUnsold {
			if coe, ok := parseDate(t.Get(i, domain.ColEstCOEDate)); ok &&
				!coe.Before(coeStart) && !coe.After(coeEnd) {
				unsold[community]++
			}
		}
		if status == domain.StatusBacklog || status == domain.StatusClosed {
			if sold, ok := parseDate(t.Get(i, domain.ColSaleDate)); ok && !sold.Before(threeWeeksAgo) {
				sold3wk[community]++
			}
		}
	}

	weeksLeft := target.Sub(today).Hours() / 24 / 7
	slope := 0.0
	if weeksLeft > 0 {
		slope = 1 / weeksLeft
	}

	communities := make(map[string]struct{}, len(unsold)+len(sold3wk))
	for c := range unsold {
		communities[c] = struct{}{}
	}
	for c := range sold3wk {
		communities[c] = struct{}{}
	}
	keys := make([]string, 0, len(communities))
	for c := range communities {
		keys = append(keys, c)
	}
	sort.Strings(keys)

	rows := make([]domain.PaceMarginRow, 0, len(keys))
	for _, c := range keys {
		pace := float64(sold3wk[c]) / 3
		needed := 0.0
		if weeksLeft > 0 {
			needed = float64(unsold[c]) / weeksLeft
		}
		delta := pace - needed
		rows = append(rows, domain.PaceMarginRow{
			Community:  c,
			Unsold:     unsold[c],
			Pace3Wk:    pace,
			NeededPace: needed,
			Delta:      delta,
			Category:   paceCategory(delta),
		})
	}
	return rows, slope, nil
}

func paceCategory(delta float64) domain.PaceCategory {
	switch {
	case delta > 1:
		return domain.PaceMargin
	case delta > 0:
		return domain.PaceTarget
	case delta > -2:
		return domain.PacePace
	default:
		return domain.PaceBehind
	}
}
