package dataprocessing

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/mtorres1190/MATT-Report/internal/table"
	"github.com/mtorres1190/MATT-Report/pkg/contracts/domain"
)

// Enricher runs the MATT enrichment transform: key derivation, the hub and
// plan lookups, and the derived classification columns. It holds no state
// between runs and is safe for concurrent use.
type Enricher struct {
	logger    *slog.Logger
	investors map[string]struct{}
}

// EnricherConfig holds the injectable pieces of the transform.
type EnricherConfig struct {
	// InvestorNames is the exact-match allowlist for investor tagging.
	// Empty means the embedded default list.
	InvestorNames []string
}

// NewEnricher creates an enricher with the given configuration.
func NewEnricher(logger *slog.Logger, cfg EnricherConfig) *Enricher {
	if logger == nil {
		logger = slog.Default()
	}
	names := cfg.InvestorNames
	if len(names) == 0 {
		names = domain.DefaultInvestorNames
	}
	investors := make(map[string]struct{}, len(names))
	for _, n := range names {
		investors[n] = struct{}{}
	}
	return &Enricher{logger: logger, investors: investors}
}

// CommunityKeyError reports a COMMUNITY value whose 5-character prefix is
// not a usable join key. Key derivation is fail-fast: one malformed
// identifier aborts the whole run so a truncated or shifted extract never
// produces a silently mis-joined report.
type CommunityKeyError struct {
	Row   int    // zero-based data row
	Value string // raw COMMUNITY cell
}

func (e *CommunityKeyError) Error() string {
	return fmt.Sprintf("sales row %d: COMMUNITY %q has no 5-digit community prefix", e.Row, e.Value)
}

// Enrich joins the sales extract against the hub and plan references and
// appends the derived columns. Inputs are not mutated. The output has the
// same row count as sales, with all sales columns preserved.
func (e *Enricher) Enrich(sales, hub, plan *table.Table) (*table.Table, error) {
	if err := validateColumns("sales", sales, domain.RequiredSalesColumns); err != nil {
		return nil, err
	}
	if err := validateColumns("hub", hub, domain.RequiredHubColumns); err != nil {
		return nil, err
	}
	if err := validateColumns("plan", plan, domain.RequiredPlanColumns); err != nil {
		return nil, err
	}

	out := sales.Clone()

	// The extract labels net price as Textbox22; fix that up front so the
	// pricing aggregations see a real name.
	if out.HasColumn(domain.ColTextbox22) && !out.HasColumn(domain.ColNetSalesPrice) {
		if err := out.RenameColumn(domain.ColTextbox22, domain.ColNetSalesPrice); err != nil {
			return nil, err
		}
	}

	// Derive the Comm_# join key and normalize PLAN_CODE. Numeric plan
	// codes round-trip through the portal as "1234.0"; strip the artifact.
	commKeys := make([]string, out.NumRows())
	for i := 0; i < out.NumRows(); i++ {
		key, err := communityKey(out.Get(i, domain.ColCommunity))
		if err != nil {
			return nil, &CommunityKeyError{Row: i, Value: out.Get(i, domain.ColCommunity)}
		}
		commKeys[i] = strconv.Itoa(key)

		code := strings.TrimSpace(out.Get(i, domain.ColPlanCode))
		code = strings.TrimSuffix(code, ".0")
		if err := out.Set(i, domain.ColPlanCode, code); err != nil {
			return nil, err
		}
	}
	if err := out.AddColumn(domain.ColCommNumber, commKeys); err != nil {
		return nil, err
	}

	// Normalize the reference keys the same way before joining.
	hubRef := hub.Clone()
	trimColumn(hubRef, domain.ColCommunityNumber)
	planRef := plan.Clone()
	trimColumn(planRef, domain.ColRefPlanCode)

	out, err := table.LeftJoin(out, hubRef, domain.ColCommNumber, domain.ColCommunityNumber)
	if err != nil {
		return nil, fmt.Errorf("hub join: %w", err)
	}
	out, err = table.LeftJoin(out, planRef, domain.ColPlanCode, domain.ColRefPlanCode)
	if err != nil {
		return nil, fmt.Errorf("plan join: %w", err)
	}

	trimColumn(out, domain.ColHub)
	trimColumn(out, domain.ColCommunityName)
	trimColumn(out, domain.ColPlanName)

	if out.HasColumn(domain.ColTextbox4) && !out.HasColumn(domain.ColHSType) {
		if err := out.RenameColumn(domain.ColTextbox4, domain.ColHSType); err != nil {
			return nil, err
		}
	}

	if err := e.deriveColumns(out); err != nil {
		return nil, err
	}

	e.logger.Info("enriched MATT extract",
		slog.Int("rows", out.NumRows()),
		slog.Int("columns", out.NumColumns()))
	return out, nil
}

// deriveColumns appends the classification columns row by row.
func (e *Enricher) deriveColumns(t *table.Table) error {
	n := t.NumRows()
	dow := make([]string, n)
	group := make([]string, n)
	investor := make([]string, n)
	nhcClean := make([]string, n)
	cancelParsed := make([]string, n)
	realtor := make([]string, n)
	hsLabel := make([]string, n)

	hasCobroke := t.HasColumn(domain.ColCobroke)
	hasHSType := t.HasColumn(domain.ColHSType)
	hasCOE := t.HasColumn(domain.ColEstCOEDate)

	for i := 0; i < n; i++ {
		// Normalize SALE_DATE in place; unparseable cells go null.
		if d, ok := parseDate(t.Get(i, domain.ColSaleDate)); ok {
			if err := t.Set(i, domain.ColSaleDate, formatDate(d)); err != nil {
				return err
			}
			dow[i] = d.Weekday().String()
		} else {
			if err := t.Set(i, domain.ColSaleDate, ""); err != nil {
				return err
			}
		}

		// EST_COE_DATE gets the same in-place normalization.
		if hasCOE {
			coe := ""
			if d, ok := parseDate(t.Get(i, domain.ColEstCOEDate)); ok {
				coe = formatDate(d)
			}
			if err := t.Set(i, domain.ColEstCOEDate, coe); err != nil {
				return err
			}
		}

		// Null day-of-week counts as a weekday.
		if dow[i] == "Saturday" || dow[i] == "Sunday" {
			group[i] = domain.GroupWeekend
		} else {
			group[i] = domain.GroupWeekday
		}

		// Investor tagging is exact string equality, padding included.
		name := t.Get(i, domain.ColNHCName)
		if _, ok := e.investors[name]; ok {
			investor[i] = domain.ChannelInvestor
		} else {
			investor[i] = domain.ChannelRetail
		}
		nhcClean[i] = strings.ToUpper(strings.TrimSpace(name))

		// Cancellation date: trim the raw cell in place, parse separately.
		cancel := strings.TrimSpace(t.Get(i, domain.ColCancellationDate))
		if err := t.Set(i, domain.ColCancellationDate, cancel); err != nil {
			return err
		}
		if d, ok := parseDate(cancel); ok {
			cancelParsed[i] = formatDate(d)
		}

		if hasCobroke {
			if strings.TrimSpace(t.Get(i, domain.ColCobroke)) == "Y" {
				realtor[i] = domain.RepRealtor
			} else {
				realtor[i] = domain.RepDirect
			}
		}

		if hasHSType {
			code := t.Get(i, domain.ColHSType)
			if label, ok := domain.HomesiteStatusLabels[code]; ok {
				hsLabel[i] = label
			} else {
				hsLabel[i] = code
			}
		}
	}

	cols := []struct {
		name   string
		values []string
	}{
		{domain.ColDOWSale, dow},
		{domain.ColWeekdayGroup, group},
		{domain.ColInvestorSale, investor},
		{domain.ColNHCNameClean, nhcClean},
		{domain.ColCancellationDateParsed, cancelParsed},
	}
	if hasCobroke {
		cols = append(cols, struct {
			name   string
			values []string
		}{domain.ColRealtorDirect, realtor})
	}
	if hasHSType {
		cols = append(cols, struct {
			name   string
			values []string
		}{domain.ColHSTypeLabel, hsLabel})
	}
	for _, c := range cols {
		if err := t.AddColumn(c.name, c.values); err != nil {
			return err
		}
	}
	return nil
}

// communityKey extracts the canonical 5-digit community code from a raw
// COMMUNITY identifier.
func communityKey(raw string) (int, error) {
	s := strings.TrimSpace(raw)
	if len(s) < 5 {
		return 0, fmt.Errorf("value shorter than 5 characters")
	}
	key, err := strconv.Atoi(s[:5])
	if err != nil || key < 0 {
		return 0, fmt.Errorf("prefix %q is not a community number", s[:5])
	}
	return key, nil
}

// validateColumns reports every missing required column at once so a bad
// extract is diagnosed in one pass.
func validateColumns(name string, t *table.Table, required []string) error {
	if missing := t.MissingColumns(required); len(missing) > 0 {
		return fmt.Errorf("%s table missing required columns: %s", name, strings.Join(missing, ", "))
	}
	return nil
}

// trimColumn strips surrounding whitespace from every cell of a column, if
// the column exists.
func trimColumn(t *table.Table, column string) {
	if !t.HasColumn(column) {
		return
	}
	for i := 0; i < t.NumRows(); i++ {
		t.Set(i, column, strings.TrimSpace(t.Get(i, column)))
	}
}
