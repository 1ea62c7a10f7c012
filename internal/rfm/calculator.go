// Package rfm scores customers on recency, frequency, and monetary
// value, assigns quartile-based segment codes and named tiers, and
// measures revenue concentration across the customer base.
package rfm

import (
	"fmt"
	"math"
	"sort"
	"time"
)

// Metrics is the per-customer input to the calculator.
type Metrics struct {
	LastPurchase time.Time
	Country      string
	CustomerID   int64
	Frequency    int
	Monetary     float64
}

// Record is one scored customer.
type Record struct {
	Country    string
	Segment    string
	Tier       string
	CustomerID int64
	Recency    int
	Frequency  int
	RScore     int
	FScore     int
	MScore     int
	Monetary   float64
}

// TierSummary aggregates one tier's membership.
type TierSummary struct {
	Tier        string
	Count       int
	AvgMonetary float64
}

// Pareto reports the revenue share of the top-ranked fraction of
// customers by monetary value.
type Pareto struct {
	TopFraction  float64
	TopCustomers int
	TopRevenue   float64
	TotalRevenue float64
	Share        float64
}

// Result is the full output of one scoring run.
type Result struct {
	Reference time.Time
	Records   []Record
	Tiers     []TierSummary
	Pareto    Pareto
}

// Config controls scoring behavior. The zero value is completed with
// defaults by NewCalculator.
type Config struct {
	TierRules          []TierRule
	ParetoTopFraction  float64
	ParetoExcludeOther bool
}

// Calculator scores customer metrics into RFM records.
type Calculator struct {
	rules        []TierRule
	topFraction  float64
	excludeOther bool
}

// NewCalculator creates a calculator from config, applying defaults for
// unset fields.
func NewCalculator(cfg Config) (*Calculator, error) {
	rules := cfg.TierRules
	if len(rules) == 0 {
		rules = DefaultTierRules()
	}
	for i := range rules {
		if rules[i].Name == "" {
			return nil, fmt.Errorf("tier rule %d has no name", i)
		}
	}

	topFraction := cfg.ParetoTopFraction
	if topFraction == 0 {
		topFraction = 0.20
	}
	if topFraction < 0 || topFraction > 1 {
		return nil, fmt.Errorf("pareto top fraction %v out of range (0,1]", topFraction)
	}

	return &Calculator{
		rules:        rules,
		topFraction:  topFraction,
		excludeOther: cfg.ParetoExcludeOther,
	}, nil
}

// Score ranks the customer population into independent quartiles along
// recency, frequency, and monetary value and assigns tiers.
//
// Customers with non-positive net spend are excluded up front (data
// artifacts from cancelled or returned orders netting to zero or
// below). Quartiles are equal-sized buckets by rank with ties broken by
// stable input order; recency is ranked descending so quartile 4 is the
// most recent. An empty population yields an empty result, not an error.
func (c *Calculator) Score(metrics []Metrics, reference time.Time) Result {
	result := Result{Reference: reference}

	records := make([]Record, 0, len(metrics))
	for _, m := range metrics {
		if m.Monetary <= 0 {
			continue
		}
		records = append(records, Record{
			CustomerID: m.CustomerID,
			Country:    m.Country,
			Recency:    daysBetween(m.LastPurchase, reference),
			Frequency:  m.Frequency,
			Monetary:   m.Monetary,
		})
	}
	if len(records) == 0 {
		return result
	}

	assignQuartiles(records, func(r *Record) float64 { return -float64(r.Recency) },
		func(r *Record, score int) { r.RScore = score })
	assignQuartiles(records, func(r *Record) float64 { return float64(r.Frequency) },
		func(r *Record, score int) { r.FScore = score })
	assignQuartiles(records, func(r *Record) float64 { return r.Monetary },
		func(r *Record, score int) { r.MScore = score })

	for i := range records {
		r := &records[i]
		r.Segment = fmt.Sprintf("%d%d%d", r.RScore, r.FScore, r.MScore)
		r.Tier = TierFor(c.rules, r.RScore, r.FScore, r.MScore)
	}

	result.Records = records
	result.Tiers = summarizeTiers(records)
	result.Pareto = c.pareto(records)
	return result
}

// daysBetween returns the calendar-day difference from last purchase to
// the reference date. Time of day is ignored: a purchase at 23:59 and
// one at 00:01 on the same date are equally recent.
func daysBetween(last, reference time.Time) int {
	return int(truncateToDate(reference).Sub(truncateToDate(last)).Hours() / 24)
}

func truncateToDate(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// assignQuartiles buckets records into 4 equal-sized groups by rank of
// the key, ascending; remainder rows go to the leading buckets, which
// is NTILE(4) semantics. Ties keep input order (stable sort), and the
// bucket index is the score: bucket 4 holds the highest keys.
func assignQuartiles(records []Record, key func(*Record) float64, set func(*Record, int)) {
	order := make([]int, len(records))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return key(&records[order[a]]) < key(&records[order[b]])
	})

	n := len(records)
	base := n / 4
	rem := n % 4

	pos := 0
	for bucket := 1; bucket <= 4; bucket++ {
		size := base
		if bucket <= rem {
			size++
		}
		for i := 0; i < size && pos < n; i++ {
			set(&records[order[pos]], bucket)
			pos++
		}
	}
}

func summarizeTiers(records []Record) []TierSummary {
	totals := make(map[string]*TierSummary)
	for i := range records {
		summary, ok := totals[records[i].Tier]
		if !ok {
			summary = &TierSummary{Tier: records[i].Tier}
			totals[records[i].Tier] = summary
		}
		summary.Count++
		summary.AvgMonetary += records[i].Monetary
	}

	summaries := make([]TierSummary, 0, len(totals))
	for _, summary := range totals {
		summary.AvgMonetary = roundCents(summary.AvgMonetary / float64(summary.Count))
		summaries = append(summaries, *summary)
	}
	sort.Slice(summaries, func(a, b int) bool {
		return summaries[a].AvgMonetary > summaries[b].AvgMonetary
	})
	return summaries
}

// pareto measures the monetary share of the top-ranked fraction of
// customers. The fallback tier can be excluded from the population when
// configured.
func (c *Calculator) pareto(records []Record) Pareto {
	population := records
	if c.excludeOther {
		population = make([]Record, 0, len(records))
		for i := range records {
			if records[i].Tier != TierFallback {
				population = append(population, records[i])
			}
		}
	}

	result := Pareto{TopFraction: c.topFraction}
	if len(population) == 0 {
		return result
	}

	values := make([]float64, len(population))
	for i := range population {
		values[i] = population[i].Monetary
		result.TotalRevenue += population[i].Monetary
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(values)))

	result.TopCustomers = int(math.Ceil(float64(len(values)) * c.topFraction))
	for _, v := range values[:result.TopCustomers] {
		result.TopRevenue += v
	}
	if result.TotalRevenue > 0 {
		result.Share = result.TopRevenue / result.TotalRevenue
	}

	result.TopRevenue = roundCents(result.TopRevenue)
	result.TotalRevenue = roundCents(result.TotalRevenue)
	return result
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
