// Package report assembles the aggregate query results into chart
// datasets and renders them into a single self-contained HTML dashboard.
package report

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/tillsight/tillsight/internal/rfm"
	"github.com/tillsight/tillsight/internal/storage"
)

// DataSource is the read-only aggregate surface the builder queries.
type DataSource interface {
	TopProducts(ctx context.Context, n int) ([]storage.ProductRevenue, error)
	SalesByCountry(ctx context.Context, limit int) ([]storage.CountrySales, error)
	RevenueByMonth(ctx context.Context) ([]storage.MonthlyRevenue, error)
	CustomerLifetimeValues(ctx context.Context) ([]float64, error)
	PriceVolume(ctx context.Context, limit int) ([]storage.ProductPricing, error)
	GetSummary(ctx context.Context) (storage.Summary, error)
}

// Config sizes the per-chart result sets.
type Config struct {
	TopProducts   int
	CountryLimit  int
	PriceVolume   int
	HistogramBins int
}

// DefaultConfig mirrors the result-set sizes of the reference dashboard.
func DefaultConfig() Config {
	return Config{
		TopProducts:   15,
		CountryLimit:  15,
		PriceVolume:   20,
		HistogramBins: 50,
	}
}

// Builder produces the report document from a data source and a scored
// customer segmentation.
type Builder struct {
	source DataSource
	cfg    Config
}

// NewBuilder creates a report builder. Zero config fields fall back to
// defaults.
func NewBuilder(source DataSource, cfg Config) *Builder {
	defaults := DefaultConfig()
	if cfg.TopProducts <= 0 {
		cfg.TopProducts = defaults.TopProducts
	}
	if cfg.CountryLimit <= 0 {
		cfg.CountryLimit = defaults.CountryLimit
	}
	if cfg.PriceVolume <= 0 {
		cfg.PriceVolume = defaults.PriceVolume
	}
	if cfg.HistogramBins <= 0 {
		cfg.HistogramBins = defaults.HistogramBins
	}
	return &Builder{source: source, cfg: cfg}
}

// KPI is one headline value card.
type KPI struct {
	Label string
	Value string
}

// Chart pairs a figure with its dashboard framing.
type Chart struct {
	Title       string
	Description string
	Figure      Figure
	FullWidth   bool
}

// Report is the assembled dashboard content.
type Report struct {
	GeneratedAt time.Time
	Period      string
	KPIs        []KPI
	Charts      []Chart
}

// Build runs every aggregate query and lays out the six charts plus the
// KPI cards. The builder's contract ends at well-defined tabular result
// sets per chart; rendering is a separate step.
func (b *Builder) Build(ctx context.Context, segmentation rfm.Result) (*Report, error) {
	summary, err := b.source.GetSummary(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load summary: %w", err)
	}

	products, err := b.source.TopProducts(ctx, b.cfg.TopProducts)
	if err != nil {
		return nil, fmt.Errorf("failed to load top products: %w", err)
	}

	countries, err := b.source.SalesByCountry(ctx, b.cfg.CountryLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to load country sales: %w", err)
	}

	monthly, err := b.source.RevenueByMonth(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load monthly revenue: %w", err)
	}

	ltv, err := b.source.CustomerLifetimeValues(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load lifetime values: %w", err)
	}

	pricing, err := b.source.PriceVolume(ctx, b.cfg.PriceVolume)
	if err != nil {
		return nil, fmt.Errorf("failed to load price/volume: %w", err)
	}

	report := &Report{
		GeneratedAt: time.Now(),
		Period:      periodLabel(monthly),
		KPIs:        buildKPIs(summary),
		Charts: []Chart{
			{
				Title:       "Customer Value Analysis",
				Description: "RFM segmentation by purchase frequency and lifetime spending",
				Figure:      segmentationFigure(segmentation),
			},
			{
				Title:       "Top Revenue Products",
				Description: "Leading products ranked by total revenue contribution",
				Figure:      topProductsFigure(products),
			},
			{
				Title:       "Geographic Performance",
				Description: "Revenue distribution by country",
				Figure:      countryFigure(countries),
				FullWidth:   true,
			},
			{
				Title:       "Sales Trend Analysis",
				Description: "Monthly revenue pattern showing seasonality and growth trends",
				Figure:      monthlyFigure(monthly),
				FullWidth:   true,
			},
			{
				Title:       "Product Performance Matrix",
				Description: "Price positioning against sales volume",
				Figure:      priceVolumeFigure(pricing),
			},
			{
				Title:       "Customer Value Distribution",
				Description: "Histogram of customer lifetime value across all customers",
				Figure:      ltvFigure(ltv, b.cfg.HistogramBins),
			},
		},
	}

	return report, nil
}

func buildKPIs(summary storage.Summary) []KPI {
	p := message.NewPrinter(language.English)
	return []KPI{
		{Label: "Total Customers", Value: p.Sprintf("%d", summary.Customers)},
		{Label: "Total Invoices", Value: p.Sprintf("%d", summary.Invoices)},
		{Label: "Total Revenue", Value: p.Sprintf("$%.2f", summary.TotalRevenue)},
		{Label: "Avg. Customer LTV", Value: p.Sprintf("$%.2f", summary.AvgLTV)},
		{Label: "Unique Products", Value: p.Sprintf("%d", summary.Products)},
		{Label: "Countries Served", Value: p.Sprintf("%d", summary.Countries)},
	}
}

func periodLabel(monthly []storage.MonthlyRevenue) string {
	if len(monthly) == 0 {
		return "no data"
	}
	return fmt.Sprintf("%s to %s", monthly[0].Month, monthly[len(monthly)-1].Month)
}
