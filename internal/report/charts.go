package report

import (
	"github.com/tillsight/tillsight/internal/rfm"
	"github.com/tillsight/tillsight/internal/storage"
)

// Figure is a Plotly figure: traces plus layout, marshalled into the
// report document as JSON.
type Figure struct {
	Data   []map[string]any `json:"data"`
	Layout map[string]any   `json:"layout"`
}

// Corporate-blue palette of the reference dashboard.
var tierColors = map[string]string{
	"Top-Tier":   "#003f87",
	"High-Value": "#0066cc",
	"Mid-Value":  "#3399ff",
	"At-Risk":    "#cccccc",
	"Other":      "#e6e6e6",
}

const (
	colorPrimary = "#0066cc"
	colorDark    = "#003f87"
)

func baseLayout(title string) map[string]any {
	return map[string]any{
		"title":         map[string]any{"text": title, "font": map[string]any{"size": 16}},
		"template":      "plotly_white",
		"font":          map[string]any{"family": "Segoe UI, Arial", "size": 11, "color": "#333333"},
		"plot_bgcolor":  "#f8f9fa",
		"paper_bgcolor": "white",
		"xaxis":         map[string]any{"gridcolor": "#e6e6e6", "showgrid": true},
		"yaxis":         map[string]any{"gridcolor": "#e6e6e6", "showgrid": true},
	}
}

// segmentationFigure is one scatter trace per tier: frequency against
// monetary value, so high-value clusters separate visually.
func segmentationFigure(result rfm.Result) Figure {
	byTier := make(map[string][]rfm.Record)
	var order []string
	for _, record := range result.Records {
		if _, ok := byTier[record.Tier]; !ok {
			order = append(order, record.Tier)
		}
		byTier[record.Tier] = append(byTier[record.Tier], record)
	}

	traces := make([]map[string]any, 0, len(order))
	for _, tier := range order {
		records := byTier[tier]
		x := make([]int, len(records))
		y := make([]float64, len(records))
		text := make([]string, len(records))
		for i, r := range records {
			x[i] = r.Frequency
			y[i] = r.Monetary
			text[i] = r.Segment
		}
		trace := map[string]any{
			"type": "scatter",
			"mode": "markers",
			"name": tier,
			"x":    x,
			"y":    y,
			"text": text,
			"marker": map[string]any{
				"color": tierColors[tier],
				"line":  map[string]any{"width": 0.5, "color": "white"},
			},
		}
		traces = append(traces, trace)
	}

	layout := baseLayout("Customer Lifetime Value by Purchase Frequency")
	layout["xaxis"].(map[string]any)["title"] = "Purchase Frequency"
	layout["yaxis"].(map[string]any)["title"] = "Total Spending ($)"
	layout["hovermode"] = "closest"
	return Figure{Data: traces, Layout: layout}
}

func topProductsFigure(products []storage.ProductRevenue) Figure {
	// Reverse so the biggest bar renders at the top.
	n := len(products)
	x := make([]float64, n)
	y := make([]string, n)
	for i, p := range products {
		x[n-1-i] = p.Revenue
		y[n-1-i] = p.Description
	}

	trace := map[string]any{
		"type":        "bar",
		"orientation": "h",
		"x":           x,
		"y":           y,
		"marker":      map[string]any{"color": colorPrimary},
	}

	layout := baseLayout("Revenue by Product")
	layout["xaxis"].(map[string]any)["title"] = "Revenue ($)"
	layout["yaxis"].(map[string]any)["showgrid"] = false
	layout["margin"] = map[string]any{"l": 250}
	layout["showlegend"] = false
	return Figure{Data: []map[string]any{trace}, Layout: layout}
}

func countryFigure(countries []storage.CountrySales) Figure {
	labels := make([]string, len(countries))
	values := make([]float64, len(countries))
	for i, c := range countries {
		labels[i] = c.Country
		values[i] = c.Revenue
	}

	trace := map[string]any{
		"type":         "pie",
		"labels":       labels,
		"values":       values,
		"textposition": "inside",
		"textinfo":     "label+percent",
		"marker":       map[string]any{"line": map[string]any{"color": "white", "width": 2}},
	}

	layout := baseLayout("Revenue Distribution by Country")
	return Figure{Data: []map[string]any{trace}, Layout: layout}
}

func monthlyFigure(monthly []storage.MonthlyRevenue) Figure {
	x := make([]string, len(monthly))
	y := make([]float64, len(monthly))
	for i, m := range monthly {
		x[i] = m.Month
		y[i] = m.Revenue
	}

	trace := map[string]any{
		"type":   "scatter",
		"mode":   "lines+markers",
		"x":      x,
		"y":      y,
		"line":   map[string]any{"color": colorPrimary, "width": 3},
		"marker": map[string]any{"size": 6, "color": colorDark},
	}

	layout := baseLayout("Monthly Revenue Trend")
	layout["xaxis"].(map[string]any)["title"] = "Month"
	layout["yaxis"].(map[string]any)["title"] = "Revenue ($)"
	layout["hovermode"] = "x unified"
	return Figure{Data: []map[string]any{trace}, Layout: layout}
}

func priceVolumeFigure(pricing []storage.ProductPricing) Figure {
	x := make([]float64, len(pricing))
	y := make([]int64, len(pricing))
	text := make([]string, len(pricing))
	for i, p := range pricing {
		x[i] = p.AvgPrice
		y[i] = p.QuantitySold
		text[i] = p.Description
	}

	trace := map[string]any{
		"type": "scatter",
		"mode": "markers",
		"x":    x,
		"y":    y,
		"text": text,
		"marker": map[string]any{
			"color": colorDark,
			"size":  10,
			"line":  map[string]any{"width": 0.5, "color": "white"},
		},
	}

	layout := baseLayout("Product Performance: Price vs Sales Volume")
	layout["xaxis"].(map[string]any)["title"] = "Average Price ($)"
	layout["yaxis"].(map[string]any)["title"] = "Units Sold"
	layout["hovermode"] = "closest"
	layout["showlegend"] = false
	return Figure{Data: []map[string]any{trace}, Layout: layout}
}

func ltvFigure(values []float64, bins int) Figure {
	trace := map[string]any{
		"type":   "histogram",
		"x":      values,
		"nbinsx": bins,
		"marker": map[string]any{
			"color": colorPrimary,
			"line":  map[string]any{"color": "white", "width": 1},
		},
	}

	layout := baseLayout("Customer Lifetime Value Distribution")
	layout["xaxis"].(map[string]any)["title"] = "Customer LTV ($)"
	layout["yaxis"].(map[string]any)["title"] = "Number of Customers"
	layout["showlegend"] = false
	return Figure{Data: []map[string]any{trace}, Layout: layout}
}
