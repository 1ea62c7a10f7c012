package report

import (
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"os"
	"path/filepath"
	"time"
)

// Render writes the report as a single self-contained HTML document.
// Charts load Plotly from the CDN and stay interactive in the browser.
func (r *Report) Render(w io.Writer) error {
	type chartView struct {
		Title       string
		Description string
		JSON        template.JS
		DivID       string
		FullWidth   bool
	}

	charts := make([]chartView, len(r.Charts))
	for i, chart := range r.Charts {
		figJSON, err := json.Marshal(chart.Figure)
		if err != nil {
			return fmt.Errorf("failed to marshal chart %q: %w", chart.Title, err)
		}
		charts[i] = chartView{
			Title:       chart.Title,
			Description: chart.Description,
			JSON:        template.JS(figJSON),
			DivID:       fmt.Sprintf("chart%d", i+1),
			FullWidth:   chart.FullWidth,
		}
	}

	data := struct {
		Generated string
		Period    string
		KPIs      []KPI
		Charts    []chartView
	}{
		Generated: r.GeneratedAt.Format("January 2006"),
		Period:    r.Period,
		KPIs:      r.KPIs,
		Charts:    charts,
	}

	return dashboardTemplate.Execute(w, data)
}

// WriteFile renders the report into dir under a timestamped name and
// returns the written path.
func (r *Report) WriteFile(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0750); err != nil {
		return "", fmt.Errorf("failed to create report directory: %w", err)
	}

	name := fmt.Sprintf("retail_report_%s.html", time.Now().Format("20060102_150405"))
	path := filepath.Join(dir, name)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create report file: %w", err)
	}

	if err := r.Render(f); err != nil {
		_ = f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to close report file: %w", err)
	}

	return path, nil
}

var dashboardTemplate = template.Must(template.New("dashboard").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="utf-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>E-Commerce Analytics Dashboard</title>
    <script src="https://cdn.plot.ly/plotly-latest.min.js"></script>
    <style>
        * { margin: 0; padding: 0; box-sizing: border-box; }
        body {
            font-family: 'Segoe UI', Tahoma, Geneva, Verdana, sans-serif;
            background-color: #f0f2f5;
            color: #333333;
        }
        .dashboard-header {
            background: linear-gradient(135deg, #003f87 0%, #0066cc 100%);
            color: white;
            padding: 40px 30px;
            box-shadow: 0 2px 8px rgba(0,0,0,0.1);
            border-bottom: 4px solid #003f87;
        }
        .dashboard-header h1 { font-size: 28px; margin-bottom: 8px; font-weight: 600; }
        .dashboard-header p { font-size: 13px; opacity: 0.95; }
        .kpi-section {
            display: grid;
            grid-template-columns: repeat(auto-fit, minmax(180px, 1fr));
            gap: 20px;
            padding: 20px 30px;
            background-color: white;
            border-bottom: 1px solid #e6e6e6;
        }
        .kpi-card {
            background: white;
            border-left: 4px solid #0066cc;
            padding: 20px;
            border-radius: 4px;
            box-shadow: 0 1px 3px rgba(0,0,0,0.08);
        }
        .kpi-value { font-size: 24px; font-weight: bold; color: #003f87; margin: 10px 0; }
        .kpi-label {
            font-size: 12px;
            color: #666666;
            text-transform: uppercase;
            letter-spacing: 0.5px;
        }
        .container { max-width: 1400px; margin: 0 auto; padding: 30px; }
        .charts-grid {
            display: grid;
            grid-template-columns: 1fr 1fr;
            gap: 30px;
            margin-bottom: 30px;
        }
        .chart-container {
            background: white;
            border-radius: 4px;
            box-shadow: 0 1px 4px rgba(0,0,0,0.08);
            padding: 20px;
            border-top: 3px solid #0066cc;
        }
        .chart-container.full-width { grid-column: 1 / -1; }
        .chart-title {
            font-size: 14px;
            font-weight: 600;
            margin-bottom: 15px;
            padding-bottom: 10px;
            border-bottom: 1px solid #f0f0f0;
        }
        .chart-description { font-size: 12px; color: #888888; margin-bottom: 15px; font-style: italic; }
        .dashboard-footer {
            text-align: center;
            padding: 20px 30px;
            color: #999999;
            font-size: 11px;
            border-top: 1px solid #e6e6e6;
            background: white;
            margin-top: 30px;
        }
        @media (max-width: 1200px) {
            .charts-grid { grid-template-columns: 1fr; }
        }
    </style>
</head>
<body>
    <div class="dashboard-header">
        <h1>E-Commerce Analytics Dashboard</h1>
        <p>Data Period: {{.Period}} | Interactive Analysis Report</p>
    </div>

    <div class="kpi-section">
        {{range .KPIs}}
        <div class="kpi-card">
            <div class="kpi-label">{{.Label}}</div>
            <div class="kpi-value">{{.Value}}</div>
        </div>
        {{end}}
    </div>

    <div class="container">
        <div class="charts-grid">
            {{range .Charts}}
            <div class="chart-container{{if .FullWidth}} full-width{{end}}">
                <div class="chart-title">{{.Title}}</div>
                <div class="chart-description">{{.Description}}</div>
                <div id="{{.DivID}}"></div>
            </div>
            {{end}}
        </div>
    </div>

    <div class="dashboard-footer">
        <p>Generated: {{.Generated}}</p>
        <p>Interactive features: hover for details, zoom, pan, click legend to toggle</p>
    </div>

    <script>
        const charts = [
            {{range $i, $c := .Charts}}{{if $i}},{{end}}{{$c.JSON}}{{end}}
        ];

        charts.forEach((fig, i) => {
            Plotly.newPlot('chart' + (i + 1), fig.data, fig.layout, {
                responsive: true,
                displayModeBar: true,
                displaylogo: false
            });
        });
    </script>
</body>
</html>
`))
