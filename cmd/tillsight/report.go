package main

import (
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tillsight/tillsight/internal/report"
)

func reportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Render the HTML analytics dashboard",
		Long: `Run the aggregate queries, score the customer base, and write a single
self-contained HTML report with six interactive charts and KPI cards.`,
		RunE: runReport,
	}

	cmd.Flags().StringP("output", "o", "", "output directory (default from config)")
	cmd.Flags().String("reference-date", "", "RFM reference date (YYYY-MM-DD)")
	cmd.Flags().Int("top-products", 0, "number of products in the revenue chart")

	return cmd
}

func runReport(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	output, _ := cmd.Flags().GetString("output")
	referenceDate, _ := cmd.Flags().GetString("reference-date")
	topProducts, _ := cmd.Flags().GetInt("top-products")

	if output == "" {
		output = viper.GetString("report.output")
	}
	if topProducts == 0 {
		topProducts = viper.GetInt("report.top_products")
	}

	store, err := openStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	segmentation, err := computeSegmentation(ctx, store, referenceDate)
	if err != nil {
		return err
	}

	builder := report.NewBuilder(store, report.Config{
		TopProducts:  topProducts,
		CountryLimit: viper.GetInt("report.country_limit"),
		PriceVolume:  viper.GetInt("report.price_volume"),
	})

	doc, err := builder.Build(ctx, segmentation)
	if err != nil {
		return err
	}

	path, err := doc.WriteFile(output)
	if err != nil {
		return err
	}

	slog.Info("Report written", "path", path, "charts", len(doc.Charts))
	return nil
}
