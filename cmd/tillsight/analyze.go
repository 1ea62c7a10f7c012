package main

import (
	"fmt"
	"log/slog"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/tillsight/tillsight/internal/rfm"
)

func analyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Score customers with RFM segmentation",
		Long: `Compute recency, frequency, and monetary value per customer, rank the
population into quartiles, and assign value tiers.

The reference date defaults to the day after the latest invoice date.
Tier boundaries and the Pareto fraction come from configuration.`,
		RunE: runAnalyze,
	}

	cmd.Flags().String("reference-date", "", "RFM reference date (YYYY-MM-DD)")
	cmd.Flags().Int("top", 20, "number of top customers to list")

	return cmd
}

func runAnalyze(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	referenceDate, _ := cmd.Flags().GetString("reference-date")
	topN, _ := cmd.Flags().GetInt("top")

	store, err := openStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	result, err := computeSegmentation(ctx, store, referenceDate)
	if err != nil {
		return err
	}

	if len(result.Records) == 0 {
		slog.Info("No customers with positive net spend to score")
		return nil
	}

	slog.Info("RFM analysis complete",
		"customers", len(result.Records),
		"reference_date", result.Reference.Format("2006-01-02"))

	printSegmentSummary(result)
	printTopCustomers(result, topN)
	printKPIs(result)
	printPareto(result.Pareto)

	return nil
}

func printSegmentSummary(result rfm.Result) {
	p := message.NewPrinter(language.English)
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)

	fmt.Fprintln(w, "\nSEGMENT\tCUSTOMERS\tAVG MONETARY")
	for _, tier := range result.Tiers {
		fmt.Fprintf(w, "%s\t%s\t%s\n",
			tier.Tier,
			p.Sprintf("%d", tier.Count),
			p.Sprintf("$%.2f", tier.AvgMonetary))
	}
	_ = w.Flush()
}

func printTopCustomers(result rfm.Result, n int) {
	records := make([]rfm.Record, len(result.Records))
	copy(records, result.Records)
	sort.Slice(records, func(a, b int) bool {
		return records[a].Monetary > records[b].Monetary
	})
	if n < len(records) {
		records = records[:n]
	}

	p := message.NewPrinter(language.English)
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)

	fmt.Fprintln(w, "\nCUSTOMER\tCOUNTRY\tRECENCY\tFREQ\tMONETARY\tRFM\tTIER")
	for _, r := range records {
		fmt.Fprintf(w, "%d\t%s\t%d\t%d\t%s\t%s\t%s\n",
			r.CustomerID,
			r.Country,
			r.Recency,
			r.Frequency,
			p.Sprintf("$%.2f", r.Monetary),
			r.Segment,
			r.Tier)
	}
	_ = w.Flush()
}

func printKPIs(result rfm.Result) {
	var totalFreq int
	var totalMonetary, maxMonetary float64
	minMonetary := result.Records[0].Monetary
	for _, r := range result.Records {
		totalFreq += r.Frequency
		totalMonetary += r.Monetary
		if r.Monetary > maxMonetary {
			maxMonetary = r.Monetary
		}
		if r.Monetary < minMonetary {
			minMonetary = r.Monetary
		}
	}
	count := float64(len(result.Records))

	p := message.NewPrinter(language.English)
	fmt.Println("\nKey business metrics:")
	p.Printf("  Customers:              %d\n", len(result.Records))
	p.Printf("  Avg purchase frequency: %.2f\n", float64(totalFreq)/count)
	p.Printf("  Avg customer LTV:       $%.2f\n", totalMonetary/count)
	p.Printf("  Total revenue:          $%.2f\n", totalMonetary)
	p.Printf("  Highest spend:          $%.2f\n", maxMonetary)
	p.Printf("  Lowest spend:           $%.2f\n", minMonetary)
}

func printPareto(pareto rfm.Pareto) {
	p := message.NewPrinter(language.English)
	fmt.Println("\nPareto analysis:")
	p.Printf("  Top %.0f%% of customers (%d) contribute $%.2f of $%.2f revenue (%.1f%%)\n",
		pareto.TopFraction*100,
		pareto.TopCustomers,
		pareto.TopRevenue,
		pareto.TotalRevenue,
		pareto.Share*100)
}
