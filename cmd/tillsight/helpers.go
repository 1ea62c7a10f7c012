package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/tillsight/tillsight/internal/common"
	"github.com/tillsight/tillsight/internal/rfm"
	"github.com/tillsight/tillsight/internal/storage"
)

func openStorage(ctx context.Context) (*storage.SQLiteStorage, error) {
	dbPath := viper.GetString("db.path")

	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", dbPath, err)
	}

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

func newCalculator() (*rfm.Calculator, error) {
	cfg := rfm.Config{
		ParetoTopFraction:  viper.GetFloat64("rfm.pareto.top_fraction"),
		ParetoExcludeOther: viper.GetBool("rfm.pareto.exclude_other"),
	}

	if viper.IsSet("rfm.tiers") {
		if err := viper.UnmarshalKey("rfm.tiers", &cfg.TierRules); err != nil {
			return nil, fmt.Errorf("%w: failed to parse rfm.tiers: %v", common.ErrInvalidConfig, err)
		}
	}

	return rfm.NewCalculator(cfg)
}

// resolveReferenceDate picks the RFM reference date: an explicit
// override wins, otherwise the day after the latest invoice date.
func resolveReferenceDate(ctx context.Context, store *storage.SQLiteStorage, override string) (time.Time, error) {
	if override == "" {
		override = viper.GetString("rfm.reference_date")
	}
	if override != "" {
		ref, err := time.Parse("2006-01-02", override)
		if err != nil {
			return time.Time{}, fmt.Errorf("%w: reference date %q is not YYYY-MM-DD", common.ErrInvalidConfig, override)
		}
		return ref.UTC(), nil
	}

	latest, err := store.LatestInvoiceDate(ctx)
	if err != nil {
		return time.Time{}, err
	}
	return latest.AddDate(0, 0, 1), nil
}

// computeSegmentation loads customer metrics and scores them.
func computeSegmentation(ctx context.Context, store *storage.SQLiteStorage, referenceOverride string) (rfm.Result, error) {
	calculator, err := newCalculator()
	if err != nil {
		return rfm.Result{}, err
	}

	reference, err := resolveReferenceDate(ctx, store, referenceOverride)
	if err != nil {
		// No invoices at all is a zero-customer result, not an error.
		if errors.Is(err, common.ErrNotFound) {
			return rfm.Result{}, nil
		}
		return rfm.Result{}, err
	}

	metrics, err := store.CustomerMetrics(ctx)
	if err != nil {
		return rfm.Result{}, err
	}

	input := make([]rfm.Metrics, len(metrics))
	for i, m := range metrics {
		input[i] = rfm.Metrics{
			CustomerID:   m.CustomerID,
			Country:      m.Country,
			LastPurchase: m.LastPurchase,
			Frequency:    m.Frequency,
			Monetary:     m.Monetary,
		}
	}

	return calculator.Score(input, reference), nil
}
