package cron

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/angelmondragon/stockroom-backend/pkg/db/models"
	"github.com/angelmondragon/stockroom-backend/pkg/logger"
	"github.com/angelmondragon/stockroom-backend/pkg/metrics"
)

// StockDriftJobName is the registry name of the ledger audit.
const StockDriftJobName = "stock-drift-audit"

type ledgerTotals interface {
	SumByProduct(ctx context.Context) (map[uuid.UUID]int, error)
	ListByProduct(ctx context.Context, productID uuid.UUID) ([]models.InventoryLog, error)
}

type availabilityTotals interface {
	AvailableByProduct(ctx context.Context) (map[uuid.UUID]int, error)
}

// Drift is a product whose ledger sum disagrees with its available counter.
type Drift struct {
	ProductID uuid.UUID
	LedgerSum int
	Available int
}

// Delta is how far the counter sits above the ledger.
func (d Drift) Delta() int {
	return d.Available - d.LedgerSum
}

// StockDriftJobParams configures the audit.
type StockDriftJobParams struct {
	Logger  *logger.Logger
	Ledger  ledgerTotals
	Stock   availabilityTotals
	Metrics *metrics.InventoryMetrics
}

type stockDriftJob struct {
	logg    *logger.Logger
	ledger  ledgerTotals
	stock   availabilityTotals
	metrics *metrics.InventoryMetrics
}

// NewStockDriftJob builds the read-only audit that compares each product's
// ledger sum with its available_count.
func NewStockDriftJob(params StockDriftJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Ledger == nil {
		return nil, fmt.Errorf("inventory log repository required")
	}
	if params.Stock == nil {
		return nil, fmt.Errorf("stock repository required")
	}
	return &stockDriftJob{
		logg:    params.Logger,
		ledger:  params.Ledger,
		stock:   params.Stock,
		metrics: params.Metrics,
	}, nil
}

func (j *stockDriftJob) Name() string { return StockDriftJobName }

func (j *stockDriftJob) Run(ctx context.Context) error {
	var sums, available map[uuid.UUID]int
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		sums, err = j.ledger.SumByProduct(gctx)
		if err != nil {
			return fmt.Errorf("sum ledger: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		available, err = j.stock.AvailableByProduct(gctx)
		if err != nil {
			return fmt.Errorf("load stock counters: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}

	drifts := FindDrift(sums, available)
	for _, d := range drifts {
		fields := map[string]any{
			"ledger_sum": d.LedgerSum,
			"available":  d.Available,
			"delta":      d.Delta(),
		}
		entries, err := j.ledger.ListByProduct(ctx, d.ProductID)
		if err != nil {
			return fmt.Errorf("load ledger for %s: %w", d.ProductID, err)
		}
		fields["ledger_entries"] = len(entries)
		if n := len(entries); n > 0 {
			last := entries[n-1]
			fields["last_action"] = last.ActionType.String()
			fields["last_change_at"] = last.CreatedAt
		}
		logCtx := j.logg.WithProductID(ctx, d.ProductID.String())
		j.logg.Warn(j.logg.WithFields(logCtx, fields), "stock drift detected")
	}
	j.metrics.SetDriftedProducts(len(drifts))
	j.logg.Info(j.logg.WithFields(ctx, map[string]any{
		"products": len(available),
		"drifted":  len(drifts),
	}), "stock drift audit complete")
	return nil
}

// FindDrift lists every product present in either map whose two totals
// differ, ordered by product id. A missing side counts as zero and a negative
// ledger sum compares as zero, since counters never go below it.
func FindDrift(ledger, available map[uuid.UUID]int) []Drift {
	seen := make(map[uuid.UUID]struct{}, len(available))
	var out []Drift
	for id, avail := range available {
		seen[id] = struct{}{}
		if sum := ledger[id]; max(sum, 0) != avail {
			out = append(out, Drift{ProductID: id, LedgerSum: sum, Available: avail})
		}
	}
	for id, sum := range ledger {
		if _, ok := seen[id]; ok || sum <= 0 {
			continue
		}
		out = append(out, Drift{ProductID: id, LedgerSum: sum})
	}
	sort.Slice(out, func(a, b int) bool {
		return out[a].ProductID.String() < out[b].ProductID.String()
	})
	return out
}
