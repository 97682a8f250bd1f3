package summary

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/angelmondragon/stockroom-backend/pkg/enums"
)

func at(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 12, 0, 0, 0, time.UTC)
}

func TestClampMonths(t *testing.T) {
	cases := map[int]int{-4: 1, 0: 1, 1: 1, 6: 6, 12: 12, 20: 12}
	for in, want := range cases {
		if got := ClampMonths(in); got != want {
			t.Fatalf("ClampMonths(%d) = %d, want %d", in, got, want)
		}
	}
}

func TestBuildBucketLayout(t *testing.T) {
	now := at(2026, time.February, 10)

	buckets := Build(now, time.UTC, 3, nil, 0)
	if len(buckets) != 3 {
		t.Fatalf("expected 3 buckets, got %d", len(buckets))
	}
	wantKeys := []string{"2025-12", "2026-01", "2026-02"}
	wantMonths := []string{"December", "January", "February"}
	for i, b := range buckets {
		if b.Key != wantKeys[i] || b.Month != wantMonths[i] {
			t.Fatalf("bucket %d = %s/%s, want %s/%s", i, b.Key, b.Month, wantKeys[i], wantMonths[i])
		}
	}

	if got := len(Build(now, time.UTC, 0, nil, 0)); got != 1 {
		t.Fatalf("months=0 should yield 1 bucket, got %d", got)
	}
	if got := len(Build(now, time.UTC, 20, nil, 0)); got != 12 {
		t.Fatalf("months=20 should yield 12 buckets, got %d", got)
	}
}

func TestBuildRoutesActionsAndReconciles(t *testing.T) {
	now := at(2026, time.April, 20)
	entries := []Entry{
		{ActionType: enums.InventoryActionCompanyPurchase, QuantityChanged: 10, CreatedAt: at(2026, time.March, 2)},
		{ActionType: enums.InventoryActionStudentBorrow, QuantityChanged: -3, CreatedAt: at(2026, time.March, 5)},
		{ActionType: enums.InventoryActionStudentReturn, QuantityChanged: 3, CreatedAt: at(2026, time.April, 1)},
		{ActionType: enums.InventoryActionStudentBorrow, QuantityChanged: -2, CreatedAt: at(2026, time.April, 3)},
		{ActionType: enums.InventoryActionStudentPurchase, QuantityChanged: -1, CreatedAt: at(2026, time.April, 4)},
		{ActionType: enums.InventoryActionDefectiveRemoved, QuantityChanged: -1, CreatedAt: at(2026, time.April, 5)},
		{ActionType: enums.InventoryActionCompanyPurchase, QuantityChanged: 4, CreatedAt: at(2026, time.April, 6)},
		{ActionType: enums.InventoryActionTransactionDeleted, QuantityChanged: 0, CreatedAt: at(2026, time.April, 7)},
		{ActionType: enums.InventoryActionCompanyPurchase, QuantityChanged: 50, CreatedAt: at(2025, time.January, 7)},
	}
	totalAvailable := 10

	buckets := Build(now, time.UTC, 2, entries, totalAvailable)
	if len(buckets) != 2 {
		t.Fatalf("expected 2 buckets, got %d", len(buckets))
	}
	march, april := buckets[0], buckets[1]

	if april.NewlyPurchased != 4 || april.UtilizedItems != 2 || april.DefectiveRemoved != 1 {
		t.Fatalf("unexpected april flows %+v", april)
	}
	if april.NetAvailabilityChange != 3 {
		t.Fatalf("april net = %d, want 3", april.NetAvailabilityChange)
	}
	if april.ClosingStock != totalAvailable || april.OpeningStock != 7 {
		t.Fatalf("april stock = %d->%d, want 7->10", april.OpeningStock, april.ClosingStock)
	}
	if march.NewlyPurchased != 10 || march.UtilizedItems != 3 || march.NetAvailabilityChange != 7 {
		t.Fatalf("unexpected march flows %+v", march)
	}
	if march.ClosingStock != april.OpeningStock || march.OpeningStock != 0 {
		t.Fatalf("march stock = %d->%d, want 0->7", march.OpeningStock, march.ClosingStock)
	}
}

func TestBuildClosingMatchesLedgerForAnySequence(t *testing.T) {
	now := at(2026, time.June, 15)
	actions := []enums.InventoryAction{
		enums.InventoryActionCompanyPurchase,
		enums.InventoryActionStudentBorrow,
		enums.InventoryActionStudentReturn,
		enums.InventoryActionStudentPurchase,
		enums.InventoryActionDefectiveRemoved,
	}
	signs := map[enums.InventoryAction]int{
		enums.InventoryActionCompanyPurchase:  1,
		enums.InventoryActionStudentBorrow:    -1,
		enums.InventoryActionStudentReturn:    1,
		enums.InventoryActionStudentPurchase:  -1,
		enums.InventoryActionDefectiveRemoved: -1,
	}

	for seed := 1; seed <= 25; seed++ {
		var entries []Entry
		live := 0
		for i := 0; i < 40; i++ {
			action := actions[(seed*7+i*3)%len(actions)]
			q := signs[action] * (1 + (seed+i)%5)
			day := at(2026, time.Month(1+(seed+i)%6), 1+(i%27))
			entries = append(entries, Entry{ActionType: action, QuantityChanged: q, CreatedAt: day})
			live += q
		}
		buckets := Build(now, time.UTC, 6, entries, live)
		newest := buckets[len(buckets)-1]
		if newest.ClosingStock != live {
			t.Fatalf("seed %d: closing %d != live %d", seed, newest.ClosingStock, live)
		}
		if buckets[0].OpeningStock != 0 {
			t.Fatalf("seed %d: window covers the whole ledger, opening should be 0, got %d", seed, buckets[0].OpeningStock)
		}
		for i := 1; i < len(buckets); i++ {
			if buckets[i].OpeningStock != buckets[i-1].ClosingStock {
				t.Fatalf("seed %d: bucket %d opening %d != previous closing %d", seed, i, buckets[i].OpeningStock, buckets[i-1].ClosingStock)
			}
		}
	}
}

func TestBuildUsesLocationForMonthBoundaries(t *testing.T) {
	loc := time.FixedZone("IST", 5*3600+1800)
	now := time.Date(2026, time.May, 10, 0, 0, 0, 0, loc)
	// 20:00 UTC on April 30 is already May 1 in IST.
	entry := Entry{
		ActionType:      enums.InventoryActionCompanyPurchase,
		QuantityChanged: 2,
		CreatedAt:       time.Date(2026, time.April, 30, 20, 0, 0, 0, time.UTC),
	}

	buckets := Build(now, loc, 2, []Entry{entry}, 2)
	if buckets[1].Key != "2026-05" || buckets[1].NewlyPurchased != 2 {
		t.Fatalf("entry should land in May for IST, got %+v", buckets)
	}

	from, to := Window(now, loc, 2)
	if !from.Equal(time.Date(2026, time.April, 1, 0, 0, 0, 0, loc)) || !to.Equal(time.Date(2026, time.June, 1, 0, 0, 0, 0, loc)) {
		t.Fatalf("unexpected window %s - %s", from, to)
	}
}

func TestMaskNullsNonCurrentMonths(t *testing.T) {
	now := at(2026, time.April, 20)
	entries := []Entry{
		{ActionType: enums.InventoryActionCompanyPurchase, QuantityChanged: 6, CreatedAt: at(2026, time.March, 2)},
		{ActionType: enums.InventoryActionCompanyPurchase, QuantityChanged: 4, CreatedAt: at(2026, time.April, 2)},
	}
	views := Mask(Build(now, time.UTC, 3, entries, 10), now, time.UTC)
	if len(views) != 3 {
		t.Fatalf("expected 3 views, got %d", len(views))
	}
	for _, v := range views[:2] {
		if v.Month == "" {
			t.Fatalf("month name should always be present: %+v", v)
		}
		if v.NewlyPurchased != nil || v.DefectiveRemoved != nil || v.UtilizedItems != nil ||
			v.OpeningStock != nil || v.ClosingStock != nil {
			t.Fatalf("non-current month %s should be masked: %+v", v.Month, v)
		}
	}
	current := views[2]
	if current.Month != "April" || current.NewlyPurchased == nil || *current.NewlyPurchased != 4 {
		t.Fatalf("unexpected current view %+v", current)
	}
	if *current.OpeningStock != 6 || *current.ClosingStock != 10 {
		t.Fatalf("unexpected current stock %d->%d", *current.OpeningStock, *current.ClosingStock)
	}
}

func TestMonthSummaryJSONShape(t *testing.T) {
	now := at(2026, time.April, 20)
	entries := []Entry{{ActionType: enums.InventoryActionCompanyPurchase, QuantityChanged: 5, CreatedAt: now}}
	raw, err := json.Marshal(Mask(Build(now, time.UTC, 2, entries, 5), now, time.UTC))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded []map[string]any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	want := []string{"month", "newlyPurchased", "defectiveRemoved", "utilizedItems", "openingStock", "closingStock"}
	for i, view := range decoded {
		if len(view) != len(want) {
			t.Fatalf("view %d has fields %v", i, view)
		}
		for _, field := range want {
			if _, ok := view[field]; !ok {
				t.Fatalf("view %d missing %s", i, field)
			}
		}
	}
	if decoded[0]["closingStock"] != nil || decoded[1]["closingStock"] != float64(5) {
		t.Fatalf("unexpected masking %v", decoded)
	}
}
