package summary

import (
	"time"

	"github.com/angelmondragon/stockroom-backend/pkg/enums"
)

const (
	DefaultMonths = 6
	MinMonths     = 1
	MaxMonths     = 12

	keyLayout = "2006-01"
)

// Entry is the slice of a ledger row the engine needs.
type Entry struct {
	ActionType      enums.InventoryAction
	QuantityChanged int
	CreatedAt       time.Time
}

// Bucket is one month of aggregated ledger activity with reconciled
// opening and closing stock.
type Bucket struct {
	Key                   string
	Month                 string
	Start                 time.Time
	NewlyPurchased        int
	DefectiveRemoved      int
	UtilizedItems         int
	NetAvailabilityChange int
	OpeningStock          int
	ClosingStock          int
}

// ClampMonths forces a requested window into [MinMonths, MaxMonths].
func ClampMonths(months int) int {
	if months < MinMonths {
		return MinMonths
	}
	if months > MaxMonths {
		return MaxMonths
	}
	return months
}

// MonthStart returns midnight of the first day of t's month in loc.
func MonthStart(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), 1, 0, 0, 0, 0, loc)
}

// Window returns the half-open range [from, to) covering the last months
// calendar months up to and including the month of now.
func Window(now time.Time, loc *time.Location, months int) (time.Time, time.Time) {
	current := MonthStart(now, loc)
	from := current.AddDate(0, -(ClampMonths(months) - 1), 0)
	return from, current.AddDate(0, 1, 0)
}

// Key formats the bucket key of t's month in loc.
func Key(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format(keyLayout)
}

// Build aggregates entries into month buckets, oldest first, and reconciles
// stock backward from totalAvailable. Entries outside the window are skipped.
func Build(now time.Time, loc *time.Location, months int, entries []Entry, totalAvailable int) []Bucket {
	if loc == nil {
		loc = time.UTC
	}
	from, _ := Window(now, loc, months)
	count := ClampMonths(months)

	buckets := make([]Bucket, count)
	index := make(map[string]int, count)
	for i := range buckets {
		start := from.AddDate(0, i, 0)
		key := start.Format(keyLayout)
		buckets[i] = Bucket{Key: key, Month: start.Month().String(), Start: start}
		index[key] = i
	}

	for _, entry := range entries {
		i, ok := index[Key(entry.CreatedAt, loc)]
		if !ok {
			continue
		}
		accumulate(&buckets[i], entry)
	}

	closing := totalAvailable
	for i := len(buckets) - 1; i >= 0; i-- {
		buckets[i].ClosingStock = closing
		buckets[i].OpeningStock = closing - buckets[i].NetAvailabilityChange
		closing = buckets[i].OpeningStock
	}
	return buckets
}

func accumulate(b *Bucket, entry Entry) {
	q := entry.QuantityChanged
	switch entry.ActionType {
	case enums.InventoryActionCompanyPurchase:
		b.NewlyPurchased += q
	case enums.InventoryActionStudentBorrow:
		b.UtilizedItems += abs(q)
	case enums.InventoryActionStudentReturn, enums.InventoryActionStudentPurchase:
		// net only
	case enums.InventoryActionDefectiveRemoved:
		b.DefectiveRemoved += abs(q)
	default:
		return
	}
	b.NetAvailabilityChange += q
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
