package summary

import "time"

// MonthSummary is the client view of a bucket. Only the current month
// carries figures; every other month reports its name with null values.
// The bucket key and net change stay on Bucket.
type MonthSummary struct {
	Month            string `json:"month"`
	NewlyPurchased   *int   `json:"newlyPurchased"`
	DefectiveRemoved *int   `json:"defectiveRemoved"`
	UtilizedItems    *int   `json:"utilizedItems"`
	OpeningStock     *int   `json:"openingStock"`
	ClosingStock     *int   `json:"closingStock"`
}

// Mask converts buckets into their client view relative to now.
func Mask(buckets []Bucket, now time.Time, loc *time.Location) []MonthSummary {
	current := Key(now, loc)
	out := make([]MonthSummary, 0, len(buckets))
	for _, b := range buckets {
		view := MonthSummary{Month: b.Month}
		if b.Key == current {
			view.NewlyPurchased = intPtr(b.NewlyPurchased)
			view.DefectiveRemoved = intPtr(b.DefectiveRemoved)
			view.UtilizedItems = intPtr(b.UtilizedItems)
			view.OpeningStock = intPtr(b.OpeningStock)
			view.ClosingStock = intPtr(b.ClosingStock)
		}
		out = append(out, view)
	}
	return out
}

func intPtr(v int) *int {
	return &v
}
