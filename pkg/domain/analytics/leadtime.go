package analytics

import (
	"sort"
	"time"

	"github.com/felixgeelhaar/boardflow/pkg/domain/board"
)

// LeadTimeDistribution buckets lead times of completed issues whose terminal
// date is on or after cutoff (all completions when cutoff is nil). Lead time
// counts the start day, so an issue started and finished on the same day has
// a lead time of 1. Non-positive values are discarded as data anomalies.
func LeadTimeDistribution(histories []IssueHistory, cutoff *board.Date, loc *time.Location) []LeadTimeBucket {
	counts := make(map[int]int)
	for _, h := range histories {
		if h.TerminalEntry == nil {
			continue
		}
		if cutoff != nil && board.DateOf(*h.TerminalEntry, loc).Before(*cutoff) {
			continue
		}
		days, ok := h.LeadTimeDays(loc)
		if !ok || days <= 0 {
			continue
		}
		counts[days]++
	}

	buckets := make([]LeadTimeBucket, 0, len(counts))
	for days, n := range counts {
		buckets = append(buckets, LeadTimeBucket{Days: days, Count: n})
	}
	sort.Slice(buckets, func(i, j int) bool { return buckets[i].Days < buckets[j].Days })
	return buckets
}

// ExpandLeadTimes turns buckets back into the multiset of lead times.
func ExpandLeadTimes(buckets []LeadTimeBucket) []float64 {
	values := make([]float64, 0)
	for _, b := range buckets {
		for i := 0; i < b.Count; i++ {
			values = append(values, float64(b.Days))
		}
	}
	return values
}

// SummarizeLeadTime computes percentile statistics of a distribution.
// An empty distribution yields the zero summary.
func SummarizeLeadTime(buckets []LeadTimeBucket) LeadTimeSummary {
	values := ExpandLeadTimes(buckets)
	if len(values) == 0 {
		return LeadTimeSummary{}
	}
	sorted := sortedCopy(values)
	return LeadTimeSummary{
		Count: len(values),
		Min:   int(sorted[0]),
		Max:   int(sorted[len(sorted)-1]),
		Mean:  Mean(values),
		P50:   Percentile(values, 50),
		P90:   Percentile(values, 90),
	}
}
