package analytics

import (
	"sort"
	"time"

	"github.com/felixgeelhaar/boardflow/pkg/domain/board"
)

// Throughput counts completions per Monday-aligned week over the last
// weeks*7 days up to and including today. Weeks without completions are
// omitted; callers must read a missing week as zero. Zero weeks counts
// only the completions of today.
func Throughput(histories []IssueHistory, weeks int, today board.Date, loc *time.Location) []ThroughputPeriod {
	if weeks < 0 {
		weeks = 0
	}
	cutoff := today.AddDays(-weeks * 7)

	byWeek := make(map[board.Date]int)
	for _, h := range histories {
		if h.TerminalEntry == nil {
			continue
		}
		done := board.DateOf(*h.TerminalEntry, loc)
		if done.Before(cutoff) || done.After(today) {
			continue
		}
		byWeek[done.WeekStart()]++
	}

	periods := make([]ThroughputPeriod, 0, len(byWeek))
	for week, count := range byWeek {
		periods = append(periods, ThroughputPeriod{WeekStart: week, Count: count})
	}
	sort.Slice(periods, func(i, j int) bool {
		return periods[i].WeekStart.Before(periods[j].WeekStart)
	})
	return periods
}

// ThroughputCounts returns the counts of the periods in order.
func ThroughputCounts(periods []ThroughputPeriod) []float64 {
	counts := make([]float64, len(periods))
	for i, p := range periods {
		counts[i] = float64(p.Count)
	}
	return counts
}

// RollingAverage returns the trailing mean over window periods. Leading
// periods average over what is available.
func RollingAverage(periods []ThroughputPeriod, window int) []float64 {
	if window <= 0 {
		window = 1
	}
	result := make([]float64, len(periods))
	sum := 0
	for i, p := range periods {
		sum += p.Count
		if i >= window {
			sum -= periods[i-window].Count
		}
		n := window
		if i+1 < window {
			n = i + 1
		}
		result[i] = float64(sum) / float64(n)
	}
	return result
}

// AccumulatedAverage returns the expanding mean of the periods.
func AccumulatedAverage(periods []ThroughputPeriod) []float64 {
	result := make([]float64, len(periods))
	sum := 0
	for i, p := range periods {
		sum += p.Count
		result[i] = float64(sum) / float64(i+1)
	}
	return result
}

// SummarizeThroughput computes statistics over weeks with completions.
func SummarizeThroughput(periods []ThroughputPeriod) ThroughputSummary {
	values := make([]float64, 0, len(periods))
	for _, c := range ThroughputCounts(periods) {
		if c > 0 {
			values = append(values, c)
		}
	}
	if len(values) == 0 {
		return ThroughputSummary{}
	}

	sorted := sortedCopy(values)
	total := 0
	for _, v := range values {
		total += int(v)
	}

	return ThroughputSummary{
		Weeks:  len(values),
		Total:  total,
		Mean:   Mean(values),
		Median: Percentile(values, 50),
		Min:    int(sorted[0]),
		Max:    int(sorted[len(sorted)-1]),
		CV:     CoefficientOfVariation(values),
	}
}
