package analytics

import (
	"math"
	"testing"
	"time"

	"github.com/felixgeelhaar/boardflow/pkg/domain/board"
)

func at(year int, month time.Month, day, hour int) *time.Time {
	t := time.Date(year, month, day, hour, 0, 0, 0, time.UTC)
	return &t
}

func approxEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestThroughput(t *testing.T) {
	today := board.NewDate(2024, time.January, 25)
	histories := []IssueHistory{
		{IssueKey: "A", TerminalEntry: at(2024, time.January, 15, 10)},
		{IssueKey: "B", TerminalEntry: at(2024, time.January, 17, 18)},
		{IssueKey: "C", TerminalEntry: at(2024, time.January, 2, 9)},
		{IssueKey: "D", TerminalEntry: at(2023, time.December, 20, 9)},
		{IssueKey: "E", FirstActive: at(2024, time.January, 10, 9)},
		{IssueKey: "F", TerminalEntry: at(2024, time.January, 26, 9)},
	}

	got := Throughput(histories, 4, today, time.UTC)
	want := []ThroughputPeriod{
		{WeekStart: board.NewDate(2024, time.January, 1), Count: 1},
		{WeekStart: board.NewDate(2024, time.January, 15), Count: 2},
	}

	if len(got) != len(want) {
		t.Fatalf("Throughput() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Throughput()[%d] = %v, want %v", i, got[i], want[i])
		}
		if got[i].WeekStart.Weekday() != time.Monday {
			t.Errorf("week %v does not start on Monday", got[i].WeekStart)
		}
	}
}

func TestThroughput_Empty(t *testing.T) {
	today := board.NewDate(2024, time.January, 25)
	if got := Throughput(nil, 4, today, time.UTC); len(got) != 0 {
		t.Errorf("Throughput(nil) = %v, want empty", got)
	}
}

func TestThroughput_ZeroWeeksCountsToday(t *testing.T) {
	today := board.NewDate(2024, time.January, 25)
	histories := []IssueHistory{
		{IssueKey: "A", TerminalEntry: at(2024, time.January, 24, 9)},
		{IssueKey: "B", TerminalEntry: at(2024, time.January, 25, 16)},
	}

	want := []ThroughputPeriod{{WeekStart: board.NewDate(2024, time.January, 22), Count: 1}}
	for _, weeks := range []int{0, -2} {
		got := Throughput(histories, weeks, today, time.UTC)
		if len(got) != 1 || got[0] != want[0] {
			t.Errorf("Throughput(weeks=%d) = %v, want %v", weeks, got, want)
		}
	}
}

func TestThroughputCounts(t *testing.T) {
	periods := []ThroughputPeriod{{Count: 3}, {Count: 0}, {Count: 5}}
	got := ThroughputCounts(periods)
	if len(got) != 3 || got[0] != 3 || got[1] != 0 || got[2] != 5 {
		t.Errorf("ThroughputCounts() = %v", got)
	}
}

func TestLeadTimeDistribution(t *testing.T) {
	histories := []IssueHistory{
		{IssueKey: "A", FirstActive: at(2024, time.January, 10, 9), TerminalEntry: at(2024, time.January, 13, 17)},
		{IssueKey: "B", FirstActive: at(2024, time.January, 12, 9), TerminalEntry: at(2024, time.January, 12, 9)},
		{IssueKey: "C", FirstActive: at(2024, time.January, 5, 9), TerminalEntry: at(2024, time.January, 8, 9)},
		{IssueKey: "D", TerminalEntry: at(2024, time.January, 11, 9)},
		{IssueKey: "E", FirstActive: at(2024, time.January, 14, 9), TerminalEntry: at(2024, time.January, 12, 9)},
		{IssueKey: "F", FirstActive: at(2024, time.January, 14, 9)},
	}

	t.Run("all time", func(t *testing.T) {
		got := LeadTimeDistribution(histories, nil, time.UTC)
		want := []LeadTimeBucket{{Days: 1, Count: 1}, {Days: 4, Count: 2}}
		if len(got) != len(want) {
			t.Fatalf("LeadTimeDistribution() = %v, want %v", got, want)
		}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("bucket[%d] = %v, want %v", i, got[i], want[i])
			}
		}
	})

	t.Run("with cutoff", func(t *testing.T) {
		cutoff := board.NewDate(2024, time.January, 9)
		got := LeadTimeDistribution(histories, &cutoff, time.UTC)
		want := []LeadTimeBucket{{Days: 1, Count: 1}, {Days: 4, Count: 1}}
		if len(got) != len(want) {
			t.Fatalf("LeadTimeDistribution() = %v, want %v", got, want)
		}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("bucket[%d] = %v, want %v", i, got[i], want[i])
			}
		}
	})

	t.Run("all buckets positive", func(t *testing.T) {
		for _, b := range LeadTimeDistribution(histories, nil, time.UTC) {
			if b.Days < 1 {
				t.Errorf("bucket with non-positive lead time: %v", b)
			}
		}
	})
}

func TestExpandLeadTimes(t *testing.T) {
	got := ExpandLeadTimes([]LeadTimeBucket{{Days: 2, Count: 2}, {Days: 5, Count: 1}})
	want := []float64{2, 2, 5}
	if len(got) != len(want) {
		t.Fatalf("ExpandLeadTimes() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("ExpandLeadTimes()[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestPercentile(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		p      float64
		want   float64
	}{
		{"empty", nil, 50, 0},
		{"single", []float64{7}, 90, 7},
		{"even median", []float64{4, 1, 3, 2}, 50, 2.5},
		{"p90 interpolated", []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, 90, 9.1},
		{"p0", []float64{3, 1, 2}, 0, 1},
		{"p100", []float64{3, 1, 2}, 100, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Percentile(tt.values, tt.p); !approxEqual(got, tt.want) {
				t.Errorf("Percentile() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCoefficientOfVariation(t *testing.T) {
	if got := CoefficientOfVariation([]float64{2, 4, 4, 4, 5, 5, 7, 9}); !approxEqual(got, 40) {
		t.Errorf("CoefficientOfVariation() = %v, want 40", got)
	}
	if got := CoefficientOfVariation(nil); got != 0 {
		t.Errorf("CoefficientOfVariation(nil) = %v, want 0", got)
	}
	if got := CoefficientOfVariation([]float64{0, 0}); got != 0 {
		t.Errorf("CoefficientOfVariation(zeros) = %v, want 0", got)
	}
}

func TestSummarizeLeadTime(t *testing.T) {
	s := SummarizeLeadTime([]LeadTimeBucket{{Days: 1, Count: 1}, {Days: 3, Count: 2}, {Days: 10, Count: 1}})
	if s.Count != 4 || s.Min != 1 || s.Max != 10 {
		t.Errorf("summary bounds = %+v", s)
	}
	if !approxEqual(s.P50, 3) {
		t.Errorf("P50 = %v, want 3", s.P50)
	}
	if !approxEqual(s.P90, 7.9) {
		t.Errorf("P90 = %v, want 7.9", s.P90)
	}
	if !approxEqual(s.Mean, 4.25) {
		t.Errorf("Mean = %v, want 4.25", s.Mean)
	}

	if empty := SummarizeLeadTime(nil); empty != (LeadTimeSummary{}) {
		t.Errorf("empty summary = %+v", empty)
	}
}

func TestSummarizeThroughput(t *testing.T) {
	periods := []ThroughputPeriod{
		{WeekStart: board.NewDate(2024, time.January, 1), Count: 2},
		{WeekStart: board.NewDate(2024, time.January, 8), Count: 4},
		{WeekStart: board.NewDate(2024, time.January, 15), Count: 6},
	}
	s := SummarizeThroughput(periods)
	if s.Weeks != 3 || s.Total != 12 || s.Min != 2 || s.Max != 6 {
		t.Errorf("summary = %+v", s)
	}
	if !approxEqual(s.Mean, 4) || !approxEqual(s.Median, 4) {
		t.Errorf("mean/median = %v/%v, want 4/4", s.Mean, s.Median)
	}
	wantCV := math.Sqrt(8.0/3.0) / 4 * 100
	if !approxEqual(s.CV, wantCV) {
		t.Errorf("CV = %v, want %v", s.CV, wantCV)
	}
	if s.Predictability() != Moderate {
		t.Errorf("Predictability() = %v, want %v", s.Predictability(), Moderate)
	}
}

func TestRollingAndAccumulatedAverage(t *testing.T) {
	periods := []ThroughputPeriod{{Count: 4}, {Count: 1}, {Count: 1}, {Count: 6}}

	rolling := RollingAverage(periods, 3)
	wantRolling := []float64{4, 2.5, 2, 8.0 / 3.0}
	for i := range wantRolling {
		if !approxEqual(rolling[i], wantRolling[i]) {
			t.Errorf("RollingAverage()[%d] = %v, want %v", i, rolling[i], wantRolling[i])
		}
	}

	acc := AccumulatedAverage(periods)
	wantAcc := []float64{4, 2.5, 2, 3}
	for i := range wantAcc {
		if !approxEqual(acc[i], wantAcc[i]) {
			t.Errorf("AccumulatedAverage()[%d] = %v, want %v", i, acc[i], wantAcc[i])
		}
	}
}

func TestPredictability(t *testing.T) {
	tests := []struct {
		cv   float64
		want PredictabilityClass
	}{
		{0, Predictable},
		{29.9, Predictable},
		{30, Moderate},
		{49.9, Moderate},
		{50, Unstable},
	}
	for _, tt := range tests {
		if got := Predictability(tt.cv); got != tt.want {
			t.Errorf("Predictability(%v) = %v, want %v", tt.cv, got, tt.want)
		}
	}
}

func TestDailySnapshot_Total(t *testing.T) {
	s := DailySnapshot{Counts: map[string]int{"DONE": 3, "TESTING": 2}}
	if s.Total() != 5 {
		t.Errorf("Total() = %d, want 5", s.Total())
	}
	if s.Count("CODE REVIEW") != 0 {
		t.Error("missing column should count as zero")
	}
}
