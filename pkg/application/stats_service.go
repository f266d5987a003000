package application

import (
	"errors"
	"time"

	"github.com/felixgeelhaar/boardflow/pkg/domain/analytics"
	"github.com/felixgeelhaar/boardflow/pkg/domain/ticket"
	"github.com/felixgeelhaar/boardflow/pkg/storage"
)

// ReportReader loads previously written report files.
type ReportReader interface {
	LoadCFD() ([]analytics.DailySnapshot, []string, error)
	LoadThroughput() ([]analytics.ThroughputPeriod, error)
	LoadLeadTime() ([]analytics.LeadTimeBucket, error)
	LoadTickets(loc *time.Location) ([]ticket.Ticket, error)
	LoadManifest() (*storage.Manifest, error)
}

// Stats are the summary numbers of a written report.
type Stats struct {
	Manifest       *storage.Manifest
	LeadTime       analytics.LeadTimeSummary
	Throughput     analytics.ThroughputSummary
	Predictability analytics.PredictabilityClass
	Rolling        []float64
	Accumulated    []float64
	Periods        []analytics.ThroughputPeriod
	// Latest is the last CFD census, nil when the report has no cfd.csv
	// or the CFD is empty.
	Latest      *analytics.DailySnapshot
	Reporting   []string
	Tickets     int
	TicketTypes []ticket.TypeCount
}

// StatsService summarizes report directories.
type StatsService struct {
	reader ReportReader
	loc    *time.Location
}

// NewStatsService creates a stats service reading ticket timestamps in loc
// (the local zone when nil).
func NewStatsService(reader ReportReader, loc *time.Location) *StatsService {
	if loc == nil {
		loc = time.Local
	}
	return &StatsService{reader: reader, loc: loc}
}

// RollingWindow is the trailing window of the throughput rolling average.
const RollingWindow = 3

// Summarize reads the throughput and lead-time files. The manifest, the CFD
// and the tickets are optional; reports written by other tools may lack
// them.
func (s *StatsService) Summarize() (*Stats, error) {
	periods, err := s.reader.LoadThroughput()
	if err != nil {
		return nil, err
	}
	buckets, err := s.reader.LoadLeadTime()
	if err != nil {
		return nil, err
	}

	manifest, err := s.reader.LoadManifest()
	if err != nil && !errors.Is(err, storage.ErrNoReport) {
		return nil, err
	}

	tp := analytics.SummarizeThroughput(periods)
	stats := &Stats{
		Manifest:       manifest,
		LeadTime:       analytics.SummarizeLeadTime(buckets),
		Throughput:     tp,
		Predictability: tp.Predictability(),
		Rolling:        analytics.RollingAverage(periods, RollingWindow),
		Accumulated:    analytics.AccumulatedAverage(periods),
		Periods:        periods,
		TicketTypes:    []ticket.TypeCount{},
	}

	snapshots, reporting, err := s.reader.LoadCFD()
	switch {
	case errors.Is(err, storage.ErrNoReport):
	case err != nil:
		return nil, err
	default:
		stats.Reporting = reporting
		if len(snapshots) > 0 {
			latest := snapshots[len(snapshots)-1]
			stats.Latest = &latest
		}
	}

	tickets, err := s.reader.LoadTickets(s.loc)
	switch {
	case errors.Is(err, storage.ErrNoReport):
	case err != nil:
		return nil, err
	default:
		stats.Tickets = len(tickets)
		stats.TicketTypes = ticket.TypeDistribution(tickets)
	}
	return stats, nil
}
