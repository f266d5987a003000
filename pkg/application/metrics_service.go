package application

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/boardflow/pkg/domain/analytics"
	"github.com/felixgeelhaar/boardflow/pkg/domain/board"
	"github.com/felixgeelhaar/boardflow/pkg/domain/events"
	"github.com/felixgeelhaar/boardflow/pkg/domain/ticket"
)

// BoardSource fetches the raw cumulative-flow payload of a board.
type BoardSource interface {
	FetchBoard(ctx context.Context, boardID string) ([]byte, error)
}

// TicketSource fetches the details of one issue.
type TicketSource interface {
	FetchTicket(ctx context.Context, key string) (*ticket.Ticket, error)
}

// DefaultThroughputWeeks is the throughput window used when none is set.
const DefaultThroughputWeeks = 4

// Options control one metrics run.
type Options struct {
	BoardID         string
	LookbackDays    *int
	ThroughputWeeks int
	Markers         board.Markers
	Reporting       []string
	// Today anchors the lookback and throughput windows. Zero means the
	// current date in Location.
	Today    board.Date
	Location *time.Location
	// CFDOnly skips throughput, lead time and ticket enrichment.
	CFDOnly     bool
	SkipTickets bool
}

func (o Options) withDefaults(now time.Time) Options {
	if o.Location == nil {
		o.Location = time.Local
	}
	if o.Today.IsZero() {
		o.Today = board.DateOf(now, o.Location)
	}
	if o.Markers.Active == "" {
		o.Markers.Active = board.DefaultActiveColumn
	}
	if o.Markers.Terminal == "" {
		o.Markers.Terminal = board.DefaultTerminalColumn
	}
	if len(o.Reporting) == 0 {
		o.Reporting = board.DefaultReportingColumns
	}
	if o.ThroughputWeeks <= 0 {
		o.ThroughputWeeks = DefaultThroughputWeeks
	}
	return o
}

// Report is the result of one metrics run.
type Report struct {
	RunID       string
	BoardID     string
	GeneratedAt time.Time
	Options     Options
	Window      board.Window
	HasWindow   bool
	Schema      board.Schema
	Snapshots   []analytics.DailySnapshot
	Histories   []analytics.IssueHistory
	Throughput  []analytics.ThroughputPeriod
	LeadTime    []analytics.LeadTimeBucket
	DoneKeys    []string
	Tickets     []ticket.Ticket
	Warnings    []events.Warning
	// Raw is the payload the report was computed from.
	Raw []byte
}

// LeadTimeSummary summarizes the lead-time distribution.
func (r *Report) LeadTimeSummary() analytics.LeadTimeSummary {
	return analytics.SummarizeLeadTime(r.LeadTime)
}

// ThroughputSummary summarizes weekly throughput.
func (r *Report) ThroughputSummary() analytics.ThroughputSummary {
	return analytics.SummarizeThroughput(r.Throughput)
}

// LeadTimeItems is the number of issues in the lead-time distribution.
func (r *Report) LeadTimeItems() int {
	n := 0
	for _, b := range r.LeadTime {
		n += b.Count
	}
	return n
}

// MetricsService computes flow metrics from board payloads.
type MetricsService struct {
	boards  BoardSource
	tickets TicketSource
	logger  *slog.Logger
	now     func() time.Time
}

// NewMetricsService creates a new metrics service. Either source may be nil
// when only offline computation is needed.
func NewMetricsService(boards BoardSource, tickets TicketSource, logger *slog.Logger) *MetricsService {
	if logger == nil {
		logger = slog.Default()
	}
	return &MetricsService{
		boards:  boards,
		tickets: tickets,
		logger:  logger,
		now:     time.Now,
	}
}

// Compute replays a raw payload into a report. It performs no I/O.
func (s *MetricsService) Compute(raw []byte, opts Options) (*Report, error) {
	now := s.now()
	opts = opts.withDefaults(now)

	payload, err := board.DecodePayload(raw)
	if err != nil {
		return nil, err
	}
	log, err := board.BuildTransitionLog(payload)
	if err != nil {
		return nil, err
	}

	schema := payload.Schema()
	report := &Report{
		RunID:       uuid.New().String(),
		BoardID:     opts.BoardID,
		GeneratedAt: now,
		Options:     opts,
		Schema:      schema,
		Snapshots:   []analytics.DailySnapshot{},
		Throughput:  []analytics.ThroughputPeriod{},
		LeadTime:    []analytics.LeadTimeBucket{},
		DoneKeys:    []string{},
		Tickets:     []ticket.Ticket{},
		Raw:         raw,
	}

	if len(log) == 0 {
		report.Warnings = append(report.Warnings, events.Warning{
			Code:    events.WarnNoTransitions,
			Message: "board payload contains no column changes",
		})
		return report, nil
	}

	report.Window, report.HasWindow = board.DeriveWindow(log, opts.Location, opts.LookbackDays, opts.Today)
	report.Snapshots = events.ReconstructBoard(log, schema, report.Window, opts.Reporting, opts.Location)
	if opts.CFDOnly {
		return report, nil
	}

	res := schema.Resolve(opts.Markers)
	histories, warnings := events.TrackIssueHistories(log, res)
	report.Histories = histories
	report.Warnings = append(report.Warnings, warnings...)
	if !res.TerminalFound {
		return report, nil
	}

	cutoff := board.Cutoff(opts.LookbackDays, opts.Today)
	report.Throughput = analytics.Throughput(histories, opts.ThroughputWeeks, opts.Today, opts.Location)
	report.LeadTime = analytics.LeadTimeDistribution(histories, cutoff, opts.Location)
	report.DoneKeys = events.ExtractDoneSet(log, res.Terminal, cutoff, opts.Location)
	return report, nil
}

// Extract fetches the board, computes the report and enriches the completed
// issues with ticket details. Tickets that cannot be fetched are skipped.
func (s *MetricsService) Extract(ctx context.Context, opts Options) (*Report, error) {
	if s.boards == nil {
		return nil, fmt.Errorf("no board source configured")
	}

	s.logger.Info("fetching board", "board_id", opts.BoardID)
	raw, err := s.boards.FetchBoard(ctx, opts.BoardID)
	if err != nil {
		return nil, fmt.Errorf("fetch board %s: %w", opts.BoardID, err)
	}

	report, err := s.Compute(raw, opts)
	if err != nil {
		return nil, fmt.Errorf("compute board %s: %w", opts.BoardID, err)
	}
	for _, w := range report.Warnings {
		s.logger.Warn("degraded metrics", "board_id", opts.BoardID, "code", w.Code, "message", w.Message)
	}

	if opts.CFDOnly || opts.SkipTickets || s.tickets == nil {
		return report, nil
	}

	s.logger.Info("fetching completed tickets", "board_id", opts.BoardID, "count", len(report.DoneKeys))
	for _, key := range report.DoneKeys {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		t, err := s.tickets.FetchTicket(ctx, key)
		if err != nil {
			s.logger.Warn("skipping ticket", "key", key, "error", err)
			continue
		}
		report.Tickets = append(report.Tickets, *t)
	}
	return report, nil
}
