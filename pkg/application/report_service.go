package application

import (
	"fmt"
	"log/slog"

	"github.com/felixgeelhaar/boardflow/pkg/domain/analytics"
	"github.com/felixgeelhaar/boardflow/pkg/domain/ticket"
	"github.com/felixgeelhaar/boardflow/pkg/storage"
)

// ReportStore persists report files.
type ReportStore interface {
	Initialize() error
	SaveCFD(snapshots []analytics.DailySnapshot, reporting []string) (string, error)
	SaveThroughput(periods []analytics.ThroughputPeriod) (string, error)
	SaveLeadTime(buckets []analytics.LeadTimeBucket) (string, error)
	SaveTickets(tickets []ticket.Ticket) (string, error)
	SavePayload(raw []byte) (string, error)
	SaveManifest(m *storage.Manifest) (string, error)
}

// ReportService writes reports to a store.
type ReportService struct {
	store  ReportStore
	logger *slog.Logger
}

func NewReportService(store ReportStore, logger *slog.Logger) *ReportService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReportService{store: store, logger: logger}
}

// Manifest describes report for run.yaml.
func Manifest(report *Report, files []string) *storage.Manifest {
	m := &storage.Manifest{
		RunID:           report.RunID,
		BoardID:         report.BoardID,
		GeneratedAt:     report.GeneratedAt,
		LookbackDays:    report.Options.LookbackDays,
		ThroughputWeeks: report.Options.ThroughputWeeks,
		Counts: storage.ManifestCounts{
			Days:          len(report.Snapshots),
			Weeks:         len(report.Throughput),
			LeadTimeItems: report.LeadTimeItems(),
			Completed:     len(report.DoneKeys),
			Tickets:       len(report.Tickets),
		},
		Warnings: report.Warnings,
		Files:    files,
	}
	if report.HasWindow {
		m.WindowFirst = report.Window.First.String()
		m.WindowLast = report.Window.Last.String()
	}
	return m
}

// Save writes every output of report and returns the manifest. The CFD is
// always written; metric files only when they were computed.
func (s *ReportService) Save(report *Report) (*storage.Manifest, error) {
	if err := s.store.Initialize(); err != nil {
		return nil, err
	}

	var files []string
	record := func(path string, err error) error {
		if err != nil {
			return err
		}
		s.logger.Info("saved report file", "path", path)
		files = append(files, path)
		return nil
	}

	if err := record(s.store.SaveCFD(report.Snapshots, report.Options.Reporting)); err != nil {
		return nil, fmt.Errorf("save cfd: %w", err)
	}
	if !report.Options.CFDOnly {
		if err := record(s.store.SaveThroughput(report.Throughput)); err != nil {
			return nil, fmt.Errorf("save throughput: %w", err)
		}
		if err := record(s.store.SaveLeadTime(report.LeadTime)); err != nil {
			return nil, fmt.Errorf("save lead time: %w", err)
		}
		if len(report.Tickets) > 0 {
			if err := record(s.store.SaveTickets(report.Tickets)); err != nil {
				return nil, fmt.Errorf("save tickets: %w", err)
			}
		}
	}
	if len(report.Raw) > 0 {
		if err := record(s.store.SavePayload(report.Raw)); err != nil {
			return nil, fmt.Errorf("save payload cache: %w", err)
		}
	}

	m := Manifest(report, files)
	if _, err := s.store.SaveManifest(m); err != nil {
		return nil, fmt.Errorf("save manifest: %w", err)
	}
	return m, nil
}
