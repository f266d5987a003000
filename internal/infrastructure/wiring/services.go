package wiring

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/felixgeelhaar/boardflow/internal/infrastructure/config"
	"github.com/felixgeelhaar/boardflow/internal/infrastructure/jira"
	"github.com/felixgeelhaar/boardflow/internal/infrastructure/messaging"
	"github.com/felixgeelhaar/boardflow/pkg/application"
	"github.com/felixgeelhaar/boardflow/pkg/storage"
)

// AppServices exposes the application layer services wired to one output
// directory.
type AppServices struct {
	Config   *config.Config
	Location *time.Location
	Reports  *storage.ReportRepository
	Jira     *jira.Client // nil for offline commands
	Metrics  *application.MetricsService
	Report   *application.ReportService
	Stats    *application.StatsService
	Publish  *application.PublishService
	Logger   *slog.Logger
}

// BuildOptions select what BuildAppServices connects.
type BuildOptions struct {
	OutputDir string
	// Online connects the Jira client; it fails when the site or the
	// credentials are missing.
	Online bool
}

// BuildAppServices constructs the services for cfg.
func BuildAppServices(cfg *config.Config, opts BuildOptions, logger *slog.Logger) (*AppServices, error) {
	if logger == nil {
		logger = slog.Default()
	}

	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	outputDir := opts.OutputDir
	if outputDir == "" {
		outputDir = cfg.OutputDir
	}
	reports := storage.NewReportRepository(outputDir)

	registry, err := messaging.NewRegistry(&cfg.Messaging)
	if err != nil {
		return nil, fmt.Errorf("messaging config: %w", err)
	}

	services := &AppServices{
		Config:   cfg,
		Location: loc,
		Reports:  reports,
		Report:   application.NewReportService(reports, logger),
		Stats:    application.NewStatsService(reports, loc),
		Publish:  application.NewPublishService(registry, logger),
		Logger:   logger,
	}

	if !opts.Online {
		services.Metrics = application.NewMetricsService(nil, nil, logger)
		return services, nil
	}

	client, err := jira.NewClient(cfg.Jira.Site, cfg.Jira.Credentials(),
		jira.WithPresets(cfg.Presets()),
		jira.WithLogger(logger),
	)
	if err != nil {
		return nil, err
	}
	services.Jira = client
	services.Metrics = application.NewMetricsService(client, client, logger)
	return services, nil
}

// Options builds metric run options from the configuration.
func (s *AppServices) Options(boardID string) application.Options {
	return application.Options{
		BoardID:         boardID,
		LookbackDays:    s.Config.Lookback(),
		ThroughputWeeks: s.Config.ThroughputWeeks,
		Markers:         s.Config.Markers(),
		Reporting:       s.Config.Columns.Reporting,
		Location:        s.Location,
	}
}
