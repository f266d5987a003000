package storage

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/felixgeelhaar/boardflow/pkg/domain/events"
)

// Manifest describes one extraction run.
type Manifest struct {
	RunID           string           `yaml:"run_id"`
	BoardID         string           `yaml:"board_id"`
	GeneratedAt     time.Time        `yaml:"generated_at"`
	WindowFirst     string           `yaml:"window_first,omitempty"`
	WindowLast      string           `yaml:"window_last,omitempty"`
	LookbackDays    *int             `yaml:"lookback_days,omitempty"`
	ThroughputWeeks int              `yaml:"throughput_weeks"`
	Counts          ManifestCounts   `yaml:"counts"`
	Warnings        []events.Warning `yaml:"warnings,omitempty"`
	Files           []string         `yaml:"files"`
}

// ManifestCounts summarizes the size of each output.
type ManifestCounts struct {
	Days          int `yaml:"days"`
	Weeks         int `yaml:"weeks"`
	LeadTimeItems int `yaml:"lead_time_items"`
	Completed     int `yaml:"completed"`
	Tickets       int `yaml:"tickets"`
}

func (r *ReportRepository) SaveManifest(m *Manifest) (string, error) {
	path, err := r.ResolvePath(ManifestFile)
	if err != nil {
		return "", err
	}

	data, err := yaml.Marshal(m)
	if err != nil {
		return "", fmt.Errorf("failed to marshal manifest: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write manifest: %w", err)
	}
	return path, nil
}

func (r *ReportRepository) LoadManifest() (*Manifest, error) {
	data, err := r.read(ManifestFile)
	if err != nil {
		return nil, err
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to unmarshal manifest: %w", err)
	}
	return &m, nil
}
