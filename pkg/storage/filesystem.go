package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/felixgeelhaar/fortify/retry"

	"github.com/felixgeelhaar/boardflow/pkg/domain/analytics"
	"github.com/felixgeelhaar/boardflow/pkg/domain/ticket"
)

const CFDFile = "cfd.csv"
const ThroughputFile = "throughput.csv"
const LeadTimeFile = "leadtime.csv"
const TicketsFile = "tickets.csv"
const PayloadFile = "payload.json.zst"
const ManifestFile = "run.yaml"

// ErrNoReport is returned when a directory holds no report files.
var ErrNoReport = errors.New("no report found")

// ReportRepository reads and writes the report files of one output directory.
type ReportRepository struct {
	root        string
	retryConfig retry.Config
}

func NewReportRepository(root string) *ReportRepository {
	if root == "" {
		root = "."
	}
	return &ReportRepository{
		root: root,
		retryConfig: retry.Config{
			MaxAttempts:   3,
			InitialDelay:  10 * time.Millisecond,
			BackoffPolicy: retry.BackoffExponential,
		},
	}
}

// Root returns the output directory.
func (r *ReportRepository) Root() string {
	return r.root
}

// ResolvePath ensures the path is a direct child of the output directory.
func (r *ReportRepository) ResolvePath(filename string) (string, error) {
	if filename == "" {
		return "", fmt.Errorf("filename cannot be empty")
	}
	if filename != filepath.Base(filename) || filename == "." || filename == ".." {
		return "", fmt.Errorf("invalid file path: %s", filename)
	}

	return filepath.Join(filepath.Clean(r.root), filename), nil
}

func (r *ReportRepository) Initialize() error {
	// G301: Use 0755 so chart tooling running as another user can read reports
	if err := os.MkdirAll(r.root, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	return nil
}

// Exists reports whether filename is present in the output directory.
func (r *ReportRepository) Exists(filename string) bool {
	path, err := r.ResolvePath(filename)
	if err != nil {
		return false
	}
	_, err = os.Stat(path)
	return err == nil
}

func (r *ReportRepository) write(filename string, encode func(io.Writer) error) (string, error) {
	path, err := r.ResolvePath(filename)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := encode(&buf); err != nil {
		return "", err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", filename, err)
	}
	return path, nil
}

func (r *ReportRepository) read(filename string) ([]byte, error) {
	path, err := r.ResolvePath(filename)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s missing in %s", ErrNoReport, filename, r.root)
	}

	retryer := retry.New[[]byte](r.retryConfig)
	return retryer.Do(context.Background(), func(ctx context.Context) ([]byte, error) {
		// #nosec G304 -- Path is resolved and validated via ResolvePath
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", filename, err)
		}
		return data, nil
	})
}

func (r *ReportRepository) SaveCFD(snapshots []analytics.DailySnapshot, reporting []string) (string, error) {
	return r.write(CFDFile, func(w io.Writer) error { return WriteCFD(w, snapshots, reporting) })
}

func (r *ReportRepository) SaveThroughput(periods []analytics.ThroughputPeriod) (string, error) {
	return r.write(ThroughputFile, func(w io.Writer) error { return WriteThroughput(w, periods) })
}

func (r *ReportRepository) SaveLeadTime(buckets []analytics.LeadTimeBucket) (string, error) {
	return r.write(LeadTimeFile, func(w io.Writer) error { return WriteLeadTime(w, buckets) })
}

func (r *ReportRepository) SaveTickets(tickets []ticket.Ticket) (string, error) {
	return r.write(TicketsFile, func(w io.Writer) error { return WriteTickets(w, tickets) })
}

func (r *ReportRepository) LoadCFD() ([]analytics.DailySnapshot, []string, error) {
	data, err := r.read(CFDFile)
	if err != nil {
		return nil, nil, err
	}
	return ReadCFD(bytes.NewReader(data))
}

func (r *ReportRepository) LoadThroughput() ([]analytics.ThroughputPeriod, error) {
	data, err := r.read(ThroughputFile)
	if err != nil {
		return nil, err
	}
	return ReadThroughput(bytes.NewReader(data))
}

func (r *ReportRepository) LoadLeadTime() ([]analytics.LeadTimeBucket, error) {
	data, err := r.read(LeadTimeFile)
	if err != nil {
		return nil, err
	}
	return ReadLeadTime(bytes.NewReader(data))
}

func (r *ReportRepository) LoadTickets(loc *time.Location) ([]ticket.Ticket, error) {
	data, err := r.read(TicketsFile)
	if err != nil {
		return nil, err
	}
	return ReadTickets(bytes.NewReader(data), loc)
}

// SaveCFDFile writes a CFD to an arbitrary path, for the single-file output
// mode.
func SaveCFDFile(path string, snapshots []analytics.DailySnapshot, reporting []string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory for %s: %w", path, err)
		}
	}

	var buf bytes.Buffer
	if err := WriteCFD(&buf, snapshots, reporting); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0644)
}
