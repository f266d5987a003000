package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/felixgeelhaar/boardflow/pkg/domain/messaging"
)

// AdapterProvider selects the messaging adapters for a board.
type AdapterProvider interface {
	For(boardID string) []messaging.MessageAdapter
}

// PublishService sends metric digests to messaging adapters.
type PublishService struct {
	adapters AdapterProvider
	logger   *slog.Logger
}

func NewPublishService(adapters AdapterProvider, logger *slog.Logger) *PublishService {
	if logger == nil {
		logger = slog.Default()
	}
	return &PublishService{adapters: adapters, logger: logger}
}

// BuildDigest turns summary stats into a digest.
func BuildDigest(stats *Stats) *messaging.Digest {
	d := &messaging.Digest{
		LeadTime:       stats.LeadTime,
		Throughput:     stats.Throughput,
		Predictability: stats.Predictability,
		Completed:      stats.LeadTime.Count,
		TicketTypes:    stats.TicketTypes,
	}
	if m := stats.Manifest; m != nil {
		d.RunID = m.RunID
		d.BoardID = m.BoardID
		d.GeneratedAt = m.GeneratedAt
		if m.WindowFirst != "" {
			d.Window = m.WindowFirst + ".." + m.WindowLast
		}
		d.Completed = m.Counts.Completed
		for _, w := range m.Warnings {
			d.Warnings = append(d.Warnings, w.Message)
		}
	}
	return d
}

// Publish sends digest to every adapter configured for its board. It keeps
// going when an adapter fails and returns the joined failures.
func (s *PublishService) Publish(ctx context.Context, digest *messaging.Digest) (int, error) {
	adapters := s.adapters.For(digest.BoardID)
	if len(adapters) == 0 {
		return 0, fmt.Errorf("no messaging adapters configured for board %q", digest.BoardID)
	}

	var errs []error
	sent := 0
	for _, a := range adapters {
		if err := a.Send(ctx, digest); err != nil {
			s.logger.Error("failed to publish digest",
				"adapter", a.Name(),
				"type", a.Type(),
				"error", err)
			errs = append(errs, fmt.Errorf("%s: %w", a.Name(), err))
			continue
		}
		s.logger.Info("published digest", "adapter", a.Name(), "board_id", digest.BoardID)
		sent++
	}
	return sent, errors.Join(errs...)
}
