// Package messaging defines the pluggable messaging adapter interface.
package messaging

import (
	"context"
	"time"

	"github.com/felixgeelhaar/boardflow/pkg/domain/analytics"
	"github.com/felixgeelhaar/boardflow/pkg/domain/ticket"
)

// Digest is the metrics summary published after a run.
type Digest struct {
	RunID          string                        `json:"run_id"`
	BoardID        string                        `json:"board_id"`
	Window         string                        `json:"window"`
	GeneratedAt    time.Time                     `json:"generated_at"`
	LeadTime       analytics.LeadTimeSummary     `json:"lead_time"`
	Throughput     analytics.ThroughputSummary   `json:"throughput"`
	Predictability analytics.PredictabilityClass `json:"predictability"`
	Completed      int                           `json:"completed"`
	TicketTypes    []ticket.TypeCount            `json:"ticket_types,omitempty"`
	Warnings       []string                      `json:"warnings,omitempty"`
}

// MessageAdapter sends metric digests to an external channel.
type MessageAdapter interface {
	Send(ctx context.Context, digest *Digest) error
	Name() string
	Type() string
}

// AdapterConfig defines configuration for a messaging adapter.
type AdapterConfig struct {
	Name    string            `yaml:"name" json:"name" mapstructure:"name"`
	Type    string            `yaml:"type" json:"type" mapstructure:"type"` // "webhook", "slack"
	URL     string            `yaml:"url" json:"url" mapstructure:"url"`
	Secret  string            `yaml:"secret,omitempty" json:"secret,omitempty" mapstructure:"secret"`
	Boards  []string          `yaml:"boards,omitempty" json:"boards,omitempty" mapstructure:"boards"`
	Enabled bool              `yaml:"enabled" json:"enabled" mapstructure:"enabled"`
	Options map[string]string `yaml:"options,omitempty" json:"options,omitempty" mapstructure:"options"`
}

// Accepts reports whether the adapter publishes digests for boardID. An
// empty board filter accepts every board.
func (c AdapterConfig) Accepts(boardID string) bool {
	if len(c.Boards) == 0 {
		return true
	}
	for _, b := range c.Boards {
		if b == boardID {
			return true
		}
	}
	return false
}

// MessagingConfig holds all configured messaging adapters.
type MessagingConfig struct {
	Adapters []AdapterConfig `yaml:"adapters" json:"adapters" mapstructure:"adapters"`
}
