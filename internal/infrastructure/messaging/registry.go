package messaging

import (
	"fmt"

	"github.com/felixgeelhaar/boardflow/pkg/domain/messaging"
)

type entry struct {
	config  messaging.AdapterConfig
	adapter messaging.MessageAdapter
}

// Registry creates messaging adapters from configuration.
type Registry struct {
	entries []entry
}

// NewRegistry creates adapters from a MessagingConfig.
func NewRegistry(config *messaging.MessagingConfig) (*Registry, error) {
	if config == nil {
		return &Registry{}, nil
	}

	var entries []entry
	for _, cfg := range config.Adapters {
		if !cfg.Enabled {
			continue
		}
		if cfg.URL == "" {
			return nil, fmt.Errorf("create adapter %q: url is required", cfg.Name)
		}

		adapter, err := createAdapter(cfg)
		if err != nil {
			return nil, fmt.Errorf("create adapter %q: %w", cfg.Name, err)
		}
		entries = append(entries, entry{config: cfg, adapter: adapter})
	}

	return &Registry{entries: entries}, nil
}

// Adapters returns all active adapters.
func (r *Registry) Adapters() []messaging.MessageAdapter {
	adapters := make([]messaging.MessageAdapter, 0, len(r.entries))
	for _, e := range r.entries {
		adapters = append(adapters, e.adapter)
	}
	return adapters
}

// For returns the active adapters that publish digests for boardID.
func (r *Registry) For(boardID string) []messaging.MessageAdapter {
	var adapters []messaging.MessageAdapter
	for _, e := range r.entries {
		if e.config.Accepts(boardID) {
			adapters = append(adapters, e.adapter)
		}
	}
	return adapters
}

func createAdapter(cfg messaging.AdapterConfig) (messaging.MessageAdapter, error) {
	switch cfg.Type {
	case "webhook":
		return NewWebhookAdapter(cfg), nil
	case "slack":
		return NewSlackAdapter(cfg), nil
	default:
		return nil, fmt.Errorf("unknown adapter type: %s", cfg.Type)
	}
}
