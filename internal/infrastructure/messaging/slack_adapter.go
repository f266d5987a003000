package messaging

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/felixgeelhaar/boardflow/pkg/domain/analytics"
	"github.com/felixgeelhaar/boardflow/pkg/domain/messaging"
)

// SlackAdapter sends digests to a Slack incoming webhook URL.
type SlackAdapter struct {
	config messaging.AdapterConfig
	client *http.Client
}

// NewSlackAdapter creates a Slack adapter from config.
func NewSlackAdapter(config messaging.AdapterConfig) *SlackAdapter {
	return &SlackAdapter{
		config: config,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

func (a *SlackAdapter) Name() string { return a.config.Name }
func (a *SlackAdapter) Type() string { return "slack" }

func (a *SlackAdapter) Send(ctx context.Context, digest *messaging.Digest) error {
	header := fmt.Sprintf("Flow metrics for board %s", digest.BoardID)
	text := formatSlackMessage(digest)

	payload := map[string]interface{}{
		"text": header,
		"blocks": []map[string]interface{}{
			{
				"type": "header",
				"text": map[string]string{
					"type": "plain_text",
					"text": header,
				},
			},
			{
				"type": "section",
				"text": map[string]string{
					"type": "mrkdwn",
					"text": text,
				},
			},
		},
	}
	if channel := a.config.Options["channel"]; channel != "" {
		payload["channel"] = channel
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal slack payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.config.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return fmt.Errorf("send to slack: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("slack returned status %d", resp.StatusCode)
	}

	return nil
}

func predictabilityEmoji(c analytics.PredictabilityClass) string {
	switch c {
	case analytics.Predictable:
		return ":large_green_circle:"
	case analytics.Moderate:
		return ":large_yellow_circle:"
	default:
		return ":red_circle:"
	}
}

func formatSlackMessage(d *messaging.Digest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "*Window:* %s\n", d.Window)
	fmt.Fprintf(&b, "*Completed:* %d items\n", d.Completed)
	fmt.Fprintf(&b, "*Lead time:* P50 %.1f days, P90 %.1f days\n", d.LeadTime.P50, d.LeadTime.P90)
	fmt.Fprintf(&b, "*Throughput:* %.1f/week (min %d, max %d)\n", d.Throughput.Mean, d.Throughput.Min, d.Throughput.Max)
	fmt.Fprintf(&b, "%s *Predictability:* %s (CV %.0f%%)", predictabilityEmoji(d.Predictability), d.Predictability, d.Throughput.CV)
	if len(d.TicketTypes) > 0 {
		types := make([]string, len(d.TicketTypes))
		for i, tc := range d.TicketTypes {
			types[i] = fmt.Sprintf("%s %d", tc.Type, tc.Count)
		}
		fmt.Fprintf(&b, "\n*Types:* %s", strings.Join(types, ", "))
	}
	for _, w := range d.Warnings {
		fmt.Fprintf(&b, "\n:warning: %s", w)
	}
	return b.String()
}
