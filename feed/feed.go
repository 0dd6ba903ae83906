// Package feed fans attribution events out to live listeners
package feed

import (
	"context"

	"invitetrack/invites"
	"invitetrack/logger"
)

const TypeAttribution = "attribution"

type Event struct {
	Type     string         `json:"type"`
	EventID  string         `json:"event_id"`
	GuildID  string         `json:"guild_id"`
	MemberID string         `json:"member_id"`
	Bot      bool           `json:"bot"`
	Result   invites.Result `json:"result"`
	Stamp    int64          `json:"stamp"`
}

type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// Multi publishes to every publisher. Failures are logged, they don't stop the others.
type Multi struct {
	Publishers []Publisher
	Log        *logger.Logger
}

func (m *Multi) Add(p Publisher) {
	if p != nil {
		m.Publishers = append(m.Publishers, p)
	}
}

func (m *Multi) Publish(ctx context.Context, event Event) error {
	for _, p := range m.Publishers {
		if err := p.Publish(ctx, event); err != nil && m.Log != nil {
			m.Log.Warn("Feed publish failed", "event_id", event.EventID, "publisher", p, "error", err)
		}
	}
	return nil
}
