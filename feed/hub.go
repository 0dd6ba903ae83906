package feed

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	cmap "github.com/orcaman/concurrent-map/v2"
)

// SendFunc returns true if data was successfully sent
type SendFunc func([]byte) bool

type Client struct {
	ID   string
	send SendFunc
}

// Clients is a slice as one guild usually has more than one listener
type Clients []*Client

// Hub keeps the websocket listeners of every guild
type Hub struct {
	guilds cmap.ConcurrentMap[string, Clients]
}

func NewHub() *Hub {
	return &Hub{guilds: cmap.New[Clients]()}
}

// Subscribe registers a listener for a guild, the returned func removes it again
func (h *Hub) Subscribe(guildID string, send SendFunc) (*Client, func()) {
	c := &Client{ID: uuid.NewString(), send: send}
	h.guilds.Upsert(guildID, Clients{c}, func(exist bool, valueInMap, newValue Clients) Clients {
		if exist {
			return append(valueInMap[:len(valueInMap):len(valueInMap)], c)
		}
		return newValue
	})
	return c, func() { h.remove(guildID, c) }
}

func (h *Hub) remove(guildID string, c *Client) {
	h.guilds.Upsert(guildID, Clients{}, func(exist bool, valueInMap, newValue Clients) Clients {
		if !exist {
			return newValue
		}
		for _, oc := range valueInMap {
			if oc == c {
				continue
			}
			newValue = append(newValue, oc)
		}
		return newValue
	})
	h.guilds.RemoveCb(guildID, func(_ string, v Clients, exists bool) bool {
		return exists && len(v) == 0
	})
}

// Listeners returns the number of listeners of the guild
func (h *Hub) Listeners(guildID string) int {
	clients, _ := h.guilds.Get(guildID)
	return len(clients)
}

// Publish sends the event to every listener of its guild
func (h *Hub) Publish(_ context.Context, event Event) error {
	clients, ok := h.guilds.Get(event.GuildID)
	if !ok || len(clients) == 0 {
		return nil
	}
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	for _, c := range clients {
		c.send(data)
	}
	return nil
}

func (h *Hub) String() string { return "hub" }
