// Package platform talks to the chat platform REST API
package platform

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"invitetrack/invites"
)

var (
	ErrForbidden        = errors.New("missing permission to list invites")
	ErrUnknownCommunity = errors.New("unknown guild")
)

// StatusError is returned for non 2xx responses
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("platform status: %d, %s", e.StatusCode, e.Body)
}

func (e *StatusError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusForbidden, http.StatusUnauthorized:
		return ErrForbidden
	case http.StatusNotFound:
		return ErrUnknownCommunity
	}
	return nil
}

type inviter struct {
	ID string `json:"id"`
}

type invite struct {
	Code      string     `json:"code"`
	Inviter   *inviter   `json:"inviter,omitempty"`
	Uses      int        `json:"uses"`
	MaxUses   int        `json:"max_uses"`
	ExpiresAt *time.Time `json:"expires_at"`
}

// Client lists guild invites with a bot token
type Client struct {
	BaseURL    string
	Token      string
	HTTPClient *http.Client
	now        func() time.Time
}

func NewClient(baseURL, token string) *Client {
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		Token:      token,
		HTTPClient: &http.Client{},
		now:        time.Now,
	}
}

func (c *Client) FetchInvites(ctx context.Context, guildID string) ([]invites.Snapshot, error) {
	endpoint := c.BaseURL + "/guilds/" + url.PathEscape(guildID) + "/invites"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bot "+c.Token)
	req.Header.Set("Accept", "application/json")
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}
	list := []invite{}
	if err = json.NewDecoder(resp.Body).Decode(&list); err != nil {
		return nil, fmt.Errorf("decode invites: %w", err)
	}
	captured := c.now()
	result := make([]invites.Snapshot, 0, len(list))
	for _, inv := range list {
		s := invites.Snapshot{
			Code:       inv.Code,
			Uses:       inv.Uses,
			MaxUses:    inv.MaxUses,
			CapturedAt: captured,
		}
		if inv.Inviter != nil {
			s.InviterID = inv.Inviter.ID
		}
		if inv.ExpiresAt != nil {
			s.ExpiresAt = *inv.ExpiresAt
		}
		result = append(result, s)
	}
	return result, nil
}
