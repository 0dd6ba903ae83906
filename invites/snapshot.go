package invites

import "time"

// Snapshot is a point-in-time record of one invite link's usage.
// Values are copied, never shared.
type Snapshot struct {
	Code       string    `json:"code"`
	InviterID  string    `json:"inviter_id,omitempty"` // empty for vanity links or deleted creators
	Uses       int       `json:"uses"`
	MaxUses    int       `json:"max_uses"`             // 0 - unlimited
	ExpiresAt  time.Time `json:"expires_at,omitempty"` // zero - never expires
	CapturedAt time.Time `json:"captured_at"`
}

// toMapping turns a fetched list into a code keyed mapping. Duplicate codes: last one wins
func toMapping(list []Snapshot) map[string]Snapshot {
	m := make(map[string]Snapshot, len(list))
	for _, s := range list {
		m[s.Code] = s
	}
	return m
}
