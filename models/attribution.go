package models

import (
	"strings"

	"invitetrack/db"
	"invitetrack/invites"

	"gorm.io/gorm"
)

// Attribution is one join together with the invite it was attributed to (if any)
type Attribution struct {
	ID         uint64 `gorm:"primaryKey" json:"-"`
	CreatedAt  int64  `gorm:"index" json:"created_at"`
	EventID    string `gorm:"type:varchar(36);unique" json:"event_id"`
	GuildID    string `gorm:"type:varchar(32);index:idx_g_m,priority:1" json:"guild_id"`
	MemberID   string `gorm:"type:varchar(32);index:idx_g_m,priority:2" json:"member_id"`
	Bot        bool   `json:"bot"`
	Code       string `gorm:"type:varchar(32)" json:"code,omitempty"`
	InviterID  string `gorm:"type:varchar(32)" json:"inviter_id,omitempty"`
	Reason     string `gorm:"type:varchar(20)" json:"reason"`
	Candidates string `gorm:"type:text" json:"candidates,omitempty"` // comma separated, ambiguous joins only
}

func (a *Attribution) Result() invites.Result {
	r := invites.Result{Code: a.Code, InviterID: a.InviterID, Reason: invites.Reason(a.Reason)}
	if a.Candidates != "" {
		r.Candidates = strings.Split(a.Candidates, ",")
	}
	return r
}

// RecordAttribution stores the outcome of a join. When the join was attributed to an invite with
// a known creator (and the member isn't a bot), the creator gets credited and the member remembers who invited them.
func RecordAttribution(eventID, guildID, memberID string, bot bool, result invites.Result) (a Attribution, err error) {
	a = Attribution{
		EventID:    eventID,
		GuildID:    guildID,
		MemberID:   memberID,
		Bot:        bot,
		Code:       result.Code,
		InviterID:  result.InviterID,
		Reason:     string(result.Reason),
		Candidates: strings.Join(result.Candidates, ","),
	}
	err = db.Instance.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&a).Error; err != nil {
			return err
		}
		if !result.Known() || result.InviterID == "" || bot {
			return nil
		}
		if err := incrementProfile(tx, guildID, result.InviterID, "invites_count"); err != nil {
			return err
		}
		return setInvitedBy(tx, guildID, memberID, result.InviterID, result.Code)
	})
	return
}

// LastAttribution returns the latest recorded join of the member
func LastAttribution(guildID, memberID string) (a Attribution, err error) {
	err = db.Instance.Where("guild_id = ? AND member_id = ?", guildID, memberID).Order("id DESC").First(&a).Error
	return
}
