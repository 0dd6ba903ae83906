package models

import (
	"time"

	"invitetrack/db"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MemberProfile holds per guild statistics of a member
type MemberProfile struct {
	ID           uint64 `gorm:"primaryKey" json:"-"`
	CreatedAt    int64  `json:"created_at"`
	UpdatedAt    int64  `json:"updated_at"`
	GuildID      string `gorm:"type:varchar(32);index:uniq_g_m,priority:1,unique;index:idx_g_invites,priority:1" json:"guild_id"`
	MemberID     string `gorm:"type:varchar(32);index:uniq_g_m,priority:2,unique" json:"member_id"`
	MessageCount int    `gorm:"not null;default:0" json:"message_count"`
	InvitesCount int    `gorm:"not null;default:0;index:idx_g_invites,priority:2" json:"invites_count"`
	InvitedByID  string `gorm:"type:varchar(32)" json:"invited_by_id,omitempty"` // who created the invite this member joined with
	InviteCode   string `gorm:"type:varchar(32)" json:"invite_code,omitempty"`
}

// incrementProfile creates the profile if needed and adds 1 to the given counter column
func incrementProfile(tx *gorm.DB, guildID, memberID, column string) error {
	now := time.Now().Unix()
	profile := MemberProfile{GuildID: guildID, MemberID: memberID}
	switch column {
	case "message_count":
		profile.MessageCount = 1
	case "invites_count":
		profile.InvitesCount = 1
	}
	return tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "guild_id"}, {Name: "member_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			column:       gorm.Expr(column+" + ?", 1),
			"updated_at": now,
		}),
	}).Create(&profile).Error
}

// setInvitedBy stores who invited the member, creating the profile if needed
func setInvitedBy(tx *gorm.DB, guildID, memberID, inviterID, code string) error {
	profile := MemberProfile{GuildID: guildID, MemberID: memberID, InvitedByID: inviterID, InviteCode: code}
	return tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "guild_id"}, {Name: "member_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"invited_by_id": inviterID,
			"invite_code":   code,
			"updated_at":    time.Now().Unix(),
		}),
	}).Create(&profile).Error
}

func IncrementMessages(guildID, memberID string) error {
	return incrementProfile(db.Instance, guildID, memberID, "message_count")
}

func GetMemberProfile(guildID, memberID string) (p MemberProfile, err error) {
	err = db.Instance.Where("guild_id = ? AND member_id = ?", guildID, memberID).First(&p).Error
	return
}

// Leaderboard returns the members with the most attributed invites
func Leaderboard(guildID string, limit int) (result []MemberProfile, err error) {
	if limit <= 0 {
		limit = 10
	}
	err = db.Instance.
		Where("guild_id = ? AND invites_count > 0", guildID).
		Order("invites_count DESC, member_id").
		Limit(limit).
		Find(&result).Error
	return
}
