package models

import (
	"time"

	"invitetrack/db"
)

const (
	ChangeTypeNickname = "NICKNAME"
	ChangeTypeUsername = "USERNAME"
)

// MemberHistory keeps track of nickname and username changes
type MemberHistory struct {
	ID         uint64 `gorm:"primaryKey" json:"-"`
	GuildID    string `gorm:"type:varchar(32);index:idx_h_g_m,priority:1" json:"guild_id"`
	MemberID   string `gorm:"type:varchar(32);index:idx_h_g_m,priority:2" json:"member_id"`
	ChangeType string `gorm:"type:varchar(10)" json:"change_type"`
	OldValue   string `gorm:"type:varchar(100)" json:"old_value"`
	NewValue   string `gorm:"type:varchar(100)" json:"new_value"`
	Timestamp  int64  `json:"timestamp"`
}

func AddMemberHistory(guildID, memberID, changeType, oldValue, newValue string) error {
	return db.Instance.Create(&MemberHistory{
		GuildID:    guildID,
		MemberID:   memberID,
		ChangeType: changeType,
		OldValue:   oldValue,
		NewValue:   newValue,
		Timestamp:  time.Now().Unix(),
	}).Error
}

func GetMemberHistory(guildID, memberID string) (result []MemberHistory, err error) {
	err = db.Instance.Where("guild_id = ? AND member_id = ?", guildID, memberID).Order("id").Find(&result).Error
	return
}
