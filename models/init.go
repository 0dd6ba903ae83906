package models

import (
	"invitetrack/db"
)

func Init() {
	if err := Migrate(); err != nil {
		panic(err)
	}
}

func Migrate() error {
	return db.Instance.AutoMigrate(&Attribution{}, &MemberProfile{}, &MemberHistory{})
}
