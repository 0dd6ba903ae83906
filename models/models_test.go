package models

import (
	"fmt"
	"reflect"
	"strings"
	"testing"

	"invitetrack/db"
	"invitetrack/invites"
)

func setupDB(t *testing.T) {
	t.Helper()
	instance, err := db.Open("", fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name()))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if sqlDB, err := instance.DB(); err == nil {
		sqlDB.SetMaxOpenConns(1)
	}
	db.Instance = instance
	if err = Migrate(); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := instance.DB(); err == nil {
			sqlDB.Close()
		}
	})
}

func TestRecordAttribution(t *testing.T) {
	setupDB(t)
	attributed := invites.Result{Code: "abc", InviterID: "100", Reason: invites.ReasonAttributed}
	if _, err := RecordAttribution("e1", "g1", "m1", false, attributed); err != nil {
		t.Fatalf("RecordAttribution() error = %v", err)
	}
	if _, err := RecordAttribution("e2", "g1", "m2", false, attributed); err != nil {
		t.Fatalf("RecordAttribution() error = %v", err)
	}
	inviter, err := GetMemberProfile("g1", "100")
	if err != nil {
		t.Fatalf("GetMemberProfile() error = %v", err)
	}
	if inviter.InvitesCount != 2 {
		t.Errorf("InvitesCount = %d, want 2", inviter.InvitesCount)
	}
	joiner, err := GetMemberProfile("g1", "m2")
	if err != nil {
		t.Fatalf("GetMemberProfile() error = %v", err)
	}
	if joiner.InvitedByID != "100" || joiner.InviteCode != "abc" {
		t.Errorf("joiner = %+v, want invited by 100 with abc", joiner)
	}
}

func TestRecordAttribution_NotCredited(t *testing.T) {
	tests := []struct {
		name   string
		bot    bool
		result invites.Result
	}{
		{"unknown", false, invites.Result{Reason: invites.ReasonNoCandidate}},
		{"ambiguous", false, invites.Result{Reason: invites.ReasonAmbiguous, Candidates: []string{"a", "b"}}},
		{"vanity", false, invites.Result{Code: "vanity", Reason: invites.ReasonAttributed}},
		{"bot", true, invites.Result{Code: "abc", InviterID: "100", Reason: invites.ReasonAttributed}},
	}
	setupDB(t)
	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := RecordAttribution(fmt.Sprintf("e%d", i), "g1", "m1", tt.bot, tt.result)
			if err != nil {
				t.Fatalf("RecordAttribution() error = %v", err)
			}
			if got := a.Result(); got.Reason != tt.result.Reason || len(got.Candidates) != len(tt.result.Candidates) {
				t.Errorf("Result() = %+v, want %+v", got, tt.result)
			}
		})
	}
	if _, err := GetMemberProfile("g1", "100"); err == nil {
		t.Error("inviter credited for a join that shouldn't count")
	}
	last, err := LastAttribution("g1", "m1")
	if err != nil || !last.Bot {
		t.Errorf("LastAttribution() = %+v, %v; want the bot join", last, err)
	}
}

func TestLeaderboard(t *testing.T) {
	setupDB(t)
	credit := func(event, inviter string) {
		r := invites.Result{Code: "c" + inviter, InviterID: inviter, Reason: invites.ReasonAttributed}
		if _, err := RecordAttribution(event, "g1", "m"+event, false, r); err != nil {
			t.Fatalf("RecordAttribution() error = %v", err)
		}
	}
	credit("1", "a")
	credit("2", "b")
	credit("3", "b")
	credit("4", "c")
	credit("5", "b")
	credit("6", "c")
	if err := IncrementMessages("g1", "quiet"); err != nil {
		t.Fatalf("IncrementMessages() error = %v", err)
	}

	got, err := Leaderboard("g1", 2)
	if err != nil {
		t.Fatalf("Leaderboard() error = %v", err)
	}
	if len(got) != 2 || got[0].MemberID != "b" || got[0].InvitesCount != 3 || got[1].MemberID != "c" {
		t.Errorf("Leaderboard() = %+v", got)
	}
}

func TestIncrementMessages(t *testing.T) {
	setupDB(t)
	for i := 0; i < 3; i++ {
		if err := IncrementMessages("g1", "m1"); err != nil {
			t.Fatalf("IncrementMessages() error = %v", err)
		}
	}
	p, err := GetMemberProfile("g1", "m1")
	if err != nil || p.MessageCount != 3 || p.InvitesCount != 0 {
		t.Errorf("profile = %+v, %v; want 3 messages", p, err)
	}
}

func TestMemberHistory(t *testing.T) {
	setupDB(t)
	if err := AddMemberHistory("g1", "m1", ChangeTypeNickname, "", "bob"); err != nil {
		t.Fatalf("AddMemberHistory() error = %v", err)
	}
	if err := AddMemberHistory("g1", "m1", ChangeTypeUsername, "bob1", "bob2"); err != nil {
		t.Fatalf("AddMemberHistory() error = %v", err)
	}
	got, err := GetMemberHistory("g1", "m1")
	if err != nil || len(got) != 2 || got[1].NewValue != "bob2" {
		t.Errorf("GetMemberHistory() = %+v, %v", got, err)
	}
}

func TestRecordAttribution_ManyCandidates(t *testing.T) {
	setupDB(t)
	var codes []string
	for i := 0; i < 100; i++ {
		codes = append(codes, fmt.Sprintf("%s%03d", strings.Repeat("x", 20), i))
	}
	ambiguous := invites.Result{Reason: invites.ReasonAmbiguous, Candidates: codes}
	if _, err := RecordAttribution("e1", "g1", "m1", false, ambiguous); err != nil {
		t.Fatalf("RecordAttribution() error = %v", err)
	}
	a, err := LastAttribution("g1", "m1")
	if err != nil {
		t.Fatalf("LastAttribution() error = %v", err)
	}
	if got := a.Result().Candidates; !reflect.DeepEqual(got, codes) {
		t.Errorf("candidates = %d codes, want %d", len(got), len(codes))
	}
}
