package handlers

import (
	"context"
	"crypto/subtle"
	"net/http"
	"time"

	"invitetrack/config"
	"invitetrack/feed"
	"invitetrack/invites"
	"invitetrack/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const relaySecretHeader = "X-Relay-Secret"

type MemberJoinRequest struct {
	GuildID string `json:"guild_id" binding:"required"`
	UserID  string `json:"user_id" binding:"required"`
	Bot     bool   `json:"bot"`
}

type MemberJoinResponse struct {
	Error   string         `json:"error"`
	EventID string         `json:"event_id"`
	Result  invites.Result `json:"result"`
}

type InviteCreateRequest struct {
	GuildID   string     `json:"guild_id" binding:"required"`
	Code      string     `json:"code" binding:"required"`
	InviterID string     `json:"inviter_id"`
	Uses      int        `json:"uses" binding:"min=0"`
	MaxUses   int        `json:"max_uses" binding:"min=0"`
	ExpiresAt *time.Time `json:"expires_at"`
}

type MessageCreateRequest struct {
	GuildID string `json:"guild_id"`
	UserID  string `json:"user_id" binding:"required"`
	Bot     bool   `json:"bot"`
}

type MemberNames struct {
	Nick string `json:"nick"`
	Name string `json:"name"`
}

type MemberUpdateRequest struct {
	GuildID string      `json:"guild_id" binding:"required"`
	UserID  string      `json:"user_id" binding:"required"`
	Bot     bool        `json:"bot"`
	Before  MemberNames `json:"before"`
	After   MemberNames `json:"after"`
}

// RelayAuth rejects event requests without the shared relay secret (if one is configured)
func RelayAuth(c *gin.Context) {
	if config.RELAY_SECRET == "" {
		c.Next()
		return
	}
	given := c.GetHeader(relaySecretHeader)
	if subtle.ConstantTimeCompare([]byte(given), []byte(config.RELAY_SECRET)) != 1 {
		c.AbortWithStatusJSON(http.StatusUnauthorized, AuthErrorResponse)
		return
	}
	c.Next()
}

// MemberJoin attributes the join, stores the outcome and publishes it on the feed.
// It answers 200 even if storing failed, the relay must not replay a join.
func MemberJoin(c *gin.Context) {
	r := MemberJoinRequest{}
	if err := c.ShouldBindJSON(&r); err != nil {
		c.JSON(http.StatusBadRequest, Response{err.Error()})
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), JoinTimeout)
	defer cancel()
	result := tracker.Attribute(ctx, r.GuildID, r.UserID)

	response := MemberJoinResponse{EventID: uuid.NewString(), Result: result}
	if _, err := models.RecordAttribution(response.EventID, r.GuildID, r.UserID, r.Bot, result); err != nil {
		log.Error("Storing attribution failed", "event_id", response.EventID, "guild_id", r.GuildID, "error", err)
		response.Error = DBError1Response.Error
	}
	if publisher != nil {
		// The join context may already be spent by a slow fetch
		pubCtx, pubCancel := context.WithTimeout(context.Background(), PublishTimeout)
		err := publisher.Publish(pubCtx, feed.Event{
			Type:     feed.TypeAttribution,
			EventID:  response.EventID,
			GuildID:  r.GuildID,
			MemberID: r.UserID,
			Bot:      r.Bot,
			Result:   result,
			Stamp:    time.Now().Unix(),
		})
		pubCancel()
		if err != nil {
			log.Warn("Publishing attribution failed", "event_id", response.EventID, "error", err)
		}
	}
	c.JSON(http.StatusOK, response)
}

func InviteCreate(c *gin.Context) {
	r := InviteCreateRequest{}
	if err := c.ShouldBindJSON(&r); err != nil {
		c.JSON(http.StatusBadRequest, Response{err.Error()})
		return
	}
	s := invites.Snapshot{
		Code:       r.Code,
		InviterID:  r.InviterID,
		Uses:       r.Uses,
		MaxUses:    r.MaxUses,
		CapturedAt: time.Now(),
	}
	if r.ExpiresAt != nil {
		s.ExpiresAt = *r.ExpiresAt
	}
	tracker.InviteCreated(r.GuildID, s)
	c.JSON(http.StatusOK, OKResponse)
}

// MessageCreate counts messages per member, bots and direct messages are ignored
func MessageCreate(c *gin.Context) {
	r := MessageCreateRequest{}
	if err := c.ShouldBindJSON(&r); err != nil {
		c.JSON(http.StatusBadRequest, Response{err.Error()})
		return
	}
	if r.Bot || r.GuildID == "" {
		c.JSON(http.StatusOK, OKResponse)
		return
	}
	if err := models.IncrementMessages(r.GuildID, r.UserID); err != nil {
		log.Error("Counting message failed", "guild_id", r.GuildID, "error", err)
		c.JSON(http.StatusInternalServerError, DBError1Response)
		return
	}
	c.JSON(http.StatusOK, OKResponse)
}

// MemberUpdate records nickname and username changes
func MemberUpdate(c *gin.Context) {
	r := MemberUpdateRequest{}
	if err := c.ShouldBindJSON(&r); err != nil {
		c.JSON(http.StatusBadRequest, Response{err.Error()})
		return
	}
	if r.Bot {
		c.JSON(http.StatusOK, OKResponse)
		return
	}
	if r.Before.Nick != r.After.Nick {
		if err := models.AddMemberHistory(r.GuildID, r.UserID, models.ChangeTypeNickname, r.Before.Nick, r.After.Nick); err != nil {
			log.Error("Storing nickname change failed", "guild_id", r.GuildID, "error", err)
			c.JSON(http.StatusInternalServerError, DBError1Response)
			return
		}
	}
	if r.Before.Name != r.After.Name {
		if err := models.AddMemberHistory(r.GuildID, r.UserID, models.ChangeTypeUsername, r.Before.Name, r.After.Name); err != nil {
			log.Error("Storing username change failed", "guild_id", r.GuildID, "error", err)
			c.JSON(http.StatusInternalServerError, DBError2Response)
			return
		}
	}
	c.JSON(http.StatusOK, OKResponse)
}
