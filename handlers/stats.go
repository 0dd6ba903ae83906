package handlers

import (
	"errors"
	"net/http"
	"sort"
	"strconv"

	"invitetrack/invites"
	"invitetrack/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const maxLeaderboardSize = 100

type MemberInfo struct {
	Profile         *models.MemberProfile  `json:"profile"`
	LastAttribution *models.Attribution    `json:"last_attribution"`
	History         []models.MemberHistory `json:"history"`
}

// CommunityList returns the guilds with cached invites
func CommunityList(c *gin.Context) {
	ids := tracker.Cache.Communities()
	sort.Strings(ids)
	c.JSON(http.StatusOK, ids)
}

// CommunityInvites returns the cached invites of a guild, most used first
func CommunityInvites(c *gin.Context) {
	cached := tracker.Cache.Get(c.Param("id"))
	result := make([]invites.Snapshot, 0, len(cached))
	for _, s := range cached {
		result = append(result, s)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Uses != result[j].Uses {
			return result[i].Uses > result[j].Uses
		}
		return result[i].Code < result[j].Code
	})
	c.JSON(http.StatusOK, result)
}

func CommunityLeaderboard(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	if limit > maxLeaderboardSize {
		limit = maxLeaderboardSize
	}
	result, err := models.Leaderboard(c.Param("id"), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, DBError1Response)
		return
	}
	c.JSON(http.StatusOK, result)
}

func CommunityMember(c *gin.Context) {
	guildID, memberID := c.Param("id"), c.Param("member")
	info := MemberInfo{History: []models.MemberHistory{}}
	profile, err := models.GetMemberProfile(guildID, memberID)
	if err == nil {
		info.Profile = &profile
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusInternalServerError, DBError1Response)
		return
	}
	last, err := models.LastAttribution(guildID, memberID)
	if err == nil {
		info.LastAttribution = &last
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusInternalServerError, DBError2Response)
		return
	}
	if info.Profile == nil && info.LastAttribution == nil {
		c.JSON(http.StatusNotFound, NotFoundResponse)
		return
	}
	if history, err := models.GetMemberHistory(guildID, memberID); err == nil {
		info.History = history
	}
	c.JSON(http.StatusOK, info)
}
