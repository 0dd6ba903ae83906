package handlers

import (
	"time"

	"invitetrack/feed"
	"invitetrack/invites"
	"invitetrack/logger"
)

type Response struct {
	Error string `json:"error"`
}

var (
	// Predefined errors
	OKResponse        = Response{}
	NotFoundResponse  = Response{"not found"}
	DBError1Response  = Response{"DB Error 1"}
	DBError2Response  = Response{"DB Error 2"}
	AuthErrorResponse = Response{"access denied"}
)

var (
	tracker   *invites.Engine
	publisher feed.Publisher
	hub       *feed.Hub
	log       = logger.NewNop()
	// JoinTimeout bounds a whole attribution (gate wait + fetch) for one join event
	JoinTimeout = 30 * time.Second
	// PublishTimeout bounds the feed publish that follows
	PublishTimeout = 5 * time.Second
)

// Init sets the components used by all handlers
func Init(engine *invites.Engine, feedHub *feed.Hub, pub feed.Publisher, l *logger.Logger) {
	tracker = engine
	hub = feedHub
	publisher = pub
	if l != nil {
		log = l.With("service", "Handlers")
	}
}
