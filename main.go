package main

import (
	"context"
	"errors"
	stdlog "log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"invitetrack/config"
	"invitetrack/db"
	"invitetrack/feed"
	"invitetrack/handlers"
	"invitetrack/invites"
	"invitetrack/logger"
	"invitetrack/models"
	"invitetrack/platform"
	"invitetrack/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/autotls"
	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 5 * time.Second

func main() {
	log, err := logger.New(config.LOG_MODE, config.DEBUG_MODE)
	if err != nil {
		stdlog.Fatalf("Logger init failed: %v", err)
	}
	defer log.Sync()

	db.Init()
	models.Init()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	engine := invites.NewEngine(platform.NewClient(config.PLATFORM_API_BASE, config.PLATFORM_TOKEN), log)
	engine.FetchTimeout = config.FETCH_TIMEOUT

	hub := feed.NewHub()
	publishers := &feed.Multi{Log: log}
	publishers.Add(hub)
	if config.REDIS_ADDR != "" {
		redisPublisher, err := feed.NewRedisPublisher(ctx, config.REDIS_ADDR, config.REDIS_CHANNEL)
		if err != nil {
			log.Warn("Redis feed disabled", "error", err)
		} else {
			defer redisPublisher.Close()
			publishers.Add(redisPublisher)
		}
	}
	if config.WEBHOOK_URL != "" {
		publishers.Add(feed.NewWebhook(config.WEBHOOK_URL))
	}
	handlers.Init(engine, hub, publishers, log)

	// Baselines for known guilds, so the first join after a restart isn't a cold start
	go engine.WarmAll(ctx, config.WARM_COMMUNITIES, config.WARM_CONCURRENCY)

	if !config.DEBUG_MODE {
		gin.SetMode(gin.ReleaseMode)
	}
	router := setupRouter(log)

	if config.TLS_DOMAINS != "" {
		err = autotls.Run(router, strings.Split(config.TLS_DOMAINS, ",")...)
		log.Fatal("Server stopped", "error", err)
	}
	if err = serve(ctx, router, log); err != nil {
		log.Fatal("Server stopped", "error", err)
	}
	log.Info("Server exiting")
}

func setupRouter(log *logger.Logger) *gin.Engine {
	router := gin.Default()
	_ = router.SetTrustedProxies([]string{})
	if config.DEBUG_MODE {
		router.Use(utils.ErrorLogMiddleware(log))
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{"GET"},
		AllowHeaders:  []string{"Origin"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}))
	router.Use((&utils.CacheRouter{CacheTime: utils.CacheNoCache}).Handler())

	// Platform events, posted by the gateway relay
	events := router.Group("/events", handlers.RelayAuth)
	events.POST("/member-join", handlers.MemberJoin)
	events.POST("/invite-create", handlers.InviteCreate)
	events.POST("/message-create", handlers.MessageCreate)
	events.POST("/member-update", handlers.MemberUpdate)

	// Stats
	stats := router.Group("/communities")
	if !config.DEBUG_MODE {
		stats.Use(gzip.Gzip(gzip.DefaultCompression))
	}
	stats.GET("", handlers.CommunityList)
	stats.GET("/:id/invites", handlers.CommunityInvites)
	stats.GET("/:id/leaderboard", handlers.CommunityLeaderboard)
	stats.GET("/:id/members/:member", handlers.CommunityMember)
	// No gzip on the websocket
	router.GET("/communities/:id/feed", handlers.CommunityFeed)
	return router
}

// serve runs the HTTP server until ctx is done, then shuts it down gracefully
func serve(ctx context.Context, router *gin.Engine, log *logger.Logger) error {
	server := &http.Server{
		Addr:    config.BIND_ADDRESS,
		Handler: router,
	}
	eg, groupCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		log.Info("HTTP listening", "address", config.BIND_ADDRESS)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	eg.Go(func() error {
		<-groupCtx.Done()
		log.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	if err := eg.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
