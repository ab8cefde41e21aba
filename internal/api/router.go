package api

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/festivo/festivo/internal/app"
	iauth "github.com/festivo/festivo/internal/auth"
	"github.com/festivo/festivo/internal/handlers"
	"github.com/festivo/festivo/internal/middleware"
	"github.com/festivo/festivo/internal/realtime"
	"github.com/festivo/festivo/internal/services"
	"github.com/festivo/festivo/internal/ticket"
)

// NewRouter builds the Gin engine, wires middleware and registers all routes.
func NewRouter(db *gorm.DB, cfg *app.Config, jwt *iauth.JWTService, sessions *iauth.SessionService, hub *realtime.Hub) (*gin.Engine, error) {
	if db == nil {
		return nil, fmt.Errorf("database handle must be provided")
	}
	if cfg == nil {
		return nil, fmt.Errorf("config must be provided")
	}
	if jwt == nil {
		return nil, fmt.Errorf("jwt service must be provided")
	}
	if sessions == nil {
		return nil, fmt.Errorf("session service must be provided")
	}

	invitationSvc, err := services.NewInvitationService(db)
	if err != nil {
		return nil, err
	}
	messageSvc, err := services.NewMessageService(db, invitationSvc, cfg.Limits.MessageTextMax)
	if err != nil {
		return nil, err
	}

	songOpts := []services.SongOption{}
	if hub != nil {
		songOpts = append(songOpts, services.WithSongBoardNotifier(hub.BroadcastSongBoard))
	}
	songSvc, err := services.NewSongService(db, invitationSvc, services.SongLimits{
		RequestsPerGuest: cfg.Limits.SongRequestsPerGuest,
		TextMax:          cfg.Limits.SongTextMax,
	}, songOpts...)
	if err != nil {
		return nil, err
	}

	auditSvc, err := services.NewAuditService(db)
	if err != nil {
		return nil, err
	}
	rosterSvc, err := services.NewRosterService(db, auditSvc, services.RosterConfig{
		BaseURL:         cfg.Invites.BaseURL,
		CountryCode:     cfg.Invites.CountryCode,
		MessageTemplate: cfg.Invites.MessageTemplate,
	})
	if err != nil {
		return nil, err
	}

	invitationHandler := handlers.NewInvitationHandler(invitationSvc, messageSvc)
	messageHandler := handlers.NewMessageHandler(messageSvc)
	songHandler := handlers.NewSongHandler(songSvc)
	ticketHandler := handlers.NewTicketHandler(invitationSvc, ticket.NewGenerator(0))
	authHandler := handlers.NewAuthHandler(db, sessions, auditSvc)
	adminHandler := handlers.NewAdminHandler(rosterSvc, invitationSvc, auditSvc)

	r := gin.New()

	r.Use(middleware.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.Metrics())
	r.Use(middleware.CORS(nil))
	// 120 requests/minute per IP+route is generous for a party site.
	r.Use(middleware.RateLimit(120, time.Minute))

	r.NoRoute(middleware.NotFoundHandler)

	r.GET("/health", handlers.Health(db))
	if cfg.Monitoring.Prometheus.Enabled {
		endpoint := cfg.Monitoring.Prometheus.Endpoint
		if endpoint == "" {
			endpoint = "/metrics"
		}
		r.GET(endpoint, gin.WrapH(promhttp.Handler()))
	}

	// Guest routes, addressed by invite token only.
	invitations := r.Group("/api/invitations/:token")
	{
		invitations.GET("", invitationHandler.Get)
		invitations.POST("/rsvp", invitationHandler.SubmitRSVP)
		invitations.GET("/messages", messageHandler.List)
		invitations.POST("/messages", messageHandler.Submit)
		invitations.GET("/songs", songHandler.List)
		invitations.POST("/songs", songHandler.Submit)
		invitations.POST("/songs/:id/vote", songHandler.Vote)
		invitations.GET("/ticket", ticketHandler.Get)
	}

	if cfg.Realtime.Enabled && hub != nil {
		realtimeHandler := handlers.NewRealtimeHandler(hub, invitationSvc)
		r.GET("/api/realtime", realtimeHandler.Stream)
	}

	// Staff auth.
	auth := r.Group("/api/auth")
	{
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.Refresh)
	}

	requireAuth := middleware.Auth(jwt)
	authed := r.Group("/api", requireAuth)
	{
		authed.GET("/auth/me", authHandler.Me)
		authed.POST("/auth/logout", authHandler.Logout)

		admin := authed.Group("/admin")
		{
			admin.GET("/events/:eventID/invitations", adminHandler.ListInvitations)
			admin.PATCH("/guests/:guestID/phone", adminHandler.UpdateGuestPhone)
			admin.POST("/guests/:guestID/sent", adminHandler.MarkSent)
			// Wildcard so a pasted full invite URL still routes.
			admin.GET("/verify/*token", adminHandler.Verify)
		}
	}

	return r, nil
}
