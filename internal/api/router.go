package api

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/conexahub/conexa/internal/app"
	iauth "github.com/conexahub/conexa/internal/auth"
	"github.com/conexahub/conexa/internal/handlers"
	"github.com/conexahub/conexa/internal/middleware"
	"github.com/conexahub/conexa/internal/services"
	"github.com/conexahub/conexa/pkg/mail"
)

// NewRouter builds the Gin engine, wires middleware and registers all routes.
// The route surface splits into three tiers: public (submission, token
// validation, registration, login), member (JWT) and admin (shared secret).
func NewRouter(db *gorm.DB, jwt *iauth.JWTService, cfg *app.Config, mailer mail.Mailer) (*gin.Engine, error) {
	if db == nil {
		return nil, fmt.Errorf("database handle must be provided")
	}
	if jwt == nil {
		return nil, fmt.Errorf("jwt service must be provided")
	}
	if cfg == nil {
		return nil, fmt.Errorf("config must be provided")
	}

	intentionSvc, err := services.NewIntentionService(db, mailer,
		services.WithRegistrationBaseURL(cfg.Registration.BaseURL),
		services.WithTokenSize(cfg.Registration.TokenLength),
	)
	if err != nil {
		return nil, err
	}
	memberSvc, err := services.NewMemberService(db)
	if err != nil {
		return nil, err
	}
	referralSvc, err := services.NewReferralService(db, intentionSvc)
	if err != nil {
		return nil, err
	}
	announcementSvc, err := services.NewAnnouncementService(db)
	if err != nil {
		return nil, err
	}
	opportunitySvc, err := services.NewOpportunityService(db)
	if err != nil {
		return nil, err
	}
	meetingSvc, err := services.NewMeetingService(db)
	if err != nil {
		return nil, err
	}
	postSvc, err := services.NewPostService(db)
	if err != nil {
		return nil, err
	}
	statsSvc, err := services.NewStatsService(db)
	if err != nil {
		return nil, err
	}

	intentionHandler := handlers.NewIntentionHandler(intentionSvc)
	memberHandler := handlers.NewMemberHandler(memberSvc, jwt)
	referralHandler := handlers.NewReferralHandler(referralSvc)
	announcementHandler := handlers.NewAnnouncementHandler(announcementSvc)
	opportunityHandler := handlers.NewOpportunityHandler(opportunitySvc)
	meetingHandler := handlers.NewMeetingHandler(meetingSvc)
	postHandler := handlers.NewPostHandler(postSvc)
	adminHandler := handlers.NewAdminHandler(statsSvc)

	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.Metrics())
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.CORS.AllowedOrigins...))

	// Health endpoint (public)
	r.GET("/health", handlers.Health(db))

	// Public routes
	public := r.Group("/api")
	{
		public.POST("/intentions", intentionHandler.Submit)
		public.GET("/intentions/validate/:token", intentionHandler.ValidateToken)
		public.PATCH("/intentions/:id/tracking", intentionHandler.UpdateTracking)
		public.POST("/members/register/:token", memberHandler.Register)
		public.POST("/members/login", memberHandler.Login)
		public.GET("/members/public/list", memberHandler.PublicList)
		public.GET("/members/:id/public", memberHandler.PublicGet)
	}

	// Member routes
	member := r.Group("/api")
	member.Use(middleware.MemberAuth(jwt))
	{
		member.POST("/members/:id/complete-profile", memberHandler.CompleteProfile)
		member.GET("/members/:id/presences", meetingHandler.MemberPresences)

		member.POST("/referrals", referralHandler.Create)
		member.POST("/referrals/intention", referralHandler.ReferAsIntention)
		member.GET("/referrals/mine", referralHandler.ListMine)
		member.GET("/referrals/:id", referralHandler.Get)
		member.PATCH("/referrals/:id/status", referralHandler.UpdateStatus)

		member.GET("/announcements", announcementHandler.ListActive)
		member.GET("/opportunities", opportunityHandler.ListActive)

		member.GET("/meetings", meetingHandler.List)
		member.GET("/meetings/:id", meetingHandler.Get)
		member.POST("/meetings/:id/presences", meetingHandler.CheckIn)

		member.GET("/posts", postHandler.List)
		member.POST("/posts", postHandler.Create)
		member.DELETE("/posts/:id", postHandler.Delete)
	}

	// Admin routes
	admin := r.Group("/api/admin")
	admin.Use(middleware.AdminAuth(cfg.Auth.AdminToken))
	{
		admin.GET("/intentions", intentionHandler.List)
		admin.GET("/intentions/:id", intentionHandler.Get)
		admin.PATCH("/intentions/:id/approve", intentionHandler.Approve)
		admin.PATCH("/intentions/:id/reject", intentionHandler.Reject)

		admin.GET("/members", memberHandler.List)
		admin.GET("/members/stats", memberHandler.Stats)
		admin.GET("/members/:id", memberHandler.Get)
		admin.PUT("/members/:id", memberHandler.Update)
		admin.POST("/members/:id/deactivate", memberHandler.Deactivate)

		admin.GET("/referrals", referralHandler.List)
		admin.GET("/referrals/stats", referralHandler.Stats)
		admin.PUT("/referrals/:id", referralHandler.Update)
		admin.DELETE("/referrals/:id", referralHandler.Delete)

		admin.GET("/announcements", announcementHandler.ListAll)
		admin.GET("/announcements/:id", announcementHandler.Get)
		admin.POST("/announcements", announcementHandler.Create)
		admin.PUT("/announcements/:id", announcementHandler.Update)
		admin.DELETE("/announcements/:id", announcementHandler.Delete)

		admin.GET("/opportunities", opportunityHandler.ListAll)
		admin.GET("/opportunities/:id", opportunityHandler.Get)
		admin.POST("/opportunities", opportunityHandler.Create)
		admin.PUT("/opportunities/:id", opportunityHandler.Update)
		admin.DELETE("/opportunities/:id", opportunityHandler.Delete)

		admin.POST("/meetings", meetingHandler.Create)
		admin.PUT("/meetings/:id", meetingHandler.Update)
		admin.DELETE("/meetings/:id", meetingHandler.Delete)
		admin.GET("/meetings/:id/presences", meetingHandler.ListPresences)

		admin.DELETE("/posts/:id", postHandler.AdminDelete)

		admin.GET("/dashboard", adminHandler.Dashboard)
	}

	// Metrics endpoint
	if cfg.Monitoring.Prometheus.Enabled {
		endpoint := cfg.Monitoring.Prometheus.Endpoint
		if endpoint == "" {
			endpoint = "/metrics"
		}
		r.GET(endpoint, gin.WrapH(promhttp.Handler()))
	}

	// NotFound fallback
	r.NoRoute(middleware.NotFoundHandler)

	return r, nil
}
