package router

import (
	"time"

	"linkpulse/config"
	"linkpulse/internal/domain"
	"linkpulse/internal/handler"
	"linkpulse/internal/middleware"
	"linkpulse/internal/repository"
	"linkpulse/internal/service"
	"linkpulse/internal/ws"
	"linkpulse/pkg/cloudinary"
	"linkpulse/pkg/disburse"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func Setup(cfg *config.Config, db *gorm.DB, cloud cloudinary.Client, provider disburse.Provider) *gin.Engine {
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RateLimit(middleware.NewInMemoryRateLimiter(300, 60*time.Second)))

	// Repositories
	userRepo := repository.NewUserRepository(db)
	partnerRepo := repository.NewPartnerRepository(db)
	campaignRepo := repository.NewCampaignRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	linkRepo := repository.NewLinkRepository(db)
	cookieRepo := repository.NewCookieRepository(db)
	clickRepo := repository.NewClickRepository(db)
	eventTypeRepo := repository.NewEventTypeRepository(db)
	overrideRepo := repository.NewOverrideRepository(db)
	conversionRepo := repository.NewConversionRepository(db)
	payoutRepo := repository.NewPayoutRepository(db)
	journeyRepo := repository.NewJourneyRepository(db)
	creativeRepo := repository.NewCreativeRepository(db)

	hub := ws.NewHub()

	// Services
	authSvc := service.NewAuthService(cfg, userRepo, partnerRepo)
	resolverSvc := service.NewResolverService(cookieRepo)
	trackingSvc := service.NewTrackingService(&cfg.Tracking, linkRepo, clickRepo, enrollmentRepo, resolverSvc, hub)
	commissionSvc := service.NewCommissionService(overrideRepo, conversionRepo)
	attributionSvc := service.NewAttributionService(cookieRepo, clickRepo, conversionRepo, eventTypeRepo, campaignRepo, enrollmentRepo, commissionSvc, hub)
	journeySvc := service.NewJourneyService(conversionRepo, journeyRepo)
	payoutSvc := service.NewPayoutService(&cfg.Payout, payoutRepo, conversionRepo, partnerRepo, provider)
	reconcileSvc := service.NewReconciliationService(enrollmentRepo, clickRepo, conversionRepo)

	// Handlers
	authHandler := handler.NewAuthHandler(authSvc, userRepo)
	redirectHandler := handler.NewRedirectHandler(&cfg.Tracking, trackingSvc)
	conversionWebhookHandler := handler.NewConversionWebhookHandler(&cfg.Webhook, attributionSvc)
	payoutWebhookHandler := handler.NewPayoutWebhookHandler(payoutSvc)
	campaignHandler := handler.NewCampaignHandler(campaignRepo, overrideRepo, eventTypeRepo)
	partnerHandler := handler.NewPartnerHandler(partnerRepo, campaignRepo, enrollmentRepo)
	linkHandler := handler.NewLinkHandler(linkRepo, partnerRepo, enrollmentRepo)
	payoutHandler := handler.NewPayoutHandler(payoutSvc, payoutRepo, partnerRepo)
	conversionHandler := handler.NewConversionHandler(conversionRepo, partnerRepo)
	statsHandler := handler.NewStatsHandler(journeySvc, reconcileSvc, journeyRepo, partnerRepo, campaignRepo)
	uploadHandler := handler.NewUploadHandler(cloud, creativeRepo, campaignRepo)

	authMw := middleware.AuthRequired(&cfg.JWT)
	vendorMw := middleware.RequireRole(domain.RoleVendor, domain.RoleAdmin)
	partnerMw := middleware.RequireRole(domain.RolePartner)
	adminMw := middleware.RequireRole(domain.RoleAdmin)

	// Public redirect, no auth, heavier rate limit of its own
	r.GET("/r/:code", redirectHandler.Redirect)

	api := r.Group("/api/v1")
	{
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
			authGroup.POST("/refresh", authHandler.Refresh)
			authGroup.GET("/me", authMw, authHandler.Me)
		}

		webhooks := api.Group("/webhooks")
		{
			webhooks.POST("/conversions", conversionWebhookHandler.Handle)
			webhooks.POST("/payouts", payoutWebhookHandler.Handle)
		}

		campaigns := api.Group("/campaigns")
		campaigns.Use(authMw)
		{
			campaigns.GET("", campaignHandler.List)
			campaigns.POST("", vendorMw, campaignHandler.Create)
			campaigns.GET("/:id", campaignHandler.Get)
			campaigns.PATCH("/:id", vendorMw, campaignHandler.Update)
			campaigns.GET("/:id/versions", vendorMw, campaignHandler.ListVersions)
			campaigns.GET("/:id/tiers", campaignHandler.GetTiers)
			campaigns.PUT("/:id/tiers", vendorMw, campaignHandler.ReplaceTiers)
			campaigns.GET("/:id/overrides", vendorMw, campaignHandler.ListOverrides)
			campaigns.POST("/:id/overrides", vendorMw, campaignHandler.CreateOverride)
			campaigns.DELETE("/:id/overrides/:override_id", vendorMw, campaignHandler.DeleteOverride)
			campaigns.GET("/:id/enrollments", vendorMw, partnerHandler.CampaignEnrollments)
			campaigns.GET("/:id/journeys", vendorMw, statsHandler.CampaignJourneys)
			campaigns.GET("/:id/creatives", uploadHandler.ListCreatives)
			campaigns.POST("/:id/creatives", vendorMw, uploadHandler.UploadCreative)
			campaigns.DELETE("/:id/creatives/:creative_id", vendorMw, uploadHandler.DeleteCreative)
		}

		api.GET("/event-types", authMw, campaignHandler.ListEventTypes)
		api.POST("/event-types", authMw, adminMw, campaignHandler.CreateEventType)

		partners := api.Group("/partners")
		partners.Use(authMw)
		{
			partners.GET("/me", partnerMw, partnerHandler.Me)
			partners.PATCH("/me", partnerMw, partnerHandler.UpdateMe)
			partners.GET("", vendorMw, partnerHandler.List)
			partners.POST("/:id/approve", vendorMw, partnerHandler.Approve)
			partners.POST("/:id/suspend", vendorMw, partnerHandler.Suspend)
		}

		enrollments := api.Group("/enrollments")
		enrollments.Use(authMw)
		{
			enrollments.POST("", partnerMw, partnerHandler.Enroll)
			enrollments.GET("/mine", partnerMw, partnerHandler.MyEnrollments)
			enrollments.POST("/:id/approve", vendorMw, partnerHandler.ApproveEnrollment)
			enrollments.POST("/:id/reject", vendorMw, partnerHandler.RejectEnrollment)
			enrollments.GET("/:id/links", partnerMw, linkHandler.ListByEnrollment)
		}

		links := api.Group("/links")
		links.Use(authMw, partnerMw)
		{
			links.POST("", linkHandler.Create)
			links.PATCH("/:id", linkHandler.Update)
		}

		conversions := api.Group("/conversions")
		conversions.Use(authMw)
		{
			conversions.GET("/mine", partnerMw, conversionHandler.MyConversions)
			conversions.GET("/review", vendorMw, conversionHandler.ListForReview)
			conversions.POST("/:id/approve", vendorMw, conversionHandler.Approve)
			conversions.POST("/:id/reject", vendorMw, conversionHandler.Reject)
		}

		payouts := api.Group("/payouts")
		payouts.Use(authMw)
		{
			payouts.GET("/mine", partnerMw, payoutHandler.MyPayouts)
			payouts.POST("", vendorMw, payoutHandler.Create)
			payouts.GET("", vendorMw, payoutHandler.List)
			payouts.GET("/:id", vendorMw, payoutHandler.Get)
			payouts.POST("/:id/process", vendorMw, payoutHandler.Process)
			payouts.POST("/:id/retry", vendorMw, payoutHandler.Retry)
		}

		stats := api.Group("/stats")
		stats.Use(authMw)
		{
			stats.GET("/journeys/mine", partnerMw, statsHandler.MyJourneys)
			stats.POST("/journeys/recompute", vendorMw, statsHandler.RecomputeJourneys)
			stats.POST("/reconcile", vendorMw, statsHandler.Reconcile)
		}

		api.GET("/ws/activity", handler.UpgradeActivityWS(&cfg.JWT, hub))
	}

	return r
}
