package router

import (
	"tokyolore/config"
	"tokyolore/internal/handler"
	"tokyolore/internal/middleware"
	"tokyolore/internal/repository"
	"tokyolore/internal/service"
	"tokyolore/internal/snapshot"
	"tokyolore/pkg/cloudinary"
	"tokyolore/pkg/payment"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func Setup(cfg *config.Config, db *gorm.DB, snapshots snapshot.Store, gateway payment.Gateway, cloud cloudinary.Client) *gin.Engine {
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RateLimit(middleware.NewInMemoryRateLimiter(cfg.Server.RateLimitRequests, cfg.Server.RateLimitWindow)))

	// Repositories
	userRepo := repository.NewUserRepository(db)
	storyRepo := repository.NewStoryRepository(db)
	cartRepo := repository.NewCartRepository(db)
	ledgerRepo := repository.NewLedgerRepository(db)

	// Services
	authSvc := service.NewAuthService(cfg, userRepo)
	cartSvc := service.NewCartService(cartRepo, storyRepo)
	checkoutSvc := service.NewCheckoutService(&cfg.Checkout, cartRepo, storyRepo, snapshots, gateway)
	reconcileSvc := service.NewReconcileService(gateway, snapshots, ledgerRepo, cartRepo, storyRepo)

	// Handlers
	authHandler := handler.NewAuthHandler(authSvc, userRepo)
	googleOAuthHandler := handler.NewGoogleOAuthHandler(cfg, authSvc)
	storyHandler := handler.NewStoryHandler(storyRepo, ledgerRepo, cloud)
	cartHandler := handler.NewCartHandler(cartSvc)
	checkoutHandler := handler.NewCheckoutHandler(checkoutSvc, reconcileSvc, snapshots, gateway)
	webhookHandler := handler.NewStripeWebhookHandler(&cfg.Stripe, reconcileSvc)
	historyHandler := handler.NewHistoryHandler(ledgerRepo, storyRepo)

	var pinger handler.Pinger
	if p, ok := snapshots.(handler.Pinger); ok {
		pinger = p
	}
	healthHandler := handler.NewHealthHandler(db, pinger)

	authMw := middleware.AuthRequired(&cfg.JWT)
	authOpt := middleware.AuthOptional(&cfg.JWT)

	r.GET("/api/health", healthHandler.Health)

	api := r.Group("/api/v1")
	{
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
			authGroup.POST("/refresh", authHandler.Refresh)
			authGroup.PATCH("/change-password", authMw, authHandler.ChangePassword)
			authGroup.GET("/google", googleOAuthHandler.Redirect)
			authGroup.GET("/google/callback", googleOAuthHandler.Callback)
			authGroup.POST("/google/token", googleOAuthHandler.Token)
		}

		stories := api.Group("/stories")
		{
			stories.GET("", storyHandler.List)
			stories.GET("/:id", authOpt, storyHandler.Get)
			stories.GET("/user/:user_id", storyHandler.ListByUser)
			stories.POST("", authOpt, storyHandler.Create)
		}

		me := api.Group("/me")
		me.Use(authMw)
		{
			me.GET("/profile", authHandler.Me)
			me.PATCH("/profile", authHandler.UpdateProfile)
			me.GET("/stories", storyHandler.MyStories)
			me.GET("/cart", cartHandler.Get)
			me.POST("/cart", cartHandler.Add)
			me.PATCH("/cart/:story_id", cartHandler.UpdateQuantity)
			me.DELETE("/cart/:story_id", cartHandler.Remove)
			me.DELETE("/cart", cartHandler.Clear)
			me.GET("/history", historyHandler.History)
			me.GET("/purchased-stories", historyHandler.PurchasedStories)
		}

		admin := api.Group("/admin")
		admin.Use(authMw, middleware.RequireRole("ADMIN"))
		{
			admin.DELETE("/stories/:id", storyHandler.Delete)
		}

		payments := api.Group("/payments")
		payments.Use(authMw)
		{
			payments.POST("/checkout", checkoutHandler.StartCartCheckout)
			payments.POST("/raffle", checkoutHandler.StartRaffleCheckout)
			payments.POST("/reconcile", checkoutHandler.Reconcile)
			payments.GET("/session/:session_id", checkoutHandler.GetSession)
			payments.GET("/snapshot/:key", checkoutHandler.GetSnapshot)
		}

		api.POST("/webhooks/stripe", webhookHandler.Handle)
	}

	return r
}
