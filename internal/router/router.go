package router

import (
	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"
	"github.com/lifeevents/les/internal/cloudinary"
	"github.com/lifeevents/les/internal/config"
	"github.com/lifeevents/les/internal/handler"
	"github.com/lifeevents/les/internal/logic"
	"github.com/lifeevents/les/internal/paystack"
	"github.com/lifeevents/les/internal/tribute"
	"github.com/lifeevents/les/internal/wallet"
	"gorm.io/gorm"
)

func Setup(db *gorm.DB, cfg *config.Config, paystackClient *paystack.Client, chainClient *wallet.Client, uploads *cloudinary.Client, tributes *tribute.Generator) *gin.Engine {
	r := gin.Default()

	r.Use(gin.Logger())
	r.Use(gin.Recovery())
	r.Use(corsMiddleware())

	if cfg.Server.Mode != "release" {
		pprof.Register(r)
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"service": "lifeevents-service",
		})
	})

	ledgerLogic := logic.NewLedgerLogic(db)
	reconLogic := logic.NewReconciliationLogic(db, ledgerLogic)

	// Provider-pushed webhooks sit outside the API group
	webhookHandler := handler.NewWebhookHandler(cfg.Paystack.SecretKey, ledgerLogic, reconLogic, tributes)
	r.POST("/webhooks/paystack", webhookHandler.HandlePaystack)

	v1 := r.Group("/api/v1")
	{
		eventHandler := handler.NewEventHandler(db)
		events := v1.Group("/events")
		{
			events.POST("", eventHandler.CreateEvent)
			events.GET("", eventHandler.GetEvents)
			events.GET("/:id", eventHandler.GetEvent)
			events.PUT("/:id", eventHandler.UpdateEvent)
			events.GET("/:id/contributions", eventHandler.GetEventContributions)
			events.GET("/:id/stats", eventHandler.GetEventStats)
			events.GET("/:id/tributes", eventHandler.GetEventTributes)
		}

		organizers := v1.Group("/organizers")
		{
			organizers.GET("/:id/events", eventHandler.GetOrganizerEvents)
			organizers.GET("/:id/stats", eventHandler.GetOrganizerStats)
		}

		paymentHandler := handler.NewPaymentHandler(paystackClient, ledgerLogic, reconLogic, cfg.App.BaseURL)
		payments := v1.Group("/payments")
		{
			payments.POST("/initialize", paymentHandler.Initialize)
			payments.POST("/verify", paymentHandler.Verify)
		}

		profileHandler := handler.NewProfileHandler(db)
		profiles := v1.Group("/profiles")
		{
			profiles.GET("/:wallet", profileHandler.GetProfile)
			profiles.PUT("/:wallet", profileHandler.UpdateProfile)
		}

		walletHandler := handler.NewWalletHandler(db, chainClient)
		walletGroup := v1.Group("/wallet")
		{
			walletGroup.POST("/session", walletHandler.Session)
			walletGroup.GET("/:address/balance", walletHandler.Balance)
		}

		if uploads != nil {
			uploadHandler := handler.NewUploadHandler(uploads)
			v1.POST("/uploads/event-image", uploadHandler.EventImage)
		}
	}

	return r
}

// CORS middleware
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
