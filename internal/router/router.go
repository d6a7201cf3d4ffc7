// internal/router/router.go
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/creolabs/creator-ledger/internal/config"
	"github.com/creolabs/creator-ledger/internal/handlers"
	"github.com/creolabs/creator-ledger/internal/ledger"
	"github.com/creolabs/creator-ledger/internal/middleware"
	"github.com/creolabs/creator-ledger/internal/services"
	"github.com/creolabs/creator-ledger/internal/utils"
)

func Initialize(db *gorm.DB, cfg *config.Config) (*gin.Engine, error) {
	// Initialize services
	ledgerService, err := services.NewLedgerService(db, cfg)
	if err != nil {
		return nil, err
	}
	storageService, err := services.NewStorageService(cfg)
	if err != nil {
		return nil, err
	}
	oracleService, err := services.NewOracleService(cfg)
	if err != nil {
		return nil, err
	}
	authService := services.NewAuthService(db, cfg)
	paymentService := services.NewPaymentService(db, cfg, ledgerService)

	// The development signer doubles as the ledger oracle so attestation
	// flows work out of the box.
	if oracleService.Enabled() {
		oracleAddr, _ := oracleService.Address()
		admin := ledger.Address(cfg.Ledger.AdminAddress)
		if err := ledgerService.SetOracle(admin, oracleAddr); err != nil {
			logrus.WithError(err).Warn("Failed to register development oracle")
		}
	}

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService, ledgerService)
	creatorHandler := handlers.NewCreatorHandler(ledgerService)
	contentHandler := handlers.NewContentHandler(ledgerService, storageService)
	collabHandler := handlers.NewCollabHandler(ledgerService)
	marketHandler := handlers.NewMarketHandler(ledgerService)
	assetHandler := handlers.NewAssetHandler(ledgerService)
	paymentHandler := handlers.NewPaymentHandler(paymentService)
	adminHandler := handlers.NewAdminHandler(ledgerService)
	oracleHandler := handlers.NewOracleHandler(oracleService)

	core := ledgerService.Core()

	// Set JWT secret
	utils.SetJWTSecret(cfg.JWT.SecretKey)

	// Initialize Gin router
	r := gin.New()

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORS())
	r.Use(middleware.GeneralRateLimit(cfg.RateLimit))

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"version": "1.0.0",
			"paused":  core.Paused(),
		})
	})

	// API v1 routes
	v1 := r.Group("/v1")
	{
		// Authentication routes
		auth := v1.Group("/auth")
		auth.Use(middleware.AuthRateLimit(cfg.RateLimit))
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.POST("/refresh", authHandler.RefreshToken)
			auth.GET("/me", middleware.AuthRequired(), authHandler.Me)
		}

		// Creator routes
		creators := v1.Group("/creators")
		{
			creators.GET("", creatorHandler.GetCreators)
			creators.GET("/:address", creatorHandler.GetCreator)
			creators.GET("/:address/following", creatorHandler.GetFollowing)
			creators.GET("/:address/subscription", middleware.OptionalAuth(), creatorHandler.GetSubscription)

			protected := creators.Group("")
			protected.Use(middleware.AuthRequired())
			{
				protected.POST("", creatorHandler.Register)
				protected.PUT("/profile", creatorHandler.UpdateProfile)
				protected.POST("/:address/follow", creatorHandler.Follow)
				protected.DELETE("/:address/follow", creatorHandler.Unfollow)
				protected.POST("/:address/subscribe", creatorHandler.Subscribe)
				protected.POST("/:address/verify",
					middleware.RoleRequired(core, ledger.RoleModerator), creatorHandler.Verify)
			}
		}

		// Subscription plan routes
		subscriptions := v1.Group("/subscriptions")
		subscriptions.Use(middleware.AuthRequired())
		{
			subscriptions.POST("", creatorHandler.CreateSubscription)
		}

		// Content routes
		contents := v1.Group("/contents")
		{
			contents.GET("", contentHandler.GetContents)
			contents.GET("/:id", contentHandler.GetContent)
			contents.POST("/:id/view", contentHandler.RecordView)

			protected := contents.Group("")
			protected.Use(middleware.AuthRequired())
			{
				protected.POST("", contentHandler.Publish)
				protected.POST("/upload", middleware.UploadRateLimit(cfg.RateLimit), contentHandler.Upload)
				protected.POST("/:id/like", contentHandler.RecordLike)
				protected.PUT("/:id/sale", contentHandler.SetForSale)
				protected.POST("/:id/purchase", contentHandler.Purchase)
				protected.POST("/:id/tip", contentHandler.Tip)
				protected.POST("/:id/ai-verification", contentHandler.VerifyAIProcessing)
			}
		}

		// Collaboration routes
		collabs := v1.Group("/collabs")
		collabs.Use(middleware.AuthRequired())
		{
			collabs.POST("", collabHandler.Propose)
			collabs.GET("/:id", collabHandler.Get)
			collabs.POST("/:id/accept", collabHandler.Accept)
			collabs.POST("/:id/complete", collabHandler.Complete)
			collabs.POST("/:id/cancel", collabHandler.Cancel)
			collabs.POST("/:id/distribute", collabHandler.Distribute)
		}

		// Marketplace routes
		market := v1.Group("/market")
		{
			market.GET("/listings", marketHandler.GetListings)
			market.GET("/listings/:assetID", marketHandler.GetListing)

			protected := market.Group("")
			protected.Use(middleware.AuthRequired())
			{
				protected.POST("/mint",
					middleware.RoleRequired(core, ledger.RoleMinter), marketHandler.MintContentAsset)
				protected.POST("/listings", marketHandler.List)
				protected.POST("/listings/:assetID/buy", marketHandler.BuyNow)
				protected.POST("/listings/:assetID/bid", marketHandler.PlaceBid)
				protected.POST("/listings/:assetID/end", marketHandler.EndAuction)
				protected.DELETE("/listings/:assetID", marketHandler.CancelListing)
			}
		}

		// Asset routes
		assets := v1.Group("/assets")
		{
			assets.GET("/:id", assetHandler.Get)
			assets.GET("/:id/proofs", assetHandler.GetProofs)

			protected := assets.Group("")
			protected.Use(middleware.AuthRequired())
			{
				protected.POST("/intelligent",
					middleware.RoleRequired(core, ledger.RoleMinter), assetHandler.MintIntelligent)
				protected.PUT("/:id/metadata", assetHandler.UpdateMetadata)
				protected.POST("/:id/authorizations", assetHandler.AuthorizeUsage)
				protected.POST("/:id/transfer", assetHandler.Transfer)
				protected.POST("/:id/proof-transfer", assetHandler.TransferWithProof)
			}
		}

		// Payment routes
		payments := v1.Group("/payments")
		payments.Use(middleware.AuthRequired())
		{
			payments.POST("/deposits", paymentHandler.CreateDeposit)
			payments.POST("/deposits/confirm", paymentHandler.ConfirmDeposit)
			payments.POST("/payouts", paymentHandler.RequestPayout)
			payments.GET("/history", paymentHandler.GetHistory)
			payments.GET("/balance", paymentHandler.GetBalance)
		}

		// Admin routes
		admin := v1.Group("/admin")
		admin.Use(middleware.AuthRequired(), middleware.AdminRequired(core))
		{
			admin.GET("/stats", adminHandler.GetStats)
			admin.GET("/events", adminHandler.GetEvents)
			admin.PUT("/fee", adminHandler.SetFee)
			admin.PUT("/treasury", adminHandler.SetTreasury)
			admin.POST("/pause", adminHandler.Pause)
			admin.POST("/unpause", adminHandler.Unpause)
			admin.POST("/roles", adminHandler.GrantRole)
			admin.DELETE("/roles", adminHandler.RevokeRole)
			admin.POST("/oracle", adminHandler.SetOracle)
			admin.POST("/emergency-withdraw", adminHandler.EmergencyWithdraw)
		}

		// Development oracle signer
		if oracleService.Enabled() {
			oracle := v1.Group("/oracle")
			{
				oracle.GET("/address", oracleHandler.GetAddress)
				oracle.POST("/sign/receipt", oracleHandler.SignReceipt)
				oracle.POST("/sign/transfer", oracleHandler.SignTransfer)
			}
		}
	}

	// Static file serving (for development)
	if cfg.Environment == "development" {
		r.Static("/uploads", "./uploads")
	}

	return r, nil
}
