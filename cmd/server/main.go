package main

import (
	"context" // context package is needed for Redis operations
	"log"     // log package is needed for logging

	"fleet_wallet/internal/api"        // Custom package for API handlers
	"fleet_wallet/internal/config"     // Custom package for configuration
	"fleet_wallet/internal/ledger"     // Wallet ledger service
	"fleet_wallet/internal/middleware" // Custom package for middleware
	"fleet_wallet/internal/notify"     // Push-notification port
	"fleet_wallet/internal/settlement" // Approve-sheet orchestrator
	"fleet_wallet/internal/sheet"      // Daily sheet store

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logrus for structured logging
	"gorm.io/driver/mysql"         // MySQL driver for GORM
	"gorm.io/gorm"                 // GORM ORM library
)

// Main function to set up and run the server
func main() {
	cfg := config.LoadConfig() // Load configuration

	// Setup logger
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	// Setup Data Source Name (DSN) and connect to the database
	dsn := cfg.DBUser + ":" + cfg.DBPassword + "@tcp(" + cfg.DBHost + ":" + cfg.DBPort + ")/" + cfg.DBName + "?parseTime=true"
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		logrus.Fatalf("failed to connect to DB: %v", err) // Fatal error if DB connection fails
	}

	// Setup Redis client
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr, // Redis server address
		Password: cfg.RedisPass, // Redis password
		DB:       cfg.RedisDB,   // Redis database number
	})

	// Test Redis connection
	_, err = redisClient.Ping(context.Background()).Result()
	if err != nil {
		logrus.Fatalf("failed to connect to Redis: %v", err)
	}

	// Outbound notification port: disabled when no server key is configured
	var notifier notify.Notifier = notify.Nop{}
	if cfg.FCMServerKey != "" {
		notifier = &notify.FCM{ServerKey: cfg.FCMServerKey}
	}

	// Core services. The treasury actor id is resolved once here and
	// injected; nothing downstream hard-codes it.
	ledgerSvc := ledger.New(db, notifier)
	sheetStore := sheet.NewStore(db)
	settler := settlement.New(db, cfg.TreasuryActorID, notifier)

	// Set Mode to Release if in production
	if cfg.IsProd {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup Gin
	r := gin.Default() // Gin router instance

	// Set trusted proxies for Gin
	if err := r.SetTrustedProxies([]string{"127.0.0.1"}); err != nil {
		logrus.Fatalf("failed to set trusted proxies: %v", err)
	}

	// Auth routes
	r.POST("/login", api.LoginHandler(db, cfg.JWTSecret)) // Login endpoint

	// Authenticated routes (any actor)
	authGroup := r.Group("/")
	authGroup.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret))
	authGroup.GET("/wallet/:userId", api.GetWalletHandler(ledgerSvc))                         // Wallet + journal history
	authGroup.POST("/submit-daily-sheet", api.SubmitDailySheetHandler(db, sheetStore, redisClient)) // Daily sheet submission
	authGroup.GET("/get-daily-sheet", api.GetDailySheetHandler(sheetStore))                   // Single sheet lookup
	authGroup.GET("/rider-history/:riderId", api.RiderHistoryHandler(sheetStore, redisClient)) // Sheet history

	// Admin routes (protected, admin only)
	adminGroup := r.Group("/")
	adminGroup.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret), middleware.AdminOnlyMiddleware(db))
	adminGroup.POST("/create_rider", api.CreateRiderHandler(db))                            // Rider + wallet provisioning
	adminGroup.POST("/edit-user", api.EditUserHandler(db))                                  // Profile update
	adminGroup.POST("/find-rider", api.FindRiderHandler(db))                                // Rider search
	adminGroup.POST("/recharge", api.RechargeHandler(ledgerSvc, redisClient))               // Cash in
	adminGroup.POST("/deduct", api.DeductHandler(ledgerSvc, redisClient))                   // Balance deduction
	adminGroup.POST("/withdraw", api.WithdrawHandler(ledgerSvc, redisClient))               // Profit withdrawal
	adminGroup.POST("/refund-rider", api.RefundHandler(ledgerSvc, redisClient))             // Cash refund
	adminGroup.GET("/negative-wallets", api.NegativeWalletsHandler(ledgerSvc))              // Debt view
	adminGroup.GET("/pending-sheets", api.PendingSheetsHandler(sheetStore, redisClient))    // Review backlog
	adminGroup.POST("/approve-sheet", api.ApproveSheetHandler(settler, redisClient, db))    // Settlement
	adminGroup.GET("/daily-status-report", api.DailyStatusReportHandler(sheetStore, redisClient)) // Submission report
	adminGroup.GET("/admin/transactions", api.ListTransactionsHandler(db, redisClient))     // Journal listing

	log.Println("Server running on " + cfg.AppPort) // Log server start
	r.Run(":" + cfg.AppPort)                        // Start the server on port cfg.AppPort
}
