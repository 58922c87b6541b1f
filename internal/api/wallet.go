package api

import (
	"context"  // Context for Redis operations
	"net/http" // HTTP status codes
	"strconv"  // String conversion
	"strings"  // Cache key assembly
	"time"     // Cache TTLs

	"fleet_wallet/internal/domain" // Importing domain models
	"fleet_wallet/internal/ledger" // Wallet ledger service
	"fleet_wallet/internal/utils"  // Cache helpers

	"github.com/gin-gonic/gin"      // Gin web framework
	"github.com/redis/go-redis/v9"  // Redis client
	"github.com/shopspring/decimal" // For precise monetary amounts
	"gorm.io/gorm"                  // GORM ORM library
)

// invalidateJournalCache drops cached journal listings after any mutation
func invalidateJournalCache(rdb *redis.Client) {
	if rdb == nil {
		return
	}
	_ = utils.DeleteCacheByPrefix(context.Background(), rdb, "admin:txs:")
}

// GetWalletHandler returns an actor's wallet and full journal history.
// A missing wallet is provisioned on the spot, never a 404.
func GetWalletHandler(svc *ledger.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := strconv.ParseUint(c.Param("userId"), 10, 32) // Path parameter
		if err != nil || userID == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user id"})
			return
		}
		wallet, history, err := svc.Wallet(uint(userID))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load wallet"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"wallet": wallet, "history": history})
	}
}

// MoveRequest covers recharge, deduct and refund
type MoveRequest struct {
	RiderID uint            `json:"rider_id" binding:"required"` // Target rider
	AdminID uint            `json:"admin_id" binding:"required"` // Acting admin
	Amount  decimal.Decimal `json:"amount" binding:"required"`   // Amount to move
	Reason  string          `json:"reason"`                      // Optional free-text reason
	Force   bool            `json:"force"`                       // Deduct only: allow overdraft
}

// RechargeHandler credits a rider's balance against cash handed to the admin
func RechargeHandler(svc *ledger.Service, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req MoveRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil || !req.Amount.IsPositive() {
			// If invalid, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "rider_id, admin_id and a positive amount are required"})
			return
		}
		if err := svc.Recharge(req.RiderID, req.AdminID, req.Amount, req.Reason); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Recharge failed"})
			return
		}
		invalidateJournalCache(rdb)
		c.JSON(http.StatusOK, gin.H{"message": "Recharge Successful"})
	}
}

// DeductHandler debits a rider's balance. Without force, an overdraft is a
// recoverable 409 carrying CONFIRM_LOW_BALANCE; resubmitting with force=true
// lets the balance go negative.
func DeductHandler(svc *ledger.Service, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req MoveRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil || !req.Amount.IsPositive() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "rider_id, admin_id and a positive amount are required"})
			return
		}
		err := svc.Deduct(req.RiderID, req.AdminID, req.Amount, req.Reason, req.Force)
		if err == domain.ErrConfirmLowBalance {
			// Recoverable: the caller may confirm the overdraft
			c.JSON(http.StatusConflict, gin.H{"error": "CONFIRM_LOW_BALANCE", "message": "Insufficient balance, resubmit with force to proceed"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Deduction failed"})
			return
		}
		invalidateJournalCache(rdb)
		c.JSON(http.StatusOK, gin.H{"message": "Deducted Successfully"})
	}
}

// WithdrawRequest takes profit out of the cash box
type WithdrawRequest struct {
	AdminID uint            `json:"admin_id" binding:"required"` // Acting admin
	Amount  decimal.Decimal `json:"amount" binding:"required"`   // Amount to withdraw
}

// WithdrawHandler withdraws accrued earnings backed by physical cash
func WithdrawHandler(svc *ledger.Service, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req WithdrawRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil || !req.Amount.IsPositive() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "admin_id and a positive amount are required"})
			return
		}
		wallet, err := svc.WithdrawEarnings(req.AdminID, req.Amount)
		if err == domain.ErrInsufficientEarnings || err == domain.ErrInsufficientCash {
			// Hard limit, no override path
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Withdrawal failed"})
			return
		}
		invalidateJournalCache(rdb)
		c.JSON(http.StatusOK, gin.H{"message": "Withdrawal Successful", "wallet": wallet})
	}
}

// RefundHandler pays a rider's balance back out in physical cash
func RefundHandler(svc *ledger.Service, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req MoveRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil || !req.Amount.IsPositive() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "rider_id, admin_id and a positive amount are required"})
			return
		}
		err := svc.Refund(req.RiderID, req.AdminID, req.Amount, req.Reason)
		if err == domain.ErrInsufficientCash || err == domain.ErrInsufficientBalance {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Refund failed"})
			return
		}
		invalidateJournalCache(rdb)
		c.JSON(http.StatusOK, gin.H{"message": "Refund Successful"})
	}
}

// NegativeWalletsHandler lists indebted wallets with their owners
func NegativeWalletsHandler(svc *ledger.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		wallets, owners, err := svc.NegativeWallets()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch wallets"})
			return
		}
		byID := make(map[uint]domain.User, len(owners))
		for _, u := range owners {
			byID[u.ID] = u
		}
		resp := make([]gin.H, 0, len(wallets))
		for _, w := range wallets {
			owner := byID[w.UserID]
			resp = append(resp, gin.H{"wallet": w, "user": owner})
		}
		c.JSON(http.StatusOK, resp)
	}
}

// ListTransactionsHandler returns the journal, with optional filtering by
// wallet owner, type, or creation-time range, paginated and cached
func ListTransactionsHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := context.Background()
		// Build cache key from all query params
		var keyParts []string // Parts of the cache key
		// Append each query parameter to the key parts
		for _, k := range []string{"user_id", "type", "from", "to", "page", "page_size"} {
			keyParts = append(keyParts, k+"="+c.DefaultQuery(k, "")) // Append key-value pair
		}
		// Join key parts to form the final cache key
		cacheKey := "admin:txs:" + strings.Join(keyParts, ":")
		var cached struct {
			Transactions []domain.Transaction `json:"transactions"` // List of journal entries
			Page         int                  `json:"page"`         // Current page
			PageSize     int                  `json:"page_size"`    // Page size
			Total        int64                `json:"total"`        // Total number of entries
			TotalPages   int                  `json:"total_pages"`  // Total pages
		}

		// If cached data found, return it
		if rdb != nil {
			found, err := utils.GetCache(ctx, rdb, cacheKey, &cached)
			if err == nil && found {
				c.JSON(http.StatusOK, gin.H{
					"transactions": cached.Transactions, // List of journal entries
					"page":         cached.Page,         // Current page
					"page_size":    cached.PageSize,     // Page size
					"total":        cached.Total,        // Total number of entries
					"total_pages":  cached.TotalPages,   // Total pages
					"cached":       true,                // Indicate response is from cache
				})
				return
			}
		}
		page := 1      // Default page number
		pageSize := 20 // Default page size
		// Check and set page number and size from query params
		if p := c.Query("page"); p != "" {
			// If valid, set page number
			if v, err := strconv.Atoi(p); err == nil && v > 0 {
				page = v // Set page if valid
			}
		}
		// Check and set page size within limits
		if ps := c.Query("page_size"); ps != "" {
			// If valid, set page size
			if v, err := strconv.Atoi(ps); err == nil && v > 0 && v <= 100 {
				pageSize = v // Set page size
			}
		}
		offset := (page - 1) * pageSize          // Calculate offset for pagination
		query := db.Model(&domain.Transaction{}) // Start building the query
		if userID := c.Query("user_id"); userID != "" {
			// Journal rows hang off wallets, so resolve the owner's wallet first
			query = query.Where("wallet_id IN (?)",
				db.Model(&domain.Wallet{}).Select("id").Where("user_id = ?", userID))
		}
		if txType := c.Query("type"); txType != "" {
			query = query.Where("type = ?", txType) // Filter by journal entry type
		}
		if from := c.Query("from"); from != "" {
			query = query.Where("created_at >= ?", from) // Filter by start of range
		}
		if to := c.Query("to"); to != "" {
			query = query.Where("created_at <= ?", to) // Filter by end of range
		}
		var total int64 // Total entry count
		// Get total count of entries matching the filters
		if err := query.Count(&total).Error; err != nil {
			// If error occurs, return internal server error
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count transactions"})
			return
		}
		var txs []domain.Transaction // Slice to hold journal entries
		// Fetch paginated entries with filters applied
		if err := query.Order("created_at desc").Offset(offset).Limit(pageSize).Find(&txs).Error; err != nil {
			// If error occurs, return internal server error
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch transactions"})
			return
		}
		// The total number of pages
		totalPages := (int(total) + pageSize - 1) / pageSize
		respData := gin.H{
			"transactions": txs,        // List of journal entries
			"page":         page,       // Current page
			"page_size":    pageSize,   // Page size
			"total":        total,      // Total number of entries
			"total_pages":  totalPages, // Total pages
			"cached":       false,      // Indicate response is not from cache
		}
		if rdb != nil {
			// Cache the response for future requests
			_ = utils.SetCache(ctx, rdb, cacheKey, respData, 60*time.Second)
		}
		c.JSON(http.StatusOK, respData) // Return the response
	}
}
