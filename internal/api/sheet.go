package api

import (
	"context"  // Context for Redis operations
	"net/http" // HTTP status codes
	"strconv"  // String conversion
	"time"     // Date validation and cache TTLs

	"fleet_wallet/internal/commission" // Pure money split
	"fleet_wallet/internal/domain"     // Importing domain models
	"fleet_wallet/internal/settlement" // Approve-sheet orchestrator
	"fleet_wallet/internal/sheet"      // Daily sheet store
	"fleet_wallet/internal/utils"      // Cache helpers

	"github.com/gin-gonic/gin"      // Gin web framework
	"github.com/redis/go-redis/v9"  // Redis client
	"github.com/shopspring/decimal" // For precise monetary amounts
	"gorm.io/gorm"                  // GORM ORM library
)

// invalidateSheetCache drops cached sheet views after a sheet mutation
func invalidateSheetCache(rdb *redis.Client, riderID uint) {
	if rdb == nil {
		return
	}
	ctx := context.Background()
	_ = utils.DeleteCache(ctx, rdb, "sheets:pending")                                         // Pending backlog
	_ = utils.DeleteCacheByPrefix(ctx, rdb, "sheets:report:")                                 // Date-keyed status reports
	_ = utils.DeleteCache(ctx, rdb, "sheets:history:"+strconv.Itoa(int(riderID)))             // Rider history
}

// SheetRecordRequest is one raw delivery entry
type SheetRecordRequest struct {
	Fee  decimal.Decimal `json:"fee"`  // Delivery fee, non-negative
	Comm decimal.Decimal `json:"comm"` // Restaurant commission, non-negative
	Svc  decimal.Decimal `json:"svc"`  // Service charge, non-negative
}

// SubmitSheetRequest carries a full day of records for one rider
type SubmitSheetRequest struct {
	RiderID uint                 `json:"rider_id" binding:"required"`       // Owning rider
	Date    string               `json:"date" binding:"required"`           // Delivery date, YYYY-MM-DD
	Records []SheetRecordRequest `json:"records" binding:"required,min=1"` // At least one record
}

// SubmitDailySheetHandler computes and upserts a pending sheet. A write
// against an approved sheet is rejected with 403 LOCKED and changes nothing.
func SubmitDailySheetHandler(db *gorm.DB, store *sheet.Store, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req SubmitSheetRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "rider_id, date and at least one record are required"})
			return
		}
		// The date must be a real calendar date
		if _, err := time.Parse("2006-01-02", req.Date); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
			return
		}
		// Every field of every record must be present and non-negative
		entries := make([]commission.Entry, 0, len(req.Records))
		for i, r := range req.Records {
			if r.Fee.IsNegative() || r.Comm.IsNegative() || r.Svc.IsNegative() {
				c.JSON(http.StatusBadRequest, gin.H{"error": "record " + strconv.Itoa(i) + ": fee, comm and svc must be non-negative"})
				return
			}
			entries = append(entries, commission.Entry{Fee: r.Fee, Comm: r.Comm, Svc: r.Svc})
		}
		// The rider must exist; sheets are never orphaned
		var rider domain.User
		if err := db.First(&rider, req.RiderID).Error; err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Rider not found"})
			return
		}

		saved, err := store.Submit(req.RiderID, req.Date, entries)
		if err == domain.ErrSheetLocked {
			// Approved sheets are immutable
			c.JSON(http.StatusForbidden, gin.H{"error": "LOCKED", "message": "Sheet is approved and can no longer be edited"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save daily sheet"})
			return
		}
		invalidateSheetCache(rdb, req.RiderID)
		c.JSON(http.StatusOK, gin.H{"message": "Daily sheet saved successfully", "data": saved})
	}
}

// GetDailySheetHandler returns one sheet, or a JSON null when the rider has
// not submitted for that date — absence is a normal state
func GetDailySheetHandler(store *sheet.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		riderID, err := strconv.ParseUint(c.Query("rider_id"), 10, 32) // Query parameter
		date := c.Query("date")                                        // Query parameter
		if err != nil || riderID == 0 || date == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "rider_id and date are required"})
			return
		}
		sh, err := store.Get(uint(riderID), date)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch daily sheet"})
			return
		}
		if sh == nil {
			c.JSON(http.StatusOK, nil) // No record for that date
			return
		}
		c.JSON(http.StatusOK, sh)
	}
}

// RiderHistoryHandler returns a rider's sheets, most recent date first
func RiderHistoryHandler(store *sheet.Store, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		riderID, err := strconv.ParseUint(c.Param("riderId"), 10, 32) // Path parameter
		if err != nil || riderID == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid rider id"})
			return
		}
		ctx := context.Background()
		cacheKey := "sheets:history:" + strconv.Itoa(int(riderID)) // Cache key for this rider
		var cached []domain.DailySheet
		if rdb != nil {
			// Return cached history when fresh
			if found, err := utils.GetCache(ctx, rdb, cacheKey, &cached); err == nil && found {
				c.JSON(http.StatusOK, cached)
				return
			}
		}
		history, err := store.RiderHistory(uint(riderID))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch history"})
			return
		}
		if rdb != nil {
			_ = utils.SetCache(ctx, rdb, cacheKey, history, 60*time.Second) // Cache for 60 seconds
		}
		c.JSON(http.StatusOK, history)
	}
}

// PendingSheetsHandler returns the unresolved backlog for admin review,
// oldest first, each sheet carrying its rider's identity
func PendingSheetsHandler(store *sheet.Store, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := context.Background()
		var cached []domain.DailySheet
		if rdb != nil {
			// Return cached backlog when fresh
			if found, err := utils.GetCache(ctx, rdb, "sheets:pending", &cached); err == nil && found {
				c.JSON(http.StatusOK, cached)
				return
			}
		}
		sheets, err := store.Pending()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch pending sheets"})
			return
		}
		if rdb != nil {
			_ = utils.SetCache(ctx, rdb, "sheets:pending", sheets, 30*time.Second) // Cache for 30 seconds
		}
		c.JSON(http.StatusOK, sheets)
	}
}

// ApproveSheetRequest settles one pending sheet
type ApproveSheetRequest struct {
	SheetID uint `json:"sheet_id" binding:"required"` // Sheet to approve
}

// ApproveSheetHandler runs the settlement: debit rider, credit treasury,
// two journal entries, sheet locked — one transaction
func ApproveSheetHandler(orch *settlement.Orchestrator, rdb *redis.Client, db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ApproveSheetRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "sheet_id is required"})
			return
		}
		err := orch.Approve(req.SheetID)
		if err == domain.ErrSheetAlreadyProcessed {
			// One-time transition; the second caller gets a clean failure
			c.JSON(http.StatusBadRequest, gin.H{"error": "Sheet already processed"})
			return
		}
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Sheet not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Approval failed"})
			return
		}
		// Settlement touched a wallet and a sheet: drop both cache families
		var sh domain.DailySheet
		if err := db.First(&sh, req.SheetID).Error; err == nil {
			invalidateSheetCache(rdb, sh.RiderID)
		}
		invalidateJournalCache(rdb)
		c.JSON(http.StatusOK, gin.H{"message": "Sheet approved and wallet deducted successfully"})
	}
}

// DailyStatusReportHandler classifies every rider for one date as missing,
// pending or approved
func DailyStatusReportHandler(store *sheet.Store, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		date := c.Query("date") // Query parameter
		if date == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "date is required"})
			return
		}
		if _, err := time.Parse("2006-01-02", date); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
			return
		}
		ctx := context.Background()
		cacheKey := "sheets:report:" + date // Date-keyed cache entry
		var cached []sheet.RiderStatus
		if rdb != nil {
			// Return cached report when fresh
			if found, err := utils.GetCache(ctx, rdb, cacheKey, &cached); err == nil && found {
				c.JSON(http.StatusOK, cached)
				return
			}
		}
		report, err := store.StatusReport(date)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build status report"})
			return
		}
		if rdb != nil {
			_ = utils.SetCache(ctx, rdb, cacheKey, report, 30*time.Second) // Cache for 30 seconds
		}
		c.JSON(http.StatusOK, report)
	}
}
