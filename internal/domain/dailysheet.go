package domain

import (
	"database/sql/driver" // Valuer interface for the records column
	"encoding/json"       // Records are persisted as a JSON document
	"errors"              // Scan error for unexpected column types

	"github.com/shopspring/decimal" // For precise monetary amounts
)

// Daily sheet statuses
const (
	SheetPending  = "pending"  // Submitted, awaiting admin approval
	SheetApproved = "approved" // Settled; immutable from here on
)

// SheetRecord is one raw delivery entry plus its computed admin shares.
type SheetRecord struct {
	Fee      decimal.Decimal `json:"fee"`       // Delivery fee collected
	Comm     decimal.Decimal `json:"comm"`      // Restaurant commission collected
	Svc      decimal.Decimal `json:"svc"`       // Service charge collected
	AdminFee decimal.Decimal `json:"admin_fee"` // Admin share of the delivery fee
	AdminSvc decimal.Decimal `json:"admin_svc"` // Admin share of the service charge
}

// SheetRecords stores the ordered record list as JSON in a single column.
type SheetRecords []SheetRecord

// Value marshals the record list for storage
func (r SheetRecords) Value() (driver.Value, error) {
	return json.Marshal(r)
}

// Scan unmarshals the stored JSON document
func (r *SheetRecords) Scan(src any) error {
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, r)
	case string:
		return json.Unmarshal([]byte(v), r)
	}
	return errors.New("unsupported type for SheetRecords")
}

// DailySheet Model: one rider's reconciled commission computation for one
// calendar date. Unique per (rider_id, delivery_date); fully overwritten by
// re-submission while pending, locked once approved.
type DailySheet struct {
	ID                  uint            `gorm:"primaryKey" json:"id"`                                      // Primary key
	RiderID             uint            `gorm:"uniqueIndex:idx_rider_date;not null" json:"rider_id"`       // Foreign key to the owning rider
	DeliveryDate        string          `gorm:"uniqueIndex:idx_rider_date;type:date" json:"delivery_date"` // Calendar date, YYYY-MM-DD
	Records             SheetRecords    `gorm:"type:longtext" json:"records"`                              // Processed delivery records
	TotalDeliveryFee    decimal.Decimal `gorm:"type:decimal(15,2)" json:"total_deliveryfee"`               // Sum of fees
	TotalRestaurantComm decimal.Decimal `gorm:"type:decimal(15,2)" json:"total_restaurantcomm"`            // Sum of restaurant commissions
	TotalSvc            decimal.Decimal `gorm:"type:decimal(15,2)" json:"total_svc"`                       // Sum of service charges
	AdminCommDelivery   decimal.Decimal `gorm:"type:decimal(15,2)" json:"admin_comm_delivery"`             // Admin share of fees
	AdminCommSvc        decimal.Decimal `gorm:"type:decimal(15,2)" json:"admin_comm_svc"`                  // Admin share of service charges
	AdminCommission     decimal.Decimal `gorm:"type:decimal(15,2)" json:"admin_commission"`                // Total owed to the platform: fee share + svc share + restaurant comm
	TotalEarnings       decimal.Decimal `gorm:"type:decimal(15,2)" json:"total_earnings"`                  // Gross cash through the rider's hands
	ActualEarnings      decimal.Decimal `gorm:"type:decimal(15,2)" json:"actual_earnings"`                 // What the rider keeps
	Status              string          `gorm:"default:pending" json:"status"`                             // pending or approved
	CreatedAt           int64           `gorm:"autoCreateTime:milli" json:"created_at"`                    // Timestamp of creation in milliseconds
	UpdatedAt           int64           `gorm:"autoUpdateTime:milli" json:"updated_at"`                    // Timestamp of last write in milliseconds
	Rider               *User           `gorm:"foreignKey:RiderID" json:"rider,omitempty"`                 // Owning rider, preloaded for admin views
}
