package domain

import "github.com/shopspring/decimal" // For precise monetary amounts

// Wallet Model. Every actor owns exactly one wallet; the three amounts are
// tracked independently and only ever move inside a journaled transaction.
type Wallet struct {
	ID         uint            `gorm:"primaryKey" json:"id"`                            // Primary key
	UserID     uint            `gorm:"uniqueIndex" json:"user_id"`                      // Foreign key to User
	Balance    decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"balance"`      // Rider's spendable funds
	CashOnHand decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"cash_on_hand"` // Physical cash the admin is accountable for
	Earnings   decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"earnings"`     // Platform profit accrual
}
