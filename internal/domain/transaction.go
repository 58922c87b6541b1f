package domain

import "github.com/shopspring/decimal" // For precise monetary amounts

// Transaction types
const (
	TxRecharge      = "recharge"       // Cash in: rider balance credited
	TxDeduction     = "deduction"      // Rider balance debited
	TxWithdraw      = "withdraw"       // Admin profit withdrawal
	TxRefund        = "refund"         // Rider balance paid back out in cash
	TxSheetEarnings = "sheet_earnings" // Treasury credit from an approved daily sheet
)

// Transaction Model: append-only journal of every wallet mutation.
// Never updated or deleted after creation.
type Transaction struct {
	ID           uint            `gorm:"primaryKey" json:"id"`                    // Primary key
	WalletID     uint            `gorm:"index;not null" json:"wallet_id"`         // Foreign key to the mutated Wallet
	AdminID      *uint           `json:"admin_id"`                                // Acting admin/actor id (reference, not ownership)
	Amount       decimal.Decimal `gorm:"type:decimal(15,2)" json:"amount"`        // Signed amount: positive=credit, negative=debit
	Type         string          `gorm:"index" json:"type"`                       // recharge, deduction, withdraw, refund, sheet_earnings
	Description  string          `json:"description"`                             // Free-text reason
	BalanceAfter decimal.Decimal `gorm:"type:decimal(15,2)" json:"balance_after"` // Post-mutation snapshot: balance for rider-side entries, earnings for admin-side entries
	CreatedAt    int64           `gorm:"autoCreateTime:milli" json:"created_at"`  // Timestamp of creation in milliseconds
}
