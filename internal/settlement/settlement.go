// Package settlement turns an approved daily sheet into money movement: the
// sheet's computed commission is debited from the rider's wallet and
// credited to the platform treasury's earnings, with a journal entry on both
// sides, all inside one transaction.
package settlement

import (
	"fleet_wallet/internal/domain" // Models and sentinel errors
	"fleet_wallet/internal/notify" // Best-effort push notifications

	"github.com/shopspring/decimal" // For precise monetary amounts
	"github.com/sirupsen/logrus"    // Structured logging
	"gorm.io/gorm"                  // GORM ORM library
)

// Orchestrator approves daily sheets. The treasury actor id is injected at
// startup: it is deployment configuration, not a constant.
type Orchestrator struct {
	db         *gorm.DB        // Transactional store
	treasuryID uint            // Platform treasury actor
	notifier   notify.Notifier // Outbound port; never blocks the transaction
}

// New builds an orchestrator. A nil notifier disables notifications.
func New(db *gorm.DB, treasuryID uint, n notify.Notifier) *Orchestrator {
	if n == nil {
		n = notify.Nop{}
	}
	return &Orchestrator{db: db, treasuryID: treasuryID, notifier: n}
}

// getOrCreateWallet mirrors the ledger's auto-provisioning: approval must
// not fail because a rider never touched their wallet.
func getOrCreateWallet(tx *gorm.DB, userID uint) (domain.Wallet, error) {
	var wallet domain.Wallet
	err := tx.Where("user_id = ?", userID).First(&wallet).Error
	if err == nil {
		return wallet, nil
	}
	if err != gorm.ErrRecordNotFound {
		return wallet, err
	}
	wallet = domain.Wallet{
		UserID:     userID,
		Balance:    decimal.Zero,
		CashOnHand: decimal.Zero,
		Earnings:   decimal.Zero,
	}
	return wallet, tx.Create(&wallet).Error
}

// Approve settles one pending sheet. The amount is the commission computed
// at submission time; nothing is recomputed here. Approval is a one-time
// transition: a second call fails with ErrSheetAlreadyProcessed and changes
// nothing.
func (o *Orchestrator) Approve(sheetID uint) error {
	var sheet domain.DailySheet
	err := o.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&sheet, sheetID).Error; err != nil {
			return err
		}
		if sheet.Status != domain.SheetPending {
			return domain.ErrSheetAlreadyProcessed
		}

		// The admin_commission column holds fee share + svc share + full
		// restaurant commission: the total the rider owes from that day's
		// cash.
		amount := sheet.AdminCommission

		riderWallet, err := getOrCreateWallet(tx, sheet.RiderID)
		if err != nil {
			return err
		}
		treasuryWallet, err := getOrCreateWallet(tx, o.treasuryID)
		if err != nil {
			return err
		}

		if err := tx.Model(&riderWallet).Update("balance", gorm.Expr("balance - ?", amount)).Error; err != nil {
			return err // Return error to rollback
		}
		if err := tx.Model(&treasuryWallet).Update("earnings", gorm.Expr("earnings + ?", amount)).Error; err != nil {
			return err // Return error to rollback
		}

		// Two-sided journal: the rider's debit and the treasury's credit
		// each snapshot their own wallet after the move.
		if err := tx.First(&riderWallet, riderWallet.ID).Error; err != nil {
			return err
		}
		if err := tx.First(&treasuryWallet, treasuryWallet.ID).Error; err != nil {
			return err
		}
		treasuryID := o.treasuryID
		if err := tx.Create(&domain.Transaction{
			WalletID:     riderWallet.ID,
			AdminID:      &treasuryID,
			Amount:       amount.Neg(),
			Type:         domain.TxDeduction,
			Description:  "Daily Sheet Approval: " + sheet.DeliveryDate,
			BalanceAfter: riderWallet.Balance,
		}).Error; err != nil {
			return err
		}
		if err := tx.Create(&domain.Transaction{
			WalletID:     treasuryWallet.ID,
			AdminID:      &treasuryID,
			Amount:       amount,
			Type:         domain.TxSheetEarnings,
			Description:  "Daily Sheet Commission: " + sheet.DeliveryDate,
			BalanceAfter: treasuryWallet.Earnings,
		}).Error; err != nil {
			return err
		}

		// Conditional flip: if a concurrent approval won the race, zero rows
		// change and the whole transaction rolls back.
		res := tx.Model(&domain.DailySheet{}).
			Where("id = ? AND status = ?", sheet.ID, domain.SheetPending).
			Update("status", domain.SheetApproved)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrSheetAlreadyProcessed
		}
		return nil
	})
	if err != nil {
		if err != domain.ErrSheetAlreadyProcessed {
			logrus.WithFields(logrus.Fields{
				"sheet_id": sheetID,
				"error":    err.Error(),
			}).Error("Sheet approval failed")
		}
		return err
	}

	logrus.WithFields(logrus.Fields{
		"sheet_id": sheet.ID,
		"rider_id": sheet.RiderID,
		"date":     sheet.DeliveryDate,
		"amount":   sheet.AdminCommission,
	}).Info("Sheet approved and wallet deducted")
	o.notifyRider(sheet)
	return nil
}

// notifyRider fires the settlement push at the sheet's owner.
func (o *Orchestrator) notifyRider(sheet domain.DailySheet) {
	var rider domain.User
	if err := o.db.Select("device_token").First(&rider, sheet.RiderID).Error; err != nil {
		return
	}
	notify.Dispatch(o.notifier, rider.DeviceToken,
		"Daily Sheet Approved",
		"Commission of "+sheet.AdminCommission.StringFixed(2)+" for "+sheet.DeliveryDate+" was settled against your wallet")
}
