// Package ledger holds each actor's balance, cash-on-hand and earnings and
// performs the journaled wallet mutations. Every operation runs inside a
// single database transaction: the balance move and its journal row commit
// or roll back together, and the SQL-side increments serialize concurrent
// writers on the same wallet row.
package ledger

import (
	"fmt"

	"fleet_wallet/internal/domain" // Wallet, Transaction and sentinel errors
	"fleet_wallet/internal/notify" // Best-effort push notifications

	"github.com/shopspring/decimal" // For precise monetary amounts
	"github.com/sirupsen/logrus"    // Structured logging per mutation
	"gorm.io/gorm"                  // GORM ORM library
)

// Service exposes the wallet ledger operations.
type Service struct {
	db       *gorm.DB        // Transactional store
	notifier notify.Notifier // Outbound port; never blocks a transaction
}

// New builds a ledger service. A nil notifier disables notifications.
func New(db *gorm.DB, n notify.Notifier) *Service {
	if n == nil {
		n = notify.Nop{}
	}
	return &Service{db: db, notifier: n}
}

// getOrCreateWallet returns the actor's wallet, provisioning a zeroed one
// (and a placeholder rider account) if absent. Callers never observe a
// missing-wallet error for a valid actor id.
func getOrCreateWallet(tx *gorm.DB, userID uint) (domain.Wallet, error) {
	var wallet domain.Wallet
	err := tx.Where("user_id = ?", userID).First(&wallet).Error
	if err == nil {
		return wallet, nil
	}
	if err != gorm.ErrRecordNotFound {
		return wallet, err
	}

	// Make sure the owning actor row exists before hanging a wallet on it.
	var user domain.User
	if err := tx.First(&user, userID).Error; err == gorm.ErrRecordNotFound {
		user = domain.User{
			ID:       userID,
			Name:     fmt.Sprintf("User %d", userID),
			Mobile:   fmt.Sprintf("unknown-%d", userID),
			Password: "!", // No usable login until the profile is edited
			Role:     domain.RoleRider,
		}
		if err := tx.Create(&user).Error; err != nil {
			return wallet, err
		}
	} else if err != nil {
		return wallet, err
	}

	wallet = domain.Wallet{
		UserID:     userID,
		Balance:    decimal.Zero,
		CashOnHand: decimal.Zero,
		Earnings:   decimal.Zero,
	}
	if err := tx.Create(&wallet).Error; err != nil {
		return wallet, err
	}
	return wallet, nil
}

// Wallet returns an actor's wallet (auto-provisioned if missing) together
// with its journal history, newest first.
func (s *Service) Wallet(userID uint) (domain.Wallet, []domain.Transaction, error) {
	var wallet domain.Wallet
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		wallet, err = getOrCreateWallet(tx, userID)
		return err
	})
	if err != nil {
		return wallet, nil, err
	}

	var history []domain.Transaction
	if err := s.db.Where("wallet_id = ?", wallet.ID).
		Order("created_at desc").
		Find(&history).Error; err != nil {
		return wallet, nil, err
	}
	return wallet, history, nil
}

// Recharge credits a rider's balance with cash handed to an admin: the rider
// gains spendable balance, the admin now custodies the matching physical
// cash. One journal entry against the rider wallet, signed positive.
func (s *Service) Recharge(riderID, adminID uint, amount decimal.Decimal, reason string) error {
	if reason == "" {
		reason = "Cash Recharge"
	}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		riderWallet, err := getOrCreateWallet(tx, riderID)
		if err != nil {
			return err
		}
		adminWallet, err := getOrCreateWallet(tx, adminID)
		if err != nil {
			return err
		}

		if err := tx.Model(&riderWallet).Update("balance", gorm.Expr("balance + ?", amount)).Error; err != nil {
			return err // Return error to rollback
		}
		if err := tx.Model(&adminWallet).Update("cash_on_hand", gorm.Expr("cash_on_hand + ?", amount)).Error; err != nil {
			return err // Return error to rollback
		}

		// Re-read for the journal snapshot; within the transaction this
		// observes our own update.
		if err := tx.First(&riderWallet, riderWallet.ID).Error; err != nil {
			return err
		}
		return tx.Create(&domain.Transaction{
			WalletID:     riderWallet.ID,
			AdminID:      &adminID,
			Amount:       amount,
			Type:         domain.TxRecharge,
			Description:  reason,
			BalanceAfter: riderWallet.Balance,
		}).Error
	})
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"rider_id": riderID,
			"admin_id": adminID,
			"amount":   amount,
			"error":    err.Error(),
		}).Error("Recharge failed")
		return err
	}

	logrus.WithFields(logrus.Fields{
		"rider_id": riderID,
		"admin_id": adminID,
		"amount":   amount,
		"type":     domain.TxRecharge,
	}).Info("Wallet recharged")
	s.notifyActor(riderID, "Wallet Recharged", "Your wallet was credited with "+amount.StringFixed(2))
	return nil
}

// Deduct debits a rider's balance and accrues the same amount as platform
// earnings. Without force, a deduction past the available balance fails with
// ErrConfirmLowBalance so the caller can confirm the overdraft explicitly.
func (s *Service) Deduct(riderID, adminID uint, amount decimal.Decimal, reason string, force bool) error {
	if reason == "" {
		reason = "Admin Deduction"
	}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		riderWallet, err := getOrCreateWallet(tx, riderID)
		if err != nil {
			return err
		}
		if riderWallet.Balance.LessThan(amount) && !force {
			return domain.ErrConfirmLowBalance
		}
		adminWallet, err := getOrCreateWallet(tx, adminID)
		if err != nil {
			return err
		}

		if err := tx.Model(&riderWallet).Update("balance", gorm.Expr("balance - ?", amount)).Error; err != nil {
			return err // Return error to rollback
		}
		if err := tx.Model(&adminWallet).Update("earnings", gorm.Expr("earnings + ?", amount)).Error; err != nil {
			return err // Return error to rollback
		}

		if err := tx.First(&riderWallet, riderWallet.ID).Error; err != nil {
			return err
		}
		return tx.Create(&domain.Transaction{
			WalletID:     riderWallet.ID,
			AdminID:      &adminID,
			Amount:       amount.Neg(),
			Type:         domain.TxDeduction,
			Description:  reason,
			BalanceAfter: riderWallet.Balance,
		}).Error
	})
	if err != nil {
		if err != domain.ErrConfirmLowBalance {
			logrus.WithFields(logrus.Fields{
				"rider_id": riderID,
				"admin_id": adminID,
				"amount":   amount,
				"error":    err.Error(),
			}).Error("Deduction failed")
		}
		return err
	}

	logrus.WithFields(logrus.Fields{
		"rider_id": riderID,
		"admin_id": adminID,
		"amount":   amount,
		"forced":   force,
		"type":     domain.TxDeduction,
	}).Info("Balance deducted")
	s.notifyActor(riderID, "Balance Deducted", amount.StringFixed(2)+" was deducted from your wallet: "+reason)
	return nil
}

// WithdrawEarnings takes accrued profit out of the cash box. Profit can only
// leave up to the lesser of earnings and physical cash on hand: earnings not
// backed by custodied cash are not withdrawable.
func (s *Service) WithdrawEarnings(adminID uint, amount decimal.Decimal) (domain.Wallet, error) {
	var adminWallet domain.Wallet
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		adminWallet, err = getOrCreateWallet(tx, adminID)
		if err != nil {
			return err
		}
		if adminWallet.Earnings.LessThan(amount) {
			return domain.ErrInsufficientEarnings
		}
		if adminWallet.CashOnHand.LessThan(amount) {
			return domain.ErrInsufficientCash
		}

		if err := tx.Model(&adminWallet).Updates(map[string]any{
			"earnings":     gorm.Expr("earnings - ?", amount),
			"cash_on_hand": gorm.Expr("cash_on_hand - ?", amount),
		}).Error; err != nil {
			return err // Return error to rollback
		}

		if err := tx.First(&adminWallet, adminWallet.ID).Error; err != nil {
			return err
		}
		return tx.Create(&domain.Transaction{
			WalletID:     adminWallet.ID,
			AdminID:      &adminID,
			Amount:       amount.Neg(),
			Type:         domain.TxWithdraw,
			Description:  "Profit Withdrawal",
			BalanceAfter: adminWallet.Earnings,
		}).Error
	})
	if err != nil {
		return adminWallet, err
	}

	logrus.WithFields(logrus.Fields{
		"admin_id": adminID,
		"amount":   amount,
		"type":     domain.TxWithdraw,
	}).Info("Earnings withdrawn")
	return adminWallet, nil
}

// Refund pays a rider's balance back out of the cash box: the rider's
// balance and the admin's physical cash both drop. One journal entry against
// the rider wallet, signed negative.
func (s *Service) Refund(riderID, adminID uint, amount decimal.Decimal, reason string) error {
	if reason == "" {
		reason = "Balance Refund"
	}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		riderWallet, err := getOrCreateWallet(tx, riderID)
		if err != nil {
			return err
		}
		adminWallet, err := getOrCreateWallet(tx, adminID)
		if err != nil {
			return err
		}
		if adminWallet.CashOnHand.LessThan(amount) {
			return domain.ErrInsufficientCash
		}
		if riderWallet.Balance.LessThan(amount) {
			return domain.ErrInsufficientBalance
		}

		if err := tx.Model(&riderWallet).Update("balance", gorm.Expr("balance - ?", amount)).Error; err != nil {
			return err // Return error to rollback
		}
		if err := tx.Model(&adminWallet).Update("cash_on_hand", gorm.Expr("cash_on_hand - ?", amount)).Error; err != nil {
			return err // Return error to rollback
		}

		if err := tx.First(&riderWallet, riderWallet.ID).Error; err != nil {
			return err
		}
		return tx.Create(&domain.Transaction{
			WalletID:     riderWallet.ID,
			AdminID:      &adminID,
			Amount:       amount.Neg(),
			Type:         domain.TxRefund,
			Description:  reason,
			BalanceAfter: riderWallet.Balance,
		}).Error
	})
	if err != nil {
		return err
	}

	logrus.WithFields(logrus.Fields{
		"rider_id": riderID,
		"admin_id": adminID,
		"amount":   amount,
		"type":     domain.TxRefund,
	}).Info("Balance refunded")
	s.notifyActor(riderID, "Refund Issued", amount.StringFixed(2)+" was refunded in cash: "+reason)
	return nil
}

// NegativeWallets lists wallets at or below zero balance with their owners,
// the debt-collection view.
func (s *Service) NegativeWallets() ([]domain.Wallet, []domain.User, error) {
	var wallets []domain.Wallet
	if err := s.db.Where("balance <= ?", decimal.Zero).Find(&wallets).Error; err != nil {
		return nil, nil, err
	}
	ids := make([]uint, 0, len(wallets))
	for _, w := range wallets {
		ids = append(ids, w.UserID)
	}
	var owners []domain.User
	if len(ids) > 0 {
		if err := s.db.Where("id IN ?", ids).Find(&owners).Error; err != nil {
			return nil, nil, err
		}
	}
	return wallets, owners, nil
}

// notifyActor fires a push at the actor's registered device, if any.
// Lookup failures are ignored like delivery failures.
func (s *Service) notifyActor(userID uint, title, body string) {
	var user domain.User
	if err := s.db.Select("device_token").First(&user, userID).Error; err != nil {
		return
	}
	notify.Dispatch(s.notifier, user.DeviceToken, title, body)
}
