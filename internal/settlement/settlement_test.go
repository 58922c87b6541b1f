package settlement

import (
	"testing"

	"fleet_wallet/internal/commission"
	"fleet_wallet/internal/domain"
	"fleet_wallet/internal/sheet"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const treasuryID = 1

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	// One connection, or each pooled conn would see its own empty :memory: DB.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&domain.User{}, &domain.Wallet{}, &domain.Transaction{}, &domain.DailySheet{}))
	require.NoError(t, db.Create(&domain.User{ID: treasuryID, Name: "HQ", Mobile: "0001", Password: "x", Role: domain.RoleAdmin}).Error)
	require.NoError(t, db.Create(&domain.User{ID: 2, Name: "Karim", Mobile: "0100", Password: "x", Role: domain.RoleRider}).Error)
	return db
}

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

func submitFixtureSheet(t *testing.T, db *gorm.DB) domain.DailySheet {
	t.Helper()
	sh, err := sheet.NewStore(db).Submit(2, "2026-08-30", []commission.Entry{
		{Fee: d("250"), Comm: d("20"), Svc: d("50")},
		{Fee: d("400"), Comm: d("30"), Svc: d("120")},
	})
	require.NoError(t, err)
	return sh
}

func walletOf(t *testing.T, db *gorm.DB, userID uint) domain.Wallet {
	t.Helper()
	var w domain.Wallet
	require.NoError(t, db.Where("user_id = ?", userID).First(&w).Error)
	return w
}

func TestApproveSettlesSheet(t *testing.T) {
	db := newTestDB(t)
	sh := submitFixtureSheet(t, db)
	orch := New(db, treasuryID, nil)

	require.NoError(t, orch.Approve(sh.ID))

	// Rider had no wallet: auto-provisioned and driven negative by the
	// commission owed.
	rider := walletOf(t, db, 2)
	treasury := walletOf(t, db, treasuryID)
	assert.True(t, rider.Balance.Equal(d("-185")), "rider balance: %s", rider.Balance)
	assert.True(t, treasury.Earnings.Equal(d("185")), "treasury earnings: %s", treasury.Earnings)
	assert.True(t, treasury.CashOnHand.IsZero(), "settlement moves no physical cash")

	// Two-sided journal: one debit on the rider, one credit on the treasury.
	var txs []domain.Transaction
	require.NoError(t, db.Order("id asc").Find(&txs).Error)
	require.Len(t, txs, 2)

	assert.Equal(t, rider.ID, txs[0].WalletID)
	assert.Equal(t, domain.TxDeduction, txs[0].Type)
	assert.True(t, txs[0].Amount.Equal(d("-185")))
	assert.True(t, txs[0].BalanceAfter.Equal(d("-185")))

	assert.Equal(t, treasury.ID, txs[1].WalletID)
	assert.Equal(t, domain.TxSheetEarnings, txs[1].Type)
	assert.True(t, txs[1].Amount.Equal(d("185")))
	assert.True(t, txs[1].BalanceAfter.Equal(d("185")), "snapshot is post-credit earnings")

	var settled domain.DailySheet
	require.NoError(t, db.First(&settled, sh.ID).Error)
	assert.Equal(t, domain.SheetApproved, settled.Status)
}

func TestApproveTwiceFails(t *testing.T) {
	db := newTestDB(t)
	sh := submitFixtureSheet(t, db)
	orch := New(db, treasuryID, nil)

	require.NoError(t, orch.Approve(sh.ID))
	err := orch.Approve(sh.ID)
	assert.ErrorIs(t, err, domain.ErrSheetAlreadyProcessed)

	// The second call moved nothing.
	rider := walletOf(t, db, 2)
	treasury := walletOf(t, db, treasuryID)
	assert.True(t, rider.Balance.Equal(d("-185")))
	assert.True(t, treasury.Earnings.Equal(d("185")))

	var count int64
	require.NoError(t, db.Model(&domain.Transaction{}).Count(&count).Error)
	assert.EqualValues(t, 2, count, "no extra journal entries")
}

func TestApproveUsesSubmittedCommission(t *testing.T) {
	db := newTestDB(t)
	sh := submitFixtureSheet(t, db)
	orch := New(db, treasuryID, nil)

	// Tamper with a computed aggregate after submission: approval must
	// charge exactly the stored admin_commission, no recomputation.
	require.NoError(t, db.Model(&domain.DailySheet{}).Where("id = ?", sh.ID).
		Update("admin_commission", d("42")).Error)

	require.NoError(t, orch.Approve(sh.ID))
	rider := walletOf(t, db, 2)
	assert.True(t, rider.Balance.Equal(d("-42")), "balance: %s", rider.Balance)
}

func TestApproveMissingSheet(t *testing.T) {
	db := newTestDB(t)
	orch := New(db, treasuryID, nil)
	err := orch.Approve(999)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestApproveLocksAgainstResubmission(t *testing.T) {
	db := newTestDB(t)
	sh := submitFixtureSheet(t, db)
	orch := New(db, treasuryID, nil)
	require.NoError(t, orch.Approve(sh.ID))

	_, err := sheet.NewStore(db).Submit(2, "2026-08-30", []commission.Entry{
		{Fee: d("1"), Comm: d("0"), Svc: d("0")},
	})
	assert.ErrorIs(t, err, domain.ErrSheetLocked)
}
