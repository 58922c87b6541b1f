package sheet

import (
	"testing"

	"fleet_wallet/internal/commission"
	"fleet_wallet/internal/domain"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	// One connection, or each pooled conn would see its own empty :memory: DB.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&domain.User{}, &domain.Wallet{}, &domain.Transaction{}, &domain.DailySheet{}))
	return db
}

func seedRider(t *testing.T, db *gorm.DB, id uint, name, mobile string) {
	t.Helper()
	require.NoError(t, db.Create(&domain.User{
		ID:       id,
		Name:     name,
		Mobile:   mobile,
		Password: "x",
		Role:     domain.RoleRider,
	}).Error)
}

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

func twoRecordDay() []commission.Entry {
	return []commission.Entry{
		{Fee: d("250"), Comm: d("20"), Svc: d("50")},
		{Fee: d("400"), Comm: d("30"), Svc: d("120")},
	}
}

func TestSubmitComputesAndPersists(t *testing.T) {
	db := newTestDB(t)
	store := NewStore(db)
	seedRider(t, db, 2, "Karim", "0100")

	saved, err := store.Submit(2, "2026-08-30", twoRecordDay())
	require.NoError(t, err)

	assert.Equal(t, domain.SheetPending, saved.Status)
	assert.True(t, saved.TotalDeliveryFee.Equal(d("650")))
	assert.True(t, saved.TotalSvc.Equal(d("170")))
	assert.True(t, saved.TotalRestaurantComm.Equal(d("50")))
	assert.True(t, saved.AdminCommDelivery.Equal(d("50")))
	assert.True(t, saved.AdminCommSvc.Equal(d("85")))
	assert.True(t, saved.AdminCommission.Equal(d("185")))
	assert.True(t, saved.ActualEarnings.Equal(d("685")))
	assert.True(t, saved.TotalEarnings.Equal(d("870")))
	require.Len(t, saved.Records, 2)
	assert.True(t, saved.Records[0].AdminFee.Equal(d("10")))
	assert.True(t, saved.Records[1].AdminSvc.Equal(d("60")))

	// The records survive a round trip through the JSON column.
	var loaded domain.DailySheet
	require.NoError(t, db.First(&loaded, saved.ID).Error)
	require.Len(t, loaded.Records, 2)
	assert.True(t, loaded.Records[1].Fee.Equal(d("400")))
	assert.True(t, loaded.Records[1].AdminFee.Equal(d("40")))
}

func TestResubmitOverwritesPendingSheet(t *testing.T) {
	db := newTestDB(t)
	store := NewStore(db)
	seedRider(t, db, 2, "Karim", "0100")

	first, err := store.Submit(2, "2026-08-30", twoRecordDay())
	require.NoError(t, err)

	// Second submission fully replaces the first: no merging.
	second, err := store.Submit(2, "2026-08-30", []commission.Entry{
		{Fee: d("100"), Comm: d("5"), Svc: d("80")},
	})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID, "same (rider, date) row")
	assert.Equal(t, domain.SheetPending, second.Status)
	assert.True(t, second.TotalDeliveryFee.Equal(d("100")))
	assert.True(t, second.AdminCommission.Equal(d("40")), "10 flat + 25 svc + 5 comm")
	require.Len(t, second.Records, 1)

	var count int64
	require.NoError(t, db.Model(&domain.DailySheet{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestSubmitToApprovedSheetIsLocked(t *testing.T) {
	db := newTestDB(t)
	store := NewStore(db)
	seedRider(t, db, 2, "Karim", "0100")

	saved, err := store.Submit(2, "2026-08-30", twoRecordDay())
	require.NoError(t, err)
	require.NoError(t, db.Model(&domain.DailySheet{}).Where("id = ?", saved.ID).
		Update("status", domain.SheetApproved).Error)

	_, err = store.Submit(2, "2026-08-30", []commission.Entry{{Fee: d("1"), Comm: d("1"), Svc: d("1")}})
	assert.ErrorIs(t, err, domain.ErrSheetLocked)

	// The stored sheet is untouched.
	var loaded domain.DailySheet
	require.NoError(t, db.First(&loaded, saved.ID).Error)
	assert.Equal(t, domain.SheetApproved, loaded.Status)
	assert.True(t, loaded.TotalDeliveryFee.Equal(d("650")))
	require.Len(t, loaded.Records, 2)
}

func TestGetAbsentSheetIsNil(t *testing.T) {
	db := newTestDB(t)
	store := NewStore(db)
	seedRider(t, db, 2, "Karim", "0100")

	sh, err := store.Get(2, "2026-08-30")
	require.NoError(t, err)
	assert.Nil(t, sh, "absence is a state, not an error")

	_, err = store.Submit(2, "2026-08-30", twoRecordDay())
	require.NoError(t, err)
	sh, err = store.Get(2, "2026-08-30")
	require.NoError(t, err)
	require.NotNil(t, sh)
	assert.True(t, sh.AdminCommission.Equal(d("185")))
}

func TestRiderHistoryNewestDateFirst(t *testing.T) {
	db := newTestDB(t)
	store := NewStore(db)
	seedRider(t, db, 2, "Karim", "0100")

	for _, date := range []string{"2026-08-28", "2026-08-30", "2026-08-29"} {
		_, err := store.Submit(2, date, twoRecordDay())
		require.NoError(t, err)
	}

	history, err := store.RiderHistory(2)
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, "2026-08-30", history[0].DeliveryDate)
	assert.Equal(t, "2026-08-29", history[1].DeliveryDate)
	assert.Equal(t, "2026-08-28", history[2].DeliveryDate)
}

func TestPendingBacklogOldestFirstWithRider(t *testing.T) {
	db := newTestDB(t)
	store := NewStore(db)
	seedRider(t, db, 2, "Karim", "0100")
	seedRider(t, db, 3, "Nadia", "0200")

	_, err := store.Submit(2, "2026-08-30", twoRecordDay())
	require.NoError(t, err)
	_, err = store.Submit(3, "2026-08-28", twoRecordDay())
	require.NoError(t, err)
	approved, err := store.Submit(2, "2026-08-27", twoRecordDay())
	require.NoError(t, err)
	require.NoError(t, db.Model(&domain.DailySheet{}).Where("id = ?", approved.ID).
		Update("status", domain.SheetApproved).Error)

	pending, err := store.Pending()
	require.NoError(t, err)
	require.Len(t, pending, 2, "approved sheets excluded")
	assert.Equal(t, "2026-08-28", pending[0].DeliveryDate, "oldest unresolved first")
	assert.Equal(t, "2026-08-30", pending[1].DeliveryDate)
	require.NotNil(t, pending[0].Rider)
	assert.Equal(t, "Nadia", pending[0].Rider.Name)
	assert.Equal(t, "0200", pending[0].Rider.Mobile)
}

func TestStatusReportClassifiesEveryRider(t *testing.T) {
	db := newTestDB(t)
	store := NewStore(db)
	seedRider(t, db, 2, "Karim", "0100")
	seedRider(t, db, 3, "Nadia", "0200")
	seedRider(t, db, 4, "Omar", "0300")
	// Admins never appear in the report.
	require.NoError(t, db.Create(&domain.User{ID: 1, Name: "HQ", Mobile: "0001", Password: "x", Role: domain.RoleAdmin}).Error)

	pendingSheet, err := store.Submit(2, "2026-08-30", twoRecordDay())
	require.NoError(t, err)
	approvedSheet, err := store.Submit(3, "2026-08-30", twoRecordDay())
	require.NoError(t, err)
	require.NoError(t, db.Model(&domain.DailySheet{}).Where("id = ?", approvedSheet.ID).
		Update("status", domain.SheetApproved).Error)
	// A sheet on another date must not leak into the report.
	_, err = store.Submit(4, "2026-08-29", twoRecordDay())
	require.NoError(t, err)

	report, err := store.StatusReport("2026-08-30")
	require.NoError(t, err)
	require.Len(t, report, 3)

	byID := make(map[uint]RiderStatus)
	for _, row := range report {
		byID[row.RiderID] = row
	}
	assert.Equal(t, domain.SheetPending, byID[2].Status)
	require.NotNil(t, byID[2].Sheet)
	assert.Equal(t, pendingSheet.ID, byID[2].Sheet.ID)
	require.NotNil(t, byID[2].Sheet.Rider)
	assert.Equal(t, "Karim", byID[2].Sheet.Rider.Name)

	assert.Equal(t, domain.SheetApproved, byID[3].Status)
	assert.Equal(t, "missing", byID[4].Status)
	assert.Nil(t, byID[4].Sheet, "no sheet data for a missing day")

	_, adminListed := byID[1]
	assert.False(t, adminListed)
}
