// Package sheet persists one reconciled daily delivery sheet per rider and
// date. A sheet is freely overwritten while pending and locked forever once
// approved.
package sheet

import (
	"fleet_wallet/internal/commission" // Pure money split
	"fleet_wallet/internal/domain"     // Models and sentinel errors

	"github.com/sirupsen/logrus" // Structured logging
	"gorm.io/gorm"               // GORM ORM library
)

// Store wraps sheet persistence and queries.
type Store struct {
	db *gorm.DB // Transactional store
}

// NewStore builds a sheet store.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// RiderStatus is one row of the daily status report: every rider appears,
// with or without a sheet for the day.
type RiderStatus struct {
	RiderID uint               `json:"rider_id"` // Rider id
	Name    string             `json:"name"`     // Rider display name
	Status  string             `json:"status"`   // missing, pending or approved
	Sheet   *domain.DailySheet `json:"sheet_data"` // Nil when no sheet was submitted
}

// Submit computes the commission split for a day of records and upserts the
// sheet keyed by (rider, date). A pending sheet is replaced wholesale; an
// approved sheet rejects the write with ErrSheetLocked.
func (s *Store) Submit(riderID uint, date string, entries []commission.Entry) (domain.DailySheet, error) {
	var sheet domain.DailySheet
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var existing domain.DailySheet
		err := tx.Where("rider_id = ? AND delivery_date = ?", riderID, date).First(&existing).Error
		if err != nil && err != gorm.ErrRecordNotFound {
			return err
		}
		if err == nil && existing.Status == domain.SheetApproved {
			return domain.ErrSheetLocked // No write reaches a settled sheet
		}

		sum := commission.Compute(entries)
		records := make(domain.SheetRecords, 0, len(sum.Records))
		for _, r := range sum.Records {
			records = append(records, domain.SheetRecord{
				Fee:      r.Fee,
				Comm:     r.Comm,
				Svc:      r.Svc,
				AdminFee: r.AdminFee,
				AdminSvc: r.AdminSvc,
			})
		}

		sheet = domain.DailySheet{
			RiderID:             riderID,
			DeliveryDate:        date,
			Records:             records,
			TotalDeliveryFee:    sum.TotalDeliveryFee,
			TotalRestaurantComm: sum.TotalRestaurantComm,
			TotalSvc:            sum.TotalSvc,
			AdminCommDelivery:   sum.AdminCommDelivery,
			AdminCommSvc:        sum.AdminCommSvc,
			AdminCommission:     sum.AdminCommission,
			TotalEarnings:       sum.GrossEarnings,
			ActualEarnings:      sum.RiderActualEarnings,
			Status:              domain.SheetPending, // A pre-approval edit always resets to pending
		}
		if err == nil {
			sheet.ID = existing.ID
			sheet.CreatedAt = existing.CreatedAt
			return tx.Save(&sheet).Error
		}
		return tx.Create(&sheet).Error
	})
	if err != nil {
		return sheet, err
	}

	logrus.WithFields(logrus.Fields{
		"rider_id":         riderID,
		"date":             date,
		"records":          len(entries),
		"admin_commission": sheet.AdminCommission,
	}).Info("Daily sheet saved")
	return sheet, nil
}

// Get returns the sheet for a rider and date, or nil when none exists.
// Absence is a normal, queryable state, not an error.
func (s *Store) Get(riderID uint, date string) (*domain.DailySheet, error) {
	var sheet domain.DailySheet
	err := s.db.Where("rider_id = ? AND delivery_date = ?", riderID, date).First(&sheet).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sheet, nil
}

// RiderHistory returns all of a rider's sheets, most recent date first.
func (s *Store) RiderHistory(riderID uint) ([]domain.DailySheet, error) {
	var sheets []domain.DailySheet
	err := s.db.Where("rider_id = ?", riderID).
		Order("delivery_date desc").
		Find(&sheets).Error
	return sheets, err
}

// Pending returns the unresolved backlog, oldest date first, with each
// owning rider's identity attached for the review screen.
func (s *Store) Pending() ([]domain.DailySheet, error) {
	var sheets []domain.DailySheet
	err := s.db.Where("status = ?", domain.SheetPending).
		Preload("Rider", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "name", "mobile")
		}).
		Order("delivery_date asc").
		Find(&sheets).Error
	return sheets, err
}

// StatusReport classifies every rider for one date: missing (no sheet),
// pending, or approved. Riders without a sheet still appear with nil data —
// the report is an outer join of riders against that date's sheets.
func (s *Store) StatusReport(date string) ([]RiderStatus, error) {
	var riders []domain.User
	if err := s.db.Where("role = ?", domain.RoleRider).
		Select("id", "name", "mobile", "role").
		Find(&riders).Error; err != nil {
		return nil, err
	}

	var sheets []domain.DailySheet
	if err := s.db.Where("delivery_date = ?", date).Find(&sheets).Error; err != nil {
		return nil, err
	}
	byRider := make(map[uint]*domain.DailySheet, len(sheets))
	for i := range sheets {
		byRider[sheets[i].RiderID] = &sheets[i]
	}

	report := make([]RiderStatus, 0, len(riders))
	for _, rider := range riders {
		row := RiderStatus{RiderID: rider.ID, Name: rider.Name, Status: "missing"}
		if sh, ok := byRider[rider.ID]; ok {
			row.Status = sh.Status
			r := rider // Attach rider identity so the detail view is self-contained
			sh.Rider = &r
			row.Sheet = sh
		}
		report = append(report, row)
	}
	return report, nil
}
