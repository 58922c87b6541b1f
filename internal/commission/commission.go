// Package commission computes the daily money split between rider,
// restaurant and platform from raw delivery entries. Pure arithmetic, no
// side effects: the sheet store persists what this package computes.
package commission

import "github.com/shopspring/decimal" // For precise monetary calculations

// Entry is one raw delivery record as collected by the rider.
type Entry struct {
	Fee  decimal.Decimal // Delivery fee
	Comm decimal.Decimal // Restaurant commission
	Svc  decimal.Decimal // Service charge
}

// ProcessedEntry echoes the raw record with its computed admin shares.
type ProcessedEntry struct {
	Entry
	AdminFee decimal.Decimal // Admin share of the delivery fee
	AdminSvc decimal.Decimal // Admin share of the service charge
}

// Summary aggregates a full day of records.
type Summary struct {
	Records             []ProcessedEntry // Per-record results, input order preserved
	TotalDeliveryFee    decimal.Decimal  // Sum of fees
	TotalRestaurantComm decimal.Decimal  // Sum of restaurant commissions
	TotalSvc            decimal.Decimal  // Sum of service charges
	AdminCommDelivery   decimal.Decimal  // Sum of admin fee shares
	AdminCommSvc        decimal.Decimal  // Sum of admin service-charge shares
	AdminCommission     decimal.Decimal  // Fee share + svc share + full restaurant comm
	GrossEarnings       decimal.Decimal  // Everything that passed through the rider's hands
	RiderActualEarnings decimal.Decimal  // (fees - fee share) + (svc - svc share); restaurant comm excluded
}

// Fee rule: a flat cut below the threshold, a percentage at and above it.
// The threshold is exclusive on the low end: a fee of exactly 300 takes the
// percentage branch.
var (
	feeThreshold = decimal.NewFromInt(300)
	flatAdminFee = decimal.NewFromInt(10)
	adminFeeRate = decimal.NewFromFloat(0.10)
)

// Service-charge tiers are a fixed lookup: anything outside the table
// contributes zero admin share but still counts toward the gross totals.
var svcTiers = []struct {
	Charge decimal.Decimal
	Share  decimal.Decimal
}{
	{decimal.NewFromInt(50), decimal.NewFromInt(25)},
	{decimal.NewFromInt(80), decimal.NewFromInt(25)},
	{decimal.NewFromInt(120), decimal.NewFromInt(60)},
	{decimal.NewFromInt(180), decimal.NewFromInt(100)},
}

// AdminFee returns the platform's share of a single delivery fee.
func AdminFee(fee decimal.Decimal) decimal.Decimal {
	if fee.LessThan(feeThreshold) {
		return flatAdminFee
	}
	return fee.Mul(adminFeeRate)
}

// AdminSvc returns the platform's share of a single service charge.
func AdminSvc(svc decimal.Decimal) decimal.Decimal {
	for _, tier := range svcTiers {
		if svc.Equal(tier.Charge) {
			return tier.Share
		}
	}
	return decimal.Zero
}

// Compute runs the split over an ordered day of entries. Deterministic:
// identical input yields identical output, and record order only affects the
// echoed per-record slice, never the aggregates.
func Compute(entries []Entry) Summary {
	s := Summary{
		Records:             make([]ProcessedEntry, 0, len(entries)),
		TotalDeliveryFee:    decimal.Zero,
		TotalRestaurantComm: decimal.Zero,
		TotalSvc:            decimal.Zero,
		AdminCommDelivery:   decimal.Zero,
		AdminCommSvc:        decimal.Zero,
	}

	for _, e := range entries {
		adminFee := AdminFee(e.Fee)
		adminSvc := AdminSvc(e.Svc)

		s.TotalDeliveryFee = s.TotalDeliveryFee.Add(e.Fee)
		s.TotalRestaurantComm = s.TotalRestaurantComm.Add(e.Comm)
		s.TotalSvc = s.TotalSvc.Add(e.Svc)
		s.AdminCommDelivery = s.AdminCommDelivery.Add(adminFee)
		s.AdminCommSvc = s.AdminCommSvc.Add(adminSvc)

		s.Records = append(s.Records, ProcessedEntry{Entry: e, AdminFee: adminFee, AdminSvc: adminSvc})
	}

	// The restaurant's commission is fully captured by the platform; the
	// rider never owned that money, so it is absent from actual earnings.
	s.AdminCommission = s.AdminCommDelivery.Add(s.AdminCommSvc).Add(s.TotalRestaurantComm)
	s.RiderActualEarnings = s.TotalDeliveryFee.Sub(s.AdminCommDelivery).
		Add(s.TotalSvc.Sub(s.AdminCommSvc))
	s.GrossEarnings = s.TotalDeliveryFee.Add(s.TotalSvc).Add(s.TotalRestaurantComm)

	return s
}
