package commission

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

func TestAdminFeeBoundary(t *testing.T) {
	cases := []struct {
		fee  string
		want string
	}{
		{"0", "10"},
		{"250", "10"},
		{"299.99", "10"},
		{"300", "30"},     // exactly 300 takes the percentage branch
		{"300.01", "30.001"},
		{"400", "40"},
	}
	for _, tc := range cases {
		got := AdminFee(d(tc.fee))
		assert.True(t, got.Equal(d(tc.want)), "fee %s: got %s want %s", tc.fee, got, tc.want)
	}
}

func TestAdminSvcTiers(t *testing.T) {
	cases := []struct {
		svc  string
		want string
	}{
		{"50", "25"},
		{"80", "25"},
		{"120", "60"},
		{"180", "100"},
		{"99", "0"},  // off-table values contribute nothing
		{"0", "0"},
		{"181", "0"},
	}
	for _, tc := range cases {
		got := AdminSvc(d(tc.svc))
		assert.True(t, got.Equal(d(tc.want)), "svc %s: got %s want %s", tc.svc, got, tc.want)
	}
}

func TestComputeTwoRecordDay(t *testing.T) {
	entries := []Entry{
		{Fee: d("250"), Comm: d("20"), Svc: d("50")},
		{Fee: d("400"), Comm: d("30"), Svc: d("120")},
	}
	s := Compute(entries)

	assert.True(t, s.TotalDeliveryFee.Equal(d("650")))
	assert.True(t, s.TotalSvc.Equal(d("170")))
	assert.True(t, s.TotalRestaurantComm.Equal(d("50")))
	assert.True(t, s.AdminCommDelivery.Equal(d("50")), "10 flat + 40 percentage")
	assert.True(t, s.AdminCommSvc.Equal(d("85")), "25 + 60 from the tier table")
	assert.True(t, s.AdminCommission.Equal(d("185")))
	assert.True(t, s.RiderActualEarnings.Equal(d("685")))
	assert.True(t, s.GrossEarnings.Equal(d("870")))

	require.Len(t, s.Records, 2)
	assert.True(t, s.Records[0].AdminFee.Equal(d("10")))
	assert.True(t, s.Records[0].AdminSvc.Equal(d("25")))
	assert.True(t, s.Records[1].AdminFee.Equal(d("40")))
	assert.True(t, s.Records[1].AdminSvc.Equal(d("60")))
}

// The platform's take plus the rider's take must add back up to the money
// that is actually splittable: fees plus service charges. Restaurant
// commission sits entirely on the platform side and must never double count.
func TestSplitIdentity(t *testing.T) {
	days := [][]Entry{
		{},
		{{Fee: d("100"), Comm: d("0"), Svc: d("50")}},
		{{Fee: d("300"), Comm: d("15"), Svc: d("80")}, {Fee: d("299.99"), Comm: d("5"), Svc: d("99")}},
		{{Fee: d("1234.56"), Comm: d("78.90"), Svc: d("180")}, {Fee: d("0"), Comm: d("0"), Svc: d("0")}},
	}
	for i, entries := range days {
		s := Compute(entries)
		left := s.AdminCommission.Add(s.RiderActualEarnings)
		right := s.TotalDeliveryFee.Add(s.TotalSvc).Add(s.TotalRestaurantComm)
		assert.True(t, left.Equal(right), "day %d: %s != %s", i, left, right)
	}
}

func TestComputeDeterministic(t *testing.T) {
	entries := []Entry{
		{Fee: d("250"), Comm: d("20"), Svc: d("50")},
		{Fee: d("400"), Comm: d("30"), Svc: d("120")},
	}
	a := Compute(entries)
	b := Compute(entries)
	assert.True(t, a.AdminCommission.Equal(b.AdminCommission))
	assert.True(t, a.RiderActualEarnings.Equal(b.RiderActualEarnings))

	// Reversed order moves the echoed records but not the aggregates.
	rev := Compute([]Entry{entries[1], entries[0]})
	assert.True(t, a.AdminCommission.Equal(rev.AdminCommission))
	assert.True(t, a.GrossEarnings.Equal(rev.GrossEarnings))
}

func TestComputeEmptyDay(t *testing.T) {
	s := Compute(nil)
	assert.True(t, s.AdminCommission.IsZero())
	assert.True(t, s.RiderActualEarnings.IsZero())
	assert.True(t, s.GrossEarnings.IsZero())
	assert.Empty(t, s.Records)
}
