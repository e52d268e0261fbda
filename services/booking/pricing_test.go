package booking

import (
	"testing"

	"fundilink/models"

	"github.com/stretchr/testify/assert"
)

func TestComputeSplit(t *testing.T) {
	tests := []struct {
		name       string
		total      int64
		rate       float64
		commission int64
		earnings   int64
	}{
		{"five percent even", 1000, 0.05, 50, 950},
		{"five percent floors", 999, 0.05, 49, 950},
		{"tiny amount", 1, 0.05, 0, 1},
		{"zero rate", 1000, 0, 0, 1000},
		{"full rate", 1000, 1, 1000, 0},
		{"fractional bps rate", 12345, 0.0525, 648, 11697},
		{"zero total", 0, 0.05, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			commission, earnings := ComputeSplit(tt.total, tt.rate)
			assert.Equal(t, tt.commission, commission)
			assert.Equal(t, tt.earnings, earnings)
		})
	}
}

func TestComputeSplitAlwaysSumsToTotal(t *testing.T) {
	rates := []float64{0, 0.01, 0.05, 0.0733, 0.1, 0.5, 1}
	for total := int64(0); total < 5000; total += 37 {
		for _, rate := range rates {
			commission, earnings := ComputeSplit(total, rate)
			assert.Equal(t, total, commission+earnings, "total %d rate %f", total, rate)
			assert.GreaterOrEqual(t, commission, int64(0))
			assert.GreaterOrEqual(t, earnings, int64(0))
		}
	}
}

func TestTotalAmount(t *testing.T) {
	charges := []models.AdditionalCharge{
		{Description: "extra pipe", Amount: 300},
		{Description: "transport", Amount: 150},
	}
	assert.Equal(t, int64(1450), TotalAmount(1000, charges))
	assert.Equal(t, int64(1000), TotalAmount(1000, nil))
}

func TestReprice(t *testing.T) {
	p := models.Pricing{
		BaseAmount: 1000,
		AdditionalCharges: []models.AdditionalCharge{
			{Description: "materials", Amount: 500},
		},
	}
	Reprice(&p, 0.05)

	assert.Equal(t, int64(1500), p.TotalAmount)
	assert.Equal(t, int64(75), p.PlatformCommission)
	assert.Equal(t, int64(1425), p.FundiEarnings)
	assert.Equal(t, p.TotalAmount, p.PlatformCommission+p.FundiEarnings)
}
