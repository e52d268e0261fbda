package booking

import (
	"math"

	"fundilink/models"
)

// ComputeSplit divides a total amount between the platform commission and
// the fundi's earnings. The commission rounds down to the smallest
// currency unit and the remainder goes to the fundi, so the two parts
// always sum exactly to totalAmount. Pure and deterministic.
func ComputeSplit(totalAmount int64, commissionRate float64) (commission, earnings int64) {
	bps := int64(math.Round(commissionRate * 10000))
	commission = totalAmount * bps / 10000
	earnings = totalAmount - commission
	return commission, earnings
}

// TotalAmount sums the base amount and all additional charges.
func TotalAmount(baseAmount int64, charges []models.AdditionalCharge) int64 {
	total := baseAmount
	for _, c := range charges {
		total += c.Amount
	}
	return total
}

// Reprice recomputes the derived pricing fields in place. Callers must
// not invoke it once payment has settled; financial figures freeze at
// settlement.
func Reprice(p *models.Pricing, commissionRate float64) {
	p.TotalAmount = TotalAmount(p.BaseAmount, p.AdditionalCharges)
	p.PlatformCommission, p.FundiEarnings = ComputeSplit(p.TotalAmount, commissionRate)
}
