package services

import "golang-food-storefront/internal/models"

// FeeSchedule is the service-charge tiering and packing fee applied at
// checkout, in whole currency units.
type FeeSchedule struct {
	TierAThreshold int64
	TierBThreshold int64
	TierACharge    int64
	TierBCharge    int64
	TierCCharge    int64
	PackingFee     int64
}

// DefaultFeeSchedule is the schedule used when nothing is configured
func DefaultFeeSchedule() FeeSchedule {
	return FeeSchedule{
		TierAThreshold: 100000,
		TierBThreshold: 20000,
		TierACharge:    1000,
		TierBCharge:    500,
		TierCCharge:    200,
		PackingFee:     0,
	}
}

// Breakdown is the priced checkout summary.
// GrandTotal == Subtotal + DeliveryFee + PackingFee + ServiceCharge.
type Breakdown struct {
	Subtotal      int64 `json:"subtotal"`
	ServiceCharge int64 `json:"service_charge"`
	DeliveryFee   int64 `json:"delivery_fee"`
	PackingFee    int64 `json:"packing_fee"`
	GrandTotal    int64 `json:"grand_total"`
}

type PricingEngine struct {
	fees FeeSchedule
}

func NewPricingEngine(fees FeeSchedule) *PricingEngine {
	return &PricingEngine{fees: fees}
}

// ServiceCharge picks the tier for subtotal, highest threshold first
func (p *PricingEngine) ServiceCharge(subtotal int64) int64 {
	switch {
	case subtotal >= p.fees.TierAThreshold:
		return p.fees.TierACharge
	case subtotal >= p.fees.TierBThreshold:
		return p.fees.TierBCharge
	default:
		return p.fees.TierCCharge
	}
}

// Quote prices entries with the fee of the selected delivery location
// (0 when none is selected).
func (p *PricingEngine) Quote(entries []models.CartEntry, deliveryFee int64) Breakdown {
	var subtotal int64
	for _, e := range entries {
		subtotal += e.LineTotal()
	}

	b := Breakdown{
		Subtotal:      subtotal,
		ServiceCharge: p.ServiceCharge(subtotal),
		DeliveryFee:   deliveryFee,
		PackingFee:    p.fees.PackingFee,
	}
	b.GrandTotal = b.Subtotal + b.DeliveryFee + b.PackingFee + b.ServiceCharge
	return b
}
