package shipping

import (
	"context"
	"sort"
	"time"
)

// FlatRateProvider returns predefined flat-rate delivery options
// regardless of destination, so it can quote before the address is known.
type FlatRateProvider struct {
	rates []FlatRate
	now   func() time.Time
}

// FlatRate defines a single flat-rate delivery option.
type FlatRate struct {
	ServiceName string
	ServiceCode string
	CostCents   int64
	DaysMin     int
	DaysMax     int
}

// NewFlatRateProvider creates a new flat-rate delivery provider.
func NewFlatRateProvider(rates []FlatRate) Provider {
	return &FlatRateProvider{rates: rates, now: time.Now}
}

// GetRates converts flat rates to Rate objects, cheapest first.
func (p *FlatRateProvider) GetRates(ctx context.Context, params RateParams) ([]Rate, error) {
	if params.ItemCount <= 0 {
		return nil, ErrNoItems
	}
	if len(p.rates) == 0 {
		return nil, ErrNoRates
	}

	result := make([]Rate, len(p.rates))
	for i, fr := range p.rates {
		result[i] = Rate{
			RateID:                fr.ServiceCode,
			Carrier:               "Flat Rate",
			ServiceName:           fr.ServiceName,
			ServiceCode:           fr.ServiceCode,
			CostCents:             fr.CostCents,
			EstimatedDaysMin:      fr.DaysMin,
			EstimatedDaysMax:      fr.DaysMax,
			EstimatedDeliveryDate: p.now().AddDate(0, 0, fr.DaysMax),
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].CostCents < result[j].CostCents
	})
	return result, nil
}
