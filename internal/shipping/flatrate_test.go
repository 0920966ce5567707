package shipping_test

import (
	"context"
	"testing"
	"time"

	"github.com/dukerupert/coffee-delivery/internal/shipping"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var destination = shipping.ShippingAddress{
	PostalCode: "01310930",
	City:       "São Paulo",
	State:      "SP",
}

func TestFlatRateProvider_GetRates_SingleRate(t *testing.T) {
	provider := shipping.NewFlatRateProvider([]shipping.FlatRate{
		{ServiceName: "Entrega padrão", ServiceCode: "STD", CostCents: 350, DaysMin: 0, DaysMax: 1},
	})

	result, err := provider.GetRates(context.Background(), shipping.RateParams{
		Destination: destination,
		ItemCount:   3,
	})

	require.NoError(t, err)
	require.Len(t, result, 1)

	rate := result[0]
	assert.Equal(t, "STD", rate.RateID)
	assert.Equal(t, "Flat Rate", rate.Carrier)
	assert.Equal(t, "Entrega padrão", rate.ServiceName)
	assert.Equal(t, int64(350), rate.CostCents)
	assert.Equal(t, 0, rate.EstimatedDaysMin)
	assert.Equal(t, 1, rate.EstimatedDaysMax)
	assert.True(t, rate.EstimatedDeliveryDate.After(time.Now()))
}

func TestFlatRateProvider_GetRates_CheapestFirst(t *testing.T) {
	provider := shipping.NewFlatRateProvider([]shipping.FlatRate{
		{ServiceName: "Expressa", ServiceCode: "EXP", CostCents: 990},
		{ServiceName: "Padrão", ServiceCode: "STD", CostCents: 350},
		{ServiceName: "Retirada", ServiceCode: "PICK", CostCents: 0},
	})

	result, err := provider.GetRates(context.Background(), shipping.RateParams{Destination: destination, ItemCount: 1})

	require.NoError(t, err)
	require.Len(t, result, 3)
	assert.Equal(t, "PICK", result[0].ServiceCode)
	assert.Equal(t, "STD", result[1].ServiceCode)
	assert.Equal(t, "EXP", result[2].ServiceCode)
}

func TestFlatRateProvider_GetRates_Errors(t *testing.T) {
	tests := []struct {
		name   string
		rates  []shipping.FlatRate
		params shipping.RateParams
		want   error
	}{
		{
			name:   "no items",
			rates:  []shipping.FlatRate{{ServiceCode: "STD"}},
			params: shipping.RateParams{Destination: destination},
			want:   shipping.ErrNoItems,
		},
		{
			name:   "no configured rates",
			params: shipping.RateParams{Destination: destination, ItemCount: 1},
			want:   shipping.ErrNoRates,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := shipping.NewFlatRateProvider(tt.rates)

			result, err := provider.GetRates(context.Background(), tt.params)

			assert.Nil(t, result)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestFlatRateProvider_GetRates_WithoutDestination(t *testing.T) {
	provider := shipping.NewFlatRateProvider([]shipping.FlatRate{{ServiceCode: "STD", CostCents: 350}})

	result, err := provider.GetRates(context.Background(), shipping.RateParams{ItemCount: 2})

	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.Equal(t, int64(350), result[0].CostCents)
}

func TestShippingError_Code(t *testing.T) {
	assert.Equal(t, "invalid", shipping.ErrNoItems.ErrorCode())
	assert.Equal(t, "unavailable", shipping.ErrNoRates.ErrorCode())
}
