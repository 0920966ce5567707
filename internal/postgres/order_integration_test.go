//go:build integration

package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/dukerupert/coffee-delivery/internal"
	"github.com/dukerupert/coffee-delivery/internal/domain"
	"github.com/dukerupert/coffee-delivery/internal/postgres"
)

// setupPool starts PostgreSQL in a container and applies the migrations.
func setupPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("coffee_test"),
		tcpostgres.WithUsername("coffee"),
		tcpostgres.WithPassword("coffee"),
		tcpostgres.BasicWaitStrategies(),
	)
	require.NoError(t, err, "Failed to start PostgreSQL container")
	t.Cleanup(func() {
		_ = testcontainers.TerminateContainer(container)
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	db := stdlib.OpenDBFromPool(pool)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, internal.RunMigrations(db))

	return pool
}

func TestOrderRepository_Integration(t *testing.T) {
	pool := setupPool(t)
	repo := postgres.NewOrderRepository(pool)
	ctx := context.Background()

	order := &domain.Order{
		ID:            uuid.New(),
		Number:        "CD-0000ABCD",
		PaymentMethod: domain.PaymentDebit,
		Address: domain.AddressForm{
			CEP:        "01310-930",
			Street:     "Av. Paulista",
			Number:     1000,
			Complement: "Conj. 12",
			District:   "Bela Vista",
			City:       "São Paulo",
			State:      "SP",
		},
		Summary: domain.OrderSummary{
			Items: []domain.CartItem{
				{SKU: "latte", Name: "Latte", Quantity: 2, UnitPriceCents: 990},
				{SKU: "cubano", Name: "Cubano", Quantity: 1, UnitPriceCents: 990},
			},
			ItemCount:     3,
			SubtotalCents: 2970,
			DeliveryCents: 350,
			TotalCents:    3320,
		},
		DeliveryDaysMin: 0,
		DeliveryDaysMax: 1,
		CreatedAt:       time.Now().UTC().Truncate(time.Microsecond),
	}

	t.Run("create and get", func(t *testing.T) {
		require.NoError(t, repo.CreateOrder(ctx, order))

		got, err := repo.GetOrder(ctx, order.ID)
		require.NoError(t, err)

		assert.Equal(t, order.ID, got.ID)
		assert.Equal(t, order.Number, got.Number)
		assert.Equal(t, order.PaymentMethod, got.PaymentMethod)
		assert.Equal(t, order.Address, got.Address)
		assert.Equal(t, order.Summary, got.Summary)
		assert.Equal(t, 1, got.DeliveryDaysMax)
		assert.True(t, order.CreatedAt.Equal(got.CreatedAt))
	})

	t.Run("duplicate", func(t *testing.T) {
		err := repo.CreateOrder(ctx, order)
		assert.Equal(t, domain.ECONFLICT, domain.ErrorCode(err))
	})

	t.Run("missing", func(t *testing.T) {
		_, err := repo.GetOrder(ctx, uuid.New())
		assert.ErrorIs(t, err, domain.ErrOrderNotFound)
	})
}
