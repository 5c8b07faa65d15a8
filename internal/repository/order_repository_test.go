package repository

import (
	"context"
	"sync"
	"testing"

	"github.com/zapshop/commerce-bot/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedProduct(t *testing.T, db *testDB, tenantID, id int64, name string, priceCents int64, category string, active bool) {
	t.Helper()
	err := db.rawDB.Create(&ProductEntity{
		ID:         id,
		TenantID:   tenantID,
		Name:       name,
		PriceCents: priceCents,
		Category:   category,
		Active:     active,
	}).Error
	require.NoError(t, err)
}

func TestOrderRepository_OpenOrderLifecycle(t *testing.T) {
	db := setupTestDB(t)
	repo := NewOrderRepository(db.DB)
	ctx := context.Background()

	t.Run("no open order initially", func(t *testing.T) {
		_, err := repo.GetOpen(ctx, 1, "+5511999990000")
		assert.ErrorIs(t, err, ErrOrderNotFound)
	})

	t.Run("create and fetch open order", func(t *testing.T) {
		created, err := repo.CreateOpen(ctx, 1, "+5511999990000", model.AttendanceModeBot)
		require.NoError(t, err)
		assert.NotZero(t, created.ID)
		assert.Equal(t, model.OrderStatusOpen, created.Status)
		assert.Equal(t, model.AttendanceModeBot, created.Mode)
		assert.Equal(t, model.AttendanceStatusNone, created.AttendanceStatus)

		got, err := repo.GetOpen(ctx, 1, "+5511999990000")
		require.NoError(t, err)
		assert.Equal(t, created.ID, got.ID)
		assert.Empty(t, got.Items)
	})

	t.Run("open order is tenant scoped", func(t *testing.T) {
		_, err := repo.GetOpen(ctx, 2, "+5511999990000")
		assert.ErrorIs(t, err, ErrOrderNotFound)
	})

	t.Run("finalize closes the order", func(t *testing.T) {
		order, err := repo.GetOpen(ctx, 1, "+5511999990000")
		require.NoError(t, err)

		err = repo.Finalize(ctx, order.ID)
		require.NoError(t, err)

		_, err = repo.GetOpen(ctx, 1, "+5511999990000")
		assert.ErrorIs(t, err, ErrOrderNotFound)
	})

	t.Run("finalize is terminal", func(t *testing.T) {
		order, err := repo.CreateOpen(ctx, 1, "+5511888880000", model.AttendanceModeBot)
		require.NoError(t, err)

		require.NoError(t, repo.Finalize(ctx, order.ID))
		assert.ErrorIs(t, repo.Finalize(ctx, order.ID), ErrOrderClosed)
	})
}

func TestOrderRepository_UpsertItem(t *testing.T) {
	db := setupTestDB(t)
	repo := NewOrderRepository(db.DB)
	ctx := context.Background()

	seedProduct(t, db, 1, 5, "chá verde", 1250, "chás", true)

	order, err := repo.CreateOpen(ctx, 1, "+5511999990000", model.AttendanceModeBot)
	require.NoError(t, err)

	t.Run("first insert", func(t *testing.T) {
		require.NoError(t, repo.UpsertItem(ctx, order.ID, 5, 2))

		got, err := repo.GetOpen(ctx, 1, "+5511999990000")
		require.NoError(t, err)
		require.Len(t, got.Items, 1)
		assert.Equal(t, 2, got.Items[0].Quantity)
	})

	t.Run("conflict merges additively", func(t *testing.T) {
		require.NoError(t, repo.UpsertItem(ctx, order.ID, 5, 3))

		got, err := repo.GetOpen(ctx, 1, "+5511999990000")
		require.NoError(t, err)
		require.Len(t, got.Items, 1)
		assert.Equal(t, 5, got.Items[0].Quantity)
	})

	t.Run("total recomputed from current prices", func(t *testing.T) {
		total, err := repo.RecomputeTotal(ctx, order.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(5*1250), total)

		// Price change mid-cart: the recompute must follow the catalog,
		// not an accumulated running total.
		err = db.rawDB.Model(&ProductEntity{}).Where("id = ?", 5).Update("price_cents", 1000).Error
		require.NoError(t, err)

		total, err = repo.RecomputeTotal(ctx, order.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(5*1000), total)
	})

	t.Run("deactivated product drops out of the total", func(t *testing.T) {
		seedProduct(t, db, 1, 7, "óleo de coco", 3000, "óleos", true)
		require.NoError(t, repo.UpsertItem(ctx, order.ID, 7, 1))

		total, err := repo.RecomputeTotal(ctx, order.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(5*1000+3000), total)

		// The stored total and the rendered cart must agree on which lines
		// count, so deactivation removes the line from both.
		err = db.rawDB.Model(&ProductEntity{}).Where("id = ?", 7).Update("active", false).Error
		require.NoError(t, err)

		total, err = repo.RecomputeTotal(ctx, order.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(5*1000), total)

		rows, err := repo.ItemsWithProducts(ctx, order.ID)
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Nil(t, rows[1].PriceCents)
	})
}

func TestOrderRepository_ItemsWithProducts(t *testing.T) {
	db := setupTestDB(t)
	repo := NewOrderRepository(db.DB)
	ctx := context.Background()

	seedProduct(t, db, 1, 5, "chá verde", 1250, "chás", true)
	seedProduct(t, db, 1, 7, "óleo de coco", 3000, "óleos", true)

	order, err := repo.CreateOpen(ctx, 1, "+5511999990000", model.AttendanceModeBot)
	require.NoError(t, err)
	require.NoError(t, repo.UpsertItem(ctx, order.ID, 5, 2))
	require.NoError(t, repo.UpsertItem(ctx, order.ID, 7, 1))

	t.Run("joins product names and prices", func(t *testing.T) {
		rows, err := repo.ItemsWithProducts(ctx, order.ID)
		require.NoError(t, err)
		require.Len(t, rows, 2)
		require.NotNil(t, rows[0].Name)
		assert.Equal(t, "chá verde", *rows[0].Name)
		assert.Equal(t, int64(1250), *rows[0].PriceCents)
	})

	t.Run("deactivated product yields nil name", func(t *testing.T) {
		err := db.rawDB.Model(&ProductEntity{}).Where("id = ?", 7).Update("active", false).Error
		require.NoError(t, err)

		rows, err := repo.ItemsWithProducts(ctx, order.ID)
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Nil(t, rows[1].Name)
		assert.Equal(t, 1, rows[1].Quantity)
	})
}

func TestOrderRepository_AttendanceFields(t *testing.T) {
	db := setupTestDB(t)
	repo := NewOrderRepository(db.DB)
	ctx := context.Background()

	order, err := repo.CreateOpen(ctx, 1, "+5511999990000", model.AttendanceModeBot)
	require.NoError(t, err)

	t.Run("set mode", func(t *testing.T) {
		require.NoError(t, repo.SetMode(ctx, order.ID, model.AttendanceModeManual))

		got, err := repo.GetOpen(ctx, 1, "+5511999990000")
		require.NoError(t, err)
		assert.Equal(t, model.AttendanceModeManual, got.Mode)
	})

	t.Run("set attendance status", func(t *testing.T) {
		require.NoError(t, repo.SetAttendanceStatus(ctx, order.ID, model.AttendanceStatusRequiresAttention))

		got, err := repo.GetOpen(ctx, 1, "+5511999990000")
		require.NoError(t, err)
		assert.Equal(t, model.AttendanceStatusRequiresAttention, got.AttendanceStatus)
	})

	t.Run("unknown order id", func(t *testing.T) {
		assert.ErrorIs(t, repo.SetMode(ctx, 9999, model.AttendanceModeBot), ErrOrderNotFound)
	})
}

func TestOrderRepository_List(t *testing.T) {
	db := setupTestDB(t)
	repo := NewOrderRepository(db.DB)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		order, err := repo.CreateOpen(ctx, 1, "+5511999990000", model.AttendanceModeBot)
		require.NoError(t, err)
		require.NoError(t, repo.Finalize(ctx, order.ID))
	}
	_, err := repo.CreateOpen(ctx, 1, "+5511999990000", model.AttendanceModeBot)
	require.NoError(t, err)
	_, err = repo.CreateOpen(ctx, 2, "+5511777770000", model.AttendanceModeBot)
	require.NoError(t, err)

	t.Run("list all for tenant", func(t *testing.T) {
		orders, total, err := repo.List(ctx, model.OrderFilter{TenantID: 1, Limit: 10})
		require.NoError(t, err)
		assert.Equal(t, int64(4), total)
		assert.Len(t, orders, 4)
	})

	t.Run("filter by status", func(t *testing.T) {
		status := model.OrderStatusFinalized
		orders, total, err := repo.List(ctx, model.OrderFilter{TenantID: 1, Status: &status, Limit: 10})
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
		assert.Len(t, orders, 3)
	})

	t.Run("other tenant sees only its own", func(t *testing.T) {
		orders, total, err := repo.List(ctx, model.OrderFilter{TenantID: 2, Limit: 10})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		assert.Len(t, orders, 1)
	})
}

// Two near-simultaneous adds for the same customer must both land: the
// row lock plus the additive upsert turn them into quantity 2, never 1.
func TestOrderRepository_ConcurrentAdds(t *testing.T) {
	db := setupTestDB(t)
	repo := NewOrderRepository(db.DB)
	ctx := context.Background()
	customer := "+5511999990000"

	seedProduct(t, db, 1, 5, "chá verde", 1250, "chás", true)
	order, err := repo.CreateOpen(ctx, 1, customer, model.AttendanceModeBot)
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = repo.WithinTransaction(ctx, func(ctx context.Context) error {
				locked, err := repo.LockOpen(ctx, 1, customer)
				if err != nil {
					return err
				}
				if err := repo.UpsertItem(ctx, locked.ID, 5, 1); err != nil {
					return err
				}
				_, err = repo.RecomputeTotal(ctx, locked.ID)
				return err
			})
		}(i)
	}
	wg.Wait()

	require.NoError(t, errs[0])
	require.NoError(t, errs[1])

	got, err := repo.GetOpen(ctx, 1, customer)
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	assert.Equal(t, 2, got.Items[0].Quantity)
	assert.Equal(t, int64(2500), got.TotalCents)
	assert.Equal(t, order.ID, got.ID)
}
