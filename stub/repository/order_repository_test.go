package repositories

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anithaparamashivam/oas-e2e/stub/models"
)

func newOrder(id string, created time.Time) *models.Order {
	return &models.Order{
		ID:         id,
		CustomerID: "CUST-1",
		Items:      []models.OrderItem{{ProductID: "PROD-001", Quantity: 1, Price: 29.99}},
		Status:     models.StatusPending,
		CreatedAt:  created,
	}
}

func TestMemoryOrderRepository_CreateAndFind(t *testing.T) {
	repo := NewMemoryOrderRepository()
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newOrder("ORD-1", time.Now())))
	assert.ErrorIs(t, repo.Create(ctx, newOrder("ORD-1", time.Now())), ErrOrderExists)

	got, err := repo.FindByID(ctx, "ORD-1")
	require.NoError(t, err)
	assert.Equal(t, "CUST-1", got.CustomerID)

	_, err = repo.FindByID(ctx, "ORD-404")
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestMemoryOrderRepository_ReturnsCopies(t *testing.T) {
	repo := NewMemoryOrderRepository()
	ctx := context.Background()
	o := newOrder("ORD-1", time.Now())
	require.NoError(t, repo.Create(ctx, o))

	o.Items[0].Quantity = 99
	got, err := repo.FindByID(ctx, "ORD-1")
	require.NoError(t, err)
	got.Items[0].Name = "mutated"

	again, err := repo.FindByID(ctx, "ORD-1")
	require.NoError(t, err)
	assert.Equal(t, 1, again.Items[0].Quantity)
	assert.Empty(t, again.Items[0].Name)
}

func TestMemoryOrderRepository_FindAllOrdered(t *testing.T) {
	repo := NewMemoryOrderRepository()
	ctx := context.Background()
	base := time.Now()
	require.NoError(t, repo.Create(ctx, newOrder("ORD-B", base.Add(time.Second))))
	require.NoError(t, repo.Create(ctx, newOrder("ORD-A", base)))

	all, err := repo.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "ORD-A", all[0].ID)
	assert.Equal(t, "ORD-B", all[1].ID)
}

func TestMemoryOrderRepository_UpdateIsAtomic(t *testing.T) {
	repo := NewMemoryOrderRepository()
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, newOrder("ORD-1", time.Now())))

	boom := errors.New("boom")
	_, err := repo.Update(ctx, "ORD-1", func(o *models.Order) error {
		o.Status = models.StatusShipped
		return boom
	})
	assert.ErrorIs(t, err, boom)

	got, _ := repo.FindByID(ctx, "ORD-1")
	assert.Equal(t, models.StatusPending, got.Status)

	updated, err := repo.Update(ctx, "ORD-1", func(o *models.Order) error {
		o.Status = models.StatusConfirmed
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusConfirmed, updated.Status)

	_, err = repo.Update(ctx, "ORD-404", func(*models.Order) error { return nil })
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestMemoryOrderRepository_Delete(t *testing.T) {
	repo := NewMemoryOrderRepository()
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, newOrder("ORD-1", time.Now())))

	require.NoError(t, repo.Delete(ctx, "ORD-1"))
	assert.ErrorIs(t, repo.Delete(ctx, "ORD-1"), ErrOrderNotFound)
}

func TestMemoryOrderRepository_ConcurrentCreates(t *testing.T) {
	repo := NewMemoryOrderRepository()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = repo.Create(ctx, newOrder(fmt.Sprintf("ORD-%d", i), time.Now()))
		}(i)
	}
	wg.Wait()

	all, err := repo.FindAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 50)
}
