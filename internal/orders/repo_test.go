package orders

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/marketloop/marketloop-backend/pkg/db/models"
	"github.com/marketloop/marketloop-backend/pkg/enums"
	"github.com/marketloop/marketloop-backend/pkg/pagination"
	"github.com/marketloop/marketloop-backend/pkg/types"
)

func setupOrdersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	orders := `
CREATE TABLE IF NOT EXISTS orders (
  id TEXT PRIMARY KEY,
  buyer_id TEXT NOT NULL,
  shipping_address TEXT NOT NULL,
  payment_method TEXT NOT NULL DEFAULT 'stripe',
  total_amount_cents INTEGER NOT NULL,
  payment_status TEXT NOT NULL DEFAULT 'unpaid',
  order_status TEXT NOT NULL DEFAULT 'pending',
  checkout_session_id TEXT,
  payment_result TEXT,
  paid_at DATETIME,
  delivered_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`
	orderItems := `
CREATE TABLE IF NOT EXISTS order_items (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  product_id TEXT NOT NULL,
  seller_id TEXT NOT NULL,
  qty INTEGER NOT NULL,
  price_at_purchase_cents INTEGER NOT NULL,
  status TEXT NOT NULL DEFAULT 'pending',
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(orders).Error)
	require.NoError(t, db.Exec(orderItems).Error)
	return db
}

func seedOrder(t *testing.T, repo Repository, buyerID uuid.UUID, items ...models.OrderItem) *models.Order {
	t.Helper()
	total := 0
	for i := range items {
		if items[i].ID == uuid.Nil {
			items[i].ID = uuid.New()
		}
		if items[i].Status == "" {
			items[i].Status = enums.ItemStatusPending
		}
		total += items[i].Qty * items[i].PriceAtPurchaseCents
	}
	order := &models.Order{
		ID:      uuid.New(),
		BuyerID: buyerID,
		ShippingAddress: types.ShippingAddress{
			Address: "1 Main St", City: "Springfield", PostalCode: "12345", Country: "US",
		},
		PaymentMethod:    "stripe",
		TotalAmountCents: total,
		PaymentStatus:    enums.PaymentStatusUnpaid,
		OrderStatus:      enums.OrderStatusPending,
		Items:            items,
	}
	created, err := repo.Create(context.Background(), order)
	require.NoError(t, err)
	return created
}

func testItem(sellerID uuid.UUID, qty, priceCents int) models.OrderItem {
	return models.OrderItem{
		ID:                   uuid.New(),
		ProductID:            uuid.New(),
		SellerID:             sellerID,
		Qty:                  qty,
		PriceAtPurchaseCents: priceCents,
		Status:               enums.ItemStatusPending,
	}
}

func TestCreateAndFindOrderWithItems(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	sellerID := uuid.New()
	order := seedOrder(t, repo, uuid.New(), testItem(sellerID, 2, 500), testItem(sellerID, 1, 300))

	found, err := repo.FindByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, 1300, found.TotalAmountCents)
	assert.Equal(t, 1300, found.RecomputedTotalCents())
	require.Len(t, found.Items, 2)
	assert.Equal(t, enums.ItemStatusPending, found.Items[0].Status)
	assert.Equal(t, "Springfield", found.ShippingAddress.City)
}

func TestFindByCheckoutSession(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	order := seedOrder(t, repo, uuid.New(), testItem(uuid.New(), 1, 100))

	_, err := repo.FindByCheckoutSession(ctx, "cs_none")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	require.NoError(t, repo.SetCheckoutSession(ctx, order.ID, "cs_first"))
	found, err := repo.FindByCheckoutSession(ctx, "cs_first")
	require.NoError(t, err)
	assert.Equal(t, order.ID, found.ID)
	require.Len(t, found.Items, 1)

	// Re-initiation overwrites the abandoned session.
	require.NoError(t, repo.SetCheckoutSession(ctx, order.ID, "cs_second"))
	_, err = repo.FindByCheckoutSession(ctx, "cs_first")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	found, err = repo.FindByCheckoutSession(ctx, "cs_second")
	require.NoError(t, err)
	assert.Equal(t, order.ID, found.ID)
}

func TestMarkPaidFlipsExactlyOnce(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	order := seedOrder(t, repo, uuid.New(), testItem(uuid.New(), 1, 100))
	receipt := types.PaymentResult{ID: "pi_123", Status: "paid", UpdateTime: time.Now().UTC()}
	paidAt := time.Now().UTC()

	flipped, err := repo.MarkPaid(ctx, order.ID, receipt, paidAt)
	require.NoError(t, err)
	assert.True(t, flipped)

	flipped, err = repo.MarkPaid(ctx, order.ID, receipt, paidAt)
	require.NoError(t, err)
	assert.False(t, flipped, "second flip must be rejected")

	found, err := repo.FindByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.PaymentStatusPaid, found.PaymentStatus)
	assert.Equal(t, enums.OrderStatusConfirmed, found.OrderStatus)
	require.NotNil(t, found.PaymentResult)
	assert.Equal(t, "pi_123", found.PaymentResult.ID)
	require.NotNil(t, found.PaidAt)
}

func TestCancelOrderAndItems(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	order := seedOrder(t, repo, uuid.New(), testItem(uuid.New(), 1, 100), testItem(uuid.New(), 2, 200))

	require.NoError(t, repo.CancelOrderAndItems(ctx, order.ID))

	found, err := repo.FindByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusCancelled, found.OrderStatus)
	for _, item := range found.Items {
		assert.Equal(t, enums.ItemStatusCancelled, item.Status)
	}
	// Payment status is untouched by cancellation.
	assert.Equal(t, enums.PaymentStatusUnpaid, found.PaymentStatus)
}

func TestUpdateOrderStatusStampsDeliveredAt(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	order := seedOrder(t, repo, uuid.New(), testItem(uuid.New(), 1, 100))
	now := time.Now().UTC()

	require.NoError(t, repo.UpdateOrderStatus(ctx, order.ID, enums.OrderStatusDelivered, &now))

	found, err := repo.FindByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusDelivered, found.OrderStatus)
	require.NotNil(t, found.DeliveredAt)
}

func TestListBuyerOrdersPaginates(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	buyerID := uuid.New()
	for i := 0; i < 5; i++ {
		order := seedOrder(t, repo, buyerID, testItem(uuid.New(), 1, 100))
		// Distinct created_at values keep cursor ordering deterministic.
		createdAt := time.Now().UTC().Add(-time.Duration(i) * time.Minute)
		require.NoError(t, db.Model(&models.Order{}).
			Where("id = ?", order.ID).
			UpdateColumn("created_at", createdAt).Error)
	}
	seedOrder(t, repo, uuid.New(), testItem(uuid.New(), 1, 100))

	first, err := repo.ListBuyerOrders(ctx, buyerID, pagination.Params{Limit: 3})
	require.NoError(t, err)
	assert.Len(t, first.Orders, 3)
	require.NotEmpty(t, first.NextCursor)

	second, err := repo.ListBuyerOrders(ctx, buyerID, pagination.Params{Limit: 3, Cursor: first.NextCursor})
	require.NoError(t, err)
	assert.Len(t, second.Orders, 2)
	assert.Empty(t, second.NextCursor)

	seen := map[uuid.UUID]bool{}
	for _, o := range append(first.Orders, second.Orders...) {
		assert.Equal(t, buyerID, o.BuyerID)
		assert.False(t, seen[o.ID], "order %s returned twice", o.ID)
		seen[o.ID] = true
	}
}

func TestListSellerOrdersFiltersItems(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	sellerID := uuid.New()
	otherSeller := uuid.New()

	mixed := seedOrder(t, repo, uuid.New(),
		testItem(sellerID, 1, 100),
		testItem(otherSeller, 2, 200),
	)
	seedOrder(t, repo, uuid.New(), testItem(otherSeller, 1, 300))

	list, err := repo.ListSellerOrders(ctx, sellerID, pagination.Params{})
	require.NoError(t, err)
	require.Len(t, list.Orders, 1)

	row := list.Orders[0]
	assert.Equal(t, mixed.ID, row.ID)
	require.Len(t, row.Items, 1, "foreign sellers' items must be filtered out")
	assert.Equal(t, sellerID, row.Items[0].SellerID)
}

func TestListAllOrders(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	seedOrder(t, repo, uuid.New(), testItem(uuid.New(), 1, 100))
	seedOrder(t, repo, uuid.New(), testItem(uuid.New(), 1, 200))

	list, err := repo.ListAllOrders(ctx, pagination.Params{})
	require.NoError(t, err)
	assert.Len(t, list.Orders, 2)
}
