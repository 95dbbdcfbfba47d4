package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/marketloop/marketloop-backend/internal/payments"
	"github.com/marketloop/marketloop-backend/internal/products"
	"github.com/marketloop/marketloop-backend/pkg/db/models"
	"github.com/marketloop/marketloop-backend/pkg/enums"
	pkgerrors "github.com/marketloop/marketloop-backend/pkg/errors"
	"github.com/marketloop/marketloop-backend/pkg/logger"
	"github.com/marketloop/marketloop-backend/pkg/metrics"
	"github.com/marketloop/marketloop-backend/pkg/pagination"
	"github.com/marketloop/marketloop-backend/pkg/types"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// CheckoutConfig carries the redirect/currency settings sessions are built with.
type CheckoutConfig struct {
	BaseURL     string
	SuccessPath string
	CancelPath  string
	Currency    string
}

// Service defines the order lifecycle operations.
type Service interface {
	CreateOrder(ctx context.Context, input CreateOrderInput) (*OrderView, error)
	InitiatePayment(ctx context.Context, input InitiatePaymentInput) (*InitiatePaymentResult, error)
	ConfirmPayment(ctx context.Context, sessionID string) (*OrderView, error)
	AbandonPayment(ctx context.Context, orderID uuid.UUID, actor Actor) (*OrderView, error)
	UpdateOrderStatus(ctx context.Context, input UpdateOrderStatusInput) (*OrderView, error)
	UpdateItemStatus(ctx context.Context, input UpdateItemStatusInput) (*OrderView, error)
	GetOrder(ctx context.Context, orderID uuid.UUID, actor Actor) (*OrderView, error)
	ListBuyerOrders(ctx context.Context, actor Actor, params pagination.Params) (*OrderList, error)
	ListSellerOrders(ctx context.Context, actor Actor, params pagination.Params) (*OrderList, error)
	ListAllOrders(ctx context.Context, actor Actor, params pagination.Params) (*OrderList, error)
}

type service struct {
	repo    Repository
	ledger  products.StockLedger
	gateway payments.CheckoutGateway
	tx      txRunner
	logg    *logger.Logger
	metrics *metrics.CheckoutMetrics
	cfg     CheckoutConfig
}

// NewService builds the order service with the required dependencies.
func NewService(
	repo Repository,
	ledger products.StockLedger,
	gateway payments.CheckoutGateway,
	tx txRunner,
	logg *logger.Logger,
	checkoutMetrics *metrics.CheckoutMetrics,
	cfg CheckoutConfig,
) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if ledger == nil {
		return nil, fmt.Errorf("stock ledger required")
	}
	if gateway == nil {
		return nil, fmt.Errorf("checkout gateway required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if cfg.Currency == "" {
		cfg.Currency = "usd"
	}
	return &service{
		repo:    repo,
		ledger:  ledger,
		gateway: gateway,
		tx:      tx,
		logg:    logg,
		metrics: checkoutMetrics,
		cfg:     cfg,
	}, nil
}

// CreateOrder snapshots prices and sellers, checks stock non-bindingly, and
// persists the order as pending/unpaid. Nothing is reserved here; stock is
// only committed when payment is confirmed.
func (s *service) CreateOrder(ctx context.Context, input CreateOrderInput) (*OrderView, error) {
	if input.Buyer.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if len(input.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order requires at least one item")
	}
	for _, item := range input.Items {
		if item.ProductID == uuid.Nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "item product id required")
		}
		if item.Qty < 1 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "item quantity must be at least 1")
		}
	}
	if err := input.ShippingAddress.Validate(); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid shipping address")
	}

	productIDs := make([]uuid.UUID, 0, len(input.Items))
	for _, item := range input.Items {
		productIDs = append(productIDs, item.ProductID)
	}
	snaps, err := s.ledger.Snapshots(ctx, productIDs)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product snapshots")
	}

	order := &models.Order{
		BuyerID:         input.Buyer.UserID,
		ShippingAddress: input.ShippingAddress,
		PaymentMethod:   paymentMethodOrDefault(input.PaymentMethod),
		PaymentStatus:   enums.PaymentStatusUnpaid,
		OrderStatus:     enums.OrderStatusPending,
	}
	total := 0
	for _, item := range input.Items {
		snap, found := snaps[item.ProductID]
		if !found {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found").
				WithDetails(map[string]any{"product_id": item.ProductID})
		}
		if !snap.IsActive {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "product is not available").
				WithDetails(map[string]any{"product_id": item.ProductID})
		}
		if !snap.HasStock(item.Qty) {
			return nil, pkgerrors.New(pkgerrors.CodeOutOfStock, "insufficient stock").
				WithDetails(map[string]any{
					"product_id": item.ProductID,
					"requested":  item.Qty,
					"available":  snap.Stock,
				})
		}
		order.Items = append(order.Items, models.OrderItem{
			ProductID:            item.ProductID,
			SellerID:             snap.SellerID,
			Qty:                  item.Qty,
			PriceAtPurchaseCents: snap.PriceCents,
			Status:               enums.ItemStatusPending,
		})
		total += item.Qty * snap.PriceCents
	}
	order.TotalAmountCents = total

	created, err := s.repo.Create(ctx, order)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist order")
	}

	s.metrics.IncOrdersCreated()
	s.logg.Info(s.logg.WithOrderID(ctx, created.ID.String()), "order created")
	return orderView(created), nil
}

// InitiatePayment re-checks stock and opens a hosted checkout session. When
// stock ran out between creation and payment the order is cancelled outright
// so the buyer is never sent to pay for goods that no longer exist.
func (s *service) InitiatePayment(ctx context.Context, input InitiatePaymentInput) (*InitiatePaymentResult, error) {
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if input.Actor.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	order, err := s.loadOrder(ctx, input.OrderID)
	if err != nil {
		return nil, err
	}
	if order.BuyerID != input.Actor.UserID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "order does not belong to user")
	}
	if order.PaymentStatus != enums.PaymentStatusUnpaid {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order is already paid")
	}
	if order.OrderStatus != enums.OrderStatusPending {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order is not payable in its current state")
	}

	snaps, err := s.ledger.Snapshots(ctx, orderProductIDs(order))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product snapshots")
	}

	var shortages []map[string]any
	for _, item := range order.Items {
		snap, found := snaps[item.ProductID]
		if !found || !snap.HasStock(item.Qty) {
			shortages = append(shortages, map[string]any{
				"product_id": item.ProductID,
				"requested":  item.Qty,
				"available":  snap.Stock,
			})
		}
	}
	if len(shortages) > 0 {
		err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
			return s.repo.WithTx(tx).CancelOrderAndItems(ctx, order.ID)
		})
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "cancel exhausted order")
		}
		s.metrics.IncAutoCancellations()
		s.logg.Warn(s.logg.WithOrderID(ctx, order.ID.String()), "order cancelled: stock exhausted before payment")
		return nil, pkgerrors.New(pkgerrors.CodeOutOfStock, "stock exhausted, order cancelled").
			WithDetails(shortages)
	}

	sess, err := s.gateway.CreateSession(ctx, payments.CreateSessionInput{
		OrderID:    order.ID,
		BuyerEmail: input.Actor.Email,
		Currency:   s.cfg.Currency,
		SuccessURL: s.successURL(),
		CancelURL:  s.cancelURL(order.ID),
		LineItems:  sessionLineItems(order, snaps),
	})
	if err != nil {
		return nil, err
	}

	if err := s.repo.SetCheckoutSession(ctx, order.ID, sess.ID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist checkout session")
	}

	s.metrics.IncSessionsStarted()
	s.logg.Info(s.logg.WithOrderID(ctx, order.ID.String()), "checkout session created")
	return &InitiatePaymentResult{
		OrderID:     order.ID,
		SessionID:   sess.ID,
		RedirectURL: sess.URL,
	}, nil
}

// ConfirmPayment settles a paid checkout session exactly once. The order flip
// and every stock decrement run in a single transaction; if any product ran
// out after the buyer paid, the whole commit rolls back and the order stays
// unpaid for manual reconciliation.
func (s *service) ConfirmPayment(ctx context.Context, sessionID string) (*OrderView, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "session id required")
	}

	var sess *payments.CheckoutSession
	order, err := s.repo.FindByCheckoutSession(ctx, sessionID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order by session")
		}
		// A re-initiation overwrites the stored session id, but the buyer
		// may still have paid on the earlier one. The gateway session
		// carries the order id, so resolve through it before giving up.
		sess, err = s.gateway.RetrieveSession(ctx, sessionID)
		if err != nil {
			return nil, err
		}
		if sess == nil {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no order for checkout session")
		}
		orderID, parseErr := uuid.Parse(sess.OrderID)
		if parseErr != nil {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no order for checkout session")
		}
		order, err = s.loadOrder(ctx, orderID)
		if err != nil {
			return nil, err
		}
	}
	ctx = s.logg.WithOrderID(ctx, order.ID.String())

	if order.PaymentStatus == enums.PaymentStatusPaid {
		s.metrics.IncPaymentsReplayed()
		s.logg.Info(ctx, "payment already confirmed, replaying result")
		return orderView(order), nil
	}

	if sess == nil {
		sess, err = s.gateway.RetrieveSession(ctx, sessionID)
		if err != nil {
			return nil, err
		}
	}
	if !sess.Paid() {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "payment not completed")
	}

	receipt := types.PaymentResult{
		ID:         receiptID(sess),
		Status:     string(sess.PaymentStatus),
		UpdateTime: time.Now().UTC(),
	}

	started := time.Now()
	lost := false
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		txLedger := s.ledger.WithTx(tx)

		flipped, err := txRepo.MarkPaid(ctx, order.ID, receipt, receipt.UpdateTime)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark order paid")
		}
		if !flipped {
			// Another confirmation won the race; nothing left to commit.
			lost = true
			return nil
		}

		for _, item := range order.Items {
			ok, err := txLedger.Decrement(ctx, item.ProductID, item.Qty)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decrement stock")
			}
			if !ok {
				s.metrics.IncStockConflicts()
				s.logg.Error(ctx, "stock exhausted after payment, rolling back confirmation", nil)
				return pkgerrors.New(pkgerrors.CodeStockConflict, "stock no longer available for paid order").
					WithDetails(map[string]any{
						"order_id":   order.ID,
						"product_id": item.ProductID,
						"requested":  item.Qty,
					})
			}
		}

		return txRepo.SetAllItemStatuses(ctx, order.ID, enums.ItemStatusConfirmed)
	})
	if err != nil {
		return nil, err
	}

	if lost {
		s.metrics.IncPaymentsReplayed()
	} else {
		s.metrics.IncPaymentsConfirmed()
		s.metrics.ObserveConfirmDuration(time.Since(started))
		s.logg.Info(ctx, "payment confirmed")
	}

	settled, err := s.loadOrder(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	return orderView(settled), nil
}

// AbandonPayment handles the buyer returning from the gateway's cancel leg.
// The session is simply left behind; the order remains payable.
func (s *service) AbandonPayment(ctx context.Context, orderID uuid.UUID, actor Actor) (*OrderView, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	order, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.BuyerID != actor.UserID && actor.Role != enums.UserRoleAdmin {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "order does not belong to user")
	}
	s.logg.Info(s.logg.WithOrderID(ctx, order.ID.String()), "checkout abandoned by buyer")
	return orderView(order), nil
}

// UpdateOrderStatus applies the admin-only top-level override.
func (s *service) UpdateOrderStatus(ctx context.Context, input UpdateOrderStatusInput) (*OrderView, error) {
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if !input.Target.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown order status")
	}
	if input.Actor.Role != enums.UserRoleAdmin {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "order status changes require admin role")
	}

	order, err := s.loadOrder(ctx, input.OrderID)
	if err != nil {
		return nil, err
	}
	if !CanTransitionOrder(order.OrderStatus, input.Target) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order status transition not allowed").
			WithDetails(map[string]any{"from": order.OrderStatus, "to": input.Target})
	}

	var deliveredAt *time.Time
	if input.Target == enums.OrderStatusDelivered && order.DeliveredAt == nil {
		now := time.Now().UTC()
		deliveredAt = &now
	}
	if err := s.repo.UpdateOrderStatus(ctx, order.ID, input.Target, deliveredAt); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
	}

	updated, err := s.loadOrder(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	return orderView(updated), nil
}

// UpdateItemStatus advances one item. Sellers may only touch their own items;
// admins may touch any.
func (s *service) UpdateItemStatus(ctx context.Context, input UpdateItemStatusInput) (*OrderView, error) {
	if input.OrderID == uuid.Nil || input.ItemID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order and item ids required")
	}
	if !input.Target.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown item status")
	}
	if input.Actor.Role != enums.UserRoleSeller && input.Actor.Role != enums.UserRoleAdmin {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "item status changes require seller or admin role")
	}

	order, err := s.loadOrder(ctx, input.OrderID)
	if err != nil {
		return nil, err
	}

	var item *models.OrderItem
	for i := range order.Items {
		if order.Items[i].ID == input.ItemID {
			item = &order.Items[i]
			break
		}
	}
	if item == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order item not found")
	}
	if input.Actor.Role == enums.UserRoleSeller && item.SellerID != input.Actor.UserID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "item does not belong to seller")
	}
	if !CanTransitionItem(item.Status, input.Target) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "item status transition not allowed").
			WithDetails(map[string]any{"from": item.Status, "to": input.Target})
	}

	if err := s.repo.UpdateItemStatus(ctx, item.ID, input.Target); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update item status")
	}

	updated, err := s.loadOrder(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	return orderView(updated), nil
}

func (s *service) GetOrder(ctx context.Context, orderID uuid.UUID, actor Actor) (*OrderView, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	order, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !canReadOrder(order, actor) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "order is not visible to user")
	}
	return orderView(order), nil
}

func (s *service) ListBuyerOrders(ctx context.Context, actor Actor, params pagination.Params) (*OrderList, error) {
	if actor.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	list, err := s.repo.ListBuyerOrders(ctx, actor.UserID, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list buyer orders")
	}
	return list, nil
}

func (s *service) ListSellerOrders(ctx context.Context, actor Actor, params pagination.Params) (*OrderList, error) {
	if actor.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if actor.Role != enums.UserRoleSeller && actor.Role != enums.UserRoleAdmin {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "seller order list requires seller role")
	}
	list, err := s.repo.ListSellerOrders(ctx, actor.UserID, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list seller orders")
	}
	return list, nil
}

func (s *service) ListAllOrders(ctx context.Context, actor Actor, params pagination.Params) (*OrderList, error) {
	if actor.Role != enums.UserRoleAdmin {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "order list requires admin role")
	}
	list, err := s.repo.ListAllOrders(ctx, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return list, nil
}

func (s *service) loadOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return order, nil
}

func (s *service) successURL() string {
	// Stripe substitutes the placeholder with the real session id on redirect.
	return strings.TrimRight(s.cfg.BaseURL, "/") + s.cfg.SuccessPath + "?session_id={CHECKOUT_SESSION_ID}"
}

func (s *service) cancelURL(orderID uuid.UUID) string {
	return strings.TrimRight(s.cfg.BaseURL, "/") + s.cfg.CancelPath + "?order_id=" + orderID.String()
}

func canReadOrder(order *models.Order, actor Actor) bool {
	if actor.Role == enums.UserRoleAdmin {
		return true
	}
	if order.BuyerID == actor.UserID {
		return true
	}
	if actor.Role == enums.UserRoleSeller {
		for _, item := range order.Items {
			if item.SellerID == actor.UserID {
				return true
			}
		}
	}
	return false
}

func orderProductIDs(order *models.Order) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(order.Items))
	for _, item := range order.Items {
		ids = append(ids, item.ProductID)
	}
	return ids
}

func sessionLineItems(order *models.Order, snaps map[uuid.UUID]products.Snapshot) []payments.SessionLineItem {
	lines := make([]payments.SessionLineItem, 0, len(order.Items))
	for _, item := range order.Items {
		name := snaps[item.ProductID].Title
		if name == "" {
			name = "Order item"
		}
		lines = append(lines, payments.SessionLineItem{
			Name:            name,
			UnitAmountCents: int64(item.PriceAtPurchaseCents),
			Quantity:        int64(item.Qty),
		})
	}
	return lines
}

func receiptID(sess *payments.CheckoutSession) string {
	if sess.PaymentIntentID != "" {
		return sess.PaymentIntentID
	}
	return sess.ID
}

func paymentMethodOrDefault(method string) string {
	method = strings.TrimSpace(method)
	if method == "" {
		return "stripe"
	}
	return method
}

func orderView(order *models.Order) *OrderView {
	if order == nil {
		return nil
	}
	return &OrderView{
		ID:                order.ID,
		BuyerID:           order.BuyerID,
		ShippingAddress:   order.ShippingAddress,
		PaymentMethod:     order.PaymentMethod,
		TotalAmountCents:  order.TotalAmountCents,
		PaymentStatus:     order.PaymentStatus,
		OrderStatus:       order.OrderStatus,
		CheckoutSessionID: order.CheckoutSessionID,
		PaymentResult:     order.PaymentResult,
		PaidAt:            order.PaidAt,
		DeliveredAt:       order.DeliveredAt,
		CreatedAt:         order.CreatedAt,
		Items:             itemViews(order.Items, uuid.Nil),
	}
}
