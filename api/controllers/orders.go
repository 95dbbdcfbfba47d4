package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/marketloop/marketloop-backend/api/middleware"
	"github.com/marketloop/marketloop-backend/api/responses"
	"github.com/marketloop/marketloop-backend/api/validators"
	"github.com/marketloop/marketloop-backend/internal/orders"
	"github.com/marketloop/marketloop-backend/pkg/enums"
	pkgerrors "github.com/marketloop/marketloop-backend/pkg/errors"
	"github.com/marketloop/marketloop-backend/pkg/logger"
	"github.com/marketloop/marketloop-backend/pkg/pagination"
	"github.com/marketloop/marketloop-backend/pkg/types"
)

type createOrderRequest struct {
	ShippingAddress types.ShippingAddress    `json:"shipping_address" validate:"required"`
	PaymentMethod   string                   `json:"payment_method,omitempty"`
	Items           []createOrderItemRequest `json:"items" validate:"required,min=1,dive"`
}

type createOrderItemRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	Qty       int    `json:"qty" validate:"required,gt=0"`
}

type updateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// CreateOrder persists a pending order from the buyer's requested items.
func CreateOrder(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req createOrderRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items := make([]orders.NewOrderItemInput, 0, len(req.Items))
		for _, item := range req.Items {
			productID, parseErr := uuid.Parse(item.ProductID)
			if parseErr != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, parseErr, "invalid product id"))
				return
			}
			items = append(items, orders.NewOrderItemInput{ProductID: productID, Qty: item.Qty})
		}

		view, err := svc.CreateOrder(r.Context(), orders.CreateOrderInput{
			Buyer:           actor,
			ShippingAddress: req.ShippingAddress,
			PaymentMethod:   req.PaymentMethod,
			Items:           items,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, view)
	}
}

// InitiatePayment opens a hosted checkout session for a pending order.
func InitiatePayment(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		orderID, err := parseOrderID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.InitiatePayment(r.Context(), orders.InitiatePaymentInput{
			OrderID: orderID,
			Actor:   actor,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

// ConfirmPayment is the public return leg from the payment gateway. The
// session id is the only credential; the service verifies it against the
// gateway before settling anything.
func ConfirmPayment(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := strings.TrimSpace(r.URL.Query().Get("session_id"))
		if sessionID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "session_id is required"))
			return
		}

		view, err := svc.ConfirmPayment(r.Context(), sessionID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, view)
	}
}

// CancelPayment handles the buyer returning from an abandoned checkout.
// Nothing is mutated; the order simply remains pending and unpaid.
func CancelPayment(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		raw := strings.TrimSpace(r.URL.Query().Get("order_id"))
		if raw == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "order_id is required"))
			return
		}
		orderID, parseErr := uuid.Parse(raw)
		if parseErr != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, parseErr, "invalid order id"))
			return
		}

		view, err := svc.AbandonPayment(r.Context(), orderID, actor)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, view)
	}
}

// UpdateOrderStatus is the admin-only top-level status override.
func UpdateOrderStatus(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		orderID, err := parseOrderID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req updateStatusRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		target, parseErr := enums.ParseOrderStatus(req.Status)
		if parseErr != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, parseErr, "invalid order status"))
			return
		}

		view, err := svc.UpdateOrderStatus(r.Context(), orders.UpdateOrderStatusInput{
			OrderID: orderID,
			Target:  target,
			Actor:   actor,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, view)
	}
}

// UpdateItemStatus advances one order item through its lifecycle.
func UpdateItemStatus(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		orderID, err := parseOrderID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rawItemID := strings.TrimSpace(chi.URLParam(r, "itemID"))
		itemID, parseErr := uuid.Parse(rawItemID)
		if parseErr != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, parseErr, "invalid item id"))
			return
		}

		var req updateStatusRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		target, parseErr := enums.ParseItemStatus(req.Status)
		if parseErr != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, parseErr, "invalid item status"))
			return
		}

		view, err := svc.UpdateItemStatus(r.Context(), orders.UpdateItemStatusInput{
			OrderID: orderID,
			ItemID:  itemID,
			Target:  target,
			Actor:   actor,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, view)
	}
}

// MyOrders lists the authenticated buyer's own orders.
func MyOrders(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return listHandler(svc, logg, func(svc orders.Service, r *http.Request, actor orders.Actor, params pagination.Params) (*orders.OrderList, error) {
		return svc.ListBuyerOrders(r.Context(), actor, params)
	})
}

// SellerOrders lists orders containing at least one of the seller's items,
// with items filtered down to the seller's own lines.
func SellerOrders(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return listHandler(svc, logg, func(svc orders.Service, r *http.Request, actor orders.Actor, params pagination.Params) (*orders.OrderList, error) {
		return svc.ListSellerOrders(r.Context(), actor, params)
	})
}

// ListOrders is the admin view across all buyers.
func ListOrders(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return listHandler(svc, logg, func(svc orders.Service, r *http.Request, actor orders.Actor, params pagination.Params) (*orders.OrderList, error) {
		return svc.ListAllOrders(r.Context(), actor, params)
	})
}

// OrderDetail returns a single order after the service checks visibility.
func OrderDetail(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		orderID, err := parseOrderID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := svc.GetOrder(r.Context(), orderID, actor)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, view)
	}
}

type listFunc func(svc orders.Service, r *http.Request, actor orders.Actor, params pagination.Params) (*orders.OrderList, error)

func listHandler(svc orders.Service, logg *logger.Logger, list listFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params, err := parsePageParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := list(svc, r, actor, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

func parsePageParams(r *http.Request) (pagination.Params, error) {
	limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
	if err != nil {
		return pagination.Params{}, err
	}
	return pagination.Params{
		Limit:  limit,
		Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
	}, nil
}

func parseOrderID(r *http.Request) (uuid.UUID, error) {
	raw := strings.TrimSpace(chi.URLParam(r, "orderID"))
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	orderID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order id")
	}
	return orderID, nil
}

func actorFromRequest(r *http.Request) (orders.Actor, error) {
	rawUserID := middleware.UserIDFromContext(r.Context())
	if rawUserID == "" {
		return orders.Actor{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials")
	}
	userID, err := uuid.Parse(rawUserID)
	if err != nil {
		return orders.Actor{}, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid user id")
	}
	role, err := enums.ParseUserRole(middleware.RoleFromContext(r.Context()))
	if err != nil {
		return orders.Actor{}, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid role")
	}
	return orders.Actor{
		UserID: userID,
		Role:   role,
		Email:  middleware.EmailFromContext(r.Context()),
	}, nil
}
