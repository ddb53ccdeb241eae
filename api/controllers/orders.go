package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/printhubhq/printhub-backend/api/responses"
	"github.com/printhubhq/printhub-backend/api/validators"
	"github.com/printhubhq/printhub-backend/internal/orders"
	"github.com/printhubhq/printhub-backend/pkg/enums"
	pkgerrors "github.com/printhubhq/printhub-backend/pkg/errors"
	"github.com/printhubhq/printhub-backend/pkg/logger"
	"github.com/printhubhq/printhub-backend/pkg/pagination"
	"github.com/printhubhq/printhub-backend/pkg/visibility"
)

type orderCustomerRequest struct {
	Name    string `json:"name" validate:"required,max=120"`
	Email   string `json:"email" validate:"required,email"`
	Phone   string `json:"phone" validate:"max=32"`
	Address string `json:"address" validate:"max=500"`
}

type orderItemRequest struct {
	ProductName string  `json:"product_name" validate:"required,max=200"`
	Quantity    int     `json:"quantity" validate:"required,gt=0"`
	UnitPrice   int64   `json:"unit_price_cents" validate:"required,gt=0"`
	DesignNotes *string `json:"design_notes"`
}

type orderImageRequest struct {
	URL  string `json:"url" validate:"required,url"`
	Kind string `json:"kind" validate:"required"`
}

type createDirectOrderRequest struct {
	Customer            orderCustomerRequest `json:"customer" validate:"required"`
	RequestedStaffID    *uuid.UUID           `json:"requested_staff_id"`
	Items               []orderItemRequest   `json:"items" validate:"required,min=1,dive"`
	Images              []orderImageRequest  `json:"images" validate:"dive"`
	PaymentMethod       string               `json:"payment_method" validate:"required"`
	InitialPaymentCents int64                `json:"initial_payment_cents" validate:"gte=0"`
	DeliveryAddress     string               `json:"delivery_address" validate:"required,max=500"`
	DeliveryDate        *time.Time           `json:"delivery_date"`
	Notes               *string              `json:"notes"`
}

type createOrderRequestRequest struct {
	Customer        orderCustomerRequest `json:"customer" validate:"required"`
	Items           []orderItemRequest   `json:"items" validate:"required,min=1,dive"`
	Images          []orderImageRequest  `json:"images" validate:"dive"`
	DeliveryAddress string               `json:"delivery_address" validate:"required,max=500"`
	Notes           *string              `json:"notes"`
}

type transitionOrderRequest struct {
	Status string `json:"status" validate:"required"`
	Reason string `json:"reason" validate:"max=500"`
}

func orderItems(reqs []orderItemRequest) []orders.ItemInput {
	items := make([]orders.ItemInput, 0, len(reqs))
	for _, item := range reqs {
		items = append(items, orders.ItemInput{
			ProductName: validators.SanitizeString(item.ProductName, 200),
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			DesignNotes: item.DesignNotes,
		})
	}
	return items
}

func orderImages(reqs []orderImageRequest) ([]orders.ImageInput, error) {
	images := make([]orders.ImageInput, 0, len(reqs))
	for _, image := range reqs {
		kind := enums.OrderImageKind(image.Kind)
		if !kind.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid image kind").WithDetails(map[string]any{"kind": image.Kind})
		}
		images = append(images, orders.ImageInput{URL: image.URL, Kind: kind})
	}
	return images, nil
}

func orderCustomer(req orderCustomerRequest) orders.CustomerInput {
	return orders.CustomerInput{
		Name:    validators.SanitizeString(req.Name, 120),
		Email:   req.Email,
		Phone:   validators.SanitizeString(req.Phone, 32),
		Address: validators.SanitizeString(req.Address, 500),
	}
}

// CreateDirectOrder books a staff-entered order together with its first payment.
func CreateDirectOrder(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		staffID, role, err := actorFromContext(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body createDirectOrderRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		method, err := enums.ParsePaymentMethod(body.PaymentMethod)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payment method"))
			return
		}
		images, err := orderImages(body.Images)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.CreateDirect(r.Context(), orders.CreateDirectInput{
			Actor:               orders.ActorContext{StaffID: staffID, Role: role},
			Customer:            orderCustomer(body.Customer),
			RequestedStaffID:    body.RequestedStaffID,
			Items:               orderItems(body.Items),
			Images:              images,
			PaymentMethod:       method,
			InitialPaymentCents: body.InitialPaymentCents,
			DeliveryAddress:     validators.SanitizeString(body.DeliveryAddress, 500),
			DeliveryDate:        body.DeliveryDate,
			Notes:               body.Notes,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, order)
	}
}

// CreateOrderRequest enters a customer request into the pipeline, unpaid.
func CreateOrderRequest(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		staffID, role, err := actorFromContext(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body createOrderRequestRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		images, err := orderImages(body.Images)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.CreateRequest(r.Context(), orders.CreateRequestInput{
			Actor:           orders.ActorContext{StaffID: staffID, Role: role},
			Customer:        orderCustomer(body.Customer),
			Items:           orderItems(body.Items),
			Images:          images,
			DeliveryAddress: validators.SanitizeString(body.DeliveryAddress, 500),
			Notes:           body.Notes,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, order)
	}
}

// TransitionOrder moves an order to a new lifecycle status.
func TransitionOrder(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		staffID, role, err := actorFromContext(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		orderID, err := uuid.Parse(chi.URLParam(r, "orderId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order id"))
			return
		}

		var body transitionOrderRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		status, err := enums.ParseOrderStatus(body.Status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status"))
			return
		}

		order, err := svc.Transition(r.Context(), orders.TransitionInput{
			OrderID:   orderID,
			NewStatus: status,
			Reason:    validators.SanitizeString(body.Reason, 500),
			Actor:     orders.ActorContext{StaffID: staffID, Role: role},
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

// GetOrder returns a single order with its lines, images and payments.
func GetOrder(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		staffID, role, err := actorFromContext(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		orderID, err := uuid.Parse(chi.URLParam(r, "orderId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order id"))
			return
		}

		order, err := svc.Get(r.Context(), orders.ActorContext{StaffID: staffID, Role: role}, orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

// ListOrders returns the caller's visible slice of the order book.
func ListOrders(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		staffID, role, err := actorFromContext(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", 0, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filter, err := orderFilterFromQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.List(r.Context(), orders.ListInput{
			Actor:  orders.ActorContext{StaffID: staffID, Role: role},
			Filter: filter,
			Page: pagination.Params{
				Limit:  limit,
				Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
			},
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

func orderFilterFromQuery(r *http.Request) (visibility.OrderFilter, error) {
	var filter visibility.OrderFilter

	if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
		status, err := enums.ParseOrderStatus(raw)
		if err != nil {
			return filter, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status filter")
		}
		filter.Status = &status
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("payment_status")); raw != "" {
		status, err := enums.ParsePaymentStatus(raw)
		if err != nil {
			return filter, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payment status filter")
		}
		filter.PaymentStatus = &status
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("customer_id")); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return filter, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid customer id filter")
		}
		filter.CustomerID = &id
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("staff_id")); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return filter, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid staff id filter")
		}
		filter.StaffID = &id
	}
	unassigned, err := validators.ParseQueryBool(r, "unassigned")
	if err != nil {
		return filter, err
	}
	filter.Unassigned = unassigned

	return filter, nil
}

// DeleteOrder soft-deletes an order. The service enforces the admin gate.
func DeleteOrder(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		staffID, role, err := actorFromContext(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		orderID, err := uuid.Parse(chi.URLParam(r, "orderId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order id"))
			return
		}

		if err := svc.Delete(r.Context(), orders.ActorContext{StaffID: staffID, Role: role}, orderID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"deleted": true})
	}
}
