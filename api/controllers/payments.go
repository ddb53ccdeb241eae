package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/printhubhq/printhub-backend/api/responses"
	"github.com/printhubhq/printhub-backend/api/validators"
	"github.com/printhubhq/printhub-backend/internal/payments"
	pkgerrors "github.com/printhubhq/printhub-backend/pkg/errors"
	"github.com/printhubhq/printhub-backend/pkg/logger"
)

type recordCashPaymentRequest struct {
	AmountCents int64 `json:"amount_cents" validate:"required,gt=0"`
}

type recordOnlinePaymentRequest struct {
	AmountCents  int64  `json:"amount_cents" validate:"required,gt=0"`
	CustomerName string `json:"customer_name" validate:"max=120"`
}

type gatewayCallbackRequest struct {
	TransactionID string `json:"transaction_id" validate:"required"`
	Success       bool   `json:"success"`
}

// RecordCashPayment appends a settled cash collection to the order ledger.
func RecordCashPayment(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
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

		var body recordCashPaymentRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		payment, err := svc.RecordCashPayment(r.Context(), payments.RecordCashInput{
			OrderID: orderID,
			Amount:  body.AmountCents,
			Actor:   payments.ActorContext{StaffID: staffID, Role: role},
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, payment)
	}
}

// RecordOnlinePayment opens a pending gateway intent with a checkout link.
func RecordOnlinePayment(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
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

		var body recordOnlinePaymentRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		payment, err := svc.RecordOnlinePaymentIntent(r.Context(), payments.RecordOnlineInput{
			OrderID:      orderID,
			Amount:       body.AmountCents,
			CustomerName: validators.SanitizeString(body.CustomerName, 120),
			Actor:        payments.ActorContext{StaffID: staffID, Role: role},
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, payment)
	}
}

// ListOrderPayments returns the full ledger for one order.
func ListOrderPayments(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := uuid.Parse(chi.URLParam(r, "orderId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order id"))
			return
		}

		ledger, err := svc.ListForOrder(r.Context(), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, ledger)
	}
}

// GatewayCallback settles or voids a pending online payment. The gateway
// calls back unauthenticated; the transaction id is the shared secret.
func GatewayCallback(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payments service unavailable"))
			return
		}

		var body gatewayCallbackRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		payment, err := svc.Confirm(r.Context(), payments.ConfirmInput{
			TransactionID: body.TransactionID,
			Success:       body.Success,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, payment)
	}
}
