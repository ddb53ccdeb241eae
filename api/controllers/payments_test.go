package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/printhubhq/printhub-backend/internal/payments"
	"github.com/printhubhq/printhub-backend/pkg/db/models"
	"github.com/printhubhq/printhub-backend/pkg/enums"
	pkgerrors "github.com/printhubhq/printhub-backend/pkg/errors"
)

type testPaymentsService struct {
	recordCashFn   func(ctx context.Context, input payments.RecordCashInput) (*models.Payment, error)
	recordOnlineFn func(ctx context.Context, input payments.RecordOnlineInput) (*models.Payment, error)
	confirmFn      func(ctx context.Context, input payments.ConfirmInput) (*models.Payment, error)
	listFn         func(ctx context.Context, orderID uuid.UUID) ([]models.Payment, error)
}

func (s *testPaymentsService) RecordCashPayment(ctx context.Context, input payments.RecordCashInput) (*models.Payment, error) {
	if s.recordCashFn != nil {
		return s.recordCashFn(ctx, input)
	}
	return &models.Payment{ID: uuid.New()}, nil
}

func (s *testPaymentsService) RecordOnlinePaymentIntent(ctx context.Context, input payments.RecordOnlineInput) (*models.Payment, error) {
	if s.recordOnlineFn != nil {
		return s.recordOnlineFn(ctx, input)
	}
	return &models.Payment{ID: uuid.New()}, nil
}

func (s *testPaymentsService) Confirm(ctx context.Context, input payments.ConfirmInput) (*models.Payment, error) {
	if s.confirmFn != nil {
		return s.confirmFn(ctx, input)
	}
	return &models.Payment{ID: uuid.New()}, nil
}

func (s *testPaymentsService) RecordInitialPaymentTx(ctx context.Context, tx *gorm.DB, order *models.Order, amount int64, actor payments.ActorContext) (*models.Payment, error) {
	return nil, nil
}

func (s *testPaymentsService) ListForOrder(ctx context.Context, orderID uuid.UUID) ([]models.Payment, error) {
	if s.listFn != nil {
		return s.listFn(ctx, orderID)
	}
	return nil, nil
}

func TestRecordCashPaymentSuccess(t *testing.T) {
	staffID := uuid.New()
	orderID := uuid.New()
	var captured payments.RecordCashInput
	svc := &testPaymentsService{
		recordCashFn: func(ctx context.Context, input payments.RecordCashInput) (*models.Payment, error) {
			captured = input
			return &models.Payment{ID: uuid.New(), OrderID: input.OrderID}, nil
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders/"+orderID.String()+"/payments/cash", strings.NewReader(`{"amount_cents": 2500}`))
	req = authedRequest(req, staffID, enums.StaffRoleAgent)
	req = addRouteParam(req, "orderId", orderID.String())
	resp := httptest.NewRecorder()
	RecordCashPayment(svc, testLogger())(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("unexpected status %d: %s", resp.Code, resp.Body.String())
	}
	if captured.OrderID != orderID || captured.Amount != 2500 {
		t.Fatalf("input not propagated: %+v", captured)
	}
	if captured.Actor.StaffID != staffID {
		t.Fatalf("actor = %s", captured.Actor.StaffID)
	}
}

func TestRecordCashPaymentRejectsNonPositiveAmount(t *testing.T) {
	orderID := uuid.New()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders/"+orderID.String()+"/payments/cash", strings.NewReader(`{"amount_cents": 0}`))
	req = authedRequest(req, uuid.New(), enums.StaffRoleAgent)
	req = addRouteParam(req, "orderId", orderID.String())
	resp := httptest.NewRecorder()
	RecordCashPayment(&testPaymentsService{}, testLogger())(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestGatewayCallbackConfirms(t *testing.T) {
	var captured payments.ConfirmInput
	svc := &testPaymentsService{
		confirmFn: func(ctx context.Context, input payments.ConfirmInput) (*models.Payment, error) {
			captured = input
			return &models.Payment{ID: uuid.New(), IsPaid: true}, nil
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/payments", strings.NewReader(`{"transaction_id": "txn_123", "success": true}`))
	resp := httptest.NewRecorder()
	GatewayCallback(svc, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", resp.Code, resp.Body.String())
	}
	if captured.TransactionID != "txn_123" || !captured.Success {
		t.Fatalf("input not propagated: %+v", captured)
	}
}

func TestGatewayCallbackRequiresTransactionID(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/payments", strings.NewReader(`{"success": true}`))
	resp := httptest.NewRecorder()
	GatewayCallback(&testPaymentsService{}, testLogger())(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestGatewayCallbackPropagatesNotFound(t *testing.T) {
	svc := &testPaymentsService{
		confirmFn: func(ctx context.Context, input payments.ConfirmInput) (*models.Payment, error) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "unknown transaction")
		},
	}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/payments", strings.NewReader(`{"transaction_id": "txn_missing"}`))
	resp := httptest.NewRecorder()
	GatewayCallback(svc, testLogger())(resp, req)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", resp.Code)
	}
}
