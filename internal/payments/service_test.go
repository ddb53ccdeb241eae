package payments

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/printhubhq/printhub-backend/pkg/db/models"
	"github.com/printhubhq/printhub-backend/pkg/enums"
	pkgerrors "github.com/printhubhq/printhub-backend/pkg/errors"
	"github.com/printhubhq/printhub-backend/pkg/logger"
	"github.com/printhubhq/printhub-backend/pkg/outbox"
)

type stubPaymentsRepo struct {
	order    *models.Order
	payments []*models.Payment
}

func (s *stubPaymentsRepo) WithTx(tx *gorm.DB) Repository {
	return s
}

func (s *stubPaymentsRepo) FindOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	if s.order == nil || s.order.ID != orderID {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *s.order
	return &copied, nil
}

func (s *stubPaymentsRepo) FindOrderForUpdate(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	return s.FindOrder(ctx, orderID)
}

func (s *stubPaymentsRepo) CreatePayment(ctx context.Context, payment *models.Payment) (*models.Payment, error) {
	if payment.ID == uuid.Nil {
		payment.ID = uuid.New()
	}
	for _, existing := range s.payments {
		if existing.TransactionID == payment.TransactionID {
			return nil, gorm.ErrDuplicatedKey
		}
	}
	s.payments = append(s.payments, payment)
	return payment, nil
}

func (s *stubPaymentsRepo) FindPaymentByTransactionID(ctx context.Context, transactionID string) (*models.Payment, error) {
	for _, payment := range s.payments {
		if payment.TransactionID == transactionID {
			return payment, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubPaymentsRepo) ListPaymentsByOrder(ctx context.Context, orderID uuid.UUID) ([]models.Payment, error) {
	out := []models.Payment{}
	for _, payment := range s.payments {
		if payment.OrderID == orderID {
			out = append(out, *payment)
		}
	}
	return out, nil
}

func (s *stubPaymentsRepo) SumPaid(ctx context.Context, orderID uuid.UUID) (int64, error) {
	var total int64
	for _, payment := range s.payments {
		if payment.OrderID == orderID && payment.IsPaid {
			total += payment.Amount
		}
	}
	return total, nil
}

func (s *stubPaymentsRepo) UpdatePayment(ctx context.Context, paymentID uuid.UUID, updates map[string]any) error {
	for _, payment := range s.payments {
		if payment.ID == paymentID {
			if isPaid, ok := updates["is_paid"].(bool); ok {
				payment.IsPaid = isPaid
			}
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (s *stubPaymentsRepo) UpdateOrder(ctx context.Context, orderID uuid.UUID, updates map[string]any) error {
	if s.order == nil || s.order.ID != orderID {
		return gorm.ErrRecordNotFound
	}
	if status, ok := updates["status"].(enums.OrderStatus); ok {
		s.order.Status = status
	}
	if paymentStatus, ok := updates["payment_status"].(enums.PaymentStatus); ok {
		s.order.PaymentStatus = paymentStatus
	}
	return nil
}

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(&gorm.DB{})
}

type stubOutbox struct {
	events []outbox.DomainEvent
}

func (s *stubOutbox) Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error {
	s.events = append(s.events, event)
	return nil
}

func (s *stubOutbox) typesEmitted() []enums.OutboxEventType {
	out := make([]enums.OutboxEventType, 0, len(s.events))
	for _, event := range s.events {
		out = append(out, event.EventType)
	}
	return out
}

type stubLinker struct {
	url string
	err error
}

func (s stubLinker) CreateLink(ctx context.Context, req LinkRequest) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return s.url, nil
}

func newTestService(t *testing.T, repo *stubPaymentsRepo, ob *stubOutbox, linker GatewayLinker) Service {
	t.Helper()
	svc, err := NewService(repo, stubTxRunner{}, ob, linker, logger.New(logger.Options{}))
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func newTestOrder(total int64, status enums.OrderStatus) *models.Order {
	return &models.Order{
		ID:              uuid.New(),
		BillingName:     "Test Customer",
		Status:          status,
		PaymentStatus:   enums.PaymentStatusPending,
		PaymentMethod:   enums.PaymentMethodCOD,
		OrderTotalPrice: total,
	}
}

func TestDerivePaymentStatus(t *testing.T) {
	tests := []struct {
		total, paid int64
		want        enums.PaymentStatus
	}{
		{1000, 0, enums.PaymentStatusPending},
		{1000, 400, enums.PaymentStatusPartial},
		{1000, 1000, enums.PaymentStatusPaid},
		{1000, 999, enums.PaymentStatusPartial},
		{0, 0, enums.PaymentStatusPending},
	}
	for _, tt := range tests {
		if got := DerivePaymentStatus(tt.total, tt.paid); got != tt.want {
			t.Fatalf("DerivePaymentStatus(%d, %d) = %s, want %s", tt.total, tt.paid, got, tt.want)
		}
	}
}

func TestRecordCashPaymentInstallments(t *testing.T) {
	repo := &stubPaymentsRepo{order: newTestOrder(1000, enums.OrderStatusAdvancePaymentReceived)}
	ob := &stubOutbox{}
	svc := newTestService(t, repo, ob, nil)

	payment, err := svc.RecordCashPayment(context.Background(), RecordCashInput{OrderID: repo.order.ID, Amount: 400})
	if err != nil {
		t.Fatalf("first cash payment: %v", err)
	}
	if !payment.IsPaid {
		t.Fatalf("cash payments settle immediately")
	}
	if repo.order.PaymentStatus != enums.PaymentStatusPartial {
		t.Fatalf("expected partial after 400/1000, got %s", repo.order.PaymentStatus)
	}

	if _, err := svc.RecordCashPayment(context.Background(), RecordCashInput{OrderID: repo.order.ID, Amount: 600}); err != nil {
		t.Fatalf("second cash payment: %v", err)
	}
	if repo.order.PaymentStatus != enums.PaymentStatusPaid {
		t.Fatalf("expected paid after 1000/1000, got %s", repo.order.PaymentStatus)
	}
}

func TestRecordCashPaymentExceedsDue(t *testing.T) {
	repo := &stubPaymentsRepo{order: newTestOrder(100, enums.OrderStatusAdvancePaymentReceived)}
	ob := &stubOutbox{}
	svc := newTestService(t, repo, ob, nil)

	if _, err := svc.RecordCashPayment(context.Background(), RecordCashInput{OrderID: repo.order.ID, Amount: 100}); err != nil {
		t.Fatalf("fill order: %v", err)
	}

	_, err := svc.RecordCashPayment(context.Background(), RecordCashInput{OrderID: repo.order.ID, Amount: 50})
	if !pkgerrors.Is(err, pkgerrors.CodeAmountExceedsDue) {
		t.Fatalf("expected amount exceeds due, got %v", err)
	}
	if len(repo.payments) != 1 {
		t.Fatalf("rejected payment must not be persisted")
	}
}

func TestRecordCashPaymentPromotesRequestPhase(t *testing.T) {
	repo := &stubPaymentsRepo{order: newTestOrder(1000, enums.OrderStatusRequestReceived)}
	ob := &stubOutbox{}
	svc := newTestService(t, repo, ob, nil)

	if _, err := svc.RecordCashPayment(context.Background(), RecordCashInput{OrderID: repo.order.ID, Amount: 100}); err != nil {
		t.Fatalf("cash payment: %v", err)
	}
	if repo.order.Status != enums.OrderStatusAdvancePaymentReceived {
		t.Fatalf("expected promotion to advance-payment-received, got %s", repo.order.Status)
	}

	types := ob.typesEmitted()
	if len(types) != 2 || types[0] != enums.EventPaymentRecorded || types[1] != enums.EventOrderStatusUpdated {
		t.Fatalf("unexpected events %v", types)
	}
}

func TestRecordCashPaymentNoPromotionPastRequestPhase(t *testing.T) {
	repo := &stubPaymentsRepo{order: newTestOrder(1000, enums.OrderStatusDesignInProgress)}
	ob := &stubOutbox{}
	svc := newTestService(t, repo, ob, nil)

	if _, err := svc.RecordCashPayment(context.Background(), RecordCashInput{OrderID: repo.order.ID, Amount: 100}); err != nil {
		t.Fatalf("cash payment: %v", err)
	}
	if repo.order.Status != enums.OrderStatusDesignInProgress {
		t.Fatalf("mid-pipeline order must keep its status, got %s", repo.order.Status)
	}
}

func TestRecordOnlinePaymentIntent(t *testing.T) {
	repo := &stubPaymentsRepo{order: newTestOrder(1000, enums.OrderStatusAdvancePaymentReceived)}
	ob := &stubOutbox{}
	svc := newTestService(t, repo, ob, stubLinker{url: "https://square.link/abc"})

	payment, err := svc.RecordOnlinePaymentIntent(context.Background(), RecordOnlineInput{OrderID: repo.order.ID, Amount: 500})
	if err != nil {
		t.Fatalf("online intent: %v", err)
	}
	if payment.IsPaid {
		t.Fatalf("online intents start unsettled")
	}
	if payment.PaymentLink == nil || *payment.PaymentLink != "https://square.link/abc" {
		t.Fatalf("payment link not stored: %v", payment.PaymentLink)
	}
	if repo.order.PaymentStatus != enums.PaymentStatusPending {
		t.Fatalf("unsettled intent must not change payment status")
	}
}

func TestRecordOnlinePaymentIntentAlreadyFullyPaid(t *testing.T) {
	repo := &stubPaymentsRepo{order: newTestOrder(100, enums.OrderStatusAdvancePaymentReceived)}
	ob := &stubOutbox{}
	svc := newTestService(t, repo, ob, stubLinker{url: "https://square.link/abc"})

	if _, err := svc.RecordCashPayment(context.Background(), RecordCashInput{OrderID: repo.order.ID, Amount: 100}); err != nil {
		t.Fatalf("fill order: %v", err)
	}

	_, err := svc.RecordOnlinePaymentIntent(context.Background(), RecordOnlineInput{OrderID: repo.order.ID, Amount: 50})
	if !pkgerrors.Is(err, pkgerrors.CodeAlreadyFullyPaid) {
		t.Fatalf("expected already fully paid, got %v", err)
	}
}

func TestConfirmSettlesIntentAndPromotes(t *testing.T) {
	repo := &stubPaymentsRepo{order: newTestOrder(1000, enums.OrderStatusAwaitingAdvancePayment)}
	ob := &stubOutbox{}
	svc := newTestService(t, repo, ob, stubLinker{url: "https://square.link/abc"})

	payment, err := svc.RecordOnlinePaymentIntent(context.Background(), RecordOnlineInput{OrderID: repo.order.ID, Amount: 300})
	if err != nil {
		t.Fatalf("online intent: %v", err)
	}

	confirmed, err := svc.Confirm(context.Background(), ConfirmInput{TransactionID: payment.TransactionID, Success: true})
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if !confirmed.IsPaid {
		t.Fatalf("confirm must settle the payment")
	}
	if repo.order.PaymentStatus != enums.PaymentStatusPartial {
		t.Fatalf("expected partial after 300/1000, got %s", repo.order.PaymentStatus)
	}
	if repo.order.Status != enums.OrderStatusAdvancePaymentReceived {
		t.Fatalf("expected promotion after first settled payment, got %s", repo.order.Status)
	}
}

func TestConfirmIdempotent(t *testing.T) {
	repo := &stubPaymentsRepo{order: newTestOrder(1000, enums.OrderStatusAdvancePaymentReceived)}
	ob := &stubOutbox{}
	svc := newTestService(t, repo, ob, stubLinker{url: "https://square.link/abc"})

	payment, err := svc.RecordOnlinePaymentIntent(context.Background(), RecordOnlineInput{OrderID: repo.order.ID, Amount: 300})
	if err != nil {
		t.Fatalf("online intent: %v", err)
	}

	if _, err := svc.Confirm(context.Background(), ConfirmInput{TransactionID: payment.TransactionID, Success: true}); err != nil {
		t.Fatalf("first confirm: %v", err)
	}
	eventsAfterFirst := len(ob.events)

	if _, err := svc.Confirm(context.Background(), ConfirmInput{TransactionID: payment.TransactionID, Success: true}); err != nil {
		t.Fatalf("repeat confirm: %v", err)
	}
	if len(ob.events) != eventsAfterFirst {
		t.Fatalf("repeated confirm must be a no-op, emitted %d extra events", len(ob.events)-eventsAfterFirst)
	}

	paid, _ := repo.SumPaid(context.Background(), repo.order.ID)
	if paid != 300 {
		t.Fatalf("repeated confirm must not double-count, paid=%d", paid)
	}
}

func TestConfirmReversalRederivesStatus(t *testing.T) {
	repo := &stubPaymentsRepo{order: newTestOrder(1000, enums.OrderStatusAdvancePaymentReceived)}
	ob := &stubOutbox{}
	svc := newTestService(t, repo, ob, stubLinker{url: "https://square.link/abc"})

	payment, err := svc.RecordOnlinePaymentIntent(context.Background(), RecordOnlineInput{OrderID: repo.order.ID, Amount: 300})
	if err != nil {
		t.Fatalf("online intent: %v", err)
	}
	if _, err := svc.Confirm(context.Background(), ConfirmInput{TransactionID: payment.TransactionID, Success: true}); err != nil {
		t.Fatalf("confirm: %v", err)
	}

	if _, err := svc.Confirm(context.Background(), ConfirmInput{TransactionID: payment.TransactionID, Success: false}); err != nil {
		t.Fatalf("reversal: %v", err)
	}
	if repo.order.PaymentStatus != enums.PaymentStatusPending {
		t.Fatalf("expected pending after reversal, got %s", repo.order.PaymentStatus)
	}
}

func TestConfirmUnknownTransaction(t *testing.T) {
	repo := &stubPaymentsRepo{order: newTestOrder(1000, enums.OrderStatusAdvancePaymentReceived)}
	svc := newTestService(t, repo, &stubOutbox{}, nil)

	_, err := svc.Confirm(context.Background(), ConfirmInput{TransactionID: "online-missing", Success: true})
	if !pkgerrors.Is(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestLedgerNeverExceedsTotal(t *testing.T) {
	repo := &stubPaymentsRepo{order: newTestOrder(500, enums.OrderStatusAdvancePaymentReceived)}
	ob := &stubOutbox{}
	svc := newTestService(t, repo, ob, stubLinker{url: "https://square.link/abc"})

	amounts := []int64{200, 200, 200, 100}
	for _, amount := range amounts {
		_, _ = svc.RecordCashPayment(context.Background(), RecordCashInput{OrderID: repo.order.ID, Amount: amount})
	}

	paid, _ := repo.SumPaid(context.Background(), repo.order.ID)
	if paid > 500 {
		t.Fatalf("ledger exceeded order total: %d", paid)
	}
}
