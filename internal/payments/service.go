package payments

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/printhubhq/printhub-backend/pkg/db/models"
	"github.com/printhubhq/printhub-backend/pkg/enums"
	pkgerrors "github.com/printhubhq/printhub-backend/pkg/errors"
	"github.com/printhubhq/printhub-backend/pkg/logger"
	"github.com/printhubhq/printhub-backend/pkg/outbox"
	"github.com/printhubhq/printhub-backend/pkg/outbox/payloads"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// ActorContext identifies the authenticated caller for event attribution.
type ActorContext struct {
	StaffID uuid.UUID
	Role    enums.StaffRole
}

// RecordCashInput captures a cash collection against an order.
type RecordCashInput struct {
	OrderID uuid.UUID
	Amount  int64
	Actor   ActorContext
}

// RecordOnlineInput opens an online payment intent with a hosted checkout link.
type RecordOnlineInput struct {
	OrderID      uuid.UUID
	Amount       int64
	CustomerName string
	Actor        ActorContext
}

// ConfirmInput is the gateway callback payload: the ledger transaction id and
// whether the gateway reports the payment as settled.
type ConfirmInput struct {
	TransactionID string
	Success       bool
}

// Service is the order payment ledger.
type Service interface {
	RecordCashPayment(ctx context.Context, input RecordCashInput) (*models.Payment, error)
	RecordOnlinePaymentIntent(ctx context.Context, input RecordOnlineInput) (*models.Payment, error)
	Confirm(ctx context.Context, input ConfirmInput) (*models.Payment, error)
	RecordInitialPaymentTx(ctx context.Context, tx *gorm.DB, order *models.Order, amount int64, actor ActorContext) (*models.Payment, error)
	ListForOrder(ctx context.Context, orderID uuid.UUID) ([]models.Payment, error)
}

type service struct {
	repo   Repository
	tx     txRunner
	outbox outboxPublisher
	linker GatewayLinker
	logg   *logger.Logger
}

// NewService builds the payment ledger service.
func NewService(repo Repository, tx txRunner, ob outboxPublisher, linker GatewayLinker, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("payments repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if ob == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		repo:   repo,
		tx:     tx,
		outbox: ob,
		linker: linker,
		logg:   logg,
	}, nil
}

func (s *service) RecordCashPayment(ctx context.Context, input RecordCashInput) (*models.Payment, error) {
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if input.Amount < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount must not be negative")
	}

	var created *models.Payment
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := repo.FindOrderForUpdate(ctx, input.OrderID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}
		if order.Status.IsTerminal() {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order is closed")
		}

		paid, err := repo.SumPaid(ctx, order.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sum paid payments")
		}
		if paid+input.Amount > order.OrderTotalPrice {
			return pkgerrors.New(pkgerrors.CodeAmountExceedsDue, "payment would exceed order total")
		}

		payment := &models.Payment{
			ID:            uuid.New(),
			TransactionID: newTransactionID("cash"),
			OrderID:       order.ID,
			Amount:        input.Amount,
			PaymentMethod: enums.PaymentMethodCOD,
			IsPaid:        true,
		}
		if _, err := repo.CreatePayment(ctx, payment); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create payment")
		}
		created = payment

		if err := s.emitRecorded(ctx, tx, payment, input.Actor); err != nil {
			return err
		}
		return s.applyLedgerState(ctx, tx, repo, order, paid+input.Amount, input.Actor)
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *service) RecordOnlinePaymentIntent(ctx context.Context, input RecordOnlineInput) (*models.Payment, error) {
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if input.Amount < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount must not be negative")
	}
	if s.linker == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "payment gateway not configured")
	}

	order, err := s.repo.FindOrder(ctx, input.OrderID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	if order.Status.IsTerminal() {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order is closed")
	}

	paid, err := s.repo.SumPaid(ctx, order.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sum paid payments")
	}
	if paid >= order.OrderTotalPrice {
		return nil, pkgerrors.New(pkgerrors.CodeAlreadyFullyPaid, "order has no outstanding balance")
	}

	transactionID := newTransactionID("online")
	name := input.CustomerName
	if name == "" {
		name = order.BillingName
	}
	// The link is created before the tx: a dangling gateway link for a failed
	// insert is harmless, the reverse is not.
	link, err := s.linker.CreateLink(ctx, LinkRequest{
		Name:        fmt.Sprintf("PrintHub order for %s", name),
		AmountCents: input.Amount,
		ReferenceID: transactionID,
	})
	if err != nil {
		return nil, err
	}

	var created *models.Payment
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		payment := &models.Payment{
			ID:            uuid.New(),
			TransactionID: transactionID,
			OrderID:       order.ID,
			Amount:        input.Amount,
			PaymentMethod: enums.PaymentMethodOnline,
			IsPaid:        false,
			PaymentLink:   &link,
		}
		if _, err := repo.CreatePayment(ctx, payment); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create payment intent")
		}
		created = payment
		return s.emitRecorded(ctx, tx, payment, input.Actor)
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *service) Confirm(ctx context.Context, input ConfirmInput) (*models.Payment, error) {
	if input.TransactionID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "transaction id required")
	}

	var confirmed *models.Payment
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		payment, err := repo.FindPaymentByTransactionID(ctx, input.TransactionID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "payment not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load payment")
		}

		order, err := repo.FindOrderForUpdate(ctx, payment.OrderID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}

		if payment.IsPaid == input.Success {
			confirmed = payment
			return nil
		}
		if payment.IsPaid && !input.Success {
			logCtx := s.logg.WithFields(ctx, map[string]any{
				"transaction_id": payment.TransactionID,
				"order_id":       order.ID.String(),
			})
			s.logg.Warn(logCtx, "gateway reversed a settled payment")
		}

		if input.Success {
			paid, err := repo.SumPaid(ctx, order.ID)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sum paid payments")
			}
			if paid+payment.Amount > order.OrderTotalPrice {
				return pkgerrors.New(pkgerrors.CodeAmountExceedsDue, "confirmation would exceed order total")
			}
		}

		if err := repo.UpdatePayment(ctx, payment.ID, map[string]any{"is_paid": input.Success}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update payment")
		}
		payment.IsPaid = input.Success
		confirmed = payment

		paid, err := repo.SumPaid(ctx, order.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "re-sum paid payments")
		}

		if input.Success {
			event := outbox.DomainEvent{
				EventType:     enums.EventPaymentConfirmed,
				AggregateType: enums.AggregatePayment,
				AggregateID:   payment.ID,
				Version:       1,
				Data: payloads.PaymentConfirmedEvent{
					PaymentID:     payment.ID,
					OrderID:       order.ID,
					TransactionID: payment.TransactionID,
					AmountCents:   payment.Amount,
					PaymentStatus: DerivePaymentStatus(order.OrderTotalPrice, paid),
					ConfirmedAt:   time.Now().UTC(),
				},
			}
			if err := s.outbox.Emit(ctx, tx, event); err != nil {
				return err
			}
		}

		return s.applyLedgerState(ctx, tx, repo, order, paid, ActorContext{})
	})
	if err != nil {
		return nil, err
	}
	return confirmed, nil
}

// RecordInitialPaymentTx records the payment that accompanies a direct order
// creation, inside the creation transaction. Cash settles immediately; online
// opens an intent with a checkout link. A zero amount records nothing.
func (s *service) RecordInitialPaymentTx(ctx context.Context, tx *gorm.DB, order *models.Order, amount int64, actor ActorContext) (*models.Payment, error) {
	if amount < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount must not be negative")
	}
	if amount == 0 {
		return nil, nil
	}
	if amount > order.OrderTotalPrice {
		return nil, pkgerrors.New(pkgerrors.CodeAmountExceedsDue, "initial payment exceeds order total")
	}

	repo := s.repo.WithTx(tx)
	payment := &models.Payment{
		ID:            uuid.New(),
		OrderID:       order.ID,
		Amount:        amount,
		PaymentMethod: order.PaymentMethod,
	}
	switch order.PaymentMethod {
	case enums.PaymentMethodCOD:
		payment.TransactionID = newTransactionID("cash")
		payment.IsPaid = true
	case enums.PaymentMethodOnline:
		if s.linker == nil {
			return nil, pkgerrors.New(pkgerrors.CodeDependency, "payment gateway not configured")
		}
		payment.TransactionID = newTransactionID("online")
		link, err := s.linker.CreateLink(ctx, LinkRequest{
			Name:        fmt.Sprintf("PrintHub order for %s", order.BillingName),
			AmountCents: amount,
			ReferenceID: payment.TransactionID,
		})
		if err != nil {
			return nil, err
		}
		payment.PaymentLink = &link
	default:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unsupported payment method")
	}

	if _, err := repo.CreatePayment(ctx, payment); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create initial payment")
	}
	if err := s.emitRecorded(ctx, tx, payment, actor); err != nil {
		return nil, err
	}
	return payment, nil
}

func (s *service) ListForOrder(ctx context.Context, orderID uuid.UUID) ([]models.Payment, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	rows, err := s.repo.ListPaymentsByOrder(ctx, orderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list payments")
	}
	return rows, nil
}

// applyLedgerState re-derives payment_status and applies the request-phase
// promotion: the first paid cent moves a request-phase order to
// advance-payment-received.
func (s *service) applyLedgerState(ctx context.Context, tx *gorm.DB, repo Repository, order *models.Order, paid int64, actor ActorContext) error {
	updates := map[string]any{
		"payment_status": DerivePaymentStatus(order.OrderTotalPrice, paid),
	}

	promoted := false
	if paid > 0 && order.Status.IsRequestPhase() {
		updates["status"] = enums.OrderStatusAdvancePaymentReceived
		promoted = true
	}

	if err := repo.UpdateOrder(ctx, order.ID, updates); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order payment state")
	}

	if promoted {
		event := outbox.DomainEvent{
			EventType:     enums.EventOrderStatusUpdated,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Version:       1,
			Actor:         actorRef(actor),
			Data: payloads.OrderStatusUpdatedEvent{
				OrderID:    order.ID,
				StaffID:    order.StaffID,
				FromStatus: order.Status,
				ToStatus:   enums.OrderStatusAdvancePaymentReceived,
			},
		}
		if err := s.outbox.Emit(ctx, tx, event); err != nil {
			return err
		}
		order.Status = enums.OrderStatusAdvancePaymentReceived
	}
	return nil
}

func (s *service) emitRecorded(ctx context.Context, tx *gorm.DB, payment *models.Payment, actor ActorContext) error {
	event := outbox.DomainEvent{
		EventType:     enums.EventPaymentRecorded,
		AggregateType: enums.AggregatePayment,
		AggregateID:   payment.ID,
		Version:       1,
		Actor:         actorRef(actor),
		Data: payloads.PaymentRecordedEvent{
			PaymentID:     payment.ID,
			OrderID:       payment.OrderID,
			TransactionID: payment.TransactionID,
			AmountCents:   payment.Amount,
			PaymentMethod: payment.PaymentMethod,
			IsPaid:        payment.IsPaid,
		},
	}
	return s.outbox.Emit(ctx, tx, event)
}

func actorRef(actor ActorContext) *outbox.ActorRef {
	if actor.StaffID == uuid.Nil {
		return nil
	}
	return &outbox.ActorRef{
		StaffID: actor.StaffID,
		Role:    string(actor.Role),
	}
}

func newTransactionID(prefix string) string {
	return fmt.Sprintf("%s-%s", prefix, uuid.NewString())
}
