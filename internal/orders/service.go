package orders

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/printhubhq/printhub-backend/internal/assignment"
	"github.com/printhubhq/printhub-backend/internal/payments"
	"github.com/printhubhq/printhub-backend/pkg/db/models"
	"github.com/printhubhq/printhub-backend/pkg/enums"
	pkgerrors "github.com/printhubhq/printhub-backend/pkg/errors"
	"github.com/printhubhq/printhub-backend/pkg/logger"
	"github.com/printhubhq/printhub-backend/pkg/outbox"
	"github.com/printhubhq/printhub-backend/pkg/outbox/payloads"
	"github.com/printhubhq/printhub-backend/pkg/pagination"
	"github.com/printhubhq/printhub-backend/pkg/visibility"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// initialPaymentRecorder records the payment accompanying a direct order
// creation inside the creation transaction.
type initialPaymentRecorder interface {
	RecordInitialPaymentTx(ctx context.Context, tx *gorm.DB, order *models.Order, amount int64, actor payments.ActorContext) (*models.Payment, error)
}

// CommissionCrediter credits the assigned staff member when an order
// completes. Crediting is feature-flagged; the implementation decides.
type CommissionCrediter interface {
	CreditOnCompletionTx(ctx context.Context, tx *gorm.DB, order *models.Order) error
}

// Service defines the order lifecycle operations.
type Service interface {
	CreateDirect(ctx context.Context, input CreateDirectInput) (*models.Order, error)
	CreateRequest(ctx context.Context, input CreateRequestInput) (*models.Order, error)
	Transition(ctx context.Context, input TransitionInput) (*models.Order, error)
	Get(ctx context.Context, actor ActorContext, orderID uuid.UUID) (*models.Order, error)
	List(ctx context.Context, input ListInput) (*OrderList, error)
	Delete(ctx context.Context, actor ActorContext, orderID uuid.UUID) error
}

type service struct {
	repo        Repository
	tx          txRunner
	outbox      outboxPublisher
	payments    initialPaymentRecorder
	commissions CommissionCrediter
	logg        *logger.Logger

	rngMu sync.Mutex
	rng   *rand.Rand
}

// NewService builds the order lifecycle service. The commission crediter may
// be nil when commission crediting is disabled entirely.
func NewService(repo Repository, tx txRunner, ob outboxPublisher, recorder initialPaymentRecorder, commissions CommissionCrediter, rng *rand.Rand, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if ob == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	if recorder == nil {
		return nil, fmt.Errorf("payment recorder required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &service{
		repo:        repo,
		tx:          tx,
		outbox:      ob,
		payments:    recorder,
		commissions: commissions,
		rng:         rng,
		logg:        logg,
	}, nil
}

func (s *service) CreateDirect(ctx context.Context, input CreateDirectInput) (*models.Order, error) {
	if !input.Actor.Role.IsValid() || input.Actor.StaffID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "staff identity required")
	}
	if len(input.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one item required")
	}
	if input.InitialPaymentCents < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "initial payment must not be negative")
	}
	if !input.PaymentMethod.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid payment method")
	}
	if err := validateCustomer(input.Customer); err != nil {
		return nil, err
	}
	total, err := orderTotal(input.Items)
	if err != nil {
		return nil, err
	}
	if input.InitialPaymentCents > total {
		return nil, pkgerrors.New(pkgerrors.CodeAmountExceedsDue, "initial payment exceeds order total")
	}

	staffID, err := s.assignStaff(ctx, input.RequestedStaffID, input.Actor.Role)
	if err != nil {
		return nil, err
	}

	var created *models.Order
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		customer, err := s.resolveCustomer(ctx, repo, input.Customer)
		if err != nil {
			return err
		}

		order := &models.Order{
			ID:              uuid.New(),
			CustomerID:      &customer.ID,
			StaffID:         staffID,
			BillingName:     input.Customer.Name,
			BillingEmail:    normalizeEmail(input.Customer.Email),
			BillingPhone:    input.Customer.Phone,
			BillingAddress:  input.Customer.Address,
			DeliveryAddress: input.DeliveryAddress,
			DeliveryDate:    input.DeliveryDate,
			Status:          enums.OrderStatusAdvancePaymentReceived,
			PaymentStatus:   payments.DerivePaymentStatus(total, input.InitialPaymentCents),
			PaymentMethod:   input.PaymentMethod,
			OrderTotalPrice: total,
			Notes:           input.Notes,
		}
		if _, err := repo.CreateOrder(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
		}
		if err := s.attachLines(ctx, repo, order, input.Items, input.Images); err != nil {
			return err
		}

		if _, err := s.payments.RecordInitialPaymentTx(ctx, tx, order, input.InitialPaymentCents, paymentActor(input.Actor)); err != nil {
			return err
		}

		created = order
		return s.emitCreated(ctx, tx, order, input.Actor)
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *service) CreateRequest(ctx context.Context, input CreateRequestInput) (*models.Order, error) {
	if err := validateCustomer(input.Customer); err != nil {
		return nil, err
	}
	total, err := orderTotal(input.Items)
	if err != nil {
		return nil, err
	}

	staffID, err := s.assignStaff(ctx, nil, input.Actor.Role)
	if err != nil {
		return nil, err
	}

	var created *models.Order
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		customer, err := s.resolveCustomer(ctx, repo, input.Customer)
		if err != nil {
			return err
		}

		order := &models.Order{
			CustomerID:      &customer.ID,
			StaffID:         staffID,
			BillingName:     input.Customer.Name,
			BillingEmail:    normalizeEmail(input.Customer.Email),
			BillingPhone:    input.Customer.Phone,
			BillingAddress:  input.Customer.Address,
			DeliveryAddress: input.DeliveryAddress,
			Status:          enums.OrderStatusRequestReceived,
			PaymentStatus:   enums.PaymentStatusPending,
			PaymentMethod:   enums.PaymentMethodCOD,
			OrderTotalPrice: total,
			Notes:           input.Notes,
		}
		if _, err := repo.CreateOrder(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order request")
		}
		if err := s.attachLines(ctx, repo, order, input.Items, input.Images); err != nil {
			return err
		}

		created = order
		return s.emitCreated(ctx, tx, order, input.Actor)
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *service) Transition(ctx context.Context, input TransitionInput) (*models.Order, error) {
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if !input.Actor.Role.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "caller role not allowed to transition orders")
	}
	if !input.NewStatus.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid order status")
	}

	var updated *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := repo.FindOrderForUpdate(ctx, input.OrderID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}

		if order.Status == input.NewStatus {
			updated = order
			return nil
		}
		if input.NewStatus == enums.OrderStatusCanceled && order.Status.IsTerminal() {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order is already closed")
		}

		if input.NewStatus == enums.OrderStatusCompleted {
			paid, err := repo.SumPaid(ctx, order.ID)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sum paid payments")
			}
			if paid != order.OrderTotalPrice {
				return pkgerrors.New(pkgerrors.CodePaymentIncomplete, "order is not fully paid")
			}
		}

		fromStatus := order.Status
		if err := repo.UpdateOrder(ctx, order.ID, map[string]any{"status": input.NewStatus}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
		}
		order.Status = input.NewStatus

		event := outbox.DomainEvent{
			EventType:     enums.EventOrderStatusUpdated,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Version:       1,
			Actor:         actorRef(input.Actor),
			Data: payloads.OrderStatusUpdatedEvent{
				OrderID:    order.ID,
				StaffID:    order.StaffID,
				FromStatus: fromStatus,
				ToStatus:   input.NewStatus,
			},
		}
		if err := s.outbox.Emit(ctx, tx, event); err != nil {
			return err
		}

		switch input.NewStatus {
		case enums.OrderStatusCanceled:
			canceled := outbox.DomainEvent{
				EventType:     enums.EventOrderCanceled,
				AggregateType: enums.AggregateOrder,
				AggregateID:   order.ID,
				Version:       1,
				Actor:         actorRef(input.Actor),
				Data: payloads.OrderCanceledEvent{
					OrderID:    order.ID,
					StaffID:    order.StaffID,
					FromStatus: fromStatus,
					CanceledAt: time.Now().UTC(),
					Reason:     input.Reason,
				},
			}
			if err := s.outbox.Emit(ctx, tx, canceled); err != nil {
				return err
			}
		case enums.OrderStatusCompleted:
			completed := outbox.DomainEvent{
				EventType:     enums.EventOrderCompleted,
				AggregateType: enums.AggregateOrder,
				AggregateID:   order.ID,
				Version:       1,
				Actor:         actorRef(input.Actor),
				Data: payloads.OrderCompletedEvent{
					OrderID:     order.ID,
					StaffID:     order.StaffID,
					TotalCents:  order.OrderTotalPrice,
					CompletedAt: time.Now().UTC(),
				},
			}
			if err := s.outbox.Emit(ctx, tx, completed); err != nil {
				return err
			}
			if s.commissions != nil {
				if err := s.commissions.CreditOnCompletionTx(ctx, tx, order); err != nil {
					return err
				}
			}
		}

		updated = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *service) Get(ctx context.Context, actor ActorContext, orderID uuid.UUID) (*models.Order, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	order, err := s.repo.FindOrder(ctx, orderID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}

	switch actor.Role {
	case enums.StaffRoleAgent, enums.StaffRoleOfflineAgent:
		if order.StaffID == nil || *order.StaffID != actor.StaffID {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "order is not assigned to caller")
		}
	case enums.StaffRoleAdmin, enums.StaffRoleDesigner:
	default:
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "unknown caller role")
	}
	return order, nil
}

func (s *service) List(ctx context.Context, input ListInput) (*OrderList, error) {
	scoped, err := visibility.ApplyScope(input.Actor.Role, input.Actor.StaffID, input.Filter)
	if err != nil {
		return nil, err
	}

	cursor, err := pagination.ParseCursor(input.Page.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	limit := pagination.NormalizeLimit(input.Page.Limit)
	rows, err := s.repo.ListOrders(ctx, scoped, cursor, limit+1)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	total, err := s.repo.CountOrders(ctx, scoped)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count orders")
	}

	list := &OrderList{Total: total}
	if len(rows) > limit {
		last := rows[limit-1]
		list.NextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
		rows = rows[:limit]
	}
	list.Orders = rows
	return list, nil
}

func (s *service) Delete(ctx context.Context, actor ActorContext, orderID uuid.UUID) error {
	if actor.Role != enums.StaffRoleAdmin {
		return pkgerrors.New(pkgerrors.CodeForbidden, "only admins can delete orders")
	}
	if orderID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if _, err := s.repo.FindOrder(ctx, orderID); err != nil {
		if err == gorm.ErrRecordNotFound {
			return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	if err := s.repo.SoftDeleteOrder(ctx, orderID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete order")
	}
	return nil
}

// assignStaff draws an assignee from the current roster. An empty roster is
// non-fatal: the order proceeds unassigned and the gap is logged.
func (s *service) assignStaff(ctx context.Context, requested *uuid.UUID, creatorRole enums.StaffRole) (*uuid.UUID, error) {
	staff, err := s.repo.ListAssignableStaff(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load staff roster")
	}
	roster := make([]assignment.RosterMember, 0, len(staff))
	for _, member := range staff {
		roster = append(roster, assignment.RosterMember{
			ID:        member.ID,
			Status:    member.Status,
			IsDeleted: member.IsDeleted,
		})
	}

	s.rngMu.Lock()
	staffID, err := assignment.Assign(assignment.Input{
		RequestedStaffID: requested,
		CreatorRole:      creatorRole,
	}, roster, s.rng)
	s.rngMu.Unlock()
	if err != nil {
		if pkgerrors.Is(err, pkgerrors.CodeAssignmentUnavailable) {
			s.logg.Warn(ctx, "no staff available for assignment, order proceeds unassigned")
			return nil, nil
		}
		return nil, err
	}
	return staffID, nil
}

func (s *service) resolveCustomer(ctx context.Context, repo Repository, input CustomerInput) (*models.Customer, error) {
	email := normalizeEmail(input.Email)
	customer, err := repo.FindCustomerByEmail(ctx, email)
	if err == nil {
		return customer, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find customer")
	}

	customer = &models.Customer{
		Name:    input.Name,
		Email:   email,
		Phone:   input.Phone,
		Address: input.Address,
	}
	if _, err := repo.CreateCustomer(ctx, customer); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create customer")
	}
	return customer, nil
}

func (s *service) attachLines(ctx context.Context, repo Repository, order *models.Order, items []ItemInput, images []ImageInput) error {
	lines := make([]models.OrderItem, 0, len(items))
	for _, item := range items {
		lines = append(lines, models.OrderItem{
			ID:          uuid.New(),
			OrderID:     order.ID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			DesignNotes: item.DesignNotes,
		})
	}
	if err := repo.CreateOrderItems(ctx, lines); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order items")
	}
	order.Items = lines

	art := make([]models.OrderImage, 0, len(images))
	for _, image := range images {
		kind := image.Kind
		if kind == "" {
			kind = enums.OrderImageKindReference
		}
		art = append(art, models.OrderImage{
			ID:      uuid.New(),
			OrderID: order.ID,
			URL:     image.URL,
			Kind:    kind,
		})
	}
	if err := repo.CreateOrderImages(ctx, art); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order images")
	}
	order.Images = art
	return nil
}

func (s *service) emitCreated(ctx context.Context, tx *gorm.DB, order *models.Order, actor ActorContext) error {
	event := outbox.DomainEvent{
		EventType:     enums.EventOrderCreated,
		AggregateType: enums.AggregateOrder,
		AggregateID:   order.ID,
		Version:       1,
		Actor:         actorRef(actor),
		Data: payloads.OrderCreatedEvent{
			OrderID:       order.ID,
			CustomerID:    order.CustomerID,
			StaffID:       order.StaffID,
			Status:        order.Status,
			PaymentMethod: order.PaymentMethod,
			TotalCents:    order.OrderTotalPrice,
		},
	}
	return s.outbox.Emit(ctx, tx, event)
}

func validateCustomer(input CustomerInput) error {
	if strings.TrimSpace(input.Name) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "customer name required")
	}
	if strings.TrimSpace(input.Email) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "customer email required")
	}
	return nil
}

func orderTotal(items []ItemInput) (int64, error) {
	var total int64
	for _, item := range items {
		if item.Quantity <= 0 {
			return 0, pkgerrors.New(pkgerrors.CodeValidation, "item quantity must be positive")
		}
		if item.UnitPrice < 0 {
			return 0, pkgerrors.New(pkgerrors.CodeValidation, "item unit price must not be negative")
		}
		total += int64(item.Quantity) * item.UnitPrice
	}
	return total, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func paymentActor(actor ActorContext) payments.ActorContext {
	return payments.ActorContext{StaffID: actor.StaffID, Role: actor.Role}
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
