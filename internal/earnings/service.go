package earnings

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/printhubhq/printhub-backend/pkg/enums"
	pkgerrors "github.com/printhubhq/printhub-backend/pkg/errors"
	"github.com/printhubhq/printhub-backend/pkg/logger"
)

// StaffMonthEarning is one month of an agent's commission history.
type StaffMonthEarning struct {
	Month           Month `json:"month"`
	PaymentCount    int   `json:"payment_count"`
	RevenueCents    int64 `json:"revenue_cents"`
	CommissionCents int64 `json:"commission_cents"`
}

// StaffStatement is an agent's full commission history, priced at the
// current commission percentage. Past months are repriced when the rate
// changes; there is no rate snapshotting.
type StaffStatement struct {
	StaffID              uuid.UUID           `json:"staff_id"`
	Name                 string              `json:"name"`
	Role                 enums.StaffRole     `json:"role"`
	CommissionPercentage decimal.Decimal     `json:"commission_percentage"`
	Months               []StaffMonthEarning `json:"months"`
	AllTimeTotalCents    int64               `json:"all_time_total_cents"`
	OngoingMonthCents    int64               `json:"ongoing_month_cents"`
}

// StaffEarnings is the per-staff earnings view. Exactly one of Agent or
// Designer is set, matching the staff member's earnings model.
type StaffEarnings struct {
	StaffID  uuid.UUID          `json:"staff_id"`
	Role     enums.StaffRole    `json:"role"`
	Agent    *StaffStatement    `json:"agent,omitempty"`
	Designer *DesignerStatement `json:"designer,omitempty"`
}

// Service exposes the earnings computations.
type Service interface {
	DesignerDistribution(ctx context.Context) ([]DesignerStatement, error)
	MonthlyEarningsForStaff(ctx context.Context, staffID uuid.UUID) (*StaffEarnings, error)
}

type service struct {
	repo Repository
	logg *logger.Logger
	now  func() time.Time
}

// NewService builds the earnings service.
func NewService(repo Repository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("earnings repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, logg: logg, now: func() time.Time { return time.Now().UTC() }}, nil
}

func (s *service) DesignerDistribution(ctx context.Context) ([]DesignerStatement, error) {
	designers, err := s.repo.ListDesigners(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list designers")
	}
	orderTimes, err := s.repo.ListCountableOrderTimes(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list countable orders")
	}
	return DistributeDesignerEarnings(designers, orderTimes, s.now()), nil
}

func (s *service) MonthlyEarningsForStaff(ctx context.Context, staffID uuid.UUID) (*StaffEarnings, error) {
	if staffID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "staff id required")
	}
	staff, err := s.repo.FindStaff(ctx, staffID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "staff not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load staff")
	}
	if staff.IsDeleted {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "staff not found")
	}

	earnings := &StaffEarnings{StaffID: staff.ID, Role: staff.Role}

	switch {
	case staff.Role.EarnsCommission():
		payments, err := s.repo.ListSettledPaymentsForStaff(ctx, staff.ID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list settled payments")
		}
		earnings.Agent = buildStaffStatement(staff.ID, staff.Name, staff.Role, staff.CommissionPercentage, staff.CreatedAt, payments, s.now())
		return earnings, nil
	case staff.Role == enums.StaffRoleDesigner:
		statements, err := s.DesignerDistribution(ctx)
		if err != nil {
			return nil, err
		}
		for i := range statements {
			if statements[i].StaffID == staff.ID {
				earnings.Designer = &statements[i]
				return earnings, nil
			}
		}
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "designer has no distribution entry")
	default:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "role has no earnings model")
	}
}

// buildStaffStatement buckets settled payments by creation month from the
// staff member's join month through the current month, pricing every payment
// at the current commission percentage.
func buildStaffStatement(staffID uuid.UUID, name string, role enums.StaffRole, percentage decimal.Decimal, joinedAt time.Time, payments []PaymentStamp, now time.Time) *StaffStatement {
	type bucket struct {
		count    int
		revenue  int64
		earnings int64
	}
	buckets := map[Month]bucket{}
	for _, payment := range payments {
		m := monthOf(payment.CreatedAt)
		b := buckets[m]
		b.count++
		b.revenue += payment.AmountCents
		b.earnings += ComputeCommission(payment.AmountCents, percentage)
		buckets[m] = b
	}

	statement := &StaffStatement{
		StaffID:              staffID,
		Name:                 name,
		Role:                 role,
		CommissionPercentage: percentage,
		Months:               []StaffMonthEarning{},
	}
	current := monthOf(now)
	for m := monthOf(joinedAt); !current.Before(m); m = m.next() {
		b := buckets[m]
		statement.Months = append(statement.Months, StaffMonthEarning{
			Month:           m,
			PaymentCount:    b.count,
			RevenueCents:    b.revenue,
			CommissionCents: b.earnings,
		})
		statement.AllTimeTotalCents += b.earnings
	}
	if n := len(statement.Months); n > 0 {
		statement.OngoingMonthCents = statement.Months[n-1].CommissionCents
	}
	return statement
}
