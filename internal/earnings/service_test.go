package earnings

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/printhubhq/printhub-backend/pkg/db/models"
	"github.com/printhubhq/printhub-backend/pkg/enums"
	pkgerrors "github.com/printhubhq/printhub-backend/pkg/errors"
	"github.com/printhubhq/printhub-backend/pkg/logger"
)

type stubEarningsRepo struct {
	staff      map[uuid.UUID]*models.Staff
	designers  []models.Staff
	orderTimes []time.Time
	payments   map[uuid.UUID][]PaymentStamp
}

func newStubEarningsRepo() *stubEarningsRepo {
	return &stubEarningsRepo{
		staff:    map[uuid.UUID]*models.Staff{},
		payments: map[uuid.UUID][]PaymentStamp{},
	}
}

func (s *stubEarningsRepo) FindStaff(ctx context.Context, staffID uuid.UUID) (*models.Staff, error) {
	staff, ok := s.staff[staffID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return staff, nil
}

func (s *stubEarningsRepo) ListDesigners(ctx context.Context) ([]models.Staff, error) {
	return s.designers, nil
}

func (s *stubEarningsRepo) ListCountableOrderTimes(ctx context.Context) ([]time.Time, error) {
	return s.orderTimes, nil
}

func (s *stubEarningsRepo) ListSettledPaymentsForStaff(ctx context.Context, staffID uuid.UUID) ([]PaymentStamp, error) {
	return s.payments[staffID], nil
}

func newEarningsService(t *testing.T, repo Repository, now time.Time) Service {
	t.Helper()

	svc, err := NewService(repo, logger.New(logger.Options{}))
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	svc.(*service).now = func() time.Time { return now }
	return svc
}

func TestMonthlyEarningsForAgent(t *testing.T) {
	repo := newStubEarningsRepo()
	joined := time.Date(2026, time.June, 3, 0, 0, 0, 0, time.UTC)
	agent := &models.Staff{
		ID:                   uuid.New(),
		Name:                 "Agent",
		Role:                 enums.StaffRoleAgent,
		CommissionPercentage: decimal.RequireFromString("10"),
		CreatedAt:            joined,
	}
	repo.staff[agent.ID] = agent
	repo.payments[agent.ID] = []PaymentStamp{
		{AmountCents: 1000, CreatedAt: time.Date(2026, time.June, 10, 0, 0, 0, 0, time.UTC)},
		{AmountCents: 500, CreatedAt: time.Date(2026, time.June, 20, 0, 0, 0, 0, time.UTC)},
		{AmountCents: 2000, CreatedAt: time.Date(2026, time.August, 1, 0, 0, 0, 0, time.UTC)},
	}

	now := time.Date(2026, time.August, 15, 0, 0, 0, 0, time.UTC)
	svc := newEarningsService(t, repo, now)

	earnings, err := svc.MonthlyEarningsForStaff(context.Background(), agent.ID)
	if err != nil {
		t.Fatalf("MonthlyEarningsForStaff: %v", err)
	}
	if earnings.Agent == nil || earnings.Designer != nil {
		t.Fatalf("agent statement expected")
	}

	months := earnings.Agent.Months
	if len(months) != 3 {
		t.Fatalf("expected Jun-Aug history, got %d months", len(months))
	}
	if months[0].CommissionCents != 150 || months[0].PaymentCount != 2 {
		t.Fatalf("June commission = %d (%d payments), want 150 (2)", months[0].CommissionCents, months[0].PaymentCount)
	}
	if months[1].CommissionCents != 0 {
		t.Fatalf("July must be a zero month, got %d", months[1].CommissionCents)
	}
	if months[2].CommissionCents != 200 {
		t.Fatalf("August commission = %d, want 200", months[2].CommissionCents)
	}
	if earnings.Agent.AllTimeTotalCents != 350 {
		t.Fatalf("all-time total = %d, want 350", earnings.Agent.AllTimeTotalCents)
	}
	if earnings.Agent.OngoingMonthCents != 200 {
		t.Fatalf("ongoing month = %d, want 200", earnings.Agent.OngoingMonthCents)
	}
}

func TestMonthlyEarningsRepricesAtCurrentRate(t *testing.T) {
	repo := newStubEarningsRepo()
	joined := time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC)
	agent := &models.Staff{
		ID:                   uuid.New(),
		Name:                 "Agent",
		Role:                 enums.StaffRoleOfflineAgent,
		CommissionPercentage: decimal.RequireFromString("20"),
		CreatedAt:            joined,
	}
	repo.staff[agent.ID] = agent
	repo.payments[agent.ID] = []PaymentStamp{
		{AmountCents: 1000, CreatedAt: joined.Add(24 * time.Hour)},
	}

	svc := newEarningsService(t, repo, joined.AddDate(0, 0, 20))
	earnings, err := svc.MonthlyEarningsForStaff(context.Background(), agent.ID)
	if err != nil {
		t.Fatalf("MonthlyEarningsForStaff: %v", err)
	}

	// Past payments are priced at today's rate, not the rate at payment time.
	if earnings.Agent.AllTimeTotalCents != 200 {
		t.Fatalf("all-time total = %d, want 200 at the current 20%% rate", earnings.Agent.AllTimeTotalCents)
	}
}

func TestMonthlyEarningsForDesignerUsesDistribution(t *testing.T) {
	repo := newStubEarningsRepo()
	march := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)
	charge := int64(100)
	des := &models.Staff{
		ID:           uuid.New(),
		Name:         "Designer",
		Role:         enums.StaffRoleDesigner,
		DesignCharge: &charge,
		CreatedAt:    march,
	}
	repo.staff[des.ID] = des
	repo.designers = []models.Staff{*des}
	repo.orderTimes = []time.Time{march.Add(time.Hour), march.Add(2 * time.Hour)}

	svc := newEarningsService(t, repo, march.AddDate(0, 0, 20))
	earnings, err := svc.MonthlyEarningsForStaff(context.Background(), des.ID)
	if err != nil {
		t.Fatalf("MonthlyEarningsForStaff: %v", err)
	}
	if earnings.Designer == nil || earnings.Agent != nil {
		t.Fatalf("designer statement expected")
	}
	if !earnings.Designer.OngoingMonth.Equal(decimal.NewFromInt(200)) {
		t.Fatalf("ongoing month = %s, want 200", earnings.Designer.OngoingMonth)
	}
}

func TestMonthlyEarningsUnknownStaff(t *testing.T) {
	svc := newEarningsService(t, newStubEarningsRepo(), time.Now().UTC())
	_, err := svc.MonthlyEarningsForStaff(context.Background(), uuid.New())
	if !pkgerrors.Is(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestMonthlyEarningsAdminHasNoModel(t *testing.T) {
	repo := newStubEarningsRepo()
	admin := &models.Staff{ID: uuid.New(), Name: "Admin", Role: enums.StaffRoleAdmin, CreatedAt: time.Now().UTC()}
	repo.staff[admin.ID] = admin

	svc := newEarningsService(t, repo, time.Now().UTC())
	_, err := svc.MonthlyEarningsForStaff(context.Background(), admin.ID)
	if !pkgerrors.Is(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestMonthlyEarningsDeletedStaffHidden(t *testing.T) {
	repo := newStubEarningsRepo()
	gone := &models.Staff{ID: uuid.New(), Name: "Gone", Role: enums.StaffRoleAgent, IsDeleted: true, CreatedAt: time.Now().UTC()}
	repo.staff[gone.ID] = gone

	svc := newEarningsService(t, repo, time.Now().UTC())
	_, err := svc.MonthlyEarningsForStaff(context.Background(), gone.ID)
	if !pkgerrors.Is(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
