package staff

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/printhubhq/printhub-backend/pkg/auth"
	"github.com/printhubhq/printhub-backend/pkg/config"
	"github.com/printhubhq/printhub-backend/pkg/db"
	"github.com/printhubhq/printhub-backend/pkg/db/models"
	"github.com/printhubhq/printhub-backend/pkg/enums"
	pkgerrors "github.com/printhubhq/printhub-backend/pkg/errors"
	"github.com/printhubhq/printhub-backend/pkg/logger"
	"github.com/printhubhq/printhub-backend/pkg/security"
)

// Service manages staff accounts and authentication.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*models.Staff, error)
	Update(ctx context.Context, input UpdateInput) (*models.Staff, error)
	SetStatus(ctx context.Context, input SetStatusInput) error
	Delete(ctx context.Context, actor ActorContext, staffID uuid.UUID) error
	Get(ctx context.Context, staffID uuid.UUID) (*models.Staff, error)
	List(ctx context.Context) ([]models.Staff, error)
	Login(ctx context.Context, input LoginInput) (*LoginResult, error)
}

type service struct {
	repo     Repository
	jwt      config.JWTConfig
	password config.PasswordConfig
	logg     *logger.Logger
	now      func() time.Time
}

// NewService builds the staff service.
func NewService(repo Repository, jwtCfg config.JWTConfig, passwordCfg config.PasswordConfig, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("staff repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		repo:     repo,
		jwt:      jwtCfg,
		password: passwordCfg,
		logg:     logg,
		now:      func() time.Time { return time.Now().UTC() },
	}, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*models.Staff, error) {
	if input.Actor.Role != enums.StaffRoleAdmin {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only admins can create staff")
	}
	if strings.TrimSpace(input.Name) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name required")
	}
	email := normalizeEmail(input.Email)
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email required")
	}
	if len(input.Password) < 8 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "password must be at least 8 characters")
	}
	if !input.Role.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid staff role")
	}
	if input.CommissionPercentage.IsNegative() || input.CommissionPercentage.GreaterThan(decimal.NewFromInt(100)) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "commission percentage must be between 0 and 100")
	}
	if input.Role == enums.StaffRoleDesigner && (input.DesignCharge == nil || *input.DesignCharge < 0) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "designers need a non-negative design charge")
	}

	hash, err := security.HashPassword(input.Password, s.password)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	staff := &models.Staff{
		ID:                   uuid.New(),
		Name:                 strings.TrimSpace(input.Name),
		Email:                email,
		PasswordHash:         hash,
		Role:                 input.Role,
		CommissionPercentage: input.CommissionPercentage,
		DesignCharge:         input.DesignCharge,
		Status:               enums.StaffStatusOffline,
	}
	if _, err := s.repo.Create(ctx, staff); err != nil {
		if db.IsUniqueViolation(err, "staff") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create staff")
	}
	return staff, nil
}

func (s *service) Update(ctx context.Context, input UpdateInput) (*models.Staff, error) {
	if input.Actor.Role != enums.StaffRoleAdmin {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only admins can update staff")
	}
	staff, err := s.findActive(ctx, input.StaffID)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if input.Name != nil {
		if strings.TrimSpace(*input.Name) == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "name must not be empty")
		}
		updates["name"] = strings.TrimSpace(*input.Name)
	}
	if input.CommissionPercentage != nil {
		if input.CommissionPercentage.IsNegative() || input.CommissionPercentage.GreaterThan(decimal.NewFromInt(100)) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "commission percentage must be between 0 and 100")
		}
		updates["commission_percentage"] = *input.CommissionPercentage
	}
	if input.DesignCharge != nil {
		if *input.DesignCharge < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "design charge must not be negative")
		}
		updates["design_charge"] = *input.DesignCharge
	}
	if input.Role != nil {
		if !input.Role.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid staff role")
		}
		updates["role"] = *input.Role
	}
	if len(updates) == 0 {
		return staff, nil
	}

	if err := s.repo.Update(ctx, staff.ID, updates); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update staff")
	}
	return s.findActive(ctx, staff.ID)
}

func (s *service) SetStatus(ctx context.Context, input SetStatusInput) error {
	if input.Status != enums.StaffStatusOnline && input.Status != enums.StaffStatusOffline {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid staff status")
	}
	if input.Actor.Role != enums.StaffRoleAdmin && input.Actor.StaffID != input.StaffID {
		return pkgerrors.New(pkgerrors.CodeForbidden, "can only change own status")
	}
	if _, err := s.findActive(ctx, input.StaffID); err != nil {
		return err
	}
	if err := s.repo.Update(ctx, input.StaffID, map[string]any{"status": input.Status}); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update staff status")
	}
	return nil
}

// Delete soft-deletes the account. Deleted staff drop out of the assignment
// roster and earnings reports; their history stays attached to past orders.
func (s *service) Delete(ctx context.Context, actor ActorContext, staffID uuid.UUID) error {
	if actor.Role != enums.StaffRoleAdmin {
		return pkgerrors.New(pkgerrors.CodeForbidden, "only admins can delete staff")
	}
	if actor.StaffID == staffID {
		return pkgerrors.New(pkgerrors.CodeValidation, "cannot delete own account")
	}
	if _, err := s.findActive(ctx, staffID); err != nil {
		return err
	}
	updates := map[string]any{
		"is_deleted": true,
		"status":     enums.StaffStatusOffline,
	}
	if err := s.repo.Update(ctx, staffID, updates); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete staff")
	}
	return nil
}

func (s *service) Get(ctx context.Context, staffID uuid.UUID) (*models.Staff, error) {
	return s.findActive(ctx, staffID)
}

func (s *service) List(ctx context.Context) ([]models.Staff, error) {
	staff, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list staff")
	}
	return staff, nil
}

func (s *service) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	email := normalizeEmail(input.Email)
	if email == "" || input.Password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email and password required")
	}

	staff, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find staff")
	}
	if staff.IsDeleted {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
	}

	ok, err := security.VerifyPassword(input.Password, staff.PasswordHash)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
	}

	token, err := auth.MintAccessToken(s.jwt, s.now(), auth.AccessTokenPayload{
		StaffID: staff.ID,
		Role:    staff.Role,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint access token")
	}

	logCtx := s.logg.WithFields(ctx, map[string]any{"staff_id": staff.ID.String()})
	s.logg.Info(logCtx, "staff logged in")
	return &LoginResult{Token: token, Staff: staff}, nil
}

func (s *service) findActive(ctx context.Context, staffID uuid.UUID) (*models.Staff, error) {
	if staffID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "staff id required")
	}
	staff, err := s.repo.FindByID(ctx, staffID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "staff not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load staff")
	}
	if staff.IsDeleted {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "staff not found")
	}
	return staff, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
