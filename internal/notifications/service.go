package notifications

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/printhubhq/printhub-backend/pkg/db/models"
	"github.com/printhubhq/printhub-backend/pkg/enums"
	pkgerrors "github.com/printhubhq/printhub-backend/pkg/errors"
	"github.com/printhubhq/printhub-backend/pkg/pagination"
)

// ActorContext identifies the staff member reading their inbox.
type ActorContext struct {
	StaffID uuid.UUID
	Role    enums.StaffRole
}

// ListParams configures pagination for notifications.
type ListParams struct {
	Actor      ActorContext
	Limit      int
	Cursor     string
	UnreadOnly bool
}

// ListResult wraps returned notifications and the cursor for the next page.
type ListResult struct {
	Items  []models.Notification `json:"items"`
	Cursor string                `json:"cursor"`
}

// Service defines notification list/read operations.
type Service interface {
	List(ctx context.Context, params ListParams) (*ListResult, error)
	MarkRead(ctx context.Context, actor ActorContext, notificationID uuid.UUID) error
	MarkAllRead(ctx context.Context, actor ActorContext) (int64, error)
}

type service struct {
	repo Repository
}

// NewService wires notifications dependencies.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "notifications repository required")
	}
	return &service{repo: repo}, nil
}

// Admins also see broadcast rows, which carry no staff id.
func scopeFor(actor ActorContext) notificationScope {
	return notificationScope{
		StaffID:          actor.StaffID,
		IncludeBroadcast: actor.Role == enums.StaffRoleAdmin,
	}
}

func (s *service) List(ctx context.Context, params ListParams) (*ListResult, error) {
	if params.Actor.StaffID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "staff id required")
	}

	query := listNotificationsParams{
		Scope:      scopeFor(params.Actor),
		Limit:      pagination.LimitWithBuffer(params.Limit),
		UnreadOnly: params.UnreadOnly,
	}
	if params.Cursor != "" {
		cursor, err := pagination.ParseCursor(params.Cursor)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		query.Cursor = cursor
	}

	rows, next, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list notifications")
	}

	cursor := ""
	if next != nil {
		cursor = pagination.EncodeCursor(*next)
	}

	return &ListResult{
		Items:  rows,
		Cursor: cursor,
	}, nil
}

func (s *service) MarkRead(ctx context.Context, actor ActorContext, notificationID uuid.UUID) error {
	if actor.StaffID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "staff id required")
	}
	if notificationID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "notification id required")
	}

	result, err := s.repo.MarkRead(ctx, scopeFor(actor), notificationID, time.Now().UTC())
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark notification read")
	}
	if !result.Found {
		return pkgerrors.New(pkgerrors.CodeNotFound, "notification not found")
	}
	return nil
}

func (s *service) MarkAllRead(ctx context.Context, actor ActorContext) (int64, error) {
	if actor.StaffID == uuid.Nil {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "staff id required")
	}

	count, err := s.repo.MarkAllRead(ctx, scopeFor(actor), time.Now().UTC())
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark notifications read")
	}
	return count, nil
}
