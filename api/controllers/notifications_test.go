package controllers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/printhubhq/printhub-backend/api/middleware"
	"github.com/printhubhq/printhub-backend/internal/notifications"
	"github.com/printhubhq/printhub-backend/pkg/enums"
	"github.com/printhubhq/printhub-backend/pkg/logger"
)

type testNotificationsService struct {
	listFn        func(ctx context.Context, params notifications.ListParams) (*notifications.ListResult, error)
	markReadFn    func(ctx context.Context, actor notifications.ActorContext, notificationID uuid.UUID) error
	markAllReadFn func(ctx context.Context, actor notifications.ActorContext) (int64, error)
}

func (s *testNotificationsService) List(ctx context.Context, params notifications.ListParams) (*notifications.ListResult, error) {
	if s.listFn != nil {
		return s.listFn(ctx, params)
	}
	return &notifications.ListResult{}, nil
}

func (s *testNotificationsService) MarkRead(ctx context.Context, actor notifications.ActorContext, notificationID uuid.UUID) error {
	if s.markReadFn != nil {
		return s.markReadFn(ctx, actor, notificationID)
	}
	return nil
}

func (s *testNotificationsService) MarkAllRead(ctx context.Context, actor notifications.ActorContext) (int64, error) {
	if s.markAllReadFn != nil {
		return s.markAllReadFn(ctx, actor)
	}
	return 0, nil
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func authedRequest(req *http.Request, staffID uuid.UUID, role enums.StaffRole) *http.Request {
	ctx := middleware.WithStaffID(req.Context(), staffID.String())
	ctx = middleware.WithRole(ctx, string(role))
	return req.WithContext(ctx)
}

func addRouteParam(req *http.Request, key, value string) *http.Request {
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))
}

func TestMarkNotificationReadSuccess(t *testing.T) {
	staffID := uuid.New()
	notificationID := uuid.New()
	called := false
	svc := &testNotificationsService{
		markReadFn: func(ctx context.Context, actor notifications.ActorContext, nid uuid.UUID) error {
			called = true
			if actor.StaffID != staffID {
				t.Fatalf("unexpected actor %s", actor.StaffID)
			}
			if actor.Role != enums.StaffRoleAgent {
				t.Fatalf("unexpected role %s", actor.Role)
			}
			if nid != notificationID {
				t.Fatalf("unexpected notification %s", nid)
			}
			return nil
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/notifications/"+notificationID.String()+"/read", nil)
	req = authedRequest(req, staffID, enums.StaffRoleAgent)
	req = addRouteParam(req, "notificationId", notificationID.String())

	resp := httptest.NewRecorder()
	MarkNotificationRead(svc, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", resp.Code)
	}
	if !called {
		t.Fatal("expected service called")
	}
	var envelope struct {
		Data map[string]bool `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if !envelope.Data["read"] {
		t.Fatal("response missing read flag")
	}
}

func TestMarkNotificationReadMissingAuth(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/notifications/"+uuid.NewString()+"/read", nil)
	req = addRouteParam(req, "notificationId", uuid.NewString())
	resp := httptest.NewRecorder()
	MarkNotificationRead(&testNotificationsService{}, testLogger())(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestMarkNotificationReadInvalidID(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/notifications/invalid/read", nil)
	req = authedRequest(req, uuid.New(), enums.StaffRoleAgent)
	req = addRouteParam(req, "notificationId", "invalid")
	resp := httptest.NewRecorder()
	MarkNotificationRead(&testNotificationsService{}, testLogger())(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestListNotificationsPassesQuery(t *testing.T) {
	staffID := uuid.New()
	svc := &testNotificationsService{
		listFn: func(ctx context.Context, params notifications.ListParams) (*notifications.ListResult, error) {
			if params.Limit != 10 {
				t.Fatalf("limit = %d, want 10", params.Limit)
			}
			if !params.UnreadOnly {
				t.Fatal("unread_only not passed through")
			}
			if params.Cursor != "abc" {
				t.Fatalf("cursor = %q", params.Cursor)
			}
			return &notifications.ListResult{}, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/notifications?limit=10&unread_only=true&cursor=abc", nil)
	req = authedRequest(req, staffID, enums.StaffRoleAdmin)
	resp := httptest.NewRecorder()
	ListNotifications(svc, testLogger())(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", resp.Code, resp.Body.String())
	}
}

func TestMarkAllNotificationsReadSuccess(t *testing.T) {
	staffID := uuid.New()
	svc := &testNotificationsService{
		markAllReadFn: func(ctx context.Context, actor notifications.ActorContext) (int64, error) {
			if actor.StaffID != staffID {
				t.Fatalf("unexpected actor %s", actor.StaffID)
			}
			return 5, nil
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/notifications/read-all", nil)
	req = authedRequest(req, staffID, enums.StaffRoleDesigner)
	resp := httptest.NewRecorder()
	MarkAllNotificationsRead(svc, testLogger())(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", resp.Code)
	}
	var envelope struct {
		Data map[string]float64 `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if envelope.Data["updated"] != 5 {
		t.Fatalf("expected updated=5 got %v", envelope.Data["updated"])
	}
}
