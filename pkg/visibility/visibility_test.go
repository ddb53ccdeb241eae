package visibility

import (
	"testing"

	"github.com/google/uuid"

	"github.com/printhubhq/printhub-backend/pkg/enums"
	"github.com/printhubhq/printhub-backend/pkg/errors"
)

func TestApplyScope(t *testing.T) {
	caller := uuid.New()
	other := uuid.New()

	t.Run("agent forced to own orders", func(t *testing.T) {
		scoped, err := ApplyScope(enums.StaffRoleAgent, caller, OrderFilter{StaffID: &other})
		if err != nil {
			t.Fatalf("expected success, got %v", err)
		}
		if scoped.StaffID == nil || *scoped.StaffID != caller {
			t.Fatalf("expected staff filter %s, got %v", caller, scoped.StaffID)
		}
	})

	t.Run("offline agent forced to own orders", func(t *testing.T) {
		scoped, err := ApplyScope(enums.StaffRoleOfflineAgent, caller, OrderFilter{Unassigned: true})
		if err != nil {
			t.Fatalf("expected success, got %v", err)
		}
		if scoped.StaffID == nil || *scoped.StaffID != caller {
			t.Fatalf("expected staff filter %s, got %v", caller, scoped.StaffID)
		}
		if scoped.Unassigned {
			t.Fatal("expected unassigned filter to be cleared for agents")
		}
	})

	t.Run("agent without staff id forbidden", func(t *testing.T) {
		_, err := ApplyScope(enums.StaffRoleAgent, uuid.Nil, OrderFilter{})
		if err == nil || errors.As(err).Code() != errors.CodeForbidden {
			t.Fatalf("expected forbidden, got %v", err)
		}
	})

	t.Run("admin staff constraint stripped", func(t *testing.T) {
		scoped, err := ApplyScope(enums.StaffRoleAdmin, caller, OrderFilter{StaffID: &other})
		if err != nil {
			t.Fatalf("expected success, got %v", err)
		}
		if scoped.StaffID != nil {
			t.Fatalf("expected staff constraint stripped, got %v", scoped.StaffID)
		}
	})

	t.Run("designer sees unassigned", func(t *testing.T) {
		scoped, err := ApplyScope(enums.StaffRoleDesigner, caller, OrderFilter{Unassigned: true})
		if err != nil {
			t.Fatalf("expected success, got %v", err)
		}
		if !scoped.Unassigned {
			t.Fatal("expected unassigned filter preserved")
		}
	})

	t.Run("other filters untouched", func(t *testing.T) {
		status := enums.OrderStatusDesignInProgress
		scoped, err := ApplyScope(enums.StaffRoleAgent, caller, OrderFilter{Status: &status})
		if err != nil {
			t.Fatalf("expected success, got %v", err)
		}
		if scoped.Status == nil || *scoped.Status != status {
			t.Fatal("expected status filter preserved")
		}
	})

	t.Run("unknown role forbidden", func(t *testing.T) {
		_, err := ApplyScope("customer", caller, OrderFilter{})
		if err == nil || errors.As(err).Code() != errors.CodeForbidden {
			t.Fatalf("expected forbidden, got %v", err)
		}
	})
}
