package assignment

import (
	"math/rand"
	"testing"

	"github.com/google/uuid"

	"github.com/printhubhq/printhub-backend/pkg/enums"
	pkgerrors "github.com/printhubhq/printhub-backend/pkg/errors"
)

func newRng() *rand.Rand {
	return rand.New(rand.NewSource(42))
}

func TestAssignExplicitStaffWins(t *testing.T) {
	requested := uuid.New()
	roster := []RosterMember{
		{ID: uuid.New(), Status: enums.StaffStatusOnline},
	}

	got, err := Assign(Input{RequestedStaffID: &requested, CreatorRole: enums.StaffRoleAdmin}, roster, newRng())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == nil || *got != requested {
		t.Fatalf("expected requested staff %s, got %v", requested, got)
	}
}

func TestAssignExplicitDesignerAllowed(t *testing.T) {
	requested := uuid.New()

	got, err := Assign(Input{RequestedStaffID: &requested, CreatorRole: enums.StaffRoleDesigner}, nil, newRng())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == nil || *got != requested {
		t.Fatalf("explicit id should win even for designer creators")
	}
}

func TestAssignDesignerCreatorStaysUnassigned(t *testing.T) {
	roster := []RosterMember{
		{ID: uuid.New(), Status: enums.StaffStatusOnline},
		{ID: uuid.New(), Status: enums.StaffStatusOnline},
	}

	got, err := Assign(Input{CreatorRole: enums.StaffRoleDesigner}, roster, newRng())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != nil {
		t.Fatalf("designer creator must not be auto-assigned, got %v", got)
	}
}

func TestAssignPrefersOnlineMembers(t *testing.T) {
	online := uuid.New()
	roster := []RosterMember{
		{ID: uuid.New(), Status: enums.StaffStatusOffline},
		{ID: online, Status: enums.StaffStatusOnline},
		{ID: uuid.New(), Status: enums.StaffStatusOffline},
	}

	rng := newRng()
	for i := 0; i < 20; i++ {
		got, err := Assign(Input{CreatorRole: enums.StaffRoleAgent}, roster, rng)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got == nil || *got != online {
			t.Fatalf("draw %d: expected only online member %s, got %v", i, online, got)
		}
	}
}

func TestAssignFallsBackToAllNonDeleted(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	roster := []RosterMember{
		{ID: a, Status: enums.StaffStatusOffline},
		{ID: b, Status: enums.StaffStatusOffline},
		{ID: uuid.New(), Status: enums.StaffStatusOnline, IsDeleted: true},
	}

	rng := newRng()
	seen := map[uuid.UUID]bool{}
	for i := 0; i < 50; i++ {
		got, err := Assign(Input{CreatorRole: enums.StaffRoleAgent}, roster, rng)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got == nil {
			t.Fatalf("expected a fallback assignment")
		}
		if *got != a && *got != b {
			t.Fatalf("deleted member drawn: %v", got)
		}
		seen[*got] = true
	}
	if !seen[a] || !seen[b] {
		t.Fatalf("expected uniform draws across both offline members, saw %v", seen)
	}
}

func TestAssignEmptyRosterUnavailable(t *testing.T) {
	got, err := Assign(Input{CreatorRole: enums.StaffRoleAgent}, nil, newRng())
	if got != nil {
		t.Fatalf("expected unassigned, got %v", got)
	}
	if !pkgerrors.Is(err, pkgerrors.CodeAssignmentUnavailable) {
		t.Fatalf("expected assignment unavailable, got %v", err)
	}
}

func TestAssignSeededDeterminism(t *testing.T) {
	roster := []RosterMember{
		{ID: uuid.MustParse("00000000-0000-0000-0000-000000000001"), Status: enums.StaffStatusOnline},
		{ID: uuid.MustParse("00000000-0000-0000-0000-000000000002"), Status: enums.StaffStatusOnline},
		{ID: uuid.MustParse("00000000-0000-0000-0000-000000000003"), Status: enums.StaffStatusOnline},
	}

	first, err := Assign(Input{CreatorRole: enums.StaffRoleAdmin}, roster, rand.New(rand.NewSource(7)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := Assign(Input{CreatorRole: enums.StaffRoleAdmin}, roster, rand.New(rand.NewSource(7)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if *first != *second {
		t.Fatalf("same seed must produce the same draw: %v vs %v", first, second)
	}
}
