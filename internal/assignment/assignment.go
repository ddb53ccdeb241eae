package assignment

import (
	"math/rand"

	"github.com/google/uuid"

	"github.com/printhubhq/printhub-backend/pkg/enums"
	pkgerrors "github.com/printhubhq/printhub-backend/pkg/errors"
)

// Input carries the creation-time facts the policy decides on.
type Input struct {
	RequestedStaffID *uuid.UUID
	CreatorRole      enums.StaffRole
}

// RosterMember is a snapshot of one assignable staff row.
type RosterMember struct {
	ID        uuid.UUID
	Status    enums.StaffStatus
	IsDeleted bool
}

// Assign picks the staff member for a new order. An explicit staff id wins
// unconditionally. Designer creators never self-assign. Otherwise the draw is
// uniform over online members, falling back to all non-deleted members.
// Repeated calls are independent draws; there is no load balancing.
func Assign(input Input, roster []RosterMember, rng *rand.Rand) (*uuid.UUID, error) {
	if input.RequestedStaffID != nil && *input.RequestedStaffID != uuid.Nil {
		id := *input.RequestedStaffID
		return &id, nil
	}

	if input.CreatorRole == enums.StaffRoleDesigner {
		return nil, nil
	}

	candidates := filter(roster, func(m RosterMember) bool {
		return !m.IsDeleted && m.Status == enums.StaffStatusOnline
	})
	if len(candidates) == 0 {
		candidates = filter(roster, func(m RosterMember) bool {
			return !m.IsDeleted
		})
	}
	if len(candidates) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeAssignmentUnavailable, "no assignable staff available")
	}

	picked := candidates[rng.Intn(len(candidates))].ID
	return &picked, nil
}

func filter(roster []RosterMember, keep func(RosterMember) bool) []RosterMember {
	out := make([]RosterMember, 0, len(roster))
	for _, m := range roster {
		if keep(m) {
			out = append(out, m)
		}
	}
	return out
}
