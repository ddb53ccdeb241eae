package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/printhubhq/printhub-backend/api/responses"
	"github.com/printhubhq/printhub-backend/internal/earnings"
	"github.com/printhubhq/printhub-backend/pkg/enums"
	pkgerrors "github.com/printhubhq/printhub-backend/pkg/errors"
	"github.com/printhubhq/printhub-backend/pkg/logger"
)

// StaffEarnings returns the monthly earnings view for one staff member.
// Non-admins may only read their own statement.
func StaffEarnings(svc earnings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		staffID, role, err := actorFromContext(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		targetID, err := uuid.Parse(chi.URLParam(r, "staffId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid staff id"))
			return
		}

		if role != enums.StaffRoleAdmin && targetID != staffID {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "earnings are private to the staff member"))
			return
		}

		statement, err := svc.MonthlyEarningsForStaff(r.Context(), targetID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, statement)
	}
}

// DesignerDistribution returns the pooled designer earnings report.
// Admin-only by routing.
func DesignerDistribution(svc earnings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		statements, err := svc.DesignerDistribution(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, statements)
	}
}
