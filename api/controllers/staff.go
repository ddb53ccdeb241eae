package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/printhubhq/printhub-backend/api/responses"
	"github.com/printhubhq/printhub-backend/api/validators"
	"github.com/printhubhq/printhub-backend/internal/staff"
	"github.com/printhubhq/printhub-backend/pkg/enums"
	pkgerrors "github.com/printhubhq/printhub-backend/pkg/errors"
	"github.com/printhubhq/printhub-backend/pkg/logger"
)

type createStaffRequest struct {
	Name                 string `json:"name" validate:"required,max=120"`
	Email                string `json:"email" validate:"required,email"`
	Password             string `json:"password" validate:"required,min=8"`
	Role                 string `json:"role" validate:"required"`
	CommissionPercentage string `json:"commission_percentage"`
	DesignChargeCents    *int64 `json:"design_charge_cents"`
}

type updateStaffRequest struct {
	Name                 *string `json:"name" validate:"omitempty,max=120"`
	Role                 *string `json:"role"`
	CommissionPercentage *string `json:"commission_percentage"`
	DesignChargeCents    *int64  `json:"design_charge_cents"`
}

type setStaffStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// CreateStaff registers a new staff account. Admin-only by routing.
func CreateStaff(svc staff.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		staffID, role, err := actorFromContext(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body createStaffRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		newRole, err := enums.ParseStaffRole(body.Role)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid role"))
			return
		}

		percentage := decimal.Zero
		if body.CommissionPercentage != "" {
			percentage, err = decimal.NewFromString(body.CommissionPercentage)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid commission percentage"))
				return
			}
		}

		created, err := svc.Create(r.Context(), staff.CreateInput{
			Actor:                staff.ActorContext{StaffID: staffID, Role: role},
			Name:                 validators.SanitizeString(body.Name, 120),
			Email:                body.Email,
			Password:             body.Password,
			Role:                 newRole,
			CommissionPercentage: percentage,
			DesignCharge:         body.DesignChargeCents,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, created)
	}
}

// UpdateStaff patches an existing staff account.
func UpdateStaff(svc staff.Service, logg *logger.Logger) http.HandlerFunc {
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

		var body updateStaffRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := staff.UpdateInput{
			Actor:        staff.ActorContext{StaffID: staffID, Role: role},
			StaffID:      targetID,
			DesignCharge: body.DesignChargeCents,
		}
		if body.Name != nil {
			name := validators.SanitizeString(*body.Name, 120)
			input.Name = &name
		}
		if body.Role != nil {
			parsed, err := enums.ParseStaffRole(*body.Role)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid role"))
				return
			}
			input.Role = &parsed
		}
		if body.CommissionPercentage != nil {
			percentage, err := decimal.NewFromString(*body.CommissionPercentage)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid commission percentage"))
				return
			}
			input.CommissionPercentage = &percentage
		}

		updated, err := svc.Update(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, updated)
	}
}

// SetStaffStatus flips a staff member's availability.
func SetStaffStatus(svc staff.Service, logg *logger.Logger) http.HandlerFunc {
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

		var body setStaffStatusRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		status, err := enums.ParseStaffStatus(body.Status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status"))
			return
		}

		if err := svc.SetStatus(r.Context(), staff.SetStatusInput{
			Actor:   staff.ActorContext{StaffID: staffID, Role: role},
			StaffID: targetID,
			Status:  status,
		}); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": string(status)})
	}
}

// DeleteStaff soft-deletes a staff account.
func DeleteStaff(svc staff.Service, logg *logger.Logger) http.HandlerFunc {
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

		if err := svc.Delete(r.Context(), staff.ActorContext{StaffID: staffID, Role: role}, targetID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"deleted": true})
	}
}

// GetStaff returns a single staff account.
func GetStaff(svc staff.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		targetID, err := uuid.Parse(chi.URLParam(r, "staffId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid staff id"))
			return
		}

		record, err := svc.Get(r.Context(), targetID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, record)
	}
}

// ListStaff returns the full roster.
func ListStaff(svc staff.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		records, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, records)
	}
}
