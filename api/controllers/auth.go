package controllers

import (
	"net/http"

	"github.com/printhubhq/printhub-backend/api/responses"
	"github.com/printhubhq/printhub-backend/api/validators"
	"github.com/printhubhq/printhub-backend/internal/staff"
	pkgerrors "github.com/printhubhq/printhub-backend/pkg/errors"
	"github.com/printhubhq/printhub-backend/pkg/logger"
)

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// StaffLogin wires the login endpoint into the HTTP layer.
func StaffLogin(svc staff.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			err := pkgerrors.New(pkgerrors.CodeInternal, "staff service unavailable")
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body loginRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Login(r.Context(), staff.LoginInput{
			Email:    body.Email,
			Password: body.Password,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}
