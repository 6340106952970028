package controllers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"campusevents/internal/delivery/http/helpers"
	"campusevents/internal/delivery/http/middleware"
	"campusevents/internal/domain"
)

type ProfileController struct {
	Logger  *slog.Logger
	Service domain.ProfileService
}

func NewProfileController(logger *slog.Logger, svc domain.ProfileService) *ProfileController {
	return &ProfileController{
		Logger:  logger,
		Service: svc,
	}
}

// ProfileRequest is the request body for POST /profile and PUT /profile.
// Birthdate accepts "2006-01-02" or RFC 3339.
type ProfileRequest struct {
	PhoneNumber      string `json:"phone_number"`
	EnrollmentNumber string `json:"enrollment_number"`
	Birthdate        string `json:"birthdate"`
	Class            string `json:"class"`
	Year             int    `json:"year"`
	Semester         int    `json:"semester"`

	birthdate time.Time
}

// Validate implements helpers.Validator.
func (r *ProfileRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(r.PhoneNumber) == "" {
		errs = append(errs, "phone_number is required")
	}
	if strings.TrimSpace(r.EnrollmentNumber) == "" {
		errs = append(errs, "enrollment_number is required")
	}
	if strings.TrimSpace(r.Class) == "" {
		errs = append(errs, "class is required")
	}
	if r.Year < 1 || r.Year > 5 {
		errs = append(errs, "year must be between 1 and 5")
	}
	if r.Semester < 1 || r.Semester > 10 {
		errs = append(errs, "semester must be between 1 and 10")
	}
	if strings.TrimSpace(r.Birthdate) == "" {
		errs = append(errs, "birthdate is required")
	} else {
		t, err := time.Parse("2006-01-02", r.Birthdate)
		if err != nil {
			t, err = time.Parse(time.RFC3339, r.Birthdate)
		}
		if err != nil {
			errs = append(errs, "birthdate must be YYYY-MM-DD or RFC 3339")
		} else {
			r.birthdate = t
		}
	}
	return errs
}

func (r *ProfileRequest) toProfile() *domain.Profile {
	return &domain.Profile{
		PhoneNumber:      strings.TrimSpace(r.PhoneNumber),
		EnrollmentNumber: strings.TrimSpace(r.EnrollmentNumber),
		Birthdate:        r.birthdate,
		Class:            strings.TrimSpace(r.Class),
		Year:             r.Year,
		Semester:         r.Semester,
	}
}

// ProfileSuccessResponse is the success response envelope for profile endpoints.
type ProfileSuccessResponse struct {
	Data  *domain.User      `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// CreateProfile godoc
// @Summary Complete the student profile
// @Description Records the mandatory profile fields and opens the event registration gate. Students only.
// @Tags profile
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body controllers.ProfileRequest true "Profile fields"
// @Success 201 {object} controllers.ProfileSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request (validation, or profile already complete)"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (not a student)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /profile [post]
func (c *ProfileController) CreateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}

	var req ProfileRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}

	user, err := c.Service.CreateProfile(r.Context(), userID, req.toProfile())
	if err != nil {
		c.writeProfileError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, user)
}

// GetProfile godoc
// @Summary Get the student profile
// @Tags profile
// @Produce json
// @Security BearerAuth
// @Success 200 {object} controllers.ProfileSuccessResponse
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (not a student)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found (profile not created yet)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /profile [get]
func (c *ProfileController) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}

	user, err := c.Service.GetProfile(r.Context(), userID)
	if err != nil {
		c.writeProfileError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, user)
}

// UpdateProfile godoc
// @Summary Update the student profile
// @Tags profile
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body controllers.ProfileRequest true "Profile fields"
// @Success 200 {object} controllers.ProfileSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (not a student)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found (profile not created yet)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /profile [put]
func (c *ProfileController) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}

	var req ProfileRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}

	user, err := c.Service.UpdateProfile(r.Context(), userID, req.toProfile())
	if err != nil {
		c.writeProfileError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, user)
}

// ChangeUserRoleRequest is the request body for POST /events/change-role.
type ChangeUserRoleRequest struct {
	Email string `json:"email"`
	Role  string `json:"role"`
}

// Validate implements helpers.Validator.
func (r *ChangeUserRoleRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(r.Email) == "" {
		errs = append(errs, "email is required")
	}
	if strings.TrimSpace(r.Role) == "" {
		errs = append(errs, "role is required")
	}
	return errs
}

// ChangeUserRole godoc
// @Summary Change a user's role
// @Description Moves the user with the given email to a new role. Admin only.
// @Tags profile
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body controllers.ChangeUserRoleRequest true "Target email and new role"
// @Success 200 {object} controllers.ProfileSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request (unknown role)"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (not an admin)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/change-role [post]
func (c *ProfileController) ChangeUserRole(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}

	var req ChangeUserRoleRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}

	user, err := c.Service.ChangeUserRole(r.Context(), userID, req.Email, domain.Role(req.Role))
	if err != nil {
		if errors.Is(err, domain.ErrForbidden) {
			helpers.WriteJSONError(w, http.StatusForbidden, helpers.ErrCodeForbidden, "admin access required")
			return
		}
		if errors.Is(err, domain.ErrInvalidInput) {
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
			return
		}
		if errors.Is(err, domain.ErrUserNotFound) {
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "user not found")
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, "failed to change role")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, user)
}

func (c *ProfileController) writeProfileError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrUserNotFound):
		helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "user not found")
	case errors.Is(err, domain.ErrStudentOnly):
		helpers.WriteJSONError(w, http.StatusForbidden, helpers.ErrCodeForbidden, "only students have a profile")
	case errors.Is(err, domain.ErrProfileExists):
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "profile already complete")
	case errors.Is(err, domain.ErrProfileNotFound):
		helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "profile not created yet")
	case errors.Is(err, domain.ErrInvalidInput):
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
	default:
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, "profile operation failed")
	}
}
