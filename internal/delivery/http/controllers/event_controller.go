package controllers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"campusevents/internal/delivery/http/helpers"
	"campusevents/internal/delivery/http/middleware"
	"campusevents/internal/domain"
)

// eventIDFromPath extracts and validates the {id} path parameter. Event ids
// are UUIDs; anything else is rejected here so a garbage id never reaches
// the store as a failed UUID cast.
func eventIDFromPath(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := r.PathValue("id")
	if _, err := uuid.Parse(id); err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "malformed event id")
		return "", false
	}
	return id, true
}

type EventController struct {
	Logger  *slog.Logger
	Service domain.EventService
}

func NewEventController(logger *slog.Logger, svc domain.EventService) *EventController {
	return &EventController{
		Logger:  logger,
		Service: svc,
	}
}

// EventResponse is an event with its derived capacity block. Every event
// representation the API returns carries one, computed at read time.
// swagger:model EventResponse
type EventResponse struct {
	*domain.Event
	Capacity domain.Capacity `json:"capacity"`
}

func toEventResponse(e *domain.Event) *EventResponse {
	return &EventResponse{Event: e, Capacity: e.Capacity()}
}

func toEventResponses(events []*domain.Event) []*EventResponse {
	out := make([]*EventResponse, 0, len(events))
	for _, e := range events {
		out = append(out, toEventResponse(e))
	}
	return out
}

// EventSuccessResponse is the success response envelope for single-event endpoints.
type EventSuccessResponse struct {
	Data  *EventResponse    `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// EventListSuccessResponse is the success response envelope for event list endpoints.
type EventListSuccessResponse struct {
	Data  []*EventResponse  `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// CreateEventRequest is the request body for POST /events.
// Date and registration_deadline are RFC 3339 timestamps.
type CreateEventRequest struct {
	Name                 string   `json:"name"`
	Description          string   `json:"description"`
	Date                 string   `json:"date"`
	Time                 string   `json:"time"`
	Venue                string   `json:"venue"`
	OrganizedBy          string   `json:"organized_by"`
	Price                float64  `json:"price"`
	TotalSeats           int      `json:"total_seats"`
	Category             string   `json:"category"`
	RegistrationDeadline string   `json:"registration_deadline"`
	ContactEmail         string   `json:"contact_email"`
	ContactPhone         string   `json:"contact_phone"`
	Tags                 []string `json:"tags"`

	date     time.Time
	deadline time.Time
}

// Validate implements helpers.Validator.
func (r *CreateEventRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(r.Name) == "" {
		errs = append(errs, "name is required")
	}
	if r.TotalSeats < 1 {
		errs = append(errs, "total_seats must be at least 1")
	}
	if !domain.Category(r.Category).Valid() {
		errs = append(errs, "unknown category")
	}
	var err error
	if r.date, err = time.Parse(time.RFC3339, r.Date); err != nil {
		errs = append(errs, "date must be RFC 3339")
	}
	if r.deadline, err = time.Parse(time.RFC3339, r.RegistrationDeadline); err != nil {
		errs = append(errs, "registration_deadline must be RFC 3339")
	}
	return errs
}

func (r *CreateEventRequest) toEvent() *domain.Event {
	return &domain.Event{
		Name:                 strings.TrimSpace(r.Name),
		Description:          r.Description,
		Date:                 r.date,
		Time:                 r.Time,
		Venue:                r.Venue,
		OrganizedBy:          r.OrganizedBy,
		Price:                r.Price,
		TotalSeats:           r.TotalSeats,
		Category:             domain.Category(r.Category),
		RegistrationDeadline: r.deadline,
		ContactEmail:         r.ContactEmail,
		ContactPhone:         r.ContactPhone,
		Tags:                 r.Tags,
	}
}

// CreateEvent godoc
// @Summary Create an event
// @Description Creates an event owned by the caller. Any role except Student may create events. Available seats start equal to total seats.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body controllers.CreateEventRequest true "Event fields"
// @Success 201 {object} controllers.EventSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (students cannot create events)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events [post]
func (c *EventController) CreateEvent(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}

	var req CreateEventRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}

	event, err := c.Service.CreateEvent(r.Context(), userID, req.toEvent())
	if err != nil {
		c.writeEventError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, toEventResponse(event))
}

// ListEvents godoc
// @Summary List events
// @Description Lists events sorted by date ascending. Public. Optional category and expired filters.
// @Tags events
// @Produce json
// @Param category query string false "Filter by category"
// @Param expired query bool false "Filter by expiry flag"
// @Success 200 {object} controllers.EventListSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events [get]
func (c *EventController) ListEvents(w http.ResponseWriter, r *http.Request) {
	var filter domain.EventFilter
	if s := r.URL.Query().Get("category"); s != "" {
		category := domain.Category(s)
		if !category.Valid() {
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "unknown category")
			return
		}
		filter.Category = &category
	}
	if s := r.URL.Query().Get("expired"); s != "" {
		switch s {
		case "true":
			v := true
			filter.Expired = &v
		case "false":
			v := false
			filter.Expired = &v
		default:
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "expired must be true or false")
			return
		}
	}

	events, err := c.Service.ListEvents(r.Context(), filter)
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, "failed to list events")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, toEventResponses(events))
}

// GetEvent godoc
// @Summary Get an event
// @Tags events
// @Produce json
// @Param id path string true "Event ID"
// @Success 200 {object} controllers.EventSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request (malformed id)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{id} [get]
func (c *EventController) GetEvent(w http.ResponseWriter, r *http.Request) {
	eventID, ok := eventIDFromPath(w, r)
	if !ok {
		return
	}

	event, err := c.Service.GetEvent(r.Context(), eventID)
	if err != nil {
		c.writeEventError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, toEventResponse(event))
}

// UpdateEventRequest is the request body for PUT /events/{id}. All fields are
// optional; absent fields are left unchanged. A total_seats change shifts
// available seats by the delta and is rejected when that would go negative.
type UpdateEventRequest struct {
	Name                 *string  `json:"name"`
	Description          *string  `json:"description"`
	Date                 *string  `json:"date"`
	Time                 *string  `json:"time"`
	Venue                *string  `json:"venue"`
	OrganizedBy          *string  `json:"organized_by"`
	Price                *float64 `json:"price"`
	TotalSeats           *int     `json:"total_seats"`
	Category             *string  `json:"category"`
	RegistrationDeadline *string  `json:"registration_deadline"`
	ContactEmail         *string  `json:"contact_email"`
	ContactPhone         *string  `json:"contact_phone"`
	Tags                 []string `json:"tags"`

	date     *time.Time
	deadline *time.Time
}

// Validate implements helpers.Validator.
func (r *UpdateEventRequest) Validate() []string {
	var errs []string
	if r.Name != nil && strings.TrimSpace(*r.Name) == "" {
		errs = append(errs, "name cannot be empty")
	}
	if r.TotalSeats != nil && *r.TotalSeats < 1 {
		errs = append(errs, "total_seats must be at least 1")
	}
	if r.Category != nil && !domain.Category(*r.Category).Valid() {
		errs = append(errs, "unknown category")
	}
	if r.Date != nil {
		if t, err := time.Parse(time.RFC3339, *r.Date); err != nil {
			errs = append(errs, "date must be RFC 3339")
		} else {
			r.date = &t
		}
	}
	if r.RegistrationDeadline != nil {
		if t, err := time.Parse(time.RFC3339, *r.RegistrationDeadline); err != nil {
			errs = append(errs, "registration_deadline must be RFC 3339")
		} else {
			r.deadline = &t
		}
	}
	return errs
}

func (r *UpdateEventRequest) toEventUpdate() domain.EventUpdate {
	upd := domain.EventUpdate{
		Name:                 r.Name,
		Description:          r.Description,
		Date:                 r.date,
		Time:                 r.Time,
		Venue:                r.Venue,
		OrganizedBy:          r.OrganizedBy,
		Price:                r.Price,
		TotalSeats:           r.TotalSeats,
		RegistrationDeadline: r.deadline,
		ContactEmail:         r.ContactEmail,
		ContactPhone:         r.ContactPhone,
		Tags:                 r.Tags,
	}
	if r.Category != nil {
		category := domain.Category(*r.Category)
		upd.Category = &category
	}
	return upd
}

// UpdateEvent godoc
// @Summary Update an event
// @Description Partially updates an event. Only the owning organizer may edit. Shrinking total_seats below the number of registered seats is rejected.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Event ID"
// @Param body body controllers.UpdateEventRequest true "Fields to change"
// @Success 200 {object} controllers.EventSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request (including seat underflow)"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{id} [put]
func (c *EventController) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	eventID, ok := eventIDFromPath(w, r)
	if !ok {
		return
	}

	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}

	var req UpdateEventRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}

	event, err := c.Service.UpdateEvent(r.Context(), eventID, userID, req.toEventUpdate())
	if err != nil {
		c.writeEventError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, toEventResponse(event))
}

// DeleteEvent godoc
// @Summary Delete an event
// @Description Deletes an event and its registrations. Only the owning organizer may delete.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param id path string true "Event ID"
// @Success 200 {object} helpers.APIResponse "data contains a confirmation message"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{id} [delete]
func (c *EventController) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	eventID, ok := eventIDFromPath(w, r)
	if !ok {
		return
	}

	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}

	if err := c.Service.DeleteEvent(r.Context(), eventID, userID); err != nil {
		c.writeEventError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, map[string]string{"message": "event deleted"})
}

// ListOrganizerEvents godoc
// @Summary List the caller's events
// @Description Lists the events owned by the authenticated organizer.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Success 200 {object} controllers.EventListSuccessResponse
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/organizer/events [get]
func (c *EventController) ListOrganizerEvents(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}

	events, err := c.Service.ListOrganizerEvents(r.Context(), userID)
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, "failed to list events")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, toEventResponses(events))
}

func (c *EventController) writeEventError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrEventNotFound):
		helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "event not found")
	case errors.Is(err, domain.ErrUserNotFound):
		helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "user not found")
	case errors.Is(err, domain.ErrForbidden):
		helpers.WriteJSONError(w, http.StatusForbidden, helpers.ErrCodeForbidden, "forbidden")
	case errors.Is(err, domain.ErrSeatUnderflow):
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "total seats cannot drop below the number of registered seats")
	case errors.Is(err, domain.ErrInvalidInput):
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
	default:
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, "event operation failed")
	}
}
