package http

import (
	"log/slog"
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"campusevents/internal/delivery/http/controllers"
	"campusevents/internal/delivery/http/middleware"
	"campusevents/internal/domain"
)

// NewRouter initializes the HTTP router with all application routes.
func NewRouter(
	logger *slog.Logger,
	verifier domain.TokenVerifier,
	authController *controllers.AuthController,
	profileController *controllers.ProfileController,
	eventController *controllers.EventController,
	registrationController *controllers.RegistrationController,
) *http.ServeMux {
	mux := http.NewServeMux()
	auth := middleware.RequireAuth(verifier, logger)

	// Auth
	mux.HandleFunc("POST /auth/signup", authController.SignUp)
	mux.HandleFunc("POST /auth/signin", authController.SignIn)
	mux.HandleFunc("POST /auth/forgot-password", authController.ForgotPassword)
	mux.HandleFunc("POST /auth/reset-password", authController.ResetPassword)
	mux.HandleFunc("GET /auth/whoami", auth(authController.WhoAmI))

	// Profile
	mux.HandleFunc("POST /profile", auth(profileController.CreateProfile))
	mux.HandleFunc("GET /profile", auth(profileController.GetProfile))
	mux.HandleFunc("PUT /profile", auth(profileController.UpdateProfile))
	// Intentional alias of GET /events/user/registrations below.
	mux.HandleFunc("GET /profile/events", auth(registrationController.ListUserRegisteredEvents))

	// Events. The static /events/... routes must be registered alongside the
	// /events/{id} patterns; ServeMux prefers the more specific literal match.
	mux.HandleFunc("POST /events", auth(eventController.CreateEvent))
	mux.HandleFunc("GET /events", eventController.ListEvents)
	mux.HandleFunc("GET /events/organizer/events", auth(eventController.ListOrganizerEvents))
	mux.HandleFunc("POST /events/change-role", auth(profileController.ChangeUserRole))
	// Same handler as GET /profile/events; both routes are part of the API surface.
	mux.HandleFunc("GET /events/user/registrations", auth(registrationController.ListUserRegisteredEvents))
	mux.HandleFunc("GET /events/{id}", eventController.GetEvent)
	mux.HandleFunc("PUT /events/{id}", auth(eventController.UpdateEvent))
	mux.HandleFunc("DELETE /events/{id}", auth(eventController.DeleteEvent))

	// Registration
	mux.HandleFunc("POST /events/{id}/register", auth(registrationController.Register))
	mux.HandleFunc("GET /events/{id}/registrations", auth(registrationController.ListEventRegistrations))

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}
