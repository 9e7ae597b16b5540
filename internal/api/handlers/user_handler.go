package handlers

import (
	"net/http"

	"github.com/isdelr/pulse-be/internal/api/respond"
	"github.com/isdelr/pulse-be/internal/apperr"
	"github.com/isdelr/pulse-be/internal/auth"
	"github.com/isdelr/pulse-be/internal/services"
	"github.com/rs/zerolog/log"
)

// UserHandler handles HTTP requests for registration, login and the current user.
type UserHandler struct {
	service services.UserServiceProvider
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(service services.UserServiceProvider) *UserHandler {
	return &UserHandler{service: service}
}

// AuthPayload defines the structure for register and login requests.
type AuthPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register handles new user registration.
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var payload AuthPayload
	if err := decodeBody(r, &payload); err != nil {
		respond.Fail(w, http.StatusBadRequest, msgInvalidBody)
		return
	}

	res, err := h.service.Register(r.Context(), payload.Email, payload.Password)
	if err != nil {
		if kind := apperr.KindOf(err); kind != apperr.KindUnknown {
			log.Info().Err(err).Str("kind", kind.String()).Str("email", payload.Email).Msg("Registration rejected")
		}
		respond.Err(w, r, err)
		return
	}

	log.Info().Str("user_id", res.User.ID).Msg("User registered")
	respond.Data(w, http.StatusCreated, res)
}

// Login handles user authentication and token generation.
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var payload AuthPayload
	if err := decodeBody(r, &payload); err != nil {
		respond.Fail(w, http.StatusBadRequest, msgInvalidBody)
		return
	}

	res, err := h.service.Login(r.Context(), payload.Email, payload.Password)
	if err != nil {
		if apperr.KindOf(err) == apperr.KindAuth {
			log.Warn().Str("email", payload.Email).Msg("Failed authentication attempt")
		}
		respond.Err(w, r, err)
		return
	}

	respond.Data(w, http.StatusOK, res)
}

// GetMe retrieves the currently authenticated user.
func (h *UserHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		log.Error().Msg("Could not retrieve identity from context")
		respond.Fail(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	user, err := h.service.GetUserByID(r.Context(), id.UserID)
	if err != nil {
		if apperr.KindOf(err) == apperr.KindNotFound {
			log.Warn().Str("user_id", id.UserID).Msg("User from token not found")
		}
		respond.Err(w, r, err)
		return
	}

	respond.Data(w, http.StatusOK, user.Public())
}
