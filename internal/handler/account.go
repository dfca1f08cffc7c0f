package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/avatarly/avatarly/internal/handler/dto"
	"github.com/avatarly/avatarly/internal/service"
)

// Response bodies.
const (
	msgRegisterSuccess  = "Register success"
	msgEmailExists      = "Email already exists"
	msgLoginSuccess     = "Login success"
	msgWrongCredentials = "Wrong Email or Password"
)

// AccountHandler handles registration and login form posts.
type AccountHandler struct {
	svc       *service.AccountService
	logger    *slog.Logger
	maxMemory int64
}

// NewAccountHandler creates a new AccountHandler. maxMemory bounds the
// in-memory part of multipart parsing; larger files spill to temp files.
func NewAccountHandler(svc *service.AccountService, logger *slog.Logger, maxMemory int64) *AccountHandler {
	return &AccountHandler{
		svc:       svc,
		logger:    logger,
		maxMemory: maxMemory,
	}
}

// Register handles POST /register.
func (h *AccountHandler) Register(w http.ResponseWriter, r *http.Request) {
	req, err := dto.DecodeRegister(r, h.maxMemory)
	if err != nil {
		h.handleDecodeError(w, err)
		return
	}
	if err := req.Validate(); err != nil {
		writeText(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.svc.Register(r.Context(), service.RegisterInput{
		Name:     string(req.Name),
		Email:    string(req.Email),
		Age:      string(req.Age),
		Password: string(req.Password),
		Avatar:   req.Avatar,
	})
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.logger.Info("user_registered",
		"user_id", user.ID,
		"has_avatar", user.HasAvatar(),
		"avatar", user.AvatarPath(),
	)

	writeText(w, http.StatusCreated, msgRegisterSuccess)
}

// Login handles POST /login.
func (h *AccountHandler) Login(w http.ResponseWriter, r *http.Request) {
	req, err := dto.DecodeLogin(r, h.maxMemory)
	if err != nil {
		h.handleDecodeError(w, err)
		return
	}
	if err := req.Validate(); err != nil {
		writeText(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.svc.Login(r.Context(), string(req.Email), string(req.Password))
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.logger.Info("user_logged_in", "user_id", user.ID)

	writeText(w, http.StatusOK, msgLoginSuccess)
}

func (h *AccountHandler) handleDecodeError(w http.ResponseWriter, err error) {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		writeText(w, http.StatusRequestEntityTooLarge, "Request body too large")
	case errors.Is(err, dto.ErrTooManyFiles):
		writeText(w, http.StatusBadRequest, "Only one avatar file is allowed")
	case errors.Is(err, dto.ErrMalformedBody):
		writeText(w, http.StatusBadRequest, "Invalid request body")
	default:
		h.logger.Error("failed to decode request", "error", err)
		writeJSON(w, http.StatusInternalServerError, MessageResponse{Message: err.Error()})
	}
}

func (h *AccountHandler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrEmailExists):
		writeText(w, http.StatusBadRequest, msgEmailExists)
	case errors.Is(err, service.ErrInvalidCredentials):
		writeText(w, http.StatusBadRequest, msgWrongCredentials)
	default:
		h.logger.Error("account request failed",
			"path", r.URL.Path,
			"error", err,
		)
		writeJSON(w, http.StatusInternalServerError, MessageResponse{Message: err.Error()})
	}
}
