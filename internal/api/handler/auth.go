package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	qrcode "github.com/skip2/go-qrcode"

	"github.com/voicescore/voicescore/internal/api/middleware"
	"github.com/voicescore/voicescore/internal/api/response"
	"github.com/voicescore/voicescore/internal/auth"
)

type telegramSignInRequest struct {
	InitData string `json:"initData"`
}

type signInResponse struct {
	Token string       `json:"token"`
	User  userResponse `json:"user"`
}

type userResponse struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	Username    string `json:"username,omitempty"`
	Anonymous   bool   `json:"anonymous"`
}

func toSignInResponse(identity *auth.Identity, token string) signInResponse {
	return signInResponse{
		Token: token,
		User: userResponse{
			ID:          identity.UserID,
			DisplayName: identity.DisplayName,
			Username:    identity.Username,
			Anonymous:   identity.Anonymous,
		},
	}
}

// AuthHandler handles sign-in endpoints.
type AuthHandler struct {
	svc     *auth.Service
	botName string
}

// NewAuthHandler creates a new AuthHandler. botName is the Telegram bot the
// QR endpoint links to; it may be empty when Telegram sign-in is disabled.
func NewAuthHandler(svc *auth.Service, botName string) *AuthHandler {
	return &AuthHandler{svc: svc, botName: botName}
}

// SignInAnonymous handles POST /auth/anonymous.
func (h *AuthHandler) SignInAnonymous(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	identity, token, err := h.svc.SignInAnonymous(r.Context())
	if err != nil {
		slog.Error("failed to sign in anonymously", "error", err)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to sign in", requestID)
		return
	}

	response.Success(w, http.StatusCreated, toSignInResponse(identity, token), requestID)
}

// SignInTelegram handles POST /auth/telegram with the WebApp initData string.
func (h *AuthHandler) SignInTelegram(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req telegramSignInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_JSON", "Request body must be valid JSON", requestID)
		return
	}
	if strings.TrimSpace(req.InitData) == "" {
		response.Err(w, http.StatusBadRequest, "VALIDATION_ERROR", "initData is required", requestID)
		return
	}

	identity, token, err := h.svc.SignInTelegram(r.Context(), req.InitData)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrTelegramNotConfigured):
			response.Err(w, http.StatusServiceUnavailable, "TELEGRAM_DISABLED", "Telegram sign-in is not configured", requestID)
		case errors.Is(err, auth.ErrInvalidInitData):
			response.Err(w, http.StatusUnauthorized, "UNAUTHORIZED", "Telegram init data verification failed", requestID)
		default:
			slog.Error("failed to sign in via telegram", "error", err)
			response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to sign in", requestID)
		}
		return
	}

	response.Success(w, http.StatusCreated, toSignInResponse(identity, token), requestID)
}

// TelegramQR handles GET /auth/telegram/qr. It serves a PNG QR code pointing
// at the bot's WebApp deep link so a phone can open the board directly.
func (h *AuthHandler) TelegramQR(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	if h.botName == "" {
		response.Err(w, http.StatusServiceUnavailable, "TELEGRAM_DISABLED", "Telegram sign-in is not configured", requestID)
		return
	}

	link := fmt.Sprintf("https://t.me/%s/webapp", h.botName)
	png, err := qrcode.Encode(link, qrcode.Medium, 256)
	if err != nil {
		slog.Error("failed to encode qr code", "error", err)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to generate QR code", requestID)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}
