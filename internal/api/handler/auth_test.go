package handler_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voicescore/voicescore/internal/api/handler"
	"github.com/voicescore/voicescore/internal/auth"
)

const testBcryptCost = 4

func newAuthHandler(verifier *auth.TelegramVerifier, botName string) *handler.AuthHandler {
	svc := auth.NewService(auth.NewMemoryRepository(), verifier, testBcryptCost)
	return handler.NewAuthHandler(svc, botName)
}

func TestSignInAnonymous_Success(t *testing.T) {
	h := newAuthHandler(nil, "")

	req, w := makeRequest(http.MethodPost, "/auth/anonymous", nil, nil)
	h.SignInAnonymous(w, req)

	require.Equal(t, http.StatusCreated, w.Code)
	env := parseEnvelope(t, w)
	data := env["data"].(map[string]interface{})
	assert.NotEmpty(t, data["token"])

	user := data["user"].(map[string]interface{})
	assert.NotEmpty(t, user["id"])
	assert.Equal(t, "Гость", user["displayName"])
	assert.Equal(t, true, user["anonymous"])
}

func TestSignInTelegram_NotConfigured(t *testing.T) {
	h := newAuthHandler(nil, "")

	body := []byte(`{"initData": "query_id=abc"}`)
	req, w := makeRequest(http.MethodPost, "/auth/telegram", body, nil)
	h.SignInTelegram(w, req)

	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "TELEGRAM_DISABLED", errorCode(t, parseEnvelope(t, w)))
}

func TestSignInTelegram_InvalidInitData(t *testing.T) {
	verifier := auth.NewTelegramVerifier("12345:bot-token", 0)
	h := newAuthHandler(verifier, "scorebot")

	body := []byte(`{"initData": "user=%7B%7D&hash=deadbeef"}`)
	req, w := makeRequest(http.MethodPost, "/auth/telegram", body, nil)
	h.SignInTelegram(w, req)

	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "UNAUTHORIZED", errorCode(t, parseEnvelope(t, w)))
}

func TestSignInTelegram_MissingInitData(t *testing.T) {
	h := newAuthHandler(nil, "")

	body := []byte(`{"initData": ""}`)
	req, w := makeRequest(http.MethodPost, "/auth/telegram", body, nil)
	h.SignInTelegram(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", errorCode(t, parseEnvelope(t, w)))
}

func TestTelegramQR_Disabled(t *testing.T) {
	h := newAuthHandler(nil, "")

	req, w := makeRequest(http.MethodGet, "/auth/telegram/qr", nil, nil)
	h.TelegramQR(w, req)

	require.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestTelegramQR_ServesPNG(t *testing.T) {
	h := newAuthHandler(nil, "scorebot")

	req, w := makeRequest(http.MethodGet, "/auth/telegram/qr", nil, nil)
	h.TelegramQR(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.NotEmpty(t, w.Body.Bytes())
}
