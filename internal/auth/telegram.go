package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidInitData is returned when Telegram WebApp init data fails
// verification.
var ErrInvalidInitData = errors.New("invalid telegram init data")

// TelegramUser is the user payload carried inside verified init data.
type TelegramUser struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Username  string `json:"username"`
}

// DisplayName joins the non-empty name parts.
func (u TelegramUser) DisplayName() string {
	parts := make([]string, 0, 2)
	if u.FirstName != "" {
		parts = append(parts, u.FirstName)
	}
	if u.LastName != "" {
		parts = append(parts, u.LastName)
	}
	return strings.Join(parts, " ")
}

// TelegramVerifier checks WebApp initData signatures: the hash field must be
// HMAC-SHA256 of the sorted key=value pairs, keyed with
// HMAC-SHA256("WebAppData", botToken).
type TelegramVerifier struct {
	secret []byte
	maxAge time.Duration
	now    func() time.Time
}

// NewTelegramVerifier creates a verifier for the given bot token.
func NewTelegramVerifier(botToken string, maxAge time.Duration) *TelegramVerifier {
	keyed := hmac.New(sha256.New, []byte("WebAppData"))
	keyed.Write([]byte(botToken))

	return &TelegramVerifier{
		secret: keyed.Sum(nil),
		maxAge: maxAge,
		now:    time.Now,
	}
}

// Verify validates the init data signature and freshness and returns the
// embedded user.
func (v *TelegramVerifier) Verify(initData string) (*TelegramUser, error) {
	values, err := url.ParseQuery(initData)
	if err != nil {
		return nil, fmt.Errorf("parsing init data: %w", err)
	}

	gotHash := values.Get("hash")
	if gotHash == "" {
		return nil, ErrInvalidInitData
	}
	values.Del("hash")

	pairs := make([]string, 0, len(values))
	for key := range values {
		pairs = append(pairs, key+"="+values.Get(key))
	}
	sort.Strings(pairs)

	mac := hmac.New(sha256.New, v.secret)
	mac.Write([]byte(strings.Join(pairs, "\n")))
	wantHash := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(wantHash), []byte(gotHash)) {
		return nil, ErrInvalidInitData
	}

	if v.maxAge > 0 {
		authDate, err := strconv.ParseInt(values.Get("auth_date"), 10, 64)
		if err != nil {
			return nil, ErrInvalidInitData
		}
		if v.now().Sub(time.Unix(authDate, 0)) > v.maxAge {
			return nil, ErrInvalidInitData
		}
	}

	var user TelegramUser
	if err := json.Unmarshal([]byte(values.Get("user")), &user); err != nil {
		return nil, ErrInvalidInitData
	}
	if user.ID == 0 {
		return nil, ErrInvalidInitData
	}

	return &user, nil
}
