package services

import (
	"encoding/base64"
	"testing"
	"time"

	"storefront/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signTestToken(t *testing.T, claims map[string]any) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims(claims)).SignedString([]byte("any-key"))
	require.NoError(t, err)
	return tok
}

func TestDecodeToken(t *testing.T) {
	tests := []struct {
		name   string
		claims map[string]any
		want   models.User
	}{
		{
			name:   "numeric user_id",
			claims: map[string]any{"user_id": 42, "email": "a@example.com", "role": "admin"},
			want:   models.User{ID: "42", Email: "a@example.com"},
		},
		{
			name:   "string id wins over sub",
			claims: map[string]any{"id": "c-1", "sub": "other", "phone": "0700", "name": "Cleo"},
			want:   models.User{ID: "c-1", Phone: "0700", Name: "Cleo"},
		},
		{
			name:   "subject fallback",
			claims: map[string]any{"sub": "e-9", "employee_number": "E9", "department": "Ops", "position": "Picker"},
			want:   models.User{ID: "e-9", EmployeeNumber: "E9", Department: "Ops", Position: "Picker"},
		},
		{
			name:   "expired tokens still decode",
			claims: map[string]any{"id": 5, "shop_name": "Corner", "exp": time.Now().Add(-time.Hour).Unix()},
			want:   models.User{ID: "5", ShopName: "Corner"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, err := DecodeToken(signTestToken(t, tt.claims))
			require.NoError(t, err)
			assert.Equal(t, tt.want, *u)
		})
	}
}

func TestDecodeTokenIgnoresHeader(t *testing.T) {
	header := base64.RawURLEncoding.EncodeToString([]byte(`{"typ":"JWT"}`))
	payload := base64.RawURLEncoding.EncodeToString([]byte(`{"id":7,"email":"a@example.com"}`))

	u, err := DecodeToken(header + "." + payload + ".")
	require.NoError(t, err)
	assert.Equal(t, models.User{ID: "7", Email: "a@example.com"}, *u)

	u, err = DecodeToken("garbage." + payload + ".sig")
	require.NoError(t, err)
	assert.Equal(t, models.ID("7"), u.ID)
}

func TestDecodeTokenPayloadEncodings(t *testing.T) {
	header := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"none"}`))
	raw := []byte(`{"id":"c-1","name":"?????????"}`)

	std := base64.StdEncoding.EncodeToString(raw)
	require.Contains(t, std, "/")

	for name, payload := range map[string]string{
		"standard":     std,
		"standard raw": base64.RawStdEncoding.EncodeToString(raw),
		"url padded":   base64.URLEncoding.EncodeToString(raw),
		"url unpadded": base64.RawURLEncoding.EncodeToString(raw),
	} {
		t.Run(name, func(t *testing.T) {
			u, err := DecodeToken(header + "." + payload + ".sig")
			require.NoError(t, err)
			assert.Equal(t, models.User{ID: "c-1", Name: "?????????"}, *u)
		})
	}
}

func TestDecodeTokenMalformed(t *testing.T) {
	for _, tok := range []string{
		"",
		"onlyone",
		"two.parts",
		"a.b.c",
		"a.b.c.d",
		"a..c",
		"eyJhbGciOiJIUzI1NiJ9.bm90LWpzb24.sig",
		signTestToken(t, map[string]any{"role": "admin"}),
	} {
		_, err := DecodeToken(tok)
		assert.ErrorIs(t, err, ErrMalformedToken, "token %q", tok)
	}
}
