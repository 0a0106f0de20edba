package services

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"storefront/internal/models"

	"github.com/golang-jwt/jwt/v5"
)

var ErrMalformedToken = errors.New("malformed bearer token")

type tokenClaims struct {
	AccountID      models.ID `json:"id"`
	UserID         models.ID `json:"user_id"`
	Email          string    `json:"email"`
	Phone          string    `json:"phone"`
	Name           string    `json:"name"`
	ShopName       string    `json:"shop_name"`
	CompanyName    string    `json:"company_name"`
	EmployeeNumber string    `json:"employee_number"`
	Department     string    `json:"department"`
	Position       string    `json:"position"`
	jwt.RegisteredClaims
}

// DecodeToken reads the identity claims from a bearer token's payload
// segment. The header and signature are ignored: the backend remains the
// authority on every call the token is later presented to.
func DecodeToken(token string) (*models.User, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return nil, fmt.Errorf("%w: expected 3 segments, got %d", ErrMalformedToken, len(parts))
	}
	payload, err := decodeSegment(parts[1])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}

	claims := &tokenClaims{}
	if err := json.Unmarshal(payload, claims); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}

	id := claims.AccountID
	if id == "" {
		id = claims.UserID
	}
	if id == "" {
		id = models.ID(claims.Subject)
	}
	if id == "" && claims.Email == "" {
		return nil, fmt.Errorf("%w: no identity claims", ErrMalformedToken)
	}

	return &models.User{
		ID:             id,
		Email:          claims.Email,
		Phone:          claims.Phone,
		Name:           claims.Name,
		ShopName:       claims.ShopName,
		CompanyName:    claims.CompanyName,
		EmployeeNumber: claims.EmployeeNumber,
		Department:     claims.Department,
		Position:       claims.Position,
	}, nil
}

// decodeSegment accepts base64url with or without padding, then standard
// base64.
func decodeSegment(seg string) ([]byte, error) {
	b, err := jwt.NewParser(jwt.WithPaddingAllowed()).DecodeSegment(seg)
	if err == nil {
		return b, nil
	}
	if b, stdErr := base64.RawStdEncoding.DecodeString(strings.TrimRight(seg, "=")); stdErr == nil {
		return b, nil
	}
	return nil, err
}
