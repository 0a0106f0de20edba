package devapi

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type Claims struct {
	UserID         int    `json:"user_id"`
	Email          string `json:"email"`
	Role           string `json:"role"`
	Phone          string `json:"phone,omitempty"`
	Name           string `json:"name,omitempty"`
	ShopName       string `json:"shop_name,omitempty"`
	CompanyName    string `json:"company_name,omitempty"`
	EmployeeNumber string `json:"employee_number,omitempty"`
	jwt.RegisteredClaims
}

type TokenIssuer struct {
	secretKey []byte
	ttl       time.Duration
}

func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{secretKey: []byte(secret), ttl: ttl}
}

func (t *TokenIssuer) Issue(acc *Account) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID:         acc.ID,
		Email:          acc.Email,
		Role:           string(acc.Role),
		Phone:          acc.Phone,
		Name:           acc.Name,
		ShopName:       acc.ShopName,
		CompanyName:    acc.CompanyName,
		EmployeeNumber: acc.EmployeeNumber,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   acc.idString(),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secretKey)
}

// Validate checks signature and expiry, used by the stub order endpoint.
func (t *TokenIssuer) Validate(tokenString string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return t.secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	return claims, nil
}
