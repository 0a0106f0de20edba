// Package devapi is a stand-in for the REST backend used in development and
// tests. It serves the per-role login endpoints and a stub order endpoint in
// the same wire format as the real API.
package devapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"storefront/internal/models"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
)

// DeclinedPaymentMethod makes the stub order endpoint refuse payment.
const DeclinedPaymentMethod = "declined"

type Server struct {
	directory *Directory
	tokens    *TokenIssuer
	logger    zerolog.Logger
}

func NewServer(directory *Directory, tokens *TokenIssuer, logger zerolog.Logger) *Server {
	return &Server{
		directory: directory,
		tokens:    tokens,
		logger:    logger,
	}
}

func (s *Server) Routes(r *mux.Router) {
	for _, role := range models.AllRoles {
		r.HandleFunc("/api/auth/"+string(role)+"/login", s.login(role)).Methods("POST")
	}
	r.HandleFunc("/api/orders", s.placeOrder).Methods("POST")
}

func (s *Server) login(role models.Role) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var creds models.Credentials
		if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
			s.respondWithError(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
			return
		}

		acc, err := s.directory.Authenticate(role, creds)
		if err != nil {
			s.respondWithError(w, http.StatusUnauthorized, "authentication_failed", "Invalid credentials")
			return
		}

		token, err := s.tokens.Issue(acc)
		if err != nil {
			s.logger.Error().Err(err).Msg("Token generation failed")
			s.respondWithError(w, http.StatusInternalServerError, "token_generation_failed", "Failed to generate token")
			return
		}

		s.respondWithJSON(w, http.StatusOK, loginBody(token, acc))
	}
}

func loginBody(token string, acc *Account) map[string]interface{} {
	body := map[string]interface{}{"token": token}
	switch acc.Role {
	case models.RoleConsumer:
		body["customer"] = map[string]interface{}{
			"id": acc.ID, "email": acc.Email, "phone": acc.Phone, "name": acc.Name,
		}
	case models.RoleEmployee:
		first, last, _ := strings.Cut(acc.Name, " ")
		body["employee"] = map[string]interface{}{
			"id": acc.ID, "email": acc.Email, "phone": acc.Phone,
			"first_name": first, "last_name": last,
			"employee_number": acc.EmployeeNumber, "department": acc.Department, "position": acc.Position,
		}
	case models.RoleRetailer:
		body["retailer"] = map[string]interface{}{
			"id": acc.ID, "email": acc.Email, "phone": acc.Phone, "owner_name": acc.Name, "shop_name": acc.ShopName,
		}
	case models.RoleWholesaler:
		body["wholesaler"] = map[string]interface{}{
			"id": acc.ID, "email": acc.Email, "phone": acc.Phone, "contact_name": acc.Name, "company_name": acc.CompanyName,
		}
	case models.RoleAdmin:
		body["admin"] = map[string]interface{}{
			"id": acc.ID, "email": acc.Email, "name": acc.Name,
		}
	}
	return body
}

func (s *Server) placeOrder(w http.ResponseWriter, r *http.Request) {
	authHeader := r.Header.Get("Authorization")
	tokenString, ok := strings.CutPrefix(authHeader, "Bearer ")
	if !ok {
		s.respondWithError(w, http.StatusUnauthorized, "missing_authorization", "Authorization header is required")
		return
	}
	claims, err := s.tokens.Validate(tokenString)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Invalid token")
		s.respondWithError(w, http.StatusUnauthorized, "invalid_token", "Invalid or expired token")
		return
	}

	var order models.Order
	if err := json.NewDecoder(r.Body).Decode(&order); err != nil {
		s.respondWithError(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}
	if len(order.Items) == 0 || order.RetailerID == "" {
		s.respondWithError(w, http.StatusBadRequest, "invalid_order", "Order needs a retailer and at least one item")
		return
	}
	if order.PaymentMethod == DeclinedPaymentMethod {
		s.respondWithError(w, http.StatusPaymentRequired, "payment_declined", "Payment was declined")
		return
	}

	receipt := models.OrderReceipt{
		OrderID:   models.ID(uuid.NewString()),
		Status:    "paid",
		Total:     order.Total,
		CreatedAt: time.Now().UTC(),
	}
	s.logger.Info().
		Int("user_id", claims.UserID).
		Str("order_id", string(receipt.OrderID)).
		Str("total", order.Total.String()).
		Msg("Dev order accepted")
	s.respondWithJSON(w, http.StatusCreated, receipt)
}

func (s *Server) respondWithError(w http.ResponseWriter, code int, errorCode, message string) {
	s.respondWithJSON(w, code, map[string]string{
		"error":   errorCode,
		"message": message,
	})
}

func (s *Server) respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(payload)
}

// Default account secrets registered by SeedDefaults.
const (
	DefaultPassword    = "password123"
	DefaultConsumerPIN = "1234"
)

// SeedDefaults registers one account per role.
func SeedDefaults(d *Directory) error {
	accounts := []Account{
		{Role: models.RoleConsumer, Email: "consumer@example.com", Phone: "0700000001", Name: "Cleo Consumer"},
		{Role: models.RoleEmployee, Email: "employee@example.com", Name: "Ada Obi", EmployeeNumber: "E-001", Department: "Warehouse", Position: "Picker"},
		{Role: models.RoleRetailer, Email: "retailer@example.com", Name: "Ravi Shah", ShopName: "Corner Shop"},
		{Role: models.RoleWholesaler, Email: "wholesaler@example.com", Name: "Wen Li", CompanyName: "Bulk Supply Co"},
		{Role: models.RoleAdmin, Email: "admin@example.com", Name: "Platform Admin"},
	}
	for _, acc := range accounts {
		pin := ""
		if acc.Role == models.RoleConsumer {
			pin = DefaultConsumerPIN
		}
		if _, err := d.Register(acc, DefaultPassword, pin); err != nil && !errors.Is(err, ErrAccountExists) {
			return err
		}
	}
	return nil
}
