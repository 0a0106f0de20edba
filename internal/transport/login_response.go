package transport

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"storefront/internal/models"
)

var ErrMissingToken = errors.New("login response did not include a token")

// Each role's login endpoint embeds its account under its own key. The
// records below mirror those shapes; normalize maps each to models.User.

type customerRecord struct {
	ID    models.ID `json:"id"`
	Email string    `json:"email"`
	Phone string    `json:"phone"`
	Name  string    `json:"name"`
}

type employeeRecord struct {
	ID             models.ID `json:"id"`
	Email          string    `json:"email"`
	Phone          string    `json:"phone"`
	FirstName      string    `json:"first_name"`
	LastName       string    `json:"last_name"`
	EmployeeNumber string    `json:"employee_number"`
	Department     string    `json:"department"`
	Position       string    `json:"position"`
}

type retailerRecord struct {
	ID        models.ID `json:"id"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	OwnerName string    `json:"owner_name"`
	ShopName  string    `json:"shop_name"`
}

type wholesalerRecord struct {
	ID          models.ID `json:"id"`
	Email       string    `json:"email"`
	Phone       string    `json:"phone"`
	ContactName string    `json:"contact_name"`
	CompanyName string    `json:"company_name"`
}

type adminRecord struct {
	ID    models.ID `json:"id"`
	Email string    `json:"email"`
	Name  string    `json:"name"`
}

type loginResponse struct {
	Token      string            `json:"token"`
	Customer   *customerRecord   `json:"customer"`
	Employee   *employeeRecord   `json:"employee"`
	Retailer   *retailerRecord   `json:"retailer"`
	Wholesaler *wholesalerRecord `json:"wholesaler"`
	Admin      *adminRecord      `json:"admin"`
	User       *models.User      `json:"user"`
}

func decodeLoginResponse(r io.Reader, role models.Role) (*LoginResult, error) {
	var lr loginResponse
	if err := json.NewDecoder(r).Decode(&lr); err != nil {
		return nil, fmt.Errorf("invalid login response: %w", err)
	}
	if lr.Token == "" {
		return nil, ErrMissingToken
	}
	return &LoginResult{Token: lr.Token, User: lr.normalize(role)}, nil
}

// normalize picks the record that belongs to role, falling back to the
// generic user object. Records for other roles are ignored.
func (lr *loginResponse) normalize(role models.Role) *models.User {
	var u *models.User
	switch role {
	case models.RoleConsumer:
		if c := lr.Customer; c != nil {
			u = &models.User{ID: c.ID, Email: c.Email, Phone: c.Phone, Name: c.Name}
		}
	case models.RoleEmployee:
		if e := lr.Employee; e != nil {
			u = &models.User{
				ID:             e.ID,
				Email:          e.Email,
				Phone:          e.Phone,
				Name:           strings.TrimSpace(e.FirstName + " " + e.LastName),
				EmployeeNumber: e.EmployeeNumber,
				Department:     e.Department,
				Position:       e.Position,
			}
		}
	case models.RoleRetailer:
		if r := lr.Retailer; r != nil {
			u = &models.User{ID: r.ID, Email: r.Email, Phone: r.Phone, Name: r.OwnerName, ShopName: r.ShopName}
		}
	case models.RoleWholesaler:
		if w := lr.Wholesaler; w != nil {
			u = &models.User{ID: w.ID, Email: w.Email, Phone: w.Phone, Name: w.ContactName, CompanyName: w.CompanyName}
		}
	case models.RoleAdmin:
		if a := lr.Admin; a != nil {
			u = &models.User{ID: a.ID, Email: a.Email, Name: a.Name}
		}
	}
	if u == nil && lr.User != nil {
		copied := *lr.User
		u = &copied
	}
	return u
}
