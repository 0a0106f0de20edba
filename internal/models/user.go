package models

import (
	"bytes"
	"encoding/json"
	"strings"
)

type Role string

const (
	RoleConsumer   Role = "consumer"
	RoleEmployee   Role = "employee"
	RoleRetailer   Role = "retailer"
	RoleWholesaler Role = "wholesaler"
	RoleAdmin      Role = "admin"
)

var AllRoles = []Role{RoleConsumer, RoleEmployee, RoleRetailer, RoleWholesaler, RoleAdmin}

func (r Role) Valid() bool {
	for _, known := range AllRoles {
		if r == known {
			return true
		}
	}
	return false
}

// ID is an identifier the backend may send as either a JSON string or number.
type ID string

func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*id = ID(n.String())
	return nil
}

type User struct {
	ID             ID     `json:"id"`
	Email          string `json:"email"`
	Phone          string `json:"phone,omitempty"`
	Name           string `json:"name,omitempty"`
	Role           Role   `json:"role"`
	ShopName       string `json:"shop_name,omitempty"`
	CompanyName    string `json:"company_name,omitempty"`
	EmployeeNumber string `json:"employee_number,omitempty"`
	Department     string `json:"department,omitempty"`
	Position       string `json:"position,omitempty"`
}

// Credentials carries what a login form submits. Consumers sign in with
// Phone+PIN or Email+Password, every other role with Email+Password.
type Credentials struct {
	Email    string `json:"email,omitempty"`
	Password string `json:"password,omitempty"`
	Phone    string `json:"phone,omitempty"`
	PIN      string `json:"pin,omitempty"`
}

func (c Credentials) UsesPhone() bool {
	return c.Phone != "" && c.PIN != ""
}

// PlaceholderEmail derives a stable address for phone-only consumers.
func PlaceholderEmail(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String() + "@phone.consumer.local"
}
