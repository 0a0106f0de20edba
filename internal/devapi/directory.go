package devapi

import (
	"errors"
	"fmt"
	"strconv"
	"sync"

	"storefront/internal/models"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountExists      = errors.New("account with this email already exists")
)

type Account struct {
	ID             int
	Role           models.Role
	Email          string
	Phone          string
	Name           string
	ShopName       string
	CompanyName    string
	EmployeeNumber string
	Department     string
	Position       string

	passwordHash []byte
	pinHash      []byte
}

// Directory is an in-memory account registry keyed by role and email.
type Directory struct {
	mu       sync.RWMutex
	nextID   int
	accounts map[models.Role]map[string]*Account
	cost     int
	logger   zerolog.Logger
}

func NewDirectory(cost int, logger zerolog.Logger) *Directory {
	if cost < bcrypt.MinCost {
		cost = bcrypt.DefaultCost
	}
	return &Directory{
		nextID:   1,
		accounts: make(map[models.Role]map[string]*Account),
		cost:     cost,
		logger:   logger,
	}
}

// Register stores acc with a bcrypt hash of password and, for phone
// consumers, of pin.
func (d *Directory) Register(acc Account, password, pin string) (*Account, error) {
	if acc.Email == "" || password == "" {
		return nil, errors.New("email and password are required")
	}
	if !acc.Role.Valid() {
		return nil, fmt.Errorf("invalid role %q", acc.Role)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), d.cost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	acc.passwordHash = hash
	if pin != "" {
		if acc.pinHash, err = bcrypt.GenerateFromPassword([]byte(pin), d.cost); err != nil {
			return nil, fmt.Errorf("failed to hash pin: %w", err)
		}
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	byEmail := d.accounts[acc.Role]
	if byEmail == nil {
		byEmail = make(map[string]*Account)
		d.accounts[acc.Role] = byEmail
	}
	if _, ok := byEmail[acc.Email]; ok {
		return nil, ErrAccountExists
	}
	acc.ID = d.nextID
	d.nextID++
	byEmail[acc.Email] = &acc

	d.logger.Info().Int("account_id", acc.ID).Str("role", string(acc.Role)).Msg("Dev account registered")
	return &acc, nil
}

func (d *Directory) Authenticate(role models.Role, creds models.Credentials) (*Account, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if role == models.RoleConsumer && creds.UsesPhone() {
		for _, acc := range d.accounts[role] {
			if acc.Phone == creds.Phone && acc.pinHash != nil {
				if bcrypt.CompareHashAndPassword(acc.pinHash, []byte(creds.PIN)) == nil {
					return acc, nil
				}
				break
			}
		}
		d.logger.Warn().Str("phone", creds.Phone).Msg("Failed PIN authentication attempt")
		return nil, ErrInvalidCredentials
	}

	acc, ok := d.accounts[role][creds.Email]
	if !ok {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(acc.passwordHash, []byte(creds.Password)); err != nil {
		d.logger.Warn().Str("email", creds.Email).Str("role", string(role)).Msg("Failed authentication attempt")
		return nil, ErrInvalidCredentials
	}
	return acc, nil
}

func (a *Account) idString() string {
	return strconv.Itoa(a.ID)
}
