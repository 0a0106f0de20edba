package services

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"

	"storefront/internal/models"
	"storefront/internal/storage"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

var (
	ErrInvalidProductID = errors.New("product id is required")
	ErrInvalidPrice     = errors.New("price must not be negative")
	ErrInvalidQuantity  = errors.New("quantity must be greater than zero")
	ErrInvalidRetailer  = errors.New("retailer id is required")
)

// CartService holds the in-progress order. Switching to a different
// retailer empties the cart in the same step.
type CartService struct {
	mu       sync.RWMutex
	items    []models.CartItem
	retailer *models.Retailer

	store  storage.Store
	keys   storage.Keys
	logger zerolog.Logger
}

func NewCartService(store storage.Store, keys storage.Keys, logger zerolog.Logger) *CartService {
	return &CartService{
		store:  store,
		keys:   keys,
		logger: logger,
	}
}

// Restore loads the persisted cart and retailer. Anything unreadable falls
// back to an empty cart or no retailer.
func (s *CartService) Restore(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = nil
	s.retailer = nil

	var items []models.CartItem
	if s.load(ctx, s.keys.CartItems, &items) {
		s.items = sanitizeItems(items)
	}

	var retailer *models.Retailer
	if s.load(ctx, s.keys.Retailer, &retailer) && retailer != nil && retailer.ID != "" {
		s.retailer = retailer
	}
}

func (s *CartService) AddItem(ctx context.Context, item models.CartItem, quantity int) error {
	if err := validateItem(item, quantity); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.indexOf(item.ProductID); i >= 0 {
		s.items[i].Quantity += quantity
	} else {
		item.Quantity = quantity
		s.items = append(s.items, item)
	}
	s.saveItems(ctx)
	return nil
}

func (s *CartService) RemoveItem(ctx context.Context, productID models.ID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.remove(productID) {
		s.saveItems(ctx)
	}
}

// UpdateQuantity sets a line's quantity; zero or below removes the line.
func (s *CartService) UpdateQuantity(ctx context.Context, productID models.ID, quantity int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if quantity <= 0 {
		if s.remove(productID) {
			s.saveItems(ctx)
		}
		return
	}
	if i := s.indexOf(productID); i >= 0 {
		s.items[i].Quantity = quantity
		s.saveItems(ctx)
	}
}

func (s *CartService) ClearCart(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = nil
	s.saveItems(ctx)
}

// removeOrdered takes the lines of a placed order out of the cart. Anything
// added after the order was built stays. A retailer switch in the meantime
// already emptied the ordered lines, so nothing is removed then.
func (s *CartService) removeOrdered(ctx context.Context, order *models.Order) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.retailer == nil || s.retailer.ID != order.RetailerID {
		return
	}
	changed := false
	for _, ordered := range order.Items {
		i := s.indexOf(ordered.ProductID)
		if i < 0 {
			continue
		}
		changed = true
		s.items[i].Quantity -= ordered.Quantity
		if s.items[i].Quantity <= 0 {
			s.remove(ordered.ProductID)
		}
	}
	if changed {
		s.saveItems(ctx)
	}
}

// SelectRetailer sets or, with nil, clears the selected retailer. The cart
// is emptied whenever the retailer identity changes.
func (s *CartService) SelectRetailer(ctx context.Context, retailer *models.Retailer) error {
	if retailer != nil && strings.TrimSpace(string(retailer.ID)) == "" {
		return ErrInvalidRetailer
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if retailerChanged(s.retailer, retailer) {
		s.items = nil
		s.saveItems(ctx)
	}

	if retailer == nil {
		s.retailer = nil
	} else {
		r := *retailer
		s.retailer = &r
	}
	s.saveRetailer(ctx)
	return nil
}

func (s *CartService) GetItemQuantity(productID models.ID) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if i := s.indexOf(productID); i >= 0 {
		return s.items[i].Quantity
	}
	return 0
}

func (s *CartService) Items() []models.CartItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.CartItem{}, s.items...)
}

func (s *CartService) SelectedRetailer() *models.Retailer {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.retailer == nil {
		return nil
	}
	r := *s.retailer
	return &r
}

func (s *CartService) Total() decimal.Decimal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return total(s.items)
}

func (s *CartService) ItemCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return itemCount(s.items)
}

// View returns a consistent snapshot of the cart with derived values.
func (s *CartService) View() models.CartView {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v := models.CartView{
		Items:     append([]models.CartItem{}, s.items...),
		Total:     total(s.items),
		ItemCount: itemCount(s.items),
	}
	if s.retailer != nil {
		r := *s.retailer
		v.SelectedRetailer = &r
	}
	return v
}

func (s *CartService) indexOf(productID models.ID) int {
	for i := range s.items {
		if s.items[i].ProductID == productID {
			return i
		}
	}
	return -1
}

func (s *CartService) remove(productID models.ID) bool {
	i := s.indexOf(productID)
	if i < 0 {
		return false
	}
	s.items = append(s.items[:i], s.items[i+1:]...)
	return true
}

func (s *CartService) load(ctx context.Context, key string, dst any) bool {
	raw, err := s.store.Get(ctx, key)
	if errors.Is(err, storage.ErrNotFound) {
		return false
	}
	if err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("Failed to read cart state")
		return false
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("Discarding corrupt cart state")
		return false
	}
	return true
}

func (s *CartService) saveItems(ctx context.Context) {
	items := s.items
	if items == nil {
		items = []models.CartItem{}
	}
	s.save(ctx, s.keys.CartItems, items)
}

func (s *CartService) saveRetailer(ctx context.Context) {
	if s.retailer == nil {
		if err := s.store.Delete(ctx, s.keys.Retailer); err != nil {
			s.logger.Warn().Err(err).Msg("Failed to clear selected retailer")
		}
		return
	}
	s.save(ctx, s.keys.Retailer, s.retailer)
}

func (s *CartService) save(ctx context.Context, key string, v any) {
	raw, err := json.Marshal(v)
	if err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("Failed to encode cart state")
		return
	}
	if err := s.store.Set(ctx, key, string(raw)); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("Failed to persist cart state")
	}
}

func validateItem(item models.CartItem, quantity int) error {
	if strings.TrimSpace(string(item.ProductID)) == "" {
		return ErrInvalidProductID
	}
	if item.Price.IsNegative() {
		return ErrInvalidPrice
	}
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	return nil
}

func retailerChanged(prev, next *models.Retailer) bool {
	if prev == nil || next == nil {
		return prev != next
	}
	return prev.ID != next.ID
}

// sanitizeItems drops lines that could not have been written by AddItem and
// folds duplicate product ids into the first occurrence.
func sanitizeItems(items []models.CartItem) []models.CartItem {
	var out []models.CartItem
	seen := make(map[models.ID]int, len(items))
	for _, it := range items {
		if it.ProductID == "" || it.Quantity <= 0 || it.Price.IsNegative() {
			continue
		}
		if i, ok := seen[it.ProductID]; ok {
			out[i].Quantity += it.Quantity
			continue
		}
		seen[it.ProductID] = len(out)
		out = append(out, it)
	}
	return out
}

func total(items []models.CartItem) decimal.Decimal {
	sum := decimal.Zero
	for _, it := range items {
		sum = sum.Add(it.Subtotal())
	}
	return sum
}

func itemCount(items []models.CartItem) int {
	n := 0
	for _, it := range items {
		n += it.Quantity
	}
	return n
}
