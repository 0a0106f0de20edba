package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"storefront/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var (
	ErrNoRetailer             = errors.New("no retailer selected")
	ErrEmptyCart              = errors.New("cart is empty")
	ErrBelowMinimumOrder      = errors.New("order total is below the retailer minimum")
	ErrPaymentMethodRequired  = errors.New("payment method is required")
	ErrDeliveryAddressMissing = errors.New("delivery address is required")
)

type PaymentGateway interface {
	PlaceOrder(ctx context.Context, order *models.Order) (*models.OrderReceipt, error)
}

type CheckoutService struct {
	cart     *CartService
	payments PaymentGateway
	logger   zerolog.Logger
}

func NewCheckoutService(cart *CartService, payments PaymentGateway, logger zerolog.Logger) *CheckoutService {
	return &CheckoutService{
		cart:     cart,
		payments: payments,
		logger:   logger,
	}
}

// Submit places the current cart as an order. The ordered lines leave the
// cart only when the payment collaborator reports success.
func (s *CheckoutService) Submit(ctx context.Context, req models.CheckoutRequest) (*models.OrderReceipt, error) {
	if strings.TrimSpace(req.PaymentMethod) == "" {
		return nil, ErrPaymentMethodRequired
	}
	if strings.TrimSpace(req.DeliveryAddress) == "" {
		return nil, ErrDeliveryAddressMissing
	}

	view := s.cart.View()
	if view.SelectedRetailer == nil {
		return nil, ErrNoRetailer
	}
	if len(view.Items) == 0 {
		return nil, ErrEmptyCart
	}
	if minimum := view.SelectedRetailer.MinimumOrder; minimum != nil && view.Total.LessThan(*minimum) {
		return nil, fmt.Errorf("%w: minimum is %s", ErrBelowMinimumOrder, minimum.String())
	}

	order := &models.Order{
		IdempotencyKey:  uuid.NewString(),
		RetailerID:      view.SelectedRetailer.ID,
		Items:           view.Items,
		Total:           view.Total,
		PaymentMethod:   req.PaymentMethod,
		DeliveryAddress: req.DeliveryAddress,
		Notes:           req.Notes,
	}

	receipt, err := s.payments.PlaceOrder(ctx, order)
	if err != nil {
		s.logger.Error().Err(err).
			Str("retailer_id", string(order.RetailerID)).
			Str("total", order.Total.String()).
			Msg("Checkout failed")
		return nil, err
	}

	s.cart.removeOrdered(ctx, order)
	s.logger.Info().
		Str("order_id", string(receipt.OrderID)).
		Str("retailer_id", string(order.RetailerID)).
		Str("total", order.Total.String()).
		Msg("Checkout completed")
	return receipt, nil
}
