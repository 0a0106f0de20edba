package transport

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"storefront/internal/models"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticToken string

func (s staticToken) Token() string { return string(s) }

func TestOrderClientPlaceOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/orders", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		assert.Equal(t, "key-1", r.Header.Get("Idempotency-Key"))

		var o models.Order
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&o))
		assert.Equal(t, models.ID("r1"), o.RetailerID)
		assert.True(t, o.Total.Equal(decimal.NewFromInt(2400)))

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(models.OrderReceipt{OrderID: "o-1", Status: "paid", Total: o.Total})
	}))
	defer srv.Close()

	c := NewOrderClient(srv.URL, time.Second, staticToken("tok"), zerolog.Nop())
	receipt, err := c.PlaceOrder(context.Background(), &models.Order{
		IdempotencyKey: "key-1",
		RetailerID:     "r1",
		Total:          decimal.NewFromInt(2400),
	})
	require.NoError(t, err)
	assert.Equal(t, models.ID("o-1"), receipt.OrderID)
	assert.Equal(t, "paid", receipt.Status)
}

func TestOrderClientDeclined(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
		w.Write([]byte(`{"error":"payment_declined","message":"Card declined"}`))
	}))
	defer srv.Close()

	c := NewOrderClient(srv.URL, time.Second, staticToken(""), zerolog.Nop())
	_, err := c.PlaceOrder(context.Background(), &models.Order{IdempotencyKey: "k"})

	var terr *Error
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, http.StatusPaymentRequired, terr.Status)
	assert.Equal(t, "Card declined", terr.Message)
}

func TestOrderClientNumericOrderID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"order_id":1234,"status":"paid","total":24}`))
	}))
	defer srv.Close()

	c := NewOrderClient(srv.URL, time.Second, staticToken("tok"), zerolog.Nop())
	receipt, err := c.PlaceOrder(context.Background(), &models.Order{IdempotencyKey: "k", RetailerID: "r1"})
	require.NoError(t, err)
	assert.Equal(t, models.ID("1234"), receipt.OrderID)
	assert.Equal(t, "paid", receipt.Status)
	assert.True(t, receipt.Total.Equal(decimal.NewFromInt(24)))
}

func TestOrderClientUnreadableReceiptStillSucceeds(t *testing.T) {
	for name, body := range map[string]string{
		"empty":    ``,
		"not json": `order placed`,
		"bad time": `{"order_id":"o-9","created_at":"yesterday"}`,
	} {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusCreated)
				w.Write([]byte(body))
			}))
			defer srv.Close()

			c := NewOrderClient(srv.URL, time.Second, staticToken("tok"), zerolog.Nop())
			receipt, err := c.PlaceOrder(context.Background(), &models.Order{IdempotencyKey: "k"})
			require.NoError(t, err)
			assert.Equal(t, ReceiptStatusAccepted, receipt.Status)
		})
	}
}
