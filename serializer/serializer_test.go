package serializer

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MayMartirosyan/svmotors-backend/models"
)

func TestOrderResponseShape(t *testing.T) {
	userID := uint(7)
	created := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	order := models.Order{
		ID:          3,
		Number:      "20250301120000-ab12cd34",
		Status:      models.OrderStatusPending,
		TotalAmount: 350,
		CheckoutID:  5,
		Checkout: &models.Checkout{
			ID:            5,
			Name:          "Ivan",
			Surname:       "Petrov",
			Email:         "ivan@example.com",
			Tel:           "+71234567890",
			DeliveryType:  models.DeliveryPickup,
			PaymentMethod: models.PaymentMethodCash,
			TotalAmount:   350,
			Items:         models.CheckoutItems{{ProductID: 1, Qty: 2}},
			UserID:        &userID,
		},
		CreatedAt: created,
	}

	data, err := json.Marshal(Order(&order))
	require.NoError(t, err)

	var wire map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &wire))

	assert.Equal(t, "20250301120000-ab12cd34", wire["number"])
	assert.Equal(t, "pending", wire["status"])
	assert.Equal(t, float64(350), wire["totalAmount"])

	checkout := wire["checkout"].(map[string]interface{})
	assert.Equal(t, "pickup", checkout["deliveryType"])
	assert.Equal(t, "cash", checkout["paymentMethod"])
	assert.Equal(t, float64(7), checkout["userId"])

	items := checkout["cartItems"].([]interface{})
	require.Len(t, items, 1)
	first := items[0].(map[string]interface{})
	assert.Equal(t, float64(1), first["productId"])
	assert.Equal(t, float64(2), first["qty"])

	// snake_case must not leak to the wire
	_, hasSnake := checkout["payment_method"]
	assert.False(t, hasSnake)
}

func TestProductNilDiscountedPrice(t *testing.T) {
	p := models.Product{ID: 1, Name: "Oil filter", Price: 100}
	data, err := json.Marshal(Product(&p))
	require.NoError(t, err)

	var wire map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &wire))
	assert.Nil(t, wire["discountedPrice"])
	assert.Equal(t, float64(100), wire["price"])
}

func TestCartSerialization(t *testing.T) {
	dp := 150.0
	items := []models.CartItem{
		{ID: 1, ProductID: 1, Qty: 2, Product: &models.Product{ID: 1, Name: "A", Price: 100}},
		{ID: 2, ProductID: 2, Qty: 1, Product: &models.Product{ID: 2, Name: "B", Price: 200, DiscountedPrice: &dp}},
	}

	resp := Cart(items, 350)
	assert.Equal(t, float64(350), resp.CartSummary)
	require.Len(t, resp.Cart, 2)
	assert.Equal(t, "A", resp.Cart[0].Product.Name)
	assert.Equal(t, &dp, resp.Cart[1].Product.DiscountedPrice)
}

func TestCheckoutNil(t *testing.T) {
	assert.Nil(t, Checkout(nil))

	order := models.Order{ID: 1, Number: "x", Status: models.OrderStatusPending}
	data, err := json.Marshal(Order(&order))
	require.NoError(t, err)
	var wire map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &wire))
	_, hasCheckout := wire["checkout"]
	assert.False(t, hasCheckout)
}

func TestCategoryTreeSerialization(t *testing.T) {
	parent := uint(1)
	tree := models.BuildCategoryTree([]models.Category{
		{ID: 1, Name: "Oils", Slug: "oils"},
		{ID: 2, Name: "Motor oils", Slug: "motor-oils", ParentID: &parent},
	})

	out := CategoryTree(tree)
	require.Len(t, out, 1)
	require.Len(t, out[0].Children, 1)
	assert.Equal(t, "motor-oils", out[0].Children[0].Slug)
	assert.NotNil(t, out[0].Children[0].Children)
}
