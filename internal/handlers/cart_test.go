// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vitrina/internal/models"
)

func TestCheckoutWithoutCartCookie(t *testing.T) {
	// No cart cookie means nothing to check out; no store is touched.
	cart := NewCart(nil, nil, false)

	w := httptest.NewRecorder()
	r := httptest.NewRequest("POST", "/checkout", jsonBody(t, map[string]any{
		"customer_name":    "Ana Pop",
		"customer_email":   "ana@example.com",
		"shipping_address": "Str. Lunga 1, Brasov",
	}))
	cart.Checkout(w, r)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", responseErrorCode(t, w.Body.String()))
}

func TestCartAddUpdateRemoveFlow(t *testing.T) {
	env := newTestEnv(t)
	cleanProducts(t, env.DB, "ht-cart-widget")
	t.Cleanup(func() { cleanProducts(t, env.DB, "ht-cart-widget") })

	product, err := env.ProductStore.Create(&models.Product{
		Name:     "HT Cart Widget",
		Slug:     "ht-cart-widget",
		SKU:      "HT-CW-001",
		Price:    19.90,
		Stock:    5,
		IsActive: true,
	})
	require.NoError(t, err)

	// First touch creates the cart and sets the cookie.
	w := httptest.NewRecorder()
	r := httptest.NewRequest("GET", "/cart", nil)
	env.Cart.Get(w, r)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var cartCookie *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == CartCookieName {
			cartCookie = c
		}
	}
	require.NotNil(t, cartCookie, "first cart access should set the cookie")

	// Add three units.
	w = httptest.NewRecorder()
	r = httptest.NewRequest("POST", "/cart/items", jsonBody(t, map[string]any{
		"product_id": product.ID,
		"quantity":   3,
	}))
	r.AddCookie(cartCookie)
	env.Cart.AddItem(w, r)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Items []struct {
			ProductID int64 `json:"product_id"`
			Quantity  int   `json:"quantity"`
		} `json:"items"`
		Total float64 `json:"total"`
	}
	decodeBody(t, w.Body.String(), &resp)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, 3, resp.Items[0].Quantity)
	assert.InDelta(t, 59.70, resp.Total, 0.001)

	// Adding beyond stock clamps at the available quantity.
	w = httptest.NewRecorder()
	r = httptest.NewRequest("POST", "/cart/items", jsonBody(t, map[string]any{
		"product_id": product.ID,
		"quantity":   10,
	}))
	r.AddCookie(cartCookie)
	env.Cart.AddItem(w, r)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	decodeBody(t, w.Body.String(), &resp)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, 5, resp.Items[0].Quantity)

	// Setting quantity to zero drops the line.
	w = httptest.NewRecorder()
	r = httptest.NewRequest("PUT", "/cart/items/"+fmt.Sprint(product.ID), jsonBody(t, map[string]any{
		"quantity": 0,
	}))
	r.AddCookie(cartCookie)
	r = withChiURLParam(r, "productID", fmt.Sprint(product.ID))
	env.Cart.UpdateItem(w, r)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	decodeBody(t, w.Body.String(), &resp)
	assert.Empty(t, resp.Items)
}

func TestCheckoutCreatesOrderAndDecrementsStock(t *testing.T) {
	env := newTestEnv(t)
	cleanProducts(t, env.DB, "ht-checkout-widget")
	t.Cleanup(func() { cleanProducts(t, env.DB, "ht-checkout-widget") })

	product, err := env.ProductStore.Create(&models.Product{
		Name:     "HT Checkout Widget",
		Slug:     "ht-checkout-widget",
		SKU:      "HT-CO-001",
		Price:    100,
		Stock:    4,
		IsActive: true,
	})
	require.NoError(t, err)

	w := httptest.NewRecorder()
	r := httptest.NewRequest("GET", "/cart", nil)
	env.Cart.Get(w, r)
	require.Equal(t, http.StatusOK, w.Code)

	var cartCookie *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == CartCookieName {
			cartCookie = c
		}
	}
	require.NotNil(t, cartCookie)

	w = httptest.NewRecorder()
	r = httptest.NewRequest("POST", "/cart/items", jsonBody(t, map[string]any{
		"product_id": product.ID,
		"quantity":   2,
	}))
	r.AddCookie(cartCookie)
	env.Cart.AddItem(w, r)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = httptest.NewRecorder()
	r = httptest.NewRequest("POST", "/checkout", jsonBody(t, map[string]any{
		"customer_name":    "Ana Pop",
		"customer_email":   "ana@example.com",
		"shipping_address": "Str. Lunga 1, Brasov",
	}))
	r.AddCookie(cartCookie)
	env.Cart.Checkout(w, r)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var order struct {
		Number string `json:"number"`
	}
	decodeBody(t, w.Body.String(), &order)
	require.NotEmpty(t, order.Number)

	// Stock went down and the cart is empty again.
	reloaded, err := env.ProductStore.FindByID(product.ID)
	require.NoError(t, err)
	require.NotNil(t, reloaded)
	assert.Equal(t, 2, reloaded.Stock)

	// Public order tracking by number.
	w = httptest.NewRecorder()
	r = httptest.NewRequest("GET", "/orders/"+order.Number, nil)
	r = withChiURLParam(r, "number", order.Number)
	env.Cart.OrderStatus(w, r)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
}
