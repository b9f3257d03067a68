// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"vitrina/internal/apperr"
	"vitrina/internal/models"
	"vitrina/internal/store"
)

// CartCookieName identifies an anonymous cart across visits.
const CartCookieName = "vt_cart"

// cartTTLSeconds keeps the cart cookie for 30 days; the stale-cart
// sweeper removes abandoned rows on the same schedule.
const cartTTLSeconds = 30 * 24 * 60 * 60

// Cart groups the shopping cart and checkout handlers.
type Cart struct {
	cartStore  *store.CartStore
	orderStore *store.OrderStore
	secure     bool
}

// NewCart creates a new Cart handler group. secure marks the cart
// cookie HTTPS-only.
func NewCart(carts *store.CartStore, orders *store.OrderStore, secure bool) *Cart {
	return &Cart{cartStore: carts, orderStore: orders, secure: secure}
}

// currentCart resolves the cart from the request cookie, creating a new
// cart (and setting the cookie) when none exists or the cookie is stale.
func (h *Cart) currentCart(w http.ResponseWriter, r *http.Request) (*models.Cart, error) {
	if cookie, err := r.Cookie(CartCookieName); err == nil {
		if id, err := uuid.Parse(cookie.Value); err == nil {
			cart, err := h.cartStore.Find(id)
			if err != nil {
				return nil, err
			}
			if cart != nil {
				return cart, nil
			}
		}
	}

	cart, err := h.cartStore.Create()
	if err != nil {
		return nil, err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     CartCookieName,
		Value:    cart.ID.String(),
		Path:     "/",
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   cartTTLSeconds,
	})
	return cart, nil
}

// Get serves the current cart with line items and the running total.
func (h *Cart) Get(w http.ResponseWriter, r *http.Request) {
	cart, err := h.currentCart(w, r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondCart(w, cart)
}

func respondCart(w http.ResponseWriter, cart *models.Cart) {
	respondJSON(w, http.StatusOK, map[string]any{
		"id":    cart.ID,
		"items": cart.Items,
		"total": cart.Total(),
	})
}

type cartItemRequest struct {
	ProductID int64 `json:"product_id" validate:"required,gt=0"`
	Quantity  int   `json:"quantity" validate:"required,gt=0"`
}

// AddItem puts a product in the cart, merging with an existing line.
func (h *Cart) AddItem(w http.ResponseWriter, r *http.Request) {
	cart, err := h.currentCart(w, r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	var req cartItemRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	if err := checkRequest(req); err != nil {
		respondError(w, r, err)
		return
	}

	if err := h.cartStore.AddItem(cart.ID, req.ProductID, req.Quantity); err != nil {
		respondError(w, r, err)
		return
	}

	updated, err := h.cartStore.Find(cart.ID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondCart(w, updated)
}

type cartQuantityRequest struct {
	Quantity int `json:"quantity" validate:"gte=0"`
}

// UpdateItem sets a line's quantity. Zero removes the line.
func (h *Cart) UpdateItem(w http.ResponseWriter, r *http.Request) {
	cart, err := h.currentCart(w, r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	productID, err := urlID(r, "productID")
	if err != nil {
		respondError(w, r, err)
		return
	}

	var req cartQuantityRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	if err := checkRequest(req); err != nil {
		respondError(w, r, err)
		return
	}

	if err := h.cartStore.UpdateItem(cart.ID, productID, req.Quantity); err != nil {
		respondError(w, r, err)
		return
	}

	updated, err := h.cartStore.Find(cart.ID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondCart(w, updated)
}

// RemoveItem drops a line from the cart.
func (h *Cart) RemoveItem(w http.ResponseWriter, r *http.Request) {
	cart, err := h.currentCart(w, r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	productID, err := urlID(r, "productID")
	if err != nil {
		respondError(w, r, err)
		return
	}

	if err := h.cartStore.RemoveItem(cart.ID, productID); err != nil {
		respondError(w, r, err)
		return
	}

	updated, err := h.cartStore.Find(cart.ID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondCart(w, updated)
}

type checkoutRequest struct {
	CustomerName    string `json:"customer_name" validate:"required,notblank,max=200"`
	CustomerEmail   string `json:"customer_email" validate:"required,email"`
	CustomerPhone   string `json:"customer_phone" validate:"max=50"`
	ShippingAddress string `json:"shipping_address" validate:"required,notblank,max=1000"`
}

// Checkout turns the cart into an order. Stock is verified and
// decremented atomically; a sold-out line fails the whole checkout.
func (h *Cart) Checkout(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(CartCookieName)
	if err != nil {
		respondError(w, r, apperr.Validation("cart is empty"))
		return
	}
	cartID, err := uuid.Parse(cookie.Value)
	if err != nil {
		respondError(w, r, apperr.Validation("cart is empty"))
		return
	}

	var req checkoutRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	if err := checkRequest(req); err != nil {
		respondError(w, r, err)
		return
	}

	order, err := h.orderStore.Checkout(cartID, &models.Order{
		CustomerName:    req.CustomerName,
		CustomerEmail:   req.CustomerEmail,
		CustomerPhone:   req.CustomerPhone,
		ShippingAddress: req.ShippingAddress,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, order)
}

// OrderStatus serves one order by its public number, so customers can
// track fulfilment without an account.
func (h *Cart) OrderStatus(w http.ResponseWriter, r *http.Request) {
	number, err := uuid.Parse(chi.URLParam(r, "number"))
	if err != nil {
		respondError(w, r, apperr.Validation("invalid order number"))
		return
	}

	order, err := h.orderStore.FindByNumber(number)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if order == nil {
		respondError(w, r, apperr.NotFound("order %s not found", number))
		return
	}
	respondJSON(w, http.StatusOK, order)
}
