// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package router sets up all HTTP routes and middleware chains for the
// Vitrina catalog API. It organizes routes into public, auth and admin
// groups with appropriate middleware stacks.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"vitrina/internal/handlers"
	"vitrina/internal/middleware"
	"vitrina/internal/session"
)

// New creates and returns the configured Chi router with all middleware
// and route groups wired up.
func New(sessionStore *session.Store, catalog *handlers.Catalog, cart *handlers.Cart, auth *handlers.Auth, admin *handlers.Admin) chi.Router {
	r := chi.NewRouter()

	// Global middleware — applied to every request.
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders)

	// Health check — no auth, no CSRF.
	r.Get("/health", healthHandler)

	r.Route("/api/v1", func(r chi.Router) {
		// Public catalog — cached reads, no session needed.
		r.Route("/catalog", func(r chi.Router) {
			r.Get("/categories/tree", catalog.CategoryTree)
			r.Get("/characteristics/tree", catalog.CharacteristicTree)
			r.Get("/manufacturers", catalog.Manufacturers)
			r.Get("/products", catalog.Products)
			r.Get("/products/{slug}", catalog.ProductDetail)
		})

		// Anonymous cart and checkout, keyed by cookie.
		r.Route("/cart", func(r chi.Router) {
			r.Get("/", cart.Get)
			r.Post("/items", cart.AddItem)
			r.Put("/items/{productID}", cart.UpdateItem)
			r.Delete("/items/{productID}", cart.RemoveItem)
		})
		r.Post("/orders", cart.Checkout)
		r.Get("/orders/{number}", cart.OrderStatus)

		// Auth — login is rate limited per client IP.
		r.Route("/auth", func(r chi.Router) {
			r.Use(middleware.LoadSession(sessionStore))

			loginLimiter := middleware.NewLoginLimiter()
			r.With(loginLimiter.Middleware).Post("/login", auth.Login)

			r.Post("/logout", auth.Logout)
			r.Get("/me", auth.Me)

			// 2FA — requires a session but NOT completed 2FA.
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAuth)
				r.Post("/2fa/setup", auth.TwoFASetup)
				r.Post("/2fa/verify", auth.TwoFAVerify)
			})
		})

		// Admin API — session, CSRF and completed 2FA required.
		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.LoadSession(sessionStore))
			r.Use(middleware.CSRF)
			r.Use(middleware.RequireAuth)
			r.Use(middleware.Require2FA)

			// Categories
			r.Route("/categories", func(r chi.Router) {
				r.Get("/tree", admin.CategoriesTree)
				r.Post("/", admin.CategoryCreate)
				r.Put("/{id}", admin.CategoryUpdate)
				r.Delete("/{id}", admin.CategoryDelete)
			})

			// Characteristic groups and values
			r.Route("/characteristics", func(r chi.Router) {
				r.Get("/tree", admin.CharacteristicsTree)
				r.Post("/", admin.CharacteristicGroupCreate)
				r.Put("/{id}", admin.CharacteristicGroupUpdate)
				r.Delete("/{id}", admin.CharacteristicGroupDelete)
				r.Post("/{id}/values", admin.CharacteristicValueCreate)
			})
			r.Delete("/characteristic-values/{id}", admin.CharacteristicValueDelete)

			// Products
			r.Route("/products", func(r chi.Router) {
				r.Get("/", admin.ProductsList)
				r.Post("/", admin.ProductCreate)
				r.Get("/{id}", admin.ProductGet)
				r.Put("/{id}", admin.ProductUpdate)
				r.Delete("/{id}", admin.ProductDelete)
			})

			// Manufacturers and model lines
			r.Route("/manufacturers", func(r chi.Router) {
				r.Get("/", admin.ManufacturersList)
				r.Post("/", admin.ManufacturerCreate)
				r.Put("/{id}", admin.ManufacturerUpdate)
				r.Delete("/{id}", admin.ManufacturerDelete)
				r.Post("/{id}/model-lines", admin.ModelLineCreate)
			})
			r.Delete("/model-lines/{id}", admin.ModelLineDelete)

			// Orders
			r.Route("/orders", func(r chi.Router) {
				r.Get("/", admin.OrdersList)
				r.Put("/{id}/status", admin.OrderStatusUpdate)
			})

			// User management and cache audit — admin role only.
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAdmin)
				r.Get("/users", admin.UsersList)
				r.Post("/users", admin.UserCreate)
				r.Get("/cache-log", admin.CacheLogRecent)
			})
		})
	})

	return r
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
