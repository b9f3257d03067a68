// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"net/http"

	"vitrina/internal/apperr"
	"vitrina/internal/models"
)

// --- Orders ---

// OrdersList serves one page of orders, optionally filtered by status.
func (a *Admin) OrdersList(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	if status != "" && !models.ValidOrderStatus(status) {
		respondError(w, r, apperr.Validation("unknown order status %q", status))
		return
	}

	orders, total, err := a.orderStore.List(status, queryInt(r, "page", 1), queryInt(r, "per_page", 50))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"items": orders,
		"total": total,
	})
}

type orderStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=new confirmed shipped delivered cancelled"`
}

// OrderStatusUpdate moves an order along the fulfilment flow.
// Cancelling restores the stock its items reserved.
func (a *Admin) OrderStatusUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "id")
	if err != nil {
		respondError(w, r, err)
		return
	}

	var req orderStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	if err := checkRequest(req); err != nil {
		respondError(w, r, err)
		return
	}

	if err := a.orderStore.UpdateStatus(id, models.OrderStatus(req.Status)); err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"status": req.Status})
}

// --- Users ---

// UsersList serves all back-office users.
func (a *Admin) UsersList(w http.ResponseWriter, r *http.Request) {
	users, err := a.userStore.List()
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, users)
}

type userCreateRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=12"`
	DisplayName string `json:"display_name" validate:"required,notblank,max=200"`
	Role        string `json:"role" validate:"required,oneof=admin editor"`
}

// UserCreate adds a back-office user. The new user must enroll in 2FA
// on first login.
func (a *Admin) UserCreate(w http.ResponseWriter, r *http.Request) {
	var req userCreateRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	if err := checkRequest(req); err != nil {
		respondError(w, r, err)
		return
	}

	created, err := a.userStore.Create(req.Email, req.Password, req.DisplayName, models.Role(req.Role))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

// --- Cache log ---

// CacheLogRecent serves the latest cache invalidation events.
func (a *Admin) CacheLogRecent(w http.ResponseWriter, r *http.Request) {
	entries, err := a.cacheLog.RecentEntries(queryInt(r, "limit", 100))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, entries)
}
