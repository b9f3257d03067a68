// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers contains the HTTP handlers for the Vitrina catalog
// API. Handlers are grouped by concern (catalog, cart, orders, auth,
// admin) and receive their dependencies through the handler struct.
// Everything speaks JSON; the storefront frontend is a separate SPA.
package handlers

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"vitrina/internal/apperr"
)

// maxBodyBytes caps JSON request bodies. Catalog payloads are small;
// product descriptions are the largest field.
const maxBodyBytes = 1 << 20

// respondJSON writes v as a JSON response with the given status.
func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response failed", "error", err)
	}
}

// respondError classifies err and writes the structured error envelope.
// Unclassified errors become TRANSACTION_ERROR and are logged with their
// cause; the wire message stays generic.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	appErr := apperr.From(err)
	if appErr.HTTPStatus() >= 500 {
		slog.Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err,
		)
	}
	respondJSON(w, appErr.HTTPStatus(), map[string]any{"error": appErr})
}

// decodeJSON reads the request body into dest, rejecting unknown fields.
func decodeJSON(r *http.Request, dest any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dest); err != nil {
		return apperr.Validation("invalid JSON body: %v", err)
	}
	// A second document in the body means the client sent garbage.
	if dec.More() {
		return apperr.Validation("request body must contain a single JSON object")
	}
	return nil
}

// urlID parses a chi URL parameter as an int64 id.
func urlID(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		return 0, apperr.Validation("invalid %s %q", name, raw)
	}
	return id, nil
}

// queryBool reads a boolean query parameter, defaulting to false.
func queryBool(r *http.Request, name string) bool {
	v, _ := strconv.ParseBool(r.URL.Query().Get(name))
	return v
}

// queryInt reads an integer query parameter, returning fallback when the
// parameter is absent or malformed.
func queryInt(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

// queryFloat reads a float query parameter, returning 0 when absent or
// malformed.
func queryFloat(r *http.Request, name string) float64 {
	v, _ := strconv.ParseFloat(r.URL.Query().Get(name), 64)
	return v
}

// queryInt64s parses a repeatable, comma-separated query parameter into
// int64 values. Malformed entries are skipped.
func queryInt64s(r *http.Request, name string) []int64 {
	var out []int64
	for _, item := range r.URL.Query()[name] {
		for _, part := range strings.Split(item, ",") {
			if v, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64); err == nil {
				out = append(out, v)
			}
		}
	}
	return out
}
