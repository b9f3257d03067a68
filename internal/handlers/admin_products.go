// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"fmt"
	"net/http"

	"github.com/gosimple/slug"

	"vitrina/internal/apperr"
	"vitrina/internal/cache"
	"vitrina/internal/models"
	"vitrina/internal/store"
)

// invalidateProducts drops listing and detail caches after a product
// change. The detail key is slug-based, so both the old and new slug
// are covered by the prefix sweep.
func (a *Admin) invalidateProducts(r *http.Request, entityID int64, action string) {
	ctx := r.Context()
	a.catalogCache.InvalidatePrefix(ctx, cache.PrefixProducts)
	a.catalogCache.InvalidatePrefix(ctx, cache.PrefixProduct)
	a.catalogCache.Invalidate(ctx, cache.KeyCategoryTree)
	a.cacheLog.Log("product", fmt.Sprint(entityID), action)
}

// --- Products ---

// ProductsList serves the admin product listing, inactive included.
func (a *Admin) ProductsList(w http.ResponseWriter, r *http.Request) {
	page, err := a.productStore.List(store.ProductFilter{
		Search:  r.URL.Query().Get("q"),
		Page:    queryInt(r, "page", 1),
		PerPage: queryInt(r, "per_page", 50),
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, page)
}

// ProductGet serves one product with its characteristic links.
func (a *Admin) ProductGet(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "id")
	if err != nil {
		respondError(w, r, err)
		return
	}

	p, err := a.productStore.FindByID(id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if p == nil {
		respondError(w, r, apperr.NotFound("product %d not found", id))
		return
	}

	chars, err := a.productStore.Characteristics(id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"product":         p,
		"characteristics": chars,
	})
}

type productRequest struct {
	Name           string  `json:"name" validate:"required,notblank,max=300"`
	Slug           string  `json:"slug" validate:"max=300"`
	SKU            string  `json:"sku" validate:"required,notblank,max=100"`
	Description    string  `json:"description" validate:"max=100000"`
	Price          float64 `json:"price" validate:"gte=0"`
	Stock          int     `json:"stock" validate:"gte=0"`
	CategoryID     *int64  `json:"category_id"`
	ManufacturerID *int64  `json:"manufacturer_id"`
	ModelLineID    *int64  `json:"model_line_id"`
	IsActive       *bool   `json:"is_active"`
	ValueIDs       []int64 `json:"value_ids"`
}

func (req *productRequest) model() *models.Product {
	p := &models.Product{
		Name:           req.Name,
		Slug:           req.Slug,
		SKU:            req.SKU,
		Description:    req.Description,
		Price:          req.Price,
		Stock:          req.Stock,
		CategoryID:     req.CategoryID,
		ManufacturerID: req.ManufacturerID,
		ModelLineID:    req.ModelLineID,
		IsActive:       true,
	}
	if p.Slug == "" {
		p.Slug = slug.Make(req.Name)
	}
	if req.IsActive != nil {
		p.IsActive = *req.IsActive
	}
	return p
}

// ProductCreate adds a product and links its characteristic values.
func (a *Admin) ProductCreate(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	if err := checkRequest(req); err != nil {
		respondError(w, r, err)
		return
	}

	created, err := a.productStore.Create(req.model())
	if err != nil {
		respondError(w, r, err)
		return
	}
	if len(req.ValueIDs) > 0 {
		if err := a.productStore.SetCharacteristics(created.ID, req.ValueIDs); err != nil {
			respondError(w, r, err)
			return
		}
	}

	a.invalidateProducts(r, created.ID, "create")
	respondJSON(w, http.StatusCreated, created)
}

// ProductUpdate modifies a product and replaces its characteristic
// links when value_ids is present.
func (a *Admin) ProductUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "id")
	if err != nil {
		respondError(w, r, err)
		return
	}

	var req productRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	if err := checkRequest(req); err != nil {
		respondError(w, r, err)
		return
	}

	p := req.model()
	p.ID = id
	if err := a.productStore.Update(p); err != nil {
		respondError(w, r, err)
		return
	}
	if req.ValueIDs != nil {
		if err := a.productStore.SetCharacteristics(id, req.ValueIDs); err != nil {
			respondError(w, r, err)
			return
		}
	}

	updated, err := a.productStore.FindByID(id)
	if err != nil {
		respondError(w, r, err)
		return
	}

	a.invalidateProducts(r, id, "update")
	respondJSON(w, http.StatusOK, updated)
}

// ProductDelete removes a product.
func (a *Admin) ProductDelete(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "id")
	if err != nil {
		respondError(w, r, err)
		return
	}

	if err := a.productStore.Delete(id); err != nil {
		respondError(w, r, err)
		return
	}

	a.invalidateProducts(r, id, "delete")
	respondJSON(w, http.StatusNoContent, nil)
}

// --- Manufacturers ---

// ManufacturersList serves all manufacturers with model lines.
func (a *Admin) ManufacturersList(w http.ResponseWriter, r *http.Request) {
	items, err := a.manufacturerStore.List()
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, items)
}

type manufacturerRequest struct {
	Name        string `json:"name" validate:"required,notblank,max=200"`
	Slug        string `json:"slug" validate:"max=200"`
	Country     string `json:"country" validate:"max=100"`
	Description string `json:"description" validate:"max=2000"`
}

func (req *manufacturerRequest) model() *models.Manufacturer {
	m := &models.Manufacturer{
		Name:        req.Name,
		Slug:        req.Slug,
		Country:     req.Country,
		Description: req.Description,
	}
	if m.Slug == "" {
		m.Slug = slug.Make(req.Name)
	}
	return m
}

// ManufacturerCreate adds a manufacturer.
func (a *Admin) ManufacturerCreate(w http.ResponseWriter, r *http.Request) {
	var req manufacturerRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	if err := checkRequest(req); err != nil {
		respondError(w, r, err)
		return
	}

	created, err := a.manufacturerStore.Create(req.model())
	if err != nil {
		respondError(w, r, err)
		return
	}

	a.catalogCache.Invalidate(r.Context(), cache.KeyManufacturers)
	a.cacheLog.Log("manufacturer", fmt.Sprint(created.ID), "create")
	respondJSON(w, http.StatusCreated, created)
}

// ManufacturerUpdate modifies a manufacturer.
func (a *Admin) ManufacturerUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "id")
	if err != nil {
		respondError(w, r, err)
		return
	}

	var req manufacturerRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	if err := checkRequest(req); err != nil {
		respondError(w, r, err)
		return
	}

	m := req.model()
	m.ID = id
	if err := a.manufacturerStore.Update(m); err != nil {
		respondError(w, r, err)
		return
	}

	updated, err := a.manufacturerStore.FindByID(id)
	if err != nil {
		respondError(w, r, err)
		return
	}

	a.catalogCache.Invalidate(r.Context(), cache.KeyManufacturers)
	a.cacheLog.Log("manufacturer", fmt.Sprint(id), "update")
	respondJSON(w, http.StatusOK, updated)
}

// ManufacturerDelete removes a manufacturer and its model lines.
func (a *Admin) ManufacturerDelete(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "id")
	if err != nil {
		respondError(w, r, err)
		return
	}

	if err := a.manufacturerStore.Delete(id); err != nil {
		respondError(w, r, err)
		return
	}

	ctx := r.Context()
	a.catalogCache.Invalidate(ctx, cache.KeyManufacturers)
	a.catalogCache.InvalidatePrefix(ctx, cache.PrefixProducts)
	a.cacheLog.Log("manufacturer", fmt.Sprint(id), "delete")
	respondJSON(w, http.StatusNoContent, nil)
}

type modelLineRequest struct {
	Name string `json:"name" validate:"required,notblank,max=200"`
	Slug string `json:"slug" validate:"max=200"`
}

// ModelLineCreate adds a model line under a manufacturer.
func (a *Admin) ModelLineCreate(w http.ResponseWriter, r *http.Request) {
	manufacturerID, err := urlID(r, "id")
	if err != nil {
		respondError(w, r, err)
		return
	}

	var req modelLineRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	if err := checkRequest(req); err != nil {
		respondError(w, r, err)
		return
	}

	lineSlug := req.Slug
	if lineSlug == "" {
		lineSlug = slug.Make(req.Name)
	}
	created, err := a.manufacturerStore.CreateModelLine(&models.ModelLine{
		ManufacturerID: manufacturerID,
		Name:           req.Name,
		Slug:           lineSlug,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}

	a.catalogCache.Invalidate(r.Context(), cache.KeyManufacturers)
	a.cacheLog.Log("model_line", fmt.Sprint(created.ID), "create")
	respondJSON(w, http.StatusCreated, created)
}

// ModelLineDelete removes a model line.
func (a *Admin) ModelLineDelete(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "id")
	if err != nil {
		respondError(w, r, err)
		return
	}

	if err := a.manufacturerStore.DeleteModelLine(id); err != nil {
		respondError(w, r, err)
		return
	}

	a.catalogCache.Invalidate(r.Context(), cache.KeyManufacturers)
	a.cacheLog.Log("model_line", fmt.Sprint(id), "delete")
	respondJSON(w, http.StatusNoContent, nil)
}
