// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"fmt"
	"net/http"
	"sort"

	"github.com/go-chi/chi/v5"

	"vitrina/internal/apperr"
	"vitrina/internal/cache"
	"vitrina/internal/markdown"
	"vitrina/internal/models"
	"vitrina/internal/store"
)

// Catalog groups the public storefront read handlers. Every endpoint
// checks the Valkey catalog cache before touching the database and
// stores its response on miss.
type Catalog struct {
	categoryStore       *store.CategoryStore
	characteristicStore *store.CharacteristicStore
	productStore        *store.ProductStore
	manufacturerStore   *store.ManufacturerStore
	catalogCache        *cache.CatalogCache
}

// NewCatalog creates a new Catalog handler group.
func NewCatalog(categories *store.CategoryStore, characteristics *store.CharacteristicStore, products *store.ProductStore, manufacturers *store.ManufacturerStore, catalogCache *cache.CatalogCache) *Catalog {
	return &Catalog{
		categoryStore:       categories,
		characteristicStore: characteristics,
		productStore:        products,
		manufacturerStore:   manufacturers,
		catalogCache:        catalogCache,
	}
}

// CategoryTree serves the nested category tree with product counts.
// Only active categories are shown on the storefront.
func (c *Catalog) CategoryTree(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var cached models.CategoryTree
	if c.catalogCache.GetJSON(ctx, cache.KeyCategoryTree, &cached) {
		respondJSON(w, http.StatusOK, &cached)
		return
	}

	tree, err := c.categoryStore.Tree(true)
	if err != nil {
		respondError(w, r, err)
		return
	}

	c.catalogCache.SetJSON(ctx, cache.KeyCategoryTree, tree)
	respondJSON(w, http.StatusOK, tree)
}

// CharacteristicTree serves the characteristic group tree with values,
// used by the storefront filter sidebar.
func (c *Catalog) CharacteristicTree(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var cached models.CharacteristicGroupTree
	if c.catalogCache.GetJSON(ctx, cache.KeyCharacteristicTree, &cached) {
		respondJSON(w, http.StatusOK, &cached)
		return
	}

	tree, err := c.characteristicStore.Tree(true)
	if err != nil {
		respondError(w, r, err)
		return
	}

	c.catalogCache.SetJSON(ctx, cache.KeyCharacteristicTree, tree)
	respondJSON(w, http.StatusOK, tree)
}

// Manufacturers serves all manufacturers with their model lines.
func (c *Catalog) Manufacturers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var cached []models.Manufacturer
	if c.catalogCache.GetJSON(ctx, cache.KeyManufacturers, &cached) {
		respondJSON(w, http.StatusOK, cached)
		return
	}

	items, err := c.manufacturerStore.List()
	if err != nil {
		respondError(w, r, err)
		return
	}

	c.catalogCache.SetJSON(ctx, cache.KeyManufacturers, items)
	respondJSON(w, http.StatusOK, items)
}

// Products serves a filtered product listing. A category filter covers
// the category's whole subtree, so browsing "Laptops" includes products
// filed under "Gaming Laptops".
func (c *Catalog) Products(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	filter := store.ProductFilter{
		ManufacturerID: int64(queryInt(r, "manufacturer", 0)),
		ModelLineID:    int64(queryInt(r, "model_line", 0)),
		ValueIDs:       queryInt64s(r, "value"),
		MinPrice:       queryFloat(r, "min_price"),
		MaxPrice:       queryFloat(r, "max_price"),
		Search:         r.URL.Query().Get("q"),
		InStockOnly:    queryBool(r, "in_stock"),
		ActiveOnly:     true,
		Page:           queryInt(r, "page", 1),
		PerPage:        queryInt(r, "per_page", 24),
	}

	if categoryID := int64(queryInt(r, "category", 0)); categoryID > 0 {
		ids, err := c.categoryStore.SubtreeIDs(categoryID)
		if err != nil {
			respondError(w, r, err)
			return
		}
		filter.CategoryIDs = ids
	}

	key := productListKey(filter)
	var cached models.ProductPage
	if c.catalogCache.GetJSON(ctx, key, &cached) {
		respondJSON(w, http.StatusOK, &cached)
		return
	}

	page, err := c.productStore.List(filter)
	if err != nil {
		respondError(w, r, err)
		return
	}

	c.catalogCache.SetJSON(ctx, key, page)
	respondJSON(w, http.StatusOK, page)
}

// productListKey builds a deterministic cache key for a product filter.
func productListKey(f store.ProductFilter) string {
	values := append([]int64(nil), f.ValueIDs...)
	sort.Slice(values, func(i, j int) bool { return values[i] < values[j] })
	return fmt.Sprintf("%scat=%v&man=%d&line=%d&val=%v&pr=%g-%g&q=%s&stock=%t&p=%d&pp=%d",
		cache.PrefixProducts, f.CategoryIDs, f.ManufacturerID, f.ModelLineID,
		values, f.MinPrice, f.MaxPrice, f.Search, f.InStockOnly, f.Page, f.PerPage)
}

// ProductDetail serves one product page payload by slug, with the
// Markdown description rendered to HTML.
func (c *Catalog) ProductDetail(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	slugParam := chi.URLParam(r, "slug")

	key := cache.ProductKey(slugParam)
	var cached models.ProductDetail
	if c.catalogCache.GetJSON(ctx, key, &cached) {
		respondJSON(w, http.StatusOK, &cached)
		return
	}

	detail, err := c.productStore.Detail(slugParam)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if detail == nil || !detail.IsActive {
		respondError(w, r, apperr.NotFound("product %q not found", slugParam))
		return
	}

	html, err := markdown.ToHTML(detail.Description)
	if err != nil {
		respondError(w, r, err)
		return
	}
	detail.DescriptionHTML = html

	c.catalogCache.SetJSON(ctx, key, detail)
	respondJSON(w, http.StatusOK, detail)
}
