// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"fmt"
	"net/http"

	"github.com/gosimple/slug"

	"vitrina/internal/cache"
	"vitrina/internal/models"
	"vitrina/internal/store"
)

// Admin groups the back-office mutation handlers and their dependencies.
// Every write invalidates the affected catalog cache keys and records
// the invalidation in the audit log.
type Admin struct {
	categoryStore       *store.CategoryStore
	characteristicStore *store.CharacteristicStore
	productStore        *store.ProductStore
	manufacturerStore   *store.ManufacturerStore
	orderStore          *store.OrderStore
	userStore           *store.UserStore
	catalogCache        *cache.CatalogCache
	cacheLog            *store.CacheLogStore
}

// NewAdmin creates a new Admin handler group with the given dependencies.
func NewAdmin(categories *store.CategoryStore, characteristics *store.CharacteristicStore, products *store.ProductStore, manufacturers *store.ManufacturerStore, orders *store.OrderStore, users *store.UserStore, catalogCache *cache.CatalogCache, cacheLog *store.CacheLogStore) *Admin {
	return &Admin{
		categoryStore:       categories,
		characteristicStore: characteristics,
		productStore:        products,
		manufacturerStore:   manufacturers,
		orderStore:          orders,
		userStore:           users,
		catalogCache:        catalogCache,
		cacheLog:            cacheLog,
	}
}

// invalidateCategories drops every cached payload a category change can
// affect: the tree itself and all product listings filtered by category.
func (a *Admin) invalidateCategories(r *http.Request, entityID int64, action string) {
	ctx := r.Context()
	a.catalogCache.Invalidate(ctx, cache.KeyCategoryTree)
	a.catalogCache.InvalidatePrefix(ctx, cache.PrefixProducts)
	a.cacheLog.Log("category", fmt.Sprint(entityID), action)
}

// invalidateCharacteristics drops the characteristic tree and product
// caches after a group or value change.
func (a *Admin) invalidateCharacteristics(r *http.Request, entityID int64, action string) {
	ctx := r.Context()
	a.catalogCache.Invalidate(ctx, cache.KeyCharacteristicTree)
	a.catalogCache.InvalidatePrefix(ctx, cache.PrefixProducts)
	a.catalogCache.InvalidatePrefix(ctx, cache.PrefixProduct)
	a.cacheLog.Log("characteristic_group", fmt.Sprint(entityID), action)
}

// --- Categories ---

// CategoriesTree serves the full category tree including inactive nodes.
func (a *Admin) CategoriesTree(w http.ResponseWriter, r *http.Request) {
	tree, err := a.categoryStore.Tree(false)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, tree)
}

type categoryRequest struct {
	Name        string `json:"name" validate:"required,notblank,max=200"`
	Slug        string `json:"slug" validate:"max=200"`
	Description string `json:"description" validate:"max=2000"`
	ParentID    *int64 `json:"parent_id"`
	SortOrder   *int   `json:"sort_order"`
	IsActive    *bool  `json:"is_active"`
}

// category builds a model from the request, filling defaults: the slug
// is derived from the name when absent and a missing sort_order places
// the node after its siblings.
func (a *Admin) category(req *categoryRequest) (*models.Category, error) {
	c := &models.Category{
		Name:        req.Name,
		Slug:        req.Slug,
		Description: req.Description,
		ParentID:    req.ParentID,
		IsActive:    true,
	}
	if c.Slug == "" {
		c.Slug = slug.Make(req.Name)
	}
	if req.IsActive != nil {
		c.IsActive = *req.IsActive
	}
	if req.SortOrder != nil {
		c.SortOrder = *req.SortOrder
		return c, nil
	}
	next, err := a.categoryStore.NextSortOrder(req.ParentID)
	if err != nil {
		return nil, err
	}
	c.SortOrder = next
	return c, nil
}

// CategoryCreate adds a category.
func (a *Admin) CategoryCreate(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	if err := checkRequest(req); err != nil {
		respondError(w, r, err)
		return
	}

	c, err := a.category(&req)
	if err != nil {
		respondError(w, r, err)
		return
	}
	created, err := a.categoryStore.Create(c)
	if err != nil {
		respondError(w, r, err)
		return
	}

	a.invalidateCategories(r, created.ID, "create")
	respondJSON(w, http.StatusCreated, created)
}

// CategoryUpdate replaces a category in full, PUT style. Omitted fields
// take their defaults instead of keeping the stored values: a missing
// parent_id moves the node to the root and a missing sort_order slots
// it after its new siblings, so clients must always send the complete
// representation. A move that would make the node its own ancestor is
// rejected.
func (a *Admin) CategoryUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "id")
	if err != nil {
		respondError(w, r, err)
		return
	}

	var req categoryRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	if err := checkRequest(req); err != nil {
		respondError(w, r, err)
		return
	}

	c, err := a.category(&req)
	if err != nil {
		respondError(w, r, err)
		return
	}
	c.ID = id
	if err := a.categoryStore.Update(c); err != nil {
		respondError(w, r, err)
		return
	}

	updated, err := a.categoryStore.FindByID(id)
	if err != nil {
		respondError(w, r, err)
		return
	}

	a.invalidateCategories(r, id, "update")
	respondJSON(w, http.StatusOK, updated)
}

// CategoryDelete removes a category. Pass force=true to cascade into
// the subtree; products get reassigned to the fallback category.
func (a *Admin) CategoryDelete(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "id")
	if err != nil {
		respondError(w, r, err)
		return
	}

	result, err := a.categoryStore.Delete(id, queryBool(r, "force"))
	if err != nil {
		respondError(w, r, err)
		return
	}

	a.invalidateCategories(r, id, "delete")
	respondJSON(w, http.StatusOK, result)
}

// --- Characteristic groups and values ---

// CharacteristicsTree serves the full group tree including inactive
// nodes, with values and usage counts for the admin UI.
func (a *Admin) CharacteristicsTree(w http.ResponseWriter, r *http.Request) {
	tree, err := a.characteristicStore.Tree(false)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, tree)
}

type characteristicGroupRequest struct {
	Name        string `json:"name" validate:"required,notblank,max=200"`
	Description string `json:"description" validate:"max=2000"`
	ParentID    *int64 `json:"parent_id"`
	SortOrder   *int   `json:"sort_order"`
	IsActive    *bool  `json:"is_active"`
}

func (a *Admin) characteristicGroup(req *characteristicGroupRequest) (*models.CharacteristicGroup, error) {
	g := &models.CharacteristicGroup{
		Name:        req.Name,
		Description: req.Description,
		ParentID:    req.ParentID,
		IsActive:    true,
	}
	if req.IsActive != nil {
		g.IsActive = *req.IsActive
	}
	if req.SortOrder != nil {
		g.SortOrder = *req.SortOrder
		return g, nil
	}
	next, err := a.characteristicStore.NextSortOrder(req.ParentID)
	if err != nil {
		return nil, err
	}
	g.SortOrder = next
	return g, nil
}

// CharacteristicGroupCreate adds a characteristic group.
func (a *Admin) CharacteristicGroupCreate(w http.ResponseWriter, r *http.Request) {
	var req characteristicGroupRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	if err := checkRequest(req); err != nil {
		respondError(w, r, err)
		return
	}

	g, err := a.characteristicGroup(&req)
	if err != nil {
		respondError(w, r, err)
		return
	}
	created, err := a.characteristicStore.Create(g)
	if err != nil {
		respondError(w, r, err)
		return
	}

	a.invalidateCharacteristics(r, created.ID, "create")
	respondJSON(w, http.StatusCreated, created)
}

// CharacteristicGroupUpdate replaces a group in full, with the same PUT
// semantics as CategoryUpdate: omitted fields take defaults rather than
// keeping stored values. Reparents are guarded against cycles.
func (a *Admin) CharacteristicGroupUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "id")
	if err != nil {
		respondError(w, r, err)
		return
	}

	var req characteristicGroupRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	if err := checkRequest(req); err != nil {
		respondError(w, r, err)
		return
	}

	g, err := a.characteristicGroup(&req)
	if err != nil {
		respondError(w, r, err)
		return
	}
	g.ID = id
	if err := a.characteristicStore.Update(g); err != nil {
		respondError(w, r, err)
		return
	}

	updated, err := a.characteristicStore.FindByID(id)
	if err != nil {
		respondError(w, r, err)
		return
	}

	a.invalidateCharacteristics(r, id, "update")
	respondJSON(w, http.StatusOK, updated)
}

// CharacteristicGroupDelete removes a group. Pass force=true to cascade
// into child groups, values and product links.
func (a *Admin) CharacteristicGroupDelete(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "id")
	if err != nil {
		respondError(w, r, err)
		return
	}

	result, err := a.characteristicStore.Delete(id, queryBool(r, "force"))
	if err != nil {
		respondError(w, r, err)
		return
	}

	a.invalidateCharacteristics(r, id, "delete")
	respondJSON(w, http.StatusOK, result)
}

type characteristicValueRequest struct {
	Value     string `json:"value" validate:"required,notblank,max=200"`
	SortOrder int    `json:"sort_order"`
}

// CharacteristicValueCreate adds a value to a group.
func (a *Admin) CharacteristicValueCreate(w http.ResponseWriter, r *http.Request) {
	groupID, err := urlID(r, "id")
	if err != nil {
		respondError(w, r, err)
		return
	}

	var req characteristicValueRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	if err := checkRequest(req); err != nil {
		respondError(w, r, err)
		return
	}

	created, err := a.characteristicStore.CreateValue(&models.CharacteristicValue{
		GroupID:   groupID,
		Value:     req.Value,
		SortOrder: req.SortOrder,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}

	a.invalidateCharacteristics(r, groupID, "create_value")
	respondJSON(w, http.StatusCreated, created)
}

// CharacteristicValueDelete removes a value. Pass force=true to also
// drop its product links.
func (a *Admin) CharacteristicValueDelete(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "id")
	if err != nil {
		respondError(w, r, err)
		return
	}

	result, err := a.characteristicStore.DeleteValue(id, queryBool(r, "force"))
	if err != nil {
		respondError(w, r, err)
		return
	}

	a.invalidateCharacteristics(r, id, "delete_value")
	respondJSON(w, http.StatusOK, result)
}
