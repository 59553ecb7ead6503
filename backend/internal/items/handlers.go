package items

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/advdv/bhttp"
	"github.com/google/uuid"
	"github.com/hijiri0404/cdk-learning-samples/backend/internal/apiresp"
	"github.com/hijiri0404/cdk-learning-samples/cllwa"
	"go.uber.org/zap"
)

// Defaults applied to new items when the request omits the field.
const (
	DefaultName     = "Untitled"
	DefaultCategory = "general"
	DefaultStatus   = "active"
)

// Handlers serves the items API.
type Handlers struct {
	store       Store
	environment string
	now         func() time.Time
	newID       func() string
}

// HandlerOption configures Handlers.
type HandlerOption func(*Handlers)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) HandlerOption {
	return func(h *Handlers) { h.now = now }
}

// WithIDGenerator replaces the UUID generator for new item IDs.
func WithIDGenerator(newID func() string) HandlerOption {
	return func(h *Handlers) { h.newID = newID }
}

// NewHandlers creates the items API handlers. environment is reported by the health check.
func NewHandlers(store Store, environment string, opts ...HandlerOption) *Handlers {
	h := &Handlers{
		store:       store,
		environment: environment,
		now:         time.Now,
		newID:       uuid.NewString,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Register adds the items routes to m.
func Register(m *cllwa.Mux, h *Handlers) {
	m.HandleFunc("GET /items", h.List, "list-items")
	m.HandleFunc("POST /items", h.Create, "create-item")
	m.HandleFunc("GET /items/{id}", h.Get, "get-item")
	m.HandleFunc("PUT /items/{id}", h.Update, "update-item")
	m.HandleFunc("DELETE /items/{id}", h.Delete, "delete-item")
	m.HandleFunc("/items/{$}", h.MissingID)
	m.HandleFunc("/", func(_ context.Context, w bhttp.ResponseWriter, r *http.Request) error {
		return apiresp.NotFound(w, r)
	})
}

func (h *Handlers) timestamp() string {
	return h.now().UTC().Format(TimestampLayout)
}

// Health reports the service status. It doubles as the LWA readiness check.
func (h *Handlers) Health(_ context.Context, w bhttp.ResponseWriter, _ *http.Request) error {
	return apiresp.JSON(w, http.StatusOK, map[string]any{
		"status":      "healthy",
		"environment": h.environment,
		"timestamp":   h.timestamp(),
	})
}

// List returns all items, optionally limited and filtered by category.
func (h *Handlers) List(ctx context.Context, w bhttp.ResponseWriter, r *http.Request) error {
	query := r.URL.Query()

	var limit int32
	if query.Has("limit") {
		n, err := strconv.ParseInt(query.Get("limit"), 10, 32)
		if err != nil || n < 0 {
			return apiresp.Error(w, http.StatusBadRequest, "Invalid limit parameter")
		}
		limit = int32(n)
	}

	var (
		items []Item
		err   error
	)
	if category := query.Get("category"); category != "" {
		items, err = h.store.ListByCategory(ctx, category, limit)
	} else {
		items, err = h.store.List(ctx, limit)
	}
	if err != nil {
		cllwa.Log(ctx).Error("failed to list items", zap.Error(err))
		return apiresp.Error(w, http.StatusInternalServerError, "Failed to retrieve items")
	}

	formatted := formatAll(items)
	return apiresp.JSON(w, http.StatusOK, map[string]any{
		"items":   formatted,
		"count":   len(formatted),
		"message": fmt.Sprintf("Successfully retrieved %d items", len(formatted)),
	})
}

// Get returns one item.
func (h *Handlers) Get(ctx context.Context, w bhttp.ResponseWriter, r *http.Request) error {
	id := r.PathValue("id")

	item, found, err := h.store.Get(ctx, id)
	if err != nil {
		cllwa.Log(ctx).Error("failed to get item", zap.String("id", id), zap.Error(err))
		return apiresp.Error(w, http.StatusInternalServerError, "Failed to retrieve item")
	}
	if !found {
		return apiresp.Error(w, http.StatusNotFound, fmt.Sprintf("Item with id %s not found", id))
	}

	return apiresp.JSON(w, http.StatusOK, map[string]any{"item": Format(item)})
}

// Create stores a new item built from defaults and the request body.
func (h *Handlers) Create(ctx context.Context, w bhttp.ResponseWriter, r *http.Request) error {
	body, err := apiresp.DecodeObject(r)
	if err != nil {
		return apiresp.InternalError(w, err)
	}
	if len(body) == 0 {
		return apiresp.Error(w, http.StatusBadRequest, "Request body is required")
	}
	if !validCategory(body) {
		return apiresp.Error(w, http.StatusBadRequest, "Category must be a non-empty string")
	}

	id := h.newID()
	now := h.timestamp()
	item := Item{
		"id":          id,
		"name":        DefaultName,
		"description": "",
		"category":    DefaultCategory,
		"created_at":  now,
		"updated_at":  now,
		"status":      DefaultStatus,
	}
	for key, value := range body {
		switch key {
		case "id", "created_at", "updated_at":
		default:
			item[key] = value
		}
	}

	cllwa.Span(ctx).AddEvent("put item")
	if err := h.store.Put(ctx, item); err != nil {
		cllwa.Log(ctx).Error("failed to create item", zap.Error(err))
		return apiresp.Error(w, http.StatusInternalServerError, "Failed to create item")
	}

	cllwa.Log(ctx).Info("item created", zap.String("id", id))
	return apiresp.JSON(w, http.StatusCreated, map[string]any{
		"item":    Format(item),
		"message": fmt.Sprintf("Item %s created successfully", id),
	})
}

// Update sets the request body's attributes on an existing item. id, created_at
// and updated_at cannot be changed by the client.
func (h *Handlers) Update(ctx context.Context, w bhttp.ResponseWriter, r *http.Request) error {
	id := r.PathValue("id")

	body, err := apiresp.DecodeObject(r)
	if err != nil {
		return apiresp.InternalError(w, err)
	}
	if len(body) == 0 {
		return apiresp.Error(w, http.StatusBadRequest, "Request body is required")
	}
	if !validCategory(body) {
		return apiresp.Error(w, http.StatusBadRequest, "Category must be a non-empty string")
	}

	_, found, err := h.store.Get(ctx, id)
	if err != nil {
		cllwa.Log(ctx).Error("failed to load item for update", zap.String("id", id), zap.Error(err))
		return apiresp.Error(w, http.StatusInternalServerError, "Failed to update item")
	}
	if !found {
		return apiresp.Error(w, http.StatusNotFound, fmt.Sprintf("Item with id %s not found", id))
	}

	fields := map[string]any{}
	for key, value := range body {
		switch key {
		case "id", "created_at", "updated_at":
		default:
			fields[key] = value
		}
	}
	fields["updated_at"] = h.timestamp()

	item, err := h.store.Update(ctx, id, fields)
	if err != nil {
		cllwa.Log(ctx).Error("failed to update item", zap.String("id", id), zap.Error(err))
		return apiresp.Error(w, http.StatusInternalServerError, "Failed to update item")
	}

	return apiresp.JSON(w, http.StatusOK, map[string]any{
		"item":    Format(item),
		"message": fmt.Sprintf("Item %s updated successfully", id),
	})
}

// Delete removes an existing item.
func (h *Handlers) Delete(ctx context.Context, w bhttp.ResponseWriter, r *http.Request) error {
	id := r.PathValue("id")

	_, found, err := h.store.Get(ctx, id)
	if err != nil {
		cllwa.Log(ctx).Error("failed to load item for delete", zap.String("id", id), zap.Error(err))
		return apiresp.Error(w, http.StatusInternalServerError, "Failed to delete item")
	}
	if !found {
		return apiresp.Error(w, http.StatusNotFound, fmt.Sprintf("Item with id %s not found", id))
	}

	if err := h.store.Delete(ctx, id); err != nil {
		cllwa.Log(ctx).Error("failed to delete item", zap.String("id", id), zap.Error(err))
		return apiresp.Error(w, http.StatusInternalServerError, "Failed to delete item")
	}

	return apiresp.JSON(w, http.StatusOK, map[string]any{
		"message":    fmt.Sprintf("Item %s deleted successfully", id),
		"deleted_id": id,
	})
}

// validCategory reports whether body's category, if present, can be stored as the
// category-index key.
func validCategory(body map[string]any) bool {
	v, ok := body["category"]
	if !ok {
		return true
	}
	s, isString := v.(string)
	return isString && s != ""
}

// MissingID answers requests to /items/ without an id.
func (h *Handlers) MissingID(_ context.Context, w bhttp.ResponseWriter, _ *http.Request) error {
	return apiresp.Error(w, http.StatusBadRequest, "Item ID is required")
}
