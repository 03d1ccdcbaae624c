package controllers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/kendall-kelly/box-erp-api/services"
)

// CRUDService is the storage side of a CRUD resource.
type CRUDService[T any] interface {
	Name() string
	List(ctx context.Context, q services.ListQuery) ([]T, error)
	Get(ctx context.Context, id string) (*T, error)
	Create(ctx context.Context, item *T) error
	Patch(ctx context.Context, id string, patch services.Patch) (*T, error)
	Delete(ctx context.Context, id string) error
}

// CRUDController exposes a CRUDService over HTTP.
type CRUDController[T any] struct {
	service CRUDService[T]
	respond *Responder
}

// NewCRUDController creates a CRUDController.
func NewCRUDController[T any](service CRUDService[T], respond *Responder) *CRUDController[T] {
	return &CRUDController[T]{service: service, respond: respond}
}

// Register mounts the five handlers under r.
func (h *CRUDController[T]) Register(r gin.IRoutes) {
	r.GET("", h.List)
	r.GET("/:id", h.Get)
	r.POST("", h.Create)
	r.PATCH("/:id", h.Patch)
	r.DELETE("/:id", h.Delete)
}

// List handles GET / with equality filters, search, sort and paging.
func (h *CRUDController[T]) List(c *gin.Context) {
	q, err := parseListQuery(c)
	if err != nil {
		h.respond.Error(c, err)
		return
	}

	items, err := h.service.List(c.Request.Context(), q)
	if err != nil {
		h.respond.Error(c, err)
		return
	}
	h.respond.OK(c, http.StatusOK, items)
}

// Get handles GET /:id.
func (h *CRUDController[T]) Get(c *gin.Context) {
	item, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respond.Error(c, err)
		return
	}
	h.respond.OK(c, http.StatusOK, item)
}

// Create handles POST /.
func (h *CRUDController[T]) Create(c *gin.Context) {
	item := new(T)
	if err := c.ShouldBindJSON(item); err != nil {
		h.respond.BadRequest(c, err)
		return
	}

	if err := h.service.Create(c.Request.Context(), item); err != nil {
		h.respond.Error(c, err)
		return
	}
	h.respond.OK(c, http.StatusCreated, item)
}

// Patch handles PATCH /:id. Only fields present in the body are written.
func (h *CRUDController[T]) Patch(c *gin.Context) {
	var patch services.Patch
	if err := c.ShouldBindJSON(&patch); err != nil {
		h.respond.BadRequest(c, err)
		return
	}

	item, err := h.service.Patch(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		h.respond.Error(c, err)
		return
	}
	h.respond.OK(c, http.StatusOK, item)
}

// Delete handles DELETE /:id.
func (h *CRUDController[T]) Delete(c *gin.Context) {
	id := c.Param("id")
	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		h.respond.Error(c, err)
		return
	}
	h.respond.OK(c, http.StatusOK, gin.H{"id": id})
}

var listKeywords = map[string]bool{
	"search": true,
	"sort":   true,
	"order":  true,
	"limit":  true,
	"offset": true,
}

func parseListQuery(c *gin.Context) (services.ListQuery, error) {
	q := services.ListQuery{
		Params: map[string]string{},
		Search: c.Query("search"),
		Sort:   c.Query("sort"),
		Order:  c.Query("order"),
	}
	for key, values := range c.Request.URL.Query() {
		if !listKeywords[key] && len(values) > 0 {
			q.Params[key] = values[0]
		}
	}

	var err error
	if q.Limit, err = queryInt(c, "limit"); err != nil {
		return q, err
	}
	if q.Offset, err = queryInt(c, "offset"); err != nil {
		return q, err
	}
	return q, nil
}

func queryInt(c *gin.Context, key string) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, services.Invalid("INVALID_QUERY", "%s must be a non-negative integer", key)
	}
	return n, nil
}
