package handlers

import (
	"store-ratings/internal/middleware"
	"store-ratings/internal/service"

	"github.com/gin-gonic/gin"
)

func (h *Handler) CreateStore(c *gin.Context) {
	var in service.CreateStoreInput
	if !bind(c, &in) {
		return
	}
	st, err := h.svc.CreateStore(c.Request.Context(), middleware.CurrentPrincipal(c), in)
	if err != nil {
		fail(c, err)
		return
	}
	created(c, st)
}

func (h *Handler) ListStores(c *gin.Context) {
	q := service.StoreQuery{
		Name:      c.Query("name"),
		Address:   c.Query("address"),
		SortBy:    c.Query("sortBy"),
		SortOrder: c.Query("sortOrder"),
	}
	stores, err := h.svc.ListStores(c.Request.Context(), middleware.CurrentPrincipal(c), q)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, stores)
}

func (h *Handler) GetStore(c *gin.Context) {
	st, err := h.svc.GetStore(c.Request.Context(), middleware.CurrentPrincipal(c), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, st)
}

func (h *Handler) OwnerDashboard(c *gin.Context) {
	d, err := h.svc.OwnerDashboard(c.Request.Context(), middleware.CurrentPrincipal(c))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, d)
}
