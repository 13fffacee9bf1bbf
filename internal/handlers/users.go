package handlers

import (
	"store-ratings/internal/middleware"
	"store-ratings/internal/service"

	"github.com/gin-gonic/gin"
)

func (h *Handler) CreateUser(c *gin.Context) {
	var in service.CreateUserInput
	if !bind(c, &in) {
		return
	}
	u, err := h.svc.CreateUser(c.Request.Context(), middleware.CurrentPrincipal(c), in)
	if err != nil {
		fail(c, err)
		return
	}
	created(c, u)
}

func (h *Handler) ListUsers(c *gin.Context) {
	q := service.UserQuery{
		Name:      c.Query("name"),
		Email:     c.Query("email"),
		Address:   c.Query("address"),
		Role:      c.Query("role"),
		SortBy:    c.Query("sortBy"),
		SortOrder: c.Query("sortOrder"),
	}
	users, err := h.svc.ListUsers(c.Request.Context(), middleware.CurrentPrincipal(c), q)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, users)
}

func (h *Handler) GetUser(c *gin.Context) {
	u, err := h.svc.GetUser(c.Request.Context(), middleware.CurrentPrincipal(c), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, u)
}

func (h *Handler) Stats(c *gin.Context) {
	st, err := h.svc.DashboardStats(c.Request.Context(), middleware.CurrentPrincipal(c))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, st)
}
