package handlers

import (
	"net/http"

	"store-ratings/internal/middleware"
	"store-ratings/internal/service"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

func (h *Handler) Register(c *gin.Context) {
	var in service.RegisterInput
	if !bind(c, &in) {
		return
	}
	u, err := h.svc.Register(c.Request.Context(), in)
	if err != nil {
		fail(c, err)
		return
	}
	created(c, u)
}

func (h *Handler) Login(c *gin.Context) {
	var in service.LoginInput
	if !bind(c, &in) {
		return
	}
	res, err := h.svc.Login(c.Request.Context(), in)
	if err != nil {
		fail(c, err)
		return
	}

	// браузерные клиенты получают токен и в cookie-сессии
	sess := sessions.Default(c)
	sess.Set(middleware.SessionTokenKey, res.AccessToken)
	if err := sess.Save(); err != nil {
		h.log.WithError(err).Warn("failed to save session")
	}

	ok(c, gin.H{
		"accessToken": res.AccessToken,
		"user": gin.H{
			"id":    res.User.ID,
			"name":  res.User.Name,
			"email": res.User.Email,
			"role":  res.User.Role,
		},
	})
}

func (h *Handler) Logout(c *gin.Context) {
	sess := sessions.Default(c)
	sess.Clear()
	if err := sess.Save(); err != nil {
		h.log.WithError(err).Warn("failed to clear session")
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) Me(c *gin.Context) {
	u, err := h.svc.Me(c.Request.Context(), middleware.CurrentPrincipal(c))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, u)
}

func (h *Handler) ChangePassword(c *gin.Context) {
	var in service.ChangePasswordInput
	if !bind(c, &in) {
		return
	}
	if err := h.svc.ChangePassword(c.Request.Context(), middleware.CurrentPrincipal(c), in); err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"message": "Password updated successfully"})
}
