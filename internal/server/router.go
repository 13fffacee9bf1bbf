package server

import (
	"net/http"

	"store-ratings/internal/handlers"
	"store-ratings/internal/metrics"
	"store-ratings/internal/middleware"
	"store-ratings/internal/service"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

func NewRouter(svc *service.Service, sessionSecret string, log *logrus.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(log))

	store := cookie.NewStore([]byte(sessionSecret))
	store.Options(sessions.Options{Path: "/", HttpOnly: true, SameSite: http.SameSiteLaxMode})
	r.Use(sessions.Sessions("rating_session", store))

	h := handlers.New(svc, log)
	authed := middleware.RequireAuth(svc)
	role := middleware.RequireRole

	api := r.Group("/api")

	// AUTH
	a := api.Group("/auth")
	a.POST("/register", h.Register)
	a.POST("/login", h.Login)
	a.POST("/logout", h.Logout)
	a.GET("/me", authed, role(service.OpViewProfile), h.Me)
	a.PATCH("/password", authed, role(service.OpChangePassword), h.ChangePassword)
	a.POST("/users", authed, role(service.OpCreateUser), h.CreateUser)

	// ПОЛЬЗОВАТЕЛИ (только админ)
	u := api.Group("/users", authed)
	u.GET("", role(service.OpListUsers), h.ListUsers)
	u.GET("/stats", role(service.OpViewStats), h.Stats)
	u.GET("/:id", role(service.OpGetUser), h.GetUser)

	// МАГАЗИНЫ
	s := api.Group("/stores", authed)
	s.POST("", role(service.OpCreateStore), h.CreateStore)
	s.GET("", role(service.OpListStores), h.ListStores)
	s.GET("/my-dashboard", role(service.OpOwnerDashboard), h.OwnerDashboard)
	s.GET("/:id", role(service.OpGetStore), h.GetStore)

	// ОЦЕНКИ
	api.POST("/ratings", authed, role(service.OpSubmitRating), h.SubmitRating)

	// АУДИТ
	api.GET("/audit", authed, role(service.OpViewAudit), h.ListAuditLogs)

	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	// HEALTHCHECK
	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	return r
}
