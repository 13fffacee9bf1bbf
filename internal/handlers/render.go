package handlers

import (
	"net/http"

	"store-ratings/internal/apperr"
	"store-ratings/internal/middleware"
	"store-ratings/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type Handler struct {
	svc *service.Service
	log *logrus.Logger
}

func New(svc *service.Service, log *logrus.Logger) *Handler {
	return &Handler{svc: svc, log: log}
}

// bind decodes the JSON body; malformed bodies are validation failures.
func bind(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		fail(c, apperr.Validation("Invalid request body"))
		return false
	}
	return true
}

func fail(c *gin.Context, err error) {
	middleware.AbortWithError(c, err)
}

func ok(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

func created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, data)
}
