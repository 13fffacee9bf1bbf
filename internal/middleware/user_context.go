package middleware

import (
	"store-ratings/internal/service"

	"github.com/gin-gonic/gin"
)

const principalKey = "CurrentPrincipal"

func SetPrincipal(c *gin.Context, p *service.Principal) {
	c.Set(principalKey, p)
}

// CurrentPrincipal returns the authenticated caller or nil.
func CurrentPrincipal(c *gin.Context) *service.Principal {
	v, ok := c.Get(principalKey)
	if !ok {
		return nil
	}
	p, _ := v.(*service.Principal)
	return p
}
