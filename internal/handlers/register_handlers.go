package handlers

import (
	"github.com/gin-gonic/gin"
	portssvc "github.com/moneytransfers/transfers_app/internal/core/ports/services"
)

// RegisterRoutes sets up all application routes, injecting dependencies
// through the service facades.
func RegisterRoutes(r *gin.Engine, services *portssvc.ServiceContainer) {
	r.GET("/health", func(c *gin.Context) {
		c.String(200, "OK")
	})

	api := r.Group("/")
	registerAccountRoutes(api, services.Account)
	registerTransferRoutes(api, services.Ledger)
}
