package apiserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Apurer/go-gin-users-orders/internal/health"
)

// HealthAPI serves the aggregated component status.
type HealthAPI struct {
	registry *health.Registry
}

func NewHealthAPI(registry *health.Registry) HealthAPI {
	return HealthAPI{registry: registry}
}

// Get /health
// 200 while every component is reachable, 503 otherwise
func (api *HealthAPI) Health(c *gin.Context) {
	if api.registry == nil {
		c.JSON(http.StatusOK, health.Response{Status: health.StatusHealthy})
		return
	}
	report := api.registry.Report(c.Request.Context())
	c.JSON(report.HTTPStatus(), report)
}
