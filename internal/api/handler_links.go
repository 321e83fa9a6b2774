package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"community-hub-backend/config"
)

// GetLinks handles GET /api/links, serving the community link hub. The list
// comes from configuration and is served through the response cache.
func GetLinks(links []config.Link) gin.HandlerFunc {
	if links == nil {
		links = []config.Link{}
	}
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, links)
	}
}
