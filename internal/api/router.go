// router.go - Route registration and CORS policy

package api

import (
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/spendscan/spendscan/configs"
)

// NewRouter wires the handlers onto a gin engine with CORS configured from
// the environment.
func NewRouter(h *Handler) *gin.Engine {
	r := gin.Default()

	corsConfig := cors.DefaultConfig()
	origins := strings.Split(configs.ALLOWED_ORIGINS, ",")
	for i := range origins {
		origins[i] = strings.TrimSpace(origins[i])
	}
	if len(origins) == 1 && origins[0] == "*" {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = origins
	}
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "X-User-ID")
	corsConfig.MaxAge = 12 * time.Hour
	r.Use(cors.New(corsConfig))

	r.GET("/health", Health)

	v1 := r.Group("/api/v1")
	{
		v1.POST("/scan", h.Scan)
		v1.POST("/query", h.Query)
		v1.GET("/query/history", h.QueryHistory)
	}

	return r
}
