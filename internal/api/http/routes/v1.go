package routes

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	httpapi "github.com/muttaqilab/studio/internal/api/http"
)

type V1Deps struct {
	Mirror         httpapi.Mirror
	AllowedOrigins []string
}

// RegisterV1 mounts the public read API. Browsers on other origins may
// read it; nothing under /api/v1 mutates state.
func RegisterV1(r *gin.Engine, dep V1Deps) {
	api := r.Group("/api/v1")

	corsCfg := cors.Config{
		AllowMethods:  []string{"GET", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Accept", "Cache-Control", "X-Request-Id"},
		ExposeHeaders: []string{"X-Request-Id"},
		MaxAge:        12 * time.Hour,
	}
	if len(dep.AllowedOrigins) == 0 {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = dep.AllowedOrigins
	}
	api.Use(cors.New(corsCfg))

	httpapi.NewContentHandler(dep.Mirror).RegisterRoutes(api)
}
