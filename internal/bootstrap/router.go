package bootstrap

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	httpapi "github.com/muttaqilab/studio/internal/api/http"
	"github.com/muttaqilab/studio/internal/api/http/middleware"
	"github.com/muttaqilab/studio/internal/api/http/routes"
	"github.com/muttaqilab/studio/internal/web"
)

type RouterDeps struct {
	ServiceName    string
	Version        string
	Backend        string
	Ping           httpapi.Pinger
	AuthConfigured bool
	AllowedOrigins []string
	StaticDir      string
	Web            web.Deps
	Logger         *slog.Logger
}

func BuildRouter(dep RouterDeps) (*gin.Engine, error) {
	if dep.Logger == nil {
		dep.Logger = slog.Default()
	}

	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery(), middleware.RequestID(dep.Logger))

	healthHandler := httpapi.NewHealthHandler(dep.ServiceName, dep.Version, dep.Backend, dep.Ping, dep.AuthConfigured)
	healthHandler.RegisterRoutes(r)

	routes.RegisterV1(r, routes.V1Deps{Mirror: dep.Web.State, AllowedOrigins: dep.AllowedOrigins})

	if dep.StaticDir != "" {
		r.Static("/static", dep.StaticDir)
	}

	if dep.Web.Logger == nil {
		dep.Web.Logger = dep.Logger
	}
	if err := web.New(dep.Web).Register(r); err != nil {
		return nil, err
	}
	return r, nil
}
