package app

import (
	"slices"
	"time"

	"invensys/config"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// corsConfig 允许前端带 cookie 调用；"*" 时关闭凭据，否则浏览器会拒绝
func corsConfig(cfg config.Config) cors.Config {
	origins := cfg.CORSOrigins
	if len(origins) == 0 && cfg.WebOrigin != "" {
		origins = []string{cfg.WebOrigin}
	}
	c := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Authorization", "Content-Type", "Origin"},
		ExposeHeaders: []string{"Content-Disposition", "Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	if slices.Contains(origins, "*") {
		c.AllowAllOrigins = true
		return c
	}
	c.AllowOrigins = origins
	c.AllowCredentials = true
	return c
}

func useCORS(r *gin.Engine, cfg config.Config) {
	r.Use(cors.New(corsConfig(cfg)))
}
