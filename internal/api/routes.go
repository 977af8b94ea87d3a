package api

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// CORSConfig allows every origin and method with credentials, which is what
// the browser viewer running on another origin expects. Browsers reject a
// wildcard origin on credentialed requests, so the caller's origin is echoed.
func CORSConfig() cors.Config {
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOriginFunc = func(string) bool { return true }
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	corsConfig.ExposeHeaders = []string{"Content-Length", RequestIDHeader}
	corsConfig.AllowCredentials = true
	return corsConfig
}

// RegisterRoutes sets up the middleware and API routes
func RegisterRoutes(router *gin.Engine, gateway ImagingGateway, datastoreID string) {
	handler := NewAPIHandler(gateway, datastoreID)

	router.Use(cors.New(CORSConfig()))
	router.Use(RequestIDMiddleware())

	router.GET("/healthz", handler.HealthCheckHandler)

	router.GET("/list-image-sets", handler.ListImageSetsHandler)
	router.GET("/image-set/:image_set_id", handler.GetImageSetHandler)
	router.GET("/image-set/:image_set_id/:frame_id/pixel-data", handler.GetPixelDataHandler)
}
