package routes

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	"github.com/quattro-app/quattro/config"
	"github.com/quattro-app/quattro/internal/auth"
	"github.com/quattro-app/quattro/internal/match"
)

// SetupRoutes builds the gin engine and wires every route group. Lifecycle
// observers are forwarded to the match module.
func SetupRoutes(db *gorm.DB, appConfig *config.Config, observers ...match.Observer) *gin.Engine {
	r := gin.Default()
	r.Use(cors.Default())

	// Swagger route
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// API routes
	api := r.Group("/api")
	auth.RegisterAuthRoutes(api, db, appConfig)
	match.MatchRoutes(api, db, appConfig, appConfig.JWT.AccessTokenSecret, observers...)

	return r
}
