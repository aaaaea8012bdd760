package match

import (
	"github.com/quattro-app/quattro/config"
	mw "github.com/quattro-app/quattro/internal/middleware"
	"github.com/quattro-app/quattro/pkg/rmiddleware"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// MatchRoutes sets up all match-related routes. Observers passed in are
// subscribed to lifecycle events before any traffic is handled.
func MatchRoutes(router *gin.RouterGroup, db *gorm.DB, appConfig *config.Config, jwtSecret string, observers ...Observer) {
	matchRepo := NewGormMatchRepository(db)
	engine := NewLifecycleEngine(matchRepo)
	for _, obs := range observers {
		engine.Subscribe(obs)
	}
	ledger := NewRegistrationLedger(matchRepo, engine)
	feedback := NewFeedbackService(matchRepo)
	controller := NewMatchController(matchRepo, ledger, engine, feedback, DefaultSortStrategies(), appConfig)

	// Authenticated routes
	authRoutes := router.Group("/matches")
	authRoutes.Use(mw.AuthMiddleware(jwtSecret, db))
	{
		authRoutes.POST("", controller.CreateMatch)
		authRoutes.GET("", controller.GetMatches)
		authRoutes.GET("/mine", controller.GetMyMatches)
		authRoutes.GET("/:id", controller.GetMatchByID)
		authRoutes.DELETE("/:id", controller.DeleteMatch)

		authRoutes.POST("/:id/join", controller.JoinMatch)
		authRoutes.POST("/:id/leave", controller.LeaveMatch)
		authRoutes.POST("/:id/finish", controller.FinishMatch)

		authRoutes.POST("/:id/feedback", controller.SubmitFeedback)
		authRoutes.GET("/:id/feedback", controller.GetMatchFeedback)
	}

	// Admin match routes
	adminRoutes := router.Group("/admin/matches")
	adminRoutes.Use(mw.AuthMiddleware(jwtSecret, db))
	adminRoutes.Use(rmiddleware.AdminMiddleware())
	{
		adminRoutes.DELETE("/:id", controller.AdminDeleteMatch)
	}
}
