package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/panjiggm/syntegra-app-sub003/config"
	"github.com/panjiggm/syntegra-app-sub003/database"
	adminctrl "github.com/panjiggm/syntegra-app-sub003/internal/controller/admin"
	userctrl "github.com/panjiggm/syntegra-app-sub003/internal/controller/user"
	"github.com/panjiggm/syntegra-app-sub003/internal/logger"
	"github.com/panjiggm/syntegra-app-sub003/internal/model"
	"github.com/panjiggm/syntegra-app-sub003/internal/repository"
	"github.com/panjiggm/syntegra-app-sub003/internal/service"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

// @title Psychometric Test Delivery API
// @version 1.0
// @description Attempt lifecycle, scoring, and trait analytics for timed psychometric tests.
// @host localhost:8080
// @BasePath /api/v1
// @schemes http https
func main() {
	logger.Init()

	app := fx.New(
		// Core application components
		fx.Provide(
			config.NewConfig,
			database.NewDatabase,
			NewGinEngine,
			service.NewClock,
			service.NewTraitCatalogRegistry,
		),

		// Repositories layer
		fx.Provide(
			repository.NewTestRepository,
			repository.NewQuestionRepository,
			repository.NewUserRepository,
			repository.NewAttemptRepository,
			repository.NewAnswerRepository,
			repository.NewResultRepository,
		),

		// Services layer
		fx.Provide(
			service.NewAttemptLifecycleService,
			service.NewScoringService,
			service.NewTraitAnalyticsService,
			service.NewAdminTestService,
		),

		// API controllers layer
		fx.Provide(
			userctrl.NewAttemptController,
			adminctrl.NewAdminTestController,
			adminctrl.NewResultController,
			adminctrl.NewAnalyticsController,
		),

		fx.Invoke(RegisterRoutesAndStartServer),
		fx.Invoke(AutoMigrateDB),
	)

	if err := app.Start(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("Failed to start application")
	}

	<-app.Done()
	log.Info().Msg("Application shutting down gracefully...")
}

func NewGinEngine() *gin.Engine {
	r := gin.New()

	r.Use(gin.LoggerWithFormatter(func(param gin.LogFormatterParams) string {
		log.Info().
			Str("client_ip", param.ClientIP).
			Str("method", param.Method).
			Str("path", param.Path).
			Int("status_code", param.StatusCode).
			Dur("latency", param.Latency).
			Str("error_message", param.ErrorMessage).
			Msg("gin_request")
		return ""
	}))
	r.Use(gin.Recovery())

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}

// RegisterRoutesAndStartServer configures API routes and manages the server lifecycle.
func RegisterRoutesAndStartServer(
	lc fx.Lifecycle,
	router *gin.Engine,
	cfg *config.Config,
	attemptCtrl *userctrl.AttemptController,
	adminTestCtrl *adminctrl.AdminTestController,
	resultCtrl *adminctrl.ResultController,
	analyticsCtrl *adminctrl.AnalyticsController,
) {
	adminAPIGroup := router.Group("/api/v1/admin")
	{
		adminAPIGroup.POST("/tests", adminTestCtrl.CreateTest)
		adminAPIGroup.GET("/tests", adminTestCtrl.GetAllTests)
		adminAPIGroup.GET("/tests/:test_id", adminTestCtrl.GetTest)
		adminAPIGroup.POST("/results/recalculate", resultCtrl.Recalculate)
		adminAPIGroup.GET("/analytics/traits", analyticsCtrl.GetTraitAnalytics)
	}

	userAPIGroup := router.Group("/api/v1")
	{
		userAPIGroup.POST("/tests/:test_id/attempts", attemptCtrl.StartAttempt)
		userAPIGroup.GET("/tests/:test_id/my-attempts", attemptCtrl.GetUserTestAttempts)
		userAPIGroup.POST("/attempts/:attempt_id/answers", attemptCtrl.SubmitAnswer)
		userAPIGroup.POST("/attempts/:attempt_id/finish", attemptCtrl.FinishAttempt)
		userAPIGroup.GET("/attempts/:attempt_id", attemptCtrl.GetAttempt)
		userAPIGroup.GET("/results/:result_id", attemptCtrl.GetResult)
	}

	server := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info().Msgf("Test delivery API server starting on port %s", cfg.Server.Port)
			go func() {
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal().Err(err).Msg("Server ListenAndServe failed")
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info().Msg("Server shutting down...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		},
	})
}

func AutoMigrateDB(db *gorm.DB) error {
	log.Info().Msg("Running database migrations...")
	err := db.AutoMigrate(
		&model.User{},
		&model.Test{},
		&model.Question{},
		&model.TestSession{},
		&model.Attempt{},
		&model.Answer{},
		&model.Result{},
	)
	if err != nil {
		log.Error().Err(err).Msg("Database migration failed")
		return err
	}
	log.Info().Msg("Database migration completed successfully.")
	return nil
}
