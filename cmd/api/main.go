package main

import (
	"fmt"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/entraide/vtn-api/api/swagger"
	"github.com/entraide/vtn-api/internal/handler"
	"github.com/entraide/vtn-api/internal/middleware"
	"github.com/entraide/vtn-api/internal/repository"
	"github.com/entraide/vtn-api/internal/service"
	"github.com/entraide/vtn-api/pkg/cache"
	"github.com/entraide/vtn-api/pkg/config"
	"github.com/entraide/vtn-api/pkg/database"
	"github.com/entraide/vtn-api/pkg/logger"
	corsmiddleware "github.com/entraide/vtn-api/pkg/middleware/cors"
	reqidmiddleware "github.com/entraide/vtn-api/pkg/middleware/requestid"
)

// @title Entraide VTN API
// @version 0.1.0
// @description Recurring schedule management for the vocational training network
// @BasePath /api/v1
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to redis", "error", err)
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	validate := validator.New()

	templateRepo := repository.NewTemplateRepository(db)
	instanceRepo := repository.NewInstanceRepository(db)
	referenceRepo := repository.NewReferenceRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	metricsSvc := service.NewMetricsService()
	conflictSvc := service.NewConflictService(templateRepo, instanceRepo, logr)
	templateSvc := service.NewTemplateService(templateRepo, referenceRepo, conflictSvc, validate, logr)
	generatorSvc := service.NewGeneratorService(templateRepo, instanceRepo, cacheRepo, logr)
	sessionSvc := service.NewSessionService(instanceRepo, conflictSvc, cacheRepo, validate, logr)
	timetableSvc := service.NewTimetableService(instanceRepo, referenceRepo, cacheRepo, cfg.Timetable, logr)

	templateHandler := handler.NewTemplateHandler(templateSvc, metricsSvc)
	sessionHandler := handler.NewSessionHandler(sessionSvc, generatorSvc, metricsSvc)
	timetableHandler := handler.NewTimetableHandler(timetableSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Health)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.Use(middleware.Auth(cfg.JWT.Secret))

	write := middleware.RequireRoles("admin", "scheduler")

	templates := api.Group("/schedule-templates")
	{
		templates.GET("", templateHandler.List)
		templates.GET("/:id", templateHandler.Get)
		templates.POST("", write, templateHandler.Create)
		templates.DELETE("/:id", write, templateHandler.Deactivate)
		templates.POST("/check-conflicts", templateHandler.CheckConflicts)
	}

	api.GET("/trainers/:id/schedule-templates", templateHandler.TrainerSchedule)
	api.GET("/groups/:id/schedule-templates", templateHandler.GroupSchedule)

	sessions := api.Group("/session-instances")
	{
		sessions.GET("", sessionHandler.List)
		sessions.GET("/:id/effective", sessionHandler.Effective)
		sessions.POST("/generate", write, sessionHandler.Generate)
		sessions.POST("/:id/cancel", write, sessionHandler.Cancel)
		sessions.POST("/:id/reschedule", write, sessionHandler.Reschedule)
	}

	timetables := api.Group("/timetables")
	{
		timetables.GET("/trainers/:id", timetableHandler.TrainerTimetable)
		timetables.GET("/groups/:id", timetableHandler.GroupTimetable)
		timetables.GET("/weekly-summary", timetableHandler.WeeklySummary)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
