package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/skillshareplus/skillshare-api/api/swagger"
	"github.com/skillshareplus/skillshare-api/internal/handler"
	"github.com/skillshareplus/skillshare-api/internal/middleware"
	"github.com/skillshareplus/skillshare-api/internal/models"
	"github.com/skillshareplus/skillshare-api/internal/repository"
	"github.com/skillshareplus/skillshare-api/internal/service"
	"github.com/skillshareplus/skillshare-api/pkg/cache"
	"github.com/skillshareplus/skillshare-api/pkg/config"
	"github.com/skillshareplus/skillshare-api/pkg/database"
	"github.com/skillshareplus/skillshare-api/pkg/logger"
	corsmiddleware "github.com/skillshareplus/skillshare-api/pkg/middleware/cors"
	reqidmiddleware "github.com/skillshareplus/skillshare-api/pkg/middleware/requestid"
)

// @title SkillShare+ API
// @version 1.0.0
// @description Online course platform: auth, course catalog, enrollments
// @BasePath /
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

	metricsSvc := service.NewMetricsService()

	var cacheSvc *service.CacheService
	if cfg.Catalog.CacheEnabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Warnw("redis unavailable, catalog cache disabled", "error", err)
			cacheSvc = service.NewCacheService(nil, metricsSvc, cfg.Catalog.CacheTTL, logr, false)
		} else {
			defer redisClient.Close()
			cacheRepo := repository.NewCacheRepository(redisClient, logr)
			cacheSvc = service.NewCacheService(cacheRepo, metricsSvc, cfg.Catalog.CacheTTL, logr, true)
		}
	} else {
		cacheSvc = service.NewCacheService(nil, metricsSvc, cfg.Catalog.CacheTTL, logr, false)
	}

	validate := validator.New()

	userRepo := repository.NewUserRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	auditRepo := repository.NewAuditRepository(db)

	authSvc := service.NewAuthService(userRepo, auditRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		Issuer:            cfg.JWT.Issuer,
	})
	courseSvc := service.NewCourseService(courseRepo, auditRepo, cacheSvc, validate, logr)
	enrollmentSvc := service.NewEnrollmentService(enrollmentRepo, courseRepo, auditRepo, validate, logr)

	authHandler := handler.NewAuthHandler(authSvc)
	courseHandler := handler.NewCourseHandler(courseSvc)
	enrollmentHandler := handler.NewEnrollmentHandler(enrollmentSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/ready", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	{
		auth.POST("/signup", authHandler.Signup)
		auth.POST("/login", authHandler.Login)
		auth.GET("/me", middleware.JWT(authSvc), authHandler.Me)
	}

	courses := api.Group("/courses", middleware.JWT(authSvc))
	{
		courses.POST("", middleware.RequireRoles(models.RoleAdmin, models.RoleInstructor), courseHandler.Create)
		courses.GET("", courseHandler.List)
		courses.GET("/:id", courseHandler.Get)
		courses.PUT("/:id", middleware.RequireRoles(models.RoleAdmin, models.RoleInstructor), courseHandler.Update)
		courses.DELETE("/:id", middleware.RequireRoles(models.RoleAdmin), courseHandler.Delete)
	}

	enrollments := api.Group("/enrollments", middleware.JWT(authSvc))
	{
		enrollments.POST("", middleware.RequireRoles(models.RoleLearner), enrollmentHandler.Enroll)
		enrollments.GET("/me", enrollmentHandler.ListMine)
		enrollments.DELETE("/:course_id", middleware.RequireRoles(models.RoleLearner), enrollmentHandler.Unenroll)
		enrollments.GET("/course/:course_id", middleware.RequireRoles(models.RoleAdmin, models.RoleInstructor), enrollmentHandler.ListForCourse)
		enrollments.GET("/course/:course_id/export", middleware.RequireRoles(models.RoleAdmin, models.RoleInstructor), enrollmentHandler.ExportRoster)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
