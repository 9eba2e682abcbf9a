package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/volveu/volve/internal/database"
	"github.com/volveu/volve/internal/handler"
	"github.com/volveu/volve/internal/middleware"
	"github.com/volveu/volve/internal/model"
	"github.com/volveu/volve/internal/service"
	"github.com/volveu/volve/pkg/config"
	"github.com/volveu/volve/pkg/jwtutil"
	"github.com/volveu/volve/pkg/logger"
	"github.com/volveu/volve/pkg/metrics"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		fmt.Printf("Warning: .env file not found or error loading: %v\n", err)
	}

	conf, err := config.Load("volve")
	if err != nil {
		fmt.Printf("Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	err = logger.InitLogger(&logger.LogConfig{
		Level:       conf.Log.Level,
		Environment: conf.Server.Env,
		ServiceName: conf.ServiceName,
	})
	if err != nil {
		fmt.Printf("Error initializing logger: %v\n", err)
		os.Exit(1)
	}
	log := logger.GetLogger()

	db, err := database.Connect(&conf.DB)
	if err != nil {
		log.Fatal("Failed to connect to database")
	}

	err = database.Migrate(db,
		&model.User{},
		&model.Npo{},
		&model.Tag{},
		&model.Activity{},
		&model.Enrollment{},
	)
	if err != nil {
		log.Fatal("Failed to migrate database models")
	}

	// Services share the one injected store handle
	users := service.NewUserService(db, conf.Auth.BcryptCost)
	npos := service.NewNpoService(db)
	activities := service.NewActivityService(db)
	attendance := service.NewAttendanceService(db)

	if err := users.EnsureRootAccount(context.Background(), conf.Root.Name, conf.Root.Email, conf.Root.Password); err != nil {
		log.Fatal("Failed to bootstrap root account")
	}

	jwt := jwtutil.NewJWTUtil(&jwtutil.JWTConfig{
		SigningKey:      conf.JWT.SigningKey,
		ExpirationHours: conf.JWT.ExpirationHours,
	})

	httpMetrics := metrics.NewHTTPMetrics(conf.ServiceName)

	authHandler := handler.NewAuthHandler(users, jwt)
	userHandler := handler.NewUserHandler(users)
	npoHandler := handler.NewNpoHandler(npos)
	activityHandler := handler.NewActivityHandler(activities)
	attendanceHandler := handler.NewAttendanceHandler(attendance)

	e := echo.New()

	e.Use(middleware.RequestID())
	e.Use(logger.Middleware())
	e.Use(httpMetrics.Middleware())

	e.GET("/health", handler.HealthCheck)
	e.GET("/metrics", echo.WrapHandler(metrics.GetPrometheusHandler()))

	api := e.Group("/api")

	// Public routes
	api.POST("/auth/register", authHandler.Register)
	api.POST("/auth/login", authHandler.Login)
	api.GET("/activities", activityHandler.List)
	api.GET("/activities/:id", activityHandler.Get)
	api.GET("/tags", activityHandler.Tags)
	api.GET("/npos", npoHandler.List)
	api.GET("/npos/:id", npoHandler.Get)

	// Authenticated routes
	authed := api.Group("", middleware.JWTAuth(jwt))
	authed.GET("/auth/me", authHandler.Me)
	authed.GET("/users/:id", userHandler.Get)
	authed.PATCH("/users/me", userHandler.UpdateMe)
	authed.PUT("/users/me/password", userHandler.UpdatePassword)
	authed.POST("/activities/:id/attend", attendanceHandler.Attend)
	authed.DELETE("/activities/:id/attend", attendanceHandler.Unattend)
	authed.GET("/me/enrollments", attendanceHandler.ListOwn)
	authed.GET("/me/stats", attendanceHandler.Stats)

	// Administrator routes
	admin := api.Group("", middleware.JWTAuth(jwt), middleware.RequireRole(model.RoleAdmin))
	admin.GET("/users", userHandler.List)
	admin.POST("/npos", npoHandler.Create)
	admin.PATCH("/npos/:id", npoHandler.Update)
	admin.POST("/activities", activityHandler.Create)
	admin.PATCH("/activities/:id", activityHandler.Update)
	admin.DELETE("/activities/:id", activityHandler.Delete)
	admin.GET("/enrollments", attendanceHandler.AdminList)
	admin.POST("/enrollments", attendanceHandler.AdminCreate)
	admin.PATCH("/enrollments/:id", attendanceHandler.AdminUpdate)
	admin.DELETE("/enrollments/:id", attendanceHandler.AdminDelete)

	// Root routes
	root := api.Group("", middleware.JWTAuth(jwt), middleware.RequireRole(model.RoleRoot))
	root.POST("/users/:id/promote", userHandler.Promote)
	root.POST("/users/:id/demote", userHandler.Demote)

	log.Info("Starting volve on port " + conf.Server.Port)
	e.Logger.Fatal(e.Start(":" + conf.Server.Port))
}
