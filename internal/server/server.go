// Package server wires repositories, services and HTTP routes into a runnable API.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/school-core/api/swagger"
	"github.com/noah-isme/school-core/internal/handler"
	"github.com/noah-isme/school-core/internal/middleware"
	"github.com/noah-isme/school-core/internal/models"
	"github.com/noah-isme/school-core/internal/repository"
	"github.com/noah-isme/school-core/internal/service"
	"github.com/noah-isme/school-core/pkg/config"
	"github.com/noah-isme/school-core/pkg/logger"
	corsmiddleware "github.com/noah-isme/school-core/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/school-core/pkg/middleware/requestid"
)

const shutdownTimeout = 10 * time.Second

// App holds the wired services for one process.
type App struct {
	Config  *config.Config
	Logger  *zap.Logger
	DB      *sqlx.DB
	Redis   *redis.Client
	Metrics *service.MetricsService
	Auth    *service.AuthService

	Teachers  *service.TeacherService
	Schedules *service.ScheduleService
	Grades    *service.GradeService
}

// NewApp builds the service graph over an open database. redisClient may be nil.
func NewApp(cfg *config.Config, log *zap.Logger, db *sqlx.DB, redisClient *redis.Client) *App {
	if log == nil {
		log = zap.NewNop()
	}
	validate := validator.New()

	var metrics *service.MetricsService
	if cfg.Metrics.Enabled {
		metrics = service.NewMetricsService()
	}

	var observer repository.QueryObserver
	if metrics != nil {
		observer = metrics
	}

	cacheRepo := repository.NewCacheRepository(redisClient, log)
	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Cache.TTL, log, cfg.Cache.Enabled && redisClient != nil)

	teacherRepo := repository.NewTeacherRepository(db)
	scheduleRepo := repository.NewScheduleRepository(db, observer)
	gradeRepo := repository.NewGradeRepository(db)

	return &App{
		Config:    cfg,
		Logger:    log,
		DB:        db,
		Redis:     redisClient,
		Metrics:   metrics,
		Auth:      service.NewAuthService(cfg.Auth.Secret),
		Teachers:  service.NewTeacherService(teacherRepo, cacheSvc, validate, log),
		Schedules: service.NewScheduleService(scheduleRepo, teacherRepo, cacheSvc, metrics, validate, log),
		Grades:    service.NewGradeService(gradeRepo, metrics, validate, log),
	}
}

// Router assembles the gin engine with every route mounted under the API prefix.
func (a *App) Router() *gin.Engine {
	if a.Config.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(a.Logger))
	r.Use(corsmiddleware.New(a.Config.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(a.Metrics))

	checks := map[string]handler.Pinger{"database": a.DB}
	if a.Redis != nil {
		checks["redis"] = handler.PingerFunc(func(ctx context.Context) error { return a.Redis.Ping(ctx).Err() })
	}
	system := handler.NewMetricsHandler(a.Metrics, checks)
	r.GET("/health", system.Health)
	r.GET("/ready", system.Ready)
	if a.Metrics != nil {
		r.GET("/metrics", system.Prometheus)
	}
	if a.Config.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	schedules := handler.NewScheduleHandler(a.Schedules)
	teachers := handler.NewTeacherHandler(a.Teachers)
	grades := handler.NewGradeHandler(a.Grades)

	api := r.Group(a.Config.APIPrefix)
	api.GET("/health", system.Health)

	api.GET("/schedules", schedules.List)
	api.GET("/schedules/conflicts", schedules.Check)
	api.GET("/schedules/:id", schedules.Get)
	api.GET("/classrooms/schedules", schedules.ListByClassroom)
	api.GET("/teachers/workload", schedules.Workload)
	api.GET("/teachers", teachers.List)
	api.GET("/teachers/:id", teachers.Get)
	api.GET("/teachers/:id/schedules", schedules.ListByTeacher)
	api.GET("/students/:id/grades", grades.List)
	api.GET("/students/:id/transcript", grades.Transcript)
	api.GET("/grades/classify", grades.Classify)

	write := api.Group("", a.writeGuards()...)
	write.POST("/schedules", middleware.Audit(a.Logger, "schedule"), schedules.Create)
	write.POST("/schedules/bulk", middleware.Audit(a.Logger, "schedule"), schedules.BulkCreate)
	write.PUT("/schedules/:id", middleware.Audit(a.Logger, "schedule"), schedules.Update)
	write.DELETE("/schedules/:id", middleware.Audit(a.Logger, "schedule"), schedules.Delete)
	write.POST("/teachers", middleware.Audit(a.Logger, "teacher"), teachers.Create)
	write.PUT("/teachers/:id", middleware.Audit(a.Logger, "teacher"), teachers.Update)
	write.DELETE("/teachers/:id", middleware.Audit(a.Logger, "teacher"), teachers.Deactivate)
	write.PUT("/grades", middleware.Audit(a.Logger, "grade"), grades.Save)

	return r
}

func (a *App) writeGuards() []gin.HandlerFunc {
	if !a.Config.Auth.Enabled {
		return nil
	}
	return []gin.HandlerFunc{
		middleware.JWT(a.Auth),
		middleware.RequireRoles(models.RoleAdmin, models.RoleSuperAdmin),
	}
}

// Serve runs the HTTP server until ctx is cancelled, then drains in-flight requests.
func (a *App) Serve(ctx context.Context) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", a.Config.Port),
		Handler:           a.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.Logger.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", a.Config.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	a.Logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		_ = srv.Close()
		return fmt.Errorf("shutdown server: %w", err)
	}
	return nil
}

// Close releases the database and cache connections.
func (a *App) Close() error {
	var errs []error
	if a.Redis != nil {
		errs = append(errs, a.Redis.Close())
	}
	if a.DB != nil {
		errs = append(errs, a.DB.Close())
	}
	return errors.Join(errs...)
}
