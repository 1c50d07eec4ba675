package app

import (
	"taskcli/internal/auth"
	"taskcli/internal/cache"
	"taskcli/internal/config"
	"taskcli/internal/handlers"
	"taskcli/internal/repo"
	"taskcli/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"github.com/swaggo/swag"
)

// Setup registers all routes on the given engine.
func Setup(r *gin.Engine, cfg config.Config, db *pgxpool.Pool, rdb *redis.Client) {
	r.GET("/health", healthHandler(cfg))
	r.GET("/version", versionHandler(cfg))
	r.GET("/swagger-doc.json", swaggerDocHandler())
	r.GET("/swagger", func(c *gin.Context) { c.Redirect(302, "/swagger/index.html") })
	r.GET("/swagger/*any", ginSwagger.WrapHandler(
		swaggerFiles.Handler,
		ginSwagger.URL("/swagger-doc.json"),
		ginSwagger.DefaultModelsExpandDepth(-1),
		ginSwagger.PersistAuthorization(true),
	))

	sessionStore := auth.NewStore(rdb, cfg.Redis.SessionTTL.Duration())
	userRepo := repo.NewPGUserRepo(db)
	taskRepo := repo.NewPGTaskRepo(db)
	taskCache := cache.NewTaskCache(rdb, cfg.Redis.DefaultTTL.Duration())
	userSvc := service.NewUserService(userRepo)
	taskSvc := service.NewTaskService(taskRepo, taskCache)

	webHandler := handlers.NewWebHandler(sessionStore, userSvc, taskSvc)
	registerWebRoutes(r, webHandler, sessionStore)

	apiHandler := handlers.NewAPIHandler(userSvc, taskSvc)
	registerAPIRoutes(r.Group("/api"), apiHandler)
}

func registerWebRoutes(r *gin.Engine, h *handlers.WebHandler, sessions auth.Sessions) {
	r.GET("/", h.LoginPage)
	r.POST("/login", h.DoLogin)
	r.POST("/register", h.DoSignup)
	r.GET("/logout", h.Logout)

	protected := r.Group("", auth.RequireSession(sessions))
	protected.GET("/dashboard", h.Dashboard)
	protected.POST("/add-task", h.AddTask)
	protected.POST("/edit-task/:id", h.EditTask)
	protected.POST("/complete-task/:id", h.CompleteTask)
	protected.POST("/pending-task/:id", h.PendingTask)
	protected.POST("/delete-task/:id", h.DeleteTask)
}

func registerAPIRoutes(api *gin.RouterGroup, h *handlers.APIHandler) {
	api.POST("/login", h.Login)
	api.POST("/signup", h.Signup)
	api.GET("/tasks", h.ListTasks)
	api.POST("/tasks/add", h.AddTask)
	api.POST("/tasks/:id/complete", h.CompleteTask)
	api.POST("/tasks/:id/pending", h.PendingTask)
	api.POST("/tasks/:id/edit", h.EditTask)
	api.POST("/tasks/:id/delete", h.DeleteTask)
}

func healthHandler(cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(200, gin.H{"ok": true, "env": cfg.App.Env})
	}
}

func versionHandler(cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(200, gin.H{"version": cfg.App.Version})
	}
}

func swaggerDocHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		doc, err := swag.ReadDoc("swagger")
		if err != nil {
			c.JSON(500, gin.H{"error": err.Error()})
			return
		}
		c.Data(200, "application/json; charset=utf-8", []byte(doc))
	}
}
