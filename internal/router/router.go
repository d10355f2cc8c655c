package router

import (
	"github.com/fasthttp/router"

	apiHandler "github.com/fastygo/todo/api/handler"
	"github.com/fastygo/todo/internal/middleware"
)

type Handlers struct {
	Auth         *apiHandler.AuthHandler
	Task         *apiHandler.TaskHandler
	Notification *apiHandler.NotificationHandler
	Health       *apiHandler.HealthHandler
}

// New registers the API routes. requireSession rejects anonymous callers;
// optionalSession only attaches the session when present.
func New(handlers Handlers, requireSession, optionalSession middleware.Middleware) *router.Router {
	r := router.New()

	r.GET("/health", handlers.Health.Check)

	// Auth routes
	r.POST("/api/auth/register", handlers.Auth.Register)
	r.POST("/api/auth/login", handlers.Auth.Login)
	r.POST("/api/auth/logout", requireSession(handlers.Auth.Logout))
	r.GET("/api/auth/check", optionalSession(handlers.Auth.Check))

	// Protected routes
	r.GET("/api/todos", requireSession(handlers.Task.List))
	r.POST("/api/todos", requireSession(handlers.Task.Create))
	r.GET("/api/todos/stats", requireSession(handlers.Task.Stats))
	r.PUT("/api/todos/{id}", requireSession(handlers.Task.Update))
	r.DELETE("/api/todos/{id}", requireSession(handlers.Task.Delete))

	r.GET("/api/test/notification", requireSession(handlers.Notification.SendTest))
	r.GET("/api/test/check-tomorrow", requireSession(handlers.Notification.CheckTomorrow))

	return r
}
