package router

import (
	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"

	apiHandler "github.com/fastygo/taskpulse/api/handler"
)

type Handlers struct {
	Auth         *apiHandler.AuthHandler
	Profile      *apiHandler.ProfileHandler
	Task         *apiHandler.TaskHandler
	Timer        *apiHandler.TimerHandler
	Project      *apiHandler.ProjectHandler
	Analytics    *apiHandler.AnalyticsHandler
	PM           *apiHandler.PMHandler
	Notification *apiHandler.NotificationHandler
	Health       *apiHandler.HealthHandler
}

// Middleware wraps a handler; protected routes run through the chain in order.
type Middleware func(fasthttp.RequestHandler) fasthttp.RequestHandler

func New(handlers Handlers, protected ...Middleware) *router.Router {
	r := router.New()
	guard := func(h fasthttp.RequestHandler) fasthttp.RequestHandler {
		for i := len(protected) - 1; i >= 0; i-- {
			h = protected[i](h)
		}
		return h
	}

	r.GET("/health", handlers.Health.Check)

	// Auth routes
	r.POST("/api/v1/auth/login", handlers.Auth.Login)
	r.POST("/api/v1/auth/refresh", handlers.Auth.Refresh)
	r.POST("/api/v1/auth/logout", guard(handlers.Auth.Logout))

	r.GET("/api/v1/profile", guard(handlers.Profile.GetProfile))
	r.PUT("/api/v1/profile", guard(handlers.Profile.UpdateProfile))

	r.GET("/api/v1/tasks", guard(handlers.Task.GetTasks))
	r.POST("/api/v1/tasks", guard(handlers.Task.CreateTask))
	r.GET("/api/v1/tasks/{id}", guard(handlers.Task.GetTask))
	r.PUT("/api/v1/tasks/{id}", guard(handlers.Task.UpdateTask))
	r.DELETE("/api/v1/tasks/{id}", guard(handlers.Task.DeleteTask))
	r.POST("/api/v1/tasks/{id}/todos", guard(handlers.Task.AddSubtask))
	r.PUT("/api/v1/tasks/{id}/todos/{todo_id}", guard(handlers.Task.UpdateSubtask))
	r.POST("/api/v1/tasks/{id}/todos/{todo_id}/comments", guard(handlers.Task.AddSubtaskComment))

	r.POST("/api/v1/tasks/{id}/timer/start", guard(handlers.Timer.Start))
	r.POST("/api/v1/tasks/{id}/timer/pause", guard(handlers.Timer.Pause))
	r.POST("/api/v1/tasks/{id}/timer/resume", guard(handlers.Timer.Resume))
	r.POST("/api/v1/tasks/{id}/timer/stop", guard(handlers.Timer.Stop))
	r.GET("/api/v1/tasks/{id}/timer/status", guard(handlers.Timer.Status))

	r.GET("/api/v1/projects", guard(handlers.Project.GetProjects))
	r.POST("/api/v1/projects", guard(handlers.Project.CreateProject))
	r.GET("/api/v1/projects/{id}", guard(handlers.Project.GetProject))
	r.GET("/api/v1/projects/{id}/analytics", guard(handlers.Project.GetAnalytics))

	r.GET("/api/v1/analytics/dashboard", guard(handlers.Analytics.Dashboard))
	r.GET("/api/v1/analytics/performance/{user_id}", guard(handlers.Analytics.Performance))
	r.GET("/api/v1/analytics/time-tracking", guard(handlers.Analytics.TimeTracking))

	r.GET("/api/v1/pm/dashboard", guard(handlers.PM.Dashboard))
	r.PUT("/api/v1/pm/projects/{id}/status", guard(handlers.PM.UpdateStatus))
	r.GET("/api/v1/pm/projects/{id}/team", guard(handlers.PM.Team))
	r.GET("/api/v1/pm/activity", guard(handlers.PM.Activity))

	r.GET("/api/v1/notifications", guard(handlers.Notification.List))
	r.PUT("/api/v1/notifications/{id}/read", guard(handlers.Notification.MarkRead))

	return r
}
