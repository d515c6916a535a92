package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/guillecolu/machinetrack-api/internal/middleware"
	"github.com/guillecolu/machinetrack-api/internal/services"
)

// Services bundles what the HTTP layer needs.
type Services struct {
	Projects *services.ProjectService
	Tasks    *services.TaskService
	Team     *services.TeamService
	Reports  *services.ReportService
}

// RegisterRoutes mounts the health check and the /api routes on r. A session
// middleware must already be installed.
func RegisterRoutes(r *gin.Engine, svc Services) {
	sessionHandler := NewSessionHandler(svc.Team)
	memberHandler := NewMemberHandler(svc.Team)
	projectHandler := NewProjectHandler(svc.Projects, svc.Reports)
	taskHandler := NewTaskHandler(svc.Tasks)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "MachineTrack API is running",
		})
	})

	api := r.Group("/api")
	api.Use(middleware.CurrentMember())
	{
		session := api.Group("/session")
		{
			session.POST("", sessionHandler.Select)
			session.GET("", middleware.RequireMember(), sessionHandler.Current)
			session.DELETE("", sessionHandler.Clear)
		}

		members := api.Group("/members")
		{
			members.GET("", memberHandler.ListMembers)
			members.POST("", memberHandler.CreateMember)
			members.GET("/:id", memberHandler.GetMember)
			members.PATCH("/:id", memberHandler.UpdateMember)
			members.DELETE("/:id", memberHandler.DeleteMember)
		}

		loadProject := middleware.LoadProject(svc.Projects)
		projects := api.Group("/projects")
		{
			projects.GET("", projectHandler.ListProjects)
			projects.POST("", projectHandler.CreateProject)
			projects.GET("/:id", loadProject, projectHandler.GetProject)
			projects.PATCH("/:id", loadProject, projectHandler.UpdateProject)
			projects.DELETE("/:id", loadProject, projectHandler.DeleteProject)
			projects.POST("/:id/recalculate", loadProject, projectHandler.Recalculate)
			projects.GET("/:id/alerts", loadProject, projectHandler.GetAlerts)
			projects.POST("/:id/parts", loadProject, projectHandler.AddPart)
			projects.PATCH("/:id/parts/:part_id", loadProject, projectHandler.RenamePart)
			projects.DELETE("/:id/parts/:part_id", loadProject, projectHandler.RemovePart)
			projects.POST("/:id/parts/:part_id/stages", loadProject, projectHandler.AddStage)
			projects.PATCH("/:id/parts/:part_id/stages/:stage", loadProject, projectHandler.UpdateStage)
			projects.DELETE("/:id/parts/:part_id/stages/:stage", loadProject, projectHandler.RemoveStage)
			projects.GET("/:id/reports", loadProject, projectHandler.ListReports)
			projects.POST("/:id/reports", loadProject, projectHandler.GenerateReport)
		}

		loadTask := middleware.LoadTask(svc.Tasks)
		tasks := api.Group("/tasks")
		{
			tasks.GET("", taskHandler.ListTasks)
			tasks.POST("", taskHandler.CreateTask)
			tasks.GET("/:id", loadTask, taskHandler.GetTask)
			tasks.PATCH("/:id", loadTask, taskHandler.UpdateTask)
			tasks.DELETE("/:id", loadTask, taskHandler.DeleteTask)
			tasks.POST("/:id/block", loadTask, taskHandler.BlockTask)
			tasks.POST("/:id/unblock", loadTask, taskHandler.UnblockTask)
			tasks.POST("/:id/assign", loadTask, taskHandler.AssignTask)
			tasks.POST("/:id/unassign", loadTask, taskHandler.UnassignTask)
		}
	}
}
