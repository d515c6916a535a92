package middleware

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/guillecolu/machinetrack-api/internal/constants"
	apierrors "github.com/guillecolu/machinetrack-api/internal/errors"
	"github.com/guillecolu/machinetrack-api/internal/models"
	"github.com/guillecolu/machinetrack-api/internal/services"
)

// LoadProject resolves the :id URL parameter into a project and stores it in
// the context for the handlers that follow.
func LoadProject(projectService *services.ProjectService) gin.HandlerFunc {
	return func(c *gin.Context) {
		project, err := projectService.GetProject(c.Request.Context(), c.Param("id"))
		if err != nil {
			if errors.Is(err, services.ErrProjectNotFound) {
				apierrors.NotFound(c, "Project not found")
			} else {
				apierrors.InternalError(c, "Failed to load project")
			}
			c.Abort()
			return
		}

		c.Set(constants.ContextKeyProject, project)
		c.Next()
	}
}

// GetProject retrieves the project loaded by LoadProject
func GetProject(c *gin.Context) (*models.Project, bool) {
	value, exists := c.Get(constants.ContextKeyProject)
	if !exists {
		return nil, false
	}
	project, ok := value.(*models.Project)
	return project, ok && project != nil
}
