package handlers

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/guillecolu/machinetrack-api/internal/constants"
	"github.com/guillecolu/machinetrack-api/internal/dto"
	apierrors "github.com/guillecolu/machinetrack-api/internal/errors"
	"github.com/guillecolu/machinetrack-api/internal/middleware"
	"github.com/guillecolu/machinetrack-api/internal/services"
)

// SessionHandler selects the team member acting in this browser session.
// There are no credentials: any existing member can be picked.
type SessionHandler struct {
	teamService *services.TeamService
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(teamService *services.TeamService) *SessionHandler {
	return &SessionHandler{
		teamService: teamService,
	}
}

// Select stores the chosen member in the session.
func (h *SessionHandler) Select(c *gin.Context) {
	type SelectRequest struct {
		MemberID string `json:"memberId" binding:"required"`
	}

	var req SelectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	member, err := h.teamService.GetMember(c.Request.Context(), req.MemberID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	session := sessions.Default(c)
	session.Set(constants.ContextKeyMemberID, member.ID)
	if err := session.Save(); err != nil {
		apierrors.InternalError(c, "Failed to save session")
		return
	}

	c.JSON(http.StatusOK, dto.ToMemberDTO(*member))
}

// Current returns the member selected in the session.
func (h *SessionHandler) Current(c *gin.Context) {
	memberID, _ := middleware.GetMemberID(c)

	member, err := h.teamService.GetMember(c.Request.Context(), memberID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToMemberDTO(*member))
}

// Clear forgets the selected member.
func (h *SessionHandler) Clear(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	if err := session.Save(); err != nil {
		apierrors.InternalError(c, "Failed to clear session")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Session cleared",
	})
}
