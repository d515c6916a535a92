package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/guillecolu/machinetrack-api/internal/dto"
	apierrors "github.com/guillecolu/machinetrack-api/internal/errors"
	"github.com/guillecolu/machinetrack-api/internal/services"
)

type MemberHandler struct {
	teamService *services.TeamService
}

func NewMemberHandler(teamService *services.TeamService) *MemberHandler {
	return &MemberHandler{
		teamService: teamService,
	}
}

// ListMembers returns the whole team
func (h *MemberHandler) ListMembers(c *gin.Context) {
	members, err := h.teamService.ListMembers(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"members": dto.ToMemberDTOs(members),
	})
}

// CreateMember adds a team member
func (h *MemberHandler) CreateMember(c *gin.Context) {
	type CreateMemberRequest struct {
		Name  string `json:"name" binding:"required"`
		Role  string `json:"role"`
		Email string `json:"email"`
	}

	var req CreateMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	member, err := h.teamService.CreateMember(c.Request.Context(), services.MemberInput{
		Name:  req.Name,
		Role:  req.Role,
		Email: req.Email,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToMemberDTO(*member))
}

// GetMember returns a team member by ID
func (h *MemberHandler) GetMember(c *gin.Context) {
	member, err := h.teamService.GetMember(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToMemberDTO(*member))
}

// UpdateMember updates the provided fields of a team member
func (h *MemberHandler) UpdateMember(c *gin.Context) {
	type UpdateMemberRequest struct {
		Name  *string `json:"name"`
		Role  *string `json:"role"`
		Email *string `json:"email"`
	}

	var req UpdateMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	member, err := h.teamService.UpdateMember(c.Request.Context(), c.Param("id"), services.UpdateMemberInput{
		Name:  req.Name,
		Role:  req.Role,
		Email: req.Email,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToMemberDTO(*member))
}

// DeleteMember removes a team member; their tasks become unassigned
func (h *MemberHandler) DeleteMember(c *gin.Context) {
	if err := h.teamService.DeleteMember(c.Request.Context(), c.Param("id")); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Team member deleted successfully",
	})
}
