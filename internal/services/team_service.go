package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/guillecolu/machinetrack-api/internal/models"
	"github.com/guillecolu/machinetrack-api/internal/repository"
	"gorm.io/gorm"
)

// TeamService manages the workshop's team members.
type TeamService struct {
	memberRepo   repository.TeamMemberRepository
	taskRepo     repository.TaskRepository
	recalculator *Recalculator
}

// NewTeamService creates a new TeamService.
func NewTeamService(memberRepo repository.TeamMemberRepository, taskRepo repository.TaskRepository, recalculator *Recalculator) *TeamService {
	return &TeamService{
		memberRepo:   memberRepo,
		taskRepo:     taskRepo,
		recalculator: recalculator,
	}
}

// MemberInput represents the editable fields of a team member.
type MemberInput struct {
	Name  string
	Role  string
	Email string
}

// UpdateMemberInput represents a partial team member update.
type UpdateMemberInput struct {
	Name  *string
	Role  *string
	Email *string
}

func (s *TeamService) CreateMember(ctx context.Context, input MemberInput) (*models.TeamMember, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrMemberNameRequired
	}

	member := &models.TeamMember{
		Name:  name,
		Role:  strings.TrimSpace(input.Role),
		Email: strings.TrimSpace(input.Email),
	}
	if err := s.memberRepo.Create(ctx, member); err != nil {
		return nil, fmt.Errorf("failed to create team member: %w", err)
	}
	return member, nil
}

func (s *TeamService) ListMembers(ctx context.Context) ([]models.TeamMember, error) {
	members, err := s.memberRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list team members: %w", err)
	}
	return members, nil
}

func (s *TeamService) GetMember(ctx context.Context, memberID string) (*models.TeamMember, error) {
	member, err := s.memberRepo.FindByID(ctx, memberID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMemberNotFound
		}
		return nil, fmt.Errorf("failed to find team member: %w", err)
	}
	return member, nil
}

func (s *TeamService) UpdateMember(ctx context.Context, memberID string, input UpdateMemberInput) (*models.TeamMember, error) {
	member, err := s.GetMember(ctx, memberID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, ErrMemberNameRequired
		}
		member.Name = name
	}
	if input.Role != nil {
		member.Role = strings.TrimSpace(*input.Role)
	}
	if input.Email != nil {
		member.Email = strings.TrimSpace(*input.Email)
	}

	if err := s.memberRepo.Update(ctx, member); err != nil {
		return nil, fmt.Errorf("failed to update team member: %w", err)
	}
	return member, nil
}

// DeleteMember removes a member. Their tasks become unassigned, which
// changes the unassigned counter of every project involved.
func (s *TeamService) DeleteMember(ctx context.Context, memberID string) error {
	if _, err := s.GetMember(ctx, memberID); err != nil {
		return err
	}

	projectIDs, err := s.taskRepo.UnassignMember(ctx, memberID)
	if err != nil {
		return fmt.Errorf("failed to unassign member tasks: %w", err)
	}

	if err := s.memberRepo.Delete(ctx, memberID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrMemberNotFound
		}
		return fmt.Errorf("failed to delete team member: %w", err)
	}

	var failed error
	for _, projectID := range projectIDs {
		if _, err := s.recalculator.RecalculateProject(ctx, projectID); err != nil && !errors.Is(err, ErrProjectNotFound) {
			log.Printf("team: recalculation of project %s after removing member %s failed: %v", projectID, memberID, err)
			if failed == nil {
				failed = fmt.Errorf("%w: %v", ErrRecalculationFailed, err)
			}
		}
	}
	return failed
}
