package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/bowlhaus/strafenkatalog/models"
	"github.com/bowlhaus/strafenkatalog/repositories"
	"github.com/bowlhaus/strafenkatalog/storage"
)

type TeamService interface {
	CreateTeam(ctx context.Context, name string) (*models.Team, error)
	GetTeamByID(ctx context.Context, id int) (*models.Team, error)
	ListTeams(ctx context.Context) ([]*models.Team, error)
	AddRosterPlayer(ctx context.Context, teamID, playerID int) (*models.DefaultTeamPlayer, error)
	ListRoster(ctx context.Context, teamID int) ([]*models.DefaultTeamPlayer, error)
	UploadLogo(ctx context.Context, teamID int, contentType string, reader io.Reader) (*models.Team, error)
}

type teamService struct {
	teamRepo repositories.TeamRepository
	uploader storage.FileUploader
}

func NewTeamService(teamRepo repositories.TeamRepository, uploader storage.FileUploader) TeamService {
	return &teamService{teamRepo: teamRepo, uploader: uploader}
}

func (s *teamService) populateLogoURL(team *models.Team) {
	if team != nil && team.LogoKey != nil && *team.LogoKey != "" && s.uploader != nil {
		url := s.uploader.GetPublicURL(*team.LogoKey)
		if url != "" {
			team.LogoURL = &url
		}
	}
}

func (s *teamService) CreateTeam(ctx context.Context, name string) (*models.Team, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrTeamNameRequired
	}
	team := &models.Team{Name: name}
	if err := s.teamRepo.Create(ctx, team); err != nil {
		if errors.Is(err, repositories.ErrTeamNameConflict) {
			return nil, ErrTeamNameConflict
		}
		return nil, fmt.Errorf("failed to create team: %w", err)
	}
	return team, nil
}

func (s *teamService) GetTeamByID(ctx context.Context, id int) (*models.Team, error) {
	team, err := s.teamRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, err
	}
	s.populateLogoURL(team)
	return team, nil
}

func (s *teamService) ListTeams(ctx context.Context) ([]*models.Team, error) {
	teams, err := s.teamRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}
	for _, team := range teams {
		s.populateLogoURL(team)
	}
	return teams, nil
}

func (s *teamService) AddRosterPlayer(ctx context.Context, teamID, playerID int) (*models.DefaultTeamPlayer, error) {
	entry := &models.DefaultTeamPlayer{TeamID: teamID, PlayerID: playerID}
	if err := s.teamRepo.AddRosterPlayer(ctx, entry); err != nil {
		if errors.Is(err, repositories.ErrRosterEntryInvalid) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to add roster player: %w", err)
	}
	return entry, nil
}

func (s *teamService) ListRoster(ctx context.Context, teamID int) ([]*models.DefaultTeamPlayer, error) {
	roster, err := s.teamRepo.ListRoster(ctx, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to list roster: %w", err)
	}
	return roster, nil
}

// UploadLogo stores the image under a key derived from the team id and
// records the key on the team row.
func (s *teamService) UploadLogo(ctx context.Context, teamID int, contentType string, reader io.Reader) (*models.Team, error) {
	if s.uploader == nil {
		return nil, fmt.Errorf("%w: logo storage is not configured", ErrValidationFailed)
	}
	team, err := s.GetTeamByID(ctx, teamID)
	if err != nil {
		return nil, err
	}

	ext, err := extensionFromContentType(contentType)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}
	key := fmt.Sprintf("teams/%d/logo%s", teamID, ext)

	result, err := s.uploader.Upload(ctx, key, contentType, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to upload team logo: %w", err)
	}
	if err := s.teamRepo.UpdateLogoKey(ctx, teamID, &result.Key); err != nil {
		return nil, err
	}

	team.LogoKey = &result.Key
	s.populateLogoURL(team)
	return team, nil
}

func extensionFromContentType(contentType string) (string, error) {
	switch contentType {
	case "image/jpeg", "image/jpg":
		return ".jpg", nil
	case "image/png":
		return ".png", nil
	case "image/gif":
		return ".gif", nil
	case "image/webp":
		return ".webp", nil
	default:
		return "", fmt.Errorf("unsupported image content type: %q", contentType)
	}
}
