package player

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

var (
	ErrPlayerNotFound    = errors.New("player not found")
	ErrTeamNotFound      = errors.New("team not found")
	ErrInvalidInput      = errors.New("invalid input")
	ErrUnknownStat       = errors.New("unknown stat category")
	ErrDuplicateStatLine = errors.New("stat line already recorded for this game")
)

// RosterNotifier is told about teams whose roster or captain may have changed.
type RosterNotifier interface {
	RosterChanged(ctx context.Context, teamIDs ...int64) error
}

type Service interface {
	CreatePlayer(ctx context.Context, player *Player) error
	GetPlayerByID(ctx context.Context, id int64) (*Player, error)
	UpdatePlayer(ctx context.Context, player *Player) error
	RecordStatLine(ctx context.Context, line *StatLine) error
	CategoryAverage(ctx context.Context, playerID int64, statName string) (float64, error)
}

type service struct {
	repo     Repository
	notifier RosterNotifier
	logger   *slog.Logger
}

func NewService(repo Repository, notifier RosterNotifier, logger *slog.Logger) Service {
	return &service{
		repo:     repo,
		notifier: notifier,
		logger:   logger,
	}
}

func (s *service) CreatePlayer(ctx context.Context, player *Player) error {
	if player.TeamID <= 0 {
		return ErrInvalidInput
	}
	player.ID = 0
	player.CreatedAt, player.UpdatedAt = time.Time{}, time.Time{}
	if err := s.repo.Create(ctx, player); err != nil {
		return err
	}
	s.notify(ctx, player.TeamID)
	return nil
}

func (s *service) GetPlayerByID(ctx context.Context, id int64) (*Player, error) {
	if id <= 0 {
		return nil, ErrInvalidInput
	}
	return s.repo.GetByID(ctx, id)
}

func (s *service) UpdatePlayer(ctx context.Context, player *Player) error {
	if player.ID <= 0 || player.TeamID <= 0 {
		return ErrInvalidInput
	}

	previous, err := s.repo.GetByID(ctx, player.ID)
	if err != nil {
		return err
	}

	if err := s.repo.Update(ctx, player); err != nil {
		return err
	}

	if previous.TeamID != player.TeamID {
		s.notify(ctx, previous.TeamID, player.TeamID)
	} else {
		s.notify(ctx, player.TeamID)
	}
	return nil
}

func (s *service) RecordStatLine(ctx context.Context, line *StatLine) error {
	if line.PlayerID <= 0 || line.GameID <= 0 {
		return ErrInvalidInput
	}
	if _, err := s.repo.GetByID(ctx, line.PlayerID); err != nil {
		return err
	}
	line.ID = 0
	return s.repo.AddStatLine(ctx, line)
}

func (s *service) CategoryAverage(ctx context.Context, playerID int64, statName string) (float64, error) {
	stat, err := ParseStat(statName)
	if err != nil {
		return 0, err
	}
	if _, err := s.GetPlayerByID(ctx, playerID); err != nil {
		return 0, err
	}
	return s.repo.CategoryAverage(ctx, playerID, stat)
}

// notify never fails the write: cached entries expire on their own.
func (s *service) notify(ctx context.Context, teamIDs ...int64) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.RosterChanged(ctx, teamIDs...); err != nil {
		s.logger.WarnContext(ctx, "failed to publish roster change", "team_ids", teamIDs, "error", err)
	}
}
