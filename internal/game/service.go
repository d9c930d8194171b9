package game

import (
	"context"
	"errors"
)

var (
	ErrGameNotFound = errors.New("game not found")
	ErrTeamNotFound = errors.New("team not found")
	ErrInvalidInput = errors.New("invalid input")
)

type Service interface {
	CreateGame(ctx context.Context, game *Game) error
	GetGameByID(ctx context.Context, id int64) (*Game, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{
		repo: repo,
	}
}

func (s *service) CreateGame(ctx context.Context, game *Game) error {
	if game.HomeTeamID <= 0 || game.AwayTeamID <= 0 || game.HomeTeamID == game.AwayTeamID {
		return ErrInvalidInput
	}
	if game.Date.IsZero() {
		return ErrInvalidInput
	}
	return s.repo.Create(ctx, game)
}

func (s *service) GetGameByID(ctx context.Context, id int64) (*Game, error) {
	if id <= 0 {
		return nil, ErrInvalidInput
	}
	return s.repo.GetByID(ctx, id)
}
