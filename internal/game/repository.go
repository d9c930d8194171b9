package game

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"team-service/internal/db"
	"team-service/internal/metrics"

	"github.com/uptrace/bun"
)

type Repository interface {
	Create(ctx context.Context, game *Game) error
	GetByID(ctx context.Context, id int64) (*Game, error)
}

type repository struct {
	db      *bun.DB
	metrics *metrics.Metrics
}

func NewRepository(db *bun.DB, m *metrics.Metrics) Repository {
	return &repository{
		db:      db,
		metrics: m,
	}
}

func (r *repository) Create(ctx context.Context, game *Game) error {
	start := time.Now()
	_, err := r.db.NewInsert().Model(game).Returning("*").Exec(ctx)

	r.metrics.Database.RecordQuery(ctx, "insert", "games", time.Since(start), err)

	if db.IsForeignKeyViolation(err) {
		return ErrTeamNotFound
	}
	return err
}

func (r *repository) GetByID(ctx context.Context, id int64) (*Game, error) {
	start := time.Now()
	game := new(Game)
	err := r.db.NewSelect().Model(game).Where("g.id = ?", id).Scan(ctx)

	r.metrics.Database.RecordQuery(ctx, "select", "games", time.Since(start), err)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrGameNotFound
		}
		return nil, err
	}
	return game, nil
}
