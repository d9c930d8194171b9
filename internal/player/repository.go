package player

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
	Create(ctx context.Context, player *Player) error
	GetByID(ctx context.Context, id int64) (*Player, error)
	Update(ctx context.Context, player *Player) error
	AddStatLine(ctx context.Context, line *StatLine) error
	CategoryAverage(ctx context.Context, playerID int64, stat Stat) (float64, error)
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

func (r *repository) Create(ctx context.Context, player *Player) error {
	start := time.Now()
	_, err := r.db.NewInsert().Model(player).Returning("*").Exec(ctx)

	r.metrics.Database.RecordQuery(ctx, "insert", "players", time.Since(start), err)

	if db.IsForeignKeyViolation(err) {
		return ErrTeamNotFound
	}
	return err
}

func (r *repository) GetByID(ctx context.Context, id int64) (*Player, error) {
	start := time.Now()
	player := new(Player)
	err := r.db.NewSelect().Model(player).Where("p.id = ?", id).Scan(ctx)

	r.metrics.Database.RecordQuery(ctx, "select", "players", time.Since(start), err)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPlayerNotFound
		}
		return nil, err
	}
	return player, nil
}

func (r *repository) Update(ctx context.Context, player *Player) error {
	start := time.Now()
	result, err := r.db.NewUpdate().
		Model(player).
		Column("team_id", "first_name", "last_name", "number", "is_captain").
		WherePK().
		Returning("*").
		Exec(ctx)

	r.metrics.Database.RecordQuery(ctx, "update", "players", time.Since(start), err)

	if db.IsForeignKeyViolation(err) {
		return ErrTeamNotFound
	}
	if errors.Is(err, sql.ErrNoRows) {
		return ErrPlayerNotFound
	}
	if err != nil {
		return err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrPlayerNotFound
	}
	return nil
}

func (r *repository) AddStatLine(ctx context.Context, line *StatLine) error {
	start := time.Now()
	_, err := r.db.NewInsert().Model(line).Returning("*").Exec(ctx)

	r.metrics.Database.RecordQuery(ctx, "insert", "player_game_stats", time.Since(start), err)

	if db.IsForeignKeyViolation(err) {
		return ErrInvalidInput
	}
	if db.IsUniqueViolation(err) {
		return ErrDuplicateStatLine
	}
	return err
}

func (r *repository) CategoryAverage(ctx context.Context, playerID int64, stat Stat) (float64, error) {
	start := time.Now()
	var avg float64
	err := r.db.NewSelect().
		Model((*StatLine)(nil)).
		ColumnExpr("COALESCE(AVG(s.?), 0)::float8", bun.Ident(stat.Column())).
		Where("s.player_id = ?", playerID).
		Scan(ctx, &avg)

	r.metrics.Database.RecordQuery(ctx, "select", "player_game_stats", time.Since(start), err)

	return avg, err
}
