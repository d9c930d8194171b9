package team

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"team-service/internal/db"
	"team-service/internal/game"
	"team-service/internal/metrics"
	"team-service/internal/player"

	"github.com/uptrace/bun"
)

type Repository interface {
	Create(ctx context.Context, team *Team) error
	GetAll(ctx context.Context) ([]Team, error)
	GetByID(ctx context.Context, id int64) (*Team, error)
	GetByFullName(ctx context.Context, fullName string) (*Team, error)
	Update(ctx context.Context, team *Team) error
	Delete(ctx context.Context, id int64) error

	CountPlayers(ctx context.Context, teamID int64) (int, error)
	Captains(ctx context.Context, teamID int64, limit int) ([]player.Player, error)
	Players(ctx context.Context, teamID int64) ([]player.Player, error)
	AverageLeader(ctx context.Context, teamID int64, stat player.Stat) (*Leader, error)
	Games(ctx context.Context, teamID int64, today time.Time, n int) ([]game.Game, error)
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

func (r *repository) record(ctx context.Context, operation, table string, start time.Time, err error) {
	if errors.Is(err, sql.ErrNoRows) {
		err = nil
	}
	r.metrics.Database.RecordQuery(ctx, operation, table, time.Since(start), err)
}

func (r *repository) Create(ctx context.Context, team *Team) error {
	start := time.Now()
	_, err := r.db.NewInsert().Model(team).Returning("*").Exec(ctx)
	r.record(ctx, "insert", "teams", start, err)

	if db.IsUniqueViolation(err) {
		return ErrTeamExists
	}
	return err
}

func (r *repository) GetAll(ctx context.Context) ([]Team, error) {
	start := time.Now()
	teams := make([]Team, 0)
	err := r.db.NewSelect().Model(&teams).OrderExpr("t.id ASC").Scan(ctx)
	r.record(ctx, "select", "teams", start, err)

	return teams, err
}

func (r *repository) GetByID(ctx context.Context, id int64) (*Team, error) {
	return r.getOne(ctx, "t.id = ?", id)
}

func (r *repository) GetByFullName(ctx context.Context, fullName string) (*Team, error) {
	return r.getOne(ctx, "t.full_name = ?", fullName)
}

func (r *repository) getOne(ctx context.Context, where string, arg any) (*Team, error) {
	start := time.Now()
	team := new(Team)
	err := r.db.NewSelect().Model(team).Where(where, arg).Scan(ctx)
	r.record(ctx, "select", "teams", start, err)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTeamNotFound
		}
		return nil, err
	}
	return team, nil
}

func (r *repository) Update(ctx context.Context, team *Team) error {
	start := time.Now()
	result, err := r.db.NewUpdate().
		Model(team).
		Column("full_name", "short_name", "logo", "description").
		WherePK().
		Returning("*").
		Exec(ctx)
	r.record(ctx, "update", "teams", start, err)

	if db.IsUniqueViolation(err) {
		return ErrTeamExists
	}
	if errors.Is(err, sql.ErrNoRows) {
		return ErrTeamNotFound
	}
	if err != nil {
		return err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrTeamNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	start := time.Now()
	team := &Team{ID: id}
	result, err := r.db.NewDelete().Model(team).WherePK().Exec(ctx)
	r.record(ctx, "delete", "teams", start, err)

	if err != nil {
		return err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrTeamNotFound
	}
	return nil
}

func (r *repository) CountPlayers(ctx context.Context, teamID int64) (int, error) {
	start := time.Now()
	count, err := r.db.NewSelect().
		Model((*player.Player)(nil)).
		Where("p.team_id = ?", teamID).
		Count(ctx)
	r.record(ctx, "count", "players", start, err)

	return count, err
}

func (r *repository) Captains(ctx context.Context, teamID int64, limit int) ([]player.Player, error) {
	start := time.Now()
	captains := make([]player.Player, 0, limit)
	err := r.db.NewSelect().
		Model(&captains).
		Where("p.team_id = ?", teamID).
		Where("p.is_captain").
		OrderExpr("p.id ASC").
		Limit(limit).
		Scan(ctx)
	r.record(ctx, "select", "players", start, err)

	return captains, err
}

func (r *repository) Players(ctx context.Context, teamID int64) ([]player.Player, error) {
	start := time.Now()
	players := make([]player.Player, 0)
	err := r.db.NewSelect().
		Model(&players).
		Where("p.team_id = ?", teamID).
		OrderExpr("p.id ASC").
		Scan(ctx)
	r.record(ctx, "select", "players", start, err)

	return players, err
}

// AverageLeader ranks the roster by per-game average in the database.
// Players without stat lines average 0; ties go to the lowest player id.
func (r *repository) AverageLeader(ctx context.Context, teamID int64, stat player.Stat) (*Leader, error) {
	start := time.Now()

	var row struct {
		PlayerID int64   `bun:"player_id"`
		Value    float64 `bun:"value"`
	}
	err := r.db.NewSelect().
		TableExpr("players AS p").
		ColumnExpr("p.id AS player_id").
		ColumnExpr("COALESCE(AVG(s.?), 0)::float8 AS value", bun.Ident(stat.Column())).
		Join("LEFT JOIN player_game_stats AS s ON s.player_id = p.id").
		Where("p.team_id = ?", teamID).
		GroupExpr("p.id").
		OrderExpr("value DESC, p.id ASC").
		Limit(1).
		Scan(ctx, &row)
	r.record(ctx, "select", "player_game_stats", start, err)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNoPlayers
		}
		return nil, err
	}

	leader := &Leader{Stat: stat, Value: row.Value}

	start = time.Now()
	err = r.db.NewSelect().Model(&leader.Player).Where("p.id = ?", row.PlayerID).Scan(ctx)
	r.record(ctx, "select", "players", start, err)

	if err != nil {
		return nil, err
	}
	return leader, nil
}

// Games returns n upcoming games (n > 0, date >= today, ascending) or |n|
// past games (n < 0, date < today, most recent first).
func (r *repository) Games(ctx context.Context, teamID int64, today time.Time, n int) ([]game.Game, error) {
	start := time.Now()
	games := make([]game.Game, 0)

	q := r.db.NewSelect().
		Model(&games).
		WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("g.home_team_id = ?", teamID).WhereOr("g.away_team_id = ?", teamID)
		})

	day := today.Format(time.DateOnly)
	if n > 0 {
		q = q.Where("g.date >= CAST(? AS date)", day).
			OrderExpr("g.date ASC, g.id ASC").
			Limit(n)
	} else {
		q = q.Where("g.date < CAST(? AS date)", day).
			OrderExpr("g.date DESC, g.id DESC").
			Limit(-n)
	}

	err := q.Scan(ctx)
	r.record(ctx, "select", "games", start, err)

	return games, err
}
