package migrations

import (
	"context"
	"time"

	"github.com/uptrace/bun"
)

type game struct {
	bun.BaseModel `bun:"table:games"`

	ID         int64     `bun:"id,pk,autoincrement"`
	HomeTeamID int64     `bun:"home_team_id,notnull"`
	AwayTeamID int64     `bun:"away_team_id,notnull"`
	Date       time.Time `bun:"date,type:date,notnull"`
	HomeScore  *int      `bun:"home_score"`
	AwayScore  *int      `bun:"away_score"`
}

type playerGameStat struct {
	bun.BaseModel `bun:"table:player_game_stats"`

	ID        int64 `bun:"id,pk,autoincrement"`
	PlayerID  int64 `bun:"player_id,notnull,unique:player_game"`
	GameID    int64 `bun:"game_id,notnull,unique:player_game"`
	Minutes   int   `bun:"minutes,notnull,default:0"`
	Points    int   `bun:"points,notnull,default:0"`
	Rebounds  int   `bun:"rebounds,notnull,default:0"`
	Assists   int   `bun:"assists,notnull,default:0"`
	Steals    int   `bun:"steals,notnull,default:0"`
	Blocks    int   `bun:"blocks,notnull,default:0"`
	Turnovers int   `bun:"turnovers,notnull,default:0"`
	Fouls     int   `bun:"fouls,notnull,default:0"`
}

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		err := createTables(ctx, db,
			tableSpec{
				model: (*game)(nil),
				foreignKeys: []string{
					`("home_team_id") REFERENCES "teams" ("id") ON DELETE CASCADE`,
					`("away_team_id") REFERENCES "teams" ("id") ON DELETE CASCADE`,
				},
			},
			tableSpec{
				model: (*playerGameStat)(nil),
				foreignKeys: []string{
					`("player_id") REFERENCES "players" ("id") ON DELETE CASCADE`,
					`("game_id") REFERENCES "games" ("id") ON DELETE CASCADE`,
				},
			},
		)
		if err != nil {
			return err
		}
		_, err = db.NewCreateIndex().
			Model((*game)(nil)).
			Index("games_date_idx").
			Column("date").
			IfNotExists().
			Exec(ctx)
		return err
	}, func(ctx context.Context, db *bun.DB) error {
		return dropTables(ctx, db, (*playerGameStat)(nil), (*game)(nil))
	})
}
