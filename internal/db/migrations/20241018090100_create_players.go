package migrations

import (
	"context"
	"time"

	"github.com/uptrace/bun"
)

type player struct {
	bun.BaseModel `bun:"table:players"`

	ID        int64     `bun:"id,pk,autoincrement"`
	TeamID    int64     `bun:"team_id,notnull"`
	FirstName string    `bun:"first_name,notnull"`
	LastName  string    `bun:"last_name,notnull"`
	Number    int       `bun:"number,notnull,default:0"`
	IsCaptain bool      `bun:"is_captain,notnull,default:false"`
	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt time.Time `bun:"updated_at,notnull,default:current_timestamp"`
}

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		err := createTables(ctx, db, tableSpec{
			model:       (*player)(nil),
			foreignKeys: []string{`("team_id") REFERENCES "teams" ("id") ON DELETE CASCADE`},
		})
		if err != nil {
			return err
		}
		if _, err := db.NewCreateIndex().
			Model((*player)(nil)).
			Index("players_team_id_idx").
			Column("team_id").
			IfNotExists().
			Exec(ctx); err != nil {
			return err
		}
		return updatedAtTrigger(ctx, db, "players")
	}, func(ctx context.Context, db *bun.DB) error {
		return dropTables(ctx, db, (*player)(nil))
	})
}
