package migrations

import (
	"context"
	"time"

	"github.com/uptrace/bun"
)

type team struct {
	bun.BaseModel `bun:"table:teams"`

	ID          int64     `bun:"id,pk,autoincrement"`
	FullName    string    `bun:"full_name,type:varchar(64),notnull,unique"`
	ShortName   string    `bun:"short_name,type:varchar(5),notnull"`
	Logo        string    `bun:"logo,type:varchar(100),notnull,default:'team_logos/default.png'"`
	Description string    `bun:"description,type:varchar(1024),notnull,default:''"`
	CreatedAt   time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt   time.Time `bun:"updated_at,notnull,default:current_timestamp"`
}

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		_, err := db.ExecContext(ctx, `
			CREATE OR REPLACE FUNCTION update_updated_at_column()
			RETURNS TRIGGER AS $$
			BEGIN
				NEW.updated_at = CURRENT_TIMESTAMP;
				RETURN NEW;
			END;
			$$ language 'plpgsql';
		`)
		if err != nil {
			return err
		}
		if err := createTables(ctx, db, tableSpec{model: (*team)(nil)}); err != nil {
			return err
		}
		return updatedAtTrigger(ctx, db, "teams")
	}, func(ctx context.Context, db *bun.DB) error {
		return dropTables(ctx, db, (*team)(nil))
	})
}
