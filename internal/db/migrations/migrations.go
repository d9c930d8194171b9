package migrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"
)

var Migrations = migrate.NewMigrations()

type tableSpec struct {
	model       any
	foreignKeys []string
}

func createTables(ctx context.Context, db *bun.DB, tables ...tableSpec) error {
	for _, table := range tables {
		q := db.NewCreateTable().Model(table.model).IfNotExists()
		for _, fk := range table.foreignKeys {
			q = q.ForeignKey(fk)
		}
		if _, err := q.Exec(ctx); err != nil {
			return fmt.Errorf("failed to create table for model %T: %w", table.model, err)
		}
	}
	return nil
}

func dropTables(ctx context.Context, db *bun.DB, models ...any) error {
	for _, model := range models {
		if _, err := db.NewDropTable().Model(model).IfExists().Cascade().Exec(ctx); err != nil {
			return fmt.Errorf("failed to drop table for model %T: %w", model, err)
		}
	}
	return nil
}

// updatedAtTrigger keeps updated_at current on every UPDATE of table.
func updatedAtTrigger(ctx context.Context, db *bun.DB, table string) error {
	_, err := db.ExecContext(ctx, fmt.Sprintf(`
		DROP TRIGGER IF EXISTS update_%[1]s_updated_at ON %[1]s;
		CREATE TRIGGER update_%[1]s_updated_at
			BEFORE UPDATE ON %[1]s
			FOR EACH ROW
			EXECUTE FUNCTION update_updated_at_column();
	`, table))
	if err != nil {
		return fmt.Errorf("failed to create trigger for %s: %w", table, err)
	}
	return nil
}
