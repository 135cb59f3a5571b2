package postgres

import (
	"context"
	"embed"
	"fmt"
	"path"
	"sort"
	"strconv"
	"strings"

	"github.com/jackc/pgtype/pgxtype"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

type migration struct {
	id   int
	name string
	sql  string
}

// Migrate applies every embedded migration newer than the version recorded
// in the schema_version sequence.
func Migrate(ctx context.Context, db pgxtype.Querier) error {
	ms, err := loadMigrations()
	if err != nil {
		return err
	}
	version, err := readVersion(ctx, db)
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	for _, m := range ms {
		if m.id <= version {
			continue
		}
		if _, err := db.Exec(ctx, m.sql); err != nil {
			return fmt.Errorf("apply migration %s: %w", m.name, err)
		}
		version = m.id
		if err := setVersion(ctx, db, version); err != nil {
			return fmt.Errorf("set schema version: %w", err)
		}
	}
	return nil
}

func loadMigrations() ([]migration, error) {
	entries, err := migrationFS.ReadDir("migrations")
	if err != nil {
		return nil, err
	}
	out := make([]migration, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		prefix, _, ok := strings.Cut(name, "_")
		if !ok {
			return nil, fmt.Errorf("migration %s: missing numeric prefix", name)
		}
		id, err := strconv.Atoi(prefix)
		if err != nil {
			return nil, fmt.Errorf("migration %s: %w", name, err)
		}
		b, err := migrationFS.ReadFile(path.Join("migrations", name))
		if err != nil {
			return nil, err
		}
		out = append(out, migration{id: id, name: name, sql: string(b)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].id < out[j].id })
	return out, nil
}

func readVersion(ctx context.Context, db pgxtype.Querier) (int, error) {
	if _, err := db.Exec(ctx, `CREATE SEQUENCE IF NOT EXISTS schema_version START WITH 0 MINVALUE 0;`); err != nil {
		return 0, err
	}
	var version int
	if err := db.QueryRow(ctx, `SELECT last_value FROM schema_version`).Scan(&version); err != nil {
		return 0, err
	}
	return version, nil
}

func setVersion(ctx context.Context, db pgxtype.Querier, version int) error {
	_, err := db.Exec(ctx, `SELECT setval('schema_version', $1)`, version)
	return err
}
