package db

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// Migrate applies all pending SQL migrations from the given filesystem,
// usually an embed.FS. The migration table name records what has been applied.
func Migrate(ctx context.Context, pool *pgxpool.Pool, migrations fs.FS, table string, log *slog.Logger) error {
	// goose speaks database/sql; stdlib.OpenDBFromPool wraps the pgx pool
	// without taking ownership, so the returned *sql.DB must not be closed.
	sqlDB := stdlib.OpenDBFromPool(pool)

	goose.SetBaseFS(migrations)
	goose.SetLogger(gooseLogger{log})
	goose.SetTableName(table)

	if err := goose.SetDialect("postgres"); err != nil {
		return errors.Join(ErrSetDialect, err)
	}

	if err := goose.UpContext(ctx, sqlDB, "."); err != nil {
		return errors.Join(ErrApplyMigrations, err)
	}

	return nil
}

type gooseLogger struct {
	log *slog.Logger
}

func (g gooseLogger) Printf(format string, args ...any) {
	g.log.Info(fmt.Sprintf(format, args...))
}

// Fatalf logs at error level without exiting; goose surfaces the failure as a
// returned error, which keeps shutdown orderly.
func (g gooseLogger) Fatalf(format string, args ...any) {
	g.log.Error(fmt.Sprintf(format, args...))
}
