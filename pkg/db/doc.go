// Package db provides PostgreSQL utilities built on
// [github.com/jackc/pgx/v5/pgxpool]: pooled connections with startup retries,
// a readiness probe, transaction helpers, and schema migrations via
// [github.com/pressly/goose/v3].
//
// # Configuration
//
// Config fields carry env tags, so a deployment configures the pool entirely
// through the environment:
//
//	DATABASE_URL                 - postgres:// connection URL (required)
//	DATABASE_MAX_CONNS           - maximum pool size (default: 10)
//	DATABASE_MIN_CONNS           - minimum idle connections (default: 5)
//	DATABASE_HEALTHCHECK_PERIOD  - idle connection ping interval (default: 1m)
//	DATABASE_MAX_CONN_IDLE_TIME  - close connections idle this long (default: 10m)
//	DATABASE_MAX_CONN_LIFETIME   - recycle connections after (default: 30m)
//	DATABASE_RETRY_ATTEMPTS      - startup connection attempts (default: 3)
//	DATABASE_RETRY_INTERVAL      - base wait between attempts (default: 5s)
//	DATABASE_MIGRATIONS_TABLE    - goose bookkeeping table (default: schema_migrations)
//
// # Usage
//
//	var cfg db.Config
//	if err := env.Parse(&cfg); err != nil {
//		log.Fatal(err)
//	}
//
//	pool, err := db.Connect(ctx, cfg)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	app := anvil.New(
//		anvil.WithHealthChecks(map[string]func(context.Context) error{
//			"postgres": db.Healthcheck(pool),
//		}),
//		anvil.WithShutdownHook(db.Shutdown(pool)),
//	)
//
// # Transactions
//
//	err := db.WithTx(ctx, pool, func(tx pgx.Tx) error {
//		_, err := tx.Exec(ctx, "UPDATE accounts SET plan = $1 WHERE id = $2", plan, id)
//		return err
//	})
//
// # Migrations
//
//	//go:embed migrations/*.sql
//	var migrations embed.FS
//
//	sub, _ := fs.Sub(migrations, "migrations")
//	if err := db.Migrate(ctx, pool, sub, cfg.MigrationsTable, logger); err != nil {
//		log.Fatal(err)
//	}
package db
