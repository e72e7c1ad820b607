// Package pg connects to PostgreSQL through pgx, applies goose migrations
// and classifies driver errors.
//
//	pool, err := pg.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	if err := pg.Migrate(ctx, pool, pgstore.Migrations, "migrations", cfg, log); err != nil {
//		return err
//	}
//
// Repositories translate IsNotFoundError and IsDuplicateKeyError into their
// own sentinel errors.
package pg
