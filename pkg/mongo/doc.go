// Package mongo wraps the official MongoDB driver with retrying connection
// setup, index bootstrapping and a readiness probe.
//
//	var cfg mongo.Config
//	config.MustLoad(&cfg)
//	db, err := mongo.ConnectDatabase(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	defer db.Client().Disconnect(context.Background())
//
// Storage code maps driver errors with IsDuplicateKeyError and IsNotFound
// rather than inspecting driver types directly.
package mongo
