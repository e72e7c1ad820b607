// Package config loads typed configuration from environment variables.
//
// Every infrastructure package declares its own Config struct with
// caarlos0/env tags (mongo.Config, pg.Config, httpserver.Config, ...) and the
// application composes them:
//
//	type AppConfig struct {
//		HTTP  httpserver.Config
//		Mongo mongo.Config
//	}
//
//	var cfg AppConfig
//	config.MustLoad(&cfg)
//
// A .env file in the working directory is honoured for local development.
package config
