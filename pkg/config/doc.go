// Package config loads application configuration from environment variables
// into tagged structs, with .env file support for local development.
//
// It wraps github.com/joho/godotenv and github.com/caarlos0/env/v11. Each
// configuration type is parsed at most once per process and cached, so
// components can load their own config independently without coordinating
// a central config struct.
//
//	var cfg backendapi.Config
//	config.MustLoad(&cfg)
package config
