// Package config loads configuration structs from environment variables.
//
// It combines github.com/joho/godotenv, for optional dotenv files, with
// github.com/caarlos0/env/v11, which maps variables onto struct fields via
// `env`, `envDefault` and `envPrefix` tags. Nested structs such as pg.Config
// or httpserver.Config compose into one application config:
//
//	type Config struct {
//		Env        string        `env:"APP_ENV" envDefault:"development"`
//		Master     pg.Config
//		TenantPool pg.PoolConfig `envPrefix:"TENANT_POOL_"`
//		HTTP       httpserver.Config
//	}
//
//	var cfg Config
//	config.MustLoad(&cfg)
//
// Tests pass an explicit map with WithEnvironment instead of mutating the
// process environment.
package config
