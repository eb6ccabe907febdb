package main

import (
	"time"

	"github.com/dmitrymomot/tenantdb/pkg/httpserver"
	"github.com/dmitrymomot/tenantdb/pkg/pg"
)

type appConfig struct {
	Env     string `env:"APP_ENV" envDefault:"development"` // Env selects log format and level.
	Service string `env:"APP_NAME" envDefault:"tenantd"`    // Service is attached to every log record.

	AutoMigrate   bool          `env:"PG_AUTO_MIGRATE" envDefault:"true"`    // AutoMigrate applies master migrations on start.
	HealthTimeout time.Duration `env:"HEALTH_CHECK_TIMEOUT" envDefault:"2s"` // HealthTimeout bounds the readiness probe.

	AnalyticsURL string        `env:"ANALYTICS_URL"`                            // AnalyticsURL enables the /analytics proxy when set.
	HintKey      string        `env:"TENANT_HINT_KEY"`                          // HintKey (hex) makes inbound hints sealed-only.
	ForwardKey   string        `env:"TENANT_FORWARD_KEY"`                       // ForwardKey (hex) seals configs sent to analytics.
	ForwardTTL   time.Duration `env:"TENANT_FORWARD_TOKEN_TTL" envDefault:"2m"` // ForwardTTL bounds a forwarded token's lifetime.

	PG         pg.Config
	TenantPool pg.PoolConfig `envPrefix:"TENANT_POOL_"`
	HTTP       httpserver.Config
}
