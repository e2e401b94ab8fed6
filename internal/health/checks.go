package health

import (
	"context"
	"fmt"
	"time"

	"github.com/hellofresh/health-go/v5"
	"github.com/hellofresh/health-go/v5/checks/postgres"
	healthRedis "github.com/hellofresh/health-go/v5/checks/redis"
	"github.com/shopease/storefront/internal/config"
	"github.com/shopease/storefront/internal/feed"
)

type Endpoints struct {
	// Feed is the LISTEN connection of the change feed. Nil skips the check.
	Feed feed.Pinger
}

func NewHealthHandler(cfg *config.Config, endpoints *Endpoints) (*health.Health, error) {

	checks := []health.Config{
		{
			Name:      "database",
			Timeout:   3 * time.Second,
			SkipOnErr: false,
			Check: postgres.New(postgres.Config{
				DSN: cfg.Database.GetDSN(),
			}),
		},
		{
			Name:      "redis",
			Timeout:   2 * time.Second,
			SkipOnErr: false,
			Check: healthRedis.New(
				healthRedis.Config{
					DSN: cfg.RedisConnect.GetDSN(),
				},
			),
		},
	}

	if endpoints != nil && endpoints.Feed != nil {
		checks = append(checks, health.Config{
			Name:      "change-feed",
			Timeout:   2 * time.Second,
			SkipOnErr: true,
			Check:     FeedCheck(endpoints.Feed),
		})
	}

	h, err := health.New(
		health.WithComponent(health.Component{
			Name:    "shopease-storefront",
			Version: "1.0.0",
		}),
		health.WithSystemInfo(),
		health.WithChecks(checks...),
	)

	if err != nil {
		return nil, fmt.Errorf("failed to create health instance: %w", err)
	}

	return h, nil
}

// FeedCheck pings the change feed connection. A failing feed only delays
// cross-session pushes, so it is reported without failing the service.
func FeedCheck(p feed.Pinger) health.CheckFunc {
	return func(context.Context) error {
		if err := p.Ping(); err != nil {
			return fmt.Errorf("change feed unreachable: %w", err)
		}

		return nil
	}
}
