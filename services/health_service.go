package services

import (
	"context"
	"sync"
	"time"

	"github.com/NomadCrew/itinerary-builder/logger"
	"github.com/NomadCrew/itinerary-builder/types"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// DatabasePinger is satisfied by *pgxpool.Pool.
type DatabasePinger interface {
	Ping(ctx context.Context) error
}

// RedisPinger is satisfied by *redis.Client.
type RedisPinger interface {
	Ping(ctx context.Context) *redis.StatusCmd
}

type HealthService struct {
	db           DatabasePinger
	redisClient  RedisPinger
	version      string
	startTime    time.Time
	checkTimeout time.Duration
	log          *zap.SugaredLogger
}

func NewHealthService(db DatabasePinger, redisClient RedisPinger, version string) *HealthService {
	return &HealthService{
		db:           db,
		redisClient:  redisClient,
		version:      version,
		startTime:    time.Now(),
		checkTimeout: 3 * time.Second,
		log:          logger.GetLogger(),
	}
}

// CheckHealth pings every dependency concurrently. Any DOWN component marks
// the whole service DOWN.
func (h *HealthService) CheckHealth(ctx context.Context) types.HealthCheck {
	ctx, cancel := context.WithTimeout(ctx, h.checkTimeout)
	defer cancel()

	var (
		mu         sync.Mutex
		components = make(map[string]types.HealthComponent)
		g          errgroup.Group
	)
	record := func(name string, c types.HealthComponent) {
		mu.Lock()
		components[name] = c
		mu.Unlock()
	}

	g.Go(func() error {
		record("database", h.checkDatabase(ctx))
		return nil
	})
	g.Go(func() error {
		record("redis", h.checkRedis(ctx))
		return nil
	})
	_ = g.Wait()

	overallStatus := types.HealthStatusUp
	for _, c := range components {
		if c.Status == types.HealthStatusDown {
			overallStatus = types.HealthStatusDown
			break
		}
		if c.Status == types.HealthStatusDegraded {
			overallStatus = types.HealthStatusDegraded
		}
	}

	return types.HealthCheck{
		Status:     overallStatus,
		Components: components,
		Version:    h.version,
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
		Uptime:     time.Since(h.startTime).Round(time.Second).String(),
	}
}

func (h *HealthService) checkDatabase(ctx context.Context) types.HealthComponent {
	if h.db == nil {
		return types.HealthComponent{Status: types.HealthStatusDown, Details: "Database not configured"}
	}
	if err := h.db.Ping(ctx); err != nil {
		h.log.Errorw("Database health check failed", "error", err)
		return types.HealthComponent{
			Status:  types.HealthStatusDown,
			Details: "Database connection failed",
		}
	}
	return types.HealthComponent{Status: types.HealthStatusUp}
}

// checkRedis never reports DOWN. Caching and rate limiting fail open.
func (h *HealthService) checkRedis(ctx context.Context) types.HealthComponent {
	if h.redisClient == nil {
		return types.HealthComponent{Status: types.HealthStatusDegraded, Details: "Redis not configured"}
	}
	if err := h.redisClient.Ping(ctx).Err(); err != nil {
		h.log.Errorw("Redis health check failed", "error", err)
		return types.HealthComponent{
			Status:  types.HealthStatusDegraded,
			Details: "Redis connection failed",
		}
	}
	return types.HealthComponent{Status: types.HealthStatusUp}
}
