package middleware

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/nayan947211-pixel/study-buddy/internal/database"
	"github.com/nayan947211-pixel/study-buddy/internal/models"
	"github.com/nayan947211-pixel/study-buddy/internal/request"
	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	stdlibmw "github.com/ulule/limiter/v3/drivers/middleware/stdlib"
	redisstore "github.com/ulule/limiter/v3/drivers/store/redis"
	"go.uber.org/zap"
)

const defaultRatelimitRate = "5-S"

// RateLimitReloader applies a per-client-IP ulule limiter whose rate comes
// from the ratelimit_config table, re-read on an interval. The Redis store
// is created once; only the limiter instance is swapped on reload.
type RateLimitReloader struct {
	store       limiter.Store
	repo        *database.RatelimitConfigRepository
	defaultRate string
	log         *zap.Logger
	interval    time.Duration

	next http.Handler

	mu      sync.RWMutex
	current http.Handler
}

// NewRateLimitReloader builds the reloader. Returns nil if the Redis store
// cannot be created; callers treat that as rate limiting disabled.
func NewRateLimitReloader(redisClient *redis.Client, repo *database.RatelimitConfigRepository, defaultRate string, log *zap.Logger, interval time.Duration) *RateLimitReloader {
	if defaultRate == "" {
		defaultRate = defaultRatelimitRate
	}
	store, err := redisstore.NewStore(redisClient)
	if err != nil {
		log.Error("failed_to_create_redis_store_for_rate_limiter", zap.Error(err))
		return nil
	}
	return &RateLimitReloader{
		store:       store,
		repo:        repo,
		defaultRate: defaultRate,
		log:         log,
		interval:    interval,
	}
}

// Middleware wraps next and performs the initial rate load.
func (r *RateLimitReloader) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		r.next = next
		r.reload(context.Background())
		return r
	}
}

// Start runs the reload loop until ctx is cancelled. Call after
// Middleware() has been applied.
func (r *RateLimitReloader) Start(ctx context.Context) {
	if r.interval <= 0 {
		return
	}
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.reload(ctx)
		}
	}
}

func (r *RateLimitReloader) reload(ctx context.Context) {
	if r.next == nil {
		return
	}

	rate, err := limiter.NewRateFromFormatted(r.currentRate(ctx))
	if err != nil {
		r.log.Error("failed_to_parse_rate_limit_using_default",
			zap.Error(err),
			zap.String("default_rate", r.defaultRate),
		)
		rate, err = limiter.NewRateFromFormatted(r.defaultRate)
		if err != nil {
			r.log.Error("failed_to_parse_default_rate_limit", zap.Error(err))
			return
		}
	}

	instance := limiter.New(r.store, rate)
	mw := stdlibmw.NewMiddleware(instance, stdlibmw.WithKeyGetter(func(req *http.Request) string {
		return request.ClientIP(req)
	}))
	handler := mw.Handler(r.next)

	r.mu.Lock()
	r.current = handler
	r.mu.Unlock()
}

// currentRate reads the configured rate, seeding the table with the default
// when no row exists yet.
func (r *RateLimitReloader) currentRate(ctx context.Context) string {
	cfg, err := r.repo.Get(ctx)
	if err != nil {
		r.log.Warn("failed_to_load_ratelimit_config_from_db_using_default",
			zap.Error(err),
			zap.String("default_rate", r.defaultRate),
		)
		return r.defaultRate
	}
	if cfg != nil && cfg.Rate != "" {
		return cfg.Rate
	}
	if err := r.repo.Set(ctx, &models.RatelimitConfig{Rate: r.defaultRate}); err != nil {
		r.log.Error("failed_to_save_default_ratelimit_config",
			zap.Error(err),
			zap.String("default_rate", r.defaultRate),
		)
	}
	return r.defaultRate
}

func (r *RateLimitReloader) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mu.RLock()
	h := r.current
	r.mu.RUnlock()
	if h != nil {
		h.ServeHTTP(w, req)
		return
	}
	if r.next != nil {
		r.next.ServeHTTP(w, req)
	}
}
