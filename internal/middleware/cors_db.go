package middleware

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/nayan947211-pixel/study-buddy/internal/database"
	"github.com/rs/cors"
	"go.uber.org/zap"
)

// CORSReloader serves requests through an rs/cors handler rebuilt
// periodically from the cors_config table. Swapping the whole handler keeps
// the hot path lock-cheap: one RLock per request, no parsing.
type CORSReloader struct {
	repo     *database.CorsConfigRepository
	fallback string
	log      *zap.Logger
	interval time.Duration

	next http.Handler

	mu      sync.RWMutex
	current http.Handler
}

// NewCORSReloader builds the reloader. fallback is the frontend URL used
// when no database row exists yet.
func NewCORSReloader(repo *database.CorsConfigRepository, fallback string, log *zap.Logger, interval time.Duration) *CORSReloader {
	return &CORSReloader{
		repo:     repo,
		fallback: strings.TrimSpace(fallback),
		log:      log,
		interval: interval,
	}
}

// Middleware wraps next and performs the initial config load.
func (r *CORSReloader) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		r.next = next
		r.rebuild(context.Background())
		return r
	}
}

// Start runs the reload loop until ctx is cancelled. Call after
// Middleware() has been applied.
func (r *CORSReloader) Start(ctx context.Context) {
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
			r.rebuild(ctx)
		}
	}
}

func (r *CORSReloader) rebuild(ctx context.Context) {
	if r.next == nil {
		return
	}

	origins, allowCreds, maxAge := r.policy(ctx)
	handler := cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowCredentials: allowCreds,
		MaxAge:           maxAge,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
	}).Handler(r.next)

	r.mu.Lock()
	r.current = handler
	r.mu.Unlock()
}

func (r *CORSReloader) policy(ctx context.Context) (origins []string, allowCreds bool, maxAge int) {
	cfg, err := r.repo.Get(ctx)
	if err != nil || cfg == nil {
		origins = database.AllowedOriginsSlice(r.fallback)
		allowCreds = true
		maxAge = 86400
	} else {
		origins = database.AllowedOriginsSlice(cfg.AllowedOrigins)
		allowCreds = cfg.AllowCredentials
		maxAge = cfg.MaxAge
	}
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}
	return origins, allowCreds, maxAge
}

func (r *CORSReloader) ServeHTTP(w http.ResponseWriter, req *http.Request) {
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
