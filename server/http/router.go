package serverhttp

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/precha888/ecount-chatbot/internal/chat/handler"
	"github.com/precha888/ecount-chatbot/internal/config"
	"github.com/precha888/ecount-chatbot/internal/middleware"
	"github.com/precha888/ecount-chatbot/server/http/handlers"
)

// Deps are the wired components the routes serve.
type Deps struct {
	Catalog     handlers.Counter
	Composer    handler.Replier
	LineBot     handler.LineSender // nil when LINE is not configured
	ChatLimiter *middleware.IPLimiter
}

func NewRouter(cfg config.Config, deps Deps, logger zerolog.Logger) *chi.Mux {
	r := chi.NewRouter()

	// order matters: recover -> requestID -> logging -> cors -> limit
	r.Use(middleware.Recover(logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.Logging(logger))
	r.Use(middleware.CORS(cfg.AllowOrigins))
	r.Use(middleware.LimitBytes(cfg.MaxBodyBytes()))

	r.Get("/", handlers.Root)
	r.Get("/health", handlers.Health(deps.Catalog))

	r.With(middleware.RateLimit(deps.ChatLimiter)).
		Post("/chat", handler.Chat(deps.Composer, logger))

	r.Post("/line-webhook", handler.LineWebhook(cfg.LineChannelSecret, deps.LineBot, deps.Composer, logger))

	return r
}

// NewServer wraps the router in an http.Server. There is no WriteTimeout: a LINE
// delivery can carry several text events, each answered with two ERP calls, and
// every one of those calls is already bounded by ECOUNT_TIMEOUT.
func NewServer(cfg config.Config, h http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.Addr(),
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}
}
