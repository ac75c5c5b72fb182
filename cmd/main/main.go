package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"
	"github.com/rs/zerolog/log"

	catalog "github.com/precha888/ecount-chatbot/internal/catalog/service"
	chat "github.com/precha888/ecount-chatbot/internal/chat/service"
	"github.com/precha888/ecount-chatbot/internal/config"
	"github.com/precha888/ecount-chatbot/internal/erp"
	"github.com/precha888/ecount-chatbot/internal/fileio"
	"github.com/precha888/ecount-chatbot/internal/middleware"
	serverhttp "github.com/precha888/ecount-chatbot/server/http"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config")
	}
	logger := config.SetupLogger(cfg)
	for _, w := range cfg.Warnings() {
		logger.Warn().Msg(w)
	}

	products := catalog.LoadFile(cfg.CatalogFile, fileio.Options{
		HeaderRow: cfg.CatalogHeaderRow,
		Delimiter: cfg.Delimiter(),
	}, logger)

	ecount := erp.NewClient(erp.Config{
		BaseURL:    cfg.EcountBaseURL,
		SessionID:  cfg.EcountSessionID,
		Timeout:    cfg.EcountTimeout,
		RatePerSec: cfg.EcountRPS,
	}, logger)

	composer := chat.NewComposer(products, ecount, chat.Options{
		MinScore:    cfg.MatchMinScore,
		MinTokenLen: cfg.MatchMinTokenLen,
	}, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps := serverhttp.Deps{Catalog: products, Composer: composer}
	if cfg.LineChannelAccessToken != "" {
		bot, err := messaging_api.NewMessagingApiAPI(cfg.LineChannelAccessToken)
		if err != nil {
			logger.Error().Err(err).Msg("line messaging client")
		} else {
			deps.LineBot = bot
		}
	}
	if cfg.ChatRatePerSec > 0 {
		deps.ChatLimiter = middleware.NewIPLimiter(cfg.ChatRatePerSec, cfg.ChatRateBurst)
		go deps.ChatLimiter.Run(ctx)
	}

	r := serverhttp.NewRouter(cfg, deps, logger)
	srv := serverhttp.NewServer(cfg, r)
	logger.Info().Str("addr", cfg.Addr()).Int("products", products.Len()).Msg("server starting")

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("listen")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("shutdown")
	}
	logger.Info().Msg("bye")
}
