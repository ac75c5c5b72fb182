package handler

import (
	"errors"
	"net/http"

	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"
	"github.com/line/line-bot-sdk-go/v8/linebot/webhook"
	"github.com/rs/zerolog"

	"github.com/precha888/ecount-chatbot/internal/middleware"
)

// LineSender is the part of the LINE Messaging API the webhook needs.
// *messaging_api.MessagingApiAPI satisfies it.
type LineSender interface {
	ReplyMessage(req *messaging_api.ReplyMessageRequest) (*messaging_api.ReplyMessageResponse, error)
}

// LineWebhook serves POST /line-webhook. Without a channel secret or a sender
// it answers 500 and leaves the body unread.
func LineWebhook(secret string, bot LineSender, composer Replier, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.With().Str("rid", middleware.GetRequestID(r)).Logger()

		if secret == "" || bot == nil {
			log.Error().Msg("line webhook: channel secret or access token not configured")
			http.Error(w, "LINE channel not configured", http.StatusInternalServerError)
			return
		}

		cb, err := webhook.ParseRequest(secret, r)
		if err != nil {
			if errors.Is(err, webhook.ErrInvalidSignature) {
				log.Warn().Msg("line webhook: invalid signature")
				http.Error(w, "invalid signature", http.StatusBadRequest)
				return
			}
			log.Warn().Err(err).Msg("line webhook: bad request")
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}

		for _, event := range cb.Events {
			e, ok := event.(webhook.MessageEvent)
			if !ok {
				continue
			}
			msg, ok := e.Message.(webhook.TextMessageContent)
			if !ok {
				continue
			}

			reply := composer.Reply(r.Context(), msg.Text)
			_, err := bot.ReplyMessage(&messaging_api.ReplyMessageRequest{
				ReplyToken: e.ReplyToken,
				Messages: []messaging_api.MessageInterface{
					&messaging_api.TextMessage{Text: reply},
				},
			})
			if err != nil {
				log.Error().Err(err).Msg("line webhook: reply failed")
			}
		}

		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	}
}
