package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/precha888/ecount-chatbot/internal/middleware"
	"github.com/precha888/ecount-chatbot/internal/utils"
)

// Replier composes the bot's answer to one message.
type Replier interface {
	Reply(ctx context.Context, text string) string
}

type chatRequest struct {
	Message string `json:"message"`
}

type chatResponse struct {
	Reply string `json:"reply"`
}

// Chat serves POST /chat: {"message": "..."} -> {"reply": "..."}.
func Chat(composer Replier, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.With().Str("rid", middleware.GetRequestID(r)).Logger()
		defer r.Body.Close()

		var req chatRequest
		if err := utils.ReadJSON(r, &req); err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				utils.WriteError(w, http.StatusRequestEntityTooLarge, "request body too large")
				return
			}
			log.Debug().Err(err).Msg("chat: bad body")
			utils.WriteError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}

		reply := composer.Reply(r.Context(), req.Message)
		if err := utils.WriteJSON(w, http.StatusOK, chatResponse{Reply: reply}); err != nil {
			log.Error().Err(err).Msg("chat: write response")
		}
	}
}
