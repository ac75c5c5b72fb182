package handlers

import (
	"net/http"

	"github.com/precha888/ecount-chatbot/internal/utils"
)

const rootMessage = "Ecount chatbot is running. POST /chat or configure /line-webhook."

// Counter reports how many catalog products are loaded.
type Counter interface {
	Len() int
}

func Root(w http.ResponseWriter, _ *http.Request) {
	_ = utils.WriteJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"message": rootMessage,
	})
}

// Health reports liveness plus the catalog size, which is 0 when the catalog
// file was missing at startup.
func Health(products Counter) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		_ = utils.WriteJSON(w, http.StatusOK, map[string]any{
			"status":          "ok",
			"products_loaded": products.Len(),
		})
	}
}
