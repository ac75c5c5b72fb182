package serverhttp

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	catalog "github.com/precha888/ecount-chatbot/internal/catalog/service"
	chat "github.com/precha888/ecount-chatbot/internal/chat/service"
	"github.com/precha888/ecount-chatbot/internal/config"
	"github.com/precha888/ecount-chatbot/internal/erp"
	"github.com/precha888/ecount-chatbot/internal/middleware"
)

func newTestServer(t *testing.T, limiter *middleware.IPLimiter) *httptest.Server {
	t.Helper()

	ecount := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/ViewBasicProduct"):
			_, _ = io.WriteString(w, `{"Data":{"Result":"[{\"OUT_PRICE\":\"12.5\"}]"}}`)
		case strings.HasSuffix(r.URL.Path, "/ViewInventoryBalanceStatus"):
			_, _ = io.WriteString(w, `{"Data":{"Result":[{"BAL_QTY":"40"}]}}`)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(ecount.Close)

	cat := catalog.New([]map[string]string{
		{"MODEL": "MY2N24VDC", "ITEM_CODE": "IC-001", "ITEM_NAME": "Relay", "SPEC": "24VDC", "UNIT": "pcs"},
	})
	client := erp.NewClient(erp.Config{BaseURL: ecount.URL, SessionID: "s"}, zerolog.Nop())
	composer := chat.NewComposer(cat, client, chat.DefaultOptions(), zerolog.Nop())

	cfg := config.Config{AllowOrigins: []string{"*"}, MaxBodyMB: 1}
	r := NewRouter(cfg, Deps{Catalog: cat, Composer: composer, ChatLimiter: limiter}, zerolog.Nop())

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func TestRouter_Health(t *testing.T) {
	srv := newTestServer(t, nil)

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"ok","products_loaded":1}`, string(body))
	assert.NotEmpty(t, resp.Header.Get(middleware.RequestIDHeader))
}

func TestRouter_ChatEndToEnd(t *testing.T) {
	srv := newTestServer(t, nil)

	resp, err := http.Post(srv.URL+"/chat", "application/json", strings.NewReader(`{"message":"ราคา MY2N24VDC เท่าไหร่"}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "MODEL: MY2N24VDC")
	assert.Contains(t, string(body), "ITEM_CODE: IC-001")
	assert.Contains(t, string(body), "12.50")
	assert.Contains(t, string(body), "สต๊อกคงเหลือ: 40 pcs")
}

func TestRouter_ChatRateLimited(t *testing.T) {
	srv := newTestServer(t, middleware.NewIPLimiter(0.001, 1))

	codes := make([]int, 0, 2)
	for i := 0; i < 2; i++ {
		resp, err := http.Post(srv.URL+"/chat", "application/json", strings.NewReader(`{"message":"hi"}`))
		require.NoError(t, err)
		resp.Body.Close()
		codes = append(codes, resp.StatusCode)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestRouter_ChatRateLimitIgnoresForwardedHeaders(t *testing.T) {
	srv := newTestServer(t, middleware.NewIPLimiter(0.001, 1))

	codes := make([]int, 0, 3)
	for i, ip := range []string{"203.0.113.1", "203.0.113.2", "203.0.113.3"} {
		req, err := http.NewRequest(http.MethodPost, srv.URL+"/chat", strings.NewReader(`{"message":"hi"}`))
		require.NoError(t, err)
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Forwarded-For", ip)
		req.Header.Set("X-Real-IP", ip)
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err, i)
		resp.Body.Close()
		codes = append(codes, resp.StatusCode)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusTooManyRequests, http.StatusTooManyRequests}, codes)
}

func TestRouter_LineWebhookNotConfigured(t *testing.T) {
	srv := newTestServer(t, nil)

	resp, err := http.Post(srv.URL+"/line-webhook", "application/json", strings.NewReader(`{"events":[]}`))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}

func TestRouter_MethodNotAllowed(t *testing.T) {
	srv := newTestServer(t, nil)

	resp, err := http.Get(srv.URL + "/chat")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestNewServer_Timeouts(t *testing.T) {
	cfg := config.Config{Host: "127.0.0.1", Port: 8000}
	srv := NewServer(cfg, http.NotFoundHandler())

	assert.Equal(t, "127.0.0.1:8000", srv.Addr)
	assert.Zero(t, srv.WriteTimeout, "multi-event webhooks must not be cut off")
	assert.Equal(t, 10*time.Second, srv.ReadHeaderTimeout)
	assert.Positive(t, srv.ReadTimeout)
}
